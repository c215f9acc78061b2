package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/gregLibert/tapid/pkg/nfc"
	"github.com/gregLibert/tapid/pkg/nfc/pcsc"
	"github.com/gregLibert/tapid/pkg/nfc/pn532"
	"github.com/gregLibert/tapid/pkg/tap"
)

type config struct {
	backend string
	device  string
	timeout time.Duration
	debug   bool
	json    bool
	noVAS   bool
	loop    bool
	list    bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.backend, "reader", "pcsc", "reader backend: pcsc, uart or i2c")
	flag.StringVar(&cfg.device, "device", "", "PC/SC reader name, serial port or I2C bus (default: first found)")
	flag.DurationVar(&cfg.timeout, "timeout", 30*time.Second, "how long to wait for a tap (0 waits forever)")
	flag.BoolVar(&cfg.debug, "debug", os.Getenv("TAPID_DEBUG") != "", "log every APDU exchange (also TAPID_DEBUG=1)")
	flag.BoolVar(&cfg.json, "json", false, "print the result as JSON")
	flag.BoolVar(&cfg.noVAS, "no-vas", false, "skip the Apple VAS probe")
	flag.BoolVar(&cfg.loop, "loop", false, "keep reading taps until interrupted")
	flag.BoolVar(&cfg.list, "list", false, "list PC/SC readers and serial ports, then exit")
	flag.Parse()

	log.SetFlags(log.Ltime | log.Lmicroseconds)

	if cfg.list {
		listReaders()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Error: %v", err)
	}
}

func run(ctx context.Context, cfg config) error {
	t, closer, err := openTransceiver(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closer.Close(); err != nil {
			log.Printf("Warning: Failed to close reader: %v", err)
		}
	}()

	logger := nfc.DiscardLogger
	if cfg.debug {
		logger = log.Default()
		t = nfc.NewDebugTransceiver(t, logger)
	}

	reader := tap.NewReader(t, tap.WithLogger(logger), tap.WithVASProbe(!cfg.noVAS))

	for {
		fmt.Fprintln(os.Stderr, ">> Waiting for a card or phone...")

		info, err := readOnce(ctx, reader, cfg.timeout)
		switch {
		case err == nil:
			if err := printInfo(os.Stdout, info, cfg.json); err != nil {
				return err
			}
		case errors.Is(err, context.DeadlineExceeded):
			return fmt.Errorf("no tap within %s", cfg.timeout)
		case ctx.Err() != nil:
			return ctx.Err()
		case cfg.loop:
			log.Printf("Read failed: %v", err)
		default:
			return err
		}

		if !cfg.loop {
			return nil
		}
	}
}

func readOnce(ctx context.Context, reader *tap.Reader, timeout time.Duration) (*tap.CardInfo, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return reader.Read(ctx)
}

// openTransceiver builds the backend named by cfg.backend. The returned
// closer releases the hardware.
func openTransceiver(cfg config) (nfc.Transceiver, io.Closer, error) {
	switch cfg.backend {
	case "pcsc":
		pctx, err := pcsc.EstablishContext()
		if err != nil {
			return nil, nil, err
		}
		t, err := pcsc.New(pctx, cfg.device)
		if err != nil {
			_ = pctx.Release()
			return nil, nil, err
		}
		fmt.Fprintf(os.Stderr, ">> Using reader: %s\n", t.Reader())
		return t, t, nil

	case "uart", "i2c":
		link, err := openLink(cfg.backend, cfg.device)
		if err != nil {
			return nil, nil, err
		}
		var opts []pn532.Option
		if cfg.debug {
			opts = append(opts, pn532.WithLogger(log.Default()))
		}
		t := pn532.NewTransceiver(pn532.New(link, opts...), 0)
		return t, t, nil

	default:
		return nil, nil, fmt.Errorf("unknown reader backend %q", cfg.backend)
	}
}

func openLink(backend, device string) (pn532.Link, error) {
	if backend == "i2c" {
		return pn532.OpenI2C(device)
	}

	if device == "" {
		ports, err := pn532.SerialPorts()
		if err != nil {
			return nil, err
		}
		if len(ports) == 0 {
			return nil, fmt.Errorf("no serial port found: %w", nfc.ErrNoTechnologyAvailable)
		}
		device = ports[0]
	}
	fmt.Fprintf(os.Stderr, ">> Using serial port: %s\n", device)
	return pn532.OpenUART(device)
}

func printInfo(w io.Writer, info *tap.CardInfo, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	fmt.Fprintf(w, "Scheme:   %s (%s)\n", info.Label, info.Scheme)
	fmt.Fprintf(w, "Card:     **** **** **** %s\n", info.LastFour)
	fmt.Fprintf(w, "Expiry:   %s\n", info.Expiry)
	if info.HolderName != "" {
		fmt.Fprintf(w, "Holder:   %s\n", info.HolderName)
	}
	fmt.Fprintf(w, "AID:      %s\n", info.AID)
	if info.CardLabel != "" {
		fmt.Fprintf(w, "Label:    %s\n", info.CardLabel)
	}
	fmt.Fprintf(w, "Device:   %s\n", info.Device)
	return nil
}

func listReaders() {
	fmt.Println("PC/SC readers:")
	if pctx, err := pcsc.EstablishContext(); err != nil {
		fmt.Printf("  unavailable: %v\n", err)
	} else {
		readers, err := pctx.ListReaders()
		if err != nil {
			fmt.Printf("  unavailable: %v\n", err)
		}
		for _, r := range readers {
			fmt.Printf("  %s\n", r)
		}
		if err := pctx.Release(); err != nil {
			log.Printf("Warning: Failed to release context: %v", err)
		}
	}

	fmt.Println("Serial ports:")
	ports, err := pn532.SerialPorts()
	if err != nil {
		fmt.Printf("  unavailable: %v\n", err)
	}
	for _, p := range ports {
		fmt.Printf("  %s\n", p)
	}
}
