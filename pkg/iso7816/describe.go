package iso7816

import (
	"fmt"
	"strings"

	"github.com/gregLibert/tapid/pkg/tlv"
)

// Describe renders every exchange of the trace for debug output: the
// command header, the status word and, when the answer carries data, its
// TLV tree.
func (t Trace) Describe() string {
	var sb strings.Builder

	for i, tx := range t {
		if i > 0 {
			sb.WriteString("\n")
		}
		if tx.Command != nil {
			raw, err := tx.Command.Bytes()
			if err != nil {
				fmt.Fprintf(&sb, ">> %s (unencodable: %v)\n", tx.Command, err)
			} else {
				fmt.Fprintf(&sb, ">> %X\n", raw)
			}
		}
		if tx.Response == nil {
			sb.WriteString("<< (no response)")
			continue
		}
		fmt.Fprintf(&sb, "<< %s", tx.Response.Status.Verbose())
		if entries := tlv.Decode(tx.Response.Data); len(entries) > 0 {
			sb.WriteString("\n")
			sb.WriteString(tlv.Dump(entries))
		}
	}

	return sb.String()
}
