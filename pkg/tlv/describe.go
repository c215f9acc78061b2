package tlv

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/moov-io/bertlv"
)

// Dump renders decoded entries as an indented tree, descending into values
// that decode as nested TLV. It is meant for debug logs.
func Dump(entries []Entry) string {
	var sb strings.Builder
	dump(&sb, entries, 0)
	return strings.TrimRight(sb.String(), "\n")
}

func dump(sb *strings.Builder, entries []Entry, depth int) {
	indent := strings.Repeat("  ", depth)

	for _, e := range entries {
		var nested []Entry
		if depth < MaxDepth && len(e.Value) > 2 {
			nested, _ = DecodeStrict(e.Value)
		}

		if len(nested) > 0 {
			fmt.Fprintf(sb, "%s%s [%d]\n", indent, e.Tag, e.Length)
			dump(sb, nested, depth+1)
			continue
		}
		fmt.Fprintf(sb, "%s%s [%d] %X (%q)\n", indent, e.Tag, e.Length, e.Value, MakeSafeASCII(e.Value))
	}
}

// WriteStructFields writes one line per populated []byte field of s, plus one
// per leftover packet in its unknown field. Lines are joined without a
// trailing newline; when sb already holds content a separating newline is
// written first.
func WriteStructFields(sb *strings.Builder, prefix string, s interface{}) {
	val := reflect.ValueOf(s)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return
	}

	typ := val.Type()
	var lines []string

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		sf := typ.Field(i)

		switch {
		case isByteSlice(field):
			if field.Len() == 0 {
				continue
			}
			name := sf.Name
			if tag := sf.Tag.Get("tlv"); tag != "" {
				name = fmt.Sprintf("%s (%s)", name, tag)
			}
			lines = append(lines, fmt.Sprintf("    - %s.%s: %s", prefix, name, formatByteValue(field.Bytes(), sf.Tag.Get("fmt"))))

		case field.Type() == tlvSliceType:
			for _, p := range field.Interface().([]bertlv.TLV) {
				lines = append(lines, fmt.Sprintf("    - %s.Unknown Tag %s: %s", prefix, p.Tag, HexString(p.Value)))
			}
		}
	}

	if len(lines) == 0 {
		return
	}
	if sb.Len() > 0 {
		sb.WriteString("\n")
	}
	sb.WriteString(strings.Join(lines, "\n"))
}

func formatByteValue(data []byte, format string) string {
	switch format {
	case "ascii":
		return fmt.Sprintf("%X (%q)", data, MakeSafeASCII(data))
	case "int":
		var integer int
		for _, b := range data {
			integer = (integer << 8) | int(b)
		}
		return fmt.Sprintf("%X (Dec: %d)", data, integer)
	default:
		return HexString(data)
	}
}

// MakeSafeASCII replaces every non printable byte with '.'.
func MakeSafeASCII(data []byte) string {
	return strings.Map(func(r rune) rune {
		if r >= 32 && r <= 126 {
			return r
		}
		return '.'
	}, string(data))
}
