// Package tlv decodes the BER-TLV data objects exchanged with EMV cards.
//
// Two decoders live here. Decode and FindTag are the tolerant, hand-rolled
// pair used on raw radio responses: they stop on truncation instead of
// failing. Unmarshal maps a well-formed response onto a Go struct using
// `tlv:"TAG"` field tags, on top of github.com/moov-io/bertlv.
package tlv

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/moov-io/bertlv"
)

// Unmarshaler lets a type decode its own TLV payload.
type Unmarshaler interface {
	UnmarshalTLV(data []byte) error
}

var tlvSliceType = reflect.TypeOf([]bertlv.TLV{})

// Unmarshal decodes BER-TLV data and maps it onto target, which must be a
// non-nil pointer to a struct.
func Unmarshal(data []byte, target interface{}) error {
	packets, err := DecodeBER(data)
	if err != nil {
		return fmt.Errorf("bertlv decode failed: %w", err)
	}
	return UnmarshalFromPackets(packets, target)
}

// UnmarshalFromPackets maps already decoded packets onto target. A tag that
// appears several times fills a slice field one element per occurrence.
// Packets that match no field land in the field tagged `tlv:",unknown"`.
func UnmarshalFromPackets(packets []bertlv.TLV, target interface{}) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("target must be a non-nil pointer")
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("target must point to a struct, got %s", v.Kind())
	}

	fields, unknown := bindFields(v)
	var leftovers []bertlv.TLV

	for _, packet := range packets {
		field, ok := fields[strings.ToUpper(packet.Tag)]
		if !ok {
			leftovers = append(leftovers, packet)
			continue
		}
		if err := assign(packet, field); err != nil {
			return fmt.Errorf("tag %s: %w", packet.Tag, err)
		}
	}

	if unknown.IsValid() && len(leftovers) > 0 {
		unknown.Set(reflect.ValueOf(leftovers))
	}
	return nil
}

// bindFields indexes the struct fields of v by their upper case TLV tag.
func bindFields(v reflect.Value) (map[string]reflect.Value, reflect.Value) {
	t := v.Type()
	fields := make(map[string]reflect.Value, t.NumField())
	var unknown reflect.Value

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag := sf.Tag.Get("tlv")

		if tag == ",unknown" || (sf.Name == "Unknown" && sf.Type == tlvSliceType) {
			unknown = v.Field(i)
			continue
		}

		name := strings.ToUpper(strings.Split(tag, ",")[0])
		if name == "" {
			continue
		}
		fields[name] = v.Field(i)
	}

	return fields, unknown
}

// assign stores one packet into field, growing slices of non-byte elements.
func assign(packet bertlv.TLV, field reflect.Value) error {
	if field.Kind() == reflect.Slice && !isByteSlice(field) {
		elem := reflect.New(field.Type().Elem()).Elem()
		if err := decodeInto(packet, elem); err != nil {
			return err
		}
		field.Set(reflect.Append(field, elem))
		return nil
	}
	return decodeInto(packet, field)
}

func decodeInto(packet bertlv.TLV, field reflect.Value) error {
	if field.CanAddr() {
		if u, ok := field.Addr().Interface().(Unmarshaler); ok {
			return u.UnmarshalTLV(rawValue(packet))
		}
	}

	switch {
	case isByteSlice(field):
		field.SetBytes(rawValue(packet))
	case field.Kind() == reflect.String:
		field.SetString(HexString(packet.Value))
	case field.Kind() == reflect.Struct:
		return decodeStruct(packet, field.Addr())
	case field.Kind() == reflect.Ptr && field.Type().Elem().Kind() == reflect.Struct:
		if field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}
		return decodeStruct(packet, field)
	}
	return nil
}

func decodeStruct(packet bertlv.TLV, ptr reflect.Value) error {
	if len(packet.TLVs) > 0 {
		return UnmarshalFromPackets(packet.TLVs, ptr.Interface())
	}
	return Unmarshal(packet.Value, ptr.Interface())
}

// rawValue returns the packet payload, re-encoding children of constructed
// objects since bertlv does not keep their raw bytes.
func rawValue(p bertlv.TLV) []byte {
	if len(p.TLVs) > 0 {
		if enc, err := bertlv.Encode(p.TLVs); err == nil {
			return enc
		}
	}
	return p.Value
}

func isByteSlice(v reflect.Value) bool {
	return v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8
}
