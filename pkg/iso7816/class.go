package iso7816

import (
	"fmt"

	"github.com/gregLibert/tapid/pkg/bits"
)

// Class Byte (CLA), ISO/IEC 7816-4 §5.4.1.
//
// Bit 8: Proprietary (1) or Interindustry (0).
// Bit 7: First (0) or Further (1) interindustry range.
// Bit 5: Command chaining.
//
// First interindustry (000x xxxx): bits 4-3 secure messaging, bits 2-1
// logical channel 0-3.
// Further interindustry (01xx xxxx): bit 6 secure messaging, bits 4-1 logical
// channel minus 4.
//
// EMV uses '00' for ISO commands (SELECT, READ RECORD) and the proprietary
// '80' for payment-system commands such as GET PROCESSING OPTIONS.

// SecureMessaging defines the security level applied to the APDU.
type SecureMessaging int

const (
	SMNone         SecureMessaging = 0
	SMProprietary  SecureMessaging = 1
	SMHeaderNoProc SecureMessaging = 2
	SMHeaderAuth   SecureMessaging = 3
)

// Class represents the parsed ISO 7816-4 Class byte (CLA).
type Class struct {
	Raw             byte
	IsProprietary   bool
	IsChained       bool
	SecureMessaging SecureMessaging
	Channel         uint8 // Logical channel number (0-19)
}

// NewClass creates a Class object by decoding a raw CLA byte.
func NewClass(cla byte) (Class, error) {
	if cla == 0xFF {
		return Class{}, fmt.Errorf("invalid CLA value: 0xFF is reserved")
	}

	c := Class{Raw: cla}

	if bits.IsSet(cla, 8) {
		c.IsProprietary = true
		return c, nil
	}

	c.IsChained = bits.IsSet(cla, 5)

	if !bits.IsSet(cla, 7) {
		c.SecureMessaging = SecureMessaging(bits.GetRange(cla, 4, 3))
		c.Channel = bits.GetRange(cla, 2, 1)
		return c, nil
	}

	if bits.IsSet(cla, 6) {
		c.SecureMessaging = SMHeaderNoProc
	}
	c.Channel = bits.GetRange(cla, 4, 1) + 4

	return c, nil
}

// MustClass is NewClass for constants. It panics on the reserved value 0xFF.
func MustClass(cla byte) Class {
	c, err := NewClass(cla)
	if err != nil {
		panic(err)
	}
	return c
}

// Encode converts the Class object back to its byte representation.
func (c *Class) Encode() (byte, error) {
	if c.IsProprietary {
		return c.Raw, nil
	}
	if c.Channel > 19 {
		return 0, fmt.Errorf("channel %d out of range (max 19)", c.Channel)
	}

	var res byte
	if c.IsChained {
		res = bits.Set(res, 5)
	}

	if c.Channel <= 3 {
		res |= byte(c.SecureMessaging) << 2
		res |= c.Channel
		return res, nil
	}

	if c.SecureMessaging == SMProprietary || c.SecureMessaging == SMHeaderAuth {
		return 0, fmt.Errorf("SM indicator %d not supported for channel %d", c.SecureMessaging, c.Channel)
	}

	res = bits.Set(res, 7)
	if c.SecureMessaging != SMNone {
		res = bits.Set(res, 6)
	}
	res |= c.Channel - 4

	return res, nil
}
