package metrics

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrControllerUnavailable is returned by Open when the host has no
	// sensor controller or access is denied.
	ErrControllerUnavailable = errors.New("sensor controller unavailable")
	// ErrControllerClosed is returned by reads after Close.
	ErrControllerClosed = errors.New("sensor controller closed")
	// ErrKeyNotFound is returned for keys the controller does not expose.
	ErrKeyNotFound = errors.New("sensor key not found")
)

// Controller keys.
const (
	KeyCPUProximity = "TC0P"
	KeyCPUDie       = "TC0D"
	KeyCPUHeatsink  = "TC0H"
	KeyGPUProximity = "TG0P"
	KeyGPUDie       = "TG0D"
	KeyBatteryTemp  = "TB0T"
	KeySSDTemp      = "TH0P"
	KeyFanCount     = "FNum"
)

// Payload data types.
const (
	TypeSP78 = "sp78" // signed 7.8 fixed point, big endian
	TypeFPE2 = "fpe2" // unsigned 14.2 fixed point, big endian
	TypeFLT  = "flt " // IEEE-754 float32, little endian
	TypeUI8  = "ui8 "
	TypeUI16 = "ui16"
	TypeUI32 = "ui32"
)

// MaxFans is the number of fan indices probed when FNum is unavailable.
const MaxFans = 4

// FanSpeedKey returns the actual-speed key for fan i ("F0Ac").
func FanSpeedKey(i int) string { return fmt.Sprintf("F%dAc", i) }

// FanMinKey returns the minimum-speed key for fan i.
func FanMinKey(i int) string { return fmt.Sprintf("F%dMn", i) }

// FanMaxKey returns the maximum-speed key for fan i.
func FanMaxKey(i int) string { return fmt.Sprintf("F%dMx", i) }

// Payload is the raw answer to one key read.
type Payload struct {
	Key      string
	DataType string
	Data     []byte
}

// RegisterController is a keyed request/response hardware sensor interface.
type RegisterController interface {
	Open() error
	ReadKey(key string) (Payload, error)
	Close() error
}

// Decoder turns a raw payload into a number.
type Decoder func(Payload) (float64, error)

// DecodePayload decodes the fixed-point and integer encodings used by
// the controller.
func DecodePayload(p Payload) (float64, error) {
	need := map[string]int{
		TypeSP78: 2, TypeFPE2: 2, TypeFLT: 4, TypeUI8: 1, TypeUI16: 2, TypeUI32: 4,
	}
	n, ok := need[p.DataType]
	if !ok {
		return 0, fmt.Errorf("key %s: unsupported data type %q", p.Key, p.DataType)
	}
	if len(p.Data) < n {
		return 0, fmt.Errorf("key %s: short payload (%d bytes, need %d)", p.Key, len(p.Data), n)
	}

	switch p.DataType {
	case TypeSP78:
		return float64(int16(binary.BigEndian.Uint16(p.Data))) / 256, nil
	case TypeFPE2:
		return float64(binary.BigEndian.Uint16(p.Data)) / 4, nil
	case TypeFLT:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(p.Data))), nil
	case TypeUI8:
		return float64(p.Data[0]), nil
	case TypeUI16:
		return float64(binary.BigEndian.Uint16(p.Data)), nil
	default:
		return float64(binary.BigEndian.Uint32(p.Data)), nil
	}
}

// EncodeSP78 encodes a temperature in the sp78 format.
func EncodeSP78(v float64) []byte {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, uint16(int16(math.Round(v*256))))
	return b
}

// EncodeFPE2 encodes a fan speed in the fpe2 format.
func EncodeFPE2(v float64) []byte {
	if v < 0 {
		v = 0
	}
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, uint16(math.Round(v*4)))
	return b
}
