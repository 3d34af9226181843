package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDecodePayload(t *testing.T) {
	tests := []struct {
		name     string
		p        Payload
		expected float64
	}{
		{"sp78", Payload{"TC0P", TypeSP78, []byte{0x3c, 0x80}}, 60.5},
		{"sp78 negative", Payload{"TC0P", TypeSP78, []byte{0xfb, 0x00}}, -5},
		{"fpe2", Payload{"F0Ac", TypeFPE2, []byte{0x25, 0x80}}, 2400},
		{"flt", Payload{"TC0P", TypeFLT, []byte{0x00, 0x00, 0x48, 0x42}}, 50},
		{"ui8", Payload{"FNum", TypeUI8, []byte{3}}, 3},
		{"ui16", Payload{"X", TypeUI16, []byte{0x01, 0x00}}, 256},
		{"ui32", Payload{"X", TypeUI32, []byte{0, 0, 0x01, 0x00}}, 256},
	}
	for _, tt := range tests {
		got, err := DecodePayload(tt.p)
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("%s: expected %f, got %f", tt.name, tt.expected, got)
		}
	}
}

func TestDecodePayloadErrors(t *testing.T) {
	if _, err := DecodePayload(Payload{"X", "ch8*", []byte{1}}); err == nil {
		t.Error("expected error for unsupported type")
	}
	if _, err := DecodePayload(Payload{"X", TypeSP78, []byte{1}}); err == nil {
		t.Error("expected error for short payload")
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	for _, v := range []float64{0, 35.25, 99.5, 127} {
		got, _ := DecodePayload(Payload{"T", TypeSP78, EncodeSP78(v)})
		if got != v {
			t.Errorf("sp78 %f: got %f", v, got)
		}
	}
	for _, v := range []float64{0, 1200, 2400.75, 6000} {
		got, _ := DecodePayload(Payload{"F", TypeFPE2, EncodeFPE2(v)})
		if got != v {
			t.Errorf("fpe2 %f: got %f", v, got)
		}
	}
}

func TestHostControllerFans(t *testing.T) {
	dir := t.TempDir()
	hw := filepath.Join(dir, "hwmon2")
	if err := os.MkdirAll(hw, 0o755); err != nil {
		t.Fatal(err)
	}
	for name, v := range map[string]string{
		"fan1_input": "2150\n",
		"fan1_min":   "1200\n",
		"fan2_input": "0\n",
	} {
		if err := os.WriteFile(filepath.Join(hw, name), []byte(v), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	c := &HostController{hwmonDir: dir, open: true, fans: scanFans(dir)}

	p, err := c.ReadKey(KeyFanCount)
	if err != nil {
		t.Fatalf("FNum: %v", err)
	}
	if n, _ := DecodePayload(p); n != 2 {
		t.Errorf("expected 2 fans, got %f", n)
	}

	p, err = c.ReadKey(FanSpeedKey(0))
	if err != nil {
		t.Fatalf("F0Ac: %v", err)
	}
	if rpm, _ := DecodePayload(p); rpm != 2150 {
		t.Errorf("expected 2150 rpm, got %f", rpm)
	}

	p, err = c.ReadKey(FanMinKey(0))
	if err != nil {
		t.Fatalf("F0Mn: %v", err)
	}
	if rpm, _ := DecodePayload(p); rpm != 1200 {
		t.Errorf("expected min 1200 rpm, got %f", rpm)
	}

	if _, err := c.ReadKey(FanMaxKey(0)); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound for missing max, got %v", err)
	}
	if _, err := c.ReadKey(FanSpeedKey(3)); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound for fan 3, got %v", err)
	}

	c.open = false
	if _, err := c.ReadKey(FanSpeedKey(0)); !errors.Is(err, ErrControllerClosed) {
		t.Errorf("expected ErrControllerClosed, got %v", err)
	}
}
