package downlink

import (
	"bytes"
	"testing"
)

func TestKISSRoundTrip(t *testing.T) {
	cases := [][]byte{
		{},
		{0x01, 0x02, 0x03},
		{0xC0},
		{0xDB},
		{0xC0, 0xDB, 0xC0, 0xDB},
		bytes.Repeat([]byte{0xC0, 0xDB, 0x41}, 20),
	}

	for _, c := range cases {
		encoded := KISSEncode(c)
		if encoded[0] != 0xC0 || encoded[1] != 0x00 || encoded[len(encoded)-1] != 0xC0 {
			t.Fatalf("encode(%x) = %x, want C0 00 ... C0 framing", c, encoded)
		}
		decoded, err := KISSDecode(encoded)
		if err != nil {
			t.Fatalf("decode(%x) failed: %v", c, err)
		}
		if !bytes.Equal(decoded, c) {
			t.Errorf("round trip mismatch: got %x want %x", decoded, c)
		}
	}
}

func TestKISSDecodeRejectsMalformed(t *testing.T) {
	cases := [][]byte{
		{},
		{0xC0},
		{0xC0, 0xC0},
		{0x01, 0x02},
		{0xC0, 0x01, 0x41, 0xC0},       // wrong command byte
		{0xC0, 0x00, 0xDB, 0xC0},       // dangling escape at frame end
		{0xC0, 0x00, 0xDB, 0x41, 0xC0}, // unrecognized escape sequence
	}
	for _, c := range cases {
		if _, err := KISSDecode(c); err == nil {
			t.Errorf("expected error decoding %x", c)
		}
	}
}
