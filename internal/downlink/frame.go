// This file implements the outer framing layer: an optional 4-byte
// CSP-style network header and KISS byte-stuffed encapsulation. The
// wire format is KISS([CSP-header(4)] [packet-type(1)] [payload]) with
// no trailer field; the ground station decodes exactly this layout and
// the radio link supplies its own FEC, so no application-layer CRC is
// added.
package downlink

import (
	"errors"
	"fmt"
)

// CSPHeader is the fixed 4-byte network-layer header the radio modem
// prepends to every application payload, with values fixed at
// configuration time.
type CSPHeader struct {
	Priority uint8
	SrcAddr  uint8
	DstAddr  uint8
	SrcPort  uint8
	DstPort  uint8
	Flags    uint8
}

// Encode packs the header's 6 logical fields into the fixed 4 bytes
// the modem expects, using the conventional CSP v1 bit layout:
// priority (2 bits) | src (5 bits) | dst (5 bits) | dst port (6 bits)
// | src port (6 bits) | flags (8 bits), big-endian.
func (h CSPHeader) Encode() [4]byte {
	word := uint32(h.Priority&0x3)<<30 |
		uint32(h.SrcAddr&0x1f)<<25 |
		uint32(h.DstAddr&0x1f)<<20 |
		uint32(h.DstPort&0x3f)<<14 |
		uint32(h.SrcPort&0x3f)<<8 |
		uint32(h.Flags)

	return [4]byte{
		byte(word >> 24), byte(word >> 16), byte(word >> 8), byte(word),
	}
}

// Framer assembles and parses downlink frames: packet-type byte,
// payload, an optional CSP header, and KISS byte-stuffing.
type Framer struct {
	CSP           *CSPHeader // nil disables the CSP header wrapper
	MaxAppPayload int        // e.g. config.Ax100DownlinkMaxBytes
}

// NewFramer creates a Framer. If csp is nil, frames are not wrapped with
// a CSP header.
func NewFramer(csp *CSPHeader, maxAppPayload int) *Framer {
	return &Framer{CSP: csp, MaxAppPayload: maxAppPayload}
}

// ErrPayloadTooLarge is returned by EncodeFrame when the application
// payload (type byte + packet body) exceeds MaxAppPayload.
var ErrPayloadTooLarge = errors.New("downlink: application payload exceeds configured maximum")

// EncodeFrame builds one complete KISS-encapsulated downlink frame for
// packetType/payload: [CSP header?] [type byte] [payload], then
// KISS-encoded, with no added trailer.
func (f *Framer) EncodeFrame(packetType PacketType, payload []byte) ([]byte, error) {
	appPayload := make([]byte, 0, 1+len(payload))
	appPayload = append(appPayload, byte(packetType))
	appPayload = append(appPayload, payload...)

	if f.MaxAppPayload > 0 && len(appPayload) > f.MaxAppPayload {
		return nil, fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, len(appPayload), f.MaxAppPayload)
	}

	var framed []byte
	if f.CSP != nil {
		hdr := f.CSP.Encode()
		framed = make([]byte, 0, 4+len(appPayload))
		framed = append(framed, hdr[:]...)
		framed = append(framed, appPayload...)
	} else {
		framed = appPayload
	}

	return KISSEncode(framed), nil
}

// DecodeFrame reverses EncodeFrame: KISS-decodes kissFrame, optionally
// strips a 4-byte CSP header (if f.CSP is non-nil), and returns the
// packet type and payload.
func (f *Framer) DecodeFrame(kissFrame []byte) (PacketType, []byte, error) {
	raw, err := KISSDecode(kissFrame)
	if err != nil {
		return 0, nil, fmt.Errorf("kiss decode: %w", err)
	}

	if f.CSP != nil {
		if len(raw) < 4 {
			return 0, nil, errors.New("downlink: frame too short for CSP header")
		}
		raw = raw[4:]
	}

	if len(raw) < 1 {
		return 0, nil, errors.New("downlink: frame too short for type byte")
	}

	return PacketType(raw[0]), raw[1:], nil
}
