package downlink

import (
	"bytes"
	"testing"
)

func TestFrameRoundTripNoCSP(t *testing.T) {
	f := NewFramer(nil, 200)
	payload := []byte("hello world")

	encoded, err := f.EncodeFrame(PacketLogMessage, payload)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	gotType, gotPayload, err := f.DecodeFrame(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if gotType != PacketLogMessage {
		t.Errorf("type = %v, want %v", gotType, PacketLogMessage)
	}
	if !bytes.Equal(gotPayload, payload) {
		t.Errorf("payload = %q, want %q", gotPayload, payload)
	}
}

func TestFrameRoundTripWithCSP(t *testing.T) {
	csp := &CSPHeader{Priority: 1, SrcAddr: 2, DstAddr: 3, SrcPort: 4, DstPort: 5, Flags: 6}
	f := NewFramer(csp, 200)
	payload := []byte{0xC0, 0xDB, 0x01}

	encoded, err := f.EncodeFrame(PacketTcmdResponse, payload)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	gotType, gotPayload, err := f.DecodeFrame(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if gotType != PacketTcmdResponse {
		t.Errorf("type = %v, want %v", gotType, PacketTcmdResponse)
	}
	if !bytes.Equal(gotPayload, payload) {
		t.Errorf("payload = %x, want %x", gotPayload, payload)
	}
}

func TestFrameRejectsOversizedPayload(t *testing.T) {
	f := NewFramer(nil, 4)
	_, err := f.EncodeFrame(PacketLogMessage, []byte("too long for the limit"))
	if err == nil {
		t.Fatal("expected error for oversized payload")
	}
}

// The wire layout is exactly KISS([CSP?][type][payload]) with no
// added integrity trailer, so the KISS-decoded body is precisely
// 1+len(payload) bytes.
func TestFrameHasNoTrailer(t *testing.T) {
	f := NewFramer(nil, 200)
	payload := []byte("hello")
	encoded, err := f.EncodeFrame(PacketLogMessage, payload)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := KISSDecode(encoded)
	if err != nil {
		t.Fatalf("kiss decode: %v", err)
	}
	if want := 1 + len(payload); len(decoded) != want {
		t.Errorf("decoded body length = %d, want %d (no trailer)", len(decoded), want)
	}
}

func TestBeaconPacketEncodeLength(t *testing.T) {
	b := BeaconPacket{ActiveAntenna: 1, ControlMode: 0, UptimeMs: 1000, SinceLastUplinkMs: 500, UnixEpochMs: 123456789}
	encoded := b.Encode()
	if len(encoded) != 22 {
		t.Errorf("beacon payload length = %d, want 22", len(encoded))
	}
	if string(encoded[:4]) != "CTS1" {
		t.Errorf("beacon name prefix = %q, want CTS1", encoded[:4])
	}
}

func TestBulkPacketEncode(t *testing.T) {
	p := BulkPacket{SeqNum: 2, TotalSeqNum: 3, AbsoluteOffset: 400, Data: []byte("abc")}
	encoded := p.Encode()
	if len(encoded) != 6+3 {
		t.Fatalf("length = %d, want 9", len(encoded))
	}
	if encoded[0] != 2 || encoded[1] != 3 {
		t.Errorf("seq/total = %d/%d, want 2/3", encoded[0], encoded[1])
	}
}
