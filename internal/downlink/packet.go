// Package downlink assembles the beacon, telecommand-response,
// log-message, and bulk-file downlink packet types and encodes them
// for the radio link: an optional 4-byte CSP header and KISS
// byte-stuffed framing, with no integrity trailer.
package downlink

// PacketType is the one-byte payload-type discriminant.
type PacketType uint8

const (
	PacketBeaconMinimal PacketType = 0x01
	PacketBeaconFull    PacketType = 0x02
	PacketLogMessage    PacketType = 0x03
	PacketTcmdResponse  PacketType = 0x04
	PacketDownlinkFirst PacketType = 0x05
	PacketDownlinkNext  PacketType = 0x06
	PacketDownlinkLast  PacketType = 0x07
)

// BeaconPacket is the basic beacon payload: satellite name, active
// antenna + control mode, uptime, time since last uplink, and unix
// epoch time.
type BeaconPacket struct {
	SatelliteName     string // always rendered as the 4 ASCII bytes "CTS1"
	ActiveAntenna     uint8
	ControlMode       uint8
	UptimeMs          uint32
	SinceLastUplinkMs uint32
	UnixEpochMs       int64
}

// Encode renders the beacon payload:
// "CTS1"(4) | active_antenna(1) | switch_control_mode(1) | uptime_ms(4)
// | since_last_uplink_ms(4) | unix_epoch_ms(8), all little-endian.
func (b BeaconPacket) Encode() []byte {
	out := make([]byte, 0, 22)
	out = append(out, 'C', 'T', 'S', '1')
	out = append(out, b.ActiveAntenna, b.ControlMode)
	out = appendU32LE(out, b.UptimeMs)
	out = appendU32LE(out, b.SinceLastUplinkMs)
	out = appendU64LE(out, uint64(b.UnixEpochMs))
	return out
}

// TcmdResponsePacket carries the result of one executed telecommand
// back to the ground:
// ts_sent(8,LE) | response_code(1) | duration_ms(2,LE) | response_text.
type TcmdResponsePacket struct {
	TsSentMs     uint64
	ResponseCode uint8
	DurationMs   uint16
	ResponseText []byte
}

func (p TcmdResponsePacket) Encode() []byte {
	out := make([]byte, 0, 11+len(p.ResponseText))
	out = appendU64LE(out, p.TsSentMs)
	out = append(out, p.ResponseCode)
	out = appendU16LE(out, p.DurationMs)
	out = append(out, p.ResponseText...)
	return out
}

// LogMessagePacket carries one rendered log line to the ground.
type LogMessagePacket struct {
	Text []byte
}

func (p LogMessagePacket) Encode() []byte {
	out := make([]byte, len(p.Text))
	copy(out, p.Text)
	return out
}

// BulkHeaderLen is the fixed per-packet header of a bulk packet:
// seq_num(1) | total_seq_num(1) | absolute_offset(4). Callers sizing a
// bulk session's payload capacity subtract this (plus the packet-type
// byte) from the per-frame application-payload ceiling.
const BulkHeaderLen = 6

// BulkPacket is one sequenced chunk of a bulk-file downlink:
// seq_num(1) | total_seq_num(1) | absolute_offset(4) | data(<=N).
type BulkPacket struct {
	SeqNum         uint8
	TotalSeqNum    uint8
	AbsoluteOffset uint32
	Data           []byte
}

func (p BulkPacket) Encode() []byte {
	out := make([]byte, 0, BulkHeaderLen+len(p.Data))
	out = append(out, p.SeqNum, p.TotalSeqNum)
	out = appendU32LE(out, p.AbsoluteOffset)
	out = append(out, p.Data...)
	return out
}

func appendU16LE(out []byte, v uint16) []byte {
	return append(out, byte(v), byte(v>>8))
}

func appendU32LE(out []byte, v uint32) []byte {
	return append(out, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func appendU64LE(out []byte, v uint64) []byte {
	return append(out,
		byte(v), byte(v>>8), byte(v>>16), byte(v>>24),
		byte(v>>32), byte(v>>40), byte(v>>48), byte(v>>56))
}
