package packet

import "encoding/binary"

// HeaderSize is the fixed size of the per-datagram header.
const HeaderSize = 29

// NumCars is the number of car slots in every per-car packet.
const NumCars = 22

// Packet ids of the F1 25 format.
const (
	IDMotion              uint8 = 0
	IDSession             uint8 = 1
	IDLapData             uint8 = 2
	IDEvent               uint8 = 3
	IDParticipants        uint8 = 4
	IDCarSetups           uint8 = 5
	IDCarTelemetry        uint8 = 6
	IDCarStatus           uint8 = 7
	IDFinalClassification uint8 = 8
	IDLobbyInfo           uint8 = 9
	IDCarDamage           uint8 = 10
	IDSessionHistory      uint8 = 11
	IDTyreSets            uint8 = 12
	IDMotionEx            uint8 = 13
	IDTimeTrial           uint8 = 14
	IDLapPositions        uint8 = 15

	// MaxID is one past the highest known packet id.
	MaxID = 16
)

var idNames = [MaxID]string{
	"motion", "session", "lap", "event", "participants", "setups", "telemetry", "status",
	"classification", "lobby", "damage", "history", "tyresets", "motionex", "timetrial", "lappositions",
}

// IDName returns a short name for a packet id, or "unknown".
func IDName(id uint8) string {
	if int(id) < len(idNames) {
		return idNames[id]
	}
	return "unknown"
}

// Header is the fixed record at the start of every datagram.
type Header struct {
	PacketFormat            uint16
	GameYear                uint8
	GameMajorVersion        uint8
	GameMinorVersion        uint8
	PacketVersion           uint8
	PacketID                uint8
	SessionUID              uint64
	SessionTime             float32 // seconds since session start
	FrameIdentifier         uint32
	OverallFrameIdentifier  uint32
	PlayerCarIndex          uint8
	SecondaryPlayerCarIndex uint8 // 255 when there is no second player
}

// ParseHeader decodes the header at the start of b.
// It returns false when b is shorter than HeaderSize.
func ParseHeader(b []byte) (Header, bool) {
	if len(b) < HeaderSize {
		return Header{}, false
	}
	r := newReader(b, 0)
	h := Header{
		PacketFormat:     r.u16(),
		GameYear:         r.u8(),
		GameMajorVersion: r.u8(),
		GameMinorVersion: r.u8(),
		PacketVersion:    r.u8(),
		PacketID:         r.u8(),
		SessionUID:       r.u64(),
		SessionTime:      r.f32(),
	}
	h.FrameIdentifier = r.u32()
	h.OverallFrameIdentifier = r.u32()
	h.PlayerCarIndex = r.u8()
	h.SecondaryPlayerCarIndex = r.u8()
	if !r.ok() {
		return Header{}, false
	}
	return h, true
}

// AppendBinary appends the wire encoding of h to b.
func (h Header) AppendBinary(b []byte) []byte {
	b = binary.LittleEndian.AppendUint16(b, h.PacketFormat)
	b = append(b, h.GameYear, h.GameMajorVersion, h.GameMinorVersion, h.PacketVersion, h.PacketID)
	b = binary.LittleEndian.AppendUint64(b, h.SessionUID)
	b = binary.LittleEndian.AppendUint32(b, math32bits(h.SessionTime))
	b = binary.LittleEndian.AppendUint32(b, h.FrameIdentifier)
	b = binary.LittleEndian.AppendUint32(b, h.OverallFrameIdentifier)
	return append(b, h.PlayerCarIndex, h.SecondaryPlayerCarIndex)
}
