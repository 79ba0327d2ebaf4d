// Package testutil builds synthetic F1 25 datagrams for tests across the
// engineer packages. Builders write only the fields the decoders read and
// leave everything else zeroed.
package testutil

import (
	"encoding/binary"
	"math"

	"github.com/ingeniero-f1/ingeniero/engineer/packet"
)

// Defaults stamped into every synthetic header.
const (
	PacketFormat = 2025
	GameYear     = 25
	SessionUID   = 123456789
)

// Header returns a header for packet id at sessionTime for player.
func Header(id uint8, sessionTime float32, player uint8) packet.Header {
	return packet.Header{
		PacketFormat:            PacketFormat,
		GameYear:                GameYear,
		GameMajorVersion:        1,
		PacketVersion:           1,
		PacketID:                id,
		SessionUID:              SessionUID,
		SessionTime:             sessionTime,
		FrameIdentifier:         uint32(sessionTime * 60),
		OverallFrameIdentifier:  uint32(sessionTime * 60),
		PlayerCarIndex:          player,
		SecondaryPlayerCarIndex: 255,
	}
}

func frame(h packet.Header, size int) []byte {
	b := make([]byte, size)
	copy(b, h.AppendBinary(nil))
	return b
}

func putF32(b []byte, off int, v float32) {
	binary.LittleEndian.PutUint32(b[off:], math.Float32bits(v))
}

// Forecast is one weather forecast sample.
type Forecast struct {
	SessionType uint8
	OffsetMin   uint8
	RainPct     uint8
}

// SessionFields are the session packet fields a test can set.
type SessionFields struct {
	Weather      uint8
	TrackTempC   int8
	AirTempC     int8
	TotalLaps    uint8
	TrackLengthM uint16
	SessionType  uint8
	TrackID      int8
	SafetyCar    uint8
	Forecast     []Forecast
}

// SessionPacket builds a 753-byte session packet.
func SessionPacket(sessionTime float32, f SessionFields) []byte {
	b := frame(Header(packet.IDSession, sessionTime, 0), packet.SessionSize)
	off := packet.HeaderSize
	b[off] = f.Weather
	b[off+1] = byte(f.TrackTempC)
	b[off+2] = byte(f.AirTempC)
	b[off+3] = f.TotalLaps
	binary.LittleEndian.PutUint16(b[off+4:], f.TrackLengthM)
	b[off+6] = f.SessionType
	b[off+7] = byte(f.TrackID)
	b[153] = f.SafetyCar
	b[155] = uint8(len(f.Forecast))
	for i, s := range f.Forecast {
		at := 156 + i*8
		b[at] = s.SessionType
		b[at+1] = s.OffsetMin
		b[at+7] = s.RainPct
	}
	return b
}

// LapFields are the lap data fields a test can set.
type LapFields struct {
	LastLapMs    uint32
	CurrentLapMs uint32
	LapDistanceM float32
	Position     uint8
	LapNum       uint8
	Sector       uint8
	PenaltiesS   uint8
}

// LapPacket builds a lap data packet with f in player's slot.
func LapPacket(sessionTime float32, player uint8, f LapFields) []byte {
	b := frame(Header(packet.IDLapData, sessionTime, player), packet.LapSize)
	base := packet.HeaderSize + int(player)*packet.LapRecordSize
	binary.LittleEndian.PutUint32(b[base:], f.LastLapMs)
	binary.LittleEndian.PutUint32(b[base+4:], f.CurrentLapMs)
	putF32(b, base+20, f.LapDistanceM)
	b[base+32] = f.Position
	b[base+33] = f.LapNum
	b[base+36] = f.Sector
	b[base+38] = f.PenaltiesS
	return b
}

// StatusFields are the car status fields a test can set.
type StatusFields struct {
	FuelInTank        float32
	FuelCapacity      float32
	FuelRemainingLaps float32
	ActualCompound    uint8
	VisualCompound    uint8
	TyreAgeLaps       uint8
}

// StatusPacket builds a car status packet with f in player's slot.
func StatusPacket(sessionTime float32, player uint8, f StatusFields) []byte {
	b := frame(Header(packet.IDCarStatus, sessionTime, player), packet.StatusSize)
	base := packet.HeaderSize + int(player)*packet.StatusRecordSize
	putF32(b, base+5, f.FuelInTank)
	putF32(b, base+9, f.FuelCapacity)
	putF32(b, base+13, f.FuelRemainingLaps)
	b[base+25] = f.ActualCompound
	b[base+26] = f.VisualCompound
	b[base+27] = f.TyreAgeLaps
	return b
}

// TelemetryFields are the car telemetry fields a test can set.
type TelemetryFields struct {
	SpeedKph  uint16
	Throttle  float32
	Steer     float32
	Brake     float32
	Gear      int8
	EngineRPM uint16
}

// TelemetryPacket builds a car telemetry packet with f in player's slot.
func TelemetryPacket(sessionTime float32, player uint8, f TelemetryFields) []byte {
	b := frame(Header(packet.IDCarTelemetry, sessionTime, player), packet.TelemetrySize)
	base := packet.HeaderSize + int(player)*packet.TelemetryRecordSize
	binary.LittleEndian.PutUint16(b[base:], f.SpeedKph)
	putF32(b, base+2, f.Throttle)
	putF32(b, base+6, f.Steer)
	putF32(b, base+10, f.Brake)
	b[base+15] = byte(f.Gear)
	binary.LittleEndian.PutUint16(b[base+16:], f.EngineRPM)
	return b
}

// DamageFields are the car damage fields a test can set.
type DamageFields struct {
	TyresWear      [4]float32
	FrontLeftWing  uint8
	FrontRightWing uint8
	Gearbox        uint8
	Engine         uint8
}

// DamagePacket builds a car damage packet with f in player's slot.
func DamagePacket(sessionTime float32, player uint8, f DamageFields) []byte {
	b := frame(Header(packet.IDCarDamage, sessionTime, player), packet.DamageSize)
	base := packet.HeaderSize + int(player)*packet.DamageRecordSize
	for i, w := range f.TyresWear {
		putF32(b, base+i*4, w)
	}
	b[base+28] = f.FrontLeftWing
	b[base+29] = f.FrontRightWing
	b[base+36] = f.Gearbox
	b[base+37] = f.Engine
	return b
}

// Retime rewrites the session time in the header of a built packet.
func Retime(b []byte, sessionTime float32) []byte {
	out := append([]byte(nil), b...)
	putF32(out, 15, sessionTime)
	return out
}

// WithSessionUID rewrites the session uid in the header of a built packet.
func WithSessionUID(b []byte, uid uint64) []byte {
	out := append([]byte(nil), b...)
	binary.LittleEndian.PutUint64(out[7:], uid)
	return out
}
