package packet

const (
	// LapRecordSize is the size of one car's lap data sub-record.
	LapRecordSize = 57
	// LapSize is the total size of a lap data packet, header included.
	LapSize = HeaderSize + NumCars*LapRecordSize + 2
)

// PlayerLap is one car's lap data.
type PlayerLap struct {
	LastLapMs      uint32
	CurrentLapMs   uint32
	Sector1Ms      uint32
	Sector2Ms      uint32
	DeltaFrontMs   uint32
	DeltaLeaderMs  uint32
	LapDistanceM   float32
	CarPosition    uint8
	LapNum         uint8
	PitStatus      uint8
	NumPitStops    uint8
	Sector         uint8 // 0 = sector 1
	LapInvalid     bool
	PenaltiesS     uint8
	TotalWarnings  uint8
	CornerCutWarns uint8
	GridPosition   uint8
	DriverStatus   uint8
	ResultStatus   uint8
}

// msFromParts joins the split millisecond/minute encoding used for sector
// times and gaps.
func msFromParts(ms uint16, min uint8) uint32 {
	return uint32(min)*60_000 + uint32(ms)
}

// DecodeLap decodes the lap data of car slot player.
func DecodeLap(b []byte, player uint8) (PlayerLap, bool) {
	off, ok := carOffset(b, player, LapRecordSize, LapSize)
	if !ok {
		return PlayerLap{}, false
	}
	r := newReader(b, off)
	l := PlayerLap{
		LastLapMs:    r.u32(),
		CurrentLapMs: r.u32(),
	}
	s1ms, s1min := r.u16(), r.u8()
	s2ms, s2min := r.u16(), r.u8()
	frontMs, frontMin := r.u16(), r.u8()
	leadMs, leadMin := r.u16(), r.u8()
	l.Sector1Ms = msFromParts(s1ms, s1min)
	l.Sector2Ms = msFromParts(s2ms, s2min)
	l.DeltaFrontMs = msFromParts(frontMs, frontMin)
	l.DeltaLeaderMs = msFromParts(leadMs, leadMin)
	l.LapDistanceM = r.f32()
	r.skip(4) // total distance
	r.skip(4) // safety car delta
	l.CarPosition = r.u8()
	l.LapNum = r.u8()
	l.PitStatus = r.u8()
	l.NumPitStops = r.u8()
	l.Sector = r.u8()
	l.LapInvalid = r.u8() != 0
	l.PenaltiesS = r.u8()
	l.TotalWarnings = r.u8()
	l.CornerCutWarns = r.u8()
	r.skip(2) // unserved drive-through and stop-go
	l.GridPosition = r.u8()
	l.DriverStatus = r.u8()
	l.ResultStatus = r.u8()
	if !r.ok() || !finite(l.LapDistanceM) {
		return PlayerLap{}, false
	}
	return l, true
}
