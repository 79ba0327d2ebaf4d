package packet

import "strconv"

const (
	// StatusRecordSize is the size of one car's status sub-record.
	StatusRecordSize = 55
	// StatusSize is the total size of a car status packet, header included.
	StatusSize = HeaderSize + NumCars*StatusRecordSize
)

// PlayerStatus is one car's status.
type PlayerStatus struct {
	FuelInTank        float32 // kg
	FuelCapacity      float32 // kg
	FuelRemainingLaps float32 // value on the MFD
	MaxRPM            uint16
	DRSAllowed        bool
	ActualCompound    uint8
	VisualCompound    uint8
	TyreAgeLaps       uint8
	FIAFlag           int8    // -1 invalid, 0 none, 1 green, 2 blue, 3 yellow
	ERSStoreEnergy    float32 // joules
	ERSDeployMode     uint8
}

// DecodeStatus decodes the car status of car slot player.
func DecodeStatus(b []byte, player uint8) (PlayerStatus, bool) {
	off, ok := carOffset(b, player, StatusRecordSize, StatusSize)
	if !ok {
		return PlayerStatus{}, false
	}
	r := newReader(b, off)
	r.skip(5) // traction control, abs, fuel mix, brake bias, pit limiter
	s := PlayerStatus{
		FuelInTank:        r.f32(),
		FuelCapacity:      r.f32(),
		FuelRemainingLaps: r.f32(),
		MaxRPM:            r.u16(),
	}
	r.skip(2) // idle rpm
	r.skip(1) // max gears
	s.DRSAllowed = r.u8() != 0
	r.skip(2) // drs activation distance
	s.ActualCompound = r.u8()
	s.VisualCompound = r.u8()
	s.TyreAgeLaps = r.u8()
	s.FIAFlag = r.i8()
	r.skip(4 + 4) // engine power ice, mguk
	s.ERSStoreEnergy = r.f32()
	s.ERSDeployMode = r.u8()
	if !r.ok() || !finite(s.FuelInTank, s.FuelCapacity, s.FuelRemainingLaps, s.ERSStoreEnergy) {
		return PlayerStatus{}, false
	}
	s.FuelInTank = max(0, s.FuelInTank)
	return s, true
}

var actualCompounds = map[uint8]string{
	0: "UNK", 7: "INTER", 8: "WET", 16: "C5", 17: "C4", 18: "C3", 19: "C2", 20: "C1", 21: "C0", 22: "C6",
}

var visualCompounds = map[uint8]string{
	0: "UNK", 7: "INTER", 8: "WET", 16: "SOFT", 17: "MED", 18: "HARD",
}

// CompoundName renders the actual and visual tyre compounds, e.g. "C3/HARD".
// Unknown codes render as "A<n>" or "V<n>".
func CompoundName(actual, visual uint8) string {
	a, ok := actualCompounds[actual]
	if !ok {
		a = "A" + strconv.Itoa(int(actual))
	}
	v, ok := visualCompounds[visual]
	if !ok {
		v = "V" + strconv.Itoa(int(visual))
	}
	return a + "/" + v
}
