package packet

const (
	// DamageRecordSize is the size of one car's damage sub-record.
	DamageRecordSize = 46
	// DamageSize is the total size of a car damage packet, header included.
	DamageSize = HeaderSize + NumCars*DamageRecordSize
)

// PlayerDamage is one car's damage state. Percentages are 0..100 and
// per-wheel arrays use the wire order RL, RR, FL, FR.
type PlayerDamage struct {
	TyresWear      [4]float32
	TyresDamage    [4]uint8
	BrakesDamage   [4]uint8
	TyreBlisters   [4]uint8
	FrontLeftWing  uint8
	FrontRightWing uint8
	RearWing       uint8
	Floor          uint8
	Diffuser       uint8
	Sidepod        uint8
	DRSFault       bool
	ERSFault       bool
	Gearbox        uint8
	Engine         uint8
	EngineBlown    bool
	EngineSeized   bool
}

// MaxFrontWing is the worse of the two front wing halves.
func (d PlayerDamage) MaxFrontWing() uint8 {
	return max(d.FrontLeftWing, d.FrontRightWing)
}

// MaxWear is the highest tyre wear of the four wheels.
func (d PlayerDamage) MaxWear() float32 {
	return max(d.TyresWear[0], d.TyresWear[1], d.TyresWear[2], d.TyresWear[3])
}

// DecodeDamage decodes the damage of car slot player.
func DecodeDamage(b []byte, player uint8) (PlayerDamage, bool) {
	off, ok := carOffset(b, player, DamageRecordSize, DamageSize)
	if !ok {
		return PlayerDamage{}, false
	}
	r := newReader(b, off)
	var d PlayerDamage
	for i := range d.TyresWear {
		d.TyresWear[i] = r.f32()
	}
	for i := range d.TyresDamage {
		d.TyresDamage[i] = r.u8()
	}
	for i := range d.BrakesDamage {
		d.BrakesDamage[i] = r.u8()
	}
	for i := range d.TyreBlisters {
		d.TyreBlisters[i] = r.u8()
	}
	d.FrontLeftWing = r.u8()
	d.FrontRightWing = r.u8()
	d.RearWing = r.u8()
	d.Floor = r.u8()
	d.Diffuser = r.u8()
	d.Sidepod = r.u8()
	d.DRSFault = r.u8() != 0
	d.ERSFault = r.u8() != 0
	d.Gearbox = r.u8()
	d.Engine = r.u8()
	r.skip(6) // power unit component wear
	d.EngineBlown = r.u8() != 0
	d.EngineSeized = r.u8() != 0
	if !r.ok() || !finite(d.TyresWear[:]...) {
		return PlayerDamage{}, false
	}
	for i := range d.TyresWear {
		d.TyresWear[i] = clamp(d.TyresWear[i], 0, 100)
	}
	return d, true
}
