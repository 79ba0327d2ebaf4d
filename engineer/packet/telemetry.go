package packet

const (
	// TelemetryRecordSize is the size of one car's telemetry sub-record.
	TelemetryRecordSize = 60
	// TelemetrySize is the total size of a car telemetry packet, header included.
	TelemetrySize = HeaderSize + NumCars*TelemetryRecordSize + 3
)

// PlayerTelemetry is one car's telemetry sample. Per-wheel arrays use the
// wire order RL, RR, FL, FR.
type PlayerTelemetry struct {
	SpeedKph          uint16
	Throttle          float32 // 0..1
	Steer             float32 // -1 (full left) .. 1 (full right)
	Brake             float32 // 0..1
	Clutch            uint8
	Gear              int8 // -1 reverse, 0 neutral
	EngineRPM         uint16
	DRS               bool
	RevLightsPercent  uint8
	BrakesTempC       [4]uint16
	TyresSurfaceTempC [4]uint8
	TyresInnerTempC   [4]uint8
	EngineTempC       uint16
	TyresPressurePSI  [4]float32
}

// DecodeTelemetry decodes the telemetry of car slot player.
func DecodeTelemetry(b []byte, player uint8) (PlayerTelemetry, bool) {
	off, ok := carOffset(b, player, TelemetryRecordSize, TelemetrySize)
	if !ok {
		return PlayerTelemetry{}, false
	}
	r := newReader(b, off)
	t := PlayerTelemetry{
		SpeedKph: r.u16(),
		Throttle: r.f32(),
		Steer:    r.f32(),
		Brake:    r.f32(),
		Clutch:   r.u8(),
		Gear:     r.i8(),
	}
	t.EngineRPM = r.u16()
	t.DRS = r.u8() != 0
	t.RevLightsPercent = r.u8()
	r.skip(2) // rev lights bit field
	for i := range t.BrakesTempC {
		t.BrakesTempC[i] = r.u16()
	}
	for i := range t.TyresSurfaceTempC {
		t.TyresSurfaceTempC[i] = r.u8()
	}
	for i := range t.TyresInnerTempC {
		t.TyresInnerTempC[i] = r.u8()
	}
	t.EngineTempC = r.u16()
	for i := range t.TyresPressurePSI {
		t.TyresPressurePSI[i] = r.f32()
	}
	r.skip(4) // surface type per wheel
	if !r.ok() || !finite(t.Throttle, t.Steer, t.Brake) || !finite(t.TyresPressurePSI[:]...) {
		return PlayerTelemetry{}, false
	}
	t.Throttle = clamp(t.Throttle, 0, 1)
	t.Brake = clamp(t.Brake, 0, 1)
	t.Steer = clamp(t.Steer, -1, 1)
	return t, true
}
