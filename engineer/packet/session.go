package packet

// SessionSize is the total size of a session packet, header included.
const SessionSize = 753

const (
	numMarshalZones      = 21
	marshalZoneSize      = 5
	numForecastSamples   = 64
	forecastSampleSize   = 8
	rainForecastHorizonM = 10 // minutes
)

// Safety car status codes carried by the session packet.
const (
	SafetyCarNone      uint8 = 0
	SafetyCarFull      uint8 = 1
	SafetyCarVirtual   uint8 = 2
	SafetyCarFormation uint8 = 3
	SafetyCarEnding    uint8 = 4
)

// SessionInfo is the session-wide state the engineer tracks.
type SessionInfo struct {
	Weather         uint8
	TrackTempC      int8
	AirTempC        int8
	TotalLaps       uint8
	TrackLengthM    uint16
	SessionType     uint8
	TrackID         int8
	SessionTimeLeft uint16 // seconds
	SessionDuration uint16 // seconds
	PitSpeedLimit   uint8  // km/h
	SafetyCarStatus uint8

	// RainNext10MinPct is the highest rain probability forecast for the
	// current session type within the next ten minutes. Nil when the
	// forecast carries no such sample.
	RainNext10MinPct *uint8
}

// DecodeSession decodes a session packet.
func DecodeSession(b []byte) (SessionInfo, bool) {
	if len(b) < SessionSize {
		return SessionInfo{}, false
	}
	r := newReader(b, HeaderSize)
	s := SessionInfo{
		Weather:      r.u8(),
		TrackTempC:   r.i8(),
		AirTempC:     r.i8(),
		TotalLaps:    r.u8(),
		TrackLengthM: r.u16(),
		SessionType:  r.u8(),
		TrackID:      r.i8(),
	}
	r.skip(1) // formula
	s.SessionTimeLeft = r.u16()
	s.SessionDuration = r.u16()
	s.PitSpeedLimit = r.u8()
	r.skip(4) // paused, spectating, spectator index, sli pro
	r.skip(1) // marshal zone count
	r.skip(numMarshalZones * marshalZoneSize)
	s.SafetyCarStatus = r.u8()
	r.skip(1) // network game
	samples := int(r.u8())
	if samples > numForecastSamples {
		samples = numForecastSamples
	}
	for i := 0; i < samples; i++ {
		rec := r.take(forecastSampleSize)
		if rec == nil {
			break
		}
		sessionType, offsetMin, rainPct := rec[0], rec[1], rec[7]
		if sessionType != s.SessionType || offsetMin > rainForecastHorizonM {
			continue
		}
		if s.RainNext10MinPct == nil || rainPct > *s.RainNext10MinPct {
			v := rainPct
			s.RainNext10MinPct = &v
		}
	}
	if !r.ok() {
		return SessionInfo{}, false
	}
	return s, true
}
