package state

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ingeniero-f1/ingeniero/engineer/packet"
)

func fmtLapTime(ms uint32) string {
	if ms == 0 {
		return "-"
	}
	return fmt.Sprintf("%d:%06.3f", ms/60000, float64(ms%60000)/1000)
}

// FormatOneLine renders s as a single human-readable status line. Missing
// categories are printed as "-".
func FormatOneLine(s Snapshot, stale StaleFlags) string {
	var b strings.Builder
	fmt.Fprintf(&b, "t=%.2f", s.LatestSessionTime)
	if s.PlayerTracked {
		fmt.Fprintf(&b, " car=%d", s.PlayerIndex)
	}

	if s.Lap.Valid {
		l := s.Lap.Value
		total := "?"
		if s.Session.Valid && s.Session.Value.TotalLaps > 0 {
			total = fmt.Sprint(s.Session.Value.TotalLaps)
		}
		fmt.Fprintf(&b, " lap=%d/%s P%d s%d last=%s cur=%s",
			l.LapNum, total, l.CarPosition, l.Sector+1, fmtLapTime(l.LastLapMs), fmtLapTime(l.CurrentLapMs))
		if l.PenaltiesS > 0 {
			fmt.Fprintf(&b, " pen=%ds", l.PenaltiesS)
		}
	} else {
		b.WriteString(" lap=-")
	}

	if s.Status.Valid {
		st := s.Status.Value
		fmt.Fprintf(&b, " fuel=%.1fkg(%+.2f laps) tyre=%s age=%d",
			st.FuelInTank, st.FuelRemainingLaps, packet.CompoundName(st.ActualCompound, st.VisualCompound), st.TyreAgeLaps)
	} else {
		b.WriteString(" fuel=-")
	}

	if s.Damage.Valid {
		d := s.Damage.Value
		fmt.Fprintf(&b, " wear=%.0f%% wing=%d/%d", d.MaxWear(), d.FrontLeftWing, d.FrontRightWing)
	} else {
		b.WriteString(" wear=-")
	}

	if s.Telemetry.Valid {
		t := s.Telemetry.Value
		fmt.Fprintf(&b, " spd=%d gear=%d thr=%.2f brk=%.2f", t.SpeedKph, t.Gear, t.Throttle, t.Brake)
	} else {
		b.WriteString(" spd=-")
	}

	if s.Session.Valid {
		ss := s.Session.Value
		rain := "-"
		if ss.RainNext10MinPct != nil {
			rain = fmt.Sprintf("%d%%", *ss.RainNext10MinPct)
		}
		fmt.Fprintf(&b, " sc=%d weather=%d rain10=%s", ss.SafetyCarStatus, ss.Weather, rain)
	} else {
		b.WriteString(" sc=-")
	}

	if s.DecodeErrors > 0 {
		fmt.Fprintf(&b, " decode_err=%d", s.DecodeErrors)
	}
	fmt.Fprintf(&b, " stale=%s", stale)
	return b.String()
}

// Report logs a state line every interval until ctx is cancelled. Nothing is
// logged before the first accepted update.
func (c *Cache) Report(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s := c.Snapshot()
			if s.LatestSessionTime < 0 {
				continue
			}
			logrus.Infof("[state] %s", FormatOneLine(s, s.Stale(c.ttl, s.LatestSessionTime)))
		}
	}
}
