package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/ingeniero-f1/ingeniero/engineer/packet"
)

// Sample is one timeline entry of an inspected recording.
type Sample struct {
	Offset time.Duration // since the first record
	Header packet.Header
	Length int
}

// Summary describes a recording.
type Summary struct {
	Path         string
	FileSize     int64
	Records      int
	PayloadBytes uint64
	Duration     time.Duration
	BadHeaders   int
	// Truncated is set when the file ends inside a record, as happens when
	// the process is killed while recording.
	Truncated bool

	ByID    map[uint8]int
	Lengths map[int]int
	Last    *packet.Header

	// Damage packets decoded for the recorded player, and the worst front
	// wing damage seen.
	DamagePackets     int
	MaxFrontLeftWing  uint8
	MaxFrontRightWing uint8

	Timeline []Sample
}

// Inspect scans a recording. The timeline gets one Sample per interval of
// recording time given by every; zero leaves it empty.
func Inspect(path string, every time.Duration) (*Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening recording: %w", err)
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	cr, err := NewContainerReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	s := &Summary{
		Path:     path,
		FileSize: fi.Size(),
		ByID:     make(map[uint8]int),
		Lengths:  make(map[int]int),
	}
	var (
		firstTs   uint64
		nextShown time.Duration
	)
	for {
		rec, err := cr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, ErrTruncatedRecord) {
			s.Truncated = true
			break
		}
		if err != nil {
			return s, fmt.Errorf("%s: record %d: %w", path, s.Records+1, err)
		}

		if s.Records == 0 {
			firstTs = rec.TimestampNs
		}
		s.Records++
		s.PayloadBytes += uint64(len(rec.Payload))
		s.Lengths[len(rec.Payload)]++
		var offset time.Duration
		if rec.TimestampNs > firstTs {
			offset = time.Duration(rec.TimestampNs - firstTs)
		}
		s.Duration = max(s.Duration, offset)

		hdr, ok := packet.ParseHeader(rec.Payload)
		if !ok {
			s.BadHeaders++
			continue
		}
		s.ByID[hdr.PacketID]++
		s.Last = &hdr

		if hdr.PacketID == packet.IDCarDamage {
			if dmg, ok := packet.DecodeDamage(rec.Payload, hdr.PlayerCarIndex); ok {
				s.DamagePackets++
				s.MaxFrontLeftWing = max(s.MaxFrontLeftWing, dmg.FrontLeftWing)
				s.MaxFrontRightWing = max(s.MaxFrontRightWing, dmg.FrontRightWing)
			}
		}

		if every > 0 && offset >= nextShown {
			s.Timeline = append(s.Timeline, Sample{Offset: offset, Header: hdr, Length: len(rec.Payload)})
			nextShown = offset + every
		}
	}
	return s, nil
}

// WriteText renders the summary for a terminal.
func (s *Summary) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, smp := range s.Timeline {
		h := smp.Header
		fmt.Fprintf(tw, "t=%8.3fs\tframe=%d\tid=%d (%s)\tsess_t=%.3f\tfmt=%d\tyear=%d\tplayer=%d\tlen=%d\n",
			smp.Offset.Seconds(), h.FrameIdentifier, h.PacketID, packet.IDName(h.PacketID),
			h.SessionTime, h.PacketFormat, h.GameYear, h.PlayerCarIndex, smp.Length)
	}
	if len(s.Timeline) > 0 {
		fmt.Fprintln(tw)
	}

	fmt.Fprintf(tw, "file:\t%s\n", s.Path)
	fmt.Fprintf(tw, "size:\t%d bytes\n", s.FileSize)
	fmt.Fprintf(tw, "records:\t%d (%d payload bytes)\n", s.Records, s.PayloadBytes)
	fmt.Fprintf(tw, "duration:\t%.3fs\n", s.Duration.Seconds())
	fmt.Fprintf(tw, "bad headers:\t%d\n", s.BadHeaders)
	if s.Truncated {
		fmt.Fprintf(tw, "truncated:\tyes\n")
	}
	if s.Last != nil {
		fmt.Fprintf(tw, "last:\tsession=%x sess_t=%.3f frame=%d id=%d\n",
			s.Last.SessionUID, s.Last.SessionTime, s.Last.FrameIdentifier, s.Last.PacketID)
	}
	if s.DamagePackets > 0 {
		fmt.Fprintf(tw, "front wing:\tmax FL=%d%% FR=%d%% over %d damage packets\n",
			s.MaxFrontLeftWing, s.MaxFrontRightWing, s.DamagePackets)
	}

	ids := make([]int, 0, len(s.ByID))
	for id := range s.ByID {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	fmt.Fprintln(tw, "packet ids:")
	for _, id := range ids {
		fmt.Fprintf(tw, "  %d\t%s\t%d\n", id, packet.IDName(uint8(id)), s.ByID[uint8(id)])
	}

	lengths := make([]int, 0, len(s.Lengths))
	for n := range s.Lengths {
		lengths = append(lengths, n)
	}
	sort.Ints(lengths)
	fmt.Fprintln(tw, "lengths:")
	for _, n := range lengths {
		fmt.Fprintf(tw, "  %d\tbytes\t%d\n", n, s.Lengths[n])
	}
	return tw.Flush()
}
