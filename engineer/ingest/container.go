package ingest

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Container format constants.
const (
	ContainerVersion uint16 = 1

	containerHeaderSize = 10
	recordHeaderSize    = 12

	// MaxRecordSize bounds a single payload. Datagrams are far smaller; a
	// larger length means the file is corrupt.
	MaxRecordSize = 64 << 10
)

var containerMagic = [8]byte{'I', 'N', 'G', 'R', 'E', 'C', '1', 0}

var (
	ErrBadMagic           = errors.New("not a recording: bad magic")
	ErrUnsupportedVersion = errors.New("unsupported recording version")
	ErrTruncatedRecord    = errors.New("truncated record")
	ErrRecordTooLarge     = errors.New("record larger than allowed")
)

// Record is one recorded datagram.
type Record struct {
	TimestampNs uint64
	Payload     []byte
}

// ContainerWriter appends records to a recording. Call Flush before closing
// the underlying writer.
type ContainerWriter struct {
	w   *bufio.Writer
	hdr [recordHeaderSize]byte
}

// NewContainerWriter writes the container header to w.
func NewContainerWriter(w io.Writer) (*ContainerWriter, error) {
	bw := bufio.NewWriterSize(w, 64<<10)
	var hdr [containerHeaderSize]byte
	copy(hdr[:], containerMagic[:])
	binary.LittleEndian.PutUint16(hdr[8:], ContainerVersion)
	if _, err := bw.Write(hdr[:]); err != nil {
		return nil, fmt.Errorf("writing container header: %w", err)
	}
	return &ContainerWriter{w: bw}, nil
}

// WriteRecord appends one record.
func (cw *ContainerWriter) WriteRecord(tsNs uint64, payload []byte) error {
	if len(payload) > MaxRecordSize {
		return fmt.Errorf("%w: %d bytes", ErrRecordTooLarge, len(payload))
	}
	binary.LittleEndian.PutUint64(cw.hdr[0:], tsNs)
	binary.LittleEndian.PutUint32(cw.hdr[8:], uint32(len(payload)))
	if _, err := cw.w.Write(cw.hdr[:]); err != nil {
		return err
	}
	_, err := cw.w.Write(payload)
	return err
}

// Flush writes buffered records to the underlying writer.
func (cw *ContainerWriter) Flush() error {
	return cw.w.Flush()
}

// ContainerReader reads records in file order.
type ContainerReader struct {
	r   *bufio.Reader
	hdr [recordHeaderSize]byte
}

// NewContainerReader validates the container header.
func NewContainerReader(r io.Reader) (*ContainerReader, error) {
	br := bufio.NewReaderSize(r, 64<<10)
	var hdr [containerHeaderSize]byte
	if _, err := io.ReadFull(br, hdr[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: header too short", ErrBadMagic)
		}
		return nil, err
	}
	if !bytes.Equal(hdr[:8], containerMagic[:]) {
		return nil, fmt.Errorf("%w: %q", ErrBadMagic, hdr[:8])
	}
	if v := binary.LittleEndian.Uint16(hdr[8:]); v != ContainerVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}
	return &ContainerReader{r: br}, nil
}

// Next returns the next record. It returns io.EOF at a clean end of file and
// ErrTruncatedRecord when the file ends inside a record. The payload is a
// fresh slice owned by the caller.
func (cr *ContainerReader) Next() (Record, error) {
	if _, err := io.ReadFull(cr.r, cr.hdr[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return Record{}, fmt.Errorf("%w: record header", ErrTruncatedRecord)
		}
		return Record{}, err
	}
	rec := Record{TimestampNs: binary.LittleEndian.Uint64(cr.hdr[0:])}
	n := binary.LittleEndian.Uint32(cr.hdr[8:])
	if n > MaxRecordSize {
		return Record{}, fmt.Errorf("%w: %d bytes", ErrRecordTooLarge, n)
	}
	rec.Payload = make([]byte, n)
	if _, err := io.ReadFull(cr.r, rec.Payload); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Record{}, fmt.Errorf("%w: want %d payload bytes", ErrTruncatedRecord, n)
		}
		return Record{}, err
	}
	return rec, nil
}
