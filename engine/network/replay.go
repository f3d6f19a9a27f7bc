package network

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/klei1984/max-sub005/engine/pathfind"
	"github.com/klei1984/max-sub005/engine/paths"
)

// ErrBadRecord is returned when a replay stream holds a malformed record
var ErrBadRecord = errors.New("network: malformed replay record")

const (
	replayMagic = "MXPR"
	// noSteps marks a record whose search found no path
	noSteps = -1
	// maxReplayCells bounds the raster size accepted from a stream
	maxReplayCells = 1 << 20
)

// recordHeader is the fixed little-endian part of a record
type recordHeader struct {
	RequestID    [16]byte
	Unit         uint32
	StartX       int32
	StartY       int32
	DestX        int32
	DestY        int32
	AirTransport bool
	MaxCost      int32
	Width        int32
	Height       int32
}

// ReplayWriter appends search records to a zstd compressed stream. It
// satisfies paths.Recorder.
type ReplayWriter struct {
	enc     *zstd.Encoder
	out     io.Closer
	records int
}

// NewReplayWriter starts a replay stream on w
func NewReplayWriter(w io.Writer) (*ReplayWriter, error) {
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return nil, fmt.Errorf("replay encoder: %w", err)
	}
	if _, err := io.WriteString(enc, replayMagic); err != nil {
		enc.Close()
		return nil, fmt.Errorf("replay header: %w", err)
	}
	return &ReplayWriter{enc: enc}, nil
}

// CreateReplay creates a replay file for recording
func CreateReplay(path string) (*ReplayWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	rw, err := NewReplayWriter(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	rw.out = f
	return rw, nil
}

// Record writes one search to the stream
func (r *ReplayWriter) Record(rec paths.SearchRecord) error {
	if len(rec.Access) != rec.Width*rec.Height {
		return fmt.Errorf("record %v: %d cells for %dx%d: %w", rec.RequestID, len(rec.Access), rec.Width, rec.Height, ErrBadRecord)
	}
	hdr := recordHeader{
		RequestID:    rec.RequestID,
		Unit:         uint32(rec.Unit),
		StartX:       int32(rec.Start.X),
		StartY:       int32(rec.Start.Y),
		DestX:        int32(rec.Destination.X),
		DestY:        int32(rec.Destination.Y),
		AirTransport: rec.AirTransport,
		MaxCost:      int32(rec.MaxCost),
		Width:        int32(rec.Width),
		Height:       int32(rec.Height),
	}
	if err := binary.Write(r.enc, binary.LittleEndian, hdr); err != nil {
		return err
	}
	if _, err := r.enc.Write(rec.Access); err != nil {
		return err
	}

	n := int32(noSteps)
	if rec.Steps != nil {
		n = int32(len(rec.Steps))
	}
	if err := binary.Write(r.enc, binary.LittleEndian, n); err != nil {
		return err
	}
	steps := make([]int8, 0, 2*len(rec.Steps))
	for _, s := range rec.Steps {
		steps = append(steps, int8(s.X), int8(s.Y))
	}
	if err := binary.Write(r.enc, binary.LittleEndian, steps); err != nil {
		return err
	}
	r.records++
	return nil
}

// Records returns how many searches were written
func (r *ReplayWriter) Records() int { return r.records }

// Close flushes the stream and closes the file it was created on
func (r *ReplayWriter) Close() error {
	err := r.enc.Close()
	if r.out != nil {
		if cerr := r.out.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

var _ paths.Recorder = (*ReplayWriter)(nil)

// ReplayReader reads search records back
type ReplayReader struct {
	dec *zstd.Decoder
	r   *bufio.Reader
	in  io.Closer
}

// NewReplayReader opens a replay stream read from r
func NewReplayReader(r io.Reader) (*ReplayReader, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("replay decoder: %w", err)
	}
	rr := &ReplayReader{dec: dec, r: bufio.NewReader(dec)}
	magic := make([]byte, len(replayMagic))
	if _, err := io.ReadFull(rr.r, magic); err != nil || string(magic) != replayMagic {
		dec.Close()
		return nil, fmt.Errorf("replay header: %w", ErrBadRecord)
	}
	return rr, nil
}

// OpenReplay opens a replay file
func OpenReplay(path string) (*ReplayReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	rr, err := NewReplayReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	rr.in = f
	return rr, nil
}

// Next returns the next record, io.EOF after the last one
func (r *ReplayReader) Next() (paths.SearchRecord, error) {
	var hdr recordHeader
	if err := binary.Read(r.r, binary.LittleEndian, &hdr); err != nil {
		if errors.Is(err, io.EOF) {
			return paths.SearchRecord{}, io.EOF
		}
		return paths.SearchRecord{}, truncated(err)
	}
	if hdr.Width <= 0 || hdr.Height <= 0 || int(hdr.Width)*int(hdr.Height) > maxReplayCells {
		return paths.SearchRecord{}, fmt.Errorf("raster %dx%d: %w", hdr.Width, hdr.Height, ErrBadRecord)
	}

	rec := paths.SearchRecord{
		RequestID:    uuid.UUID(hdr.RequestID),
		Unit:         pathfind.UnitID(hdr.Unit),
		Start:        pathfind.Point{X: int(hdr.StartX), Y: int(hdr.StartY)},
		Destination:  pathfind.Point{X: int(hdr.DestX), Y: int(hdr.DestY)},
		AirTransport: hdr.AirTransport,
		MaxCost:      int(hdr.MaxCost),
		Width:        int(hdr.Width),
		Height:       int(hdr.Height),
		Access:       make([]byte, int(hdr.Width)*int(hdr.Height)),
	}
	if _, err := io.ReadFull(r.r, rec.Access); err != nil {
		return paths.SearchRecord{}, truncated(err)
	}

	var n int32
	if err := binary.Read(r.r, binary.LittleEndian, &n); err != nil {
		return paths.SearchRecord{}, truncated(err)
	}
	if n == noSteps {
		return rec, nil
	}
	if n < 0 || int(n) > int(hdr.Width)*int(hdr.Height) {
		return paths.SearchRecord{}, fmt.Errorf("record %v: %d steps: %w", rec.RequestID, n, ErrBadRecord)
	}
	raw := make([]int8, 2*n)
	if err := binary.Read(r.r, binary.LittleEndian, raw); err != nil {
		return paths.SearchRecord{}, truncated(err)
	}
	rec.Steps = make([]pathfind.Point, n)
	for i := range rec.Steps {
		rec.Steps[i] = pathfind.Point{X: int(raw[2*i]), Y: int(raw[2*i+1])}
	}
	return rec, nil
}

// ReadAll returns every remaining record
func (r *ReplayReader) ReadAll() ([]paths.SearchRecord, error) {
	var recs []paths.SearchRecord
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return recs, nil
		}
		if err != nil {
			return recs, err
		}
		recs = append(recs, rec)
	}
}

// Close releases the decoder and closes the file it was opened on
func (r *ReplayReader) Close() error {
	r.dec.Close()
	if r.in != nil {
		return r.in.Close()
	}
	return nil
}

func truncated(err error) error {
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return fmt.Errorf("truncated record: %w", ErrBadRecord)
	}
	return err
}
