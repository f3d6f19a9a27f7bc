package paths

import (
	"github.com/google/uuid"

	"github.com/klei1984/max-sub005/engine/pathfind"
)

// Replicator forwards order changes in a networked session
type Replicator interface {
	IsReplicated() bool
	// OrderChanged announces that unit now moves toward dest, or stops when
	// no path was found.
	OrderChanged(unit *pathfind.Unit, dest pathfind.Point, found bool)
}

// SearchRecord is everything needed to repeat one search
type SearchRecord struct {
	RequestID    uuid.UUID
	Unit         pathfind.UnitID
	Start        pathfind.Point
	Destination  pathfind.Point
	AirTransport bool
	MaxCost      int
	Width        int
	Height       int
	Access       []byte
	// Steps is nil when the search found no path
	Steps []pathfind.Point
}

// Recorder stores finished searches
type Recorder interface {
	Record(rec SearchRecord) error
}

func newSearchRecord(job *Job, res *pathfind.PathResult) SearchRecord {
	ctx := job.Context
	access := ctx.Access()
	rec := SearchRecord{
		RequestID:    job.Request.ID,
		Unit:         job.Request.Client.ID,
		Start:        ctx.Start(),
		Destination:  ctx.Destination(),
		AirTransport: ctx.AirTransport(),
		MaxCost:      ctx.MaxCost(),
		Width:        access.Width,
		Height:       access.Height,
		Access:       access.Raw(),
	}
	if res != nil {
		rec.Steps = res.Steps
	}
	return rec
}

// Replay runs a recorded search again on a fresh context
func (rec SearchRecord) Replay() *pathfind.PathResult {
	m := pathfind.AccessMapFromRaw(rec.Width, rec.Height, rec.Access)
	return pathfind.NewPathSearchContext(m, rec.Start, rec.Destination, rec.MaxCost, rec.AirTransport).RunSearch()
}
