package paths

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/klei1984/max-sub005/engine/pathfind"
)

// DefaultMaxCost is the cost budget of a request that does not set one
const DefaultMaxCost = 32767

// GroundPath is a found route: unit steps from the client's position
// toward End.
type GroundPath struct {
	End   pathfind.Point
	Steps []pathfind.Point
}

// Len returns the number of steps
func (g *GroundPath) Len() int { return len(g.Steps) }

// Cells returns the cells entered when walking the path from start
func (g *GroundPath) Cells(start pathfind.Point) []pathfind.Point {
	cells := make([]pathfind.Point, 0, len(g.Steps))
	p := start
	for _, s := range g.Steps {
		p = p.Add(s)
		cells = append(cells, p)
	}
	return cells
}

// PathRequest asks for a route for one unit. The manager owns it from
// PushBack or PushFront until it is finished or cancelled.
type PathRequest struct {
	ID          uuid.UUID
	Client      *pathfind.Unit
	Transporter *pathfind.Unit
	Destination pathfind.Point

	Flags   pathfind.AccessFlags
	Caution pathfind.CautionLevel
	MaxCost int
	// MinimumDistance is the squared radius around Destination that counts
	// as arrival; zero requires the exact cell.
	MinimumDistance int
	BoardTransport  bool
	Optimize        bool

	// OnFinish receives the path, or nil when none exists
	OnFinish func(r *PathRequest, path *GroundPath)
	OnCancel func(r *PathRequest)
	// Reuse reports whether the client can keep a path it already holds, in
	// which case the request is dropped without a callback.
	Reuse func(r *PathRequest) bool

	finished  bool
	cancelled bool
}

// NewPathRequest creates a request with default budget and options
func NewPathRequest(client *pathfind.Unit, destination pathfind.Point) *PathRequest {
	return &PathRequest{
		ID:          uuid.New(),
		Client:      client,
		Destination: destination,
		MaxCost:     DefaultMaxCost,
		Optimize:    true,
	}
}

// Start returns the client's current position
func (r *PathRequest) Start() pathfind.Point { return r.Client.Position }

// AirTransport reports whether the request rides an air transporter, whose
// searches may not cross between transport-excluded and air-passable cells
func (r *PathRequest) AirTransport() bool {
	return r.Transporter != nil && r.Transporter.Kind == pathfind.KindAirTransport
}

// Team returns the client's team
func (r *PathRequest) Team() pathfind.TeamID { return r.Client.Team }

// Finish delivers the result. Only the first call on a request that was
// not cancelled reaches OnFinish.
func (r *PathRequest) Finish(path *GroundPath) {
	if r.finished || r.cancelled {
		return
	}
	r.finished = true
	if r.OnFinish != nil {
		r.OnFinish(r, path)
	}
}

// Cancel notifies the client that the request was withdrawn. Only the first
// call on an unfinished request reaches OnCancel.
func (r *PathRequest) Cancel() {
	if r.finished || r.cancelled {
		return
	}
	r.cancelled = true
	if r.OnCancel != nil {
		r.OnCancel(r)
	}
}

// Done reports whether the request was finished or cancelled
func (r *PathRequest) Done() bool { return r.finished || r.cancelled }

func (r *PathRequest) String() string {
	return fmt.Sprintf("%s unit=%d %v->%v caution=%q optimize=%t", r.ID.String()[:8], r.Client.ID, r.Start(), r.Destination, r.Caution, r.Optimize)
}
