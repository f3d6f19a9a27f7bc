package paths

import (
	"log"
	"time"

	"github.com/klei1984/max-sub005/engine/pathfind"
	"github.com/klei1984/max-sub005/engine/worker"
)

type completedJob = worker.Completed[*Job, *pathfind.PathResult]

// Manager schedules path requests: it prepares each request's access map on
// the caller's goroutine, hands the search to a background worker and
// delivers results when polled. All methods must be called from the same
// goroutine.
type Manager struct {
	world             pathfind.World
	access            *pathfind.AccessMap
	transporterAccess *pathfind.AccessMap

	pending    []*PathRequest
	dispatched map[uint32]*PathRequest
	cancelled  map[uint32]struct{}
	nextJobID  uint32

	thread *worker.Thread[*Job, *pathfind.PathResult]
	// inline holds results of searches run without the worker
	inline []completedJob

	budget      ThinkBudget
	logger      *log.Logger
	metrics     *Metrics
	replicator  Replicator
	recorder    Recorder
	pump        func()
	debug       DebugMode
	synchronous bool
	idleDelay   time.Duration

	lastSearch *pathfind.PathSearchContext
}

// Option configures a Manager
type Option func(*Manager)

func WithLogger(l *log.Logger) Option { return func(m *Manager) { m.logger = l } }

func WithBudget(b ThinkBudget) Option { return func(m *Manager) { m.budget = b } }

func WithMetrics(mt *Metrics) Option { return func(m *Manager) { m.metrics = mt } }

func WithReplicator(r Replicator) Option { return func(m *Manager) { m.replicator = r } }

func WithRecorder(r Recorder) Option { return func(m *Manager) { m.recorder = r } }

// WithInputPump sets a function run before every dispatch iteration so the
// frame keeps handling input while paths are prepared.
func WithInputPump(f func()) Option { return func(m *Manager) { m.pump = f } }

// WithSynchronous runs every search inline instead of on the worker
func WithSynchronous(sync bool) Option { return func(m *Manager) { m.synchronous = sync } }

func WithIdleDelay(d time.Duration) Option { return func(m *Manager) { m.idleDelay = d } }

func WithDebug(d DebugMode) Option { return func(m *Manager) { m.debug = d } }

// NewManager creates a manager over world and starts its worker
func NewManager(world pathfind.World, opts ...Option) *Manager {
	m := &Manager{
		world:             world,
		access:            &pathfind.AccessMap{},
		transporterAccess: &pathfind.AccessMap{},
		dispatched:        make(map[uint32]*PathRequest),
		cancelled:         make(map[uint32]struct{}),
		budget:            Unlimited,
		logger:            log.New(log.Writer(), "[paths] ", log.Flags()),
	}
	for _, opt := range opts {
		opt(m)
	}

	if !m.synchronous {
		m.thread = worker.NewThread[*Job, *pathfind.PathResult](m.idleDelay)
		if !m.thread.Start() {
			m.logger.Printf("worker failed to start, searching synchronously")
		}
	}
	return m
}

// SetWorld replaces the world snapshot used for new requests
func (m *Manager) SetWorld(w pathfind.World) { m.world = w }

func (m *Manager) SetDebug(d DebugMode) { m.debug = d }

func (m *Manager) Debug() DebugMode { return m.debug }

// LastSearch returns the most recently polled search while debug mode is
// DebugDrawSearches.
func (m *Manager) LastSearch() *pathfind.PathSearchContext { return m.lastSearch }

// Access returns the raster built for the most recent request
func (m *Manager) Access() *pathfind.AccessMap { return m.access }

func (m *Manager) workerRunning() bool {
	return m.thread != nil && m.thread.IsRunning()
}

// PushBack queues a request behind all pending ones
func (m *Manager) PushBack(req *PathRequest) {
	m.pending = append(m.pending, req)
	m.updatePending()
}

// PushFront queues a request ahead of all pending ones
func (m *Manager) PushFront(req *PathRequest) {
	m.pending = append([]*PathRequest{req}, m.pending...)
	m.updatePending()
}

// PendingCount returns the number of requests awaiting dispatch
func (m *Manager) PendingCount() int { return len(m.pending) }

// DispatchedCount returns the number of requests whose search is running
func (m *Manager) DispatchedCount() int { return len(m.dispatched) }

// DispatchJobs prepares pending requests while the think budget allows,
// polling finished searches between them.
func (m *Manager) DispatchJobs() {
	for len(m.pending) > 0 && m.budget.HaveTimeToThink() {
		if m.pump != nil {
			m.pump()
		}
		m.PollResults()
		if len(m.pending) == 0 {
			break
		}

		req := m.pending[0]
		m.pending[0] = nil
		m.pending = m.pending[1:]
		m.PrepareAndDispatchJob(req)
	}
	m.updatePending()
}

// PrepareAndDispatchJob resolves trivial requests immediately and submits
// a search for the rest.
func (m *Manager) PrepareAndDispatchJob(req *PathRequest) {
	start, dest := req.Start(), req.Destination

	if req.Reuse != nil && req.Reuse(req) {
		if m.debug >= DebugStatistics {
			m.logger.Printf("%v: keeping cached path", req)
		}
		m.metrics.outcome(OutcomeReused)
		return
	}

	if start == dest {
		m.finish(req, &GroundPath{End: dest}, OutcomeTrivial)
		return
	}

	agent := req.Client
	m.access.Init(m.world, agent, req.Flags, req.Caution)

	if !m.access.InBounds(dest) {
		m.finish(req, nil, OutcomeNoPath)
		return
	}

	if pathfind.SquaredDistance(start, dest) <= 2 {
		viable := req.BoardTransport && m.world.ReceiverAt(agent, dest) != nil
		if !viable {
			viable = m.access.Cost(dest) > 0
		}
		if viable {
			m.finish(req, &GroundPath{End: dest, Steps: []pathfind.Point{dest.Sub(start)}}, OutcomeFound)
		} else {
			m.finish(req, nil, OutcomeNoPath)
		}
		return
	}

	if req.Transporter != nil {
		m.transporterAccess.Init(m.world, req.Transporter, req.Flags, pathfind.CautionAvoidAllDamage)
		m.access.MergeTransporter(m.transporterAccess)
	}

	m.access.OpenStart(start)
	if req.BoardTransport {
		if r := m.world.ReceiverAt(agent, dest); r != nil {
			m.access.OpenReceiver(r)
		}
	}

	if !m.access.CarveApproachRing(dest, req.MinimumDistance) {
		m.finish(req, nil, OutcomeNoPath)
		return
	}

	pathfind.NewPathFill(m.access).Fill(start)
	if !m.access.Has(dest, pathfind.CellVisited) {
		m.finish(req, nil, OutcomeNoPath)
		return
	}

	m.nextJobID++
	job := &Job{
		ID:      m.nextJobID,
		Request: req,
		Start:   start,
		Context: pathfind.NewPathSearchContext(m.access.Clone(), start, dest, req.MaxCost, req.AirTransport()),
	}
	m.dispatched[job.ID] = req
	if m.metrics != nil {
		m.metrics.Dispatched.Inc()
	}

	if m.workerRunning() {
		m.thread.Submit(job)
		return
	}
	res := job.Execute()
	m.inline = append(m.inline, completedJob{Job: job, Result: res})
}

func (m *Manager) poll() (completedJob, bool) {
	if len(m.inline) > 0 {
		c := m.inline[0]
		m.inline[0] = completedJob{}
		m.inline = m.inline[1:]
		return c, true
	}
	if m.thread != nil {
		return m.thread.Poll()
	}
	return completedJob{}, false
}

// PollResults delivers every finished search. Results of cancelled
// requests are dropped.
func (m *Manager) PollResults() {
	for {
		c, ok := m.poll()
		if !ok {
			return
		}
		job, res := c.Job, c.Result

		if _, gone := m.cancelled[job.ID]; gone {
			delete(m.cancelled, job.ID)
			if m.metrics != nil {
				m.metrics.Discarded.Inc()
			}
			continue
		}
		req, ok := m.dispatched[job.ID]
		if !ok {
			continue
		}
		delete(m.dispatched, job.ID)

		if m.metrics != nil {
			m.metrics.SearchDuration.Observe(job.Elapsed.Seconds())
		}
		if m.debug >= DebugStatistics && res != nil {
			st := res.Stats
			m.logger.Printf("%v: %d steps in %v, evaluated=%d calls=%d inserted=%d depth=%d",
				req, len(res.Steps), job.Elapsed, st.EvaluatedSquares, st.EvaluatorCalls, st.SquareInsertions, st.MaxDepth)
		}
		if m.debug >= DebugDrawSearches {
			m.lastSearch = job.Context
		}
		if m.recorder != nil {
			if err := m.recorder.Record(newSearchRecord(job, res)); err != nil {
				m.logger.Printf("record search %v: %v", req, err)
			}
		}

		if res == nil {
			m.finish(req, nil, OutcomeNoPath)
			continue
		}
		m.finish(req, &GroundPath{End: res.Destination, Steps: res.Steps}, OutcomeFound)
	}
}

func (m *Manager) finish(req *PathRequest, path *GroundPath, outcome string) {
	req.Finish(path)
	m.metrics.outcome(outcome)
	if path == nil && m.debug >= DebugStatistics {
		m.logger.Printf("%v: no path", req)
	}
	if m.replicator != nil && m.replicator.IsReplicated() {
		m.replicator.OrderChanged(req.Client, req.Destination, path != nil)
	}
}

func (m *Manager) cancel(req *PathRequest) {
	req.Cancel()
	m.metrics.outcome(OutcomeCancelled)
}

// RemoveRequest withdraws req and reports whether the manager held it. A
// request whose search is running is cancelled now and its result dropped
// on arrival.
func (m *Manager) RemoveRequest(req *PathRequest) bool {
	for i, p := range m.pending {
		if p == req {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			m.updatePending()
			m.cancel(req)
			return true
		}
	}
	for id, d := range m.dispatched {
		if d == req {
			delete(m.dispatched, id)
			m.cancelled[id] = struct{}{}
			m.cancel(req)
			return true
		}
	}
	return false
}

// RemoveRequestsFor withdraws every request of a unit and returns how many
// were removed.
func (m *Manager) RemoveRequestsFor(unit pathfind.UnitID) int {
	var victims []*PathRequest
	for _, p := range m.pending {
		if p.Client.ID == unit {
			victims = append(victims, p)
		}
	}
	for _, d := range m.dispatched {
		if d.Client.ID == unit {
			victims = append(victims, d)
		}
	}
	for _, v := range victims {
		m.RemoveRequest(v)
	}
	return len(victims)
}

// HasRequest reports whether unit has a pending or running request
func (m *Manager) HasRequest(unit pathfind.UnitID) bool {
	for _, p := range m.pending {
		if p.Client.ID == unit {
			return true
		}
	}
	for _, d := range m.dispatched {
		if d.Client.ID == unit {
			return true
		}
	}
	return false
}

// RequestCount returns the number of open requests of a team
func (m *Manager) RequestCount(team pathfind.TeamID) int {
	n := 0
	for _, p := range m.pending {
		if p.Team() == team {
			n++
		}
	}
	for _, d := range m.dispatched {
		if d.Team() == team {
			n++
		}
	}
	return n
}

// Clear cancels every open request
func (m *Manager) Clear() {
	pending := m.pending
	m.pending = nil
	for _, p := range pending {
		m.cancel(p)
	}
	for id, d := range m.dispatched {
		delete(m.dispatched, id)
		m.cancelled[id] = struct{}{}
		m.cancel(d)
	}
	m.updatePending()
}

// Close cancels every open request and stops the worker
func (m *Manager) Close() {
	m.Clear()
	if m.thread != nil {
		m.thread.Stop()
	}
	m.inline = nil
}

func (m *Manager) updatePending() {
	if m.metrics != nil {
		m.metrics.Pending.Set(float64(len(m.pending)))
	}
}
