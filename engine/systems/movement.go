package systems

import (
	"log"

	"github.com/klei1984/max-sub005/engine/core"
	"github.com/klei1984/max-sub005/engine/pathfind"
	"github.com/klei1984/max-sub005/engine/paths"
)

// MovementSystem issues path requests for move orders and walks units along
// the ground paths they receive. A unit whose next cell is taken suspends
// its path and asks for a new one ahead of all other requests.
type MovementSystem struct {
	Paths *paths.Manager
	View  *WorldView
	// MaxCost is the budget of issued requests, paths.DefaultMaxCost if zero
	MaxCost int
}

func (s *MovementSystem) Priority() int { return 10 }

func (s *MovementSystem) Update(w *core.World, dt float64) {
	ids := w.Query(core.CompPosition, core.CompMovable, core.CompUnit)

	occupied := make(map[pathfind.Point]core.EntityID)
	for _, id := range w.Query(core.CompPosition, core.CompUnit) {
		info := w.Get(id, core.CompUnit).(*core.Unit)
		if info.Flags&(pathfind.UnitGroundCover|pathfind.UnitMobileAir) != 0 {
			continue
		}
		occupied[w.Get(id, core.CompPosition).(*core.Position).Point] = id
	}

	for _, id := range ids {
		pos := w.Get(id, core.CompPosition).(*core.Position)
		mov := w.Get(id, core.CompMovable).(*core.Movable)
		info := w.Get(id, core.CompUnit).(*core.Unit)

		if info.Orders != pathfind.OrderMove {
			continue
		}
		if mov.Path == nil {
			if mov.Request == nil {
				s.request(w, id, false)
			}
			continue
		}
		if !mov.Advance(dt) {
			continue
		}

		next, ok := mov.NextStep(pos.Point)
		if !ok {
			s.arrive(w, id, mov, info)
			continue
		}
		if other, taken := occupied[next]; taken && other != id && info.Flags&pathfind.UnitMobileAir == 0 {
			mov.Suspended = true
			mov.ClearPath()
			w.Events.Emit(core.Event{Type: core.EvtPathBlocked, Tick: w.TickCount, Payload: core.PathEvent{Entity: id, Destination: mov.Destination}})
			s.request(w, id, true)
			continue
		}

		delete(occupied, pos.Point)
		pos.Point = next
		occupied[next] = id
		mov.PathIdx++
		if mov.PathIdx >= len(mov.Path.Steps) {
			s.arrive(w, id, mov, info)
		}
	}
}

func (s *MovementSystem) arrive(w *core.World, id core.EntityID, mov *core.Movable, info *core.Unit) {
	mov.ClearPath()
	mov.Suspended = false
	info.Orders = pathfind.OrderAwait
	w.Events.Emit(core.Event{Type: core.EvtUnitArrived, Tick: w.TickCount, Payload: core.PathEvent{Entity: id, Destination: mov.Destination}})
}

func (s *MovementSystem) request(w *core.World, id core.EntityID, urgent bool) {
	unit := s.View.Unit(id)
	if unit == nil {
		// not refreshed yet, retried next tick
		return
	}
	mov := w.Get(id, core.CompMovable).(*core.Movable)

	req := paths.NewPathRequest(unit, mov.Destination)
	req.Caution = mov.Caution
	req.MinimumDistance = mov.MinimumDistance
	req.Flags = mov.Flags
	if s.MaxCost > 0 {
		req.MaxCost = s.MaxCost
	}
	if urgent {
		// route around whatever blocked the last path
		req.Flags |= pathfind.AccessAllBlock
	}
	req.OnFinish = func(r *paths.PathRequest, path *paths.GroundPath) {
		s.finished(w, id, r, path)
	}
	req.OnCancel = func(r *paths.PathRequest) {
		if mov.Request == r {
			mov.Request = nil
		}
		w.Events.Emit(core.Event{Type: core.EvtPathCancelled, Tick: w.TickCount, Payload: core.PathEvent{Entity: id, Destination: r.Destination}})
	}

	mov.Request = req
	if urgent {
		s.Paths.PushFront(req)
	} else {
		s.Paths.PushBack(req)
	}
}

func (s *MovementSystem) finished(w *core.World, id core.EntityID, r *paths.PathRequest, path *paths.GroundPath) {
	if !w.Alive(id) {
		return
	}
	mov := w.Get(id, core.CompMovable).(*core.Movable)
	info := w.Get(id, core.CompUnit).(*core.Unit)
	if mov.Request == r {
		mov.Request = nil
	}
	mov.Suspended = false

	if path == nil {
		info.Orders = pathfind.OrderAwait
		log.Printf("unit %d: no path to %v", id, r.Destination)
		w.Events.Emit(core.Event{Type: core.EvtPathFailed, Tick: w.TickCount, Payload: core.PathEvent{Entity: id, Destination: r.Destination}})
		return
	}

	w.Events.Emit(core.Event{Type: core.EvtPathFound, Tick: w.TickCount, Payload: core.PathEvent{Entity: id, Destination: r.Destination, Steps: path.Len()}})
	if path.Len() == 0 {
		s.arrive(w, id, mov, info)
		return
	}
	mov.Path = path
	mov.PathIdx = 0
}

// OrderMove sends a unit toward dest, withdrawing any request it still has
// open
func OrderMove(w *core.World, pm *paths.Manager, id core.EntityID, dest pathfind.Point, caution pathfind.CautionLevel) bool {
	mov, ok := w.Get(id, core.CompMovable).(*core.Movable)
	if !ok {
		return false
	}
	info, ok := w.Get(id, core.CompUnit).(*core.Unit)
	if !ok {
		return false
	}
	if mov.Request != nil {
		pm.RemoveRequest(mov.Request)
		mov.Request = nil
	}
	mov.ClearPath()
	mov.Suspended = false
	mov.Destination = dest
	mov.Caution = caution
	info.Orders = pathfind.OrderMove
	w.Events.Emit(core.Event{Type: core.EvtUnitMoveOrder, Tick: w.TickCount, Payload: core.PathEvent{Entity: id, Destination: dest}})
	return true
}

// OrderStop halts a unit where it stands
func OrderStop(w *core.World, pm *paths.Manager, id core.EntityID) bool {
	mov, ok := w.Get(id, core.CompMovable).(*core.Movable)
	if !ok {
		return false
	}
	info, ok := w.Get(id, core.CompUnit).(*core.Unit)
	if !ok {
		return false
	}
	if mov.Request != nil {
		pm.RemoveRequest(mov.Request)
		mov.Request = nil
	}
	mov.ClearPath()
	mov.Suspended = false
	info.Orders = pathfind.OrderAwait
	return true
}
