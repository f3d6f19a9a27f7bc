package network

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/xtaci/kcp-go/v5"

	"github.com/klei1984/max-sub005/engine/core"
	"github.com/klei1984/max-sub005/engine/pathfind"
	"github.com/klei1984/max-sub005/engine/paths"
	"github.com/klei1984/max-sub005/engine/systems"
)

// DefaultInputDelay is the number of ticks between queueing a command and
// applying it
const DefaultInputDelay = 2

// LockstepManager synchronizes game ticks across network. Commands travel
// over a reliable KCP session so both peers apply the same orders.
type LockstepManager struct {
	mu          sync.Mutex
	localTeam   pathfind.TeamID
	pendingCmds map[uint64][]GameCommand // tick -> commands
	inputDelay  int
	listener    *kcp.Listener
	conn        *kcp.UDPSession
	isHost      bool
	connected   atomic.Bool
}

func NewLockstepManager(localTeam pathfind.TeamID, isHost bool) *LockstepManager {
	return &LockstepManager{
		localTeam:   localTeam,
		pendingCmds: make(map[uint64][]GameCommand),
		inputDelay:  DefaultInputDelay,
		isHost:      isHost,
	}
}

// LocalTeam returns the team commanded from this peer
func (lm *LockstepManager) LocalTeam() pathfind.TeamID { return lm.localTeam }

func (lm *LockstepManager) IsHost() bool { return lm.isHost }

// Host starts listening for the peer
func (lm *LockstepManager) Host(port int) error {
	l, err := kcp.ListenWithOptions(fmt.Sprintf(":%d", port), nil, 0, 0)
	if err != nil {
		return fmt.Errorf("host: %w", err)
	}
	lm.mu.Lock()
	lm.listener = l
	lm.mu.Unlock()
	lm.connected.Store(true)
	go lm.acceptLoop(l)
	return nil
}

// Join connects to a host
func (lm *LockstepManager) Join(host string, port int) error {
	conn, err := kcp.DialWithOptions(net.JoinHostPort(host, strconv.Itoa(port)), nil, 0, 0)
	if err != nil {
		return fmt.Errorf("join: %w", err)
	}
	lm.attach(conn)
	lm.connected.Store(true)
	return nil
}

// acceptLoop takes the first session that reaches the listener
func (lm *LockstepManager) acceptLoop(l *kcp.Listener) {
	for {
		conn, err := l.AcceptKCP()
		if err != nil {
			return
		}
		lm.mu.Lock()
		taken := lm.conn != nil
		lm.mu.Unlock()
		if taken {
			log.Printf("[lockstep] refusing second peer %v", conn.RemoteAddr())
			conn.Close()
			continue
		}
		lm.attach(conn)
	}
}

func (lm *LockstepManager) attach(conn *kcp.UDPSession) {
	conn.SetStreamMode(true)
	conn.SetWriteDelay(false)
	conn.SetNoDelay(1, 20, 2, 1)
	conn.SetWindowSize(128, 128)
	lm.mu.Lock()
	lm.conn = conn
	lm.mu.Unlock()
	go lm.receiveLoop(conn)
}

// Addr returns the local address, nil before Host or Join
func (lm *LockstepManager) Addr() net.Addr {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	switch {
	case lm.listener != nil:
		return lm.listener.Addr()
	case lm.conn != nil:
		return lm.conn.LocalAddr()
	}
	return nil
}

// QueueCommand adds a local command to be applied on the scheduled tick
// and sends it to the peer. A command that cannot be encoded is dropped on
// both sides so the peers stay in step.
func (lm *LockstepManager) QueueCommand(currentTick uint64, cmd GameCommand) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	cmd.Tick = currentTick + uint64(lm.inputDelay)

	var buf bytes.Buffer
	if err := cmd.Encode(&buf); err != nil {
		log.Printf("[lockstep] encode %v: %v", cmd.Type, err)
		return
	}
	lm.pendingCmds[cmd.Tick] = append(lm.pendingCmds[cmd.Tick], cmd)

	if lm.conn != nil {
		if _, err := lm.conn.Write(buf.Bytes()); err != nil {
			log.Printf("[lockstep] send %v: %v", cmd.Type, err)
		}
	}
}

// GetCommands returns all commands for a given tick
func (lm *LockstepManager) GetCommands(tick uint64) []GameCommand {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	cmds := lm.pendingCmds[tick]
	delete(lm.pendingCmds, tick)
	return cmds
}

// IsConnected returns true if network is active
func (lm *LockstepManager) IsConnected() bool {
	return lm.connected.Load()
}

// receiveLoop decodes commands until the session closes. Commands are
// fixed size frames, so a rejected one leaves the stream aligned.
func (lm *LockstepManager) receiveLoop(conn *kcp.UDPSession) {
	for {
		var cmd GameCommand
		if err := cmd.Decode(conn); err != nil {
			if errors.Is(err, ErrBadCommand) && lm.connected.Load() {
				log.Printf("[lockstep] drop command from %v: %v", conn.RemoteAddr(), err)
				continue
			}
			return
		}
		lm.mu.Lock()
		lm.pendingCmds[cmd.Tick] = append(lm.pendingCmds[cmd.Tick], cmd)
		lm.mu.Unlock()
	}
}

// Close shuts down the network connection
func (lm *LockstepManager) Close() {
	if !lm.connected.Swap(false) {
		return
	}
	lm.mu.Lock()
	defer lm.mu.Unlock()
	if lm.listener != nil {
		lm.listener.Close()
	}
	if lm.conn != nil {
		lm.conn.Close()
	}
}

// OrderReplicator announces path outcomes of local units to the peer. It
// satisfies paths.Replicator.
type OrderReplicator struct {
	Lockstep *LockstepManager
	// Tick returns the current simulation tick
	Tick func() uint64
}

func (r *OrderReplicator) IsReplicated() bool {
	return r.Lockstep != nil && r.Lockstep.IsConnected()
}

func (r *OrderReplicator) OrderChanged(unit *pathfind.Unit, dest pathfind.Point, found bool) {
	// remote units are announced by their own peer
	if unit.Team != r.Lockstep.LocalTeam() {
		return
	}
	cmd := GameCommand{Team: unit.Team, Type: CmdStopUnit, Unit: unit.ID, Target: dest}
	if found {
		cmd.Type = CmdMoveUnit
	}
	r.Lockstep.QueueCommand(r.Tick(), cmd)
}

var _ paths.Replicator = (*OrderReplicator)(nil)

// Apply carries out the commands of other teams on the local world and
// returns how many took effect
func Apply(w *core.World, pm *paths.Manager, local pathfind.TeamID, cmds []GameCommand) int {
	applied := 0
	for _, cmd := range cmds {
		if cmd.Team == local {
			continue
		}
		id := core.EntityID(cmd.Unit)
		own, ok := w.Get(id, core.CompOwner).(*core.Owner)
		if !ok || own.Team != cmd.Team {
			log.Printf("[lockstep] %v for unit %d of team %d ignored", cmd.Type, cmd.Unit, cmd.Team)
			continue
		}
		switch cmd.Type {
		case CmdMoveUnit:
			if systems.OrderMove(w, pm, id, cmd.Target, pathfind.CautionNone) {
				applied++
			}
		case CmdStopUnit:
			if systems.OrderStop(w, pm, id) {
				applied++
			}
		}
	}
	return applied
}
