package network

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klei1984/max-sub005/engine/pathfind"
)

// CmdType identifies a network command
type CmdType uint8

const (
	// CmdMoveUnit announces that a unit follows a path to the target
	CmdMoveUnit CmdType = iota + 1
	// CmdStopUnit announces that a unit found no path and awaits orders
	CmdStopUnit
)

func (t CmdType) String() string {
	switch t {
	case CmdMoveUnit:
		return "move"
	case CmdStopUnit:
		return "stop"
	}
	return fmt.Sprintf("cmd(%d)", uint8(t))
}

// ErrBadCommand is returned when a packet does not hold a known command
var ErrBadCommand = errors.New("network: malformed command")

// GameCommand is a deterministic order notice applied on a scheduled tick
type GameCommand struct {
	Tick   uint64
	Team   pathfind.TeamID
	Type   CmdType
	Unit   pathfind.UnitID
	Target pathfind.Point
}

// wireCommand is the fixed little-endian layout of a GameCommand
type wireCommand struct {
	Tick    uint64
	Team    int32
	Type    CmdType
	Unit    uint32
	TargetX int32
	TargetY int32
}

func (t CmdType) valid() bool { return t == CmdMoveUnit || t == CmdStopUnit }

// Encode writes a command to binary. Unknown command types are rejected
// before anything is written.
func (c *GameCommand) Encode(w io.Writer) error {
	if !c.Type.valid() {
		return fmt.Errorf("command type %d: %w", uint8(c.Type), ErrBadCommand)
	}
	return binary.Write(w, binary.LittleEndian, wireCommand{
		Tick:    c.Tick,
		Team:    int32(c.Team),
		Type:    c.Type,
		Unit:    uint32(c.Unit),
		TargetX: int32(c.Target.X),
		TargetY: int32(c.Target.Y),
	})
}

// Decode reads a command from binary
func (c *GameCommand) Decode(r io.Reader) error {
	var wc wireCommand
	if err := binary.Read(r, binary.LittleEndian, &wc); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("short command: %w", ErrBadCommand)
		}
		return err
	}
	if !wc.Type.valid() {
		return fmt.Errorf("command type %d: %w", wc.Type, ErrBadCommand)
	}
	*c = GameCommand{
		Tick:   wc.Tick,
		Team:   pathfind.TeamID(wc.Team),
		Type:   wc.Type,
		Unit:   pathfind.UnitID(wc.Unit),
		Target: pathfind.Point{X: int(wc.TargetX), Y: int(wc.TargetY)},
	}
	return nil
}
