package input

import (
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// ViewerKeys are the keys the path viewer binds
var ViewerKeys = []ebiten.Key{
	ebiten.KeyUp, ebiten.KeyDown, ebiten.KeyLeft, ebiten.KeyRight,
	ebiten.KeySpace, ebiten.KeyEscape,
	ebiten.KeyC, ebiten.KeyD, ebiten.KeyG, ebiten.KeyP, ebiten.KeyX,
}

// InputState tracks mouse and keyboard state per frame
type InputState struct {
	MouseX, MouseY   int
	MouseDX, MouseDY int // delta since last frame
	LeftJustPressed  bool
	RightJustPressed bool
	MiddlePressed    bool
	ScrollY          float64

	pressed     map[ebiten.Key]bool
	justPressed []ebiten.Key
}

func NewInputState() *InputState {
	return &InputState{pressed: make(map[ebiten.Key]bool)}
}

// Update should be called every frame
func (s *InputState) Update() {
	x, y := ebiten.CursorPosition()
	s.MouseDX, s.MouseDY = x-s.MouseX, y-s.MouseY
	s.MouseX, s.MouseY = x, y

	s.LeftJustPressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
	s.RightJustPressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight)
	s.MiddlePressed = ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)
	_, s.ScrollY = ebiten.Wheel()

	s.justPressed = inpututil.AppendJustPressedKeys(s.justPressed[:0])
	for _, k := range ViewerKeys {
		s.pressed[k] = ebiten.IsKeyPressed(k)
	}
}

// IsKeyPressed reports whether a viewer key is held
func (s *InputState) IsKeyPressed(key ebiten.Key) bool { return s.pressed[key] }

// IsKeyJustPressed returns true if key was just pressed this frame
func (s *InputState) IsKeyJustPressed(key ebiten.Key) bool {
	return slices.Contains(s.justPressed, key)
}
