package main

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/klei1984/max-sub005/engine/ai"
	"github.com/klei1984/max-sub005/engine/core"
	"github.com/klei1984/max-sub005/engine/input"
	"github.com/klei1984/max-sub005/engine/maplib"
	"github.com/klei1984/max-sub005/engine/network"
	"github.com/klei1984/max-sub005/engine/pathfind"
	"github.com/klei1984/max-sub005/engine/paths"
	"github.com/klei1984/max-sub005/engine/render"
	"github.com/klei1984/max-sub005/engine/systems"
	"github.com/klei1984/max-sub005/engine/tuning"
)

const (
	ScreenWidth  = 1280
	ScreenHeight = 720
	TickRate     = 10.0
	TileSize     = 16
	MapSize      = 64

	playerTeam   pathfind.TeamID = 1
	computerTeam pathfind.TeamID = 2
)

// Viewer implements ebiten.Game for the path debug viewer
type Viewer struct {
	tileMap  *maplib.TileMap
	gameLoop *core.GameLoop
	input    *input.InputState
	players  *core.PlayerManager
	view     *systems.WorldView
	paths    *paths.Manager
	camera   *render.Camera
	replay   *network.ReplayWriter
	lockstep *network.LockstepManager
	local    pathfind.TeamID
	applied  uint64 // next lockstep tick to apply

	selected  core.EntityID
	caution   pathfind.CautionLevel
	showGrid  bool
	snapshots int
	status    string
}

// NewViewer builds the simulation around tm. With a lockstep session the
// second team is a remote seat instead of the computer.
func NewViewer(tm *maplib.TileMap, cfg tuning.Tuning, reg prometheus.Registerer, lm *network.LockstepManager) (*Viewer, error) {
	v := &Viewer{
		lockstep: lm,
		local:    playerTeam,
		tileMap:  tm,
		gameLoop: core.NewGameLoop(TickRate),
		input:    input.NewInputState(),
		players:  core.NewPlayerManager(),
		camera:   render.NewCamera(ScreenWidth, ScreenHeight, TileSize),
	}
	timer := v.gameLoop.Timer
	timer.Min, timer.Max, timer.Floor = cfg.Think.Min(), cfg.Think.Max(), cfg.Think.Floor()

	other := &core.Player{Team: computerTeam, Name: "Computer", Kind: pathfind.TeamComputer, Color: 0xE63C32FF}
	if lm != nil {
		v.local = lm.LocalTeam()
		other.Name, other.Kind = "Remote", pathfind.TeamRemote
		if v.local == computerTeam {
			other.Team = playerTeam
		}
	}
	v.players.AddPlayer(&core.Player{Team: v.local, Name: "Player", Kind: pathfind.TeamPlayer, Color: 0x3C78FFFF})
	v.players.AddPlayer(other)

	fog := systems.NewFogSystem(tm.Width, tm.Height, v.players)
	v.view = systems.NewWorldView(tm, fog, v.players)
	threats := ai.NewThreatMap(v.view)
	v.view.Danger = threats

	metrics, err := paths.NewMetrics(reg)
	if err != nil {
		return nil, err
	}
	debug, _ := paths.ParseDebugMode(cfg.Debug)
	opts := []paths.Option{
		paths.WithBudget(timer),
		paths.WithMetrics(metrics),
		paths.WithDebug(debug),
		paths.WithSynchronous(cfg.Worker.Synchronous),
		paths.WithIdleDelay(cfg.Worker.IdleDelay()),
	}
	if cfg.ReplayPath != "" {
		v.replay, err = network.CreateReplay(cfg.ReplayPath)
		if err != nil {
			return nil, fmt.Errorf("replay: %w", err)
		}
		opts = append(opts, paths.WithRecorder(v.replay))
	}
	if lm != nil {
		opts = append(opts, paths.WithReplicator(&network.OrderReplicator{Lockstep: lm, Tick: v.gameLoop.CurrentTick}))
	}
	v.paths = paths.NewManager(v.view, opts...)

	w := v.gameLoop.World
	w.AddSystem(fog)
	w.AddSystem(&systems.MovementSystem{Paths: v.paths, View: v.view, MaxCost: cfg.DefaultMaxCost})
	if lm == nil {
		w.AddSystem(&ai.AISystem{
			Controllers: []*ai.AIController{ai.NewAIController(computerTeam, ai.DiffMedium, 1)},
			Players:     v.players,
			Paths:       v.paths,
			Threats:     threats,
		})
	}
	w.Events.On(core.EvtPathFailed, func(e core.Event) {
		pe := e.Payload.(core.PathEvent)
		v.status = fmt.Sprintf("unit %d: no path to %v", pe.Entity, pe.Destination)
	})
	w.Events.On(core.EvtPathBlocked, func(e core.Event) {
		pe := e.Payload.(core.PathEvent)
		v.status = fmt.Sprintf("unit %d blocked, repathing", pe.Entity)
	})

	v.gameLoop.Think = func() {
		if lm != nil {
			for ; v.applied <= v.gameLoop.CurrentTick(); v.applied++ {
				network.Apply(w, v.paths, v.local, lm.GetCommands(v.applied))
			}
		}
		v.view.Refresh(w)
		v.paths.DispatchJobs()
		v.paths.PollResults()
	}

	v.spawnUnits()
	for _, id := range w.Query(core.CompSelectable, core.CompOwner) {
		if w.Get(id, core.CompOwner).(*core.Owner).Team == v.local {
			v.selected = id
			break
		}
	}
	v.view.Refresh(w)
	v.camera.CenterOn(float64(tm.Width)/2, float64(tm.Height)/2)
	v.gameLoop.Play()
	return v, nil
}

func (v *Viewer) spawn(team pathfind.TeamID, p pathfind.Point, flags pathfind.UnitFlags, surfaces maplib.SurfaceType) core.EntityID {
	w := v.gameLoop.World
	id := w.Spawn()
	w.Attach(id, &core.Position{Point: p})
	w.Attach(id, &core.Unit{Flags: flags, Surfaces: surfaces})
	w.Attach(id, &core.Owner{Team: team})
	w.Attach(id, &core.Health{Current: 20, Max: 20})
	w.Attach(id, &core.FogVision{Range: 6})
	if flags&pathfind.UnitStationary == 0 {
		w.Attach(id, &core.Movable{Speed: 4})
		w.Attach(id, &core.Selectable{})
	}
	return id
}

func (v *Viewer) spawnUnits() {
	land := maplib.SurfaceLand | maplib.SurfaceCoast
	for _, p := range []pathfind.Point{{X: 6, Y: 6}, {X: 7, Y: 6}, {X: 6, Y: 7}, {X: 8, Y: 8}} {
		id := v.spawn(playerTeam, p, pathfind.UnitMobileLand, land)
		v.gameLoop.World.Attach(id, &core.Weapon{Damage: 8, Range: 3, Targets: land})
	}
	v.spawn(playerTeam, pathfind.Point{X: 5, Y: 9}, pathfind.UnitMobileLand|pathfind.UnitHovering, land|maplib.SurfaceWater)
	v.spawn(playerTeam, pathfind.Point{X: 9, Y: 5}, pathfind.UnitMobileAir, maplib.SurfaceAir)
	v.spawn(playerTeam, pathfind.Point{X: 3, Y: 3}, pathfind.UnitStationary|pathfind.UnitBuilding|pathfind.UnitReceiver, land)

	for _, p := range []pathfind.Point{{X: 50, Y: 50}, {X: 52, Y: 50}, {X: 50, Y: 53}} {
		id := v.spawn(computerTeam, p, pathfind.UnitMobileLand, land)
		v.gameLoop.World.Attach(id, &core.Weapon{Damage: 8, Range: 3, Targets: land})
	}
	turret := v.spawn(computerTeam, pathfind.Point{X: 40, Y: 20}, pathfind.UnitStationary, land)
	v.gameLoop.World.Attach(turret, &core.Weapon{Damage: 12, Range: 5, Targets: land | maplib.SurfaceAir})
}

func (v *Viewer) Update() error {
	v.input.Update()
	v.handleCamera()

	switch {
	case v.input.IsKeyJustPressed(ebiten.KeyEscape):
		return ebiten.Termination
	case v.input.IsKeyJustPressed(ebiten.KeyD):
		v.paths.SetDebug(v.paths.Debug().Next())
		v.status = "debug: " + v.paths.Debug().String()
	case v.input.IsKeyJustPressed(ebiten.KeyC):
		v.caution = (v.caution + 1) % (pathfind.CautionAvoidAllDamage + 1)
		v.status = "caution: " + v.caution.String()
	case v.input.IsKeyJustPressed(ebiten.KeyG):
		v.showGrid = !v.showGrid
	case v.input.IsKeyJustPressed(ebiten.KeyP):
		v.exportSnapshot()
	case v.input.IsKeyJustPressed(ebiten.KeyX):
		v.paths.Clear()
		v.status = "requests cleared"
	case v.input.IsKeyJustPressed(ebiten.KeySpace):
		if v.gameLoop.State == core.StatePlaying {
			v.gameLoop.Pause()
		} else {
			v.gameLoop.Play()
		}
	}

	tile := v.camera.ScreenToTile(v.input.MouseX, v.input.MouseY)
	if v.input.LeftJustPressed {
		v.selectAt(tile)
	}
	if v.input.RightJustPressed && v.tileMap.InBounds(tile.X, tile.Y) {
		if systems.OrderMove(v.gameLoop.World, v.paths, v.selected, tile, v.caution) {
			v.status = fmt.Sprintf("unit %d -> %v (%v)", v.selected, tile, v.caution)
		}
	}

	v.gameLoop.Update()
	return nil
}

func (v *Viewer) selectAt(tile pathfind.Point) {
	w := v.gameLoop.World
	for _, id := range w.Query(core.CompPosition, core.CompSelectable, core.CompOwner) {
		if w.Get(id, core.CompOwner).(*core.Owner).Team != v.local {
			continue
		}
		if w.Get(id, core.CompPosition).(*core.Position).Point == tile {
			v.selected = id
			return
		}
	}
}

func (v *Viewer) handleCamera() {
	speed := v.camera.Speed / 60.0 // per frame at 60fps
	if v.input.IsKeyPressed(ebiten.KeyUp) {
		v.camera.Pan(0, -speed)
	}
	if v.input.IsKeyPressed(ebiten.KeyDown) {
		v.camera.Pan(0, speed)
	}
	if v.input.IsKeyPressed(ebiten.KeyLeft) {
		v.camera.Pan(-speed, 0)
	}
	if v.input.IsKeyPressed(ebiten.KeyRight) {
		v.camera.Pan(speed, 0)
	}
	if v.input.ScrollY != 0 {
		v.camera.ZoomAt(v.input.ScrollY*0.1, v.input.MouseX, v.input.MouseY)
	}
	if v.input.MiddlePressed {
		v.camera.Pan(float64(-v.input.MouseDX), float64(-v.input.MouseDY))
	}
}

// exportSnapshot writes the access map of the latest request as a PNG
func (v *Viewer) exportSnapshot() {
	m := v.paths.Access()
	if m.Width == 0 {
		v.status = "no access map yet"
		return
	}
	start, steps := v.selectedPath()
	v.snapshots++
	name := fmt.Sprintf("access-%03d.png", v.snapshots)
	f, err := os.Create(name)
	if err != nil {
		log.Printf("snapshot: %v", err)
		return
	}
	defer f.Close()
	if err := m.WriteSnapshot(f, start, steps, 8); err != nil {
		log.Printf("snapshot: %v", err)
		return
	}
	v.status = "wrote " + name
}

// selectedPath returns the remaining path of the selected unit
func (v *Viewer) selectedPath() (pathfind.Point, []pathfind.Point) {
	w := v.gameLoop.World
	pos, ok := w.Get(v.selected, core.CompPosition).(*core.Position)
	if !ok {
		return pathfind.Point{}, nil
	}
	mov, ok := w.Get(v.selected, core.CompMovable).(*core.Movable)
	if !ok || mov.Path == nil {
		return pos.Point, nil
	}
	return pos.Point, mov.Path.Steps[mov.PathIdx:]
}

func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{20, 20, 30, 255})
	drawMap(screen, v.camera, v.tileMap, v.showGrid)

	if v.paths.Debug() >= paths.DebugDrawSearches {
		if m := v.paths.Access(); m.Width > 0 {
			drawAccess(screen, v.camera, m)
		}
		if ctx := v.paths.LastSearch(); ctx != nil {
			drawSearch(screen, v.camera, ctx)
		}
	}

	start, steps := v.selectedPath()
	drawPath(screen, v.camera, start, steps)
	for _, list := range [][]*pathfind.Unit{v.view.StationaryUnits(), v.view.MobileLandSeaUnits(), v.view.MobileAirUnits()} {
		drawUnits(screen, v.camera, list, pathfind.UnitID(v.selected))
	}

	v.drawHUD(screen)
}

func (v *Viewer) drawHUD(screen *ebiten.Image) {
	tile := v.camera.ScreenToTile(v.input.MouseX, v.input.MouseY)
	info := fmt.Sprintf(
		"Path viewer | FPS: %.0f | Tick: %d | Think limit: %v\n"+
			"Tile: %v %v | Selected: %d | Caution: %v | Debug: %v\n"+
			"Pending: %d | Searching: %d\n"+
			"[LClick] Select [RClick] Move [C] Caution [D] Debug [P] Snapshot [G] Grid [X] Clear [Space] Pause\n"+
			"%s",
		ebiten.ActualFPS(),
		v.gameLoop.CurrentTick(),
		v.gameLoop.Timer.Limit(),
		tile, v.tileMap.SurfaceAt(tile.X, tile.Y),
		v.selected, v.caution, v.paths.Debug(),
		v.paths.PendingCount(), v.paths.DispatchedCount(),
		v.status,
	)
	if v.lockstep != nil {
		role := "peer"
		if v.lockstep.IsHost() {
			role = "host"
		}
		info += fmt.Sprintf("\nLockstep %s, team %d, connected: %v", role, v.local, v.lockstep.IsConnected())
	}
	ebitenutil.DebugPrint(screen, info)
}

func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenWidth, ScreenHeight
}

// Close stops the path worker and flushes the replay
func (v *Viewer) Close() error {
	v.paths.Close()
	if v.lockstep != nil {
		v.lockstep.Close()
	}
	if v.replay != nil {
		return v.replay.Close()
	}
	return nil
}

// generateDemoMap creates a noise map with open ground around both bases
func generateDemoMap(seed int64) *maplib.TileMap {
	tm := maplib.Generate("Demo", MapSize, MapSize, seed)
	tm.SetSurface(2, 2, 11, 11, maplib.SurfaceLand)
	tm.SetSurface(47, 47, 55, 55, maplib.SurfaceLand)
	tm.SetSurface(38, 18, 42, 22, maplib.SurfaceLand)
	return tm
}

func main() {
	configPath := flag.String("config", "", "tuning YAML file")
	mapPath := flag.String("map", "", "JSON map file, a generated map when empty")
	seed := flag.Int64("seed", 1, "seed of the generated map")
	hostPort := flag.Int("host", 0, "host a lockstep session on this UDP port")
	join := flag.String("join", "", "join a lockstep session at host:port")
	flag.Parse()

	cfg := tuning.Default()
	if *configPath != "" {
		var err error
		if cfg, err = tuning.Load(*configPath); err != nil {
			log.Fatal(err)
		}
	}

	tm := generateDemoMap(*seed)
	if *mapPath != "" {
		var err error
		if tm, err = maplib.LoadJSON(*mapPath); err != nil {
			log.Fatal(err)
		}
	}

	reg := prometheus.NewRegistry()
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				log.Printf("metrics: %v", err)
			}
		}()
	}

	var lm *network.LockstepManager
	switch {
	case *hostPort != 0:
		lm = network.NewLockstepManager(playerTeam, true)
		if err := lm.Host(*hostPort); err != nil {
			log.Fatal(err)
		}
	case *join != "":
		host, port, err := net.SplitHostPort(*join)
		if err != nil {
			log.Fatal(err)
		}
		n, err := strconv.Atoi(port)
		if err != nil {
			log.Fatalf("join: bad port %q", port)
		}
		lm = network.NewLockstepManager(computerTeam, false)
		if err := lm.Join(host, n); err != nil {
			log.Fatal(err)
		}
	}

	viewer, err := NewViewer(tm, cfg, reg, lm)
	if err != nil {
		log.Fatal(err)
	}

	ebiten.SetWindowSize(ScreenWidth, ScreenHeight)
	ebiten.SetWindowTitle("Path viewer")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	err = ebiten.RunGame(viewer)
	if cerr := viewer.Close(); cerr != nil {
		log.Printf("close: %v", cerr)
	}
	if err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
