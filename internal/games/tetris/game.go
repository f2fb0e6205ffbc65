package tetris

import (
	"math/rand"
	"time"

	"github.com/vovakirdan/brick-arcade/internal/config"
	"github.com/vovakirdan/brick-arcade/internal/core"
	"github.com/vovakirdan/brick-arcade/internal/registry"
)

// ID is the registry and score-store key of the game.
const ID = "tetris"

// Playfield size. Storage adds a one-cell wall on every side.
const (
	Width  = 10
	Height = 20
)

// Wall marks the permanent border cells. It is reported as core.CellMarker
// in snapshots.
const Wall = -1

const (
	spawnX = 5
	spawnY = 1
)

// Preview grid dimensions.
const (
	nextRows = 2
	nextCols = 4
)

// Phase is the engine's state machine position.
type Phase int

const (
	PhaseStart Phase = iota
	PhaseSpawn
	PhaseMoving
	PhaseAttaching
	PhaseEnd
)

// Game implements Tetris.
type Game struct {
	speeds     core.SpeedTable
	linePoints int
	perLevel   int

	clock  core.Clock
	rng    *rand.Rand
	scores core.ScoreKeeper

	field   core.Grid // (Height+2) x (Width+2), walls included
	next    core.Grid
	cur     Figure
	nextID  Shape
	hasNext bool
	phase   Phase
	input   core.ActionBuffer
	timer   time.Time

	score     int
	highScore int
	level     int
	paused    bool
}

func init() {
	registry.Register(registry.GameInfo{ID: ID, Number: 2, Title: "Tetris"}, func(env registry.Env) (registry.Game, error) {
		return New(env.Games.Tetris, env.Runtime, env.Scores)
	})
}

// New creates a Tetris engine waiting for Start.
func New(cfg config.TetrisConfig, rt core.RuntimeConfig, scores core.ScoreKeeper) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	speeds, err := cfg.Speed.Table()
	if err != nil {
		return nil, err
	}
	if scores == nil {
		scores = core.NopScores{}
	}

	g := &Game{
		speeds:     speeds,
		linePoints: cfg.Scoring.LinePoints,
		perLevel:   cfg.Scoring.PointsPerLevel,
		clock:      rt.ClockOrSystem(),
		rng:        rand.New(rand.NewSource(rt.Seed)),
		scores:     scores,
	}
	g.reset()
	return g, nil
}

// reset rebuilds the walled field and clears every run variable.
func (g *Game) reset() {
	g.field = core.NewGrid(Width+2, Height+2)
	for y := range g.field {
		for x := range g.field[y] {
			if y == 0 || y == Height+1 || x == 0 || x == Width+1 {
				g.field[y][x] = Wall
			}
		}
	}
	g.next = core.NewGrid(nextCols, nextRows)
	g.hasNext = false
	g.phase = PhaseStart
	g.input.Clear()
	g.timer = g.clock.Now()
	g.score = 0
	g.level = core.MinLevel
	g.paused = false
	g.highScore = max(g.highScore, g.scores.HighScore(ID))
}

// ID returns the game identifier.
func (g *Game) ID() string { return ID }

// Title returns the display name.
func (g *Game) Title() string { return "Tetris" }

// SubmitAction buffers the action for the next poll. hold is ignored.
func (g *Game) SubmitAction(a core.Action, hold bool) {
	g.input.Submit(a, hold)
}

// Advance applies the buffered action, then lets the figure fall one row if
// its interval elapsed.
func (g *Game) Advance() core.StepResult {
	action, _ := g.input.Take()
	if action == core.ActionTerminate {
		return core.StepResult{Info: g.info(), Terminate: true}
	}

	switch g.phase {
	case PhaseStart:
		if action == core.ActionStart {
			g.spawn()
		}
	case PhaseEnd:
		if action == core.ActionStart {
			g.reset()
			g.spawn()
		}
	case PhaseMoving:
		g.handle(action)
		if g.phase == PhaseMoving {
			g.fall()
		}
	}

	return core.StepResult{Info: g.info()}
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	return core.GameState{
		Score:    g.score,
		GameOver: g.phase == PhaseEnd,
		Paused:   g.paused,
		Started:  g.phase != PhaseStart,
	}
}

// handle applies one user action to the falling figure.
func (g *Game) handle(action core.Action) {
	if action == core.ActionNothing {
		return
	}
	if g.paused {
		g.timer = g.clock.Now()
		if action == core.ActionPause {
			g.paused = false
		}
		return
	}

	g.erase(g.cur)
	switch action {
	case core.ActionDown:
		if down := g.cur.Moved(0, 1); !g.collides(down) {
			g.cur = down
		} else {
			g.attach()
			return
		}
	case core.ActionLeft:
		g.shift(-1)
	case core.ActionRight:
		g.shift(1)
	case core.ActionAction:
		if r := g.cur.Rotated(); g.cur.Shape.Rotates() && !g.collides(r) {
			g.cur = r
		}
	case core.ActionPause:
		g.paused = true
		g.timer = g.clock.Now()
	}
	g.draw(g.cur)
}

func (g *Game) shift(dx int) {
	if moved := g.cur.Moved(dx, 0); !g.collides(moved) {
		g.cur = moved
	}
}

// fall drops the figure one row once the level interval has passed,
// locking it when the row below is taken.
func (g *Game) fall() {
	if g.paused {
		return
	}
	now := g.clock.Now()
	if now.Sub(g.timer) < g.speeds.At(g.level) {
		return
	}
	g.timer = now

	g.erase(g.cur)
	down := g.cur.Moved(0, 1)
	if g.collides(down) {
		g.attach()
		return
	}
	g.cur = down
	g.draw(g.cur)
}

// attach bakes the figure into the field, clears full lines and spawns the next figure.
func (g *Game) attach() {
	g.phase = PhaseAttaching
	g.draw(g.cur)

	lines := g.clearLines()
	g.score += lines * g.linePoints
	if g.score/g.perLevel >= g.level && g.level < core.MaxLevel {
		g.level++
		g.timer = g.clock.Now()
	}
	if g.score > g.highScore {
		g.highScore = g.score
		g.scores.SetHighScore(ID, g.score)
	}

	g.spawn()
}

// clearLines removes full rows bottom-up, shifts the remaining rows down
// and returns how many rows were removed.
func (g *Game) clearLines() int {
	target := Height
	for y := Height; y >= 1; y-- {
		if g.rowFull(y) {
			continue
		}
		if target != y {
			copy(g.field[target][1:Width+1], g.field[y][1:Width+1])
		}
		target--
	}
	cleared := target
	for y := target; y >= 1; y-- {
		for x := 1; x <= Width; x++ {
			g.field[y][x] = core.CellEmpty
		}
	}
	return cleared
}

func (g *Game) rowFull(y int) bool {
	for x := 1; x <= Width; x++ {
		if g.field[y][x] == core.CellEmpty {
			return false
		}
	}
	return true
}

// spawn promotes the queued figure, queues a new one and ends the game when
// the spawn position is already taken.
func (g *Game) spawn() {
	g.phase = PhaseSpawn

	shape := g.nextID
	if !g.hasNext {
		shape = Shape(g.rng.Intn(int(shapeCount)))
	}
	g.cur = Figure{Shape: shape, X: spawnX, Y: spawnY}

	g.nextID = Shape(g.rng.Intn(int(shapeCount)))
	g.hasNext = true
	g.next.Fill(core.CellEmpty)
	for _, p := range g.nextID.Offsets(0) {
		g.next.Set(p, g.nextID.Cell())
	}

	g.timer = g.clock.Now()
	if g.collides(g.cur) {
		g.phase = PhaseEnd
		return
	}
	g.draw(g.cur)
	g.phase = PhaseMoving
}

// collides reports whether f leaves the playfield or overlaps a taken cell.
func (g *Game) collides(f Figure) bool {
	for _, p := range f.Cells() {
		if p.X < 1 || p.X > Width || p.Y < 1 || p.Y > Height {
			return true
		}
		if g.field[p.Y][p.X] != core.CellEmpty {
			return true
		}
	}
	return false
}

func (g *Game) draw(f Figure) { g.paint(f, f.Shape.Cell()) }

func (g *Game) erase(f Figure) { g.paint(f, core.CellEmpty) }

func (g *Game) paint(f Figure, v int) {
	for _, p := range f.Cells() {
		if p.X >= 1 && p.X <= Width && p.Y >= 1 && p.Y <= Height {
			g.field[p.Y][p.X] = v
		}
	}
}

func (g *Game) info() core.GameInfo {
	field := g.field.Clone()
	for y := range field {
		for x, v := range field[y] {
			if v == Wall {
				field[y][x] = core.CellMarker
			}
		}
	}
	pause := 0
	if g.paused {
		pause = 1
	}
	return core.GameInfo{
		Field:     field,
		Next:      g.next.Clone(),
		Score:     g.score,
		HighScore: g.highScore,
		Level:     g.level,
		Speed:     1,
		Pause:     pause,
	}
}
