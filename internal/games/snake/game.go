package snake

import (
	"math/rand"
	"time"

	"github.com/vovakirdan/brick-arcade/internal/config"
	"github.com/vovakirdan/brick-arcade/internal/core"
	"github.com/vovakirdan/brick-arcade/internal/registry"
)

// ID is the registry and score-store key of the game.
const ID = "snake"

// Phase is the engine's state machine position.
type Phase int

const (
	PhaseStart Phase = iota // waiting for Start
	PhaseSpawn              // placing food
	PhaseMove               // running
	PhaseEnd                // crashed, waiting for Start
)

// initial body occupies columns bodyStartX..bodyStartX+initialLength-1 of the middle row
const (
	bodyStartX    = 3
	initialLength = 4
)

var directions = map[core.Action]core.Point{
	core.ActionLeft:  {X: -1, Y: 0},
	core.ActionRight: {X: 1, Y: 0},
	core.ActionUp:    {X: 0, Y: -1},
	core.ActionDown:  {X: 0, Y: 1},
}

// Game implements the Snake game.
type Game struct {
	width, height int
	speeds        core.SpeedTable
	boost         time.Duration
	perLevel      int

	clock  core.Clock
	rng    *rand.Rand
	scores core.ScoreKeeper

	field core.Grid
	body  []core.Point // Head at index 0
	phase Phase
	input core.ActionBuffer
	timer time.Time // instant the last step was due

	score     int
	highScore int
	level     int
	paused    bool
}

func init() {
	registry.Register(registry.GameInfo{ID: ID, Number: 1, Title: "Snake"}, func(env registry.Env) (registry.Game, error) {
		return New(env.Games.Snake, env.Runtime, env.Scores)
	})
}

// New creates a Snake engine waiting for Start. The high score is read once here.
func New(cfg config.SnakeConfig, rt core.RuntimeConfig, scores core.ScoreKeeper) (*Game, error) {
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
		width:    cfg.Field.Width,
		height:   cfg.Field.Height,
		speeds:   speeds,
		boost:    cfg.Speed.Boost(),
		perLevel: cfg.Scoring.PointsPerLevel,
		clock:    rt.ClockOrSystem(),
		rng:      rand.New(rand.NewSource(rt.Seed)),
		scores:   scores,
		field:    core.NewGrid(cfg.Field.Width, cfg.Field.Height),
		phase:    PhaseStart,
		level:    core.MinLevel,
	}
	g.highScore = scores.HighScore(ID)
	return g, nil
}

// ID returns the game identifier.
func (g *Game) ID() string { return ID }

// Title returns the display name.
func (g *Game) Title() string { return "Snake" }

// SubmitAction buffers the action for the next step. hold is ignored.
func (g *Game) SubmitAction(a core.Action, hold bool) {
	g.input.Submit(a, hold)
}

// Advance runs the state machine for one poll.
func (g *Game) Advance() core.StepResult {
	if g.input.Peek() == core.ActionTerminate {
		g.input.Clear()
		return core.StepResult{Info: g.info(), Terminate: true}
	}

	switch g.phase {
	case PhaseStart:
		g.processStart()
	case PhaseSpawn:
		g.spawnFood()
	case PhaseMove:
		g.processMove()
	case PhaseEnd:
		g.processEnd()
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

func (g *Game) processStart() {
	if g.input.Peek() != core.ActionStart {
		return
	}
	g.input.Clear()

	g.field.Fill(core.CellEmpty)
	g.body = g.body[:0]
	row := g.height / 2
	for x := bodyStartX; x < bodyStartX+initialLength; x++ {
		p := core.Point{X: x, Y: row}
		g.body = append(g.body, p)
		g.field.Set(p, core.CellBody)
	}

	g.timer = g.clock.Now()
	g.phase = PhaseSpawn
	g.spawnFood()
}

// spawnFood marks the k-th empty cell in row-major order, k uniform over the
// empty cells, and moves on to PhaseMove. A full board gets no food.
func (g *Game) spawnFood() {
	g.phase = PhaseMove

	empty := g.field.Count(core.CellEmpty)
	if empty == 0 {
		return
	}
	k := g.rng.Intn(empty)

	for y := range g.field {
		for x, v := range g.field[y] {
			if v != core.CellEmpty {
				continue
			}
			if k == 0 {
				g.field[y][x] = core.CellMarker
				return
			}
			k--
		}
	}
}

func (g *Game) processMove() {
	now := g.clock.Now()

	if g.input.Peek() == core.ActionPause {
		g.input.Clear()
		g.timer = now
		g.paused = !g.paused
		return
	}
	if g.paused {
		return
	}

	interval := g.speeds.At(g.level)
	if g.input.Peek() == core.ActionAction {
		interval = g.boost
	}
	if now.Sub(g.timer) < interval {
		return
	}

	action, _ := g.input.Take()
	g.step(action)

	g.timer = g.timer.Add(interval)
	// a late poll steps once and resynchronizes instead of replaying every missed step
	if now.Sub(g.timer) >= interval {
		g.timer = now
	}
}

// step moves the head one cell and resolves what it lands on.
func (g *Game) step(action core.Action) {
	next := g.nextHead(action)

	switch {
	case !g.field.InBounds(next):
		g.phase = PhaseEnd

	case g.field.At(next) == core.CellMarker:
		g.field.Set(next, core.CellBody)
		g.prepend(next)
		g.score++
		if g.score > g.highScore {
			g.highScore = g.score
			g.scores.SetHighScore(ID, g.score)
		}
		g.level = min(g.score/g.perLevel+1, core.MaxLevel)
		g.phase = PhaseSpawn
		g.spawnFood()

	case g.field.At(next) == core.CellBody:
		if next != g.tail() {
			g.phase = PhaseEnd
			return
		}
		// chasing the tail: the cell stays occupied, only the order changes
		g.body = g.body[:len(g.body)-1]
		g.prepend(next)

	default:
		g.field.Set(g.tail(), core.CellEmpty)
		g.body = g.body[:len(g.body)-1]
		g.prepend(next)
		g.field.Set(next, core.CellBody)
	}
}

// heading is the direction of the last move, derived from head and neck.
func (g *Game) heading() core.Point {
	head, neck := g.body[0], g.body[1]
	return core.Point{X: head.X - neck.X, Y: head.Y - neck.Y}
}

// nextHead applies a direction unless it is not a direction or would reverse the snake.
func (g *Game) nextHead(action core.Action) core.Point {
	heading := g.heading()
	if !action.IsDirection() {
		return g.body[0].Add(heading)
	}
	if d := directions[action]; d.X != -heading.X || d.Y != -heading.Y {
		heading = d
	}
	return g.body[0].Add(heading)
}

func (g *Game) prepend(p core.Point) {
	g.body = append(g.body, core.Point{})
	copy(g.body[1:], g.body)
	g.body[0] = p
}

func (g *Game) tail() core.Point {
	return g.body[len(g.body)-1]
}

func (g *Game) processEnd() {
	if g.input.Peek() != core.ActionStart {
		return
	}
	g.input.Clear()

	g.field.Fill(core.CellEmpty)
	g.body = g.body[:0]
	g.paused = false
	g.timer = time.Time{}
	g.score = 0
	g.level = core.MinLevel
	g.phase = PhaseStart
}

func (g *Game) info() core.GameInfo {
	pause := 0
	if g.paused {
		pause = 1
	}
	return core.GameInfo{
		Field:     g.field.Clone(),
		Score:     g.score,
		HighScore: g.highScore,
		Level:     g.level,
		Pause:     pause,
	}
}
