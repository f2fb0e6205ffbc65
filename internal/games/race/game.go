package race

import (
	"math/rand"
	"time"

	"github.com/vovakirdan/brick-arcade/internal/config"
	"github.com/vovakirdan/brick-arcade/internal/core"
	"github.com/vovakirdan/brick-arcade/internal/registry"
)

// ID is the registry and score-store key of the game.
const ID = "race"

// Road geometry: three lanes of three columns each.
const (
	Width     = 10
	Height    = 20
	Lanes     = 3
	laneWidth = 3
	MaxLane   = Lanes - 1
)

// carRow is the bottom row of the player's car; carBand is the first row a
// car-sized sprite can share with it.
const (
	carRow  = Height - 1
	carBand = Height - len(carTexture)
)

// carTexture is drawn upwards from its bottom row.
var carTexture = [5][laneWidth]int{
	{0, 1, 0},
	{1, 1, 1},
	{0, 1, 0},
	{1, 1, 1},
	{0, 1, 0},
}

// Phase is the engine's state machine position.
type Phase int

const (
	PhaseStart Phase = iota
	PhaseMove
	PhaseEnd
)

// Obstacle is an oncoming car. Row is the row of its front bumper.
type Obstacle struct {
	Row  int
	Lane int
	Kind int
}

// Game implements the lane racer.
type Game struct {
	speeds        core.SpeedTable
	spawnInterval int
	safeRows      int
	perLevel      int

	clock  core.Clock
	rng    *rand.Rand
	scores core.ScoreKeeper

	lane      int
	obstacles []Obstacle
	phase     Phase
	input     core.ActionBuffer
	timer     time.Time
	ticks     int  // steps since the last spawn
	scored    bool // the front obstacle already paid out

	score     int
	highScore int
	level     int
	paused    bool
}

func init() {
	registry.Register(registry.GameInfo{ID: ID, Number: 3, Title: "Race"}, func(env registry.Env) (registry.Game, error) {
		return New(env.Games.Race, env.Runtime, env.Scores)
	})
}

// New creates a Race engine waiting for Start.
func New(cfg config.RaceConfig, rt core.RuntimeConfig, scores core.ScoreKeeper) (*Game, error) {
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
		speeds:        speeds,
		spawnInterval: cfg.Obstacles.SpawnInterval,
		safeRows:      cfg.Obstacles.SafeRows,
		perLevel:      cfg.Scoring.PointsPerLevel,
		clock:         rt.ClockOrSystem(),
		rng:           rand.New(rand.NewSource(rt.Seed)),
		scores:        scores,
		lane:          Width / 2 / laneWidth,
		phase:         PhaseStart,
		level:         core.MinLevel,
	}
	g.highScore = scores.HighScore(ID)
	return g, nil
}

// ID returns the game identifier.
func (g *Game) ID() string { return ID }

// Title returns the display name.
func (g *Game) Title() string { return "Race" }

// SubmitAction buffers the action for the next poll. hold is ignored.
func (g *Game) SubmitAction(a core.Action, hold bool) {
	g.input.Submit(a, hold)
}

// Advance applies the buffered action, then scrolls the road one row if the
// level interval elapsed.
func (g *Game) Advance() core.StepResult {
	action, _ := g.input.Take()
	if action == core.ActionTerminate {
		return core.StepResult{Info: g.info(), Terminate: true}
	}

	switch g.phase {
	case PhaseStart, PhaseEnd:
		if action == core.ActionStart {
			g.start()
		}
	case PhaseMove:
		g.handle(action)
		g.tick()
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

func (g *Game) start() {
	g.phase = PhaseMove
	g.timer = g.clock.Now()
	g.lane = Width / 2 / laneWidth
	g.obstacles = g.obstacles[:0]
	g.ticks = 0
	g.scored = false
	g.score = 0
	g.level = core.MinLevel
	g.paused = false
}

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

	switch action {
	case core.ActionLeft:
		g.lane = max(g.lane-1, 0)
	case core.ActionRight:
		g.lane = min(g.lane+1, MaxLane)
	case core.ActionPause:
		g.paused = true
		g.timer = g.clock.Now()
	}
}

// tick performs one road step once the level interval has passed.
func (g *Game) tick() {
	if g.paused {
		return
	}
	now := g.clock.Now()
	if now.Sub(g.timer) < g.speeds.At(g.level) {
		return
	}

	g.timer = now
	g.scroll()
	g.checkCollisions()
	if g.phase == PhaseEnd {
		return
	}

	g.ticks++
	if g.ticks >= g.spawnInterval {
		g.spawn()
		g.ticks = 0
	}
}

// scroll moves every obstacle down a row and drops those past the bottom.
func (g *Game) scroll() {
	kept := g.obstacles[:0]
	for _, o := range g.obstacles {
		o.Row++
		if o.Row < Height {
			kept = append(kept, o)
		}
	}
	g.obstacles = kept
}

// checkCollisions ends the run on a hit and otherwise pays one point when the
// front obstacle reaches the last row. The latch stays set while that
// condition holds so a single obstacle cannot pay twice.
func (g *Game) checkCollisions() {
	for _, o := range g.obstacles {
		if o.Lane == g.lane && o.Row >= carBand {
			g.phase = PhaseEnd
			g.scored = false
			return
		}
	}

	if len(g.obstacles) > 0 && g.obstacles[0].Row >= carRow {
		if !g.scored {
			g.score++
			g.scored = true
		}
	} else {
		g.scored = false
	}

	if g.score > g.highScore {
		g.highScore = g.score
		g.scores.SetHighScore(ID, g.score)
	}

	if level := min(g.score/g.perLevel+1, core.MaxLevel); level != g.level {
		g.level = level
		g.timer = g.clock.Now()
	}
}

// spawn adds an obstacle at the top of a random lane. Lanes with an obstacle
// still inside the safe rows are skipped; when every lane is blocked nothing spawns.
func (g *Game) spawn() {
	free := make([]int, 0, Lanes)
	for lane := 0; lane < Lanes; lane++ {
		if !g.laneBlocked(lane) {
			free = append(free, lane)
		}
	}
	if len(free) == 0 {
		return
	}
	lane := free[g.rng.Intn(len(free))]
	g.obstacles = append(g.obstacles, Obstacle{Row: 0, Lane: lane, Kind: core.CellMarker})
}

func (g *Game) laneBlocked(lane int) bool {
	for _, o := range g.obstacles {
		if o.Lane == lane && o.Row < g.safeRows {
			return true
		}
	}
	return false
}

func (g *Game) info() core.GameInfo {
	field := core.NewGrid(Width, Height)
	drawCar(field, carRow, g.lane, core.CellBody)
	for _, o := range g.obstacles {
		drawCar(field, o.Row, o.Lane, o.Kind)
	}

	pause := 0
	if g.paused {
		pause = 1
	}
	return core.GameInfo{
		Field:     field,
		Score:     g.score,
		HighScore: g.highScore,
		Level:     g.level,
		Pause:     pause,
	}
}

// drawCar paints the car sprite with its front at row bottom.
func drawCar(field core.Grid, bottom, lane, v int) {
	for dy, line := range carTexture {
		for dx, on := range line {
			if on == 0 {
				continue
			}
			field.Set(core.Point{X: lane*laneWidth + dx, Y: bottom - dy}, v)
		}
	}
}
