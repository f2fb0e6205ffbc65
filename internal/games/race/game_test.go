package race

import (
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/vovakirdan/brick-arcade/internal/config"
	"github.com/vovakirdan/brick-arcade/internal/core"
)

type memScores map[string]int

func (m memScores) HighScore(id string) int          { return m[id] }
func (m memScores) SetHighScore(id string, score int) { m[id] = score }

func newTestGame(t *testing.T, seed int64, scores core.ScoreKeeper) (*Game, *core.ManualClock) {
	t.Helper()
	clock := core.NewManualClock(time.Unix(0, 0))
	g, err := New(config.DefaultRaceConfig(), core.RuntimeConfig{Seed: seed, Clock: clock}, scores)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return g, clock
}

func startGame(t *testing.T, g *Game) core.GameInfo {
	t.Helper()
	g.SubmitAction(core.ActionStart, false)
	info := g.Advance().Info
	if g.phase != PhaseMove {
		t.Fatalf("phase after Start = %v, expected move", g.phase)
	}
	return info
}

// step lets exactly one level interval pass and polls once.
func step(g *Game, clock *core.ManualClock) core.GameInfo {
	clock.Advance(g.speeds.At(g.level))
	return g.Advance().Info
}

func TestStartCentersCar(t *testing.T) {
	g, _ := newTestGame(t, 1, nil)
	info := startGame(t, g)

	if g.lane != 1 {
		t.Errorf("lane = %d, expected 1", g.lane)
	}
	if n := info.Field.Count(core.CellBody); n != 9 {
		t.Errorf("car cells = %d, expected 9", n)
	}
	// front bumper is the center column of the bottom row
	if info.Field[Height-1][4] != core.CellBody || info.Field[Height-1][3] != core.CellEmpty {
		t.Error("car texture misplaced on the bottom row")
	}
	if info.Field[Height-2][3] != core.CellBody || info.Field[Height-2][5] != core.CellBody {
		t.Error("car axle row should span the lane")
	}
	if info.Speed != 0 || info.Next != nil {
		t.Errorf("unexpected speed %d or preview %v", info.Speed, info.Next)
	}
}

func TestLaneStaysInRange(t *testing.T) {
	g, _ := newTestGame(t, 2, nil)
	startGame(t, g)

	for i := 0; i < 3; i++ {
		g.SubmitAction(core.ActionLeft, false)
		g.Advance()
	}
	if g.lane != 0 {
		t.Errorf("lane = %d, expected 0", g.lane)
	}
	for i := 0; i < 5; i++ {
		g.SubmitAction(core.ActionRight, false)
		g.Advance()
	}
	if g.lane != MaxLane {
		t.Errorf("lane = %d, expected %d", g.lane, MaxLane)
	}

	rng := rand.New(rand.NewSource(99))
	for i := 0; i < 500; i++ {
		a := core.ActionLeft
		if rng.Intn(2) == 0 {
			a = core.ActionRight
		}
		g.SubmitAction(a, false)
		g.Advance()
		if g.lane < 0 || g.lane > MaxLane {
			t.Fatalf("lane %d out of range after %d moves", g.lane, i)
		}
	}
}

func TestAdvanceBeforeThresholdIsNoop(t *testing.T) {
	g, clock := newTestGame(t, 3, nil)
	startGame(t, g)
	g.obstacles = append(g.obstacles, Obstacle{Row: 4, Lane: 0, Kind: core.CellMarker})
	before := g.Advance().Info

	clock.Advance(99 * time.Millisecond)
	after := g.Advance().Info
	if !reflect.DeepEqual(before.Field, after.Field) {
		t.Error("field changed before the step interval elapsed")
	}

	clock.Advance(time.Millisecond)
	g.Advance()
	if g.obstacles[0].Row != 5 {
		t.Errorf("obstacle row = %d, expected 5", g.obstacles[0].Row)
	}
}

func TestObstacleScoresOnce(t *testing.T) {
	g, clock := newTestGame(t, 4, nil)
	startGame(t, g)

	g.SubmitAction(core.ActionLeft, false)
	g.Advance()
	g.obstacles = append(g.obstacles, Obstacle{Row: 0, Lane: 1, Kind: core.CellMarker})

	for i := 1; i <= 30; i++ {
		step(g, clock)
		if g.phase != PhaseMove {
			t.Fatalf("tick %d: game ended", i)
		}
		want := 0
		if i >= Height-1 {
			want = 1
		}
		if g.score != want {
			t.Fatalf("tick %d: score = %d, expected %d", i, g.score, want)
		}
	}
}

func TestLatchHoldsOnScoringRow(t *testing.T) {
	g, _ := newTestGame(t, 5, nil)
	startGame(t, g)
	g.lane = 2
	g.obstacles = []Obstacle{{Row: Height - 1, Lane: 0, Kind: core.CellMarker}}

	g.checkCollisions()
	g.checkCollisions()
	if g.score != 1 {
		t.Fatalf("score = %d, expected 1", g.score)
	}

	g.obstacles = nil
	g.checkCollisions()
	g.obstacles = []Obstacle{{Row: Height - 1, Lane: 1, Kind: core.CellMarker}}
	g.checkCollisions()
	if g.score != 2 {
		t.Errorf("score = %d, expected 2 once the latch was released", g.score)
	}
}

func TestCollisionEndsAndRestart(t *testing.T) {
	g, clock := newTestGame(t, 6, nil)
	startGame(t, g)
	g.obstacles = append(g.obstacles, Obstacle{Row: carBand - 1, Lane: 1, Kind: core.CellMarker})

	step(g, clock)
	if g.phase != PhaseEnd || !g.State().GameOver {
		t.Fatalf("phase = %v, expected end", g.phase)
	}

	// the road is frozen after a crash
	info := step(g, clock)
	if g.obstacles[0].Row != carBand {
		t.Errorf("obstacle moved after the crash: row %d", g.obstacles[0].Row)
	}
	if info.Field.Count(core.CellMarker) == 0 {
		t.Error("crashed obstacle should stay visible")
	}

	g.SubmitAction(core.ActionStart, false)
	info = g.Advance().Info
	if g.phase != PhaseMove || len(g.obstacles) != 0 || g.lane != 1 {
		t.Errorf("restart left phase=%v obstacles=%d lane=%d", g.phase, len(g.obstacles), g.lane)
	}
	if info.Score != 0 || info.Level != 1 {
		t.Errorf("restart left score=%d level=%d", info.Score, info.Level)
	}
}

func TestOtherLaneIsSafe(t *testing.T) {
	g, clock := newTestGame(t, 7, nil)
	startGame(t, g)
	g.obstacles = append(g.obstacles, Obstacle{Row: carBand, Lane: 0, Kind: core.CellMarker})

	for i := 0; i < 4; i++ {
		step(g, clock)
	}
	if g.phase != PhaseMove {
		t.Error("an obstacle in another lane must not end the game")
	}
}

func TestSpawnInterval(t *testing.T) {
	g, clock := newTestGame(t, 8, nil)
	startGame(t, g)

	for i := 1; i < 20; i++ {
		step(g, clock)
	}
	if len(g.obstacles) != 0 {
		t.Fatalf("obstacles = %d before the spawn interval", len(g.obstacles))
	}

	info := step(g, clock)
	if len(g.obstacles) != 1 || g.obstacles[0].Row != 0 {
		t.Fatalf("expected one new obstacle at row 0, got %+v", g.obstacles)
	}
	if g.ticks != 0 {
		t.Errorf("ticks = %d, expected reset to 0", g.ticks)
	}
	if info.Field.Count(core.CellMarker) == 0 {
		t.Error("new obstacle should be visible")
	}
}

func TestSpawnSkipsBlockedLanes(t *testing.T) {
	g, _ := newTestGame(t, 9, nil)
	startGame(t, g)

	for i := 0; i < 50; i++ {
		g.obstacles = []Obstacle{
			{Row: 2, Lane: 0, Kind: core.CellMarker},
			{Row: 0, Lane: 2, Kind: core.CellMarker},
		}
		g.spawn()
		if len(g.obstacles) != 3 || g.obstacles[2].Lane != 1 {
			t.Fatalf("spawned %+v, expected lane 1", g.obstacles[2:])
		}
	}

	// obstacles past the safe rows do not block
	g.obstacles = []Obstacle{{Row: 3, Lane: 0}, {Row: 1, Lane: 1}, {Row: 1, Lane: 2}}
	g.spawn()
	if len(g.obstacles) != 4 || g.obstacles[3].Lane != 0 {
		t.Fatalf("expected spawn in lane 0, got %+v", g.obstacles)
	}

	g.obstacles = []Obstacle{{Row: 0, Lane: 0}, {Row: 1, Lane: 1}, {Row: 2, Lane: 2}}
	g.spawn()
	if len(g.obstacles) != 3 {
		t.Error("nothing should spawn when every lane is blocked")
	}
}

func TestLevelSwitchesSpeed(t *testing.T) {
	scores := memScores{}
	g, clock := newTestGame(t, 10, scores)
	startGame(t, g)
	g.lane = 2
	g.score = 4
	g.obstacles = []Obstacle{{Row: Height - 2, Lane: 0, Kind: core.CellMarker}}

	step(g, clock)
	if g.score != 5 || g.level != 2 {
		t.Fatalf("score/level = %d/%d, expected 5/2", g.score, g.level)
	}
	if scores[ID] != 5 {
		t.Errorf("persisted high score = %d, expected 5", scores[ID])
	}

	ticks := g.ticks
	clock.Advance(89 * time.Millisecond)
	g.Advance()
	if g.ticks != ticks {
		t.Fatal("level 2 should wait 90ms")
	}
	clock.Advance(time.Millisecond)
	g.Advance()
	if g.ticks != ticks+1 {
		t.Error("level 2 step did not happen after 90ms")
	}
}

func TestPauseFreezesRoad(t *testing.T) {
	g, clock := newTestGame(t, 11, nil)
	startGame(t, g)
	g.obstacles = append(g.obstacles, Obstacle{Row: 3, Lane: 0, Kind: core.CellMarker})

	g.SubmitAction(core.ActionPause, false)
	if info := g.Advance().Info; info.Pause != 1 {
		t.Fatalf("Pause = %d, expected 1", info.Pause)
	}
	clock.Advance(time.Second)
	g.SubmitAction(core.ActionLeft, false)
	g.Advance()
	if g.obstacles[0].Row != 3 || g.lane != 1 {
		t.Fatal("road or car moved while paused")
	}

	g.SubmitAction(core.ActionPause, false)
	if info := g.Advance().Info; info.Pause != 0 {
		t.Fatalf("Pause = %d, expected 0", info.Pause)
	}
	step(g, clock)
	if g.obstacles[0].Row != 4 {
		t.Errorf("row = %d, expected 4 after unpausing", g.obstacles[0].Row)
	}
}

func TestTerminateIsSignalled(t *testing.T) {
	g, _ := newTestGame(t, 12, nil)
	startGame(t, g)
	g.SubmitAction(core.ActionTerminate, false)
	if !g.Advance().Terminate {
		t.Error("Terminate should be reported")
	}
}

func TestObstacleClippedAtTop(t *testing.T) {
	g, _ := newTestGame(t, 13, nil)
	startGame(t, g)
	g.obstacles = []Obstacle{{Row: 1, Lane: 2, Kind: core.CellMarker}}

	info := g.Advance().Info
	// rows 1 and 0 of the sprite: bumper then axle
	if info.Field[1][7] != core.CellMarker {
		t.Error("bumper should be drawn at row 1")
	}
	if info.Field[0][6] != core.CellMarker || info.Field[0][8] != core.CellMarker {
		t.Error("axle should be drawn at row 0")
	}
	if n := info.Field.Count(core.CellMarker); n != 4 {
		t.Errorf("visible obstacle cells = %d, expected 4", n)
	}
}

func TestDeterminism(t *testing.T) {
	run := func() Snapshot {
		g, clock := newTestGame(t, 77, nil)
		startGame(t, g)
		for i := 0; i < 300; i++ {
			if i%7 == 0 {
				g.SubmitAction(core.ActionLeft, false)
			} else if i%11 == 0 {
				g.SubmitAction(core.ActionRight, false)
			}
			step(g, clock)
		}
		return g.Snapshot()
	}

	s1, s2 := run(), run()
	if s1 != s2 {
		t.Errorf("snapshots differ: %+v vs %+v", s1, s2)
	}
}
