package snake

import (
	"reflect"
	"testing"
	"time"

	"github.com/vovakirdan/brick-arcade/internal/config"
	"github.com/vovakirdan/brick-arcade/internal/core"
)

const levelOne = 350 * time.Millisecond

type memScores map[string]int

func (m memScores) HighScore(id string) int          { return m[id] }
func (m memScores) SetHighScore(id string, score int) { m[id] = score }

func newTestGame(t *testing.T, seed int64, scores core.ScoreKeeper) (*Game, *core.ManualClock) {
	t.Helper()
	clock := core.NewManualClock(time.Unix(0, 0))
	g, err := New(config.DefaultSnakeConfig(), core.RuntimeConfig{Seed: seed, Clock: clock}, scores)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return g, clock
}

func start(t *testing.T, g *Game) core.GameInfo {
	t.Helper()
	g.SubmitAction(core.ActionStart, false)
	info := g.Advance().Info
	if g.phase != PhaseMove {
		t.Fatalf("after Start phase = %v, expected move", g.phase)
	}
	return info
}

// placeFood moves the food marker to p.
func placeFood(g *Game, p core.Point) {
	for y := range g.field {
		for x := range g.field[y] {
			if g.field[y][x] == core.CellMarker {
				g.field[y][x] = core.CellEmpty
			}
		}
	}
	g.field.Set(p, core.CellMarker)
}

// setBody replaces the snake with the given segments on an otherwise empty field.
func setBody(g *Game, body ...core.Point) {
	g.field.Fill(core.CellEmpty)
	g.body = append(g.body[:0], body...)
	for _, p := range body {
		g.field.Set(p, core.CellBody)
	}
}

func TestStartPlacesBodyAndFood(t *testing.T) {
	g, _ := newTestGame(t, 1, nil)

	info := start(t, g)

	row := 10
	for i, x := range []int{3, 4, 5, 6} {
		if g.body[i] != (core.Point{X: x, Y: row}) {
			t.Errorf("body[%d] = %v, expected (%d,%d)", i, g.body[i], x, row)
		}
		if info.Field[row][x] != core.CellBody {
			t.Errorf("field[%d][%d] = %d, expected body", row, x, info.Field[row][x])
		}
	}
	if n := info.Field.Count(core.CellMarker); n != 1 {
		t.Errorf("food cells = %d, expected 1", n)
	}
	if n := info.Field.Count(core.CellBody); n != 4 {
		t.Errorf("body cells = %d, expected 4", n)
	}
	if info.Level != 1 || info.Score != 0 {
		t.Errorf("level/score = %d/%d, expected 1/0", info.Level, info.Score)
	}
}

func TestAdvanceBeforeThresholdIsNoop(t *testing.T) {
	g, clock := newTestGame(t, 7, nil)
	before := start(t, g)

	clock.Advance(levelOne - time.Millisecond)
	after := g.Advance().Info
	again := g.Advance().Info

	if !reflect.DeepEqual(before.Field, after.Field) || !reflect.DeepEqual(after.Field, again.Field) {
		t.Error("grid changed before the step threshold elapsed")
	}

	clock.Advance(time.Millisecond)
	if moved := g.Advance().Info; reflect.DeepEqual(before.Field, moved.Field) {
		t.Error("grid should change once the threshold elapsed")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	g, _ := newTestGame(t, 3, nil)
	info := start(t, g)

	info.Field.Fill(core.CellMarker)

	if g.field.Count(core.CellMarker) != 1 {
		t.Error("mutating the snapshot leaked into the engine")
	}
}

func TestNoImmediateReversal(t *testing.T) {
	g, clock := newTestGame(t, 42, nil)
	start(t, g)
	placeFood(g, core.Point{X: 9, Y: 0})

	// the initial heading is left (head at column 3, neck at column 4)
	if h := g.heading(); h != (core.Point{X: -1}) {
		t.Fatalf("initial heading = %v, expected left", h)
	}

	g.SubmitAction(core.ActionRight, false)
	clock.Advance(levelOne)
	g.Advance()

	if g.body[0] != (core.Point{X: 2, Y: 10}) {
		t.Errorf("head = %v, expected (2,10): reversal must be ignored", g.body[0])
	}
	if h := g.heading(); h != (core.Point{X: -1}) {
		t.Errorf("heading = %v, expected left", h)
	}

	// a perpendicular turn is accepted
	g.SubmitAction(core.ActionUp, false)
	clock.Advance(levelOne)
	g.Advance()
	if g.body[0] != (core.Point{X: 2, Y: 9}) {
		t.Errorf("head = %v, expected (2,9)", g.body[0])
	}

	// and now Down is the reversal
	g.SubmitAction(core.ActionDown, false)
	clock.Advance(levelOne)
	g.Advance()
	if g.body[0] != (core.Point{X: 2, Y: 8}) {
		t.Errorf("head = %v, expected (2,8)", g.body[0])
	}
}

func TestFeedFiveTimes(t *testing.T) {
	scores := memScores{}
	g, clock := newTestGame(t, 5, scores)
	start(t, g)

	for i := 1; i <= 5; i++ {
		head := g.body[0]
		placeFood(g, core.Point{X: head.X, Y: head.Y - 1})
		lenBefore := len(g.body)

		g.SubmitAction(core.ActionUp, false)
		clock.Advance(g.speeds.At(g.level))
		info := g.Advance().Info

		if info.Score != i {
			t.Fatalf("after feed %d score = %d", i, info.Score)
		}
		if want := min(i/5+1, 10); info.Level != want {
			t.Errorf("after feed %d level = %d, expected %d", i, info.Level, want)
		}
		if len(g.body) != lenBefore+1 {
			t.Errorf("after feed %d body length = %d, expected %d", i, len(g.body), lenBefore+1)
		}
		if info.Field.Count(core.CellMarker) != 1 {
			t.Errorf("after feed %d a new food should be on the board", i)
		}
	}

	if g.score != 5 || g.level != 2 {
		t.Errorf("score/level = %d/%d, expected 5/2", g.score, g.level)
	}
	if scores[ID] != 5 {
		t.Errorf("persisted high score = %d, expected 5", scores[ID])
	}
}

func TestGrowthIsKeptOnNextStep(t *testing.T) {
	g, clock := newTestGame(t, 9, nil)
	start(t, g)

	placeFood(g, core.Point{X: 3, Y: 9})
	g.SubmitAction(core.ActionUp, false)
	clock.Advance(levelOne)
	g.Advance()
	grown := len(g.body)

	placeFood(g, core.Point{X: 9, Y: 19})
	clock.Advance(levelOne)
	g.Advance()

	if len(g.body) < grown {
		t.Errorf("body shrank from %d to %d", grown, len(g.body))
	}
}

func TestOutOfBoundsEndsAndRestart(t *testing.T) {
	g, clock := newTestGame(t, 11, nil)
	start(t, g)
	placeFood(g, core.Point{X: 9, Y: 0})

	for i := 0; i < 4; i++ {
		clock.Advance(levelOne)
		g.Advance()
	}
	if g.phase != PhaseEnd {
		t.Fatalf("phase = %v, expected end after leaving the field", g.phase)
	}
	if !g.State().GameOver {
		t.Error("State().GameOver should be true")
	}

	// actions other than Start are ignored
	g.SubmitAction(core.ActionLeft, false)
	g.Advance()
	if g.phase != PhaseEnd {
		t.Error("only Start should leave the end phase")
	}

	g.SubmitAction(core.ActionStart, false)
	info := g.Advance().Info
	if g.phase != PhaseStart || info.Score != 0 || info.Level != 1 {
		t.Errorf("after restart phase/score/level = %v/%d/%d", g.phase, info.Score, info.Level)
	}
	if info.Field.Count(core.CellEmpty) != 200 {
		t.Error("restart should clear the field")
	}

	start(t, g)
}

func TestSelfCollisionEnds(t *testing.T) {
	g, clock := newTestGame(t, 13, nil)
	start(t, g)

	// heading left; turning down runs into a middle segment
	setBody(g,
		core.Point{X: 2, Y: 2},
		core.Point{X: 3, Y: 2},
		core.Point{X: 3, Y: 3},
		core.Point{X: 2, Y: 3},
		core.Point{X: 1, Y: 3},
	)
	g.SubmitAction(core.ActionDown, false)
	clock.Advance(levelOne)
	g.Advance()

	if g.phase != PhaseEnd {
		t.Errorf("phase = %v, expected end", g.phase)
	}
}

func TestTailFollowIsAllowed(t *testing.T) {
	g, clock := newTestGame(t, 17, nil)
	start(t, g)

	setBody(g,
		core.Point{X: 1, Y: 1},
		core.Point{X: 2, Y: 1},
		core.Point{X: 2, Y: 2},
		core.Point{X: 1, Y: 2},
	)
	g.SubmitAction(core.ActionDown, false)
	clock.Advance(levelOne)
	info := g.Advance().Info

	if g.phase != PhaseMove {
		t.Fatalf("phase = %v, moving into the tail cell must not end the game", g.phase)
	}
	if g.body[0] != (core.Point{X: 1, Y: 2}) || len(g.body) != 4 {
		t.Errorf("body = %v", g.body)
	}
	if info.Field.Count(core.CellBody) != 4 {
		t.Errorf("body cells = %d, expected 4", info.Field.Count(core.CellBody))
	}
}

func TestBoostIsOneShot(t *testing.T) {
	g, clock := newTestGame(t, 19, nil)
	start(t, g)
	placeFood(g, core.Point{X: 9, Y: 0})

	g.SubmitAction(core.ActionAction, false)
	clock.Advance(150 * time.Millisecond)
	g.Advance()
	if g.body[0] != (core.Point{X: 2, Y: 10}) {
		t.Fatalf("boosted step did not happen, head = %v", g.body[0])
	}

	// the boost was consumed: the next step needs the full level interval
	clock.Advance(150 * time.Millisecond)
	g.Advance()
	if g.body[0] != (core.Point{X: 2, Y: 10}) {
		t.Errorf("second step should wait for the level interval, head = %v", g.body[0])
	}
	clock.Advance(levelOne - 150*time.Millisecond)
	g.Advance()
	if g.body[0] != (core.Point{X: 1, Y: 10}) {
		t.Errorf("head = %v, expected (1,10)", g.body[0])
	}
}

func TestPauseStopsAndResetsTimer(t *testing.T) {
	g, clock := newTestGame(t, 23, nil)
	start(t, g)
	placeFood(g, core.Point{X: 9, Y: 0})

	g.SubmitAction(core.ActionPause, false)
	if info := g.Advance().Info; info.Pause != 1 {
		t.Fatalf("Pause = %d, expected 1", info.Pause)
	}

	clock.Advance(5 * time.Second)
	g.Advance()
	if g.body[0] != (core.Point{X: 3, Y: 10}) {
		t.Fatal("snake moved while paused")
	}

	g.SubmitAction(core.ActionPause, false)
	if info := g.Advance().Info; info.Pause != 0 {
		t.Fatalf("Pause = %d, expected 0", info.Pause)
	}

	clock.Advance(levelOne - time.Millisecond)
	g.Advance()
	if g.body[0] != (core.Point{X: 3, Y: 10}) {
		t.Error("unpausing should restart the step timer")
	}
	clock.Advance(time.Millisecond)
	g.Advance()
	if g.body[0] != (core.Point{X: 2, Y: 10}) {
		t.Errorf("head = %v, expected (2,10)", g.body[0])
	}
}

func TestLastActionWins(t *testing.T) {
	g, clock := newTestGame(t, 29, nil)
	start(t, g)
	placeFood(g, core.Point{X: 9, Y: 0})

	g.SubmitAction(core.ActionUp, false)
	g.SubmitAction(core.ActionDown, true)
	clock.Advance(levelOne)
	g.Advance()

	if g.body[0] != (core.Point{X: 3, Y: 11}) {
		t.Errorf("head = %v, expected (3,11) from the later Down", g.body[0])
	}
}

func TestTerminateIsSignalled(t *testing.T) {
	g, _ := newTestGame(t, 31, nil)
	start(t, g)

	g.SubmitAction(core.ActionTerminate, false)
	res := g.Advance()
	if !res.Terminate {
		t.Error("Terminate should be reported")
	}
	if g.Advance().Terminate {
		t.Error("Terminate should be reported once")
	}
}

func TestHighScoreLoadedAtConstruction(t *testing.T) {
	g, _ := newTestGame(t, 37, memScores{ID: 12})
	if info := g.Advance().Info; info.HighScore != 12 {
		t.Errorf("HighScore = %d, expected 12", info.HighScore)
	}
}

func TestDeterminism(t *testing.T) {
	run := func() Snapshot {
		g, clock := newTestGame(t, 12345, nil)
		start(t, g)
		moves := []core.Action{core.ActionUp, core.ActionUp, core.ActionRight, core.ActionRight, core.ActionDown}
		for _, a := range moves {
			g.SubmitAction(a, false)
			clock.Advance(levelOne)
			g.Advance()
		}
		return g.Snapshot()
	}

	s1, s2 := run(), run()
	if s1 != s2 {
		t.Errorf("snapshots differ: %+v vs %+v", s1, s2)
	}
}

func TestFoodSpawnValidity(t *testing.T) {
	g, _ := newTestGame(t, 999, nil)
	start(t, g)

	for i := 0; i < 200; i++ {
		placeFood(g, core.Point{X: -1, Y: -1})
		g.spawnFood()

		food := g.Snapshot().Food
		if food.X < 0 {
			t.Fatal("no food spawned")
		}
		for _, seg := range g.body {
			if seg == food {
				t.Fatalf("food spawned on the snake at %v", food)
			}
		}
		if g.field.Count(core.CellMarker) != 1 {
			t.Fatal("exactly one food cell expected")
		}
	}
}
