package registry_test

import (
	"errors"
	"testing"

	_ "github.com/vovakirdan/brick-arcade/internal/games/race"
	_ "github.com/vovakirdan/brick-arcade/internal/games/snake"
	_ "github.com/vovakirdan/brick-arcade/internal/games/tetris"
	"github.com/vovakirdan/brick-arcade/internal/registry"
)

func TestListOrder(t *testing.T) {
	games := registry.List()
	if len(games) != 3 {
		t.Fatalf("registered %d games, expected 3", len(games))
	}
	expected := []string{"snake", "tetris", "race"}
	for i, g := range games {
		if g.ID != expected[i] || g.Number != i+1 {
			t.Errorf("List()[%d] = %+v, expected %s #%d", i, g, expected[i], i+1)
		}
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		selector string
		want     string
	}{
		{"snake", "snake"},
		{"Tetris", "tetris"},
		{" RACE ", "race"},
		{"1", "snake"},
		{"2", "tetris"},
		{"3", "race"},
	}
	for _, tt := range tests {
		got, err := registry.Resolve(tt.selector)
		if err != nil {
			t.Errorf("Resolve(%q) failed: %v", tt.selector, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Resolve(%q) = %q, expected %q", tt.selector, got, tt.want)
		}
	}
}

func TestUnknownGame(t *testing.T) {
	for _, sel := range []string{"", "0", "4", "pong"} {
		if _, err := registry.Create(sel, registry.DefaultEnv()); !errors.Is(err, registry.ErrUnknownGame) {
			t.Errorf("Create(%q) error = %v, expected ErrUnknownGame", sel, err)
		}
	}
}

func TestCreate(t *testing.T) {
	env := registry.DefaultEnv()
	env.Scores = nil

	for _, info := range registry.List() {
		g, err := registry.Create(info.ID, env)
		if err != nil {
			t.Fatalf("Create(%q) failed: %v", info.ID, err)
		}
		if g.ID() != info.ID || g.Title() != info.Title {
			t.Errorf("Create(%q) built %s/%s", info.ID, g.ID(), g.Title())
		}
		if g.State().Started {
			t.Errorf("%s should wait for Start", info.ID)
		}
		if res := g.Advance(); res.Terminate || res.Info.Field == nil {
			t.Errorf("%s: unexpected first poll %+v", info.ID, res)
		}
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("registering a duplicate ID should panic")
		}
	}()
	registry.Register(registry.GameInfo{ID: "snake", Number: 99}, nil)
}
