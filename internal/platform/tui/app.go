package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/brick-arcade/internal/registry"
)

// Opener starts gameID and returns a driver for it.
type Opener func(gameID string) (Driver, error)

// AppConfig configures the arcade flow.
type AppConfig struct {
	Open      Opener
	Scores    ScoreSource   // optional
	PollEvery time.Duration // defaults to DefaultPollEvery
	StartGame string        // skip the menu and play this game first
}

type screen int

const (
	screenMenu screen = iota
	screenScores
	screenGame
)

// AppModel manages the full arcade flow: menu -> game -> menu, plus the
// scoreboard. It is the top-level model for local and SSH play.
type AppModel struct {
	cfg    AppConfig
	width  int
	height int

	current    screen
	menu       MenuModel
	scoreboard ScoreboardModel
	game       Model
	driver     Driver
	quitting   bool
}

// NewApp creates the arcade model.
func NewApp(cfg AppConfig, width, height int) AppModel {
	if cfg.PollEvery <= 0 {
		cfg.PollEvery = DefaultPollEvery
	}
	return AppModel{
		cfg:    cfg,
		width:  width,
		height: height,
		menu:   NewMenuModel(width),
	}
}

// Init starts polling when Start already opened a game.
func (m AppModel) Init() tea.Cmd {
	if m.current == screenGame {
		return m.game.Init()
	}
	return nil
}

// Start opens StartGame before the program runs. An error leaves the menu up.
func (m AppModel) Start() (AppModel, error) {
	if m.cfg.StartGame == "" {
		return m, nil
	}
	var err error
	m, _, err = m.openGame(m.cfg.StartGame)
	return m, err
}

// Update routes messages to the active screen and switches screens.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = wsm.Width
		m.height = wsm.Height
	}

	switch m.current {
	case screenGame:
		return m.updateGame(msg)
	case screenScores:
		return m.updateScores(msg)
	}
	return m.updateMenu(msg)
}

func (m AppModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.menu.Update(msg)
	if menu, ok := next.(MenuModel); ok {
		m.menu = menu
	}

	switch {
	case m.menu.IsQuitting():
		m.quitting = true
		return m, tea.Quit

	case m.menu.WantsScoreboard():
		m.scoreboard = NewScoreboardModel(m.cfg.Scores, m.width, m.height)
		m.current = screenScores
		return m, m.scoreboard.Init()

	case m.menu.Selected() != nil:
		selected := m.menu.Selected().ID
		next, cmd, err := m.openGame(selected)
		if err != nil {
			next.menu = NewMenuModel(m.width).WithNotice(err.Error())
			return next, nil
		}
		return next, cmd
	}
	return m, cmd
}

func (m AppModel) updateScores(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.scoreboard.Update(msg)
	if sb, ok := next.(ScoreboardModel); ok {
		m.scoreboard = sb
	}

	switch {
	case m.scoreboard.IsQuitting():
		m.quitting = true
		return m, tea.Quit
	case m.scoreboard.IsGoingBack():
		m.menu = NewMenuModel(m.width)
		m.current = screenMenu
		return m, nil
	}
	return m, cmd
}

func (m AppModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.game.Update(msg)
	if gm, ok := next.(Model); ok {
		m.game = gm
	}

	switch {
	case m.game.IsQuitting():
		m.closeDriver()
		m.quitting = true
		return m, tea.Quit
	case m.game.BackToMenu():
		m.closeDriver()
		m.menu = NewMenuModel(m.width)
		m.current = screenMenu
		// drop the pending tick; the menu does not poll
		return m, nil
	}
	return m, cmd
}

func (m AppModel) openGame(gameID string) (AppModel, tea.Cmd, error) {
	driver, err := m.cfg.Open(gameID)
	if err != nil {
		return m, nil, err
	}

	title := driver.GameID()
	for _, info := range registry.List() {
		if info.ID == driver.GameID() {
			title = info.Title
		}
	}

	m.driver = driver
	m.game = NewModel(driver, title, m.cfg.PollEvery)
	m.current = screenGame
	return m, m.game.Init(), nil
}

func (m *AppModel) closeDriver() {
	if m.driver != nil {
		m.driver.Close()
		m.driver = nil
	}
}

// View renders the active screen.
func (m AppModel) View() string {
	if m.quitting {
		return ""
	}
	switch m.current {
	case screenGame:
		return m.game.View()
	case screenScores:
		return m.scoreboard.View()
	}
	return m.menu.View()
}

// Playing reports whether a game is on screen.
func (m AppModel) Playing() bool {
	return m.current == screenGame
}

// RunApp runs the arcade in the current terminal until the user quits.
func RunApp(cfg AppConfig, width, height int) error {
	app, err := NewApp(cfg, width, height).Start()
	if err != nil {
		return err
	}

	p := tea.NewProgram(app, tea.WithAltScreen())
	final, err := p.Run()
	if m, ok := final.(AppModel); ok {
		m.closeDriver()
	}
	return err
}
