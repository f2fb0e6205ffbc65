package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vovakirdan/brick-arcade/internal/core"
	"github.com/vovakirdan/brick-arcade/internal/session"
)

// Driver is what the terminal model plays against: an in-process session or
// a game server reached over HTTP.
type Driver interface {
	GameID() string
	Submit(a core.Action) error
	Poll() (core.GameInfo, error)
	Close() error
}

// StateReader is implemented by drivers that can report more than the snapshot.
type StateReader interface {
	State() (core.GameState, error)
}

// LocalDriver plays a session in this process.
type LocalDriver struct {
	sess    *session.Session
	release func()
}

// NewLocalDriver wraps sess. release, if set, runs once on Close.
func NewLocalDriver(sess *session.Session, release func()) *LocalDriver {
	return &LocalDriver{sess: sess, release: release}
}

func (d *LocalDriver) GameID() string { return d.sess.GameID() }

func (d *LocalDriver) Submit(a core.Action) error { return d.sess.Submit(a, false) }

func (d *LocalDriver) Poll() (core.GameInfo, error) { return d.sess.Poll() }

func (d *LocalDriver) State() (core.GameState, error) { return d.sess.State() }

// Close releases the session.
func (d *LocalDriver) Close() error {
	if d.release != nil {
		d.release()
		d.release = nil
	}
	return nil
}

// RemoteDriver plays the single game of a server through /api/game/*.
type RemoteDriver struct {
	baseURL string
	client  *http.Client
	gameID  string
}

// remoteTimeout bounds every request; the server answers polls immediately.
const remoteTimeout = 2 * time.Second

// apiError is the error body the server sends.
type apiError struct {
	Error string `json:"error"`
}

// NewRemoteDriver starts game on the server at baseURL. A nil client uses
// one with a short timeout.
func NewRemoteDriver(ctx context.Context, baseURL, game string, client *http.Client) (*RemoteDriver, error) {
	if client == nil {
		client = &http.Client{Timeout: remoteTimeout}
	}
	d := &RemoteDriver{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}

	var started session.Info
	if err := d.do(ctx, http.MethodPost, "/api/game/start", game, &started); err != nil {
		return nil, err
	}
	d.gameID = started.GameID
	return d, nil
}

func (d *RemoteDriver) GameID() string { return d.gameID }

// Submit sends the action as its wire ordinal.
func (d *RemoteDriver) Submit(a core.Action) error {
	return d.do(context.Background(), http.MethodPost, "/api/game/actions", int(a), nil)
}

func (d *RemoteDriver) Poll() (core.GameInfo, error) {
	var info core.GameInfo
	err := d.do(context.Background(), http.MethodGet, "/api/game/state", nil, &info)
	return info, err
}

// Close does nothing; the server keeps the game for the next client.
func (d *RemoteDriver) Close() error { return nil }

func (d *RemoteDriver) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("tui: cannot encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, d.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("tui: cannot build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("tui: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var e apiError
		if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Error != "" {
			return errors.New(e.Error)
		}
		return fmt.Errorf("tui: %s %s: %s", method, path, resp.Status)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("tui: cannot decode %s: %w", path, err)
	}
	return nil
}
