// Package client is a headless quizbox client: the same lobby, room,
// and round flow a browser player walks through, driven over the
// game's websocket and REST endpoints. It renders nothing itself and
// computes no scores - every tally and roster it holds comes from an
// authoritative server broadcast.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/Seednode/quizbox/protocol"
	"github.com/gorilla/websocket"
)

// Handler receives the raw JSON of one named event.
type Handler func(payload json.RawMessage)

// Transport owns one game's event channel plus the one-shot REST
// reads. It is created on game entry and disposed on exit; nothing
// about it is a process-wide singleton.
type Transport struct {
	base *url.URL
	http *http.Client

	mu       sync.Mutex
	conn     *websocket.Conn
	writeMu  sync.Mutex
	handlers map[string]map[int]Handler
	nextID   int
}

// NewTransport takes the server's base HTTP URL, e.g.
// "http://localhost:8080".
func NewTransport(baseURL string) (*Transport, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	return &Transport{
		base:     base,
		http:     &http.Client{},
		handlers: make(map[string]map[int]Handler),
	}, nil
}

// Connect establishes the per-game event channel. Calling it while
// already connected is a no-op, so it never stacks duplicate
// connections.
func (t *Transport) Connect(ctx context.Context, gameID int64) error {
	t.mu.Lock()
	if t.conn != nil {
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()

	wsURL := *t.base
	switch wsURL.Scheme {
	case "https":
		wsURL.Scheme = "wss"
	default:
		wsURL.Scheme = "ws"
	}
	wsURL.Path = wsURL.Path + "/games/" + strconv.FormatInt(gameID, 10) + "/ws"

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL.String(), nil)
	if err != nil {
		return fmt.Errorf("dial %s: %v: %w", wsURL.String(), err, ErrNetwork)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	t.mu.Lock()
	if t.conn != nil {
		// Lost the race to another Connect; keep the first channel.
		t.mu.Unlock()
		conn.Close()
		return nil
	}
	t.conn = conn
	t.mu.Unlock()

	go t.readLoop(conn)

	return nil
}

func (t *Transport) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var head struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &head); err != nil || head.Type == "" {
			continue
		}

		t.mu.Lock()
		if t.conn != conn {
			// Disconnected while this message was in flight; drop it.
			t.mu.Unlock()
			return
		}
		registered := make([]Handler, 0, len(t.handlers[head.Type]))
		for _, h := range t.handlers[head.Type] {
			registered = append(registered, h)
		}
		t.mu.Unlock()

		for _, h := range registered {
			h(data)
		}
	}
}

// Send emits a named event over the channel, fire-and-forget. No
// acknowledgement is expected.
func (t *Transport) Send(event string, msg protocol.ClientEvent) error {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()

	if conn == nil {
		return fmt.Errorf("send %s: not connected: %w", event, ErrNetwork)
	}

	msg.Type = event

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if err := conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("send %s: %v: %w", event, err, ErrNetwork)
	}
	return nil
}

// Subscribe registers a handler for a named event and returns a token
// for Unsubscribe. Multiple handlers per event coexist.
func (t *Transport) Subscribe(event string, h Handler) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextID++
	if t.handlers[event] == nil {
		t.handlers[event] = make(map[int]Handler)
	}
	t.handlers[event][t.nextID] = h
	return t.nextID
}

// Unsubscribe removes one handler. Unknown tokens are ignored.
func (t *Transport) Unsubscribe(event string, id int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.handlers[event], id)
}

// UnsubscribeAll drops every handler. Used when leaving a game room so
// no events leak across games.
func (t *Transport) UnsubscribeAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.handlers = make(map[string]map[int]Handler)
}

// Disconnect releases the channel. Safe to call repeatedly.
func (t *Transport) Disconnect() {
	t.mu.Lock()
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
}

func (t *Transport) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.base.String()+path, nil)
	if err != nil {
		return fmt.Errorf("GET %s: %v: %w", path, err, ErrNetwork)
	}

	resp, err := t.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %v: %w", path, err, ErrNetwork)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d: %w", path, resp.StatusCode, ErrNetwork)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("GET %s: decode: %v: %w", path, err, ErrNetwork)
	}
	return nil
}

func (t *Transport) postJSON(ctx context.Context, path string, body, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("POST %s: encode: %v: %w", path, err, ErrNetwork)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.base.String()+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("POST %s: %v: %w", path, err, ErrNetwork)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.http.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %v: %w", path, err, ErrNetwork)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("POST %s: status %d: %w", path, resp.StatusCode, ErrNetwork)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("POST %s: decode: %v: %w", path, err, ErrNetwork)
	}
	return nil
}

// FetchGames lists open games. An empty list is a valid result, not an
// error.
func (t *Transport) FetchGames(ctx context.Context) ([]protocol.GameSummary, error) {
	var games []protocol.GameSummary
	if err := t.getJSON(ctx, "/games", &games); err != nil {
		return nil, err
	}
	return games, nil
}

// FetchGame reads one game with its roster. An empty roster is valid.
func (t *Transport) FetchGame(ctx context.Context, gameID int64) (protocol.GameDetail, error) {
	var detail protocol.GameDetail
	err := t.getJSON(ctx, "/games/"+strconv.FormatInt(gameID, 10), &detail)
	return detail, err
}

// FetchScores reads the per-player vote totals accumulated so far.
func (t *Transport) FetchScores(ctx context.Context, gameID int64) ([]protocol.ScoreEntry, error) {
	var scores []protocol.ScoreEntry
	err := t.getJSON(ctx, "/games/"+strconv.FormatInt(gameID, 10)+"/scores", &scores)
	return scores, err
}

// RandomQuestion draws one question from the bank.
func (t *Transport) RandomQuestion(ctx context.Context) (protocol.QuestionResponse, error) {
	var question protocol.QuestionResponse
	err := t.getJSON(ctx, "/question/random", &question)
	return question, err
}

func (t *Transport) createGame(ctx context.Context, hostName string, rounds int) (protocol.CreateGameResponse, error) {
	var created protocol.CreateGameResponse
	err := t.postJSON(ctx, "/games", protocol.CreateGameRequest{HostName: hostName, Rounds: rounds}, &created)
	return created, err
}

func (t *Transport) joinGame(ctx context.Context, gameID int64, playerName string) (protocol.JoinGameResponse, error) {
	var joined protocol.JoinGameResponse
	err := t.postJSON(ctx, "/games/"+strconv.FormatInt(gameID, 10)+"/join", protocol.JoinGameRequest{PlayerName: playerName}, &joined)
	return joined, err
}
