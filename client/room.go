package client

import (
	"encoding/json"
	"sync"

	"github.com/Seednode/quizbox/protocol"
)

// Room tracks who is waiting in a game and whether everyone is ready.
// The server's player_list broadcast is always authoritative; local
// changes are optimistic at most and self-correct on the next
// broadcast.
type Room struct {
	t      *Transport
	notify func(string)

	mu        sync.Mutex
	localID   int64
	localName string
	hostID    int64
	players   []protocol.Player
	ready     bool
	started   bool

	subJoined  int
	subList    int
	subStarted int
	subError   int
}

// NewRoom subscribes to the roster events. notify receives
// user-visible messages (server rejections, local rejections); nil is
// allowed.
func NewRoom(t *Transport, hostID int64, localName string, notify func(string)) *Room {
	if notify == nil {
		notify = func(string) {}
	}

	r := &Room{
		t:         t,
		notify:    notify,
		hostID:    hostID,
		localName: localName,
	}

	r.subJoined = t.Subscribe(protocol.EventJoined, r.onJoined)
	r.subList = t.Subscribe(protocol.EventPlayerList, r.onPlayerList)
	r.subStarted = t.Subscribe(protocol.EventGameStarted, r.onGameStarted)
	r.subError = t.Subscribe(protocol.EventError, r.onError)

	return r
}

// Enter announces the local player on the channel. Passing a known
// player id re-binds after a reconnect instead of creating a duplicate.
func (r *Room) Enter(gameID, playerID int64) error {
	return r.t.Send(protocol.EventJoinGame, protocol.ClientEvent{
		GameID:   gameID,
		Name:     r.localName,
		PlayerID: playerID,
	})
}

func (r *Room) onJoined(payload json.RawMessage) {
	var msg protocol.JoinedMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.localID = msg.PlayerID

	// Tolerate reconnects: a stale roster entry under the same name is
	// superseded by the fresh identity.
	for i, p := range r.players {
		if p.Name == msg.Name && p.ID != msg.PlayerID {
			r.players[i] = protocol.Player{ID: msg.PlayerID, Name: msg.Name}
			return
		}
	}
}

// onPlayerList reconciles the roster wholesale: entries already known
// are updated in place, arrivals are appended, absentees are dropped,
// and local readiness is re-derived from the authoritative entry.
func (r *Room) onPlayerList(payload json.RawMessage) {
	var msg protocol.PlayerListMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	incoming := make(map[int64]protocol.Player, len(msg.Players))
	for _, p := range msg.Players {
		incoming[p.ID] = p
	}

	reconciled := make([]protocol.Player, 0, len(msg.Players))
	for _, existing := range r.players {
		if updated, ok := incoming[existing.ID]; ok {
			reconciled = append(reconciled, updated)
			delete(incoming, existing.ID)
		}
	}
	for _, p := range msg.Players {
		if _, isNew := incoming[p.ID]; isNew {
			reconciled = append(reconciled, p)
		}
	}
	r.players = reconciled

	for _, p := range r.players {
		if p.ID == r.localID {
			r.ready = p.Ready
			break
		}
	}
}

func (r *Room) onGameStarted(json.RawMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.started = true
}

func (r *Room) onError(payload json.RawMessage) {
	var msg protocol.ErrorMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return
	}
	r.notify(msg.Message)
}

// ToggleReady flips readiness optimistically and emits the change. The
// next player_list broadcast may override the optimistic value.
func (r *Room) ToggleReady() error {
	r.mu.Lock()
	r.ready = !r.ready
	ready := r.ready
	r.mu.Unlock()

	return r.t.Send(protocol.EventToggleReady, protocol.ClientEvent{Ready: &ready})
}

// StartGame asks the server to begin. Host-only; refused locally with
// a message when fewer than two players are present.
func (r *Room) StartGame() error {
	r.mu.Lock()
	count := len(r.players)
	r.mu.Unlock()

	if count < 2 {
		r.notify("at least 2 players are needed to start")
		return ErrValidation
	}

	return r.t.Send(protocol.EventStartGame, protocol.ClientEvent{})
}

// KickPlayer asks the server to remove a player. Local state is not
// touched; the next roster broadcast confirms the removal.
func (r *Room) KickPlayer(playerID int64) error {
	return r.t.Send(protocol.EventRemovePlayer, protocol.ClientEvent{PlayerID: playerID})
}

// AllReady reports whether every present player has signaled ready.
func (r *Room) AllReady() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.players) == 0 {
		return false
	}
	for _, p := range r.players {
		if !p.Ready {
			return false
		}
	}
	return true
}

// Players returns a copy of the roster.
func (r *Room) Players() []protocol.Player {
	r.mu.Lock()
	defer r.mu.Unlock()

	players := make([]protocol.Player, len(r.players))
	copy(players, r.players)
	return players
}

// LocalID returns the server-assigned local player id, or 0.
func (r *Room) LocalID() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.localID
}

// IsHost reports whether the local player holds host privileges.
func (r *Room) IsHost() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.localID != 0 && r.localID == r.hostID
}

// HostID returns the hosting player's id.
func (r *Room) HostID() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hostID
}

// Ready returns the local readiness flag.
func (r *Room) Ready() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ready
}

// Started reports whether the game has begun.
func (r *Room) Started() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started
}

// Close drops the room's event subscriptions. Call when leaving the
// room so no events leak into a later game.
func (r *Room) Close() {
	r.t.Unsubscribe(protocol.EventJoined, r.subJoined)
	r.t.Unsubscribe(protocol.EventPlayerList, r.subList)
	r.t.Unsubscribe(protocol.EventGameStarted, r.subStarted)
	r.t.Unsubscribe(protocol.EventError, r.subError)
}
