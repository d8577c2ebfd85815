package client

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Seednode/quizbox/protocol"
)

// How often the open-games list refreshes while nothing is joined.
const pollInterval = 5 * time.Second

// Lobby lists open games and gets the local player into one. Once a
// game is joined it remembers the identity the server assigned.
type Lobby struct {
	t         *Transport
	pollEvery time.Duration

	mu       sync.Mutex
	games    []protocol.GameSummary
	gameID   int64
	playerID int64
}

func NewLobby(t *Transport) *Lobby {
	return &Lobby{t: t, pollEvery: pollInterval}
}

// ListGames refreshes and returns the open games. Failures yield an
// empty list so the caller always has something renderable.
func (l *Lobby) ListGames(ctx context.Context) []protocol.GameSummary {
	games, err := l.t.FetchGames(ctx)
	if err != nil {
		return []protocol.GameSummary{}
	}
	if games == nil {
		games = []protocol.GameSummary{}
	}

	l.mu.Lock()
	l.games = games
	l.mu.Unlock()

	return games
}

// CreateGame makes a new game hosted by hostName and records the
// assigned identity. rounds <= 0 takes the server default.
func (l *Lobby) CreateGame(ctx context.Context, hostName string, rounds int) (gameID, playerID int64, err error) {
	if strings.TrimSpace(hostName) == "" {
		return 0, 0, ErrValidation
	}

	created, err := l.t.createGame(ctx, hostName, rounds)
	if err != nil {
		return 0, 0, err
	}

	l.mu.Lock()
	l.gameID = created.GameID
	l.playerID = created.HostPlayerID
	l.mu.Unlock()

	return created.GameID, created.HostPlayerID, nil
}

// JoinGame joins an existing game and records the assigned identity.
func (l *Lobby) JoinGame(ctx context.Context, gameID int64, playerName string) (playerID int64, err error) {
	if gameID <= 0 || strings.TrimSpace(playerName) == "" {
		return 0, ErrValidation
	}

	joined, err := l.t.joinGame(ctx, gameID, playerName)
	if err != nil {
		return 0, err
	}

	l.mu.Lock()
	l.gameID = gameID
	l.playerID = joined.PlayerID
	l.mu.Unlock()

	return joined.PlayerID, nil
}

// Joined reports whether a game has been entered.
func (l *Lobby) Joined() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gameID != 0
}

// GameID returns the joined game, or 0.
func (l *Lobby) GameID() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gameID
}

// PlayerID returns the server-assigned local identity, or 0.
func (l *Lobby) PlayerID() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.playerID
}

// Games returns the last fetched list.
func (l *Lobby) Games() []protocol.GameSummary {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.games
}

// Poll refreshes the open-games list every five seconds until the
// context ends or a game is joined. Blocks; run it in a goroutine.
func (l *Lobby) Poll(ctx context.Context) {
	ticker := time.NewTicker(l.pollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if l.Joined() {
				return
			}
			l.ListGames(ctx)
		}
	}
}
