package client

import (
	"testing"

	"github.com/Seednode/quizbox/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRoom(t *testing.T, hostID int64, localName string) (*Room, *[]string) {
	t.Helper()

	transport, err := NewTransport("http://localhost:0")
	require.NoError(t, err)

	var notices []string
	r := NewRoom(transport, hostID, localName, func(msg string) {
		notices = append(notices, msg)
	})
	t.Cleanup(r.Close)

	return r, &notices
}

func roster(t *testing.T, r *Room, players ...protocol.Player) {
	t.Helper()

	r.onPlayerList(rawMessage(t, protocol.PlayerListMessage{
		Type:    protocol.EventPlayerList,
		Players: players,
	}))
}

func TestPlayerListReconciliation(t *testing.T) {
	r, _ := newTestRoom(t, 1, "Alex")

	roster(t, r,
		protocol.Player{ID: 1, Name: "Alex"},
		protocol.Player{ID: 2, Name: "Sam"},
	)

	players := r.Players()
	require.Len(t, players, 2)
	assert.Equal(t, "Alex", players[0].Name)
	assert.Equal(t, "Sam", players[1].Name)

	// Kim arrives, Sam leaves, Alex flips to ready. Known entries keep
	// their position, arrivals append, absentees vanish.
	roster(t, r,
		protocol.Player{ID: 3, Name: "Kim"},
		protocol.Player{ID: 1, Name: "Alex", Ready: true},
	)

	players = r.Players()
	require.Len(t, players, 2)
	assert.Equal(t, "Alex", players[0].Name)
	assert.True(t, players[0].Ready)
	assert.Equal(t, "Kim", players[1].Name)
}

func TestPlayerListRederivesLocalReady(t *testing.T) {
	r, _ := newTestRoom(t, 1, "Alex")

	r.onJoined(rawMessage(t, protocol.JoinedMessage{
		Type:     protocol.EventJoined,
		PlayerID: 1,
		Name:     "Alex",
	}))
	assert.Equal(t, int64(1), r.LocalID())

	roster(t, r, protocol.Player{ID: 1, Name: "Alex", Ready: true})
	assert.True(t, r.Ready())

	// The authoritative broadcast overrides whatever the local flag
	// optimistically became.
	roster(t, r, protocol.Player{ID: 1, Name: "Alex", Ready: false})
	assert.False(t, r.Ready())
}

func TestJoinedSupersedesStaleEntry(t *testing.T) {
	r, _ := newTestRoom(t, 1, "Sam")

	roster(t, r,
		protocol.Player{ID: 1, Name: "Alex"},
		protocol.Player{ID: 7, Name: "Sam", Ready: true},
	)

	// A reconnect assigns a fresh id under the same name; the stale
	// entry is replaced rather than duplicated.
	r.onJoined(rawMessage(t, protocol.JoinedMessage{
		Type:     protocol.EventJoined,
		PlayerID: 9,
		Name:     "Sam",
	}))

	players := r.Players()
	require.Len(t, players, 2)
	assert.Equal(t, int64(9), players[1].ID)
	assert.Equal(t, int64(9), r.LocalID())
}

func TestStartGameNeedsTwoPlayers(t *testing.T) {
	cases := []struct {
		name    string
		players []protocol.Player
	}{
		{"empty room", nil},
		{"host alone", []protocol.Player{{ID: 1, Name: "Alex"}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, notices := newTestRoom(t, 1, "Alex")
			roster(t, r, tc.players...)

			err := r.StartGame()
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, []string{"at least 2 players are needed to start"}, *notices)
			assert.False(t, r.Started())
		})
	}
}

func TestAllReady(t *testing.T) {
	r, _ := newTestRoom(t, 1, "Alex")

	// An empty room is never "all ready".
	assert.False(t, r.AllReady())

	roster(t, r,
		protocol.Player{ID: 1, Name: "Alex", Ready: true},
		protocol.Player{ID: 2, Name: "Sam"},
	)
	assert.False(t, r.AllReady())

	roster(t, r,
		protocol.Player{ID: 1, Name: "Alex", Ready: true},
		protocol.Player{ID: 2, Name: "Sam", Ready: true},
	)
	assert.True(t, r.AllReady())
}

func TestIsHost(t *testing.T) {
	r, _ := newTestRoom(t, 1, "Alex")

	// Unknown local identity is never host.
	assert.False(t, r.IsHost())

	r.onJoined(rawMessage(t, protocol.JoinedMessage{Type: protocol.EventJoined, PlayerID: 1, Name: "Alex"}))
	assert.True(t, r.IsHost())

	other, _ := newTestRoom(t, 1, "Sam")
	other.onJoined(rawMessage(t, protocol.JoinedMessage{Type: protocol.EventJoined, PlayerID: 2, Name: "Sam"}))
	assert.False(t, other.IsHost())
}

func TestGameStartedEvent(t *testing.T) {
	r, _ := newTestRoom(t, 1, "Alex")

	assert.False(t, r.Started())
	r.onGameStarted(rawMessage(t, protocol.GameStartedMessage{Type: protocol.EventGameStarted, GameID: 1, Rounds: 3}))
	assert.True(t, r.Started())
}

func TestServerErrorsReachNotify(t *testing.T) {
	r, notices := newTestRoom(t, 1, "Alex")

	r.onError(rawMessage(t, protocol.ErrorMessage{Type: protocol.EventError, Message: "only the host can do that"}))
	assert.Equal(t, []string{"only the host can do that"}, *notices)
}
