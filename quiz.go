// Party-style Q&A quiz game.
//
// A host creates a game over REST, players join, and everyone connects
// to the per-game websocket. Each round the host draws a question,
// players submit free-text answers, the host reveals them anonymized,
// and everyone votes for their favorite. One vote is one point for the
// answer's author. After the configured number of rounds the final
// leaderboard is pushed to every client.
//
// Features:
// - WebSocket per game ID: /games/:gameid/ws
// - Host (the game's creator) can start the game, start rounds,
//   reveal submissions, and remove players
// - Answers are shuffled and tagged "A", "B", ... before voting, so
//   authorship is never visible to voters
// - One submission and one vote per player per round; repeats replace
// - Players identified by server-assigned ids; rejoining with a known
//   player id re-binds the socket instead of duplicating the player
// - Games auto-reaped after configurable idle timeout
// - In-browser QR button to share the current game, backed by go-qrcode

package main

import (
	"cmp"
	"crypto/rand"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Seednode/quizbox/protocol"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

// Phase of the active round, in strict order.
type Phase string

const (
	PhaseWaiting    Phase = "waiting"
	PhaseCollecting Phase = "collecting"
	PhaseVoting     Phase = "voting"
	PhaseFinished   Phase = "finished"
)

const fallbackQuestion = "Default question for testing"

type Client struct {
	conn     *websocket.Conn
	send     chan any
	id       string
	playerID int64
}

type joinRequest struct {
	client *Client
	msg    protocol.ClientEvent
}

type hostCommand struct {
	client *Client
	msg    protocol.ClientEvent
}

type playRequest struct {
	client *Client
	msg    protocol.ClientEvent
}

type Hub struct {
	gameID int64
	store  Store

	clients map[*Client]bool

	register chan *Client
	unreg    chan *Client
	joins    chan joinRequest
	cmds     chan hostCommand
	plays    chan playRequest

	mu sync.RWMutex

	createdAt  time.Time
	lastActive time.Time

	started  bool
	gameOver bool

	phase         Phase
	roundIndex    int
	round         *Round
	roundQuestion string

	subs     []Submission     // revealed order for the current round
	anonTags map[int64]string // submission id -> "A", "B", ...
	voted    map[int64]int64  // voter player id -> submission id

	scores map[int64]int // player id -> accumulated points
	wins   map[int64]int // player id -> rounds won
}

func newHub(gameID int64, store Store) *Hub {
	now := time.Now()
	return &Hub{
		gameID:     gameID,
		store:      store,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unreg:      make(chan *Client),
		joins:      make(chan joinRequest),
		cmds:       make(chan hostCommand),
		plays:      make(chan playRequest),
		createdAt:  now,
		lastActive: now,
		phase:      PhaseWaiting,
		anonTags:   make(map[int64]string),
		voted:      make(map[int64]int64),
		scores:     make(map[int64]int),
		wins:       make(map[int64]int),
	}
}

func (h *Hub) run(cfg *Config) {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.lastActive = time.Now()
			h.clients[c] = true

			// Catch the new connection up on whatever already happened.
			h.sendRosterLocked(c)
			h.sendRoundStateLocked(c)
			h.mu.Unlock()

		case c := <-h.unreg:
			h.mu.Lock()
			h.lastActive = time.Now()

			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			playerID := c.playerID
			isHost := playerID != 0 && playerID == h.hostIDLocked()
			h.mu.Unlock()

			// A disconnected host keeps their seat; anyone else is
			// removed if they do not come back in time.
			if playerID != 0 && !isHost {
				go h.scheduleRemoval(cfg, playerID, cfg.playerTimeout)
			}

		case jr := <-h.joins:
			h.handleJoin(cfg, jr)

		case cmd := <-h.cmds:
			h.handleHostCommand(cfg, cmd)

		case pr := <-h.plays:
			h.handlePlay(cfg, pr)
		}
	}
}

func (h *Hub) hostIDLocked() int64 {
	game, err := h.store.GetGame(h.gameID)
	if err != nil {
		return 0
	}
	return game.HostPlayerID
}

func (h *Hub) rosterLocked() []protocol.Player {
	players, err := h.store.PlayersByGame(h.gameID)
	if err != nil {
		return nil
	}

	roster := make([]protocol.Player, 0, len(players))
	for _, p := range players {
		roster = append(roster, protocol.Player{ID: p.ID, Name: p.Name, Ready: p.Ready})
	}
	return roster
}

func (h *Hub) sendLocked(c *Client, msg any) {
	select {
	case c.send <- msg:
	default:
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) broadcastLocked(msg any) {
	for client := range h.clients {
		h.sendLocked(client, msg)
	}
}

func (h *Hub) errorLocked(c *Client, text string) {
	h.sendLocked(c, protocol.ErrorMessage{Type: protocol.EventError, Message: text})
}

func (h *Hub) sendRosterLocked(c *Client) {
	h.sendLocked(c, protocol.PlayerListMessage{Type: protocol.EventPlayerList, Players: h.rosterLocked()})
}

func (h *Hub) broadcastRosterLocked() {
	h.broadcastLocked(protocol.PlayerListMessage{Type: protocol.EventPlayerList, Players: h.rosterLocked()})
}

// sendRoundStateLocked replays the current round to a late joiner so a
// reconnect lands in the right phase.
func (h *Hub) sendRoundStateLocked(c *Client) {
	if !h.started || h.round == nil {
		return
	}

	game, err := h.store.GetGame(h.gameID)
	if err != nil {
		return
	}
	h.sendLocked(c, protocol.GameStartedMessage{Type: protocol.EventGameStarted, GameID: h.gameID, Rounds: game.Rounds})

	h.sendLocked(c, protocol.RoundStartedMessage{
		Type:       protocol.EventRoundStarted,
		RoundID:    h.round.ID,
		RoundIndex: h.roundIndex,
		Question:   h.roundQuestion,
	})

	if h.phase == PhaseVoting || h.phase == PhaseFinished {
		h.sendLocked(c, protocol.SubmissionsRevealedMessage{
			Type:        protocol.EventSubmissionsRevealed,
			Submissions: h.revealedLocked(),
		})
		h.sendLocked(c, protocol.VoteUpdateMessage{Type: protocol.EventVoteUpdate, Counts: h.countsLocked()})
	}
}

func (h *Hub) revealedLocked() []protocol.RevealedSubmission {
	revealed := make([]protocol.RevealedSubmission, 0, len(h.subs))
	for _, sub := range h.subs {
		revealed = append(revealed, protocol.RevealedSubmission{
			SubmissionID: sub.ID,
			AnonID:       h.anonTags[sub.ID],
			Text:         sub.Text,
		})
	}
	return revealed
}

func (h *Hub) countsLocked() map[int64]int {
	counts := make(map[int64]int, len(h.subs))
	for _, sub := range h.subs {
		counts[sub.ID] = 0
	}
	for _, subID := range h.voted {
		counts[subID]++
	}
	return counts
}

// handleJoin processes "join_game" messages. A known player id means a
// reconnect and re-binds the socket; otherwise a new player is created.
func (h *Hub) handleJoin(cfg *Config, jr joinRequest) {
	c := jr.client
	msg := jr.msg

	name := strings.TrimSpace(msg.Name)
	if name == "" {
		name = "Player"
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastActive = time.Now()

	var player Player
	var err error

	if msg.PlayerID != 0 {
		player, err = h.store.GetPlayer(msg.PlayerID)
	}
	if msg.PlayerID == 0 || err != nil {
		player, err = h.store.CreatePlayer(h.gameID, name)
		if err != nil {
			h.errorLocked(c, "game not found")
			return
		}
		logf(cfg, "GAMES: Player %q joined game %d", name, h.gameID)
	}

	c.playerID = player.ID

	h.broadcastRosterLocked()
	h.sendLocked(c, protocol.JoinedMessage{Type: protocol.EventJoined, PlayerID: player.ID, Name: player.Name})
}

// handleHostCommand processes host-only commands: start_game,
// start_round, reveal_submissions, remove_player.
func (h *Hub) handleHostCommand(cfg *Config, cmd hostCommand) {
	c := cmd.client
	msg := cmd.msg

	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastActive = time.Now()

	hostID := h.hostIDLocked()
	if hostID == 0 || c.playerID != hostID {
		h.errorLocked(c, "only the host can do that")
		return
	}

	switch msg.Type {
	case protocol.EventStartGame:
		h.startGameLocked(cfg, c)

	case protocol.EventStartRound:
		h.startRoundLocked(cfg, c)

	case protocol.EventRevealSubmissions:
		h.revealLocked(cfg, c)

	case protocol.EventRemovePlayer:
		h.removePlayerLocked(cfg, c, msg.PlayerID)
	}
}

func (h *Hub) startGameLocked(cfg *Config, c *Client) {
	if h.started {
		h.errorLocked(c, "game already started")
		return
	}

	players, err := h.store.PlayersByGame(h.gameID)
	if err != nil || len(players) == 0 {
		h.errorLocked(c, "no players")
		return
	}

	game, err := h.store.GetGame(h.gameID)
	if err != nil {
		h.errorLocked(c, "game not found")
		return
	}

	h.started = true
	logf(cfg, "GAMES: Game %d started with %d players", h.gameID, len(players))

	h.broadcastLocked(protocol.GameStartedMessage{Type: protocol.EventGameStarted, GameID: h.gameID, Rounds: game.Rounds})
}

func (h *Hub) startRoundLocked(cfg *Config, c *Client) {
	if !h.started {
		h.errorLocked(c, "game has not started")
		return
	}
	if h.gameOver {
		h.errorLocked(c, "game is over")
		return
	}
	if h.phase == PhaseCollecting || h.phase == PhaseVoting {
		h.errorLocked(c, "round already in progress")
		return
	}

	question, err := h.store.RandomQuestion()
	if err != nil {
		question = Question{Text: fallbackQuestion}
	}

	round, err := h.store.CreateRound(h.gameID, question.ID, h.roundIndex+1)
	if err != nil {
		h.errorLocked(c, "could not start round")
		return
	}

	h.roundIndex++
	h.round = &round
	h.roundQuestion = question.Text
	h.phase = PhaseCollecting
	h.subs = nil
	h.anonTags = make(map[int64]string)
	h.voted = make(map[int64]int64)

	logf(cfg, "GAMES: Game %d round %d started", h.gameID, h.roundIndex)

	h.broadcastLocked(protocol.RoundStartedMessage{
		Type:       protocol.EventRoundStarted,
		RoundID:    round.ID,
		RoundIndex: h.roundIndex,
		Question:   question.Text,
	})
}

func (h *Hub) revealLocked(cfg *Config, c *Client) {
	if h.phase != PhaseCollecting || h.round == nil {
		h.errorLocked(c, "nothing to reveal")
		return
	}

	subs, err := h.store.SubmissionsByRound(h.round.ID)
	if err != nil || len(subs) == 0 {
		h.errorLocked(c, "no submissions yet")
		return
	}

	// Fisher-Yates shuffle using crypto/rand, so reveal order never
	// leaks submission order.
	for i := len(subs) - 1; i > 0; i-- {
		var b [1]byte
		if _, err := rand.Read(b[:]); err != nil {
			continue
		}
		j := int(b[0]) % (i + 1)
		subs[i], subs[j] = subs[j], subs[i]
	}

	h.subs = subs
	h.anonTags = make(map[int64]string, len(subs))
	for i, sub := range subs {
		h.anonTags[sub.ID] = anonTag(i)
	}
	h.voted = make(map[int64]int64)
	h.phase = PhaseVoting

	h.round.State = string(PhaseVoting)
	_ = h.store.UpdateRound(*h.round)

	logf(cfg, "GAMES: Game %d revealed %d submissions", h.gameID, len(subs))

	h.broadcastLocked(protocol.SubmissionsRevealedMessage{
		Type:        protocol.EventSubmissionsRevealed,
		Submissions: h.revealedLocked(),
	})
}

func (h *Hub) removePlayerLocked(cfg *Config, c *Client, playerID int64) {
	if playerID == 0 || playerID == c.playerID {
		h.errorLocked(c, "cannot remove that player")
		return
	}

	if _, err := h.store.GetPlayer(playerID); err != nil {
		h.errorLocked(c, "player not found")
		return
	}

	_ = h.store.DeletePlayer(playerID)
	delete(h.scores, playerID)
	delete(h.wins, playerID)
	delete(h.voted, playerID)

	for client := range h.clients {
		if client.playerID == playerID {
			h.sendLocked(client, protocol.ErrorMessage{Type: protocol.EventError, Message: "you have been removed by the host"})
			delete(h.clients, client)
			close(client.send)
		}
	}

	logf(cfg, "GAMES: Player %d removed from game %d", playerID, h.gameID)

	h.broadcastRosterLocked()

	// A removed non-voter may have been the last vote outstanding.
	h.maybeFinishRoundLocked(cfg)
}

// handlePlay processes non-host gameplay messages: toggle_ready,
// submit_answer, vote_submission.
func (h *Hub) handlePlay(cfg *Config, pr playRequest) {
	c := pr.client
	msg := pr.msg

	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastActive = time.Now()

	if c.playerID == 0 {
		h.errorLocked(c, "join the game first")
		return
	}

	switch msg.Type {
	case protocol.EventToggleReady:
		h.toggleReadyLocked(c, msg)

	case protocol.EventSubmitAnswer:
		h.submitAnswerLocked(cfg, c, msg)

	case protocol.EventVoteSubmission:
		h.voteLocked(cfg, c, msg)
	}
}

func (h *Hub) toggleReadyLocked(c *Client, msg protocol.ClientEvent) {
	player, err := h.store.GetPlayer(c.playerID)
	if err != nil {
		h.errorLocked(c, "player not found")
		return
	}

	if msg.Ready != nil {
		player.Ready = *msg.Ready
	} else {
		player.Ready = !player.Ready
	}

	if err := h.store.UpdatePlayer(player); err != nil {
		h.errorLocked(c, "could not update readiness")
		return
	}

	h.broadcastRosterLocked()
}

func (h *Hub) submitAnswerLocked(cfg *Config, c *Client, msg protocol.ClientEvent) {
	if h.phase != PhaseCollecting || h.round == nil {
		h.errorLocked(c, "no round is collecting answers")
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		h.errorLocked(c, "answer cannot be empty")
		return
	}

	// Idempotency: a stale round id means a late duplicate from a
	// previous round, not an error worth surfacing.
	if msg.RoundID != 0 && msg.RoundID != h.round.ID {
		return
	}

	if _, err := h.store.UpsertSubmission(h.round.ID, c.playerID, text); err != nil {
		h.errorLocked(c, "could not record answer")
		return
	}

	logf(cfg, "GAMES: Game %d round %d answer from player %d", h.gameID, h.roundIndex, c.playerID)
}

func (h *Hub) voteLocked(cfg *Config, c *Client, msg protocol.ClientEvent) {
	if h.phase != PhaseVoting || h.round == nil {
		h.errorLocked(c, "no round is voting")
		return
	}

	// Idempotency: a stale round id means a late duplicate from a
	// previous round, not an error worth surfacing.
	if msg.RoundID != 0 && msg.RoundID != h.round.ID {
		return
	}

	tag, known := h.anonTags[msg.SubmissionID]
	if !known {
		h.errorLocked(c, "unknown submission")
		return
	}

	for _, sub := range h.subs {
		if sub.ID == msg.SubmissionID && sub.PlayerID == c.playerID {
			h.errorLocked(c, "cannot vote for your own answer")
			return
		}
	}

	if err := h.store.UpsertVote(h.round.ID, msg.SubmissionID, c.playerID); err != nil {
		h.errorLocked(c, "could not record vote")
		return
	}
	h.voted[c.playerID] = msg.SubmissionID

	logf(cfg, "GAMES: Game %d round %d vote for %q from player %d", h.gameID, h.roundIndex, tag, c.playerID)

	h.broadcastLocked(protocol.VoteUpdateMessage{Type: protocol.EventVoteUpdate, Counts: h.countsLocked()})

	h.maybeFinishRoundLocked(cfg)
}

// maybeFinishRoundLocked closes the voting phase once every present
// player has voted. Runs after each vote and after roster shrinkage,
// so a departing non-voter cannot strand the round in voting.
func (h *Hub) maybeFinishRoundLocked(cfg *Config) {
	if h.phase != PhaseVoting || h.round == nil {
		return
	}

	players, err := h.store.PlayersByGame(h.gameID)
	if err != nil || len(players) == 0 {
		return
	}

	if len(h.voted) >= len(players) {
		h.finishRoundLocked(cfg)
	}
}

func (h *Hub) finishRoundLocked(cfg *Config) {
	counts := h.countsLocked()

	// Winner is the highest tally; ties break toward reveal order.
	var winner Submission
	best := -1
	for _, sub := range h.subs {
		if counts[sub.ID] > best {
			best = counts[sub.ID]
			winner = sub
		}
	}

	for _, sub := range h.subs {
		h.scores[sub.PlayerID] += counts[sub.ID]
	}
	if winner.ID != 0 {
		h.wins[winner.PlayerID]++
	}

	h.phase = PhaseFinished
	h.round.State = string(PhaseFinished)
	_ = h.store.UpdateRound(*h.round)

	logf(cfg, "GAMES: Game %d round %d finished, winner %q", h.gameID, h.roundIndex, h.anonTags[winner.ID])

	h.broadcastLocked(protocol.RoundFinishedMessage{
		Type:               protocol.EventRoundFinished,
		WinnerSubmissionID: winner.ID,
	})

	game, err := h.store.GetGame(h.gameID)
	if err == nil && h.roundIndex >= game.Rounds {
		h.gameOver = true
		logf(cfg, "GAMES: Game %d finished after %d rounds", h.gameID, h.roundIndex)
		h.broadcastLocked(protocol.GameFinishedMessage{
			Type:        protocol.EventGameFinished,
			Leaderboard: h.leaderboardLocked(),
		})
	}
}

// leaderboardLocked builds the terminal standings, best score first.
// Ties keep ascending player id order; ranks are positional and
// assigned client-side.
func (h *Hub) leaderboardLocked() []protocol.LeaderboardEntry {
	players, err := h.store.PlayersByGame(h.gameID)
	if err != nil {
		return nil
	}

	entries := make([]protocol.LeaderboardEntry, 0, len(players))
	for _, p := range players {
		entries = append(entries, protocol.LeaderboardEntry{
			PlayerID: p.ID,
			Name:     p.Name,
			Avatar:   avatarFor(p.Name),
			Score:    h.scores[p.ID],
			Correct:  h.wins[p.ID],
			Total:    h.roundIndex,
		})
	}

	slices.SortStableFunc(entries, func(a, b protocol.LeaderboardEntry) int {
		return cmp.Compare(b.Score, a.Score)
	})

	return entries
}

// scheduleRemoval waits for d, and if no client with this player id
// has reconnected, removes the player and broadcasts the new roster.
func (h *Hub) scheduleRemoval(cfg *Config, playerID int64, d time.Duration) {
	time.Sleep(d)

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		if client.playerID == playerID {
			return
		}
	}

	if _, err := h.store.GetPlayer(playerID); err != nil {
		return
	}

	_ = h.store.DeletePlayer(playerID)
	delete(h.voted, playerID)

	h.lastActive = time.Now()

	h.broadcastRosterLocked()

	// The departed player may have been the last vote outstanding.
	h.maybeFinishRoundLocked(cfg)
}

// closeAll disconnects all clients of this hub (used by reaper).
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		close(c.send)
		if c.conn != nil {
			_ = c.conn.Close()
		}
		delete(h.clients, c)
	}
}

// anonTag labels reveal positions "A".."Z", "AA".."ZZ", "AAA", and so
// on, for any index.
func anonTag(i int) string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	tag := ""
	for i >= 0 {
		tag = string(letters[i%len(letters)]) + tag
		i = i/len(letters) - 1
	}
	return tag
}

var avatars = []string{"🦊", "🐼", "🦉", "🐙", "🦄", "🐸", "🦁", "🐧", "🦋", "🐢"}

func avatarFor(name string) string {
	sum := 0
	for _, r := range name {
		sum += int(r)
	}
	return avatars[sum%len(avatars)]
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// GameManager holds a set of hubs keyed by game ID, so each game is
// its own isolated session.
type GameManager struct {
	mu          sync.Mutex
	store       Store
	hubs        map[int64]*Hub
	idleTimeout time.Duration
}

func newGameManager(store Store, idleTimeout time.Duration) *GameManager {
	gm := &GameManager{
		store:       store,
		hubs:        make(map[int64]*Hub),
		idleTimeout: idleTimeout,
	}
	if idleTimeout > 0 {
		go gm.reaperLoop()
	}
	return gm
}

func (gm *GameManager) getHub(cfg *Config, gameID int64) (*Hub, error) {
	if _, err := gm.store.GetGame(gameID); err != nil {
		return nil, err
	}

	gm.mu.Lock()
	defer gm.mu.Unlock()

	if hub, ok := gm.hubs[gameID]; ok {
		return hub, nil
	}

	hub := newHub(gameID, gm.store)
	gm.hubs[gameID] = hub
	go hub.run(cfg)
	return hub, nil
}

// reaperLoop periodically removes hubs that have been idle longer than
// idleTimeout.
func (gm *GameManager) reaperLoop() {
	ticker := time.NewTicker(gm.idleTimeout / 2)
	for range ticker.C {
		cutoff := time.Now().Add(-gm.idleTimeout)

		gm.mu.Lock()
		for id, hub := range gm.hubs {
			hub.mu.RLock()
			last := hub.lastActive
			hub.mu.RUnlock()

			if last.Before(cutoff) {
				delete(gm.hubs, id)
				go hub.closeAll()
			}
		}
		gm.mu.Unlock()
	}
}

// WebSocket handler that picks the hub based on :gameid
func serveWSForManager(cfg *Config, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		gameID, err := strconv.ParseInt(ps.ByName("gameid"), 10, 64)
		if err != nil {
			http.Error(w, "invalid game id", http.StatusBadRequest)
			return
		}

		hub, err := gm.getHub(cfg, gameID)
		if err != nil {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "ERROR: upgrade: %v", err)
			return
		}

		client := &Client{
			conn: conn,
			send: make(chan any, 8),
			id:   uuid.NewString(),
		}

		hub.register <- client

		go client.writePump()
		client.readPump(hub)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		h.unreg <- c
		_ = c.conn.Close()
	}()

	for {
		var msg protocol.ClientEvent
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case protocol.EventJoinGame:
			h.joins <- joinRequest{client: c, msg: msg}
		case protocol.EventStartGame, protocol.EventStartRound, protocol.EventRevealSubmissions, protocol.EventRemovePlayer:
			h.cmds <- hostCommand{client: c, msg: msg}
		case protocol.EventToggleReady, protocol.EventSubmitAnswer, protocol.EventVoteSubmission:
			h.plays <- playRequest{client: c, msg: msg}
		default:
			// ignore unknown types
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// QR handler: generates a PNG QR code for the game's join URL using
// go-qrcode.
func qrHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	gameID := ps.ByName("gameid")
	if gameID == "" {
		http.Error(w, "missing game id", http.StatusBadRequest)
		return
	}

	// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// We are at /games/:gameid/qr; strip trailing "/qr" to get the
	// game URL.
	path := strings.TrimSuffix(r.URL.Path, "/qr")

	url := scheme + "://" + r.Host + path

	const qrSize = 320 // mobile-friendly size
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

// registerQuizGame sets up the REST and realtime routes:
//   - POST /games                    → create a game (host + round count)
//   - GET  /games                    → list open games
//   - GET  /games/:gameid            → game detail with roster
//   - POST /games/:gameid/join       → join by name
//   - GET  /games/:gameid/players    → roster only
//   - GET  /games/:gameid/scores     → accumulated points per player
//   - GET  /games/:gameid/ws         → per-game websocket
//   - GET  /games/:gameid/qr         → PNG QR code for the game URL
//   - GET  /question/random          → one random question
//   - POST /admin/questions/import   → bulk-load the question bank
func registerQuizGame(cfg *Config, store Store, mux *httprouter.Router) {
	gm := newGameManager(store, cfg.sessionTimeout)

	mux.POST(cfg.prefix+"/games", createGameHandler(cfg, store))
	mux.GET(cfg.prefix+"/games", listGamesHandler(cfg, store))
	mux.GET(cfg.prefix+"/games/:gameid", getGameHandler(cfg, store))
	mux.POST(cfg.prefix+"/games/:gameid/join", joinGameHandler(cfg, store))
	mux.GET(cfg.prefix+"/games/:gameid/players", getPlayersHandler(cfg, store))
	mux.GET(cfg.prefix+"/games/:gameid/scores", getScoresHandler(cfg, store))

	mux.GET(cfg.prefix+"/games/:gameid/ws", serveWSForManager(cfg, gm))
	mux.GET(cfg.prefix+"/games/:gameid/qr", qrHandler)

	mux.GET(cfg.prefix+"/question/random", randomQuestionHandler(cfg, store))
	mux.POST(cfg.prefix+"/admin/questions/import", importQuestionsHandler(cfg, store))
}
