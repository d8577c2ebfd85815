// Package protocol defines the JSON messages exchanged between the
// quizbox server and its clients over the per-game websocket, plus the
// payloads of the one-shot REST endpoints. Both halves of the module
// marshal these types, so the wire format lives in one place.
package protocol

import "time"

// Client -> server event names.
const (
	EventJoinGame          = "join_game"
	EventToggleReady       = "toggle_ready"
	EventStartGame         = "start_game"
	EventStartRound        = "start_round"
	EventSubmitAnswer      = "submit_answer"
	EventRevealSubmissions = "reveal_submissions"
	EventVoteSubmission    = "vote_submission"
	EventRemovePlayer      = "remove_player"
)

// Server -> client event names.
const (
	EventJoined              = "joined"
	EventPlayerList          = "player_list"
	EventGameStarted         = "game_started"
	EventRoundStarted        = "round_started"
	EventSubmissionsRevealed = "submissions_revealed"
	EventVoteUpdate          = "vote_update"
	EventRoundFinished       = "round_finished"
	EventGameFinished        = "game_finished"
	EventError               = "error"
)

// Player is a roster entry as broadcast in player_list.
type Player struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Ready bool   `json:"ready"`
}

// ClientEvent is the single inbound message shape. Type selects the
// event; the remaining fields are populated as each event requires.
type ClientEvent struct {
	Type         string `json:"type"`
	GameID       int64  `json:"game_id,omitempty"`
	Name         string `json:"name,omitempty"`
	PlayerID     int64  `json:"player_id,omitempty"`
	Ready        *bool  `json:"ready,omitempty"`
	Text         string `json:"text,omitempty"`
	RoundID      int64  `json:"round_id,omitempty"`
	SubmissionID int64  `json:"submission_id,omitempty"`
}

// JoinedMessage assigns the connecting client its player identity.
type JoinedMessage struct {
	Type     string `json:"type"` // "joined"
	PlayerID int64  `json:"player_id"`
	Name     string `json:"name"`
}

// PlayerListMessage is the authoritative roster broadcast.
type PlayerListMessage struct {
	Type    string   `json:"type"` // "player_list"
	Players []Player `json:"players"`
}

// GameStartedMessage tells every client to move to the play view.
type GameStartedMessage struct {
	Type   string `json:"type"` // "game_started"
	GameID int64  `json:"game_id"`
	Rounds int    `json:"rounds"`
}

// RoundStartedMessage opens the answer-collection phase.
type RoundStartedMessage struct {
	Type       string `json:"type"` // "round_started"
	RoundID    int64  `json:"round_id"`
	RoundIndex int    `json:"round_index"`
	Question   string `json:"question"`
}

// RevealedSubmission is one anonymized answer shown during voting.
// The author's player id is never part of this message.
type RevealedSubmission struct {
	SubmissionID int64  `json:"submission_id"`
	AnonID       string `json:"anon_id"`
	Text         string `json:"text"`
}

// SubmissionsRevealedMessage opens the voting phase.
type SubmissionsRevealedMessage struct {
	Type        string               `json:"type"` // "submissions_revealed"
	Submissions []RevealedSubmission `json:"submissions"`
}

// VoteUpdateMessage replaces the tally wholesale on every vote.
type VoteUpdateMessage struct {
	Type   string        `json:"type"` // "vote_update"
	Counts map[int64]int `json:"counts"`
}

// RoundFinishedMessage closes the round once every player has voted.
type RoundFinishedMessage struct {
	Type               string `json:"type"` // "round_finished"
	WinnerSubmissionID int64  `json:"winner_submission_id,omitempty"`
}

// LeaderboardEntry is a final standing, ordered best-first. Rank is
// assigned by list position on the client, not sent over the wire.
type LeaderboardEntry struct {
	PlayerID int64  `json:"player_id"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar,omitempty"`
	Score    int    `json:"score"`
	Correct  int    `json:"correct"`
	Total    int    `json:"total"`
}

// GameFinishedMessage carries the terminal leaderboard after the last
// round, so clients reach the results view without polling.
type GameFinishedMessage struct {
	Type        string             `json:"type"` // "game_finished"
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

// ErrorMessage surfaces a server rejection to one client. Non-fatal.
type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Message string `json:"msg"`
}

// REST payloads.

type CreateGameRequest struct {
	HostName string `json:"host_name"`
	Rounds   int    `json:"rounds"`
}

type CreateGameResponse struct {
	GameID       int64 `json:"game_id"`
	HostPlayerID int64 `json:"host_player_id"`
}

type JoinGameRequest struct {
	PlayerName string `json:"player_name"`
}

type JoinGameResponse struct {
	PlayerID int64 `json:"player_id"`
	GameID   int64 `json:"game_id"`
}

type GameSummary struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

type GameDetail struct {
	ID           int64     `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Rounds       int       `json:"rounds"`
	HostPlayerID int64     `json:"host_player_id"`
	Players      []Player  `json:"players"`
}

type QuestionResponse struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

type ImportQuestionsRequest struct {
	Questions []string `json:"questions"`
}

type ImportQuestionsResponse struct {
	Imported int `json:"imported"`
}

type ScoreEntry struct {
	PlayerID   int64  `json:"player_id"`
	PlayerName string `json:"player_name"`
	Points     int    `json:"points"`
}
