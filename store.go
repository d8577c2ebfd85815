/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"time"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrNoQuestions = errors.New("question bank is empty")
)

// Question is one prompt from the shared question bank.
type Question struct {
	ID   int64  `gorm:"primaryKey"`
	Text string `gorm:"not null"`
}

// Game is one session from creation to final leaderboard.
type Game struct {
	ID           int64 `gorm:"primaryKey"`
	CreatedAt    time.Time
	Rounds       int
	HostPlayerID int64
}

// Player belongs to exactly one game. Ready only matters pre-start.
type Player struct {
	ID     int64 `gorm:"primaryKey"`
	Name   string
	GameID int64 `gorm:"index"`
	Ready  bool
}

// Round is one question/answer/vote cycle. Seq starts at 1 and is
// bounded by the game's configured round count.
type Round struct {
	ID         int64 `gorm:"primaryKey"`
	GameID     int64 `gorm:"index"`
	QuestionID int64
	Seq        int
	State      string
}

// Submission is a player's answer for a round. One per player per
// round; re-submitting replaces the text.
type Submission struct {
	ID        int64 `gorm:"primaryKey"`
	RoundID   int64 `gorm:"index"`
	PlayerID  int64
	Text      string
	CreatedAt time.Time
}

// Vote is one player's pick for a round. One per voter per round;
// re-voting replaces the pick.
type Vote struct {
	ID            int64 `gorm:"primaryKey"`
	RoundID       int64 `gorm:"index"`
	SubmissionID  int64
	VoterPlayerID int64
	CreatedAt     time.Time
}

// Store is the persistence boundary shared by the REST handlers and
// the per-game hubs. The in-memory implementation backs tests and
// single-node use; the Postgres implementation is selected by
// --database-url.
type Store interface {
	CreateQuestion(text string) (Question, error)
	RandomQuestion() (Question, error)

	CreateGame(rounds int) (Game, error)
	SetHostPlayer(gameID, playerID int64) error
	GetGame(id int64) (Game, error)
	ListGames() ([]Game, error)

	CreatePlayer(gameID int64, name string) (Player, error)
	GetPlayer(id int64) (Player, error)
	UpdatePlayer(p Player) error
	DeletePlayer(id int64) error
	PlayersByGame(gameID int64) ([]Player, error)

	CreateRound(gameID, questionID int64, seq int) (Round, error)
	UpdateRound(r Round) error
	RoundsByGame(gameID int64) ([]Round, error)

	UpsertSubmission(roundID, playerID int64, text string) (Submission, error)
	SubmissionsByRound(roundID int64) ([]Submission, error)

	UpsertVote(roundID, submissionID, voterID int64) error
	VotesByRound(roundID int64) ([]Vote, error)
}

func newStore(cfg *Config) (Store, error) {
	if cfg.databaseURL == "" {
		return newMemoryStore(), nil
	}

	return newPostgresStore(cfg.databaseURL)
}
