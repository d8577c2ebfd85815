/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// postgresStore persists games across restarts. Schema is migrated on
// startup; all six tables mirror the in-memory maps.
type postgresStore struct {
	db *gorm.DB
}

func newPostgresStore(dsn string) (*postgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(&Question{}, &Game{}, &Player{}, &Round{}, &Submission{}, &Vote{})
	if err != nil {
		return nil, err
	}

	return &postgresStore{db: db}, nil
}

func wrapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *postgresStore) CreateQuestion(text string) (Question, error) {
	q := Question{Text: text}
	return q, s.db.Create(&q).Error
}

func (s *postgresStore) RandomQuestion() (Question, error) {
	var q Question
	err := s.db.Order("random()").First(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Question{}, ErrNoQuestions
	}
	return q, err
}

func (s *postgresStore) CreateGame(rounds int) (Game, error) {
	g := Game{Rounds: rounds}
	return g, s.db.Create(&g).Error
}

func (s *postgresStore) SetHostPlayer(gameID, playerID int64) error {
	res := s.db.Model(&Game{}).Where("id = ?", gameID).Update("host_player_id", playerID)
	if res.Error == nil && res.RowsAffected == 0 {
		return ErrNotFound
	}
	return res.Error
}

func (s *postgresStore) GetGame(id int64) (Game, error) {
	var g Game
	err := s.db.First(&g, id).Error
	return g, wrapNotFound(err)
}

func (s *postgresStore) ListGames() ([]Game, error) {
	var games []Game
	err := s.db.Order("id").Find(&games).Error
	return games, err
}

func (s *postgresStore) CreatePlayer(gameID int64, name string) (Player, error) {
	if _, err := s.GetGame(gameID); err != nil {
		return Player{}, err
	}

	p := Player{Name: name, GameID: gameID}
	return p, s.db.Create(&p).Error
}

func (s *postgresStore) GetPlayer(id int64) (Player, error) {
	var p Player
	err := s.db.First(&p, id).Error
	return p, wrapNotFound(err)
}

func (s *postgresStore) UpdatePlayer(p Player) error {
	res := s.db.Model(&Player{}).Where("id = ?", p.ID).
		Updates(map[string]any{"name": p.Name, "ready": p.Ready})
	if res.Error == nil && res.RowsAffected == 0 {
		return ErrNotFound
	}
	return res.Error
}

func (s *postgresStore) DeletePlayer(id int64) error {
	return s.db.Delete(&Player{}, id).Error
}

func (s *postgresStore) PlayersByGame(gameID int64) ([]Player, error) {
	var players []Player
	err := s.db.Where("game_id = ?", gameID).Order("id").Find(&players).Error
	return players, err
}

func (s *postgresStore) CreateRound(gameID, questionID int64, seq int) (Round, error) {
	if _, err := s.GetGame(gameID); err != nil {
		return Round{}, err
	}

	r := Round{GameID: gameID, QuestionID: questionID, Seq: seq, State: "collecting"}
	return r, s.db.Create(&r).Error
}

func (s *postgresStore) UpdateRound(r Round) error {
	res := s.db.Model(&Round{}).Where("id = ?", r.ID).Update("state", r.State)
	if res.Error == nil && res.RowsAffected == 0 {
		return ErrNotFound
	}
	return res.Error
}

func (s *postgresStore) RoundsByGame(gameID int64) ([]Round, error) {
	var rounds []Round
	err := s.db.Where("game_id = ?", gameID).Order("id").Find(&rounds).Error
	return rounds, err
}

func (s *postgresStore) UpsertSubmission(roundID, playerID int64, text string) (Submission, error) {
	var sub Submission
	err := s.db.Where("round_id = ? AND player_id = ?", roundID, playerID).First(&sub).Error

	switch {
	case err == nil:
		sub.Text = text
		return sub, s.db.Model(&Submission{}).Where("id = ?", sub.ID).Update("text", text).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		sub = Submission{RoundID: roundID, PlayerID: playerID, Text: text}
		return sub, s.db.Create(&sub).Error
	default:
		return Submission{}, err
	}
}

func (s *postgresStore) SubmissionsByRound(roundID int64) ([]Submission, error) {
	var subs []Submission
	err := s.db.Where("round_id = ?", roundID).Order("id").Find(&subs).Error
	return subs, err
}

func (s *postgresStore) UpsertVote(roundID, submissionID, voterID int64) error {
	var v Vote
	err := s.db.Where("round_id = ? AND voter_player_id = ?", roundID, voterID).First(&v).Error

	switch {
	case err == nil:
		return s.db.Model(&Vote{}).Where("id = ?", v.ID).Update("submission_id", submissionID).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		v = Vote{RoundID: roundID, SubmissionID: submissionID, VoterPlayerID: voterID}
		return s.db.Create(&v).Error
	default:
		return err
	}
}

func (s *postgresStore) VotesByRound(roundID int64) ([]Vote, error) {
	var votes []Vote
	err := s.db.Where("round_id = ?", roundID).Find(&votes).Error
	return votes, err
}
