/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"cmp"
	"crypto/rand"
	"math/big"
	"slices"
	"sync"
	"time"
)

// memoryStore keeps everything in maps behind a single mutex. It is
// the default backend when no database URL is configured, and the one
// the tests run against.
type memoryStore struct {
	mu sync.RWMutex

	nextID      int64
	questions   map[int64]Question
	games       map[int64]Game
	players     map[int64]Player
	rounds      map[int64]Round
	submissions map[int64]Submission
	votes       map[int64]Vote
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		questions:   make(map[int64]Question),
		games:       make(map[int64]Game),
		players:     make(map[int64]Player),
		rounds:      make(map[int64]Round),
		submissions: make(map[int64]Submission),
		votes:       make(map[int64]Vote),
	}
}

func (s *memoryStore) nextIDLocked() int64 {
	s.nextID++
	return s.nextID
}

func (s *memoryStore) CreateQuestion(text string) (Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := Question{ID: s.nextIDLocked(), Text: text}
	s.questions[q.ID] = q
	return q, nil
}

func (s *memoryStore) RandomQuestion() (Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.questions) == 0 {
		return Question{}, ErrNoQuestions
	}

	ids := make([]int64, 0, len(s.questions))
	for id := range s.questions {
		ids = append(ids, id)
	}

	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(ids))))
	if err != nil {
		return Question{}, err
	}

	return s.questions[ids[n.Int64()]], nil
}

func (s *memoryStore) CreateGame(rounds int) (Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := Game{ID: s.nextIDLocked(), CreatedAt: time.Now(), Rounds: rounds}
	s.games[g.ID] = g
	return g, nil
}

func (s *memoryStore) SetHostPlayer(gameID, playerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[gameID]
	if !ok {
		return ErrNotFound
	}
	g.HostPlayerID = playerID
	s.games[gameID] = g
	return nil
}

func (s *memoryStore) GetGame(id int64) (Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.games[id]
	if !ok {
		return Game{}, ErrNotFound
	}
	return g, nil
}

func (s *memoryStore) ListGames() ([]Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	games := make([]Game, 0, len(s.games))
	for _, g := range s.games {
		games = append(games, g)
	}
	return games, nil
}

func (s *memoryStore) CreatePlayer(gameID int64, name string) (Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.games[gameID]; !ok {
		return Player{}, ErrNotFound
	}

	p := Player{ID: s.nextIDLocked(), Name: name, GameID: gameID}
	s.players[p.ID] = p
	return p, nil
}

func (s *memoryStore) GetPlayer(id int64) (Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.players[id]
	if !ok {
		return Player{}, ErrNotFound
	}
	return p, nil
}

func (s *memoryStore) UpdatePlayer(p Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.players[p.ID]; !ok {
		return ErrNotFound
	}
	s.players[p.ID] = p
	return nil
}

func (s *memoryStore) DeletePlayer(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.players, id)
	return nil
}

func (s *memoryStore) PlayersByGame(gameID int64) ([]Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	players := make([]Player, 0)
	for _, p := range s.players {
		if p.GameID == gameID {
			players = append(players, p)
		}
	}
	sortByID(players, func(p Player) int64 { return p.ID })
	return players, nil
}

func (s *memoryStore) CreateRound(gameID, questionID int64, seq int) (Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.games[gameID]; !ok {
		return Round{}, ErrNotFound
	}

	r := Round{ID: s.nextIDLocked(), GameID: gameID, QuestionID: questionID, Seq: seq, State: "collecting"}
	s.rounds[r.ID] = r
	return r, nil
}

func (s *memoryStore) UpdateRound(r Round) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rounds[r.ID]; !ok {
		return ErrNotFound
	}
	s.rounds[r.ID] = r
	return nil
}

func (s *memoryStore) RoundsByGame(gameID int64) ([]Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rounds := make([]Round, 0)
	for _, r := range s.rounds {
		if r.GameID == gameID {
			rounds = append(rounds, r)
		}
	}
	sortByID(rounds, func(r Round) int64 { return r.ID })
	return rounds, nil
}

func (s *memoryStore) UpsertSubmission(roundID, playerID int64, text string) (Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sub := range s.submissions {
		if sub.RoundID == roundID && sub.PlayerID == playerID {
			sub.Text = text
			s.submissions[id] = sub
			return sub, nil
		}
	}

	sub := Submission{ID: s.nextIDLocked(), RoundID: roundID, PlayerID: playerID, Text: text, CreatedAt: time.Now()}
	s.submissions[sub.ID] = sub
	return sub, nil
}

func (s *memoryStore) SubmissionsByRound(roundID int64) ([]Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subs := make([]Submission, 0)
	for _, sub := range s.submissions {
		if sub.RoundID == roundID {
			subs = append(subs, sub)
		}
	}
	sortByID(subs, func(sub Submission) int64 { return sub.ID })
	return subs, nil
}

func (s *memoryStore) UpsertVote(roundID, submissionID, voterID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, v := range s.votes {
		if v.RoundID == roundID && v.VoterPlayerID == voterID {
			v.SubmissionID = submissionID
			s.votes[id] = v
			return nil
		}
	}

	v := Vote{ID: s.nextIDLocked(), RoundID: roundID, SubmissionID: submissionID, VoterPlayerID: voterID, CreatedAt: time.Now()}
	s.votes[v.ID] = v
	return nil
}

func (s *memoryStore) VotesByRound(roundID int64) ([]Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	votes := make([]Vote, 0)
	for _, v := range s.votes {
		if v.RoundID == roundID {
			votes = append(votes, v)
		}
	}
	return votes, nil
}

func sortByID[T any](items []T, id func(T) int64) {
	slices.SortFunc(items, func(a, b T) int {
		return cmp.Compare(id(a), id(b))
	})
}
