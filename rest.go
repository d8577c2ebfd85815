/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"cmp"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/Seednode/quizbox/protocol"
	"github.com/julienschmidt/httprouter"
)

const defaultRounds = 10

func writeJSON(cfg *Config, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	securityHeaders(cfg, w)
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(body)
}

func writeError(cfg *Config, w http.ResponseWriter, status int, detail string) {
	writeJSON(cfg, w, status, map[string]string{"detail": detail})
}

func gameIDParam(ps httprouter.Params) (int64, error) {
	return strconv.ParseInt(ps.ByName("gameid"), 10, 64)
}

func createGameHandler(cfg *Config, store Store) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		var payload protocol.CreateGameRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(cfg, w, http.StatusBadRequest, "invalid body")
			return
		}

		hostName := payload.HostName
		if hostName == "" {
			hostName = "Host"
		}
		rounds := payload.Rounds
		if rounds <= 0 {
			rounds = defaultRounds
		}

		game, err := store.CreateGame(rounds)
		if err != nil {
			writeError(cfg, w, http.StatusInternalServerError, "could not create game")
			return
		}

		host, err := store.CreatePlayer(game.ID, hostName)
		if err != nil {
			writeError(cfg, w, http.StatusInternalServerError, "could not create host")
			return
		}

		if err := store.SetHostPlayer(game.ID, host.ID); err != nil {
			writeError(cfg, w, http.StatusInternalServerError, "could not assign host")
			return
		}

		logf(cfg, "GAMES: Created game %d for %q (%d rounds) in %s",
			game.ID,
			hostName,
			rounds,
			time.Since(startTime).Round(time.Microsecond),
		)

		writeJSON(cfg, w, http.StatusOK, protocol.CreateGameResponse{
			GameID:       game.ID,
			HostPlayerID: host.ID,
		})
	}
}

func listGamesHandler(cfg *Config, store Store) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		games, err := store.ListGames()
		if err != nil {
			writeError(cfg, w, http.StatusInternalServerError, "could not list games")
			return
		}

		summaries := make([]protocol.GameSummary, 0, len(games))
		for _, g := range games {
			summaries = append(summaries, protocol.GameSummary{ID: g.ID, CreatedAt: g.CreatedAt})
		}

		writeJSON(cfg, w, http.StatusOK, summaries)
	}
}

func getGameHandler(cfg *Config, store Store) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		id, err := gameIDParam(ps)
		if err != nil {
			writeError(cfg, w, http.StatusBadRequest, "invalid game id")
			return
		}

		game, err := store.GetGame(id)
		if errors.Is(err, ErrNotFound) {
			writeError(cfg, w, http.StatusNotFound, "Game not found")
			return
		}
		if err != nil {
			writeError(cfg, w, http.StatusInternalServerError, "could not load game")
			return
		}

		players, err := store.PlayersByGame(id)
		if err != nil {
			writeError(cfg, w, http.StatusInternalServerError, "could not load players")
			return
		}

		roster := make([]protocol.Player, 0, len(players))
		for _, p := range players {
			roster = append(roster, protocol.Player{ID: p.ID, Name: p.Name, Ready: p.Ready})
		}

		writeJSON(cfg, w, http.StatusOK, protocol.GameDetail{
			ID:           game.ID,
			CreatedAt:    game.CreatedAt,
			Rounds:       game.Rounds,
			HostPlayerID: game.HostPlayerID,
			Players:      roster,
		})
	}
}

func joinGameHandler(cfg *Config, store Store) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		id, err := gameIDParam(ps)
		if err != nil {
			writeError(cfg, w, http.StatusBadRequest, "invalid game id")
			return
		}

		var payload protocol.JoinGameRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(cfg, w, http.StatusBadRequest, "invalid body")
			return
		}

		name := payload.PlayerName
		if name == "" {
			name = "Player"
		}

		player, err := store.CreatePlayer(id, name)
		if errors.Is(err, ErrNotFound) {
			writeError(cfg, w, http.StatusNotFound, "Game not found")
			return
		}
		if err != nil {
			writeError(cfg, w, http.StatusInternalServerError, "could not join game")
			return
		}

		logf(cfg, "GAMES: Player %q joined game %d via REST", name, id)

		writeJSON(cfg, w, http.StatusOK, protocol.JoinGameResponse{
			PlayerID: player.ID,
			GameID:   id,
		})
	}
}

func getPlayersHandler(cfg *Config, store Store) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		id, err := gameIDParam(ps)
		if err != nil {
			writeError(cfg, w, http.StatusBadRequest, "invalid game id")
			return
		}

		if _, err := store.GetGame(id); errors.Is(err, ErrNotFound) {
			writeError(cfg, w, http.StatusNotFound, "Game not found")
			return
		}

		players, err := store.PlayersByGame(id)
		if err != nil {
			writeError(cfg, w, http.StatusInternalServerError, "could not load players")
			return
		}

		roster := make([]protocol.Player, 0, len(players))
		for _, p := range players {
			roster = append(roster, protocol.Player{ID: p.ID, Name: p.Name, Ready: p.Ready})
		}

		writeJSON(cfg, w, http.StatusOK, roster)
	}
}

// getScoresHandler aggregates one point per vote received, across
// every round of the game, sorted best-first.
func getScoresHandler(cfg *Config, store Store) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		id, err := gameIDParam(ps)
		if err != nil {
			writeError(cfg, w, http.StatusBadRequest, "invalid game id")
			return
		}

		if _, err := store.GetGame(id); errors.Is(err, ErrNotFound) {
			writeError(cfg, w, http.StatusNotFound, "Game not found")
			return
		}

		rounds, err := store.RoundsByGame(id)
		if err != nil {
			writeError(cfg, w, http.StatusInternalServerError, "could not load rounds")
			return
		}

		points := make(map[int64]int)
		for _, round := range rounds {
			subs, err := store.SubmissionsByRound(round.ID)
			if err != nil {
				continue
			}
			authors := make(map[int64]int64, len(subs))
			for _, sub := range subs {
				authors[sub.ID] = sub.PlayerID
			}

			votes, err := store.VotesByRound(round.ID)
			if err != nil {
				continue
			}
			for _, v := range votes {
				if author, ok := authors[v.SubmissionID]; ok {
					points[author]++
				}
			}
		}

		scores := make([]protocol.ScoreEntry, 0, len(points))
		for playerID, pts := range points {
			entry := protocol.ScoreEntry{PlayerID: playerID, Points: pts}
			if p, err := store.GetPlayer(playerID); err == nil {
				entry.PlayerName = p.Name
			}
			scores = append(scores, entry)
		}

		slices.SortFunc(scores, func(a, b protocol.ScoreEntry) int {
			if c := cmp.Compare(b.Points, a.Points); c != 0 {
				return c
			}
			return cmp.Compare(a.PlayerID, b.PlayerID)
		})

		writeJSON(cfg, w, http.StatusOK, scores)
	}
}

func randomQuestionHandler(cfg *Config, store Store) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		question, err := store.RandomQuestion()
		if errors.Is(err, ErrNoQuestions) {
			question = Question{Text: fallbackQuestion}
		} else if err != nil {
			writeError(cfg, w, http.StatusInternalServerError, "could not load question")
			return
		}

		writeJSON(cfg, w, http.StatusOK, protocol.QuestionResponse{ID: question.ID, Text: question.Text})
	}
}

func importQuestionsHandler(cfg *Config, store Store) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var payload protocol.ImportQuestionsRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(cfg, w, http.StatusBadRequest, "invalid body")
			return
		}

		imported := 0
		for _, text := range payload.Questions {
			if text == "" {
				continue
			}
			if _, err := store.CreateQuestion(text); err != nil {
				writeError(cfg, w, http.StatusInternalServerError, "could not import questions")
				return
			}
			imported++
		}

		logf(cfg, "GAMES: Imported %d questions", imported)

		writeJSON(cfg, w, http.StatusOK, protocol.ImportQuestionsResponse{Imported: imported})
	}
}
