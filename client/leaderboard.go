package client

import "github.com/Seednode/quizbox/protocol"

// LeaderboardRow is one displayable final standing.
type LeaderboardRow struct {
	Rank    int
	Name    string
	Avatar  string
	Score   int
	Correct int
	Total   int
}

// RenderLeaderboard projects the server's ordered standings into
// displayable rows. Rank is purely positional: rank 1 is the first
// element, ties get sequential ranks in list order. An empty list
// renders an empty board.
func RenderLeaderboard(entries []protocol.LeaderboardEntry) []LeaderboardRow {
	rows := make([]LeaderboardRow, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, LeaderboardRow{
			Rank:    i + 1,
			Name:    e.Name,
			Avatar:  e.Avatar,
			Score:   e.Score,
			Correct: e.Correct,
			Total:   e.Total,
		})
	}
	return rows
}
