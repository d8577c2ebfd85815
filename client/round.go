package client

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/Seednode/quizbox/protocol"
)

// Phase of the round as seen from the client.
type Phase string

const (
	PhaseWaiting    Phase = "waiting"
	PhaseCollecting Phase = "collecting"
	PhaseVoting     Phase = "voting"
	PhaseFinished   Phase = "finished"
)

// RoundMachine drives a game through its rounds. Local actions only
// request; server events alone confirm a phase change. It never
// computes a vote count or score itself - the tally and leaderboard
// are replaced wholesale by whatever the server broadcasts.
type RoundMachine struct {
	t      *Transport
	notify func(string)

	mu          sync.Mutex
	phase       Phase
	roundID     int64
	roundIndex  int
	question    string
	submissions []protocol.RevealedSubmission
	tally       map[int64]int
	input       string
	winnerSubID int64
	final       []protocol.LeaderboardEntry

	// In-flight guards, so a double-tap never emits twice.
	submitInFlight bool
	voteInFlight   bool

	subStarted  int
	subRevealed int
	subVotes    int
	subFinished int
	subGameOver int
}

// NewRoundMachine subscribes to the round events. notify receives
// user-visible messages; nil is allowed.
func NewRoundMachine(t *Transport, notify func(string)) *RoundMachine {
	if notify == nil {
		notify = func(string) {}
	}

	m := &RoundMachine{
		t:      t,
		notify: notify,
		phase:  PhaseWaiting,
		tally:  make(map[int64]int),
	}

	m.subStarted = t.Subscribe(protocol.EventRoundStarted, m.onRoundStarted)
	m.subRevealed = t.Subscribe(protocol.EventSubmissionsRevealed, m.onRevealed)
	m.subVotes = t.Subscribe(protocol.EventVoteUpdate, m.onVoteUpdate)
	m.subFinished = t.Subscribe(protocol.EventRoundFinished, m.onRoundFinished)
	m.subGameOver = t.Subscribe(protocol.EventGameFinished, m.onGameFinished)

	return m
}

// StartRound asks the server to open the next round. Host-only on the
// server side; no local state changes until round_started arrives.
func (m *RoundMachine) StartRound() error {
	return m.t.Send(protocol.EventStartRound, protocol.ClientEvent{})
}

// onRoundStarted is the sole authority for entering the collecting
// phase, even if the local host action already fired.
func (m *RoundMachine) onRoundStarted(payload json.RawMessage) {
	var msg protocol.RoundStartedMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.phase = PhaseCollecting
	m.roundID = msg.RoundID
	m.roundIndex++
	m.question = msg.Question
	m.submissions = nil
	m.tally = make(map[int64]int)
	m.winnerSubID = 0
	m.input = ""
	m.submitInFlight = false
	m.voteInFlight = false
}

// SetInput updates the local answer buffer.
func (m *RoundMachine) SetInput(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.input = text
}

// Input returns the local answer buffer.
func (m *RoundMachine) Input() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.input
}

// SubmitAnswer emits the buffered answer. Empty or whitespace-only
// text is rejected locally and nothing reaches the network. The buffer
// is cleared on emit; the phase does not change - only the server's
// reveal does that.
func (m *RoundMachine) SubmitAnswer() error {
	m.mu.Lock()

	text := strings.TrimSpace(m.input)
	if text == "" {
		m.mu.Unlock()
		m.notify("answer cannot be empty")
		return ErrValidation
	}
	if m.phase != PhaseCollecting {
		m.mu.Unlock()
		m.notify("no round is collecting answers")
		return ErrValidation
	}
	if m.submitInFlight {
		m.mu.Unlock()
		return ErrValidation
	}

	m.submitInFlight = true
	m.input = ""
	roundID := m.roundID
	m.mu.Unlock()

	err := m.t.Send(protocol.EventSubmitAnswer, protocol.ClientEvent{
		Text:    text,
		RoundID: roundID, // idempotency key; the server dedupes per round and player
	})
	if err != nil {
		m.mu.Lock()
		m.submitInFlight = false
		m.input = text
		m.mu.Unlock()
	}
	return err
}

// RequestReveal asks the server to close collection and reveal the
// anonymized submissions. Host-only server-side; no local transition.
func (m *RoundMachine) RequestReveal() error {
	return m.t.Send(protocol.EventRevealSubmissions, protocol.ClientEvent{})
}

func (m *RoundMachine) onRevealed(payload json.RawMessage) {
	var msg protocol.SubmissionsRevealedMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.phase = PhaseVoting
	m.submissions = msg.Submissions
	m.tally = make(map[int64]int)
	m.submitInFlight = false
	m.voteInFlight = false
}

// Vote emits a vote for one revealed submission. A missing selection
// is rejected locally. The tally is never incremented here - it is
// authoritative from the server's vote_update.
func (m *RoundMachine) Vote(submissionID int64) error {
	m.mu.Lock()

	if submissionID == 0 {
		m.mu.Unlock()
		m.notify("select an answer to vote for")
		return ErrValidation
	}
	if m.phase != PhaseVoting {
		m.mu.Unlock()
		m.notify("voting is not open")
		return ErrValidation
	}
	if m.voteInFlight {
		m.mu.Unlock()
		return ErrValidation
	}

	m.voteInFlight = true
	roundID := m.roundID
	m.mu.Unlock()

	err := m.t.Send(protocol.EventVoteSubmission, protocol.ClientEvent{
		SubmissionID: submissionID,
		RoundID:      roundID,
	})
	if err != nil {
		m.mu.Lock()
		m.voteInFlight = false
		m.mu.Unlock()
	}
	return err
}

// onVoteUpdate replaces the tally wholesale. A count for a submission
// not yet known locally is accepted and a placeholder inserted - the
// local view reconciles toward the server, never the reverse.
func (m *RoundMachine) onVoteUpdate(payload json.RawMessage) {
	var msg protocol.VoteUpdateMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.tally = msg.Counts
	if m.tally == nil {
		m.tally = make(map[int64]int)
	}
	m.voteInFlight = false

	for subID := range m.tally {
		known := false
		for _, sub := range m.submissions {
			if sub.SubmissionID == subID {
				known = true
				break
			}
		}
		if !known {
			m.submissions = append(m.submissions, protocol.RevealedSubmission{SubmissionID: subID})
		}
	}
}

func (m *RoundMachine) onRoundFinished(payload json.RawMessage) {
	var msg protocol.RoundFinishedMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.phase = PhaseFinished
	m.winnerSubID = msg.WinnerSubmissionID
}

func (m *RoundMachine) onGameFinished(payload json.RawMessage) {
	var msg protocol.GameFinishedMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.final = msg.Leaderboard
}

// NextRound returns the machine to waiting so the host can request the
// next round. Only valid once the current round has finished.
func (m *RoundMachine) NextRound() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != PhaseFinished {
		return ErrValidation
	}
	m.phase = PhaseWaiting
	return nil
}

// CurrentPhase returns the machine's phase.
func (m *RoundMachine) CurrentPhase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// RoundIndex returns how many rounds have started, 1-based for the
// current round.
func (m *RoundMachine) RoundIndex() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roundIndex
}

// RoundID returns the server's id for the current round.
func (m *RoundMachine) RoundID() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roundID
}

// Question returns the current round's question text.
func (m *RoundMachine) Question() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.question
}

// Submissions returns the anonymized submissions, in reveal order.
func (m *RoundMachine) Submissions() []protocol.RevealedSubmission {
	m.mu.Lock()
	defer m.mu.Unlock()

	subs := make([]protocol.RevealedSubmission, len(m.submissions))
	copy(subs, m.submissions)
	return subs
}

// Tally returns the latest authoritative vote counts.
func (m *RoundMachine) Tally() map[int64]int {
	m.mu.Lock()
	defer m.mu.Unlock()

	tally := make(map[int64]int, len(m.tally))
	for id, count := range m.tally {
		tally[id] = count
	}
	return tally
}

// Winner returns the winning submission id of the finished round, or 0.
func (m *RoundMachine) Winner() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.winnerSubID
}

// Final returns the terminal leaderboard once the game has finished,
// or nil.
func (m *RoundMachine) Final() []protocol.LeaderboardEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.final
}

// Over reports whether the game has ended.
func (m *RoundMachine) Over() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.final != nil
}

// Close drops the machine's event subscriptions.
func (m *RoundMachine) Close() {
	m.t.Unsubscribe(protocol.EventRoundStarted, m.subStarted)
	m.t.Unsubscribe(protocol.EventSubmissionsRevealed, m.subRevealed)
	m.t.Unsubscribe(protocol.EventVoteUpdate, m.subVotes)
	m.t.Unsubscribe(protocol.EventRoundFinished, m.subFinished)
	m.t.Unsubscribe(protocol.EventGameFinished, m.subGameOver)
}
