// The host creates a game and shares the link (or QR code) with friends
// Players join by name, and toggle a ready flag while waiting in the lobby
// Once everyone is ready, the host starts the game
// Each round, a random question is drawn and shown to all players
// Players answer in free text; answers are collected privately
// The host reveals the answers, shuffled and tagged "A", "B", ... - nobody knows who wrote what
// Everyone votes for their favorite answer (not their own)
// Each vote is a point for the answer's author; the round's top answer wins the round
// After the configured number of rounds, the final leaderboard is shown

// Display formats:
// Lobby roster with ready checkmarks and a host badge
// Question card with a free-text answer field
// Anonymized answer list with one-tap voting
// Final leaderboard with avatar, score, and rounds won

// Implementation details:
// - Use websockets to push roster, round, and vote updates to all joined players
// - The server alone maps answers to authors; clients only ever see anonymized tags
// - Clients never compute scores locally - every tally comes from a server broadcast

package games
