package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidStatus is returned by ParseGameStatus for documents that are
// well-formed JSON but miss or contradict required fields.
var ErrInvalidStatus = errors.New("invalid game status")

// GameStatus is one poll of the game server. Field names follow the server's
// status document so it can be passed through untouched.
type GameStatus struct {
	SelfName         string              `json:"player_name"`
	SelfScore        int                 `json:"score"`
	RoundNumber      int                 `json:"round_number"`
	SecondsRemaining float64             `json:"seconds_remaining"`
	Opponents        []PlayerObservation `json:"other_players"`
	Messages         []Message           `json:"messages_received_this_round"`
}

type PlayerObservation struct {
	Name                 string `json:"player_name"`
	Score                int    `json:"score"`
	SupportedMeLastRound bool   `json:"supported_you_last_round"`
}

type Message struct {
	Sender string `json:"from_player"`
	Body   string `json:"message"`
}

// ActiveNames returns every player listed this round, self included.
func (gs GameStatus) ActiveNames() map[string]bool {
	names := make(map[string]bool, len(gs.Opponents)+1)
	if gs.SelfName != "" {
		names[gs.SelfName] = true
	}
	for _, p := range gs.Opponents {
		names[p.Name] = true
	}
	return names
}

// Senders returns the set of players who messaged us this round.
// Messages without a sender carry no engagement signal.
func (gs GameStatus) Senders() map[string]bool {
	s := make(map[string]bool, len(gs.Messages))
	for _, m := range gs.Messages {
		if m.Sender != "" {
			s[m.Sender] = true
		}
	}
	return s
}

// Opponent looks up an observation by display name.
func (gs GameStatus) Opponent(name string) (PlayerObservation, bool) {
	for _, p := range gs.Opponents {
		if p.Name == name {
			return p, true
		}
	}
	return PlayerObservation{}, false
}

// Validate checks the invariants the decision core relies on.
func (gs GameStatus) Validate() error {
	if gs.SelfName == "" {
		return fmt.Errorf("%w: missing player_name", ErrInvalidStatus)
	}
	if gs.RoundNumber < 0 {
		return fmt.Errorf("%w: negative round_number %d", ErrInvalidStatus, gs.RoundNumber)
	}
	seen := map[string]bool{gs.SelfName: true}
	for i, p := range gs.Opponents {
		if p.Name == "" {
			return fmt.Errorf("%w: other_players[%d] has no player_name", ErrInvalidStatus, i)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: duplicate player %q", ErrInvalidStatus, p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

// ParseGameStatus is the single decoding boundary for status documents
// arriving from outside the process.
func ParseGameStatus(data []byte) (GameStatus, error) {
	var gs GameStatus
	if err := json.Unmarshal(data, &gs); err != nil {
		return GameStatus{}, fmt.Errorf("%w: %v", ErrInvalidStatus, err)
	}
	if err := gs.Validate(); err != nil {
		return GameStatus{}, err
	}
	return gs, nil
}
