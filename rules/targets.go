package rules

import "github.com/nstehr/uburu/model"

// MaxMessageTargets caps how many players we message in one round.
const MaxMessageTargets = 6

// MessageTargets are the players worth messaging this round.
type MessageTargets struct {
	Supporters []string `json:"supporters"`
	Others     []string `json:"others"`
}

// SelectMessageTargets returns every supporter, then tops up with
// non-supporters in listing order until limit names are chosen.
func SelectMessageTargets(gs model.GameStatus, limit int) MessageTargets {
	t := MessageTargets{Supporters: []string{}, Others: []string{}}
	for _, p := range gs.Opponents {
		if p.SupportedMeLastRound {
			t.Supporters = append(t.Supporters, p.Name)
		}
	}
	for _, p := range gs.Opponents {
		if len(t.Supporters)+len(t.Others) >= limit {
			break
		}
		if !p.SupportedMeLastRound {
			t.Others = append(t.Others, p.Name)
		}
	}
	return t
}
