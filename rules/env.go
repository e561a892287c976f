package rules

import (
	"github.com/nstehr/uburu/model"
)

// RuleEnv wraps one round's status and tiers and exposes helper methods
// callable from expr conditions.
type RuleEnv struct {
	Status model.GameStatus
	Tiers  Categories
}

func NewRuleEnv(gs model.GameStatus, tiers Categories) RuleEnv {
	return RuleEnv{Status: gs, Tiers: tiers}
}

func (e RuleEnv) Opponents() []model.PlayerObservation {
	return e.Status.Opponents
}

// Supporters are opponents who supported us last round, teammates included.
func (e RuleEnv) Supporters() []model.PlayerObservation {
	return e.filter(func(p model.PlayerObservation) bool { return p.SupportedMeLastRound })
}

// EngagedSupporters are supporters who also messaged us this round.
func (e RuleEnv) EngagedSupporters() []model.PlayerObservation {
	senders := e.Status.Senders()
	return e.filter(func(p model.PlayerObservation) bool {
		return p.SupportedMeLastRound && senders[p.Name]
	})
}

// SelfLeads is true only when our score is strictly above every opponent's.
func (e RuleEnv) SelfLeads() bool {
	for _, p := range e.Status.Opponents {
		if p.Score >= e.Status.SelfScore {
			return false
		}
	}
	return true
}

func (e RuleEnv) MidTier() []model.PlayerObservation {
	mid := toSet(e.Tiers.MidTier)
	return e.filter(func(p model.PlayerObservation) bool { return mid[p.Name] })
}

func (e RuleEnv) EngagedMidTier() []model.PlayerObservation {
	mid := toSet(e.Tiers.MidTier)
	senders := e.Status.Senders()
	return e.filter(func(p model.PlayerObservation) bool { return mid[p.Name] && senders[p.Name] })
}

// MessageSenders are opponents who messaged us this round, regardless of tier.
func (e RuleEnv) MessageSenders() []model.PlayerObservation {
	senders := e.Status.Senders()
	return e.filter(func(p model.PlayerObservation) bool { return senders[p.Name] })
}

// ScoreGap is the absolute distance between our score and a player's.
func (e RuleEnv) ScoreGap(p model.PlayerObservation) int {
	d := p.Score - e.Status.SelfScore
	if d < 0 {
		return -d
	}
	return d
}

// closest returns the candidate nearest our score; the earliest wins ties.
func (e RuleEnv) closest(candidates []model.PlayerObservation) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}
	best := candidates[0]
	for _, p := range candidates[1:] {
		if e.ScoreGap(p) < e.ScoreGap(best) {
			best = p
		}
	}
	return best.Name, true
}

// filter keeps the opponents matching keep, in their original order.
func (e RuleEnv) filter(keep func(model.PlayerObservation) bool) []model.PlayerObservation {
	var out []model.PlayerObservation
	for _, p := range e.Status.Opponents {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func toSet(names []string) map[string]bool {
	s := make(map[string]bool, len(names))
	for _, n := range names {
		s[n] = true
	}
	return s
}
