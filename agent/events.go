package agent

import (
	"fmt"
	"slices"

	"github.com/nstehr/uburu/model"
)

// EventKind identifies a change between consecutive polls worth reporting
// to whoever drives the agent.
type EventKind string

const (
	EventNewRound        EventKind = "new_round"
	EventTeammateJoined  EventKind = "teammate_joined"
	EventTeammateDropped EventKind = "teammate_dropped"
	EventLeadTaken       EventKind = "lead_taken"
	EventLeadLost        EventKind = "lead_lost"
)

// Event is a significant change detected by diffing consecutive polls.
type Event struct {
	Kind   EventKind `json:"kind"`
	Round  int       `json:"round"`
	Detail string    `json:"detail"` // human-readable description
}

// roundSnapshot captures the diffable fields of one poll.
type roundSnapshot struct {
	round   int
	roster  []string // sorted
	leading bool
}

func takeSnapshot(gs model.GameStatus, roster []string) roundSnapshot {
	return roundSnapshot{
		round:   gs.RoundNumber,
		roster:  slices.Clone(roster),
		leading: leads(gs),
	}
}

// leads reports whether we hold the strictly highest score this poll.
func leads(gs model.GameStatus) bool {
	if len(gs.Opponents) == 0 {
		return false
	}
	for _, p := range gs.Opponents {
		if p.Score >= gs.SelfScore {
			return false
		}
	}
	return true
}

// detectEvents compares gs against the previous poll. The first poll has
// nothing to compare against and yields no events.
func detectEvents(gs model.GameStatus, roster []string, prev *roundSnapshot) []Event {
	if prev == nil {
		return nil
	}
	var events []Event
	add := func(kind EventKind, detail string) {
		events = append(events, Event{Kind: kind, Round: gs.RoundNumber, Detail: detail})
	}

	if gs.RoundNumber != prev.round {
		add(EventNewRound, fmt.Sprintf("round %d -> %d", prev.round, gs.RoundNumber))
	}
	for _, name := range roster {
		if !slices.Contains(prev.roster, name) {
			add(EventTeammateJoined, name+" is on the team roster")
		}
	}
	for _, name := range prev.roster {
		if !slices.Contains(roster, name) {
			add(EventTeammateDropped, name+" is no longer playing")
		}
	}
	switch now := leads(gs); {
	case now && !prev.leading:
		add(EventLeadTaken, fmt.Sprintf("leading with %d", gs.SelfScore))
	case !now && prev.leading:
		add(EventLeadLost, fmt.Sprintf("no longer leading at %d", gs.SelfScore))
	}
	return events
}
