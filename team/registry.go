// Package team keeps the reconciled view of who is currently a teammate.
//
// Teammates are keyed by a stable identifier agreed out of band. Display
// names change freely; a teammate announces its current name with a signed
// Broadcast and the Registry keeps, per identifier, the newest verified claim.
package team

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/nstehr/uburu/identity"
	"github.com/nstehr/uburu/model"
)

// Outcome classifies what Ingest did with a single message.
type Outcome string

const (
	OutcomeMalformed Outcome = "malformed"
	OutcomeForged    Outcome = "forged"
	OutcomeStale     Outcome = "stale"
	OutcomeSelf      Outcome = "self"
	OutcomeNew       Outcome = "new"
	OutcomeRejoin    Outcome = "rejoin"
)

// TimelineEntry is the newest verified claim for one stable identifier.
type TimelineEntry struct {
	StableID    string `json:"stable_id"`
	DisplayName string `json:"display_name"`
	LastSeenMs  int64  `json:"last_seen_ms"`
}

// Registry owns the timeline and the derived roster for one agent. All
// methods are safe for concurrent use; Ingest runs as a single critical
// section so "newest verified timestamp wins" holds under concurrent callers.
type Registry struct {
	mu       sync.Mutex
	signer   *identity.Signer
	selfID   string
	now      func() time.Time
	table    PairingTable
	slots    []string // pre-assigned stable ids, sorted; nil means derive from the timeline
	observe  func(Outcome)
	timeline map[string]TimelineEntry
	roster   []string
}

// Option configures a Registry at construction.
type Option func(*Registry)

// WithClock replaces the wall clock (tests).
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithPairingTable replaces DefaultPairingTable.
func WithPairingTable(t PairingTable) Option {
	return func(r *Registry) { r.table = t }
}

// WithStableIDs fixes the pairing slot order to the team's pre-assigned
// stable ids, sorted lexicographically, so every teammate computes the same
// partners whichever claims it has seen.
func WithStableIDs(ids []string) Option {
	return func(r *Registry) {
		r.slots = slices.Clone(ids)
		slices.Sort(r.slots)
	}
}

// WithObserver is called once per ingested message with its outcome.
func WithObserver(fn func(Outcome)) Option {
	return func(r *Registry) { r.observe = fn }
}

// NewRegistry builds an empty registry for selfID. It fails on a missing
// signer, an empty id, or one containing Delimiter.
func NewRegistry(signer *identity.Signer, selfID string, opts ...Option) (*Registry, error) {
	if signer == nil {
		return nil, identity.ErrEmptyKey
	}
	if selfID == "" {
		return nil, errors.New("stable id is empty")
	}
	if strings.Contains(selfID, Delimiter) {
		return nil, fmt.Errorf("stable id %q contains delimiter %q", selfID, Delimiter)
	}
	r := &Registry{
		signer:   signer,
		selfID:   selfID,
		now:      time.Now,
		table:    DefaultPairingTable,
		observe:  func(Outcome) {},
		timeline: make(map[string]TimelineEntry),
	}
	for _, o := range opts {
		o(r)
	}
	if r.slots != nil && !slices.Contains(r.slots, selfID) {
		return nil, fmt.Errorf("stable id %q is not among the team's stable ids", selfID)
	}
	return r, nil
}

// SelfID is our own stable identifier.
func (r *Registry) SelfID() string { return r.selfID }

// RecordSelf stamps our own entry with the current time and makes sure our
// name is on the roster.
func (r *Registry) RecordSelf(displayName string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.timeline[r.selfID] = TimelineEntry{
		StableID:    r.selfID,
		DisplayName: displayName,
		LastSeenMs:  r.now().UnixMilli(),
	}
	if !slices.Contains(r.roster, displayName) {
		r.roster = append(r.roster, displayName)
		slices.Sort(r.roster)
	}
}

// MakeBroadcast signs a fresh claim that displayName belongs to our stable id.
func (r *Registry) MakeBroadcast(displayName string) Broadcast {
	ts := r.now().UnixMilli()
	return Broadcast{
		DisplayName: displayName,
		TimestampMs: ts,
		StableID:    r.selfID,
		Tag:         r.signer.Sign(claimPayload(displayName, ts, r.selfID)),
	}
}

// Ingest absorbs every verified broadcast in this round's messages and
// rebuilds the roster against the players present in status. It returns the
// new display names of known teammates that rejoined under a newer claim.
// Unverifiable input is dropped silently: any player can send anything.
func (r *Registry) Ingest(status model.GameStatus) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var rejoined []string
	for _, msg := range status.Messages {
		outcome, name := r.absorb(msg.Body)
		r.observe(outcome)
		switch outcome {
		case OutcomeRejoin:
			slog.Info("teammate rejoined", "name", name, "from", msg.Sender)
			rejoined = append(rejoined, name)
		case OutcomeNew:
			slog.Info("teammate recognised", "name", name, "from", msg.Sender)
		default:
			slog.Debug("broadcast dropped", "from", msg.Sender, "reason", outcome)
		}
	}

	r.roster = deriveRoster(r.timeline, status.ActiveNames())
	return rejoined
}

func (r *Registry) absorb(body string) (Outcome, string) {
	b, err := ParseBroadcast(body)
	if err != nil {
		return OutcomeMalformed, ""
	}
	if !r.signer.Verify(b.Tag, b.Payload()) {
		return OutcomeForged, ""
	}
	// Our own entry only moves through RecordSelf; an echo of our claim is not news.
	if b.StableID == r.selfID {
		return OutcomeSelf, ""
	}
	prev, known := r.timeline[b.StableID]
	if known && b.TimestampMs <= prev.LastSeenMs {
		return OutcomeStale, ""
	}
	r.timeline[b.StableID] = TimelineEntry{
		StableID:    b.StableID,
		DisplayName: b.DisplayName,
		LastSeenMs:  b.TimestampMs,
	}
	if known {
		return OutcomeRejoin, b.DisplayName
	}
	return OutcomeNew, b.DisplayName
}

// deriveRoster keeps the names of timeline entries present this round.
// Entries for absent teammates stay in the timeline for a later rejoin.
func deriveRoster(timeline map[string]TimelineEntry, active map[string]bool) []string {
	var roster []string
	for _, e := range timeline {
		if active[e.DisplayName] && !slices.Contains(roster, e.DisplayName) {
			roster = append(roster, e.DisplayName)
		}
	}
	slices.Sort(roster)
	return roster
}

// Roster returns the current teammates in lexicographic order.
func (r *Registry) Roster() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.roster)
}

// IsTeammate reports whether name is on the current roster.
func (r *Registry) IsTeammate(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Contains(r.roster, name)
}

// Timeline returns a snapshot ordered by stable id.
func (r *Registry) Timeline() []TimelineEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]TimelineEntry, 0, len(r.timeline))
	for _, e := range r.timeline {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b TimelineEntry) int { return strings.Compare(a.StableID, b.StableID) })
	return out
}

// PairedTeammate returns the display name of this round's pairing partner.
// The slot order is the configured stable ids; without them it falls back to
// the known ids plus our own, sorted lexicographically. There is no result
// while the partner's claim has not been seen.
func (r *Registry) PairedTeammate(round int) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := r.slots
	if ids == nil {
		ids = make([]string, 0, len(r.timeline)+1)
		for id := range r.timeline {
			ids = append(ids, id)
		}
		if _, ok := r.timeline[r.selfID]; !ok {
			ids = append(ids, r.selfID)
		}
		slices.Sort(ids)
	}

	partner, ok := r.table.Partner(round, ids, r.selfID)
	if !ok {
		return "", false
	}
	entry, seen := r.timeline[partner]
	if !seen {
		return "", false
	}
	return entry.DisplayName, true
}
