package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/nstehr/uburu/config"
	"github.com/nstehr/uburu/ipc"
	"github.com/nstehr/uburu/metrics"
	"github.com/nstehr/uburu/model"
	"github.com/nstehr/uburu/rules"
	"github.com/nstehr/uburu/team"
)

// RuleTeammatePairing names decisions taken from the pairing schedule.
const RuleTeammatePairing = "teammate-pairing"

// maxTeammateAttempts is how many polls in one round team-first mode waits
// for its paired teammate before falling back to the strategic cascade.
const maxTeammateAttempts = 4

// Agent owns the decision-making for a single player. Methods that move
// round state hold the agent lock for their whole duration, so concurrent
// tool calls and socket handlers see each ingest as one step.
type Agent struct {
	mu       sync.Mutex
	registry *team.Registry
	engine   *rules.Engine
	mode     string
	name     string

	prev     *roundSnapshot
	round    int
	attempts int
}

func New(registry *team.Registry, engine *rules.Engine, mode string) *Agent {
	if mode == "" {
		mode = config.ModeStrategic
	}
	return &Agent{registry: registry, engine: engine, mode: mode}
}

// Report is everything one round of processing produced.
type Report struct {
	Round      int                         `json:"round"`
	Decision   rules.Decision              `json:"decision"`
	Categories rules.Categories            `json:"categories"`
	Roster     []string                    `json:"roster"`
	Rejoined   []string                    `json:"rejoined"`
	Broadcast  string                      `json:"broadcast,omitempty"`
	Outbox     []ipc.SendMessageCommand    `json:"outbox,omitempty"`
	Support    *ipc.RegisterSupportCommand `json:"support,omitempty"`
	Events     []Event                     `json:"events,omitempty"`
}

// Register records our display name and returns the claim to send to every
// other player.
func (a *Agent) Register(name string) team.Broadcast {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.name = name
	a.registry.RecordSelf(name)
	slog.Info("player registered", "name", name, "stableID", a.registry.SelfID())
	return a.registry.MakeBroadcast(name)
}

// Broadcast signs a fresh claim for name without touching the timeline.
func (a *Agent) Broadcast(name string) team.Broadcast {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.registry.MakeBroadcast(name)
}

// Listen absorbs this round's broadcasts and returns the teammates that
// rejoined under a new name.
func (a *Agent) Listen(gs model.GameStatus) []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	rejoined, _ := a.listen(gs)
	return rejoined
}

func (a *Agent) listen(gs model.GameStatus) ([]string, []Event) {
	rejoined := a.registry.Ingest(gs)
	roster := a.registry.Roster()
	metrics.RosterSize.Set(float64(len(roster)))

	events := detectEvents(gs, roster, a.prev)
	snap := takeSnapshot(gs, roster)
	a.prev = &snap
	for _, e := range events {
		slog.Info("round event", "kind", e.Kind, "round", e.Round, "detail", e.Detail)
	}
	if a.enterRound(gs.RoundNumber) {
		metrics.RoundsTotal.Inc()
	}
	return rejoined, events
}

// enterRound resets per-round state and reports whether round is new.
func (a *Agent) enterRound(round int) bool {
	if round == a.round {
		return false
	}
	a.round = round
	a.attempts = 0
	return true
}

func (a *Agent) Categorize(gs model.GameStatus) rules.Categories {
	return rules.Categorize(gs, a.registry.Roster())
}

// ChooseStrategic runs the support cascade.
func (a *Agent) ChooseStrategic(gs model.GameStatus) rules.Decision {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.chooseStrategic(gs, a.Categorize(gs))
}

func (a *Agent) chooseStrategic(gs model.GameStatus, tiers rules.Categories) rules.Decision {
	d := a.engine.Decide(rules.NewRuleEnv(gs, tiers))
	a.count(d)
	return d
}

// ChooseTeammate returns this round's pairing partner when it is an active
// teammate listed in gs.
func (a *Agent) ChooseTeammate(gs model.GameStatus) rules.Decision {
	a.mu.Lock()
	defer a.mu.Unlock()
	d := a.chooseTeammate(gs)
	if d.OK() {
		a.count(d)
	}
	return d
}

func (a *Agent) chooseTeammate(gs model.GameStatus) rules.Decision {
	name, ok := a.registry.PairedTeammate(gs.RoundNumber)
	if !ok || name == gs.SelfName || !a.registry.IsTeammate(name) {
		return rules.Decision{}
	}
	if _, listed := gs.Opponent(name); !listed {
		return rules.Decision{}
	}
	return rules.Decision{Target: name, Rule: RuleTeammatePairing}
}

// ChooseSupport applies the configured mode. Team-first tries the pairing
// partner and falls back to the cascade after repeated misses in a round;
// an empty decision before that means "ask again on the next poll".
func (a *Agent) ChooseSupport(gs model.GameStatus) rules.Decision {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.chooseSupport(gs, a.Categorize(gs))
}

func (a *Agent) chooseSupport(gs model.GameStatus, tiers rules.Categories) rules.Decision {
	if a.mode != config.ModeTeamFirst {
		return a.chooseStrategic(gs, tiers)
	}
	a.enterRound(gs.RoundNumber)
	if d := a.chooseTeammate(gs); d.OK() {
		a.count(d)
		return d
	}
	a.attempts++
	if a.attempts < maxTeammateAttempts {
		slog.Debug("no teammate to support yet", "round", gs.RoundNumber, "attempt", a.attempts)
		return rules.Decision{}
	}
	return a.chooseStrategic(gs, tiers)
}

// Round is the full per-poll pipeline: absorb broadcasts, categorize,
// decide, and prepare the re-broadcast for rejoined teammates.
func (a *Agent) Round(gs model.GameStatus) Report {
	a.mu.Lock()
	defer a.mu.Unlock()

	renamed := a.name != "" && a.name != gs.SelfName
	if a.name == "" || renamed {
		a.name = gs.SelfName
		a.registry.RecordSelf(gs.SelfName)
	}

	rejoined, events := a.listen(gs)
	tiers := a.Categorize(gs)
	r := Report{
		Round:      gs.RoundNumber,
		Categories: tiers,
		Roster:     a.registry.Roster(),
		Rejoined:   rejoined,
		Events:     events,
		Decision:   a.chooseSupport(gs, tiers),
	}
	if r.Decision.OK() {
		r.Support = ipc.NewRegisterSupport(r.Decision.Target)
	}

	// Teammates only learn our new name from a fresh claim; after our own
	// rename everyone needs it, after a rejoin only the rejoined.
	var recipients []string
	if renamed {
		for _, p := range gs.Opponents {
			recipients = append(recipients, p.Name)
		}
	} else {
		recipients = knownOpponents(gs, rejoined)
	}
	if len(recipients) > 0 {
		b := a.registry.MakeBroadcast(gs.SelfName).String()
		r.Broadcast = b
		for _, to := range recipients {
			r.Outbox = append(r.Outbox, ipc.NewSendMessage(to, b))
		}
	}
	if r.Roster == nil {
		r.Roster = []string{}
	}
	if r.Rejoined == nil {
		r.Rejoined = []string{}
	}

	slog.Info("round processed",
		"round", gs.RoundNumber,
		"secondsRemaining", gs.SecondsRemaining,
		"score", gs.SelfScore,
		"opponents", len(gs.Opponents),
		"roster", r.Roster,
		"rejoined", r.Rejoined,
		"target", r.Decision.Target,
		"rule", r.Decision.Rule,
	)
	return r
}

func (a *Agent) Mode() string { return a.mode }

func (a *Agent) Roster() []string {
	return a.registry.Roster()
}

func (a *Agent) Timeline() []team.TimelineEntry {
	return a.registry.Timeline()
}

func (a *Agent) count(d rules.Decision) {
	rule := d.Rule
	if !d.OK() {
		rule = "none"
	}
	metrics.DecisionsTotal.WithLabelValues(rule).Inc()
}

// HandleHello registers the provider's player name and hands back our claim.
func (a *Agent) HandleHello(env ipc.Envelope) (*ipc.Envelope, error) {
	var hello ipc.HelloMessage
	if err := json.Unmarshal(env.Data, &hello); err != nil {
		return nil, fmt.Errorf("unmarshal hello: %w", err)
	}
	if hello.PlayerName == "" {
		return nil, errors.New("hello without player_name")
	}

	b := a.Register(hello.PlayerName)
	ack, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: "ok", Broadcast: b.String()})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// HandleGameStatus runs one round and replies with the decision.
func (a *Agent) HandleGameStatus(env ipc.Envelope) (*ipc.Envelope, error) {
	gs, err := model.ParseGameStatus(env.Data)
	if err != nil {
		return nil, err
	}

	report := a.Round(gs)
	resp, err := ipc.NewEnvelope(ipc.TypeDecision, report)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Handlers maps message types to this agent's handlers.
func (a *Agent) Handlers() map[string]ipc.Handler {
	return map[string]ipc.Handler{
		ipc.TypeHello:      a.HandleHello,
		ipc.TypeGameStatus: a.HandleGameStatus,
	}
}

// knownOpponents filters names down to those listed in gs.
func knownOpponents(gs model.GameStatus, names []string) []string {
	var out []string
	for _, n := range names {
		if _, ok := gs.Opponent(n); ok && !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}
