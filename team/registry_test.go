package team

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nstehr/uburu/identity"
	"github.com/nstehr/uburu/model"
)

var testKey = []byte("shared-team-secret")

func newTestRegistry(t *testing.T, selfID string, opts ...Option) *Registry {
	t.Helper()
	signer, err := identity.NewSigner(testKey)
	require.NoError(t, err)
	clock := time.UnixMilli(5_000)
	opts = append([]Option{WithClock(func() time.Time { return clock })}, opts...)
	r, err := NewRegistry(signer, selfID, opts...)
	require.NoError(t, err)
	return r
}

func signed(name string, ts int64, id string) string {
	return Broadcast{
		DisplayName: name,
		TimestampMs: ts,
		StableID:    id,
		Tag:         identity.Sign(claimPayload(name, ts, id), testKey),
	}.String()
}

// status lists self plus the given opponents and delivers the bodies as messages.
func status(self string, opponents []string, bodies ...string) model.GameStatus {
	gs := model.GameStatus{SelfName: self, RoundNumber: 1}
	for _, o := range opponents {
		gs.Opponents = append(gs.Opponents, model.PlayerObservation{Name: o})
	}
	for _, b := range bodies {
		gs.Messages = append(gs.Messages, model.Message{Sender: "someone", Body: b})
	}
	return gs
}

func TestNewRegistry_RequiresConfiguration(t *testing.T) {
	signer, err := identity.NewSigner(testKey)
	require.NoError(t, err)

	_, err = NewRegistry(nil, "u0")
	assert.ErrorIs(t, err, identity.ErrEmptyKey)
	_, err = NewRegistry(signer, "")
	assert.Error(t, err)
	_, err = NewRegistry(signer, "bad_id")
	assert.Error(t, err)
}

func TestIngest_FirstSightingIsNotRejoin(t *testing.T) {
	r := newTestRegistry(t, "u0")
	r.RecordSelf("Vorx")

	rejoined := r.Ingest(status("Vorx", []string{"Alice", "Bob"}, signed("Alice", 1000, "u1")))
	assert.Empty(t, rejoined)
	assert.Equal(t, []string{"Alice", "Vorx"}, r.Roster())
	assert.Contains(t, r.Timeline(), TimelineEntry{StableID: "u1", DisplayName: "Alice", LastSeenMs: 1000})
}

func TestIngest_StaleClaimIgnored(t *testing.T) {
	r := newTestRegistry(t, "u0")
	players := []string{"Alice", "Bella"}

	r.Ingest(status("Vorx", players, signed("Alice", 1000, "u1")))
	rejoined := r.Ingest(status("Vorx", players, signed("Alice", 900, "u1")))
	assert.Empty(t, rejoined)

	rejoined = r.Ingest(status("Vorx", players, signed("Bella", 1000, "u1")))
	assert.Empty(t, rejoined, "equal timestamp is stale")

	assert.Equal(t, []TimelineEntry{{StableID: "u1", DisplayName: "Alice", LastSeenMs: 1000}}, r.Timeline())
}

func TestIngest_RenameIsRejoin(t *testing.T) {
	r := newTestRegistry(t, "u0")

	r.Ingest(status("Vorx", []string{"Alice"}, signed("Alice", 1000, "u1")))
	require.Equal(t, []string{"Alice"}, r.Roster())

	rejoined := r.Ingest(status("Vorx", []string{"Bella"}, signed("Bella", 2000, "u1")))
	assert.Equal(t, []string{"Bella"}, rejoined)
	assert.Equal(t, []string{"Bella"}, r.Roster())
	assert.Equal(t, []TimelineEntry{{StableID: "u1", DisplayName: "Bella", LastSeenMs: 2000}}, r.Timeline())
}

func TestIngest_DropsMalformedAndForged(t *testing.T) {
	var outcomes []Outcome
	r := newTestRegistry(t, "u0", WithObserver(func(o Outcome) { outcomes = append(outcomes, o) }))

	forged := Broadcast{DisplayName: "Mallory", TimestampMs: 10, StableID: "u2", Tag: identity.Sign("Mallory_10_u2", []byte("guess"))}.String()
	tampered := signed("Alice", 1000, "u1")
	tampered = "Carol" + tampered[len("Alice"):]

	rejoined := r.Ingest(status("Vorx", []string{"Mallory", "Carol"},
		"hello there",
		"a_b",
		"a_b_c_d_e",
		"Alice_notanumber_u1_ff",
		forged,
		tampered,
	))
	assert.Empty(t, rejoined)
	assert.Empty(t, r.Timeline())
	assert.Empty(t, r.Roster())
	assert.Equal(t, []Outcome{
		OutcomeMalformed, OutcomeMalformed, OutcomeMalformed, OutcomeMalformed,
		OutcomeForged, OutcomeForged,
	}, outcomes)
}

func TestIngest_OwnEchoIgnored(t *testing.T) {
	r := newTestRegistry(t, "u0")
	r.RecordSelf("Vorx")
	echo := signed("Vorx", 9_999, "u0")

	rejoined := r.Ingest(status("Vorx", nil, echo))
	assert.Empty(t, rejoined)
	assert.Equal(t, []TimelineEntry{{StableID: "u0", DisplayName: "Vorx", LastSeenMs: 5_000}}, r.Timeline())
}

func TestIngest_RosterTracksActivePlayers(t *testing.T) {
	r := newTestRegistry(t, "u0")
	r.RecordSelf("Vorx")

	r.Ingest(status("Vorx", []string{"Alice", "Zed"},
		signed("Alice", 1000, "u1"),
		signed("Bob", 1000, "u2"),
	))
	assert.Equal(t, []string{"Alice", "Vorx"}, r.Roster(), "Bob is verified but not playing")
	assert.True(t, r.IsTeammate("Alice"))
	assert.False(t, r.IsTeammate("Zed"))

	// Alice drops out; her timeline entry survives for a later rejoin.
	r.Ingest(status("Vorx", []string{"Bob", "Zed"}))
	assert.Equal(t, []string{"Bob", "Vorx"}, r.Roster())
	assert.Len(t, r.Timeline(), 3)

	rejoined := r.Ingest(status("Vorx", []string{"Bob", "Alicia"}, signed("Alicia", 3000, "u1")))
	assert.Equal(t, []string{"Alicia"}, rejoined)
	assert.Equal(t, []string{"Alicia", "Bob", "Vorx"}, r.Roster())
}

func TestRecordSelf_Idempotent(t *testing.T) {
	r := newTestRegistry(t, "u0")
	r.RecordSelf("Vorx")
	r.RecordSelf("Vorx")
	assert.Equal(t, []string{"Vorx"}, r.Roster())
	assert.Len(t, r.Timeline(), 1)
}

func TestMakeBroadcast_VerifiesForTeammates(t *testing.T) {
	me := newTestRegistry(t, "u0")
	b := me.MakeBroadcast("Vorx")
	assert.Equal(t, "Vorx", b.DisplayName)
	assert.EqualValues(t, 5_000, b.TimestampMs)
	assert.Equal(t, "u0", b.StableID)

	mate := newTestRegistry(t, "u1")
	mate.Ingest(status("Alice", []string{"Vorx"}, b.String()))
	assert.Equal(t, []string{"Vorx"}, mate.Roster())
}

func TestPairedTeammate(t *testing.T) {
	r := newTestRegistry(t, "u0")
	r.RecordSelf("Vorx")

	_, ok := r.PairedTeammate(3)
	assert.False(t, ok, "partner slot beyond known ids")

	names := map[string]string{"u1": "Ann", "u2": "Ben", "u3": "Cat", "u4": "Dan", "u5": "Eve"}
	var bodies []string
	for id, name := range names {
		bodies = append(bodies, signed(name, 1000, id))
	}
	r.Ingest(status("Vorx", []string{"Ann", "Ben", "Cat", "Dan", "Eve"}, bodies...))

	// Round 3 uses rotation step 2, which pairs slot 0 with slot 4.
	for i := 0; i < 3; i++ {
		name, ok := r.PairedTeammate(3)
		require.True(t, ok)
		assert.Equal(t, "Dan", name)
	}
	name, ok := r.PairedTeammate(1)
	require.True(t, ok)
	assert.Equal(t, "Eve", name)
}

func TestPairedTeammate_AgreesAcrossPartialViews(t *testing.T) {
	ids := []string{"u5", "u4", "u3", "u2", "u1", "u0"}
	names := map[string]string{"u0": "Zed", "u1": "Ann", "u2": "Ben", "u3": "Cat", "u4": "Dan", "u5": "Eve"}
	players := []string{"Zed", "Ann", "Ben", "Cat", "Dan", "Eve"}

	claims := func(skip ...string) []string {
		var bodies []string
		for id, name := range names {
			if !slices.Contains(skip, id) {
				bodies = append(bodies, signed(name, 1000, id))
			}
		}
		return bodies
	}

	cat := newTestRegistry(t, "u3", WithStableIDs(ids))
	cat.RecordSelf("Cat")
	cat.Ingest(status("Cat", players, claims("u3")...))

	dan := newTestRegistry(t, "u4", WithStableIDs(ids))
	dan.RecordSelf("Dan")
	dan.Ingest(status("Dan", players, claims("u4", "u1")...))

	// Round 2 uses rotation step 1, which pairs slot 3 with slot 4.
	got, ok := cat.PairedTeammate(2)
	require.True(t, ok)
	assert.Equal(t, "Dan", got)
	got, ok = dan.PairedTeammate(2)
	require.True(t, ok)
	assert.Equal(t, "Cat", got)

	// Round 1 pairs Dan with u1, whose claim Dan has not seen yet.
	_, ok = dan.PairedTeammate(1)
	assert.False(t, ok)
	got, ok = cat.PairedTeammate(1)
	require.True(t, ok)
	assert.Equal(t, "Ben", got)
}

func TestNewRegistry_SelfMustBeAStableID(t *testing.T) {
	signer, err := identity.NewSigner(testKey)
	require.NoError(t, err)
	_, err = NewRegistry(signer, "u9", WithStableIDs([]string{"u0", "u1"}))
	assert.Error(t, err)
}
