package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nstehr/uburu/model"
)

func TestSelectMessageTargets(t *testing.T) {
	gs := model.GameStatus{SelfName: "Vorx", Opponents: []model.PlayerObservation{
		opp("A", 1, false), opp("B", 2, true), opp("C", 3, false), opp("D", 4, false),
		opp("E", 5, true), opp("F", 6, false), opp("G", 7, false), opp("H", 8, false),
	}}

	got := SelectMessageTargets(gs, MaxMessageTargets)
	assert.Equal(t, []string{"B", "E"}, got.Supporters)
	assert.Equal(t, []string{"A", "C", "D", "F"}, got.Others)

	got = SelectMessageTargets(gs, 1)
	assert.Equal(t, []string{"B", "E"}, got.Supporters, "supporters are never cut")
	assert.Empty(t, got.Others)

	got = SelectMessageTargets(model.GameStatus{SelfName: "Vorx"}, MaxMessageTargets)
	assert.NotNil(t, got.Supporters)
	assert.Empty(t, got.Others)
}
