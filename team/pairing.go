package team

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

var ErrInvalidPairingTable = errors.New("invalid pairing table")

// PairingTable is a fixed cycle of rotation steps over Slots team slots. Each
// step is a set of disjoint slot pairs. Every teammate evaluates the same
// table, so partners agree without exchanging messages.
type PairingTable struct {
	Slots     int
	Rotations [][][2]int
}

type pairingFile struct {
	Slots     int       `yaml:"slots"`
	Rotations [][][]int `yaml:"rotations"`
}

// DefaultPairingTable is a round-robin schedule for six slots: across its five
// steps every slot meets every other slot exactly once.
var DefaultPairingTable = PairingTable{
	Slots: 6,
	Rotations: [][][2]int{
		{{0, 5}, {1, 4}, {2, 3}},
		{{1, 5}, {2, 0}, {3, 4}},
		{{2, 5}, {3, 1}, {4, 0}},
		{{3, 5}, {4, 2}, {0, 1}},
		{{4, 5}, {0, 3}, {1, 2}},
	},
}

// Validate checks that every step pairs distinct in-range slots at most once.
// Tables with an even slot count must cover every slot in every step.
func (t PairingTable) Validate() error {
	if t.Slots < 2 {
		return fmt.Errorf("%w: need at least 2 slots, got %d", ErrInvalidPairingTable, t.Slots)
	}
	if len(t.Rotations) == 0 {
		return fmt.Errorf("%w: no rotation steps", ErrInvalidPairingTable)
	}
	for i, step := range t.Rotations {
		used := make(map[int]bool, t.Slots)
		for _, pair := range step {
			a, b := pair[0], pair[1]
			if a == b || a < 0 || b < 0 || a >= t.Slots || b >= t.Slots {
				return fmt.Errorf("%w: step %d has bad pair %v", ErrInvalidPairingTable, i, pair)
			}
			if used[a] || used[b] {
				return fmt.Errorf("%w: step %d reuses a slot in %v", ErrInvalidPairingTable, i, pair)
			}
			used[a], used[b] = true, true
		}
		if t.Slots%2 == 0 && len(used) != t.Slots {
			return fmt.Errorf("%w: step %d covers %d of %d slots", ErrInvalidPairingTable, i, len(used), t.Slots)
		}
	}
	return nil
}

// RotationIndex maps a 1-based round number onto a step of the cycle.
func (t PairingTable) RotationIndex(round int) int {
	n := len(t.Rotations)
	return ((round-1)%n + n) % n
}

// Partner returns the stable identifier paired with selfID in the given round.
// ids must already be in canonical order. There is no partner when selfID is
// not listed, when no pair in the step holds our slot, or when the paired slot
// is beyond the known identifiers.
func (t PairingTable) Partner(round int, ids []string, selfID string) (string, bool) {
	if len(t.Rotations) == 0 {
		return "", false
	}
	mine := slices.Index(ids, selfID)
	if mine < 0 {
		return "", false
	}
	for _, pair := range t.Rotations[t.RotationIndex(round)] {
		var other int
		switch mine {
		case pair[0]:
			other = pair[1]
		case pair[1]:
			other = pair[0]
		default:
			continue
		}
		if other < 0 || other >= len(ids) {
			return "", false
		}
		return ids[other], true
	}
	return "", false
}

// LoadPairingTable reads a YAML rotation table:
//
//	slots: 6
//	rotations:
//	  - [[0, 5], [1, 4], [2, 3]]
func LoadPairingTable(path string) (PairingTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PairingTable{}, fmt.Errorf("read pairing table: %w", err)
	}
	var raw pairingFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return PairingTable{}, fmt.Errorf("parse pairing table %s: %w", path, err)
	}
	t := PairingTable{Slots: raw.Slots}
	for i, step := range raw.Rotations {
		pairs := make([][2]int, 0, len(step))
		for _, p := range step {
			if len(p) != 2 {
				return PairingTable{}, fmt.Errorf("%w: step %d has entry %v, want a pair", ErrInvalidPairingTable, i, p)
			}
			pairs = append(pairs, [2]int{p[0], p[1]})
		}
		t.Rotations = append(t.Rotations, pairs)
	}
	if err := t.Validate(); err != nil {
		return PairingTable{}, err
	}
	return t, nil
}
