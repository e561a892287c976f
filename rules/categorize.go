package rules

import (
	"slices"

	"github.com/nstehr/uburu/model"
)

// minQuartileSample is the smallest score set the quartile estimator is
// stable on. Smaller sets are padded with zero-score placeholders.
const minQuartileSample = 4

// Categories splits the non-teammate opponents into strategic tiers.
// Leader is empty when there are no opponents.
type Categories struct {
	Leader      string   `json:"leader"`
	Supporters  []string `json:"supporters"`
	MidTier     []string `json:"mid_tier"`
	Strugglers  []string `json:"strugglers"`
	Competitors []string `json:"competitors"`
	Q1          float64  `json:"q1"`
	Q3          float64  `json:"q3"`
}

// Categorize assigns every opponent outside teammates to at most one tier.
//
// The leader (strictly highest score, first wins ties) and anyone who
// supported us last round are pulled out first. Of the rest, scores at or
// below Q1 are strugglers, at or above Q3 competitors, and strictly between
// them mid-tier. A score sitting exactly on a quartile is never mid-tier.
func Categorize(gs model.GameStatus, teammates []string) Categories {
	c := Categories{
		Supporters:  []string{},
		MidTier:     []string{},
		Strugglers:  []string{},
		Competitors: []string{},
	}

	var pool []model.PlayerObservation
	for _, p := range gs.Opponents {
		if !slices.Contains(teammates, p.Name) {
			pool = append(pool, p)
		}
	}

	scores := make([]int, 0, max(len(pool), minQuartileSample))
	for _, p := range pool {
		scores = append(scores, p.Score)
	}
	// Placeholders contribute a score only; they never become observations,
	// so no tier can ever name one.
	for len(scores) < minQuartileSample {
		scores = append(scores, 0)
	}
	c.Q1, c.Q3 = Quartiles(scores)

	if len(pool) == 0 {
		return c
	}
	leader := pool[0]
	for _, p := range pool[1:] {
		if p.Score > leader.Score {
			leader = p
		}
	}
	c.Leader = leader.Name

	for _, p := range pool {
		if p.Name == c.Leader {
			continue
		}
		if p.SupportedMeLastRound {
			c.Supporters = append(c.Supporters, p.Name)
			continue
		}
		// When Q1 == Q3 a score can satisfy both bounds; struggler wins.
		switch score := float64(p.Score); {
		case score <= c.Q1:
			c.Strugglers = append(c.Strugglers, p.Name)
		case score >= c.Q3:
			c.Competitors = append(c.Competitors, p.Name)
		case c.Q1 < score && score < c.Q3:
			c.MidTier = append(c.MidTier, p.Name)
		}
	}
	return c
}

// Quartiles returns the first and third quartiles with the exclusive method:
// the p-quantile sits at position p*(n+1) of the sorted data, interpolating
// linearly between neighbours.
func Quartiles(scores []int) (q1, q3 float64) {
	data := slices.Clone(scores)
	slices.Sort(data)
	return quantile(data, 1), quantile(data, 3)
}

// quantile returns the i-th of the three cut points dividing sorted data into
// four equal-probability groups.
func quantile(data []int, i int) float64 {
	n := len(data)
	switch n {
	case 0:
		return 0
	case 1:
		return float64(data[0])
	}
	m := n + 1
	j := i * m / 4
	delta := i*m - j*4
	// Clamp to the data for tiny inputs; callers pad to four points.
	if j < 1 {
		j, delta = 1, 0
	}
	if j > n-1 {
		j, delta = n-1, 4
	}
	return (float64(data[j-1])*float64(4-delta) + float64(data[j])*float64(delta)) / 4
}
