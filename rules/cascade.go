package rules

// Rule names double as the decision reason reported to callers and metrics.
const (
	RuleReciprocity    = "reciprocity"
	RuleLeadership     = "leadership"
	RuleEngagedMidTier = "engaged-mid-tier"
	RuleMidTier        = "mid-tier"
	RuleMessageSender  = "message-sender"
	RuleClosestScore   = "closest-score"
)

// DefaultRules is the support cascade: reward proven alliance behaviour,
// then build alliances while ahead, then follow engagement, and finally
// fall back to whoever is nearest our score.
func DefaultRules() []*Rule {
	return []*Rule{
		{
			Name:         RuleReciprocity,
			Priority:     600,
			ConditionSrc: `len(Supporters()) > 0`,
			Select: func(env RuleEnv) (string, bool) {
				if name, ok := env.closest(env.EngagedSupporters()); ok {
					return name, true
				}
				return env.closest(env.Supporters())
			},
		},
		{
			Name:         RuleLeadership,
			Priority:     500,
			ConditionSrc: `SelfLeads() && len(Opponents()) > 0`,
			Select: func(env RuleEnv) (string, bool) {
				if name, ok := env.closest(env.MidTier()); ok {
					return name, true
				}
				return env.closest(env.Opponents())
			},
		},
		{
			Name:         RuleEngagedMidTier,
			Priority:     400,
			ConditionSrc: `len(EngagedMidTier()) > 0`,
			Select:       func(env RuleEnv) (string, bool) { return env.closest(env.EngagedMidTier()) },
		},
		{
			Name:         RuleMidTier,
			Priority:     300,
			ConditionSrc: `len(MidTier()) > 0`,
			Select:       func(env RuleEnv) (string, bool) { return env.closest(env.MidTier()) },
		},
		{
			Name:         RuleMessageSender,
			Priority:     200,
			ConditionSrc: `len(MessageSenders()) > 0`,
			Select:       func(env RuleEnv) (string, bool) { return env.closest(env.MessageSenders()) },
		},
		{
			Name:         RuleClosestScore,
			Priority:     100,
			ConditionSrc: `len(Opponents()) > 0`,
			Select:       func(env RuleEnv) (string, bool) { return env.closest(env.Opponents()) },
		},
	}
}
