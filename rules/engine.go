package rules

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Decision is the engine's single support choice for a round. Target is
// empty when no rule could name anyone.
type Decision struct {
	Target string `json:"target,omitempty"`
	Rule   string `json:"rule,omitempty"`
}

func (d Decision) OK() bool { return d.Target != "" }

// Engine runs compiled rules against one round's environment. Rules are tried
// in priority order and the first one whose condition holds and whose
// selector names a player decides the round.
type Engine struct {
	rules []*Rule
}

// NewEngine compiles all rule conditions into expr bytecode and sorts by priority.
func NewEngine(rules []*Rule) (*Engine, error) {
	compiled, err := compileRules(rules)
	if err != nil {
		return nil, err
	}
	return &Engine{rules: compiled}, nil
}

// Decide walks the cascade. A condition that fails to evaluate is logged and
// treated as false so one broken rule cannot stall the round.
func (e *Engine) Decide(env RuleEnv) Decision {
	for _, r := range e.rules {
		result, err := vm.Run(r.program, env)
		if err != nil {
			slog.Warn("rule condition error", "rule", r.Name, "error", err)
			continue
		}
		if match, ok := result.(bool); !ok || !match {
			continue
		}
		target, ok := r.Select(env)
		if !ok {
			slog.Debug("rule matched without a target", "rule", r.Name)
			continue
		}
		slog.Debug("rule fired", "rule", r.Name, "priority", r.Priority, "target", target)
		return Decision{Target: target, Rule: r.Name}
	}
	return Decision{}
}

// RuleNames lists the cascade in evaluation order.
func (e *Engine) RuleNames() []string {
	names := make([]string, len(e.rules))
	for i, r := range e.rules {
		names[i] = r.Name
	}
	return names
}

func compileRules(rules []*Rule) ([]*Rule, error) {
	for _, r := range rules {
		if r.Select == nil {
			return nil, fmt.Errorf("rule %q has no selector", r.Name)
		}
		prog, err := expr.Compile(r.ConditionSrc, expr.Env(RuleEnv{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.Name, err)
		}
		r.program = prog
	}
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
	return rules, nil
}
