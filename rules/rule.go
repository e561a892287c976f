package rules

import "github.com/expr-lang/expr/vm"

// SelectFunc picks the support target once a rule's condition holds.
// Returning false passes the decision on to the next rule.
type SelectFunc func(env RuleEnv) (string, bool)

// Rule is one level of the support cascade: a condition → selector pair.
// The engine evaluates rules by priority and stops at the first selection.
type Rule struct {
	Name         string      // human-readable identifier, reported with the decision
	Priority     int         // higher = evaluated first
	ConditionSrc string      // expr source (preserved for logging)
	program      *vm.Program // compiled bytecode
	Select       SelectFunc
}
