package evaluator

// DefaultMaxDepth is the evaluation depth limit used when none is set.
const DefaultMaxDepth = 10000

// Budget holds the resource limits for a program execution.
// Zero values mean unlimited, except MaxDepth which falls back to
// DefaultMaxDepth.
type Budget struct {
	MaxDepth      int
	MaxIterations int64
	TimeMs        int64
}

// BudgetTracker tracks resource consumption during execution.
type BudgetTracker struct {
	Depth      int
	Iterations int64
	Statements int64
}
