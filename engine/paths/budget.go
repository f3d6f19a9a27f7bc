package paths

// ThinkBudget tells the manager whether the current frame still has time
// for path work.
type ThinkBudget interface {
	HaveTimeToThink() bool
}

// BudgetFunc adapts a function to ThinkBudget
type BudgetFunc func() bool

func (f BudgetFunc) HaveTimeToThink() bool { return f() }

// Unlimited never runs out of time
var Unlimited ThinkBudget = BudgetFunc(func() bool { return true })

// Calls allows n dispatch iterations per frame. Reset refills it.
type Calls struct {
	N    int
	left int
}

// NewCalls returns a budget of n iterations
func NewCalls(n int) *Calls { return &Calls{N: n, left: n} }

func (c *Calls) HaveTimeToThink() bool {
	if c.left <= 0 {
		return false
	}
	c.left--
	return true
}

// Reset refills the budget for a new frame
func (c *Calls) Reset() { c.left = c.N }
