package scheduler

// Placement is a candidate session: a contiguous window and the group that would attend it.
type Placement struct {
	Day     string
	Subject string
	Window  Interval
	Group   []string
}

// PlacementPolicy decides whether a candidate placement should replace the best one found so
// far while the allocator slides across a day's free slots. Candidates arrive in start order.
type PlacementPolicy interface {
	Prefer(candidate, incumbent Placement) bool
}

// PolicyFunc adapts a plain function to PlacementPolicy.
type PolicyFunc func(candidate, incumbent Placement) bool

// Prefer implements PlacementPolicy.
func (f PolicyFunc) Prefer(candidate, incumbent Placement) bool {
	return f(candidate, incumbent)
}

// LargestGroupPolicy favours shared sessions: a strictly larger group wins, ties keep the
// earliest window.
type LargestGroupPolicy struct{}

// Prefer implements PlacementPolicy.
func (LargestGroupPolicy) Prefer(candidate, incumbent Placement) bool {
	return len(candidate.Group) > len(incumbent.Group)
}
