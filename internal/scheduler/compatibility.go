package scheduler

// Compatibility answers whether people may share a session. A pair qualifies only when both
// sides declared each other.
type Compatibility struct {
	declared map[string]map[string]struct{}
}

// NewCompatibility indexes the declared compatible-with lists.
func NewCompatibility(people map[string]Person) Compatibility {
	declared := make(map[string]map[string]struct{}, len(people))
	for name, person := range people {
		set := make(map[string]struct{}, len(person.CompatibleWith))
		for _, other := range person.CompatibleWith {
			set[other] = struct{}{}
		}
		declared[name] = set
	}
	return Compatibility{declared: declared}
}

// CanShare reports whether a and b mutually declared each other.
func (c Compatibility) CanShare(a, b string) bool {
	fromA, ok := c.declared[a]
	if !ok {
		return false
	}
	fromB, ok := c.declared[b]
	if !ok {
		return false
	}
	_, aToB := fromA[b]
	_, bToA := fromB[a]
	return aToB && bToA
}

// CanShareGroup reports whether every unordered pair in names can share.
func (c Compatibility) CanShareGroup(names []string) bool {
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			if !c.CanShare(names[i], names[j]) {
				return false
			}
		}
	}
	return true
}
