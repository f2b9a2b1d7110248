package domain

// Traversal marks for cycle detection.
const (
	markUnvisited = iota
	markVisiting
	markVisited
)

// DetectCycle runs a depth-first traversal over the dependencies edges of the
// whole store, starting from the record under write. It returns a CycleError
// describing the offending path if the start record participates in a cycle,
// or nil otherwise. Dependency IDs that do not resolve to a record contribute
// no edges.
func DetectCycle(records []*TaskRecord, start string) *CycleError {
	deps := make(map[string][]string, len(records))
	for _, r := range records {
		deps[r.ID] = r.Dependencies
	}

	state := make(map[string]int, len(deps))
	var stack []string

	var visit func(id string) *CycleError
	visit = func(id string) *CycleError {
		state[id] = markVisiting
		stack = append(stack, id)

		for _, dep := range deps[id] {
			switch state[dep] {
			case markVisiting:
				// Slice the current path from the first occurrence of dep.
				for i, s := range stack {
					if s == dep {
						path := make([]string, 0, len(stack)-i+1)
						path = append(path, stack[i:]...)
						path = append(path, dep)
						return &CycleError{Path: path}
					}
				}
			case markUnvisited:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[id] = markVisited
		return nil
	}

	return visit(start)
}
