package core

import "sort"

// topoSort orders providers so that every declared dependency precedes
// its dependent. The graph is walked depth-first with three-color
// marking: providers currently on the visit stack are "in progress", and
// reaching one again means the declared dependencies form a cycle.
//
// Roots are visited in sorted-name order so the output is stable, but
// callers must only rely on dependency edges being respected; ties
// between independent providers are broken arbitrarily.
func topoSort(providers []Provider) ([]Provider, error) {
	byName := make(map[string]Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}

	done := make(map[string]bool, len(providers))
	inProgress := make(map[string]bool, len(providers))
	var stack []string
	out := make([]Provider, 0, len(providers))

	var visit func(p Provider) error
	visit = func(p Provider) error {
		name := p.Name()
		if done[name] {
			return nil
		}
		if inProgress[name] {
			return &CyclicDependencyError{Path: cyclePath(stack, name)}
		}

		inProgress[name] = true
		stack = append(stack, name)

		if dd, ok := p.(DependencyDeclaring); ok {
			for _, dep := range dd.Dependencies() {
				registered, ok := byName[dep.Name()]
				if !ok {
					return &MissingDependencyError{Provider: name, Dependency: dep.Name()}
				}
				if err := visit(registered); err != nil {
					return err
				}
			}
		}

		stack = stack[:len(stack)-1]
		inProgress[name] = false
		done[name] = true
		out = append(out, p)
		return nil
	}

	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		if err := visit(byName[name]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// cyclePath trims the visit stack to the segment forming the cycle and
// closes it on the repeated name, e.g. [A B C A].
func cyclePath(stack []string, repeated string) []string {
	start := 0
	for i, name := range stack {
		if name == repeated {
			start = i
			break
		}
	}
	path := make([]string, 0, len(stack)-start+1)
	path = append(path, stack[start:]...)
	return append(path, repeated)
}
