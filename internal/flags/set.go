package flags

// Set is an immutable snapshot of flag states. The zero value has every
// flag off. Methods that change state return a new Set.
type Set struct {
	values map[string]bool
}

var _ Checker = Set{}

// NewSet builds a snapshot from "namespace.name" keyed states.
func NewSet(values map[string]bool) Set {
	copied := make(map[string]bool, len(values))
	for key, active := range values {
		copied[key] = active
	}
	return Set{values: copied}
}

// FromNested builds a snapshot from namespace → name → state maps, the
// shape configuration files produce.
func FromNested(values map[string]map[string]bool) Set {
	flat := make(map[string]bool)
	for namespace, names := range values {
		for name, active := range names {
			flat[namespace+"."+name] = active
		}
	}
	return Set{values: flat}
}

// IsEnabled implements Checker. Flags absent from the snapshot are off.
func (s Set) IsEnabled(flag Flag) bool {
	return s.values[flag.Key()]
}

// With returns a copy of the snapshot with one flag forced to the given state.
func (s Set) With(flag Flag, active bool) Set {
	next := NewSet(s.values)
	next.values[flag.Key()] = active
	return next
}

// Merge returns a snapshot where states in other take precedence.
func (s Set) Merge(other Set) Set {
	next := NewSet(s.values)
	for key, active := range other.values {
		next.values[key] = active
	}
	return next
}

// Values returns a copy of the explicit states held by the snapshot.
func (s Set) Values() map[string]bool {
	return NewSet(s.values).values
}

// State pairs a registered flag with its evaluated value.
type State struct {
	Flag    Flag
	Enabled bool
}

// Evaluate resolves every given flag against the checker.
func Evaluate(checker Checker, all []Flag) []State {
	states := make([]State, 0, len(all))
	for _, flag := range all {
		states = append(states, State{Flag: flag, Enabled: checker.IsEnabled(flag)})
	}
	return states
}
