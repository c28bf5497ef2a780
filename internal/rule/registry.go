package rule

import (
	"sync/atomic"

	"github.com/vietddude/fixer/internal/core/domain"
)

// Entry is a snapshot of one registered rule as the engine sees it.
type Entry struct {
	Rule     Rule
	Index    int // registration order, stable for the process lifetime
	Priority int
}

// Info describes a registered rule for listings.
type Info struct {
	ID       string `json:"id"`
	Kind     Kind   `json:"kind"`
	Index    int    `json:"index"`
	Priority int    `json:"priority"`
	Enabled  bool   `json:"enabled"`
}

// Override adjusts a registered rule before the registry is frozen.
type Override struct {
	Enabled  *bool
	Priority *int
}

type slot struct {
	rule     Rule
	priority int
	enabled  atomic.Bool
}

// Registry holds the rule set in registration order.
//
// Register and Configure belong to the single-goroutine build phase. After
// Freeze the structure never changes, so concurrent requests read it
// without locking; Enable and Disable only flip an atomic flag.
type Registry struct {
	slots  []*slot
	byID   map[string]int
	frozen atomic.Bool
}

// NewRegistry creates an empty, unfrozen registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]int)}
}

// Register adds rules in order. The whole batch is rejected when any rule is
// invalid or its id is already taken.
func (r *Registry) Register(rules ...Rule) error {
	if r.frozen.Load() {
		return domain.ErrRegistryFrozen
	}

	batch := make(map[string]struct{}, len(rules))
	for _, rl := range rules {
		if rl == nil {
			return domain.ErrInvalidRule.Wrap("nil rule")
		}
		id := rl.ID()
		if id == "" {
			return domain.ErrInvalidRule.Wrap("rule without id")
		}
		if _, ok := r.byID[id]; ok {
			return domain.ErrDuplicateRuleID.Wrap(id)
		}
		if _, ok := batch[id]; ok {
			return domain.ErrDuplicateRuleID.Wrap(id)
		}
		batch[id] = struct{}{}
	}

	for _, rl := range rules {
		s := &slot{rule: rl, priority: rl.Priority()}
		s.enabled.Store(rl.Enabled())
		r.byID[rl.ID()] = len(r.slots)
		r.slots = append(r.slots, s)
	}
	return nil
}

// Configure applies an override to a registered rule.
func (r *Registry) Configure(id string, o Override) error {
	if r.frozen.Load() {
		return domain.ErrRegistryFrozen
	}
	idx, ok := r.byID[id]
	if !ok {
		return domain.ErrUnknownRule.Wrap(id)
	}
	s := r.slots[idx]
	if o.Enabled != nil {
		s.enabled.Store(*o.Enabled)
	}
	if o.Priority != nil {
		s.priority = *o.Priority
	}
	return nil
}

// Freeze ends the build phase.
func (r *Registry) Freeze() { r.frozen.Store(true) }

// Frozen reports whether the build phase is over.
func (r *Registry) Frozen() bool { return r.frozen.Load() }

// Enable turns a rule back on.
func (r *Registry) Enable(id string) error { return r.setEnabled(id, true) }

// Disable turns a rule off without removing it.
func (r *Registry) Disable(id string) error { return r.setEnabled(id, false) }

func (r *Registry) setEnabled(id string, v bool) error {
	idx, ok := r.byID[id]
	if !ok {
		return domain.ErrUnknownRule.Wrap(id)
	}
	r.slots[idx].enabled.Store(v)
	return nil
}

// Active returns the enabled rules in registration order.
func (r *Registry) Active() []Entry {
	out := make([]Entry, 0, len(r.slots))
	for i, s := range r.slots {
		if !s.enabled.Load() {
			continue
		}
		out = append(out, Entry{Rule: s.rule, Index: i, Priority: s.priority})
	}
	return out
}

// All returns every registered rule, enabled or not, in registration order.
func (r *Registry) All() []Entry {
	out := make([]Entry, len(r.slots))
	for i, s := range r.slots {
		out[i] = Entry{Rule: s.rule, Index: i, Priority: s.priority}
	}
	return out
}

// Get looks a rule up by id.
func (r *Registry) Get(id string) (Rule, bool) {
	idx, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	return r.slots[idx].rule, true
}

// Describe lists every registered rule, enabled or not.
func (r *Registry) Describe() []Info {
	out := make([]Info, len(r.slots))
	for i, s := range r.slots {
		out[i] = Info{
			ID:       s.rule.ID(),
			Kind:     s.rule.Kind(),
			Index:    i,
			Priority: s.priority,
			Enabled:  s.enabled.Load(),
		}
	}
	return out
}

// Len returns the number of registered rules.
func (r *Registry) Len() int { return len(r.slots) }
