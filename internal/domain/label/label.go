package label

import "strings"

// Pair is one wire value and its display label.
type Pair struct {
	Wire  string
	Label string
}

// Mapping is a bidirectional table between wire values and display labels.
// Values with no entry fall back to the raw input and report ok=false.
type Mapping struct {
	byWire  map[string]string
	byLabel map[string]string
	order   []Pair
	fold    bool
}

// New builds a Mapping from pairs in display order.
// PRE: wire values and labels are unique within pairs
// POST: Returns a Mapping answering lookups in both directions
func New(pairs ...Pair) Mapping {
	m := Mapping{
		byWire:  make(map[string]string, len(pairs)),
		byLabel: make(map[string]string, len(pairs)),
		order:   append([]Pair(nil), pairs...),
	}
	for _, p := range pairs {
		m.byWire[p.Wire] = p.Label
		m.byLabel[p.Label] = p.Wire
	}
	return m
}

// FoldCase returns a copy of m whose wire lookups ignore ASCII case.
// Labels are still matched exactly.
func (m Mapping) FoldCase() Mapping {
	folded := Mapping{
		byWire:  make(map[string]string, len(m.byWire)),
		byLabel: m.byLabel,
		order:   m.order,
		fold:    true,
	}
	for w, l := range m.byWire {
		folded.byWire[strings.ToUpper(w)] = l
	}
	return folded
}

// Label returns the display label for a wire value.
// INVARIANT: Unmapped values are returned unchanged with ok=false
func (m Mapping) Label(wire string) (string, bool) {
	key := wire
	if m.fold {
		key = strings.ToUpper(wire)
	}
	if l, ok := m.byWire[key]; ok {
		return l, true
	}
	return wire, false
}

// Wire returns the wire value for a display label, or the canonical wire
// value when given a wire value directly.
// INVARIANT: Unmapped values are returned unchanged with ok=false
func (m Mapping) Wire(labelOrWire string) (string, bool) {
	if w, ok := m.byLabel[labelOrWire]; ok {
		return w, true
	}
	for _, p := range m.order {
		if p.Wire == labelOrWire || (m.fold && strings.EqualFold(p.Wire, labelOrWire)) {
			return p.Wire, true
		}
	}
	return labelOrWire, false
}

// LabelOr is Label without the ok flag, for templates.
func (m Mapping) LabelOr(wire string) string {
	l, _ := m.Label(wire)
	return l
}

// Pairs returns the entries in display order.
func (m Mapping) Pairs() []Pair {
	return append([]Pair(nil), m.order...)
}

// Labels returns the display labels in order.
func (m Mapping) Labels() []string {
	out := make([]string, len(m.order))
	for i, p := range m.order {
		out[i] = p.Label
	}
	return out
}
