package ir

// ProfileMap indexes IRFunctionProfiles by mangled name and supports
// exact and qualified-suffix lookup.
type ProfileMap struct {
	byMangled   map[string]*IRFunctionProfile
	byDemangled map[string]*IRFunctionProfile
	order       []*IRFunctionProfile
}

func NewProfileMap() *ProfileMap {
	return &ProfileMap{
		byMangled:   make(map[string]*IRFunctionProfile),
		byDemangled: make(map[string]*IRFunctionProfile),
	}
}

func (m *ProfileMap) Add(p *IRFunctionProfile) {
	m.byMangled[p.MangledName] = p
	if p.DemangledName != "" {
		m.byDemangled[p.DemangledName] = p
	}
	m.order = append(m.order, p)
}

// ExactMangled looks up a profile by its mangled name.
func (m *ProfileMap) ExactMangled(name string) (*IRFunctionProfile, bool) {
	p, ok := m.byMangled[name]
	return p, ok
}

// ExactDemangled looks up a profile by its demangled (qualified) name.
func (m *ProfileMap) ExactDemangled(name string) (*IRFunctionProfile, bool) {
	p, ok := m.byDemangled[name]
	return p, ok
}

// SuffixMatch finds a profile whose demangled name equals query or ends
// with "::"+query — the namespace-boundary suffix rule. Insertion order
// is used to break ties deterministically.
func (m *ProfileMap) SuffixMatch(query string) (*IRFunctionProfile, bool) {
	for _, p := range m.order {
		if QualifiedSuffixMatch(p.DemangledName, query) {
			return p, true
		}
	}
	return nil, false
}

// Resolve implements the refiner's three-step lookup order: exact
// demangled match, then qualified suffix match at a namespace boundary,
// then exact mangled match.
func (m *ProfileMap) Resolve(name string) (*IRFunctionProfile, bool) {
	if p, ok := m.ExactDemangled(name); ok {
		return p, ok
	}
	if p, ok := m.SuffixMatch(name); ok {
		return p, ok
	}
	return m.ExactMangled(name)
}

// All returns every profile in insertion order.
func (m *ProfileMap) All() []*IRFunctionProfile {
	return m.order
}
