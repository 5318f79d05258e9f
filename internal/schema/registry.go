package schema

import "fmt"

// SymbolInfo describes a tradable instrument registered in a
// SymbolRegistry.
type SymbolInfo struct {
	ID   SymbolID
	Name string
}

// SymbolRegistry maps symbol names to dense, zero-based SymbolIDs suitable
// for direct array indexing by the portfolio manager. Unlike the teacher's
// venue/symbol catalog this allocates IDs 0..N-1 with no reserved sentinel,
// since the portfolio manager sizes its position arrays exactly to the
// registered symbol count.
type SymbolRegistry struct {
	names  []string
	byName map[string]SymbolID
}

// NewSymbolRegistry creates an empty registry.
func NewSymbolRegistry() *SymbolRegistry {
	return &SymbolRegistry{byName: make(map[string]SymbolID)}
}

// Register adds a new symbol and returns its dense ID. Registering the same
// name twice returns the existing ID and an error.
func (r *SymbolRegistry) Register(name string) (SymbolID, error) {
	if name == "" {
		return 0, fmt.Errorf("schema: symbol name is empty")
	}
	if id, ok := r.byName[name]; ok {
		return id, fmt.Errorf("schema: symbol already registered: %s", name)
	}
	id := SymbolID(len(r.names))
	r.names = append(r.names, name)
	r.byName[name] = id
	return id, nil
}

// Lookup returns the ID registered for name.
func (r *SymbolRegistry) Lookup(name string) (SymbolID, bool) {
	id, ok := r.byName[name]
	return id, ok
}

// Name returns the symbol name registered for id.
func (r *SymbolRegistry) Name(id SymbolID) (string, bool) {
	if int(id) < 0 || int(id) >= len(r.names) {
		return "", false
	}
	return r.names[id], true
}

// Len returns the number of registered symbols, i.e. the required capacity
// of any array indexed by SymbolID.
func (r *SymbolRegistry) Len() int {
	return len(r.names)
}

// Symbols returns every registered symbol in ID order.
func (r *SymbolRegistry) Symbols() []SymbolInfo {
	out := make([]SymbolInfo, len(r.names))
	for i, name := range r.names {
		out[i] = SymbolInfo{ID: SymbolID(i), Name: name}
	}
	return out
}
