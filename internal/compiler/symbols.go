package compiler

// SymbolKind defines the category of a symbol.
type SymbolKind int

const (
	SymbolVariable  SymbolKind = iota // Identifier from source
	SymbolTemporary                   // Compiler-generated temporary
)

// String returns a human-readable name for the symbol kind.
func (k SymbolKind) String() string {
	switch k {
	case SymbolVariable:
		return "variable"
	case SymbolTemporary:
		return "temporary"
	default:
		return "unknown"
	}
}

// Symbol is a declared name. Every symbol has type Integer.
type Symbol struct {
	Name  string
	Kind  SymbolKind
	Index int // Declaration order, from 0
}

// SymbolTable is Micro's single flat scope. A name is entered at most once.
type SymbolTable struct {
	symbols []*Symbol
	byName  map[string]*Symbol
}

// NewSymbolTable creates an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{byName: make(map[string]*Symbol)}
}

// Lookup finds a symbol by name.
func (st *SymbolTable) Lookup(name string) (*Symbol, bool) {
	sym, ok := st.byName[name]
	return sym, ok
}

// Enter adds name if it is not present. It returns the symbol and whether
// it was newly entered.
func (st *SymbolTable) Enter(name string, kind SymbolKind) (*Symbol, bool) {
	if sym, ok := st.byName[name]; ok {
		return sym, false
	}
	sym := &Symbol{Name: name, Kind: kind, Index: len(st.symbols)}
	st.symbols = append(st.symbols, sym)
	st.byName[name] = sym
	return sym, true
}

// Len returns the number of symbols.
func (st *SymbolTable) Len() int { return len(st.symbols) }

// Symbols returns all symbols in declaration order.
func (st *SymbolTable) Symbols() []*Symbol { return st.symbols }

// Names returns all names in declaration order.
func (st *SymbolTable) Names() []string {
	names := make([]string, len(st.symbols))
	for i, sym := range st.symbols {
		names[i] = sym.Name
	}
	return names
}
