package zbar

/*
#include <zbar.h>
*/
import "C"

import "iter"

// SymbolSet is a view of the results of one scan. A nil native set is
// represented as an empty, still generation-checked SymbolSet.
type SymbolSet struct {
	set *C.zbar_symbol_set_t
	st  stamp
}

func newSymbolSet(set *C.zbar_symbol_set_t, st stamp) *SymbolSet {
	return &SymbolSet{set: set, st: st}
}

// Valid reports whether the set can still be read.
func (s *SymbolSet) Valid() bool {
	return s != nil && s.st.live()
}

// Len returns the number of symbols in the set.
func (s *SymbolSet) Len() int {
	s.st.check()
	if s.set == nil {
		return 0
	}
	return int(C.zbar_symbol_set_get_size(s.set))
}

// FirstSymbol returns the first symbol in decode order, or nil.
func (s *SymbolSet) FirstSymbol() *Symbol {
	s.st.check()
	if s.set == nil {
		return nil
	}
	return newSymbol(C.zbar_symbol_set_first_symbol(s.set), s.st)
}

// All yields the symbols in decode order.
func (s *SymbolSet) All() iter.Seq[*Symbol] {
	return func(yield func(*Symbol) bool) {
		for sym := s.FirstSymbol(); sym != nil; sym = sym.Next() {
			if !yield(sym) {
				return
			}
		}
	}
}

// Iter returns a forward iterator positioned before the first symbol.
func (s *SymbolSet) Iter() *SymbolIterator {
	return &SymbolIterator{set: s}
}

// Symbols collects the set into a slice of views.
func (s *SymbolSet) Symbols() []*Symbol {
	var out []*Symbol
	for sym := range s.All() {
		out = append(out, sym)
	}
	return out
}

// Snapshot copies every symbol out of native memory.
func (s *SymbolSet) Snapshot() []Decoded {
	out := make([]Decoded, 0, s.Len())
	for sym := range s.All() {
		out = append(out, sym.Snapshot())
	}
	return out
}

// SymbolIterator walks a SymbolSet once. Create a new one to restart.
type SymbolIterator struct {
	set     *SymbolSet
	next    *Symbol
	started bool
}

// Next returns the next symbol and true, or nil and false at the end.
func (it *SymbolIterator) Next() (*Symbol, bool) {
	if !it.started {
		it.started = true
		it.next = it.set.FirstSymbol()
	}
	cur := it.next
	if cur == nil {
		return nil, false
	}
	it.next = cur.Next()
	return cur, true
}
