package zbar

import "sync/atomic"

// generation counts the result sets a parent has produced. Views are
// stamped with the value current when they were created and die as soon as
// the parent advances.
type generation struct {
	n atomic.Uint64
}

func (g *generation) current() uint64 {
	return g.n.Load()
}

func (g *generation) advance() uint64 {
	return g.n.Add(1)
}

type stamp struct {
	gen *generation
	at  uint64
}

func (g *generation) stamp() stamp {
	return stamp{gen: g, at: g.current()}
}

func (s stamp) live() bool {
	return s.gen != nil && s.gen.current() == s.at
}

func (s stamp) check() {
	if !s.live() {
		panic(ErrSymbolSetInvalidated)
	}
}
