package index

import "strings"

// termPool stores one canonical copy of every indexed term. Both index
// directions key on the pooled string, and a term is dropped from the pool
// once the last document referencing it is removed.
type termPool struct {
	terms map[string]*pooledTerm
}

type pooledTerm struct {
	value string
	refs  int
}

func newTermPool() *termPool {
	return &termPool{terms: make(map[string]*pooledTerm)}
}

// intern returns the canonical copy of s and takes a reference on it. The
// copy is detached from s so a term never pins its source document text.
func (p *termPool) intern(s string) string {
	if t, ok := p.terms[s]; ok {
		t.refs++
		return t.value
	}
	v := strings.Clone(s)
	p.terms[v] = &pooledTerm{value: v, refs: 1}
	return v
}

func (p *termPool) release(s string) {
	t, ok := p.terms[s]
	if !ok {
		return
	}
	t.refs--
	if t.refs <= 0 {
		delete(p.terms, s)
	}
}

func (p *termPool) refs(s string) int {
	if t, ok := p.terms[s]; ok {
		return t.refs
	}
	return 0
}

func (p *termPool) len() int {
	return len(p.terms)
}
