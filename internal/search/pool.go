// Package search implements endpoint rotation and the metasearch gateway.
package search

import (
	"strings"
	"sync/atomic"
)

// Pool hands out interchangeable endpoints in round-robin order.
type Pool struct {
	endpoints []string
	cursor    atomic.Uint64
}

// NewPool copies the non-empty endpoints into a fresh pool.
func NewPool(endpoints []string) *Pool {
	cleaned := make([]string, 0, len(endpoints))
	for _, e := range endpoints {
		if e = strings.TrimRight(strings.TrimSpace(e), "/"); e != "" {
			cleaned = append(cleaned, e)
		}
	}
	return &Pool{endpoints: cleaned}
}

// Next returns the endpoint under the cursor and advances it. An empty pool yields "".
func (p *Pool) Next() string {
	n := uint64(len(p.endpoints))
	if n == 0 {
		return ""
	}
	return p.endpoints[p.advance()%n]
}

// Rotation advances the cursor once and returns every endpoint starting at the
// one under it. Callers walk the result locally, so concurrent rotations never
// skip or repeat endpoints for each other.
func (p *Pool) Rotation() []string {
	n := uint64(len(p.endpoints))
	if n == 0 {
		return nil
	}
	start := p.advance()
	out := make([]string, 0, n)
	for i := uint64(0); i < n; i++ {
		out = append(out, p.endpoints[(start+i)%n])
	}
	return out
}

func (p *Pool) advance() uint64 {
	return p.cursor.Add(1) - 1
}

// Size reports how many endpoints the pool rotates over.
func (p *Pool) Size() int {
	return len(p.endpoints)
}
