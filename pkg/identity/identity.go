// Package identity assigns the ordinal and content-hash identity of every
// dynamic position in a tree.
//
// The scanner that extracts templates and the path that instantiates them at
// run time both call Assign. Because both use the same Walk order and the same
// Canonical hashing, structurally identical input yields an identical stream
// of Trackers and ExprIdx values from either producer.
package identity

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/vango-dev/splice/pkg/node"
)

// Builder hands out Trackers and ExprIdx values for a single traversal.
// A Builder is not safe for concurrent use.
type Builder struct {
	trackers uint32
	exprs    uint32
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// NextTracker returns the next Tracker, hashing the canonical form of content.
func (b *Builder) NextTracker(content string) node.Tracker {
	t := node.Tracker{
		Index: b.trackers,
		Hash:  Hash(content),
	}
	b.trackers++
	return t
}

// NextExprIdx returns the next ExprIdx.
func (b *Builder) NextExprIdx() node.ExprIdx {
	idx := node.ExprIdx(b.exprs)
	b.exprs++
	return idx
}

// Reset resets both counters to 0.
func (b *Builder) Reset() {
	b.trackers = 0
	b.exprs = 0
}

// Current returns the number of trackers handed out so far.
func (b *Builder) Current() uint32 {
	return b.trackers
}

// Hash returns the xxhash64 of the canonical form of content.
func Hash(content string) uint64 {
	return xxhash.Sum64String(Canonical(content))
}

// Assign walks root with a fresh Builder and stores a Tracker and ExprIdx on
// every dynamic site. It returns the number of sites.
func Assign(root *node.Node) int {
	b := NewBuilder()
	count := 0
	Walk(root, func(s Site) bool {
		s.set(b.NextTracker(s.Content()), b.NextExprIdx())
		count++
		return true
	})
	return count
}

// Key is the identity stored at one site.
type Key struct {
	Idx     node.ExprIdx `json:"idx"`
	Tracker node.Tracker `json:"tracker"`
	Kind    string       `json:"kind"`
}

// String returns the key as "expr#n #n:hash (Kind)".
func (k Key) String() string {
	return fmt.Sprintf("%s %s (%s)", k.Idx, k.Tracker, k.Kind)
}

// Stream returns the identity stored at every site of root, in traversal order.
func Stream(root *node.Node) []Key {
	var keys []Key
	Walk(root, func(s Site) bool {
		keys = append(keys, Key{Idx: s.Idx(), Tracker: s.Tracker(), Kind: s.Kind()})
		return true
	})
	return keys
}

// Diff compares two identity streams by ExprIdx. missing holds keys of want
// absent from got; extra holds keys of got absent from want. Both are sorted
// by ExprIdx.
func Diff(want, got []Key) (missing, extra []Key) {
	wantSet := make(map[node.ExprIdx]Key, len(want))
	for _, k := range want {
		wantSet[k.Idx] = k
	}
	gotSet := make(map[node.ExprIdx]Key, len(got))
	for _, k := range got {
		gotSet[k.Idx] = k
	}

	for idx, k := range wantSet {
		if _, ok := gotSet[idx]; !ok {
			missing = append(missing, k)
		}
	}
	for idx, k := range gotSet {
		if _, ok := wantSet[idx]; !ok {
			extra = append(extra, k)
		}
	}

	SortKeys(missing)
	SortKeys(extra)
	return missing, extra
}

// SortKeys sorts keys by ExprIdx.
func SortKeys(keys []Key) {
	sort.Slice(keys, func(i, j int) bool { return keys[i].Idx < keys[j].Idx })
}

// Fingerprint hashes the Tracker stream of root. Two trees with the same
// code shape have the same fingerprint regardless of their payloads.
func Fingerprint(root *node.Node) uint64 {
	d := xxhash.New()
	var buf [12]byte
	Walk(root, func(s Site) bool {
		t := s.Tracker()
		binary.LittleEndian.PutUint32(buf[:4], t.Index)
		binary.LittleEndian.PutUint64(buf[4:], t.Hash)
		_, _ = d.Write(buf[:])
		return true
	})
	return d.Sum64()
}
