package pool

import (
	"bytes"

	"github.com/AmaanSayyad/Private-Pay-sub002/config"
)

// incrementalTree is the pool-side Merkle tree. It never stores leaves: the
// whole state is the next free index plus one filled subtree hash per level,
// so an insert costs one hash per level regardless of how many commitments
// the pool holds. Clients replay the deposit records through merkle.Tree to
// rebuild the same root leaf by leaf.
type incrementalTree struct {
	depth          int
	nextIndex      int
	filledSubtrees [][]byte
	zeros          [][]byte
	root           []byte
	hash           config.HashFunc
}

func newIncrementalTree(c config.TreeConfig, hash config.HashFunc) *incrementalTree {
	filled := make([][]byte, c.Depth)
	copy(filled, c.ZeroHashes[:c.Depth])
	return &incrementalTree{
		depth:          c.Depth,
		filledSubtrees: filled,
		zeros:          c.ZeroHashes,
		root:           c.ZeroHashes[c.Depth],
		hash:           hash,
	}
}

func (t *incrementalTree) full() bool {
	return t.nextIndex >= 1<<t.depth
}

func (t *incrementalTree) size() int {
	return t.nextIndex
}

// insert places leaf at the next free index and rehashes the leaf's path to
// the root. The caller must check full first; inserting into a full tree
// panics.
func (t *incrementalTree) insert(leaf []byte) (index int, root []byte) {
	if t.full() {
		panic("pool: insert into a full tree")
	}
	index = t.nextIndex
	currentIndex := index
	currentHash := leaf
	for i := 0; i < t.depth; i++ {
		if currentIndex&1 == 0 {
			t.filledSubtrees[i] = currentHash
			currentHash = t.hash(currentHash, t.zeros[i])
		} else {
			currentHash = t.hash(t.filledSubtrees[i], currentHash)
		}
		currentIndex >>= 1
	}
	t.root = currentHash
	t.nextIndex++
	return index, currentHash
}

// rootHistory is the fixed-size ring buffer of recent roots. A withdrawal
// proof is only accepted against a root still in the ring; each push evicts
// the oldest entry, so deposits older than the ring become unprovable until
// the client reproves against a fresher root.
type rootHistory struct {
	roots   [][]byte
	current int
	filled  int
}

// newRootHistory returns a ring of n slots seeded with the genesis root.
func newRootHistory(n int, genesis []byte) *rootHistory {
	h := &rootHistory{roots: make([][]byte, n)}
	h.roots[0] = append([]byte(nil), genesis...)
	h.filled = 1
	return h
}

func (h *rootHistory) push(root []byte) {
	h.current = (h.current + 1) % len(h.roots)
	h.roots[h.current] = append([]byte(nil), root...)
	if h.filled < len(h.roots) {
		h.filled++
	}
}

func (h *rootHistory) latest() []byte {
	return h.roots[h.current]
}

func (h *rootHistory) known(root []byte) bool {
	if len(root) == 0 {
		return false
	}
	for i := 0; i < h.filled; i++ {
		slot := (h.current - i + len(h.roots)) % len(h.roots)
		if bytes.Equal(h.roots[slot], root) {
			return true
		}
	}
	return false
}

// snapshot returns the ring content, newest first.
func (h *rootHistory) snapshot() [][]byte {
	out := make([][]byte, h.filled)
	for i := 0; i < h.filled; i++ {
		slot := (h.current - i + len(h.roots)) % len(h.roots)
		out[i] = append([]byte(nil), h.roots[slot]...)
	}
	return out
}
