package broker

import (
	"time"

	"github.com/twmb/go-rbtree"
)

// heartbeatItem orders windows by last-heartbeat instant, breaking ties
// by window id so the tree has a total order even when two windows
// heartbeat in the same tick.
type heartbeatItem struct {
	lastSeen time.Time
	windowID uint64
}

func (h heartbeatItem) Less(other rbtree.Item) bool {
	o := other.(heartbeatItem)
	if h.lastSeen.Equal(o.lastSeen) {
		return h.windowID < o.windowID
	}
	return h.lastSeen.Before(o.lastSeen)
}

// heartbeatIndex tracks the oldest-heartbeat window first, so the
// stale-agent scan can stop as soon as it finds a window that's still
// within the timeout rather than walking every window every tick.
type heartbeatIndex struct {
	tree  rbtree.Tree
	nodes map[uint64]*rbtree.Node
}

func newHeartbeatIndex() *heartbeatIndex {
	return &heartbeatIndex{nodes: make(map[uint64]*rbtree.Node)}
}

// Touch records windowID's heartbeat as having happened at t, replacing
// any prior entry (re-keying by remove-then-reinsert, since the tree is
// ordered on the timestamp itself).
func (h *heartbeatIndex) Touch(windowID uint64, t time.Time) {
	h.Remove(windowID)
	node := h.tree.Insert(heartbeatItem{lastSeen: t, windowID: windowID})
	h.nodes[windowID] = node
}

func (h *heartbeatIndex) Remove(windowID uint64) {
	if node, ok := h.nodes[windowID]; ok {
		h.tree.Delete(node)
		delete(h.nodes, windowID)
	}
}

// StaleBefore returns every window id whose last heartbeat is strictly
// before cutoff, oldest first.
func (h *heartbeatIndex) StaleBefore(cutoff time.Time) []uint64 {
	var stale []uint64
	for {
		n := h.tree.Min()
		if n == nil {
			break
		}
		item := n.Item.(heartbeatItem)
		if !item.lastSeen.Before(cutoff) {
			break
		}
		stale = append(stale, item.windowID)
		h.tree.Delete(n)
		delete(h.nodes, item.windowID)
	}
	return stale
}
