package spvstore

import (
	"container/list"
	"sync"
)

// slotHint is a bounded, best-effort hash -> slot-index memo. It never needs
// to be correct: every hit is verified against the slot's stored hash before
// being trusted, so a stale or evicted entry just falls back to a full
// linear probe. It exists purely to make repeated Get/Contains calls for
// recently-touched blocks (chain reorg walks, wallet rescans) skip the probe
// entirely in the common case.
type slotHint struct {
	mu       sync.Mutex
	capacity int
	entries  map[[32]byte]*list.Element
	order    *list.List // front = most recently used
}

type slotHintEntry struct {
	hash [32]byte
	slot uint64
}

func newSlotHint(capacity int) *slotHint {
	return &slotHint{
		capacity: capacity,
		entries:  make(map[[32]byte]*list.Element, capacity),
		order:    list.New(),
	}
}

func (h *slotHint) get(hash [32]byte) (uint64, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	el, ok := h.entries[hash]
	if !ok {
		return 0, false
	}

	h.order.MoveToFront(el)

	return el.Value.(*slotHintEntry).slot, true //nolint:forcetypeassert
}

func (h *slotHint) put(hash [32]byte, slot uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if el, ok := h.entries[hash]; ok {
		el.Value.(*slotHintEntry).slot = slot //nolint:forcetypeassert
		h.order.MoveToFront(el)

		return
	}

	el := h.order.PushFront(&slotHintEntry{hash: hash, slot: slot})
	h.entries[hash] = el

	if h.order.Len() > h.capacity {
		oldest := h.order.Back()
		if oldest != nil {
			h.order.Remove(oldest)
			delete(h.entries, oldest.Value.(*slotHintEntry).hash) //nolint:forcetypeassert
		}
	}
}

func (h *slotHint) forget(hash [32]byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if el, ok := h.entries[hash]; ok {
		h.order.Remove(el)
		delete(h.entries, hash)
	}
}

func (h *slotHint) reset() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = make(map[[32]byte]*list.Element, h.capacity)
	h.order.Init()
}

const defaultSlotHintCapacity = 256
