package book

import "container/list"

// locator places an active order within the ladder: which side, which
// price level, and the stable list element holding it. Once active is
// false the elem field must never be dereferenced again.
type locator struct {
	side   Side
	price  Price
	elem   *list.Element
	active bool
}

// orderIndex is a dense, append-only array keyed by id. Ids are
// issued by a monotone counter starting at 0, so the index grows by
// exactly one entry per placement (limit or market).
type orderIndex struct {
	locators []locator
	nextID   ID
}

func newOrderIndex() *orderIndex {
	return &orderIndex{}
}

// allocate reserves the next id and grows the dense array, leaving the
// new slot inactive until the caller fills in its locator.
func (idx *orderIndex) allocate() ID {
	id := idx.nextID
	idx.nextID++
	idx.locators = append(idx.locators, locator{})
	return id
}

func (idx *orderIndex) set(id ID, loc locator) {
	idx.locators[id] = loc
}

func (idx *orderIndex) get(id ID) (locator, bool) {
	if id < 0 || int64(id) >= int64(len(idx.locators)) {
		return locator{}, false
	}
	return idx.locators[id], true
}

// retire marks an id inactive. It never reactivates a previously
// retired id and never removes the slot, preserving dense indexing.
func (idx *orderIndex) retire(id ID) {
	idx.locators[id].active = false
}

func (idx *orderIndex) reset() {
	idx.locators = idx.locators[:0]
	idx.nextID = 0
}
