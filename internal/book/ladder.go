package book

import (
	"container/list"

	"github.com/tidwall/btree"
)

// level is the FIFO queue of resting orders at a single price on a
// single side. It is backed by container/list so that a locator's
// element reference survives insertions and removals elsewhere in the
// same level -- the stable intra-level reference spec requires for
// O(1) cancel-in-level.
type level struct {
	side  Side
	price Price
	queue *list.List
}

func newLevel(side Side, price Price) *level {
	return &level{side: side, price: price, queue: list.New()}
}

func (l *level) pushBack(o *Order) *list.Element {
	return l.queue.PushBack(o)
}

func (l *level) front() *Order {
	return l.queue.Front().Value.(*Order)
}

func (l *level) removeFront() {
	l.queue.Remove(l.queue.Front())
}

func (l *level) remove(e *list.Element) {
	l.queue.Remove(e)
}

func (l *level) empty() bool {
	return l.queue.Len() == 0
}

func (l *level) orders() []*Order {
	out := make([]*Order, 0, l.queue.Len())
	for e := l.queue.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(*Order))
	}
	return out
}

// priceLevels is the btree.BTreeG instantiation shared by both sides
// of the ladder, exactly the teacher's PriceLevels pattern.
type priceLevels = btree.BTreeG[*level]

// ladder is the ordered map price -> level for one side. Bids are
// ordered so the best (highest) price sorts first; asks so the best
// (lowest) price sorts first -- in both cases Min()/MinMut() yields
// top of book directly.
type ladder struct {
	side Side
	less func(a, b *level) bool
	tree *priceLevels
}

func newLadder(side Side) *ladder {
	var less func(a, b *level) bool
	if side == Buy {
		less = func(a, b *level) bool { return a.price > b.price }
	} else {
		less = func(a, b *level) bool { return a.price < b.price }
	}
	return &ladder{side: side, less: less, tree: btree.NewBTreeG(less)}
}

func (l *ladder) best() (*level, bool) {
	return l.tree.MinMut()
}

func (l *ladder) get(price Price) (*level, bool) {
	return l.tree.GetMut(&level{price: price})
}

func (l *ladder) getOrCreate(price Price) *level {
	if lvl, ok := l.get(price); ok {
		return lvl
	}
	lvl := newLevel(l.side, price)
	l.tree.Set(lvl)
	return lvl
}

func (l *ladder) deleteIfEmpty(lvl *level) {
	if lvl.empty() {
		l.tree.Delete(lvl)
	}
}

func (l *ladder) len() int {
	return l.tree.Len()
}

// ascending returns every level on this side ordered by price
// ascending, regardless of the side's internal matching order.
func (l *ladder) ascending() []*level {
	items := make([]*level, 0, l.tree.Len())
	l.tree.Scan(func(lvl *level) bool {
		items = append(items, lvl)
		return true
	})
	if l.side == Sell {
		return items
	}
	// Bids scan in descending price order (that is the side's Less);
	// reverse to get price-ascending for snapshot purposes.
	out := make([]*level, len(items))
	for i, lvl := range items {
		out[len(items)-1-i] = lvl
	}
	return out
}

func (l *ladder) reset() {
	l.tree = btree.NewBTreeG(l.less)
}
