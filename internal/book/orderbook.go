package book

import "time"

// OrderBook is a single-symbol limit order book. It is not
// internally synchronized: callers needing multi-threaded access
// must wrap the whole facade under a single mutex.
type OrderBook struct {
	bids *ladder
	asks *ladder

	index  *orderIndex
	trades []Trade

	lastTs Timestamp
}

// NewOrderBook returns an empty book.
func NewOrderBook() *OrderBook {
	return &OrderBook{
		bids:  newLadder(Buy),
		asks:  newLadder(Sell),
		index: newOrderIndex(),
	}
}

// now returns a microsecond timestamp from a monotonic clock,
// guaranteed non-decreasing across calls within this book's lifetime.
func (b *OrderBook) now() Timestamp {
	t := Timestamp(time.Now().UnixMicro())
	if t <= b.lastTs {
		t = b.lastTs + 1
	}
	b.lastTs = t
	return t
}

func (b *OrderBook) ladderFor(side Side) *ladder {
	if side == Buy {
		return b.bids
	}
	return b.asks
}

func (b *OrderBook) oppositeLadder(side Side) *ladder {
	if side == Buy {
		return b.asks
	}
	return b.bids
}

// PlaceLimit allocates a fresh id, appends the order to the tail of
// its price level (creating the level if absent), registers an
// active locator, then triggers matching. Returns the matcher's
// result -- OK once any crossing liquidity is consumed.
func (b *OrderBook) PlaceLimit(qty Qty, price Price, side Side) (ID, Status) {
	if qty <= 0 {
		return 0, StatusInvalidQty
	}
	if price <= 0 {
		return 0, StatusInvalidPrice
	}

	id := b.index.allocate()
	ts := b.now()

	lvl := b.ladderFor(side).getOrCreate(price)
	elem := lvl.pushBack(&Order{ID: id, Price: price, Qty: qty, Timestamp: ts})
	b.index.set(id, locator{side: side, price: price, elem: elem, active: true})

	return id, b.match(side)
}

// PlaceMarket allocates a fresh id registered inactive from birth (a
// market order never rests) and sweeps the opposite ladder from best
// price outward until qty is exhausted or the ladder empties.
func (b *OrderBook) PlaceMarket(qty Qty, side Side) (ID, Status) {
	if qty <= 0 {
		return 0, StatusInvalidQty
	}

	id := b.index.allocate()
	b.index.set(id, locator{side: side, active: false})

	opp := b.oppositeLadder(side)
	if opp.len() == 0 {
		return id, StatusBookEmpty
	}

	remaining := qty
	ts := b.now()

	for remaining > 0 {
		lvl, ok := opp.best()
		if !ok {
			break
		}
		restingOrder := lvl.front()
		traded := minQty(remaining, restingOrder.Qty)
		remaining -= traded
		restingOrder.Qty -= traded

		trade := Trade{Price: lvl.price, Qty: traded, Timestamp: ts}
		if side == Buy {
			trade.BuyerID, trade.SellerID = id, restingOrder.ID
		} else {
			trade.BuyerID, trade.SellerID = restingOrder.ID, id
		}
		b.trades = append(b.trades, trade)

		if restingOrder.Qty == 0 {
			b.index.retire(restingOrder.ID)
			lvl.removeFront()
			opp.deleteIfEmpty(lvl)
		}
	}

	if remaining > 0 {
		return id, StatusPartialFill
	}
	return id, StatusOK
}

// CancelOrder erases the order from its level in O(1), erases the
// level from the ladder if it becomes empty, and marks the locator
// inactive.
func (b *OrderBook) CancelOrder(id ID) Status {
	if id < 0 {
		return StatusOrderNotFound
	}
	loc, ok := b.index.get(id)
	if !ok {
		return StatusOrderNotFound
	}
	if !loc.active {
		return StatusOrderInactive
	}

	ladd := b.ladderFor(loc.side)
	lvl, ok := ladd.get(loc.price)
	if !ok {
		return StatusOrderNotFound
	}
	lvl.remove(loc.elem)
	ladd.deleteIfEmpty(lvl)

	b.index.retire(id)
	return StatusOK
}

// ModifyOrder is cancel-then-reinsert: the replacement receives a new
// id and loses its time priority. Error codes propagate from
// whichever sub-step fails.
func (b *OrderBook) ModifyOrder(id ID, newQty Qty, newPrice Price) (ID, Status) {
	loc, ok := b.index.get(id)
	if !ok {
		return 0, StatusOrderNotFound
	}
	side := loc.side

	if status := b.CancelOrder(id); status != StatusOK {
		return 0, status
	}
	return b.PlaceLimit(newQty, newPrice, side)
}

// BestBid returns the greatest key of the buy ladder, or -1 if empty.
func (b *OrderBook) BestBid() Price {
	lvl, ok := b.bids.best()
	if !ok {
		return -1
	}
	return lvl.price
}

// BestAsk returns the least key of the sell ladder, or -1 if empty.
func (b *OrderBook) BestAsk() Price {
	lvl, ok := b.asks.best()
	if !ok {
		return -1
	}
	return lvl.price
}

// Spread returns BestAsk - BestBid, or -1 if either side is empty.
func (b *OrderBook) Spread() Price {
	bid, ask := b.BestBid(), b.BestAsk()
	if bid == -1 || ask == -1 {
		return -1
	}
	return ask - bid
}

// Volume sums the remaining quantity across orders at price p on both
// sides. The book is never crossed, so at most one side has any
// resting quantity at a given price -- the aggregation is benign, but
// preserved as specified.
func (b *OrderBook) Volume(p Price) Qty {
	var total Qty
	if lvl, ok := b.bids.get(p); ok {
		for _, o := range lvl.orders() {
			total += o.Qty
		}
	}
	if lvl, ok := b.asks.get(p); ok {
		for _, o := range lvl.orders() {
			total += o.Qty
		}
	}
	return total
}

// Size returns total resting quantity per side.
func (b *OrderBook) Size() (buyQty, sellQty Qty) {
	for _, lvl := range b.bids.ascending() {
		for _, o := range lvl.orders() {
			buyQty += o.Qty
		}
	}
	for _, lvl := range b.asks.ascending() {
		for _, o := range lvl.orders() {
			sellQty += o.Qty
		}
	}
	return buyQty, sellQty
}

// NumOrders returns the count of resting orders per side, counted
// directly from the ladders.
func (b *OrderBook) NumOrders() (buyCount, sellCount int) {
	for _, lvl := range b.bids.ascending() {
		buyCount += len(lvl.orders())
	}
	for _, lvl := range b.asks.ascending() {
		sellCount += len(lvl.orders())
	}
	return buyCount, sellCount
}

// GetBook returns every resting order: buys followed by sells, each
// side traversed price-ascending.
func (b *OrderBook) GetBook() []Order {
	var out []Order
	for _, lvl := range b.bids.ascending() {
		for _, o := range lvl.orders() {
			out = append(out, *o)
		}
	}
	for _, lvl := range b.asks.ascending() {
		for _, o := range lvl.orders() {
			out = append(out, *o)
		}
	}
	return out
}

// GetTrades returns the full trade log in emission order.
func (b *OrderBook) GetTrades() []Trade {
	out := make([]Trade, len(b.trades))
	copy(out, b.trades)
	return out
}

// TradeCount returns the number of trades emitted so far, without
// copying the log -- cheap enough to call after every operation.
func (b *OrderBook) TradeCount() int {
	return len(b.trades)
}

// TradesSince returns a defensive copy of the trades emitted at or
// after index from, for callers (e.g. a streaming CSV exporter) that
// track their own watermark instead of re-copying the whole log.
func (b *OrderBook) TradesSince(from int) []Trade {
	if from >= len(b.trades) {
		return nil
	}
	out := make([]Trade, len(b.trades)-from)
	copy(out, b.trades[from:])
	return out
}

// Clear resets the ladders, index, trade log, and id counter to an
// empty state.
func (b *OrderBook) Clear() {
	b.bids.reset()
	b.asks.reset()
	b.index.reset()
	b.trades = nil
	b.lastTs = 0
}
