package book

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S1 -- empty book.
func TestEmptyBook(t *testing.T) {
	b := NewOrderBook()

	assert.Equal(t, Price(-1), b.BestBid())
	assert.Equal(t, Price(-1), b.BestAsk())
	assert.Equal(t, Price(-1), b.Spread())

	buyQty, sellQty := b.Size()
	assert.Zero(t, buyQty)
	assert.Zero(t, sellQty)
	assert.Empty(t, b.GetTrades())
	assert.Empty(t, b.GetBook())
}

// S2 -- simple cross.
func TestSimpleCross(t *testing.T) {
	b := NewOrderBook()

	buyID, status := b.PlaceLimit(10, 100, Buy)
	require.Equal(t, StatusOK, status)
	require.EqualValues(t, 0, buyID)

	sellID, status := b.PlaceLimit(10, 99, Sell)
	require.Equal(t, StatusOK, status)
	require.EqualValues(t, 1, sellID)

	trades := b.GetTrades()
	require.Len(t, trades, 1)
	assert.Equal(t, buyID, trades[0].BuyerID)
	assert.Equal(t, sellID, trades[0].SellerID)
	assert.Equal(t, Price(100), trades[0].Price)
	assert.Equal(t, Qty(10), trades[0].Qty)

	assert.Equal(t, Price(-1), b.BestBid())
	assert.Equal(t, Price(-1), b.BestAsk())
}

// S3 -- FIFO at one price.
func TestFIFOAtOnePrice(t *testing.T) {
	b := NewOrderBook()

	id0, status := b.PlaceLimit(5, 100, Buy)
	require.Equal(t, StatusOK, status)
	id1, status := b.PlaceLimit(5, 100, Buy)
	require.Equal(t, StatusOK, status)
	id2, status := b.PlaceLimit(7, 100, Sell)
	require.Equal(t, StatusOK, status)

	trades := b.GetTrades()
	require.Len(t, trades, 2)

	assert.Equal(t, id0, trades[0].BuyerID)
	assert.Equal(t, id2, trades[0].SellerID)
	assert.Equal(t, Qty(5), trades[0].Qty)

	assert.Equal(t, id1, trades[1].BuyerID)
	assert.Equal(t, id2, trades[1].SellerID)
	assert.Equal(t, Qty(2), trades[1].Qty)

	book := b.GetBook()
	require.Len(t, book, 1)
	assert.Equal(t, id1, book[0].ID)
	assert.Equal(t, Qty(3), book[0].Qty)
}

// S4 -- cancel lifecycle.
func TestCancelLifecycle(t *testing.T) {
	b := NewOrderBook()

	id0, status := b.PlaceLimit(10, 101, Buy)
	require.Equal(t, StatusOK, status)

	assert.Equal(t, StatusOK, b.CancelOrder(id0))
	assert.Equal(t, StatusOrderInactive, b.CancelOrder(id0))
	assert.Equal(t, StatusOrderNotFound, b.CancelOrder(999999))
	assert.Equal(t, StatusOrderNotFound, b.CancelOrder(-1))
}

// S5 -- modify re-ids.
func TestModifyReIDs(t *testing.T) {
	b := NewOrderBook()

	id0, status := b.PlaceLimit(10, 100, Buy)
	require.Equal(t, StatusOK, status)

	newID, status := b.ModifyOrder(id0, 10, 105)
	require.Equal(t, StatusOK, status)
	assert.NotEqual(t, id0, newID)

	assert.Equal(t, StatusOrderInactive, b.CancelOrder(id0))
	assert.Equal(t, Price(105), b.BestBid())
}

// S6 -- market depletion.
func TestMarketDepletion(t *testing.T) {
	b := NewOrderBook()

	_, status := b.PlaceLimit(5, 100, Sell)
	require.Equal(t, StatusOK, status)

	_, status = b.PlaceMarket(10, Buy)
	assert.Equal(t, StatusPartialFill, status)

	trades := b.GetTrades()
	require.Len(t, trades, 1)
	assert.Equal(t, Qty(5), trades[0].Qty)

	assert.Equal(t, Price(-1), b.BestAsk())
}

func TestMarketOnEmptyBookIsBookEmpty(t *testing.T) {
	b := NewOrderBook()
	_, status := b.PlaceMarket(10, Buy)
	assert.Equal(t, StatusBookEmpty, status)
}

func TestMarketFullFillIsOK(t *testing.T) {
	b := NewOrderBook()
	_, status := b.PlaceLimit(10, 100, Sell)
	require.Equal(t, StatusOK, status)

	_, status = b.PlaceMarket(10, Buy)
	assert.Equal(t, StatusOK, status)
}

func TestInvalidQtyAndPrice(t *testing.T) {
	b := NewOrderBook()

	_, status := b.PlaceLimit(0, 100, Buy)
	assert.Equal(t, StatusInvalidQty, status)

	_, status = b.PlaceLimit(-5, 100, Buy)
	assert.Equal(t, StatusInvalidQty, status)

	_, status = b.PlaceLimit(10, 0, Buy)
	assert.Equal(t, StatusInvalidPrice, status)

	_, status = b.PlaceLimit(10, -1, Buy)
	assert.Equal(t, StatusInvalidPrice, status)

	_, status = b.PlaceMarket(0, Buy)
	assert.Equal(t, StatusInvalidQty, status)
}

// Multi-level sweep: a large incoming buy order should walk the ask
// ladder from best price outward, exhausting cheaper levels first.
func TestMultiLevelSweep(t *testing.T) {
	b := NewOrderBook()

	_, status := b.PlaceLimit(10, 100, Sell)
	require.Equal(t, StatusOK, status)
	_, status = b.PlaceLimit(10, 101, Sell)
	require.Equal(t, StatusOK, status)

	_, status = b.PlaceLimit(15, 101, Buy)
	require.Equal(t, StatusOK, status)

	trades := b.GetTrades()
	require.Len(t, trades, 2)
	assert.Equal(t, Price(100), trades[0].Price)
	assert.Equal(t, Qty(10), trades[0].Qty)
	assert.Equal(t, Price(101), trades[1].Price)
	assert.Equal(t, Qty(5), trades[1].Qty)

	assert.Equal(t, Price(101), b.BestAsk())
	assert.Equal(t, Qty(5), b.Volume(101))
}

// Round-trip law: place then cancel restores bestBid, bestAsk, size
// and numOrders; the trade log is unchanged.
func TestPlaceCancelRoundTrip(t *testing.T) {
	b := NewOrderBook()

	_, _ = b.PlaceLimit(10, 100, Buy)
	_, _ = b.PlaceLimit(10, 105, Sell)

	preBid, preAsk := b.BestBid(), b.BestAsk()
	preBuyQty, preSellQty := b.Size()
	preBuyCount, preSellCount := b.NumOrders()
	preTrades := b.GetTrades()

	id, status := b.PlaceLimit(7, 99, Buy)
	require.Equal(t, StatusOK, status)
	require.Equal(t, StatusOK, b.CancelOrder(id))

	assert.Equal(t, preBid, b.BestBid())
	assert.Equal(t, preAsk, b.BestAsk())
	postBuyQty, postSellQty := b.Size()
	assert.Equal(t, preBuyQty, postBuyQty)
	assert.Equal(t, preSellQty, postSellQty)
	postBuyCount, postSellCount := b.NumOrders()
	assert.Equal(t, preBuyCount, postBuyCount)
	assert.Equal(t, preSellCount, postSellCount)
	assert.Equal(t, preTrades, b.GetTrades())
}

// Clear-then-query yields empty state.
func TestClear(t *testing.T) {
	b := NewOrderBook()

	_, _ = b.PlaceLimit(10, 100, Buy)
	_, _ = b.PlaceLimit(5, 99, Sell)
	_, _ = b.PlaceLimit(5, 101, Sell)

	b.Clear()

	assert.Equal(t, Price(-1), b.BestBid())
	assert.Equal(t, Price(-1), b.BestAsk())
	assert.Empty(t, b.GetTrades())
	assert.Empty(t, b.GetBook())

	// Ids restart from 0 after clear.
	id, status := b.PlaceLimit(1, 1, Buy)
	require.Equal(t, StatusOK, status)
	assert.EqualValues(t, 0, id)
}

// Monotone ids: a freshly issued id strictly exceeds all previous ids,
// including across interleaved market and limit orders.
func TestMonotoneIDs(t *testing.T) {
	b := NewOrderBook()

	var lastID ID = -1
	for i := 0; i < 20; i++ {
		var id ID
		if i%3 == 0 {
			id, _ = b.PlaceMarket(1, Buy)
		} else {
			id, _ = b.PlaceLimit(1, Price(100+i), Side(i%2))
		}
		assert.Greater(t, id, lastID)
		lastID = id
	}
}

// Fuzz property: a long pseudorandom stream of placements, cancels,
// and modifies must keep the book uncrossed, the per-side sizes
// non-negative and every trade quantity positive after every step.
func TestFuzzInvariants(t *testing.T) {
	b := NewOrderBook()
	rng := rand.New(rand.NewPCG(1, 2))

	var liveIDs []ID
	const ops = 5000

	for i := 0; i < ops; i++ {
		switch rng.IntN(4) {
		case 0:
			price := Price(90 + rng.IntN(20))
			qty := Qty(1 + rng.IntN(10))
			side := Side(rng.IntN(2))
			id, status := b.PlaceLimit(qty, price, side)
			if status == StatusOK {
				liveIDs = append(liveIDs, id)
			}
		case 1:
			qty := Qty(1 + rng.IntN(10))
			side := Side(rng.IntN(2))
			b.PlaceMarket(qty, side)
		case 2:
			if len(liveIDs) > 0 {
				id := liveIDs[rng.IntN(len(liveIDs))]
				b.CancelOrder(id)
			} else {
				b.CancelOrder(ID(rng.IntN(1000)))
			}
		case 3:
			if len(liveIDs) > 0 {
				id := liveIDs[rng.IntN(len(liveIDs))]
				newID, status := b.ModifyOrder(id, Qty(1+rng.IntN(10)), Price(90+rng.IntN(20)))
				if status == StatusOK {
					liveIDs = append(liveIDs, newID)
				}
			}
		}

		assertInvariants(t, b)
	}
}

func assertInvariants(t *testing.T, b *OrderBook) {
	t.Helper()

	bid, ask := b.BestBid(), b.BestAsk()
	if bid != -1 && ask != -1 {
		assert.Less(t, bid, ask, "book must never be crossed")
	}

	buyQty, sellQty := b.Size()
	assert.True(t, buyQty >= 0)
	assert.True(t, sellQty >= 0)

	for _, trade := range b.GetTrades() {
		assert.Greater(t, trade.Qty, Qty(0))
	}
}
