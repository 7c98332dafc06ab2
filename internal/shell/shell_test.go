package shell

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saiputravu/kestrel/internal/book"
)

func runScript(t *testing.T, b *book.OrderBook, script string) string {
	t.Helper()
	var out bytes.Buffer
	sh := New(b, strings.NewReader(script), &out)
	require.NoError(t, sh.Run())
	return out.String()
}

func TestShellPlaceLimitAndQuery(t *testing.T) {
	b := book.NewOrderBook()
	script := strings.Join([]string{
		"placeLimit", "10", "100", "1",
		"bestBid",
		"exit",
		"",
	}, "\n")

	out := runScript(t, b, script)
	assert.Contains(t, out, "Limit order placed successfully")
	assert.Contains(t, out, "Best Bid: 100")
}

func TestShellBestBidNAWhenEmpty(t *testing.T) {
	b := book.NewOrderBook()
	script := strings.Join([]string{"bestBid", "bestAsk", "spread", "exit", ""}, "\n")

	out := runScript(t, b, script)
	assert.Contains(t, out, "Best Bid: N/A")
	assert.Contains(t, out, "Best Ask: N/A")
	assert.Contains(t, out, "Spread: N/A")
}

func TestShellInvalidQuantityIsReported(t *testing.T) {
	b := book.NewOrderBook()
	script := strings.Join([]string{
		"placeLimit", "0", "100", "1",
		"exit",
		"",
	}, "\n")

	out := runScript(t, b, script)
	assert.Contains(t, out, "Invalid quantity")
}

func TestShellCrossingOrdersProduceTrade(t *testing.T) {
	b := book.NewOrderBook()
	script := strings.Join([]string{
		"placeLimit", "10", "100", "0", // resting sell
		"placeLimit", "10", "100", "1", // crossing buy
		"getTrades",
		"exit",
		"",
	}, "\n")

	out := runScript(t, b, script)
	assert.Contains(t, out, "Price: 100")
	assert.Contains(t, out, "Quantity: 10")
}

func TestShellCancelOrder(t *testing.T) {
	b := book.NewOrderBook()
	id, status := b.PlaceLimit(5, 50, book.Buy)
	require.Equal(t, book.StatusOK, status)

	script := strings.Join([]string{
		"cancelOrder", strconv.FormatInt(int64(id), 10),
		"bestBid",
		"exit",
		"",
	}, "\n")

	out := runScript(t, b, script)
	assert.Contains(t, out, "Order cancelled successfully")
	assert.Contains(t, out, "Best Bid: N/A")
}

func TestShellUnknownCommand(t *testing.T) {
	b := book.NewOrderBook()
	out := runScript(t, b, strings.Join([]string{"frobnicate", "exit", ""}, "\n"))
	assert.Contains(t, out, "Invalid command")
}

func TestShellClear(t *testing.T) {
	b := book.NewOrderBook()
	_, _ = b.PlaceLimit(5, 50, book.Buy)

	out := runScript(t, b, strings.Join([]string{"clear", "numOrders", "exit", ""}, "\n"))
	assert.Contains(t, out, "Book cleared.")
	assert.Contains(t, out, "Number of Buy Orders: 0, Number of Sell Orders: 0")
}
