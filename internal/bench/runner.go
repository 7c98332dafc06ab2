package bench

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"github.com/saiputravu/kestrel/internal/book"
)

// Counts tallies the status returned by each applied operation,
// mirroring original_source/apps/benchmark.cpp's ok/invalid/partial/
// empty counters.
type Counts struct {
	OK            int64
	Invalid       int64
	Partial       int64
	Empty         int64
	OrderNotFound int64
	OrderInactive int64
}

// Result is everything a run produces: the run's correlation id, its
// tallies, and the book's full trade log at completion.
type Result struct {
	RunID  string
	Counts Counts
	Trades []book.Trade
}

// Runner drives a single OrderBook with a pseudorandom operation
// stream parameterized by Params.
type Runner struct {
	Book   *book.OrderBook
	Params Params

	// ExportPath, if set, streams the trade log to a CSV file as
	// trades are produced, via a tomb-supervised writer goroutine
	// that never touches Book directly.
	ExportPath string

	rng       *rand.Rand
	mid       int64
	liveIDs   []book.ID
	tradeSeen int
}

// NewRunner builds a runner over a fresh book, seeded for
// reproducibility per Params.Seed.
func NewRunner(params Params) *Runner {
	return &Runner{
		Book:   book.NewOrderBook(),
		Params: params,
		rng:    rand.New(rand.NewPCG(params.Seed, params.Seed)),
		mid:    params.StartMid,
	}
}

// Run drives Params.Ops operations against the book, asserting the
// no-cross invariant every CheckEvery operations (progress is logged
// at those points only once Warmup operations have passed), and
// returns the accumulated result. All book mutation happens on a
// single generator goroutine -- the only other concurrency here is a
// supervised writer goroutine (see tradeWriter in export.go) that
// consumes copies of newly emitted trades, never the live book.
//
// Run honors ctx cancellation (e.g. SIGINT forwarded by the caller)
// by stopping early and returning the partial result, the same
// graceful-shutdown shape as the teacher's cmd/main.go +
// internal/worker.go tomb-supervised lifecycle.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	t, ctx := tomb.WithContext(ctx)
	result := Result{RunID: uuid.NewString()}

	var writer *tradeWriter
	if r.ExportPath != "" {
		writer = newTradeWriter(r.ExportPath)
		if err := writer.start(t); err != nil {
			return result, err
		}
	}

	t.Go(func() error {
		for i := 1; i <= r.Params.Ops; i++ {
			select {
			case <-t.Dying():
				return nil
			default:
			}

			r.step(i, &result)
			if writer != nil {
				r.flushNewTrades(writer)
			}

			if r.Params.CheckEvery > 0 && i%r.Params.CheckEvery == 0 {
				if err := r.checkInvariants(); err != nil {
					return err
				}
				if i > r.Params.Warmup {
					log.Info().
						Int("op", i).
						Int("ops", r.Params.Ops).
						Int64("ok", result.Counts.OK).
						Int64("partial", result.Counts.Partial).
						Int64("empty", result.Counts.Empty).
						Int64("invalid", result.Counts.Invalid).
						Msg("benchmark progress")
				}
			}
		}
		if writer != nil {
			writer.close()
		}
		return nil
	})

	err := t.Wait()
	result.Trades = r.Book.GetTrades()
	return result, err
}

// flushNewTrades pushes any trades produced since the last call onto
// the streaming writer. The book's trade log is append-only, so a
// simple watermark is enough to find the new slice.
func (r *Runner) flushNewTrades(w *tradeWriter) {
	if n := r.Book.TradeCount(); n > r.tradeSeen {
		w.push(r.Book.TradesSince(r.tradeSeen))
		r.tradeSeen = n
	}
}

// step applies one pseudorandom operation, in the same proportions as
// original_source/apps/benchmark.cpp: a fraction PLimit are limit
// orders (the rest market), a fraction PBuy are buys, and every 1000
// operations the mid drifts by a random walk bounded by MaxSpread so
// the book doesn't wander off to the price-space edges.
func (r *Runner) step(i int, result *Result) {
	isLimit := r.rng.Float64() < r.Params.PLimit
	isBuy := r.rng.Float64() < r.Params.PBuy
	side := book.Sell
	if isBuy {
		side = book.Buy
	}

	qty := book.Qty(r.Params.MinQty + int32(r.rng.IntN(int(r.Params.MaxQty-r.Params.MinQty+1))))

	if i%1000 == 0 {
		r.mid += r.randSpread()
		r.mid = clampInt64(r.mid, 1, maxPrice)
	}

	var status book.Status
	var id book.ID

	if isLimit {
		px := clampInt64(r.mid+r.randSpread(), 1, maxPrice)
		id, status = r.Book.PlaceLimit(qty, book.Price(px), side)
	} else {
		id, status = r.Book.PlaceMarket(qty, side)
	}

	switch status {
	case book.StatusOK:
		result.Counts.OK++
		if isLimit {
			r.liveIDs = append(r.liveIDs, id)
		}
	case book.StatusInvalidQty, book.StatusInvalidPrice:
		result.Counts.Invalid++
	case book.StatusPartialFill:
		result.Counts.Partial++
		if isLimit {
			r.liveIDs = append(r.liveIDs, id)
		}
	case book.StatusBookEmpty:
		result.Counts.Empty++
	}
}

// randSpread draws a signed offset uniformly from [-MaxSpread,
// MaxSpread], scaled to whole ticks.
func (r *Runner) randSpread() int64 {
	span := 2*r.Params.MaxSpread + 1
	return (r.rng.Int64N(span) - r.Params.MaxSpread) * r.Params.Tick
}

const maxPrice = int64(1) << 60

func clampInt64(x, lo, hi int64) int64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// checkInvariants is the cheap, in-band sanity check run every
// CheckEvery operations: the book must never be crossed.
func (r *Runner) checkInvariants() error {
	bid, ask := r.Book.BestBid(), r.Book.BestAsk()
	if bid != -1 && ask != -1 && bid >= ask {
		return fmt.Errorf("invariant fail: crossed book bid=%d ask=%d", bid, ask)
	}
	return nil
}
