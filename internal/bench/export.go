package bench

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"github.com/saiputravu/kestrel/internal/book"
)

// csvHeader is the exact header spec.md §6 mandates for the
// benchmark harness's trade export.
var csvHeader = []string{"Price", "Volume", "Time"}

// tradeWriter is a tomb-supervised goroutine that drains newly
// emitted trades off a channel and appends them to a CSV file,
// mirroring the teacher's internal/worker.go WorkerPool shape: one
// long-lived worker consuming a task channel until told to die. It
// never touches the live OrderBook -- only copies of already
// committed Trade values cross the channel.
type tradeWriter struct {
	path string
	ch   chan []book.Trade
}

func newTradeWriter(path string) *tradeWriter {
	return &tradeWriter{path: path, ch: make(chan []book.Trade, 64)}
}

// start launches the writer under t, creating the file and emitting
// the header row immediately so a crash mid-run still leaves a valid
// (if truncated) CSV.
func (w *tradeWriter) start(t *tomb.Tomb) error {
	f, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("create trade export: %w", err)
	}

	cw := csv.NewWriter(f)
	if err := cw.Write(csvHeader); err != nil {
		f.Close()
		return fmt.Errorf("write trade export header: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return fmt.Errorf("write trade export header: %w", err)
	}

	t.Go(func() error {
		defer f.Close()
		for {
			select {
			case <-t.Dying():
				cw.Flush()
				return nil
			case batch, ok := <-w.ch:
				if !ok {
					cw.Flush()
					return cw.Error()
				}
				for _, trade := range batch {
					row := []string{
						strconv.FormatInt(int64(trade.Price), 10),
						strconv.FormatInt(int64(trade.Qty), 10),
						strconv.FormatInt(int64(trade.Timestamp), 10),
					}
					if err := cw.Write(row); err != nil {
						log.Error().Err(err).Msg("writing trade export row")
					}
				}
			}
		}
	})
	return nil
}

func (w *tradeWriter) push(batch []book.Trade) {
	if len(batch) == 0 {
		return
	}
	cp := make([]book.Trade, len(batch))
	copy(cp, batch)
	w.ch <- cp
}

func (w *tradeWriter) close() {
	close(w.ch)
}

// ExportTradesCSV writes a completed trade log to path in one shot --
// used when a caller already has a finished Result and just wants the
// CSV artifact, without spinning up a streaming writer.
func ExportTradesCSV(path string, trades []book.Trade) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create trade export: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write trade export header: %w", err)
	}
	for _, trade := range trades {
		row := []string{
			strconv.FormatInt(int64(trade.Price), 10),
			strconv.FormatInt(int64(trade.Qty), 10),
			strconv.FormatInt(int64(trade.Timestamp), 10),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write trade export row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
