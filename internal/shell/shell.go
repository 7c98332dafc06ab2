// Package shell implements an interactive line-oriented REPL over an
// order book, issuing direct facade calls rather than any wire
// protocol -- the command set and prompts mirror
// original_source/apps/cli.cpp, adapted from stdin/stdout scanning to
// a bufio.Scanner-driven loop in the teacher's cmd/client/client.go
// style (flag-style field prompts, a switch over the command name,
// "->"-prefixed acknowledgements).
package shell

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/saiputravu/kestrel/internal/book"
)

// commandList is printed on startup, in the same order cli.cpp lists
// its own commands.
const commandList = "placeLimit, placeMarket, cancelOrder, modifyOrder, bestBid, bestAsk, volume, spread, size, numOrders, getBook, getTrades, clear, exit"

// Shell reads commands from in and writes output to out, driving a
// single in-process OrderBook. Side is entered numerically: 0 for
// sell, 1 for buy, matching cli.cpp's prompt exactly.
type Shell struct {
	Book *book.OrderBook

	in  *bufio.Scanner
	out io.Writer

	sessionID string
}

// New wraps an OrderBook with a REPL reading from in and writing to
// out.
func New(b *book.OrderBook, in io.Reader, out io.Writer) *Shell {
	return &Shell{
		Book:      b,
		in:        bufio.NewScanner(in),
		out:       out,
		sessionID: uuid.NewString(),
	}
}

// Run drives the command loop until "exit" is entered or the input
// stream ends. It never returns an error for a malformed command --
// those are reported to out and the loop continues, exactly as
// cli.cpp's infinite while(true) does.
func (s *Shell) Run() error {
	log.Info().Str("session", s.sessionID).Msg("shell session started")
	fmt.Fprintln(s.out, "Welcome to the Order Book Interface!")
	fmt.Fprintln(s.out, "Available commands:", commandList)

	for {
		fmt.Fprint(s.out, "\nEnter command: ")
		if !s.in.Scan() {
			return s.in.Err()
		}
		cmd := strings.TrimSpace(s.in.Text())
		if cmd == "" {
			continue
		}
		if cmd == "exit" {
			fmt.Fprintln(s.out, "Exiting Order Book Interface. Goodbye!")
			log.Info().Str("session", s.sessionID).Msg("shell session ended")
			return nil
		}
		s.dispatch(cmd)
	}
}

func (s *Shell) dispatch(cmd string) {
	switch cmd {
	case "placeLimit":
		s.placeLimit()
	case "placeMarket":
		s.placeMarket()
	case "cancelOrder":
		s.cancelOrder()
	case "modifyOrder":
		s.modifyOrder()
	case "bestBid":
		s.printPriceOrNA("Best Bid", s.Book.BestBid())
	case "bestAsk":
		s.printPriceOrNA("Best Ask", s.Book.BestAsk())
	case "volume":
		s.volume()
	case "spread":
		s.printPriceOrNA("Spread", s.Book.Spread())
	case "size":
		buyQty, sellQty := s.Book.Size()
		fmt.Fprintf(s.out, "Buy Size: %d, Sell Size: %d\n", buyQty, sellQty)
	case "numOrders":
		buyCount, sellCount := s.Book.NumOrders()
		fmt.Fprintf(s.out, "Number of Buy Orders: %d, Number of Sell Orders: %d\n", buyCount, sellCount)
	case "getBook":
		s.getBook()
	case "getTrades":
		s.getTrades()
	case "clear":
		s.Book.Clear()
		fmt.Fprintln(s.out, "Book cleared.")
	default:
		fmt.Fprintln(s.out, "Invalid command. Please try again.")
	}
}

func (s *Shell) printPriceOrNA(label string, p book.Price) {
	if p == -1 {
		fmt.Fprintf(s.out, "%s: N/A\n", label)
		return
	}
	fmt.Fprintf(s.out, "%s: %d\n", label, p)
}

func (s *Shell) placeLimit() {
	qty, ok := s.readQty("Enter quantity: ")
	if !ok {
		return
	}
	price, ok := s.readPrice("Enter price: ")
	if !ok {
		return
	}
	side, ok := s.readSide()
	if !ok {
		return
	}

	id, status := s.Book.PlaceLimit(qty, price, side)
	if status != book.StatusOK {
		fmt.Fprintln(s.out, "Error placing limit order:", statusMessage(status))
		return
	}
	fmt.Fprintf(s.out, "-> Limit order placed successfully (id %d).\n", id)
}

func (s *Shell) placeMarket() {
	qty, ok := s.readQty("Enter quantity: ")
	if !ok {
		return
	}
	side, ok := s.readSide()
	if !ok {
		return
	}

	id, status := s.Book.PlaceMarket(qty, side)
	switch status {
	case book.StatusOK:
		fmt.Fprintf(s.out, "-> Market order placed successfully (id %d).\n", id)
	case book.StatusPartialFill:
		fmt.Fprintf(s.out, "-> Market order partially filled (id %d).\n", id)
	default:
		fmt.Fprintln(s.out, "Error placing market order:", statusMessage(status))
	}
}

func (s *Shell) cancelOrder() {
	id, ok := s.readID("Enter order ID to cancel: ")
	if !ok {
		return
	}
	status := s.Book.CancelOrder(id)
	if status != book.StatusOK {
		fmt.Fprintln(s.out, "Error cancelling order:", statusMessage(status))
		return
	}
	fmt.Fprintln(s.out, "Order cancelled successfully.")
}

func (s *Shell) modifyOrder() {
	id, ok := s.readID("Enter order ID to modify: ")
	if !ok {
		return
	}
	qty, ok := s.readQty("Enter new quantity: ")
	if !ok {
		return
	}
	price, ok := s.readPrice("Enter new price: ")
	if !ok {
		return
	}

	newID, status := s.Book.ModifyOrder(id, qty, price)
	if status != book.StatusOK {
		fmt.Fprintln(s.out, "Error modifying order:", statusMessage(status))
		return
	}
	fmt.Fprintf(s.out, "-> Order modified successfully (new id %d).\n", newID)
}

func (s *Shell) volume() {
	price, ok := s.readPrice("Enter price point: ")
	if !ok {
		return
	}
	fmt.Fprintf(s.out, "Volume at price %d: %d\n", price, s.Book.Volume(price))
}

func (s *Shell) getBook() {
	for _, o := range s.Book.GetBook() {
		fmt.Fprintf(s.out, "%d %d %d %d\n", o.ID, o.Price, o.Qty, o.Timestamp)
	}
}

func (s *Shell) getTrades() {
	for _, tr := range s.Book.GetTrades() {
		fmt.Fprintf(s.out, "Buyer ID: %d, Seller ID: %d, Price: %d, Quantity: %d, Timestamp: %d\n",
			tr.BuyerID, tr.SellerID, tr.Price, tr.Qty, tr.Timestamp)
	}
}

func (s *Shell) readQty(prompt string) (book.Qty, bool) {
	fmt.Fprint(s.out, prompt)
	if !s.in.Scan() {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s.in.Text()), 10, 32)
	if err != nil {
		fmt.Fprintln(s.out, "Invalid quantity.")
		return 0, false
	}
	return book.Qty(n), true
}

func (s *Shell) readPrice(prompt string) (book.Price, bool) {
	fmt.Fprint(s.out, prompt)
	if !s.in.Scan() {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s.in.Text()), 10, 64)
	if err != nil {
		fmt.Fprintln(s.out, "Invalid price.")
		return 0, false
	}
	return book.Price(n), true
}

func (s *Shell) readID(prompt string) (book.ID, bool) {
	fmt.Fprint(s.out, prompt)
	if !s.in.Scan() {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s.in.Text()), 10, 64)
	if err != nil {
		fmt.Fprintln(s.out, "Invalid order ID.")
		return 0, false
	}
	return book.ID(n), true
}

// readSide loops exactly as cli.cpp's placeLimit/placeMarket prompts
// do, rejecting anything but 0 or 1.
func (s *Shell) readSide() (book.Side, bool) {
	for {
		fmt.Fprint(s.out, "Enter order type (0 for sell, 1 for buy): ")
		if !s.in.Scan() {
			return 0, false
		}
		switch strings.TrimSpace(s.in.Text()) {
		case "0":
			return book.Sell, true
		case "1":
			return book.Buy, true
		default:
			fmt.Fprintln(s.out, "Invalid order type. Please enter 0 for sell or 1 for buy.")
		}
	}
}

func statusMessage(status book.Status) string {
	switch status {
	case book.StatusInvalidQty:
		return "Invalid quantity."
	case book.StatusInvalidPrice:
		return "Invalid price."
	case book.StatusOrderNotFound:
		return "Order not found."
	case book.StatusOrderInactive:
		return "Order is already inactive."
	case book.StatusBookEmpty:
		return "Book is empty."
	default:
		return "Unknown error."
	}
}
