package feed

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/YashMane007/Crypto-track-pappa/internal/domain"
	"github.com/YashMane007/Crypto-track-pappa/internal/event"
)

// DefaultBinanceURL is the all-market rolling ticker stream. Every message
// is a JSON array covering every symbol that changed, of which the engine
// tracks a handful.
const DefaultBinanceURL = "wss://stream.binance.com:9443/ws/!ticker@arr"

// binanceTicker is the subset of the !ticker@arr payload we consume.
// Prices come as strings; they are parsed to decimals at this boundary and
// never pass through float64.
type binanceTicker struct {
	Symbol    string `json:"s"`
	LastPrice string `json:"c"`
}

// BinanceHandler turns all-market ticker messages into engine tick batches.
type BinanceHandler struct {
	url   string
	inbox chan<- event.Event
}

// NewBinanceHandler creates a handler posting batches to the engine inbox.
// An empty url selects DefaultBinanceURL.
func NewBinanceHandler(url string, inbox chan<- event.Event) *BinanceHandler {
	if url == "" {
		url = DefaultBinanceURL
	}
	return &BinanceHandler{url: url, inbox: inbox}
}

// ID returns the source identifier.
func (h *BinanceHandler) ID() string { return "BINANCE" }

// URL returns the stream endpoint.
func (h *BinanceHandler) URL() string { return h.url }

// OnConnect is a no-op: the subscription is part of the stream URL, and
// Binance ping frames are answered by the library's default pong handler.
func (h *BinanceHandler) OnConnect(ctx context.Context, conn *websocket.Conn) error {
	return nil
}

// OnMessage parses one ticker array and forwards the batch. The feed is
// best-effort: if the inbox is full the batch is dropped, since the next
// delivery supersedes it anyway.
func (h *BinanceHandler) OnMessage(ctx context.Context, msg []byte) {
	ticks := ParseTickerBatch(msg)
	if len(ticks) == 0 {
		return
	}

	select {
	case h.inbox <- &event.TickBatch{Ticks: ticks}:
	default:
		slog.Warn("Engine inbox full, dropping tick batch", "ticks", len(ticks))
	}
}

// ParseTickerBatch decodes a !ticker@arr message. Malformed entries (empty
// symbol, non-numeric price) are skipped individually without aborting the
// batch; a message that is not an array yields nil.
func ParseTickerBatch(msg []byte) []domain.Tick {
	var raw []binanceTicker
	if err := json.Unmarshal(msg, &raw); err != nil {
		slog.Warn("Unparseable feed message", "err", err)
		return nil
	}

	ticks := make([]domain.Tick, 0, len(raw))
	for _, r := range raw {
		if r.Symbol == "" {
			continue
		}
		price, err := decimal.NewFromString(r.LastPrice)
		if err != nil {
			continue
		}
		ticks = append(ticks, domain.Tick{Symbol: r.Symbol, Price: price})
	}
	return ticks
}
