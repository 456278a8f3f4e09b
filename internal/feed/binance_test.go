package feed

import (
	"context"
	"testing"

	"github.com/YashMane007/Crypto-track-pappa/internal/event"
)

func TestParseTickerBatch(t *testing.T) {
	msg := []byte(`[
		{"s":"BTCUSDT","c":"60000.12"},
		{"s":"ETHUSDT","c":"3000"},
		{"s":"","c":"1.0"},
		{"s":"BADUSDT","c":"not-a-number"},
		{"s":"DOGEUSDT","c":""}
	]`)

	ticks := ParseTickerBatch(msg)
	if len(ticks) != 2 {
		t.Fatalf("Expected 2 valid ticks, got %d", len(ticks))
	}
	if ticks[0].Symbol != "BTCUSDT" || ticks[0].Price.String() != "60000.12" {
		t.Errorf("Unexpected first tick: %+v", ticks[0])
	}
	if ticks[1].Symbol != "ETHUSDT" || ticks[1].Price.String() != "3000" {
		t.Errorf("Unexpected second tick: %+v", ticks[1])
	}
}

func TestParseTickerBatch_NotAnArray(t *testing.T) {
	if ticks := ParseTickerBatch([]byte(`{"e":"24hrTicker"}`)); ticks != nil {
		t.Errorf("Expected nil for non-array message, got %v", ticks)
	}
	if ticks := ParseTickerBatch([]byte(`garbage`)); ticks != nil {
		t.Errorf("Expected nil for garbage, got %v", ticks)
	}
}

func TestBinanceHandler_ForwardsBatch(t *testing.T) {
	inbox := make(chan event.Event, 1)
	h := NewBinanceHandler("", inbox)

	h.OnMessage(context.Background(), []byte(`[{"s":"BTCUSDT","c":"60000"}]`))

	select {
	case ev := <-inbox:
		batch, ok := ev.(*event.TickBatch)
		if !ok {
			t.Fatalf("Expected TickBatch, got %T", ev)
		}
		if len(batch.Ticks) != 1 {
			t.Errorf("Expected 1 tick, got %d", len(batch.Ticks))
		}
	default:
		t.Fatal("Expected a batch on the inbox")
	}
}

func TestBinanceHandler_DropsWhenInboxFull(t *testing.T) {
	inbox := make(chan event.Event) // unbuffered, nobody reading
	h := NewBinanceHandler("", inbox)

	// Must not block; best-effort delivery drops the batch.
	h.OnMessage(context.Background(), []byte(`[{"s":"BTCUSDT","c":"60000"}]`))
}

func TestBinanceHandler_SkipsEmptyBatches(t *testing.T) {
	inbox := make(chan event.Event, 1)
	h := NewBinanceHandler("", inbox)

	h.OnMessage(context.Background(), []byte(`[{"s":"","c":"1"}]`))

	select {
	case <-inbox:
		t.Fatal("Empty batch must not be forwarded")
	default:
	}
}

func TestDefaultURL(t *testing.T) {
	h := NewBinanceHandler("", nil)
	if h.URL() != DefaultBinanceURL {
		t.Errorf("Expected default URL, got %s", h.URL())
	}
	h = NewBinanceHandler("wss://example.test/ws", nil)
	if h.URL() != "wss://example.test/ws" {
		t.Errorf("Expected override URL, got %s", h.URL())
	}
}
