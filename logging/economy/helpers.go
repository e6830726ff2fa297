package economy

import (
	"context"

	"corsairs/server/logging"
)

const (
	// EventTrade is emitted when a buy or sell completes at a port.
	EventTrade logging.EventType = "economy.trade"
	// EventTradeRejected is emitted when trade validation fails.
	EventTradeRejected logging.EventType = "economy.trade_rejected"
	// EventMarketTick is emitted after a market repricing pass.
	EventMarketTick logging.EventType = "economy.market_tick"
)

// TradePayload describes a completed trade.
type TradePayload struct {
	Action   string `json:"action"`
	GoodID   string `json:"goodId"`
	Quantity int    `json:"quantity"`
	Price    int    `json:"price"`
	Gold     int    `json:"gold"`
}

// TradeRejectedPayload describes why a trade was refused.
type TradeRejectedPayload struct {
	Action string `json:"action"`
	GoodID string `json:"goodId"`
	Reason string `json:"reason"`
}

// MarketTickPayload summarises one repricing pass.
type MarketTickPayload struct {
	Repriced  int `json:"repriced"`
	Restocked int `json:"restocked"`
}

// Trade publishes a completed trade event.
func Trade(ctx context.Context, pub logging.Publisher, tick uint64, actor, port logging.EntityRef, payload TradePayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTrade,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{port},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryEconomy,
		Payload:  payload,
	})
}

// TradeRejected publishes a refused trade event.
func TradeRejected(ctx context.Context, pub logging.Publisher, tick uint64, actor, port logging.EntityRef, payload TradeRejectedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTradeRejected,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{port},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryEconomy,
		Payload:  payload,
	})
}

// MarketTick publishes the outcome of a market repricing pass.
func MarketTick(ctx context.Context, pub logging.Publisher, tick uint64, payload MarketTickPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventMarketTick,
		Tick:     tick,
		Actor:    logging.WorldRef(),
		Severity: logging.SeverityInfo,
		Category: logging.CategoryEconomy,
		Payload:  payload,
	})
}
