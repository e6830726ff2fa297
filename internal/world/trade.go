package world

import (
	"errors"
	"time"
)

// TradeAction discriminates buy from sell.
type TradeAction string

const (
	TradeBuy  TradeAction = "buy"
	TradeSell TradeAction = "sell"
)

var (
	ErrShipUnavailable   = errors.New("ship is sunk or not connected")
	ErrUnknownPort       = errors.New("unknown port")
	ErrUnknownGood       = errors.New("unknown good")
	ErrTooFarFromPort    = errors.New("too far from port")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInsufficientGold  = errors.New("insufficient gold")
	ErrCargoFull         = errors.New("insufficient cargo space")
	ErrInsufficientGoods = errors.New("insufficient goods to sell")
)

// TradePlan is a validated trade that has not yet been applied. The engine
// reserves stock against the storage collaborator between validation and
// Apply so two concurrent buys cannot double-spend the same unit.
type TradePlan struct {
	Ship   *Ship
	Row    *PortGood
	Action TradeAction
	GoodID string
	Qty    int
	Price  int
}

// PlanTrade validates a buy or sell without mutating anything.
func (w *World) PlanTrade(shipID, portID, goodID string, qty int, action TradeAction, now time.Time) (*TradePlan, error) {
	ship, ok := w.players[shipID]
	if !ok || !ship.Alive() {
		return nil, ErrShipUnavailable
	}
	port, ok := w.ports[portID]
	if !ok {
		return nil, ErrUnknownPort
	}
	if _, ok := w.goods[goodID]; !ok {
		return nil, ErrUnknownGood
	}
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	if WrappedDistance(ship.X, ship.Z, port.X, port.Z, w.cfg.Width, w.cfg.Height) > port.SafeRadius {
		return nil, ErrTooFarFromPort
	}

	row, err := w.EnsurePortGood(portID, goodID, now)
	if err != nil {
		return nil, err
	}

	switch action {
	case TradeBuy:
		if row.Stock < qty {
			return nil, ErrInsufficientStock
		}
		if ship.Gold < row.Price*qty {
			return nil, ErrInsufficientGold
		}
		class := w.classes[ship.Class]
		if ship.CargoUsed+qty > class.CargoCapacity {
			return nil, ErrCargoFull
		}
	case TradeSell:
		if ship.Inventory.Quantity(goodID) < qty {
			return nil, ErrInsufficientGoods
		}
	default:
		return nil, ErrUnknownGood
	}

	return &TradePlan{Ship: ship, Row: row, Action: action, GoodID: goodID, Qty: qty, Price: row.Price}, nil
}

// Apply commits a validated trade to the in-memory state. It adjusts gold,
// cargo, inventory, and local stock as one unit; the caller has already
// settled the stock against storage.
func (p *TradePlan) Apply(now time.Time) {
	total := p.Price * p.Qty
	switch p.Action {
	case TradeBuy:
		p.Ship.Gold -= total
		p.Ship.CargoUsed += p.Qty
		p.Ship.Inventory.Add(p.GoodID, p.Qty)
		p.Row.Stock -= p.Qty
	case TradeSell:
		p.Ship.Gold += total
		p.Ship.CargoUsed -= p.Qty
		p.Ship.Inventory.Add(p.GoodID, -p.Qty)
		p.Row.Stock += p.Qty
	}
	p.Row.UpdatedAt = now
}
