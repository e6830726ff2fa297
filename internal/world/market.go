package world

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// MarketKey identifies one good at one port.
type MarketKey struct {
	PortID string
	GoodID string
}

// PortGood is the mutable market record for one good at one port. Price is
// always re-derived from the good's base price so it can never drift
// unbounded.
type PortGood struct {
	PortID    string    `json:"portId"`
	GoodID    string    `json:"goodId"`
	Price     int       `json:"price"`
	Stock     int       `json:"stock"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EnsurePortGood returns the market row for the pair, lazily initialising it
// with a randomized starting price and stock on first sight.
func (w *World) EnsurePortGood(portID, goodID string, now time.Time) (*PortGood, error) {
	key := MarketKey{PortID: portID, GoodID: goodID}
	if row, ok := w.market[key]; ok {
		return row, nil
	}
	if _, ok := w.ports[portID]; !ok {
		return nil, fmt.Errorf("unknown port %q", portID)
	}
	good, ok := w.goods[goodID]
	if !ok {
		return nil, fmt.Errorf("unknown good %q", goodID)
	}
	row := &PortGood{
		PortID:    portID,
		GoodID:    goodID,
		Price:     w.reprice(good),
		Stock:     w.restockBand(),
		UpdatedAt: now,
	}
	w.market[key] = row
	return row, nil
}

// RestorePortGood seeds a market row from persisted state at startup.
func (w *World) RestorePortGood(row PortGood) {
	copied := row
	w.market[MarketKey{PortID: row.PortID, GoodID: row.GoodID}] = &copied
}

// PortGoods lists the market rows for one port in stable good order,
// initialising missing pairs.
func (w *World) PortGoods(portID string, now time.Time) ([]PortGood, error) {
	if _, ok := w.ports[portID]; !ok {
		return nil, fmt.Errorf("unknown port %q", portID)
	}
	rows := make([]PortGood, 0, len(w.goods))
	for _, good := range w.Goods() {
		row, err := w.EnsurePortGood(portID, good.ID, now)
		if err != nil {
			return nil, err
		}
		rows = append(rows, *row)
	}
	return rows, nil
}

// MarketStep re-derives every port-good price from its base price and
// restocks rows that have run low. It returns the changed rows for
// persistence.
func (w *World) MarketStep(now time.Time) (repriced, restocked int, changed []PortGood) {
	portIDs := make([]string, 0, len(w.ports))
	for id := range w.ports {
		portIDs = append(portIDs, id)
	}
	sort.Strings(portIDs)

	for _, portID := range portIDs {
		for _, good := range w.Goods() {
			row, err := w.EnsurePortGood(portID, good.ID, now)
			if err != nil {
				continue
			}
			row.Price = w.reprice(good)
			repriced++
			if row.Stock < w.cfg.LowStockThreshold {
				row.Stock = w.restockBand()
				restocked++
			}
			row.UpdatedAt = now
			changed = append(changed, *row)
		}
	}
	return repriced, restocked, changed
}

// reprice draws a fluctuation in [-f%, +f%] around the base price.
func (w *World) reprice(good Good) int {
	f := (w.rng.Float64()*2 - 1) * good.Fluctuation / 100
	price := int(math.Round(float64(good.BasePrice) * (1 + f)))
	if price < 1 {
		price = 1
	}
	return price
}

func (w *World) restockBand() int {
	span := w.cfg.RestockMax - w.cfg.RestockMin
	if span <= 0 {
		return w.cfg.RestockMin
	}
	return w.cfg.RestockMin + w.rng.Intn(span+1)
}
