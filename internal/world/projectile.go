package world

import "time"

// CannonBall is a live projectile. Only its position changes after spawn.
type CannonBall struct {
	ID      string    `json:"id"`
	OwnerID string    `json:"ownerId"`
	Damage  int       `json:"damage"`
	X       float64   `json:"x"`
	Z       float64   `json:"z"`
	DirX    float64   `json:"dirX"`
	DirZ    float64   `json:"dirZ"`
	Speed   float64   `json:"speed"`
	FiredAt time.Time `json:"-"`
}

// Inventory maps good IDs to owned quantities. Entries exist only while the
// quantity is positive.
type Inventory map[string]int

// Quantity reports the owned amount of a good.
func (inv Inventory) Quantity(goodID string) int {
	if inv == nil {
		return 0
	}
	return inv[goodID]
}

// Add adjusts the owned quantity of a good, deleting the entry when it drops
// to zero. Negative results are clamped to removal.
func (inv Inventory) Add(goodID string, delta int) {
	if inv == nil {
		return
	}
	next := inv[goodID] + delta
	if next <= 0 {
		delete(inv, goodID)
		return
	}
	inv[goodID] = next
}

// Total sums all owned quantities; it must always equal the ship's CargoUsed.
func (inv Inventory) Total() int {
	total := 0
	for _, qty := range inv {
		total += qty
	}
	return total
}

// Clone deep-copies the inventory.
func (inv Inventory) Clone() Inventory {
	if inv == nil {
		return nil
	}
	copied := make(Inventory, len(inv))
	for k, v := range inv {
		copied[k] = v
	}
	return copied
}
