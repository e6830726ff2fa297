package world

// IntegrateMovement advances every connected, unsunk ship with nonzero speed
// and wraps the result back onto the torus. dt is in seconds.
func (w *World) IntegrateMovement(dt float64) {
	if dt <= 0 {
		return
	}
	for _, ship := range w.ShipsInOrder() {
		if !ship.Alive() || ship.Speed == 0 {
			continue
		}
		ship.X = Wrap(ship.X+ship.DirX*ship.Speed*dt*w.cfg.ReferenceFPS, w.cfg.Width)
		ship.Z = Wrap(ship.Z+ship.DirZ*ship.Speed*dt*w.cfg.ReferenceFPS, w.cfg.Height)
	}
}

// SetIntent applies a movement intent to a ship. Nil fields leave the current
// value untouched. Direction vectors are re-normalized; a zero vector is
// ignored rather than applied.
func (w *World) SetIntent(id string, heading, speed *float64, dirX, dirZ *float64) bool {
	ship, ok := w.players[id]
	if !ok || !ship.Alive() {
		return false
	}
	if heading != nil {
		ship.Heading = Wrap(*heading, 360)
	}
	if speed != nil {
		class := w.classes[ship.Class]
		clamped := *speed
		if clamped > class.MaxSpeed {
			clamped = class.MaxSpeed
		}
		if clamped < -class.MaxSpeed {
			clamped = -class.MaxSpeed
		}
		ship.Speed = clamped
	}
	if dirX != nil && dirZ != nil {
		if nx, nz, ok := Normalize(*dirX, *dirZ); ok {
			ship.DirX = nx
			ship.DirZ = nz
		}
	}
	return true
}
