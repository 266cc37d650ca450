package models

import "time"

// Session represents one parking occupancy from entry to exit. ExitTime and
// AmountPaid are set together exactly once when the session closes; a nil
// ExitTime means the session is still active.
type Session struct {
	Token       string     `db:"token" json:"token"`
	Plate       string     `db:"plate" json:"plate"`
	VehicleType string     `db:"vehicle_type" json:"vehicle_type"`
	Brand       *string    `db:"brand" json:"brand"`
	Model       *string    `db:"model" json:"model"`
	Color       *string    `db:"color" json:"color"`
	EntryTime   time.Time  `db:"entry_time" json:"entry_time"`
	ExitTime    *time.Time `db:"exit_time" json:"exit_time,omitempty"`
	AmountPaid  *float64   `db:"amount_paid" json:"amount_paid,omitempty"`
}

// Active reports whether the session is still open.
func (s *Session) Active() bool {
	return s.ExitTime == nil
}
