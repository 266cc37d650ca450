package models

// Rate maps a vehicle-type label to an hourly price.
type Rate struct {
	ID          int64   `db:"id" json:"id"`
	VehicleType string  `db:"vehicle_type" json:"vehicle_type"`
	HourlyRate  float64 `db:"hourly_rate" json:"hourly_rate"`
}
