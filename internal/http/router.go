package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes groups handlers.
type Routes struct {
	Entry             http.HandlerFunc
	Verify            http.HandlerFunc
	Exit              http.HandlerFunc
	UpdateSession     http.HandlerFunc
	CalculatorSearch  http.HandlerFunc
	ListVehicleTypes  http.HandlerFunc
	CreateVehicleType http.HandlerFunc
	UpdateVehicleType http.HandlerFunc
	DeleteVehicleType http.HandlerFunc
	Dashboard         http.HandlerFunc
	Health            http.HandlerFunc
	QRFiles           http.Handler
}

// NewRouter registers endpoints.
func NewRouter(routes Routes) http.Handler {
	r := chi.NewRouter()

	if routes.Entry != nil {
		r.Post("/api/entry", routes.Entry)
	}
	if routes.Verify != nil {
		r.Get("/api/verify/{token}", routes.Verify)
	}
	if routes.Exit != nil {
		r.Post("/api/exit", routes.Exit)
	}
	if routes.UpdateSession != nil {
		r.Put("/api/sessions/{token}", routes.UpdateSession)
	}
	if routes.CalculatorSearch != nil {
		r.Get("/api/calculator/search", routes.CalculatorSearch)
	}
	if routes.ListVehicleTypes != nil {
		r.Get("/api/vehicle-types", routes.ListVehicleTypes)
	}
	if routes.CreateVehicleType != nil {
		r.Post("/api/vehicle-types", routes.CreateVehicleType)
	}
	if routes.UpdateVehicleType != nil {
		r.Put("/api/vehicle-types/{id}", routes.UpdateVehicleType)
	}
	if routes.DeleteVehicleType != nil {
		r.Delete("/api/vehicle-types/{id}", routes.DeleteVehicleType)
	}
	if routes.Dashboard != nil {
		r.Get("/api/dashboard", routes.Dashboard)
	}
	if routes.Health != nil {
		r.Get("/health", routes.Health)
	}
	if routes.QRFiles != nil {
		r.Handle("/static/qrs/*", routes.QRFiles)
	}

	return r
}
