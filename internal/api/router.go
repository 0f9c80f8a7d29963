package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/ledgerline/invoicing/docs" // swagger docs
)

func NewRouter(h *Handler, mw *Middleware) http.Handler {
	mux := chi.NewRouter()
	mux.Use(mw.Log, mw.Recover, mw.Cors)

	mux.Route("/api", func(r chi.Router) {
		r.HandleFunc("/health", h.HealthHandler)
		r.HandleFunc("/swagger/*", httpSwagger.Handler())

		r.Group(func(r chi.Router) {
			r.Use(mw.BearerAuth)

			r.Route("/customers", func(r chi.Router) {
				r.Get("/", h.Customers)
				r.Post("/", h.CreateCustomer)
				r.Get("/search", h.SearchCustomers)
				r.Get("/{id}", h.Customer)
				r.Put("/{id}", h.UpdateCustomer)
				r.Delete("/{id}", h.DeleteCustomer)
			})

			r.Route("/invoices", func(r chi.Router) {
				r.Get("/", h.Invoices)
				r.Post("/", h.CreateInvoice)
				r.Get("/{id}", h.Invoice)
				r.Put("/{id}", h.UpdateInvoice)
				r.Delete("/{id}", h.DeleteInvoice)
			})

			r.Get("/reports/revenue", h.RevenueReport)
		})
	})

	return mux
}
