package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-crm-nosql/internal/application/crm"
	"github.com/go-crm-nosql/internal/domain"
)

// CustomerHandler handles customer CRUD and search.
type CustomerHandler struct {
	store crm.Service
}

func NewCustomerHandler(store crm.Service) *CustomerHandler { return &CustomerHandler{store: store} }

// List returns every customer, or the search matches when ?q= is present.
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		customers []domain.Customer
		err       error
	)
	if q, ok := r.URL.Query()["q"]; ok {
		customers, err = h.store.SearchCustomers(r.Context(), q[0])
	} else {
		customers, err = h.store.ListCustomers(r.Context())
	}
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customers)
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.GetCustomer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in domain.CustomerInput
	if !decodeBody(w, r, &in) {
		return
	}
	c, err := h.store.CreateCustomer(r.Context(), in)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	var p domain.CustomerPatch
	if !decodeBody(w, r, &p) {
		return
	}
	c, err := h.store.UpdateCustomer(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteCustomer(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "customer deleted"})
}

func (h *CustomerHandler) Jobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.store.JobsByCustomer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}
