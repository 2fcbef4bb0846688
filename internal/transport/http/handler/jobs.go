package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-crm-nosql/internal/application/crm"
	"github.com/go-crm-nosql/internal/domain"
)

// JobHandler handles job CRUD and the date/unpaid queries.
type JobHandler struct {
	store crm.Service
	now   func() time.Time
}

func NewJobHandler(store crm.Service, now func() time.Time) *JobHandler {
	if now == nil {
		now = time.Now
	}
	return &JobHandler{store: store, now: now}
}

// List returns all jobs, the jobs on ?date=, or the jobs in ?start=&end=.
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		jobs []domain.Job
		err  error
	)
	switch {
	case q.Get("date") != "":
		d, perr := domain.ParseDate(q.Get("date"))
		if perr != nil {
			httpError(w, fmt.Errorf("date: %v: %w", perr, domain.ErrValidation))
			return
		}
		jobs, err = h.store.JobsByDate(r.Context(), d)
	case q.Get("start") != "" || q.Get("end") != "":
		start, serr := domain.ParseDate(q.Get("start"))
		end, eerr := domain.ParseDate(q.Get("end"))
		if serr != nil || eerr != nil {
			httpError(w, fmt.Errorf("start and end must both be YYYY-MM-DD: %w", domain.ErrValidation))
			return
		}
		jobs, err = h.store.JobsByDateRange(r.Context(), start, end)
	default:
		jobs, err = h.store.ListJobs(r.Context())
	}
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (h *JobHandler) Today(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.store.JobsByDate(r.Context(), domain.DateOf(h.now()))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (h *JobHandler) Unpaid(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.store.UnpaidJobs(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	j, err := h.store.GetJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, j)
}

func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in domain.JobInput
	if !decodeBody(w, r, &in) {
		return
	}
	j, err := h.store.CreateJob(r.Context(), in)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, j)
}

func (h *JobHandler) Update(w http.ResponseWriter, r *http.Request) {
	var p domain.JobPatch
	if !decodeBody(w, r, &p) {
		return
	}
	j, err := h.store.UpdateJob(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, j)
}

func (h *JobHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteJob(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "job deleted"})
}

// Stats serves the dashboard aggregates for ?date= or today.
func (h *JobHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ref := domain.DateOf(h.now())
	if s := r.URL.Query().Get("date"); s != "" {
		d, err := domain.ParseDate(s)
		if err != nil {
			httpError(w, fmt.Errorf("date: %v: %w", err, domain.ErrValidation))
			return
		}
		ref = d
	}
	stats, err := h.store.DashboardStats(r.Context(), ref)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
