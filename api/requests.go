package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/garnizeh/mentorship/internal/mentorship"
	"github.com/garnizeh/mentorship/pkg/models"
)

type RequestsHandler struct {
	requests    *mentorship.Requests
	coordinator *mentorship.Coordinator
}

func NewRequestsHandler(requests *mentorship.Requests, coordinator *mentorship.Coordinator) *RequestsHandler {
	return &RequestsHandler{requests: requests, coordinator: coordinator}
}

type createRequestBody struct {
	Topic       string `json:"topic"`
	Description string `json:"description"`
}

type assignBody struct {
	MentorID string `json:"mentorId"`
}

func (h *RequestsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body createRequestBody
	if err := decodeBody(r, createRequestSchema, &body); err != nil {
		writeError(w, r, err)
		return
	}

	p, _ := PrincipalFrom(r.Context())
	tr, err := h.requests.Create(r.Context(), p, body.Topic, body.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, tr, http.StatusCreated)
}

// ListMine returns the caller's own requests.
func (h *RequestsHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	list, err := h.requests.ListForUser(r.Context(), p, p.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, nonNil(list), http.StatusOK)
}

// ListAll serves admins; ?status= narrows the result.
func (h *RequestsHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	status := models.RequestStatus(r.URL.Query().Get("status"))
	list, err := h.requests.ListAll(r.Context(), p, status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, nonNil(list), http.StatusOK)
}

func (h *RequestsHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	tr, err := h.requests.Get(r.Context(), p, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, tr, http.StatusOK)
}

func (h *RequestsHandler) Reject(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	tr, err := h.requests.Reject(r.Context(), p, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, tr, http.StatusOK)
}

// Assign approves the request and opens a learning process with the mentor.
func (h *RequestsHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var body assignBody
	if err := decodeBody(r, assignSchema, &body); err != nil {
		writeError(w, r, err)
		return
	}

	p, _ := PrincipalFrom(r.Context())
	lp, err := h.coordinator.Assign(r.Context(), p, mux.Vars(r)["id"], body.MentorID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, lp, http.StatusCreated)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
