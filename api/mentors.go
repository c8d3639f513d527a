package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/garnizeh/mentorship/internal/mentorship"
)

type MentorsHandler struct {
	directory *mentorship.Directory
}

func NewMentorsHandler(directory *mentorship.Directory) *MentorsHandler {
	return &MentorsHandler{directory: directory}
}

// List returns all mentors, or only those with spare capacity when
// ?available=true.
func (h *MentorsHandler) List(w http.ResponseWriter, r *http.Request) {
	available := false
	if v := r.URL.Query().Get("available"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, r, badRequest("available must be a boolean"))
			return
		}
		available = b
	}

	list, err := h.directory.List(r.Context(), available)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, nonNil(list), http.StatusOK)
}

func (h *MentorsHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.directory.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, m, http.StatusOK)
}

func (h *MentorsHandler) Onboard(w http.ResponseWriter, r *http.Request) {
	var in mentorship.MentorInput
	if err := decodeBody(r, mentorSchema, &in); err != nil {
		writeError(w, r, err)
		return
	}

	p, _ := PrincipalFrom(r.Context())
	m, err := h.directory.Onboard(r.Context(), p, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, m, http.StatusCreated)
}
