package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/garnizeh/mentorship/internal/mentorship"
	"github.com/garnizeh/mentorship/pkg/models"
)

type LearningsHandler struct {
	learnings *mentorship.Learnings
}

func NewLearningsHandler(learnings *mentorship.Learnings) *LearningsHandler {
	return &LearningsHandler{learnings: learnings}
}

type replacePlanBody struct {
	Plan []models.PlanItem `json:"plan"`
}

type planItemBody struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

type notesBody struct {
	Notes string `json:"notes"`
}

// ListMine returns the caller's learning processes in every status.
func (h *LearningsHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	list, err := h.learnings.ListForUser(r.Context(), p, p.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, nonNil(list), http.StatusOK)
}

// ListAll serves admins; ?mentorId= narrows the result.
func (h *LearningsHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	list, err := h.learnings.ListAll(r.Context(), p, r.URL.Query().Get("mentorId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, nonNil(list), http.StatusOK)
}

func (h *LearningsHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	lp, err := h.learnings.Get(r.Context(), p, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, lp, http.StatusOK)
}

func (h *LearningsHandler) Progress(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	pr, err := h.learnings.Progress(r.Context(), p, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, pr, http.StatusOK)
}

func (h *LearningsHandler) ReplacePlan(w http.ResponseWriter, r *http.Request) {
	var body replacePlanBody
	if err := decodeBody(r, replacePlanSchema, &body); err != nil {
		writeError(w, r, err)
		return
	}
	h.respond(w, r)(h.learnings.ReplacePlan(r.Context(), principal(r), mux.Vars(r)["id"], body.Plan))
}

func (h *LearningsHandler) AddPlanItem(w http.ResponseWriter, r *http.Request) {
	var body planItemBody
	if err := decodeBody(r, addPlanItemSchema, &body); err != nil {
		writeError(w, r, err)
		return
	}
	h.respond(w, r)(h.learnings.AddPlanItem(r.Context(), principal(r), mux.Vars(r)["id"], body.Text))
}

func (h *LearningsHandler) EditPlanItem(w http.ResponseWriter, r *http.Request) {
	var body planItemBody
	if err := decodeBody(r, editPlanItemSchema, &body); err != nil {
		writeError(w, r, err)
		return
	}
	vars := mux.Vars(r)
	h.respond(w, r)(h.learnings.EditPlanItem(r.Context(), principal(r), vars["id"], vars["itemId"], body.Text, body.Completed))
}

func (h *LearningsHandler) TogglePlanItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	h.respond(w, r)(h.learnings.TogglePlanItem(r.Context(), principal(r), vars["id"], vars["itemId"]))
}

func (h *LearningsHandler) RemovePlanItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	h.respond(w, r)(h.learnings.RemovePlanItem(r.Context(), principal(r), vars["id"], vars["itemId"]))
}

func (h *LearningsHandler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	var body notesBody
	if err := decodeBody(r, notesSchema, &body); err != nil {
		writeError(w, r, err)
		return
	}
	h.respond(w, r)(h.learnings.UpdateNotes(r.Context(), principal(r), mux.Vars(r)["id"], body.Notes))
}

func (h *LearningsHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var fb models.Feedback
	if err := decodeBody(r, completeSchema, &fb); err != nil {
		writeError(w, r, err)
		return
	}
	h.respond(w, r)(h.learnings.Complete(r.Context(), principal(r), mux.Vars(r)["id"], fb))
}

// respond writes the updated learning process or the error.
func (h *LearningsHandler) respond(w http.ResponseWriter, r *http.Request) func(*models.LearningProcess, error) {
	return func(lp *models.LearningProcess, err error) {
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, lp, http.StatusOK)
	}
}

func principal(r *http.Request) mentorship.Principal {
	p, _ := PrincipalFrom(r.Context())
	return p
}
