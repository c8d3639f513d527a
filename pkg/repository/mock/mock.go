// Package mock provides an in-memory implementation of every storage
// contract, for tests that do not need sqlite.
package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/garnizeh/mentorship/pkg/models"
	"github.com/garnizeh/mentorship/pkg/repository"
)

var (
	_ repository.UserRepo       = (*Store)(nil)
	_ repository.MentorRepo     = (*Store)(nil)
	_ repository.RequestRepo    = (*Store)(nil)
	_ repository.LearningRepo   = (*Store)(nil)
	_ repository.EngagementRepo = (*Store)(nil)
)

// Store keeps every entity in maps guarded by one mutex. Conditional writes
// follow the same rules as the sqlite implementation.
type Store struct {
	mu        sync.Mutex
	users     map[string]models.User
	mentors   map[string]models.Mentor
	requests  map[string]models.TrainingRequest
	learnings map[string]models.LearningProcess

	// failures queues errors returned by the named method before it touches
	// any state, e.g. Fail("Assign", repository.ErrConflict).
	failures map[string][]error
	calls    map[string]int
}

func NewStore() *Store {
	return &Store{
		users:     make(map[string]models.User),
		mentors:   make(map[string]models.Mentor),
		requests:  make(map[string]models.TrainingRequest),
		learnings: make(map[string]models.LearningProcess),
		failures:  make(map[string][]error),
		calls:     make(map[string]int),
	}
}

// Fail makes the next len(errs) calls of method return errs in order.
func (s *Store) Fail(method string, errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = append(s.failures[method], errs...)
}

// Calls reports how many times method was invoked.
func (s *Store) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

// enter records the call and pops a queued failure; s.mu must be held.
func (s *Store) enter(method string) error {
	s.calls[method]++
	q := s.failures[method]
	if len(q) == 0 {
		return nil
	}
	s.failures[method] = q[1:]
	return q[0]
}

func newID() string { return uuid.Must(uuid.NewV7()).String() }

func now() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateUser"); err != nil {
		return err
	}

	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, other := range s.users {
		if other.Email == u.Email {
			return fmt.Errorf("insert user: %w", repository.ErrConstraint)
		}
	}
	u.ID = newID()
	u.CreatedAt = now()
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = *u
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetUser"); err != nil {
		return nil, err
	}

	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetUserByEmail"); err != nil {
		return nil, err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) CreateMentor(ctx context.Context, m *models.Mentor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateMentor"); err != nil {
		return err
	}
	if m.Workload < 0 || m.Workload > 5 {
		return fmt.Errorf("insert mentor: %w", repository.ErrConstraint)
	}

	m.ID = newID()
	m.CreatedAt = now()
	m.UpdatedAt = m.CreatedAt
	s.mentors[m.ID] = *m
	return nil
}

func (s *Store) GetMentor(ctx context.Context, id string) (*models.Mentor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetMentor"); err != nil {
		return nil, err
	}

	m, ok := s.mentors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

func (s *Store) ListMentors(ctx context.Context, belowWorkload int) ([]models.Mentor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListMentors"); err != nil {
		return nil, err
	}

	var out []models.Mentor
	for _, m := range s.mentors {
		if belowWorkload > 0 && m.Workload >= belowWorkload {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) CreateRequest(ctx context.Context, r *models.TrainingRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateRequest"); err != nil {
		return err
	}
	if _, ok := s.users[r.UserID]; !ok {
		return fmt.Errorf("insert request: %w", repository.ErrConstraint)
	}

	if r.Status == "" {
		r.Status = models.RequestPending
	}
	r.ID = newID()
	r.CreatedAt = now()
	r.UpdatedAt = r.CreatedAt
	s.requests[r.ID] = *r
	return nil
}

func (s *Store) GetRequest(ctx context.Context, id string) (*models.TrainingRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetRequest"); err != nil {
		return nil, err
	}

	r, ok := s.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (s *Store) ListRequestsByUser(ctx context.Context, userID string) ([]models.TrainingRequest, error) {
	return s.listRequests("ListRequestsByUser", func(r models.TrainingRequest) bool { return r.UserID == userID })
}

func (s *Store) ListRequests(ctx context.Context, status models.RequestStatus) ([]models.TrainingRequest, error) {
	return s.listRequests("ListRequests", func(r models.TrainingRequest) bool { return status == "" || r.Status == status })
}

func (s *Store) listRequests(method string, keep func(models.TrainingRequest) bool) ([]models.TrainingRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(method); err != nil {
		return nil, err
	}

	var out []models.TrainingRequest
	for _, r := range s.requests {
		if keep(r) {
			out = append(out, r)
		}
	}
	// v7 ids sort in creation order.
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) RejectRequest(ctx context.Context, id string, at time.Time) (*models.TrainingRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("RejectRequest"); err != nil {
		return nil, err
	}

	r, ok := s.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if r.Status != models.RequestPending {
		return nil, repository.ErrStale
	}
	r.Status = models.RequestRejected
	r.UpdatedAt = at
	s.requests[id] = r
	return &r, nil
}

func (s *Store) GetLearning(ctx context.Context, id string) (*models.LearningProcess, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetLearning"); err != nil {
		return nil, err
	}

	lp, ok := s.learnings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneLearning(lp), nil
}

func (s *Store) ListLearningsByUser(ctx context.Context, userID string) ([]models.LearningProcess, error) {
	return s.listLearnings("ListLearningsByUser", func(lp models.LearningProcess) bool { return lp.UserID == userID })
}

func (s *Store) ListLearnings(ctx context.Context, mentorID string) ([]models.LearningProcess, error) {
	return s.listLearnings("ListLearnings", func(lp models.LearningProcess) bool { return mentorID == "" || lp.MentorID == mentorID })
}

func (s *Store) listLearnings(method string, keep func(models.LearningProcess) bool) ([]models.LearningProcess, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(method); err != nil {
		return nil, err
	}

	var out []models.LearningProcess
	for _, lp := range s.learnings {
		if keep(lp) {
			out = append(out, *cloneLearning(lp))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) UpdatePlan(ctx context.Context, id string, plan []models.PlanItem, version int64, at time.Time) (*models.LearningProcess, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("UpdatePlan"); err != nil {
		return nil, err
	}

	lp, ok := s.learnings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if lp.Version != version || lp.Status != models.LearningActive {
		return nil, repository.ErrStale
	}
	lp.Plan = append([]models.PlanItem{}, plan...)
	lp.Version++
	lp.UpdatedAt = at
	s.learnings[id] = lp
	return cloneLearning(lp), nil
}

func (s *Store) UpdateNotes(ctx context.Context, id string, notes string, at time.Time) (*models.LearningProcess, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("UpdateNotes"); err != nil {
		return nil, err
	}

	lp, ok := s.learnings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	lp.Notes = &notes
	lp.Version++
	lp.UpdatedAt = at
	s.learnings[id] = lp
	return cloneLearning(lp), nil
}

func (s *Store) Assign(ctx context.Context, a repository.Assignment) (*models.LearningProcess, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("Assign"); err != nil {
		return nil, err
	}

	r, ok := s.requests[a.RequestID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	m, ok := s.mentors[a.MentorID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if r.Status != models.RequestPending || m.Workload >= a.MaxWorkload {
		return nil, repository.ErrStale
	}
	for _, lp := range s.learnings {
		if lp.RequestID == r.ID {
			return nil, repository.ErrStale
		}
	}

	r.Status = models.RequestApproved
	r.UpdatedAt = a.At
	m.Workload++
	m.UpdatedAt = a.At
	lp := models.LearningProcess{
		ID:        newID(),
		RequestID: r.ID,
		UserID:    r.UserID,
		MentorID:  m.ID,
		Topic:     r.Topic,
		Status:    models.LearningActive,
		StartDate: a.At,
		Plan:      []models.PlanItem{},
		UpdatedAt: a.At,
		Version:   1,
	}
	s.requests[r.ID] = r
	s.mentors[m.ID] = m
	s.learnings[lp.ID] = lp
	return cloneLearning(lp), nil
}

func (s *Store) Complete(ctx context.Context, id string, fb models.Feedback, at time.Time) (*models.LearningProcess, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("Complete"); err != nil {
		return nil, err
	}

	lp, ok := s.learnings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if lp.Status != models.LearningActive {
		return nil, repository.ErrStale
	}
	lp.Status = models.LearningCompleted
	lp.EndDate = &at
	lp.Feedback = &fb
	lp.Version++
	lp.UpdatedAt = at
	s.learnings[id] = lp

	if m, ok := s.mentors[lp.MentorID]; ok {
		m.Workload = max(m.Workload-1, 0)
		m.UpdatedAt = at
		s.mentors[m.ID] = m
	}
	return cloneLearning(lp), nil
}

// cloneLearning deep-copies through JSON so callers never share plan slices
// or pointers with the store.
func cloneLearning(lp models.LearningProcess) *models.LearningProcess {
	b, err := json.Marshal(lp)
	if err != nil {
		panic(err)
	}
	var out models.LearningProcess
	if err := json.Unmarshal(b, &out); err != nil {
		panic(err)
	}
	out.Version = lp.Version
	return &out
}
