package models

import "time"

// Domain models matching the database schema in db/migrations/0001_init.sql

type Role string

const (
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// Terminal reports whether no further transition is legal from s.
func (s RequestStatus) Terminal() bool {
	return s == RequestApproved || s == RequestRejected
}

type LearningStatus string

const (
	LearningActive    LearningStatus = "active"
	LearningCompleted LearningStatus = "completed"
)

type User struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	Department   *string   `json:"department,omitempty" db:"department"`
	JobTitle     *string   `json:"jobTitle,omitempty" db:"job_title"`
	Telegram     *string   `json:"telegram,omitempty" db:"telegram"`
	CreatedAt    time.Time `json:"createdAt" db:"created"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

type Mentor struct {
	ID         string    `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	JobTitle   string    `json:"jobTitle" db:"job_title"`
	Experience string    `json:"experience" db:"experience"`
	Workload   int       `json:"workload" db:"workload"`
	Email      string    `json:"email" db:"email"`
	Telegram   *string   `json:"telegram,omitempty" db:"telegram"`
	Avatar     *string   `json:"avatar,omitempty" db:"avatar"`
	CreatedAt  time.Time `json:"createdAt" db:"created"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated"`
}

type TrainingRequest struct {
	ID          string        `json:"id" db:"id"`
	UserID      string        `json:"userId" db:"user_id"`
	Topic       string        `json:"topic" db:"topic"`
	Description string        `json:"description" db:"description"`
	Status      RequestStatus `json:"status" db:"status"`
	CreatedAt   time.Time     `json:"createdAt" db:"created"`
	UpdatedAt   time.Time     `json:"updatedAt" db:"updated"`
}

type PlanItem struct {
	ID        string `json:"id"`
	Text      string `json:"text" validate:"required,max=500"`
	Completed bool   `json:"completed"`
}

type Feedback struct {
	Rating  int    `json:"rating" validate:"min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

type LearningProcess struct {
	ID        string         `json:"id" db:"id"`
	RequestID string         `json:"requestId" db:"request_id"`
	UserID    string         `json:"userId" db:"user_id"`
	MentorID  string         `json:"mentorId" db:"mentor_id"`
	Topic     string         `json:"topic" db:"topic"`
	Status    LearningStatus `json:"status" db:"status"`
	StartDate time.Time      `json:"startDate" db:"start_date"`
	EndDate   *time.Time     `json:"endDate,omitempty" db:"end_date"`
	Plan      []PlanItem     `json:"plan" db:"plan"`
	Notes     *string        `json:"notes,omitempty" db:"notes"`
	Feedback  *Feedback      `json:"feedback,omitempty" db:"feedback"`
	UpdatedAt time.Time      `json:"updatedAt" db:"updated"`
	// Version is bumped by every stored write and guards plan read-modify-write.
	Version int64 `json:"-" db:"version"`
}

func (lp *LearningProcess) IsActive() bool { return lp.Status == LearningActive }

// Progress summarises plan completion.
type Progress struct {
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
	Percent   float64 `json:"percent"`
}

func (lp *LearningProcess) Progress() Progress {
	p := Progress{Total: len(lp.Plan)}
	for _, it := range lp.Plan {
		if it.Completed {
			p.Completed++
		}
	}
	if p.Total > 0 {
		p.Percent = float64(p.Completed) / float64(p.Total) * 100
	}
	return p
}
