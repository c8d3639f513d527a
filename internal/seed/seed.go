// Package seed bootstraps a fresh database: the first admin account and the
// mentors listed in YAML seed files. Running it twice changes nothing.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/garnizeh/mentorship/internal/config"
	"github.com/garnizeh/mentorship/internal/mentorship"
	"github.com/garnizeh/mentorship/pkg/models"
)

type file struct {
	Mentors []mentorEntry `yaml:"mentors"`
}

type mentorEntry struct {
	Name       string  `yaml:"name"`
	JobTitle   string  `yaml:"job_title"`
	Experience string  `yaml:"experience"`
	Email      string  `yaml:"email"`
	Telegram   *string `yaml:"telegram"`
	Avatar     *string `yaml:"avatar"`
}

// Result counts what a run created.
type Result struct {
	AdminCreated   bool
	MentorsCreated int
	MentorsSkipped int
}

type Seeder struct {
	accounts  *mentorship.Accounts
	directory *mentorship.Directory
	logger    *slog.Logger
}

func New(accounts *mentorship.Accounts, directory *mentorship.Directory, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{accounts: accounts, directory: directory, logger: logger}
}

// Run creates admin when its email is set and unknown, then onboards every
// mentor from seed/*.yaml in fsys whose email is not already listed.
func (s *Seeder) Run(ctx context.Context, fsys fs.FS, admin config.AdminAccount) (Result, error) {
	var res Result

	p := mentorship.Principal{UserID: "db_init", Role: models.RoleAdmin}
	if admin.Email != "" {
		u, created, err := s.ensureAdmin(ctx, admin)
		if err != nil {
			return res, err
		}
		res.AdminCreated = created
		p.UserID = u.ID
	}

	entries, err := readMentors(fsys)
	if err != nil {
		return res, err
	}
	if len(entries) == 0 {
		return res, nil
	}

	existing, err := s.directory.List(ctx, false)
	if err != nil {
		return res, fmt.Errorf("list mentors: %w", err)
	}
	known := make(map[string]struct{}, len(existing))
	for _, m := range existing {
		known[strings.ToLower(m.Email)] = struct{}{}
	}

	for _, e := range entries {
		email := strings.ToLower(strings.TrimSpace(e.Email))
		if _, ok := known[email]; ok {
			res.MentorsSkipped++
			continue
		}
		m, err := s.directory.Onboard(ctx, p, mentorship.MentorInput{
			Name:       e.Name,
			JobTitle:   e.JobTitle,
			Experience: e.Experience,
			Email:      email,
			Telegram:   e.Telegram,
			Avatar:     e.Avatar,
		})
		if err != nil {
			return res, fmt.Errorf("seed mentor %s: %w", email, err)
		}
		known[email] = struct{}{}
		res.MentorsCreated++
		s.logger.Info("mentor seeded", slog.String("mentor_id", m.ID), slog.String("email", email))
	}

	return res, nil
}

func (s *Seeder) ensureAdmin(ctx context.Context, admin config.AdminAccount) (*models.User, bool, error) {
	u, err := s.accounts.Register(ctx, mentorship.RegisterInput{
		Name:     admin.Name,
		Email:    admin.Email,
		Password: admin.Password,
		Role:     models.RoleAdmin,
	})
	if err == nil {
		s.logger.Info("admin account created", slog.String("user_id", u.ID))
		return u, true, nil
	}
	if !errors.Is(err, mentorship.ErrConflict) {
		return nil, false, fmt.Errorf("create admin: %w", err)
	}

	// Already registered: the password must still match.
	u, err = s.accounts.Authenticate(ctx, admin.Email, admin.Password)
	if err != nil {
		return nil, false, fmt.Errorf("existing admin %s: %w", admin.Email, err)
	}
	if !u.IsAdmin() {
		return nil, false, fmt.Errorf("existing account %s is not an admin", admin.Email)
	}
	return u, false, nil
}

func readMentors(fsys fs.FS) ([]mentorEntry, error) {
	names, err := fs.Glob(fsys, "seed/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob seed files: %w", err)
	}
	sort.Strings(names)

	var out []mentorEntry
	for _, name := range names {
		b, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		var f file
		if err := yaml.Unmarshal(b, &f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path.Base(name), err)
		}
		out = append(out, f.Mentors...)
	}
	return out, nil
}
