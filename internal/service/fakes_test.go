package service

import (
	"context"
	"quiz_portal_backend/internal/model"
	"quiz_portal_backend/internal/util"
	"sync"
)

type memTests struct {
	tests map[uint]*model.Test
}

func (m *memTests) FindByID(_ context.Context, id uint) (*model.Test, error) {
	t, ok := m.tests[id]
	if !ok {
		return nil, util.ErrTestNotFound
	}
	cp := *t
	return &cp, nil
}

type memQuestions struct {
	questions []model.Question
	// listed records every ListByIDs id set
	listed [][]uint
}

func (m *memQuestions) ListByTest(_ context.Context, testID uint) ([]model.Question, error) {
	var out []model.Question
	for _, q := range m.questions {
		if q.TestID == testID {
			out = append(out, q)
		}
	}
	return out, nil
}

// ListByIDs deliberately ignores testID so the selector's own filter is
// what keeps foreign questions out.
func (m *memQuestions) ListByIDs(_ context.Context, _ uint, ids []uint) ([]model.Question, error) {
	m.listed = append(m.listed, ids)
	var out []model.Question
	for _, q := range m.questions {
		for _, id := range ids {
			if q.ID == id {
				out = append(out, q)
			}
		}
	}
	return out, nil
}

type memAttempts struct {
	mu           sync.Mutex
	attempts     map[uint]*model.TestAttempt
	violations   []model.TestViolation
	nextID       uint
	// violationErr makes RecordViolation fail without touching the attempt.
	violationErr error
}

func newMemAttempts(as ...*model.TestAttempt) *memAttempts {
	m := &memAttempts{attempts: map[uint]*model.TestAttempt{}, nextID: 1000}
	for _, a := range as {
		m.attempts[a.ID] = a
	}
	return m
}

func (m *memAttempts) FindByID(_ context.Context, id uint) (*model.TestAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[id]
	if !ok {
		return nil, util.ErrAttemptNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAttempts) FindActive(_ context.Context, testID, studentID uint) (*model.TestAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.attempts {
		if a.TestID == testID && a.StudentID == studentID && a.Status == model.AttemptInProgress {
			cp := *a
			return &cp, nil
		}
	}
	return nil, util.ErrAttemptNotFound
}

func (m *memAttempts) FindLatest(_ context.Context, testID, studentID uint) (*model.TestAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *model.TestAttempt
	for _, a := range m.attempts {
		if a.TestID != testID || a.StudentID != studentID {
			continue
		}
		if latest == nil || a.StartedAt.After(latest.StartedAt) || (a.StartedAt.Equal(latest.StartedAt) && a.ID > latest.ID) {
			latest = a
		}
	}
	if latest == nil {
		return nil, util.ErrAttemptNotFound
	}
	cp := *latest
	return &cp, nil
}

func (m *memAttempts) CountGraded(_ context.Context, testID, studentID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, a := range m.attempts {
		if a.TestID == testID && a.StudentID == studentID && a.Status == model.AttemptGraded {
			n++
		}
	}
	return n, nil
}

func (m *memAttempts) ListByTest(_ context.Context, testID uint) ([]model.TestAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.TestAttempt
	for _, a := range m.attempts {
		if a.TestID == testID {
			out = append(out, *a)
		}
	}
	return out, nil
}

// Create mirrors the unique index on active_key.
func (m *memAttempts) Create(_ context.Context, a *model.TestAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ActiveKey != nil {
		for _, other := range m.attempts {
			if other.ActiveKey != nil && *other.ActiveKey == *a.ActiveKey {
				return util.ErrConflict
			}
		}
	}
	m.nextID++
	a.ID = m.nextID
	cp := *a
	m.attempts[a.ID] = &cp
	return nil
}

func (m *memAttempts) Finalize(_ context.Context, id uint, o model.AttemptOutcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[id]
	if !ok {
		return util.ErrAttemptNotFound
	}
	if a.Status == model.AttemptGraded {
		return util.ErrAlreadyGraded
	}
	applyOutcome(a, o)
	return nil
}

func (m *memAttempts) RecordViolation(_ context.Context, v *model.TestViolation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[v.AttemptID]
	if !ok {
		return util.ErrAttemptNotFound
	}
	if a.Status != model.AttemptInProgress {
		return util.ErrAlreadyGraded
	}
	if m.violationErr != nil {
		return m.violationErr
	}
	d := model.DeltaFor(v.ViolationType)
	a.WindowSwitches += d.WindowSwitches
	a.ScreenshotAttempts += d.ScreenshotAttempts
	a.PhoneCalls += d.PhoneCalls
	a.TotalViolations += d.Total()
	m.violations = append(m.violations, *v)
	return nil
}

type memUsers struct {
	users  map[uint]*model.User
	nextID uint
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[uint]*model.User{}}
}

func (m *memUsers) Create(_ context.Context, u *model.User) error {
	for _, other := range m.users {
		if other.Email == u.Email {
			return util.ErrEmailRegistered
		}
	}
	m.nextID++
	u.ID = m.nextID
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUsers) FindByID(_ context.Context, id uint) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, util.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, util.ErrUserNotFound
}

func (m *memUsers) TouchLastLogin(context.Context, uint) error {
	return nil
}
