package model

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

type AttemptStatus string

const (
	AttemptCreated    AttemptStatus = "created"
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptGraded     AttemptStatus = "graded"
)

func (s AttemptStatus) Terminal() bool {
	return s == AttemptGraded
}

// swagger:model TestAttempt
type TestAttempt struct {
	BaseModel
	TestID    uint `gorm:"index;not null" json:"test_id"`
	StudentID uint `gorm:"index;not null" json:"student_id"`
	// NULL means every question of the test. Written once at creation.
	SelectedQuestions  datatypes.JSON `json:"selected_questions"`
	Status             AttemptStatus  `gorm:"size:20;default:'in_progress'" json:"status"`
	StartedAt          time.Time      `json:"started_at"`
	SubmittedAt        *time.Time     `json:"submitted_at,omitempty"`
	WindowSwitches     int            `gorm:"default:0" json:"window_switches"`
	ScreenshotAttempts int            `gorm:"default:0" json:"screenshot_attempts"`
	PhoneCalls         int            `gorm:"default:0" json:"phone_calls"`
	TotalViolations    int            `gorm:"default:0" json:"total_violations"`
	CorrectCount       int            `gorm:"default:0" json:"correct_count"`
	TotalCount         int            `gorm:"default:0" json:"total_count"`
	Score              int            `gorm:"default:0" json:"score"`
	MaxScore           int            `gorm:"default:0" json:"max_score"`
	Percentage         float64        `gorm:"default:0" json:"percentage"`
	Passed             bool           `gorm:"default:false" json:"passed"`
	Answers            datatypes.JSON `json:"answers,omitempty"`
	Result             datatypes.JSON `json:"result,omitempty"`
	// ActiveKey is non-NULL only while the attempt is in progress; the unique
	// index keeps one active attempt per (test, student).
	ActiveKey *string `gorm:"size:64;uniqueIndex" json:"-"`
}

func (TestAttempt) TableName() string {
	return "test_attempts"
}

func ActiveAttemptKey(testID, studentID uint) string {
	return fmt.Sprintf("%d:%d", testID, studentID)
}

func (a *TestAttempt) Scope() (QuestionScope, error) {
	return decodeScope(a.SelectedQuestions)
}

func (a *TestAttempt) SetScope(s QuestionScope) error {
	raw, err := encodeScope(s)
	if err != nil {
		return err
	}
	a.SelectedQuestions = raw
	return nil
}

type ViolationKind string

const (
	ViolationWindowSwitch      ViolationKind = "window_switch"
	ViolationScreenshotAttempt ViolationKind = "screenshot_attempt"
	ViolationPhoneCall         ViolationKind = "phone_call"
)

func (k ViolationKind) Valid() bool {
	switch k {
	case ViolationWindowSwitch, ViolationScreenshotAttempt, ViolationPhoneCall:
		return true
	}
	return false
}

// ViolationDelta is added to an attempt's counters in one statement.
type ViolationDelta struct {
	WindowSwitches     int
	ScreenshotAttempts int
	PhoneCalls         int
}

func DeltaFor(kind ViolationKind) ViolationDelta {
	switch kind {
	case ViolationWindowSwitch:
		return ViolationDelta{WindowSwitches: 1}
	case ViolationScreenshotAttempt:
		return ViolationDelta{ScreenshotAttempts: 1}
	case ViolationPhoneCall:
		return ViolationDelta{PhoneCalls: 1}
	}
	return ViolationDelta{}
}

func (d ViolationDelta) Total() int {
	return d.WindowSwitches + d.ScreenshotAttempts + d.PhoneCalls
}

// swagger:model TestViolation
type TestViolation struct {
	BaseModel
	AttemptID     uint          `gorm:"index;not null" json:"attempt_id"`
	TestID        uint          `gorm:"index;not null" json:"test_id"`
	StudentID     uint          `gorm:"index;not null" json:"student_id"`
	ViolationType ViolationKind `gorm:"size:50;not null" json:"violation_type"`
	Details       string        `gorm:"type:text" json:"details,omitempty"`
	OccurredAt    time.Time     `json:"occurred_at"`
}

func (TestViolation) TableName() string {
	return "test_violations"
}

// AttemptOutcome is what Finalize writes onto the attempt row.
type AttemptOutcome struct {
	Grade       GradeResult
	Percentage  float64
	Passed      bool
	Answers     datatypes.JSON
	Result      datatypes.JSON
	SubmittedAt time.Time
}
