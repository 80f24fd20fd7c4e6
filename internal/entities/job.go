package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
)

type ReviewState string

const (
	ReviewPending  ReviewState = "Pending"
	ReviewApproved ReviewState = "Approved"
	ReviewRejected ReviewState = "Rejected"
	ReviewClosed   ReviewState = "Closed"
	// ReviewActive is accepted from callers as a reopen request and stored as ReviewApproved.
	ReviewActive ReviewState = "Active"
)

var reviewStates = []ReviewState{ReviewPending, ReviewApproved, ReviewRejected, ReviewClosed, ReviewActive}

func ParseReviewState(s string) (ReviewState, error) {
	state, found := lo.Find(reviewStates, func(item ReviewState) bool {
		return strings.EqualFold(string(item), strings.TrimSpace(s))
	})
	if !found {
		return "", fmt.Errorf("invalid review state: %q", s)
	}
	return state, nil
}

const DeadlineLayout = "2006-01-02"

type JobPosting struct {
	ID          uint    `gorm:"primaryKey"`
	CompanyID   uint    `gorm:"not null;index"`
	Company     Company `gorm:"constraint:OnDelete:CASCADE"`
	Title       string  `gorm:"not null"`
	Description string
	Eligibility string
	Deadline    *time.Time
	Skills      string
	Experience  string
	Salary      string
	ReviewState ReviewState `gorm:"not null;default:Pending;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ParseDeadline returns nil for empty or malformed input. Malformed deadlines are
// coerced to "no deadline" instead of failing job creation; ok reports whether the
// input was usable.
func ParseDeadline(s string) (deadline *time.Time, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	t, err := time.Parse(DeadlineLayout, s)
	if err != nil {
		return nil, false
	}
	return &t, true
}

// DeadlinePassed reports whether deadline is a day before now's calendar date.
// A deadline of today is still open.
func DeadlinePassed(deadline, now time.Time) bool {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return deadline.Before(today)
}
