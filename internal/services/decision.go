package services

import (
	"strings"

	"github.com/maxaizer/placement-portal/internal/failures"
)

// Decision is an admin verdict on a company registration or a job posting.
type Decision string

const (
	Approve Decision = "approve"
	Reject  Decision = "reject"
)

func ParseDecision(s string) (Decision, error) {
	switch Decision(strings.ToLower(strings.TrimSpace(s))) {
	case Approve:
		return Approve, nil
	case Reject:
		return Reject, nil
	default:
		return "", failures.Validation("invalid decision", map[string]string{"decision": s})
	}
}
