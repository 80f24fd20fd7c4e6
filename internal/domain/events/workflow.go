package events

import (
	"time"

	"github.com/maxaizer/placement-portal/internal/entities"
)

var (
	CompanyReviewedTopic          = "CompanyReviewedEvent"
	CompanyBlacklistedTopic       = "CompanyBlacklistedEvent"
	JobReviewedTopic              = "JobReviewedEvent"
	JobStatusChangedTopic         = "JobStatusChangedEvent"
	ApplicationSubmittedTopic     = "ApplicationSubmittedEvent"
	ApplicationStatusChangedTopic = "ApplicationStatusChangedEvent"
	PlacementCreatedTopic         = "PlacementCreatedEvent"
)

// CompanyReviewed is published after an admin decision. Approved is false when
// the registration was rejected and the company no longer exists.
type CompanyReviewed struct {
	CompanyID uint
	Name      string
	Approved  bool
}

type CompanyBlacklisted struct {
	CompanyID   uint
	Blacklisted bool
}

type JobReviewed struct {
	JobID     uint
	CompanyID uint
	State     entities.ReviewState
}

type JobStatusChanged struct {
	JobID     uint
	CompanyID uint
	From      entities.ReviewState
	To        entities.ReviewState
}

type ApplicationSubmitted struct {
	ApplicationID uint
	StudentID     uint
	JobID         uint
}

type ApplicationStatusChanged struct {
	ApplicationID uint
	StudentID     uint
	JobID         uint
	JobTitle      string
	Status        entities.ApplicationStatus
}

type PlacementCreated struct {
	PlacementID   uint
	ApplicationID uint
	StudentID     uint
	CompanyID     uint
	JobTitle      string
	PlacedAt      time.Time
}
