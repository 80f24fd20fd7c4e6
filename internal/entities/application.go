package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
)

type ApplicationStatus string

const (
	StatusApplied     ApplicationStatus = "Applied"
	StatusShortlisted ApplicationStatus = "Shortlisted"
	StatusInterview   ApplicationStatus = "Interview"
	StatusSelected    ApplicationStatus = "Selected"
	StatusPlaced      ApplicationStatus = "Placed"
	StatusRejected    ApplicationStatus = "Rejected"
)

var applicationStatuses = []ApplicationStatus{
	StatusApplied, StatusShortlisted, StatusInterview, StatusSelected, StatusPlaced, StatusRejected,
}

var finalStatuses = []ApplicationStatus{StatusPlaced, StatusRejected}

func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	status, found := lo.Find(applicationStatuses, func(item ApplicationStatus) bool {
		return strings.EqualFold(string(item), strings.TrimSpace(s))
	})
	if !found {
		return "", fmt.Errorf("invalid application status: %q", s)
	}
	return status, nil
}

func FinalStatuses() []ApplicationStatus {
	return finalStatuses
}

func (s ApplicationStatus) IsFinal() bool {
	return lo.Contains(finalStatuses, s)
}

type Application struct {
	ID           uint              `gorm:"primaryKey"`
	StudentID    uint              `gorm:"not null;uniqueIndex:idx_application_student_job"`
	Student      Student           `gorm:"constraint:OnDelete:CASCADE"`
	JobPostingID uint              `gorm:"not null;uniqueIndex:idx_application_student_job;index"`
	JobPosting   JobPosting        `gorm:"constraint:OnDelete:CASCADE"`
	Status       ApplicationStatus `gorm:"not null;default:Applied"`
	AppliedAt    time.Time         `gorm:"autoCreateTime"`
	UpdatedAt    time.Time
}

func NewApplication(studentID, jobID uint) Application {
	return Application{StudentID: studentID, JobPostingID: jobID, Status: StatusApplied}
}

// Placement is written once, when an application reaches StatusPlaced. Student,
// company and title are copied so the record survives removal of the application.
type Placement struct {
	ID            uint `gorm:"primaryKey"`
	ApplicationID uint `gorm:"not null;uniqueIndex"`
	StudentID     uint `gorm:"not null;index"`
	CompanyID     uint `gorm:"not null;index"`
	JobTitle      string
	PlacedAt      time.Time `gorm:"autoCreateTime"`
}
