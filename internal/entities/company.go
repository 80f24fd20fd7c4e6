package entities

import (
	"strings"
	"time"
)

type ApprovalState string

const (
	ApprovalPending  ApprovalState = "Pending"
	ApprovalApproved ApprovalState = "Approved"
	ApprovalRejected ApprovalState = "Rejected"
)

type Company struct {
	ID            uint   `gorm:"primaryKey"`
	Name          string `gorm:"not null"`
	Email         string `gorm:"uniqueIndex;not null"`
	PasswordHash  string `gorm:"not null"`
	Website       string
	HRContact     string
	ApprovalState ApprovalState `gorm:"not null;default:Pending;index"`
	Blacklisted   bool          `gorm:"not null;default:false"`
	CreatedAt     time.Time
}

func NewCompany(name, email, passwordHash, website, hrContact string) Company {
	return Company{
		Name:          strings.TrimSpace(name),
		Email:         NormalizeEmail(email),
		PasswordHash:  passwordHash,
		Website:       strings.TrimSpace(website),
		HRContact:     strings.TrimSpace(hrContact),
		ApprovalState: ApprovalPending,
	}
}

// IsListed reports whether the company's postings may appear in the catalog.
func (c Company) IsListed() bool {
	return c.ApprovalState == ApprovalApproved && !c.Blacklisted
}

// NormalizeEmail makes e-mail uniqueness case-insensitive at the index level.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
