package entities

import (
	"strings"
	"time"
)

const (
	MinCGPA = 0.0
	MaxCGPA = 10.0
)

type Student struct {
	ID             uint   `gorm:"primaryKey"`
	Name           string `gorm:"not null"`
	Email          string `gorm:"uniqueIndex;not null"`
	PasswordHash   string `gorm:"not null"`
	Department     string
	CGPA           *float64
	Resume         string
	Active         bool `gorm:"not null;default:true"`
	TelegramChatID *int64
	CreatedAt      time.Time
}

func NewStudent(name, email, passwordHash string) Student {
	return Student{
		Name:         strings.TrimSpace(name),
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		Active:       true,
	}
}

func ValidCGPA(cgpa float64) bool {
	return cgpa >= MinCGPA && cgpa <= MaxCGPA
}

type Admin struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
}
