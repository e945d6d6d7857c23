package models

import "time"

// Student lifecycle states.
const (
	StudentStatusActive   = "active"
	StudentStatusInactive = "inactive"
)

// Student carries the identity and current placement this subsystem needs.
// Profile, auth and payment details live with their own services.
type Student struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	FullName     string    `gorm:"size:255;not null" json:"full_name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Phone        string    `gorm:"size:32" json:"phone"`
	ClassID      *uint     `gorm:"index" json:"class_id"`
	SubprogramID *uint     `gorm:"index" json:"subprogram_id"`
	Status       string    `gorm:"size:16;not null;default:active" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
