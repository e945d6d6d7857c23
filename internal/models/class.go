package models

import "time"

// Class is an academic group within a subprogram (level). Class moves within
// the same subprogram are lateral; moves across subprograms are promotions.
type Class struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	ProgramID    uint      `gorm:"not null;index" json:"program_id"`
	SubprogramID uint      `gorm:"not null;index" json:"subprogram_id"`
	Shift        string    `gorm:"size:32" json:"shift"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Program is a top-level course offering; referenced by reports only.
type Program struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	CreatedAt time.Time `json:"created_at"`
}
