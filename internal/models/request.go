package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Request is an application record that moves through review and may be bound to a grimorio.
type Request struct {
	ID             string        `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name           string        `gorm:"not null" json:"name"`
	LastName       string        `gorm:"not null" json:"last_name"`
	Identification string        `gorm:"not null" json:"identification"`
	Age            int           `gorm:"not null" json:"age"`
	Affinity       Affinity      `gorm:"type:varchar(20);not null" json:"affinity"`
	Status         RequestStatus `gorm:"type:varchar(20);not null;default:'Pendiente';index" json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
	GrimorioID     *string       `gorm:"type:varchar(36);index" json:"grimorio_id"`
	Grimorio       *Grimorio     `gorm:"foreignKey:GrimorioID" json:"grimorio"`
}

// TableName specifies the table name for GORM.
func (Request) TableName() string {
	return "requests"
}

// BeforeCreate assigns an identifier when the caller did not provide one.
func (r *Request) BeforeCreate(_ *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = RequestStatusPending
	}
	return nil
}
