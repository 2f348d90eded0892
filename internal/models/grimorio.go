package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Grimorio is a weighted reward assigned to approved requests.
// Ponderacion is the draw weight; TipoTrebol is the clover tier.
type Grimorio struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	TipoTrebol  int       `gorm:"not null;uniqueIndex" json:"tipo_trebol"`
	Ponderacion int       `gorm:"not null" json:"ponderacion"`
	Name        string    `gorm:"not null" json:"name"`
	Requests    []Request `gorm:"foreignKey:GrimorioID" json:"requests,omitempty"`
}

// TableName specifies the table name for GORM.
func (Grimorio) TableName() string {
	return "grimorios"
}

// BeforeCreate assigns an identifier when the caller did not provide one.
func (g *Grimorio) BeforeCreate(_ *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}
