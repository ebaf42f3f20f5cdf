package entities

import (
	"github.com/google/uuid"
)

// Tag and Ingredient are reference data created by administrators or the
// bulk import command, never by regular users.

type Tag struct {
	ID   uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Name string    `gorm:"uniqueIndex;size:32" json:"name"`
	Slug string    `gorm:"uniqueIndex;size:32" json:"slug"`
}

type Ingredient struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Name            string    `gorm:"uniqueIndex:idx_ingredient_identity;size:128" json:"name"`
	MeasurementUnit string    `gorm:"uniqueIndex:idx_ingredient_identity;size:64" json:"measurement_unit"`
}
