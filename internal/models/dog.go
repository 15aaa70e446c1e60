// internal/models/dog.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Breed struct {
	BaseModel
	Name string `json:"name" gorm:"uniqueIndex;size:80;not null"`
}

type Dog struct {
	BaseModel
	Name        string     `json:"name" gorm:"size:80;not null;index"`
	BreedID     *uuid.UUID `json:"breed_id" gorm:"type:uuid;index"`
	BirthDate   *time.Time `json:"birth_date"`
	Size        DogSize    `json:"size" gorm:"type:varchar(10);default:'medium'"`
	Gender      DogGender  `json:"gender" gorm:"type:varchar(10)"`
	Description string     `json:"description" gorm:"type:text"`
	PhotoURL    string     `json:"photo_url,omitempty" gorm:"size:500"`
	// Adopted is written exclusively by the adoption approval path; once true
	// the dog is permanently excluded from new requests.
	Adopted bool `json:"adopted" gorm:"default:false;index"`
	Active  bool `json:"active" gorm:"default:true;index"`

	// Relationships
	Breed        *Breed        `json:"breed,omitempty" gorm:"foreignKey:BreedID"`
	Vaccinations []Vaccination `json:"vaccinations,omitempty" gorm:"foreignKey:DogID"`
	Requests     []AdoptionRequest `json:"requests,omitempty" gorm:"foreignKey:DogID"`
}

type Vaccination struct {
	BaseModel
	DogID     uuid.UUID  `json:"dog_id" gorm:"type:uuid;not null;index"`
	Vaccine   string     `json:"vaccine" gorm:"size:120;not null"`
	AppliedAt time.Time  `json:"applied_at" gorm:"not null"`
	NextDueAt *time.Time `json:"next_due_at"`
	Notes     string     `json:"notes,omitempty" gorm:"type:text"`

	// Relationships
	Dog Dog `json:"dog,omitempty" gorm:"foreignKey:DogID"`
}
