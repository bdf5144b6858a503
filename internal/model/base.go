package model

import "time"

type (
	// A Model is a record persisted in the database.
	Model interface {
		GetID() string
		SetID(id string)
		SetCreatedAt(t time.Time)
		SetUpdatedAt(t time.Time)
	}

	// Base contains common fields for all models.
	Base struct {
		ID        string    `json:"id"         storm:"id"`
		CreatedAt time.Time `json:"created_at" storm:"index"`
		UpdatedAt time.Time `json:"updated_at"`
	}
)

// GetID returns the model's ID.
func (m *Base) GetID() string {
	return m.ID
}

// SetID sets the given id to the model.
func (m *Base) SetID(id string) {
	m.ID = id
}

// SetCreatedAt sets the given time to the model.
func (m *Base) SetCreatedAt(t time.Time) {
	m.CreatedAt = t
}

// SetUpdatedAt sets the given time to the model.
func (m *Base) SetUpdatedAt(t time.Time) {
	m.UpdatedAt = t
}
