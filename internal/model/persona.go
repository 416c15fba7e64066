package model

type PersonaID string

// Persona is a named description of a target audience.
type Persona struct {
	ID          PersonaID `json:"id" validate:"required"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

type NewPersona struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
