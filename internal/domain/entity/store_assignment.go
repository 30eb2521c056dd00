package entity

import "time"

// StoreAssignment vincula una tienda física con una iniciativa y el personal responsable.
// Se elimina de forma lógica (DeletedAt).
type StoreAssignment struct {
	ID           string
	InitiativeID string
	StoreID      string
	StoreName    string
	StaffID      string // usuario de campo responsable de la tienda
	CreatedAt    time.Time
	DeletedAt    *time.Time
}

// IsActive indica si la asignación no fue eliminada.
func (s *StoreAssignment) IsActive() bool {
	return s != nil && s.DeletedAt == nil
}
