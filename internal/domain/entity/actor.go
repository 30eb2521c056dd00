package entity

// Roles válidos del actor.
const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
	RolePromoter   = "promoter"
)

// Actor es el usuario autenticado que ejecuta una operación (resuelto desde el token).
type Actor struct {
	UserID   string
	ClientID string
	Role     string
}
