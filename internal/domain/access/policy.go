// Package access concentra la regla de capacidad "puede modificar" usada por todas las rutas de
// creación, actualización y eliminación.
package access

import "github.com/jhoicas/fieldstock-api/internal/domain/entity"

// RolePolicy decide si un actor puede modificar un recurso.
// Los roles privilegiados pueden modificar cualquier recurso; el resto solo los propios.
type RolePolicy struct {
	privileged map[string]struct{}
}

// NewRolePolicy construye la política con los roles privilegiados indicados.
// Sin argumentos usa admin y supervisor.
func NewRolePolicy(privileged ...string) *RolePolicy {
	if len(privileged) == 0 {
		privileged = []string{entity.RoleAdmin, entity.RoleSupervisor}
	}
	p := &RolePolicy{privileged: make(map[string]struct{}, len(privileged))}
	for _, r := range privileged {
		p.privileged[r] = struct{}{}
	}
	return p
}

// IsPrivileged indica si el rol del actor es privilegiado.
func (p *RolePolicy) IsPrivileged(actor entity.Actor) bool {
	_, ok := p.privileged[actor.Role]
	return ok
}

// CanMutate devuelve true si el actor es dueño del recurso (ownerID) o tiene un rol privilegiado.
// Un ownerID vacío solo lo pueden modificar roles privilegiados.
func (p *RolePolicy) CanMutate(actor entity.Actor, ownerID string) bool {
	if actor.UserID == "" {
		return false
	}
	if p.IsPrivileged(actor) {
		return true
	}
	return ownerID != "" && actor.UserID == ownerID
}
