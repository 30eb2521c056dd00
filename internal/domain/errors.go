package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("ya existe un registro para esa tienda, marca, sku y fecha")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto de concurrencia, reintente la operación")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrUnknownBrand      = errors.New("marca o sku no pertenece al catálogo de la iniciativa")
	ErrBrandUnresolvable = errors.New("la configuración de la marca ya no existe en el catálogo")
	ErrUnsupportedFile   = errors.New("tipo de archivo no soportado, se espera un archivo tabular (CSV)")
)
