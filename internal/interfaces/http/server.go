package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// AppConfig parámetros del servidor Fiber.
type AppConfig struct {
	Name      string
	BodyLimit int // 0 = valor por defecto de Fiber
}

// NewApp crea la aplicación Fiber de la API.
//
// Immutable es obligatorio: los params y query de Fiber apuntan al buffer de fasthttp, que se
// reutiliza entre requests, y los casos de uso guardan esos valores (ids de asignación, claves del
// ledger en memoria) más allá de la vida del request.
func NewApp(cfg AppConfig) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:      cfg.Name,
		BodyLimit:    cfg.BodyLimit,
		Immutable:    true,
		ReadTimeout:  time.Second * 30,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
}
