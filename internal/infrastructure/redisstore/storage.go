package redisstore

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

var _ fiber.Storage = (*Storage)(nil)

const opTimeout = 2 * time.Second

// Storage implementa fiber.Storage sobre Redis para compartir los contadores del limitador
// entre réplicas. Todas las claves llevan un prefijo para que Reset no borre datos ajenos.
type Storage struct {
	client redis.UniversalClient
	prefix string
}

// NewClient crea el cliente Redis.
func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// New construye el storage con el prefijo dado (por ejemplo "fieldstock:limiter:").
func New(client redis.UniversalClient, prefix string) *Storage {
	return &Storage{client: client, prefix: prefix}
}

// Ping verifica la conexión.
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Get devuelve el valor o nil si la clave no existe.
func (s *Storage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	val, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

// Set guarda el valor; exp 0 = sin expiración.
func (s *Storage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	return s.client.Set(ctx, s.prefix+key, val, exp).Err()
}

// Delete borra la clave.
func (s *Storage) Delete(key string) error {
	if key == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	return s.client.Del(ctx, s.prefix+key).Err()
}

// Reset borra todas las claves con el prefijo del storage.
func (s *Storage) Reset() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*opTimeout)
	defer cancel()
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

// Close cierra el cliente.
func (s *Storage) Close() error {
	return s.client.Close()
}
