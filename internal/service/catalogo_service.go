package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/felipecalderon/food-truck-pos/internal/infra"
	"github.com/felipecalderon/food-truck-pos/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const catalogoCacheKey = "catalogo:productos"

// CatalogoService serves the normalized product catalog. The external API is
// slow (it walks every page), so results are cached in Redis and the fetch is
// guarded by a circuit breaker. A failing catalog is never fatal: the POS
// degrades to an empty product list.
type CatalogoService interface {
	Productos(ctx context.Context) []model.Producto
}

type catalogoService struct {
	client *infra.CatalogoClient
	rdb    *redis.Client
	cb     *infra.CircuitBreaker
	ttl    time.Duration
}

func NewCatalogoService(client *infra.CatalogoClient, rdb *redis.Client, cb *infra.CircuitBreaker, ttl time.Duration) CatalogoService {
	return &catalogoService{client: client, rdb: rdb, cb: cb, ttl: ttl}
}

func (s *catalogoService) Productos(ctx context.Context) []model.Producto {
	// 1. Cache hit
	if data, err := s.rdb.Get(ctx, catalogoCacheKey).Result(); err == nil {
		var productos []model.Producto
		if err := json.Unmarshal([]byte(data), &productos); err == nil {
			return productos
		}
		log.Warn().Msg("catalogo: cache corrupto, refrescando desde la API")
	}

	// 2. Fetch through the circuit breaker
	var productos []model.Producto
	err := s.cb.Execute(func() error {
		var fetchErr error
		productos, fetchErr = s.client.FetchProductos(ctx)
		return fetchErr
	})
	if err != nil {
		log.Error().Err(err).Str("cb_state", s.cb.State().String()).Msg("catalogo: fetch fallo, devolviendo lista vacia")
		return []model.Producto{}
	}

	// 3. Refresh cache, best effort
	if data, err := json.Marshal(productos); err == nil {
		if err := s.rdb.Set(ctx, catalogoCacheKey, data, s.ttl).Err(); err != nil {
			log.Warn().Err(err).Msg("catalogo: no se pudo escribir la cache")
		}
	}

	return productos
}
