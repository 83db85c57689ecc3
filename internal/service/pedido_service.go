package service

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/felipecalderon/food-truck-pos/internal/apierror"
	"github.com/felipecalderon/food-truck-pos/internal/dto"
	"github.com/felipecalderon/food-truck-pos/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// PedidoService manages pending orders ("pedidos"): named carts parked until
// the customer comes back to pay. They live in a Redis hash per POS —
// scratch state, not financial records, so Redis durability is enough.
type PedidoService interface {
	Crear(ctx context.Context, req dto.CrearPedidoRequest) (*model.Pedido, error)
	Listar(ctx context.Context, puntoDeVenta string) ([]model.Pedido, error)
	MarcarPagado(ctx context.Context, puntoDeVenta string, id uuid.UUID) error
	Cancelar(ctx context.Context, puntoDeVenta string, id uuid.UUID) error
	Eliminar(ctx context.Context, puntoDeVenta string, id uuid.UUID) error
}

type pedidoService struct {
	rdb *redis.Client
}

func NewPedidoService(rdb *redis.Client) PedidoService {
	return &pedidoService{rdb: rdb}
}

func pedidosKey(puntoDeVenta string) string { return "pedidos:" + puntoDeVenta }

func (s *pedidoService) Crear(ctx context.Context, req dto.CrearPedidoRequest) (*model.Pedido, error) {
	total := decimal.Zero
	items := make([]model.PedidoItem, 0, len(req.Items))
	for _, it := range req.Items {
		total = total.Add(it.Precio.Mul(decimal.NewFromInt(int64(it.Cantidad))))
		items = append(items, model.PedidoItem{
			SKU:      it.SKU,
			Nombre:   it.Nombre,
			Precio:   it.Precio,
			Cantidad: it.Cantidad,
		})
	}

	pedido := &model.Pedido{
		ID:           uuid.New(),
		PuntoDeVenta: req.PuntoDeVenta,
		Nombre:       req.Nombre,
		Items:        items,
		Total:        total,
		Estado:       model.PedidoPendiente,
		CreatedAt:    time.Now(),
	}
	if pedido.Nombre == "" {
		pedido.Nombre = "Pedido " + pedido.CreatedAt.Format("15:04:05")
	}

	if err := s.guardar(ctx, pedido); err != nil {
		return nil, apierror.Persistenciaf("guardando pedido")
	}
	return pedido, nil
}

// Listar returns the POS's pedidos, newest first. Corrupt entries are skipped
// individually and logged — one bad record must not break the whole list.
func (s *pedidoService) Listar(ctx context.Context, puntoDeVenta string) ([]model.Pedido, error) {
	raw, err := s.rdb.HGetAll(ctx, pedidosKey(puntoDeVenta)).Result()
	if err != nil {
		log.Error().Err(err).Str("punto_de_venta", puntoDeVenta).Msg("pedidos: lectura fallo, devolviendo vacio")
		return []model.Pedido{}, nil
	}

	pedidos := make([]model.Pedido, 0, len(raw))
	for field, data := range raw {
		var p model.Pedido
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			log.Warn().Str("pedido_id", field).Err(err).Msg("pedidos: registro corrupto, omitido")
			continue
		}
		pedidos = append(pedidos, p)
	}
	sort.Slice(pedidos, func(i, j int) bool {
		return pedidos[i].CreatedAt.After(pedidos[j].CreatedAt)
	})
	return pedidos, nil
}

func (s *pedidoService) MarcarPagado(ctx context.Context, puntoDeVenta string, id uuid.UUID) error {
	return s.cambiarEstado(ctx, puntoDeVenta, id, model.PedidoPagado)
}

func (s *pedidoService) Cancelar(ctx context.Context, puntoDeVenta string, id uuid.UUID) error {
	return s.cambiarEstado(ctx, puntoDeVenta, id, model.PedidoCancelado)
}

func (s *pedidoService) Eliminar(ctx context.Context, puntoDeVenta string, id uuid.UUID) error {
	n, err := s.rdb.HDel(ctx, pedidosKey(puntoDeVenta), id.String()).Result()
	if err != nil {
		return apierror.Persistenciaf("eliminando pedido")
	}
	if n == 0 {
		return apierror.NoEncontradof("pedido %s no existe", id)
	}
	return nil
}

func (s *pedidoService) cambiarEstado(ctx context.Context, puntoDeVenta string, id uuid.UUID, estado string) error {
	data, err := s.rdb.HGet(ctx, pedidosKey(puntoDeVenta), id.String()).Result()
	if err == redis.Nil {
		return apierror.NoEncontradof("pedido %s no existe", id)
	}
	if err != nil {
		return apierror.Persistenciaf("consultando pedido")
	}

	var p model.Pedido
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return apierror.Persistenciaf("pedido %s corrupto", id)
	}
	p.Estado = estado

	if err := s.guardar(ctx, &p); err != nil {
		return apierror.Persistenciaf("guardando pedido")
	}
	return nil
}

func (s *pedidoService) guardar(ctx context.Context, p *model.Pedido) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.rdb.HSet(ctx, pedidosKey(p.PuntoDeVenta), p.ID.String(), data).Err()
}
