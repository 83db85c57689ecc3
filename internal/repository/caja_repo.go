package repository

import (
	"context"
	"time"

	"github.com/felipecalderon/food-truck-pos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CajaRepository interface {
	CreateSesion(ctx context.Context, s *model.SesionCaja) error
	FindSesionAbiertaPorPDV(ctx context.Context, puntoDeVenta string) (*model.SesionCaja, error)
	FindSesionByID(ctx context.Context, id uuid.UUID) (*model.SesionCaja, error)
	// CerrarSesion closes an open session in a single conditional UPDATE:
	// diferencia is computed server-side from the counter's value at that
	// instant, and the estado guard makes close idempotence-safe (second
	// close matches zero rows).
	CerrarSesion(ctx context.Context, id uuid.UUID, montoCierre decimal.Decimal, closedAt time.Time) (int64, error)
	// IncrementVentasCalculadasTx adds monto to the session counter iff the
	// session is still open. Single-statement increment — never
	// read-modify-write — so concurrent sales cannot lose updates.
	// Returns the number of rows matched.
	IncrementVentasCalculadasTx(tx *gorm.DB, sesionID uuid.UUID, monto decimal.Decimal) (int64, error)
	ListSesiones(ctx context.Context, desde, hasta time.Time, puntoDeVenta string) ([]model.SesionCaja, error)
	DeleteSesion(ctx context.Context, id uuid.UUID) error
	DB() *gorm.DB // exposes the DB for transaction creation in the service layer
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) DB() *gorm.DB { return r.db }

func (r *cajaRepo) CreateSesion(ctx context.Context, s *model.SesionCaja) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *cajaRepo) FindSesionAbiertaPorPDV(ctx context.Context, puntoDeVenta string) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).
		Where("punto_de_venta = ? AND estado = ?", puntoDeVenta, model.SesionAbierta).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *cajaRepo) FindSesionByID(ctx context.Context, id uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *cajaRepo) CerrarSesion(ctx context.Context, id uuid.UUID, montoCierre decimal.Decimal, closedAt time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.SesionCaja{}).
		Where("id = ? AND estado = ?", id, model.SesionAbierta).
		Updates(map[string]interface{}{
			"estado":       model.SesionCerrada,
			"monto_cierre": montoCierre,
			"diferencia":   gorm.Expr("? - monto_inicial - ventas_calculadas", montoCierre),
			"closed_at":    closedAt,
		})
	return res.RowsAffected, res.Error
}

func (r *cajaRepo) IncrementVentasCalculadasTx(tx *gorm.DB, sesionID uuid.UUID, monto decimal.Decimal) (int64, error) {
	res := tx.Model(&model.SesionCaja{}).
		Where("id = ? AND estado = ?", sesionID, model.SesionAbierta).
		UpdateColumn("ventas_calculadas", gorm.Expr("ventas_calculadas + ?", monto))
	return res.RowsAffected, res.Error
}

func (r *cajaRepo) ListSesiones(ctx context.Context, desde, hasta time.Time, puntoDeVenta string) ([]model.SesionCaja, error) {
	var sesiones []model.SesionCaja
	q := r.db.WithContext(ctx).
		Where("opened_at >= ? AND opened_at < ?", desde, hasta)
	if puntoDeVenta != "" {
		q = q.Where("punto_de_venta = ?", puntoDeVenta)
	}
	err := q.Order("opened_at DESC").Find(&sesiones).Error
	return sesiones, err
}

func (r *cajaRepo) DeleteSesion(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.SesionCaja{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
