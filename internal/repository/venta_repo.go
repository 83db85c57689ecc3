package repository

import (
	"context"
	"time"

	"github.com/felipecalderon/food-truck-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VentaRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, v *model.Venta) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	ListPorPos(ctx context.Context, puntoDeVenta string) ([]model.Venta, error)
	ListPorSesion(ctx context.Context, sesionID uuid.UUID) ([]model.Venta, error)
	List(ctx context.Context, desde, hasta time.Time, puntoDeVenta string) ([]model.Venta, error)
	UpdateComentario(ctx context.Context, id uuid.UUID, comentario string) (int64, error)
	DeleteTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	CountPorSesion(ctx context.Context, sesionID uuid.UUID) (int64, error)
	DB() *gorm.DB
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) CreateTx(ctx context.Context, tx *gorm.DB, v *model.Venta) error {
	return tx.WithContext(ctx).Create(v).Error
}

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).Preload("Items").First(&v, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *ventaRepo) ListPorPos(ctx context.Context, puntoDeVenta string) ([]model.Venta, error) {
	var ventas []model.Venta
	err := r.db.WithContext(ctx).Preload("Items").
		Where("punto_de_venta = ?", puntoDeVenta).
		Order("fecha DESC").Find(&ventas).Error
	return ventas, err
}

func (r *ventaRepo) ListPorSesion(ctx context.Context, sesionID uuid.UUID) ([]model.Venta, error) {
	var ventas []model.Venta
	err := r.db.WithContext(ctx).Preload("Items").
		Where("sesion_caja_id = ?", sesionID).
		Order("fecha DESC").Find(&ventas).Error
	return ventas, err
}

func (r *ventaRepo) List(ctx context.Context, desde, hasta time.Time, puntoDeVenta string) ([]model.Venta, error) {
	var ventas []model.Venta
	q := r.db.WithContext(ctx).Preload("Items").
		Where("fecha >= ? AND fecha < ?", desde, hasta)
	if puntoDeVenta != "" {
		q = q.Where("punto_de_venta = ?", puntoDeVenta)
	}
	err := q.Order("fecha DESC").Find(&ventas).Error
	return ventas, err
}

func (r *ventaRepo) UpdateComentario(ctx context.Context, id uuid.UUID, comentario string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Venta{}).
		Where("id = ?", id).Update("comentario", comentario)
	return res.RowsAffected, res.Error
}

func (r *ventaRepo) DeleteTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	// Items first — no ON DELETE CASCADE in the schema.
	if err := tx.WithContext(ctx).Delete(&model.VentaItem{}, "venta_id = ?", id).Error; err != nil {
		return err
	}
	return tx.WithContext(ctx).Delete(&model.Venta{}, "id = ?", id).Error
}

func (r *ventaRepo) CountPorSesion(ctx context.Context, sesionID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Venta{}).
		Where("sesion_caja_id = ?", sesionID).Count(&n).Error
	return n, err
}
