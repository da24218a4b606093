// Package analytics contiene los casos de uso del dashboard de inventario.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// Límites de las series diarias y del listado de stock bajo.
const (
	DefaultDailyDays         = 7
	MaxDailyDays             = 90
	DefaultLowStockThreshold = 10
	LowStockLimit            = 20
)

// DashboardUseCase genera los totales del dashboard, las series diarias, los totales por categoría
// y el listado de stock bajo.
//
// Fuente de datos: AnalyticsRepository (consultas read-only).
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	now           func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository) *DashboardUseCase {
	return &DashboardUseCase{analyticsRepo: analyticsRepo, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *DashboardUseCase) WithClock(now func() time.Time) *DashboardUseCase {
	uc.now = now
	return uc
}

// Overview devuelve número de entradas (total y del mes en curso), valor del inventario y consumo total.
func (uc *DashboardUseCase) Overview(ctx context.Context) (*dto.DashboardOverviewDTO, error) {
	now := uc.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	res, err := uc.analyticsRepo.GetOverview(ctx, monthStart)
	if err != nil {
		return nil, fmt.Errorf("dashboard: resumen: %w", err)
	}
	return &dto.DashboardOverviewDTO{
		InboundCount:      res.InboundCount,
		MonthInboundCount: res.MonthInboundCount,
		StockValue:        res.StockValue.Round(2),
		TotalConsumption:  res.TotalConsumption.Round(2),
		DateLabel:         monthLabel(now),
	}, nil
}

// DailyInbound devuelve un punto por día de los últimos days días (hoy incluido), del más antiguo al más reciente.
// Los días sin entradas quedan en 0. days <= 0 usa DefaultDailyDays.
func (uc *DashboardUseCase) DailyInbound(ctx context.Context, days int) ([]dto.DailyQuantityDTO, error) {
	return uc.daily(ctx, entity.KindInbound, days)
}

// DailyOutbound igual que DailyInbound para las salidas. Ningún flujo registra salidas, así que hoy la serie es de ceros.
func (uc *DashboardUseCase) DailyOutbound(ctx context.Context, days int) ([]dto.DailyQuantityDTO, error) {
	return uc.daily(ctx, entity.KindOutbound, days)
}

func (uc *DashboardUseCase) daily(ctx context.Context, kind, days int) ([]dto.DailyQuantityDTO, error) {
	if days <= 0 {
		days = DefaultDailyDays
	}
	if days > MaxDailyDays {
		return nil, fmt.Errorf("%w: days no puede superar %d", domain.ErrInvalidInput, MaxDailyDays)
	}

	now := uc.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	from := today.AddDate(0, 0, -(days - 1))

	rows, err := uc.analyticsRepo.GetDailyQuantity(ctx, kind, from)
	if err != nil {
		return nil, fmt.Errorf("dashboard: serie diaria: %w", err)
	}
	byDate := make(map[string]int64, len(rows))
	for _, r := range rows {
		byDate[r.Date] += r.Quantity
	}

	out := make([]dto.DailyQuantityDTO, 0, days)
	for d := from; !d.After(today); d = d.AddDate(0, 0, 1) {
		out = append(out, dto.DailyQuantityDTO{
			Date:   d.Format("01-02"),
			Amount: byDate[d.Format("2006-01-02")],
		})
	}
	return out, nil
}

// InboundByType suma las cantidades ingresadas por categoría. Los artículos sin categoría no aparecen.
func (uc *DashboardUseCase) InboundByType(ctx context.Context) ([]dto.TypeQuantityDTO, error) {
	return uc.byType(ctx, entity.KindInbound)
}

// OutboundByType igual que InboundByType para las salidas.
func (uc *DashboardUseCase) OutboundByType(ctx context.Context) ([]dto.TypeQuantityDTO, error) {
	return uc.byType(ctx, entity.KindOutbound)
}

func (uc *DashboardUseCase) byType(ctx context.Context, kind int) ([]dto.TypeQuantityDTO, error) {
	rows, err := uc.analyticsRepo.GetQuantityByCategory(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("dashboard: por categoría: %w", err)
	}
	out := make([]dto.TypeQuantityDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.TypeQuantityDTO{Name: r.Name, Value: r.Quantity})
	}
	return out, nil
}

// LowStock lista hasta LowStockLimit saldos con 0 < cantidad <= threshold. threshold <= 0 usa DefaultLowStockThreshold.
func (uc *DashboardUseCase) LowStock(ctx context.Context, threshold int64) ([]dto.LowStockDTO, error) {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	rows, err := uc.analyticsRepo.GetLowStock(ctx, threshold, LowStockLimit)
	if err != nil {
		return nil, fmt.Errorf("dashboard: stock bajo: %w", err)
	}
	out := make([]dto.LowStockDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.LowStockDTO{ID: r.ID, Name: r.Name, Type: r.CategoryName, Amount: r.Quantity, Unit: r.Unit})
	}
	return out, nil
}

// Board reúne todas las vistas con sus valores por defecto.
func (uc *DashboardUseCase) Board(ctx context.Context) (*dto.StockBoardDTO, error) {
	var (
		board dto.StockBoardDTO
		err   error
	)
	if board.Overview, err = uc.Overview(ctx); err != nil {
		return nil, err
	}
	if board.DailyInbound, err = uc.DailyInbound(ctx, DefaultDailyDays); err != nil {
		return nil, err
	}
	if board.DailyOutbound, err = uc.DailyOutbound(ctx, DefaultDailyDays); err != nil {
		return nil, err
	}
	if board.InboundByType, err = uc.InboundByType(ctx); err != nil {
		return nil, err
	}
	if board.OutboundByType, err = uc.OutboundByType(ctx); err != nil {
		return nil, err
	}
	if board.LowStock, err = uc.LowStock(ctx, DefaultLowStockThreshold); err != nil {
		return nil, err
	}
	return &board, nil
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
