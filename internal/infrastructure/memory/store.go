// Package memory implementa el libro de inventario en memoria del proceso (desarrollo y tests).
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// =============================================================================
// STORE - estado compartido y transacciones
// =============================================================================

// Store guarda todas las tablas en mapas protegidos por un único mutex.
// Run serializa las transacciones y trabaja sobre una copia del estado: Commit reemplaza el estado,
// cualquier error lo descarta.
type Store struct {
	mu         sync.Mutex
	st         *state
	warehouses map[string]*entity.Warehouse
	categories map[string]*entity.Category
	fault      func(op string) error
}

type state struct {
	seq       int64
	order     map[string]int64 // id -> secuencia de inserción
	balances  map[string]entity.Balance
	movements map[string]entity.Movement
	puts      map[string]entity.StockPut
	links     map[string]entity.GoodsBelong
	requests  map[string]entity.Request
}

// New crea un store vacío.
func New() *Store {
	return &Store{
		st: &state{
			order:     map[string]int64{},
			balances:  map[string]entity.Balance{},
			movements: map[string]entity.Movement{},
			puts:      map[string]entity.StockPut{},
			links:     map[string]entity.GoodsBelong{},
			requests:  map[string]entity.Request{},
		},
		warehouses: map[string]*entity.Warehouse{},
		categories: map[string]*entity.Category{},
	}
}

// SetFault instala un gancho que se consulta antes de cada escritura ("balance.update", "movement.create",
// "stock_put.create", "goods_belong.create", ...). Si devuelve error, la escritura falla con ese error.
func (s *Store) SetFault(fn func(op string) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = fn
}

// AddWarehouse registra una bodega (dato maestro).
func (s *Store) AddWarehouse(w *entity.Warehouse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *w
	s.warehouses[w.ID] = &cp
}

// AddCategory registra una categoría (dato maestro).
func (s *Store) AddCategory(c *entity.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.categories[c.ID] = &cp
}

// RemoveBalance borra un saldo fuera de cualquier transacción, como una baja manual en la base.
// Devuelve false si no existía.
func (s *Store) RemoveBalance(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.st.balances[id]; !ok {
		return false
	}
	delete(s.st.balances, id)
	delete(s.st.order, id)
	return true
}

// Run ejecuta fn con repositorios atados a una copia del estado y la confirma solo si fn devuelve nil.
func (s *Store) Run(ctx context.Context, fn func(
	balanceRepo repository.BalanceRepository,
	movRepo repository.MovementRepository,
	putRepo repository.StockPutRepository,
	linkRepo repository.GoodsBelongRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := s.st.clone()
	v := &view{s: s, tx: tx}
	if err := fn(&BalanceRepo{v}, &MovementRepo{v}, &StockPutRepo{v}, &GoodsBelongRepo{v}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = tx
	return nil
}

// Balances devuelve el repositorio de saldos fuera de transacción.
func (s *Store) Balances() *BalanceRepo { return &BalanceRepo{&view{s: s}} }

// Movements devuelve el repositorio de movimientos fuera de transacción.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{&view{s: s}} }

// StockPuts devuelve el repositorio de cabeceras de entrada fuera de transacción.
func (s *Store) StockPuts() *StockPutRepo { return &StockPutRepo{&view{s: s}} }

// GoodsBelongs devuelve el repositorio de enlaces fuera de transacción.
func (s *Store) GoodsBelongs() *GoodsBelongRepo { return &GoodsBelongRepo{&view{s: s}} }

// Requests devuelve el repositorio de solicitudes.
func (s *Store) Requests() *RequestRepo { return &RequestRepo{&view{s: s}} }

// Warehouses devuelve las bodegas registradas con AddWarehouse.
func (s *Store) Warehouses() *WarehouseRepo { return &WarehouseRepo{s} }

// Categories devuelve las categorías registradas con AddCategory.
func (s *Store) Categories() *CategoryRepo { return &CategoryRepo{s} }

// Analytics devuelve las consultas del dashboard.
func (s *Store) Analytics() *AnalyticsRepo { return &AnalyticsRepo{&view{s: s}} }

// view da acceso al estado: el de la transacción en curso (mutex ya tomado por Run) o el confirmado.
type view struct {
	s  *Store
	tx *state
}

func (v *view) read(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return fn(v.s.st)
}

// write igual que read, pero consulta antes el gancho de fallos.
func (v *view) write(op string, fn func(st *state) error) error {
	return v.read(func(st *state) error {
		if v.s.fault != nil {
			if err := v.s.fault(op); err != nil {
				return err
			}
		}
		return fn(st)
	})
}

func (st *state) next(id string) {
	st.seq++
	st.order[id] = st.seq
}

func (st *state) clone() *state {
	cp := &state{
		seq:       st.seq,
		order:     make(map[string]int64, len(st.order)),
		balances:  make(map[string]entity.Balance, len(st.balances)),
		movements: make(map[string]entity.Movement, len(st.movements)),
		puts:      make(map[string]entity.StockPut, len(st.puts)),
		links:     make(map[string]entity.GoodsBelong, len(st.links)),
		requests:  make(map[string]entity.Request, len(st.requests)),
	}
	for k, v := range st.order {
		cp.order[k] = v
	}
	for k, v := range st.balances {
		cp.balances[k] = v
	}
	for k, v := range st.movements {
		cp.movements[k] = v
	}
	for k, v := range st.puts {
		cp.puts[k] = v
	}
	for k, v := range st.links {
		cp.links[k] = v
	}
	for k, v := range st.requests {
		v.Items = append([]entity.RequestItem(nil), v.Items...)
		cp.requests[k] = v
	}
	return cp
}

// page aplica limit/offset sobre una lista ya ordenada.
func page[T any](rows []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) {
		return []T{}
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
