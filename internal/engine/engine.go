// Package engine is the single mutation authority over tables,
// catalog, and orders. Every write goes through one critical section
// per operation; side effects of a transition (table occupancy, stock
// decrement) commit together before anything is broadcast.
package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/akenozll/restoransiparis2/internal/bus"
	"github.com/akenozll/restoransiparis2/internal/orders"
	"github.com/akenozll/restoransiparis2/internal/persist"
)

type Engine struct {
	mu       sync.Mutex
	tables   []orders.Table
	catalog  []orders.CatalogItem
	orderLog []orders.Order
	orderSeq int

	bus    *bus.Bus
	hub    *bus.Hub
	writer *persist.Writer // nil disables persistence
}

// New restores the engine from a snapshot (nil means empty stores).
func New(b *bus.Bus, h *bus.Hub, w *persist.Writer, st *persist.State) *Engine {
	e := &Engine{bus: b, hub: h, writer: w}
	if st != nil {
		e.tables = append(e.tables, st.Tables...)
		for _, c := range st.Catalog {
			e.catalog = append(e.catalog, c.Clone())
		}
		for _, o := range st.Orders {
			e.orderLog = append(e.orderLog, o.Clone())
		}
		e.orderSeq = st.OrderCounter
		for _, o := range e.orderLog {
			if o.ID > e.orderSeq {
				e.orderSeq = o.ID
			}
		}
	}
	return e
}

// ---- tables ----

func (e *Engine) ListTables() []orders.Table {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tablesLocked()
}

func (e *Engine) AddTable(name string) (orders.Table, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if name == "" {
		return orders.Table{}, fmt.Errorf("%w: table name must not be blank", orders.ErrValidation)
	}
	id := 0
	for _, t := range e.tables {
		if t.ID > id {
			id = t.ID
		}
	}
	t := orders.Table{ID: id + 1, Name: name, Status: orders.TableFree}
	e.tables = append(e.tables, t)
	e.persistLocked()
	e.bus.Emit(orders.EventTableChanged, e.tablesLocked())
	return t, nil
}

func (e *Engine) DeleteTable(id int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := -1
	for i, t := range e.tables {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: table %d", orders.ErrNotFound, id)
	}
	for _, o := range e.orderLog {
		if o.TableID == id && !o.Status.Terminal() {
			return fmt.Errorf("%w: table %d has open order %d", orders.ErrConflict, id, o.ID)
		}
	}
	e.tables = append(e.tables[:idx], e.tables[idx+1:]...)
	e.persistLocked()
	e.bus.Emit(orders.EventTableChanged, e.tablesLocked())
	return nil
}

// ---- catalog ----

func (e *Engine) ListCatalog() orders.Menu {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.menuLocked()
}

type CatalogInput struct {
	Name        string
	Category    string
	Price       orders.Cents
	Stock       int
	MinStock    int
	Description string
}

func (e *Engine) AddCatalogItem(in CatalogInput) (orders.CatalogItem, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if in.Name == "" {
		return orders.CatalogItem{}, fmt.Errorf("%w: product name is required", orders.ErrValidation)
	}
	if in.Category == "" {
		return orders.CatalogItem{}, fmt.Errorf("%w: product category is required", orders.ErrValidation)
	}
	if in.Price < 0 {
		return orders.CatalogItem{}, fmt.Errorf("%w: price must not be negative", orders.ErrValidation)
	}
	if in.Stock < 0 || in.MinStock < 0 {
		return orders.CatalogItem{}, fmt.Errorf("%w: stock levels must not be negative", orders.ErrValidation)
	}
	id := 0
	for _, c := range e.catalog {
		if c.ID > id {
			id = c.ID
		}
	}
	// stock is stored exactly as given: zero means zero, there is no
	// read-time defaulting
	item := orders.CatalogItem{
		ID:          id + 1,
		Name:        in.Name,
		Price:       in.Price,
		Category:    in.Category,
		Stock:       in.Stock,
		MinStock:    in.MinStock,
		Description: in.Description,
	}
	e.catalog = append(e.catalog, item)
	e.persistLocked()
	e.bus.Emit(orders.EventCatalogChanged, e.menuLocked())
	return item.Clone(), nil
}

func (e *Engine) AdjustStock(itemID, delta int, note string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	item := e.findCatalogLocked(itemID)
	if item == nil {
		return 0, fmt.Errorf("%w: product %d", orders.ErrNotFound, itemID)
	}
	newStock := e.applyStockDeltaLocked(item, delta, note)
	e.persistLocked()
	e.bus.Emit(orders.EventCatalogChanged, e.menuLocked())
	return newStock, nil
}

// applyStockDeltaLocked floors the result at zero and appends the
// audit entry. Manual adjustments and payment decrements share it.
func (e *Engine) applyStockDeltaLocked(item *orders.CatalogItem, delta int, note string) int {
	next := item.Stock + delta
	if next < 0 {
		next = 0
	}
	item.Stock = next
	item.History = append(item.History, orders.StockAudit{
		Timestamp:      time.Now().UTC(),
		Delta:          delta,
		ResultingStock: next,
		Note:           note,
	})
	return next
}

// ---- orders ----

func (e *Engine) ListOrders() []orders.Order {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ordersLocked()
}

func (e *Engine) CreateOrder(tableID int, items []orders.LineItem, note string) (orders.Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(items) == 0 {
		return orders.Order{}, fmt.Errorf("%w: order must contain at least one item", orders.ErrValidation)
	}
	for _, it := range items {
		if it.Quantity <= 0 {
			return orders.Order{}, fmt.Errorf("%w: quantity for %q must be positive", orders.ErrValidation, it.Name)
		}
		if it.Price < 0 {
			return orders.Order{}, fmt.Errorf("%w: price for %q must not be negative", orders.ErrValidation, it.Name)
		}
	}
	table := e.findTableLocked(tableID)
	if table == nil {
		return orders.Order{}, fmt.Errorf("%w: table %d does not exist", orders.ErrValidation, tableID)
	}

	// total is computed once here and never again
	var total orders.Cents
	for _, it := range items {
		total += it.Price.Mul(it.Quantity)
	}

	e.orderSeq++
	o := orders.Order{
		ID:        e.orderSeq,
		TableID:   tableID,
		TableName: table.Name,
		Items:     append([]orders.LineItem(nil), items...),
		Note:      note,
		Status:    orders.StatusKitchen,
		Timestamp: time.Now().UTC(),
		Total:     total,
	}
	e.orderLog = append(e.orderLog, o)
	table.Status = orders.TableOccupied

	e.persistLocked()
	e.bus.Emit(orders.EventOrderCreated, o.Clone())
	e.bus.Emit(orders.EventTableChanged, e.tablesLocked())
	return o.Clone(), nil
}

func (e *Engine) UpdateStatus(orderID int, next orders.Status) (orders.Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !orders.KnownStatus(next) {
		return orders.Order{}, fmt.Errorf("%w: unknown status %q", orders.ErrValidation, next)
	}
	o := e.findOrderLocked(orderID)
	if o == nil {
		return orders.Order{}, fmt.Errorf("%w: order %d", orders.ErrNotFound, orderID)
	}
	if !orders.CanTransition(o.Status, next) {
		return orders.Order{}, fmt.Errorf("%w: %s -> %s", orders.ErrInvalidTransition, o.Status, next)
	}

	o.Status = next
	tableMoved := false
	catalogMoved := false
	if next == orders.StatusPaid {
		now := time.Now().UTC()
		o.PaymentTimestamp = &now
		tableMoved = e.releaseTableLocked(o.TableID)
		catalogMoved = e.consumeStockLocked(o)
	}

	e.persistLocked()
	e.bus.Emit(orders.EventOrderStatusChanged, o.Clone())
	if tableMoved {
		e.bus.Emit(orders.EventTableChanged, e.tablesLocked())
	}
	if catalogMoved {
		e.bus.Emit(orders.EventCatalogChanged, e.menuLocked())
	}
	return o.Clone(), nil
}

// releaseTableLocked frees the table when no other non-terminal order
// still references it. Returns true when the table state changed.
func (e *Engine) releaseTableLocked(tableID int) bool {
	for _, o := range e.orderLog {
		if o.TableID == tableID && !o.Status.Terminal() {
			return false
		}
	}
	t := e.findTableLocked(tableID)
	if t == nil || t.Status == orders.TableFree {
		return false
	}
	t.Status = orders.TableFree
	return true
}

// consumeStockLocked decrements stock for each line item, floored at
// zero. A line whose catalog item no longer exists is skipped: the
// snapshot may be older than the catalog.
func (e *Engine) consumeStockLocked(o *orders.Order) bool {
	touched := false
	for _, it := range o.Items {
		item := e.findCatalogLocked(it.CatalogItemID)
		if item == nil {
			continue
		}
		e.applyStockDeltaLocked(item, -it.Quantity, fmt.Sprintf("order #%d paid", o.ID))
		touched = true
	}
	return touched
}

// ---- bulk clear ----

type ClearFlags struct {
	Orders  bool
	Stock   bool
	Catalog bool
}

// ClearData wipes the flagged stores in one step. Clearing orders
// frees every table, since no open order can remain.
func (e *Engine) ClearData(f ClearFlags) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if f.Orders {
		e.orderLog = nil
		for i := range e.tables {
			e.tables[i].Status = orders.TableFree
		}
	}
	if f.Catalog {
		e.catalog = nil
	} else if f.Stock {
		for i := range e.catalog {
			e.catalog[i].History = nil
		}
	}
	e.persistLocked()
	if f.Orders {
		e.bus.Emit(orders.EventOrderSnapshot, e.ordersLocked())
		e.bus.Emit(orders.EventTableSnapshot, e.tablesLocked())
	}
	if f.Catalog || f.Stock {
		e.bus.Emit(orders.EventCatalogSnapshot, e.menuLocked())
	}
}

// ---- stream clients ----

// Subscribe registers a stream client under the engine lock, with the
// current snapshot already queued. Every delta emitted afterwards is
// therefore observed after the snapshot, never instead of it.
func (e *Engine) Subscribe() *bus.Client {
	e.mu.Lock()
	defer e.mu.Unlock()

	preload := []orders.Envelope{
		e.bus.Envelope(orders.EventCatalogSnapshot, e.menuLocked()),
		e.bus.Envelope(orders.EventTableSnapshot, e.tablesLocked()),
		e.bus.Envelope(orders.EventOrderSnapshot, e.ordersLocked()),
	}
	return e.hub.Register(preload)
}

// ---- internals ----

func (e *Engine) findTableLocked(id int) *orders.Table {
	for i := range e.tables {
		if e.tables[i].ID == id {
			return &e.tables[i]
		}
	}
	return nil
}

func (e *Engine) findCatalogLocked(id int) *orders.CatalogItem {
	for i := range e.catalog {
		if e.catalog[i].ID == id {
			return &e.catalog[i]
		}
	}
	return nil
}

func (e *Engine) findOrderLocked(id int) *orders.Order {
	for i := range e.orderLog {
		if e.orderLog[i].ID == id {
			return &e.orderLog[i]
		}
	}
	return nil
}

func (e *Engine) tablesLocked() []orders.Table {
	return append([]orders.Table(nil), e.tables...)
}

func (e *Engine) ordersLocked() []orders.Order {
	out := make([]orders.Order, 0, len(e.orderLog))
	for _, o := range e.orderLog {
		out = append(out, o.Clone())
	}
	return out
}

func (e *Engine) menuLocked() orders.Menu {
	var m orders.Menu
	for _, c := range e.catalog {
		if c.Category == orders.CategoryFood {
			m.Food = append(m.Food, c.Clone())
		} else {
			m.Drink = append(m.Drink, c.Clone())
		}
	}
	return m
}

// CatalogItems returns the flat catalog, for the stock panel.
func (e *Engine) CatalogItems() []orders.CatalogItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]orders.CatalogItem, 0, len(e.catalog))
	for _, c := range e.catalog {
		out = append(out, c.Clone())
	}
	return out
}

func (e *Engine) persistLocked() {
	if e.writer == nil {
		return
	}
	st := &persist.State{
		Tables:       e.tablesLocked(),
		Orders:       e.ordersLocked(),
		OrderCounter: e.orderSeq,
	}
	for _, c := range e.catalog {
		st.Catalog = append(st.Catalog, c.Clone())
	}
	e.writer.Enqueue(st)
}
