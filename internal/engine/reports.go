package engine

import (
	"time"

	"github.com/akenozll/restoransiparis2/internal/orders"
)

type ProductReport struct {
	Name       string       `json:"name"`
	Category   string       `json:"category"`
	Stock      int          `json:"stock"`
	MinStock   int          `json:"minStock"`
	Price      orders.Cents `json:"price"`
	TotalValue orders.Cents `json:"totalValue"`
	Status     string       `json:"status"` // normal | low | out
}

type StockReport struct {
	Date          time.Time       `json:"date"`
	TotalProducts int             `json:"totalProducts"`
	LowStock      int             `json:"lowStock"`
	OutOfStock    int             `json:"outOfStock"`
	TotalValue    orders.Cents    `json:"totalValue"`
	Products      []ProductReport `json:"products"`
}

func (e *Engine) StockReport() StockReport {
	e.mu.Lock()
	defer e.mu.Unlock()

	rep := StockReport{Date: time.Now().UTC()}
	for _, c := range e.catalog {
		status := "normal"
		switch {
		case c.Stock == 0:
			status = "out"
			rep.OutOfStock++
		case c.Stock <= c.MinStock:
			status = "low"
			rep.LowStock++
		}
		value := c.Price.Mul(c.Stock)
		rep.TotalValue += value
		rep.Products = append(rep.Products, ProductReport{
			Name:       c.Name,
			Category:   c.Category,
			Stock:      c.Stock,
			MinStock:   c.MinStock,
			Price:      c.Price,
			TotalValue: value,
			Status:     status,
		})
	}
	rep.TotalProducts = len(rep.Products)
	return rep
}

type AdminStats struct {
	TotalOrders  int          `json:"totalOrders"`
	OpenOrders   int          `json:"openOrders"`
	ReadyOrders  int          `json:"readyOrders"`
	PaidOrders   int          `json:"paidOrders"`
	TotalRevenue orders.Cents `json:"totalRevenue"` // paid orders only
}

func (e *Engine) Stats() AdminStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	var s AdminStats
	s.TotalOrders = len(e.orderLog)
	for _, o := range e.orderLog {
		switch {
		case o.Status == orders.StatusPaid:
			s.PaidOrders++
			s.TotalRevenue += o.Total
		case o.Status == orders.StatusReady:
			s.ReadyOrders++
			s.OpenOrders++
		default:
			s.OpenOrders++
		}
	}
	return s
}
