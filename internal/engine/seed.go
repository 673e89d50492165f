package engine

import (
	"fmt"

	"github.com/akenozll/restoransiparis2/internal/orders"
	"github.com/akenozll/restoransiparis2/internal/persist"
)

// DefaultState seeds a fresh install with six tables and a starter
// menu so the panels have something to render on first boot.
func DefaultState() *persist.State {
	st := &persist.State{}
	for i := 1; i <= 6; i++ {
		st.Tables = append(st.Tables, orders.Table{
			ID: i, Name: fmt.Sprintf("Table %d", i), Status: orders.TableFree,
		})
	}
	st.Catalog = []orders.CatalogItem{
		{ID: 1, Name: "Kebab", Price: 4500, Category: orders.CategoryFood, Stock: 50, MinStock: 10},
		{ID: 2, Name: "Pide", Price: 3500, Category: orders.CategoryFood, Stock: 30, MinStock: 8},
		{ID: 3, Name: "Lahmacun", Price: 2500, Category: orders.CategoryFood, Stock: 40, MinStock: 12},
		{ID: 4, Name: "Soup", Price: 2000, Category: orders.CategoryFood, Stock: 25, MinStock: 5},
		{ID: 5, Name: "Salad", Price: 3000, Category: orders.CategoryFood, Stock: 35, MinStock: 8},
		{ID: 101, Name: "Water", Price: 500, Category: orders.CategoryDrink, Stock: 100, MinStock: 20},
		{ID: 102, Name: "Tea", Price: 800, Category: orders.CategoryDrink, Stock: 80, MinStock: 25},
		{ID: 103, Name: "Coffee", Price: 1200, Category: orders.CategoryDrink, Stock: 40, MinStock: 8},
		{ID: 104, Name: "Ayran", Price: 1000, Category: orders.CategoryDrink, Stock: 45, MinStock: 10},
		{ID: 105, Name: "Cola", Price: 1500, Category: orders.CategoryDrink, Stock: 60, MinStock: 15},
	}
	return st
}
