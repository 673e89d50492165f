package orders

import "time"

type TableStatus string

const (
	TableFree     TableStatus = "free"
	TableOccupied TableStatus = "occupied"
)

type Table struct {
	ID     int         `json:"id"`
	Name   string      `json:"name"`
	Status TableStatus `json:"status"`
}

const (
	CategoryFood  = "food"
	CategoryDrink = "drink"
)

// StockAudit records one stock movement, manual or payment-driven.
type StockAudit struct {
	Timestamp      time.Time `json:"timestamp"`
	Delta          int       `json:"delta"`
	ResultingStock int       `json:"resultingStock"`
	Note           string    `json:"note,omitempty"`
}

type CatalogItem struct {
	ID          int          `json:"id"`
	Name        string       `json:"name"`
	Price       Cents        `json:"price"`
	Category    string       `json:"category"`
	Stock       int          `json:"stock"`
	MinStock    int          `json:"minStock"`
	Description string       `json:"description,omitempty"`
	History     []StockAudit `json:"history,omitempty"`
}

func (c CatalogItem) Clone() CatalogItem {
	out := c
	out.History = append([]StockAudit(nil), c.History...)
	return out
}

// Menu groups the catalog the way the panels render it.
type Menu struct {
	Food  []CatalogItem `json:"food"`
	Drink []CatalogItem `json:"drink"`
}

// LineItem is snapshotted into the order at creation time; later
// catalog edits never touch it.
type LineItem struct {
	CatalogItemID int    `json:"id"`
	Name          string `json:"name"`
	Price         Cents  `json:"price"`
	Quantity      int    `json:"quantity"`
}

type Order struct {
	ID               int        `json:"id"`
	TableID          int        `json:"tableId"`
	TableName        string     `json:"tableName"`
	Items            []LineItem `json:"items"`
	Note             string     `json:"note,omitempty"`
	Status           Status     `json:"status"`
	Timestamp        time.Time  `json:"timestamp"`
	PaymentTimestamp *time.Time `json:"paymentTimestamp,omitempty"`
	Total            Cents      `json:"total"`
}

func (o Order) Clone() Order {
	out := o
	out.Items = append([]LineItem(nil), o.Items...)
	if o.PaymentTimestamp != nil {
		t := *o.PaymentTimestamp
		out.PaymentTimestamp = &t
	}
	return out
}
