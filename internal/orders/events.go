package orders

import (
	"encoding/json"
	"time"
)

const (
	EventCatalogSnapshot    = "catalogSnapshot"
	EventTableSnapshot      = "tableSnapshot"
	EventOrderSnapshot      = "orderSnapshot"
	EventOrderCreated       = "orderCreated"
	EventOrderStatusChanged = "orderStatusChanged"
	EventTableChanged       = "tableChanged"
	EventCatalogChanged     = "catalogChanged"
)

// Envelope wraps every broadcast event. Payloads by event type:
//
//	orderCreated, orderStatusChanged  -> Order
//	tableChanged, tableSnapshot       -> []Table
//	catalogChanged, catalogSnapshot   -> Menu
//	orderSnapshot                     -> []Order
type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"`
	Payload      json.RawMessage `json:"payload"`
}
