package httpx

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/akenozll/restoransiparis2/internal/bus"
	"github.com/akenozll/restoransiparis2/internal/engine"
	"github.com/akenozll/restoransiparis2/internal/orders"
	"github.com/akenozll/restoransiparis2/internal/persist"
)

func newTestServer(t *testing.T, adminToken string) (*httptest.Server, *engine.Engine) {
	t.Helper()
	hub := bus.NewHub(32)
	b := bus.New("test", hub)
	eng := engine.New(b, hub, nil, &persist.State{
		Tables: []orders.Table{{ID: 1, Name: "T1", Status: orders.TableFree}},
		Catalog: []orders.CatalogItem{
			{ID: 5, Name: "Water", Price: 500, Category: orders.CategoryDrink, Stock: 10, MinStock: 2},
		},
	})
	r := NewRouter()
	h := &Handler{Engine: eng, AdminToken: adminToken}
	h.Register(r)
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts, eng
}

func doJSON(t *testing.T, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatal(err)
	}
	return resp, buf.Bytes()
}

func TestCreateOrderEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, "")

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/orders", map[string]any{
		"tableId": 1,
		"items":   []map[string]any{{"id": 5, "name": "Water", "price": 5, "quantity": 2}},
		"note":    "no ice",
	}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	var o orders.Order
	if err := json.Unmarshal(body, &o); err != nil {
		t.Fatal(err)
	}
	if o.Total != 1000 || o.Status != orders.StatusKitchen || o.TableName != "T1" {
		t.Errorf("order = %+v", o)
	}

	// the table list now shows occupied
	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/tables", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("tables status = %d", resp.StatusCode)
	}
	var tables []orders.Table
	if err := json.Unmarshal(body, &tables); err != nil {
		t.Fatal(err)
	}
	if tables[0].Status != orders.TableOccupied {
		t.Errorf("table = %+v", tables[0])
	}
}

func TestErrorMapping(t *testing.T) {
	ts, eng := newTestServer(t, "")
	o, err := eng.CreateOrder(1, []orders.LineItem{{CatalogItemID: 5, Name: "Water", Price: 500, Quantity: 2}}, "")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		method   string
		path     string
		body     any
		wantCode int
	}{
		{"empty order items", http.MethodPost, "/api/orders", map[string]any{"tableId": 1, "items": []any{}}, http.StatusBadRequest},
		{"unknown order", http.MethodPut, "/api/orders/999/status", map[string]string{"status": "preparing"}, http.StatusNotFound},
		{"skipping ready", http.MethodPut, fmt.Sprintf("/api/orders/%d/status", o.ID), map[string]string{"status": "paid"}, http.StatusUnprocessableEntity},
		{"occupied table delete", http.MethodDelete, "/api/tables/1", nil, http.StatusConflict},
		{"garbage order id", http.MethodPut, "/api/orders/abc/status", map[string]string{"status": "preparing"}, http.StatusBadRequest},
		{"invalid json", http.MethodPost, "/api/orders", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doJSON(t, tt.method, ts.URL+tt.path, tt.body, nil)
			if resp.StatusCode != tt.wantCode {
				t.Errorf("status = %d, want %d (body %s)", resp.StatusCode, tt.wantCode, body)
			}
		})
	}
}

func TestAdminTokenGuard(t *testing.T) {
	ts, _ := newTestServer(t, "secret")

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/tables", map[string]string{"name": "T2"}, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("without token: status = %d, want 401", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/tables", map[string]string{"name": "T2"},
		map[string]string{"Authorization": "Bearer secret"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("with token: status = %d, want 201", resp.StatusCode)
	}
	// read routes stay open
	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/orders", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("read route: status = %d, want 200", resp.StatusCode)
	}
}

func TestStockEndpoints(t *testing.T) {
	ts, _ := newTestServer(t, "")

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/stock/update",
		map[string]any{"productId": 5, "stockChange": -15, "note": "spill"}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	var out struct {
		Success  bool `json:"success"`
		NewStock int  `json:"newStock"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatal(err)
	}
	if !out.Success || out.NewStock != 0 {
		t.Errorf("adjust = %+v, want floored 0", out)
	}

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/stock/report", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("report status = %d", resp.StatusCode)
	}
	var rep engine.StockReport
	if err := json.Unmarshal(body, &rep); err != nil {
		t.Fatal(err)
	}
	if rep.OutOfStock != 1 {
		t.Errorf("report = %+v", rep)
	}
}

func TestMenuGrouping(t *testing.T) {
	ts, _ := newTestServer(t, "")
	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/menu", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var menu orders.Menu
	if err := json.Unmarshal(body, &menu); err != nil {
		t.Fatal(err)
	}
	if len(menu.Drink) != 1 || menu.Drink[0].Name != "Water" {
		t.Errorf("menu = %+v", menu)
	}
}

func TestSSEStreamsSnapshotThenDelta(t *testing.T) {
	ts, eng := newTestServer(t, "")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/events", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q", ct)
	}

	sc := bufio.NewScanner(resp.Body)
	readEvent := func() string {
		for sc.Scan() {
			line := sc.Text()
			if strings.HasPrefix(line, "event: ") {
				return strings.TrimPrefix(line, "event: ")
			}
		}
		t.Fatalf("stream ended early: %v", sc.Err())
		return ""
	}

	for _, want := range []string{orders.EventCatalogSnapshot, orders.EventTableSnapshot, orders.EventOrderSnapshot} {
		if got := readEvent(); got != want {
			t.Fatalf("snapshot event = %s, want %s", got, want)
		}
	}

	if _, err := eng.CreateOrder(1, []orders.LineItem{{CatalogItemID: 5, Name: "Water", Price: 500, Quantity: 1}}, ""); err != nil {
		t.Fatal(err)
	}
	if got := readEvent(); got != orders.EventOrderCreated {
		t.Fatalf("delta = %s, want orderCreated", got)
	}
}
