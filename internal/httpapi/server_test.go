package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/devketanpro/eafoods-preorder/internal/service"
	"github.com/devketanpro/eafoods-preorder/internal/store/memstore"
)

var testNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*Server, map[string]string) {
	t.Helper()
	st := memstore.New()
	ids := make(map[string]string)
	for _, def := range []struct {
		name  string
		stock int
	}{
		{"Apple", 10},
		{"Banana", 5},
		{"Bandaid", 5},
	} {
		p, err := st.CreateProduct(context.Background(), def.name, "")
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if _, err := st.SetStock(context.Background(), p.ID, def.stock, testNow); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		ids[def.name] = p.ID
	}

	srv := New(service.NewPreOrderService(st), zap.NewNop())
	srv.now = func() time.Time { return testNow }
	return srv, ids
}

func doJSON(t *testing.T, srv *Server, method, path, user string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		buf = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}

	resp, err := srv.App().Test(req, -1)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	var decoded map[string]any
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if len(raw) > 0 {
		// Array bodies are wrapped so callers can always index a map.
		if raw[0] == '[' {
			var arr []any
			if err := json.Unmarshal(raw, &arr); err != nil {
				t.Fatalf("Expected valid JSON array, got: %v", err)
			}
			decoded = map[string]any{"items": arr}
		} else if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("Expected valid JSON object, got %q: %v", raw, err)
		}
	}
	return resp, decoded
}

func placeBody(product string) map[string]any {
	return map[string]any{
		"product_name":     product,
		"quantity":         2,
		"slot":             "MORNING",
		"delivery_address": "12 Market St, Nairobi",
	}
}

func TestPlaceOrder_RequiresIdentity(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, srv, http.MethodPost, "/api/v1/preorders", "", placeBody("Apple"))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", resp.StatusCode)
	}
	if body["error"] == nil {
		t.Error("Expected error message in body")
	}
}

func TestPlaceOrder_Created(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, srv, http.MethodPost, "/api/v1/preorders", "user1", placeBody("Apple"))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d (%v)", resp.StatusCode, body)
	}
	if body["product"] != "Apple" {
		t.Errorf("Expected product Apple, got %v", body["product"])
	}
	if body["delivery_date"] != "2025-03-11" {
		t.Errorf("Expected delivery date 2025-03-11, got %v", body["delivery_date"])
	}
	if body["slot_label"] != "8AM - 11AM" {
		t.Errorf("Expected slot label, got %v", body["slot_label"])
	}
	if body["is_cancelled"] != false {
		t.Errorf("Expected is_cancelled false, got %v", body["is_cancelled"])
	}
}

func TestPlaceOrder_AmbiguousReturns300WithSuggestions(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, srv, http.MethodPost, "/api/v1/preorders", "user1", placeBody("Ban"))
	if resp.StatusCode != http.StatusMultipleChoices {
		t.Fatalf("Expected 300, got %d", resp.StatusCode)
	}
	suggestions, ok := body["suggestions"].([]any)
	if !ok || len(suggestions) != 2 {
		t.Fatalf("Expected 2 suggestions, got %v", body["suggestions"])
	}
}

func TestPlaceOrder_ErrorStatuses(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name   string
		mutate func(map[string]any)
		want   int
	}{
		{"unknown product", func(m map[string]any) { m["product_name"] = "Cheese" }, http.StatusNotFound},
		{"zero quantity", func(m map[string]any) { m["quantity"] = 0 }, http.StatusBadRequest},
		{"bad slot", func(m map[string]any) { m["slot"] = "NIGHT" }, http.StatusBadRequest},
		{"bad address", func(m map[string]any) { m["delivery_address"] = "###" }, http.StatusBadRequest},
		{"insufficient stock", func(m map[string]any) { m["quantity"] = 100 }, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := placeBody("Apple")
			tt.mutate(body)
			resp, _ := doJSON(t, srv, http.MethodPost, "/api/v1/preorders", "user1", body)
			if resp.StatusCode != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, resp.StatusCode)
			}
		})
	}
}

func TestPlaceOrder_InsufficientStockEchoesAvailable(t *testing.T) {
	srv, _ := newTestServer(t)

	body := placeBody("Banana")
	body["quantity"] = 100
	resp, decoded := doJSON(t, srv, http.MethodPost, "/api/v1/preorders", "user1", body)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("Expected 409, got %d", resp.StatusCode)
	}
	if decoded["available"] != float64(5) {
		t.Errorf("Expected available 5, got %v", decoded["available"])
	}
}

func TestCancelOrder_Statuses(t *testing.T) {
	srv, _ := newTestServer(t)

	_, created := doJSON(t, srv, http.MethodPost, "/api/v1/preorders", "user1", placeBody("Apple"))
	orderID, _ := created["id"].(string)
	if orderID == "" {
		t.Fatalf("Expected order id, got %v", created)
	}

	// Foreign user sees not-found.
	resp, _ := doJSON(t, srv, http.MethodPost, "/api/v1/preorders/"+orderID+"/cancel", "user2", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 for foreign order, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, srv, http.MethodPost, "/api/v1/preorders/"+orderID+"/cancel", "user1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, srv, http.MethodPost, "/api/v1/preorders/"+orderID+"/cancel", "user1", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("Expected 409 for repeated cancel, got %d", resp.StatusCode)
	}
}

func TestAdjustStock_OutOfWindow(t *testing.T) {
	srv, ids := newTestServer(t)
	srv.now = func() time.Time {
		return time.Date(2025, time.March, 10, 15, 0, 0, 0, time.UTC)
	}

	resp, _ := doJSON(t, srv, http.MethodPut, "/api/v1/stock/"+ids["Apple"], "ops1",
		map[string]any{"quantity": 80})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("Expected 403, got %d", resp.StatusCode)
	}
}

func TestAdjustStock_InWindow(t *testing.T) {
	srv, ids := newTestServer(t)
	srv.now = func() time.Time {
		return time.Date(2025, time.March, 10, 8, 30, 0, 0, time.UTC)
	}

	resp, body := doJSON(t, srv, http.MethodPut, "/api/v1/stock/"+ids["Apple"], "ops1",
		map[string]any{"quantity": 80})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d (%v)", resp.StatusCode, body)
	}
	if body["quantity"] != float64(80) {
		t.Errorf("Expected quantity 80, got %v", body["quantity"])
	}
}

func TestOrdersBySlot(t *testing.T) {
	srv, _ := newTestServer(t)

	doJSON(t, srv, http.MethodPost, "/api/v1/preorders", "user1", placeBody("Apple"))
	doJSON(t, srv, http.MethodPost, "/api/v1/preorders", "user2", placeBody("Banana"))

	resp, body := doJSON(t, srv, http.MethodGet, "/api/v1/orders?slot=morning", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	items, _ := body["items"].([]any)
	if len(items) != 2 {
		t.Errorf("Expected 2 orders, got %d", len(items))
	}

	resp, _ = doJSON(t, srv, http.MethodGet, "/api/v1/orders", "", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 without slot parameter, got %d", resp.StatusCode)
	}
}

func TestTopProducts(t *testing.T) {
	srv, _ := newTestServer(t)

	body := placeBody("Apple")
	body["quantity"] = 3
	doJSON(t, srv, http.MethodPost, "/api/v1/preorders", "user1", body)

	resp, decoded := doJSON(t, srv, http.MethodGet,
		"/api/v1/reports/top-products?start=2025-03-11&end=2025-03-11", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	items, _ := decoded["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("Expected 1 product row, got %d", len(items))
	}
	row := items[0].(map[string]any)
	if row["total_quantity"] != float64(3) {
		t.Errorf("Expected total 3, got %v", row["total_quantity"])
	}

	resp, _ = doJSON(t, srv, http.MethodGet, "/api/v1/reports/top-products?start=bad", "", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad dates, got %d", resp.StatusCode)
	}
}

func TestResolveProduct(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, srv, http.MethodGet, "/api/v1/products/resolve?name=apple", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if body["name"] != "Apple" {
		t.Errorf("Expected Apple, got %v", body["name"])
	}

	resp, _ = doJSON(t, srv, http.MethodGet, "/api/v1/products/resolve?name=ban", "", nil)
	if resp.StatusCode != http.StatusMultipleChoices {
		t.Errorf("Expected 300, got %d", resp.StatusCode)
	}
}

func TestListSlots(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, srv, http.MethodGet, "/api/v1/slots", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	items, _ := body["items"].([]any)
	if len(items) != 3 {
		t.Fatalf("Expected 3 slots, got %d", len(items))
	}
	first := items[0].(map[string]any)
	if first["name"] != "MORNING" || first["label"] != "8AM - 11AM" {
		t.Errorf("Unexpected first slot: %v", first)
	}
}
