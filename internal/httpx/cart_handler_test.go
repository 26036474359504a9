package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/catfecito/storefront/internal/cart"
)

type fakeCartStore struct {
	view *cart.View
	line *cart.Line
	err  error

	merged    int
	gotMerge  []cart.MergeLine
	gotAddQty int
}

func (f *fakeCartStore) List(_ context.Context, userID string) (*cart.View, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.view, nil
}

func (f *fakeCartStore) Add(_ context.Context, userID, productID string, qty int) (*cart.Line, error) {
	f.gotAddQty = qty
	if f.err != nil {
		return nil, f.err
	}
	return f.line, nil
}

func (f *fakeCartStore) UpdateQuantity(_ context.Context, userID, itemID string, qty int) (*cart.Line, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.line, nil
}

func (f *fakeCartStore) Remove(_ context.Context, userID, itemID string) error {
	return f.err
}

func (f *fakeCartStore) Clear(_ context.Context, userID string) (int64, error) {
	return 2, f.err
}

func (f *fakeCartStore) Merge(_ context.Context, userID string, lines []cart.MergeLine) (int, error) {
	f.gotMerge = lines
	if f.err != nil {
		return 0, f.err
	}
	return f.merged, nil
}

func TestAddCartItemDefaultsQuantity(t *testing.T) {
	store := &fakeCartStore{line: &cart.Line{ID: "it-1", ProductID: "p1", Quantity: 1}}
	h := &CartHandler{Store: store, Logger: testLogger()}
	r := routerFor(shopper(), h.Register)

	req := httptest.NewRequest(http.MethodPost, "/cart/items",
		bytes.NewReader([]byte(`{"product_id":"p1"}`)))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if store.gotAddQty != 1 {
		t.Errorf("quantity defaulted to %d, want 1", store.gotAddQty)
	}
}

func TestAddCartItemErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"missing product_id", `{}`, nil, http.StatusBadRequest},
		{"negative quantity", `{"product_id":"p1","quantity":-2}`, nil, http.StatusBadRequest},
		{"unknown product", `{"product_id":"ghost"}`, cart.ErrProductNotFound, http.StatusNotFound},
		{"inactive product", `{"product_id":"p1"}`, cart.ErrProductInactive, http.StatusBadRequest},
		{"over stock", `{"product_id":"p1","quantity":9}`, &cart.InsufficientStockError{Available: 3, InCart: 2}, http.StatusBadRequest},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h := &CartHandler{Store: &fakeCartStore{err: c.err}, Logger: testLogger()}
			r := routerFor(shopper(), h.Register)

			req := httptest.NewRequest(http.MethodPost, "/cart/items", bytes.NewReader([]byte(c.body)))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != c.want {
				t.Errorf("status = %d, want %d, body = %s", rec.Code, c.want, rec.Body)
			}
		})
	}
}

func TestUpdateCartItemRejectsZeroQuantity(t *testing.T) {
	h := &CartHandler{Store: &fakeCartStore{}, Logger: testLogger()}
	r := routerFor(shopper(), h.Register)

	req := httptest.NewRequest(http.MethodPatch, "/cart/items/it-1",
		bytes.NewReader([]byte(`{"quantity":0}`)))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRemoveCartItemNotFound(t *testing.T) {
	h := &CartHandler{Store: &fakeCartStore{err: cart.ErrItemNotFound}, Logger: testLogger()}
	r := routerFor(shopper(), h.Register)

	req := httptest.NewRequest(http.MethodDelete, "/cart/items/ghost", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestMergeCart(t *testing.T) {
	store := &fakeCartStore{
		merged: 2,
		view: &cart.View{Count: 3, TotalCents: 9900, Items: []cart.Line{
			{ID: "it-1", ProductID: "p1", Quantity: 3},
		}},
	}
	h := &CartHandler{Store: store, Logger: testLogger()}
	r := routerFor(shopper(), h.Register)

	req := httptest.NewRequest(http.MethodPost, "/cart/merge",
		bytes.NewReader([]byte(`{"items":[{"product_id":"p1","quantity":2},{"product_id":"p2","quantity":1}]}`)))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if len(store.gotMerge) != 2 || store.gotMerge[0].ProductID != "p1" {
		t.Errorf("merge lines = %+v", store.gotMerge)
	}

	var resp struct {
		MergedCount int       `json:"merged_count"`
		Cart        cart.View `json:"cart"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.MergedCount != 2 || resp.Cart.TotalCents != 9900 {
		t.Errorf("response = %+v", resp)
	}
}
