package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/catfecito/storefront/internal/catalog"
)

type fakeCatalog struct {
	product *catalog.Product
	list    []catalog.Product
	err     error

	gotActiveOnly bool
	deleteMode    catalog.DeleteMode
}

func (f *fakeCatalog) Get(_ context.Context, id string) (*catalog.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.product, nil
}

func (f *fakeCatalog) List(_ context.Context, activeOnly bool) ([]catalog.Product, error) {
	f.gotActiveOnly = activeOnly
	return f.list, f.err
}

func (f *fakeCatalog) Create(_ context.Context, p *catalog.Product) (*catalog.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return p, nil
}

func (f *fakeCatalog) Update(_ context.Context, id string, p *catalog.Product) (*catalog.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return p, nil
}

func (f *fakeCatalog) Delete(_ context.Context, id string) (catalog.DeleteMode, error) {
	return f.deleteMode, f.err
}

func TestPublicProductListIsActiveOnly(t *testing.T) {
	store := &fakeCatalog{list: []catalog.Product{{ID: "p1", Name: "Mug"}}}
	h := &ProductsHandler{Store: store, Logger: testLogger()}
	r := chiRouterProducts(h)

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !store.gotActiveOnly {
		t.Error("public listing included inactive products")
	}
}

func TestAdminProductListIncludesInactive(t *testing.T) {
	store := &fakeCatalog{}
	h := &ProductsHandler{Store: store, Logger: testLogger()}
	r := routerFor(Identity{UserID: "a", Role: "admin"}, h.RegisterAdmin)

	req := httptest.NewRequest(http.MethodGet, "/admin/products", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if store.gotActiveOnly {
		t.Error("admin listing filtered out inactive products")
	}
}

func TestCreateProductValidation(t *testing.T) {
	h := &ProductsHandler{Store: &fakeCatalog{}, Logger: testLogger()}
	r := routerFor(Identity{UserID: "a", Role: "admin"}, h.RegisterAdmin)

	cases := []struct {
		name string
		body string
	}{
		{"missing name", `{"price_cents":100}`},
		{"zero price", `{"name":"Mug","price_cents":0}`},
		{"negative stock", `{"name":"Mug","price_cents":100,"stock":-1}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewReader([]byte(c.body)))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestDeleteProductReportsMode(t *testing.T) {
	h := &ProductsHandler{Store: &fakeCatalog{deleteMode: catalog.DeleteDeactivated}, Logger: testLogger()}
	r := routerFor(Identity{UserID: "a", Role: "admin"}, h.RegisterAdmin)

	req := httptest.NewRequest(http.MethodDelete, "/products/p1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["result"] != catalog.DeleteDeactivated.String() {
		t.Errorf("result = %q", resp["result"])
	}
}
