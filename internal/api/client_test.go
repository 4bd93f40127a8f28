package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := New(srv.URL+"/api", srv.Client(), zap.NewNop())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestGetCartDecodesItems(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/cart/4" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"items":[{"id":11,"productId":2,"productName":"Mug","quantity":3,"price":120}]}`))
	})

	resp, err := client.GetCart(context.Background(), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].ProductID != 2 || resp.Items[0].Quantity != 3 {
		t.Fatalf("unexpected items: %+v", resp.Items)
	}
}

func TestNon2xxReturnsStatusError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := client.GetCart(context.Background(), 1)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected status error, got %v", err)
	}
	if statusErr.Code != http.StatusBadGateway {
		t.Fatalf("unexpected code %d", statusErr.Code)
	}
}

func TestMalformedResponseIsError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": "not-an-array"`))
	})

	if _, err := client.GetCart(context.Background(), 1); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestAddCartItemSendsBody(t *testing.T) {
	var gotMethod, gotPath, gotBody string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		buf := make([]byte, 512)
		n, _ := r.Body.Read(buf)
		gotBody = string(buf[:n])
	})

	err := client.AddCartItem(context.Background(), 2, AddCartItemRequest{
		ProductID: 5, ProductName: "Mug", Quantity: 1, Price: 99.5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/api/cart/2/add" {
		t.Fatalf("unexpected request %s %s", gotMethod, gotPath)
	}
	want := `{"productId":5,"productName":"Mug","quantity":1,"price":99.5}`
	if gotBody != want {
		t.Fatalf("unexpected body %s", gotBody)
	}
}
