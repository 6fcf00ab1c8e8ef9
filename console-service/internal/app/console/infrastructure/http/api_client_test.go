package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockdesk/console-service/internal/app/console/entity"
	"stockdesk/console-service/internal/app/console/ingest"
	"stockdesk/console-service/internal/app/console/store"
)

func staticToken(token string) TokenSource {
	return TokenFunc(func(context.Context) string { return token })
}

// ===================== APIClient Tests =====================

func TestDo_AttachesBearerToken(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tkn-1", r.Header.Get("Authorization"))
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewAPIClient(server.URL, time.Second, staticToken("tkn-1"))

	// Act
	_, err := client.Do(context.Background(), http.MethodGet, "/categories", nil)

	// Assert
	assert.NoError(t, err)
}

func TestDo_NoSessionNoHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewAPIClient(server.URL, time.Second, staticToken(""))

	_, err := client.Do(context.Background(), http.MethodGet, "/categories", nil)

	assert.NoError(t, err)
}

func TestDo_ErrorMessageExtraction(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"message field", `{"message":"Product not found","error":"ignored"}`, "Product not found"},
		{"error field", `{"error":"Unauthorized"}`, "Unauthorized"},
		{"plain text", `Bad Gateway`, "Bad Gateway"},
		{"nothing useful", `{"code":1}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewAPIClient(server.URL, time.Second, nil)
			_, err := client.Do(context.Background(), http.MethodGet, "/products", nil)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
			assert.Equal(t, tt.want, apiErr.UserMessage())
			assert.Equal(t, tt.want, store.ExtractMessage(err, tt.want))
		})
	}
}

func TestDo_NotFoundMatchesStoreSentinel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewAPIClient(server.URL, time.Second, nil)
	_, err := client.Do(context.Background(), http.MethodDelete, "/sales/3", nil)

	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDo_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewAPIClient(url, time.Second, nil)
	_, err := client.Do(context.Background(), http.MethodGet, "/sales", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send request")
	assert.Equal(t, "Failed to load sales", store.ExtractMessage(err, "Failed to load sales"))
}

// ===================== Resource Tests =====================

func TestResource_ListUnwrapsAndNormalises(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products", r.URL.Path)
		w.Write([]byte(`{"data":[{"id":1,"name":"Mouse","price":"12.50","qty":4},{"_id":"2","title":"Desk","sellingPrice":100}]}`))
	}))
	defer server.Close()

	res := NewResource(NewAPIClient(server.URL+"/api", time.Second, nil), "products", ingest.Product)

	// Act
	items, err := res.List(context.Background())

	// Assert
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Mouse", items[0].Name)
	assert.True(t, decimal.RequireFromString("12.5").Equal(items[0].SellingPrice))
	assert.Equal(t, 4, items[0].Quantity)
	assert.Equal(t, int64(2), items[1].ID)
	assert.Equal(t, "Desk", items[1].Name)
}

func TestResource_CreateStripsID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		raw, _ := io.ReadAll(r.Body)
		var payload map[string]any
		require.NoError(t, json.Unmarshal(raw, &payload))
		assert.NotContains(t, payload, "id")
		assert.Equal(t, "Electronics", payload["name"])

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":17,"name":"Electronics"}}`))
	}))
	defer server.Close()

	res := NewResource(NewAPIClient(server.URL, time.Second, nil), "categories", ingest.Category)

	created, err := res.Create(context.Background(), entity.Category{Name: "Electronics"})

	require.NoError(t, err)
	assert.Equal(t, entity.Category{ID: 17, Name: "Electronics"}, created)
}

func TestResource_UpdateAndDeletePaths(t *testing.T) {
	var calls []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodPut {
			var payload map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, map[string]any{"quantity": float64(3)}, payload)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	res := NewResource(NewAPIClient(server.URL, time.Second, nil), "sales", ingest.Sale)

	require.NoError(t, res.Update(context.Background(), 5, store.Patch{"quantity": 3, "id": 9}))
	require.NoError(t, res.Delete(context.Background(), 5))

	assert.Equal(t, []string{"PUT /sales/5", "DELETE /sales/5"}, calls)
}

func TestResource_BackedStore(t *testing.T) {
	// Arrange: сервер помнит одну категорию
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(`[{"id":1,"name":"Books"}]`))
		case http.MethodDelete:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"Category not found"}`))
		}
	}))
	defer server.Close()

	s := store.New(store.Config[entity.Category]{
		Resource: "categories",
		Singular: "category",
		ID:       entity.Category.GetID,
		Backend:  NewResource(NewAPIClient(server.URL, time.Second, nil), "categories", ingest.Category),
	})

	// Act
	_, err := s.FetchAll(context.Background())
	require.NoError(t, err)
	_, err = s.Remove(context.Background(), 1)

	// Assert: 404 при удалении не ошибка
	require.NoError(t, err)
	assert.Empty(t, s.Items())
}

func TestResource_UnexpectedShapeKeepsStoreItems(t *testing.T) {
	// Arrange: первый ответ - массив, второй - объект без массива
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Write([]byte(`[{"id":1,"name":"Books"},{"id":2,"name":"Games"}]`))
			return
		}
		w.Write([]byte(`{"data":{"rows":[{"id":3,"name":"Toys"}]}}`))
	}))
	defer server.Close()

	s := store.New(store.Config[entity.Category]{
		Resource: "categories",
		Singular: "category",
		ID:       entity.Category.GetID,
		Backend:  NewResource(NewAPIClient(server.URL, time.Second, nil), "categories", ingest.Category),
	})
	_, err := s.FetchAll(context.Background())
	require.NoError(t, err)

	// Act
	_, err = s.FetchAll(context.Background())

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, ingest.ErrUnexpectedShape)
	snap := s.Snapshot()
	assert.Equal(t, store.StatusFailed, snap.Status)
	assert.Len(t, snap.Items, 2)
	require.NotNil(t, snap.LastError)
	assert.NotEmpty(t, *snap.LastError)
}
