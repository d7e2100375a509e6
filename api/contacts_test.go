package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supervisionhq/jarvis/internal/contacts"
)

func TestContactsEndpoints(t *testing.T) {
	priya := contacts.Contact{Key: "priyasharma", FirstName: "Priya", LastName: "Sharma", Phone: "+15550100"}

	t.Run("list", func(t *testing.T) {
		store := &fakeContactStore{list: []contacts.Contact{priya}}
		handler := newTestServer(nil, store, nil, nil)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/contacts", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var list []contacts.Contact
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		require.Len(t, list, 1)
		assert.Equal(t, "priyasharma", list[0].Key)
	})

	t.Run("create", func(t *testing.T) {
		store := &fakeContactStore{}
		handler := newTestServer(nil, store, nil, nil)

		body := `{"first_name": "Nino", "last_name": "Petrov", "phone": "+15550111"}`
		req := httptest.NewRequest(http.MethodPost, "/api/contacts", strings.NewReader(body))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code)

		var created contacts.Contact
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.Equal(t, "NinoPetrov", created.Key)
	})

	t.Run("create with bad body", func(t *testing.T) {
		handler := newTestServer(nil, &fakeContactStore{}, nil, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/contacts", strings.NewReader("nope"))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("get", func(t *testing.T) {
		store := &fakeContactStore{list: []contacts.Contact{priya}}
		handler := newTestServer(nil, store, nil, nil)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/contacts/priyasharma", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var got contacts.Contact
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "Priya", got.FirstName)
	})

	t.Run("get unknown", func(t *testing.T) {
		handler := newTestServer(nil, &fakeContactStore{}, nil, nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/contacts/nobody", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("delete removes the conversation collection", func(t *testing.T) {
		store := &fakeContactStore{list: []contacts.Contact{priya}}
		collections := &fakeCollections{}
		handler := newTestServer(nil, store, collections, nil)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/contacts/priyasharma", nil))
		require.Equal(t, http.StatusNoContent, w.Code)

		assert.Equal(t, []string{"priyasharma"}, store.deleted)
		assert.Equal(t, []string{"priyasharma"}, collections.deleted)
	})

	t.Run("delete unknown", func(t *testing.T) {
		collections := &fakeCollections{}
		handler := newTestServer(nil, &fakeContactStore{}, collections, nil)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/contacts/nobody", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Empty(t, collections.deleted)
	})

	t.Run("no store configured maps to 503", func(t *testing.T) {
		handler := newTestServer(nil, nil, nil, nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/contacts", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
