package googlesheets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/mrlokans/mazo/internal/apperr"
	"github.com/mrlokans/mazo/internal/storage"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := sheets.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return NewClientWithService("sheet-1", svc)
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": code, "message": message},
	})
}

func TestA1Range(t *testing.T) {
	assert.Equal(t, "'Users'!A1:ZZ", a1Range("Users", storage.AllRows))
	assert.Equal(t, "'Users'!A1:ZZ1", a1Range("Users", storage.HeaderRange))
	assert.Equal(t, "'It''s'!A3:ZZ5", a1Range("It's", storage.Range{Start: 2, End: 5}))
}

func TestCredentialsJSON_UnescapesNewlines(t *testing.T) {
	raw, err := Credentials{ClientEmail: "svc@example.iam.gserviceaccount.com", PrivateKey: `line1\nline2`}.JSON()
	require.NoError(t, err)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "service_account", decoded["type"])
	assert.Equal(t, "line1\nline2", decoded["private_key"])
}

func TestNewClient_MissingConfig(t *testing.T) {
	_, err := NewClient(context.Background(), "", Credentials{})
	assert.ErrorIs(t, err, apperr.ErrConfiguration)

	_, err = NewClient(context.Background(), "id", Credentials{ClientEmail: "svc@example.com"})
	var cfgErr *apperr.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "GOOGLE_PRIVATE_KEY", cfgErr.Key)
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
		sentinel  error
	}{
		{"rate limit", &googleapi.Error{Code: 429, Message: "quota"}, true, apperr.ErrRateLimited},
		{"server error", &googleapi.Error{Code: 503}, true, apperr.ErrUpstream},
		{"forbidden", &googleapi.Error{Code: 403}, false, apperr.ErrUpstream},
		{"missing sheet", &googleapi.Error{Code: 400, Message: "Unable to parse range: Decks!A1"}, false, storage.ErrTableNotFound},
		{"deadline", context.DeadlineExceeded, true, context.DeadlineExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := translate(storage.OpReadRows, "Decks", tt.err)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, tt.retryable, apperr.IsRetryable(err))
		})
	}
}

func TestReadRows(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Contains(t, r.URL.Path, "/v4/spreadsheets/sheet-1/values/")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"range":  "'Users'!A1:ZZ3",
			"values": [][]string{{"id", "email"}, {"u1", "a@example.com"}, {"u2"}},
		})
	})

	rows, err := c.ReadRows(context.Background(), "Users", storage.AllRows)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"id", "email"}, {"u1", "a@example.com"}, {"u2"}}, rows)
}

func TestReadRows_EmptyTable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"range":"'Leads'!A1:ZZ"}`))
	})

	rows, err := c.ReadRows(context.Background(), "Leads", storage.AllRows)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestAppendRows_RateLimited(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, ":append"))
		assert.Equal(t, "RAW", r.URL.Query().Get("valueInputOption"))
		writeError(w, http.StatusTooManyRequests, "Quota exceeded")
	})

	err := c.AppendRows(context.Background(), "Leads", [][]string{{"+34600000000"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrRateLimited))
}

func TestListTables_CachesSheetIDs(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"sheets": []map[string]any{
				{"properties": map[string]any{"sheetId": 0, "title": "Config"}},
				{"properties": map[string]any{"sheetId": 42, "title": "Decks"}},
			},
		})
	})

	names, err := c.ListTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Config", "Decks"}, names)

	id, err := c.sheetID(context.Background(), "Decks")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = c.sheetID(context.Background(), "Missing")
	assert.ErrorIs(t, err, storage.ErrTableNotFound)
}
