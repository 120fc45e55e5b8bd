package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"flightdesk-service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClientWithoutCredentials(t *testing.T) {
	o := NewODataOAuth("", "", "", nil, logger.NewNop())
	assert.False(t, o.Enabled())

	client := o.HTTPClient(context.Background(), 3*time.Second)
	assert.Equal(t, 3*time.Second, client.Timeout)
}

func TestHTTPClientSendsBearerToken(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "client", user)
		assert.Equal(t, "secret", pass)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "tok-123",
			"token_type":   "bearer",
			"expires_in":   3600,
		})
	}))
	defer tokenServer.Close()

	var gotAuth string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer api.Close()

	o := NewODataOAuth("client", "secret", tokenServer.URL, nil, logger.NewNop())
	require.True(t, o.Enabled())

	resp, err := o.HTTPClient(context.Background(), time.Second).Get(api.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "Bearer tok-123", gotAuth)
}
