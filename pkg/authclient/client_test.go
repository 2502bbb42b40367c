package authclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ServerStatusClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "Incorrect email or password"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, apiErr := client.Login(context.Background(), LoginRequest{Email: "a@b.c", Password: "x"})

	require.NotNil(t, apiErr)
	assert.Equal(t, KindServerStatus, apiErr.Kind)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Incorrect email or password", apiErr.Detail)
	assert.True(t, apiErr.IsStatus(http.StatusUnauthorized))
}

func TestClient_ServerStatusWithoutDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("bad gateway"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, apiErr := client.Me(context.Background())

	require.NotNil(t, apiErr)
	assert.Equal(t, KindServerStatus, apiErr.Kind)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Empty(t, apiErr.Detail)
}

func TestClient_NetworkClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing is listening anymore

	client := NewClient(srv.URL)
	_, apiErr := client.Me(context.Background())

	require.NotNil(t, apiErr)
	assert.Equal(t, KindNetwork, apiErr.Kind)
	assert.Zero(t, apiErr.StatusCode)
}

func TestClient_MalformedResponseIsClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("{truncated"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, apiErr := client.Me(context.Background())

	require.NotNil(t, apiErr)
	assert.Equal(t, KindClient, apiErr.Kind)
}

func TestClient_BearerInjection(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 1, "email": "a@b.c", "role": "user", "is_active": true}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, WithTokenSource(TokenFunc(func() string { return "t1" })))
	_, apiErr := client.Me(context.Background())

	require.Nil(t, apiErr)
	assert.Equal(t, "Bearer t1", gotAuth)
}

func TestClient_NoHeaderWithoutToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 1, "email": "a@b.c", "role": "user", "is_active": true}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, WithTokenSource(TokenFunc(func() string { return "" })))
	_, apiErr := client.Me(context.Background())

	require.Nil(t, apiErr)
	assert.Empty(t, gotAuth)
}

func TestMessageFor(t *testing.T) {
	tests := []struct {
		name     string
		err      *APIError
		expected string
	}{
		{
			name:     "unauthorized",
			err:      &APIError{Kind: KindServerStatus, StatusCode: 401},
			expected: "Incorrect email or password",
		},
		{
			name:     "not found",
			err:      &APIError{Kind: KindServerStatus, StatusCode: 404},
			expected: "Account does not exist",
		},
		{
			name:     "unprocessable",
			err:      &APIError{Kind: KindServerStatus, StatusCode: 422},
			expected: "Invalid input, please check your details",
		},
		{
			name:     "server error",
			err:      &APIError{Kind: KindServerStatus, StatusCode: 503},
			expected: serverMessage,
		},
		{
			name:     "unknown status with detail",
			err:      &APIError{Kind: KindServerStatus, StatusCode: 418, Detail: "I'm a teapot"},
			expected: "I'm a teapot",
		},
		{
			name:     "unknown status without detail",
			err:      &APIError{Kind: KindServerStatus, StatusCode: 418},
			expected: genericMessage,
		},
		{
			name:     "network",
			err:      &APIError{Kind: KindNetwork},
			expected: networkMessage,
		},
		{
			name:     "client",
			err:      &APIError{Kind: KindClient},
			expected: genericMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, messageFor(tt.err))
		})
	}
}
