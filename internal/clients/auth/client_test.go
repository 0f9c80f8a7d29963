package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/invoicing/internal/clients/auth"
	"github.com/ledgerline/invoicing/internal/entity"
)

func TestClient_User(t *testing.T) {
	t.Parallel()

	userID := uuid.Must(uuid.NewV4())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/validate", r.URL.Path)

		var req auth.ValidateTokenRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "dev", req.Token)

		err := json.NewEncoder(w).Encode(auth.ValidateTokenResponse{
			ID:        userID,
			FirstName: "Test first name",
			LastName:  "Test last name",
			Email:     "user@example.com",
		})
		require.NoError(t, err)
	}))
	t.Cleanup(server.Close)

	c := auth.NewClient(server.URL)

	user, err := c.User(context.Background(), "dev")
	require.NoError(t, err)
	require.Equal(t, userID, user.ID)
	require.Equal(t, "user@example.com", user.Email)
}

func TestClient_User_Unauthenticated(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	c := auth.NewClient(server.URL)

	_, err := c.User(context.Background(), "bad")
	require.ErrorIs(t, err, entity.ErrUnauthenticated)
}
