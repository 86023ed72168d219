package repos

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVaultServer(t *testing.T, handler http.HandlerFunc) *VaultRepository {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := api.DefaultConfig()
	cfg.Address = server.URL
	cfg.MaxRetries = 0

	client, err := api.NewClient(cfg)
	require.NoError(t, err)

	repo := NewVaultRepository(client)
	repo.SetToken("root")

	return repo
}

func TestVaultRepository_GetSecrets(t *testing.T) {
	t.Parallel()

	repo := newVaultServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/apps/data/svc-message-relay", r.URL.Path)
		assert.Equal(t, "root", r.Header.Get("X-Vault-Token"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"data": map[string]any{"RABBITMQ_USERNAME": "relay"},
			},
		})
	})

	secret, err := repo.GetSecrets(context.Background(), "apps/data/svc-message-relay")
	require.NoError(t, err)
	require.NotNil(t, secret)

	data, ok := secret.Data["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "relay", data["RABBITMQ_USERNAME"])
}

func TestVaultRepository_GetSecrets_NotFound(t *testing.T) {
	t.Parallel()

	repo := newVaultServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	secret, err := repo.GetSecrets(context.Background(), "apps/data/missing")
	require.NoError(t, err)
	assert.Nil(t, secret)
}

func TestVaultRepository_GetSecrets_Error(t *testing.T) {
	t.Parallel()

	repo := newVaultServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"errors":["permission denied"]}`))
	})

	_, err := repo.GetSecrets(context.Background(), "apps/data/svc-message-relay")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apps/data/svc-message-relay")
}

func TestVaultRepository_WriteWithContext(t *testing.T) {
	t.Parallel()

	var received map[string]any

	repo := newVaultServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusNoContent)
	})

	_, err := repo.WriteWithContext(context.Background(), "apps/data/svc-message-relay", map[string]any{
		"data": map[string]any{"RABBITMQ_PASSWORD": "s3cret"},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"data": map[string]any{"RABBITMQ_PASSWORD": "s3cret"}}, received)
}
