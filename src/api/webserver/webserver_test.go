package webserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civitasrp/civitas/src/store"
	"github.com/civitasrp/civitas/src/types"
)

func newTestServer(t *testing.T) (*gin.Engine, *store.Memory) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mem := store.NewMemory()
	router := New(Deps{
		Token:      "secret",
		Identities: mem.Identities(),
		Warnings:   mem.Warnings(),
		Configs:    mem.Configs(),
	})
	return router, mem
}

func get(router *gin.Engine, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthIsPublic(t *testing.T) {
	router, _ := newTestServer(t)
	rec := get(router, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRejections(t *testing.T) {
	router, _ := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, get(router, "/v1/guilds/g1/identities/u1", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(router, "/v1/guilds/g1/identities/u1", "Bot wrong").Code)
	assert.Equal(t, http.StatusUnauthorized, get(router, "/v1/guilds/g1/identities/u1", "Bearer secret").Code)
}

func TestGetIdentity(t *testing.T) {
	router, mem := newTestServer(t)
	require.NoError(t, mem.CreateIdentity(context.Background(), &types.Identity{
		UserID:    "u1",
		GuildID:   "g1",
		FirstName: "Ana",
		IDNumber:  "12.345.678-5",
	}))

	rec := get(router, "/v1/guilds/g1/identities/u1", "Bot secret")
	require.Equal(t, http.StatusOK, rec.Code)

	var got types.Identity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Ana", got.FirstName)

	assert.Equal(t, http.StatusNotFound, get(router, "/v1/guilds/g1/identities/ghost", "Bot secret").Code)
}

func TestListWarnings(t *testing.T) {
	router, mem := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, mem.Add(ctx, &types.Warning{RefCode: "abcd1234", UserID: "u1", GuildID: "g1", Reason: "spam"}))
	require.NoError(t, mem.Add(ctx, &types.Warning{RefCode: "efgh5678", UserID: "u1", GuildID: "g1", Reason: "more spam"}))

	rec := get(router, "/v1/guilds/g1/warnings/u1", "Bot secret")
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Warnings []types.Warning `json:"warnings"`
		Count    int             `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 2, got.Count)
	require.Len(t, got.Warnings, 2)
	assert.Equal(t, "spam", got.Warnings[0].Reason)
}

func TestGetGuildConfig(t *testing.T) {
	router, mem := newTestServer(t)
	require.NoError(t, mem.Upsert(context.Background(), &types.GuildConfig{GuildID: "g1", Language: "es"}))

	rec := get(router, "/v1/guilds/g1/config", "Bot secret")
	require.Equal(t, http.StatusOK, rec.Code)

	var got types.GuildConfig
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "es", got.Language)
}
