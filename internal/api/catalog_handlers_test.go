package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atoumapp/atoum-server/internal/domain"
	"github.com/atoumapp/atoum-server/internal/id"
	"github.com/atoumapp/atoum-server/internal/service"
)

// memberToken creates a non-admin user directly in the store and mints an
// access token for it.
func (ts *testServer) memberToken(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	now := time.Now()
	user := &domain.User{
		ID:          id.MustGenerate("user"),
		Email:       "member@example.com",
		DisplayName: "Member",
		Role:        domain.RoleMember,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, ts.store.CreateUser(ctx, user))

	token, err := ts.tokenService.GenerateAccessToken(user, id.MustGenerate("session"))
	require.NoError(t, err)
	return token
}

func TestCreateConsumable_AdminOnly(t *testing.T) {
	ts := setupTestServer(t)
	adminToken, _ := ts.setupRootUser(t)
	memberToken := ts.memberToken(t)

	resp := ts.api.Post("/api/v1/consumables", authHeader(memberToken), map[string]any{
		"title": "Food",
	})
	assert.Equal(t, http.StatusForbidden, resp.Code, resp.Body.String())

	resp = ts.api.Post("/api/v1/consumables", authHeader(adminToken), map[string]any{
		"title": "Food",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[domain.Consumable]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "Food", envelope.Data.Title)
	assert.Equal(t, "food", envelope.Data.Slug)

	// Same title again collides on the slug.
	resp = ts.api.Post("/api/v1/consumables", authHeader(adminToken), map[string]any{
		"title": "Food",
	})
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestCreateConsumable_EmptyTitle(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.setupRootUser(t)

	resp := ts.api.Post("/api/v1/consumables", authHeader(token), map[string]any{
		"title": "",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())

	var envelope testEnvelope[any]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	assert.Equal(t, "VALIDATION", envelope.Error.Code)
}

func TestCatalogTree(t *testing.T) {
	ts := setupTestServer(t)
	ts.setupRootUser(t)
	ts.seedProduct(t, "Comte")

	memberToken := ts.memberToken(t)

	// Reads are open to any authenticated user.
	resp := ts.api.Get("/api/v1/catalog/tree", authHeader(memberToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[[]*service.TreeConsumable]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "Food", envelope.Data[0].Title)

	resp = ts.api.Get("/api/v1/catalog/tree")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestProductLifecycle_API(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.setupRootUser(t)
	ctx := context.Background()

	consumable, err := ts.catalog.CreateConsumable(ctx, service.CreateConsumableInput{Title: "Food"})
	require.NoError(t, err)
	assortment, err := ts.catalog.CreateAssortment(ctx, service.CreateAssortmentInput{
		ConsumableID: consumable.ID, Title: "Fresh products",
	})
	require.NoError(t, err)
	category, err := ts.catalog.CreateCategory(ctx, service.CreateCategoryInput{
		AssortmentID: assortment.ID, Title: "Cheese",
	})
	require.NoError(t, err)

	resp := ts.api.Post("/api/v1/products", authHeader(token), map[string]any{
		"category_id": category.ID,
		"title":       "Comte",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var created testEnvelope[domain.Product]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	productID := created.Data.ID
	assert.Equal(t, "comte", created.Data.Slug)

	// Fetch resolves the full ancestry.
	resp = ts.api.Get("/api/v1/products/"+productID, authHeader(token))
	require.Equal(t, http.StatusOK, resp.Code)

	var fetched testEnvelope[domain.ProductHierarchy]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &fetched))
	assert.Equal(t, "Cheese", fetched.Data.Category.Title)
	assert.Equal(t, "Food", fetched.Data.Consumable.Title)

	resp = ts.api.Delete("/api/v1/products/"+productID, authHeader(token))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/products/"+productID, authHeader(token))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
