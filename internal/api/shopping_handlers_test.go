package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atoumapp/atoum-server/internal/domain"
	"github.com/atoumapp/atoum-server/internal/service"
	"github.com/atoumapp/atoum-server/internal/store"
)

// seedProduct creates a minimal catalog branch and returns a product id.
func (ts *testServer) seedProduct(t *testing.T, title string) string {
	t.Helper()
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
	product, err := ts.catalog.CreateProduct(ctx, service.CreateProductInput{
		CategoryID: category.ID, Title: title,
	})
	require.NoError(t, err)

	return product.ID
}

// createShopping creates a list through the API and returns its id.
func (ts *testServer) createShopping(t *testing.T, token, title string) string {
	t.Helper()

	resp := ts.api.Post("/api/v1/shoppings", authHeader(token), map[string]any{
		"title": title,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[domain.Shopping]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data.ID)

	return envelope.Data.ID
}

// openShopping marks the list as the session's working list.
func (ts *testServer) openShopping(t *testing.T, token, shoppingID string) {
	t.Helper()

	resp := ts.api.Post("/api/v1/shoppings/"+shoppingID+"/open", authHeader(token), map[string]any{})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
}

func TestShoppingItemFlow(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.setupRootUser(t)
	productID := ts.seedProduct(t, "Comte")
	shoppingID := ts.createShopping(t, token, "Weekly groceries")

	// Item mutations on a list that is not opened read as not-found.
	resp := ts.api.Post("/api/v1/shoppings/"+shoppingID+"/items", authHeader(token), map[string]any{
		"product_id": productID,
		"quantity":   2,
	})
	assert.Equal(t, http.StatusNotFound, resp.Code, resp.Body.String())

	ts.openShopping(t, token, shoppingID)

	// Addition.
	resp = ts.api.Post("/api/v1/shoppings/"+shoppingID+"/items", authHeader(token), map[string]any{
		"product_id": productID,
		"quantity":   2,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var result testEnvelope[service.ItemResult]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	assert.Equal(t, domain.ItemOperationAddition, result.Data.Operation)
	require.NotNil(t, result.Data.Item)
	assert.Equal(t, 2, result.Data.Item.Quantity)
	assert.False(t, result.Data.ListDone)

	// Edition replaces the quantity in place.
	resp = ts.api.Post("/api/v1/shoppings/"+shoppingID+"/items", authHeader(token), map[string]any{
		"product_id": productID,
		"quantity":   5,
	})
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	assert.Equal(t, domain.ItemOperationEdition, result.Data.Operation)
	assert.Equal(t, 5, result.Data.Item.Quantity)

	// A sub-1 quantity is rejected as a no-op, not an error. The rejected
	// response carries no item, so unmarshal into a fresh envelope.
	resp = ts.api.Post("/api/v1/shoppings/"+shoppingID+"/items", authHeader(token), map[string]any{
		"product_id": productID,
		"quantity":   0,
	})
	require.Equal(t, http.StatusOK, resp.Code)
	var rejected testEnvelope[service.ItemResult]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &rejected))
	assert.Equal(t, domain.ItemOperationRejected, rejected.Data.Operation)
	assert.Nil(t, rejected.Data.Item)
	assert.False(t, rejected.Data.DoneChanged)

	// Checking the only item completes the list.
	resp = ts.api.Patch("/api/v1/shoppings/"+shoppingID+"/items/"+productID+"/done", authHeader(token), map[string]any{
		"done": true,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	assert.Equal(t, domain.ItemOperationToggle, result.Data.Operation)
	assert.True(t, result.Data.ListDone)
	assert.True(t, result.Data.DoneChanged)

	var status testEnvelope[domain.StatusRecord]
	resp = ts.api.Get("/api/v1/shoppings/"+shoppingID+"/status", authHeader(token))
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &status))
	assert.Equal(t, domain.ShoppingStatusDone, status.Data.Status)
	assert.Equal(t, 1, status.Data.Dones)
	assert.Equal(t, 0, status.Data.Opens)

	// Unchecking reopens it.
	resp = ts.api.Patch("/api/v1/shoppings/"+shoppingID+"/items/"+productID+"/done", authHeader(token), map[string]any{
		"done": false,
	})
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	assert.False(t, result.Data.ListDone)
	assert.True(t, result.Data.DoneChanged)

	// Items listing resolves the product's ancestry.
	resp = ts.api.Get("/api/v1/shoppings/"+shoppingID+"/items", authHeader(token))
	require.Equal(t, http.StatusOK, resp.Code)

	var items testEnvelope[[]*store.ShoppingItemDetail]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &items))
	require.Len(t, items.Data, 1)
	assert.Equal(t, "Comte", items.Data[0].Product.Product.Title)

	// Deletion returns a snapshot of the removed line.
	resp = ts.api.Delete("/api/v1/shoppings/"+shoppingID+"/items/"+productID, authHeader(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	assert.Equal(t, domain.ItemOperationDeletion, result.Data.Operation)
	require.NotNil(t, result.Data.Item)
	assert.Equal(t, productID, result.Data.Item.ProductID)
}

func TestToggleItem_MissingDoneFlag(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.setupRootUser(t)
	productID := ts.seedProduct(t, "Brie")
	shoppingID := ts.createShopping(t, token, "")
	ts.openShopping(t, token, shoppingID)

	resp := ts.api.Post("/api/v1/shoppings/"+shoppingID+"/items", authHeader(token), map[string]any{
		"product_id": productID,
		"quantity":   1,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	// The target state must be explicit.
	resp = ts.api.Patch("/api/v1/shoppings/"+shoppingID+"/items/"+productID+"/done", authHeader(token), map[string]any{})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestSelectionLifecycle(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.setupRootUser(t)
	shoppingID := ts.createShopping(t, token, "First")
	otherID := ts.createShopping(t, token, "Second")

	// Nothing opened yet.
	resp := ts.api.Get("/api/v1/selection", authHeader(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var selection testEnvelope[*domain.Inventory]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &selection))
	assert.Nil(t, selection.Data)

	// Open with a redirect target.
	resp = ts.api.Post("/api/v1/shoppings/"+shoppingID+"/open", authHeader(token), map[string]any{
		"next": "/shoppings/" + shoppingID,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var opened testEnvelope[OpenShoppingResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &opened))
	assert.Equal(t, "/shoppings/"+shoppingID, opened.Data.Redirect)

	resp = ts.api.Get("/api/v1/selection", authHeader(token))
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &selection))
	require.NotNil(t, selection.Data)
	assert.Equal(t, shoppingID, selection.Data.Shopping.ID)

	// Opening another list replaces the selection.
	ts.openShopping(t, token, otherID)
	resp = ts.api.Get("/api/v1/selection", authHeader(token))
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &selection))
	require.NotNil(t, selection.Data)
	assert.Equal(t, otherID, selection.Data.Shopping.ID)

	// Close clears it; closing again is a no-op.
	resp = ts.api.Post("/api/v1/selection/close", authHeader(token), map[string]any{})
	require.Equal(t, http.StatusOK, resp.Code)
	resp = ts.api.Post("/api/v1/selection/close", authHeader(token), map[string]any{})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/selection", authHeader(token))
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &selection))
	assert.Nil(t, selection.Data)
}

func TestDeleteOpenedShopping_ClearsSelection(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.setupRootUser(t)
	shoppingID := ts.createShopping(t, token, "Doomed")
	ts.openShopping(t, token, shoppingID)

	resp := ts.api.Delete("/api/v1/shoppings/"+shoppingID, authHeader(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	// The stale selection resolves to nothing instead of erroring.
	resp = ts.api.Get("/api/v1/selection", authHeader(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var selection testEnvelope[*domain.Inventory]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &selection))
	assert.Nil(t, selection.Data)
}
