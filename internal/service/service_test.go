package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/stockit/inventory-service/internal/errors"
	"github.com/stockit/inventory-service/internal/store"
)

// mockProductStore is a single-record in-memory implementation of the
// ProductStore interface. A forced error takes precedence over all behavior.
type mockProductStore struct {
	product *store.Product
	error   error
}

func (m *mockProductStore) FindBySKU(_ context.Context, sku string) (*store.Product, error) {
	if m.error != nil {
		return nil, m.error
	}
	if m.product == nil || m.product.SKU != sku {
		return nil, perrors.ErrProductNotFound
	}
	p := *m.product
	return &p, nil
}

func (m *mockProductStore) FindAll(_ context.Context) ([]store.Product, error) {
	if m.error != nil {
		return nil, m.error
	}
	if m.product == nil {
		return []store.Product{}, nil
	}
	return []store.Product{*m.product}, nil
}

func (m *mockProductStore) Insert(_ context.Context, params store.InsertParams) (*store.Product, error) {
	if m.error != nil {
		return nil, m.error
	}
	if m.product != nil && m.product.SKU == params.SKU {
		return nil, perrors.ErrProductExists
	}
	m.product = &store.Product{
		ID:                uuid.New(),
		Name:              params.Name,
		SKU:               params.SKU,
		Quantity:          params.Quantity,
		Price:             params.Price,
		Description:       params.Description,
		ThresholdQuantity: params.ThresholdQuantity,
		Status:            store.StatusActive,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	p := *m.product
	return &p, nil
}

func (m *mockProductStore) Update(_ context.Context, sku string, patch store.UpdateParams) (*store.Product, error) {
	if m.error != nil {
		return nil, m.error
	}
	if m.product == nil || m.product.SKU != sku {
		return nil, perrors.ErrProductNotFound
	}
	if patch.Name != nil {
		m.product.Name = *patch.Name
	}
	if patch.Quantity != nil {
		m.product.Quantity = *patch.Quantity
	}
	if patch.Price != nil {
		m.product.Price = *patch.Price
	}
	if patch.Description != nil {
		m.product.Description = *patch.Description
	}
	if patch.ThresholdQuantity != nil {
		m.product.ThresholdQuantity = *patch.ThresholdQuantity
	}
	p := *m.product
	return &p, nil
}

func (m *mockProductStore) AdjustQuantity(_ context.Context, sku string, delta int64) (*store.Product, error) {
	if m.error != nil {
		return nil, m.error
	}
	if m.product == nil || m.product.SKU != sku {
		return nil, perrors.ErrProductNotFound
	}
	if m.product.Quantity+delta < 0 {
		return nil, perrors.ErrInsufficientQuantity
	}
	m.product.Quantity += delta
	p := *m.product
	return &p, nil
}

func (m *mockProductStore) SetStatus(_ context.Context, sku string, status store.Status) (*store.Product, error) {
	if m.error != nil {
		return nil, m.error
	}
	if m.product == nil || m.product.SKU != sku {
		return nil, perrors.ErrProductNotFound
	}
	m.product.Status = status
	p := *m.product
	return &p, nil
}

func (m *mockProductStore) DeleteBySKU(_ context.Context, sku string) error {
	if m.error != nil {
		return m.error
	}
	if m.product == nil || m.product.SKU != sku {
		return perrors.ErrProductNotFound
	}
	m.product = nil
	return nil
}

// mockNotifier records the products it was asked to evaluate.
type mockNotifier struct {
	notified chan store.Product
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{notified: make(chan store.Product, 1)}
}

func (m *mockNotifier) NotifyIfLowStock(_ context.Context, product store.Product) error {
	m.notified <- product
	return nil
}

func testLogger() *slog.Logger {
	return slog.Default()
}

func newTestService(mockStore *mockProductStore) *Service {
	return NewService(mockStore, newMockNotifier(), nil, testLogger())
}

func widget(quantity int64) *store.Product {
	return &store.Product{
		ID:                uuid.New(),
		Name:              "Widget",
		SKU:               "A1",
		Quantity:          quantity,
		Price:             5.0,
		ThresholdQuantity: 2,
		Status:            store.StatusActive,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
}

func createDto(sku string) ProductCreateDto {
	quantity := int64(10)
	price := 5.0
	return ProductCreateDto{
		Name:     "Widget",
		SKU:      sku,
		Quantity: &quantity,
		Price:    &price,
	}
}

func Test_ProductService_Create(t *testing.T) {
	ErrStore := errors.New("store error")
	testCases := []struct {
		name        string
		mockStore   *mockProductStore
		dto         ProductCreateDto
		expectError error
	}{
		{
			name:        "Success - product created",
			mockStore:   &mockProductStore{},
			dto:         createDto("A1"),
			expectError: nil,
		},
		{
			name:        "Error - SKU already exists",
			mockStore:   &mockProductStore{product: widget(10)},
			dto:         createDto("A1"),
			expectError: perrors.ErrProductExists,
		},
		{
			name:        "Error - store failure",
			mockStore:   &mockProductStore{error: ErrStore},
			dto:         createDto("A1"),
			expectError: ErrStore,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service := newTestService(tc.mockStore)
			// when
			err := service.Create(context.Background(), tc.dto)
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, tc.mockStore.product)
			assert.Equal(t, store.StatusActive, tc.mockStore.product.Status)
			assert.Equal(t, int64(10), tc.mockStore.product.Quantity)
		})
	}
}

func Test_ProductService_Create_TrimsFields(t *testing.T) {
	// given
	mockStore := &mockProductStore{}
	service := newTestService(mockStore)
	quantity := int64(0)
	price := 0.0
	dto := ProductCreateDto{
		Name:        "  Widget  ",
		SKU:         " A1 ",
		Quantity:    &quantity,
		Price:       &price,
		Description: "  a widget  ",
	}
	// when
	err := service.Create(context.Background(), dto)
	// then
	require.NoError(t, err)
	assert.Equal(t, "Widget", mockStore.product.Name)
	assert.Equal(t, "A1", mockStore.product.SKU)
	assert.Equal(t, "a widget", mockStore.product.Description)
	// a provided zero quantity is a valid out-of-stock product
	assert.Equal(t, int64(0), mockStore.product.Quantity)
}

func Test_ProductService_FindBySKU(t *testing.T) {
	testCases := []struct {
		name        string
		mockStore   *mockProductStore
		sku         string
		expectError error
	}{
		{
			name:        "Success - product found",
			mockStore:   &mockProductStore{product: widget(10)},
			sku:         "A1",
			expectError: nil,
		},
		{
			name:        "Error - product not found",
			mockStore:   &mockProductStore{},
			sku:         "A1",
			expectError: perrors.ErrProductNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service := newTestService(tc.mockStore)
			// when
			found, err := service.FindBySKU(context.Background(), tc.sku)
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, found)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "A1", found.SKU)
			assert.Equal(t, "Widget", found.Name)
			assert.Equal(t, int64(10), found.Quantity)
			assert.Equal(t, "active", found.Status)
		})
	}
}

func Test_ProductService_FindAll(t *testing.T) {
	ErrStore := errors.New("store error")
	testCases := []struct {
		name          string
		mockStore     *mockProductStore
		expectedCount int
		expectError   error
	}{
		{
			name:          "Success - products found",
			mockStore:     &mockProductStore{product: widget(10)},
			expectedCount: 1,
		},
		{
			name:          "Success - no products",
			mockStore:     &mockProductStore{},
			expectedCount: 0,
		},
		{
			name:        "Error - store failure",
			mockStore:   &mockProductStore{error: ErrStore},
			expectError: ErrStore,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service := newTestService(tc.mockStore)
			// when
			list, err := service.FindAll(context.Background())
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				return
			}
			require.NoError(t, err)
			assert.Len(t, list, tc.expectedCount)
		})
	}
}

func Test_ProductService_Update(t *testing.T) {
	newName := "Gadget"
	testCases := []struct {
		name        string
		mockStore   *mockProductStore
		sku         string
		patch       ProductUpdateDto
		expectError error
	}{
		{
			name:      "Success - name updated",
			mockStore: &mockProductStore{product: widget(10)},
			sku:       "A1",
			patch:     ProductUpdateDto{Name: &newName},
		},
		{
			name:        "Error - product not found",
			mockStore:   &mockProductStore{},
			sku:         "A1",
			patch:       ProductUpdateDto{Name: &newName},
			expectError: perrors.ErrProductNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service := newTestService(tc.mockStore)
			// when
			err := service.Update(context.Background(), tc.sku, tc.patch)
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Gadget", tc.mockStore.product.Name)
			// untouched fields keep their values
			assert.Equal(t, int64(10), tc.mockStore.product.Quantity)
		})
	}
}

func Test_ProductService_DeleteBySKU(t *testing.T) {
	// given
	mockStore := &mockProductStore{product: widget(10)}
	service := newTestService(mockStore)
	// when
	err := service.DeleteBySKU(context.Background(), "A1")
	// then
	require.NoError(t, err)
	assert.Nil(t, mockStore.product)

	// deleting twice yields not found, never a silent success
	err = service.DeleteBySKU(context.Background(), "A1")
	assert.ErrorIs(t, err, perrors.ErrProductNotFound)
}

func Test_ProductService_Consume(t *testing.T) {
	testCases := []struct {
		name             string
		mockStore        *mockProductStore
		sku              string
		amount           int64
		expectError      error
		expectedQuantity int64
	}{
		{
			name:             "Success - quantity decremented",
			mockStore:        &mockProductStore{product: widget(10)},
			sku:              "A1",
			amount:           3,
			expectedQuantity: 7,
		},
		{
			name:             "Error - insufficient quantity leaves stock unchanged",
			mockStore:        &mockProductStore{product: widget(9)},
			sku:              "A1",
			amount:           20,
			expectError:      perrors.ErrInsufficientQuantity,
			expectedQuantity: 9,
		},
		{
			name:        "Error - zero amount",
			mockStore:   &mockProductStore{product: widget(10)},
			sku:         "A1",
			amount:      0,
			expectError: perrors.ErrInvalidAmount,
		},
		{
			name:        "Error - negative amount",
			mockStore:   &mockProductStore{product: widget(10)},
			sku:         "A1",
			amount:      -5,
			expectError: perrors.ErrInvalidAmount,
		},
		{
			name:        "Error - product not found",
			mockStore:   &mockProductStore{},
			sku:         "A1",
			amount:      3,
			expectError: perrors.ErrProductNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service := newTestService(tc.mockStore)
			// when
			err := service.Consume(context.Background(), tc.sku, tc.amount)
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				if tc.mockStore.product != nil && tc.expectedQuantity != 0 {
					assert.Equal(t, tc.expectedQuantity, tc.mockStore.product.Quantity)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedQuantity, tc.mockStore.product.Quantity)
		})
	}
}

func Test_ProductService_Consume_InvokesNotifier(t *testing.T) {
	// given
	mockStore := &mockProductStore{product: widget(3)}
	notifier := newMockNotifier()
	service := NewService(mockStore, notifier, nil, testLogger())
	// when
	err := service.Consume(context.Background(), "A1", 1)
	// then
	require.NoError(t, err)
	select {
	case product := <-notifier.notified:
		assert.Equal(t, "A1", product.SKU)
		assert.Equal(t, int64(2), product.Quantity)
	case <-time.After(2 * time.Second):
		t.Fatal("notifier was not invoked after consume")
	}
}

func Test_ProductService_Restock(t *testing.T) {
	testCases := []struct {
		name             string
		mockStore        *mockProductStore
		sku              string
		amount           int64
		expectError      error
		expectedQuantity int64
	}{
		{
			name:             "Success - quantity incremented",
			mockStore:        &mockProductStore{product: widget(7)},
			sku:              "A1",
			amount:           2,
			expectedQuantity: 9,
		},
		{
			name:        "Error - zero amount",
			mockStore:   &mockProductStore{product: widget(7)},
			sku:         "A1",
			amount:      0,
			expectError: perrors.ErrInvalidAmount,
		},
		{
			name:        "Error - product not found",
			mockStore:   &mockProductStore{},
			sku:         "A1",
			amount:      2,
			expectError: perrors.ErrProductNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service := newTestService(tc.mockStore)
			// when
			err := service.Restock(context.Background(), tc.sku, tc.amount)
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedQuantity, tc.mockStore.product.Quantity)
		})
	}
}

func Test_ProductService_RestockConsumeRoundTrip(t *testing.T) {
	// given
	mockStore := &mockProductStore{product: widget(10)}
	service := newTestService(mockStore)
	// when: restock then consume the same amount
	require.NoError(t, service.Restock(context.Background(), "A1", 4))
	require.NoError(t, service.Consume(context.Background(), "A1", 4))
	// then: quantity returns to its original value
	assert.Equal(t, int64(10), mockStore.product.Quantity)
}

func Test_ProductService_StatusTransitions(t *testing.T) {
	// given
	mockStore := &mockProductStore{product: widget(10)}
	service := newTestService(mockStore)
	ctx := context.Background()

	// when / then: deactivate then reactivate restores active
	require.NoError(t, service.Deactivate(ctx, "A1"))
	assert.Equal(t, store.StatusInactive, mockStore.product.Status)

	require.NoError(t, service.Reactivate(ctx, "A1"))
	assert.Equal(t, store.StatusActive, mockStore.product.Status)

	// reactivating an already-active product is a no-op success
	require.NoError(t, service.Reactivate(ctx, "A1"))
	assert.Equal(t, store.StatusActive, mockStore.product.Status)
}

func Test_ProductService_StatusTransitions_NotFound(t *testing.T) {
	service := newTestService(&mockProductStore{})

	assert.ErrorIs(t, service.Deactivate(context.Background(), "A1"), perrors.ErrProductNotFound)
	assert.ErrorIs(t, service.Reactivate(context.Background(), "A1"), perrors.ErrProductNotFound)
}
