package http_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/vasiliy-maslov/tg-storefront/internal/cart"
	"github.com/vasiliy-maslov/tg-storefront/internal/catalog"
	"github.com/vasiliy-maslov/tg-storefront/internal/checkout"
	"github.com/vasiliy-maslov/tg-storefront/internal/platform"
)

type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) Add(ctx context.Context, userID int64, good catalog.Good, sel cart.Selection) (cart.LineItem, error) {
	args := m.Called(ctx, userID, good, sel)
	return args.Get(0).(cart.LineItem), args.Error(1)
}

func (m *MockCartService) UpdateQuantity(ctx context.Context, userID, goodID, quantity int64) (cart.LineItem, error) {
	args := m.Called(ctx, userID, goodID, quantity)
	return args.Get(0).(cart.LineItem), args.Error(1)
}

func (m *MockCartService) UpdateArendaTime(ctx context.Context, userID, goodID, months int64) (cart.LineItem, error) {
	args := m.Called(ctx, userID, goodID, months)
	return args.Get(0).(cart.LineItem), args.Error(1)
}

func (m *MockCartService) SetDelivery(ctx context.Context, userID, goodID int64, enabled bool) (cart.LineItem, error) {
	args := m.Called(ctx, userID, goodID, enabled)
	return args.Get(0).(cart.LineItem), args.Error(1)
}

func (m *MockCartService) SetContract(ctx context.Context, userID, goodID int64, signed bool) (cart.LineItem, error) {
	args := m.Called(ctx, userID, goodID, signed)
	return args.Get(0).(cart.LineItem), args.Error(1)
}

func (m *MockCartService) Delete(ctx context.Context, userID, goodID int64) error {
	args := m.Called(ctx, userID, goodID)
	return args.Error(0)
}

func (m *MockCartService) Refresh(ctx context.Context, userID int64) (cart.Cart, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(cart.Cart), args.Error(1)
}

func (m *MockCartService) Snapshot(userID int64) cart.Cart {
	args := m.Called(userID)
	return args.Get(0).(cart.Cart)
}

type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) RequestClientProfile(ctx context.Context, userID int64) (checkout.ClientProfile, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(checkout.ClientProfile), args.Error(1)
}

func (m *MockCheckoutService) SubmitOrder(ctx context.Context, userID int64, profile checkout.ClientProfile, comment string, chrome platform.Chrome) (string, error) {
	args := m.Called(ctx, userID, profile, comment, chrome)
	return args.String(0), args.Error(1)
}

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Category), args.Error(1)
}

func (m *MockCatalogService) ListCities(ctx context.Context) ([]catalog.City, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.City), args.Error(1)
}

func (m *MockCatalogService) ListGoods(ctx context.Context, categoryID, cityID int64) ([]catalog.Good, error) {
	args := m.Called(ctx, categoryID, cityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Good), args.Error(1)
}

func (m *MockCatalogService) FindGood(ctx context.Context, categoryID, cityID, goodID int64) (catalog.Good, error) {
	args := m.Called(ctx, categoryID, cityID, goodID)
	return args.Get(0).(catalog.Good), args.Error(1)
}

func (m *MockCatalogService) InCartBadges(ctx context.Context, userID int64) (map[int64]catalog.Badge, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]catalog.Badge), args.Error(1)
}
