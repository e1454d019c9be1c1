package checkout_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/tg-storefront/internal/cart"
	"github.com/vasiliy-maslov/tg-storefront/internal/checkout"
	"github.com/vasiliy-maslov/tg-storefront/internal/platform"
)

const userID int64 = 2006308022

var errUpstream = errors.New("upstream unavailable")

type MockProfileStore struct {
	mock.Mock
}

func (m *MockProfileStore) GetClient(ctx context.Context, userID int64) (checkout.ClientProfile, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(checkout.ClientProfile), args.Error(1)
}

func (m *MockProfileStore) UpdateClient(ctx context.Context, update checkout.ClientUpdate) error {
	args := m.Called(ctx, update)
	return args.Error(0)
}

type MockOrderSubmitter struct {
	mock.Mock
}

func (m *MockOrderSubmitter) AddOrder(ctx context.Context, order checkout.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

type MockCartView struct {
	mock.Mock
}

func (m *MockCartView) Refresh(ctx context.Context, userID int64) (cart.Cart, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(cart.Cart), args.Error(1)
}

type mocks struct {
	profiles *MockProfileStore
	orders   *MockOrderSubmitter
	carts    *MockCartView
}

func setup() (mocks, checkout.Service) {
	m := mocks{
		profiles: new(MockProfileStore),
		orders:   new(MockOrderSubmitter),
		carts:    new(MockCartView),
	}
	return m, checkout.NewService(m.profiles, m.orders, m.carts, time.Second)
}

var profile = checkout.ClientProfile{OrgName: "ТОО Ромашка", ClientCity: "Алматы", Address: "ул. Абая 1", Phone: "+77010000000"}

func TestCheckoutService_RequestClientProfile(t *testing.T) {
	m, svc := setup()
	m.profiles.On("GetClient", mock.Anything, userID).Return(profile, nil).Once()

	got, err := svc.RequestClientProfile(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, profile, got)
	m.profiles.AssertExpectations(t)
}

func TestCheckoutService_RequestClientProfile_Failure(t *testing.T) {
	m, svc := setup()
	m.profiles.On("GetClient", mock.Anything, userID).Return(checkout.ClientProfile{}, errUpstream).Once()

	_, err := svc.RequestClientProfile(context.Background(), userID)
	require.ErrorIs(t, err, errUpstream)
}

func TestCheckoutService_RequestClientProfile_MissingIdentity(t *testing.T) {
	m, svc := setup()

	_, err := svc.RequestClientProfile(context.Background(), 0)
	require.ErrorIs(t, err, cart.ErrMissingIdentity)
	m.profiles.AssertNotCalled(t, "GetClient", mock.Anything, mock.Anything)
}

func TestCheckoutService_SubmitOrder_Success(t *testing.T) {
	m, svc := setup()
	current := cart.Cart{Goods: []cart.LineItem{drillItem}, ArendaGoods: []cart.LineItem{craneItem}}
	wantText := checkout.BuildOrderTranscript(current.Goods, current.ArendaGoods, profile, "")

	m.carts.On("Refresh", mock.Anything, userID).Return(current, nil).Once()
	m.profiles.On("UpdateClient", mock.Anything, checkout.ClientUpdate{
		UserID: userID, OrgName: profile.OrgName, ClientCity: profile.ClientCity, Address: profile.Address, Phone: profile.Phone,
	}).Return(nil).Once()
	m.orders.On("AddOrder", mock.Anything, checkout.Order{UserID: userID, OrderText: wantText}).Return(nil).Once()
	m.carts.On("Refresh", mock.Anything, userID).Return(cart.Cart{}, nil).Once()

	chrome := platform.NewDirectives()
	text, err := svc.SubmitOrder(context.Background(), userID, profile, "", chrome)
	require.NoError(t, err)
	assert.Equal(t, wantText, text)
	assert.Equal(t, []platform.Command{{Action: platform.ActionClose}}, chrome.Commands())

	m.profiles.AssertExpectations(t)
	m.orders.AssertExpectations(t)
	m.carts.AssertExpectations(t)
}

func TestCheckoutService_SubmitOrder_ProfileFailureDoesNotBlock(t *testing.T) {
	m, svc := setup()
	current := cart.Cart{Goods: []cart.LineItem{drillItem}}

	m.carts.On("Refresh", mock.Anything, userID).Return(current, nil).Once()
	m.profiles.On("UpdateClient", mock.Anything, mock.AnythingOfType("checkout.ClientUpdate")).Return(errUpstream).Once()
	m.orders.On("AddOrder", mock.Anything, mock.AnythingOfType("checkout.Order")).Return(nil).Once()
	m.carts.On("Refresh", mock.Anything, userID).Return(cart.Cart{}, nil).Once()

	_, err := svc.SubmitOrder(context.Background(), userID, profile, "", platform.Nop{})
	require.NoError(t, err)
	m.orders.AssertExpectations(t)
}

func TestCheckoutService_SubmitOrder_OrderFailureKeepsAppOpen(t *testing.T) {
	m, svc := setup()
	current := cart.Cart{Goods: []cart.LineItem{drillItem}}

	m.carts.On("Refresh", mock.Anything, userID).Return(current, nil).Once()
	m.profiles.On("UpdateClient", mock.Anything, mock.AnythingOfType("checkout.ClientUpdate")).Return(nil).Once()
	m.orders.On("AddOrder", mock.Anything, mock.AnythingOfType("checkout.Order")).Return(errUpstream).Once()
	m.carts.On("Refresh", mock.Anything, userID).Return(current, nil).Once()

	chrome := platform.NewDirectives()
	_, err := svc.SubmitOrder(context.Background(), userID, profile, "", chrome)
	require.ErrorIs(t, err, errUpstream)
	assert.Empty(t, chrome.Commands())
	m.carts.AssertExpectations(t)
}

func TestCheckoutService_SubmitOrder_RefreshFailureIsLogged(t *testing.T) {
	m, svc := setup()
	current := cart.Cart{ArendaGoods: []cart.LineItem{craneItem}}

	m.carts.On("Refresh", mock.Anything, userID).Return(current, nil).Once()
	m.profiles.On("UpdateClient", mock.Anything, mock.AnythingOfType("checkout.ClientUpdate")).Return(nil).Once()
	m.orders.On("AddOrder", mock.Anything, mock.AnythingOfType("checkout.Order")).Return(nil).Once()
	m.carts.On("Refresh", mock.Anything, userID).Return(cart.Cart{}, errUpstream).Once()

	_, err := svc.SubmitOrder(context.Background(), userID, profile, "комментарий", platform.Nop{})
	require.NoError(t, err)
}

func TestCheckoutService_SubmitOrder_EmptyCart(t *testing.T) {
	m, svc := setup()
	m.carts.On("Refresh", mock.Anything, userID).Return(cart.Cart{Goods: []cart.LineItem{}, ArendaGoods: []cart.LineItem{}}, nil).Once()

	_, err := svc.SubmitOrder(context.Background(), userID, profile, "", platform.Nop{})
	require.ErrorIs(t, err, checkout.ErrEmptyCart)
	m.orders.AssertNotCalled(t, "AddOrder", mock.Anything, mock.Anything)
}

func TestCheckoutService_SubmitOrder_LoadFailureSendsNothing(t *testing.T) {
	m, svc := setup()
	m.carts.On("Refresh", mock.Anything, userID).Return(cart.Cart{}, errUpstream).Once()

	chrome := platform.NewDirectives()
	_, err := svc.SubmitOrder(context.Background(), userID, profile, "", chrome)
	require.ErrorIs(t, err, errUpstream)
	assert.Empty(t, chrome.Commands())
	m.profiles.AssertNotCalled(t, "UpdateClient", mock.Anything, mock.Anything)
	m.orders.AssertNotCalled(t, "AddOrder", mock.Anything, mock.Anything)
	m.carts.AssertExpectations(t)
}

func TestCheckoutService_SubmitOrder_UsesStoredPrices(t *testing.T) {
	m, svc := setup()
	stored := cart.Cart{Goods: []cart.LineItem{drillItem}, ArendaGoods: []cart.LineItem{}}
	wantText := checkout.BuildOrderTranscript(stored.Goods, stored.ArendaGoods, profile, "")

	var sent checkout.Order
	m.carts.On("Refresh", mock.Anything, userID).Return(stored, nil).Once()
	m.profiles.On("UpdateClient", mock.Anything, mock.AnythingOfType("checkout.ClientUpdate")).Return(nil).Once()
	m.orders.On("AddOrder", mock.Anything, mock.AnythingOfType("checkout.Order")).
		Run(func(args mock.Arguments) { sent = args.Get(1).(checkout.Order) }).
		Return(nil).Once()
	m.carts.On("Refresh", mock.Anything, userID).Return(cart.Cart{}, nil).Once()

	text, err := svc.SubmitOrder(context.Background(), userID, profile, "", platform.Nop{})
	require.NoError(t, err)
	assert.Equal(t, wantText, text)
	assert.Equal(t, wantText, sent.OrderText)
	assert.Contains(t, sent.OrderText, "по цене 1000 тенге")
	assert.NotContains(t, sent.OrderText, "по цене 1 тенге")
	m.carts.AssertNumberOfCalls(t, "Refresh", 2)
}
