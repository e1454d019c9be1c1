package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/tg-storefront/internal/cart"
	"github.com/vasiliy-maslov/tg-storefront/internal/metric"
	"github.com/vasiliy-maslov/tg-storefront/internal/platform"
)

var ErrEmptyCart = errors.New("cart is empty")

type ClientProfile struct {
	OrgName    string `json:"org_name"`
	ClientCity string `json:"client_city"`
	Address    string `json:"address"`
	Phone      string `json:"phone"`
}

// ClientUpdate is the body of the upstream client/update call.
type ClientUpdate struct {
	UserID     int64  `json:"user_id"`
	OrgName    string `json:"org_name"`
	ClientCity string `json:"client_city"`
	Address    string `json:"address"`
	Phone      string `json:"phone"`
	IsContract bool   `json:"is_contract"`
}

type Order struct {
	UserID    int64  `json:"user_id"`
	OrderText string `json:"order_text"`
}

type ProfileStore interface {
	GetClient(ctx context.Context, userID int64) (ClientProfile, error)
	UpdateClient(ctx context.Context, update ClientUpdate) error
}

type OrderSubmitter interface {
	AddOrder(ctx context.Context, order Order) error
}

// CartView is the part of the cart reconciler checkout relies on.
type CartView interface {
	Refresh(ctx context.Context, userID int64) (cart.Cart, error)
}

type Service interface {
	RequestClientProfile(ctx context.Context, userID int64) (ClientProfile, error)
	SubmitOrder(ctx context.Context, userID int64, profile ClientProfile, comment string, chrome platform.Chrome) (string, error)
}

type service struct {
	profiles ProfileStore
	orders   OrderSubmitter
	carts    CartView
	timeout  time.Duration
}

func NewService(profiles ProfileStore, orders OrderSubmitter, carts CartView, timeout time.Duration) Service {
	return &service{
		profiles: profiles,
		orders:   orders,
		carts:    carts,
		timeout:  timeout,
	}
}

func (s *service) RequestClientProfile(ctx context.Context, userID int64) (ClientProfile, error) {
	if userID == 0 {
		return ClientProfile{}, cart.ErrMissingIdentity
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	profile, err := s.profiles.GetClient(ctx, userID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("checkout: failed to load client profile")
		return ClientProfile{}, fmt.Errorf("failed to load client profile: %w", err)
	}

	return profile, nil
}

// SubmitOrder places the order for the user's cart as the Cart Store holds it. The profile update
// is best-effort; the cart is refreshed again afterwards whatever the outcome. The app is closed
// only after the order is accepted so a failed submission keeps the cart and the form.
func (s *service) SubmitOrder(ctx context.Context, userID int64, profile ClientProfile, comment string, chrome platform.Chrome) (string, error) {
	if userID == 0 {
		return "", cart.ErrMissingIdentity
	}

	snapshot, err := s.carts.Refresh(ctx, userID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("checkout: failed to load cart before order")
		return "", fmt.Errorf("failed to load cart before order: %w", err)
	}
	if snapshot.IsEmpty() {
		return "", ErrEmptyCart
	}

	transcript := BuildOrderTranscript(snapshot.Goods, snapshot.ArendaGoods, profile, comment)

	update := ClientUpdate{
		UserID:     userID,
		OrgName:    profile.OrgName,
		ClientCity: profile.ClientCity,
		Address:    profile.Address,
		Phone:      profile.Phone,
	}
	if err := s.call(ctx, func(ctx context.Context) error { return s.profiles.UpdateClient(ctx, update) }); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("checkout: failed to update client profile")
	}

	orderErr := s.call(ctx, func(ctx context.Context) error {
		return s.orders.AddOrder(ctx, Order{UserID: userID, OrderText: transcript})
	})
	if orderErr != nil {
		log.Error().Err(orderErr).Int64("user_id", userID).Msg("checkout: failed to submit order")
		metric.OrdersTotal.WithLabelValues("error").Inc()
	} else {
		metric.OrdersTotal.WithLabelValues("success").Inc()
		log.Info().Int64("user_id", userID).Int64("grand_total", snapshot.GrandTotal()).Msg("checkout: order submitted")
	}

	if _, err := s.carts.Refresh(ctx, userID); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("checkout: failed to refresh cart after order")
	}

	if orderErr != nil {
		return "", fmt.Errorf("failed to submit order: %w", orderErr)
	}

	chrome.Close()
	return transcript, nil
}

func (s *service) call(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return fn(ctx)
}

func (s *service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
