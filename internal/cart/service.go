package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/tg-storefront/internal/catalog"
	"github.com/vasiliy-maslov/tg-storefront/internal/metric"
	"github.com/vasiliy-maslov/tg-storefront/internal/pricing"
)

var (
	ErrMissingIdentity    = errors.New("user id is not resolved")
	ErrNotInCart          = errors.New("good is not in the cart")
	ErrAlreadyInCart      = errors.New("good is already in the cart")
	ErrFieldNotApplicable = errors.New("field does not apply to this kind of good")
	ErrSuperseded         = errors.New("response superseded by a newer cart operation")
)

// Store is the remote cart persistence, keyed by user id and good id.
type Store interface {
	AddItem(ctx context.Context, payload Payload) error
	UpdateItem(ctx context.Context, payload Payload) error
	DeleteItem(ctx context.Context, userID, goodID int64) error
	GetCarts(ctx context.Context, userID int64) (Cart, error)
}

type Service interface {
	Add(ctx context.Context, userID int64, good catalog.Good, sel Selection) (LineItem, error)
	UpdateQuantity(ctx context.Context, userID, goodID, quantity int64) (LineItem, error)
	UpdateArendaTime(ctx context.Context, userID, goodID, months int64) (LineItem, error)
	SetDelivery(ctx context.Context, userID, goodID int64, enabled bool) (LineItem, error)
	SetContract(ctx context.Context, userID, goodID int64, signed bool) (LineItem, error)
	Delete(ctx context.Context, userID, goodID int64) error
	Refresh(ctx context.Context, userID int64) (Cart, error)
	Snapshot(userID int64) Cart
}

type service struct {
	store   Store
	timeout time.Duration

	mu    sync.Mutex
	views map[int64]*view
}

// NewService returns the cart reconciler. timeout bounds every remote call; zero disables it.
func NewService(store Store, timeout time.Duration) Service {
	return &service{
		store:   store,
		timeout: timeout,
		views:   make(map[int64]*view),
	}
}

func (s *service) Add(ctx context.Context, userID int64, good catalog.Good, sel Selection) (LineItem, error) {
	if userID == 0 {
		return LineItem{}, ErrMissingIdentity
	}

	item := LineItem{
		GoodID:     good.ID,
		Good:       good,
		Quantity:   pricing.ClampCount(sel.Quantity),
		ArendaTime: 1,
		IsArenda:   good.IsArenda,
	}
	if good.IsArenda {
		item.ArendaTime = pricing.ClampCount(sel.ArendaTime)
	}
	item.TotalPrice = pricing.ComputeTotalPrice(good, item.Quantity, item.ArendaTime, false, false)

	s.mu.Lock()
	v := s.viewFor(userID)
	if _, ok := v.find(good.ID); ok {
		s.mu.Unlock()
		return LineItem{}, ErrAlreadyInCart
	}
	version := v.begin()
	s.mu.Unlock()

	err := s.withTimeout(ctx, func(ctx context.Context) error {
		return s.store.AddItem(ctx, newPayload(userID, item))
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	v.done()
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Int64("good_id", good.ID).Msg("cart: failed to add item")
		return LineItem{}, fmt.Errorf("failed to add good %d to cart: %w", good.ID, err)
	}
	if !v.accept(good.ID, version) {
		log.Warn().Int64("user_id", userID).Int64("good_id", good.ID).Uint64("version", version).Msg("cart: add response superseded")
		metric.CartSupersededTotal.WithLabelValues("add").Inc()
		return LineItem{}, ErrSuperseded
	}
	v.put(item)

	log.Info().Int64("user_id", userID).Int64("good_id", good.ID).Int64("total_price", item.TotalPrice).Msg("cart: item added")
	return item, nil
}

func (s *service) UpdateQuantity(ctx context.Context, userID, goodID, quantity int64) (LineItem, error) {
	return s.update(ctx, userID, goodID, "quantity", func(item *LineItem) error {
		item.Quantity = pricing.ClampCount(quantity)
		return nil
	})
}

func (s *service) UpdateArendaTime(ctx context.Context, userID, goodID, months int64) (LineItem, error) {
	return s.update(ctx, userID, goodID, "arenda_time", func(item *LineItem) error {
		if !item.IsArenda {
			return ErrFieldNotApplicable
		}
		item.ArendaTime = pricing.ClampCount(months)
		return nil
	})
}

func (s *service) SetDelivery(ctx context.Context, userID, goodID int64, enabled bool) (LineItem, error) {
	return s.update(ctx, userID, goodID, "is_delivery", func(item *LineItem) error {
		if item.IsArenda {
			return ErrFieldNotApplicable
		}
		item.IsDelivery = enabled
		return nil
	})
}

func (s *service) SetContract(ctx context.Context, userID, goodID int64, signed bool) (LineItem, error) {
	return s.update(ctx, userID, goodID, "is_contract", func(item *LineItem) error {
		if !item.IsArenda {
			return ErrFieldNotApplicable
		}
		item.IsContract = signed
		return nil
	})
}

// update applies mutate to a copy of the current item, reprices it and sends the full payload.
// The local view adopts the copy only after the store accepts it.
func (s *service) update(ctx context.Context, userID, goodID int64, field string, mutate func(*LineItem) error) (LineItem, error) {
	if userID == 0 {
		return LineItem{}, ErrMissingIdentity
	}

	s.mu.Lock()
	v := s.viewFor(userID)
	current, ok := v.find(goodID)
	if !ok {
		s.mu.Unlock()
		return LineItem{}, ErrNotInCart
	}
	next := current
	if err := mutate(&next); err != nil {
		s.mu.Unlock()
		return LineItem{}, fmt.Errorf("cannot change %s of good %d: %w", field, goodID, err)
	}
	next.TotalPrice = pricing.ComputeTotalPrice(next.Good, next.Quantity, next.ArendaTime, next.IsDelivery, next.IsContract)
	version := v.begin()
	s.mu.Unlock()

	err := s.withTimeout(ctx, func(ctx context.Context) error {
		return s.store.UpdateItem(ctx, newPayload(userID, next))
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	v.done()
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Int64("good_id", goodID).Str("field", field).Msg("cart: failed to update item")
		return LineItem{}, fmt.Errorf("failed to update %s of good %d: %w", field, goodID, err)
	}
	if !v.accept(goodID, version) {
		log.Warn().Int64("user_id", userID).Int64("good_id", goodID).Str("field", field).Uint64("version", version).Msg("cart: update response superseded")
		metric.CartSupersededTotal.WithLabelValues("update").Inc()
		return LineItem{}, ErrSuperseded
	}
	v.put(next)

	log.Debug().Int64("user_id", userID).Int64("good_id", goodID).Str("field", field).Int64("total_price", next.TotalPrice).Msg("cart: item updated")
	return next, nil
}

// Delete does not require the item to be present locally: an Add may still be in flight.
func (s *service) Delete(ctx context.Context, userID, goodID int64) error {
	if userID == 0 {
		return ErrMissingIdentity
	}

	s.mu.Lock()
	v := s.viewFor(userID)
	version := v.begin()
	s.mu.Unlock()

	err := s.withTimeout(ctx, func(ctx context.Context) error {
		return s.store.DeleteItem(ctx, userID, goodID)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	v.done()
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Int64("good_id", goodID).Msg("cart: failed to delete item")
		return fmt.Errorf("failed to delete good %d from cart: %w", goodID, err)
	}
	if !v.accept(goodID, version) {
		log.Warn().Int64("user_id", userID).Int64("good_id", goodID).Uint64("version", version).Msg("cart: delete response superseded")
		metric.CartSupersededTotal.WithLabelValues("delete").Inc()
		return ErrSuperseded
	}
	v.remove(goodID)

	log.Info().Int64("user_id", userID).Int64("good_id", goodID).Msg("cart: item deleted")
	return nil
}

// Refresh replaces the user's local cart with the upstream's view. Responses of operations issued
// before the refresh are discarded once it is applied. An empty, quiet cart is forgotten.
func (s *service) Refresh(ctx context.Context, userID int64) (Cart, error) {
	if userID == 0 {
		return Cart{}, ErrMissingIdentity
	}

	s.mu.Lock()
	v := s.viewFor(userID)
	version := v.begin()
	s.mu.Unlock()

	var fetched Cart
	err := s.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		fetched, err = s.store.GetCarts(ctx, userID)
		return err
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	v.done()
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("cart: failed to refresh cart")
		return Cart{}, fmt.Errorf("failed to refresh cart: %w", err)
	}
	if version < v.floor {
		log.Warn().Int64("user_id", userID).Uint64("version", version).Msg("cart: refresh response superseded")
		metric.CartSupersededTotal.WithLabelValues("refresh").Inc()
		return Cart{}, ErrSuperseded
	}
	v.replace(fetched, version)

	log.Debug().Int64("user_id", userID).Int("goods", len(v.cart.Goods)).Int("arenda_goods", len(v.cart.ArendaGoods)).Msg("cart: refreshed")
	current := v.cart.clone()
	s.evictIdle(userID, v)
	return current, nil
}

func (s *service) Snapshot(userID int64) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.views[userID]
	if !ok {
		return Cart{Goods: []LineItem{}, ArendaGoods: []LineItem{}}
	}
	return v.cart.clone()
}

// evictIdle drops an empty view with no operation in flight.
func (s *service) evictIdle(userID int64, v *view) {
	if s.views[userID] == v && v.idle() {
		delete(s.views, userID)
	}
}

func (s *service) viewFor(userID int64) *view {
	v, ok := s.views[userID]
	if !ok {
		v = newView()
		s.views[userID] = v
	}
	return v
}

func (s *service) withTimeout(ctx context.Context, fn func(context.Context) error) error {
	if s.timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return fn(ctx)
}
