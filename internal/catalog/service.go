package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	ErrCityRequired  = errors.New("category requires a city")
	ErrInvalidFilter = errors.New("invalid catalog filter")
	ErrGoodNotFound  = errors.New("good not found in catalog")
)

// Badge marks a good that is already in the user's cart on the catalog page.
type Badge struct {
	GoodID     int64 `json:"good_id"`
	Quantity   int64 `json:"quantity"`
	ArendaTime int64 `json:"arenda_time"`
}

type Provider interface {
	ListCategories(ctx context.Context) ([]Category, error)
	ListCities(ctx context.Context) ([]City, error)
	ListGoods(ctx context.Context, categoryID, cityID int64) ([]Good, error)
	ListCartBadges(ctx context.Context, userID int64) ([]Badge, error)
}

type Options struct {
	HiddenCityIDs         []int64
	CityScopedCategoryIDs []int64
	Timeout               time.Duration
}

type Service interface {
	ListCategories(ctx context.Context) ([]Category, error)
	ListCities(ctx context.Context) ([]City, error)
	ListGoods(ctx context.Context, categoryID, cityID int64) ([]Good, error)
	FindGood(ctx context.Context, categoryID, cityID, goodID int64) (Good, error)
	InCartBadges(ctx context.Context, userID int64) (map[int64]Badge, error)
}

type service struct {
	provider   Provider
	hidden     map[int64]struct{}
	cityScoped map[int64]struct{}
	timeout    time.Duration
}

func NewService(provider Provider, opts Options) Service {
	return &service{
		provider:   provider,
		hidden:     toSet(opts.HiddenCityIDs),
		cityScoped: toSet(opts.CityScopedCategoryIDs),
		timeout:    opts.Timeout,
	}
}

func (s *service) ListCategories(ctx context.Context) ([]Category, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	categories, err := s.provider.ListCategories(ctx)
	if err != nil {
		log.Error().Err(err).Msg("catalog: failed to list categories")
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	out := make([]Category, len(categories))
	for i, c := range categories {
		_, scoped := s.cityScoped[c.ID]
		c.RequiresCity = scoped
		out[i] = c
	}
	return out, nil
}

func (s *service) ListCities(ctx context.Context) ([]City, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	cities, err := s.provider.ListCities(ctx)
	if err != nil {
		log.Error().Err(err).Msg("catalog: failed to list cities")
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}

	out := make([]City, 0, len(cities))
	for _, c := range cities {
		if _, hidden := s.hidden[c.ID]; hidden {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// ListGoods lists a category's goods. cityID 0 means no city filter, which city-scoped categories
// do not allow.
func (s *service) ListGoods(ctx context.Context, categoryID, cityID int64) ([]Good, error) {
	if categoryID <= 0 || cityID < 0 {
		return nil, ErrInvalidFilter
	}
	if _, scoped := s.cityScoped[categoryID]; scoped && cityID == 0 {
		return nil, ErrCityRequired
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	goods, err := s.provider.ListGoods(ctx, categoryID, cityID)
	if err != nil {
		log.Error().Err(err).Int64("category_id", categoryID).Int64("city_id", cityID).Msg("catalog: failed to list goods")
		return nil, fmt.Errorf("failed to list goods: %w", err)
	}
	if goods == nil {
		goods = []Good{}
	}
	return goods, nil
}

// FindGood returns the listed good with the given id from a category (and city) listing.
func (s *service) FindGood(ctx context.Context, categoryID, cityID, goodID int64) (Good, error) {
	if goodID <= 0 {
		return Good{}, ErrInvalidFilter
	}

	goods, err := s.ListGoods(ctx, categoryID, cityID)
	if err != nil {
		return Good{}, err
	}
	for _, g := range goods {
		if g.ID == goodID {
			return g, nil
		}
	}
	return Good{}, fmt.Errorf("good %d in category %d: %w", goodID, categoryID, ErrGoodNotFound)
}

// InCartBadges returns the user's cart entries keyed by good id. A missing rental term reads as 1.
func (s *service) InCartBadges(ctx context.Context, userID int64) (map[int64]Badge, error) {
	if userID == 0 {
		return nil, ErrInvalidFilter
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	badges, err := s.provider.ListCartBadges(ctx, userID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("catalog: failed to load cart badges")
		return nil, fmt.Errorf("failed to load cart badges: %w", err)
	}

	out := make(map[int64]Badge, len(badges))
	for _, b := range badges {
		if b.ArendaTime < 1 {
			b.ArendaTime = 1
		}
		out[b.GoodID] = b
	}
	return out, nil
}

func (s *service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func toSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
