package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/vasiliy-maslov/tg-storefront/internal/cart"
	"github.com/vasiliy-maslov/tg-storefront/internal/catalog"
	"github.com/vasiliy-maslov/tg-storefront/internal/checkout"
)

var (
	_ cart.Store              = (*Client)(nil)
	_ checkout.ProfileStore   = (*Client)(nil)
	_ checkout.OrderSubmitter = (*Client)(nil)
	_ catalog.Provider        = (*Client)(nil)
)

type deleteItemRequest struct {
	UserID int64 `json:"user_id"`
	GoodID int64 `json:"good_id"`
}

func (c *Client) AddItem(ctx context.Context, payload cart.Payload) error {
	return c.do(ctx, "cart.add", http.MethodPost, "cart/add/", payload, nil)
}

func (c *Client) UpdateItem(ctx context.Context, payload cart.Payload) error {
	return c.do(ctx, "cart.update", http.MethodPatch, "cart/update/", payload, nil)
}

func (c *Client) DeleteItem(ctx context.Context, userID, goodID int64) error {
	return c.do(ctx, "cart.delete", http.MethodDelete, "cart/delete/", deleteItemRequest{UserID: userID, GoodID: goodID}, nil)
}

func (c *Client) GetCarts(ctx context.Context, userID int64) (cart.Cart, error) {
	var out cart.Cart
	if err := c.do(ctx, "cart.get_carts", http.MethodGet, fmt.Sprintf("cart/get_carts/%d/", userID), nil, &out); err != nil {
		return cart.Cart{}, err
	}
	return out, nil
}

func (c *Client) ListCartBadges(ctx context.Context, userID int64) ([]catalog.Badge, error) {
	var out []catalog.Badge
	if err := c.do(ctx, "cart.get", http.MethodGet, fmt.Sprintf("cart/get/%d/", userID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetClient(ctx context.Context, userID int64) (checkout.ClientProfile, error) {
	var out checkout.ClientProfile
	if err := c.do(ctx, "client.get", http.MethodGet, fmt.Sprintf("client/get/%d/", userID), nil, &out); err != nil {
		return checkout.ClientProfile{}, err
	}
	return out, nil
}

func (c *Client) UpdateClient(ctx context.Context, update checkout.ClientUpdate) error {
	return c.do(ctx, "client.update", http.MethodPatch, "client/update/", update, nil)
}

func (c *Client) AddOrder(ctx context.Context, order checkout.Order) error {
	return c.do(ctx, "order.add", http.MethodPost, "order/add/", order, nil)
}

func (c *Client) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	var out []catalog.Category
	if err := c.do(ctx, "catalog.categories", http.MethodGet, "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListCities(ctx context.Context) ([]catalog.City, error) {
	var out []catalog.City
	if err := c.do(ctx, "catalog.cities", http.MethodGet, "cities/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListGoods lists a category's goods; cityID 0 lists every city.
func (c *Client) ListGoods(ctx context.Context, categoryID, cityID int64) ([]catalog.Good, error) {
	path := fmt.Sprintf("catalog/%d/", categoryID)
	if cityID != 0 {
		path = fmt.Sprintf("catalog/%d/%d", categoryID, cityID)
	}

	var out []catalog.Good
	if err := c.do(ctx, "catalog.goods", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
