package cart

import "github.com/vasiliy-maslov/tg-storefront/internal/catalog"

// LineItem is one good's configuration within a user's cart.
// TotalPrice is a cache of pricing.ComputeTotalPrice for the other fields.
type LineItem struct {
	GoodID     int64        `json:"good_id"`
	Good       catalog.Good `json:"good"`
	Quantity   int64        `json:"quantity"`
	ArendaTime int64        `json:"arenda_time"`
	IsArenda   bool         `json:"is_arenda"`
	IsDelivery bool         `json:"is_delivery"`
	IsContract bool         `json:"is_contract"`
	TotalPrice int64        `json:"total_price"`
}

// Cart splits a user's line items into purchases (Goods) and rentals (ArendaGoods).
type Cart struct {
	Goods       []LineItem `json:"goods"`
	ArendaGoods []LineItem `json:"arenda_goods"`
}

func (c Cart) GrandTotal() int64 {
	var total int64
	for _, item := range c.Goods {
		total += item.TotalPrice
	}
	for _, item := range c.ArendaGoods {
		total += item.TotalPrice
	}
	return total
}

func (c Cart) IsEmpty() bool {
	return len(c.Goods) == 0 && len(c.ArendaGoods) == 0
}

func (c Cart) clone() Cart {
	out := Cart{
		Goods:       make([]LineItem, len(c.Goods)),
		ArendaGoods: make([]LineItem, len(c.ArendaGoods)),
	}
	copy(out.Goods, c.Goods)
	copy(out.ArendaGoods, c.ArendaGoods)
	return out
}

// Payload is the body of the upstream cart/add and cart/update calls. The upstream is not
// incremental: every update resends all fields.
type Payload struct {
	UserID     int64 `json:"user_id"`
	GoodID     int64 `json:"good_id"`
	Quantity   int64 `json:"quantity"`
	ArendaTime int64 `json:"arenda_time"`
	IsArenda   bool  `json:"is_arenda"`
	IsDelivery bool  `json:"is_delivery"`
	IsContract bool  `json:"is_contract"`
	TotalPrice int64 `json:"total_price"`
}

// Selection is the quantity and rental duration picked on the catalog page before adding.
// Zero values mean 1.
type Selection struct {
	Quantity   int64
	ArendaTime int64
}

func newPayload(userID int64, item LineItem) Payload {
	p := Payload{
		UserID:     userID,
		GoodID:     item.GoodID,
		Quantity:   item.Quantity,
		ArendaTime: item.ArendaTime,
		IsArenda:   item.IsArenda,
		IsDelivery: item.IsDelivery,
		IsContract: item.IsContract,
		TotalPrice: item.TotalPrice,
	}
	// purchases never carry a contract, rentals never carry delivery
	if p.IsArenda {
		p.IsDelivery = false
	} else {
		p.ArendaTime = 1
		p.IsContract = false
	}
	return p
}
