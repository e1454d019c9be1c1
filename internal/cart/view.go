package cart

import "github.com/vasiliy-maslov/tg-storefront/internal/pricing"

// view is one user's local cart plus the version bookkeeping that keeps stale responses from
// overwriting newer state. Versions come from a single per-user counter, so they order operations
// across goods as well as within one good.
type view struct {
	cart     Cart
	seq      uint64
	applied  map[int64]uint64
	floor    uint64 // version of the last applied refresh
	inflight int
}

func newView() *view {
	return &view{
		cart:    Cart{Goods: []LineItem{}, ArendaGoods: []LineItem{}},
		applied: make(map[int64]uint64),
	}
}

// begin issues the next version and counts the operation as in flight until done is called.
func (v *view) begin() uint64 {
	v.seq++
	v.inflight++
	return v.seq
}

func (v *view) done() {
	v.inflight--
}

// idle reports whether the view holds nothing worth keeping.
func (v *view) idle() bool {
	return v.inflight == 0 && v.cart.IsEmpty()
}

// accept records version as applied for goodID unless a newer operation on the same good or a
// newer refresh has already been applied.
func (v *view) accept(goodID int64, version uint64) bool {
	if version < v.floor || version < v.applied[goodID] {
		return false
	}
	v.applied[goodID] = version
	return true
}

func (v *view) find(goodID int64) (LineItem, bool) {
	return findIn(v.cart, goodID)
}

func findIn(c Cart, goodID int64) (LineItem, bool) {
	for _, item := range c.Goods {
		if item.GoodID == goodID {
			return item, true
		}
	}
	for _, item := range c.ArendaGoods {
		if item.GoodID == goodID {
			return item, true
		}
	}
	return LineItem{}, false
}

func (v *view) put(item LineItem) {
	for i := range v.cart.Goods {
		if v.cart.Goods[i].GoodID == item.GoodID {
			v.cart.Goods[i] = item
			return
		}
	}
	for i := range v.cart.ArendaGoods {
		if v.cart.ArendaGoods[i].GoodID == item.GoodID {
			v.cart.ArendaGoods[i] = item
			return
		}
	}

	if item.IsArenda {
		v.cart.ArendaGoods = append(v.cart.ArendaGoods, item)
	} else {
		v.cart.Goods = append(v.cart.Goods, item)
	}
}

func (v *view) remove(goodID int64) {
	v.cart.Goods = without(v.cart.Goods, goodID)
	v.cart.ArendaGoods = without(v.cart.ArendaGoods, goodID)
}

// replace adopts a refreshed cart. Goods changed by operations issued after the refresh keep
// their local state, present or absent.
func (v *view) replace(fetched Cart, version uint64) {
	prev := v.cart
	v.cart = normalize(fetched.clone())

	for goodID, applied := range v.applied {
		if applied > version {
			v.remove(goodID)
		}
	}
	for _, item := range append(append([]LineItem{}, prev.Goods...), prev.ArendaGoods...) {
		if v.applied[item.GoodID] > version {
			v.put(item)
		}
	}

	v.floor = version
}

func without(items []LineItem, goodID int64) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, item := range items {
		if item.GoodID != goodID {
			out = append(out, item)
		}
	}
	return out
}

// normalize repairs a cart as the upstream lists it: good_id comes from the nested good when
// omitted, null collections become empty, missing counts read as 1 and every total is repriced.
func normalize(c Cart) Cart {
	if c.Goods == nil {
		c.Goods = []LineItem{}
	}
	if c.ArendaGoods == nil {
		c.ArendaGoods = []LineItem{}
	}
	for i := range c.Goods {
		item := &c.Goods[i]
		item.Good.IsArenda = false
		item.IsArenda = false
		item.IsContract = false
		item.ArendaTime = 1
		repair(item)
	}
	for i := range c.ArendaGoods {
		item := &c.ArendaGoods[i]
		item.Good.IsArenda = true
		item.IsArenda = true
		item.IsDelivery = false
		item.ArendaTime = pricing.ClampCount(item.ArendaTime)
		repair(item)
	}
	return c
}

func repair(item *LineItem) {
	if item.GoodID == 0 {
		item.GoodID = item.Good.ID
	}
	item.Quantity = pricing.ClampCount(item.Quantity)
	item.TotalPrice = pricing.ComputeTotalPrice(item.Good, item.Quantity, item.ArendaTime, item.IsDelivery, item.IsContract)
}
