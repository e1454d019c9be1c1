// Package pricing computes line item totals for purchased and rented goods.
package pricing

import "github.com/vasiliy-maslov/tg-storefront/internal/catalog"

// ComputeTotalPrice returns the total price of a line item.
//
// Purchases: (price + delivery surcharge if enabled) * quantity. arendaTime and isContract are ignored.
// Rentals: (price - contract discount if signed) * quantity * arendaTime. isDelivery is ignored.
//
// Callers clamp quantity and arendaTime with ClampCount first. A contract discount larger than the
// price yields a negative total; that is a catalog data problem and is returned unchanged.
func ComputeTotalPrice(good catalog.Good, quantity, arendaTime int64, isDelivery, isContract bool) int64 {
	if !good.IsArenda {
		unit := good.Price
		if isDelivery {
			unit += good.DeliveryPrice
		}
		return unit * quantity
	}

	unit := good.Price
	if isContract {
		unit -= good.ArendaContract
	}
	return unit * quantity * arendaTime
}

// ClampCount raises quantities and rental months below 1 to 1.
func ClampCount(n int64) int64 {
	if n < 1 {
		return 1
	}
	return n
}
