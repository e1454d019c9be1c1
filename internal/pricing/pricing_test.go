package pricing_test

import (
	"testing"

	"github.com/brianvoe/gofakeit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/tg-storefront/internal/catalog"
	"github.com/vasiliy-maslov/tg-storefront/internal/pricing"
)

func TestComputeTotalPrice(t *testing.T) {
	purchase := catalog.Good{ID: 1, Price: 1000, DeliveryPrice: 200}
	rental := catalog.Good{ID: 2, Price: 5000, IsArenda: true, ArendaContract: 800}

	tests := []struct {
		name       string
		good       catalog.Good
		quantity   int64
		arendaTime int64
		delivery   bool
		contract   bool
		want       int64
	}{
		{name: "purchase_with_delivery", good: purchase, quantity: 3, arendaTime: 1, delivery: true, want: 3600},
		{name: "purchase_without_delivery", good: purchase, quantity: 3, arendaTime: 1, want: 3000},
		{name: "purchase_ignores_arenda_time", good: purchase, quantity: 2, arendaTime: 12, want: 2000},
		{name: "purchase_ignores_contract", good: purchase, quantity: 2, arendaTime: 1, contract: true, want: 2000},
		{name: "rental_with_contract", good: rental, quantity: 2, arendaTime: 4, contract: true, want: 33600},
		{name: "rental_without_contract", good: rental, quantity: 2, arendaTime: 4, want: 40000},
		{name: "rental_ignores_delivery", good: rental, quantity: 1, arendaTime: 3, delivery: true, want: 15000},
		{
			name:       "rental_discount_above_price_is_not_clamped",
			good:       catalog.Good{Price: 100, IsArenda: true, ArendaContract: 150},
			quantity:   2,
			arendaTime: 3,
			contract:   true,
			want:       -300,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pricing.ComputeTotalPrice(tt.good, tt.quantity, tt.arendaTime, tt.delivery, tt.contract)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeTotalPrice_PurchaseIsLinearInQuantity(t *testing.T) {
	gofakeit.Seed(42)

	for i := 0; i < 200; i++ {
		good := catalog.Good{
			Price:         int64(gofakeit.Number(0, 1_000_000)),
			DeliveryPrice: int64(gofakeit.Number(0, 50_000)),
		}
		q := int64(gofakeit.Number(1, 500))
		delivery := gofakeit.Bool()

		unit := good.Price
		if delivery {
			unit += good.DeliveryPrice
		}

		require.Equal(t, unit*q, pricing.ComputeTotalPrice(good, q, 1, delivery, false), "good=%+v q=%d", good, q)
	}
}

func TestComputeTotalPrice_RentalIsLinearInQuantityTimesMonths(t *testing.T) {
	gofakeit.Seed(7)

	for i := 0; i < 200; i++ {
		good := catalog.Good{
			IsArenda:       true,
			Price:          int64(gofakeit.Number(0, 1_000_000)),
			ArendaContract: int64(gofakeit.Number(0, 1_000_000)),
		}
		q := int64(gofakeit.Number(1, 100))
		months := int64(gofakeit.Number(1, 36))
		contract := gofakeit.Bool()

		unit := good.Price
		if contract {
			unit -= good.ArendaContract
		}

		require.Equal(t, unit*q*months, pricing.ComputeTotalPrice(good, q, months, false, contract), "good=%+v q=%d t=%d", good, q, months)
	}
}

func TestComputeTotalPrice_TogglesReturnToBasePrice(t *testing.T) {
	gofakeit.Seed(99)

	for i := 0; i < 100; i++ {
		price := int64(gofakeit.Number(1, 100_000))
		q := int64(gofakeit.Number(1, 50))
		months := int64(gofakeit.Number(1, 24))

		purchase := catalog.Good{Price: price, DeliveryPrice: int64(gofakeit.Number(1, 10_000))}
		on := pricing.ComputeTotalPrice(purchase, q, 1, true, false)
		off := pricing.ComputeTotalPrice(purchase, q, 1, false, false)
		assert.NotEqual(t, on, off)
		assert.Equal(t, price*q, off)

		rental := catalog.Good{Price: price, IsArenda: true, ArendaContract: int64(gofakeit.Number(1, 10_000))}
		on = pricing.ComputeTotalPrice(rental, q, months, false, true)
		off = pricing.ComputeTotalPrice(rental, q, months, false, false)
		assert.NotEqual(t, on, off)
		assert.Equal(t, price*q*months, off)
	}
}

func TestComputeTotalPrice_Idempotent(t *testing.T) {
	good := catalog.Good{Price: 4321, IsArenda: true, ArendaContract: 321}

	first := pricing.ComputeTotalPrice(good, 7, 5, false, true)
	second := pricing.ComputeTotalPrice(good, 7, 5, false, true)

	assert.Equal(t, first, second)
}

func TestClampCount(t *testing.T) {
	assert.Equal(t, int64(1), pricing.ClampCount(-3))
	assert.Equal(t, int64(1), pricing.ClampCount(0))
	assert.Equal(t, int64(1), pricing.ClampCount(1))
	assert.Equal(t, int64(9), pricing.ClampCount(9))
}
