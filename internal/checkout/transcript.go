package checkout

import (
	"strconv"
	"strings"

	"github.com/vasiliy-maslov/tg-storefront/internal/cart"
)

const separator = "--------------------------------------------\n"

// BuildOrderTranscript renders the order text accepted by the order endpoint: a header with the
// client's details, purchase blocks, rental blocks, the grand total and the comment.
// The layout is consumed by operators as-is and must not change.
func BuildOrderTranscript(goods, arenda []cart.LineItem, profile ClientProfile, comment string) string {
	var b strings.Builder

	org := orDefault(profile.OrgName, "Не указано")
	b.WriteString("Заказ от " + org + " из " + orDefault(profile.ClientCity, "Не указано") + ":\n")
	b.WriteString("Организация: " + org + "\n")
	b.WriteString("Адрес: " + orDefault(profile.Address, "Не указан") + "\n")
	b.WriteString("Телефон: " + orDefault(profile.Phone, "Не указан") + "\n")
	b.WriteString(separator)

	var total int64
	for _, item := range goods {
		delivery := ""
		if item.IsDelivery {
			delivery = "с доставкой"
		}
		b.WriteString(item.Good.Name + " " + delivery + "\n")
		b.WriteString("в количестве " + itoa(item.Quantity) + " шт.\n")
		writePriceLines(&b, item)
		total += item.TotalPrice
	}

	for _, item := range arenda {
		b.WriteString("Аренда " + item.Good.Name + "\n")
		b.WriteString("в количестве " + itoa(item.Quantity) + " шт. на " + itoa(item.ArendaTime) + " месяцев\n")
		writePriceLines(&b, item)
		total += item.TotalPrice
	}

	b.WriteString("Общая сумма Вашего заказа " + itoa(total) + " тенге\n")

	if comment == "" {
		comment = "Нет комментария"
	}
	b.WriteString("Комментарий: " + comment)

	return b.String()
}

func writePriceLines(b *strings.Builder, item cart.LineItem) {
	b.WriteString("по цене " + itoa(item.Good.Price) + " тенге\n")
	b.WriteString("на сумму " + itoa(item.TotalPrice) + " тенге\n")
	b.WriteString("Склад: " + item.Good.City.String() + "\n")
	b.WriteString(separator)
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
