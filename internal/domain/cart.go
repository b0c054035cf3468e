package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CartsWithItems drops carts that have no line items. Everything that renders
// or totals carts goes through it.
func CartsWithItems(carts []Cart) []Cart {
	filtered := make([]Cart, 0, len(carts))
	for _, cart := range carts {
		if len(cart.Items) > 0 {
			filtered = append(filtered, cart)
		}
	}
	return filtered
}

func TotalItemCount(carts []Cart) int {
	count := 0
	for _, cart := range CartsWithItems(carts) {
		count += cart.ItemCount()
	}
	return count
}

func TotalPrice(carts []Cart) decimal.Decimal {
	total := decimal.Zero
	for _, cart := range CartsWithItems(carts) {
		total = total.Add(cart.Total())
	}
	return total
}

// FindItem returns the line item with the given id across all carts.
func FindItem(carts []Cart, itemID int) (CartItem, bool) {
	for _, cart := range carts {
		for _, item := range cart.Items {
			if item.ID == itemID {
				return item, true
			}
		}
	}
	return CartItem{}, false
}

// NormalizeNotes truncates to MaxNotesLength characters. An empty result maps
// to nil so the API receives null instead of "".
func NormalizeNotes(text string) *string {
	runes := []rune(text)
	if len(runes) > MaxNotesLength {
		runes = runes[:MaxNotesLength]
	}
	if len(runes) == 0 {
		return nil
	}
	notes := string(runes)
	return &notes
}

// FormatRupiah renders an amount the way the storefront prints prices, e.g. "Rp 80.000".
func FormatRupiah(amount decimal.Decimal) string {
	digits := amount.Round(0).Abs().StringFixed(0)

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}

	sign := ""
	if amount.Round(0).IsNegative() {
		sign = "-"
	}
	return sign + "Rp " + b.String()
}
