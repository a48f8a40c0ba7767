package usecase

import (
	"regexp"
	"strconv"
)

// priceRegex matches the first decimal number in loosely formatted price text
// ("$19.99", "USD 20", "0.0123 BTC", ".50").
var priceRegex = regexp.MustCompile(`\d*\.?\d+`)

// ParsePrice extracts a price from raw text. It never fails: text without any
// numeric content resolves to 0.
func ParsePrice(raw string) float64 {
	price, _ := ParsePriceStrict(raw)
	return price
}

// ParsePriceStrict is ParsePrice that also reports whether a number was found.
// The training and load commands use it to drop rows with unusable prices.
func ParsePriceStrict(raw string) (float64, bool) {
	match := priceRegex.FindString(raw)
	if match == "" {
		return 0, false
	}
	price, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return price, true
}
