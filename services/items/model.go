package items

import (
	"fmt"
	"strconv"
	"strings"
)

// Item is a product in the catalog. Price is kept in cents so totals never
// suffer from float rounding; PriceString renders it the way it is shown and
// searched on.
type Item struct {
	Code    string
	Name    string
	Price   int64
	Stock   int
	Details string

	// TimesAdded counts cart adds, fed asynchronously by cart events
	TimesAdded int
}

func (i Item) PriceString() string {
	return fmt.Sprintf("%d.%02d", i.Price/100, i.Price%100)
}

// ParsePrice reads a user-entered amount like "12.99" or "5" into cents.
func ParsePrice(s string) (int64, error) {
	whole, fraction, _ := strings.Cut(strings.TrimSpace(s), ".")

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units < 0 {
		return 0, fmt.Errorf("invalid price %q", s)
	}

	cents := int64(0)
	if fraction != "" {
		if len(fraction) > 2 {
			return 0, fmt.Errorf("invalid price %q", s)
		}
		cents, err = strconv.ParseInt(fraction, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid price %q", s)
		}
		if len(fraction) == 1 {
			cents *= 10
		}
	}

	return units*100 + cents, nil
}
