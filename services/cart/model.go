package cart

import (
	"fmt"
	"time"
)

// Line is one (user, item) entry in a cart. Adding the same item again bumps
// the quantity of the existing line instead of creating a second one, which
// the composite uid enforces.
type Line struct {
	UID      string
	Email    string
	ItemCode string
	Quantity int
	AddedAt  time.Time
}

func lineUID(email string, itemCode string) string {
	return fmt.Sprintf("%s|%s", email, itemCode)
}
