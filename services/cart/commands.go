package cart

import (
	"context"
	"fmt"
	"sort"

	"github.com/Ethan-Swanepoel/RacerBooks/lib/myerrors"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/mylog"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/mystore"
	"github.com/Ethan-Swanepoel/RacerBooks/services/cart/cartevents"
	"github.com/Ethan-Swanepoel/RacerBooks/services/items"
)

type CartLine struct {
	Line Line
	Item items.Item
}

type Cart struct {
	Lines []CartLine
	Total int64
}

// addToCart reserves one unit of stock for the user. The stock check, the
// line upsert and the decrement run in a single transaction: two users racing
// for the last unit can never both win, and a failed write mutates nothing.
func (s *service) addToCart(c context.Context, email string, itemCode string) (Line, error) {
	s.logger.Log(c, email, mylog.SeverityInfo, "User %s adds item %s to cart", email, itemCode)

	var line Line
	err := s.itemStore.RunInTransaction(c, func(c context.Context) error {
		item, found, err := s.itemStore.Get(c, itemCode)
		if err != nil {
			return myerrors.NewInternalError(err)
		}
		if !found {
			return myerrors.NewNotFoundError(fmt.Errorf("item with code %s not found", itemCode))
		}

		if item.Stock <= 0 {
			return myerrors.NewConflictError(fmt.Errorf("Item %s is out of stock", itemCode))
		}

		uid := lineUID(email, itemCode)
		line, found, err = s.cartStore.Get(c, uid)
		if err != nil {
			return myerrors.NewInternalError(err)
		}
		if found {
			line.Quantity++
		} else {
			line = Line{
				UID:      uid,
				Email:    email,
				ItemCode: itemCode,
				Quantity: 1,
				AddedAt:  s.nower.Now(),
			}
		}

		// the line goes first: if it fails, the stock is still untouched
		err = s.cartStore.Put(c, uid, line)
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		item.Stock--
		err = s.itemStore.Put(c, itemCode, item)
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		err = s.publisher.Publish(c, cartevents.TopicName, cartevents.ItemAdded{
			Email:    email,
			ItemCode: itemCode,
			Quantity: line.Quantity,
		})
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		return nil
	})
	if err != nil {
		return Line{}, err
	}

	return line, nil
}

// viewCart joins the user's lines with the catalog. Lines keep the order in
// which their item was first added.
func (s *service) viewCart(c context.Context, email string) (Cart, error) {
	lines, err := s.cartStore.Query(c, []mystore.Filter{
		{Field: "Email", Compare: "=", Value: email},
	}, "AddedAt")
	if err != nil {
		return Cart{}, myerrors.NewInternalError(err)
	}

	// ties broken on item code so the order never flips between calls
	sort.Slice(lines, func(i, j int) bool {
		if !lines[i].AddedAt.Equal(lines[j].AddedAt) {
			return lines[i].AddedAt.Before(lines[j].AddedAt)
		}
		return lines[i].ItemCode < lines[j].ItemCode
	})

	cart := Cart{Lines: make([]CartLine, 0, len(lines))}
	for _, line := range lines {
		item, found, err := s.itemStore.Get(c, line.ItemCode)
		if err != nil {
			return Cart{}, myerrors.NewInternalError(err)
		}
		if !found {
			// item vanished from the catalog: the line still counts as zero
			s.logger.Log(c, email, mylog.SeverityWarn, "Cart of %s refers to unknown item %s", email, line.ItemCode)
		}

		cart.Lines = append(cart.Lines, CartLine{Line: line, Item: item})
		cart.Total += int64(line.Quantity) * item.Price
	}

	return cart, nil
}

// removeLine drops the whole line regardless of quantity. Stock is not
// restored: taking an item out of a cart does not put it back on the shelf.
func (s *service) removeLine(c context.Context, email string, itemCode string) error {
	uid := lineUID(email, itemCode)

	_, found, err := s.cartStore.Get(c, uid)
	if err != nil {
		return myerrors.NewInternalError(err)
	}
	if !found {
		return myerrors.NewNotFoundError(fmt.Errorf("item %s is not in the cart", itemCode))
	}

	err = s.cartStore.RunInTransaction(c, func(c context.Context) error {
		err := s.cartStore.Delete(c, uid)
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		err = s.publisher.Publish(c, cartevents.TopicName, cartevents.LineRemoved{
			Email:    email,
			ItemCode: itemCode,
		})
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	return nil
}
