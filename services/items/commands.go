package items

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Ethan-Swanepoel/RacerBooks/lib/myerrors"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/mylog"
	"github.com/Ethan-Swanepoel/RacerBooks/services/items/itemevents"
)

func (s *service) createItem(c context.Context, item Item) (Item, error) {
	s.logger.Log(c, item.Code, mylog.SeverityInfo, "Creating item %s (%s)", item.Code, item.Name)

	if item.Code == "" {
		return Item{}, myerrors.NewInvalidInputErrorf("Item code is required")
	}
	if item.Name == "" {
		return Item{}, myerrors.NewInvalidInputErrorf("Item name is required")
	}
	if item.Price < 0 {
		return Item{}, myerrors.NewInvalidInputErrorf("Item price must not be negative")
	}
	if item.Stock < 0 {
		return Item{}, myerrors.NewInvalidInputErrorf("Item stock must not be negative")
	}

	err := s.itemStore.RunInTransaction(c, func(c context.Context) error {
		_, found, err := s.itemStore.Get(c, item.Code)
		if err != nil {
			return myerrors.NewInternalError(err)
		}
		if found {
			return myerrors.NewConflictError(fmt.Errorf("Item %s already exists", item.Code))
		}

		err = s.itemStore.Put(c, item.Code, item)
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		err = s.publisher.Publish(c, itemevents.TopicName, itemevents.ItemCreated{
			Code:  item.Code,
			Name:  item.Name,
			Price: item.PriceString(),
		})
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		return nil
	})
	if err != nil {
		return Item{}, err
	}

	return item, nil
}

func (s *service) getItem(c context.Context, code string) (Item, error) {
	item, found, err := s.itemStore.Get(c, code)
	if err != nil {
		return Item{}, myerrors.NewInternalError(err)
	}
	if !found {
		return Item{}, myerrors.NewNotFoundError(fmt.Errorf("item with code %s not found", code))
	}

	return item, nil
}

func (s *service) listItems(c context.Context) ([]Item, error) {
	items, err := s.itemStore.List(c)
	if err != nil {
		return nil, myerrors.NewInternalError(err)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Code < items[j].Code
	})

	return items, nil
}

// searchItems filters the catalog. Searching by price matches the rendered
// amount exactly: "5.5" does not find an item priced "5.50". Any other field
// is a name-prefix search. An empty term returns the whole catalog.
func (s *service) searchItems(c context.Context, searchBy string, search string) ([]Item, error) {
	items, err := s.listItems(c)
	if err != nil {
		return nil, err
	}

	if search == "" {
		return items, nil
	}

	matches := make([]Item, 0, len(items))
	for _, item := range items {
		if matchesSearch(item, searchBy, search) {
			matches = append(matches, item)
		}
	}

	return matches, nil
}

func matchesSearch(item Item, searchBy string, search string) bool {
	if searchBy == "price" {
		return item.PriceString() == search
	}

	return strings.HasPrefix(item.Name, search)
}
