package items

import (
	"context"
	"fmt"

	"github.com/Ethan-Swanepoel/RacerBooks/lib/myerrors"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/myhttp"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/mylog"
	"github.com/Ethan-Swanepoel/RacerBooks/services/cart/cartevents"
)

func (s *service) Subscribe(c context.Context) error {
	err := s.subscriber.CreateTopic(c, cartevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", cartevents.TopicName, err)
	}

	err = s.subscriber.Subscribe(c, cartevents.TopicName, myhttp.GuessHostnameWithScheme()+"/items/event")
	if err != nil {
		return fmt.Errorf("error subscribing to topic %s: %s", cartevents.TopicName, err)
	}

	return nil
}

// OnItemAdded keeps the popularity counter of the catalog item.
func (s *service) OnItemAdded(c context.Context, topic string, event cartevents.ItemAdded) error {
	s.logger.Log(c, event.ItemCode, mylog.SeverityInfo, "Item %s was added to a cart", event.ItemCode)

	return s.itemStore.RunInTransaction(c, func(c context.Context) error {
		item, found, err := s.itemStore.Get(c, event.ItemCode)
		if err != nil {
			return myerrors.NewInternalError(err)
		}
		if !found {
			return myerrors.NewNotFoundError(fmt.Errorf("item with code %s not found", event.ItemCode))
		}

		item.TimesAdded++
		err = s.itemStore.Put(c, event.ItemCode, item)
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		return nil
	})
}

func (s *service) OnLineRemoved(c context.Context, topic string, event cartevents.LineRemoved) error {
	return nil
}
