package cartevents

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Ethan-Swanepoel/RacerBooks/lib/myerrors"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/myevents"
)

const (
	TopicName       = "cart"
	itemAddedName   = TopicName + ".item.added"
	lineRemovedName = TopicName + ".line.removed"
)

type CartEventService interface {
	Subscribe(c context.Context) error
	OnItemAdded(c context.Context, topic string, event ItemAdded) error
	OnLineRemoved(c context.Context, topic string, event LineRemoved) error
}

func DispatchEvent(c context.Context, reader io.Reader, service CartEventService) error {
	envelope, err := myevents.ParseEventEnvelope(reader)
	if err != nil {
		return myerrors.NewInvalidInputError(err)
	}

	switch envelope.EventTypeName {
	case itemAddedName:
		{
			event := ItemAdded{}
			err := json.Unmarshal([]byte(envelope.EventPayload), &event)
			if err != nil {
				return myerrors.NewInvalidInputError(err)
			}
			return service.OnItemAdded(c, envelope.Topic, event)
		}
	case lineRemovedName:
		{
			event := LineRemoved{}
			err := json.Unmarshal([]byte(envelope.EventPayload), &event)
			if err != nil {
				return myerrors.NewInvalidInputError(err)
			}
			return service.OnLineRemoved(c, envelope.Topic, event)
		}
	default:
		return myerrors.NewNotImplementedError(fmt.Errorf("unknown event %s", envelope.EventTypeName))
	}
}

type ItemAdded struct {
	Email    string
	ItemCode string
	Quantity int
}

func (e ItemAdded) GetEventTypeName() string {
	return itemAddedName
}

func (e ItemAdded) GetAggregateName() string {
	return e.Email
}

type LineRemoved struct {
	Email    string
	ItemCode string
}

func (e LineRemoved) GetEventTypeName() string {
	return lineRemovedName
}

func (e LineRemoved) GetAggregateName() string {
	return e.Email
}
