package itemevents

const (
	TopicName       = "item"
	itemCreatedName = TopicName + ".created"
)

type ItemCreated struct {
	Code  string
	Name  string
	Price string
}

func (e ItemCreated) GetEventTypeName() string {
	return itemCreatedName
}

func (e ItemCreated) GetAggregateName() string {
	return e.Code
}
