package userevents

const (
	TopicName          = "user"
	userRegisteredName = TopicName + ".registered"
)

type UserRegistered struct {
	Email string
	Role  string
}

func (e UserRegistered) GetEventTypeName() string {
	return userRegisteredName
}

func (e UserRegistered) GetAggregateName() string {
	return e.Email
}
