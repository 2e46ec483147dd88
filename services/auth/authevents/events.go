package authevents

const (
	TopicName         = "auth"
	userLoggedInName  = TopicName + ".user.loggedin"
	loginFailedName   = TopicName + ".login.failed"
	userLoggedOutName = TopicName + ".user.loggedout"
)

type UserLoggedIn struct {
	Email string
}

func (e UserLoggedIn) GetEventTypeName() string {
	return userLoggedInName
}

func (e UserLoggedIn) GetAggregateName() string {
	return e.Email
}

type LoginFailed struct {
	Email  string
	Reason string
}

func (e LoginFailed) GetEventTypeName() string {
	return loginFailedName
}

func (e LoginFailed) GetAggregateName() string {
	return e.Email
}

type UserLoggedOut struct {
	Email string
}

func (e UserLoggedOut) GetEventTypeName() string {
	return userLoggedOutName
}

func (e UserLoggedOut) GetAggregateName() string {
	return e.Email
}
