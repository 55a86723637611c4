package lottery

const (
	wonTitle         = "You're a winner!"
	revokedTitle     = "Your spot was revoked"
	notSelectedTitle = "Event Results"
)

func wonMessage(eventName string) string {
	return "You have been selected for the event: " + eventName
}

func revokedMessage(eventName string, wasSelected bool) string {
	if !wasSelected {
		return "Your place on the waiting list for " + eventName + " has been cancelled."
	}
	return "Your winning spot in " + eventName + " has been cancelled."
}

func notSelectedMessage(eventName string) string {
	return "You were not selected for the event: " + eventName +
		". However you can still be selected if someone else declines their offer."
}
