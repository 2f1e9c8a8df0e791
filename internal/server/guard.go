package server

// Decision is the explicit outcome of an ownership check. Denials carry a
// reason for the log line; the user only ever sees the handler's response.
type Decision struct {
	Allowed bool
	Reason  string
}

// ownedBy permits an action only when the acting user authored the target.
func ownedBy(authorID, actingUserID uint) Decision {
	if actingUserID != 0 && authorID == actingUserID {
		return Decision{Allowed: true}
	}
	return Decision{Reason: "acting user is not the author"}
}
