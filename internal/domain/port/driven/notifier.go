package driven

// Notifier surfaces a human-readable message to the user.
type Notifier interface {
	Notify(message string)
}
