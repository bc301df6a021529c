// Package notify delivers announcement messages to Slack.
package notify

// Notifier delivers a message to the pre-provisioned destination channel.
type Notifier interface {
	Deliver(text string) error
}
