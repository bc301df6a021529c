package notify

import (
	"errors"
	"fmt"
	"strings"

	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

// SlackNotifier posts messages to a fixed Slack channel.
type SlackNotifier struct {
	client    *slack.Client
	channelID string
	log       *zap.Logger
}

// NewSlack creates a Slack notifier for the given bot token and channel.
func NewSlack(token, channelID string, log *zap.Logger) (*SlackNotifier, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("slack: token is required")
	}
	if strings.TrimSpace(channelID) == "" {
		return nil, errors.New("slack: channel id is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SlackNotifier{
		client:    slack.New(token),
		channelID: channelID,
		log:       log,
	}, nil
}

// Deliver posts text to the channel. The error carries Slack's reason so the
// caller can log it; delivery is attempted exactly once.
func (n *SlackNotifier) Deliver(text string) error {
	_, _, err := n.client.PostMessage(n.channelID, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("slack: post message: %w", err)
	}
	n.log.Info("slack message delivered", zap.String("channel", n.channelID))
	return nil
}

// CheckAuth verifies the token against Slack's auth.test endpoint.
func (n *SlackNotifier) CheckAuth() error {
	if _, err := n.client.AuthTest(); err != nil {
		return fmt.Errorf("slack: auth test: %w", err)
	}
	return nil
}
