package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"NewsVerifier/internal/ports"
)

var errMisconfigured = errors.New("telegram notifier misconfigured")

// Notifier posts alerts to a Telegram chat. The bot session is opened on the
// first alert.
type Notifier struct {
	botToken string
	chatID   string
	endpoint string
	client   *http.Client

	mu  sync.Mutex
	bot *tgbotapi.BotAPI
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier. chatID may be numeric or
// an "@channel" username.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		botToken: strings.TrimSpace(botToken),
		chatID:   strings.TrimSpace(chatID),
		endpoint: tgbotapi.APIEndpoint,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// Configured reports whether both credentials are present.
func (n *Notifier) Configured() bool {
	return n != nil && n.botToken != "" && n.chatID != ""
}

// PublishAlert sends message as plain text with link previews disabled.
func (n *Notifier) PublishAlert(ctx context.Context, message string) error {
	if !n.Configured() {
		return errMisconfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	bot, err := n.session()
	if err != nil {
		return err
	}

	msg, err := n.message(message)
	if err != nil {
		return err
	}
	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("send alert: %w", err)
	}
	return nil
}

func (n *Notifier) session() (*tgbotapi.BotAPI, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.bot != nil {
		return n.bot, nil
	}
	bot, err := tgbotapi.NewBotAPIWithClient(n.botToken, n.endpoint, n.client)
	if err != nil {
		return nil, fmt.Errorf("open bot session: %w", err)
	}
	n.bot = bot
	return bot, nil
}

func (n *Notifier) message(text string) (tgbotapi.MessageConfig, error) {
	var msg tgbotapi.MessageConfig
	if strings.HasPrefix(n.chatID, "@") {
		msg = tgbotapi.NewMessageToChannel(n.chatID, text)
	} else {
		id, err := strconv.ParseInt(n.chatID, 10, 64)
		if err != nil {
			return msg, fmt.Errorf("parse chat id %q: %w", n.chatID, err)
		}
		msg = tgbotapi.NewMessage(id, text)
	}
	msg.DisableWebPagePreview = true
	return msg, nil
}
