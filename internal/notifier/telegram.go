package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/amishk599/internradar/internal/model"
	"github.com/amishk599/internradar/internal/ratelimit"
)

const (
	// telegramLimiterKey spaces consecutive sends through the shared limiter.
	telegramLimiterKey = "telegram"
	maxTelegramBackoff = time.Minute
)

var _ model.Notifier = (*TelegramNotifier)(nil)

// TelegramNotifier posts postings and summaries to one Telegram chat.
type TelegramNotifier struct {
	bot       *tgbotapi.BotAPI
	chatID    int64
	channel   string // set instead of chatID for @channel targets
	formatter *Formatter
	limiter   *ratelimit.Limiter
	logger    *slog.Logger
}

// NewTelegramNotifier authenticates the bot token (getMe) and returns a
// notifier for chat, which is either a numeric chat ID or an @channel name.
func NewTelegramNotifier(token, chat string, client *http.Client, formatter *Formatter, limiter *ratelimit.Limiter, logger *slog.Logger) (*TelegramNotifier, error) {
	return newTelegramNotifier(token, chat, tgbotapi.APIEndpoint, client, formatter, limiter, logger)
}

func newTelegramNotifier(token, chat, endpoint string, client *http.Client, formatter *Formatter, limiter *ratelimit.Limiter, logger *slog.Logger) (*TelegramNotifier, error) {
	n := &TelegramNotifier{
		formatter: formatter,
		limiter:   limiter,
		logger:    logger,
	}

	chat = strings.TrimSpace(chat)
	if id, err := strconv.ParseInt(chat, 10, 64); err == nil {
		n.chatID = id
	} else if strings.HasPrefix(chat, "@") {
		n.channel = chat
	} else {
		return nil, fmt.Errorf("telegram chat %q: want a numeric ID or @channel", chat)
	}

	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram bot login: %w", err)
	}
	n.bot = bot
	logger.Info("using telegram notifier", "bot", bot.Self.UserName)
	return n, nil
}

// Notify sends one posting with an apply button when a link is known.
func (n *TelegramNotifier) Notify(ctx context.Context, p model.Posting) error {
	msg := n.newMessage(n.formatter.Posting(p))
	if p.URL != "" {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonURL(fmt.Sprintf("Apply on %s 🚀", p.Platform), p.URL),
			),
		)
	}

	if err := n.send(ctx, msg); err != nil {
		return &model.DeliveryError{PostingID: p.ID, Err: err}
	}
	n.logger.Debug("telegram message sent", "platform", string(p.Platform), "id", p.ID, "title", p.Title)
	return nil
}

// NotifySummary sends the end-of-cycle report.
func (n *TelegramNotifier) NotifySummary(ctx context.Context, r model.Report) error {
	if err := n.send(ctx, n.newMessage(n.formatter.Summary(r))); err != nil {
		return &model.DeliveryError{PostingID: "summary", Err: err}
	}
	return nil
}

func (n *TelegramNotifier) newMessage(text string) tgbotapi.MessageConfig {
	var msg tgbotapi.MessageConfig
	if n.channel != "" {
		msg = tgbotapi.NewMessageToChannel(n.channel, text)
	} else {
		msg = tgbotapi.NewMessage(n.chatID, text)
	}
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	return msg
}

// send waits for the shared limiter, then sends. A 429 from Telegram is
// retried once after the advertised delay.
func (n *TelegramNotifier) send(ctx context.Context, msg tgbotapi.MessageConfig) error {
	if n.limiter != nil {
		if err := n.limiter.Wait(ctx, telegramLimiterKey); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := n.bot.Send(msg)

	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		wait := time.Duration(apiErr.RetryAfter) * time.Second
		if wait <= 0 {
			wait = time.Second
		}
		wait = min(wait, maxTelegramBackoff)
		n.logger.Warn("telegram rate limited, retrying", "retry_after", wait)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		_, err = n.bot.Send(msg)
	}
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// SendTestMessage sends a sample posting to verify the integration works.
func SendTestMessage(ctx context.Context, n model.Notifier) error {
	sample := model.Posting{
		ID:             "test-001",
		Platform:       model.PlatformInternshala,
		Title:          "Test Notification (Integration Verified)",
		Company:        "Internship Radar",
		Location:       "Everywhere",
		Stipend:        "₹ 0 /month",
		Duration:       "1 Month",
		PostedOn:       "Just now",
		URL:            "https://internshala.com/internships/",
		ActivelyHiring: true,
	}
	return n.Notify(ctx, sample)
}
