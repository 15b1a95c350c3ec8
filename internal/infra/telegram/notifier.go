package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"composite-client/internal/config"
	"composite-client/internal/domain/model"
	"composite-client/internal/domain/ports/adapter"
)

var _ adapter.Notifier = (*Notifier)(nil)

// Notifier posts share card outcomes to a single Telegram chat.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    *zerolog.Logger
}

func NewNotifier(cfg config.TelegramConfig, logger *zerolog.Logger) (*Notifier, error) {
	return NewNotifierWithEndpoint(cfg, tgbotapi.APIEndpoint, &http.Client{Timeout: 10 * time.Second}, logger)
}

// NewNotifierWithEndpoint talks to a non-default Bot API endpoint, which must
// be a format string like tgbotapi.APIEndpoint.
func NewNotifierWithEndpoint(cfg config.TelegramConfig, endpoint string, client tgbotapi.HTTPClient, logger *zerolog.Logger) (*Notifier, error) {
	if cfg.Token == "" {
		return nil, errors.New("telegram token is empty")
	}
	if cfg.ChatID == 0 {
		return nil, errors.New("telegram chat id is empty")
	}
	bot, err := tgbotapi.NewBotAPIWithClient(cfg.Token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	l := logger.With().Str("component", "TelegramNotifier").Logger()
	l.Debug().Str("bot", bot.Self.UserName).Msg("telegram notifier ready")
	return &Notifier{bot: bot, chatID: cfg.ChatID, log: &l}, nil
}

func (n *Notifier) NotifyShareCard(ctx context.Context, h model.JobHandle, outcome model.PollOutcome, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	msg := tgbotapi.NewMessage(n.chatID, Message(h, outcome, err))
	msg.DisableWebPagePreview = outcome.Kind != model.OutcomeCompleted
	if _, serr := n.bot.Send(msg); serr != nil {
		return fmt.Errorf("telegram send: %w", serr)
	}
	n.log.Debug().Str("movie_id", h.MovieID.String()).Msg("outcome sent")
	return nil
}

// Message renders a session result as chat text.
func Message(h model.JobHandle, outcome model.PollOutcome, err error) string {
	head := "Movie " + h.MovieID.String()
	if h.JobID != "" {
		head += " (job " + h.JobID.String() + ")"
	}
	if err != nil {
		return head + "\nshare card failed: " + err.Error()
	}
	return head + "\n" + outcome.String()
}
