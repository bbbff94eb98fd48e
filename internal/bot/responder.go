package bot

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/Adda-Baaj/bazaar-samachar/internal/logger"
	"github.com/Adda-Baaj/bazaar-samachar/pkg/telegram"
)

const (
	// StartReply acknowledges /start.
	StartReply = "📢 Stock Market Important News Bot active!"

	DefaultPollTimeout = 30 * time.Second
	errorDelay         = 3 * time.Second
)

// API is the part of the Telegram client the responder uses.
type API interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]telegram.Update, error)
	SendMessage(ctx context.Context, chatID, text, parseMode string) (*telegram.Message, error)
}

// Responder answers bot commands received through long polling. It keeps no state
// besides the update offset.
type Responder struct {
	api         API
	pollTimeout time.Duration
	log         logger.Logger
	sleep       func(ctx context.Context, d time.Duration) error
}

func NewResponder(api API, pollTimeout time.Duration, log logger.Logger) *Responder {
	if pollTimeout <= 0 {
		pollTimeout = DefaultPollTimeout
	}
	return &Responder{
		api:         api,
		pollTimeout: pollTimeout,
		log:         logger.OrNop(log),
		sleep:       sleepCtx,
	}
}

// Run polls until ctx is cancelled. Polling errors are logged and retried after a short delay.
func (r *Responder) Run(ctx context.Context) error {
	var offset int64
	r.log.InfoObj("command responder started", "bot_start", map[string]any{
		"poll_timeout": r.pollTimeout.String(),
	})
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		updates, err := r.api.GetUpdates(ctx, offset, r.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.log.WarnObj("get updates failed", "bot_poll_error", map[string]any{"error": err.Error()})
			if err := r.sleep(ctx, errorDelay); err != nil {
				return err
			}
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			r.Handle(ctx, u)
		}
	}
}

// Handle answers a single update. Anything other than /start is ignored.
func (r *Responder) Handle(ctx context.Context, u telegram.Update) {
	if u.Message == nil || !isCommand(u.Message.Text, "start") {
		return
	}

	chatID := strconv.FormatInt(u.Message.Chat.ID, 10)
	if _, err := r.api.SendMessage(ctx, chatID, StartReply, ""); err != nil {
		r.log.ErrorObj("start reply failed", "bot_reply_error", map[string]any{
			"chat_id": chatID,
			"error":   err.Error(),
		})
		return
	}
	r.log.DebugObj("start acknowledged", "bot_reply", map[string]any{"chat_id": chatID})
}

// isCommand matches "/name", "/name@botname" and either followed by arguments.
func isCommand(text, name string) bool {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return false
	}
	cmd, _, _ := strings.Cut(fields[0], "@")
	return cmd == "/"+name
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
