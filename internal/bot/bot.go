package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"pricecompare-bot/internal/config"
	"pricecompare-bot/internal/session"
	"pricecompare-bot/internal/storage"
)

// API is the part of the Telegram client the bot uses. *tgbotapi.BotAPI
// satisfies it.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// RateLimiter counts hits per subject. *redis.Client satisfies it.
type RateLimiter interface {
	Allow(ctx context.Context, subject string, limit int64, window time.Duration) (bool, error)
}

type Bot struct {
	bot      API
	logger   *zap.Logger
	sessions session.Store
	recorder storage.Recorder
	limiter  RateLimiter
	cfg      *config.Config
	mu       sync.Mutex
	handlers map[string]func(context.Context, int64, session.Session, string)
}

// New wires the bot. limiter may be nil to disable rate limiting and recorder
// may be nil to disable statistics.
func New(
	api API,
	sessions session.Store,
	recorder storage.Recorder,
	limiter RateLimiter,
	logger *zap.Logger,
	cfg *config.Config,
) *Bot {
	if recorder == nil {
		recorder = storage.NopRecorder{}
	}

	b := &Bot{
		bot:      api,
		logger:   logger,
		sessions: sessions,
		recorder: recorder,
		limiter:  limiter,
		cfg:      cfg,
	}

	b.registerHandlers()
	return b
}

func (b *Bot) registerHandlers() {
	b.handlers = map[string]func(context.Context, int64, session.Session, string){
		session.StepIdle:      b.handleQuickEntry,
		session.StepRowPrice:  b.handleRowPrice,
		session.StepRowAmount: b.handleRowAmount,
	}
}

func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Starting bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.bot.GetUpdatesChan(u)
	defer b.bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Shutting down bot")
			return nil

		case update, ok := <-updates:
			if !ok {
				return fmt.Errorf("updates channel closed")
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate processes one update. Updates are handled one at a time.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case update.Message != nil:
		if b.allow(ctx, update.Message.Chat.ID) {
			b.processMessage(ctx, update.Message)
		}
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		if b.allow(ctx, update.CallbackQuery.Message.Chat.ID) {
			b.processCallback(ctx, update.CallbackQuery)
		}
	}
}

func (b *Bot) allow(ctx context.Context, chatID int64) bool {
	if b.limiter == nil || b.cfg.RateLimit.Limit <= 0 {
		return true
	}

	ok, err := b.limiter.Allow(ctx, fmt.Sprintf("chat:%d", chatID), b.cfg.RateLimit.Limit, b.cfg.RateLimit.Window)
	if err != nil {
		b.logger.Warn("Rate limit check failed",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return true
	}
	if !ok {
		b.logger.Debug("Update dropped by rate limit", zap.Int64("chat_id", chatID))
	}
	return ok
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	b.logger.Debug("Processing message",
		zap.Int64("chat_id", chatID),
		zap.String("text", msg.Text))

	if msg.IsCommand() {
		b.handleCommand(ctx, chatID, msg.Command())
		return
	}

	sess, ok := b.loadSession(ctx, chatID)
	if !ok {
		return
	}

	if handler, exists := b.handlers[sess.Step]; exists {
		handler(ctx, chatID, sess, msg.Text)
	} else {
		b.handleDefault(ctx, chatID, sess)
	}
}

func (b *Bot) loadSession(ctx context.Context, chatID int64) (session.Session, bool) {
	sess, err := b.sessions.Get(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to get session",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, msgSessionError)
		return session.Session{}, false
	}
	return sess, true
}

func (b *Bot) saveSession(ctx context.Context, chatID int64, sess session.Session) bool {
	if err := b.sessions.Save(ctx, chatID, sess); err != nil {
		b.logger.Error("Failed to save session",
			zap.Int64("chat_id", chatID),
			zap.String("step", sess.Step),
			zap.Error(err))
		b.sendError(chatID, msgSessionError)
		return false
	}
	return true
}

func (b *Bot) sendMessage(msg tgbotapi.Chattable) {
	if _, err := b.bot.Send(msg); err != nil {
		b.logger.Error("Failed to send message", zap.Error(err))
	}
}

func (b *Bot) sendText(chatID int64, text string) {
	b.sendMessage(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) sendError(chatID int64, text string) {
	b.sendText(chatID, "❌ "+text)
}
