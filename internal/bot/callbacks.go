package bot

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"pricecompare-bot/internal/compare"
	"pricecompare-bot/internal/session"
)

func (b *Bot) processCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID

	b.logger.Debug("Processing callback",
		zap.Int64("chat_id", chatID),
		zap.String("data", query.Data))

	if _, err := b.bot.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		b.logger.Warn("Failed to answer callback", zap.Error(err))
	}

	sess, ok := b.loadSession(ctx, chatID)
	if !ok {
		return
	}
	editing := sess.Step != session.StepIdle

	switch {
	case strings.HasPrefix(query.Data, cbEditPrefix):
		n, err := strconv.Atoi(strings.TrimPrefix(query.Data, cbEditPrefix))
		if err != nil {
			b.sendError(chatID, msgNoRow)
			return
		}
		b.startEdit(ctx, chatID, sess, n-1)
		return

	case query.Data == cbExport:
		b.exportSheet(ctx, chatID, sess.Sheet)
		return

	case query.Data == cbUnitWeight:
		sess.Sheet = sess.Sheet.WithUnit(compare.Weight)
	case query.Data == cbUnitVolume:
		sess.Sheet = sess.Sheet.WithUnit(compare.Volume)
	case query.Data == cbScaleToggle:
		sess.Sheet = sess.Sheet.ToggleScale()
	case query.Data == cbRowAdd:
		sess.Sheet = sess.Sheet.AddRow()
	case query.Data == cbRowRemove:
		sess.Sheet = sess.Sheet.RemoveRow()
	case query.Data == cbRowsClear:
		sess = b.clearSheet(ctx, chatID, sess)

	default:
		b.logger.Warn("Unknown callback data",
			zap.Int64("chat_id", chatID),
			zap.String("data", query.Data))
		return
	}

	// Any sheet change ends a pending edit, which also owns the cancel keyboard.
	sess.Step = session.StepIdle
	sess.EditRow = 0
	if !b.saveSession(ctx, chatID, sess) {
		return
	}
	if editing {
		b.dropCancelKeyboard(chatID)
	}
	b.editSheet(chatID, messageID, sess.Sheet)
}

func (b *Bot) dropCancelKeyboard(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, msgEditCanceled)
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	b.sendMessage(msg)
}

// editSheet redraws the sheet message the keyboard belongs to.
func (b *Bot) editSheet(chatID int64, messageID int, s compare.Sheet) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(
		chatID,
		messageID,
		FormatSheet(compare.Evaluate(s), b.cfg.Calculator.CurrencySymbol),
		b.createSheetKeyboard(s),
	)
	if _, err := b.bot.Send(edit); err != nil {
		b.logger.Warn("Failed to edit sheet message, sending a new one",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.showSheet(chatID, s)
	}
}
