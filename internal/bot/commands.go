package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"pricecompare-bot/internal/compare"
	"pricecompare-bot/internal/export"
	"pricecompare-bot/internal/session"
	"pricecompare-bot/internal/storage"
)

func (b *Bot) handleCommand(ctx context.Context, chatID int64, cmd string) {
	b.logger.Info("Handling command",
		zap.Int64("chat_id", chatID),
		zap.String("command", cmd))

	switch cmd {
	case "start":
		b.handleStart(ctx, chatID)
	case "help":
		b.sendText(chatID, msgHelp)
	case "stats":
		b.handleStats(ctx, chatID)
	default:
		sess, ok := b.loadSession(ctx, chatID)
		if !ok {
			return
		}
		b.handleSheetCommand(ctx, chatID, sess, cmd)
	}
}

func (b *Bot) handleSheetCommand(ctx context.Context, chatID int64, sess session.Session, cmd string) {
	editing := sess.Step != session.StepIdle

	switch cmd {
	case "clear":
		sess = b.clearSheet(ctx, chatID, sess)
	case "add":
		sess.Sheet = sess.Sheet.AddRow()
	case "remove":
		if sess.Sheet.Len() <= 1 {
			b.sendError(chatID, msgNothingToCut)
			return
		}
		sess.Sheet = sess.Sheet.RemoveRow()
	case "weight":
		sess.Sheet = sess.Sheet.WithUnit(compare.Weight)
	case "volume":
		sess.Sheet = sess.Sheet.WithUnit(compare.Volume)
	case "small":
		sess.Sheet = sess.Sheet.ToggleScale()
	case "export":
		b.exportSheet(ctx, chatID, sess.Sheet)
		return
	case "cancel":
		b.cancelEdit(ctx, chatID, sess)
		return
	default:
		b.handleUnknownCommand(chatID)
		return
	}

	// Any sheet change ends a pending edit.
	sess.Step = session.StepIdle
	sess.EditRow = 0
	if !b.saveSession(ctx, chatID, sess) {
		return
	}
	if editing {
		b.dropCancelKeyboard(chatID)
	}
	b.showSheet(chatID, sess.Sheet)
}

// handleStart drops the stored session so the chat starts over with the
// default sheet.
func (b *Bot) handleStart(ctx context.Context, chatID int64) {
	if err := b.sessions.Clear(ctx, chatID); err != nil {
		b.logger.Error("Failed to clear session",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, msgSessionError)
		return
	}

	sess, ok := b.loadSession(ctx, chatID)
	if !ok {
		return
	}

	msg := tgbotapi.NewMessage(chatID, msgWelcome)
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	b.sendMessage(msg)
	b.showSheet(chatID, sess.Sheet)
}

func (b *Bot) handleUnknownCommand(chatID int64) {
	b.sendError(chatID, msgUnknownCmd)
}

// handleDefault recovers a session stuck in a step the bot does not know.
func (b *Bot) handleDefault(ctx context.Context, chatID int64, sess session.Session) {
	b.logger.Warn("Unknown session step, resetting",
		zap.Int64("chat_id", chatID),
		zap.String("step", sess.Step))

	sess.Step = session.StepIdle
	if !b.saveSession(ctx, chatID, sess) {
		return
	}
	b.showSheet(chatID, sess.Sheet)
}

// clearSheet records the finished comparison and empties every row.
func (b *Bot) clearSheet(ctx context.Context, chatID int64, sess session.Session) session.Session {
	res := compare.Evaluate(sess.Sheet)
	if res.ValidRows > 0 {
		b.record(ctx, chatID, res, storage.SourceClear)
	}
	sess.Sheet = sess.Sheet.ClearAll()
	return sess
}

func (b *Bot) cancelEdit(ctx context.Context, chatID int64, sess session.Session) {
	sess.Step = session.StepIdle
	sess.EditRow = 0
	if !b.saveSession(ctx, chatID, sess) {
		return
	}

	b.dropCancelKeyboard(chatID)
	b.showSheet(chatID, sess.Sheet)
}

func (b *Bot) exportSheet(ctx context.Context, chatID int64, s compare.Sheet) {
	data, err := export.XLSX(s, b.cfg.Calculator.CurrencySymbol)
	if err != nil {
		b.logger.Error("Failed to build workbook",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, msgExportError)
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  export.Filename(s),
		Bytes: data.Bytes(),
	})
	if _, err := b.bot.Send(doc); err != nil {
		b.logger.Error("Failed to send workbook",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, msgExportError)
		return
	}

	b.record(ctx, chatID, compare.Evaluate(s), storage.SourceExport)
}

func (b *Bot) record(ctx context.Context, chatID int64, res compare.Result, source string) {
	event := storage.NewComparisonEvent(chatID, res, source)
	if err := b.recorder.RecordComparison(ctx, event); err != nil {
		b.logger.Error("Failed to record comparison",
			zap.Int64("chat_id", chatID),
			zap.String("source", source),
			zap.Error(err))
	}
}

func (b *Bot) showSheet(chatID int64, s compare.Sheet) {
	msg := tgbotapi.NewMessage(chatID, FormatSheet(compare.Evaluate(s), b.cfg.Calculator.CurrencySymbol))
	msg.ReplyMarkup = b.createSheetKeyboard(s)
	b.sendMessage(msg)
}
