package bot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"pricecompare-bot/internal/storage"
)

// handleStats shows usage statistics to administrators.
func (b *Bot) handleStats(ctx context.Context, chatID int64) {
	if !b.cfg.IsAdmin(chatID) {
		b.sendError(chatID, msgNotAdmin)
		return
	}

	stats, err := b.recorder.Statistics(ctx)
	if errors.Is(err, storage.ErrStatisticsDisabled) {
		b.sendText(chatID, msgStatsOff)
		return
	}
	if err != nil {
		b.logger.Error("Failed to get comparison statistics", zap.Error(err))
		b.sendError(chatID, msgStatsError)
		return
	}

	msg := tgbotapi.NewMessage(chatID, FormatStatistics(stats))
	msg.ParseMode = tgbotapi.ModeMarkdown
	b.sendMessage(msg)
}

func FormatStatistics(stats *storage.Statistics) string {
	var sb strings.Builder
	fmt.Fprintf(&sb,
		"📊 *Estatísticas*\n\n"+
			"📌 Comparações: %d\n"+
			"📅 Hoje: %d\n"+
			"📅 Últimos 7 dias: %d\n"+
			"🤝 Empates: %d\n"+
			"📏 Média de linhas: %.1f (%.1f preenchidas)",
		stats.Total, stats.Today, stats.Week, stats.Ties,
		stats.AvgRows, stats.AvgValidRows)

	if len(stats.ByUnit) > 0 {
		units := make([]string, 0, len(stats.ByUnit))
		for u := range stats.ByUnit {
			units = append(units, u)
		}
		sort.Strings(units)

		sb.WriteString("\n\n📌 Por unidade:")
		for _, u := range units {
			fmt.Fprintf(&sb, "\n• %s: %d", u, stats.ByUnit[u])
		}
	}
	return sb.String()
}
