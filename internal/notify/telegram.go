// Package notify delivers high-severity edges to a Telegram chat.
package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yourusername/sportsedge/internal/models"
)

// sender is the part of the bot API the notifier needs
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier sends edge alerts via the Telegram Bot API.
type TelegramNotifier struct {
	bot            sender
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
	minSeverity    models.Severity
}

// NewTelegramNotifier creates a notifier bound to one chat.
func NewTelegramNotifier(botToken, chatID string, maxRetries int) (*TelegramNotifier, error) {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	return newTelegramNotifier(bot, id, maxRetries, time.Second), nil
}

func newTelegramNotifier(bot sender, chatID int64, maxRetries int, retryDelayBase time.Duration) *TelegramNotifier {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &TelegramNotifier{
		bot:            bot,
		chatID:         chatID,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
		minSeverity:    models.SeverityHigh,
	}
}

// Name identifies the sink in metrics and logs
func (n *TelegramNotifier) Name() string { return "telegram" }

// Publish sends the edge when its dominant severity is high; other edges are ignored
func (n *TelegramNotifier) Publish(ctx context.Context, edge *models.Edge) error {
	if edge.Dominant.Severity != n.minSeverity {
		return nil
	}
	return n.sendMarkdownV2(ctx, FormatEdge(edge))
}

func (n *TelegramNotifier) sendMarkdownV2(ctx context.Context, text string) error {
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = "MarkdownV2"

	var lastErr error
	for i := 0; i < n.maxRetries; i++ {
		if _, err := n.bot.Send(msg); err == nil {
			return nil
		} else {
			lastErr = err
		}
		if i == n.maxRetries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(n.retryDelayBase * time.Duration(i+1)):
		}
	}
	return fmt.Errorf("failed after %d retries: %w", n.maxRetries, lastErr)
}

// FormatEdge renders an edge as a Telegram MarkdownV2 message
func FormatEdge(edge *models.Edge) string {
	d := edge.Dominant
	var b strings.Builder

	b.WriteString("🚨 *High edge detected*\n\n")
	fmt.Fprintf(&b, "🏟 %s · match `%s`\n",
		escapeMarkdownV2(string(edge.Prediction.Sport)),
		escapeMarkdownV2(edge.MatchID.String()))
	fmt.Fprintf(&b, "🎯 *%s* @ %s \\(%s\\)\n",
		escapeMarkdownV2(string(d.Outcome)),
		escapeMarkdownV2(fmt.Sprintf("%.2f", d.Odds)),
		escapeMarkdownV2(edge.Odds.Bookmaker))
	fmt.Fprintf(&b, "📊 model %s vs market %s\n",
		escapeMarkdownV2(fmt.Sprintf("%.1f%%", d.ModelProbability*100)),
		escapeMarkdownV2(fmt.Sprintf("%.1f%%", d.ImpliedProbability*100)))
	fmt.Fprintf(&b, "📈 edge *%s*, EV %s, stake %s\n",
		escapeMarkdownV2(fmt.Sprintf("%+.1f%%", d.Edge*100)),
		escapeMarkdownV2(fmt.Sprintf("%+.3f", d.ExpectedValue)),
		escapeMarkdownV2(fmt.Sprintf("%.1f%%", d.KellyFraction*100)))
	fmt.Fprintf(&b, "🧠 confidence %s",
		escapeMarkdownV2(fmt.Sprintf("%.2f", edge.Prediction.Confidence)))

	return b.String()
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2.
func escapeMarkdownV2(text string) string {
	var b strings.Builder
	b.Grow(len(text) + len(text)/4)
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!':
			b.WriteByte('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}
