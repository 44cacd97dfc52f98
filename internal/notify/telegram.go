// Package notify posts best-effort Telegram notifications. Nothing here may
// fail a booking: every error is returned as information, not propagated.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/BerakaStudio/spinbook-two/internal/config"
	"github.com/BerakaStudio/spinbook-two/internal/models"
)

// ErrNotConfigured means notifications are disabled or credentials are
// missing. Callers treat it like any other non-fatal notifier failure.
var ErrNotConfigured = errors.New("telegram notifications disabled or not configured")

// TelegramNotifier sends booking summaries to a configured chat. The bot
// client is created lazily so a bad token surfaces as a failed notification
// instead of a failed boot.
type TelegramNotifier struct {
	cfg     config.TelegramConfig
	studio  config.StudioConfig
	limiter *rate.Limiter
	logger  *zerolog.Logger

	mu  sync.Mutex
	bot *tgbotapi.BotAPI
}

func NewTelegramNotifier(cfg config.TelegramConfig, studio config.StudioConfig, logger *zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		cfg:    cfg,
		studio: studio,
		// Telegram allows ~30 messages/second per bot; stay well under it.
		limiter: rate.NewLimiter(rate.Limit(20), 30),
		logger:  logger,
	}
}

// NotifyBooking formats and sends the booking summary. No retry, no queue:
// a dropped notification is simply lost.
func (n *TelegramNotifier) NotifyBooking(ctx context.Context, b *models.Booking) error {
	return n.send(ctx, n.bookingMessage(b))
}

// SendTest sends the diagnostics message used by the admin panel.
func (n *TelegramNotifier) SendTest(ctx context.Context) error {
	msg := "🧪 *Mensaje de prueba desde SpinBook Admin*\n\n" +
		"Si recibes este mensaje, la configuración de Telegram está funcionando correctamente."
	return n.send(ctx, msg)
}

func (n *TelegramNotifier) send(ctx context.Context, text string) error {
	if !n.cfg.Enabled || n.cfg.BotToken == "" || n.cfg.ChatID == 0 {
		return ErrNotConfigured
	}
	if !strings.Contains(n.cfg.BotToken, ":") {
		return errors.New("invalid bot token format")
	}

	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	bot, err := n.botClient()
	if err != nil {
		return fmt.Errorf("telegram client: %w", err)
	}

	msg := tgbotapi.NewMessage(n.cfg.ChatID, text)
	msg.ParseMode = n.cfg.ParseMode
	msg.DisableNotification = n.cfg.Silent
	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func (n *TelegramNotifier) botClient() (*tgbotapi.BotAPI, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.bot != nil {
		return n.bot, nil
	}
	bot, err := tgbotapi.NewBotAPI(n.cfg.BotToken)
	if err != nil {
		return nil, err
	}
	n.bot = bot
	n.logger.Info().Str("bot", bot.Self.UserName).Msg("telegram bot connected")
	return bot, nil
}

func (n *TelegramNotifier) bookingMessage(b *models.Booking) string {
	var sb strings.Builder
	sb.WriteString("🎵 *NUEVA RESERVA SPINBOOK* 🎵\n\n")
	sb.WriteString("📋 *DETALLES DE LA RESERVA:*\n")
	sb.WriteString(strings.Repeat("─", 40) + "\n\n")
	fmt.Fprintf(&sb, "👤 *Cliente:* %s\n", b.UserData.Name)
	fmt.Fprintf(&sb, "📧 *Email:* %s\n", b.UserData.Email)
	fmt.Fprintf(&sb, "📱 *Teléfono:* %s\n\n", b.UserData.Phone)
	fmt.Fprintf(&sb, "📅 *Fecha:* %s\n", models.FormatLongDate(b.Date))
	fmt.Fprintf(&sb, "⏰ *Horario:* %s\n", models.FormatSlotRanges(b.Slots))
	fmt.Fprintf(&sb, "🎼 *Servicios:* %s\n\n", models.ServiceDisplayNames(b.Services))
	fmt.Fprintf(&sb, "📍 *Ubicación:* %s\n", n.studio.Address)
	if note := strings.TrimSpace(b.UserData.Observations); note != "" {
		fmt.Fprintf(&sb, "💬 *Observaciones:* %s\n", note)
	}
	fmt.Fprintf(&sb, "\n🎯 *ID Reserva:* `%s`\n\n", b.ID)
	sb.WriteString(strings.Repeat("─", 40) + "\n")
	fmt.Fprintf(&sb, "⏱️ *Reserva generada:* %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "🏢 *Estudio:* %s\n\n", n.studio.Name)
	sb.WriteString("✅ *La reserva ha sido confirmada en Google Calendar*")
	return sb.String()
}
