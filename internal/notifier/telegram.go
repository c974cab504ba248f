package notifier

import (
	"fmt"
	"strings"

	"github.com/gdg-garage/potluck-signup/internal/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// sender is the part of tgbotapi.BotAPI the notifier needs.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type TelegramNotifier struct {
	bot    sender
	chatID int64
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	if token == "" || chatID == 0 {
		return nil, fmt.Errorf("telegram bot token or chat ID not configured")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (n *TelegramNotifier) NotifyRegistration(potluck models.Potluck, category models.Category, registration models.Registration) error {
	// Telegram gets plain text; the Discord markdown markers are dropped.
	text := strings.ReplaceAll(registrationMessage(potluck, category, registration), "**", "")

	if _, err := n.bot.Send(tgbotapi.NewMessage(n.chatID, text)); err != nil {
		logrus.Errorf("Failed to send telegram message: %v", err)
		return err
	}
	return nil
}
