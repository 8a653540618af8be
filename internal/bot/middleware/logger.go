// Package middleware содержит промежуточные обработчики для логирования,
// восстановления после паники и rate-limiting.
package middleware

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"webgrab.dev/telegram-bot/internal/common"
)

// LogMessage логирует входящее сообщение.
// Текст режем: пользователи шлют URL, целиком он в логе не нужен.
func LogMessage(message *tgbotapi.Message) {
	if message == nil || message.From == nil {
		return
	}

	log.WithFields(log.Fields{
		"user_id":  message.From.ID,
		"chat_id":  message.Chat.ID,
		"username": message.From.UserName,
		"text":     common.Truncate(message.Text, 50),
	}).Debug("Входящее сообщение")
}

// LogCallback логирует нажатие инлайн-кнопки.
func LogCallback(query *tgbotapi.CallbackQuery) {
	if query == nil || query.From == nil {
		return
	}

	fields := log.Fields{
		"user_id":  query.From.ID,
		"username": query.From.UserName,
		"data":     query.Data,
	}
	if query.Message != nil {
		fields["chat_id"] = query.Message.Chat.ID
	}
	log.WithFields(fields).Debug("Входящий callback")
}
