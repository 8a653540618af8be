// Package bot содержит главный модуль бота — инициализацию, запуск и
// остановку. bot.go ведёт long polling, ограничивает параллелизм и
// маршрутизирует апдейты: текст → сессия скачивания, кнопки → режимы,
// команды → пользовательские или операторские обработчики.
// Шлюз политики доступа стоит перед каждым пользовательским событием.
package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"webgrab.dev/telegram-bot/internal/bot/middleware"
	"webgrab.dev/telegram-bot/internal/config"
	"webgrab.dev/telegram-bot/internal/features/access"
	"webgrab.dev/telegram-bot/internal/features/download"
)

// Bot — главная структура бота, объединяющая все компоненты.
type Bot struct {
	api *tgbotapi.BotAPI
	cfg *config.Config

	rateLimiter *middleware.RateLimiter
	parser      *CommandParser

	accessService   *access.Service
	accessHandler   *access.Handler
	downloadHandler *download.Handler
	sessions        *download.Sessions

	// ограничитель параллелизма обработки апдейтов
	inflight chan struct{}
}

// New создаёт новый экземпляр бота со всеми зависимостями.
func New(
	api *tgbotapi.BotAPI,
	cfg *config.Config,
	accessService *access.Service,
	accessHandler *access.Handler,
	downloadHandler *download.Handler,
	sessions *download.Sessions,
) *Bot {
	maxInFlight := cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	return &Bot{
		api:             api,
		cfg:             cfg,
		rateLimiter:     middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		parser:          NewCommandParser(),
		accessService:   accessService,
		accessHandler:   accessHandler,
		downloadHandler: downloadHandler,
		sessions:        sessions,
		inflight:        make(chan struct{}, maxInFlight),
	}
}

// Start запускает polling обновлений от Telegram.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.BotUpdateTimeoutSeconds

	updates := b.api.GetUpdatesChan(u)

	log.WithFields(log.Fields{
		"max_inflight": b.cfg.BotMaxInflight,
		"timeout_sec":  b.cfg.BotUpdateTimeoutSeconds,
	}).Info("Бот запущен и ожидает сообщения...")

	for {
		select {
		case <-ctx.Done():
			log.Info("Бот останавливается (ctx done)...")
			b.api.StopReceivingUpdates()
			b.rateLimiter.Close()
			return

		case update, ok := <-updates:
			if !ok {
				log.Info("Канал updates закрыт, бот остановлен")
				return
			}

			// лимит параллелизма
			b.inflight <- struct{}{}
			go func(upd tgbotapi.Update) {
				defer func() { <-b.inflight }()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

// handleUpdate обрабатывает одно обновление от Telegram.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer middleware.RecoverFromPanic()

	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil || update.Message.Text == "" || update.Message.From == nil {
		return
	}
	message := update.Message

	middleware.LogMessage(message)

	// Rate limiting (админа не душим)
	if !b.accessService.IsAdmin(message.From.ID) && !b.rateLimiter.Allow(message.From.ID) {
		log.WithField("user_id", message.From.ID).Debug("rate limited")
		return
	}

	chatID := message.Chat.ID
	userID := message.From.ID

	cmd, args, isCommand := b.parser.ParseCommand(message.Text)
	if isCommand {
		b.routeCommand(ctx, chatID, userID, cmd, args)
		return
	}

	// Обычный текст — это кандидат в URL. Сначала шлюз политики.
	if !b.gate(chatID, userID) {
		return
	}
	b.downloadHandler.HandleText(ctx, chatID, userID, message.Text)
}

// handleCallback обрабатывает нажатие инлайн-кнопки.
func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	middleware.LogCallback(query)

	// Подтверждаем кнопку сразу: иначе у пользователя крутится спиннер.
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		log.WithError(err).Debug("answerCallbackQuery failed")
	}

	if query.Message == nil {
		return
	}
	chatID := query.Message.Chat.ID
	userID := query.From.ID

	if !b.accessService.IsAdmin(userID) {
		if b.accessService.Maintenance() {
			b.edit(chatID, query.Message.MessageID, b.accessService.MaintenanceMessage())
			return
		}
		// Своя сессия уже существует и лимит занимать не должна.
		if ok, reason := b.accessService.Check(userID, b.sessions.Active(userID, b.cfg.AdminID)); !ok {
			b.edit(chatID, query.Message.MessageID, reason)
			return
		}
	}

	b.downloadHandler.HandleCallback(ctx, query)
}

// routeCommand маршрутизирует команду к нужному обработчику.
func (b *Bot) routeCommand(ctx context.Context, chatID, userID int64, cmd string, args []string) {
	log.WithFields(log.Fields{
		"cmd":  cmd,
		"args": args,
	}).Debug("routing command")

	// Операторские команды (внутри свой отказ для не-админов)
	if b.accessHandler.HandleCommand(ctx, chatID, userID, cmd, args) {
		return
	}

	switch cmd {
	case "start":
		if b.gate(chatID, userID) {
			b.sendMarkdown(chatID, welcomeText(b.cfg.AdminUsername))
		}
	case "help":
		if b.gate(chatID, userID) {
			b.sendMarkdown(chatID, helpText())
		}
	case "cancel":
		b.downloadHandler.HandleCancel(chatID)
	default:
		// Неизвестные команды молча игнорируем
	}
}

// gate пропускает событие через шлюз политики.
// При отказе пользователю уходит причина, обработка прекращается.
func (b *Bot) gate(chatID, userID int64) bool {
	if b.accessService.IsAdmin(userID) {
		return true
	}
	if b.accessService.Maintenance() {
		b.sendMarkdown(chatID, b.accessService.MaintenanceMessage())
		return false
	}
	ok, reason := b.accessService.Check(userID, b.sessions.Active(userID, b.cfg.AdminID))
	if !ok {
		b.sendMessage(chatID, reason)
		return false
	}
	return true
}

// sendMessage — утилита для отправки сообщений.
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}

func (b *Bot) sendMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}

func (b *Bot) edit(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(edit); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Warn("Ошибка редактирования сообщения")
	}
}

// CommandParser разбирает команды с префиксом /.
type CommandParser struct {
	validPrefixes []string
}

// NewCommandParser создаёт парсер команд.
func NewCommandParser() *CommandParser {
	return &CommandParser{
		validPrefixes: []string{"/"},
	}
}

// ParseCommand разбирает текст на команду и аргументы.
// "/ban 123" → ("ban", ["123"], true). Суффикс @botname отрезается.
func (p *CommandParser) ParseCommand(text string) (string, []string, bool) {
	text = strings.TrimSpace(text)

	hasPrefix := false
	for _, prefix := range p.validPrefixes {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimPrefix(text, prefix)
			hasPrefix = true
			break
		}
	}
	if !hasPrefix {
		return "", nil, false
	}

	parts := strings.Fields(text)
	if len(parts) == 0 {
		return "", nil, false
	}

	command := strings.ToLower(parts[0])
	if at := strings.Index(command, "@"); at >= 0 {
		command = command[:at]
	}

	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}
	return command, args, true
}
