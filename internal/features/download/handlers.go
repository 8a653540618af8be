// Package download — handlers.go: телеграм-обвязка ядра.
// Принимает URL, рисует клавиатуру режимов, гоняет пайплайн и доставляет
// архив документом. Все ошибки переводятся в одно сообщение пользователю
// на самом внешнем уровне задачи.
package download

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"webgrab.dev/telegram-bot/internal/common"
	"webgrab.dev/telegram-bot/internal/features/access"
	"webgrab.dev/telegram-bot/internal/features/journal"
)

// Handler обрабатывает пользовательский поток скачивания.
type Handler struct {
	bot      *tgbotapi.BotAPI
	svc      *Service
	sessions *Sessions
	access   *access.Service
	journal  *journal.Service // nil, если журнал выключен

	adminUsername string
	maxBytes      int64
	timeout       time.Duration
}

// NewHandler создаёт обработчик потока скачивания.
func NewHandler(bot *tgbotapi.BotAPI, svc *Service, sessions *Sessions, accessSvc *access.Service, jrnl *journal.Service, adminUsername string, maxBytes int64, timeout time.Duration) *Handler {
	return &Handler{
		bot:           bot,
		svc:           svc,
		sessions:      sessions,
		access:        accessSvc,
		journal:       jrnl,
		adminUsername: adminUsername,
		maxBytes:      maxBytes,
		timeout:       timeout,
	}
}

// modeKeyboard — инлайн-клавиатура выбора режима.
func modeKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🌐 Full Source Download", string(ModeFull)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📄 Partial Download", string(ModePartial)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚫 Cancel", callbackCancel),
		),
	)
}

// HandleText обрабатывает текстовое сообщение от допущенного пользователя:
// URL → клавиатура режимов, не-URL → подсказка.
func (h *Handler) HandleText(ctx context.Context, chatID, userID int64, text string) {
	if !LooksLikeURL(text) {
		h.sendPlain(chatID, "Please send a valid website URL.")
		return
	}

	url, err := NormalizeURL(text)
	if err != nil {
		log.WithError(err).WithField("text", common.Truncate(text, 100)).Debug("Текст похож на URL, но не парсится")
		h.sendPlain(chatID, "Please send a valid website URL.")
		return
	}

	if err := h.sessions.Begin(chatID, userID, url); err != nil {
		h.sendPlain(chatID, "⏳ A download is already in progress in this chat.\nPlease wait for it to finish.")
		return
	}

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"🌐 *Website URL Received*\n\n`%s`\n\nPlease choose download type:", url,
	))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = modeKeyboard()
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки клавиатуры")
	}
}

// HandleCancel обрабатывает команду /cancel.
func (h *Handler) HandleCancel(chatID int64) {
	h.sessions.Cancel(chatID)
	h.sendPlain(chatID, "🚫 Operation cancelled.")
}

// HandleCallback обрабатывает нажатие кнопки режима.
// Кнопка уже подтверждена (answerCallbackQuery) в диспетчере.
func (h *Handler) HandleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if query.Message == nil {
		return
	}
	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID

	if query.Data == callbackCancel {
		h.sessions.Cancel(chatID)
		h.edit(chatID, messageID, "🚫 Operation cancelled.")
		return
	}

	mode, ok := ParseMode(query.Data)
	if !ok {
		log.WithField("data", query.Data).Warn("Неизвестный callback")
		return
	}

	url, err := h.sessions.TakeForWork(chatID)
	switch {
	case errors.Is(err, common.ErrNoURL):
		h.edit(chatID, messageID, "❌ No URL found. Please send URL again.")
		return
	case errors.Is(err, common.ErrBusy):
		// Повторный тык по кнопке во время работы — просто игнорируем.
		return
	}

	h.edit(chatID, messageID, fmt.Sprintf(
		"⏳ *Downloading %s*\n\nURL: `%s`\n\nPlease wait...", mode.DisplayName(), url,
	))

	res, dlErr := h.svc.Download(ctx, url, mode)

	if cancelled := h.sessions.Finish(chatID); cancelled {
		// Пользователь отменил, пока шла работа: результат выбрасываем.
		log.WithFields(log.Fields{"chat_id": chatID, "url": url}).Info("Результат отброшен после отмены")
		return
	}

	if dlErr != nil {
		h.edit(chatID, messageID, h.errorMessage(dlErr))
		return
	}

	h.deliver(ctx, query, chatID, messageID, url, mode, res)
}

// deliver отправляет готовый архив документом и обновляет счётчики.
func (h *Handler) deliver(ctx context.Context, query *tgbotapi.CallbackQuery, chatID int64, messageID int, url string, mode Mode, res *Result) {
	h.edit(chatID, messageID, fmt.Sprintf("📤 Sending file (%s)...", common.FormatMB(res.Size)))

	filename := ArchiveName(url, mode, time.Now())
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  filename,
		Bytes: res.Archive,
	})
	doc.Caption = fmt.Sprintf(
		"✅ *Website Source Downloaded!*\n\n*Details:*\n• Website: `%s`\n• Type: %s\n• File Size: %s\n• Files: %d\n\nAdmin: %s",
		url, mode.DisplayName(), common.FormatMB2(res.Size), res.Files, h.adminUsername,
	)
	doc.ParseMode = tgbotapi.ModeMarkdown

	if _, err := h.bot.Send(doc); err != nil {
		log.WithError(err).WithFields(log.Fields{"chat_id": chatID, "file": filename}).Error("Ошибка отправки документа")
		h.sendPlain(chatID, "❌ Failed to send the file. Please try again.")
		return
	}

	// Счётчик доставок — только после фактической отправки.
	if err := h.access.RecordDownload(); err != nil {
		log.WithError(err).Warn("Счётчик скачиваний не записался")
	}

	if h.journal != nil {
		h.journal.Record(ctx, &journal.Entry{
			UserID:     query.From.ID,
			ChatID:     chatID,
			URL:        url,
			Mode:       string(mode),
			Files:      res.Files,
			Bytes:      res.Size,
			DurationMS: res.Duration.Milliseconds(),
		})
	}

	h.edit(chatID, messageID, fmt.Sprintf(
		"✅ *Done!* File sent successfully.\n\nFiles: %d\nSize: %s", res.Files, common.FormatMB(res.Size),
	))
}

// errorMessage переводит ошибку пайплайна в сообщение пользователю.
func (h *Handler) errorMessage(err error) string {
	var tooLarge *TooLargeError
	switch {
	case errors.As(err, &tooLarge):
		return fmt.Sprintf(
			"❌ *File Too Large*\n\nSize: %s\nLimit: %s\n\nTry partial download instead.",
			common.FormatMB(tooLarge.Size), common.FormatMB(h.maxBytes),
		)
	case errors.Is(err, common.ErrEmptyMirror):
		return "❌ *Download Failed*\n\nThe site produced no retrievable content."
	case errors.Is(err, common.ErrMirrorTimeout):
		return fmt.Sprintf(
			"❌ *Download timeout* (%s)\n\nThe site is too large or too slow. Try partial download.",
			timeoutPhrase(h.timeout),
		)
	case errors.Is(err, common.ErrMirrorFailed):
		return "❌ *Download Failed*\n\nThe site may be unreachable or protected."
	default:
		log.WithError(err).Error("Неожиданная ошибка пайплайна")
		return "❌ An error occurred. Please try again."
	}
}

// timeoutPhrase превращает дедлайн в человеческую фразу для сообщения.
func timeoutPhrase(d time.Duration) string {
	if d >= time.Minute && d%time.Minute == 0 {
		m := int(d / time.Minute)
		if m == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", m)
	}
	return fmt.Sprintf("%d seconds", int(d.Seconds()))
}

// edit обновляет статусное сообщение. При неудаче (например, Markdown
// не распарсился) — best-effort деградация в обычное сообщение.
func (h *Handler) edit(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := h.bot.Send(edit); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Warn("Ошибка редактирования сообщения")
		h.sendPlain(chatID, text)
	}
}

func (h *Handler) sendPlain(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
