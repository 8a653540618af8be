// Package access — handlers.go обрабатывает операторские команды.
// Все команды требуют совпадения с ADMIN_ID; при заданном
// ADMIN_PASSWORD_HASH дополнительно нужен /login <пароль> раз на процесс.
package access

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"webgrab.dev/telegram-bot/internal/common"
	"webgrab.dev/telegram-bot/internal/features/journal"
)

// Handler обрабатывает админ-команды.
type Handler struct {
	service         *Service
	store           *Store
	bot             *tgbotapi.BotAPI
	journal         *journal.Service // nil, если журнал выключен
	adminID         int64
	adminUsername   string
	maxArchiveBytes int64
}

// NewHandler создаёт обработчик операторских команд.
func NewHandler(service *Service, store *Store, bot *tgbotapi.BotAPI, jrnl *journal.Service, adminID int64, adminUsername string, maxArchiveBytes int64) *Handler {
	return &Handler{
		service:         service,
		store:           store,
		bot:             bot,
		journal:         jrnl,
		adminID:         adminID,
		adminUsername:   adminUsername,
		maxArchiveBytes: maxArchiveBytes,
	}
}

// HandleCommand маршрутизирует операторскую команду.
// Возвращает true, если команда относится к админке (в том числе отказ).
func (h *Handler) HandleCommand(ctx context.Context, chatID, userID int64, cmd string, args []string) bool {
	switch cmd {
	case "p", "ban", "unban", "lim", "man", "stats", "login":
	default:
		return false
	}

	if !h.service.IsAdmin(userID) {
		h.sendMessage(chatID, "❌ Only admin can use this command.")
		return true
	}

	if cmd == "login" {
		h.handleLogin(chatID, userID, args)
		return true
	}

	if h.service.NeedsLogin(userID) {
		h.sendMessage(chatID, "🔐 Please authenticate first: `/login <password>`")
		return true
	}

	switch cmd {
	case "p":
		h.handleGrant(chatID, args)
	case "ban":
		h.handleBan(chatID, args)
	case "unban":
		h.handleUnban(chatID, args)
	case "lim":
		h.handleLimit(chatID, args)
	case "man":
		h.handleMaintenance(chatID)
	case "stats":
		h.handleStats(ctx, chatID)
	}
	return true
}

func (h *Handler) handleLogin(chatID, userID int64, args []string) {
	if len(args) == 0 {
		h.sendMessage(chatID, "❌ Usage: `/login <password>`")
		return
	}
	if err := h.service.Login(userID, strings.Join(args, " ")); err != nil {
		log.WithField("user_id", userID).Warn("Неудачная попытка входа в админ-панель")
		h.sendMessage(chatID, "❌ Wrong password.")
		return
	}
	h.sendMessage(chatID, "✅ Authenticated.")
}

// parseUserID разбирает аргумент-идентификатор пользователя.
func (h *Handler) parseUserID(chatID int64, args []string, usage string) (int64, bool) {
	if len(args) == 0 {
		h.sendMessage(chatID, "❌ Usage: `"+usage+"`")
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		h.sendMessage(chatID, "❌ Invalid user ID. User ID must be a number.")
		return 0, false
	}
	return id, true
}

func (h *Handler) handleGrant(chatID int64, args []string) {
	target, ok := h.parseUserID(chatID, args, "/p [user_id]")
	if !ok {
		return
	}

	already, err := h.service.Grant(target)
	if err != nil {
		h.sendMessage(chatID, "❌ Save failed.")
		return
	}
	if already {
		h.sendMessage(chatID, fmt.Sprintf("ℹ️ User `%d` already has permission.", target))
		return
	}

	set := h.store.Snapshot()
	h.sendMessage(chatID, fmt.Sprintf(
		"✅ User `%d` has been given permission to use the bot.\n\nAllowed users: %d",
		target, len(set.AllowedUsers),
	))
}

func (h *Handler) handleBan(chatID int64, args []string) {
	target, ok := h.parseUserID(chatID, args, "/ban [user_id]")
	if !ok {
		return
	}

	already, err := h.service.Ban(target)
	if err == common.ErrBanAdmin {
		h.sendMessage(chatID, "❌ You cannot ban admin!")
		return
	}
	if err != nil {
		h.sendMessage(chatID, "❌ Save failed.")
		return
	}
	if already {
		h.sendMessage(chatID, fmt.Sprintf("ℹ️ User `%d` is already banned.", target))
		return
	}

	set := h.store.Snapshot()
	h.sendMessage(chatID, fmt.Sprintf(
		"✅ User `%d` has been banned from using the bot.\n\nBanned users: %d",
		target, len(set.BannedUsers),
	))
}

func (h *Handler) handleUnban(chatID int64, args []string) {
	target, ok := h.parseUserID(chatID, args, "/unban [user_id]")
	if !ok {
		return
	}

	already, err := h.service.Unban(target)
	if err != nil {
		h.sendMessage(chatID, "❌ Save failed.")
		return
	}
	if already {
		h.sendMessage(chatID, fmt.Sprintf("ℹ️ User `%d` is not banned.", target))
		return
	}

	set := h.store.Snapshot()
	h.sendMessage(chatID, fmt.Sprintf(
		"✅ User `%d` has been unbanned.\n\nBanned users: %d",
		target, len(set.BannedUsers),
	))
}

func (h *Handler) handleLimit(chatID int64, args []string) {
	if len(args) == 0 {
		h.sendMessage(chatID, "❌ Usage: `/lim [number]`\nExample: `/lim 5` for 5 users\n`/lim 0` for no limit")
		return
	}

	limit, err := strconv.Atoi(args[0])
	if err != nil {
		h.sendMessage(chatID, "❌ Invalid number. Please enter a valid number.")
		return
	}
	if limit < 0 {
		h.sendMessage(chatID, "❌ Limit must be 0 or positive number.")
		return
	}

	if err := h.service.SetLimit(limit); err != nil {
		h.sendMessage(chatID, "❌ Save failed.")
		return
	}

	if limit == 0 {
		h.sendMessage(chatID, "✅ User limit removed (no limit).")
	} else {
		h.sendMessage(chatID, fmt.Sprintf("✅ User limit set to %d users.", limit))
	}
}

func (h *Handler) handleMaintenance(chatID int64) {
	on, err := h.service.ToggleMaintenance()
	if err != nil {
		h.sendMessage(chatID, "❌ Save failed.")
		return
	}

	if on {
		h.sendMessage(chatID, "✅ *Maintenance mode ON 🔧*\n\nBot is now under maintenance.")
	} else {
		h.sendMessage(chatID, "✅ *Maintenance mode OFF ✅*\n\nBot is now active.")
	}
}

func (h *Handler) handleStats(ctx context.Context, chatID int64) {
	set := h.store.Snapshot()

	maintenance := "OFF ✅"
	if set.Maintenance {
		maintenance = "ON 🔧"
	}

	limit := "No limit"
	if set.UserLimit != nil {
		limit = fmt.Sprintf("%d users", *set.UserLimit)
	}

	uptime := common.FormatUptime(time.Since(time.Unix(set.StartTime, 0)))

	var sb strings.Builder
	sb.WriteString("📊 *Bot Statistics*\n\n")
	sb.WriteString("*General:*\n")
	fmt.Fprintf(&sb, "• Maintenance Mode: %s\n", maintenance)
	fmt.Fprintf(&sb, "• User Limit: %s\n", limit)
	fmt.Fprintf(&sb, "• Total Downloads: %d\n", set.DownloadsCount)
	fmt.Fprintf(&sb, "• Uptime: %s\n\n", uptime)

	sb.WriteString("*Users:*\n")
	fmt.Fprintf(&sb, "• Admin ID: %d\n", h.adminID)
	fmt.Fprintf(&sb, "• Admin Username: %s\n", h.adminUsername)
	fmt.Fprintf(&sb, "• Allowed Users: %d\n", len(set.AllowedUsers))
	fmt.Fprintf(&sb, "• Banned Users: %d\n\n", len(set.BannedUsers))

	fmt.Fprintf(&sb, "*Allowed Users List:*\n%s\n\n", joinIDs(set.AllowedUsers))
	fmt.Fprintf(&sb, "*Banned Users List:*\n%s\n\n", joinIDs(set.BannedUsers))

	sb.WriteString("*System:*\n")
	fmt.Fprintf(&sb, "• Settings File: %s\n", h.store.Path())
	fmt.Fprintf(&sb, "• Max File Size: %s\n", common.FormatMB(h.maxArchiveBytes))
	fmt.Fprintf(&sb, "• Bot Started: %s", time.Unix(set.StartTime, 0).Format("2006-01-02 15:04:05"))

	// Последние доставки из журнала (если БД подключена)
	if h.journal != nil {
		if entries, err := h.journal.Recent(ctx, 5); err != nil {
			log.WithError(err).Warn("Не удалось прочитать журнал скачиваний")
		} else if len(entries) > 0 {
			sb.WriteString("\n\n*Recent Downloads:*\n")
			for _, e := range entries {
				fmt.Fprintf(&sb, "• %s [%s] %d files, %s\n",
					e.URL, e.Mode, e.Files, common.FormatMB(e.Bytes))
			}
		}
	}

	h.sendMessage(chatID, sb.String())
}

func joinIDs(ids []int64) string {
	if len(ids) == 0 {
		return "None"
	}
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, ", ")
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
