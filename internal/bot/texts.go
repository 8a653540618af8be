package bot

import "fmt"

// welcomeText — приветствие по /start.
func welcomeText(adminUsername string) string {
	return fmt.Sprintf(`🌐 *Direct Website Source Downloader* 🌐

Send me any website URL, I'll download the source code and send it directly as a zip file!

*How to use:*
1. Send any website URL
2. Choose download type (Full/Partial)
3. Receive zip file directly in chat

*Commands:*
/start - Show this message
/help - Show help
/cancel - Cancel current operation

Admin: %s`, adminUsername)
}

// helpText — справка по /help.
func helpText() string {
	return `🤖 *Bot Help*

*Download Types:*
• *Full Source Download*: Complete website (all pages, images, CSS, JS)
• *Partial Download*: Only main page and direct resources

*Features:*
• No files saved on disk
• Direct zip file sent to Telegram
• Fast download
• Clean memory after sending

*File Size Limit*: 50MB (Telegram restriction)

*Examples:*
• https://example.com
• example.com
• http://test-site.org

*Admin Commands:*
• /p [user_id] - Give permission to user
• /ban [user_id] - Ban user
• /unban [user_id] - Unban user
• /lim [number] - Set user limit
• /man - Toggle maintenance mode
• /stats - Show bot statistics

Note: Some websites may have protection.`
}
