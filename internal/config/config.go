// Package config загружает конфигурацию бота из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Telegram ---
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	// ID администратора — единственный пользователь с правом на операторские команды
	AdminID int64 `envconfig:"ADMIN_ID" required:"true"`
	// Хэндл администратора — показывается пользователям в сообщениях об отказе
	AdminUsername string `envconfig:"ADMIN_USERNAME" default:"@admin"`

	// --- Download pipeline ---
	// Путь к wget. Обычно просто "wget" — ищется в PATH при старте.
	WgetPath string `envconfig:"WGET_PATH" default:"wget"`
	// Родительский каталог для scratch-директорий. Пусто = системный tmp.
	ScratchDir string `envconfig:"SCRATCH_DIR" default:""`
	// Дедлайн одного скачивания
	DownloadTimeout time.Duration `envconfig:"DOWNLOAD_TIMEOUT" default:"120s"`
	// Лимит Telegram на размер документа
	MaxArchiveBytes int64 `envconfig:"MAX_ARCHIVE_BYTES" default:"52428800"`
	// Сколько скачиваний процесс ведёт одновременно
	MaxActiveDownloads int `envconfig:"MAX_ACTIVE_DOWNLOADS" default:"4"`

	// --- Settings store ---
	SettingsFile string `envconfig:"SETTINGS_FILE" default:"bot_settings.json"`

	// --- Database (опционально: журнал скачиваний) ---
	// В Docker внутри контейнера "localhost" почти всегда неправильно.
	// Дефолт ставим "postgres" (имя сервиса в docker-compose), а для локалки переопределяй DB_HOST=localhost.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"botuser"`
	DBPassword string `envconfig:"DB_PASSWORD" default:""`
	DBName     string `envconfig:"DB_NAME" default:"webgrab_bot"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"10"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"2"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`

	// --- Bot runtime ---
	// Сколько апдейтов обрабатываем параллельно. Иначе "go на каждый апдейт" = утечка памяти при флуде.
	BotMaxInflight int `envconfig:"BOT_MAX_INFLIGHT" default:"64"`
	// Таймаут long polling (секунды)
	BotUpdateTimeoutSeconds int `envconfig:"BOT_UPDATE_TIMEOUT_SECONDS" default:"60"`

	// --- Admin ---
	// Argon2id-хеш пароля админ-панели. Пусто = вход по паролю не требуется,
	// достаточно совпадения ADMIN_ID.
	AdminPasswordHash string `envconfig:"ADMIN_PASSWORD_HASH" default:""`

	// --- Rate Limiting ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"10"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// JournalEnabled — журнал скачиваний включается только когда задан пароль БД.
// Без БД бот полностью работоспособен.
func (c *Config) JournalEnabled() bool {
	return c.DBPassword != ""
}

func (c *Config) Validate() error {
	if c.AdminID == 0 {
		return fmt.Errorf("ADMIN_ID не задан или равен 0")
	}
	if c.BotMaxInflight <= 0 {
		return fmt.Errorf("BOT_MAX_INFLIGHT должен быть > 0")
	}
	if c.BotUpdateTimeoutSeconds <= 0 {
		return fmt.Errorf("BOT_UPDATE_TIMEOUT_SECONDS должен быть > 0")
	}
	if c.DownloadTimeout <= 0 {
		return fmt.Errorf("DOWNLOAD_TIMEOUT должен быть > 0")
	}
	if c.MaxArchiveBytes <= 0 {
		return fmt.Errorf("MAX_ARCHIVE_BYTES должен быть > 0")
	}
	if c.MaxActiveDownloads <= 0 {
		return fmt.Errorf("MAX_ACTIVE_DOWNLOADS должен быть > 0")
	}
	if c.JournalEnabled() && (c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns) {
		return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
	}
	return nil
}

// Load читает переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
