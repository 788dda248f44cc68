package config

import (
	"log/slog"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"

	"github.com/escrow-tf/giftbot/logx"
	"github.com/escrow-tf/giftbot/steamid"
)

var validate = validator.New(validator.WithRequiredStructEnabled()) //nolint:gochecknoglobals

type Config struct {
	Steam    Steam
	Bot      Bot
	Discord  Discord
	Telegram Telegram

	MetricsAddr string `env:"METRICS_ADDR"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`
}

type Steam struct {
	AccountName    string `env:"STEAM_ACCOUNT_NAME,required" validate:"required"`
	Password       string `env:"STEAM_PASSWORD,required" validate:"required"`
	SharedSecret   string `env:"STEAM_SHARED_SECRET,required" validate:"required,base64"`
	IdentitySecret string `env:"STEAM_IDENTITY_SECRET" validate:"omitempty,base64"`
	WebApiKey      string `env:"STEAM_WEB_API_KEY,required" validate:"required"`
	AdminID        string `env:"STEAM_ADMIN_ID" validate:"omitempty,numeric"`
}

type Bot struct {
	AcceptedGames      map[string]uint32 `env:"ACCEPTED_GAMES" envDefault:"CSGO:730,DOTA2:570,RUST:252490"`
	PollInterval       time.Duration     `env:"POLL_INTERVAL" envDefault:"30s" validate:"gte=1s"`
	PriceLookupTimeout time.Duration     `env:"PRICE_LOOKUP_TIMEOUT" envDefault:"10s" validate:"gte=1s"`
	Workers            int               `env:"WORKERS" envDefault:"8" validate:"gte=1,lte=64"`
	ThankYouComment    string            `env:"THANK_YOU_COMMENT" envDefault:"Thanks for the gift! 🎁"`
}

type Discord struct {
	WebhookURL string `env:"DISCORD_WEBHOOK_URL,required" validate:"required,url"`
	BotName    string `env:"DISCORD_BOT_NAME" envDefault:"Steam Trade Bot"`
	BotAvatar  string `env:"DISCORD_BOT_AVATAR" validate:"omitempty,url"`
}

type Telegram struct {
	BotToken string `env:"TELEGRAM_BOT_TOKEN"`
	ChatID   int64  `env:"TELEGRAM_CHAT_ID" validate:"required_with=BotToken"`
}

func (t Telegram) Enabled() bool {
	return t.BotToken != ""
}

// Load reads an optional .env file, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	return parse(env.Options{})
}

// LoadFrom parses the given variables instead of the process environment.
func LoadFrom(environment map[string]string) (Config, error) {
	return parse(env.Options{Environment: environment})
}

func parse(options env.Options) (Config, error) {
	var config Config

	if err := env.ParseWithOptions(&config, options); err != nil {
		return Config{}, eris.Wrap(err, "env.Parse")
	}

	if err := validate.Struct(config); err != nil {
		return Config{}, eris.Wrap(err, "invalid configuration")
	}

	return config, nil
}

// AdminSteamID is the zero SteamID when no administrator is configured.
func (c Config) AdminSteamID() (steamid.SteamID, error) {
	if c.Steam.AdminID == "" {
		return steamid.SteamID{}, nil
	}

	admin, err := steamid.ParseSteamID64(c.Steam.AdminID)
	if err != nil {
		return steamid.SteamID{}, eris.Wrap(err, "STEAM_ADMIN_ID")
	}

	if !admin.IsValidIndividual() {
		return steamid.SteamID{}, eris.Errorf("STEAM_ADMIN_ID %q is not an individual account", c.Steam.AdminID)
	}

	return admin, nil
}

func (c Config) Level() slog.Level {
	return logx.ParseLevel(c.LogLevel)
}
