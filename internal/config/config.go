package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds runtime configuration for the inkwell service. All values are
// read once at startup and never mutated afterwards.
type Config struct {
	Addr   string `env:"ADDR,default=:8080"`
	DBDSN  string `env:"DB_DSN,required"`
	Secret string `env:"SECRET_KEY,required"`

	BaseURL        string   `env:"BASE_URL,default=http://localhost:8080"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:5173"`

	SessionTTL    time.Duration `env:"SESSION_TTL,default=12h"`
	RememberTTL   time.Duration `env:"REMEMBER_TTL,default=720h"`
	ResetTokenTTL time.Duration `env:"RESET_TOKEN_TTL,default=30m"`
	BcryptCost    int           `env:"BCRYPT_COST,default=10"`

	PageSize    int `env:"PAGE_SIZE,default=10"`
	MaxPageSize int `env:"MAX_PAGE_SIZE,default=50"`

	CookieSecure bool `env:"COOKIE_SECURE,default=false"`

	AvatarDir     string `env:"AVATAR_DIR,default=data/avatars"`
	MaxAvatarSize int64  `env:"MAX_AVATAR_BYTES,default=5242880"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT,default=587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASS"`
	MailFrom     string `env:"MAIL_FROM,default=noreply@inkwell.local"`

	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3Bucket    string `env:"S3_BUCKET,default=inkwell-avatars"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3Region    string `env:"S3_REGION,default=us-east-1"`

	NATSURL      string `env:"NATS_URL"`
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	SeedAdminEmail    string `env:"SEED_ADMIN_EMAIL"`
	SeedAdminPassword string `env:"SEED_ADMIN_PASSWORD"`
}

// Load returns a Config populated from environment variables.
func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
