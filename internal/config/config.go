package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	DatabaseURL string `env:"DATABASE_URL"` // empty -> local sqlite file
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"groupbuy.db"`

	Auth   Auth   `envPrefix:"AUTH_"`
	Ledger Ledger `envPrefix:"LEDGER_"`
	Fees   Fees   `envPrefix:"FEE_"`
}

type Auth struct {
	JWTSecret string `env:"JWT_SECRET,required"`
	// Subject the settlement protocol authenticates as. Callbacks from any
	// other identity are rejected.
	ProtocolSubject string `env:"PROTOCOL_SUBJECT" envDefault:"settlement-protocol"`
}

type Ledger struct {
	BaseApiURL string `env:"BASE_API_URL"`
	APIKey     string `env:"API_KEY"`
	// Custody account that receives marketplace fees.
	MarketplaceAccount string `env:"MARKETPLACE_ACCOUNT" envDefault:"marketplace-treasury"`
}

type Fees struct {
	DefaultRateBps int64 `env:"DEFAULT_RATE_BPS" envDefault:"250"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
