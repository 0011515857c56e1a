package config

import (
	"time"
)

type Redis struct {
	// URL selects the redis cache; empty keeps everything in memory.
	URL          string        `envconfig:"URL" default:""`
	KeyPrefix    string        `envconfig:"KEY_PREFIX" default:"feescope:"`
	PoolSize     int           `envconfig:"POOL_SIZE" default:"10" validate:"min=1"`
	DialTimeout  time.Duration `envconfig:"DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"3s"`
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100" validate:"min=1"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

type FeeSource struct {
	URL string `envconfig:"URL" default:"https://2kbbumlxz3.execute-api.us-east-1.amazonaws.com/default/fee"`
	// Path reads the schedule from a local file instead of URL. "embedded"
	// uses the copy compiled into the binary.
	Path        string        `envconfig:"PATH" default:""`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
	CacheTTL    time.Duration `envconfig:"CACHE_TTL" default:"10m"`
}

//revive:disable
type ExchangeRate struct {
	Provider          string        `envconfig:"PROVIDER" default:"vitalswap" validate:"oneof=vitalswap exchangerate-api file"`
	VitalSwapURL      string        `envconfig:"VITALSWAP_URL" default:"https://2kbbumlxz3.execute-api.us-east-1.amazonaws.com/default/exchange"`
	ApiUrl            string        `envconfig:"API_URL" default:"https://v6.exchangerate-api.com/v6"`
	ApiKey            string        `envconfig:"API_KEY"`
	FilePath          string        `envconfig:"FILE_PATH" default:""`
	HTTPTimeout       time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
	RequestsPerMinute int           `envconfig:"REQUESTS_PER_MINUTE" default:"60" validate:"min=1"`
	BurstSize         int           `envconfig:"BURST_SIZE" default:"10" validate:"min=1"`
	CacheTTL          time.Duration `envconfig:"CACHE_TTL" default:"15m"`
	Base              string        `envconfig:"BASE" default:"USD" validate:"len=3"`
	Currencies        []string      `envconfig:"CURRENCIES" default:"NGN,EUR,GBP"`
}

//revive:enable

type RateWatch struct {
	Enabled    bool          `envconfig:"ENABLED" default:"true"`
	From       string        `envconfig:"FROM" default:"USD" validate:"len=3"`
	To         string        `envconfig:"TO" default:"NGN" validate:"len=3"`
	Interval   time.Duration `envconfig:"INTERVAL" default:"5s"`
	Window     time.Duration `envconfig:"WINDOW" default:"60s"`
	MaxSamples int           `envconfig:"MAX_SAMPLES" default:"18" validate:"min=1"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"text" validate:"oneof=json text"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[feescope]"`
}

type Server struct {
	Scheme string `envconfig:"SCHEME" default:"http"`
	Host   string `envconfig:"HOST" default:"localhost"`
	Port   int    `envconfig:"PORT" default:"3000" validate:"min=1,max=65535"`
}

type App struct {
	Env          string        `envconfig:"APP_ENV" default:"development"`
	Server       *Server       `envconfig:"SERVER"`
	Log          *Log          `envconfig:"LOG"`
	RateLimit    *RateLimit    `envconfig:"RATE_LIMIT"`
	Redis        *Redis        `envconfig:"REDIS"`
	FeeSource    *FeeSource    `envconfig:"FEE_SOURCE"`
	ExchangeRate *ExchangeRate `envconfig:"EXCHANGE_RATE"`
	RateWatch    *RateWatch    `envconfig:"RATE_WATCH"`
}
