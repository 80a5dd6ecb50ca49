package retry

// Config holds the retry policy settings.
type Config struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int `mapstructure:"max_retries" default:"3" validate:"gte=0"`
	// DelayMS is the fixed wait between attempts in milliseconds.
	DelayMS int `mapstructure:"delay_ms" default:"2000" validate:"gte=0"`
}
