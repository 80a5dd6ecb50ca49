package loader

// Config holds the cover server endpoint.
type Config struct {
	// BaseURL is the cover server root.
	BaseURL string `mapstructure:"base_url" default:"" validate:"required,url"`
	// Institution overrides the institution code read from the catalog.
	Institution string `mapstructure:"institution" default:""`
	// TimeoutSeconds bounds every call.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"60"`
}
