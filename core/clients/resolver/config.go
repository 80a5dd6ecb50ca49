package resolver

// Config holds the resolver endpoint.
type Config struct {
	// BaseURL is the resolver root; search and thumbnail paths are appended.
	BaseURL string `mapstructure:"base_url" default:"" validate:"required,url"`
	// Key identifies the institution towards the resolver (inst parameter).
	Key string `mapstructure:"key" default:""`
	// TimeoutSeconds bounds every call.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
