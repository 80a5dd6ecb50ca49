package catalog

// Config holds the catalog endpoints.
type Config struct {
	// BaseURL is the catalog API root, e.g. https://api.example.org/almaws/v1/.
	BaseURL string `mapstructure:"base_url" default:"" validate:"required,url"`
	// APIKey is sent as "Authorization: apikey <key>" on reads, when set.
	APIKey string `mapstructure:"api_key" default:""`
	// RecordService is the endpoint that rewrites the active-cover field.
	RecordService string `mapstructure:"record_service" default:"" validate:"omitempty,url"`
	// TimeoutSeconds bounds every call.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
