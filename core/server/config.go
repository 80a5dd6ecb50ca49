package server

import "strings"

// RecordPlaceholder is replaced by the record id in ViewURL.
const RecordPlaceholder = "[rec_id]"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080" validate:"required,numeric"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// ViewURL is the discovery link template, e.g. https://opac.example.org/record/[rec_id].
	ViewURL string `mapstructure:"view_url" default:""`
}

// ViewLink returns the discovery link for recordID, or an empty string when
// no template is configured.
func (c Config) ViewLink(recordID string) string {
	if c.ViewURL == "" {
		return ""
	}
	return strings.Replace(c.ViewURL, RecordPlaceholder, recordID, 1)
}
