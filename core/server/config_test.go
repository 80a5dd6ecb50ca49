package server_test

import (
	"testing"

	"cover-manager/core/server"

	"github.com/stretchr/testify/assert"
)

func TestConfig_ViewLink(t *testing.T) {
	tests := []struct {
		name     string
		template string
		id       string
		want     string
	}{
		{"Placeholder", "https://opac.example.org/discovery/fulldisplay?docid=alma[rec_id]", "991", "https://opac.example.org/discovery/fulldisplay?docid=alma991"},
		{"NoPlaceholder", "https://opac.example.org/", "991", "https://opac.example.org/"},
		{"FirstOnly", "[rec_id]/[rec_id]", "1", "1/[rec_id]"},
		{"Empty", "", "991", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := server.Config{ViewURL: tt.template}
			assert.Equal(t, tt.want, c.ViewLink(tt.id))
		})
	}
}
