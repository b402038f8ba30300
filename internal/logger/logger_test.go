package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_FormatSelection(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantJSON bool
	}{
		{"production defaults to json", Config{ProdLike: true}, true},
		{"development defaults to text", Config{}, false},
		{"explicit json wins", Config{Format: "JSON"}, true},
		{"explicit text wins in production", Config{Format: "text", ProdLike: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.cfg.Writer = &buf
			New(tt.cfg).Info("photo uploaded", "filename", "a.jpg")

			if tt.wantJSON {
				assert.Contains(t, buf.String(), `"msg":"photo uploaded"`)
				assert.Contains(t, buf.String(), `"filename":"a.jpg"`)
			} else {
				assert.Contains(t, buf.String(), `msg="photo uploaded"`)
				assert.Contains(t, buf.String(), "filename=a.jpg")
			}
		})
	}
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Level: slog.LevelWarn})

	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}
