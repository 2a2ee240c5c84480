package logging

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestSetup(t *testing.T) {
	defer Setup("info", "text")

	tests := []struct {
		level, format string
		wantLevel     log.Level
		wantJSON      bool
	}{
		{"debug", "json", log.DebugLevel, true},
		{"WARN", "text", log.WarnLevel, false},
		{"nonsense", "", log.InfoLevel, false},
		{"", "JSON", log.InfoLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			l := Setup(tt.level, tt.format)
			assert.Equal(t, tt.wantLevel, l.GetLevel())
			_, isJSON := l.Formatter.(*log.JSONFormatter)
			assert.Equal(t, tt.wantJSON, isJSON)
		})
	}
}
