package logging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/mickamy/gospy/internal/logging"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name      string
		cfg       logging.Config
		wantErr   bool
		wantLevel zapcore.Level
	}{
		{name: "defaults", cfg: logging.Config{}, wantLevel: zapcore.InfoLevel},
		{name: "json debug", cfg: logging.Config{Level: "debug", Format: "json", Output: "stdout"}, wantLevel: zapcore.DebugLevel},
		{name: "bad level", cfg: logging.Config{Level: "loud"}, wantErr: true},
		{name: "bad format", cfg: logging.Config{Format: "xml"}, wantErr: true},
		{name: "bad output", cfg: logging.Config{Output: "file"}, wantErr: true},
	}
	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			l, err := logging.New(tc.cfg)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(tc.wantLevel))
			assert.False(t, l.Core().Enabled(tc.wantLevel-1))
		})
	}
}
