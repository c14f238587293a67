package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg := Config{Host: "0.0.0.0", Port: DefaultPort, HeaderFormat: "json"}
		require.NoError(t, cfg.Validate())
	})

	t.Run("EphemeralPort", func(t *testing.T) {
		cfg := Config{Host: "127.0.0.1", Port: 0, HeaderFormat: "yaml"}
		require.NoError(t, cfg.Validate())
	})

	t.Run("EmptyFormatMeansJSON", func(t *testing.T) {
		cfg := Config{Port: DefaultPort}
		require.NoError(t, cfg.Validate())
	})

	t.Run("InvalidPort", func(t *testing.T) {
		for _, port := range []int{-1, 65536} {
			cfg := Config{Port: port, HeaderFormat: "json"}
			assert.Error(t, cfg.Validate(), "port %d", port)
		}
	})

	t.Run("NegativeReadTimeout", func(t *testing.T) {
		cfg := Config{Port: DefaultPort, ReadTimeout: -time.Second}
		assert.ErrorContains(t, cfg.Validate(), "--read-timeout")
	})

	t.Run("UnknownHeaderFormat", func(t *testing.T) {
		cfg := Config{Port: DefaultPort, HeaderFormat: "xml"}
		assert.ErrorContains(t, cfg.Validate(), "--header-format")
	})
}

func TestAddr(t *testing.T) {
	assert.Equal(t, "0.0.0.0:4318", Config{Host: "0.0.0.0", Port: 4318}.Addr())
	assert.Equal(t, ":4318", Config{Port: 4318}.Addr())
	assert.Equal(t, "[::1]:8080", Config{Host: "::1", Port: 8080}.Addr())
}
