package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gitlab.com/revstore/revd/internal/helper/perm"
)

func writeFile(tb testing.TB, path string) {
	tb.Helper()
	require.NoError(tb, os.WriteFile(path, []byte("content"), perm.SharedFile))
}

func TestLoad(t *testing.T) {
	t.Run("full configuration", func(t *testing.T) {
		cfg, err := Load(strings.NewReader(`
listen_addr = "127.0.0.1:4000"
prometheus_listen_addr = "127.0.0.1:9236"

[storage]
root = "/var/lib/revd"

[logging]
format = "json"
level = "debug"
`))
		require.NoError(t, err)

		require.Equal(t, Cfg{
			ListenAddr:           "127.0.0.1:4000",
			PrometheusListenAddr: "127.0.0.1:9236",
			Storage:              Storage{Root: "/var/lib/revd"},
			Logging:              Logging{Format: "json", Level: "debug"},
		}, cfg)
	})

	t.Run("defaults are applied", func(t *testing.T) {
		cfg, err := Load(strings.NewReader(`
[storage]
root = "/var/lib/revd"
`))
		require.NoError(t, err)

		require.Equal(t, ":4000", cfg.ListenAddr)
		require.Equal(t, "text", cfg.Logging.Format)
		require.Equal(t, "info", cfg.Logging.Level)
	})

	t.Run("environment overrides the file", func(t *testing.T) {
		t.Setenv("REVD_LISTEN_ADDR", ":9999")
		t.Setenv("REVD_LOG_LEVEL", "warning")

		cfg, err := Load(strings.NewReader(`
listen_addr = ":4000"

[storage]
root = "/var/lib/revd"

[logging]
level = "info"
`))
		require.NoError(t, err)

		require.Equal(t, ":9999", cfg.ListenAddr)
		require.Equal(t, "warning", cfg.Logging.Level)
	})

	t.Run("malformed TOML fails", func(t *testing.T) {
		_, err := Load(strings.NewReader(`listen_addr = [`))
		require.ErrorContains(t, err, "decode config")
	})
}

func TestCfg_Validate(t *testing.T) {
	t.Run("valid configuration", func(t *testing.T) {
		cfg := Cfg{
			ListenAddr: ":4000",
			Storage:    Storage{Root: t.TempDir()},
		}
		require.NoError(t, cfg.Validate())
	})

	t.Run("relative storage root is made absolute", func(t *testing.T) {
		cfg := Cfg{
			ListenAddr: ":4000",
			Storage:    Storage{Root: "data"},
		}
		require.NoError(t, cfg.Validate())
		require.True(t, filepath.IsAbs(cfg.Storage.Root))
	})

	t.Run("missing storage root fails", func(t *testing.T) {
		cfg := Cfg{ListenAddr: ":4000"}
		require.EqualError(t, cfg.Validate(), "storage root is not set")
	})

	t.Run("missing listen address fails", func(t *testing.T) {
		cfg := Cfg{Storage: Storage{Root: "/var/lib/revd"}}
		require.EqualError(t, cfg.Validate(), "listen_addr is not set")
	})

	t.Run("storage root pointing at a file fails", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "file")
		writeFile(t, root)

		cfg := Cfg{
			ListenAddr: ":4000",
			Storage:    Storage{Root: root},
		}
		require.ErrorContains(t, cfg.Validate(), "is not a directory")
	})
}
