package config_test

import (
	"os"
	"testing"

	"stitchery/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := config.Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, []string{"png", "jpg", "jpeg", "gif", "pdf"}, cfg.AllowedExtensions)
	assert.Equal(t, 8.7, cfg.DefaultFlossLength)
	assert.Equal(t, "local", cfg.StorageBackend)
	assert.Empty(t, cfg.RabbitMQURL)
}

func TestLoad_Environment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("APP_PORT", ":9090")
	t.Setenv("ALLOWED_EXTENSIONS", "PNG, .pdf,,webp")
	t.Setenv("DEFAULT_FLOSS_LENGTH", "5.5")
	t.Setenv("DATABASE_DRIVER", "Postgres")

	cfg, err := config.Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.AppPort)
	assert.Equal(t, []string{"png", "pdf", "webp"}, cfg.AllowedExtensions)
	assert.Equal(t, 5.5, cfg.DefaultFlossLength)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
}

func TestLoad_RejectsUnknownBackends(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("DATABASE_DRIVER", "oracle")
	_, err := config.Load(viper.New())
	assert.Error(t, err)

	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("STORAGE_BACKEND", "floppy")
	_, err = config.Load(viper.New())
	assert.Error(t, err)
}

// chdir changes the working directory for the duration of the test, like
// testing.T.Chdir (Go 1.24+), which the local Go 1.21 toolchain lacks.
func chdir(t *testing.T, dir string) {
	t.Helper()
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(oldwd); err != nil {
			panic("chdir: restoring working directory: " + err.Error())
		}
	})
}
