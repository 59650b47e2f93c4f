package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FromFile(t *testing.T) {
	// Тест загрузки конфигурации из YAML файла
	yamlData := `
loop:
  ups: 120
  max_frame_ms: 100
journal:
  path: /tmp/journal-test
  batch_size: 32
metrics:
  port: 9100
telemetry:
  enabled: true
  service_name: gameloop-test
`
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(yamlData), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 120, cfg.Loop.GetUPS())
	assert.Equal(t, 100, cfg.Loop.GetMaxFrameMs())
	assert.Equal(t, "/tmp/journal-test", cfg.Journal.GetPath())
	assert.Equal(t, 32, cfg.Journal.GetBatchSize())
	assert.Equal(t, 9100, cfg.Metrics.GetMetricsPort())
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "gameloop-test", cfg.Telemetry.GetServiceName())
}

func TestLoad_NoConfig(t *testing.T) {
	// Без пути и без ENV конфиг отсутствует — это не ошибка
	t.Setenv("GAMELOOP_CONFIG", "")

	cfg, err := Load("")
	assert.NoError(t, err)
	assert.Nil(t, cfg, "Отсутствие конфига должно давать nil, nil")
}

func TestDefaults_WithEnvFallback(t *testing.T) {
	// Приоритет: config -> env -> default
	cfg := &Config{}

	// Очищаем внешнее окружение, чтобы дефолты были детерминированы
	t.Setenv("GAMELOOP_UPS", "")
	t.Setenv("GAMELOOP_MAX_FRAME_MS", "")
	t.Setenv("GAMELOOP_JOURNAL_PATH", "")
	t.Setenv("GAMELOOP_JOURNAL_BATCH", "")
	t.Setenv("GAMELOOP_METRICS_PORT", "")
	t.Setenv("GAMELOOP_SERVICE_NAME", "")
	assert.Equal(t, 60, cfg.Loop.GetUPS(), "Дефолтная частота — 60 UPS")
	assert.Equal(t, 250, cfg.Loop.GetMaxFrameMs())
	assert.Equal(t, "data/journal", cfg.Journal.GetPath())
	assert.Equal(t, 64, cfg.Journal.GetBatchSize())
	assert.Equal(t, 2112, cfg.Metrics.GetMetricsPort())
	assert.Equal(t, "gameloop", cfg.Telemetry.GetServiceName())

	t.Setenv("GAMELOOP_UPS", "144")
	assert.Equal(t, 144, cfg.Loop.GetUPS(), "ENV должен перекрывать дефолт")

	cfg.Loop.UPS = 30
	assert.Equal(t, 30, cfg.Loop.GetUPS(), "Конфиг должен перекрывать ENV")
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yml")
	require.NoError(t, os.WriteFile(path, []byte("loop: [not a map"), 0644))

	_, err := Load(path)
	assert.Error(t, err, "Битый YAML должен давать ошибку")
}
