package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации приложения.
// Содержит настройки цикла, журнала и наблюдаемости; может расширяться.

type Config struct {
	Loop      LoopConfig      `yaml:"loop"`
	Journal   JournalConfig   `yaml:"journal"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type LoopConfig struct {
	UPS        int `yaml:"ups"`
	MaxFrameMs int `yaml:"max_frame_ms"`
}

type JournalConfig struct {
	Path      string `yaml:"path"`
	BatchSize int    `yaml:"batch_size"`
}

type MetricsConfig struct {
	Port int `yaml:"port"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

// GetUPS возвращает частоту обновлений с поддержкой fallback значений
func (l *LoopConfig) GetUPS() int {
	return getIntWithEnvFallback(l.UPS, "GAMELOOP_UPS", 60)
}

// GetMaxFrameMs возвращает потолок кадра (мс) с поддержкой fallback значений
func (l *LoopConfig) GetMaxFrameMs() int {
	return getIntWithEnvFallback(l.MaxFrameMs, "GAMELOOP_MAX_FRAME_MS", 250)
}

// GetPath возвращает путь журнала с поддержкой fallback значений
func (j *JournalConfig) GetPath() string {
	if j.Path != "" {
		return j.Path
	}
	if envVal := os.Getenv("GAMELOOP_JOURNAL_PATH"); envVal != "" {
		return envVal
	}
	return "data/journal"
}

// GetBatchSize возвращает размер батча журнала с поддержкой fallback значений
func (j *JournalConfig) GetBatchSize() int {
	return getIntWithEnvFallback(j.BatchSize, "GAMELOOP_JOURNAL_BATCH", 64)
}

// GetMetricsPort возвращает Prometheus метрики порт с поддержкой fallback значений
func (m *MetricsConfig) GetMetricsPort() int {
	return getIntWithEnvFallback(m.Port, "GAMELOOP_METRICS_PORT", 2112)
}

// GetServiceName возвращает имя сервиса для телеметрии
func (t *TelemetryConfig) GetServiceName() string {
	if t.ServiceName != "" {
		return t.ServiceName
	}
	if envVal := os.Getenv("GAMELOOP_SERVICE_NAME"); envVal != "" {
		return envVal
	}
	return "gameloop"
}

// getIntWithEnvFallback возвращает значение с приоритетом: config -> env -> default
func getIntWithEnvFallback(configVal int, envVar string, defaultVal int) int {
	// Если значение задано в конфиге и больше 0, используем его
	if configVal > 0 {
		return configVal
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if v, err := strconv.Atoi(envVal); err == nil && v > 0 {
			return v
		}
	}

	// Используем дефолтное значение
	return defaultVal
}

// Load читает YAML файл конфигурации.
// Если path == "", пытается прочитать из ENV GAMELOOP_CONFIG или возвращает nil, nil.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("GAMELOOP_CONFIG")
		if path == "" {
			return nil, nil // конфиг не задан — использовать дефолты
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
