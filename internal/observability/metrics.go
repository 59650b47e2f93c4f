package observability

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/annel0/gameloop/internal/logging"
	"github.com/annel0/gameloop/internal/loop"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatsProvider отдаёт накопленные счётчики драйвера цикла.
// Экспортер не делает предположений о конкретной реализации цикла –
// он опирается исключительно на этот интерфейс.
type StatsProvider interface {
	Metrics() loop.Stats
}

// MetricsExporter управляет HTTP-эндпоинтом Prometheus и периодически обновляет Gauge/Counter.
type MetricsExporter struct {
	provider StatsProvider
	quit     chan struct{}
	done     chan struct{}
	started  atomic.Bool
	last     loop.Stats
	// Prometheus metrics
	frames        prometheus.Counter
	updates       prometheus.Counter
	customs       prometheus.Counter
	dropped       prometheus.Counter
	pending       prometheus.Gauge
	frameDuration prometheus.Histogram
}

// NewMetricsExporter создаёт экспортер, но не запускает HTTP-сервер.
func NewMetricsExporter(provider StatsProvider) *MetricsExporter {
	me := &MetricsExporter{
		provider: provider,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gameloop",
			Name:      "frames_total",
			Help:      "Общее число обработанных кадров цикла.",
		}),
		updates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gameloop",
			Name:      "updates_total",
			Help:      "Общее число доставленных update-событий.",
		}),
		customs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gameloop",
			Name:      "custom_events_total",
			Help:      "Общее число доставленных custom-событий.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gameloop",
			Name:      "custom_events_dropped_total",
			Help:      "Custom-событий, отброшенных из-за переполнения очереди.",
		}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gameloop",
			Name:      "custom_events_pending",
			Help:      "Количество custom-событий в очереди драйвера.",
		}),
		frameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "gameloop",
			Name:      "frame_duration_seconds",
			Help:      "Распределение длительности обработки кадра цикла.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
	}

	// Регистрируем метрики в глобальном регистре Prometheus.
	prometheus.MustRegister(me.frames, me.updates, me.customs, me.dropped,
		me.pending, me.frameDuration)
	return me
}

// ObserveFrame реализует loop.FrameTimer: фиксирует длительность
// обработки кадра в histogram. Вызывается на горутине цикла.
func (m *MetricsExporter) ObserveFrame(d time.Duration) {
	m.frameDuration.Observe(d.Seconds())
}

// StartHTTP запускает HTTP-эндпоинт Prometheus на указанном адресе (например, ":2112").
// Метод неблокирующий: HTTP-сервер стартует в отдельной горутине.
func (m *MetricsExporter) StartHTTP(addr string) {
	go func() {
		logging.Info("📈 Prometheus /metrics доступен по адресу %s", addr)
		if err := http.ListenAndServe(addr, promhttp.Handler()); err != nil {
			logging.Error("Ошибка Prometheus HTTP сервера: %v", err)
		}
	}()
}

// Start запускает периодическое обновление метрик из провайдера
func (m *MetricsExporter) Start(interval time.Duration) {
	if !m.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(m.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-m.quit:
				return
			case <-ticker.C:
				m.collect()
			}
		}
	}()
}

// collect переносит дельты счётчиков драйвера в Prometheus
func (m *MetricsExporter) collect() {
	stats := m.provider.Metrics()

	m.frames.Add(float64(stats.Frames - m.last.Frames))
	m.updates.Add(float64(stats.Updates - m.last.Updates))
	m.customs.Add(float64(stats.Customs - m.last.Customs))
	m.dropped.Add(float64(stats.Dropped - m.last.Dropped))
	m.pending.Set(float64(stats.Pending))

	m.last = stats
}

// Stop останавливает обновление метрик.
// Без предшествующего Start — безопасный no-op.
func (m *MetricsExporter) Stop() {
	if !m.started.CompareAndSwap(true, false) {
		return
	}
	close(m.quit)
	<-m.done
}
