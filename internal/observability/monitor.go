package observability

import (
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/annel0/gameloop/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"
)

// SystemMonitor периодически снимает системные метрики процесса
// и публикует их как Prometheus-gauge.
type SystemMonitor struct {
	quit    chan struct{}
	done    chan struct{}
	started atomic.Bool

	cpuPercent prometheus.Gauge
	heapMB     prometheus.Gauge
	goroutines prometheus.Gauge
}

// NewSystemMonitor создаёт монитор и регистрирует его метрики
func NewSystemMonitor() *SystemMonitor {
	sm := &SystemMonitor{
		quit: make(chan struct{}),
		done: make(chan struct{}),
		cpuPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gameloop",
			Name:      "process_cpu_percent",
			Help:      "Использование CPU процессом в процентах.",
		}),
		heapMB: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gameloop",
			Name:      "heap_alloc_mb",
			Help:      "Выделенная heap-память в мегабайтах.",
		}),
		goroutines: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gameloop",
			Name:      "goroutines",
			Help:      "Количество горутин.",
		}),
	}

	prometheus.MustRegister(sm.cpuPercent, sm.heapMB, sm.goroutines)
	return sm
}

// Start запускает периодический сбор метрик
func (sm *SystemMonitor) Start(interval time.Duration) {
	if !sm.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(sm.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-sm.quit:
				return
			case <-ticker.C:
				sm.collect()
			}
		}
	}()
}

// collect снимает текущие показатели процесса
func (sm *SystemMonitor) collect() {
	if percent, err := processCPUPercent(); err == nil {
		sm.cpuPercent.Set(percent)
	} else {
		logging.Debug("Не удалось получить CPU метрику: %v", err)
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	sm.heapMB.Set(float64(m.HeapAlloc) / 1024 / 1024)
	sm.goroutines.Set(float64(runtime.NumGoroutine()))
}

// processCPUPercent возвращает использование CPU процессом в процентах
func processCPUPercent() (float64, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, err
	}

	percent, err := proc.CPUPercent()
	if err != nil {
		// Если не удалось получить метрику процесса, пробуем системную
		percents, err := cpu.Percent(100*time.Millisecond, false)
		if err != nil || len(percents) == 0 {
			return 0, err
		}
		return percents[0], nil
	}
	return percent, nil
}

// Stop останавливает монитор.
// Без предшествующего Start — безопасный no-op.
func (sm *SystemMonitor) Stop() {
	if !sm.started.CompareAndSwap(true, false) {
		return
	}
	close(sm.quit)
	<-sm.done
}
