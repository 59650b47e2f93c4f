package observability

import (
	"testing"
	"time"

	"github.com/annel0/gameloop/internal/loop"
)

type stubProvider struct{}

func (stubProvider) Metrics() loop.Stats { return loop.Stats{} }

// Экспортер конструируется один раз на тестовый бинарь:
// метрики регистрируются в глобальном регистре Prometheus.
func TestMetricsExporter_Lifecycle(t *testing.T) {
	me := NewMetricsExporter(stubProvider{})

	// Stop без Start не должен блокироваться
	finished := make(chan struct{})
	go func() {
		me.Stop()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Stop без Start заблокировался")
	}

	// Экспортер служит наблюдателем длительности кадров драйвера
	var timer loop.FrameTimer = me
	timer.ObserveFrame(5 * time.Millisecond)

	// Штатный Start/Stop и повторный Stop безопасны
	me.Start(10 * time.Millisecond)
	me.Stop()
	me.Stop()
}

func TestSystemMonitor_Lifecycle(t *testing.T) {
	sm := NewSystemMonitor()

	// Stop без Start не должен блокироваться
	finished := make(chan struct{})
	go func() {
		sm.Stop()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Stop без Start заблокировался")
	}

	// Штатный Start/Stop и повторный Stop безопасны
	sm.Start(10 * time.Millisecond)
	sm.Stop()
	sm.Stop()
}
