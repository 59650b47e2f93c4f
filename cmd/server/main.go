package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/gameloop/internal/config"
	"github.com/annel0/gameloop/internal/events"
	"github.com/annel0/gameloop/internal/journal"
	"github.com/annel0/gameloop/internal/logging"
	"github.com/annel0/gameloop/internal/loop"
	"github.com/annel0/gameloop/internal/observability"
)

// heartbeatArgs — payload демонстрационного custom-события.
// Конкретный тип задокументирован, чтобы потребители могли выполнять
// проверяемое приведение.
type heartbeatArgs struct {
	Uptime  time.Duration
	Updates uint64
}

func main() {
	configPath := flag.String("config", "", "Путь к YAML конфигурации (или ENV GAMELOOP_CONFIG)")
	flag.Parse()

	// Инициализируем систему логирования
	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	logging.Info("🎮 Запуск драйвера игрового цикла...")

	// === КОНФИГУРАЦИЯ ===
	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Error("❌ Ошибка загрузки конфигурации: %v", err)
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}
	if cfg == nil {
		cfg = &config.Config{} // дефолты
	}

	logging.Info("📡 Конфигурация: UPS=%d, потолок кадра=%d мс, журнал=%s",
		cfg.Loop.GetUPS(), cfg.Loop.GetMaxFrameMs(), cfg.Journal.GetPath())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === ТЕЛЕМЕТРИЯ ===
	if cfg.Telemetry.Enabled {
		shutdown, err := observability.InitTelemetry(ctx, cfg.Telemetry.GetServiceName())
		if err != nil {
			logging.Error("❌ Ошибка инициализации телеметрии: %v", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logging.Error("Ошибка остановки телеметрии: %v", err)
				}
			}()
		}
	}

	// === ЖУРНАЛ ===
	store, err := journal.Open(cfg.Journal.GetPath())
	if err != nil {
		logging.Error("❌ Ошибка открытия журнала: %v", err)
		log.Fatalf("❌ Ошибка открытия журнала: %v", err)
	}
	defer store.Close()

	recorder := journal.NewRecorder(store, cfg.Journal.GetBatchSize())
	defer recorder.Close()
	logging.Info("📼 Журнал открыт, сессия %s", recorder.SessionID())

	// === ДРАЙВЕР ЦИКЛА ===
	driver := loop.NewDriver(cfg.Loop)
	driver.OnEvent(recorder.Handle)

	// Демонстрационный потребитель: реагирует на события через
	// capability UpdateEvent, не сопоставляя формы Event напрямую.
	var simulated float64
	var updates uint64
	driver.OnEvent(func(ev events.Event) {
		if args, ok := events.UpdateArgsOf(ev); ok {
			simulated += args.Dt
			updates++
			return
		}
		if hb, ok := events.PayloadAs[*heartbeatArgs](ev); ok {
			ts, _ := ev.Stamp()
			logging.Info("💓 Heartbeat: uptime=%s, обновлений=%d, отметка=%d мс",
				hb.Uptime, hb.Updates, ts)
		}
	})

	// Производитель custom-событий: раз в секунду внедряет heartbeat
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		start := time.Now()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				driver.Emit("gameloop/heartbeat", &heartbeatArgs{
					Uptime:  time.Since(start).Round(time.Second),
					Updates: driver.Metrics().Updates,
				})
			}
		}
	}()

	// === МЕТРИКИ ===
	exporter := observability.NewMetricsExporter(driver)
	driver.SetFrameTimer(exporter)
	exporter.Start(time.Second)
	defer exporter.Stop()

	monitor := observability.NewSystemMonitor()
	monitor.Start(5 * time.Second)
	defer monitor.Stop()

	exporter.StartHTTP(fmt.Sprintf(":%d", cfg.Metrics.GetMetricsPort()))

	logging.Info("✅ Все компоненты запущены")
	logging.Info("   📈 Метрики: http://localhost:%d/metrics", cfg.Metrics.GetMetricsPort())
	logging.Info("   📼 Журнал: %s (сессия %s)", cfg.Journal.GetPath(), recorder.SessionID())

	// Запускаем цикл; блокируется до SIGINT/SIGTERM
	runCtx, span := observability.Tracer("gameloop/server").Start(ctx, "loop.run")
	err = driver.Run(runCtx)
	span.End()
	if err != nil {
		logging.Error("❌ Цикл завершился с ошибкой: %v", err)
	}

	logging.Info("📡 Завершение работы: симулировано %.2f с за %d обновлений",
		simulated, updates)
}
