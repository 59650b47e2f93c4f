// Package loop содержит драйвер игрового цикла с фиксированным шагом.
// Драйвер — производитель событий: каждый тик симуляции он оборачивает
// в events.NewUpdate и доставляет зарегистрированным обработчикам,
// а пользовательские события, внедрённые через Emit, штампует
// миллисекундами с момента запуска цикла.
package loop

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/annel0/gameloop/internal/config"
	"github.com/annel0/gameloop/internal/events"
	"github.com/annel0/gameloop/internal/logging"
)

// Handler потребляет события цикла.
// Вызывается на горутине цикла; порядок доставки внутри одного
// драйвера — порядок производства.
type Handler func(ev events.Event)

// FrameTimer получает длительность обработки каждого кадра.
// Реализуется экспортером метрик (histogram распределения кадров).
type FrameTimer interface {
	ObserveFrame(d time.Duration)
}

// Stats агрегированные счётчики драйвера.
type Stats struct {
	Frames  uint64 // обработанных кадров
	Updates uint64 // доставленных update-событий
	Customs uint64 // доставленных custom-событий
	Dropped uint64 // custom-событий, отброшенных из-за переполнения очереди
	Pending int    // custom-событий в очереди
}

// Driver управляет циклом с фиксированным шагом: реальное время
// накапливается в аккумуляторе и нарезается на шаги длиной 1/UPS
// секунд; остаток переносится на следующий кадр.
type Driver struct {
	step     time.Duration
	dt       float64
	maxFrame time.Duration

	mu       sync.Mutex
	handlers []Handler
	timer    FrameTimer

	custom chan events.Event
	log    *logging.Logger

	// Начало отсчёта цикла в наносекундах Unix. Атомарно: Emit
	// штампует события из горутин-производителей параллельно с Run.
	startNano atomic.Int64

	frames  atomic.Uint64
	updates atomic.Uint64
	customs atomic.Uint64
	dropped atomic.Uint64
}

// NewDriver создаёт драйвер по конфигурации цикла.
func NewDriver(cfg config.LoopConfig) *Driver {
	ups := cfg.GetUPS()
	step := time.Second / time.Duration(ups)
	d := &Driver{
		step:     step,
		dt:       step.Seconds(),
		maxFrame: time.Duration(cfg.GetMaxFrameMs()) * time.Millisecond,
		custom:   make(chan events.Event, 256),
		log:      logging.GetLoopLogger(),
	}
	d.startNano.Store(time.Now().UnixNano())
	return d
}

// OnEvent регистрирует обработчик событий.
// Регистрация допустима до и во время работы цикла.
func (d *Driver) OnEvent(h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = append(d.handlers, h)
}

// SetFrameTimer подключает наблюдателя длительности кадров.
func (d *Driver) SetFrameTimer(t FrameTimer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.timer = t
}

// Dt возвращает шаг симуляции в секундах.
func (d *Driver) Dt() float64 { return d.dt }

// Now возвращает отметку времени цикла: миллисекунды с момента запуска.
// uint32 переполняется через ~49.7 дней; усечение допустимо.
func (d *Driver) Now() events.TimeStamp {
	elapsed := time.Now().UnixNano() - d.startNano.Load()
	return events.TimeStamp(uint32(elapsed / int64(time.Millisecond)))
}

// Emit внедряет пользовательское событие в поток цикла.
// Событие штампуется текущей отметкой времени и доставляется
// обработчикам в начале следующего кадра. При переполнении очереди
// событие отбрасывается (back-pressure), а счётчик Dropped растёт.
func (d *Driver) Emit(id events.EventID, payload any) {
	ev := events.NewCustomAt(id, payload, d.Now())
	select {
	case d.custom <- ev:
	default:
		d.dropped.Add(1)
		d.log.Warn("⚠️  Очередь custom-событий переполнена, событие %s отброшено", id)
	}
}

// Run запускает цикл и блокируется до отмены контекста.
func (d *Driver) Run(ctx context.Context) error {
	start := time.Now()
	d.startNano.Store(start.UnixNano())
	d.log.Info("🔄 Цикл запущен: шаг %.4f с (%d UPS), потолок кадра %s",
		d.dt, int(time.Second/d.step), d.maxFrame)

	ticker := time.NewTicker(d.step)
	defer ticker.Stop()

	last := start
	var accumulator time.Duration

	for {
		select {
		case <-ctx.Done():
			d.log.Info("🔄 Цикл остановлен: кадров %d, обновлений %d",
				d.frames.Load(), d.updates.Load())
			return nil
		case now := <-ticker.C:
			elapsed := now.Sub(last)
			last = now
			accumulator = d.frame(elapsed, accumulator)
		}
	}
}

// frame обрабатывает один кадр: выгребает очередь custom-событий,
// затем нарезает накопленное время на update-события. Возвращает
// новое значение аккумулятора (остаток, не дотянувший до шага).
// Вынесено из Run ради детерминированного тестирования.
func (d *Driver) frame(elapsed, accumulator time.Duration) time.Duration {
	d.frames.Add(1)

	begin := time.Now()
	defer func() {
		d.mu.Lock()
		timer := d.timer
		d.mu.Unlock()
		if timer != nil {
			timer.ObserveFrame(time.Since(begin))
		}
	}()

	// Защита от спирали смерти: слишком длинный кадр усекается,
	// потерянное время симуляция не навёрстывает.
	if elapsed > d.maxFrame {
		d.log.Debug("Кадр %s превысил потолок %s, усечён", elapsed, d.maxFrame)
		elapsed = d.maxFrame
	}

	d.drainCustom()

	accumulator += elapsed
	for accumulator >= d.step {
		d.dispatch(events.NewUpdate(events.UpdateArgs{Dt: d.dt}))
		d.updates.Add(1)
		accumulator -= d.step
	}
	return accumulator
}

// drainCustom доставляет накопленные custom-события
func (d *Driver) drainCustom() {
	for {
		select {
		case ev := <-d.custom:
			d.dispatch(ev)
			d.customs.Add(1)
		default:
			return
		}
	}
}

// dispatch вручает событие всем обработчикам
func (d *Driver) dispatch(ev events.Event) {
	d.mu.Lock()
	handlers := d.handlers
	d.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}

// Metrics возвращает текущие счётчики драйвера.
func (d *Driver) Metrics() Stats {
	return Stats{
		Frames:  d.frames.Load(),
		Updates: d.updates.Load(),
		Customs: d.customs.Load(),
		Dropped: d.dropped.Load(),
		Pending: len(d.custom),
	}
}
