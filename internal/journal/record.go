// Package journal содержит журнал событий игрового цикла: проекцию
// событий в сериализуемые записи, badger-хранилище со сжатием zstd
// и рекордер, подключаемый к драйверу цикла как обычный обработчик.
package journal

import (
	"time"

	"github.com/annel0/gameloop/internal/events"
)

// Kind — вид записи журнала
type Kind string

const (
	// KindUpdate — запись update-события
	KindUpdate Kind = "update"
	// KindCustom — запись custom-события
	KindCustom Kind = "custom"
)

// Record представляет сериализуемую проекцию события.
// Payload custom-события type-erased и несериализуем, поэтому в журнал
// попадает только идентификатор события и отметка времени.
type Record struct {
	SessionID string            `json:"session_id"`
	Seq       uint64            `json:"seq"`
	WallTime  time.Time         `json:"wall_time"`
	Kind      Kind              `json:"kind"`
	Dt        float64           `json:"dt,omitempty"`
	EventID   events.EventID    `json:"event_id,omitempty"`
	Stamp     *events.TimeStamp `json:"stamp,omitempty"`
}

// Project строит запись журнала из события
func Project(ev events.Event, session string, seq uint64, now time.Time) Record {
	rec := Record{
		SessionID: session,
		Seq:       seq,
		WallTime:  now.UTC(),
	}

	if args, ok := events.UpdateArgsOf(ev); ok {
		rec.Kind = KindUpdate
		rec.Dt = args.Dt
		return rec
	}

	if id, _, ok := ev.Custom(); ok {
		rec.Kind = KindCustom
		rec.EventID = id
		if ts, ok := ev.Stamp(); ok {
			rec.Stamp = &ts
		}
	}
	return rec
}
