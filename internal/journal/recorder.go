package journal

import (
	"context"
	"sync"
	"time"

	"github.com/annel0/gameloop/internal/events"
	"github.com/annel0/gameloop/internal/logging"
	"github.com/google/uuid"
)

// Recorder накапливает проекции событий и пишет их в хранилище
// батчами. Handle совместим с обработчиком драйвера цикла, так что
// рекордер подключается к циклу как обычный потребитель событий.
type Recorder struct {
	store     *Store
	session   string
	batchSize int

	mu    sync.Mutex
	batch []Record
	seq   uint64

	log *logging.Logger
}

// NewRecorder создаёт рекордер с новой uuid-сессией
func NewRecorder(store *Store, batchSize int) *Recorder {
	if batchSize <= 0 {
		batchSize = 64
	}
	return &Recorder{
		store:     store,
		session:   uuid.NewString(),
		batchSize: batchSize,
		batch:     make([]Record, 0, batchSize),
		log:       logging.GetJournalLogger(),
	}
}

// SessionID возвращает идентификатор сессии записи
func (r *Recorder) SessionID() string {
	return r.session
}

// Handle проецирует событие в запись журнала.
// Полный батч сбрасывается в хранилище синхронно; ошибка записи
// логируется и не прерывает цикл.
func (r *Recorder) Handle(ev events.Event) {
	r.mu.Lock()
	r.seq++
	r.batch = append(r.batch, Project(ev, r.session, r.seq, time.Now()))
	full := len(r.batch) >= r.batchSize
	r.mu.Unlock()

	if full {
		if err := r.Flush(); err != nil {
			r.log.Error("❌ Ошибка сброса батча журнала: %v", err)
		}
	}
}

// Flush записывает накопленный батч в хранилище
func (r *Recorder) Flush() error {
	r.mu.Lock()
	pending := r.batch
	r.batch = make([]Record, 0, r.batchSize)
	r.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}
	return r.store.Append(context.Background(), pending)
}

// Close сбрасывает остаток батча
func (r *Recorder) Close() error {
	return r.Flush()
}
