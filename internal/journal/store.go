package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/annel0/gameloop/internal/events"
	"github.com/dgraph-io/badger/v3"
	"github.com/klauspost/compress/zstd"
)

// Filter определяет фильтры запроса записей журнала
type Filter struct {
	SessionID string
	Kinds     []Kind
	EventIDs  []events.EventID
	Since     time.Time
	Until     time.Time
	Limit     int
}

// Stats агрегированная статистика журнала
type Stats struct {
	Total     int
	ByKind    map[Kind]int
	ByEventID map[events.EventID]int
}

// Store представляет собой badger-хранилище записей журнала.
// Значения сжимаются zstd перед записью.
type Store struct {
	db  *badger.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// Open открывает (или создаёт) хранилище журнала по указанному пути
func Open(dataPath string) (*Store, error) {
	dbPath := filepath.Join(dataPath, "journal")
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось создать zstd-энкодер: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		db.Close()
		return nil, fmt.Errorf("не удалось создать zstd-декодер: %w", err)
	}

	return &Store{db: db, enc: enc, dec: dec}, nil
}

// recordKey формирует ключ записи: rec:<session>:<seq>.
// Seq дополняется нулями, чтобы лексикографический порядок ключей
// совпадал с порядком производства.
func recordKey(session string, seq uint64) []byte {
	return []byte(fmt.Sprintf("rec:%s:%016x", session, seq))
}

// Append записывает пачку записей в одной транзакции
func (s *Store) Append(ctx context.Context, recs []Record) error {
	if len(recs) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		for _, rec := range recs {
			data, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("ошибка сериализации записи %d: %w", rec.Seq, err)
			}
			compressed := s.enc.EncodeAll(data, nil)
			if err := txn.Set(recordKey(rec.SessionID, rec.Seq), compressed); err != nil {
				return fmt.Errorf("ошибка записи в журнал: %w", err)
			}
		}
		return nil
	})
}

// Query возвращает записи журнала, удовлетворяющие фильтру,
// в порядке производства
func (s *Store) Query(ctx context.Context, f Filter) ([]Record, error) {
	prefix := []byte("rec:")
	if f.SessionID != "" {
		prefix = []byte("rec:" + f.SessionID + ":")
	}

	var out []Record
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if f.Limit > 0 && len(out) >= f.Limit {
				return nil
			}

			var rec Record
			err := it.Item().Value(func(val []byte) error {
				data, err := s.dec.DecodeAll(val, nil)
				if err != nil {
					return fmt.Errorf("ошибка распаковки записи: %w", err)
				}
				return json.Unmarshal(data, &rec)
			})
			if err != nil {
				return err
			}

			if matches(rec, f) {
				out = append(out, rec)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetStats возвращает статистику записей по фильтру
func (s *Store) GetStats(ctx context.Context, f Filter) (*Stats, error) {
	// Статистика не ограничивается Limit
	noLimit := f
	noLimit.Limit = 0

	recs, err := s.Query(ctx, noLimit)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		ByKind:    make(map[Kind]int),
		ByEventID: make(map[events.EventID]int),
	}
	for _, rec := range recs {
		stats.Total++
		stats.ByKind[rec.Kind]++
		if rec.Kind == KindCustom {
			stats.ByEventID[rec.EventID]++
		}
	}
	return stats, nil
}

// matches проверяет запись против фильтра
func matches(rec Record, f Filter) bool {
	if len(f.Kinds) > 0 {
		found := false
		for _, k := range f.Kinds {
			if rec.Kind == k {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(f.EventIDs) > 0 {
		found := false
		for _, id := range f.EventIDs {
			if rec.EventID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if !f.Since.IsZero() && rec.WallTime.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && rec.WallTime.After(f.Until) {
		return false
	}
	return true
}

// Close закрывает хранилище
func (s *Store) Close() error {
	s.enc.Close()
	s.dec.Close()
	return s.db.Close()
}
