// event-cli — инструмент инспекции журнала событий игрового цикла.
//
// Команды:
//
//	tail  — вывести последние записи журнала
//	stats — агрегированная статистика по видам и идентификаторам
//	types — список встреченных идентификаторов custom-событий
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/annel0/gameloop/internal/events"
	"github.com/annel0/gameloop/internal/journal"
)

const timeFormat = "2006-01-02T15:04:05Z"

func main() {
	var (
		dbPath  = flag.String("db", "data/journal", "Путь к директории журнала")
		command = flag.String("cmd", "tail", "Команда: tail, stats, types")
		session = flag.String("session", "", "Фильтр по идентификатору сессии")
		kinds   = flag.String("kinds", "", "Фильтр по видам записей (update,custom)")
		ids     = flag.String("ids", "", "Фильтр по идентификаторам событий (через запятую)")
		since   = flag.String("since", "", "Давность от текущего момента (например 1h, 30m)")
		until   = flag.String("until", "", "Верхняя граница времени (RFC3339)")
		limit   = flag.Int("limit", 100, "Максимальное число записей")
	)
	flag.Parse()

	store, err := journal.Open(*dbPath)
	if err != nil {
		log.Fatalf("❌ Не удалось открыть журнал: %v", err)
	}
	defer store.Close()

	filter, err := buildFilter(*session, *kinds, *ids, *since, *until, *limit)
	if err != nil {
		log.Fatalf("❌ Некорректный фильтр: %v", err)
	}

	ctx := context.Background()

	switch *command {
	case "tail":
		if err := tailRecords(ctx, store, filter); err != nil {
			log.Fatalf("❌ Tail failed: %v", err)
		}
	case "stats":
		if err := showStats(ctx, store, filter); err != nil {
			log.Fatalf("❌ Stats failed: %v", err)
		}
	case "types":
		if err := showTypes(ctx, store, filter); err != nil {
			log.Fatalf("❌ Types failed: %v", err)
		}
	default:
		log.Fatalf("❌ Неизвестная команда: %s", *command)
	}
}

// buildFilter собирает фильтр журнала из флагов CLI
func buildFilter(session, kinds, ids, since, until string, limit int) (journal.Filter, error) {
	f := journal.Filter{
		SessionID: session,
		Limit:     limit,
	}

	for _, k := range parseStringList(kinds) {
		f.Kinds = append(f.Kinds, journal.Kind(k))
	}
	for _, id := range parseStringList(ids) {
		f.EventIDs = append(f.EventIDs, events.EventID(id))
	}

	if since != "" {
		d, err := time.ParseDuration(since)
		if err != nil {
			return f, fmt.Errorf("разбор -since: %w", err)
		}
		f.Since = time.Now().Add(-d)
	}
	if until != "" {
		t, err := time.Parse(time.RFC3339, until)
		if err != nil {
			return f, fmt.Errorf("разбор -until: %w", err)
		}
		f.Until = t
	}
	return f, nil
}

// tailRecords печатает записи журнала в порядке производства
func tailRecords(ctx context.Context, store *journal.Store, f journal.Filter) error {
	recs, err := store.Query(ctx, f)
	if err != nil {
		return err
	}

	if len(recs) == 0 {
		fmt.Println("Журнал пуст (или фильтр не дал совпадений)")
		return nil
	}

	for _, rec := range recs {
		switch rec.Kind {
		case journal.KindUpdate:
			fmt.Printf("%s  %s #%06d  update  dt=%.6f\n",
				rec.WallTime.Format(timeFormat), shortSession(rec.SessionID), rec.Seq, rec.Dt)
		case journal.KindCustom:
			stamp := "-"
			if rec.Stamp != nil {
				stamp = fmt.Sprintf("%d мс", *rec.Stamp)
			}
			fmt.Printf("%s  %s #%06d  custom  id=%s stamp=%s\n",
				rec.WallTime.Format(timeFormat), shortSession(rec.SessionID), rec.Seq, rec.EventID, stamp)
		}
	}
	fmt.Printf("Всего: %d записей\n", len(recs))
	return nil
}

// showStats печатает агрегированную статистику журнала
func showStats(ctx context.Context, store *journal.Store, f journal.Filter) error {
	stats, err := store.GetStats(ctx, f)
	if err != nil {
		return err
	}

	fmt.Printf("Всего записей: %d\n", stats.Total)
	for kind, count := range stats.ByKind {
		fmt.Printf("  %-8s %d\n", kind, count)
	}
	if len(stats.ByEventID) > 0 {
		fmt.Println("Custom-события:")
		for id, count := range stats.ByEventID {
			fmt.Printf("  %-32s %d\n", id, count)
		}
	}
	return nil
}

// showTypes печатает встреченные идентификаторы custom-событий
func showTypes(ctx context.Context, store *journal.Store, f journal.Filter) error {
	stats, err := store.GetStats(ctx, f)
	if err != nil {
		return err
	}

	if len(stats.ByEventID) == 0 {
		fmt.Println("Custom-событий не найдено")
		return nil
	}
	for id := range stats.ByEventID {
		fmt.Printf("%s (api=%s, event=%s)\n", id, id.API(), id.Name())
	}
	return nil
}

// parseStringList разбирает список значений через запятую
func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// shortSession усекает uuid сессии до читаемого префикса
func shortSession(session string) string {
	if len(session) > 8 {
		return session[:8]
	}
	return session
}
