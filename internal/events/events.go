// Package events содержит базовую модель событий игрового цикла:
// закрытый набор стандартных loop-событий и открытый механизм
// пользовательских событий с строковыми идентификаторами.
package events

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TimeStamp — отметка времени в миллисекундах с момента запуска цикла.
// uint32 переполняется примерно через 49.7 дней; это принято осознанно
// и не проверяется.
type TimeStamp uint32

// EventID идентифицирует тип пользовательского события.
// Используйте формат "<api>/<event>" (например "myapi/click"),
// чтобы избежать коллизий между независимыми провайдерами.
// Уникальность — соглашение, центрального реестра нет.
type EventID string

// API возвращает префикс идентификатора до "/" (имя провайдера).
// Если разделителя нет, возвращается идентификатор целиком.
func (id EventID) API() string {
	if i := strings.IndexByte(string(id), '/'); i >= 0 {
		return string(id[:i])
	}
	return string(id)
}

// Name возвращает часть идентификатора после "/" (имя события).
func (id EventID) Name() string {
	if i := strings.IndexByte(string(id), '/'); i >= 0 {
		return string(id[i+1:])
	}
	return string(id)
}

// UpdateArgs — аргументы обновления состояния приложения.
type UpdateArgs struct {
	// Dt — прошедшее время симуляции в секундах с предыдущего обновления.
	// Тип не гарантирует Dt >= 0; за это отвечает производитель событий.
	Dt float64 `json:"dt"`
}

// PartialCmp сравнивает аргументы обновления по Dt.
// Возвращает (-1|0|1, true) либо (0, false), если значения
// несравнимы (NaN).
func (a UpdateArgs) PartialCmp(b UpdateArgs) (int, bool) {
	switch {
	case a.Dt < b.Dt:
		return -1, true
	case a.Dt > b.Dt:
		return 1, true
	case a.Dt == b.Dt:
		return 0, true
	}
	return 0, false
}

// LoopKind — вид loop-события.
type LoopKind uint8

const (
	// LoopUpdate — обновление состояния приложения.
	LoopUpdate LoopKind = iota
	// Зарезервировано: LoopIdle — фоновые задачи, выполняемые инкрементально.
)

// Loop моделирует стандартные события игрового цикла.
// Новые виды добавляются новыми значениями LoopKind, без ломки API.
type Loop struct {
	Kind   LoopKind
	Update UpdateArgs // заполнено при Kind == LoopUpdate
}

// UpdateLoop создаёт loop-событие обновления.
func UpdateLoop(args UpdateArgs) Loop {
	return Loop{Kind: LoopUpdate, Update: args}
}

// PartialCmp сравнивает loop-события: сначала по виду, затем по
// естественному порядку внутренних данных (для Update — по Dt).
func (l Loop) PartialCmp(other Loop) (int, bool) {
	if l.Kind != other.Kind {
		switch {
		case l.Kind < other.Kind:
			return -1, true
		default:
			return 1, true
		}
	}
	switch l.Kind {
	case LoopUpdate:
		return l.Update.PartialCmp(other.Update)
	}
	return 0, false
}

// MarshalJSON кодирует loop-событие с внешним тегом варианта:
// {"Update":{"dt":0.016}}.
func (l Loop) MarshalJSON() ([]byte, error) {
	switch l.Kind {
	case LoopUpdate:
		return json.Marshal(map[string]UpdateArgs{"Update": l.Update})
	}
	return nil, fmt.Errorf("events: неизвестный вид loop-события: %d", l.Kind)
}

// UnmarshalJSON восстанавливает loop-событие из формата с внешним тегом.
func (l *Loop) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("events: ошибка разбора loop-события: %w", err)
	}
	if args, ok := raw["Update"]; ok {
		var u UpdateArgs
		if err := json.Unmarshal(args, &u); err != nil {
			return fmt.Errorf("events: ошибка разбора UpdateArgs: %w", err)
		}
		*l = UpdateLoop(u)
		return nil
	}
	return fmt.Errorf("events: неизвестный вариант loop-события")
}

// EventKind — вид события верхнего уровня.
type EventKind uint8

const (
	// KindLoop — стандартное событие игрового цикла.
	KindLoop EventKind = iota
	// KindCustom — пользовательское событие.
	KindCustom
)

// Event моделирует все события.
//
// Event — неизменяемое значение: производитель конструирует его и
// передаёт потребителям по значению. Копирование дёшево: для Custom
// копируется только ссылка на payload, без глубокого копирования.
//
// Семантика сравнения Custom-событий (сохраняется в точности,
// это осознанное решение, а не недосмотр):
//   - два Custom-события НИКОГДА не равны, даже при одинаковом
//     идентификаторе и общем payload;
//   - частичный порядок для Custom-событий не определён: идентификатор
//     служит лишь признаком различия, не ключом сортировки;
//   - отметка времени игнорируется и при сравнении, и при упорядочивании.
type Event struct {
	kind     EventKind
	loop     Loop
	id       EventID
	payload  any
	stamp    TimeStamp
	hasStamp bool
}

// NewLoop оборачивает loop-событие в Event.
func NewLoop(l Loop) Event {
	return Event{kind: KindLoop, loop: l}
}

// NewUpdate создаёт событие обновления из аргументов.
// Эквивалент Event <- Loop(Update(args)); всегда успешно.
func NewUpdate(args UpdateArgs) Event {
	return NewLoop(UpdateLoop(args))
}

// NewCustom создаёт пользовательское событие без отметки времени.
// Payload разделяется между всеми держателями события и должен быть
// безопасен для одновременного чтения из нескольких горутин.
func NewCustom(id EventID, payload any) Event {
	return Event{kind: KindCustom, id: id, payload: payload}
}

// NewCustomAt создаёт пользовательское событие с отметкой времени.
func NewCustomAt(id EventID, payload any, ts TimeStamp) Event {
	return Event{kind: KindCustom, id: id, payload: payload, stamp: ts, hasStamp: true}
}

// Kind возвращает вид события.
func (e Event) Kind() EventKind { return e.kind }

// Loop возвращает loop-событие, если это событие игрового цикла.
func (e Event) Loop() (Loop, bool) {
	if e.kind != KindLoop {
		return Loop{}, false
	}
	return e.loop, true
}

// Custom возвращает идентификатор и payload пользовательского события.
func (e Event) Custom() (EventID, any, bool) {
	if e.kind != KindCustom {
		return "", nil, false
	}
	return e.id, e.payload, true
}

// Stamp возвращает отметку времени пользовательского события,
// если она установлена.
func (e Event) Stamp() (TimeStamp, bool) {
	return e.stamp, e.hasStamp
}

// Equal сравнивает события на равенство.
//
// Loop-события равны при совпадении варианта и внутренних данных
// (Dt сравнивается как IEEE-равенство, без эпсилона). Любая пара с
// участием Custom-события не равна — в том числе два Custom-события с
// одним идентификатором и общим payload: произвольный type-erased
// payload не обязан поддерживать обобщённое сравнение, поэтому
// равенство консервативно запрещено.
func (e Event) Equal(other Event) bool {
	if e.kind != KindLoop || other.kind != KindLoop {
		return false
	}
	return e.loop == other.loop
}

// PartialCmp сравнивает события частичным порядком.
// Возвращает (-1|0|1, true) для сравнимых loop-событий; для любой пары
// с участием Custom-события — (0, false), независимо от идентификаторов
// и отметок времени.
func (e Event) PartialCmp(other Event) (int, bool) {
	if e.kind == KindLoop && other.kind == KindLoop {
		return e.loop.PartialCmp(other.loop)
	}
	return 0, false
}

// PayloadAs выполняет проверяемое приведение payload пользовательского
// события к конкретному типу T. При несовпадении типа или для
// loop-события возвращает (zero, false) — никакого неопределённого
// поведения.
func PayloadAs[T any](e Event) (T, bool) {
	var zero T
	if e.kind != KindCustom {
		return zero, false
	}
	v, ok := e.payload.(T)
	if !ok {
		return zero, false
	}
	return v, true
}
