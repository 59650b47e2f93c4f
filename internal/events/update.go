package events

// UpdateEvent — полиморфный контракт представления событий, умеющего
// конструировать событие обновления и распознавать его, не раскрывая
// потребителю конкретную форму представления. Благодаря этому один и
// тот же код потребителя работает и с Event, и с будущими, более
// богатыми представлениями (например, расширенным набором событий
// ввода).
type UpdateEvent[E any] interface {
	// FromUpdateArgs создаёт новое событие обновления из args.
	// Получатель выступает в роли предыдущего события того же
	// представления: реализации вправе брать из него контекст
	// (Event его игнорирует, но параметр обязателен — это не
	// мёртвый код). Возвращает (_, false) только если представление
	// в принципе не умеет выражать событие обновления; это «не
	// применимо», а не ошибка.
	FromUpdateArgs(args *UpdateArgs) (E, bool)

	// Update вызывает f с аргументами обновления, если это событие
	// обновления, и сообщает, был ли вызов. f вызывается не более
	// одного раза, синхронно, и нигде не сохраняется.
	Update(f func(args *UpdateArgs)) bool
}

// FromDt создаёт событие обновления по дельте времени.
// В точности эквивалентно old.FromUpdateArgs(&UpdateArgs{Dt: dt});
// реализации представлений не переопределяют эту семантику.
func FromDt[E UpdateEvent[E]](dt float64, old E) (E, bool) {
	return old.FromUpdateArgs(&UpdateArgs{Dt: dt})
}

// MapUpdate вызывает f для аргументов обновления и возвращает результат.
// Для событий, не являющихся обновлением, f не вызывается и
// возвращается (zero, false).
func MapUpdate[E UpdateEvent[E], U any](e E, f func(args *UpdateArgs) U) (U, bool) {
	var out U
	ok := e.Update(func(args *UpdateArgs) {
		out = f(args)
	})
	return out, ok
}

// UpdateArgsOf возвращает копию аргументов обновления события.
// Эквивалент MapUpdate с тождественным копированием.
func UpdateArgsOf[E UpdateEvent[E]](e E) (UpdateArgs, bool) {
	return MapUpdate(e, func(args *UpdateArgs) UpdateArgs {
		return *args
	})
}

var _ UpdateEvent[Event] = Event{}

// FromUpdateArgs реализует UpdateEvent. Для Event конструирование
// всегда успешно; предыдущее событие (получатель) не используется.
func (Event) FromUpdateArgs(args *UpdateArgs) (Event, bool) {
	return NewUpdate(*args), true
}

// Update реализует UpdateEvent.
func (e Event) Update(f func(args *UpdateArgs)) bool {
	if e.kind == KindLoop && e.loop.Kind == LoopUpdate {
		args := e.loop.Update
		f(&args)
		return true
	}
	return false
}
