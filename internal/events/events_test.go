package events

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventID_Parts(t *testing.T) {
	// Тест разбора идентификатора "<api>/<event>"
	id := EventID("myapi/click")
	assert.Equal(t, "myapi", id.API(), "Префикс должен быть именем провайдера")
	assert.Equal(t, "click", id.Name(), "Суффикс должен быть именем события")

	bare := EventID("tick")
	assert.Equal(t, "tick", bare.API())
	assert.Equal(t, "tick", bare.Name())
}

func TestLoopEvent_Equality(t *testing.T) {
	// Loop-события сравниваются структурно, Dt — IEEE-равенство
	e1 := NewUpdate(UpdateArgs{Dt: 0.016})
	e2 := NewUpdate(UpdateArgs{Dt: 0.016})
	e3 := NewUpdate(UpdateArgs{Dt: 0.032})

	assert.True(t, e1.Equal(e2), "Одинаковые update-события должны быть равны")
	assert.False(t, e1.Equal(e3), "Разный Dt — события не равны")

	// NaN != NaN по IEEE
	nan := NewUpdate(UpdateArgs{Dt: math.NaN()})
	assert.False(t, nan.Equal(nan), "NaN не равен сам себе")
}

func TestCustomEvent_NeverEqual(t *testing.T) {
	// Custom-события никогда не равны, даже при общем payload
	payload := &struct{ X int }{X: 42}
	id := EventID("myapi/spawn")

	c1 := NewCustom(id, payload)
	c2 := NewCustom(id, payload)

	assert.False(t, c1.Equal(c2), "Два custom-события не равны даже с общим payload")
	assert.False(t, c1.Equal(c1), "Custom-событие не равно даже самому себе")

	// Custom никогда не равен Loop
	u := NewUpdate(UpdateArgs{Dt: 0.0})
	assert.False(t, c1.Equal(u))
	assert.False(t, u.Equal(c1))
}

func TestLoop_PartialCmp(t *testing.T) {
	// Порядок loop-событий совпадает с порядком Dt
	small := NewUpdate(UpdateArgs{Dt: 0.5})
	big := NewUpdate(UpdateArgs{Dt: 1.5})

	ord, ok := small.PartialCmp(big)
	require.True(t, ok, "Update-события с конечным Dt должны быть сравнимы")
	assert.Equal(t, -1, ord, "Меньший Dt должен идти раньше")

	ord, ok = big.PartialCmp(small)
	require.True(t, ok)
	assert.Equal(t, 1, ord)

	ord, ok = small.PartialCmp(NewUpdate(UpdateArgs{Dt: 0.5}))
	require.True(t, ok)
	assert.Equal(t, 0, ord, "Равный Dt — порядок 0")

	// NaN делает пару несравнимой
	_, ok = small.PartialCmp(NewUpdate(UpdateArgs{Dt: math.NaN()}))
	assert.False(t, ok, "NaN несравним")
}

func TestCustom_PartialCmp_Undefined(t *testing.T) {
	// Custom-события несравнимы независимо от идентификаторов и отметок
	id := EventID("myapi/spawn")
	other := EventID("otherapi/despawn")

	c1 := NewCustomAt(id, "a", TimeStamp(100))
	c2 := NewCustomAt(id, "b", TimeStamp(200))
	c3 := NewCustom(other, "c")

	_, ok := c1.PartialCmp(c2)
	assert.False(t, ok, "Одинаковые идентификаторы — порядок не определён")

	_, ok = c1.PartialCmp(c3)
	assert.False(t, ok, "Разные идентификаторы — порядок не определён")

	// Кросс-вариантное сравнение тоже не определено
	u := NewUpdate(UpdateArgs{Dt: 1.0})
	_, ok = u.PartialCmp(c1)
	assert.False(t, ok)
	_, ok = c1.PartialCmp(u)
	assert.False(t, ok)
}

func TestEvent_Accessors(t *testing.T) {
	u := NewUpdate(UpdateArgs{Dt: 0.25})
	assert.Equal(t, KindLoop, u.Kind())

	l, ok := u.Loop()
	require.True(t, ok)
	assert.Equal(t, LoopUpdate, l.Kind)
	assert.Equal(t, 0.25, l.Update.Dt)

	_, _, ok = u.Custom()
	assert.False(t, ok, "Loop-событие не отдаёт custom-данные")
	_, ok = u.Stamp()
	assert.False(t, ok, "Loop-событие не несёт отметку времени")

	c := NewCustomAt("myapi/click", 7, TimeStamp(1500))
	assert.Equal(t, KindCustom, c.Kind())

	id, payload, ok := c.Custom()
	require.True(t, ok)
	assert.Equal(t, EventID("myapi/click"), id)
	assert.Equal(t, 7, payload)

	ts, ok := c.Stamp()
	require.True(t, ok)
	assert.Equal(t, TimeStamp(1500), ts)

	_, ok = c.Loop()
	assert.False(t, ok)
}

func TestPayloadAs_CheckedDowncast(t *testing.T) {
	type clickArgs struct {
		X, Y int
	}
	payload := &clickArgs{X: 3, Y: 4}
	e := NewCustom("myapi/click", payload)

	// Успешное приведение возвращает общий payload
	got, ok := PayloadAs[*clickArgs](e)
	require.True(t, ok, "Приведение к правильному типу должно успешно пройти")
	assert.Same(t, payload, got, "Payload разделяется, а не копируется")

	// Несовпадение типа — мягкий отказ
	_, ok = PayloadAs[string](e)
	assert.False(t, ok, "Несовпадение типа должно возвращать false")

	// Для loop-события payload отсутствует
	_, ok = PayloadAs[*clickArgs](NewUpdate(UpdateArgs{Dt: 0.1}))
	assert.False(t, ok)
}

func TestEvent_SharedPayloadOnCopy(t *testing.T) {
	// Копия события разделяет payload, глубокого копирования нет
	payload := &struct{ N int }{N: 1}
	e := NewCustom("myapi/state", payload)
	copied := e

	p1, ok := PayloadAs[*struct{ N int }](e)
	require.True(t, ok)
	p2, ok := PayloadAs[*struct{ N int }](copied)
	require.True(t, ok)
	assert.Same(t, p1, p2, "Обе копии должны держать один payload")
}

func TestUpdateArgs_JSON(t *testing.T) {
	// Имя поля dt сохраняется на проводе
	data, err := json.Marshal(UpdateArgs{Dt: 0.5})
	require.NoError(t, err)
	assert.JSONEq(t, `{"dt":0.5}`, string(data))

	var args UpdateArgs
	require.NoError(t, json.Unmarshal([]byte(`{"dt":2.5}`), &args))
	assert.Equal(t, 2.5, args.Dt)
}

func TestLoop_JSON_VariantTag(t *testing.T) {
	// Loop кодируется с внешним тегом варианта
	data, err := json.Marshal(UpdateLoop(UpdateArgs{Dt: 0.125}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"Update":{"dt":0.125}}`, string(data))

	var l Loop
	require.NoError(t, json.Unmarshal(data, &l))
	assert.Equal(t, UpdateLoop(UpdateArgs{Dt: 0.125}), l)

	// Неизвестный вариант — ошибка разбора
	err = json.Unmarshal([]byte(`{"Idle":{}}`), &l)
	assert.Error(t, err, "Неизвестный вариант должен давать ошибку")
}
