package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCell_ReplayLatest(t *testing.T) {
	c := NewCell(1)
	c.Set(2)

	var got []int
	c.Subscribe(func(v int) { got = append(got, v) })
	assert.Equal(t, []int{2}, got)

	c.Set(3)
	assert.Equal(t, []int{2, 3}, got)
	assert.Equal(t, 3, c.Get())
}

func TestCell_SubscriptionOrder(t *testing.T) {
	c := NewCell("")
	var order []string
	c.Subscribe(func(v string) { order = append(order, "a:"+v) })
	c.Subscribe(func(v string) { order = append(order, "b:"+v) })
	order = nil

	c.Set("x")
	assert.Equal(t, []string{"a:x", "b:x"}, order)
}

func TestCell_EveryAssignmentBroadcast(t *testing.T) {
	c := NewCell(false)
	count := 0
	c.Subscribe(func(bool) { count++ })

	c.Set(false)
	c.Set(false)
	assert.Equal(t, 3, count, "replay plus two identical assignments")
}

func TestCell_Unsubscribe(t *testing.T) {
	c := NewCell(0)
	var a, b []int
	stopA := c.Subscribe(func(v int) { a = append(a, v) })
	c.Subscribe(func(v int) { b = append(b, v) })

	stopA()
	stopA()
	c.Set(7)

	assert.Equal(t, []int{0}, a)
	assert.Equal(t, []int{0, 7}, b)
}

func TestCell_CallbackMayRead(t *testing.T) {
	c := NewCell(0)
	var seen []int
	c.Subscribe(func(int) { seen = append(seen, c.Get()) })
	c.Set(5)
	assert.Equal(t, []int{0, 5}, seen)
}
