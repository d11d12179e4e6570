package listeners

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet_EachInOrder(t *testing.T) {
	var s Set[func() int]
	for i := 0; i < 5; i++ {
		i := i
		s.Add(func() int { return i })
	}

	var got []int
	s.Each(func(fn func() int) { got = append(got, fn()) })
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestSet_RemoveDuringVisit(t *testing.T) {
	var s Set[func()]
	var calls []string
	var removeB func()
	s.Add(func() {
		calls = append(calls, "a")
		removeB()
		s.Add(func() { calls = append(calls, "late") })
	})
	removeB = s.Add(func() { calls = append(calls, "b") })

	s.Each(func(fn func()) { fn() })
	assert.Equal(t, []string{"a"}, calls)
	assert.Equal(t, 2, s.Len())
}

func TestSet_TakeEmpties(t *testing.T) {
	var s Set[int]
	remove := s.Add(1)
	s.Add(2)

	assert.Equal(t, []int{1, 2}, s.Take())
	assert.Zero(t, s.Len())
	assert.Nil(t, s.Take())

	assert.NotPanics(t, remove, "stale remover is harmless")
	s.Add(3)
	remove()
	assert.Equal(t, 1, s.Len())
}
