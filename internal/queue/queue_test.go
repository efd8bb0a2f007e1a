package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testItem struct {
	ID   int
	Name string
}

func TestQueue_New(t *testing.T) {
	q := New[testItem]()
	require.NotNil(t, q)
	assert.True(t, q.Empty())
	assert.Equal(t, 0, q.Len())
}

func TestQueue_PushPop(t *testing.T) {
	q := New[testItem]()

	_, ok := q.Pop()
	assert.False(t, ok, "pop from empty queue")

	q.Push(testItem{ID: 1, Name: "first"}, testItem{ID: 2, Name: "second"})
	first, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, testItem{ID: 1, Name: "first"}, first)
	assert.Equal(t, 1, q.Len())
}

func TestQueue_FrontBack(t *testing.T) {
	q := New[int]()

	_, ok := q.Front()
	assert.False(t, ok)
	_, ok = q.Back()
	assert.False(t, ok)

	q.Push(1, 2, 3)
	front, _ := q.Front()
	back, _ := q.Back()
	assert.Equal(t, 1, front)
	assert.Equal(t, 3, back)
	assert.Equal(t, 3, q.Len(), "peeking does not remove")
}

func TestQueue_Clear(t *testing.T) {
	q := New[testItem]()
	q.Push(testItem{ID: 1}, testItem{ID: 2}, testItem{ID: 3})

	q.Clear()

	assert.True(t, q.Empty())
}

func TestQueue_ItemsIsACopy(t *testing.T) {
	q := New[int]()
	q.Push(1, 2)

	items := q.Items()
	items[0] = 99

	front, _ := q.Front()
	assert.Equal(t, 1, front)
}

func TestQueue_GetAndEmpty(t *testing.T) {
	q := New[testItem]()
	q.Push(testItem{ID: 1}, testItem{ID: 2}, testItem{ID: 3})

	result := q.GetAndEmpty()

	require.Len(t, result, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{result[0].ID, result[1].ID, result[2].ID})
	assert.True(t, q.Empty())
}

func TestQueue_Concurrent(t *testing.T) {
	q := New[testItem]()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			q.Push(testItem{ID: id})
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 100, q.Len())

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Pop()
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, q.Len())
}

func TestQueue_ConcurrentGetAndEmpty(t *testing.T) {
	q := New[testItem]()
	for i := 0; i < 100; i++ {
		q.Push(testItem{ID: i})
	}

	var wg sync.WaitGroup
	results := make(chan []testItem, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- q.GetAndEmpty()
		}()
	}
	wg.Wait()
	close(results)

	total := 0
	for r := range results {
		total += len(r)
	}
	assert.Equal(t, 100, total)
}
