package collection

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSyncMap_GetOrCreate(t *testing.T) {
	m := NewSyncMap[string, int]()
	var calls int32
	create := func() int {
		atomic.AddInt32(&calls, 1)
		return 7
	}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, _ := m.GetOrCreate("a", create)
			assert.Equal(t, 7, v)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	v, created := m.GetOrCreate("a", create)
	assert.False(t, created)
	assert.Equal(t, 7, v)
	assert.Equal(t, 1, m.Len())
}

func TestSyncMap_ValuesAndDelete(t *testing.T) {
	m := NewSyncMap[string, int]()
	m.Put("a", 1)
	m.Put("b", 2)
	assert.ElementsMatch(t, []int{1, 2}, m.Values())

	m.Delete("a")
	m.Delete("missing")
	_, ok := m.Get("a")
	assert.False(t, ok)

	var keys []string
	m.Range(func(key string, _ int) bool {
		keys = append(keys, key)
		return true
	})
	assert.Equal(t, []string{"b"}, keys)
}
