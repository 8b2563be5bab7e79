package session

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/mcpbridge/internal/fakeproc"
)

func TestRegistry_Resolve(t *testing.T) {
	registry := NewRegistry(fakeConfig(fakeproc.New(fakeproc.ModeEcho)))

	generated, created := registry.Resolve("")
	assert.True(t, created)
	assert.NotEmpty(t, generated.ID())

	named, created := registry.Resolve("abc")
	assert.True(t, created)
	assert.Equal(t, "abc", named.ID())

	again, created := registry.Resolve("abc")
	assert.False(t, created)
	assert.Same(t, named, again)

	other, _ := registry.Resolve("")
	assert.NotEqual(t, generated.ID(), other.ID())
	assert.Equal(t, 3, registry.Len())

}

func TestRegistry_ResolveConcurrent(t *testing.T) {
	registry := NewRegistry(fakeConfig(fakeproc.New(fakeproc.ModeEcho)))
	const workers = 16
	var wg sync.WaitGroup
	sessions := make([]*Session, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sessions[i], _ = registry.Resolve("shared")
		}(i)
	}
	wg.Wait()
	for _, aSession := range sessions {
		assert.Same(t, sessions[0], aSession)
	}
	assert.Equal(t, 1, registry.Len())
}

func TestRegistry_SessionsAreIsolated(t *testing.T) {
	registry := NewRegistry(fakeConfig(fakeproc.New(fakeproc.ModeEcho)))
	defer func() { _ = registry.Close(context.Background()) }()
	ctx := context.Background()

	first, _ := registry.Resolve("one")
	second, _ := registry.Resolve("two")
	_, err := first.Send(ctx, request(1, "initialize"))
	require.NoError(t, err)
	_, err = second.Send(ctx, request(1, "tools/list"))
	require.NoError(t, err)

	assert.NotEqual(t, first.PID(), second.PID())
	assert.True(t, first.Initialized())
	assert.False(t, second.Initialized())
}

func TestRegistry_Close(t *testing.T) {
	registry := NewRegistry(fakeConfig(fakeproc.New(fakeproc.ModeEcho)))
	ctx := context.Background()
	var sessions []*Session
	for _, id := range []string{"a", "b", "c"} {
		aSession, _ := registry.Resolve(id)
		_, err := aSession.Send(ctx, request(1, "ping"))
		require.NoError(t, err)
		sessions = append(sessions, aSession)
	}
	// a session that never sent anything has no process to stop
	registry.Resolve("idle")

	require.NoError(t, registry.Close(ctx))
	for _, aSession := range sessions {
		aSession.mu.Lock()
		alive := aSession.channel.Alive()
		aSession.mu.Unlock()
		assert.False(t, alive)
	}
	require.NoError(t, registry.Close(ctx))
}
