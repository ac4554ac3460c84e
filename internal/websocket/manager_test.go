package websocket

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestManagerRegisterUnregister(t *testing.T) {
	m := NewManager(nopLogger{})
	id := uuid.New()
	ch := NewChannel(&fakeConn{}, nopLogger{})
	defer func() {
		ch.Close()
		waitDone(t, ch)
	}()

	m.Register(id, ch)
	assert.Equal(t, 1, m.Count())

	m.Unregister(id)
	assert.Equal(t, 0, m.Count())
}

func TestManagerCloseAllDrainsChannels(t *testing.T) {
	m := NewManager(nopLogger{})

	first := NewChannel(&fakeConn{}, nopLogger{})
	second := NewChannel(&fakeConn{}, nopLogger{})
	m.Register(uuid.New(), first)
	m.Register(uuid.New(), second)

	m.CloseAll()

	assert.Equal(t, 0, m.Count())
	for _, ch := range []*Channel{first, second} {
		select {
		case <-ch.Done():
		case <-time.After(time.Second):
			t.Fatal("CloseAll left a writer running")
		}
	}
}
