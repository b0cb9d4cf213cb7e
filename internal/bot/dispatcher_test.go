package bot

import (
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestDispatcher_PreservesPerUserOrder(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[int64][]int)

	d := newDispatcher(func(m *tgbotapi.Message) {
		mu.Lock()
		defer mu.Unlock()
		seen[m.From.ID] = append(seen[m.From.ID], m.MessageID)
	}, zaptest.NewLogger(t))

	for i := 0; i < 100; i++ {
		for user := int64(1); user <= 3; user++ {
			d.dispatch(user, &tgbotapi.Message{MessageID: i, From: &tgbotapi.User{ID: user}})
		}
	}
	d.wait()

	for user := int64(1); user <= 3; user++ {
		got := seen[user]
		assert.Len(t, got, 100)
		for i, id := range got {
			assert.Equal(t, i, id)
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	assert.Empty(t, d.pending, "idle users keep no worker")
}

func TestDispatcher_RecoversFromPanic(t *testing.T) {
	var mu sync.Mutex
	var handled []int

	d := newDispatcher(func(m *tgbotapi.Message) {
		if m.MessageID == 2 {
			panic("handler bug")
		}
		mu.Lock()
		defer mu.Unlock()
		handled = append(handled, m.MessageID)
	}, zaptest.NewLogger(t))

	for i := 1; i <= 3; i++ {
		d.dispatch(1, &tgbotapi.Message{MessageID: i, From: &tgbotapi.User{ID: 1}})
	}

	done := make(chan struct{})
	go func() {
		d.wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("dispatcher did not drain after a panic")
	}

	assert.Equal(t, []int{1, 3}, handled)

	d.mu.Lock()
	defer d.mu.Unlock()
	assert.Empty(t, d.pending)
}
