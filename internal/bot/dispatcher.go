package bot

import (
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// dispatcher runs messages of the same user one after another, in arrival
// order, while different users are served concurrently. A worker goroutine
// exists only while its user has pending messages.
type dispatcher struct {
	handle func(*tgbotapi.Message)
	logger *zap.Logger

	mu      sync.Mutex
	pending map[int64][]*tgbotapi.Message
	wg      sync.WaitGroup
}

func newDispatcher(handle func(*tgbotapi.Message), logger *zap.Logger) *dispatcher {
	return &dispatcher{
		handle:  handle,
		logger:  logger,
		pending: make(map[int64][]*tgbotapi.Message),
	}
}

func (d *dispatcher) dispatch(userID int64, message *tgbotapi.Message) {
	d.mu.Lock()
	queue, running := d.pending[userID]
	d.pending[userID] = append(queue, message)
	d.mu.Unlock()

	if running {
		return
	}

	d.wg.Add(1)
	go d.run(userID)
}

func (d *dispatcher) run(userID int64) {
	defer d.wg.Done()

	for {
		d.mu.Lock()
		queue := d.pending[userID]
		if len(queue) == 0 {
			delete(d.pending, userID)
			d.mu.Unlock()
			return
		}
		message := queue[0]
		d.pending[userID] = queue[1:]
		d.mu.Unlock()

		d.safeHandle(userID, message)
	}
}

// safeHandle keeps a panicking handler from stalling the user's queue.
func (d *dispatcher) safeHandle(userID int64, message *tgbotapi.Message) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Handler panicked",
				zap.Error(fmt.Errorf("panic: %v", r)),
				zap.Int64("user_id", userID),
				zap.Int("message_id", message.MessageID),
				zap.Stack("stack"))
		}
	}()

	d.handle(message)
}

// wait blocks until every queued message has been handled.
func (d *dispatcher) wait() {
	d.wg.Wait()
}
