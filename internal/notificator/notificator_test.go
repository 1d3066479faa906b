package notificator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rahulbansal29/Landchain/pkg/logger"
)

func TestDispatchDoesNotBlockCaller(t *testing.T) {
	n := NewNotificator(logger.NewNop(), nil, nil)

	release := make(chan struct{})
	delivered := make(chan string, 1)
	done := make(chan struct{})
	go func() {
		n.dispatch("test", func(message string) {
			<-release
			delivered <- message
		}, "hello")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatch blocked on a slow channel")
	}

	close(release)
	select {
	case message := <-delivered:
		assert.Equal(t, "hello", message)
	case <-time.After(time.Second):
		t.Fatal("message was never delivered")
	}
}

func TestDispatchRecoversPanic(t *testing.T) {
	n := NewNotificator(logger.NewNop(), nil, nil)

	called := make(chan struct{})
	n.dispatch("test", func(string) {
		close(called)
		panic("channel blew up")
	}, "hello")

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("channel was never called")
	}
	// Recovery runs inside the dispatched goroutine; give it a moment so
	// an unrecovered panic would crash the run.
	time.Sleep(50 * time.Millisecond)
}
