package keymutex

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSerializesSameKey(t *testing.T) {
	km := New()
	counter := 0

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock("event-a")
			defer km.Unlock("event-a")
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}

func TestIndependentKeysDoNotBlock(t *testing.T) {
	km := New()
	km.Lock("event-a")
	defer km.Unlock("event-a")

	done := make(chan struct{})
	go func() {
		km.Lock("event-b")
		km.Unlock("event-b")
		close(done)
	}()
	<-done
}
