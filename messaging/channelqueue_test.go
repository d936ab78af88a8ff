package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelQueue_ProduceConsume(t *testing.T) {
	q := NewChannelQueue(4)
	require.NoError(t, q.Produce([]byte("hello")))

	events := make(chan []byte, 1)
	go func() {
		_ = q.Consume(events)
	}()

	assert.Equal(t, []byte("hello"), <-events)
	q.Close()
}
