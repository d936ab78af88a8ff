package arccrawler

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codepr/arccrawler/config"
	"github.com/codepr/arccrawler/messaging"
)

func TestNewFromConfig_ThreadsModeAndRequestDelay(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ARCCRAWLER_OUT_FILE_PATH", dir)
	t.Setenv("ARCCRAWLER_MODE", "sync")
	t.Setenv("ARCCRAWLER_REQUEST_DELAY", "0")

	cfg, err := config.Load("")
	require.NoError(t, err)

	c := NewFromConfig(cfg)
	assert.Equal(t, ModeSync, c.mode)
	assert.Equal(t, time.Duration(0), c.requestDelay)
}

func TestCrawler_PublishesWriteEventsThroughProducer(t *testing.T) {
	dir := t.TempDir()
	urls := []string{"http://x/1", "http://x/2"}
	session := newScriptedSession(map[string]scriptedResponse{
		"http://x/1": {status: 200, text: "a"},
		"http://x/2": {status: 200, text: "b"},
	})

	queue := messaging.NewChannelQueue(len(urls))
	c := New(dir, WithMode(ModeSync), WithProducer(queue))

	events := make(chan []byte, len(urls))
	go func() { _ = queue.Consume(events) }()

	_, err := c.Get(context.Background(), urls, WithSession(session))
	require.NoError(t, err)

	var seen []WriteEvent
	for i := 0; i < len(urls); i++ {
		var ev WriteEvent
		require.NoError(t, json.Unmarshal(<-events, &ev))
		seen = append(seen, ev)
	}
	queue.Close()

	require.Len(t, seen, 2)
	assert.Equal(t, seen[0].RunID, seen[1].RunID)
	assert.NotEmpty(t, seen[0].RunID)
}
