package queue

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConsumer(t *testing.T) (*ActivityConsumer, string) {
	t.Helper()
	l := logrus.New()
	l.SetOutput(io.Discard)
	dir := filepath.Join(t.TempDir(), "logs")
	return NewActivityConsumer("amqp://unused", dir, l), dir
}

func TestHandleMessageAppendsLines(t *testing.T) {
	c, dir := newTestConsumer(t)
	at := time.Date(2024, 3, 9, 10, 30, 0, 0, time.UTC)

	review, err := json.Marshal(ActivityEvent{ID: "e1", Type: ReviewPosted, ProductID: 7, UserID: 3, Rating: 4.5, Reviews: 2, OccurredAt: at})
	require.NoError(t, err)
	click, err := json.Marshal(ActivityEvent{ID: "e2", Type: ProductClicked, ProductID: 7, OccurredAt: at})
	require.NoError(t, err)

	require.NoError(t, c.handleMessage(review))
	require.NoError(t, c.handleMessage(click))

	data, err := os.ReadFile(filepath.Join(dir, ActivityLogName))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "[2024-03-09T10:30:00Z] Review posted | event_id=e1 | product_id=7 | user_id=3 | rating=4.5 | reviews=2", lines[0])
	assert.Equal(t, "[2024-03-09T10:30:00Z] Product clicked | event_id=e2 | product_id=7", lines[1])
}

func TestHandleMessageRejectsMalformed(t *testing.T) {
	c, dir := newTestConsumer(t)

	require.Error(t, c.handleMessage([]byte("{not json")))
	require.Error(t, c.handleMessage([]byte(`{"type":"product.clicked"}`)))

	_, err := os.Stat(filepath.Join(dir, ActivityLogName))
	assert.True(t, os.IsNotExist(err))
}

func TestQueuesCoverEveryEventType(t *testing.T) {
	assert.ElementsMatch(t, []string{ReviewPosted, ProductClicked}, Queues())
}
