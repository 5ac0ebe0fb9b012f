package feed

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gangplank/internal/pipeline"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestBroadcastReachesSubscriber(t *testing.T) {
	s := NewServer()
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return s.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)

	s.Broadcast(pipeline.Progress{
		StepNumber: 2,
		TotalSteps: 9,
		StepID:     "repo-scan",
		StepName:   "Scan repository",
		Status:     pipeline.StatusRunning,
		Percent:    16.7,
	})

	var got pipeline.Progress
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "repo-scan", got.StepID)
	assert.Equal(t, pipeline.StatusRunning, got.Status)
	assert.InDelta(t, 16.7, got.Percent, 0.001)
}

func TestLateSubscriberGetsReplay(t *testing.T) {
	s := NewServer()
	s.Broadcast(pipeline.Progress{StepNumber: 1, TotalSteps: 9, StepID: "provider-status", Status: pipeline.StatusCompleted, Percent: 11.1})

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dial(t, srv)

	var got pipeline.Progress
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "provider-status", got.StepID)
}

func TestObserverFeedsServer(t *testing.T) {
	s := NewServer()
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return s.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)

	ob := s.Observer()
	ob(pipeline.Progress{StepID: "tasks", Status: pipeline.StatusCompleted, Percent: 55.6})

	var got pipeline.Progress
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "tasks", got.StepID)
}

func TestDisconnectRemovesSubscriber(t *testing.T) {
	s := NewServer()
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return s.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return s.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestWireFormatUsesCamelCase(t *testing.T) {
	s := NewServer()
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return s.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)

	s.Broadcast(pipeline.Progress{StepNumber: 3, TotalSteps: 9, StepID: "key-files", StepName: "Analyze key files", Status: pipeline.StatusRunning, Detail: "summarizing file 1/4", Percent: 27.8})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	payload := string(raw)
	for _, key := range []string{`"stepNumber"`, `"totalSteps"`, `"stepId"`, `"stepName"`, `"stepStatus"`, `"detail"`, `"progress"`} {
		assert.Contains(t, payload, key)
	}
}
