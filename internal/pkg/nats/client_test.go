package nats

import (
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	natsserver "github.com/nats-io/nats-server/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runServer(t *testing.T) *server.Server {
	t.Helper()
	opts := natsserver.DefaultTestOptions
	opts.Port = -1
	s := natsserver.RunServer(&opts)
	t.Cleanup(s.Shutdown)
	return s
}

type stateRecorder struct {
	mu     sync.Mutex
	states []bool
}

func (r *stateRecorder) observe(connected bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, connected)
}

func (r *stateRecorder) last() (bool, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.states) == 0 {
		return false, 0
	}
	return r.states[len(r.states)-1], len(r.states)
}

func TestNewClient_InvalidAddress(t *testing.T) {
	client, err := NewClient("nats://127.0.0.1:1", "test", nil)
	assert.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "failed to connect to NATS server")
}

func TestClient_PublishAndClose(t *testing.T) {
	s := runServer(t)
	rec := &stateRecorder{}

	client, err := NewClient(s.ClientURL(), "test", rec.observe)
	require.NoError(t, err)

	connected, n := rec.last()
	assert.True(t, connected)
	assert.Equal(t, 1, n)

	sub, err := client.GetConn().SubscribeSync("tracking.position.R1")
	require.NoError(t, err)

	require.NoError(t, client.Publish("tracking.position.R1", []byte(`{"tripId":"R1"}`)))

	msg, err := sub.NextMsg(time.Second)
	require.NoError(t, err)
	assert.JSONEq(t, `{"tripId":"R1"}`, string(msg.Data))

	client.Close()

	assert.Eventually(t, func() bool {
		connected, _ := rec.last()
		return !connected && client.GetConn().IsClosed()
	}, 2*time.Second, 10*time.Millisecond)

	assert.Error(t, client.Publish("tracking.position.R1", []byte(`{}`)))
}
