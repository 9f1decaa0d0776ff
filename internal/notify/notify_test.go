package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jairsl2206/restaurant-sub000/internal/logger"
)

func TestWhatsApp_Notify(t *testing.T) {
	var got whatsAppRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ok := NewWhatsApp(srv.URL, "tok", srv.Client()).Notify(context.Background(), "+5215512345678", "Su pedido está listo")

	assert.True(t, ok)
	assert.Equal(t, "Bearer tok", auth)
	assert.Equal(t, "+5215512345678", got.Phone)
	assert.Equal(t, "Su pedido está listo", got.Message)
}

func TestWhatsApp_NotifyRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	assert.False(t, NewWhatsApp(srv.URL, "", srv.Client()).Notify(context.Background(), "1", "m"))
}

func TestWhatsApp_NotifyUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	assert.False(t, NewWhatsApp(url, "", nil).Notify(context.Background(), "1", "m"))
}

type fakeChannel struct {
	err      error
	key      string
	exchange string
	msg      amqp.Publishing
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func TestAMQP_Notify(t *testing.T) {
	ch := &fakeChannel{}
	a := NewAMQP(ch, "notifications")
	a.now = func() time.Time { return time.Date(2026, 2, 12, 13, 0, 0, 0, time.UTC) }

	require.True(t, a.Notify(context.Background(), "+521", "listo"))

	assert.Equal(t, "", ch.exchange)
	assert.Equal(t, "notifications", ch.key)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)
	assert.Equal(t, "application/json", ch.msg.ContentType)

	var m Message
	require.NoError(t, json.Unmarshal(ch.msg.Body, &m))
	assert.Equal(t, "+521", m.Recipient)
	assert.Equal(t, "listo", m.Message)
	assert.True(t, m.SentAt.Equal(a.now()))
	assert.NoError(t, a.Close())
}

func TestAMQP_NotifyPublishError(t *testing.T) {
	a := NewAMQP(&fakeChannel{err: amqp.ErrClosed}, "q")
	assert.False(t, a.Notify(context.Background(), "+521", "listo"))
}

type recorder struct {
	mu    sync.Mutex
	calls []string
	ok    bool
	panic bool
}

func (r *recorder) Notify(ctx context.Context, recipient, message string) bool {
	if r.panic {
		panic("boom")
	}
	if _, ok := ctx.Deadline(); !ok {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recipient+": "+message)
	return r.ok
}

func TestMulti(t *testing.T) {
	a, b := &recorder{ok: false}, &recorder{ok: true}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	assert.True(t, Multi{a, b}.Notify(ctx, "1", "m"))
	assert.Len(t, a.calls, 1)
	assert.Len(t, b.calls, 1)
	assert.False(t, Multi{a}.Notify(ctx, "1", "m"))
}

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	t.Cleanup(logger.Set(zap.New(core)))
	return logs
}

func TestDispatcher_Send(t *testing.T) {
	logs := observe(t)
	rec := &recorder{ok: true}
	d := NewDispatcher(rec, time.Second)

	d.Send(logger.WithRequestID(context.Background(), "req-1"), " +521 ", "listo")
	d.Send(context.Background(), "   ", "skipped")
	d.Wait()

	assert.Equal(t, []string{"+521: listo"}, rec.calls)
	assert.Zero(t, logs.Len())
}

func TestDispatcher_LogsFailure(t *testing.T) {
	logs := observe(t)
	d := NewDispatcher(&recorder{ok: false}, time.Second)

	d.Send(logger.WithRequestID(context.Background(), "req-2"), "+521", "listo")
	d.Wait()

	entries := logs.FilterMessage("notification not delivered").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-2", entries[0].ContextMap()["request_id"])
	assert.Equal(t, "+521", entries[0].ContextMap()["recipient"])
}

func TestDispatcher_RecoversPanic(t *testing.T) {
	logs := observe(t)
	d := NewDispatcher(&recorder{panic: true}, time.Second)

	assert.NotPanics(t, func() {
		d.Send(context.Background(), "+521", "listo")
		d.Wait()
	})
	assert.Equal(t, 1, logs.FilterMessage("notification panicked").Len())
}

func TestNoop(t *testing.T) {
	assert.True(t, Noop{}.Notify(context.Background(), "", ""))
}
