package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/surveybasket/internal/auth/domain"
	"github.com/aussiebroadwan/surveybasket/pkg/obs"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type sentMail struct{ to, subject, body string }

type recordingMailer struct {
	mu    sync.Mutex
	sent  []sentMail
	block chan struct{}
	err   error
}

func (m *recordingMailer) Send(_ context.Context, to, subject, body string) error {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to, subject, body})
	return m.err
}

func (m *recordingMailer) all() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

func confirmTask(id string) domain.EmailTask {
	return domain.EmailTask{
		ID:       id,
		To:       "a@x.com",
		Subject:  "Survey Basket: Email Confirmation",
		Template: domain.TemplateEmailConfirmation,
		Data:     map[string]string{"name": "Ada", "action_url": "http://app/confirm?code=abc"},
	}
}

func TestRenderBody(t *testing.T) {
	body, err := RenderBody(confirmTask("t1"))
	require.NoError(t, err)
	require.Contains(t, body, "Hi Ada,")
	require.Contains(t, body, "http://app/confirm?code=abc")
	require.NotContains(t, body, "{{")

	_, err = RenderBody(domain.EmailTask{Template: "Nope"})
	require.Error(t, err)
}

func TestLocalQueueDelivers(t *testing.T) {
	m := &recordingMailer{}
	q := NewLocalQueue(m, discard, obs.New(), 2, 10)

	for _, id := range []string{"t1", "t2", "t3"} {
		require.NoError(t, q.Enqueue(context.Background(), confirmTask(id)))
	}
	require.NoError(t, q.Close())

	sent := m.all()
	require.Len(t, sent, 3)
	require.Equal(t, "a@x.com", sent[0].to)
	require.Contains(t, sent[0].body, "Hi Ada,")
}

func TestLocalQueueFullDoesNotBlock(t *testing.T) {
	m := &recordingMailer{block: make(chan struct{})}
	q := NewLocalQueue(m, discard, nil, 1, 1)

	// One task occupies the worker, one fills the buffer.
	require.NoError(t, q.Enqueue(context.Background(), confirmTask("t1")))
	require.Eventually(t, func() bool { return len(q.tasks) == 0 }, time.Second, time.Millisecond)
	require.NoError(t, q.Enqueue(context.Background(), confirmTask("t2")))

	done := make(chan error, 1)
	go func() { done <- q.Enqueue(context.Background(), confirmTask("t3")) }()
	select {
	case err := <-done:
		require.ErrorIs(t, err, ErrQueueFull)
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}

	close(m.block)
	require.NoError(t, q.Close())
	require.Len(t, m.all(), 2)
}

func TestLocalQueueClosed(t *testing.T) {
	q := NewLocalQueue(&recordingMailer{}, discard, nil, 1, 1)
	require.NoError(t, q.Close())
	require.NoError(t, q.Close())
	require.ErrorIs(t, q.Enqueue(context.Background(), confirmTask("t1")), ErrQueueClosed)
}

func TestLocalQueueSurvivesMailerError(t *testing.T) {
	m := &recordingMailer{err: errors.New("smtp down")}
	q := NewLocalQueue(m, discard, nil, 1, 4)
	require.NoError(t, q.Enqueue(context.Background(), confirmTask("t1")))
	require.NoError(t, q.Enqueue(context.Background(), confirmTask("t2")))
	require.NoError(t, q.Close())
	require.Len(t, m.all(), 2)
}

type doneToken struct {
	pahomqtt.Token
	err error
}

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Error() error                   { return t.err }

func (t doneToken) Done() <-chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}

type published struct {
	topic   string
	qos     byte
	payload []byte
}

type fakeClient struct {
	pahomqtt.Client
	mu           sync.Mutex
	published    []published
	disconnected bool
}

func (c *fakeClient) Publish(topic string, qos byte, _ bool, payload any) pahomqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = append(c.published, published{topic, qos, payload.([]byte)})
	return doneToken{}
}

func (c *fakeClient) Disconnect(uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnected = true
}

func TestMQTTQueuePublishesJSON(t *testing.T) {
	c := &fakeClient{}
	q := newMQTTQueue(c, "surveybasket/email", discard, nil)

	require.NoError(t, q.Enqueue(context.Background(), confirmTask("t1")))
	require.NoError(t, q.Close())

	c.mu.Lock()
	defer c.mu.Unlock()
	require.True(t, c.disconnected)
	require.Len(t, c.published, 1)
	require.Equal(t, "surveybasket/email", c.published[0].topic)
	require.EqualValues(t, 1, c.published[0].qos)

	var got domain.EmailTask
	require.NoError(t, json.Unmarshal(c.published[0].payload, &got))
	require.Equal(t, confirmTask("t1"), got)
}

func TestBuildClientOptions(t *testing.T) {
	opts := buildClientOptions(MQTTConfig{
		BrokerURL: "tcp://broker:1883",
		ClientID:  "surveybasket-test",
		Username:  "svc",
		Password:  "pw",
	})
	require.Len(t, opts.Servers, 1)
	require.Equal(t, "broker:1883", opts.Servers[0].Host)
	require.Equal(t, "surveybasket-test", opts.ClientID)
	require.Equal(t, "svc", opts.Username)
	require.True(t, opts.AutoReconnect)
}
