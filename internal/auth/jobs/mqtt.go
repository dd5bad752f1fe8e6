package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/aussiebroadwan/surveybasket/internal/auth/domain"
	"github.com/aussiebroadwan/surveybasket/pkg/obs"
)

const (
	mqttConnectTimeout    = 10 * time.Second
	mqttPublishTimeout    = 5 * time.Second
	mqttDisconnectQuiesce = 250 // milliseconds
	mqttQoS               = 1
)

var ErrMQTTConnect = errors.New("jobs: mqtt connect failed")

// MQTTConfig names the broker and topic email tasks are published to.
type MQTTConfig struct {
	BrokerURL string
	ClientID  string
	Username  string
	Password  string
	Topic     string
}

// MQTTQueue publishes each task as JSON at QoS 1. Delivery is confirmed
// asynchronously and only logged.
type MQTTQueue struct {
	client  pahomqtt.Client
	topic   string
	logger  *slog.Logger
	metrics *obs.Metrics
}

var _ Queue = (*MQTTQueue)(nil)

func buildClientOptions(cfg MQTTConfig) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(cfg.BrokerURL)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(mqttConnectTimeout)
	return opts
}

// NewMQTTQueue connects to the broker and waits for the first connection.
func NewMQTTQueue(cfg MQTTConfig, logger *slog.Logger, metrics *obs.Metrics) (*MQTTQueue, error) {
	opts := buildClientOptions(cfg)
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		logger.Warn("mqtt connection lost", slog.Any("error", err))
	})

	client := pahomqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrMQTTConnect, mqttConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMQTTConnect, err)
	}
	return newMQTTQueue(client, cfg.Topic, logger, metrics), nil
}

func newMQTTQueue(client pahomqtt.Client, topic string, logger *slog.Logger, metrics *obs.Metrics) *MQTTQueue {
	return &MQTTQueue{client: client, topic: topic, logger: logger, metrics: metrics}
}

func (q *MQTTQueue) Enqueue(_ context.Context, task domain.EmailTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}

	token := q.client.Publish(q.topic, mqttQoS, false, payload)
	q.metrics.JobEvent(kindEmail, "enqueued")

	go func() {
		if !token.WaitTimeout(mqttPublishTimeout) {
			q.logger.Warn("mqtt publish unconfirmed", slog.String("task_id", task.ID))
			q.metrics.JobEvent(kindEmail, "failed")
			return
		}
		if err := token.Error(); err != nil {
			q.logger.Error("mqtt publish", slog.String("task_id", task.ID), slog.Any("error", err))
			q.metrics.JobEvent(kindEmail, "failed")
		}
	}()
	return nil
}

func (q *MQTTQueue) Close() error {
	q.client.Disconnect(mqttDisconnectQuiesce)
	return nil
}
