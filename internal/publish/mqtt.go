// Package publish pushes aggregate snapshots to an MQTT broker.
package publish

import (
	"context"
	"encoding/json"
	"time"

	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/config"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/errors"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/logger"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/telemetry"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const publishTimeout = 5 * time.Second

// Publisher delivers snapshots to an external consumer.
type Publisher interface {
	Publish(ctx context.Context, snapshot *telemetry.Snapshot) error
	Close()
}

type noopPublisher struct{}

func (noopPublisher) Publish(_ context.Context, _ *telemetry.Snapshot) error { return nil }
func (noopPublisher) Close()                                                 {}

type mqttPublisher struct {
	client       mqtt.Client
	topic        string
	friendlyName string
	log          logger.Logger
}

// NewMQTT builds a publisher for the configured broker. Without a broker
// configured it returns a no-op publisher. Connection failures are not
// fatal; the client keeps retrying and snapshots are dropped until the
// broker is reachable.
func NewMQTT(cfg config.MQTTConfig, friendlyName string, log logger.Logger) Publisher {
	if cfg.Broker == "" {
		log.Debug().Msg("No MQTT broker configured, publishing disabled")
		return noopPublisher{}
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	client.Connect()

	log.Info().Str("broker", cfg.Broker).Str("topic", cfg.BaseTopic).Msg("MQTT publishing enabled")

	return &mqttPublisher{
		client:       client,
		topic:        cfg.BaseTopic + "/" + friendlyName,
		friendlyName: friendlyName,
		log:          log,
	}
}

func (p *mqttPublisher) Publish(_ context.Context, snapshot *telemetry.Snapshot) error {
	errFactory := errors.New()

	if !p.client.IsConnected() {
		p.log.Debug().Msg("MQTT broker not connected, dropping snapshot")
		return nil
	}

	body := map[string]any{
		"friendlyname": p.friendlyName,
		"geohash":      snapshot.Geohash,
		"timestamp":    snapshot.Timestamp.Unix(),
	}
	for category, values := range snapshot.Readings {
		body[category] = values
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	token := p.client.Publish(p.topic, 0, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return errFactory.New(errors.ErrTimeout)
	}
	if token.Error() != nil {
		return errFactory.Wrap(errors.ErrOperationFailed, token.Error())
	}

	return nil
}

func (p *mqttPublisher) Close() {
	p.client.Disconnect(250)
}
