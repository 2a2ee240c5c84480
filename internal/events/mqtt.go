// Package events publishes run notifications over MQTT.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/school-locator/internal/models"
)

var ErrPublishTimeout = errors.New("mqtt publish timed out")

// Publisher delivers run events.
type Publisher interface {
	PublishRun(ctx context.Context, event models.RunEvent) error
}

// mqttPublishClient is the part of mqtt.Client used for publishing.
type mqttPublishClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTPublisher publishes run events as JSON to a topic.
type MQTTPublisher struct {
	client  mqttPublishClient
	topic   string
	qos     byte
	timeout time.Duration
}

// NewMQTTPublisher wraps an already connected client.
func NewMQTTPublisher(client mqttPublishClient, topic string) *MQTTPublisher {
	return &MQTTPublisher{client: client, topic: topic, qos: 1, timeout: 5 * time.Second}
}

// ConnectMQTT connects to the broker and returns a publisher on topic.
func ConnectMQTT(broker, clientID, topic string) (*MQTTPublisher, mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.WithError(err).Warn("MQTT connection lost")
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(15 * time.Second) {
		return nil, nil, fmt.Errorf("mqtt connect to %s timed out", broker)
	}
	if err := token.Error(); err != nil {
		return nil, nil, fmt.Errorf("mqtt connect: %w", err)
	}
	log.WithFields(log.Fields{"broker": broker, "topic": topic}).Info("Connected to MQTT broker")
	return NewMQTTPublisher(client, topic), client, nil
}

// PublishRun publishes the event and waits for the broker acknowledgement.
func (p *MQTTPublisher) PublishRun(ctx context.Context, event models.RunEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal run event: %w", err)
	}

	timeout := p.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	token := p.client.Publish(p.topic, p.qos, false, payload)
	if !token.WaitTimeout(timeout) {
		return ErrPublishTimeout
	}
	return token.Error()
}
