package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/Robogera/track/pkg/config"
	"github.com/Robogera/track/pkg/metrics"
	"github.com/Robogera/track/pkg/synapse"
	"github.com/google/uuid"

	mqtt "github.com/soypat/natiu-mqtt"
)

func newMQTTClient(logger *slog.Logger) *mqtt.Client {
	return mqtt.NewClient(
		mqtt.ClientConfig{
			Decoder: mqtt.DecoderNoAlloc{UserBuffer: make([]byte, 2048)},
			OnPub: func(pubHead mqtt.Header, varPub mqtt.VariablesPublish, r io.Reader) error {
				message, err := io.ReadAll(r)
				if err != nil {
					return err
				}
				logger.Debug("Received", "header", pubHead.String(), "topic", string(varPub.TopicName), "message", message)
				return nil
			},
		})
}

// Sends PINGREQ and waits for PINGRESP. The client reads the connection
// synchronously, the read deadline bounds the wait.
func ping(ctx context.Context, client *mqtt.Client, connection net.Conn, timeout time.Duration) error {
	ping_ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	connection.SetReadDeadline(time.Now().Add(timeout))
	defer connection.SetReadDeadline(time.Time{})
	if err := client.Ping(ping_ctx); err != nil {
		return err
	}
	// a read error disconnects the client and clears the pending ping
	if !client.IsConnected() {
		return fmt.Errorf("Disconnected while waiting for PINGRESP: %w", client.Err())
	}
	return nil
}

// Publishes every tracked frame to cfg.MQTT.Topic with QoS 0
func mqttclient(
	ctx context.Context,
	parent_logger *slog.Logger,
	cfg *config.ConfigFile,
	session uuid.UUID,
	m *metrics.Metrics,
	in_chan <-chan TrackedFrame,
) error {
	logger := parent_logger.With("coroutine", "mqttclient")
	client := newMQTTClient(logger)

	timeout := time.Second * time.Duration(cfg.MQTT.ConnectTimeoutSec)
	dialer := net.Dialer{Timeout: timeout}
	connection, err := dialer.DialContext(ctx, "tcp", cfg.MQTT.Broker)
	if err != nil {
		logger.Error("Can't dial", "broker", cfg.MQTT.Broker, "error", err)
		return fmt.Errorf("%w: %w", ERR_CANT_CONNECT, err)
	}

	connection_ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	var vars mqtt.VariablesConnect
	vars.SetDefaultMQTT([]byte(cfg.MQTT.ClientID))
	vars.KeepAlive = uint16(cfg.MQTT.KeepAliveSec)
	if cfg.MQTT.Username != "" {
		vars.Username = []byte(cfg.MQTT.Username)
		vars.Password = []byte(cfg.MQTT.Password)
	}
	err = client.Connect(connection_ctx, connection, &vars)
	if err != nil {
		connection.Close()
		logger.Error("Can't connect", "broker", cfg.MQTT.Broker, "error", err)
		return fmt.Errorf("%w: %w", ERR_CANT_CONNECT, err)
	}
	defer client.Disconnect(ERR_CANCELLED_BY_CONTEXT)

	flags, err := mqtt.NewPublishFlags(mqtt.QoS0, false, false)
	if err != nil {
		return err
	}
	topic := []byte(cfg.MQTT.Topic)

	logger.Info("Connected", "broker", cfg.MQTT.Broker, "topic", cfg.MQTT.Topic, "session", session)

	idle := time.Second * time.Duration(vars.KeepAlive) / 2
	keepalive := time.NewTicker(idle)
	defer keepalive.Stop()

	var packet_id uint64 = 0
	for {
		select {
		case <-ctx.Done():
			logger.Info("Cancelled by context")
			return context.Canceled
		case <-keepalive.C:
			if time.Since(client.LastTx()) < idle {
				continue
			}
			if err := ping(ctx, client, connection, timeout); err != nil {
				if ctx.Err() != nil {
					return context.Canceled
				}
				logger.Error("Ping failed", "error", err)
				return fmt.Errorf("%w: %w", ERR_CANT_CONNECT, err)
			}
			logger.Debug("Ping")
		case frame := <-in_chan:
			packet_id++
			cmd := synapse.NewCommand(packet_id, cfg.MQTT.ClientID, session, &synapse.Message{
				Stream: frame.Stream,
				Frame:  frame.Frame,
				Tracks: frame.Tracks,
			})
			payload, err := cmd.ToPayload()
			if err != nil {
				logger.Error("Can't marshal message", "frame", frame.Frame, "error", err)
				m.PublishErrors.Inc()
				continue
			}
			err = client.PublishPayload(flags, mqtt.VariablesPublish{
				TopicName:        topic,
				PacketIdentifier: uint16(packet_id),
			}, payload)
			if err != nil {
				m.PublishErrors.Inc()
				if !client.IsConnected() {
					logger.Error("Connection lost", "error", err)
					return fmt.Errorf("%w: %w", ERR_CANT_CONNECT, err)
				}
				logger.Warn("Can't publish", "frame", frame.Frame, "error", err)
				continue
			}
			m.Published.Inc()
		}
	}
}
