//go:build integration

package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kilianp07/smartpark/core/model"
)

// TestIntegration publishes the current tier to a real Mosquitto broker and
// reads the retained message back with a separate client.
func TestIntegration(t *testing.T) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "eclipse-mosquitto:1.6",
			ExposedPorts: []string{"1883/tcp"},
			WaitingFor:   wait.ForListeningPort("1883/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	defer func() { _ = container.Terminate(ctx) }()

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "1883")
	require.NoError(t, err)
	broker := fmt.Sprintf("tcp://%s:%s", host, port.Port())

	pub, err := NewPahoClient(Config{Enabled: true, Broker: broker, QoS: 1, TopicPrefix: "it"})
	require.NoError(t, err)
	defer pub.Disconnect()

	cur := model.CurrentTier{Day: "Friday", ScheduleEntry: model.ScheduleEntry{Hour: 17, Tier: model.TierHigh, Price: 3}}
	require.NoError(t, pub.PublishCurrent(cur))

	got := make(chan CurrentMessage, 1)
	sub := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("it-reader"))
	tok := sub.Connect()
	require.True(t, tok.WaitTimeout(5*time.Second))
	require.NoError(t, tok.Error())
	defer sub.Disconnect(100)
	tok = sub.Subscribe("it/current", 1, func(_ paho.Client, m paho.Message) {
		var msg CurrentMessage
		if json.Unmarshal(m.Payload(), &msg) == nil {
			got <- msg
		}
	})
	require.True(t, tok.WaitTimeout(5*time.Second))

	select {
	case msg := <-got:
		assert.Equal(t, "High", msg.Tier)
		assert.Equal(t, 17, msg.Hour)
	case <-time.After(5 * time.Second):
		t.Fatal("retained message not received")
	}
}
