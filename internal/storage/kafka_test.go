package storage_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"storefront/internal/events"
	"storefront/internal/mocks"
	"storefront/internal/storage"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestKafkaSignalPublisher_Publish(t *testing.T) {
	tests := []struct {
		name      string
		signal    events.Signal
		wantWrite bool
	}{
		{
			name:      "local cart change is forwarded",
			signal:    events.Signal{Kind: events.CartChanged, Origin: "cart"},
			wantWrite: true,
		},
		{
			name:      "order placed is forwarded",
			signal:    events.Signal{Kind: events.OrderPlaced, Origin: "cart", OrderID: 42},
			wantWrite: true,
		},
		{
			name:   "remote signal is not echoed",
			signal: events.Signal{Kind: events.CartChanged, Origin: storage.RemoteOrigin + "other"},
		},
		{
			name:   "login required stays local",
			signal: events.Signal{Kind: events.LoginRequired, Origin: "auth"},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			writer := mocks.NewMessageWriter(t)
			publisher := storage.NewKafkaSignalPublisher(writer, "instance-a", nil)

			if testCase.wantWrite {
				writer.On("WriteMessages", mock.Anything, mock.MatchedBy(func(msgs []kafka.Message) bool {
					if len(msgs) != 1 || string(msgs[0].Key) != "instance-a" {
						return false
					}
					var got events.Signal
					return json.Unmarshal(msgs[0].Value, &got) == nil &&
						got.Kind == testCase.signal.Kind &&
						got.OrderID == testCase.signal.OrderID
				})).Return(nil).Once()
			}

			assert.NoError(t, publisher.Publish(context.Background(), testCase.signal))
		})
	}
}

func TestKafkaSignalPublisher_Attach(t *testing.T) {
	hub := events.NewHub()
	writer := mocks.NewMessageWriter(t)
	publisher := storage.NewKafkaSignalPublisher(writer, "instance-a", nil)
	detach := publisher.Attach(hub)

	writer.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()
	hub.Publish(events.Signal{Kind: events.LoggedOut, Origin: "auth"})

	detach()
	hub.Publish(events.Signal{Kind: events.LoggedIn, Origin: "auth"})
}

type fakeReader struct {
	messages []kafka.Message
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.messages) == 0 {
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	msg := r.messages[0]
	r.messages = r.messages[1:]
	return msg, nil
}

func encode(t *testing.T, signal events.Signal) []byte {
	t.Helper()
	raw, err := json.Marshal(signal)
	require.NoError(t, err)
	return raw
}

func TestKafkaSignalConsumer_Process(t *testing.T) {
	tests := []struct {
		name       string
		message    kafka.Message
		wantOrigin string
	}{
		{
			name:       "signal from another instance",
			message:    kafka.Message{Key: []byte("instance-b"), Value: encode(t, events.Signal{Kind: events.CartChanged, Origin: "cart"})},
			wantOrigin: storage.RemoteOrigin + "instance-b",
		},
		{
			name:    "own signal is skipped",
			message: kafka.Message{Key: []byte("instance-a"), Value: encode(t, events.Signal{Kind: events.CartChanged, Origin: "cart"})},
		},
		{
			name:    "malformed payload",
			message: kafka.Message{Key: []byte("instance-b"), Value: []byte("{")},
		},
		{
			name:    "unbridged kind",
			message: kafka.Message{Key: []byte("instance-b"), Value: encode(t, events.Signal{Kind: events.LoginRequired})},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			hub := events.NewHub()
			var got []events.Signal
			hub.SubscribeAll(func(signal events.Signal) { got = append(got, signal) })
			consumer := storage.NewKafkaSignalConsumer(&fakeReader{}, hub, "instance-a", nil)

			consumer.Process(testCase.message)

			if testCase.wantOrigin == "" {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, 1)
			assert.Equal(t, testCase.wantOrigin, got[0].Origin)
		})
	}
}

func TestKafkaSignalConsumer_StartStopsOnCancel(t *testing.T) {
	hub := events.NewHub()
	received := make(chan events.Signal, 1)
	hub.Subscribe(events.OrderPlaced, func(signal events.Signal) { received <- signal })

	reader := &fakeReader{messages: []kafka.Message{
		{Key: []byte("instance-b"), Value: encode(t, events.Signal{Kind: events.OrderPlaced, OrderID: 42})},
	}}
	consumer := storage.NewKafkaSignalConsumer(reader, hub, "instance-a", nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		consumer.Start(ctx)
		close(done)
	}()

	select {
	case signal := <-received:
		assert.Equal(t, 42, signal.OrderID)
	case <-time.After(2 * time.Second):
		t.Fatal("signal was not replayed")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop")
	}
}
