package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDispatcherInvokesSubscribedHandlers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var seen []Event
	dispatcher.Subscribe(EventSessionIssued, func(_ context.Context, e Event) error {
		seen = append(seen, e)
		return nil
	})

	event := NewEvent(EventSessionIssued, Fields{Email: "alice@example.com"})
	require.NoError(t, dispatcher.Publish(context.Background(), event))
	require.Len(t, seen, 1)
	require.Equal(t, event.ID, seen[0].ID)
	require.NotEmpty(t, seen[0].ID)
}

func TestDispatcherIgnoresUnsubscribedTypes(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	called := false
	dispatcher.Subscribe(EventSessionIssued, func(context.Context, Event) error {
		called = true
		return nil
	})

	require.NoError(t, dispatcher.Publish(context.Background(),
		NewEvent(EventAuthorizationDenied, Fields{})))
	require.False(t, called)
}

func TestDispatcherContinuesPastHandlerErrors(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	calls := 0
	dispatcher.Subscribe(EventCallbackRejected, func(context.Context, Event) error {
		calls++
		return errors.New("sink failed")
	})
	dispatcher.Subscribe(EventCallbackRejected, func(context.Context, Event) error {
		calls++
		return nil
	})

	err := dispatcher.Publish(context.Background(), NewEvent(EventCallbackRejected, Fields{}))
	require.Error(t, err)
	require.Equal(t, 2, calls)
}
