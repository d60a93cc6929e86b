package bus

import (
	"testing"

	"go.uber.org/zap"

	"serialterm/internal/model"
)

func TestPublishDeliversInSubscriptionOrder(t *testing.T) {
	b := New(zap.NewNop())

	var order []int
	b.Subscribe(func(model.Event) { order = append(order, 1) })
	b.Subscribe(func(model.Event) { order = append(order, 2) })
	b.Subscribe(func(model.Event) { order = append(order, 3) })

	b.Publish(model.NewStateChanged(model.StateClosed, model.StateConnecting))

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("delivery order = %v, want [1 2 3]", order)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New(zap.NewNop())

	var count int
	sub := b.Subscribe(func(model.Event) { count++ })

	b.Publish(model.NewStateChanged(model.StateClosed, model.StateConnecting))
	sub.Unsubscribe()
	b.Publish(model.NewStateChanged(model.StateConnecting, model.StateOpen))

	if count != 1 {
		t.Errorf("handler invoked %d times, want 1", count)
	}

	// A second Unsubscribe must be harmless.
	sub.Unsubscribe()
}

func TestLateSubscriberReceivesNothingRetroactively(t *testing.T) {
	b := New(zap.NewNop())

	for i := 0; i < 5; i++ {
		b.Publish(model.NewStateChanged(model.StateClosed, model.StateConnecting))
	}

	var got []model.Event
	b.Subscribe(func(ev model.Event) { got = append(got, ev) })

	b.Publish(model.NewStateChanged(model.StateConnecting, model.StateOpen))

	if len(got) != 1 {
		t.Fatalf("late subscriber received %d events, want 1", len(got))
	}
	if got[0].NewState != model.StateOpen {
		t.Errorf("late subscriber received %v, want the post-subscription event", got[0])
	}
}

func TestSubscriberAddedDuringDeliveryMissesCurrentEvent(t *testing.T) {
	b := New(zap.NewNop())

	var lateCount int
	b.Subscribe(func(model.Event) {
		b.Subscribe(func(model.Event) { lateCount++ })
	})

	b.Publish(model.NewStateChanged(model.StateClosed, model.StateConnecting))
	if lateCount != 0 {
		t.Errorf("subscriber added during delivery received the in-flight event")
	}

	b.Publish(model.NewStateChanged(model.StateConnecting, model.StateOpen))
	if lateCount != 1 {
		t.Errorf("subscriber added during delivery received %d later events, want 1", lateCount)
	}
}

func TestPanickingHandlerIsIsolated(t *testing.T) {
	b := New(zap.NewNop())

	var after int
	b.Subscribe(func(model.Event) { panic("boom") })
	b.Subscribe(func(model.Event) { after++ })

	b.Publish(model.NewStateChanged(model.StateClosed, model.StateConnecting))

	if after != 1 {
		t.Errorf("subscriber after the panicking one invoked %d times, want 1", after)
	}
}

func TestFilteredSubscription(t *testing.T) {
	b := New(zap.NewNop())

	var types []model.EventType
	b.SubscribeTypes(func(ev model.Event) {
		types = append(types, ev.Type)
	}, model.EventDataReceived, model.EventDataSent)

	frame := &model.Frame{Direction: model.DirectionIn}
	b.Publish(model.NewStateChanged(model.StateClosed, model.StateConnecting))
	b.Publish(model.NewDataReceived(frame))
	b.Publish(model.NewIoFault(model.FaultDeviceLost, nil))
	b.Publish(model.NewDataSent(&model.Frame{Direction: model.DirectionOut}))

	if len(types) != 2 || types[0] != model.EventDataReceived || types[1] != model.EventDataSent {
		t.Errorf("filtered subscriber saw %v, want data events only", types)
	}
}
