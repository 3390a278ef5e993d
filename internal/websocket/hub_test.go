package seatws

import (
	"encoding/json"
	"testing"
	"time"
)

func startTestHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	go hub.Run()
	return hub
}

func subscribeClient(t *testing.T, hub *Hub, client *Client, scheduleID int64) {
	t.Helper()
	select {
	case hub.subscribe <- subscription{client: client, scheduleID: scheduleID}:
	case <-time.After(time.Second):
		t.Fatal("hub did not accept subscribe")
	}
}

func receiveUpdate(t *testing.T, client *Client) SeatUpdate {
	t.Helper()
	select {
	case payload, ok := <-client.send:
		if !ok {
			t.Fatal("send channel closed before update arrived")
		}
		var update SeatUpdate
		if err := json.Unmarshal(payload, &update); err != nil {
			t.Fatalf("unmarshal update: %v", err)
		}
		return update
	case <-time.After(time.Second):
		t.Fatal("no update delivered")
	}
	return SeatUpdate{}
}

func TestHubDeliversToSubscribers(t *testing.T) {
	hub := startTestHub(t)
	client := NewClient(hub, nil, "42")
	subscribeClient(t, hub, client, 7)

	hub.PublishSeatUpdate(7, 5, 2)

	update := receiveUpdate(t, client)
	if update.Type != "seat_update" {
		t.Errorf("expected type seat_update, got %q", update.Type)
	}
	if update.ScheduleID != "7" {
		t.Errorf("expected schedule id 7, got %q", update.ScheduleID)
	}
	if update.Available != 5 || update.AvailableDemo != 2 {
		t.Errorf("expected counts 5/2, got %d/%d", update.Available, update.AvailableDemo)
	}
}

func TestHubSkipsOtherSchedules(t *testing.T) {
	hub := startTestHub(t)
	client := NewClient(hub, nil, "42")
	subscribeClient(t, hub, client, 7)

	hub.PublishSeatUpdate(8, 3, 1)
	hub.PublishSeatUpdate(7, 5, 2)

	update := receiveUpdate(t, client)
	if update.ScheduleID != "7" {
		t.Errorf("expected only schedule 7, got %q", update.ScheduleID)
	}
}

func TestHubUnsubscribeStopsDelivery(t *testing.T) {
	hub := startTestHub(t)
	client := NewClient(hub, nil, "42")
	subscribeClient(t, hub, client, 7)

	select {
	case hub.unsubscribe <- subscription{client: client, scheduleID: 7}:
	case <-time.After(time.Second):
		t.Fatal("hub did not accept unsubscribe")
	}

	hub.PublishSeatUpdate(7, 5, 2)

	select {
	case payload := <-client.send:
		t.Fatalf("unexpected delivery after unsubscribe: %s", payload)
	case <-time.After(50 * time.Millisecond):
	}
}

// waitForDrop blocks until the hub closes the client's send channel. The
// test must not drain the channel first or the buffer never saturates.
func waitForDrop(t *testing.T, client *Client) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !client.isClosed() {
		if time.Now().After(deadline) {
			t.Fatal("client was never dropped")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubDropsSaturatedClient(t *testing.T) {
	hub := startTestHub(t)
	client := NewClient(hub, nil, "42")
	subscribeClient(t, hub, client, 7)

	// One more update than the send buffer holds forces the drop.
	for i := 0; i <= cap(client.send); i++ {
		hub.PublishSeatUpdate(7, i, 0)
	}

	waitForDrop(t, client)
	if got := len(client.send); got != cap(client.send) {
		t.Errorf("expected a full buffer of %d updates, got %d", cap(client.send), got)
	}
}

func TestHubIgnoresResubscribeAfterDrop(t *testing.T) {
	hub := startTestHub(t)
	stale := NewClient(hub, nil, "42")
	subscribeClient(t, hub, stale, 7)

	for i := 0; i <= cap(stale.send); i++ {
		hub.PublishSeatUpdate(7, i, 0)
	}
	waitForDrop(t, stale)

	// The connection's reader may still push subscribe frames after the
	// drop; the hub must not re-add the client or die delivering to it.
	subscribeClient(t, hub, stale, 7)

	fresh := NewClient(hub, nil, "43")
	subscribeClient(t, hub, fresh, 7)
	hub.PublishSeatUpdate(7, 4, 2)

	update := receiveUpdate(t, fresh)
	if update.Available != 4 || update.AvailableDemo != 2 {
		t.Errorf("expected counts 4/2, got %d/%d", update.Available, update.AvailableDemo)
	}
}
