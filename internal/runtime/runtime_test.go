package runtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestJoinConcatenatesFuturesAndOrsHasChanged(t *testing.T) {
	f1 := func() Msg { return NewEvent("a", nil) }
	f2 := func() Msg { return NewEvent("b", nil) }

	joined := Join(Effects{Futures: []Future{f1}}, Effects{Futures: []Future{f2}, HasChanged: true})
	require.Len(t, joined.Futures, 2)
	require.True(t, joined.HasChanged)

	none := Join(Unchanged(), Unchanged())
	require.False(t, none.HasChanged)
	require.Empty(t, none.Futures)
}

func TestWithUnchangedKeepsFuturesButClearsHasChanged(t *testing.T) {
	f := func() Msg { return NewEvent("a", nil) }
	e := WithUnchanged(Effects{Futures: []Future{f}, HasChanged: true})
	require.False(t, e.HasChanged)
	require.Len(t, e.Futures, 1)
}

// recordingModel counts how many times Update is called and echoes back a
// follow-up internal message once per action, used to verify the dispatch
// loop actually drains a future's result back through Update.
type recordingModel struct {
	updates chan Msg
}

func (m *recordingModel) Update(msg Msg) Effects {
	m.updates <- msg
	if msg.Name == "Kick" {
		return Effects{HasChanged: true, Futures: []Future{func() Msg {
			return NewInternal("KickResult", nil)
		}}}
	}
	return Unchanged()
}

func TestRuntimeDrainsFutureResultBackIntoUpdate(t *testing.T) {
	model := &recordingModel{updates: make(chan Msg, 4)}
	rt := New(model, nil)
	go rt.Run()
	defer rt.Stop()

	rt.Dispatch(NewAction("Kick", nil))

	var names []string
	for i := 0; i < 2; i++ {
		select {
		case msg := <-model.updates:
			names = append(names, msg.Name)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for dispatch loop to process messages")
		}
	}
	require.ElementsMatch(t, []string{"Kick", "KickResult"}, names)
}

func TestRuntimeNotifiesOnlyOnHasChanged(t *testing.T) {
	model := &recordingModel{updates: make(chan Msg, 4)}
	rt := New(model, nil)
	go rt.Run()
	defer rt.Stop()

	rt.Dispatch(NewAction("NoOp", nil))
	<-model.updates

	select {
	case <-rt.Notifications():
		t.Fatal("unexpected notification for a HasChanged=false update")
	case <-time.After(50 * time.Millisecond):
	}

	rt.Dispatch(NewAction("Kick", nil))
	<-model.updates
	<-model.updates

	select {
	case <-rt.Notifications():
	case <-time.After(time.Second):
		t.Fatal("expected a notification after a HasChanged=true update")
	}
}
