package metadetails

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stremio-core-go/runtime/internal/model"
	"github.com/stremio-core-go/runtime/internal/runtime"
)

func TestLoadSetsSelectedAndAlwaysReportsChanged(t *testing.T) {
	m := newTestModel()
	selected := model.Selected{MetaPath: model.ResourcePathWithoutExtra("meta", "movie", "tt1")}

	effects := m.Update(runtime.NewAction("Load", selected))
	require.True(t, effects.HasChanged)
	require.NotNil(t, m.State.Selected)
	require.Equal(t, "tt1", m.State.Selected.MetaPath.ID)
}

func TestUnloadClearsState(t *testing.T) {
	m := newTestModel()
	m.State.Selected = &model.Selected{MetaPath: model.ResourcePathWithoutExtra("meta", "movie", "tt1")}
	m.State.LibraryItem = &model.LibraryItem{ID: "tt1"}

	effects := m.Update(runtime.NewAction("Unload", nil))
	require.True(t, effects.HasChanged)
	require.Nil(t, m.State.Selected)
	require.Nil(t, m.State.LibraryItem)
}

func TestMarkAsWatchedNoOpWithoutLibraryItem(t *testing.T) {
	m := newTestModel()
	effects := m.Update(runtime.NewAction("MarkAsWatched", true))
	require.False(t, effects.HasChanged)
	require.Empty(t, effects.Futures)
}

func TestMarkAsWatchedIncrementsTimesWatched(t *testing.T) {
	m := newTestModel()
	m.State.LibraryItem = &model.LibraryItem{ID: "tt1", State: model.LibraryItemState{TimesWatched: 1}}

	effects := m.Update(runtime.NewAction("MarkAsWatched", true))
	require.Len(t, effects.Futures, 1)
	msg := effects.Futures[0]()
	require.Equal(t, "UpdateLibraryItem", msg.Name)
	item := msg.Payload.(model.LibraryItem)
	require.Equal(t, uint32(2), item.State.TimesWatched)
	require.NotNil(t, item.State.LastWatched)
}

func TestMarkAsWatchedFalseResetsTimesWatched(t *testing.T) {
	m := newTestModel()
	m.State.LibraryItem = &model.LibraryItem{ID: "tt1", State: model.LibraryItemState{TimesWatched: 3}}

	effects := m.Update(runtime.NewAction("MarkAsWatched", false))
	msg := effects.Futures[0]()
	item := msg.Payload.(model.LibraryItem)
	require.Equal(t, uint32(0), item.State.TimesWatched)
}

func TestMarkVideoAsWatchedNoOpWithoutWatchedBitField(t *testing.T) {
	m := newTestModel()
	m.State.LibraryItem = &model.LibraryItem{ID: "tt1"}
	effects := m.Update(runtime.NewAction("MarkVideoAsWatched", MarkVideoAsWatchedPayload{Video: model.VideoItem{ID: "tt1:1:1"}, Watched: true}))
	require.False(t, effects.HasChanged)
	require.Empty(t, effects.Futures)
}

func TestMarkVideoAsWatchedEncodesAndBumpsLastWatched(t *testing.T) {
	m := newTestModel()
	wbf := model.NewWatchedBitField([]string{"tt1:1:1", "tt1:1:2"})
	m.State.Watched = &wbf
	m.State.LibraryItem = &model.LibraryItem{ID: "tt1"}
	released := time.Now().Add(-time.Hour)

	effects := m.Update(runtime.NewAction("MarkVideoAsWatched", MarkVideoAsWatchedPayload{
		Video:   model.VideoItem{ID: "tt1:1:2", Released: released},
		Watched: true,
	}))
	require.Len(t, effects.Futures, 1)
	msg := effects.Futures[0]()
	item := msg.Payload.(model.LibraryItem)
	require.NotNil(t, item.State.Watched)
	require.NotNil(t, item.State.LastWatched)
	require.Equal(t, released.Unix(), item.State.LastWatched.Unix())
}

func TestResourceRequestResultMetaAppliesAndDerivesDownstream(t *testing.T) {
	m := newTestModel()
	req := model.ResourceRequest{Base: "https://addon.example.com", Path: model.ResourcePathWithoutExtra("meta", "movie", "tt1")}
	m.State.Selected = &model.Selected{MetaPath: req.Path}
	pending := model.LoadableLoading[model.MetaItem]()
	m.State.MetaItems = []model.ResourceLoadable[model.MetaItem]{{Request: req, Content: &pending}}

	meta := model.MetaItem{Preview: model.MetaPreviewItem{ID: "tt1", Name: "A Movie"}}
	effects := m.Update(runtime.NewInternal("ResourceRequestResult", ResourceRequestResultPayload{Request: req, Meta: &meta}))
	require.True(t, effects.HasChanged)

	value, ok := m.State.MetaItems[0].Content.Value()
	require.True(t, ok)
	require.Equal(t, "A Movie", value.Preview.Name)
	require.NotNil(t, m.State.LibraryItem)
}

func TestResourceRequestResultStreamStaleResultIsDiscarded(t *testing.T) {
	m := newTestModel()
	req := model.ResourceRequest{Base: "https://addon.example.com", Path: model.ResourcePathWithoutExtra("stream", "movie", "tt1")}
	ready := model.LoadableReady([]model.StreamItem{{URL: "https://example.com/a.mp4"}})
	m.State.Streams = []model.ResourceLoadable[[]model.StreamItem]{{Request: req, Content: &ready}}

	effects := m.Update(runtime.NewInternal("ResourceRequestResult", ResourceRequestResultPayload{
		Request: req,
		Streams: []model.StreamItem{{URL: "https://example.com/late.mp4"}},
	}))
	require.False(t, effects.HasChanged)

	value, _ := m.State.Streams[0].Content.Value()
	require.Equal(t, "https://example.com/a.mp4", value[0].URL)
}
