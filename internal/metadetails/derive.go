package metadetails

import (
	"github.com/stremio-core-go/runtime/internal/model"
	"github.com/stremio-core-go/runtime/internal/runtime"
)

// applySelectedOverride may rewrite selected.stream_path when at most one
// video exists (using the meta's own id) or a default_video_id is declared,
// using the first Ready or Loading meta result encountered (§4.7 step 2).
func (m *Model) applySelectedOverride() runtime.Effects {
	if m.State.Selected == nil {
		return runtime.Unchanged()
	}
	metaPath := m.State.Selected.MetaPath

	var meta *model.MetaItem
	found := false
	for _, entry := range m.State.MetaItems {
		if entry.Content.IsReady() {
			v, _ := entry.Content.Value()
			meta = &v
			found = true
			break
		}
		if entry.Content.IsLoading() {
			found = true
			break
		}
	}
	if !found || meta == nil {
		return runtime.Unchanged()
	}

	var videoID string
	switch {
	case meta.Preview.BehaviorHints.DefaultVideoID != nil:
		videoID = *meta.Preview.BehaviorHints.DefaultVideoID
	case len(meta.Videos) <= 1:
		videoID = meta.Preview.ID
	default:
		return runtime.Unchanged()
	}

	next := model.Selected{
		MetaPath: metaPath,
		StreamPath: &model.ResourcePath{
			Resource: "stream",
			Type:     metaPath.Type,
			ID:       videoID,
		},
	}
	if model.SelectedEqual(m.State.Selected, &next) {
		return runtime.Unchanged()
	}
	m.State.Selected = &next
	return runtime.Changed()
}

// deriveMetaStreams computes meta_streams from the first Ready meta item
// whose videos contain stream_path.id: inline streams if present, else a
// synthesized YouTube stream (§4.7 step 3).
func (m *Model) deriveMetaStreams() {
	if m.State.Selected == nil || m.State.Selected.StreamPath == nil {
		m.State.MetaStreams = nil
		return
	}
	streamPath := *m.State.Selected.StreamPath

	for _, entry := range m.State.MetaItems {
		if !entry.Content.IsReady() {
			continue
		}
		meta, _ := entry.Content.Value()
		for _, video := range meta.Videos {
			if video.ID != streamPath.ID {
				continue
			}
			var streams []model.StreamItem
			if len(video.Streams) > 0 {
				streams = video.Streams
			} else if yt, ok := model.YoutubeStream(video.ID); ok {
				streams = []model.StreamItem{yt}
			} else {
				m.State.MetaStreams = nil
				return
			}
			content := model.LoadableReady(streams)
			m.State.MetaStreams = []model.ResourceLoadable[[]model.StreamItem]{{
				Request: model.ResourceRequest{
					Base: entry.Request.Base,
					Path: model.ResourcePath{
						Resource: "stream",
						Type:     entry.Request.Path.Type,
						ID:       streamPath.ID,
						Extra:    entry.Request.Path.Extra,
					},
				},
				Content: &content,
			}}
			return
		}
	}
	m.State.MetaStreams = nil
}

// deriveSuggestedStream implements the binge-watching heuristic (§4.7 step
// 5): scan up to the last 31 videos in reverse for a saved StreamsBucket
// entry, then revalidate it against the current meta_streams/streams.
func (m *Model) deriveSuggestedStream() {
	m.State.SuggestedStream = nil
	if m.State.Selected == nil || m.State.Selected.StreamPath == nil {
		return
	}
	metaID := m.State.Selected.MetaPath.ID
	streamPathID := m.State.Selected.StreamPath.ID

	var videos []model.VideoItem
	for _, entry := range m.State.MetaItems {
		if entry.Content.IsReady() {
			meta, _ := entry.Content.Value()
			videos = meta.Videos
			break
		}
	}
	if videos == nil {
		return
	}

	currentIndex := -1
	for i, v := range videos {
		if v.ID == streamPathID {
			currentIndex = i
			break
		}
	}
	if currentIndex < 0 {
		return
	}
	start := currentIndex - suggestedStreamWindow
	if start < 0 {
		start = 0
	}

	var savedItem *model.StreamsItem
	for i := currentIndex; i >= start; i-- {
		key := model.StreamsItemKey{MetaID: metaID, VideoID: videos[i].ID}
		if item, ok := m.ctx.State.Streams.Items[key]; ok {
			saved := item
			savedItem = &saved
			break
		}
	}
	if savedItem == nil {
		return
	}

	all := append(append([]model.ResourceLoadable[[]model.StreamItem]{}, m.State.MetaStreams...), m.State.Streams...)
	for _, resource := range all {
		if resource.Request.Base != savedItem.StreamTransportURL {
			continue
		}
		if !resource.Content.IsReady() {
			continue
		}
		streams, _ := resource.Content.Value()
		for _, s := range streams {
			if s.Equal(savedItem.Stream) {
				stream := s
				m.State.SuggestedStream = &stream
				return
			}
		}
		for _, s := range streams {
			// Matches on equal binge_group, including the case where both
			// sides lack one (original_source/src/models/meta_details.rs's
			// Option<&str> == Option<&str> comparison; see DESIGN.md Open
			// Questions).
			if s.BehaviorHints.BingeGroup == savedItem.Stream.BehaviorHints.BingeGroup {
				stream := s
				m.State.SuggestedStream = &stream
				return
			}
		}
		return
	}
}

// deriveLibraryItem adopts the library's item for meta_path.id, overlaying
// the loaded meta preview's display fields, or synthesizes a transient item
// (§4.7 step 6).
func (m *Model) deriveLibraryItem() {
	if m.State.Selected == nil {
		m.State.LibraryItem = nil
		return
	}
	var meta *model.MetaItem
	for _, entry := range m.State.MetaItems {
		if entry.Content.IsReady() {
			v, _ := entry.Content.Value()
			meta = &v
			break
		}
	}

	if existing, ok := m.ctx.State.Library.Items[m.State.Selected.MetaPath.ID]; ok {
		item := existing
		if meta != nil {
			item = existing.OverlayPreview(meta.Preview)
		}
		m.State.LibraryItem = &item
		return
	}
	if meta != nil {
		item := model.LibraryItemFromPreview(meta.Preview, m.now())
		m.State.LibraryItem = &item
		return
	}
	m.State.LibraryItem = nil
}

// deriveWatched decodes library_item.state.watched against the loaded meta
// item's video ordering (§4.7 step 7).
func (m *Model) deriveWatched() {
	m.State.Watched = nil
	if m.State.LibraryItem == nil {
		return
	}
	var meta *model.MetaItem
	for _, entry := range m.State.MetaItems {
		if entry.Content.IsReady() {
			v, _ := entry.Content.Value()
			meta = &v
			break
		}
	}
	if meta == nil {
		return
	}
	videoIDs := make([]string, len(meta.Videos))
	for i, v := range meta.Videos {
		videoIDs[i] = v.ID
	}
	wbf := model.DecodeWatchedBitField(m.State.LibraryItem.State.Watched, videoIDs)
	m.State.Watched = &wbf
}
