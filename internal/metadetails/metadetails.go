// Package metadetails implements the MetaDetails model (§4.7): meta/stream
// aggregation across add-ons, the selected_override auto-advance rule, the
// 31-video suggested-stream binge heuristic, and the watched bitfield.
// Grounded on original_source/models/meta_details.rs, reworked from Rust's
// free update functions closing over &mut fields into methods on a single
// State, and from the ctx package's runtime.Model wiring convention.
package metadetails

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/stremio-core-go/runtime/internal/aggr"
	"github.com/stremio-core-go/runtime/internal/api"
	"github.com/stremio-core-go/runtime/internal/ctx"
	"github.com/stremio-core-go/runtime/internal/env"
	"github.com/stremio-core-go/runtime/internal/loadable"
	"github.com/stremio-core-go/runtime/internal/metrics"
	"github.com/stremio-core-go/runtime/internal/model"
	"github.com/stremio-core-go/runtime/internal/runtime"
)

// suggestedStreamWindow is how many preceding videos are scanned for a
// binge-watching candidate stream (§4.7 step 5: "last 31 videos").
const suggestedStreamWindow = 30

// State is everything MetaDetails owns (§4.7).
type State struct {
	Selected       *model.Selected
	MetaItems      []model.ResourceLoadable[model.MetaItem]
	MetaStreams    []model.ResourceLoadable[[]model.StreamItem]
	Streams        []model.ResourceLoadable[[]model.StreamItem]
	SuggestedStream *model.StreamItem
	LibraryItem    *model.LibraryItem
	Watched        *model.WatchedBitField
}

// Model wires State to the Ctx model it reads Profile/Library/Streams from,
// and to the Environment it fetches through (§4.7).
type Model struct {
	State State

	ctx    *ctx.Model
	env    env.Environment
	logger *zap.Logger
}

// New constructs an empty MetaDetails Model bound to a Ctx model.
func New(ctxModel *ctx.Model, environment env.Environment, logger *zap.Logger) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Model{ctx: ctxModel, env: environment, logger: logger}
}

var _ runtime.Model = (*Model)(nil)

// Update implements runtime.Model (§4.2 step 1, §4.7).
func (m *Model) Update(msg runtime.Msg) runtime.Effects {
	switch msg.Name {
	case "Load":
		return m.load(msg.Payload.(model.Selected))
	case "Unload":
		return m.unload()
	case "MarkAsWatched":
		return m.markAsWatched(msg.Payload.(bool))
	case "MarkVideoAsWatched":
		p := msg.Payload.(MarkVideoAsWatchedPayload)
		return m.markVideoAsWatched(p.Video, p.Watched)
	case "ResourceRequestResult":
		return m.resourceRequestResult(msg.Payload.(ResourceRequestResultPayload))
	case "LibraryChanged":
		return m.onLibraryOrProfileChanged()
	case "ProfileChanged":
		return m.onProfileChanged()
	default:
		return runtime.Unchanged()
	}
}

// MarkVideoAsWatchedPayload carries Action::MetaDetails(MarkVideoAsWatched)
// (§4.7).
type MarkVideoAsWatchedPayload struct {
	Video   model.VideoItem
	Watched bool
}

// ResourceRequestResultPayload is Internal::ResourceRequestResult(request,
// result), routed here when request.path.resource is "meta" or "stream"
// (§4.5, §4.7).
type ResourceRequestResultPayload struct {
	Request model.ResourceRequest
	Meta    *model.MetaItem
	Streams []model.StreamItem
	Err     error
}

func (m *Model) now() time.Time { return m.env.Now() }

// load handles Action::Load(MetaDetails(selected)) (§4.7 step 1).
func (m *Model) load(selected model.Selected) runtime.Effects {
	m.State.Selected = &selected

	metaEffects := m.requestMetaItems()
	overrideEffects := m.applySelectedOverride()
	m.deriveMetaStreams()
	streamEffects := m.requestStreams()
	m.deriveSuggestedStream()
	m.deriveLibraryItem()
	m.deriveWatched()
	syncEffects := m.libraryItemSync()

	return runtime.Join(metaEffects, overrideEffects, streamEffects, syncEffects, runtime.Changed())
}

// unload clears selection and every per-screen vector (§4.7 "Unload").
func (m *Model) unload() runtime.Effects {
	m.State = State{}
	return runtime.Changed()
}

// libraryItemSync fires a synthetic, already-resolved sync plan for this
// screen's single library item so Ctx pulls it without waiting for a
// full SyncLibraryWithAPI pass (§4.7 step 1).
func (m *Model) libraryItemSync() runtime.Effects {
	if m.State.LibraryItem == nil {
		return runtime.Unchanged()
	}
	authKey := m.ctx.State.Profile.AuthKey()
	if authKey == nil {
		return runtime.Unchanged()
	}
	itemID := m.State.LibraryItem.ID
	key := *authKey
	future := func() runtime.Msg {
		return runtime.NewInternal("LibrarySyncPlanResult", ctx.LibrarySyncPlanResultPayload{
			Request: api.DatastoreRequest{AuthKey: key, Collection: api.LibraryCollectionName, Command: api.DatastoreMetaCommand()},
			PullIDs: []string{itemID},
		})
	}
	return runtime.WithUnchanged(runtime.Effects{Futures: []runtime.Future{future}})
}

func (m *Model) markAsWatched(watched bool) runtime.Effects {
	if m.State.LibraryItem == nil {
		return runtime.Unchanged()
	}
	item := *m.State.LibraryItem
	if watched {
		item.State.TimesWatched++
	} else {
		item.State.TimesWatched = 0
	}
	now := m.now()
	item.State.LastWatched = &now
	return runtime.Effects{Futures: []runtime.Future{func() runtime.Msg {
		return runtime.NewInternal("UpdateLibraryItem", item)
	}}}
}

func (m *Model) markVideoAsWatched(video model.VideoItem, watched bool) runtime.Effects {
	if m.State.LibraryItem == nil || m.State.Watched == nil {
		return runtime.Unchanged()
	}
	wbf := *m.State.Watched
	wbf.SetVideo(video.ID, watched)
	encoded := wbf.Encode()

	item := *m.State.LibraryItem
	item.State.Watched = &encoded
	if watched {
		if item.State.LastWatched == nil || item.State.LastWatched.Before(video.Released) {
			released := video.Released
			item.State.LastWatched = &released
		}
	}
	return runtime.Effects{Futures: []runtime.Future{func() runtime.Msg {
		return runtime.NewInternal("UpdateLibraryItem", item)
	}}}
}

func (m *Model) onLibraryOrProfileChanged() runtime.Effects {
	m.deriveLibraryItem()
	m.deriveWatched()
	return runtime.Changed()
}

func (m *Model) onProfileChanged() runtime.Effects {
	metaEffects := m.requestMetaItems()
	m.deriveMetaStreams()
	streamEffects := m.requestStreams()
	m.deriveSuggestedStream()
	m.deriveLibraryItem()
	m.deriveWatched()
	return runtime.Join(metaEffects, streamEffects, runtime.Changed())
}

// requestMetaItems launches AllOfResource(meta_path) across installed
// add-ons, reusing already-loaded entries (force=false) (§4.7 step 1).
func (m *Model) requestMetaItems() runtime.Effects {
	if m.State.Selected == nil {
		m.State.MetaItems = nil
		return runtime.Unchanged()
	}
	planned := aggr.AllOfResource(m.ctx.State.Profile.Addons, m.State.Selected.MetaPath)
	requests := make([]model.ResourceRequest, len(planned))
	for i, p := range planned {
		requests[i] = p.Request
	}
	updated, toFetch := loadable.Reconcile(m.State.MetaItems, requests, false)
	m.State.MetaItems = updated
	return m.dispatchFetches("meta", toFetch)
}

// requestStreams launches AllOfResource(stream_path) across installed
// add-ons when a stream is selected (§4.7 step 4).
func (m *Model) requestStreams() runtime.Effects {
	if m.State.Selected == nil || m.State.Selected.StreamPath == nil {
		m.State.Streams = nil
		return runtime.Unchanged()
	}
	planned := aggr.AllOfResource(m.ctx.State.Profile.Addons, *m.State.Selected.StreamPath)
	requests := make([]model.ResourceRequest, len(planned))
	for i, p := range planned {
		requests[i] = p.Request
	}
	updated, toFetch := loadable.Reconcile(m.State.Streams, requests, false)
	m.State.Streams = updated
	return m.dispatchFetches("stream", toFetch)
}

func (m *Model) dispatchFetches(resource string, requests []model.ResourceRequest) runtime.Effects {
	if len(requests) == 0 {
		return runtime.Unchanged()
	}
	metrics.ResourceRequestsDispatched(resource, len(requests))
	futures := make([]runtime.Future, len(requests))
	for i, req := range requests {
		req := req
		futures[i] = func() runtime.Msg {
			transport := m.env.AddonTransport(req.Base)
			ctxTimeout, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			start := m.env.Now()
			resp, err := transport.Resource(ctxTimeout, req.Path)
			metrics.AddonFetchLatency(resource, err == nil, m.env.Now().Sub(start))
			if err != nil {
				return runtime.NewInternal("ResourceRequestResult", ResourceRequestResultPayload{Request: req, Err: err})
			}
			switch resource {
			case "meta":
				return runtime.NewInternal("ResourceRequestResult", ResourceRequestResultPayload{Request: req, Meta: resp.Meta})
			case "stream":
				streams, vecErr := loadable.VectorResult(resp.Streams, nil)
				return runtime.NewInternal("ResourceRequestResult", ResourceRequestResultPayload{Request: req, Streams: streams, Err: vecErr})
			default:
				return runtime.NewInternal("ResourceRequestResult", ResourceRequestResultPayload{Request: req})
			}
		}
	}
	return runtime.Effects{Futures: futures}
}

func (m *Model) resourceRequestResult(p ResourceRequestResultPayload) runtime.Effects {
	switch p.Request.Path.Resource {
	case "meta":
		var value model.MetaItem
		if p.Meta != nil {
			value = *p.Meta
		}
		updated, changed := loadable.ApplyResult(m.State.MetaItems, p.Request, value, p.Err)
		m.State.MetaItems = updated
		overrideEffects := m.applySelectedOverride()
		var streamEffects runtime.Effects
		if overrideEffects.HasChanged {
			streamEffects = m.requestStreams()
		}
		m.deriveMetaStreams()
		m.deriveSuggestedStream()
		m.deriveLibraryItem()
		m.deriveWatched()
		if !changed && !overrideEffects.HasChanged {
			return runtime.WithUnchanged(runtime.Join(overrideEffects, streamEffects))
		}
		return runtime.Join(overrideEffects, streamEffects, runtime.Changed())
	case "stream":
		updated, changed := loadable.ApplyResult(m.State.Streams, p.Request, p.Streams, p.Err)
		m.State.Streams = updated
		m.deriveSuggestedStream()
		if changed {
			return runtime.Changed()
		}
		return runtime.Unchanged()
	default:
		return runtime.Unchanged()
	}
}
