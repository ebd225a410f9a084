package ctx

import (
	"context"

	"github.com/stremio-core-go/runtime/internal/api"
	"github.com/stremio-core-go/runtime/internal/metrics"
	"github.com/stremio-core-go/runtime/internal/model"
	"github.com/stremio-core-go/runtime/internal/runtime"
)

// LibrarySyncPlanResultPayload is Internal::LibrarySyncPlanResult(request,
// result) (§4.6.1 step 3-4).
type LibrarySyncPlanResultPayload struct {
	Request api.DatastoreRequest
	PullIDs []string
	PushIDs []string
	Err     error
}

// LibraryPullResultPayload is Internal::LibraryPullResult(request, result)
// (§4.6.1 step 6).
type LibraryPullResultPayload struct {
	Request api.DatastoreRequest
	Items   []model.LibraryItem
	Err     error
}

// syncLibraryWithAPI starts the library sync protocol (§4.6.1): triggered by
// ActionCtx::SyncLibraryWithAPI, requires an authenticated user.
func (m *Model) syncLibraryWithAPI() runtime.Effects {
	authKey := m.State.Profile.AuthKey()
	if authKey == nil {
		return runtime.Effects{Futures: []runtime.Future{func() runtime.Msg {
			return runtime.NewEvent("Error", model.WrapCtxError(model.ErrUserNotLoggedIn))
		}}}
	}
	key := *authKey

	localMtimes := make(map[string]int64, len(m.State.Library.Items))
	for id, item := range m.State.Library.Items {
		if item.ShouldSync() {
			localMtimes[id] = item.Mtime.UnixNano()
		}
	}

	request := api.DatastoreRequest{AuthKey: key, Collection: api.LibraryCollectionName, Command: api.DatastoreMetaCommand()}
	future := func() runtime.Msg {
		remote, err := m.api.DatastoreMeta(context.Background(), request)
		if err != nil {
			return runtime.NewInternal("LibrarySyncPlanResult", LibrarySyncPlanResultPayload{Request: request, Err: err})
		}
		remoteMtimes := make(map[string]int64, len(remote))
		for _, r := range remote {
			remoteMtimes[r.ID] = r.Mtime.UnixNano()
		}

		var pullIDs, pushIDs []string
		for id, remoteMtime := range remoteMtimes {
			if localMtime, ok := localMtimes[id]; !ok || localMtime < remoteMtime {
				pullIDs = append(pullIDs, id)
			}
		}
		for id, localMtime := range localMtimes {
			if remoteMtime, ok := remoteMtimes[id]; !ok || remoteMtime < localMtime {
				pushIDs = append(pushIDs, id)
			}
		}
		return runtime.NewInternal("LibrarySyncPlanResult", LibrarySyncPlanResultPayload{Request: request, PullIDs: pullIDs, PushIDs: pushIDs})
	}
	return runtime.Effects{Futures: []runtime.Future{future}}
}

// librarySyncPlanResult only proceeds when the request's auth key matches
// the currently authenticated user (§4.6.1 step 3-6).
func (m *Model) librarySyncPlanResult(p LibrarySyncPlanResultPayload) runtime.Effects {
	authKey := m.State.Profile.AuthKey()
	if authKey == nil || *authKey != p.Request.AuthKey {
		return runtime.Unchanged()
	}
	if p.Err != nil {
		return runtime.Effects{Futures: []runtime.Future{func() runtime.Msg {
			return runtime.NewEvent("Error", model.WrapCtxError(p.Err))
		}}}
	}

	metrics.LibrarySyncPlanned("pull", len(p.PullIDs))
	metrics.LibrarySyncPlanned("push", len(p.PushIDs))

	planEvent := runtime.Effects{Futures: []runtime.Future{func() runtime.Msg {
		return runtime.NewEvent("LibrarySyncWithAPIPlanned", p)
	}}}

	var pushItems []model.LibraryItem
	for _, id := range p.PushIDs {
		if item, ok := m.State.Library.Items[id]; ok {
			pushItems = append(pushItems, item)
		}
	}
	pushEffects := runtime.Unchanged()
	if len(pushItems) > 0 {
		key := p.Request.AuthKey
		pushEffects = runtime.Effects{Futures: []runtime.Future{func() runtime.Msg {
			return m.pushItemsToAPI(pushItems, key)
		}}}
	}

	pullEffects := runtime.Unchanged()
	if len(p.PullIDs) > 0 {
		pullRequest := api.DatastoreRequest{
			AuthKey:    p.Request.AuthKey,
			Collection: api.LibraryCollectionName,
			Command:    api.DatastoreGetCommand(p.PullIDs, false),
		}
		pullEffects = runtime.Effects{Futures: []runtime.Future{func() runtime.Msg {
			items, err := m.api.DatastoreGet(context.Background(), pullRequest)
			if err != nil {
				return runtime.NewInternal("LibraryPullResult", LibraryPullResultPayload{Request: pullRequest, Err: err})
			}
			return runtime.NewInternal("LibraryPullResult", LibraryPullResultPayload{Request: pullRequest, Items: items})
		}}}
	}

	return runtime.Join(planEvent, pushEffects, pullEffects)
}

// libraryPullResult merges pulled items into the bucket and persists them
// (§4.6.1 step 6).
func (m *Model) libraryPullResult(p LibraryPullResultPayload) runtime.Effects {
	authKey := m.State.Profile.AuthKey()
	if authKey == nil || *authKey != p.Request.AuthKey {
		return runtime.Unchanged()
	}
	if p.Err != nil {
		return runtime.Effects{Futures: []runtime.Future{func() runtime.Msg {
			return runtime.NewEvent("Error", model.WrapCtxError(p.Err))
		}}}
	}

	ids := pulledIDs(p)
	pulledEvent := runtime.Effects{Futures: []runtime.Future{func() runtime.Msg {
		return runtime.NewEvent("LibraryItemsPulledFromAPI", ids)
	}}}
	pushToStorage := runtime.Effects{Futures: []runtime.Future{func() runtime.Msg {
		return m.updateAndPushItemsToStorage(p.Items)
	}}}
	return runtime.Join(pulledEvent, pushToStorage, runtime.Effects{
		Futures: []runtime.Future{func() runtime.Msg {
			return runtime.NewInternal("LibraryChanged", true)
		}},
	})
}

func pulledIDs(p LibraryPullResultPayload) []string {
	ids := make([]string, len(p.Items))
	for i, it := range p.Items {
		ids[i] = it.ID
	}
	return ids
}
