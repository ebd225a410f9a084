package ctx

import (
	"context"

	"github.com/stremio-core-go/runtime/internal/api"
	"github.com/stremio-core-go/runtime/internal/model"
	"github.com/stremio-core-go/runtime/internal/runtime"
)

// addToLibrary upserts a LibraryItem preserving prior state and ctime
// (§4.6).
func (m *Model) addToLibrary(preview model.MetaPreviewItem) runtime.Effects {
	now := m.now()
	item := model.LibraryItem{
		ID:          preview.ID,
		Type:        preview.Type,
		Name:        preview.Name,
		Poster:      preview.Poster,
		PosterShape: preview.PosterShape,
		BehaviorHints: model.LibraryItemBehaviorHints{
			DefaultVideoID: preview.BehaviorHints.DefaultVideoID,
		},
		Mtime: now,
		Ctime: &now,
	}
	if prior, ok := m.State.Library.Items[preview.ID]; ok {
		item.State = prior.State
		if prior.Ctime != nil {
			item.Ctime = prior.Ctime
		}
	}
	return runtime.Join(
		runtime.WithUnchanged(m.updateLibraryItem(item)),
		runtime.Effects{Futures: []runtime.Future{func() runtime.Msg {
			return runtime.NewEvent("LibraryItemAdded", preview.ID)
		}}},
	)
}

// removeFromLibrary sets removed=true on an existing item (§4.6).
func (m *Model) removeFromLibrary(id string) runtime.Effects {
	item, ok := m.State.Library.Items[id]
	if !ok {
		return runtime.Effects{Futures: []runtime.Future{func() runtime.Msg {
			return runtime.NewEvent("Error", model.WrapCtxError(model.ErrLibraryItemNotFound))
		}}}
	}
	item.Removed = true
	return runtime.Join(
		runtime.WithUnchanged(m.updateLibraryItem(item)),
		runtime.Effects{Futures: []runtime.Future{func() runtime.Msg {
			return runtime.NewEvent("LibraryItemRemoved", id)
		}}},
	)
}

// rewindLibraryItem resets an item's playback position (§4.6).
func (m *Model) rewindLibraryItem(id string) runtime.Effects {
	item, ok := m.State.Library.Items[id]
	if !ok {
		return runtime.Effects{Futures: []runtime.Future{func() runtime.Msg {
			return runtime.NewEvent("Error", model.WrapCtxError(model.ErrLibraryItemNotFound))
		}}}
	}
	item.State.TimeOffset = 0
	return runtime.Join(
		runtime.WithUnchanged(m.updateLibraryItem(item)),
		runtime.Effects{Futures: []runtime.Future{func() runtime.Msg {
			return runtime.NewEvent("LibraryItemRewinded", id)
		}}},
	)
}

// updateLibraryItem is the sole writer to library.items (§4.6.2): bumps
// mtime, pushes to storage, pushes to API when authenticated, and emits
// LibraryChanged(true).
func (m *Model) updateLibraryItem(item model.LibraryItem) runtime.Effects {
	item.Mtime = m.now()

	pushToAPI := runtime.Unchanged()
	if authKey := m.State.Profile.AuthKey(); authKey != nil {
		key := *authKey
		copied := item
		pushToAPI = runtime.Effects{Futures: []runtime.Future{func() runtime.Msg {
			return m.pushItemsToAPI([]model.LibraryItem{copied}, key)
		}}}
	}

	pushToStorage := runtime.Effects{Futures: []runtime.Future{func() runtime.Msg {
		return m.updateAndPushItemsToStorage([]model.LibraryItem{item})
	}}}

	return runtime.Join(pushToAPI, pushToStorage, runtime.Effects{
		Futures: []runtime.Future{func() runtime.Msg {
			return runtime.NewInternal("LibraryChanged", true)
		}},
	})
}

// libraryChanged reacts to Internal::LibraryChanged(persisted): when not yet
// persisted, push the whole bucket to storage (§4.6.2).
func (m *Model) libraryChanged(persisted bool) runtime.Effects {
	if persisted {
		return runtime.Changed()
	}
	future := func() runtime.Msg {
		return m.pushLibraryToStorage()
	}
	return runtime.Join(runtime.Changed(), runtime.Effects{Futures: []runtime.Future{future}})
}

// updateAndPushItemsToStorage merges items into the bucket and rewrites the
// recent/other storage keys, skipping the "other" write when nothing
// outside the recent split moved (§4.6 "Storage", §4.6.2).
func (m *Model) updateAndPushItemsToStorage(items []model.LibraryItem) runtime.Msg {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	areInRecent := m.State.Library.AreIDsInRecent(ids, LibraryRecentCount)
	m.State.Library.MergeItems(items)

	ctx := context.Background()
	if len(m.State.Library.Items) <= LibraryRecentCount {
		if err := m.writeLibraryKey(ctx, LibraryRecentStorageKey, m.State.Library); err != nil {
			return runtime.NewEvent("Error", model.WrapCtxError(err))
		}
		if err := m.env.SetStorage(ctx, LibraryStorageKey, nil); err != nil {
			return runtime.NewEvent("Error", model.WrapCtxError(err))
		}
		return runtime.NewEvent("LibraryItemsPushedToStorage", ids)
	}

	recent, other := m.State.Library.SplitByRecent(LibraryRecentCount)
	if err := m.writeLibraryKey(ctx, LibraryRecentStorageKey, model.NewLibraryBucket(m.State.Library.UID, recent)); err != nil {
		return runtime.NewEvent("Error", model.WrapCtxError(err))
	}
	if !areInRecent {
		if err := m.writeLibraryKey(ctx, LibraryStorageKey, model.NewLibraryBucket(m.State.Library.UID, other)); err != nil {
			return runtime.NewEvent("Error", model.WrapCtxError(err))
		}
	}
	return runtime.NewEvent("LibraryItemsPushedToStorage", ids)
}

// pushLibraryToStorage unconditionally rewrites both storage keys, used
// after Logout/CtxAuthResult replace the bucket wholesale (§4.6.2).
func (m *Model) pushLibraryToStorage() runtime.Msg {
	ids := make([]string, 0, len(m.State.Library.Items))
	for id := range m.State.Library.Items {
		ids = append(ids, id)
	}
	ctx := context.Background()
	recent, other := m.State.Library.SplitByRecent(LibraryRecentCount)
	if err := m.writeLibraryKey(ctx, LibraryRecentStorageKey, model.NewLibraryBucket(m.State.Library.UID, recent)); err != nil {
		return runtime.NewEvent("Error", model.WrapCtxError(err))
	}
	if err := m.writeLibraryKey(ctx, LibraryStorageKey, model.NewLibraryBucket(m.State.Library.UID, other)); err != nil {
		return runtime.NewEvent("Error", model.WrapCtxError(err))
	}
	return runtime.NewEvent("LibraryItemsPushedToStorage", ids)
}

func (m *Model) writeLibraryKey(ctx context.Context, key string, bucket model.LibraryBucket) error {
	items := make([]model.LibraryItem, 0, len(bucket.Items))
	for _, it := range bucket.Items {
		items = append(items, it)
	}
	payload, err := marshalJSON(struct {
		UID   *string            `json:"uid"`
		Items []model.LibraryItem `json:"items"`
	}{bucket.UID, items})
	if err != nil {
		return err
	}
	return m.env.SetStorage(ctx, key, payload)
}

func (m *Model) pushItemsToAPI(items []model.LibraryItem, authKey string) runtime.Msg {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	err := m.api.DatastorePut(context.Background(), api.DatastoreRequest{
		AuthKey:    authKey,
		Collection: api.LibraryCollectionName,
		Command:    api.DatastorePutCommand(items),
	})
	if err != nil {
		return runtime.NewEvent("Error", model.WrapCtxError(err))
	}
	return runtime.NewEvent("LibraryItemsPushedToAPI", ids)
}
