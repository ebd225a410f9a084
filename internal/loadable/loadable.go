// Package loadable implements the ResourceLoadable engine (§4.5): plans a
// vector of ResourceLoadable entries from an aggr plan, preserves entries
// that don't need refetching, and applies incoming results with
// stale-result rejection. Grounded on the teacher's cache layer
// (pkg/cinemeta/cache.go's "don't refetch what's still fresh" shape),
// generalized from a single TTL cache to the request-key matching described
// in §4.5 and §9.
package loadable

import (
	"encoding/json"

	"github.com/cespare/xxhash/v2"

	"github.com/stremio-core-go/runtime/internal/model"
)

// Reconcile materializes the plan into a new slice of ResourceLoadable
// entries (§4.5 "ResourcesRequested"). Entries already present in existing
// with a matching request are kept as-is when force is false and their
// content is Ready or Loading; everything else starts Loading and is
// returned in toFetch for the caller to dispatch as a future.
func Reconcile[T any](existing []model.ResourceLoadable[T], planned []model.ResourceRequest, force bool) (updated []model.ResourceLoadable[T], toFetch []model.ResourceRequest) {
	updated = make([]model.ResourceLoadable[T], 0, len(planned))
	for _, request := range planned {
		prior, hasPrior := find(existing, request)
		if !force && hasPrior && (prior.Content.IsReady() || prior.Content.IsLoading()) {
			updated = append(updated, prior)
			continue
		}
		loading := model.LoadableLoading[T]()
		entry := model.ResourceLoadable[T]{Request: request, Content: &loading}
		if hasPrior {
			// Carry the prior Ready payload's hash through the forced
			// Loading state so ApplyResult can detect a byte-identical
			// refetch (§9 domain-stack note).
			entry.PayloadHash = prior.PayloadHash
		}
		updated = append(updated, entry)
		toFetch = append(toFetch, request)
	}
	return updated, toFetch
}

func find[T any](entries []model.ResourceLoadable[T], request model.ResourceRequest) (model.ResourceLoadable[T], bool) {
	for _, e := range entries {
		if e.Request.Equal(request) {
			return e, true
		}
	}
	return model.ResourceLoadable[T]{}, false
}

// ApplyResult locates the entry whose request matches and whose content is
// Loading, and settles it to Ready or Err (§4.5 "ResourceRequestResult").
// A result whose request is absent or not Loading is discarded in place
// (§8.6 "Stale-result rejection"); changed reports whether any entry was
// actually updated, for Effects.HasChanged.
//
// On success, the settled value's JSON encoding is hashed via ContentHash
// and compared against the entry's carried-forward PayloadHash (set by a
// prior Ready cycle, see Reconcile): when a force=true refetch comes back
// byte-identical to what was already Ready, changed is reported false even
// though the Loadable state transitioned Loading->Ready, suppressing a
// redundant UI notification for a no-op refresh.
func ApplyResult[T any](entries []model.ResourceLoadable[T], request model.ResourceRequest, value T, fetchErr error) (updated []model.ResourceLoadable[T], changed bool) {
	updated = make([]model.ResourceLoadable[T], len(entries))
	copy(updated, entries)
	for i, e := range updated {
		if !e.Request.Equal(request) || !e.Content.IsLoading() {
			continue
		}
		if fetchErr != nil {
			settled := model.LoadableErr[T](fetchErr)
			updated[i] = model.ResourceLoadable[T]{Request: e.Request, Content: &settled, PayloadHash: e.PayloadHash}
			changed = true
			break
		}
		newHash := e.PayloadHash
		samePayload := false
		if payload, err := json.Marshal(value); err == nil {
			newHash = ContentHash(payload)
			samePayload = e.PayloadHash != 0 && newHash == e.PayloadHash
		}
		settled := model.LoadableReady(value)
		updated[i] = model.ResourceLoadable[T]{Request: e.Request, Content: &settled, PayloadHash: newHash}
		changed = !samePayload
		break
	}
	return updated, changed
}

// ErrNoContent marks a Ready vector result that came back empty (§4.5
// "vector specialization: empty Ready list is Err(NoContent)").
var ErrNoContent = model.NewAddonTransportError("no content")

// VectorResult converts a successful fetch of a slice into either Ready(v)
// or, when v is empty, Err(ErrNoContent) — the vector specialization named
// in §4.5.
func VectorResult[T any](v []T, fetchErr error) ([]T, error) {
	if fetchErr != nil {
		return nil, fetchErr
	}
	if len(v) == 0 {
		return nil, ErrNoContent
	}
	return v, nil
}

// ContentHash hashes a Ready byte payload so a refetch that returns
// byte-identical content can suppress a changed-notification (§4.3–§4.5
// domain stack note).
func ContentHash(payload []byte) uint64 {
	return xxhash.Sum64(payload)
}
