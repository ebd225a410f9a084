// Package env is the Environment contract (§4.1): the abstract boundary for
// wall-clock, fetch, storage, add-on transport selection, and task spawn
// that the runtime depends on but never implements directly. Grounded on
// the teacher's pkg/cinemeta.Cache interface (Set/Get behind an injectable
// implementation), generalized from "meta cache" to "arbitrary JSON
// key/value storage" per §4.1's get_storage/set_storage.
package env

import (
	"context"
	"time"

	"github.com/stremio-core-go/runtime/internal/addon"
	"github.com/stremio-core-go/runtime/internal/model"
)

// Environment is the full set of suspending primitives a Model may use
// (§4.1, §9 "Polymorphism over transports"). All methods are safe for
// concurrent use; implementations are injected once at runtime construction.
type Environment interface {
	// Now returns the current UTC instant, monotone within a process.
	Now() time.Time
	// Fetch issues an HTTP request and deserializes the JSON response body
	// into out.
	Fetch(ctx context.Context, req FetchRequest, out interface{}) error
	// GetStorage reads the raw JSON blob stored under key, or ok=false if
	// absent.
	GetStorage(ctx context.Context, key string) (value []byte, ok bool, err error)
	// SetStorage persists value under key, or deletes the key when value is
	// nil.
	SetStorage(ctx context.Context, key string, value []byte) error
	// AddonTransport returns the transport (modern or legacy, by URL shape)
	// for a given transport_url.
	AddonTransport(transportURL string) addon.Transport
	// FlushAnalytics is a fire-and-forget hook for usage telemetry.
	FlushAnalytics()
	// RandomID returns a fresh random identifier, used for request
	// correlation and locally-generated ids.
	RandomID() string
	// Spawn runs fn on a new goroutine, detached from the caller.
	Spawn(fn func())
}

// FetchRequest describes an outbound HTTP call (§4.1 "fetch<Req,Resp>").
type FetchRequest struct {
	Method string
	URL    string
	Body   interface{}
	Header map[string]string
}

// EnvErrorKind is re-exported for callers that only need env.Error; the
// canonical type lives in internal/model so both env and its consumers
// share one error taxonomy (§7).
type EnvErrorKind = model.EnvErrorKind
