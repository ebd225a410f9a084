// Package ctx implements the Ctx model (§4.6): profile, library, and
// streams state plus authentication, add-on install/remove, library
// mutation, and the library sync protocol (§4.6.1). Grounded on
// original_source/models/ctx/update_library.rs for the exact update/effect
// shape, reworked from Rust's Effects::msg/Effects::one combinators into
// runtime.Effects/runtime.Future, and from the teacher's Options struct
// (config.go) for construction.
package ctx

import (
	"time"

	"go.uber.org/zap"

	"github.com/stremio-core-go/runtime/internal/api"
	"github.com/stremio-core-go/runtime/internal/env"
	"github.com/stremio-core-go/runtime/internal/model"
	"github.com/stremio-core-go/runtime/internal/runtime"
)

const (
	// ProfileStorageKey is where the Profile is persisted.
	ProfileStorageKey = "profile"
	// LibraryRecentStorageKey holds the recent-N library items.
	LibraryRecentStorageKey = "libraryRecent"
	// LibraryStorageKey holds every library item past the recent-N split.
	LibraryStorageKey = "library"
	// LibraryRecentCount is N in the recent/other split (§4.6 "Storage").
	LibraryRecentCount = 100
)

// Status is the Ctx lifecycle tag: Ready, or Loading an in-flight auth
// request identified by a request token (§4.6).
type Status struct {
	Loading     bool
	AuthRequest string
}

// Ready is the non-loading Status.
func Ready() Status { return Status{} }

// LoadingStatus returns a Loading(authRequest) Status.
func LoadingStatus(authRequest string) Status { return Status{Loading: true, AuthRequest: authRequest} }

// State is the data Ctx owns: Profile, LibraryBucket, StreamsBucket, and
// lifecycle Status (§4.6).
type State struct {
	Profile model.Profile
	Library model.LibraryBucket
	Streams model.StreamsBucket
	Status  Status
}

// Model wires State to its Environment and Main API client collaborators
// and implements runtime.Model (§4.6, §4.2).
type Model struct {
	State State

	env    env.Environment
	api    *api.Client
	logger *zap.Logger
}

// New constructs a Ctx Model with an empty, logged-out State.
func New(environment env.Environment, apiClient *api.Client, logger *zap.Logger) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Model{
		State: State{
			Library: model.NewLibraryBucket(nil, nil),
			Streams: model.NewStreamsBucket(),
			Status:  Ready(),
		},
		env:    environment,
		api:    apiClient,
		logger: logger,
	}
}

var _ runtime.Model = (*Model)(nil)

// Update implements runtime.Model, dispatching by Msg.Name to the handler
// for that action/event/internal (§4.2 step 1, §4.6).
func (m *Model) Update(msg runtime.Msg) runtime.Effects {
	switch msg.Name {
	case "Login":
		return m.login(msg.Payload.(LoginPayload))
	case "Register":
		return m.register(msg.Payload.(RegisterPayload))
	case "Logout":
		return m.logout()
	case "InstallAddon":
		return m.installAddon(msg.Payload.(model.Descriptor))
	case "UninstallAddon":
		return m.uninstallAddon(msg.Payload.(string))
	case "AddToLibrary":
		return m.addToLibrary(msg.Payload.(model.MetaPreviewItem))
	case "RemoveFromLibrary":
		return m.removeFromLibrary(msg.Payload.(string))
	case "RewindLibraryItem":
		return m.rewindLibraryItem(msg.Payload.(string))
	case "SyncLibraryWithAPI":
		return m.syncLibraryWithAPI()
	case "CtxAuthResult":
		return m.ctxAuthResult(msg.Payload.(CtxAuthResultPayload))
	case "UpdateLibraryItem":
		return m.updateLibraryItem(msg.Payload.(model.LibraryItem))
	case "LibraryChanged":
		return m.libraryChanged(msg.Payload.(bool))
	case "LibrarySyncPlanResult":
		return m.librarySyncPlanResult(msg.Payload.(LibrarySyncPlanResultPayload))
	case "LibraryPullResult":
		return m.libraryPullResult(msg.Payload.(LibraryPullResultPayload))
	default:
		return runtime.Unchanged()
	}
}

func (m *Model) now() time.Time { return m.env.Now() }
