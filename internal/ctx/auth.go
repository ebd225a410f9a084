package ctx

import (
	"context"

	"github.com/stremio-core-go/runtime/internal/api"
	"github.com/stremio-core-go/runtime/internal/metrics"
	"github.com/stremio-core-go/runtime/internal/model"
	"github.com/stremio-core-go/runtime/internal/runtime"
)

// LoginPayload carries credentials for an Action::Ctx(Login) (§4.6).
type LoginPayload struct {
	Email    string
	Password string
}

// RegisterPayload carries credentials for an Action::Ctx(Register) (§4.6).
type RegisterPayload struct {
	Email    string
	Password string
}

// CtxAuthResultPayload is the Internal::CtxAuthResult(auth_request, result)
// message (§4.6). AuthRequest must match the current Status.AuthRequest for
// this result to be accepted.
type CtxAuthResultPayload struct {
	AuthRequest  string
	Auth         *model.Auth
	Addons       []model.Descriptor
	LibraryItems []model.LibraryItem
	Err          error
}

func (m *Model) login(p LoginPayload) runtime.Effects {
	return m.beginAuth(func(ctx context.Context) (api.AuthResponse, error) {
		return m.api.Login(ctx, p.Email, p.Password)
	})
}

func (m *Model) register(p RegisterPayload) runtime.Effects {
	return m.beginAuth(func(ctx context.Context) (api.AuthResponse, error) {
		return m.api.Register(ctx, p.Email, p.Password)
	})
}

// beginAuth sets Status to Loading(requestID) and launches the API call,
// plus the AddonCollectionGet needed to populate the post-login profile
// (§4.6 "produces a sequence of API calls").
func (m *Model) beginAuth(call func(ctx context.Context) (api.AuthResponse, error)) runtime.Effects {
	requestID := m.env.RandomID()
	m.State.Status = LoadingStatus(requestID)
	future := func() runtime.Msg {
		ctx := context.Background()
		authResp, err := call(ctx)
		if err != nil {
			return runtime.NewInternal("CtxAuthResult", CtxAuthResultPayload{AuthRequest: requestID, Err: err})
		}
		addons, err := m.api.AddonCollectionGet(ctx, authResp.Key)
		if err != nil {
			return runtime.NewInternal("CtxAuthResult", CtxAuthResultPayload{AuthRequest: requestID, Err: err})
		}
		items, err := m.api.DatastoreGet(ctx, api.DatastoreRequest{
			AuthKey:    authResp.Key,
			Collection: api.LibraryCollectionName,
			Command:    api.DatastoreGetCommand(nil, true),
		})
		if err != nil {
			return runtime.NewInternal("CtxAuthResult", CtxAuthResultPayload{AuthRequest: requestID, Err: err})
		}
		return runtime.NewInternal("CtxAuthResult", CtxAuthResultPayload{
			AuthRequest:  requestID,
			Auth:         &model.Auth{Key: authResp.Key, User: authResp.User},
			Addons:       addons,
			LibraryItems: items,
		})
	}
	return runtime.Effects{Futures: []runtime.Future{future}, HasChanged: true}
}

// ctxAuthResult accepts the result only when Status is Loading with the
// matching request token (§4.6).
func (m *Model) ctxAuthResult(p CtxAuthResultPayload) runtime.Effects {
	if !m.State.Status.Loading || m.State.Status.AuthRequest != p.AuthRequest {
		return runtime.Unchanged()
	}
	metrics.CtxAuthAttempt("login", p.Err == nil)
	if p.Err != nil {
		m.State.Status = Ready()
		return runtime.Changed()
	}

	m.State.Profile.Auth = p.Auth
	m.State.Profile.Addons = p.Addons
	m.State.Status = Ready()

	nextLibrary := model.NewLibraryBucket(&p.Auth.User.ID, p.LibraryItems)
	libraryChanged := !m.State.Library.Equal(nextLibrary)
	if libraryChanged {
		m.State.Library = nextLibrary
	}

	effects := m.persistProfile()
	if libraryChanged {
		effects = runtime.Join(effects, runtime.Effects{
			Futures: []runtime.Future{func() runtime.Msg {
				return runtime.NewInternal("LibraryChanged", false)
			}},
		})
	}
	return runtime.Join(effects, runtime.Changed())
}

func (m *Model) logout() runtime.Effects {
	metrics.CtxAuthAttempt("logout", true)
	nextLibrary := model.NewLibraryBucket(nil, nil)
	m.State.Profile.Auth = nil
	libraryChanged := !m.State.Library.Equal(nextLibrary)
	m.State.Library = nextLibrary

	effects := m.persistProfile()
	if libraryChanged {
		effects = runtime.Join(effects, runtime.Effects{
			Futures: []runtime.Future{func() runtime.Msg {
				return runtime.NewInternal("LibraryChanged", false)
			}},
		})
	}
	return runtime.Join(effects, runtime.Changed())
}

// persistProfile returns the storage-write effect for Profile, matching
// every mutation site that touches profile.addons or profile.auth (§4.6).
func (m *Model) persistProfile() runtime.Effects {
	profile := m.State.Profile
	future := func() runtime.Msg {
		payload, err := marshalJSON(profile)
		if err != nil {
			return runtime.NewEvent("Error", model.WrapCtxError(err))
		}
		if err := m.env.SetStorage(context.Background(), ProfileStorageKey, payload); err != nil {
			return runtime.NewEvent("Error", model.WrapCtxError(err))
		}
		return runtime.NewEvent("ProfileChanged", nil)
	}
	return runtime.Effects{Futures: []runtime.Future{future}}
}
