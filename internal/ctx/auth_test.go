package ctx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stremio-core-go/runtime/internal/api"
	"github.com/stremio-core-go/runtime/internal/env"
	"github.com/stremio-core-go/runtime/internal/model"
	"github.com/stremio-core-go/runtime/internal/runtime"
)

// runFutures drains every future in effects in order, feeding each resulting
// Msg back into Update, and returns the final effects (matching how
// Runtime.step actually drives a Model, §4.2).
func runFutures(t *testing.T, m *Model, effects runtime.Effects) runtime.Effects {
	t.Helper()
	for _, future := range effects.Futures {
		msg := future()
		effects = m.Update(msg)
	}
	return effects
}

func TestLoginPopulatesProfileAndLibraryOnSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/Login":
			w.Write([]byte(`{"result":{"authKey":"key-1","user":{"_id":"u1","email":"a@example.com"}}}`))
		case "/api/AddonCollectionGet":
			w.Write([]byte(`{"result":{"addons":[]}}`))
		case "/api/DatastoreGet":
			w.Write([]byte(`{"result":[{"_id":"tt1","name":"A"}]}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	apiClient := api.NewClient(api.ClientOptions{BaseURL: srv.URL}, zap.NewNop())
	m := New(env.NewProduction(env.Options{}), apiClient, nil)

	effects := m.Update(runtime.NewAction("Login", LoginPayload{Email: "a@example.com", Password: "hunter2"}))
	require.True(t, effects.HasChanged)
	require.True(t, m.State.Status.Loading)

	effects = runFutures(t, m, effects)
	require.True(t, effects.HasChanged)
	require.False(t, m.State.Status.Loading)
	require.NotNil(t, m.State.Profile.Auth)
	require.Equal(t, "key-1", m.State.Profile.Auth.Key)
	require.Contains(t, m.State.Library.Items, "tt1")
}

func TestLoginFailureLeavesProfileLoggedOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"code":1,"message":"invalid credentials"}}`))
	}))
	defer srv.Close()

	apiClient := api.NewClient(api.ClientOptions{BaseURL: srv.URL}, zap.NewNop())
	m := New(env.NewProduction(env.Options{}), apiClient, nil)

	effects := m.Update(runtime.NewAction("Login", LoginPayload{Email: "a@example.com", Password: "wrong"}))
	effects = runFutures(t, m, effects)
	require.True(t, effects.HasChanged)
	require.Nil(t, m.State.Profile.Auth)
	require.False(t, m.State.Status.Loading)
}

func TestCtxAuthResultIgnoresMismatchedRequestToken(t *testing.T) {
	m := New(env.NewProduction(env.Options{}), nil, nil)
	m.State.Status = LoadingStatus("req-1")

	effects := m.ctxAuthResult(CtxAuthResultPayload{AuthRequest: "some-other-request"})
	require.False(t, effects.HasChanged)
	require.True(t, m.State.Status.Loading)
	require.Equal(t, "req-1", m.State.Status.AuthRequest)
}

func TestLogoutClearsProfileAndLibrary(t *testing.T) {
	m := New(env.NewProduction(env.Options{}), nil, nil)
	m.State.Profile.Auth = &model.Auth{Key: "key-1", User: model.User{ID: "u1"}}
	m.State.Library = model.NewLibraryBucket(&m.State.Profile.Auth.User.ID, []model.LibraryItem{{ID: "tt1"}})

	effects := m.Update(runtime.NewAction("Logout", nil))
	require.True(t, effects.HasChanged)
	require.Nil(t, m.State.Profile.Auth)
	require.Nil(t, m.State.Library.UID)
	require.Empty(t, m.State.Library.Items)

	var gotProfileChanged, gotLibraryChanged bool
	for _, f := range effects.Futures {
		switch f().Name {
		case "ProfileChanged":
			gotProfileChanged = true
		case "LibraryChanged":
			gotLibraryChanged = true
		}
	}
	require.True(t, gotProfileChanged)
	require.True(t, gotLibraryChanged)
}
