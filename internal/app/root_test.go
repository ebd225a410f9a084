package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stremio-core-go/runtime/internal/ctx"
	"github.com/stremio-core-go/runtime/internal/env"
	"github.com/stremio-core-go/runtime/internal/metadetails"
	"github.com/stremio-core-go/runtime/internal/model"
	"github.com/stremio-core-go/runtime/internal/runtime"
)

func newTestRoot() (*Root, *ctx.Model, *metadetails.Model) {
	environment := env.NewProduction(env.Options{})
	ctxModel := ctx.New(environment, nil, nil)
	metaDetailsModel := metadetails.New(ctxModel, environment, nil)
	return New(ctxModel, metaDetailsModel, nil), ctxModel, metaDetailsModel
}

func TestRootRoutesCtxOwnedMessagesToCtx(t *testing.T) {
	root, ctxModel, _ := newTestRoot()
	effects := root.Update(runtime.NewAction("InstallAddon", model.Descriptor{TransportURL: "https://a.example.com"}))
	require.True(t, effects.HasChanged)
	require.Len(t, ctxModel.State.Profile.Addons, 1)
}

func TestRootRoutesMetaDetailsOwnedMessagesToMetaDetails(t *testing.T) {
	root, _, metaDetailsModel := newTestRoot()
	effects := root.Update(runtime.NewAction("Load", model.Selected{MetaPath: model.ResourcePathWithoutExtra("meta", "movie", "tt1")}))
	require.True(t, effects.HasChanged)
	require.NotNil(t, metaDetailsModel.State.Selected)
}

func TestRootFansLibraryChangedOutToBothSubModels(t *testing.T) {
	root, ctxModel, metaDetailsModel := newTestRoot()
	ctxModel.State.Library.Items["tt1"] = model.LibraryItem{ID: "tt1"}
	metaDetailsModel.State.Selected = &model.Selected{MetaPath: model.ResourcePathWithoutExtra("meta", "movie", "tt1")}

	effects := root.Update(runtime.NewInternal("LibraryChanged", true))
	require.True(t, effects.HasChanged)
	require.NotNil(t, metaDetailsModel.State.LibraryItem)
}

func TestRootIgnoresUnroutedMessages(t *testing.T) {
	root, _, _ := newTestRoot()
	effects := root.Update(runtime.NewAction("SomethingUnknown", nil))
	require.False(t, effects.HasChanged)
	require.Empty(t, effects.Futures)
}

func TestRootLogsErrorEventsWithoutPropagating(t *testing.T) {
	root, _, _ := newTestRoot()
	effects := root.Update(runtime.NewEvent("Error", model.WrapCtxError(model.ErrUserNotLoggedIn)))
	require.False(t, effects.HasChanged)
	require.Empty(t, effects.Futures)
}
