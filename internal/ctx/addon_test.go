package ctx

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stremio-core-go/runtime/internal/env"
	"github.com/stremio-core-go/runtime/internal/model"
)

func newTestModel() *Model {
	return New(env.NewProduction(env.Options{}), nil, nil)
}

func descriptor(url, version string) model.Descriptor {
	return model.Descriptor{
		TransportURL: url,
		Manifest:     model.Manifest{ID: "com.example.addon", Version: version},
	}
}

// TestInstallAddonIsIdempotent covers §8.1: installing an unchanged
// descriptor twice is a no-op the second time around.
func TestInstallAddonIsIdempotent(t *testing.T) {
	m := newTestModel()

	first := m.installAddon(descriptor("https://addon.example.com/manifest.json", "1.0.0"))
	require.True(t, first.HasChanged)
	require.Len(t, m.State.Profile.Addons, 1)

	second := m.installAddon(descriptor("https://addon.example.com/manifest.json", "1.0.0"))
	require.False(t, second.HasChanged)
	require.Empty(t, second.Futures)
	require.Len(t, m.State.Profile.Addons, 1)
}

func TestInstallAddonUpdatesInPlaceByTransportURL(t *testing.T) {
	m := newTestModel()
	m.installAddon(descriptor("https://addon.example.com/manifest.json", "1.0.0"))

	effects := m.installAddon(descriptor("https://addon.example.com/manifest.json", "2.0.0"))
	require.True(t, effects.HasChanged)
	require.Len(t, m.State.Profile.Addons, 1)
	require.Equal(t, "2.0.0", m.State.Profile.Addons[0].Manifest.Version)
}

// TestInstallAddonReplacesOnChangedCatalogsDespiteSameVersion covers the
// case where a re-fetched manifest changes catalogs/resources without a
// version bump: id/version/flags alone aren't enough to call it a no-op,
// so the stored descriptor must still be replaced (§4.6).
func TestInstallAddonReplacesOnChangedCatalogsDespiteSameVersion(t *testing.T) {
	m := newTestModel()
	first := descriptor("https://addon.example.com/manifest.json", "1.0.0")
	m.installAddon(first)

	second := descriptor("https://addon.example.com/manifest.json", "1.0.0")
	second.Manifest.Catalogs = []model.CatalogItem{{Type: "movie", ID: "top", Name: "Top"}}

	effects := m.installAddon(second)
	require.True(t, effects.HasChanged)
	require.Len(t, m.State.Profile.Addons, 1)
	require.Equal(t, second.Manifest.Catalogs, m.State.Profile.Addons[0].Manifest.Catalogs)
}

func TestInstallAddonAppendsADifferentTransportURL(t *testing.T) {
	m := newTestModel()
	m.installAddon(descriptor("https://a.example.com/manifest.json", "1.0.0"))
	m.installAddon(descriptor("https://b.example.com/manifest.json", "1.0.0"))
	require.Len(t, m.State.Profile.Addons, 2)
}

func TestUninstallAddonRemovesByTransportURL(t *testing.T) {
	m := newTestModel()
	m.installAddon(descriptor("https://a.example.com/manifest.json", "1.0.0"))

	effects := m.uninstallAddon("https://a.example.com/manifest.json")
	require.True(t, effects.HasChanged)
	require.Empty(t, m.State.Profile.Addons)
}

func TestUninstallAddonRefusesProtectedAddon(t *testing.T) {
	m := newTestModel()
	desc := descriptor("https://a.example.com/manifest.json", "1.0.0")
	desc.Flags.Protected = true
	m.installAddon(desc)

	effects := m.uninstallAddon("https://a.example.com/manifest.json")
	require.False(t, effects.HasChanged)
	require.Len(t, effects.Futures, 1)
	require.Len(t, m.State.Profile.Addons, 1)

	msg := effects.Futures[0]()
	require.Equal(t, "Error", msg.Name)
}

func TestUninstallAddonUnknownURLIsNoOp(t *testing.T) {
	m := newTestModel()
	effects := m.uninstallAddon("https://unknown.example.com/manifest.json")
	require.False(t, effects.HasChanged)
	require.Empty(t, effects.Futures)
}
