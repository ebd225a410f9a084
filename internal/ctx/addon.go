package ctx

import (
	"context"

	"github.com/stremio-core-go/runtime/internal/model"
	"github.com/stremio-core-go/runtime/internal/runtime"
)

// installAddon replaces any existing descriptor with the same transport_url
// (§4.6 "Addon installation"). Installing an already-installed descriptor
// unchanged is a no-op: no storage write, no API request (§8.1 "Idempotent
// install").
func (m *Model) installAddon(desc model.Descriptor) runtime.Effects {
	addons := m.State.Profile.Addons
	for i, existing := range addons {
		if existing.TransportURL == desc.TransportURL {
			if existing.Equal(desc) {
				return runtime.Unchanged()
			}
			addons[i] = desc
			m.State.Profile.Addons = addons
			return runtime.Join(m.persistProfile(), m.pushAddonsToAPI(), runtime.Changed())
		}
	}
	m.State.Profile.Addons = append(addons, desc)
	return runtime.Join(m.persistProfile(), m.pushAddonsToAPI(), runtime.Changed())
}

// uninstallAddon removes the descriptor for transportURL unless it's
// protected (§4.6).
func (m *Model) uninstallAddon(transportURL string) runtime.Effects {
	addons := m.State.Profile.Addons
	for i, existing := range addons {
		if existing.TransportURL != transportURL {
			continue
		}
		if existing.Flags.Protected {
			return runtime.Effects{Futures: []runtime.Future{func() runtime.Msg {
				return runtime.NewEvent("Error", model.WrapCtxError(model.ErrAddonIsProtected))
			}}}
		}
		m.State.Profile.Addons = append(addons[:i], addons[i+1:]...)
		return runtime.Join(m.persistProfile(), m.pushAddonsToAPI(), runtime.Changed())
	}
	return runtime.Unchanged()
}

// pushAddonsToAPI POSTs the current addon set when authenticated (§4.6
// "Side-effect: when authenticated, POST the new set to
// /addonCollectionSet").
func (m *Model) pushAddonsToAPI() runtime.Effects {
	authKey := m.State.Profile.AuthKey()
	if authKey == nil {
		return runtime.Unchanged()
	}
	addons := m.State.Profile.Addons
	key := *authKey
	future := func() runtime.Msg {
		if err := m.api.AddonCollectionSet(context.Background(), key, addons); err != nil {
			return runtime.NewEvent("Error", model.WrapCtxError(err))
		}
		return runtime.NewEvent("AddonsPushedToAPI", nil)
	}
	return runtime.Effects{Futures: []runtime.Future{future}}
}
