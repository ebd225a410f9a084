// Package aggr plans which add-ons to ask for a resource and builds the
// per-addon ResourceRequest for each (§4.4). Grounded on
// original_source/types/addon/request.rs's AggrRequest::plan, reworked into
// three pure functions instead of one enum method since Go has no sum types.
package aggr

import (
	"strings"

	"github.com/stremio-core-go/runtime/internal/model"
)

// AddonRequest pairs the add-on that will serve a ResourceRequest with the
// request itself.
type AddonRequest struct {
	Addon   model.Descriptor
	Request model.ResourceRequest
}

// AllCatalogs plans one request per (addon, catalog) pair whose catalog
// supports every requested extra and, if typ is non-empty, matches it
// (§4.4 "AllCatalogs").
func AllCatalogs(addons []model.Descriptor, extra []model.ExtraValue, typ string) []AddonRequest {
	var out []AddonRequest
	for _, addon := range addons {
		for _, catalog := range addon.Manifest.Catalogs {
			if !catalog.IsExtraSupported(extra) {
				continue
			}
			if typ != "" && catalog.Type != typ {
				continue
			}
			path := model.ResourcePath{
				Resource: "catalog",
				Type:     catalog.Type,
				ID:       catalog.ID,
				Extra:    extra,
			}
			out = append(out, AddonRequest{
				Addon:   addon,
				Request: model.ResourceRequest{Base: addon.TransportURL, Path: path},
			})
		}
	}
	return out
}

// IDsFilter asks every add-on advertising extraName for the subset of ids it
// can accept (by id prefix), optionally restricted to types, and respecting
// the add-on's declared options limit (§4.4 "CatalogsFiltered").
type IDsFilter struct {
	ExtraName string
	IDs       []string
	Types     []string
}

// CatalogsFiltered plans one request per (addon, catalog) pair that can serve
// at least one requested id, trimmed to the add-on's id prefixes and extra
// options limit.
func CatalogsFiltered(addons []model.Descriptor, filters []IDsFilter) []AddonRequest {
	extraNames := make([]string, len(filters))
	for i, f := range filters {
		extraNames[i] = f.ExtraName
	}

	var out []AddonRequest
	for _, filter := range filters {
		for _, addon := range addons {
			for _, catalog := range addon.Manifest.Catalogs {
				if !catalog.AreExtraNamesSupported(extraNames) {
					continue
				}
				if len(filter.Types) > 0 && !containsString(filter.Types, catalog.Type) {
					continue
				}
				supportedIDs := filterByPrefixes(filter.IDs, addon.Manifest.IDPrefixes)
				if supportedIDs == nil {
					continue
				}
				if limit := extraOptionsLimit(catalog, filter.ExtraName); limit > 0 && limit < len(supportedIDs) {
					supportedIDs = supportedIDs[:limit]
				}
				value := strings.Join(supportedIDs, ",")
				path := model.ResourcePath{
					Resource: "catalog",
					Type:     catalog.Type,
					ID:       catalog.ID,
					Extra:    []model.ExtraValue{{Name: filter.ExtraName, Value: value}},
				}
				out = append(out, AddonRequest{
					Addon:   addon,
					Request: model.ResourceRequest{Base: addon.TransportURL, Path: path},
				})
			}
		}
	}
	return out
}

// AllOfResource plans one request per add-on whose manifest supports path
// (§4.4 "AllOfResource").
func AllOfResource(addons []model.Descriptor, path model.ResourcePath) []AddonRequest {
	var out []AddonRequest
	for _, addon := range addons {
		if !addon.Manifest.IsResourceSupported(path) {
			continue
		}
		out = append(out, AddonRequest{
			Addon:   addon,
			Request: model.ResourceRequest{Base: addon.TransportURL, Path: path},
		})
	}
	return out
}

// filterByPrefixes returns the subset of ids starting with one of prefixes.
// When prefixes is empty (the add-on didn't declare any), nil is returned:
// the manifest gives no guarantee it can resolve any of these ids.
func filterByPrefixes(ids []string, prefixes []string) []string {
	if len(prefixes) == 0 {
		return nil
	}
	var out []string
	for _, id := range ids {
		for _, prefix := range prefixes {
			if strings.HasPrefix(id, prefix) {
				out = append(out, id)
				break
			}
		}
	}
	return out
}

func extraOptionsLimit(catalog model.CatalogItem, extraName string) int {
	for _, ei := range catalog.Extra {
		if ei.Name == extraName {
			return ei.OptionsLimit
		}
	}
	return 0
}

func containsString(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}
