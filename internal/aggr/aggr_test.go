package aggr

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stremio-core-go/runtime/internal/model"
)

func addonWithCatalog(url string, catalog model.CatalogItem, idPrefixes ...string) model.Descriptor {
	return model.Descriptor{
		TransportURL: url,
		Manifest: model.Manifest{
			Catalogs:   []model.CatalogItem{catalog},
			IDPrefixes: idPrefixes,
			ResourceItems: []model.ResourceItem{
				{Name: "meta", Types: []string{"movie"}},
			},
		},
	}
}

func TestAllOfResourcePlansOnlyAddonsThatSupportTheResource(t *testing.T) {
	supporting := addonWithCatalog("https://a.example.com", model.CatalogItem{Type: "movie", ID: "top"})
	notSupporting := model.Descriptor{TransportURL: "https://b.example.com"}

	planned := AllOfResource([]model.Descriptor{supporting, notSupporting}, model.ResourcePathWithoutExtra("meta", "movie", "tt1"))
	require.Len(t, planned, 1)
	require.Equal(t, "https://a.example.com", planned[0].Request.Base)
}

func TestAllCatalogsFiltersByTypeAndExtraSupport(t *testing.T) {
	catalogWithRequiredGenre := model.CatalogItem{
		Type: "movie", ID: "top",
		Extra: []model.ExtraItem{{Name: "genre", IsRequired: true}},
	}
	d := addonWithCatalog("https://a.example.com", catalogWithRequiredGenre)

	noExtra := AllCatalogs([]model.Descriptor{d}, nil, "movie")
	require.Empty(t, noExtra, "required extra missing should exclude the catalog")

	withExtra := AllCatalogs([]model.Descriptor{d}, []model.ExtraValue{{Name: "genre", Value: "Action"}}, "movie")
	require.Len(t, withExtra, 1)

	wrongType := AllCatalogs([]model.Descriptor{d}, []model.ExtraValue{{Name: "genre", Value: "Action"}}, "series")
	require.Empty(t, wrongType)
}

func TestCatalogsFilteredRespectsIDPrefixesAndOptionsLimit(t *testing.T) {
	catalog := model.CatalogItem{
		Type: "movie", ID: "top",
		Extra: []model.ExtraItem{{Name: "ids", OptionsLimit: 1}},
	}
	d := addonWithCatalog("https://a.example.com", catalog, "tt")

	planned := CatalogsFiltered([]model.Descriptor{d}, []IDsFilter{
		{ExtraName: "ids", IDs: []string{"tt1", "tt2", "UCnope"}},
	})
	require.Len(t, planned, 1)
	require.Equal(t, "tt1", planned[0].Request.Path.Extra[0].Value, "limit=1 keeps only the first matching id")
}

func TestCatalogsFilteredExcludesAddonsWithNoMatchingIDPrefix(t *testing.T) {
	catalog := model.CatalogItem{Type: "movie", ID: "top", Extra: []model.ExtraItem{{Name: "ids"}}}
	d := addonWithCatalog("https://a.example.com", catalog, "tt")

	planned := CatalogsFiltered([]model.Descriptor{d}, []IDsFilter{
		{ExtraName: "ids", IDs: []string{"UConly"}},
	})
	require.Empty(t, planned)
}
