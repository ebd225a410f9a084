package model

import "testing"

import "github.com/stretchr/testify/require"

func TestManifestCloneIsADeepCopy(t *testing.T) {
	m := Manifest{
		ID:            "com.example.addon",
		ResourceItems: []ResourceItem{{Name: "catalog", Types: []string{"movie"}}},
		Types:         []string{"movie"},
		Catalogs:      []CatalogItem{{Type: "movie", ID: "top", Extra: []ExtraItem{{Name: "genre"}}}},
		IDPrefixes:    []string{"tt"},
	}
	clone := m.Clone()
	require.Equal(t, m, clone)

	clone.ResourceItems[0].Types[0] = "series"
	clone.Catalogs[0].Extra[0].Name = "changed"
	clone.IDPrefixes[0] = "UC"

	require.Equal(t, "movie", m.ResourceItems[0].Types[0])
	require.Equal(t, "genre", m.Catalogs[0].Extra[0].Name)
	require.Equal(t, "tt", m.IDPrefixes[0])
}

func TestManifestCloneOfEmptyManifestKeepsNilSlices(t *testing.T) {
	m := Manifest{}
	clone := m.Clone()
	require.Nil(t, clone.ResourceItems)
	require.Nil(t, clone.Types)
	require.Nil(t, clone.Catalogs)
	require.Nil(t, clone.IDPrefixes)
}

func TestIsResourceSupportedHonorsResourceItemIDPrefixesOverManifestLevel(t *testing.T) {
	m := Manifest{
		ResourceItems: []ResourceItem{{Name: "meta", Types: []string{"movie"}, IDPrefixes: []string{"tt"}}},
		IDPrefixes:    []string{"UC"},
	}
	require.True(t, m.IsResourceSupported(ResourcePathWithoutExtra("meta", "movie", "tt123")))
	require.False(t, m.IsResourceSupported(ResourcePathWithoutExtra("meta", "movie", "UC123")))
}

func TestIsResourceSupportedFalseWhenTypeNotDeclared(t *testing.T) {
	m := Manifest{ResourceItems: []ResourceItem{{Name: "meta", Types: []string{"movie"}}}}
	require.False(t, m.IsResourceSupported(ResourcePathWithoutExtra("meta", "series", "tt1")))
}

func TestIsExtraSupportedRequiresDeclaredAndRequiredExtras(t *testing.T) {
	catalog := CatalogItem{Extra: []ExtraItem{{Name: "genre", IsRequired: true}, {Name: "skip"}}}

	require.False(t, catalog.IsExtraSupported(nil), "missing required extra")
	require.True(t, catalog.IsExtraSupported([]ExtraValue{{Name: "genre", Value: "Action"}}))
	require.False(t, catalog.IsExtraSupported([]ExtraValue{{Name: "genre", Value: "Action"}, {Name: "undeclared", Value: "x"}}))
}
