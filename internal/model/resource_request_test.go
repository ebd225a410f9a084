package model

import "testing"

import "github.com/stretchr/testify/require"

// TestResourceRequestEqualIsStructural covers §9's "identity of requests"
// invariant: two separately-constructed requests with the same fields must
// compare equal, since the loadable engine correlates results by value, not
// by pointer.
func TestResourceRequestEqualIsStructural(t *testing.T) {
	a := ResourceRequest{Base: "https://addon.example.com", Path: ResourcePathWithoutExtra("meta", "movie", "tt1")}
	b := ResourceRequest{Base: "https://addon.example.com", Path: ResourcePathWithoutExtra("meta", "movie", "tt1")}
	require.True(t, a.Equal(b))

	c := b
	c.Base = "https://other.example.com"
	require.False(t, a.Equal(c))
}

func TestResourceRequestEqualIsSensitiveToExtras(t *testing.T) {
	base := ResourcePath{Resource: "catalog", Type: "movie", ID: "top"}
	withExtra := base
	withExtra.Extra = []ExtraValue{{Name: "genre", Value: "Action"}}

	a := ResourceRequest{Base: "https://a.example.com", Path: base}
	b := ResourceRequest{Base: "https://a.example.com", Path: withExtra}

	require.False(t, a.Equal(b))
	require.True(t, a.EqualNoExtra(b))
}

func TestGetExtraFirstValue(t *testing.T) {
	p := ResourcePath{Extra: []ExtraValue{{Name: "skip", Value: "10"}}}
	v, ok := p.GetExtraFirstValue("skip")
	require.True(t, ok)
	require.Equal(t, "10", v)

	_, ok = p.GetExtraFirstValue("missing")
	require.False(t, ok)
}
