package addon

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stremio-core-go/runtime/internal/model"
)

func TestManifestRequestParamIsTheExactLegacyEnvelope(t *testing.T) {
	raw, err := base64.StdEncoding.DecodeString(manifestRequestParam)
	require.NoError(t, err)
	require.JSONEq(t, `{"params":[],"method":"meta","id":1,"jsonrpc":"2.0"}`, string(raw))
}

func TestQueryFromIDImdbSeriesEpisode(t *testing.T) {
	q := queryFromID("tt1234567:2:5")
	require.Equal(t, map[string]interface{}{
		"imdb_id": "tt1234567",
		"season":  2,
		"episode": 5,
	}, q)
}

func TestQueryFromIDImdbMovie(t *testing.T) {
	q := queryFromID("tt1234567")
	require.Equal(t, map[string]interface{}{"imdb_id": "tt1234567"}, q)
}

func TestQueryFromIDImdbSeriesWithUnparsableSeasonEpisodeDefaultsToOne(t *testing.T) {
	q := queryFromID("tt1234567:x:y")
	require.Equal(t, map[string]interface{}{
		"imdb_id": "tt1234567",
		"season":  1,
		"episode": 1,
	}, q)
}

func TestQueryFromIDYoutube(t *testing.T) {
	q := queryFromID("UCabc123:videoXYZ")
	require.Equal(t, map[string]interface{}{"yt_id": "UCabc123", "video_id": "videoXYZ"}, q)
}

func TestQueryFromIDYoutubeChannelOnly(t *testing.T) {
	q := queryFromID("UCabc123")
	require.Equal(t, map[string]interface{}{"yt_id": "UCabc123"}, q)
}

func TestQueryFromIDGenericTwoAndThreePart(t *testing.T) {
	require.Equal(t, map[string]interface{}{"foo": "bar"}, queryFromID("foo:bar"))
	require.Equal(t, map[string]interface{}{"foo": "bar", "video_id": "baz"}, queryFromID("foo:bar:baz"))
}

func TestQueryFromIDSinglePartIsNil(t *testing.T) {
	require.Nil(t, queryFromID("standalone"))
}

func TestBuildRequestURLUsesStandardBase64AndExactMethodNames(t *testing.T) {
	transport := &legacyTransport{baseURL: "https://addon.example.com"}

	url, err := transport.buildRequestURL(model.ResourcePath{Resource: "meta", Type: "movie", ID: "tt1234567"})
	require.NoError(t, err)
	require.Contains(t, url, "https://addon.example.com/q.json?b=")

	encoded := url[len("https://addon.example.com/q.json?b="):]
	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, "meta.get", decoded["method"])
	require.Equal(t, float64(1), decoded["id"])
	require.Equal(t, "2.0", decoded["jsonrpc"])
}

func TestBuildRequestURLStreamRequiresAParsableID(t *testing.T) {
	transport := &legacyTransport{baseURL: "https://addon.example.com"}
	_, err := transport.buildRequestURL(model.ResourcePath{Resource: "stream", Type: "movie", ID: "standalone"})
	require.Error(t, err)
}

func TestBuildRequestURLCatalogCarriesSkipAndGenreExtras(t *testing.T) {
	transport := &legacyTransport{baseURL: "https://addon.example.com"}
	path := model.ResourcePath{
		Resource: "catalog",
		Type:     "movie",
		ID:       "top",
		Extra: []model.ExtraValue{
			{Name: "genre", Value: "Action"},
			{Name: "skip", Value: "20"},
		},
	}
	url, err := transport.buildRequestURL(path)
	require.NoError(t, err)

	encoded := url[len("https://addon.example.com/q.json?b="):]
	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, "meta.find", decoded["method"])
	params := decoded["params"].([]interface{})[1].(map[string]interface{})
	require.Equal(t, float64(20), params["skip"])
	require.Nil(t, params["sort"])
	query := params["query"].(map[string]interface{})
	require.Equal(t, "Action", query["genre"])
}
