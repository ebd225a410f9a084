package addon

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/stremio-core-go/runtime/internal/model"
)

// manifestRequestParam is the base64 payload equivalent to
// {"params":[],"method":"meta","id":1,"jsonrpc":"2.0"} (§4.8).
const manifestRequestParam = "eyJwYXJhbXMiOltdLCJtZXRob2QiOiJtZXRhIiwiaWQiOjEsImpzb25ycGMiOiIyLjAifQ=="

const (
	imdbPrefix = "tt"
	ytPrefix   = "UC"
)

// legacyTransport implements Transport over the legacy q.json?b=<base64>
// JSON-RPC-2.0 protocol (§4.8).
type legacyTransport struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// jsonRPCEnvelope mirrors {result:T} | {error:{code,message}}.
type jsonRPCEnvelope struct {
	Result json.RawMessage   `json:"result"`
	Error  *model.JSONRPCError `json:"error"`
}

func (t *legacyTransport) Manifest(ctx context.Context) (model.Manifest, error) {
	reqURL := fmt.Sprintf("%s/q.json?b=%s", t.baseURL, manifestRequestParam)
	var m model.Manifest
	if err := t.fetchEnvelope(ctx, reqURL, &m); err != nil {
		return model.Manifest{}, err
	}
	return m, nil
}

func (t *legacyTransport) Resource(ctx context.Context, path model.ResourcePath) (ResourceResponse, error) {
	reqURL, err := t.buildRequestURL(path)
	if err != nil {
		return ResourceResponse{}, err
	}
	switch path.Resource {
	case "catalog":
		var metas []model.MetaPreviewItem
		if err := t.fetchEnvelope(ctx, reqURL, &metas); err != nil {
			return ResourceResponse{}, err
		}
		return ResourceResponse{Metas: metas}, nil
	case "meta":
		var meta model.MetaItem
		if err := t.fetchEnvelope(ctx, reqURL, &meta); err != nil {
			return ResourceResponse{}, err
		}
		return ResourceResponse{Meta: &meta}, nil
	case "stream":
		var streams []model.StreamItem
		if err := t.fetchEnvelope(ctx, reqURL, &streams); err != nil {
			return ResourceResponse{}, err
		}
		return ResourceResponse{Streams: streams}, nil
	case "subtitles":
		var result struct {
			ID  string               `json:"id"`
			All []model.SubtitleItem `json:"all"`
		}
		if err := t.fetchEnvelope(ctx, reqURL, &result); err != nil {
			return ResourceResponse{}, err
		}
		return ResourceResponse{Subtitles: result.All}, nil
	default:
		return ResourceResponse{}, model.ErrLegacyUnsupportedResource
	}
}

// buildRequestURL encodes a resource path into the legacy q.json?b=...
// request (§4.8).
func (t *legacyTransport) buildRequestURL(path model.ResourcePath) (string, error) {
	var qJSON map[string]interface{}
	switch path.Resource {
	case "catalog":
		query := map[string]interface{}{"type": path.Type}
		if genre, ok := path.GetExtraFirstValue("genre"); ok {
			query["genre"] = genre
		}
		var sort interface{}
		if path.ID != "top" {
			sort = map[string]interface{}{
				path.ID:      -1,
				"popularity": -1,
			}
		}
		skip := 0
		if skipStr, ok := path.GetExtraFirstValue("skip"); ok {
			skip = parseIntDefault(skipStr, 0)
		}
		qJSON = buildJSONRPC("meta.find", map[string]interface{}{
			"query": query,
			"limit": 100,
			"sort":  sort,
			"skip":  skip,
		})
	case "meta":
		qJSON = buildJSONRPC("meta.get", map[string]interface{}{"query": queryFromID(path.ID)})
	case "stream":
		query, ok := queryFromID(path.ID).(map[string]interface{})
		if !ok {
			return "", model.NewAddonTransportError("legacy: stream request without a valid id")
		}
		query["type"] = path.Type
		qJSON = buildJSONRPC("stream.find", map[string]interface{}{"query": query})
	case "subtitles":
		qJSON = buildJSONRPC("subtitles.find", map[string]interface{}{
			"query": map[string]interface{}{"itemHash": path.ID},
		})
	default:
		return "", model.ErrLegacyUnsupportedRequest
	}

	body, err := json.Marshal(qJSON)
	if err != nil {
		return "", model.SerdeError(err)
	}
	// Standard (not URL-safe) base64 is deliberate: it preserves
	// compatibility with historical servers expecting "+/=" (§4.8, §9).
	encoded := base64.StdEncoding.EncodeToString(body)
	return fmt.Sprintf("%s/q.json?b=%s", t.baseURL, encoded), nil
}

func buildJSONRPC(method string, params map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"id":      1,
		"jsonrpc": "2.0",
		"method":  method,
		"params":  []interface{}{nil, params},
	}
}

// queryFromID implements the §4.8 query-construction laws.
func queryFromID(id string) interface{} {
	parts := strings.Split(id, ":")
	if strings.HasPrefix(id, imdbPrefix) {
		if len(parts) == 3 {
			season, err1 := strconv.ParseUint(parts[1], 10, 16)
			if err1 != nil {
				season = 1
			}
			episode, err2 := strconv.ParseUint(parts[2], 10, 16)
			if err2 != nil {
				episode = 1
			}
			return map[string]interface{}{
				"imdb_id": parts[0],
				"season":  int(season),
				"episode": int(episode),
			}
		}
		return map[string]interface{}{"imdb_id": parts[0]}
	}
	if strings.HasPrefix(id, ytPrefix) {
		if len(parts) == 2 {
			return map[string]interface{}{"yt_id": parts[0], "video_id": parts[1]}
		}
		return map[string]interface{}{"yt_id": parts[0]}
	}
	if len(parts) == 3 {
		return map[string]interface{}{parts[0]: parts[1], "video_id": parts[2]}
	}
	if len(parts) == 2 {
		return map[string]interface{}{parts[0]: parts[1]}
	}
	return nil
}

func (t *legacyTransport) fetchEnvelope(ctx context.Context, reqURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return model.FetchError(err)
	}
	t.logger.Debug("fetching legacy addon resource", zap.String("url", reqURL))
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return model.FetchError(err)
	}
	defer resp.Body.Close()

	var env jsonRPCEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return model.SerdeError(err)
	}
	if env.Error != nil {
		return *env.Error
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return model.SerdeError(err)
	}
	return nil
}
