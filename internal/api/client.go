package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/stremio-core-go/runtime/internal/model"
)

// ClientOptions configure the Main API client, grounded on the teacher's
// cinemeta.ClientOptions shape.
type ClientOptions struct {
	// BaseURL for the main API. Default "https://api.strem.io".
	BaseURL string
	// Timeout for requests.
	Timeout time.Duration
}

// DefaultClientOptions mirrors the teacher's DefaultClientOpts.
var DefaultClientOptions = ClientOptions{
	BaseURL: "https://api.strem.io",
	Timeout: 10 * time.Second,
}

// Client is the Main API / Datastore client (§6).
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new Main API client.
func NewClient(opts ClientOptions, logger *zap.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultClientOptions.BaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultClientOptions.Timeout
	}
	return &Client{
		baseURL:    opts.BaseURL,
		httpClient: &http.Client{Timeout: opts.Timeout},
		logger:     logger,
	}
}

// envelope mirrors the {result:T} | {error:{code,message}} shape (§6, §4.8).
type envelope struct {
	Result json.RawMessage `json:"result"`
	Error  *model.APIError `json:"error"`
}

// call POSTs body (which must carry its own "type" field) to
// /api/<method> and decodes the result into out.
func (c *Client) call(ctx context.Context, method Method, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return model.SerdeError(err)
	}
	url := fmt.Sprintf("%s/api/%s", c.baseURL, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return model.FetchError(err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("calling main API", zap.String("method", string(method)))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.FetchError(err)
	}
	defer resp.Body.Close()

	var env envelope
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

// Login performs the Login API call (§6).
func (c *Client) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	var out AuthResponse
	err := c.call(ctx, MethodLogin, LoginRequest{Type: MethodLogin, Email: email, Password: password}, &out)
	return out, err
}

// Register performs the Register API call (§6).
func (c *Client) Register(ctx context.Context, email, password string) (AuthResponse, error) {
	var out AuthResponse
	err := c.call(ctx, MethodRegister, RegisterRequest{Type: MethodRegister, Email: email, Password: password}, &out)
	return out, err
}

// Logout performs the Logout API call (§6).
func (c *Client) Logout(ctx context.Context, authKey string) error {
	return c.call(ctx, MethodLogout, struct {
		Type    Method `json:"type"`
		AuthKey string `json:"authKey"`
	}{MethodLogout, authKey}, nil)
}

// AddonCollectionGet fetches the remote addon collection (§6).
func (c *Client) AddonCollectionGet(ctx context.Context, authKey string) ([]model.Descriptor, error) {
	var out AddonCollectionGetResponse
	err := c.call(ctx, MethodAddonCollectionGet, AddonCollectionGetRequest{Type: MethodAddonCollectionGet, AuthKey: authKey}, &out)
	return out.Addons, err
}

// AddonCollectionSet pushes a new addon collection. Exercised by the
// "Install-with-user" scenario (§8): exactly one outbound POST to
// /api/AddonCollectionSet with body {"type":"AddonCollectionSet",
// "authKey":..., "addons":[...]}.
func (c *Client) AddonCollectionSet(ctx context.Context, authKey string, addons []model.Descriptor) error {
	return c.call(ctx, MethodAddonCollectionSet, AddonCollectionSetRequest{
		Type:    MethodAddonCollectionSet,
		AuthKey: authKey,
		Addons:  addons,
	}, nil)
}

// datastoreBody is the wire body for all three datastore commands; only the
// field matching the populated DatastoreCommand variant is marshaled.
type datastoreBody struct {
	Type       Method   `json:"type"`
	AuthKey    string   `json:"authKey"`
	Collection string   `json:"collection"`
	IDs        []string `json:"ids,omitempty"`
	All        *bool    `json:"all,omitempty"`
	Changes    interface{} `json:"changes,omitempty"`
}

// DatastoreMeta performs the Meta{} command: fetch remote (id, mtime) pairs
// (§4.6.1 step 2).
func (c *Client) DatastoreMeta(ctx context.Context, req DatastoreRequest) ([]LibraryItemModified, error) {
	var raw []json.RawMessage
	err := c.call(ctx, MethodDatastoreMeta, datastoreBody{
		Type:       MethodDatastoreMeta,
		AuthKey:    req.AuthKey,
		Collection: req.Collection,
	}, &raw)
	if err != nil {
		return nil, err
	}
	out := make([]LibraryItemModified, 0, len(raw))
	for _, r := range raw {
		var pair [2]json.RawMessage
		if err := json.Unmarshal(r, &pair); err != nil {
			return nil, model.SerdeError(err)
		}
		var id string
		var mtime time.Time
		if err := json.Unmarshal(pair[0], &id); err != nil {
			return nil, model.SerdeError(err)
		}
		if err := json.Unmarshal(pair[1], &mtime); err != nil {
			return nil, model.SerdeError(err)
		}
		out = append(out, LibraryItemModified{ID: id, Mtime: mtime})
	}
	return out, nil
}

// DatastoreGet performs the Get{ids, all} command (§4.6.1 step 6).
func (c *Client) DatastoreGet(ctx context.Context, req DatastoreRequest) ([]model.LibraryItem, error) {
	all := req.Command.Get.All
	var out []model.LibraryItem
	err := c.call(ctx, MethodDatastoreGet, datastoreBody{
		Type:       MethodDatastoreGet,
		AuthKey:    req.AuthKey,
		Collection: req.Collection,
		IDs:        req.Command.Get.IDs,
		All:        &all,
	}, &out)
	return out, err
}

// DatastorePut performs the Put{changes} command (§4.6.1 step 5).
func (c *Client) DatastorePut(ctx context.Context, req DatastoreRequest) error {
	return c.call(ctx, MethodDatastorePut, datastoreBody{
		Type:       MethodDatastorePut,
		AuthKey:    req.AuthKey,
		Collection: req.Collection,
		Changes:    req.Command.Put.Changes,
	}, nil)
}
