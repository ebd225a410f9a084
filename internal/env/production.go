package env

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stremio-core-go/runtime/internal/addon"
	"github.com/stremio-core-go/runtime/internal/model"
)

// StorageSchemaVersion guards against loading storage written by a newer,
// incompatible schema (§4.1 "StorageSchemaVersionDowngrade").
const StorageSchemaVersion = 1

// Options configures a Production environment, following the teacher's
// Options/DefaultOptions config pattern (config.go).
type Options struct {
	FetchTimeout time.Duration
	Logger       *zap.Logger
}

// DefaultOptions mirrors the teacher's DefaultOptions.
var DefaultOptions = Options{
	FetchTimeout: 15 * time.Second,
}

// Production is the concrete Environment used outside of tests: a real
// *http.Client, an in-process storage map (grounded on the teacher's
// pkg/cinemeta.InMemoryCache, generalized to arbitrary JSON blobs instead of
// a single Meta type), and the addon.Factory for transport selection.
type Production struct {
	httpClient *http.Client
	transports *addon.Factory
	logger     *zap.Logger

	mu      sync.RWMutex
	storage map[string][]byte
}

var _ Environment = (*Production)(nil)

// NewProduction builds a Production environment.
func NewProduction(opts Options) *Production {
	if opts.FetchTimeout == 0 {
		opts.FetchTimeout = DefaultOptions.FetchTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Production{
		httpClient: &http.Client{Timeout: opts.FetchTimeout},
		transports: addon.NewFactory(opts.FetchTimeout, opts.Logger),
		logger:     opts.Logger,
		storage:    make(map[string][]byte),
	}
}

func (p *Production) Now() time.Time { return time.Now().UTC() }

func (p *Production) Fetch(ctx context.Context, req FetchRequest, out interface{}) error {
	var bodyReader *bytes.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return model.SerdeError(err)
		}
		bodyReader = bytes.NewReader(payload)
	} else {
		bodyReader = bytes.NewReader(nil)
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, bodyReader)
	if err != nil {
		return model.FetchError(err)
	}
	for k, v := range req.Header {
		httpReq.Header.Set(k, v)
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	p.logger.Debug("env fetch", zap.String("method", method), zap.String("url", req.URL))
	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return model.FetchError(err)
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return model.SerdeError(err)
	}
	return nil
}

// storageEnvelope wraps every persisted value with the schema version it
// was written under, so a downgrade can be detected on read (§4.1, §7).
type storageEnvelope struct {
	Version int             `json:"version"`
	Value   json.RawMessage `json:"value"`
}

func (p *Production) GetStorage(_ context.Context, key string) ([]byte, bool, error) {
	p.mu.RLock()
	raw, ok := p.storage[key]
	p.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	var env storageEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, false, model.SerdeError(err)
	}
	if env.Version > StorageSchemaVersion {
		return nil, false, &model.EnvError{Kind: model.EnvErrStorageSchemaVersionDowngrade, Err: model.ErrStorageSchemaVersionDowngrade, Msg: model.ErrStorageSchemaVersionDowngrade.Error()}
	}
	return env.Value, true, nil
}

func (p *Production) SetStorage(_ context.Context, key string, value []byte) error {
	if value == nil {
		p.mu.Lock()
		delete(p.storage, key)
		p.mu.Unlock()
		return nil
	}
	raw, err := json.Marshal(storageEnvelope{Version: StorageSchemaVersion, Value: value})
	if err != nil {
		return model.SerdeError(err)
	}
	p.mu.Lock()
	p.storage[key] = raw
	p.mu.Unlock()
	return nil
}

func (p *Production) AddonTransport(transportURL string) addon.Transport {
	return p.transports.For(transportURL)
}

func (p *Production) FlushAnalytics() {
	// No analytics backend is wired in this runtime (§1 out-of-scope: "the
	// UI event encoding"); this is a deliberate no-op collaborator.
}

func (p *Production) RandomID() string {
	return uuid.NewString()
}

func (p *Production) Spawn(fn func()) {
	go fn()
}
