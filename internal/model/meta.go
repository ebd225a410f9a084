package model

import (
	"encoding/json"
	"time"
)

// PosterShape is the aspect-ratio hint for a poster image.
type PosterShape string

const (
	PosterShapeSquare    PosterShape = "square"
	PosterShapeLandscape PosterShape = "landscape"
	PosterShapePoster    PosterShape = "poster"
)

// MetaItemBehaviorHints carries per-item behavior flags (§3, §4.7).
type MetaItemBehaviorHints struct {
	DefaultVideoID  *string `json:"defaultVideoId,omitempty"`
	FeaturedVideoID *string `json:"featuredVideoId,omitempty"`
}

// MetaPreviewItem is meant to be used within catalog responses and as the
// basis for a synthesized LibraryItem (§4.6.3, §4.7.6).
// See https://github.com/Stremio/stremio-addon-sdk/blob/f6f1f2a8b627b9d4f2c62b003b251d98adadbebe/docs/api/responses/meta.md#meta-preview-object
type MetaPreviewItem struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Name   string `json:"name"`
	Poster string `json:"poster"`

	PosterShape   PosterShape           `json:"posterShape,omitempty"`
	Genres        []string              `json:"genres,omitempty"`
	Description   string                `json:"description,omitempty"`
	ReleaseInfo   string                `json:"releaseInfo,omitempty"`
	Runtime       string                `json:"runtime,omitempty"`
	Released      *time.Time            `json:"released,omitempty"`
	Trailers      []StreamItem          `json:"trailers,omitempty"`
	BehaviorHints MetaItemBehaviorHints `json:"behaviorHints,omitempty"`
}

// MetaItem represents a full meta item returned for a "meta" resource
// request (§3). It carries its preview fields nested under Preview, since
// several derivations (selected_override, library_item synthesis, see §4.7)
// only ever need the preview subset.
// See https://github.com/Stremio/stremio-addon-sdk/blob/f6f1f2a8b627b9d4f2c62b003b251d98adadbebe/docs/api/responses/meta.md
type MetaItem struct {
	Preview MetaPreviewItem `json:"-"`

	Background string         `json:"background,omitempty"`
	Logo       string         `json:"logo,omitempty"`
	Videos     []VideoItem    `json:"videos,omitempty"`
	Links      []MetaLinkItem `json:"links,omitempty"`
}

// metaItemWire is the JSON shape exchanged with add-ons: a flat object that
// combines the preview fields with the detail fields, matching the teacher's
// flat MetaItem wire struct.
type metaItemWire struct {
	ID          string                `json:"id"`
	Type        string                `json:"type"`
	Name        string                `json:"name"`
	Poster      string                `json:"poster,omitempty"`
	PosterShape PosterShape           `json:"posterShape,omitempty"`
	Genres      []string              `json:"genres,omitempty"`
	Background  string                `json:"background,omitempty"`
	Logo        string                `json:"logo,omitempty"`
	Description string                `json:"description,omitempty"`
	ReleaseInfo string                `json:"releaseInfo,omitempty"`
	Runtime     string                `json:"runtime,omitempty"`
	Released    *time.Time            `json:"released,omitempty"`
	Videos      []VideoItem           `json:"videos,omitempty"`
	Links       []MetaLinkItem        `json:"links,omitempty"`
	Trailers    []StreamItem          `json:"trailers,omitempty"`
	BehaviorHints MetaItemBehaviorHints `json:"behaviorHints,omitempty"`
}

// MarshalJSON flattens Preview back into the wire shape.
func (m MetaItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(metaItemWire{
		ID:            m.Preview.ID,
		Type:          m.Preview.Type,
		Name:          m.Preview.Name,
		Poster:        m.Preview.Poster,
		PosterShape:   m.Preview.PosterShape,
		Genres:        m.Preview.Genres,
		Background:    m.Background,
		Logo:          m.Logo,
		Description:   m.Preview.Description,
		ReleaseInfo:   m.Preview.ReleaseInfo,
		Runtime:       m.Preview.Runtime,
		Released:      m.Preview.Released,
		Videos:        m.Videos,
		Links:         m.Links,
		Trailers:      m.Preview.Trailers,
		BehaviorHints: m.Preview.BehaviorHints,
	})
}

// UnmarshalJSON splits the flat wire shape into Preview + detail fields.
func (m *MetaItem) UnmarshalJSON(data []byte) error {
	var w metaItemWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	m.Preview = MetaPreviewItem{
		ID:            w.ID,
		Type:          w.Type,
		Name:          w.Name,
		Poster:        w.Poster,
		PosterShape:   w.PosterShape,
		Genres:        w.Genres,
		Description:   w.Description,
		ReleaseInfo:   w.ReleaseInfo,
		Runtime:       w.Runtime,
		Released:      w.Released,
		Trailers:      w.Trailers,
		BehaviorHints: w.BehaviorHints,
	}
	m.Background = w.Background
	m.Logo = w.Logo
	m.Videos = w.Videos
	m.Links = w.Links
	return nil
}

// MetaLinkItem links to a page within the UI (genres, director, cast, ...).
type MetaLinkItem struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	URL      string `json:"url"`
}

// VideoItem is one entry of a series' videos list (§3 "watched bitfield"
// ordering is derived from this list).
type VideoItem struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Released time.Time `json:"released"`

	Thumbnail string       `json:"thumbnail,omitempty"`
	Streams   []StreamItem `json:"streams,omitempty"`
	Season    *int         `json:"season,omitempty"`
	Episode   *int         `json:"episode,omitempty"`
	Overview  string       `json:"overview,omitempty"`
}
