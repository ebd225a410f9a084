package model

import (
	"encoding/json"
	"sort"
	"time"
)

// LibraryItemBehaviorHints mirrors the per-item manifest-style hints a
// library item can carry (§3).
type LibraryItemBehaviorHints struct {
	DefaultVideoID *string `json:"defaultVideoId,omitempty"`
}

// LibraryItemState is the playback-progress sub-record of a LibraryItem.
type LibraryItemState struct {
	LastWatched        *time.Time `json:"lastWatched,omitempty"`
	TimeWatched         uint64    `json:"timeWatched"`
	TimeOffset          uint64    `json:"timeOffset"`
	OverallTimeWatched  uint64    `json:"overallTimeWatched"`
	TimesWatched        uint32    `json:"timesWatched"`
	FlaggedWatched       uint32   `json:"flaggedWatched"`
	Duration            uint64    `json:"duration"`
	VideoID             *string   `json:"videoId,omitempty"`
	Watched             *string   `json:"watched,omitempty"`
	LastVideoReleased   *time.Time `json:"lastVidReleased,omitempty"`
	NoNotif             bool      `json:"noNotif"`
}

// LibraryItem is per-user metadata about a followed title (§3, GLOSSARY).
type LibraryItem struct {
	ID          string                   `json:"_id"`
	Name        string                   `json:"name"`
	Type        string                   `json:"type"`
	Poster      string                   `json:"poster,omitempty"`
	PosterShape PosterShape              `json:"posterShape,omitempty"`
	Removed     bool                     `json:"removed"`
	Temp        bool                     `json:"temp"`
	Ctime       *time.Time               `json:"_ctime,omitempty"`
	Mtime       time.Time                `json:"_mtime"`
	State       LibraryItemState         `json:"state"`
	BehaviorHints LibraryItemBehaviorHints `json:"behaviorHints"`
}

// ShouldSync reports whether this item participates in library sync (§4.6.1
// step 1): always unless removed, and even then if there's meaningful
// watch progress (more than a minute).
func (li LibraryItem) ShouldSync() bool {
	return !li.Removed || li.State.OverallTimeWatched > 60_000
}

// IsInContinueWatching mirrors the teacher-adjacent "continue watching"
// leaf model's filter, kept here since it's a pure LibraryItem predicate.
func (li LibraryItem) IsInContinueWatching() bool {
	return li.ShouldSync() && (!li.Removed || li.Temp) && li.State.TimeOffset > 0
}

// LibraryItemFromPreview synthesizes a transient (temp, removed) LibraryItem
// from a meta preview, used by MetaDetails' library_item overlay when the
// library has no entry for the meta (§4.7.6).
func LibraryItemFromPreview(preview MetaPreviewItem, now time.Time) LibraryItem {
	return LibraryItem{
		ID:          preview.ID,
		Name:        preview.Name,
		Type:        preview.Type,
		Poster:      preview.Poster,
		PosterShape: preview.PosterShape,
		Removed:     true,
		Temp:        true,
		Mtime:       now,
		BehaviorHints: LibraryItemBehaviorHints{
			DefaultVideoID: preview.BehaviorHints.DefaultVideoID,
		},
	}
}

// OverlayPreview returns a copy of li with display fields refreshed from a
// freshly loaded meta preview, preserving li's state/ctime/mtime/removed/temp
// (§4.7.6 "overlaying fields from the loaded meta preview when available").
func (li LibraryItem) OverlayPreview(preview MetaPreviewItem) LibraryItem {
	out := li
	out.Name = preview.Name
	out.Poster = preview.Poster
	out.PosterShape = preview.PosterShape
	out.BehaviorHints.DefaultVideoID = preview.BehaviorHints.DefaultVideoID
	return out
}

// LibraryBucket is { uid, items } plus a derived recent view (§3).
type LibraryBucket struct {
	UID   *string
	Items map[string]LibraryItem
}

// NewLibraryBucket builds a bucket from a uid and a flat item list, as used
// after login (§4.6.1) and when constructing from storage.
func NewLibraryBucket(uid *string, items []LibraryItem) LibraryBucket {
	b := LibraryBucket{UID: uid, Items: make(map[string]LibraryItem, len(items))}
	for _, it := range items {
		b.Items[it.ID] = it
	}
	return b
}

// Equal is a value-equality check used to decide whether a library mutation
// is a genuine change (Logout, CtxAuthResult in §4.6.1).
func (b LibraryBucket) Equal(other LibraryBucket) bool {
	if (b.UID == nil) != (other.UID == nil) {
		return false
	}
	if b.UID != nil && *b.UID != *other.UID {
		return false
	}
	if len(b.Items) != len(other.Items) {
		return false
	}
	for id, item := range b.Items {
		oItem, ok := other.Items[id]
		if !ok || item != oItem {
			return false
		}
	}
	return true
}

// MergeItems upserts items into the bucket in place (§4.6.1 storage helper).
func (b *LibraryBucket) MergeItems(items []LibraryItem) {
	if b.Items == nil {
		b.Items = make(map[string]LibraryItem, len(items))
	}
	for _, it := range items {
		b.Items[it.ID] = it
	}
}

// AreIDsInRecent reports whether every given id is already within the
// recent-N split, used to decide whether an update can skip rewriting the
// "other" storage key (§4.6.1 update_and_push_items_to_storage).
func (b LibraryBucket) AreIDsInRecent(ids []string, recentCount int) bool {
	recent, _ := b.SplitByRecent(recentCount)
	recentIDs := make(map[string]struct{}, len(recent))
	for _, it := range recent {
		recentIDs[it.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := recentIDs[id]; !ok {
			return false
		}
	}
	return true
}

// SplitByRecent partitions items into (recent <= recentCount by mtime desc,
// other), breaking ties on id to keep the split stable (§9 "Recent split").
func (b LibraryBucket) SplitByRecent(recentCount int) (recent []LibraryItem, other []LibraryItem) {
	all := make([]LibraryItem, 0, len(b.Items))
	for _, it := range b.Items {
		all = append(all, it)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].Mtime.Equal(all[j].Mtime) {
			return all[i].Mtime.After(all[j].Mtime)
		}
		return all[i].ID < all[j].ID
	})
	if len(all) <= recentCount {
		return all, nil
	}
	return all[:recentCount], all[recentCount:]
}

// StreamsItemKey identifies a remembered stream choice (§3 "StreamsBucket").
type StreamsItemKey struct {
	MetaID  string
	VideoID string
}

// StreamsItem is the value stored per key: the stream itself and the
// transport_url of the add-on that served it (§3).
type StreamsItem struct {
	Stream              StreamItem
	StreamTransportURL string
}

// StreamsBucket stores, per (meta_id, video_id), the last stream chosen
// (§3, GLOSSARY).
type StreamsBucket struct {
	Items map[StreamsItemKey]StreamsItem
}

// NewStreamsBucket returns an empty, ready-to-use bucket.
func NewStreamsBucket() StreamsBucket {
	return StreamsBucket{Items: make(map[StreamsItemKey]StreamsItem)}
}

// streamsBucketEntry is one flattened (key, value) pair, used because
// encoding/json can't marshal a map keyed by a struct (§3, demo snapshot).
type streamsBucketEntry struct {
	MetaID  string      `json:"metaId"`
	VideoID string      `json:"videoId"`
	Item    StreamsItem `json:"item"`
}

// MarshalJSON flattens Items into a list of entries.
func (b StreamsBucket) MarshalJSON() ([]byte, error) {
	entries := make([]streamsBucketEntry, 0, len(b.Items))
	for k, v := range b.Items {
		entries = append(entries, streamsBucketEntry{MetaID: k.MetaID, VideoID: k.VideoID, Item: v})
	}
	return json.Marshal(entries)
}

// UnmarshalJSON rebuilds Items from a list of entries.
func (b *StreamsBucket) UnmarshalJSON(data []byte) error {
	var entries []streamsBucketEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	b.Items = make(map[StreamsItemKey]StreamsItem, len(entries))
	for _, e := range entries {
		b.Items[StreamsItemKey{MetaID: e.MetaID, VideoID: e.VideoID}] = e.Item
	}
	return nil
}

// Auth holds the authenticated user's key and profile after login (§3).
type Auth struct {
	Key  string `json:"key"`
	User User   `json:"user"`
}

// User is the main-API user record.
type User struct {
	ID             string    `json:"_id"`
	Email          string    `json:"email"`
	FacebookID     *string   `json:"fbId,omitempty"`
	Avatar         *string   `json:"avatar,omitempty"`
	LastModified   time.Time `json:"lastModified"`
	DateRegistered time.Time `json:"dateRegistered"`
}

// Settings holds user-level app settings, opaque to the runtime core.
type Settings struct {
	InterfaceLanguage string `json:"interfaceLanguage,omitempty"`
	StreamingServerURL string `json:"streamingServerUrl,omitempty"`
}

// Profile is { auth, addons, settings } (§3).
type Profile struct {
	Auth     *Auth        `json:"auth"`
	Addons   []Descriptor `json:"addons"`
	Settings Settings     `json:"settings"`
}

// UID returns the authenticated user's id, or nil when logged out.
func (p Profile) UID() *string {
	if p.Auth == nil {
		return nil
	}
	id := p.Auth.User.ID
	return &id
}

// AuthKey returns the authenticated user's API key, or nil when logged out.
func (p Profile) AuthKey() *string {
	if p.Auth == nil {
		return nil
	}
	key := p.Auth.Key
	return &key
}
