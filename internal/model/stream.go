package model

// StreamBehaviorHints carries per-stream flags, including the binge group
// used by the suggested-stream heuristic (§4.7.5, GLOSSARY "Binge group").
type StreamBehaviorHints struct {
	BingeGroup   string `json:"bingeGroup,omitempty"`
	NotWebReady  bool   `json:"notWebReady,omitempty"`
}

// StreamItem represents a stream for a MetaItem video (§3).
// See https://github.com/Stremio/stremio-addon-sdk/blob/f6f1f2a8b627b9d4f2c62b003b251d98adadbebe/docs/api/responses/stream.md
type StreamItem struct {
	URL         string `json:"url,omitempty"`
	YoutubeID   string `json:"ytId,omitempty"`
	InfoHash    string `json:"infoHash,omitempty"`
	ExternalURL string `json:"externalUrl,omitempty"`

	Title     string `json:"title,omitempty"`
	Name      string `json:"name,omitempty"`
	FileIndex uint8  `json:"fileIdx,omitempty"`

	BehaviorHints StreamBehaviorHints `json:"behaviorHints,omitempty"`
}

// Equal is value equality over the fields that identify a stream as "the
// same stream", used by the suggested-stream heuristic's exact-match check
// (§4.7.5).
func (s StreamItem) Equal(other StreamItem) bool {
	return s.URL == other.URL &&
		s.YoutubeID == other.YoutubeID &&
		s.InfoHash == other.InfoHash &&
		s.ExternalURL == other.ExternalURL &&
		s.FileIndex == other.FileIndex
}

// YoutubeStream synthesizes a single stream for a YouTube video id, used
// when a video has no inline streams but its id is a YouTube id (§4.7.3).
func YoutubeStream(videoID string) (StreamItem, bool) {
	if len(videoID) < 2 || videoID[:2] != "UC" {
		return StreamItem{}, false
	}
	return StreamItem{YoutubeID: videoID}, true
}

// SubtitleItem represents a subtitles resource (§6 "subtitles→subtitles").
// See https://github.com/Stremio/stremio-addon-sdk/blob/f6f1f2a8b627b9d4f2c62b003b251d98adadbebe/docs/api/responses/subtitles.md
type SubtitleItem struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	Lang string `json:"lang"`
}
