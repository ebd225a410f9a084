package model

import "encoding/base64"

// WatchedBitField is a bitset over the video ordering of a loaded meta
// item's videos list, round-trippable to a compact string stored inside
// LibraryItemState.Watched (§3).
type WatchedBitField struct {
	videoIDs []string
	bits     []bool
}

// NewWatchedBitField builds an all-unwatched bitfield for the given video
// ordering.
func NewWatchedBitField(videoIDs []string) WatchedBitField {
	return WatchedBitField{videoIDs: append([]string(nil), videoIDs...), bits: make([]bool, len(videoIDs))}
}

// DecodeWatchedBitField decodes a LibraryItemState.Watched string against a
// (possibly different, e.g. grown) video ordering (§4.7.7). Positions with
// no corresponding stored bit default to false; the two are correlated by
// index, not by video id, matching a simple positional bitfield.
func DecodeWatchedBitField(encoded *string, videoIDs []string) WatchedBitField {
	wbf := NewWatchedBitField(videoIDs)
	if encoded == nil || *encoded == "" {
		return wbf
	}
	raw, err := base64.StdEncoding.DecodeString(*encoded)
	if err != nil {
		return wbf
	}
	for i := range wbf.bits {
		byteIdx := i / 8
		if byteIdx >= len(raw) {
			break
		}
		wbf.bits[i] = raw[byteIdx]&(1<<uint(i%8)) != 0
	}
	return wbf
}

// Encode renders the bitfield back into the compact string stored in
// LibraryItemState.Watched.
func (w WatchedBitField) Encode() string {
	raw := make([]byte, (len(w.bits)+7)/8)
	for i, set := range w.bits {
		if set {
			raw[i/8] |= 1 << uint(i%8)
		}
	}
	return base64.StdEncoding.EncodeToString(raw)
}

// SetVideo marks a video watched/unwatched by id. No-op if the id isn't in
// this bitfield's ordering.
func (w *WatchedBitField) SetVideo(videoID string, watched bool) {
	for i, id := range w.videoIDs {
		if id == videoID {
			w.bits[i] = watched
			return
		}
	}
}

// IsWatched reports whether videoID is marked watched.
func (w WatchedBitField) IsWatched(videoID string) bool {
	for i, id := range w.videoIDs {
		if id == videoID {
			return w.bits[i]
		}
	}
	return false
}
