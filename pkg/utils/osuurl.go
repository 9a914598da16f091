package utils

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// BeatmapRef identifies a map on osu.ppy.sh. Either field may be zero when
// the URL only names the other.
type BeatmapRef struct {
	BeatmapID    int
	BeatmapSetID int
}

// ExtractBeatmapRef understands the old and new osu.ppy.sh link shapes:
//
//	/b/123, /beatmaps/123
//	/s/456, /beatmapsets/456, /beatmapsets/456#osu/123
func ExtractBeatmapRef(osuURL string) (BeatmapRef, error) {
	u, err := url.Parse(osuURL)
	if err != nil {
		return BeatmapRef{}, fmt.Errorf("invalid URL: %w", err)
	}
	if !IsOsuURL(osuURL) {
		return BeatmapRef{}, fmt.Errorf("not an osu.ppy.sh URL: %s", osuURL)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 {
		return BeatmapRef{}, fmt.Errorf("no beatmap ID found in URL: %s", osuURL)
	}
	id, err := strconv.Atoi(parts[1])
	if err != nil {
		return BeatmapRef{}, fmt.Errorf("invalid beatmap ID %q in URL: %s", parts[1], osuURL)
	}

	var ref BeatmapRef
	switch parts[0] {
	case "b", "beatmaps":
		ref.BeatmapID = id
	case "s", "beatmapsets":
		ref.BeatmapSetID = id
		// The fragment carries the difficulty: "#osu/123".
		if _, frag, ok := strings.Cut(u.Fragment, "/"); ok {
			if n, err := strconv.Atoi(frag); err == nil {
				ref.BeatmapID = n
			}
		}
	default:
		return BeatmapRef{}, fmt.Errorf("unable to extract beatmap ID from URL: %s", osuURL)
	}
	return ref, nil
}

func IsOsuURL(urlStr string) bool {
	u, err := url.Parse(urlStr)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Host)
	return host == "osu.ppy.sh" || host == "old.ppy.sh"
}
