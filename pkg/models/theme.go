package models

// ThemeKind distinguishes openings from endings.
type ThemeKind string

const (
	ThemeOpening ThemeKind = "op"
	ThemeEnding  ThemeKind = "ed"
)

// ThemeAsset is one OP/ED song with its playable media.
//
// AudioURL and VideoURL are kept separate because the theme game exposes
// only the audio at stage 1; the video usually shows the answer.
type ThemeAsset struct {
	Slug     string `json:"slug"` // e.g. "OP1", "ED2"
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	AudioURL string `json:"audio_url"`
	VideoURL string `json:"video_url"`
}
