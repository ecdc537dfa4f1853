package subtitle

import (
	"time"
)

// subtitle file as read from disk, never modified after Open
type File struct {
	Path    string
	Content string
}

// single SRT cue
type Cue struct {
	Index     int
	StartTime time.Duration
	EndTime   time.Duration
	Text      string
}

// represents supported subtitle formats
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
	FormatASS Format = "ass"
)
