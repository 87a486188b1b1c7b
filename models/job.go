package models

// ProgressCancelled is the sentinel progress value reported after a stop
// request has been observed.
const ProgressCancelled = -1

// Snapshot is the pollable view of the current job run. All fields are
// plain values; readers get a copy and never share memory with the run.
type Snapshot struct {
	ChannelID          string  `json:"-"`
	ChannelName        string  `json:"channelName"`
	TotalVideos        int     `json:"totalVideos"`
	Progress           int     `json:"progress"`
	TranscriptsCount   int     `json:"transcriptsCount"`
	NoTranscriptsCount int     `json:"noTranscriptsCount"`
	ProcessTime        float64 `json:"processTime"`
	Running            bool    `json:"-"`
}

// Finished reports whether the run reached a terminal progress value.
func (s Snapshot) Finished() bool {
	return s.Progress == 100 || s.Progress == ProgressCancelled
}
