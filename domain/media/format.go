package media

// StreamFormat describes one stream offered for a video
type StreamFormat struct {
	Itag         int
	URL          string // Source stream location
	MimeType     string
	QualityLabel string
	AudioOnly    bool
	AudioBitrate int // Bits per second
}

// StreamInfo is the metadata returned by a StreamResolver
type StreamInfo struct {
	ID      string
	Title   string
	Author  string
	Formats []StreamFormat
}

// Quality selects which end of the audio bitrate range to pick
type Quality string

const (
	HighestAudio Quality = "highestaudio"
	LowestAudio  Quality = "lowestaudio"
)

// Filter restricts the candidate formats
type Filter string

const (
	AudioOnly Filter = "audioonly"
	AnyFormat Filter = ""
)

// ChooseOptions controls ChooseFormat
type ChooseOptions struct {
	Quality Quality
	Filter  Filter
}

// ChooseFormat picks a format according to opts.
// Ties keep the earliest format in the list. It returns false when no format passes the filter.
func ChooseFormat(formats []StreamFormat, opts ChooseOptions) (StreamFormat, bool) {
	var (
		best  StreamFormat
		found bool
	)

	for _, f := range formats {
		if opts.Filter == AudioOnly && !f.AudioOnly {
			continue
		}
		if !found || better(f, best, opts.Quality) {
			best = f
			found = true
		}
	}

	return best, found
}

func better(candidate, current StreamFormat, q Quality) bool {
	if q == LowestAudio {
		return candidate.AudioBitrate < current.AudioBitrate
	}
	return candidate.AudioBitrate > current.AudioBitrate
}
