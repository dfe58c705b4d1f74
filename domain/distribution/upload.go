package distribution

// ObjectHandle identifies an uploaded object within a backend
type ObjectHandle struct {
	Backend string // Name of the backend that stored the object
	Bucket  string // Bucket or folder the object lives in
	Key     string // Object key (the uploaded filename)
	ID      string // Backend-specific identifier, e.g. a Drive file ID
}

// MimeTypeMP3 is the content type of uploaded audio
const MimeTypeMP3 = "audio/mpeg"
