package domain

// Artifact is a downloaded media file living in a session directory.
// The pipeline that requested it owns it and removes it when the request ends.
type Artifact struct {
	Path     string
	Size     int64
	MediaID  string
	Title    string
	Duration float64 // seconds, 0 if unknown
}
