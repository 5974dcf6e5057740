package extractor

import (
	"context"
	"errors"

	"github.com/iconidentify/mediagrab/internal/domain"
)

// Extraction failures. The pipeline shows these texts to the requester.
var (
	ErrNoMetadata       = errors.New("no information found for this link, please check it")
	ErrNoIdentifier     = errors.New("could not determine the media ID")
	ErrEngine           = errors.New("could not download from this link, please check the URL")
	ErrFileTooLarge     = errors.New("file is larger than the allowed limit")
	ErrArtifactNotFound = errors.New("downloaded file not found")
)

// Engine resolves and downloads media for a URL.
type Engine interface {
	// Probe fetches metadata without downloading. A nil info with a nil
	// error means the engine found nothing for the URL.
	Probe(ctx context.Context, url string, job Job) (*MediaInfo, error)

	// Fetch downloads the media to job.OutputTemplate.
	Fetch(ctx context.Context, url string, job Job) error
}

// Job describes one engine invocation.
type Job struct {
	Mode           domain.Mode
	OutputTemplate string
	Options        Options
}

// MediaInfo is the subset of engine metadata the adapter needs.
type MediaInfo struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Ext      string  `json:"ext"`
	Duration float64 `json:"duration"`
}
