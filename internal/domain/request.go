package domain

import (
	"strings"
	"time"
)

// RequestID is a unique identifier for a media request.
type RequestID string

// String returns the string representation of the RequestID.
func (id RequestID) String() string {
	return string(id)
}

// Mode selects what the requester wants back from a URL.
type Mode string

const (
	ModeVideo Mode = "video"
	ModeAudio Mode = "audio"
)

// String returns the string representation of the Mode.
func (m Mode) String() string {
	return string(m)
}

// Site is a supported site family together with the URL fragments that identify it.
type Site struct {
	Name      string
	Fragments []string
}

// Supported site families. Matching is a plain substring test on the raw URL.
var (
	SiteYouTube   = Site{Name: "YouTube", Fragments: []string{"youtube.com", "youtu.be"}}
	SiteTikTok    = Site{Name: "TikTok", Fragments: []string{"tiktok.com"}}
	SiteInstagram = Site{Name: "Instagram", Fragments: []string{"instagram.com"}}
	SiteFacebook  = Site{Name: "Facebook", Fragments: []string{"facebook.com"}}
	SitePinterest = Site{Name: "Pinterest", Fragments: []string{"pinterest.com", "pin.it"}}
)

// SupportedSites lists every site family the bot accepts, in match order.
var SupportedSites = []Site{SiteYouTube, SiteTikTok, SiteInstagram, SiteFacebook, SitePinterest}

// AudioSites lists the site families audio mode is available for.
var AudioSites = []Site{SiteYouTube}

// Matches reports whether url contains one of the site's fragments.
func (s Site) Matches(url string) bool {
	for _, f := range s.Fragments {
		if strings.Contains(url, f) {
			return true
		}
	}
	return false
}

// MatchSite returns the first supported site family that url belongs to.
func MatchSite(url string) (Site, bool) {
	for _, s := range SupportedSites {
		if s.Matches(url) {
			return s, true
		}
	}
	return Site{}, false
}

// SiteNames returns the display names of sites joined for user-facing text.
func SiteNames(sites []Site) string {
	names := make([]string, 0, len(sites))
	for _, s := range sites {
		names = append(names, s.Name)
	}
	return strings.Join(names, ", ")
}

// MediaRequest is a single download request received from a chat.
type MediaRequest struct {
	ID         RequestID
	URL        string
	Mode       Mode
	ChatID     int64
	MessageID  int
	Requester  string
	ReceivedAt time.Time
}

// Validate checks site support and the mode restriction.
// It never touches the network.
func (r MediaRequest) Validate() error {
	if strings.TrimSpace(r.URL) == "" {
		return NewError(KindValidation, "validate", ErrMissingURL)
	}
	if _, ok := MatchSite(r.URL); !ok {
		return NewError(KindValidation, "validate", ErrUnsupportedSite)
	}
	if r.Mode == ModeAudio {
		for _, s := range AudioSites {
			if s.Matches(r.URL) {
				return nil
			}
		}
		return NewError(KindValidation, "validate", ErrAudioNotSupported)
	}
	return nil
}
