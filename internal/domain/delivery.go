package domain

import "time"

// Delivery is the record kept for a finished request.
type Delivery struct {
	RequestID  RequestID   `json:"request_id"`
	ChatID     int64       `json:"chat_id"`
	URL        string      `json:"url"`
	Mode       Mode        `json:"mode"`
	Outcome    OutcomeKind `json:"outcome"`
	ErrorKind  ErrorKind   `json:"error_kind,omitempty"`
	Size       int64       `json:"size_bytes,omitempty"`
	Link       string      `json:"link,omitempty"`
	Error      string      `json:"error,omitempty"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at"`
}

// NewDelivery builds the record for req from its outcome.
func NewDelivery(req MediaRequest, out Outcome, startedAt time.Time) *Delivery {
	d := &Delivery{
		RequestID:  req.ID,
		ChatID:     req.ChatID,
		URL:        req.URL,
		Mode:       req.Mode,
		Outcome:    out.Kind,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
	}
	switch out.Kind {
	case OutcomeInline:
		if out.Artifact != nil {
			d.Size = out.Artifact.Size
		}
	case OutcomeRemoteLink:
		d.Link = out.Link
	case OutcomeFailure:
		d.ErrorKind = KindOf(out.Err)
		if out.Err != nil {
			d.Error = out.Err.Error()
		}
	}
	return d
}

// Duration returns how long the request took.
func (d *Delivery) Duration() time.Duration {
	return d.FinishedAt.Sub(d.StartedAt)
}
