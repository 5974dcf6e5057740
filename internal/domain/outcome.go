package domain

// OutcomeKind tags the variant held by an Outcome.
type OutcomeKind string

const (
	OutcomeInline     OutcomeKind = "inline"
	OutcomeRemoteLink OutcomeKind = "remote_link"
	OutcomeFailure    OutcomeKind = "failure"
)

// Outcome is the result of one pipeline run. Exactly one of Artifact, Link
// or Err is meaningful, selected by Kind.
type Outcome struct {
	Kind     OutcomeKind
	Artifact *Artifact
	Link     string
	Err      error
}

// InlineFile builds an outcome for media sent straight into the chat.
func InlineFile(a *Artifact) Outcome {
	return Outcome{Kind: OutcomeInline, Artifact: a}
}

// RemoteLink builds an outcome for media handed out as a hosted link.
func RemoteLink(url string) Outcome {
	return Outcome{Kind: OutcomeRemoteLink, Link: url}
}

// Failure builds a failed outcome.
func Failure(err error) Outcome {
	return Outcome{Kind: OutcomeFailure, Err: err}
}

// Succeeded reports whether the outcome delivered media in any form.
func (o Outcome) Succeeded() bool {
	return o.Kind == OutcomeInline || o.Kind == OutcomeRemoteLink
}
