package scanner

type Kind string

const (
	KindCurly     Kind = "curly"
	KindSquare    Kind = "square"
	KindMalformed Kind = "malformed"
)

type IssueKind string

const (
	IssueMalformedRemoved IssueKind = "malformed_removed"
	IssueEmptyToken       IssueKind = "empty_token"
)

// Token is a single placeholder occurrence found in document text.
// Start and End are byte offsets into the scanned text, Start < End.
type Token struct {
	Raw   string `json:"raw"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Kind  Kind   `json:"kind"`
	Name  string `json:"name,omitempty"`
}

// Issue records a token that was dropped during normalization instead of
// being handed to resolution.
type Issue struct {
	Kind    IssueKind `json:"kind"`
	Excerpt string    `json:"token_excerpt"`
}
