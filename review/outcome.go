package review

type OutcomeKind int

const (
	OutcomeRedirect OutcomeKind = iota
	OutcomeReject
)

// Outcome is the only thing a click can become: a redirect to the review
// page or a deliberate rejection. The HTTP handler is the single place
// translating it into a transport response.
type Outcome struct {
	Kind    OutcomeKind
	URL     string
	Message string
}

func RedirectOutcome(url string) Outcome {
	return Outcome{Kind: OutcomeRedirect, URL: url}
}

func RejectOutcome(message string) Outcome {
	return Outcome{Kind: OutcomeReject, Message: message}
}
