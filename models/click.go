package models

// ClickRequest carries the query parameters of an inbound review-link
// click. OrderID is zero when the parameter is missing or malformed.
type ClickRequest struct {
	Action  string `json:"action"`
	OrderID uint64 `json:"order_id"`
	Token   string `json:"token"`
}

// ReviewLink is the tracked link embedded in the order-completion email.
type ReviewLink struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}
