package model

// ChatTurn is one user message plus the generated response. Rows are
// append-only; Context snapshots the assembled user context as JSON text.
type ChatTurn struct {
	ID         string  `json:"id"`
	UserID     string  `json:"user_id"`
	Message    string  `json:"message"`
	Response   string  `json:"response"`
	Context    string  `json:"context,omitempty"`
	Confidence float64 `json:"confidence_score"`
	Ctime      int64   `json:"created_at"`
}
