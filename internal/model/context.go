package model

// UserContext is the bounded window of recent history assembled before each
// generation call. It is built fresh per request and never persisted or
// cached; absent history yields empty slices.
type UserContext struct {
	RecentCheckins      []CheckIn              `json:"recent_checkins"`
	HealthHistory       map[string]interface{} `json:"health_history"`
	Concerns            []string               `json:"concerns"`
	ConversationHistory []string               `json:"conversation_history"`
}
