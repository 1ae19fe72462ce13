package model

// CheckIn is a single daily health questionnaire submission. Answers and
// Questions are stored as JSON text columns; Analysis stays nil until the
// analysis pipeline attaches a result.
type CheckIn struct {
	ID              string                 `json:"id"`
	UserID          string                 `json:"user_id"`
	Date            int64                  `json:"date"`
	Answers         map[string]interface{} `json:"answers"`
	Notes           string                 `json:"notes"`
	TopK            int                    `json:"topK"`
	ExplainMethod   string                 `json:"explainMethod"`
	UseWinsorize    bool                   `json:"useWinsorize"`
	ForceLocal      bool                   `json:"forceLocal"`
	Questions       []Question             `json:"questions,omitempty"`
	QuestionVersion string                 `json:"question_version"`
	Analysis        Document               `json:"llm_analysis,omitempty"`
}

// Question is one item of a generated check-in questionnaire.
type Question struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Type     string   `json:"type"`
	Options  []string `json:"options"`
	Required bool     `json:"required"`
	Category string   `json:"category"`
}

// FallbackQuestion is returned as a single-element list when question
// generation or parsing fails, so clients never render an empty list.
func FallbackQuestion() Question {
	return Question{
		ID:       "q_error",
		Question: "Error: Could not generate dynamic questions. Please use the default.",
		Type:     "scale",
		Options:  []string{},
		Required: false,
		Category: "error",
	}
}
