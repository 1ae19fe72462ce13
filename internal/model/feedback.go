package model

type Feedback struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	Feedback string `json:"feedback"`
	Ctime    int64  `json:"created_at"`
}
