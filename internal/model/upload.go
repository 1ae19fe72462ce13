package model

type Upload struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	Filename string `json:"filename"`
	FileKey  string `json:"file_key,omitempty"`
	Ctime    int64  `json:"created_at"`
}
