package domain

import "time"

// Exchange is one answered question stored in a user's assistant history.
type Exchange struct {
	ID           int64         `json:"id"`
	UserID       string        `json:"user_id"`
	Question     string        `json:"question"`
	Answer       string        `json:"answer"`
	RelevantDocs []RelevantDoc `json:"relevant_docs"`
	Confidence   Confidence    `json:"confidence"`
	CreatedAt    time.Time     `json:"created_at"`
}

type HistoryPage struct {
	Exchanges []Exchange `json:"conversations"`
	Page      int        `json:"page"`
	Limit     int        `json:"limit"`
	Total     int        `json:"total"`
	Pages     int        `json:"pages"`
}

type AskResult struct {
	Question     string        `json:"question"`
	Answer       string        `json:"answer"`
	RelevantDocs []RelevantDoc `json:"relevant_docs"`
	Confidence   Confidence    `json:"confidence"`
	Timestamp    time.Time     `json:"timestamp"`
}
