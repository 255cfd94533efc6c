package api

import "time"

type SourceResponse struct {
	Content   string    `json:"content"`
	ChannelId string    `json:"channel_id"`
	UserId    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
	Score     float32   `json:"score"`
}

type AskResponse struct {
	Question string           `json:"question"`
	Answer   string           `json:"answer"`
	Sources  []SourceResponse `json:"sources"`
	Cached   bool             `json:"cached,omitempty"`
}

type SearchResponse struct {
	Matches []SourceResponse `json:"matches"`
}

type IngestResponse struct {
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors,omitempty"`
}

type SweepResponse struct {
	Processed int `json:"processed"`
}

type DMResponse struct {
	ChatId string `json:"chat_id"`
	Answer string `json:"answer"`
}

type ErrorResponse struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Bad Request"`
}

// requests---------------------

type AskRequest struct {
	Question  string `json:"question" validate:"required"`
	ChannelId string `json:"channel_id,omitempty"`
	After     string `json:"after,omitempty"`  //RFC3339
	Before    string `json:"before,omitempty"` //RFC3339
}

type IncomingMessage struct {
	Id          string    `json:"id" validate:"required"`
	Content     string    `json:"content" validate:"required"`
	Timestamp   time.Time `json:"timestamp"`
	UserId      string    `json:"user_id"`
	ChannelId   string    `json:"channel_id"`
	WorkspaceId string    `json:"workspace_id,omitempty"`
}

type AddMessagesRequest struct {
	Messages []IncomingMessage `json:"messages" validate:"required"`
}

type DMRequest struct {
	ChatId  string `json:"chat_id,omitempty"`
	Message string `json:"message" validate:"required"`
	Stream  bool   `json:"stream,omitempty"`
}
