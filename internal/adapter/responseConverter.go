package adapter

import (
	"time"

	"github.com/svemula/chatvector/internal/api"
	"github.com/svemula/chatvector/internal/domain/messageModel"
)

func ToSourceResponses(matches []messageModel.SearchMatch) []api.SourceResponse {
	sources := make([]api.SourceResponse, 0, len(matches))
	for _, m := range matches {
		sources = append(sources, api.SourceResponse{
			Content:   m.Content,
			ChannelId: m.ChannelId,
			UserId:    m.UserId,
			Timestamp: m.Timestamp,
			Score:     m.Score,
		})
	}
	return sources
}

func ToAskResponse(question string, answer messageModel.Answer) api.AskResponse {
	return api.AskResponse{
		Question: question,
		Answer:   answer.Text,
		Sources:  ToSourceResponses(answer.Sources),
		Cached:   answer.Cached,
	}
}

func ToIngestResponse(result messageModel.IngestionResult) api.IngestResponse {
	errs := make([]string, 0, len(result.Errors))
	for _, err := range result.Errors {
		errs = append(errs, err.Error())
	}
	return api.IngestResponse{
		Successful: result.Successful,
		Failed:     result.Failed,
		Errors:     errs,
	}
}

func ToMessage(in api.IncomingMessage) messageModel.Message {
	ts := in.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return messageModel.Message{
		Id:          in.Id,
		Content:     in.Content,
		Timestamp:   ts,
		UserId:      in.UserId,
		ChannelId:   in.ChannelId,
		WorkspaceId: in.WorkspaceId,
	}
}

func ToFilters(req api.AskRequest) messageModel.SearchFilters {
	filters := messageModel.SearchFilters{ChannelId: req.ChannelId}
	if t, err := time.Parse(time.RFC3339, req.After); err == nil {
		filters.After = t
	}
	if t, err := time.Parse(time.RFC3339, req.Before); err == nil {
		filters.Before = t
	}
	return filters
}

func BadRequest(message string, code int) api.ErrorResponse {
	return api.ErrorResponse{Code: code, Message: message}
}
