package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/svemula/chatvector/internal/adapter"
	"github.com/svemula/chatvector/internal/adapter/utils"
	"github.com/svemula/chatvector/internal/api"
	"github.com/svemula/chatvector/internal/config"
	"github.com/svemula/chatvector/internal/domain/messageModel"
)

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// AskHandler answers a natural-language question over the vectorized history.
func AskHandler(w http.ResponseWriter, request *http.Request) {
	if !validateContext(request.Context()) {
		logRH.Warn("Invalid Context by request ", request.RemoteAddr)
		return
	}

	var requestData api.AskRequest
	defer closeBody(request.Body)
	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil || requestData.Question == "" {
		logRH.Warn("Bad Ask Request: ", "error:", err)
		WriteErrorResponse(w, http.StatusBadRequest, "question is required")
		return
	}

	answer, err := handlerInstance.service.Answer(request.Context(), requestData.Question, adapter.ToFilters(requestData))
	if err != nil {
		// retrieval-side failure; the chain itself never errors
		logRH.Error("Answer failed", "error", err)
		WriteErrorResponse(w, http.StatusBadGateway, "Could not answer right now")
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToAskResponse(requestData.Question, answer))
}

// SearchHandler runs plain semantic retrieval without the completion step.
func SearchHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "q is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	matches, err := handlerInstance.service.SearchMessages(r.Context(), query, limit)
	if err != nil {
		logRH.Error("Search failed", "error", err)
		WriteErrorResponse(w, http.StatusBadGateway, "Search unavailable")
		return
	}
	writeJsonResponse(w, http.StatusOK, api.SearchResponse{Matches: adapter.ToSourceResponses(matches)})
}

// AddMessagesHandler ingests a batch of messages directly.
func AddMessagesHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	var requestData api.AddMessagesRequest
	defer closeBody(r.Body)
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || len(requestData.Messages) == 0 {
		WriteErrorResponse(w, http.StatusBadRequest, "messages are required")
		return
	}
	for _, m := range requestData.Messages {
		if m.Id == "" || m.Content == "" {
			WriteErrorResponse(w, http.StatusBadRequest, "every message needs an id and content")
			return
		}
	}

	messages := make([]messageModel.Message, 0, len(requestData.Messages))
	for _, in := range requestData.Messages {
		messages = append(messages, adapter.ToMessage(in))
	}

	result := handlerInstance.service.AddMessages(r.Context(), messages)
	writeJsonResponse(w, http.StatusOK, adapter.ToIngestResponse(result))
}

// SweepHandler triggers one pending-message sweep, the same entry point the
// scheduler uses.
func SweepHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	processed, err := handlerInstance.service.ProcessPendingMessages(r.Context())
	if err != nil {
		logRH.Error("Sweep failed", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Sweep failed")
		return
	}
	writeJsonResponse(w, http.StatusOK, api.SweepResponse{Processed: processed})
}

// DMHandler drives the direct-message assistant. With "stream": true the
// answer tokens go out as server-sent events and the full answer closes the
// stream; otherwise the reply is one JSON document.
func DMHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	var requestData api.DMRequest
	defer closeBody(r.Body)
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || requestData.Message == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "message is required")
		return
	}

	chatId := requestData.ChatId
	if chatId == "" {
		chatId = utils.GetNewUUID()
	}

	history, err := handlerInstance.history.History(r.Context(), chatId, config.DMHistoryWindow)
	if err != nil {
		logRH.Error("Failed to load DM history", "error", err)
		history = nil //answer without history rather than failing the DM
	}

	var answer string
	if requestData.Stream {
		answer = streamDMAnswer(w, r, requestData.Message, history)
	} else {
		answer = handlerInstance.service.ProcessDMMessage(r.Context(), requestData.Message, history, nil)
		writeJsonResponse(w, http.StatusOK, api.DMResponse{ChatId: chatId, Answer: answer})
	}

	saveDMTurns(r, chatId, requestData.Message, answer)
}

func streamDMAnswer(w http.ResponseWriter, r *http.Request, message string, history []messageModel.ConversationTurn) string {
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteErrorResponse(w, http.StatusInternalServerError, "Streaming unsupported")
		return ""
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	answer := handlerInstance.service.ProcessDMMessage(r.Context(), message, history, func(token string) {
		writeSSEData(w, token)
		flusher.Flush()
	})

	fmt.Fprint(w, "event: done\ndata: \n\n")
	flusher.Flush()
	return answer
}

// writeSSEData frames one token as a server-sent event. A newline inside the
// token would terminate the event early, so each line gets its own data field.
func writeSSEData(w io.Writer, token string) {
	for _, line := range strings.Split(token, "\n") {
		fmt.Fprintf(w, "data: %s\n", line)
	}
	fmt.Fprint(w, "\n")
}

func saveDMTurns(r *http.Request, chatId string, question string, answer string) {
	now := time.Now().UTC()
	userTurn := messageModel.ConversationTurn{Role: messageModel.RoleUser, Content: question, Timestamp: now}
	assistantTurn := messageModel.ConversationTurn{Role: messageModel.RoleAssistant, Content: answer, Timestamp: now}

	if err := handlerInstance.history.AppendTurn(r.Context(), chatId, userTurn); err != nil {
		logRH.Error("Failed to save DM turn", "error", err)
		return
	}
	if err := handlerInstance.history.AppendTurn(r.Context(), chatId, assistantTurn); err != nil {
		logRH.Error("Failed to save DM turn", "error", err)
	}
}

func closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		logRH.Error("Couldn't close the request body reader :", "error", err)
	}
}
