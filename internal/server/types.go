package server

import (
	"bytes"
	"encoding/json"
	"strings"
)

// chatCompletionRequest is the OpenAI-compatible body the voice platform
// posts for every turn, plus its call envelope.
type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Call     *callInfo     `json:"call,omitempty"`
	Metadata *requestMeta  `json:"metadata,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type callInfo struct {
	ID       string `json:"id"`
	Customer *struct {
		Number string `json:"number"`
	} `json:"customer,omitempty"`
}

type requestMeta struct {
	OutputMode   string `json:"outputMode"`
	IdentityStep string `json:"identityStep"`
}

func (r *chatCompletionRequest) callerPhone() string {
	if r.Call == nil || r.Call.Customer == nil {
		return ""
	}
	return strings.TrimSpace(r.Call.Customer.Number)
}

func (r *chatCompletionRequest) lastMessage() *chatMessage {
	if len(r.Messages) == 0 {
		return nil
	}
	return &r.Messages[len(r.Messages)-1]
}

type chatCompletionResponse struct {
	ID      string         `json:"id"`
	Object  string         `json:"object"`
	Created int64          `json:"created"`
	Model   string         `json:"model"`
	Choices []choice       `json:"choices"`
	Output  *turnRendering `json:"output,omitempty"`
}

type choice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type turnRendering struct {
	ConversationID string `json:"conversation_id"`
	Voice          string `json:"voice_output,omitempty"`
	Text           string `json:"text_output,omitempty"`
}

type completionChunk struct {
	ID      string        `json:"id"`
	Object  string        `json:"object"`
	Created int64         `json:"created"`
	Model   string        `json:"model"`
	Choices []chunkChoice `json:"choices"`
}

type chunkChoice struct {
	Index        int        `json:"index"`
	Delta        chunkDelta `json:"delta"`
	FinishReason *string    `json:"finish_reason"`
}

type chunkDelta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// lookupPath resolves a dotted path such as "metadata.vapiCallId" in a JSON
// document. Only string and number leaves are returned.
func lookupPath(raw []byte, path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return ""
	}
	cur := doc
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		if cur, ok = obj[part]; !ok {
			return ""
		}
	}
	switch v := cur.(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}
