package botapi

import (
	json "encoding/json/v2"
)

// Wire payloads for the bot gateway, trimmed to the fields the relay reads

type update struct {
	UpdateID int64    `json:"update_id"`
	Message  *message `json:"message"`
}

type message struct {
	MessageID int64  `json:"message_id"`
	From      *user  `json:"from"`
	Chat      chat   `json:"chat"`
	Date      int64  `json:"date"`
	Text      string `json:"text"`
}

type user struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type chat struct {
	ID int64 `json:"id"`
}

type respParameters struct {
	RetryAfter int `json:"retry_after"`
}

// envelope is the response wrapper common to all methods
type envelope struct {
	OK          bool            `json:"ok"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
	Parameters  *respParameters `json:"parameters"`
}

// updatesEnvelope is the getUpdates wrapper with its typed result
type updatesEnvelope struct {
	OK          bool            `json:"ok"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
	Parameters  *respParameters `json:"parameters"`
	Result      []update        `json:"result"`
}

type sendMessageReq struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

func marshalSendMessage(channel, content string) ([]byte, error) {
	return json.Marshal(sendMessageReq{ChatID: channel, Text: content})
}

// parseEnvelope is tolerant: a body that fails to decode yields a zero
// envelope and the HTTP status drives classification instead
func parseEnvelope(raw []byte) envelope {
	var env envelope
	_ = json.Unmarshal(raw, &env)
	return env
}
