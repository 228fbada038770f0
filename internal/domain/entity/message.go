package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
	MessageTypeVideo MessageType = "video"
)

func (t MessageType) IsMedia() bool {
	return t == MessageTypeImage || t == MessageTypeVideo
}

type Message struct {
	ID         string         `json:"id"`
	ChatID     string         `json:"chat_id"`
	SenderID   string         `json:"sender_id"`
	SenderName string         `json:"sender_name,omitempty"`
	Type       MessageType    `json:"type"`
	Content    MessageContent `json:"content"`
	CreatedAt  time.Time      `json:"created_at"`
	ReplyTo    string         `json:"reply_to,omitempty"`
}

// MessageContent is a plain string on the wire for text messages and a
// {url, caption} object for media messages.
type MessageContent struct {
	Text    string `json:"-"`
	URL     string `json:"url,omitempty"`
	Caption string `json:"caption,omitempty"`
}

func TextContent(text string) MessageContent {
	return MessageContent{Text: text}
}

func MediaContent(url, caption string) MessageContent {
	return MessageContent{URL: url, Caption: caption}
}

func (c MessageContent) MarshalJSON() ([]byte, error) {
	if c.URL == "" {
		return json.Marshal(c.Text)
	}
	return json.Marshal(struct {
		URL     string `json:"url"`
		Caption string `json:"caption,omitempty"`
	}{c.URL, c.Caption})
}

func (c *MessageContent) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = MessageContent{}
		return nil
	}

	if data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*c = MessageContent{Text: text}
		return nil
	}

	var media struct {
		URL     string `json:"url"`
		Caption string `json:"caption"`
	}
	if err := json.Unmarshal(data, &media); err != nil {
		return fmt.Errorf("message content: %w", err)
	}
	*c = MessageContent{URL: media.URL, Caption: media.Caption}
	return nil
}

// Preview is the one-line form shown in a conversation summary.
func (m *Message) Preview() string {
	switch m.Type {
	case MessageTypeImage:
		if m.Content.Caption != "" {
			return m.Content.Caption
		}
		return "[image]"
	case MessageTypeVideo:
		if m.Content.Caption != "" {
			return m.Content.Caption
		}
		return "[video]"
	default:
		return m.Content.Text
	}
}
