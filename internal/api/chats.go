package api

import (
	"context"
	"fmt"

	"github.com/nhle/easymail/internal/model"
)

// GenerateEmail starts a new chat from an instruction.
func (c *Client) GenerateEmail(ctx context.Context, req model.GenerateRequest) (*model.GenerateResponse, error) {
	var resp model.GenerateResponse
	if err := c.Post(ctx, "/chat/generate", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ModifyEmail appends a new instruction to an existing chat and returns
// the regenerated email.
func (c *Client) ModifyEmail(ctx context.Context, req model.ModifyRequest) (*model.GenerateResponse, error) {
	var resp model.GenerateResponse
	if err := c.Put(ctx, "/chat/generate", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SendEmail sends the current draft of a chat from a linked account.
func (c *Client) SendEmail(ctx context.Context, req model.SendRequest) (*model.Message, error) {
	var resp model.Message
	if err := c.Post(ctx, "/chat/send", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListChats returns one page of the chat history.
func (c *Client) ListChats(ctx context.Context, perPage, page int) (*model.Page[model.Chat], error) {
	var p model.Page[model.Chat]
	if err := c.Get(ctx, pagePath("/chat", perPage, page), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetChat returns a chat's metadata.
func (c *Client) GetChat(ctx context.Context, id int) (*model.Chat, error) {
	var ch model.Chat
	if err := c.Get(ctx, fmt.Sprintf("/chat/%d", id), &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

// RenameChat changes a chat's display name.
func (c *Client) RenameChat(ctx context.Context, id int, name string) (*model.Message, error) {
	var resp model.Message
	body := map[string]string{"name": name}
	if err := c.Put(ctx, fmt.Sprintf("/chat/%d", id), body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteChat removes a chat and its transcript.
func (c *Client) DeleteChat(ctx context.Context, id int) (*model.Message, error) {
	var resp model.Message
	if err := c.Delete(ctx, fmt.Sprintf("/chat/%d", id), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetChatMessages returns the ordered transcript of a chat.
func (c *Client) GetChatMessages(ctx context.Context, id int) ([]model.ChatMessage, error) {
	var msgs []model.ChatMessage
	if err := c.Get(ctx, fmt.Sprintf("/chat/%d/messages", id), &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// Paraphrase proposes a rewrite of one span of an assistant message. The
// backend keeps the proposal until it is committed.
func (c *Client) Paraphrase(
	ctx context.Context,
	messageID int,
	req model.ParaphraseRequest,
) (*model.ParaphraseResponse, error) {
	var resp model.ParaphraseResponse
	if err := c.Post(ctx, fmt.Sprintf("/chat/paraphrase/%d", messageID), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CommitParaphrase applies the pending proposal and returns the updated
// subject and body.
func (c *Client) CommitParaphrase(ctx context.Context, messageID int) (*model.EmailOutput, error) {
	var resp model.EmailOutput
	if err := c.Put(ctx, fmt.Sprintf("/chat/paraphrase/%d", messageID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SmartReply drafts a reply to an inbox message.
func (c *Client) SmartReply(ctx context.Context, req model.SmartReplyRequest) (*model.SmartReplyResponse, error) {
	var resp model.SmartReplyResponse
	if err := c.Post(ctx, "/chat/reply", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
