package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/nhle/easymail/internal/model"
)

func accountPath(service model.Service, accountID int) string {
	return fmt.Sprintf("/link/%s/%d", url.PathEscape(string(service)), accountID)
}

func messagePath(service model.Service, accountID int, messageID string) string {
	return accountPath(service, accountID) + "/message/" + url.PathEscape(messageID)
}

// ListLinkedAccounts returns every mail account linked to the user.
func (c *Client) ListLinkedAccounts(ctx context.Context) ([]model.LinkedAccount, error) {
	var accounts []model.LinkedAccount
	if err := c.Get(ctx, "/link", &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// Unlink removes a linked account.
func (c *Client) Unlink(ctx context.Context, accountID int) (*model.Message, error) {
	var resp model.Message
	if err := c.Delete(ctx, fmt.Sprintf("/link/%d", accountID), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RefreshLink renews the provider token of a linked account.
func (c *Client) RefreshLink(ctx context.Context, service model.Service, accountID int) (*model.Message, error) {
	var resp model.Message
	if err := c.Put(ctx, accountPath(service, accountID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListFolders returns the folders of a linked account.
func (c *Client) ListFolders(ctx context.Context, service model.Service, accountID int) ([]model.InboxFolder, error) {
	var folders []model.InboxFolder
	if err := c.Get(ctx, accountPath(service, accountID)+"/folder", &folders); err != nil {
		return nil, err
	}
	return folders, nil
}

// ListMessages returns one page of a folder listing. An empty folder
// name lists the inbox and a non-positive page size falls back to 10.
func (c *Client) ListMessages(
	ctx context.Context,
	service model.Service,
	accountID int,
	q model.InboxQuery,
) (*model.InboxPage, error) {
	if q.FolderName == "" {
		q.FolderName = "inbox"
	}
	if q.MaxResult <= 0 {
		q.MaxResult = 10
	}

	var page model.InboxPage
	if err := c.Post(ctx, accountPath(service, accountID), q, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetMessage returns a fully fetched inbox message.
func (c *Client) GetMessage(
	ctx context.Context,
	service model.Service,
	accountID int,
	messageID string,
) (*model.MessageDetail, error) {
	var msg model.MessageDetail
	if err := c.Get(ctx, messagePath(service, accountID, messageID), &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// MessageAction marks a message read or unread, or deletes it.
func (c *Client) MessageAction(
	ctx context.Context,
	service model.Service,
	accountID int,
	messageID string,
	action model.MessageAction,
) (*model.Message, error) {
	var resp model.Message
	path := messagePath(service, accountID, messageID) + "/" + string(action)
	if err := c.Post(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ReplyMessage sends an HTML reply to an inbox message.
func (c *Client) ReplyMessage(
	ctx context.Context,
	service model.Service,
	accountID int,
	messageID string,
	htmlBody string,
) (*model.Message, error) {
	var resp model.Message
	path := messagePath(service, accountID, messageID) + "/reply"
	body := map[string]string{"body": htmlBody}
	if err := c.Post(ctx, path, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
