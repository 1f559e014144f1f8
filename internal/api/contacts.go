package api

import (
	"context"
	"fmt"

	"github.com/nhle/easymail/internal/model"
)

// ListContacts returns one page of the address book.
func (c *Client) ListContacts(ctx context.Context, perPage, page int) (*model.Page[model.Contact], error) {
	var p model.Page[model.Contact]
	if err := c.Get(ctx, pagePath("/contact", perPage, page), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetContact returns a single contact.
func (c *Client) GetContact(ctx context.Context, id int) (*model.Contact, error) {
	var ct model.Contact
	if err := c.Get(ctx, fmt.Sprintf("/contact/%d", id), &ct); err != nil {
		return nil, err
	}
	return &ct, nil
}

// CreateContact adds a contact.
func (c *Client) CreateContact(ctx context.Context, in model.ContactInput) (*model.Message, error) {
	var resp model.Message
	if err := c.Post(ctx, "/contact", in, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateContact replaces the fields of a contact.
func (c *Client) UpdateContact(ctx context.Context, id int, in model.ContactInput) (*model.Message, error) {
	var resp model.Message
	if err := c.Put(ctx, fmt.Sprintf("/contact/%d", id), in, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteContact removes a contact.
func (c *Client) DeleteContact(ctx context.Context, id int) (*model.Message, error) {
	var resp model.Message
	if err := c.Delete(ctx, fmt.Sprintf("/contact/%d", id), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
