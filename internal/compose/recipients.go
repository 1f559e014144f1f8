package compose

import (
	"strconv"
	"strings"

	"github.com/nhle/easymail/internal/model"
)

// ParseRecipients splits a comma-separated list. A numeric token is a
// contact id, "Name <email>" yields the address in brackets and anything
// else is taken as an address.
func ParseRecipients(list string) []model.Recipient {
	var out []model.Recipient
	for _, tok := range strings.Split(list, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if id, err := strconv.Atoi(tok); err == nil && id > 0 {
			out = append(out, model.Recipient{ID: id})
			continue
		}
		out = append(out, model.Recipient{Email: extractEmail(tok)})
	}
	return out
}

func extractEmail(tok string) string {
	open := strings.Index(tok, "<")
	if open < 0 {
		return tok
	}
	end := strings.Index(tok[open+1:], ">")
	if end < 0 {
		return tok
	}
	return strings.TrimSpace(tok[open+1 : open+1+end])
}

// ParseGroup builds the to/cc/bcc group from three comma lists.
func ParseGroup(to, cc, bcc string) model.RecipientGroup {
	return model.RecipientGroup{
		To:  nonNil(ParseRecipients(to)),
		CC:  nonNil(ParseRecipients(cc)),
		BCC: nonNil(ParseRecipients(bcc)),
	}
}

func nonNil(r []model.Recipient) []model.Recipient {
	if r == nil {
		return []model.Recipient{}
	}
	return r
}

// FormatRecipients renders recipients back into a comma list that
// ParseRecipients accepts.
func FormatRecipients(rs []model.Recipient) string {
	parts := make([]string, 0, len(rs))
	for _, r := range rs {
		if r.ID > 0 {
			parts = append(parts, strconv.Itoa(r.ID))
		} else if r.Email != "" {
			parts = append(parts, r.Email)
		}
	}
	return strings.Join(parts, ", ")
}
