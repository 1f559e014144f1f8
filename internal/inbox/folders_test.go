package inbox

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/easymail/internal/model"
)

func TestVisibleFolders(t *testing.T) {
	in := []model.InboxFolder{
		{Name: "Sent", MessageCount: 4},
		{Name: "archive", MessageCount: 2, UnreadCount: 1},
		{Name: "Category_Promotions", MessageCount: 50},
		{Name: "Trash", MessageCount: 0},
		{Name: "Chats", MessageCount: 3, IsHidden: true},
		{Name: "INBOX", MessageCount: 9, UnreadCount: 3},
		{Name: "Drafts", MessageCount: 1},
	}

	got := VisibleFolders(in)

	names := make([]string, len(got))
	for i, f := range got {
		names[i] = f.Name
	}
	assert.Equal(t, []string{"INBOX", "archive", "Drafts", "Sent"}, names)
	assert.Equal(t, 4, TotalUnread(got))
}

func TestVisibleFoldersEmpty(t *testing.T) {
	assert.Empty(t, VisibleFolders(nil))
}
