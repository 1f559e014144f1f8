package inbox

import (
	"sort"
	"strings"

	"github.com/nhle/easymail/internal/model"
)

// DefaultFolder is the folder listed when none is selected.
const DefaultFolder = "inbox"

// VisibleFolders drops hidden, empty and Category_ folders and sorts the
// rest by name with Inbox first.
func VisibleFolders(folders []model.InboxFolder) []model.InboxFolder {
	out := make([]model.InboxFolder, 0, len(folders))
	for _, f := range folders {
		if f.IsHidden || f.MessageCount == 0 || strings.HasPrefix(f.Name, "Category_") {
			continue
		}
		out = append(out, f)
	}

	sort.SliceStable(out, func(i, j int) bool {
		ai := strings.EqualFold(out[i].Name, DefaultFolder)
		aj := strings.EqualFold(out[j].Name, DefaultFolder)
		if ai != aj {
			return ai
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// TotalUnread sums the unread counts of folders.
func TotalUnread(folders []model.InboxFolder) int {
	n := 0
	for _, f := range folders {
		n += f.UnreadCount
	}
	return n
}
