package inbox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/easymail/internal/model"
)

var groupNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func dated(id string, ago time.Duration) model.InboxMessage {
	return model.InboxMessage{
		ID:      id,
		Message: model.MessageHeader{Date: groupNow.Add(-ago).Format(time.RFC3339)},
	}
}

// layout renders rows as "#Bucket" for headers and the id for messages.
func layout(r *Rows) []string {
	var out []string
	for _, row := range r.All() {
		if row.IsHeader() {
			out = append(out, "#"+string(row.Header))
		} else {
			out = append(out, row.Message.ID)
		}
	}
	return out
}

const day = 24 * time.Hour

func TestGroupEmitsHeaderOnBucketChange(t *testing.T) {
	r := Group(groupNow, []model.InboxMessage{
		dated("a", time.Hour),
		dated("b", 2*time.Hour),
		dated("c", day+time.Hour),
		dated("d", 3*day),
		dated("e", 400*day),
	})

	assert.Equal(t, []string{
		"#Today", "a", "b",
		"#Yesterday", "c",
		"#Last 7 Days", "d",
		"#Older", "e",
	}, layout(r))
}

func TestAppendContinuesCurrentBucket(t *testing.T) {
	r := Group(groupNow, []model.InboxMessage{dated("a", 3*day)})
	r.Append(groupNow, []model.InboxMessage{dated("b", 4*day), dated("c", 10*day)})

	assert.Equal(t, []string{"#Last 7 Days", "a", "b", "#Last 30 Days", "c"}, layout(r))
}

func TestRemoveCollapsesOrphanedHeader(t *testing.T) {
	tests := []struct {
		name   string
		remove string
		want   []string
	}{
		{
			name:   "header followed by header",
			remove: "c",
			want:   []string{"#Today", "a", "b", "#Last 7 Days", "d"},
		},
		{
			name:   "header at end of list",
			remove: "d",
			want:   []string{"#Today", "a", "b", "#Yesterday", "c"},
		},
		{
			name:   "header keeps its other rows",
			remove: "a",
			want:   []string{"#Today", "b", "#Yesterday", "c", "#Last 7 Days", "d"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Group(groupNow, []model.InboxMessage{
				dated("a", time.Hour),
				dated("b", 2*time.Hour),
				dated("c", day+time.Hour),
				dated("d", 3*day),
			})
			require.True(t, r.Remove(tt.remove))
			assert.Equal(t, tt.want, layout(r))
		})
	}
}

func TestRemoveLastRowEmptiesList(t *testing.T) {
	r := Group(groupNow, []model.InboxMessage{dated("a", time.Hour)})
	require.True(t, r.Remove("a"))
	assert.Zero(t, r.Len())
	assert.False(t, r.Remove("a"))

	r.Append(groupNow, []model.InboxMessage{dated("b", time.Hour)})
	assert.Equal(t, []string{"#Today", "b"}, layout(r))
}

func TestRemoveThenAppendUsesNewLastBucket(t *testing.T) {
	r := Group(groupNow, []model.InboxMessage{dated("a", time.Hour), dated("b", 3*day)})
	require.True(t, r.Remove("b"))

	r.Append(groupNow, []model.InboxMessage{dated("c", 2*time.Hour)})
	assert.Equal(t, []string{"#Today", "a", "c"}, layout(r))
}
