package inbox

import (
	"time"

	"github.com/nhle/easymail/internal/model"
)

// Row is one line of the grouped inbox listing: either a bucket header
// or a message.
type Row struct {
	Header  Bucket
	Message *model.InboxMessage
}

// IsHeader reports whether the row is a bucket header.
func (r Row) IsHeader() bool { return r.Message == nil }

// Rows is the rendered listing with date headers interleaved.
type Rows struct {
	rows []Row
	last Bucket
}

// Group renders msgs with a header wherever the bucket changes.
func Group(now time.Time, msgs []model.InboxMessage) *Rows {
	r := &Rows{}
	r.Append(now, msgs)
	return r
}

// Append adds msgs after the existing rows. A header is emitted only
// when a message's bucket differs from the bucket of the row before it,
// so a load-more page continues the current group.
func (r *Rows) Append(now time.Time, msgs []model.InboxMessage) {
	for i := range msgs {
		msg := msgs[i]
		b := BucketFor(now, msg.Message.Date)
		if len(r.rows) == 0 || b != r.last {
			r.rows = append(r.rows, Row{Header: b})
			r.last = b
		}
		r.rows = append(r.rows, Row{Header: b, Message: &msg})
	}
}

// All returns the rows in display order.
func (r *Rows) All() []Row { return r.rows }

// Len returns the number of rows, headers included.
func (r *Rows) Len() int { return len(r.rows) }

// Remove deletes the message row with the given id. A header left with
// no messages under it, meaning one followed by another header or by the
// end of the list, is removed as well.
func (r *Rows) Remove(id string) bool {
	idx := -1
	for i, row := range r.rows {
		if !row.IsHeader() && row.Message.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	prevIsHeader := idx > 0 && r.rows[idx-1].IsHeader()
	nextIsHeader := idx+1 >= len(r.rows) || r.rows[idx+1].IsHeader()

	r.rows = append(r.rows[:idx], r.rows[idx+1:]...)
	if prevIsHeader && nextIsHeader {
		r.rows = append(r.rows[:idx-1], r.rows[idx:]...)
	}

	if len(r.rows) == 0 {
		r.last = ""
	} else {
		r.last = r.rows[len(r.rows)-1].Header
	}
	return true
}

// MarkRead flips the read flag of a message row.
func (r *Rows) MarkRead(id string, read bool) {
	for _, row := range r.rows {
		if !row.IsHeader() && row.Message.ID == id {
			row.Message.Message.IsRead = read
			return
		}
	}
}
