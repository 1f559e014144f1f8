package compose

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/google/uuid"
)

// Export is a draft ready to be written as an RFC 5322 message.
type Export struct {
	From    string
	To      []string
	CC      []string
	BCC     []string
	Subject string
	Body    string
	Date    time.Time
}

func addressList(raw []string) []*mail.Address {
	out := make([]*mail.Address, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if a, err := mail.ParseAddress(r); err == nil {
			out = append(out, a)
			continue
		}
		out = append(out, &mail.Address{Address: r})
	}
	return out
}

// WriteEML writes e as a single-part text/plain message.
func WriteEML(w io.Writer, e Export) error {
	var h mail.Header
	date := e.Date
	if date.IsZero() {
		date = time.Now()
	}
	h.SetDate(date)
	h.SetSubject(e.Subject)
	if from := addressList([]string{e.From}); len(from) > 0 {
		h.SetAddressList("From", from)
	}
	if to := addressList(e.To); len(to) > 0 {
		h.SetAddressList("To", to)
	}
	if cc := addressList(e.CC); len(cc) > 0 {
		h.SetAddressList("Cc", cc)
	}
	if bcc := addressList(e.BCC); len(bcc) > 0 {
		h.SetAddressList("Bcc", bcc)
	}
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})

	mw, err := mail.CreateSingleInlineWriter(w, h)
	if err != nil {
		return fmt.Errorf("creating message writer: %w", err)
	}
	if _, err := io.WriteString(mw, e.Body); err != nil {
		mw.Close()
		return fmt.Errorf("writing message body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("closing message writer: %w", err)
	}
	return nil
}

// ExportEML writes e into dir under a unique file name and returns the
// path of the new file.
func ExportEML(dir string, e Export) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, "draft-"+uuid.NewString()+".eml")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WriteEML(f, e); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}
	return path, nil
}
