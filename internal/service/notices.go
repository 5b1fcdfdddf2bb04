package service

import (
	"sync"
	"time"

	appErrors "github.com/noah-isme/padel-board-api/pkg/errors"
)

// NoticeLevel classifies a transient notification.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a transient, user-visible notification (a toast).
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message"`
	At      time.Time   `json:"at"`
}

// Notices buffers notifications until a response drains them. The buffer is
// bounded; the oldest entries are dropped first.
type Notices struct {
	mu    sync.Mutex
	items []Notice
	limit int
	now   func() time.Time
}

// NewNotices builds a sink holding at most limit entries.
func NewNotices(limit int) *Notices {
	if limit <= 0 {
		limit = 50
	}
	return &Notices{limit: limit, now: time.Now}
}

// Success records a confirmation.
func (n *Notices) Success(message string) {
	n.add(Notice{Level: NoticeSuccess, Message: message})
}

// Warn records a warning carrying a code.
func (n *Notices) Warn(code, message string) {
	n.add(Notice{Level: NoticeWarning, Code: code, Message: message})
}

// FromError records err at warning or error level depending on its severity.
func (n *Notices) FromError(err error) {
	if err == nil {
		return
	}
	appErr := appErrors.FromError(err)
	level := NoticeError
	if appErrors.IsWarning(err) {
		level = NoticeWarning
	}
	n.add(Notice{Level: level, Code: appErr.Code, Message: appErr.Message})
}

// Drain returns and clears the buffered notices.
func (n *Notices) Drain() []Notice {
	if n == nil {
		return nil
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.items
	n.items = nil
	return out
}

// Len reports how many notices are buffered.
func (n *Notices) Len() int {
	if n == nil {
		return 0
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.items)
}

func (n *Notices) add(notice Notice) {
	if n == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	notice.At = n.now().UTC()
	n.items = append(n.items, notice)
	if len(n.items) > n.limit {
		n.items = n.items[len(n.items)-n.limit:]
	}
}
