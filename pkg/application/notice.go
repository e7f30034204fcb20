package application

import "time"

// NoticeLevel grades a user-facing message.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is a transient message for the reviewer.
type Notice struct {
	Level   NoticeLevel
	Message string
	At      time.Time
}

const maxNotices = 20

type noticeLog struct {
	items []Notice
	now   func() time.Time
}

func (l *noticeLog) push(level NoticeLevel, msg string) Notice {
	now := time.Now
	if l.now != nil {
		now = l.now
	}
	n := Notice{Level: level, Message: msg, At: now()}
	l.items = append(l.items, n)
	if len(l.items) > maxNotices {
		l.items = l.items[len(l.items)-maxNotices:]
	}
	return n
}

func (l *noticeLog) last() Notice {
	if len(l.items) == 0 {
		return Notice{}
	}
	return l.items[len(l.items)-1]
}

func (l *noticeLog) list() []Notice {
	out := make([]Notice, len(l.items))
	copy(out, l.items)
	return out
}
