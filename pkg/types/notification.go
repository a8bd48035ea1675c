package types

import (
	"fmt"
	"time"
)

// NotificationKind selects when a task reminder fires.
type NotificationKind string

// Notification kinds. The three offsets fire relative to the task due date;
// NotifyCustom fires at Notification.CustomAt.
const (
	Notify30Min  NotificationKind = "30min"
	Notify1Hour  NotificationKind = "1hour"
	Notify1Day   NotificationKind = "1day"
	NotifyCustom NotificationKind = "custom"
)

// legacyNotificationKinds maps kind spellings written by older clients.
var legacyNotificationKinds = map[string]NotificationKind{
	"1hora": Notify1Hour,
}

// Notification is a reminder configuration. It is a tagged union: Kind is the
// tag and CustomAt is present exactly when Kind is NotifyCustom.
type Notification struct {
	Kind     NotificationKind
	CustomAt *time.Time
}

// NotifyBefore returns an offset reminder. kind must be one of the offset
// kinds; Validate reports anything else.
func NotifyBefore(kind NotificationKind) *Notification {
	return &Notification{Kind: kind}
}

// NotifyAt returns a custom reminder firing at t.
func NotifyAt(t time.Time) *Notification {
	return &Notification{Kind: NotifyCustom, CustomAt: &t}
}

// ParseNotificationKind returns the kind named by s, accepting legacy spellings.
func ParseNotificationKind(s string) (NotificationKind, error) {
	switch k := NotificationKind(s); k {
	case Notify30Min, Notify1Hour, Notify1Day, NotifyCustom:
		return k, nil
	}
	if k, ok := legacyNotificationKinds[s]; ok {
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown notification kind %q", ErrValidation, s)
}

// Validate checks the union invariant.
func (n Notification) Validate() error {
	if _, err := ParseNotificationKind(string(n.Kind)); err != nil {
		return err
	}
	if n.Kind == NotifyCustom && (n.CustomAt == nil || n.CustomAt.IsZero()) {
		return fmt.Errorf("%w: custom notification requires a date", ErrValidation)
	}
	if n.Kind != NotifyCustom && n.CustomAt != nil {
		return fmt.Errorf("%w: %s notification must not carry a date", ErrValidation, n.Kind)
	}
	return nil
}

// Offset returns how long before due the reminder fires. It returns false for
// custom reminders.
func (n Notification) Offset() (time.Duration, bool) {
	switch n.Kind {
	case Notify30Min:
		return 30 * time.Minute, true
	case Notify1Hour:
		return time.Hour, true
	case Notify1Day:
		return 24 * time.Hour, true
	}
	return 0, false
}

// FireAt returns the instant the reminder fires for a task due at due.
func (n Notification) FireAt(due time.Time) time.Time {
	if d, ok := n.Offset(); ok {
		return due.Add(-d)
	}
	if n.CustomAt != nil {
		return *n.CustomAt
	}
	return due
}
