package codec

import (
	"encoding/json"

	"github.com/mesh-intelligence/agenda/pkg/types"
)

// NotificationRecord is the stored form of types.Notification in both
// backends: nested in fallback records and as JSON text in the
// notification_config column.
type NotificationRecord struct {
	Kind           string  `json:"kind"`
	CustomDateTime *string `json:"customDateTime,omitempty"`
}

func notificationToRecord(n *types.Notification) *NotificationRecord {
	if n == nil {
		return nil
	}
	return &NotificationRecord{
		Kind:           string(n.Kind),
		CustomDateTime: formatOptionalTime(n.CustomAt),
	}
}

// notificationFromRecord returns (nil, true) when r is nil.
func notificationFromRecord(r *NotificationRecord) (*types.Notification, bool) {
	if r == nil {
		return nil, true
	}
	kind, err := types.ParseNotificationKind(r.Kind)
	if err != nil {
		return nil, false
	}
	at, ok := parseOptionalTime(r.CustomDateTime)
	if !ok {
		return nil, false
	}
	n := &types.Notification{Kind: kind, CustomAt: at}
	if n.Validate() != nil {
		return nil, false
	}
	return n, true
}

// encodeNotification renders n as JSON text for the relational store.
func encodeNotification(n *types.Notification) *string {
	r := notificationToRecord(n)
	if r == nil {
		return nil
	}
	b, err := json.Marshal(r)
	if err != nil {
		return nil
	}
	s := string(b)
	return &s
}

func decodeNotification(s *string) (*types.Notification, bool) {
	if s == nil || *s == "" {
		return nil, true
	}
	var r NotificationRecord
	if err := json.Unmarshal([]byte(*s), &r); err != nil {
		return nil, false
	}
	return notificationFromRecord(&r)
}
