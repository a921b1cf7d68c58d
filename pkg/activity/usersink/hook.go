package usersink

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-scenesync/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Hook forwards widget activity to a go-users ActivitySink.
type Hook struct {
	Sink usertypes.ActivitySink
	// Tenants maps a scene id to the tenant its records belong to. Events of
	// unmapped scenes keep their own TenantID.
	Tenants map[string]uuid.UUID
	// WidgetsOnly drops pass summaries so the feed lists only object changes.
	WidgetsOnly bool
	// Now stamps records whose event carries no time.
	Now func() time.Time
}

// Notify maps the event into an ActivityRecord. The scene id goes into the
// record data because ActivityRecord has no field for it.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = h.now()
	}
	normalized := activity.NormalizeEvent(event)
	if !normalized.Valid() {
		return nil
	}
	if h.WidgetsOnly && normalized.Verb == activity.VerbPassApplied {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	record := usertypes.ActivityRecord{
		ActorID:    parseUUID(normalized.ActorID),
		UserID:     parseUUID(normalized.UserID),
		TenantID:   parseUUID(normalized.TenantID),
		Verb:       normalized.Verb,
		ObjectType: normalized.ObjectType,
		ObjectID:   normalized.ObjectID,
		Channel:    normalized.Channel,
		Data:       normalized.Metadata,
		OccurredAt: normalized.OccurredAt,
	}
	if tenant, ok := h.Tenants[normalized.Scene]; ok {
		record.TenantID = tenant
	}
	if normalized.Scene != "" {
		if record.Data == nil {
			record.Data = map[string]any{}
		}
		record.Data["scene"] = normalized.Scene
	}
	return h.Sink.Log(ctx, record)
}

func (h Hook) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func parseUUID(input string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(input))
	if err != nil {
		return uuid.Nil
	}
	return id
}
