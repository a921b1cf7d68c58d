package activity

import (
	"strings"
	"time"
)

const (
	VerbWidgetCreated = "widgets.created"
	VerbWidgetUpdated = "widgets.updated"
	VerbWidgetDeleted = "widgets.deleted"
	VerbPassApplied   = "widgets.pass.applied"

	ObjectTypeWidget = "widget"
	ObjectTypePass   = "widget.pass"
)

// WidgetEventInput carries the fields shared by widget lifecycle events.
type WidgetEventInput struct {
	ActorID    string
	UserID     string
	TenantID   string
	Channel    string
	Scene      string
	ObjectID   string
	Tag        string
	Collection string
	Changes    []string
	Metadata   map[string]any
	OccurredAt time.Time
}

// PassSummary describes a finished reconciliation pass.
type PassSummary struct {
	Scene     string
	Group     string
	Mode      string
	Created   int
	Updated   int
	Deleted   int
	Unchanged int
	Duration  time.Duration
}

// BuildWidgetCreatedEvent describes a managed object created by a pass.
func BuildWidgetCreatedEvent(input WidgetEventInput) Event {
	return buildWidgetEvent(VerbWidgetCreated, input)
}

// BuildWidgetUpdatedEvent describes a managed object overwritten by a pass.
func BuildWidgetUpdatedEvent(input WidgetEventInput) Event {
	return buildWidgetEvent(VerbWidgetUpdated, input)
}

// BuildWidgetDeletedEvent describes a managed object removed by a pass.
func BuildWidgetDeletedEvent(input WidgetEventInput) Event {
	return buildWidgetEvent(VerbWidgetDeleted, input)
}

// BuildPassAppliedEvent summarises a pass. The object id is scene/group.
func BuildPassAppliedEvent(input WidgetEventInput, summary PassSummary) Event {
	metadata := ensureMetadata(cloneMap(input.Metadata))
	metadata["group"] = summary.Group
	metadata["mode"] = summary.Mode
	metadata["created"] = summary.Created
	metadata["updated"] = summary.Updated
	metadata["deleted"] = summary.Deleted
	metadata["unchanged"] = summary.Unchanged
	metadata["duration_ms"] = summary.Duration.Milliseconds()

	scene := firstNonEmpty(input.Scene, summary.Scene)
	objectID := strings.TrimSpace(input.ObjectID)
	if objectID == "" {
		objectID = strings.Trim(scene+"/"+summary.Group, "/")
	}
	if objectID == "" {
		objectID = ObjectTypePass
	}

	return Event{
		Verb:       VerbPassApplied,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		Scene:      scene,
		ObjectType: ObjectTypePass,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func buildWidgetEvent(verb string, input WidgetEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if input.Tag != "" {
		metadata = ensureMetadata(metadata)
		metadata["tag"] = input.Tag
	}
	if input.Collection != "" {
		metadata = ensureMetadata(metadata)
		metadata["collection"] = input.Collection
	}
	if len(input.Changes) > 0 {
		metadata = ensureMetadata(metadata)
		metadata["changes"] = append([]string{}, input.Changes...)
	}

	objectID := firstNonEmpty(input.ObjectID, input.Tag)
	if objectID == "" {
		objectID = ObjectTypeWidget
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		Scene:      strings.TrimSpace(input.Scene),
		ObjectType: ObjectTypeWidget,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
