package activity

import "time"

// PropertyEventInput describes the common fields for dynamic property
// lifecycle events.
type PropertyEventInput struct {
	ActorID    string
	UserID     string
	TenantID   string
	Owner      string
	Name       string
	OldValue   any
	NewValue   any
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildPropertyAddedEvent constructs a normalized event for a property seen
// for the first time.
func BuildPropertyAddedEvent(input PropertyEventInput) Event {
	return buildPropertyEvent("property.added", input)
}

// BuildPropertyUpdatedEvent constructs a normalized event for an overwrite
// of an existing property.
func BuildPropertyUpdatedEvent(input PropertyEventInput) Event {
	return buildPropertyEvent("property.updated", input)
}

func buildPropertyEvent(verb string, input PropertyEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if input.Owner != "" {
		metadata = ensureMetadata(metadata)
		metadata["owner"] = input.Owner
	}
	if input.OldValue != nil {
		metadata = ensureMetadata(metadata)
		metadata["old_value"] = input.OldValue
	}
	if input.NewValue != nil {
		metadata = ensureMetadata(metadata)
		metadata["new_value"] = input.NewValue
	}
	return NormalizeEvent(Event{
		Verb:       verb,
		ActorID:    input.ActorID,
		UserID:     input.UserID,
		TenantID:   input.TenantID,
		ObjectType: "property",
		ObjectID:   input.Name,
		Channel:    input.Channel,
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	})
}

func ensureMetadata(metadata map[string]any) map[string]any {
	if metadata == nil {
		return map[string]any{}
	}
	return metadata
}
