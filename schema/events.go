package schema

// EventType identifies a timeline event.
type EventType string

const (
	// EventAppearance marks the time a shape becomes visible.
	EventAppearance EventType = "appearance"
	// EventDisappearance marks the time a shape is hidden.
	EventDisappearance EventType = "disappearance"
	// EventChange applies a discrete change to a shape.
	EventChange EventType = "change"
	// EventTweenStart marks the start of a tween.
	EventTweenStart EventType = "tweenStart"
	// EventTweenEnd marks the end of a tween.
	EventTweenEnd EventType = "tweenEnd"
)

// Lifetime reports whether the event is a shape lifetime boundary.
func (t EventType) Lifetime() bool {
	return t == EventAppearance || t == EventDisappearance
}

// ModelName names an aggregate model in the hub.
type ModelName string

const (
	// ModelDisplayShapes holds the shapes visible at the current clock.
	ModelDisplayShapes ModelName = "displayShapes"
	// ModelSelectedShapes holds the current selection.
	ModelSelectedShapes ModelName = "selectedShapes"
	// ModelTimelineEvents holds every timeline event.
	ModelTimelineEvents ModelName = "timelineEvents"
	// ModelClock holds a single ClockState.
	ModelClock ModelName = "clock"
)

// CoreModels lists the models the controller creates at startup.
func CoreModels() []ModelName {
	return []ModelName{ModelDisplayShapes, ModelSelectedShapes, ModelTimelineEvents, ModelClock}
}
