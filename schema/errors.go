package schema

import "errors"

var (
	// ErrInvalidLifetime indicates disappearance would not follow appearance.
	ErrInvalidLifetime = errors.New("disappearance must be after appearance")
	// ErrInvalidTime indicates a negative or non-finite time.
	ErrInvalidTime = errors.New("invalid time")
	// ErrInvalidTween indicates malformed tween parameters.
	ErrInvalidTween = errors.New("invalid tween")
	// ErrTweenOutsideLifetime indicates a tween interval entirely outside its shape's lifetime.
	ErrTweenOutsideLifetime = errors.New("tween lies outside shape lifetime")
	// ErrInvalidChange indicates malformed change parameters.
	ErrInvalidChange = errors.New("invalid change")
	// ErrUnknownShape indicates the shape is not part of the document.
	ErrUnknownShape = errors.New("unknown shape")
	// ErrUnknownTween indicates the tween is not registered.
	ErrUnknownTween = errors.New("unknown tween")
	// ErrUnknownEvent indicates the event is not in the store.
	ErrUnknownEvent = errors.New("unknown event")
	// ErrFixedEvent indicates an appearance or disappearance event cannot be removed.
	ErrFixedEvent = errors.New("lifetime events cannot be removed")
	// ErrUnknownModel indicates no aggregate model has the requested name.
	ErrUnknownModel = errors.New("unknown model")
	// ErrActionInProgress indicates an action was pushed while another was executing.
	ErrActionInProgress = errors.New("action already in progress")
	// ErrNilGeometry indicates a shape without a drawable.
	ErrNilGeometry = errors.New("shape geometry is required")
	// ErrOwnedModel indicates a model that only the controller may replace.
	ErrOwnedModel = errors.New("model is maintained by the controller")
)
