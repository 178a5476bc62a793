package schema

import (
	"fmt"
	"math"
)

// ValidateTime ensures t is a finite, non-negative time.
func ValidateTime(t float64) error {
	if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidTime, t)
	}
	return nil
}

// ValidateLifetime ensures appearance < disappearance and both are valid times.
func ValidateLifetime(appearance, disappearance float64) error {
	if err := ValidateTime(appearance); err != nil {
		return err
	}
	if err := ValidateTime(disappearance); err != nil {
		return err
	}
	if disappearance <= appearance {
		return fmt.Errorf("%w: appearance %v, disappearance %v", ErrInvalidLifetime, appearance, disappearance)
	}
	return nil
}

// ValidateTweenBounds checks the tween interval against a shape lifetime.
// The interval may overlap the lifetime partially but not lie entirely outside it.
func ValidateTweenBounds(start, length, appearance, disappearance float64) error {
	if err := ValidateTime(start); err != nil {
		return err
	}
	if math.IsNaN(length) || math.IsInf(length, 0) || length <= 0 {
		return fmt.Errorf("%w: length %v", ErrInvalidTween, length)
	}
	end := start + length
	if end <= appearance || start >= disappearance {
		return fmt.Errorf("%w: [%v, %v] vs [%v, %v)", ErrTweenOutsideLifetime, start, end, appearance, disappearance)
	}
	return nil
}

// ValidateTweenSpec checks kind-specific parameters.
func ValidateTweenSpec(spec TweenSpec) error {
	switch spec.Kind {
	case TweenRotation:
		if !finite(spec.Angle) || !finiteVec(spec.Centre) {
			return fmt.Errorf("%w: rotation angle/centre must be finite", ErrInvalidTween)
		}
	case TweenScale:
		if !finite(spec.Factor) || spec.Factor <= 0 || !finiteVec(spec.Centre) {
			return fmt.Errorf("%w: scale factor must be positive", ErrInvalidTween)
		}
	case TweenTranslation:
		if !finiteVec(spec.Vector) {
			return fmt.Errorf("%w: translation vector must be finite", ErrInvalidTween)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidTween, spec.Kind)
	}
	return nil
}

// ValidateChange checks kind-specific change parameters.
func ValidateChange(c Change) error {
	switch c.Kind {
	case ChangeTranslate:
		if !finiteVec(c.Vector) {
			return fmt.Errorf("%w: translate vector must be finite", ErrInvalidChange)
		}
	case ChangeRotate:
		if !finite(c.Angle) || !finiteVec(c.Centre) {
			return fmt.Errorf("%w: rotate angle/centre must be finite", ErrInvalidChange)
		}
	case ChangeScale:
		if !finite(c.Factor) || c.Factor == 0 || !finiteVec(c.Centre) {
			return fmt.Errorf("%w: scale factor must be non-zero", ErrInvalidChange)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidChange, c.Kind)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finiteVec(v Vec2) bool {
	return finite(v.X) && finite(v.Y)
}
