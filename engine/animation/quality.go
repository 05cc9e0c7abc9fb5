package animation

import (
	"fmt"
	"strings"
)

type Quality uint8

const (
	// QualityHigh interpolates translation and scale linearly and slerps rotation.
	QualityHigh Quality = iota
	// QualityLow snaps every channel to the nearest key.
	QualityLow
	// QualityNone skips evaluation; fades are still tracked.
	QualityNone
)

func ParseQuality(q string) (Quality, error) {
	switch strings.ToLower(strings.TrimSpace(q)) {
	case "", "high":
		return QualityHigh, nil
	case "low":
		return QualityLow, nil
	case "none":
		return QualityNone, nil
	default:
		return QualityHigh, fmt.Errorf("unknown animation quality '%s'", q)
	}
}

func (q Quality) String() string {
	switch q {
	case QualityLow:
		return "low"
	case QualityNone:
		return "none"
	default:
		return "high"
	}
}

// evaluators returns the translate, rotate and scale interpolation modes.
func (q Quality) evaluators() (EvaluateType, EvaluateType, EvaluateType) {
	if q == QualityLow {
		return EvaluateNear, EvaluateNear, EvaluateNear
	}
	return EvaluateLinear, EvaluateQuatSlerp, EvaluateLinear
}
