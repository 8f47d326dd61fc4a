package engine

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Params are the key/value strategy parameters supplied by the user.
type Params map[string]string

// Decimal returns the decimal value for key, or def when absent.
func (p Params) Decimal(key string, def decimal.Decimal) (decimal.Decimal, error) {
	raw, ok := p[key]
	if !ok || raw == "" {
		return def, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parameter %s: invalid decimal %q", key, raw)
	}
	return value, nil
}

// Int returns the integer value for key, or def when absent.
func (p Params) Int(key string, def int) (int, error) {
	raw, ok := p[key]
	if !ok || raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parameter %s: invalid integer %q", key, raw)
	}
	return value, nil
}

// Direction returns the bet direction for key, or def when absent.
func (p Params) Direction(key string, def Direction) (Direction, error) {
	raw, ok := p[key]
	if !ok || raw == "" {
		return def, nil
	}
	switch Direction(raw) {
	case DirectionHigh, DirectionLow:
		return Direction(raw), nil
	default:
		return "", fmt.Errorf("parameter %s: invalid direction %q (want high or low)", key, raw)
	}
}
