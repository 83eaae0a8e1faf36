package mixer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownStrategy is returned by ParseStrategy.
var ErrUnknownStrategy = errors.New("mixer: unknown mixing strategy")

// Strategy selects the pairing algorithm.
type Strategy uint8

const (
	EventMixing Strategy = iota
	RotationMixing
	RotationPool
	LikeSignPool
)

var strategyNames = [...]string{
	EventMixing:    "event",
	RotationMixing: "rotation",
	RotationPool:   "rotation-pool",
	LikeSignPool:   "like-sign",
}

func (s Strategy) String() string {
	if int(s) < len(strategyNames) {
		return strategyNames[s]
	}
	return fmt.Sprintf("Strategy(%d)", s)
}

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool { return int(s) < len(strategyNames) }

// ParseStrategy accepts a strategy name or one of the legacy numeric
// selectors "0" (event) and "1" (rotation).
func ParseStrategy(s string) (Strategy, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "0":
		return EventMixing, nil
	case "1":
		return RotationMixing, nil
	}
	for i, n := range strategyNames {
		if n == name {
			return Strategy(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStrategy, s)
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(b []byte) error {
	v, err := ParseStrategy(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
