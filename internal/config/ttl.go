package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// MaxTTL bounds configurable TTLs (7 days).
const MaxTTL = 7 * 24 * time.Hour

// ErrInvalidTTL is returned for negative, oversized or unparsable TTLs.
var ErrInvalidTTL = fmt.Errorf("TTL must be between 0 and %s", MaxTTL)

// ParseTTL accepts whole seconds ("600") or a Go duration ("10m").
func ParseTTL(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty value", ErrInvalidTTL)
	}

	var d time.Duration
	if secs, err := strconv.Atoi(s); err == nil {
		d = time.Duration(secs) * time.Second
	} else {
		parsed, parseErr := time.ParseDuration(s)
		if parseErr != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTTL, s)
		}
		d = parsed
	}

	if d < 0 || d > MaxTTL {
		return 0, fmt.Errorf("%w: got %s", ErrInvalidTTL, d)
	}
	return d, nil
}

// Duration is a time.Duration that reads seconds or duration strings from YAML.
type Duration time.Duration

// Duration converts back to time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// String formats d the way time.Duration does.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errors.New("duration must be a scalar")
	}
	parsed, err := ParseTTL(node.Value)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}
