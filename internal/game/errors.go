package game

import (
	"errors"
	"fmt"
)

// ErrConfiguration is matched by every *ConfigurationError via errors.Is.
var ErrConfiguration = errors.New("configuration error")

// ErrInvalidPayoff is matched by every *InvalidPayoffError via errors.Is.
var ErrInvalidPayoff = errors.New("invalid payoff matrix")

// ConfigurationError reports setup problems that must stop a run before any
// simulation work starts: too few strategies, unknown names, malformed
// parametrised names and out-of-range settings.
type ConfigurationError struct {
	Field  string
	Token  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	switch {
	case e.Token != "" && e.Field != "":
		return fmt.Sprintf("configuration: %s: %q: %s", e.Field, e.Token, e.Reason)
	case e.Token != "":
		return fmt.Sprintf("configuration: %q: %s", e.Token, e.Reason)
	case e.Field != "":
		return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
	default:
		return "configuration: " + e.Reason
	}
}

// Is lets errors.Is(err, ErrConfiguration) match.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// InvalidPayoffError reports a payoff vector that does not describe a
// Prisoner's Dilemma.
type InvalidPayoffError struct {
	T, R, P, S float64
	Reason     string
}

func (e *InvalidPayoffError) Error() string {
	return fmt.Sprintf("invalid payoffs T=%g R=%g P=%g S=%g: %s", e.T, e.R, e.P, e.S, e.Reason)
}

// Is lets errors.Is(err, ErrInvalidPayoff) match.
func (e *InvalidPayoffError) Is(target error) bool {
	return target == ErrInvalidPayoff
}
