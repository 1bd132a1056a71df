package mdstream

import "strings"

// Strategy controls which content is included before any heading is seen.
type Strategy string

// Supported strategies.
const (
	StrategyMinimal                Strategy = "minimal"
	StrategyMinimalFromFirstHeader Strategy = "minimal-from-first-header"
	StrategyFull                   Strategy = "full"
)

// DefaultStrategy is used when Options.Strategy is empty.
const DefaultStrategy = StrategyMinimal

// ParseStrategy validates a strategy name. An empty name yields DefaultStrategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultStrategy, nil
	case StrategyMinimal:
		return StrategyMinimal, nil
	case StrategyMinimalFromFirstHeader:
		return StrategyMinimalFromFirstHeader, nil
	case StrategyFull:
		return StrategyFull, nil
	}
	return "", Errorf(EINVALID, "unknown strategy %q", s)
}

// Options configures a conversion. The zero value is valid.
type Options struct {
	// Origin is the base URL for resolving root-relative href and src values.
	Origin string

	// Strategy selects the built-in filtering preset.
	Strategy Strategy

	// Plugins run after the strategy's built-in plugins, in list order.
	// Plugins may hold per-conversion state, so a slice must not be shared by
	// concurrent conversions unless every plugin in it is stateless.
	Plugins []Plugin
}

// Validate returns an error if the options contain invalid fields.
func (o *Options) Validate() error {
	if o.Strategy != "" {
		if _, err := ParseStrategy(string(o.Strategy)); err != nil {
			return err
		}
	}
	for i, p := range o.Plugins {
		if p == nil {
			return Errorf(EINVALID, "plugin %d is nil", i)
		}
	}
	return nil
}
