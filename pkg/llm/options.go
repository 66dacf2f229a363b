package llm

import "fmt"

// Generation parameter bounds. These mirror the sidebar controls: the
// temperature slider runs 0.0-1.0 and the max-token input 100-4096.
const (
	MinTemperature     = 0.0
	MaxTemperature     = 1.0
	DefaultTemperature = 0.7

	MinMaxTokens     = 100
	MaxMaxTokens     = 4096
	DefaultMaxTokens = 1024
)

// Options contains model inference parameters. They are read at call time
// only; adjusting them between messages affects subsequent calls, never
// messages already generated.
type Options struct {
	Temperature *float64 `json:"temperature,omitempty"` // Creativity (0.0-1.0)
	MaxTokens   *int     `json:"max_tokens,omitempty"`  // Max tokens to generate
}

// DefaultOptions returns options matching the UI defaults.
func DefaultOptions() Options {
	return Options{
		Temperature: Float64(DefaultTemperature),
		MaxTokens:   Int(DefaultMaxTokens),
	}
}

// Validate rejects out-of-range parameters.
func (o Options) Validate() error {
	if o.Temperature != nil && (*o.Temperature < MinTemperature || *o.Temperature > MaxTemperature) {
		return fmt.Errorf("temperature %.2f out of range [%.1f, %.1f]", *o.Temperature, MinTemperature, MaxTemperature)
	}
	if o.MaxTokens != nil && (*o.MaxTokens < MinMaxTokens || *o.MaxTokens > MaxMaxTokens) {
		return fmt.Errorf("max_tokens %d out of range [%d, %d]", *o.MaxTokens, MinMaxTokens, MaxMaxTokens)
	}
	return nil
}

// Clamp returns a copy with out-of-range parameters pulled back to the
// nearest bound and unset parameters filled with defaults.
func (o Options) Clamp() Options {
	out := DefaultOptions()
	if o.Temperature != nil {
		t := min(max(*o.Temperature, MinTemperature), MaxTemperature)
		out.Temperature = &t
	}
	if o.MaxTokens != nil {
		n := min(max(*o.MaxTokens, MinMaxTokens), MaxMaxTokens)
		out.MaxTokens = &n
	}
	return out
}

// Float64 returns a pointer to v. Optional JSON fields are pointers so
// that "unset" and "zero" stay distinguishable.
func Float64(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
