package markov

import (
	"strconv"

	"mad-rewrite/internal/engine"
)

// Config controls one rewrite simulation.
type Config struct {
	// Model is a preset name or a path to a YAML model file.
	Model string
	// Width and Height override the model's dims when positive.
	Width  int
	Height int
	Seed   int64

	StepsPerTick int
	// Temperature overrides the model's inference temperature when >= 0.
	Temperature float64

	Engine engine.Config
}

// DefaultConfig returns the standard configuration for a model.
func DefaultConfig(model string) Config {
	return Config{
		Model:        model,
		Seed:         1337,
		StepsPerTick: 8,
		Temperature:  -1,
		Engine:       engine.DefaultConfig(),
	}
}

// FromMap populates the config from a string map (flag-style key/value pairs).
func FromMap(model string, cfg map[string]string) Config {
	c := DefaultConfig(model)
	if cfg == nil {
		return c
	}
	if v, ok := cfg["model"]; ok && v != "" {
		c.Model = v
	}
	if v, ok := cfg["w"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Width = parsed
		}
	}
	if v, ok := cfg["h"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Height = parsed
		}
	}
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	if v, ok := cfg["steps_per_tick"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.StepsPerTick = parsed
		}
	}
	if v, ok := cfg["temperature"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 {
			c.Temperature = parsed
		}
	}
	if v, ok := cfg["no_cache"]; ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			c.Engine.NoCache = parsed
		}
	}
	if v, ok := cfg["workers"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			c.Engine.Workers = parsed
		}
	}
	return c
}
