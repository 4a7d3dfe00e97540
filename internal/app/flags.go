package app

import (
	"flag"
	"strconv"
)

// Config represents the command-line parameters for the GUI.
type Config struct {
	Sim      string
	Model    string
	Scale    int
	TPS      int
	Seed     int64
	W, H     int
	HUDWidth int
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{Sim: "markov-maze", Scale: 8, TPS: 30, Seed: 42, HUDWidth: 260}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Sim, "sim", c.Sim, "simulation to run")
	fs.StringVar(&c.Model, "model", c.Model, "YAML model file (overrides the sim's preset)")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixel scale multiplier")
	fs.IntVar(&c.TPS, "tps", c.TPS, "ticks per second")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for simulation reset")
	fs.IntVar(&c.W, "w", c.W, "grid width (0 keeps the model's)")
	fs.IntVar(&c.H, "h", c.H, "grid height (0 keeps the model's)")
	fs.IntVar(&c.HUDWidth, "hud", c.HUDWidth, "HUD panel width in pixels (0 hides it)")
}

// SimOptions converts the flags into the key/value map sim factories accept.
func (c *Config) SimOptions() map[string]string {
	opts := map[string]string{"seed": strconv.FormatInt(c.Seed, 10)}
	if c.Model != "" {
		opts["model"] = c.Model
	}
	if c.W > 0 {
		opts["w"] = strconv.Itoa(c.W)
	}
	if c.H > 0 {
		opts["h"] = strconv.Itoa(c.H)
	}
	return opts
}
