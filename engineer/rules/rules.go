// Package rules loads the race-engineer rule configuration: the comms
// throttle, per-event cooldowns and detector thresholds.
//
// Rules files are YAML (JSON documents are accepted as YAML). Unknown keys are
// ignored so files written for newer versions still load. A few keys used by
// older rule files are mapped onto the canonical schema on load.
package rules

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultThrottle is the comms throttle, in seconds, when a file sets none.
const DefaultThrottle = 12.0

//go:embed v1.yaml
var defaultRules []byte

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// document is the on-disk schema, canonical keys first.
type document struct {
	Version        string             `yaml:"version"`
	CommsThrottleS *float64           `yaml:"comms_throttle_s"`
	EventCooldownS map[string]float64 `yaml:"event_cooldown_s"`
	Thresholds     map[string]float64 `yaml:"thresholds"`

	// Older rule files.
	ThrottleS *float64           `yaml:"throttle_s"`
	Comms     *legacyComms       `yaml:"comms"`
	Cooldowns map[string]float64 `yaml:"cooldowns"`
}

type legacyComms struct {
	ThrottleS       *float64 `yaml:"throttle_s"`
	ThrottleSeconds *float64 `yaml:"throttle_seconds"`
}

// thresholdAliases maps canonical threshold names to their older spelling.
var thresholdAliases = map[string]string{
	"wing_damage_warn_pct":     "wing_damage_warn",
	"wing_damage_critical_pct": "wing_damage_critical",
}

// upgrade folds legacy keys into the canonical ones. Canonical keys win when
// both spellings are present.
func (d *document) upgrade() {
	if d.CommsThrottleS == nil {
		switch {
		case d.ThrottleS != nil:
			d.CommsThrottleS = d.ThrottleS
		case d.Comms != nil && d.Comms.ThrottleS != nil:
			d.CommsThrottleS = d.Comms.ThrottleS
		case d.Comms != nil && d.Comms.ThrottleSeconds != nil:
			d.CommsThrottleS = d.Comms.ThrottleSeconds
		}
	}
	if d.EventCooldownS == nil {
		d.EventCooldownS = d.Cooldowns
	}
	for canonical, legacy := range thresholdAliases {
		if _, ok := d.Thresholds[canonical]; ok {
			continue
		}
		if v, ok := d.Thresholds[legacy]; ok {
			d.Thresholds[canonical] = v
		}
	}
}

// Config is a loaded rule set. The zero value is not usable; use Parse, Load
// or Default. A Config is immutable and safe for concurrent use.
type Config struct {
	version    string
	throttle   float64
	cooldowns  map[string]float64
	thresholds map[string]float64
}

// Parse decodes a rules document. An empty document yields the built-in
// throttle with no cooldowns or thresholds.
func Parse(data []byte) (*Config, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	var doc document
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}
	doc.upgrade()

	cfg := &Config{
		version:    doc.Version,
		throttle:   DefaultThrottle,
		cooldowns:  maps.Clone(doc.EventCooldownS),
		thresholds: maps.Clone(doc.Thresholds),
	}
	if cfg.version == "" {
		cfg.version = "v1"
	}
	if doc.CommsThrottleS != nil {
		cfg.throttle = *doc.CommsThrottleS
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads and parses a rules file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the embedded v1 rule set.
func Default() *Config {
	cfg, err := Parse(defaultRules)
	if err != nil {
		panic(fmt.Sprintf("embedded rules are invalid: %v", err))
	}
	return cfg
}

// Validate rejects negative durations.
func (c *Config) Validate() error {
	if c.throttle < 0 {
		return fmt.Errorf("comms_throttle_s must be >= 0, got %v", c.throttle)
	}
	for k, v := range c.cooldowns {
		if v < 0 {
			return fmt.Errorf("event_cooldown_s.%s must be >= 0, got %v", k, v)
		}
	}
	return nil
}

// Version is the version string declared by the file, "v1" when absent.
func (c *Config) Version() string { return c.version }

// Throttle is the minimum gap, in seconds, between non-urgent messages.
func (c *Config) Throttle() float64 { return c.throttle }

// Cooldown returns the cooldown for an event key, or def when unset.
func (c *Config) Cooldown(name string, def float64) float64 {
	if v, ok := c.cooldowns[name]; ok {
		return v
	}
	return def
}

// Threshold returns a named threshold, or def when unset.
func (c *Config) Threshold(name string, def float64) float64 {
	if v, ok := c.thresholds[name]; ok {
		return v
	}
	return def
}

// WithThrottle returns a copy of c with the comms throttle replaced.
func (c *Config) WithThrottle(seconds float64) *Config {
	out := *c
	out.throttle = seconds
	return &out
}
