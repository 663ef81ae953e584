package hub

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

type SchedulerKind string

const (
	// SchedulerGo starts a goroutine per activation.
	SchedulerGo SchedulerKind = "go"
	// SchedulerInline runs drain loops on the submitting goroutine.
	SchedulerInline SchedulerKind = "inline"
	// SchedulerLanes pins every actor to one of a fixed set of worker lanes.
	SchedulerLanes SchedulerKind = "lanes"
)

type SchedulerConfig struct {
	Kind SchedulerKind `yaml:"kind"`
	// MaxConcurrent bounds running drain loops for SchedulerGo. 0 is unbounded.
	MaxConcurrent int `yaml:"max_concurrent"`
	// Lanes is the lane count for SchedulerLanes. 0 means GOMAXPROCS.
	Lanes      int    `yaml:"lanes"`
	LaneBuffer int    `yaml:"lane_buffer"`
	Seed       string `yaml:"seed"`
}

type ActorConfig struct {
	MaxQueueDepth int `yaml:"max_queue_depth"`
}

// Config is the hub configuration. It can be loaded from YAML:
//
//	scheduler:
//	  kind: lanes
//	  lanes: 4
//	max_queue_depth: 10000
//	actors:
//	  calculator:
//	    max_queue_depth: 64
type Config struct {
	Scheduler SchedulerConfig `yaml:"scheduler"`
	// MaxQueueDepth applies to actors without an entry in Actors and without
	// a depth of their own. 0 is unbounded.
	MaxQueueDepth int                    `yaml:"max_queue_depth"`
	Actors        map[string]ActorConfig `yaml:"actors"`
}

func (c Config) Validate() error {
	switch c.Scheduler.Kind {
	case "", SchedulerGo, SchedulerInline, SchedulerLanes:
	default:
		return fmt.Errorf("%w: unknown scheduler kind %q", ErrInvalidConfig, c.Scheduler.Kind)
	}
	if c.Scheduler.MaxConcurrent < 0 || c.Scheduler.Lanes < 0 || c.Scheduler.LaneBuffer < 0 {
		return fmt.Errorf("%w: negative scheduler bound", ErrInvalidConfig)
	}
	if c.MaxQueueDepth < 0 {
		return fmt.Errorf("%w: negative max_queue_depth", ErrInvalidConfig)
	}
	for name, ac := range c.Actors {
		if ac.MaxQueueDepth < 0 {
			return fmt.Errorf("%w: actor %q: negative max_queue_depth", ErrInvalidConfig, name)
		}
	}
	return nil
}

// ParseConfig decodes and validates a YAML document.
func ParseConfig(data []byte) (Config, error) {
	var c Config
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("hub: read config: %w", err)
	}
	return ParseConfig(data)
}
