package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/hamlet/internal/health"
)

// HealthConfig enables the gRPC health service when Port is set.
type HealthConfig struct {
	Host     string `json:"host"`
	Port     uint16 `json:"port"`
	Interval string `json:"interval"`
	Timeout  string `json:"timeout"`
}

func (c *HealthConfig) enabled() bool {
	return c.Port != 0
}

func (c *HealthConfig) validate() error {
	el := errors.NewErrorList()

	for name, v := range map[string]string{"interval": c.Interval, "timeout": c.Timeout} {
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			el.Add(fmt.Errorf("health: parsing %s: %w", name, err))
		} else if d <= 0 {
			el.Add(fmt.Errorf("health: %s must be positive", name))
		}
	}

	return el.Err()
}

func (c *HealthConfig) buildServer(probe health.Prober) (*health.Server, error) {
	opts := []health.ServerOpt{health.WithHost(c.Host), health.WithPort(c.Port)}
	if c.Interval != "" {
		d, err := time.ParseDuration(c.Interval)
		if err != nil {
			return nil, fmt.Errorf("parsing interval: %w", err)
		}
		opts = append(opts, health.WithInterval(d))
	}
	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parsing timeout: %w", err)
		}
		opts = append(opts, health.WithTimeout(d))
	}
	return health.NewServer(probe, opts...), nil
}
