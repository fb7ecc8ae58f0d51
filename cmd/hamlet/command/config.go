package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
)

type Config struct {
	TickInterval string        `json:"tick_interval"`
	Gateway      GatewayConfig `json:"gateway"`
	Bus          BusConfig     `json:"bus"`
	World        WorldConfig   `json:"world"`
	Assets       AssetsConfig  `json:"assets"`
	Console      ConsoleConfig `json:"console"`
	Health       HealthConfig  `json:"health"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	_, err := c.tickInterval()
	el.Add(err)

	el.Add(c.Gateway.validate())
	el.Add(c.Bus.validate())
	el.Add(c.World.validate())
	el.Add(c.Assets.validate())
	el.Add(c.Console.validate())
	el.Add(c.Health.validate())

	return el.Err()
}

func (c *Config) tickInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.TickInterval)
	if err != nil {
		return 0, fmt.Errorf("parsing tick_interval: %w", err)
	}
	if d < time.Second {
		return 0, fmt.Errorf("tick_interval must be at least 1 second")
	}
	return d, nil
}
