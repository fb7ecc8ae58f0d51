package command

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/hamlet/internal/game"
	"github.com/pixil98/hamlet/internal/gateway"
	"github.com/pixil98/hamlet/internal/messaging"
)

const defaultGatewayPort = 3000

type GatewayConfig struct {
	Host           string   `json:"host"`
	Port           int      `json:"port"`
	StaticDir      string   `json:"static_dir"`
	AllowedOrigins []string `json:"allowed_origins"`
}

func (c *GatewayConfig) validate() error {
	el := errors.NewErrorList()

	_, err := c.port()
	el.Add(err)

	if c.StaticDir != "" {
		info, err := os.Stat(c.StaticDir)
		if err != nil {
			el.Add(fmt.Errorf("gateway: invalid static_dir %q: %w", c.StaticDir, err))
		} else if !info.IsDir() {
			el.Add(fmt.Errorf("gateway: static_dir %q is not a directory", c.StaticDir))
		}
	}

	return el.Err()
}

// port falls back to the PORT environment variable, then to 3000.
func (c *GatewayConfig) port() (int, error) {
	p := c.Port
	if p == 0 {
		env := os.Getenv("PORT")
		if env == "" {
			return defaultGatewayPort, nil
		}
		n, err := strconv.Atoi(env)
		if err != nil {
			return 0, fmt.Errorf("gateway: parsing PORT %q: %w", env, err)
		}
		p = n
	}
	if p < 1 || p > 65535 {
		return 0, fmt.Errorf("gateway: port %d is out of range", p)
	}
	return p, nil
}

func (c *GatewayConfig) buildServer(loop *game.Loop, world *game.World, bus messaging.Bus, pub *messaging.Publisher) (*gateway.Server, error) {
	port, err := c.port()
	if err != nil {
		return nil, err
	}

	opts := []gateway.ServerOpt{gateway.WithPort(port)}
	if c.Host != "" {
		opts = append(opts, gateway.WithHost(c.Host))
	}
	if c.StaticDir != "" {
		opts = append(opts, gateway.WithStaticDir(c.StaticDir))
	}
	if len(c.AllowedOrigins) > 0 {
		opts = append(opts, gateway.WithAllowedOrigins(c.AllowedOrigins...))
	}

	return gateway.NewServer(loop, world, bus, pub, opts...), nil
}
