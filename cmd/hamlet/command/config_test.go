package command

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/pixil98/go-testutil"
)

func validConfig() *Config {
	return &Config{TickInterval: "5s"}
}

func TestConfig_Validate(t *testing.T) {
	tests := map[string]struct {
		mutate func(*Config)
		expErr string
	}{
		"minimal": {},
		"bad tick": {
			mutate: func(c *Config) { c.TickInterval = "often" },
			expErr: "parsing tick_interval",
		},
		"short tick": {
			mutate: func(c *Config) { c.TickInterval = "500ms" },
			expErr: "tick_interval must be at least 1 second",
		},
		"gateway port": {
			mutate: func(c *Config) { c.Gateway.Port = 70000 },
			expErr: "gateway: port 70000 is out of range",
		},
		"missing static dir": {
			mutate: func(c *Config) { c.Gateway.StaticDir = "/does/not/exist" },
			expErr: "invalid static_dir",
		},
		"nats timeout": {
			mutate: func(c *Config) {
				c.Bus.EmbeddedNats = true
				c.Bus.Nats.StartTimeout = "forever"
			},
			expErr: "bus: parsing start_timeout",
		},
		"nats ignored when disabled": {
			mutate: func(c *Config) { c.Bus.Nats.StartTimeout = "forever" },
		},
		"small world": {
			mutate: func(c *Config) { c.World.Width = 10 },
			expErr: "world: width must be 0 or at least 32",
		},
		"missing asset dir": {
			mutate: func(c *Config) { c.Assets.Quests.Path = "/does/not/exist" },
			expErr: "assets quests: invalid path",
		},
		"listener without port": {
			mutate: func(c *Config) { c.Console.Listeners = []ListenerConfig{{Protocol: ListenerTypeSSH}} },
			expErr: "port must be set to a positive integer",
		},
		"telnet host key": {
			mutate: func(c *Config) {
				c.Console.Listeners = []ListenerConfig{{Protocol: ListenerTypeTelnet, Port: 4000, HostKeyPath: "key"}}
			},
			expErr: "host_key_path only applies to ssh listeners",
		},
		"negative sessions": {
			mutate: func(c *Config) { c.Console.MaxSessions = -1 },
			expErr: "max_sessions must not be negative",
		},
		"health interval": {
			mutate: func(c *Config) { c.Health.Interval = "-1s" },
			expErr: "health: interval must be positive",
		},
		"several problems": {
			mutate: func(c *Config) {
				c.TickInterval = ""
				c.World.Height = 1
			},
			expErr: "world: height must be 0 or at least 32",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv("PORT", "")
			cfg := validConfig()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			err := cfg.Validate()
			if tt.expErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			testutil.AssertErrorContains(t, err, tt.expErr)
		})
	}
}

func TestGatewayConfig_Port(t *testing.T) {
	tests := map[string]struct {
		port   int
		env    string
		exp    int
		expErr string
	}{
		"default":         {exp: 3000},
		"from env":        {env: "8080", exp: 8080},
		"config wins":     {port: 9000, env: "8080", exp: 9000},
		"env not numeric": {env: "http", expErr: `parsing PORT "http"`},
		"env too big":     {env: "99999", expErr: "port 99999 is out of range"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv("PORT", tt.env)
			c := GatewayConfig{Port: tt.port}
			got, err := c.port()
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "port", got, tt.exp)
		})
	}
}

func TestListenerType_Unmarshal(t *testing.T) {
	tests := map[string]struct {
		json   string
		exp    ListenerType
		expErr string
	}{
		"telnet":  {json: `{"protocol":"telnet","port":4000}`, exp: ListenerTypeTelnet},
		"ssh":     {json: `{"protocol":"ssh","port":4001}`, exp: ListenerTypeSSH},
		"unknown": {json: `{"protocol":"http","port":4002}`, expErr: "unknown listener type: http"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var lc ListenerConfig
			err := json.Unmarshal([]byte(tt.json), &lc)
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "protocol", lc.Protocol, tt.exp)
		})
	}
}

func TestConsoleConfig_Password(t *testing.T) {
	t.Setenv(ConsolePasswordEnv, "from-env")

	c := ConsoleConfig{}
	testutil.AssertEqual(t, "env", c.password(), "from-env")

	c.Password = "from-config"
	testutil.AssertEqual(t, "config", c.password(), "from-config")
}

func TestAssetsConfig_BuildCatalog(t *testing.T) {
	dir := t.TempDir()
	asset := `{"version":1,"id":"rock_9","spec":{"x":480,"y":520,"resource_type":"rock","name":"Boulder","text":"Big.","max_health":2,"yield":{"item":"stone","amount":1},"respawn_time":"5s"}}`
	err := os.WriteFile(filepath.Join(dir, "rock_9.json"), []byte(asset), 0o644)
	if err != nil {
		t.Fatalf("writing asset: %v", err)
	}

	c := AssetsConfig{}
	c.Nodes.Path = dir
	if err := c.validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cat, err := c.buildCatalog()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "nodes", strings.Join(cat.Nodes.Keys(), ","), "rock_9")
	testutil.AssertEqual(t, "default interactables", len(cat.Interactables.Keys()), 2)
	testutil.AssertEqual(t, "default quests", len(cat.Quests.Keys()), 2)
}

func TestAssetsConfig_BuildCatalogInvalidAsset(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`{"version":1,"id":"bad","spec":{"name":"x"}}`), 0o644)
	if err != nil {
		t.Fatalf("writing asset: %v", err)
	}

	c := AssetsConfig{}
	c.Nodes.Path = dir
	_, err = c.buildCatalog()
	testutil.AssertErrorContains(t, err, "creating node store")
}

func TestWorldConfig_GenerateGrid(t *testing.T) {
	tests := map[string]struct {
		cfg       WorldConfig
		expWidth  int
		expHeight int
	}{
		"defaults":    {expWidth: 80, expHeight: 80},
		"custom":      {cfg: WorldConfig{Seed: 9, Width: 48, Height: 40}, expWidth: 48, expHeight: 40},
		"only height": {cfg: WorldConfig{Height: 64}, expWidth: 80, expHeight: 64},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			g := tt.cfg.generateGrid()
			testutil.AssertEqual(t, "width", g.Width(), tt.expWidth)
			testutil.AssertEqual(t, "height", g.Height(), tt.expHeight)
		})
	}
}

func TestBuildWorkers(t *testing.T) {
	tests := map[string]struct {
		mutate     func(*Config)
		expWorkers string
	}{
		"local bus": {
			expWorkers: "gateway,listeners,loop",
		},
		"embedded nats and health": {
			mutate: func(c *Config) {
				c.Bus.EmbeddedNats = true
				c.Health.Port = 50051
			},
			expWorkers: "gateway,health,listeners,loop,nats",
		},
		"console listeners": {
			mutate: func(c *Config) {
				c.Console.Listeners = []ListenerConfig{
					{Protocol: ListenerTypeTelnet, Port: 4000},
					{Protocol: ListenerTypeSSH, Port: 4001},
				}
			},
			expWorkers: "gateway,listeners,loop",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}

			workers, err := BuildWorkers(cfg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			names := make([]string, 0, len(workers))
			for name := range workers {
				names = append(names, name)
			}
			slices.Sort(names)
			testutil.AssertEqual(t, "workers", strings.Join(names, ","), tt.expWorkers)
		})
	}
}

func TestBuildWorkers_BadConfig(t *testing.T) {
	_, err := BuildWorkers("not a config")
	testutil.AssertErrorContains(t, err, "unable to cast config")

	_, err = BuildWorkers(&Config{TickInterval: "1ms"})
	testutil.AssertErrorContains(t, err, "tick_interval must be at least 1 second")
}
