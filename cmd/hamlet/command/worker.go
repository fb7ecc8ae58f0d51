package command

import (
	"context"
	"fmt"

	"github.com/pixil98/go-service/service"
	"github.com/pixil98/hamlet/internal/console"
	"github.com/pixil98/hamlet/internal/game"
	"github.com/pixil98/hamlet/internal/health"
	"github.com/pixil98/hamlet/internal/listener"
	"github.com/pixil98/hamlet/internal/messaging"
)

type worker interface {
	Start(ctx context.Context) error
}

// afterReady holds a worker back until a dependency is up.
type afterReady struct {
	ready func(context.Context) error
	next  worker
}

func (a *afterReady) Start(ctx context.Context) error {
	err := a.ready(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	return a.next.Start(ctx)
}

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	tick, err := cfg.tickInterval()
	if err != nil {
		return nil, err
	}

	workers := service.WorkerList{}

	// Session bus
	var bus messaging.Bus
	var busReady func(context.Context) error
	if cfg.Bus.EmbeddedNats {
		ns, err := cfg.Bus.Nats.buildNatsServer()
		if err != nil {
			return nil, fmt.Errorf("creating nats server: %w", err)
		}
		bus = ns
		busReady = ns.WaitReady
		workers["nats"] = ns
	} else {
		bus = messaging.NewLocalBus()
	}
	pub := messaging.NewPublisher(bus)

	// World and the loop that owns it
	cat, err := cfg.Assets.buildCatalog()
	if err != nil {
		return nil, fmt.Errorf("loading assets: %w", err)
	}
	loop := game.NewLoop(game.WithTickLength(tick))
	world, err := game.NewWorld(cfg.World.generateGrid(), cat, pub,
		game.WithScheduler(game.NewLoopScheduler(loop)))
	if err != nil {
		return nil, fmt.Errorf("creating world: %w", err)
	}
	loop.AddTicker(world)
	workers["loop"] = loop

	// Browser gateway
	gw, err := cfg.Gateway.buildServer(loop, world, bus, pub)
	if err != nil {
		return nil, fmt.Errorf("creating gateway: %w", err)
	}
	if busReady != nil {
		workers["gateway"] = &afterReady{ready: busReady, next: gw}
	} else {
		workers["gateway"] = gw
	}

	// Operator console
	cm := listener.NewConnectionManager(console.NewConsole(loop, world, console.WithColor(cfg.Console.Color)), cfg.Console.MaxSessions)
	listeners := make(service.WorkerList, len(cfg.Console.Listeners))
	for i, l := range cfg.Console.Listeners {
		lw, err := l.buildListener(cm, cfg.Console.password())
		if err != nil {
			return nil, fmt.Errorf("creating listener %d: %w", i, err)
		}
		listeners[fmt.Sprintf("listener-%d", i)] = lw
	}
	workers["listeners"] = &listeners

	if cfg.Health.enabled() {
		hs, err := cfg.Health.buildServer(health.LoopProbe(loop))
		if err != nil {
			return nil, fmt.Errorf("creating health server: %w", err)
		}
		workers["health"] = hs
	}

	return workers, nil
}
