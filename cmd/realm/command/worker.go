package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-realm/internal/broadcast"
	"github.com/pixil98/go-realm/internal/combat"
	"github.com/pixil98/go-realm/internal/commands"
	"github.com/pixil98/go-realm/internal/driver"
	"github.com/pixil98/go-realm/internal/game"
	"github.com/pixil98/go-realm/internal/listener"
	"github.com/pixil98/go-realm/internal/player"
	"github.com/pixil98/go-realm/internal/spells"
	"github.com/pixil98/go-realm/internal/world"
	"github.com/pixil98/go-service"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	tick, err := time.ParseDuration(cfg.TickInterval)
	if err != nil {
		return nil, fmt.Errorf("parsing tick_interval: %w", err)
	}

	// The embedded broker carries all room and session traffic. It must
	// be running before the first connection arrives, but the rest of
	// the wiring below only touches it at play time.
	nats, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating message broker: %w", err)
	}

	st, err := cfg.Storage.buildStores()
	if err != nil {
		return nil, fmt.Errorf("opening asset stores: %w", err)
	}

	graph, err := world.NewGraph(st.zones.GetAll(), st.doors.GetAll())
	if err != nil {
		return nil, fmt.Errorf("building world graph: %w", err)
	}
	if !graph.Contains(cfg.World.home()) {
		return nil, fmt.Errorf("home room %s does not exist", cfg.World.home())
	}

	reg := game.NewRegistry(nats, graph, cfg.World.actionCooldown())
	bcast := broadcast.NewBroadcaster(reg, nats)

	coord := combat.NewCoordinator(reg, bcast, st.creatures, st.weapons, st.items, st.chars)
	coord.SpawnAll()

	engine := spells.NewEngine(st.spells, reg, coord)

	talker, err := cfg.Dialogue.buildTalker()
	if err != nil {
		return nil, fmt.Errorf("creating talker: %w", err)
	}

	handler := commands.NewHandler(reg, bcast, coord, engine, talker, st.chars, st.weapons, st.items)
	pm := player.NewPlayerManager(reg, coord, bcast, handler, st.chars, cfg.World.home(), cfg.World.playerManagerOpts()...)
	cm := listener.NewConnectionManager(pm)

	listeners := make(service.WorkerList, len(cfg.Listeners))
	for i, l := range cfg.Listeners {
		w, err := l.BuildListener(cm)
		if err != nil {
			return nil, fmt.Errorf("creating listener %d: %w", i, err)
		}
		listeners[fmt.Sprintf("listener-%d", i)] = w
	}

	drv := driver.NewRealmDriver([]driver.Manager{
		reg,
		coord,
		pm,
	}, driver.WithTickLength(tick))

	return service.WorkerList{
		"nats":      nats,
		"driver":    drv,
		"listeners": &listeners,
	}, nil
}
