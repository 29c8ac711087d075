package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/touka-aoi/skirmish/config"
	"github.com/touka-aoi/skirmish/domain"
	"github.com/touka-aoi/skirmish/internal/console"
	"github.com/touka-aoi/skirmish/internal/fightqueue"
	"github.com/touka-aoi/skirmish/internal/handler"
	"github.com/touka-aoi/skirmish/internal/metrics"
	"github.com/touka-aoi/skirmish/observer"
	"github.com/touka-aoi/skirmish/persistence/roster"
	"github.com/touka-aoi/skirmish/report"
	"github.com/touka-aoi/skirmish/repository/state"
	"github.com/touka-aoi/skirmish/repository/state/memory"
	"github.com/touka-aoi/skirmish/server"
	"github.com/touka-aoi/skirmish/server/stream"
	"github.com/touka-aoi/skirmish/service"
	"github.com/touka-aoi/skirmish/simulation"
)

// 乱数ストリームの番号。seed が同じでも用途ごとに独立させる。
const (
	streamPlacement = iota
	streamMover
	streamDice
)

func run(ctx context.Context, cfg config.Config, logger *slog.Logger, stdout io.Writer) (err error) {
	runID := uuid.NewString()
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	logger = logger.With("run", runID)
	logger.InfoContext(ctx, "simulation starting",
		"mode", cfg.Mode, "seed", seed, "map", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height))

	agents, err := initialRoster(cfg, seed)
	if err != nil {
		return err
	}
	base, err := memory.NewStore(cfg.Width, cfg.Height, agents)
	if err != nil {
		return err
	}
	rec := metrics.NewRecorder()
	var world state.World
	if cfg.Mode == config.ModeSingle {
		world = memory.NewSingleThreadStore(base)
	} else {
		world = memory.NewConcurrentStore(base).WithMetrics(rec)
	}

	out := console.New(stdout)
	hub := observer.NewHub(logger)
	defer func() {
		if cerr := hub.Close(); cerr != nil {
			logger.WarnContext(ctx, "failed to close sinks", "err", cerr)
		}
	}()
	var renderers report.Multi

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	closeScreen := func() {}
	if cfg.Renderer == config.RendererScreen {
		screen, err := tcell.NewScreen()
		if err != nil {
			return err
		}
		if err := screen.Init(); err != nil {
			return err
		}
		var once sync.Once
		closeScreen = func() { once.Do(screen.Fini) }
		defer closeScreen()
		sr := report.NewScreenRenderer(screen)
		go sr.WatchQuit(cancel)
		renderers = append(renderers, sr)
		hub.Subscribe(sr)
	} else {
		renderers = append(renderers, report.NewTextRenderer(out))
		hub.Subscribe(observer.NewConsoleSink(out))
	}

	if cfg.LogFile != "" {
		fs, err := observer.OpenFileSink(cfg.LogFile)
		if err != nil {
			return err
		}
		hub.Subscribe(fs)
	}
	if cfg.JournalDir != "" {
		js, err := observer.OpenJournalSink(cfg.JournalDir, runID)
		if err != nil {
			return err
		}
		hub.Subscribe(js)
		logger.InfoContext(ctx, "journal enabled", "path", js.Path())
	}
	var index *observer.IndexSink
	if cfg.IndexDB != "" {
		index, err = observer.OpenIndexSink(cfg.IndexDB, runID)
		if err != nil {
			return err
		}
		hub.Subscribe(index)
	}

	g, gctx := errgroup.WithContext(ctx)
	serveCtx, stopServe := context.WithCancel(gctx)
	defer func() {
		stopServe()
		if werr := g.Wait(); werr != nil && err == nil {
			err = werr
		}
	}()
	if cfg.ListenAddr != "" {
		b := stream.NewBroadcaster()
		hub.Subscribe(b)
		renderers = append(renderers, b)
		srv := server.NewServer(cfg.ListenAddr, server.Route(b))
		g.Go(func() error {
			return srv.Run(serveCtx, 5*time.Second)
		})
	}

	queue := fightqueue.New()
	rules := cfg.Ruleset()
	mover, err := service.NewMover(service.MoverConfig{
		World:    world,
		Queue:    queue,
		Rules:    rules,
		Rand:     rand.New(rand.NewPCG(seed, streamMover)),
		Metrics:  rec,
		Logger:   logger,
		Interval: cfg.Tick,
	})
	if err != nil {
		return err
	}
	resolver, err := service.NewResolver(service.ResolverConfig{
		World:     world,
		Dice:      domain.NewD6(rand.New(rand.NewPCG(seed, streamDice))),
		Publisher: hub,
		Metrics:   rec,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	var result simulation.Result
	if cfg.Mode == config.ModeSingle {
		ls, err := simulation.NewLockstep(simulation.LockstepConfig{
			World:         world,
			Mover:         mover,
			Resolver:      resolver,
			Queue:         queue,
			Renderer:      renderers,
			TotalTicks:    cfg.TotalTicks(),
			TicksPerPrint: cfg.TicksPerPrint(),
			Logger:        logger,
		})
		if err != nil {
			return err
		}
		result, err = ls.Run(ctx)
		if err != nil {
			return err
		}
	} else {
		loop, err := handler.New(handler.Config{
			Handler: resolver,
			Source:  queue,
			Workers: cfg.Resolvers,
			Logger:  logger,
		})
		if err != nil {
			return err
		}
		sched, err := simulation.NewScheduler(simulation.SchedulerConfig{
			World:         world,
			Mover:         mover,
			Loop:          loop,
			Renderer:      renderers,
			Duration:      cfg.Duration,
			PrintInterval: cfg.PrintInterval,
			Logger:        logger,
		})
		if err != nil {
			return err
		}
		result, err = sched.Run(ctx)
		if err != nil {
			return err
		}
	}

	closeScreen()
	return finish(ctx, cfg, logger, out, result, index, rec)
}

func initialRoster(cfg config.Config, seed uint64) ([]domain.Agent, error) {
	if cfg.RosterIn != "" {
		return roster.LoadFile(cfg.RosterIn)
	}
	rng := rand.New(rand.NewPCG(seed, streamPlacement))
	return service.RandomRoster(rng, cfg.Width, cfg.Height, cfg.Agents), nil
}

func finish(ctx context.Context, cfg config.Config, logger *slog.Logger, out *console.Console,
	result simulation.Result, index *observer.IndexSink, rec *metrics.Recorder) error {
	var errs []error
	errs = append(errs, out.Do(func(w io.Writer) error {
		return report.WriteSurvivors(w, result.Survivors)
	}))
	if cfg.RosterOut != "" {
		if err := roster.SaveFile(cfg.RosterOut, result.Survivors); err != nil {
			errs = append(errs, fmt.Errorf("save roster: %w", err))
		}
	}
	if index != nil {
		tally, err := index.TallyByKind(ctx)
		if err != nil {
			logger.WarnContext(ctx, "kill tally failed", "err", err)
		} else {
			for _, k := range domain.Kinds {
				logger.InfoContext(ctx, "kill tally", "kind", k, "kills", tally[k])
			}
		}
	}
	logger.InfoContext(ctx, "simulation finished",
		"ticks", result.Ticks,
		"handled", result.Handled,
		"survivors", len(result.Survivors),
	)
	rec.Log(ctx, logger)
	return errors.Join(errs...)
}
