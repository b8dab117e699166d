package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/Sokpao/Agent-TAC/agent"
	"github.com/Sokpao/Agent-TAC/api"
	"github.com/Sokpao/Agent-TAC/bridge"
	"github.com/Sokpao/Agent-TAC/config"
	"github.com/Sokpao/Agent-TAC/journal"
	"github.com/Sokpao/Agent-TAC/market"
	"github.com/Sokpao/Agent-TAC/nats/natsbridge"
	"github.com/Sokpao/Agent-TAC/rabbit/eventpublisher"
	"github.com/Sokpao/Agent-TAC/simulation"
	"github.com/Sokpao/Agent-TAC/ws/wsbridge"
)

func main() {
	app := &cli.App{
		Name:  "agentnode",
		Usage: "TAC Travel bidding agent",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "debug, info, warn or error"},
			&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "KEY=VALUE file loaded before anything else"},
			&cli.StringFlag{Name: "config", Usage: "YAML rules file, defaults apply when empty"},
			&cli.StringFlag{Name: "journal", Usage: "sqlite file recording agent events and game scores"},
			&cli.BoolFlag{Name: "rabbit", Usage: "publish agent events to RabbitMQ (RABBITMQ_URL)"},
			&cli.StringFlag{Name: "listen", Usage: "address for the status API, disabled when empty"},
		},
		Commands: []*cli.Command{
			simulateCmd,
			natsCmd,
			wsCmd,
			marketCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Println("Error: ", err)
		os.Exit(1)
	}
}

var simulateCmd = &cli.Command{
	Name:  "simulate",
	Usage: "Play games against the in-process market",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "games", Value: simulation.DefaultOptions.Games},
		&cli.IntFlag{Name: "first-game", Value: simulation.DefaultOptions.FirstGameID},
		&cli.Int64Flag{Name: "seed", Value: simulation.DefaultOptions.Seed},
		&cli.DurationFlag{Name: "step", Value: simulation.DefaultOptions.Step, Usage: "game time between market updates"},
	},
	Action: func(ctx *cli.Context) error {
		env, err := setup(ctx)
		if err != nil {
			return err
		}
		defer env.close()

		sim := simulation.New(env.rules, env.logger, env.observers)
		if env.journal != nil {
			sim.AddSink(env.journal.RecordGame)
		}
		if env.publisher != nil {
			sim.AddSink(env.publisher.PublishGame)
		}
		env.serveAPI(sim)

		report, err := sim.Run(ctx.Context, simulation.Options{
			Games:       ctx.Int("games"),
			FirstGameID: ctx.Int("first-game"),
			Seed:        ctx.Int64("seed"),
			Step:        ctx.Duration("step"),
			Progress:    os.Stderr,
		})
		fmt.Print(report)
		return err
	},
}

var natsCmd = &cli.Command{
	Name:  "nats",
	Usage: "Play against a remote market over NATS",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "url", Value: "nats://127.0.0.1:4222", EnvVars: []string{"NATS_URL"}},
		&cli.StringFlag{Name: "agent", Required: true, Usage: "agent name, used in the subjects"},
	},
	Action: func(ctx *cli.Context) error {
		env, err := setup(ctx)
		if err != nil {
			return err
		}
		defer env.close()

		conn, err := natsbridge.Connect(ctx.String("url"), ctx.String("agent"))
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		a := agent.New(env.rules, env.logger, env.observers)
		env.serveAPI(a)
		return bridge.Serve(ctx.Context, natsbridge.ForAgent(conn, ctx.String("agent")), a, env.logger)
	},
}

var wsCmd = &cli.Command{
	Name:  "ws",
	Usage: "Play against a remote market over a websocket",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "url", Value: "ws://127.0.0.1:8088/tac", EnvVars: []string{"TAC_WS_URL"}},
	},
	Action: func(ctx *cli.Context) error {
		env, err := setup(ctx)
		if err != nil {
			return err
		}
		defer env.close()

		transport, err := wsbridge.Dial(ctx.Context, ctx.String("url"), env.logger)
		if err != nil {
			return fmt.Errorf("websocket: %w", err)
		}
		a := agent.New(env.rules, env.logger, env.observers)
		env.serveAPI(a)

		serveCtx, cancel := context.WithCancel(ctx.Context)
		defer cancel()
		go func() {
			<-transport.Done()
			cancel()
		}()
		return bridge.Serve(serveCtx, transport, a, env.logger)
	},
}

var marketCmd = &cli.Command{
	Name:  "market",
	Usage: "Host the simulated market for remote agents",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "nats-url", Usage: "serve one agent over NATS"},
		&cli.StringFlag{Name: "agent", Value: "tac", Usage: "agent name, used in the NATS subjects"},
		&cli.StringFlag{Name: "ws-listen", Usage: "serve websocket agents on this address"},
		&cli.IntFlag{Name: "games", Value: 1},
		&cli.Int64Flag{Name: "seed", Value: 1},
		&cli.DurationFlag{Name: "step", Value: time.Second, Usage: "game time per tick"},
		&cli.DurationFlag{Name: "tick", Value: time.Second, Usage: "wall time per tick"},
		&cli.Float64Flag{Name: "flakiness", Usage: "probability of losing each outbound message"},
		&cli.DurationFlag{Name: "latency", Usage: "upper bound on added outbound latency"},
	},
	Action: func(ctx *cli.Context) error {
		env, err := setup(ctx)
		if err != nil {
			return err
		}
		defer env.close()

		play := func(c context.Context, transport bridge.Transport) error {
			m := market.New(env.rules, ctx.Int64("seed"), env.logger)
			if ctx.Float64("flakiness") > 0 || ctx.Duration("latency") > 0 {
				lossy := bridge.NewLossy(transport, ctx.Int64("seed"))
				lossy.Flakiness = ctx.Float64("flakiness")
				lossy.LatencyMax = ctx.Duration("latency")
				transport = lossy
			}
			server, err := bridge.NewServer(m, transport, env.logger)
			if err != nil {
				return err
			}
			for i := 0; i < ctx.Int("games"); i++ {
				if err := server.Play(c, i+1, ctx.Duration("step"), ctx.Duration("tick")); err != nil {
					return err
				}
			}
			return nil
		}

		switch {
		case ctx.String("nats-url") != "":
			conn, err := natsbridge.Connect(ctx.String("nats-url"), ctx.String("agent"))
			if err != nil {
				return fmt.Errorf("nats: %w", err)
			}
			transport := natsbridge.ForServer(conn, ctx.String("agent"))
			defer transport.Close()
			return play(ctx.Context, transport)

		case ctx.String("ws-listen") != "":
			mux := http.NewServeMux()
			mux.Handle("/tac", wsbridge.Handler(env.logger, func(t *wsbridge.Transport) {
				c, cancel := context.WithCancel(ctx.Context)
				defer cancel()
				go func() {
					<-t.Done()
					cancel()
				}()
				if err := play(c, t); err != nil && !errors.Is(err, context.Canceled) {
					env.logger.Warn("market session ended", "error", err)
				}
			}))
			server := &http.Server{Addr: ctx.String("ws-listen"), Handler: mux}
			go func() {
				<-ctx.Context.Done()
				server.Close()
			}()
			env.logger.Info("market listening", "addr", server.Addr)
			if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}
		return errors.New("need --nats-url or --ws-listen")
	},
}

type environment struct {
	rules     config.Rules
	logger    *slog.Logger
	observers agent.Observers
	journal   *journal.Journal
	publisher *eventpublisher.Publisher
	api       *api.Server
	listen    string
	stop      context.CancelFunc
}

// setup loads configuration and opens the optional sinks shared by every
// command. It also ties the command's context to SIGINT and SIGTERM.
func setup(ctx *cli.Context) (*environment, error) {
	if err := config.LoadEnvFile(ctx.String("env-file")); err != nil {
		return nil, err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(ctx.String("log-level"))); err != nil {
		return nil, fmt.Errorf("log-level: %w", err)
	}
	env := &environment{
		logger:    slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})),
		observers: agent.Observers{},
		listen:    ctx.String("listen"),
	}

	env.rules = config.DefaultRules.Copy()
	if path := ctx.String("config"); path != "" {
		rules, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		env.rules = rules
	}
	if err := config.ApplyEnv(&env.rules); err != nil {
		return nil, err
	}

	if path := ctx.String("journal"); path != "" {
		j, err := journal.Open(path, env.logger)
		if err != nil {
			return nil, fmt.Errorf("journal: %w", err)
		}
		env.journal = j
		env.observers = append(env.observers, j)
	}

	if ctx.Bool("rabbit") {
		p, err := eventpublisher.Dial(eventpublisher.URLFromEnv(), env.logger)
		if err != nil {
			env.close()
			return nil, fmt.Errorf("rabbit: %w", err)
		}
		env.publisher = p
		env.observers = append(env.observers, p)
	}

	ctx.Context, env.stop = signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
	return env, nil
}

func (env *environment) serveAPI(source api.SnapshotSource) {
	if env.listen == "" {
		return
	}
	env.api = api.New(source, env.logger)
	go func() {
		if err := env.api.Start(env.listen); err != nil {
			env.logger.Error("status api stopped", "error", err)
		}
	}()
}

func (env *environment) close() {
	if env.api != nil {
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		env.api.Shutdown(shutdown)
	}
	if env.publisher != nil {
		env.publisher.Close()
	}
	if env.journal != nil {
		env.journal.Close()
	}
	if env.stop != nil {
		env.stop()
	}
}
