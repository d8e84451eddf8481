package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gto-rangeviewer/server/appconfig"
	"gto-rangeviewer/server/loader"
	"gto-rangeviewer/server/navigator"
	"gto-rangeviewer/server/render"
	"gto-rangeviewer/server/store"
	"gto-rangeviewer/server/strategy"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

type cliArgs struct {
	migrate bool
	file    string
	print   string
}

func parseArgs(args []string) (cliArgs, error) {
	var c cliArgs
	for i := 0; i < len(args); i++ {
		a := args[i]
		name, val, hasVal := strings.Cut(a, "=")
		switch name {
		case "--migrate":
			c.migrate = true
			continue
		case "--file", "--print":
		default:
			return c, fmt.Errorf("unknown argument %q", a)
		}
		if !hasVal {
			if i+1 >= len(args) {
				return c, fmt.Errorf("%s needs a value", name)
			}
			i++
			val = args[i]
		}
		if name == "--file" {
			c.file = val
		} else {
			c.print = val
		}
	}
	return c, nil
}

func newLogger(format, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func main() {
	_ = godotenv.Load()

	cfg, err := appconfig.LoadAppConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := newLogger(cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(log)

	args, err := parseArgs(os.Args[1:])
	if err != nil {
		log.Error("bad arguments", "err", err)
		os.Exit(2)
	}
	if args.file != "" {
		cfg.ExportFile = args.file
	}

	nav := navigator.NewController(log)
	nav.Subscribe(warnDuplicateRoots(log))

	if cfg.ExportFile != "" {
		exp, err := loader.ReadFile(cfg.ExportFile)
		if err != nil {
			log.Error("load export", "err", err)
			os.Exit(1)
		}
		nav.Dispatch(navigator.Import{Export: exp})
	}

	if args.print != "" {
		if err := printRoot(nav, args.print); err != nil {
			log.Error("print", "err", err)
			os.Exit(1)
		}
		return
	}

	var db *store.DB
	if cfg.DatabaseURL != "" {
		p, err := store.Open(cfg.DatabaseURL)
		if err != nil {
			log.Warn("archive disabled (open failed)", "err", err)
		} else {
			db = p
			defer db.Close(context.Background())
			if cfg.AutoMigrate || args.migrate {
				if err := store.Migrate(context.Background(), db); err != nil {
					log.Error("migrate", "err", err)
					os.Exit(1)
				}
				log.Info("migrated")
			}
		}
	}
	if args.migrate {
		if db == nil {
			log.Error("--migrate needs a reachable DATABASE_URL")
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := serve(ctx, cfg, nav, db, log); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

// serve runs the HTTP server and, when enabled, the export watcher until ctx
// is cancelled or one of them fails.
func serve(ctx context.Context, cfg *appconfig.AppConfig, nav *navigator.Controller, db *store.DB, log *slog.Logger) error {
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      Router(nav, db, log, cfg.MaxImportBytes()),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", "addr", "http://localhost"+cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.ExportFile != "" && cfg.WatchExport {
		w, err := loader.NewWatcher(cfg.ExportFile, reimport(nav),
			loader.WithLogger(log),
			loader.WithOnError(func(err error) {
				if errors.Is(err, loader.ErrFileRemoved) {
					log.Warn("export file removed, keeping the loaded export", "file", cfg.ExportFile)
					return
				}
				log.Error("export reload failed, keeping the loaded export", "err", err)
			}),
		)
		if err != nil {
			return err
		}
		log.Info("export watch enabled", "path", w.Path())
		g.Go(func() error { return w.Run(ctx) })
	}
	return g.Wait()
}

// reimport swaps in a changed export and walks back to the same stack and
// root, so editing the file on disk keeps the view in place.
func reimport(nav *navigator.Controller) func(strategy.Export) {
	return func(exp strategy.Export) {
		prev := nav.State()
		nav.Dispatch(navigator.Import{Export: exp})
		if bb, ok := prev.Stack(); ok {
			nav.Dispatch(navigator.SelectStack{StackBB: bb})
		}
		if h := prev.History(); len(h) > 0 {
			nav.Dispatch(navigator.LoadRoot{Position: h[0].Position})
		}
	}
}

func warnDuplicateRoots(log *slog.Logger) navigator.Observer {
	return func(prev, next navigator.State) {
		if next.Graph() == prev.Graph() {
			return
		}
		for pos, ids := range next.Graph().DuplicateRoots() {
			log.Warn("duplicate root nodes", "position", pos.String(), "ids", ids, "using", ids[0])
		}
	}
}

// printRoot renders the root grid for position to stdout, at the first
// listed stack.
func printRoot(nav *navigator.Controller, position string) error {
	pos, err := strategy.ParsePosition(position)
	if err != nil {
		return err
	}
	s := nav.State()
	if s.Phase() == navigator.Empty {
		return errors.New("--print needs an export (--file or EXPORT_FILE)")
	}
	if stacks := s.Stacks(); len(stacks) > 0 {
		nav.Dispatch(navigator.SelectStack{StackBB: stacks[0]})
	}
	if _, ok := nav.Dispatch(navigator.LoadRoot{Position: pos}); !ok {
		return fmt.Errorf("export has no %s root", pos)
	}
	out, err := render.Terminal(nav.State())
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}
