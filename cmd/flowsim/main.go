package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/odnodvorets/flowsim/internal/config"
	"github.com/odnodvorets/flowsim/internal/data"
	"github.com/odnodvorets/flowsim/internal/persist"
	"github.com/odnodvorets/flowsim/internal/scripting"
	"github.com/odnodvorets/flowsim/internal/sim"
	"github.com/odnodvorets/flowsim/internal/system"
	"github.com/odnodvorets/flowsim/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(seed uint64) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              flowsim  v0.1.0              \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m     time-driven cooperative flow sim      \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mseed:\033[0m %d\n\n", seed)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(p *message.Printer, label string, v any) {
	val := p.Sprintf("%v", v)
	dotsLen := 42 - len(label) - len(val)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), val)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main simulation logic ─────────────────────────────────────────

func run() error {
	cfgPath := flag.String("config", os.Getenv("FLOWSIM_CONFIG"), "path to a TOML config file (empty = defaults)")
	steps := flag.Int("steps", -1, "number of steps to run, overrides sim.max_steps (0 = until interrupted)")
	seed := flag.Uint64("seed", 0, "world seed, overrides sim.seed")
	flag.Parse()

	// 1. Load config
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *steps >= 0 {
		cfg.Sim.MaxSteps = *steps
	}
	if *seed != 0 {
		cfg.Sim.Seed = *seed
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Sim.Seed)
	p := message.NewPrinter(language.English)

	// 3. Load data and scripts
	printSection("data")
	spawns, err := data.LoadSpawnList(cfg.Data.SpawnList)
	if err != nil {
		return fmt.Errorf("spawn list: %w", err)
	}
	printStat(p, "entity kinds", len(spawns.Kinds()))
	printStat(p, "spawn entries", len(spawns.Spawns))

	engine, err := scripting.NewEngine(cfg.Scripting.Dir, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer engine.Close()
	printOK(fmt.Sprintf("lua loaded (plant stages: %d)", engine.PlantMaxStage()))
	fmt.Println()

	// 4. Optional journal database
	var journal system.JournalWriter
	var journalRepo *persist.JournalRepo
	if cfg.Database.DSN != "" {
		printSection("journal")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			cancel()
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		err = persist.RunMigrations(ctx, db.Pool, log)
		cancel()
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK("migrations applied")
		fmt.Println()
		journalRepo = persist.NewJournalRepo(db, cfg.Sim.Seed)
		journal = journalRepo
	}

	// 5. Optional telemetry output
	out, err := telemetry.NewOutputManager(cfg.Telemetry.OutputDir)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer out.Close()
	if err := out.WriteConfig(cfg); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}

	// 6. Build and populate the world
	s := sim.New(cfg, sim.Deps{
		Growth:  engine,
		Spawns:  spawns,
		Journal: journal,
		Output:  out,
	}, log)
	defer s.Close()
	s.Populate()
	printStat(p, "component stores", len(s.World.Registry().Names()))

	// 7. Run the loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdownCh)

	printSection("running")
	printReady(fmt.Sprintf("frame delta %g, max steps %d, pace %s", cfg.Sim.FrameDelta, cfg.Sim.MaxSteps, cfg.Sim.Pace))
	if out != nil {
		printReady("telemetry → " + out.Dir())
	}
	fmt.Println()

	start := time.Now()
	if err := loop(s, cfg.Sim, shutdownCh, log); err != nil {
		return err
	}
	s.Close()

	printSummary(p, s.Summary(), time.Since(start))
	printKinds(p, s.KindCounts())
	if journalRepo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		n, err := journalRepo.CountRun(ctx)
		if err != nil {
			return fmt.Errorf("journal: %w", err)
		}
		printStat(p, "journal rows for this seed", n)
	}
	fmt.Println()
	return nil
}

// loop steps the simulation until max steps or a shutdown signal. Pace only
// throttles the host; the clock always advances by the frame delta.
func loop(s *sim.Sim, cfg config.SimConfig, shutdownCh <-chan os.Signal, log *zap.Logger) error {
	var tick <-chan time.Time
	if cfg.Pace > 0 {
		ticker := time.NewTicker(cfg.Pace)
		defer ticker.Stop()
		tick = ticker.C
	}

	for n := 0; cfg.MaxSteps == 0 || n < cfg.MaxSteps; n++ {
		if tick != nil {
			select {
			case <-tick:
			case sig := <-shutdownCh:
				log.Info("shutdown signal received", zap.String("signal", sig.String()))
				return nil
			}
		} else {
			select {
			case sig := <-shutdownCh:
				log.Info("shutdown signal received", zap.String("signal", sig.String()))
				return nil
			default:
			}
		}
		s.Step()
	}
	log.Info("max steps reached", zap.Int("steps", cfg.MaxSteps))
	return nil
}

func printSummary(p *message.Printer, sum sim.Summary, wall time.Duration) {
	fmt.Println()
	printSection("summary")
	printStat(p, "steps", sum.Steps)
	printStat(p, "simulated time", int64(sum.SimTime))
	printStat(p, "entities", sum.Entities)
	printStat(p, "plants", sum.Plants)
	printStat(p, "flows spawned", sum.Flows.Spawned)
	printStat(p, "flow wakeups", sum.Flows.Woken)
	printStat(p, "flows completed", sum.Flows.Completed)
	printStat(p, "flows cancelled", sum.Flows.Cancelled)
	printStat(p, "actions committed", sum.Commits)
	printStat(p, "actions aborted", sum.Aborts)
	printStat(p, "moves", sum.Moves)
	printStat(p, "journal entries", sum.JournalWritten)
	printReady(p.Sprintf("done in %v (%.0f steps/s)", wall.Round(time.Millisecond), float64(sum.Steps)/wall.Seconds()))
}

func printKinds(p *message.Printer, counts map[string]int) {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println()
	printSection("population")
	for _, name := range names {
		printStat(p, name, counts[name])
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
