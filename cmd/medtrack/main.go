package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hanafy/medtrack/internal/api"
	"github.com/hanafy/medtrack/internal/config"
	"github.com/hanafy/medtrack/internal/schedule"
	"github.com/hanafy/medtrack/internal/store"
	"github.com/hanafy/medtrack/internal/tracker"
)

var (
	configPath = flag.String("config", "", "Path to config file")
	dataDir    = flag.String("data", "", "Path to data directory")
	version    = "dev"
)

// App holds the application components
type App struct {
	config  *config.Config
	store   *store.Store
	tracker *tracker.Tracker
	logger  *zap.Logger
}

func main() {
	// Handle subcommands before flag parsing
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "today":
			handleTodayCommand(os.Args[2:])
			return
		case "record":
			handleRecordCommand(os.Args[2:])
			return
		case "history":
			handleHistoryCommand(os.Args[2:])
			return
		case "compliance":
			handleComplianceCommand(os.Args[2:])
			return
		case "streak":
			handleStreakCommand(os.Args[2:])
			return
		case "prune":
			handlePruneCommand(os.Args[2:])
			return
		case "config":
			handleConfigCommand(os.Args[2:])
			return
		case "help", "--help", "-h":
			printHelp()
			return
		case "version", "--version", "-v":
			fmt.Printf("medtrack version %s\n", version)
			return
		}
	}

	flag.Parse()

	// Initialize logger
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting medtrack", zap.String("version", version))

	app := bootstrap(logger, *configPath, *dataDir)
	defer app.store.Close()

	app.runServer()
}

// bootstrap loads config and wires the tracker stack.
func bootstrap(logger *zap.Logger, configPath, dataDir string) *App {
	cfg, err := config.Load(configPath, dataDir)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	st, err := store.New(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize store", zap.Error(err))
	}

	sched, err := schedule.LoadFile(cfg.Schedule.Path)
	if err != nil {
		logger.Fatal("Failed to load medication schedule",
			zap.String("path", cfg.Schedule.Path),
			zap.Error(err))
	}

	tr, err := tracker.New(st.DB(), sched, cfg.Tracker, logger)
	if err != nil {
		logger.Fatal("Failed to initialize tracker", zap.Error(err))
	}

	return &App{
		config:  cfg,
		store:   st,
		tracker: tr,
		logger:  logger,
	}
}

func (a *App) runServer() {
	server := api.New(a.config, a.tracker, a.logger)

	go func() {
		a.logger.Info("API server listening",
			zap.String("address", a.config.Server.Address),
			zap.Int("port", a.config.Server.Port))
		if err := server.Start(); err != nil {
			a.logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	a.logger.Info("Shutting down")
	if err := server.Shutdown(); err != nil {
		a.logger.Error("Shutdown error", zap.Error(err))
	}
}

// cliApp builds the stack for one-shot CLI commands with quiet logging.
func cliApp(fs *flag.FlagSet) *App {
	cfgPath := fs.Lookup("config").Value.String()
	data := fs.Lookup("data").Value.String()

	logger := zap.NewNop()
	return bootstrap(logger, cfgPath, data)
}

func commandFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.String("config", "", "Path to config file")
	fs.String("data", "", "Path to data directory")
	return fs
}

func handleTodayCommand(args []string) {
	fs := commandFlags("today")
	date := fs.String("date", time.Now().Format("2006-01-02"), "Day to show (YYYY-MM-DD)")
	fs.Parse(args)

	app := cliApp(fs)
	defer app.store.Close()

	day, err := app.tracker.Day(*date, time.Now())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Doses for %s\n", day.Date)
	fmt.Println("========================")
	part := ""
	for _, d := range day.Doses {
		if d.DayPart != part {
			part = d.DayPart
			fmt.Printf("\n%s\n", strings.ToUpper(part))
		}
		marker := statusMarker(d.Status)
		fmt.Printf("  %s %s  %s (%s)", marker, d.Dose.Time, d.Medication, d.Status)
		if d.RecordedAt != nil {
			fmt.Printf("  recorded %s", d.RecordedAt.Format("15:04"))
		}
		fmt.Println()
	}
	fmt.Printf("\ntaken %d, missed %d, pending %d, skipped %d\n",
		day.Taken, day.Missed, day.Pending, day.Skipped)
}

func statusMarker(s tracker.Status) string {
	switch s {
	case tracker.StatusTaken:
		return "[x]"
	case tracker.StatusMissed:
		return "[!]"
	case tracker.StatusSkipped:
		return "[-]"
	default:
		return "[ ]"
	}
}

func handleRecordCommand(args []string) {
	fs := commandFlags("record")
	date := fs.String("date", time.Now().Format("2006-01-02"), "Day to record on (YYYY-MM-DD)")
	fs.Parse(args)

	rest := fs.Args()
	if len(rest) < 2 {
		fmt.Println("Usage: medtrack record [-date YYYY-MM-DD] <dose-key> <taken|missed|skipped|pending>")
		fmt.Println("Example: medtrack record cervitam_09:00 taken")
		os.Exit(1)
	}

	app := cliApp(fs)
	defer app.store.Close()

	rec, err := app.tracker.Record(*date, rest[0], rest[1], time.Now())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Recorded %s as %s on %s\n", rec.DoseKey, rec.Status, rec.Date)
}

func handleHistoryCommand(args []string) {
	fs := commandFlags("history")
	days := fs.Int("days", 7, "How many days back to show")
	medication := fs.String("medication", "", "Filter by medication id")
	fs.Parse(args)

	app := cliApp(fs)
	defer app.store.Close()

	end := time.Now().Format("2006-01-02")
	start := time.Now().AddDate(0, 0, -(*days - 1)).Format("2006-01-02")

	records, err := app.tracker.History(start, end, *medication)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if len(records) == 0 {
		fmt.Println("No records in range.")
		return
	}

	fmt.Printf("History %s to %s\n", start, end)
	fmt.Println("==============================")
	for _, r := range records {
		fmt.Printf("  %s  %-28s %-8s recorded %s\n",
			r.Date, r.DoseKey, r.Status, r.RecordedAt.Format("2006-01-02 15:04"))
	}
}

func handleComplianceCommand(args []string) {
	fs := commandFlags("compliance")
	days := fs.Int("days", 30, "How many days back to measure")
	medication := fs.String("medication", "", "Filter by medication id")
	fs.Parse(args)

	app := cliApp(fs)
	defer app.store.Close()

	end := time.Now().Format("2006-01-02")
	start := time.Now().AddDate(0, 0, -(*days - 1)).Format("2006-01-02")

	rate, err := app.tracker.Compliance(start, end, *medication)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Compliance %s to %s: %.1f%%\n", start, end, rate)
}

func handleStreakCommand(args []string) {
	fs := commandFlags("streak")
	medication := fs.String("medication", "", "Filter by medication id")
	fs.Parse(args)

	app := cliApp(fs)
	defer app.store.Close()

	streak, err := app.tracker.Streak(*medication)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	switch streak.CurrentStreak {
	case 0:
		fmt.Println("No current streak.")
	case 1:
		fmt.Println("Current streak: 1 day")
	default:
		fmt.Printf("Current streak: %d days\n", streak.CurrentStreak)
	}
	fmt.Printf("Days tracked in window: %d\n", streak.TotalDaysTracked)
}

func handlePruneCommand(args []string) {
	fs := commandFlags("prune")
	days := fs.Int("days", 0, "Days of history to keep (default: configured retention)")
	fs.Parse(args)

	app := cliApp(fs)
	defer app.store.Close()

	keep := *days
	if keep <= 0 {
		keep = app.config.Tracker.RetentionDays
	}
	deleted, err := app.tracker.Prune(time.Now(), keep)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Pruned %d records older than %d days\n", deleted, keep)
}

func handleConfigCommand(args []string) {
	fs := commandFlags("config")
	fs.Parse(args)

	if len(fs.Args()) > 0 && fs.Args()[0] == "path" {
		cfg, err := config.Load(fs.Lookup("config").Value.String(), fs.Lookup("data").Value.String())
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(cfg.Storage.DataDir)
		return
	}

	cfg, err := config.Load(fs.Lookup("config").Value.String(), fs.Lookup("data").Value.String())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Configuration")
	fmt.Println("=============")
	fmt.Printf("  data dir:       %s\n", cfg.Storage.DataDir)
	fmt.Printf("  sqlite path:    %s\n", cfg.Storage.SQLitePath)
	fmt.Printf("  schedule path:  %s\n", cfg.Schedule.Path)
	fmt.Printf("  server:         %s:%d\n", cfg.Server.Address, cfg.Server.Port)
	fmt.Printf("  grace period:   %d minutes\n", cfg.Tracker.GracePeriodMinutes)
	fmt.Printf("  streak window:  %d days\n", cfg.Tracker.StreakWindowDays)
	fmt.Printf("  retention:      %d days\n", cfg.Tracker.RetentionDays)
}

func printHelp() {
	fmt.Println("medtrack - medication adherence tracker")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  medtrack                 Run the API server")
	fmt.Println("  medtrack today           Show today's doses and their status")
	fmt.Println("  medtrack record          Record a dose outcome")
	fmt.Println("  medtrack history         Show recorded history")
	fmt.Println("  medtrack compliance      Show the taken percentage")
	fmt.Println("  medtrack streak          Show the current perfect-day streak")
	fmt.Println("  medtrack prune           Remove records past the retention window")
	fmt.Println("  medtrack config          Show the effective configuration")
	fmt.Println("  medtrack version         Show version")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  -config <path>   Path to config file")
	fmt.Println("  -data <path>     Path to data directory")
}
