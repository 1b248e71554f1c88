package main

import (
	"context"
	"math/rand/v2"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"tasktimer/internal/app"
	"tasktimer/internal/caldav"
	"tasktimer/internal/calendar"
	"tasktimer/internal/config"
	appLog "tasktimer/internal/log"
	"tasktimer/internal/notify"
	"tasktimer/internal/schedule"
	"tasktimer/internal/tui"
	"tasktimer/internal/web"
)

// flagConfig holds CLI flag values. Only flags the user actually set
// override the config file.
type flagConfig struct {
	fs *pflag.FlagSet

	configPath string
	headless   bool
	listen     string

	workTime         float64
	shortRestTime    float64
	longRestTime     float64
	longRestInterval uint8

	calendars []string
	username  string
	password  string
	token     string
}

func main() {
	flags := parseFlags(os.Args[1:])

	loadConfig := func() (*config.Config, error) {
		cfg, err := config.Load(flags.configPath)
		if err != nil {
			return nil, err
		}
		cfg.ApplyEnv(os.LookupEnv)
		flags.apply(cfg)
		return cfg, nil
	}

	conf, err := loadConfig()
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))
	if logFile := logPath(conf, flags); logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			appLog.Error("failed to open log file", err, "path", logFile)
			os.Exit(1)
		}
		defer f.Close()
		appLog.SetOutput(f)
	}

	appLog.Info("tasktimer starting", "version", "0.1.0")
	appLog.Info("effective config",
		"work_time", conf.Timer.WorkTime,
		"short_rest_time", conf.Timer.ShortRestTime,
		"long_rest_time", conf.Timer.LongRestTime,
		"long_rest_interval", conf.Timer.LongRestInterval,
		"calendar_count", len(conf.Calendar.URLs),
		"listen", conf.Listen,
		"refresh", conf.RefreshCron,
		"headless", flags.headless,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	var notifier notify.Notifier = notify.Log{}
	if conf.Notifications && !flags.headless {
		notifier = notify.Desktop{}
	}

	manager := calendar.NewManager(caldav.NewClient(nil))
	application := app.New(conf, manager, notifier, rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)))
	application.Refresh()

	pub := &web.Publisher{}
	if conf.Listen != "" {
		srv := web.NewServer(conf.Listen, conf.BasicAuth, pub)
		go func() {
			if err := srv.Serve(ctx); err != nil {
				appLog.Error("HTTP server stopped", err, "listen", conf.Listen)
			}
		}()
	}

	// Reload requests from cron and the config watcher arrive on other
	// goroutines and are handed to the loop that owns the application.
	var (
		program       *tea.Program
		reloads       = make(chan struct{}, 1)
		requestReload func()
	)
	if flags.headless {
		requestReload = func() {
			select {
			case reloads <- struct{}{}:
			default:
			}
		}
	} else {
		program = tea.NewProgram(
			tui.New(application, loadConfig, pub.Publish),
			tea.WithAltScreen(),
			tea.WithContext(ctx),
		)
		requestReload = func() { program.Send(tui.ReloadMsg{}) }
	}

	if conf.RefreshCron != "" {
		reloader, err := schedule.NewReloader(conf.RefreshCron, requestReload)
		if err != nil {
			appLog.Error("ignoring refresh schedule", err)
		} else {
			reloader.Start()
			defer reloader.Stop()
		}
	}

	if err := config.Watch(ctx, flags.configPath, requestReload); err != nil {
		appLog.Error("config watch unavailable", err, "config_path", flags.configPath)
	}

	if flags.headless {
		runHeadless(ctx, application, loadConfig, reloads, pub.Publish)
	} else if _, err := program.Run(); err != nil && ctx.Err() == nil {
		appLog.Error("terminal UI failed", err)
	}

	appLog.Info("tasktimer exiting")
}

// runHeadless drives the application from a ticker instead of a terminal
// UI. The timer starts immediately; phase changes are only reported
// through notifications and the status API.
func runHeadless(ctx context.Context, a *app.Application, load func() (*config.Config, error), reloads <-chan struct{}, publish func(app.Status)) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	a.Start(time.Now())
	for {
		select {
		case <-ctx.Done():
			return
		case <-reloads:
			cfg, err := load()
			if err != nil {
				appLog.Error("config reload failed; refreshing with previous settings", err)
				a.Refresh()
				continue
			}
			a.Reload(cfg)
		case wall := <-ticker.C:
			a.Frame(wall)
			publish(a.Snapshot(wall))
		}
	}
}

func parseFlags(args []string) *flagConfig {
	cfg := &flagConfig{}
	fs := pflag.NewFlagSet("tasktimer", pflag.ExitOnError)
	cfg.fs = fs

	fs.StringVar(&cfg.configPath, "config", defaultConfigPath(), "Path to config file")
	fs.BoolVar(&cfg.headless, "headless", false, "Run without the terminal UI")
	fs.StringVar(&cfg.listen, "listen", "", "Status API listen address (overrides config if set)")

	fs.Float64Var(&cfg.workTime, "work-time", 1500, "Work interval in seconds")
	fs.Float64Var(&cfg.shortRestTime, "short-rest-time", 600, "Short break in seconds")
	fs.Float64Var(&cfg.longRestTime, "long-rest-time", 1800, "Long break in seconds")
	fs.Uint8Var(&cfg.longRestInterval, "long-rest-interval", 4, "Work cycles per long break")

	fs.StringArrayVarP(&cfg.calendars, "calendar", "c", nil, "CalDAV calendar URL (repeatable)")
	fs.StringVarP(&cfg.username, "username", "u", "", "CalDAV username")
	fs.StringVarP(&cfg.password, "password", "p", "", "CalDAV password")
	fs.StringVarP(&cfg.token, "token", "t", "", "CalDAV bearer token")

	// ExitOnError: Parse exits on failure.
	_ = fs.Parse(args)
	return cfg
}

// apply overrides cfg with every flag given on the command line.
func (f *flagConfig) apply(cfg *config.Config) {
	if f.fs.Changed("listen") {
		cfg.Listen = f.listen
	}
	if f.fs.Changed("work-time") {
		cfg.Timer.WorkTime = f.workTime
	}
	if f.fs.Changed("short-rest-time") {
		cfg.Timer.ShortRestTime = f.shortRestTime
	}
	if f.fs.Changed("long-rest-time") {
		cfg.Timer.LongRestTime = f.longRestTime
	}
	if f.fs.Changed("long-rest-interval") {
		cfg.Timer.LongRestInterval = f.longRestInterval
	}
	if f.fs.Changed("calendar") {
		cfg.Calendar.URLs = append([]string(nil), f.calendars...)
	}
	if f.fs.Changed("username") {
		cfg.Calendar.Username = f.username
	}
	if f.fs.Changed("password") {
		cfg.Calendar.Password = f.password
	}
	if f.fs.Changed("token") {
		cfg.Calendar.Token = f.token
	}
	cfg.Normalize()
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "task-timer.yaml"
	}
	return filepath.Join(dir, "tasktimer", "task-timer.yaml")
}

// logPath keeps log output off the terminal the UI draws on.
func logPath(conf *config.Config, flags *flagConfig) string {
	if conf.LogFile != "" {
		return conf.LogFile
	}
	if flags.headless {
		return ""
	}
	return filepath.Join(filepath.Dir(flags.configPath), "tasktimer.log")
}

