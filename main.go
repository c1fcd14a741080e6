package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/kr0mka/totalmix-osc-bridge/bridge"
	"github.com/kr0mka/totalmix-osc-bridge/config"
	"github.com/kr0mka/totalmix-osc-bridge/devices"
	"github.com/kr0mka/totalmix-osc-bridge/devices/totalmix"
	"github.com/kr0mka/totalmix-osc-bridge/logging"
)

var version = "1.0.0"

// CLI defines the command-line interface. Default ports target Remote
// Controller 3 in TotalMix's OSC settings, leaving controllers 1 and 2
// free for other remotes.
type CLI struct {
	HTTPPort   int    `name:"http-port" default:"8765" help:"HTTP server port"`
	OscSend    int    `name:"osc-send" default:"7003" help:"TotalMix OSC incoming port"`
	OscListen  int    `name:"osc-listen" default:"9003" help:"OSC listen port"`
	TotalmixIP string `name:"totalmix-ip" default:"127.0.0.1" help:"TotalMix host"`
	LogFile    string `help:"Write logs to this file instead of stderr" type:"path"`
	Debug      bool   `help:"Enable debug output for OSC messages"`
	Startup    string `help:"Persist the run-at-startup flag and exit" enum:"on,off," default:""`
	Version    bool   `short:"v" help:"Show version information"`
}

func main() {
	cli := &CLI{}
	kong.Parse(cli,
		kong.Name("totalmix-osc-bridge"),
		kong.Description("HTTP bridge for reading and writing TotalMix room and parametric EQ"),
		kong.UsageOnError(),
	)

	if cli.Version {
		fmt.Printf("totalmix-osc-bridge v%s\n", version)
		os.Exit(0)
	}

	if cli.LogFile != "" {
		f, err := os.Create(cli.LogFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cannot open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logging.SetOutput(f)
		logging.Get(logging.META).Info("logging to file", "path", cli.LogFile)
	}
	if cli.Debug {
		logging.SetAllLevels(slog.LevelDebug)
	}
	log := logging.Get(logging.APP)

	if cli.Startup != "" {
		if err := persistStartup(cli.Startup == "on"); err != nil {
			log.Error("failed to persist startup flag", "err", err)
			os.Exit(1)
		}
		fmt.Printf("run-at-startup set to %s\n", cli.Startup)
		return
	}

	log.Info("starting",
		"version", version,
		"http", fmt.Sprintf("http://127.0.0.1:%d", cli.HTTPPort),
		"totalmix", fmt.Sprintf("%s:%d", cli.TotalmixIP, cli.OscSend),
		"listen", cli.OscListen)

	store := totalmix.NewStore()
	dev := devices.NewUDPOscDevice(cli.TotalmixIP, cli.OscSend, "0.0.0.0", cli.OscListen)
	dev.BindDefault(store.Handle)

	// The listener feeds the cache for the life of the process. A bind
	// failure here is fatal: without the inbound stream every read would
	// silently decode defaults.
	go func() {
		if err := dev.Run(); err != nil {
			log.Error("OSC listener failed",
				"port", cli.OscListen, "err", err,
				"hint", "another bridge instance may already be bound to this port")
			os.Exit(1)
		}
	}()
	log.Info("OSC listener started", "port", cli.OscListen)

	console := totalmix.New(dev, store, totalmix.DefaultSettle())
	srv := bridge.NewServer(console, cli.HTTPPort)
	if err := srv.ListenAndServe(); err != nil {
		log.Error("HTTP server failed", "err", err)
		os.Exit(1)
	}
}

func persistStartup(enabled bool) error {
	path, err := config.DefaultPath()
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	cfg.RunAtStartup = enabled
	return config.Save(path, cfg)
}
