// Command koruza-control is the broker daemon: it mediates access to a
// single optical-link controller on behalf of the clients connected to its
// unix socket (SPEC_FULL.md, internal/broker).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin"

	"github.com/irnas/koruza-control/internal/broker"
	"github.com/irnas/koruza-control/internal/config"
	"github.com/irnas/koruza-control/internal/logging"
	"github.com/irnas/koruza-control/internal/serialport"
)

var (
	app        = kingpin.New("koruza-control", "Broker daemon mediating access to a koruza optical link controller")
	configPath = app.Flag("config", "Configuration file").Short('c').Required().String()
	daemon     = app.Flag("daemon", "Run as the broker daemon").Short('d').Bool()
	foreground = app.Flag("foreground", "Also log to standard error, in addition to syslog").Short('f').Bool()
)

func main() {
	os.Exit(run())
}

func run() int {
	if _, err := app.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if !*daemon {
		fmt.Fprintln(os.Stderr, "koruza-control: -d not given; this binary only runs as the broker daemon")
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	logger, err := logging.New("koruza-control", *foreground)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	port, err := serialport.Open(cfg.Device, cfg.BaudRate, true)
	if err != nil {
		logger.Printf("opening serial port %s: %v", cfg.Device, err)
		return 2
	}
	defer port.Close()

	b := broker.New(logger, port, cfg.Socket, cfg.Hooks.Reset)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Printf("starting: device=%s baud=%d socket=%s", cfg.Device, cfg.BaudRate, cfg.Socket)
	if err := b.Run(ctx); err != nil {
		logger.Printf("broker exited: %v", err)
		return 2
	}
	logger.Printf("shutting down")
	return 0
}
