// hexpipe: bidirectional proxy between the local console (stdin/stdout) and a
// TCP server speaking 6-hex-digit length-prefixed messages.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"dev.c0redev.hexpipe/internal/config"
	"dev.c0redev.hexpipe/internal/logger"
	"dev.c0redev.hexpipe/internal/proxy"
	"dev.c0redev.hexpipe/internal/trace"
	"dev.c0redev.hexpipe/internal/transport"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("hexpipe", pflag.ContinueOnError)
	logFile := flags.StringP("log", "l", "", "log filename")
	portFile := flags.StringP("portfile", "f", "", "file to read the tcp port from")
	port := flags.IntP("port", "p", 0, "tcp port number")
	raw := flags.BoolP("raw", "r", false, "raw mode: pass wire bytes through for inspection")
	configPath := flags.String("config", "", "yaml config file")
	transportKind := flags.String("transport", "", "server transport: tcp or quic")
	transcript := flags.String("transcript", "", "sqlite file recording every relayed message")
	logLevel := flags.String("log-level", "", "log level: debug, info, warn, error")
	if err := flags.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		return 1
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Println("config:", err)
			return 1
		}
	}
	if flags.Changed("log") {
		cfg.Log = *logFile
	}
	if flags.Changed("portfile") {
		cfg.PortFile = *portFile
	}
	if flags.Changed("port") {
		cfg.Port = *port
	}
	if flags.Changed("raw") {
		cfg.Raw = *raw
	}
	if flags.Changed("transport") {
		cfg.Transport = *transportKind
	}
	if flags.Changed("transcript") {
		cfg.Transcript = *transcript
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = *logLevel
	}

	if err := cfg.Validate(); err != nil {
		log.Println(err)
		return 1
	}
	resolved, err := cfg.ResolvePort()
	if err != nil {
		log.Println(err)
		flags.Usage()
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := cfg.Addr(resolved)
	conn, err := transport.Dial(ctx, cfg.Transport, addr)
	if err != nil {
		log.Println("connect", addr, "failed:", err)
		return 1
	}

	lg, err := logger.New(logger.Config{Level: cfg.LogLevel, File: cfg.Log})
	if err != nil {
		conn.Close()
		log.Println("open log file:", err)
		return 1
	}
	defer lg.Close()

	mode := proxy.ModeFramed
	if cfg.Raw {
		mode = proxy.ModeRaw
	}

	opts := &proxy.SessionOpts{}
	if cfg.Transcript != "" {
		store, err := trace.Open(cfg.Transcript)
		if err != nil {
			conn.Close()
			log.Println("open transcript:", err)
			return 1
		}
		defer store.Close()
		opts.Recorder = store
	}

	// Stdout carries the proxied data, so the interactive hint goes to stderr
	// and only when a human is attached.
	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintf(os.Stderr, "hexpipe: %s via %s, %s mode, logging to %s\n", addr, cfg.Transport, mode, cfg.Log)
	}

	lg.Info("------------------------------")
	lg.Info("start proxying", "addr", addr, "transport", cfg.Transport, "mode", mode.String())

	sess := proxy.NewSessionWithOpts(conn, mode, lg.Logger, opts)
	_ = sess.Run(ctx)

	lg.Info("done")
	return 0
}
