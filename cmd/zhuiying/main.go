// Package main provides the command line client for the Zhuiying tracker service.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/zhuiying-client/internal/config"
	"github.com/zhuiying-client/internal/locale"
	"github.com/zhuiying-client/internal/logging"
)

func main() {
	var (
		mock    = flag.Bool("mock", false, "use the in-process mock backend")
		baseURL = flag.String("api", "", "backend base URL (overrides API_BASE_URL)")
		lang    = flag.String("lang", "", "UI language, zh_CN or en_US")
		code    = flag.String("code", "", "login code (default ZHUIYING_LOGIN_CODE or the host name)")
		verbose = flag.Bool("v", false, "log at debug level")
	)
	flag.Usage = func() {
		printUsage(flag.CommandLine.Output())
		fmt.Fprintln(flag.CommandLine.Output())
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *mock {
		cfg.API.UseMock = true
	}
	if *baseURL != "" {
		cfg.API.BaseURL = *baseURL
		cfg.API.UseMock = false
	}
	if *lang != "" {
		cfg.Locale.Language = *lang
	}

	// Logs go to stderr, command output to stdout
	level := logging.ParseLogLevel(cfg.Logging.Level)
	if *verbose {
		level = logging.LevelDebug
	}
	logging.InitGlobalLogger(level, logging.ParseLogFormat(cfg.Logging.Format))
	logger := logging.GetGlobalLogger()
	logger.SetOutput(os.Stderr)

	locale.SetLanguage(cfg.Locale.Language)

	loginCode := *code
	if loginCode == "" {
		loginCode = defaultLoginCode()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger, os.Stdout, loginCode)
	if err != nil {
		logger.WithError(err).Error("Failed to start client")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	args := flag.Args()
	if len(args) > 0 && args[0] == "shell" {
		err = shell(ctx, a, os.Stdin)
	} else {
		err = dispatch(ctx, a, args)
	}
	a.Close()

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
