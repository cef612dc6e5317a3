package cmd

import (
	"github.com/sitepipe/sitepipe/internal/assets"
	"github.com/sitepipe/sitepipe/internal/config"
	"github.com/sitepipe/sitepipe/internal/console"
	"github.com/sitepipe/sitepipe/internal/convert"
	"github.com/sitepipe/sitepipe/internal/devserver"
	"github.com/sitepipe/sitepipe/internal/event"
	"github.com/sitepipe/sitepipe/internal/logging"
	"github.com/sitepipe/sitepipe/internal/pipeline"
	"github.com/sitepipe/sitepipe/internal/registry"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// app holds everything a command needs, built once per invocation.
type app struct {
	cfg      *config.Config
	baseDir  string
	logger   *logging.Logger
	bus      *event.Bus
	reporter *console.Reporter
	registry *registry.Registry
	env      *assets.Env
	server   *devserver.Server
	set      *pipeline.Set

	detach func()
}

// newApp loads the configuration and wires the registry, toolchain, dev
// server and both pipelines. Console output goes to the command's output
// stream.
func newApp(cmd *cobra.Command) (*app, error) {
	if configErr != nil {
		return nil, configErr
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	dir, err := baseDir()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
		Writer: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, err
	}

	out := cmd.OutOrStdout()
	bus := event.NewBus(logger)
	reporter := console.New(out, console.Options{Color: cfg.Console.Color})

	fsys := afero.NewOsFs()
	env := assets.NewEnv(cfg, dir, fsys, convert.FromConfig(cfg), logger)
	server := devserver.New(devserver.Config{
		Host:     cfg.Server.Host,
		Port:     cfg.Server.Port,
		CORS:     cfg.Server.CORS,
		OpenPath: cfg.Server.OpenPath,
	}, fsys, env.Out.Root(), devserver.WithBus(bus), devserver.WithLogger(logger))

	reg := registry.New(registry.WithBus(bus), registry.WithLogger(logger))
	set, err := pipeline.Register(reg, pipeline.Config{
		Env:      env,
		Server:   server,
		Debounce: cfg.Watch.DebounceWindow(),
	})
	if err != nil {
		_ = logger.Close()
		return nil, err
	}

	logger.Debug("configuration loaded",
		"config_file", configFileToUse(),
		"source", env.Source,
		"output", env.Out.Root(),
	)

	return &app{
		cfg:      cfg,
		baseDir:  dir,
		logger:   logger,
		bus:      bus,
		reporter: reporter,
		registry: reg,
		env:      env,
		server:   server,
		set:      set,
		detach:   reporter.Attach(bus),
	}, nil
}

// quiet stops the reporter from rendering events, for commands whose
// output is machine-readable.
func (a *app) quiet() {
	if a.detach != nil {
		a.detach()
		a.detach = nil
	}
}

// Close detaches the reporter and closes the logger.
func (a *app) Close() error {
	a.quiet()
	return a.logger.Close()
}
