package main

import (
	"errors"
	"fmt"

	"github.com/dshills/hookkit/internal/bootstrap"
	"github.com/dshills/hookkit/internal/config"
	"github.com/dshills/hookkit/internal/engine"
	"github.com/dshills/hookkit/internal/hook"
	"github.com/dshills/hookkit/internal/logging"
	"github.com/dshills/hookkit/internal/manifest"
	"github.com/dshills/hookkit/internal/registrar"
)

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	envFile    string
	manifest   string
	basePath   string
	logLevel   string
	early      bool
}

// app is one fully wired hookkit instance.
type app struct {
	cfg     *config.Config
	log     *logging.Logger
	env     *bootstrap.Environment
	reg     *registrar.Registrar
	catalog *manifest.Catalog
	engine  *engine.Engine

	applied int
}

// loadConfig layers flags over config file and environment.
func loadConfig(f *globalFlags) (*config.Config, error) {
	if err := config.LoadEnvFile(f.envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	if f.manifest != "" {
		cfg.Manifest.Path = f.manifest
	}
	if f.basePath != "" {
		cfg.Host.BasePath = f.basePath
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
	if f.early {
		cfg.Host.BootEarly = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newApp wires environment, registrar and catalog without booting the host.
func newApp(cfg *config.Config) *app {
	log := logging.New(cfg.Logging)

	// [engine] and HOOKKIT_MAX_DEPTH take precedence over the definitions
	// file under the base path.
	loader := func(basePath string, pending hook.Table) (hook.Host, error) {
		return engine.Load(basePath, pending,
			engine.WithConfig(cfg.Engine),
			engine.WithLogger(log.WithComponent("engine")),
		)
	}
	env := bootstrap.New(
		bootstrap.WithLogger(log.WithComponent("bootstrap")),
		bootstrap.WithLoader(loader),
	)
	if cfg.Host.BasePath != "" {
		env.DefineBasePath(cfg.Host.BasePath)
	}

	return &app{
		cfg:     cfg,
		log:     log,
		env:     env,
		reg:     registrar.New(env, registrar.WithLogger(log.WithComponent("registrar"))),
		catalog: manifest.NewCatalog(log.WithComponent("catalog")),
	}
}

// start applies the manifest and boots the host in the configured order.
func (a *app) start() error {
	if a.cfg.Host.BootEarly {
		if err := a.applyManifest(); err != nil {
			return err
		}
		return a.boot()
	}
	if err := a.boot(); err != nil {
		return err
	}
	return a.applyManifest()
}

// boot makes sure a host engine is running. A host loaded on demand from the
// base path is reused.
func (a *app) boot() error {
	if h, ok := a.env.Host(); ok {
		e, ok := h.(*engine.Engine)
		if !ok {
			return errors.New("host is not a hookkit engine")
		}
		a.engine = e
		return nil
	}

	a.engine = engine.New(
		engine.WithConfig(a.cfg.Engine),
		engine.WithLogger(a.log.WithComponent("engine")),
	)
	a.env.Boot(a.engine)
	return nil
}

func (a *app) applyManifest() error {
	if a.cfg.Manifest.Path == "" {
		return nil
	}
	m, err := manifest.Load(a.cfg.Manifest.Path)
	if err != nil {
		return err
	}
	n, err := m.Apply(a.reg, a.catalog)
	a.applied += n
	if err != nil {
		return err
	}
	a.log.Info().
		Str("manifest", a.cfg.Manifest.Path).
		Int("registrations", n).
		Bool("host_loaded", a.reg.Loaded()).
		Msg("manifest applied")
	return nil
}

func (a *app) close() {
	_ = a.log.Close()
}
