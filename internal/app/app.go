package app

import (
	"context"

	"github.com/kstonekuan/splatter-mcp-app/internal/config"
	"github.com/kstonekuan/splatter-mcp-app/internal/services/engine"
	"github.com/kstonekuan/splatter-mcp-app/internal/services/filestorage"
	"github.com/kstonekuan/splatter-mcp-app/internal/services/fileuploader"
	"github.com/kstonekuan/splatter-mcp-app/internal/services/inference"
	"github.com/kstonekuan/splatter-mcp-app/pkg/logger"

	"go.uber.org/zap"
)

type App struct {
	ctx        context.Context
	cancelFunc context.CancelFunc
	config     *config.Config
	inference  *inference.Service
	engine     *engine.Engine
	uploader   *fileuploader.Uploader

	Logger *zap.Logger
}

// Option funcs used to initialize the App struct
type OptionFunc func(app *App) error

// WithInference wires the adapter-side dispatch gate.
func WithInference() OptionFunc {
	return func(app *App) error {
		app.inference = inference.NewService(app.config, app.Logger)
		return nil
	}
}

// WithEngine wires the execution-unit side. Fails when the tier table is
// not total.
func WithEngine() OptionFunc {
	return func(app *App) error {
		eng, err := engine.NewEngine(app.config, app.Logger)
		if err != nil {
			return err
		}

		app.engine = eng
		if app.uploader != nil {
			eng.SetUploader(app.uploader)
		}

		return nil
	}
}

// WithFileUploader wires background artifact archiving when a filesystem
// type is configured.
func WithFileUploader() OptionFunc {
	return func(app *App) error {
		if app.config.FilesystemType == "" {
			return nil
		}

		storage, err := filestorage.NewFileStorage(app.config)
		if err != nil {
			return err
		}

		app.uploader = fileuploader.NewFileUploader(storage, 10, app.Logger)
		if app.engine != nil {
			app.engine.SetUploader(app.uploader)
		}

		return nil
	}
}

func NewApp(cfg *config.Config, options ...OptionFunc) (*App, error) {
	log, err := logger.InitLogger(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		ctx:        ctx,
		config:     cfg,
		Logger:     log,
		cancelFunc: cancel,
	}

	for _, opt := range options {
		if err := opt(app); err != nil {
			cancel()
			return nil, err
		}
	}

	return app, nil
}

func (app *App) Close() {
	app.cancelFunc()

	if app.engine != nil {
		app.engine.Stop()
	}
	if app.uploader != nil {
		app.uploader.Stop()
	}

	app.Logger.Sync()
}

func (app *App) Config() *config.Config {
	return app.config
}

func (app *App) Context() context.Context {
	return app.ctx
}

func (app *App) Inference() *inference.Service {
	return app.inference
}

func (app *App) Engine() *engine.Engine {
	return app.engine
}

func (app *App) Uploader() *fileuploader.Uploader {
	return app.uploader
}
