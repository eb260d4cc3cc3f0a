// Package server initializes and runs the store-lit server. It wires the
// database, object store, mail queue and revalidation events into the
// services, serves them over HTTP and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/Vicktor007/store-lit/internal/logging"
	"github.com/Vicktor007/store-lit/internal/server/api"
	"github.com/Vicktor007/store-lit/internal/server/auth"
	"github.com/Vicktor007/store-lit/internal/server/config"
	"github.com/Vicktor007/store-lit/internal/server/notify"
	"github.com/Vicktor007/store-lit/internal/server/repositories/repomanager"
	"github.com/Vicktor007/store-lit/internal/server/services"
	"github.com/Vicktor007/store-lit/internal/server/storage"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	http    *api.Server
	closers []io.Closer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger, err := logging.New(c.LogBackend, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		app.close(ctx)
		return nil, err
	}

	blobs, err := storage.NewS3BlobStore(ctx, c)
	if err != nil {
		app.close(ctx)
		return nil, fmt.Errorf("object store init error: %w", err)
	}
	if err := blobs.EnsureBucket(ctx); err != nil {
		app.close(ctx)
		return nil, fmt.Errorf("object store bucket error: %w", err)
	}

	var mailer notify.Mailer
	if c.RabbitMQURL != "" {
		rm, err := notify.NewRabbitMailer(c.RabbitMQURL, c.EmailQueue)
		if err != nil {
			app.close(ctx)
			return nil, fmt.Errorf("mail queue init error: %w", err)
		}
		app.closers = append(app.closers, rm)
		mailer = rm
	} else {
		logger.Warn(ctx, "no mail queue configured, one-time codes are logged")
		mailer = notify.NewLogMailer(logger)
	}

	var revalidator notify.Revalidator = notify.NoopRevalidator{}
	if len(c.KafkaBrokers) > 0 {
		kr := notify.NewKafkaRevalidator(c.KafkaBrokers, c.KafkaTopic)
		app.closers = append(app.closers, kr)
		revalidator = kr
	}

	authService := auth.NewService(db, m, mailer, c, logger.With("module", "auth"))
	fileSaga := services.NewFileSaga(db, m, blobs, revalidator, logger.With("module", "file_saga"), c.PublicBaseURL)
	accountSaga := services.NewAccountSaga(db, m, blobs, logger.With("module", "account_saga"))

	us := services.NewUserService(db, m, authService, fileSaga, accountSaga, logger.With("module", "users"))
	fs := services.NewFileService(db, m, blobs, fileSaga, logger.With("module", "files"))

	app.http = api.NewServer(api.Options{
		Address:       c.EndpointAddrHTTP,
		SecureCookie:  c.SecureCookie,
		MaxUploadSize: c.MaxUploadSize,
	}, logger, us, fs)

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.http.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// close releases the queue connections, then the database.
func (app *App) close(ctx context.Context) {
	for _, c := range app.closers {
		if err := c.Close(); err != nil {
			app.logger.Warn(ctx, "close error", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close error", "error", err)
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.close(context.Background())
	app.logger.Info(context.Background(), "App stopped")
}
