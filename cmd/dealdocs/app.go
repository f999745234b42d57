package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/dealdocs/pkg/activity"
	"github.com/dmitrymomot/dealdocs/pkg/clipboard"
	"github.com/dmitrymomot/dealdocs/pkg/config"
	"github.com/dmitrymomot/dealdocs/pkg/cookie"
	"github.com/dmitrymomot/dealdocs/pkg/deal"
	"github.com/dmitrymomot/dealdocs/pkg/email"
	"github.com/dmitrymomot/dealdocs/pkg/environment"
	"github.com/dmitrymomot/dealdocs/pkg/httpserver"
	"github.com/dmitrymomot/dealdocs/pkg/logger"
	"github.com/dmitrymomot/dealdocs/pkg/mailclient"
	"github.com/dmitrymomot/dealdocs/pkg/mongo"
	"github.com/dmitrymomot/dealdocs/pkg/opensearch"
	"github.com/dmitrymomot/dealdocs/pkg/pg"
	"github.com/dmitrymomot/dealdocs/pkg/pipeline"
	"github.com/dmitrymomot/dealdocs/pkg/ratelimiter"
	"github.com/dmitrymomot/dealdocs/pkg/raster"
	"github.com/dmitrymomot/dealdocs/pkg/redis"
	"github.com/dmitrymomot/dealdocs/pkg/secrets"
	"github.com/dmitrymomot/dealdocs/pkg/templates"
	"github.com/dmitrymomot/dealdocs/pkg/transport"
	"github.com/dmitrymomot/dealdocs/pkg/web"
)

// cookiePurpose binds the device cookie keys derived from COOKIE_SECRETS.
const cookiePurpose = "dealdocs device cookie"

var (
	errUnknownDriver = errors.New("unknown driver")
	errNoSecret      = errors.New("COOKIE_SECRETS is required in production")
)

// app holds everything a command needs.
type app struct {
	env      environment.Environment
	log      *slog.Logger
	out      io.Writer
	engine   *pipeline.Engine
	prefs    *mailclient.Preferences
	registry *mailclient.Registry
	board    clipboard.Reader
	redis    goredis.UniversalClient
	checks   []httpserver.Check
	closers  []func(context.Context) error
}

// newApp connects the configured integrations and builds the engine.
func newApp(ctx context.Context, cfg Config, out io.Writer) (*app, error) {
	a := &app{env: environment.Parse(cfg.Env), out: out}
	a.log = logger.New(
		logger.WithEnvironment(a.env, "dealdocs"),
		logger.WithLevelName(cfg.LogLevel),
		logger.WithContextExtractors(web.RequestIDExtractor, web.DeviceExtractor),
	)

	ok := false
	defer func() {
		if !ok {
			a.close(ctx)
		}
	}()

	deals, err := a.deals(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a.registry, err = mailclient.LoadRegistry(cfg.MailClientsFile)
	if err != nil {
		return nil, err
	}

	var rcfg redis.Config
	if err := config.Load(&rcfg); err != nil {
		return nil, err
	}
	if rcfg.Enabled() {
		client, err := redis.Connect(ctx, rcfg)
		if err != nil {
			return nil, err
		}
		a.redis = client
		a.checks = append(a.checks, httpserver.Check{Name: "redis", Fn: redis.Healthcheck(client)})
		a.closers = append(a.closers, func(context.Context) error { return client.Close() })
	}

	board, err := a.clipboard(cfg, rcfg)
	if err != nil {
		return nil, err
	}
	a.board = board

	store, err := a.preferenceStore(cfg)
	if err != nil {
		return nil, err
	}
	a.prefs = mailclient.NewPreferences(store, a.registry)

	normalizer, err := a.normalizer(ctx)
	if err != nil {
		return nil, err
	}
	recorder, err := a.recorder(ctx)
	if err != nil {
		return nil, err
	}
	sender, err := a.sender()
	if err != nil {
		return nil, err
	}

	a.engine = pipeline.New(deals,
		pipeline.WithTemplates(templates.Default()),
		pipeline.WithNormalizer(normalizer),
		pipeline.WithTarget(pipeline.Target{
			Clipboard: board,
			Dispatcher: mailclient.NewDispatcher(store,
				mailclient.WithRegistry(a.registry),
				mailclient.WithOpener(mailclient.BrowserOpener{}),
				mailclient.WithLogger(a.log),
			),
		}),
		pipeline.WithSender(sender),
		pipeline.WithRecorder(recorder),
		pipeline.WithLogger(a.log),
	)
	ok = true
	return a, nil
}

func (a *app) deals(ctx context.Context, cfg Config) (deal.Repository, error) {
	switch cfg.DealStore {
	case "dir":
		return deal.NewDirRepository(cfg.DealDir)

	case "mongo":
		var mcfg mongo.Config
		if err := config.Load(&mcfg); err != nil {
			return nil, err
		}
		db, err := mongo.NewWithDatabase(ctx, mcfg)
		if err != nil {
			return nil, err
		}
		a.checks = append(a.checks, httpserver.Check{Name: "mongo", Fn: mongo.Healthcheck(db.Client())})
		a.closers = append(a.closers, db.Client().Disconnect)
		return deal.NewMongoRepository(db), nil

	case "postgres":
		var pcfg pg.Config
		if err := config.Load(&pcfg); err != nil {
			return nil, err
		}
		pool, err := pg.Connect(ctx, pcfg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { pool.Close(); return nil })
		if pcfg.AutoMigrate {
			if err := pg.Migrate(ctx, pool, deal.Migrations, "migrations", pcfg, a.log); err != nil {
				return nil, err
			}
		}
		a.checks = append(a.checks, httpserver.Check{Name: "postgres", Fn: pg.Healthcheck(pool)})
		return deal.NewPostgresRepository(pool), nil
	}
	return nil, fmt.Errorf("%w: deal store %q", errUnknownDriver, cfg.DealStore)
}

// clipboard returns the clipboard the CLI writes to.
func (a *app) clipboard(cfg Config, rcfg redis.Config) (web.Clipboard, error) {
	switch cfg.Clipboard {
	case "dir":
		return clipboard.NewDir(cfg.ClipboardDir)
	case "memory":
		return clipboard.NewMemory(), nil
	case "redis":
		if a.redis == nil {
			return nil, fmt.Errorf("%w: redis clipboard needs REDIS_URL", redis.ErrEmptyConnectionURL)
		}
		return clipboard.NewRelay(a.redis, clipboard.WithTTL(rcfg.ClipboardTTL)).Device(cfg.DeviceID), nil
	}
	return nil, fmt.Errorf("%w: clipboard %q", errUnknownDriver, cfg.Clipboard)
}

func (a *app) preferenceStore(cfg Config) (mailclient.PreferenceStore, error) {
	if a.redis != nil && cfg.Clipboard == "redis" {
		return mailclient.NewRedisStore(a.redis, cfg.DeviceID), nil
	}
	path := cfg.PreferencesFile
	if path == "" {
		var err error
		if path, err = mailclient.DefaultPreferencePath(); err != nil {
			return nil, err
		}
	}
	return mailclient.NewFileStore(path), nil
}

func (a *app) normalizer(ctx context.Context) (*transport.Normalizer, error) {
	var (
		rcfg raster.Config
		scfg raster.S3Config
	)
	if err := config.Load(&rcfg); err != nil {
		return nil, err
	}
	if err := config.Load(&scfg); err != nil {
		return nil, err
	}

	opts := []raster.Option{raster.WithLogger(a.log)}
	if scfg.Enabled() {
		src, err := raster.NewS3SourceFromConfig(ctx, scfg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, raster.WithSource("s3", src))
	}
	tr, err := raster.FromConfig(rcfg, opts...)
	if err != nil {
		return nil, err
	}

	return transport.New(
		transport.WithResizer(tr),
		transport.WithImageWidth(rcfg.DefaultWidth),
		transport.WithEnvironment(a.env),
		transport.WithLogger(a.log),
	), nil
}

// recorder ships activity to OpenSearch when configured and to the log
// otherwise.
func (a *app) recorder(ctx context.Context) (activity.Recorder, error) {
	var ocfg opensearch.Config
	if err := config.Load(&ocfg); err != nil {
		return nil, err
	}
	if !ocfg.Enabled() {
		return activity.NewLogRecorder(a.log), nil
	}

	client, err := opensearch.New(ctx, ocfg)
	if err != nil {
		return nil, err
	}
	async := activity.NewAsync(activity.NewOpenSearchRecorder(client, ocfg.Index), activity.AsyncOptions{}, a.log)
	a.closers = append(a.closers, async.Close)
	a.checks = append(a.checks, httpserver.Check{Name: "opensearch", Fn: opensearch.Healthcheck(client)})
	return async, nil
}

func (a *app) sender() (email.EmailSender, error) {
	var ecfg email.Config
	if err := config.Load(&ecfg); err != nil {
		return nil, err
	}
	if ecfg.Enabled() {
		return email.NewPostmarkClient(ecfg)
	}
	a.log.Debug("postmark not configured, writing emails to disk", slog.String("dir", ecfg.DevDir))
	return email.NewDevSender(ecfg.DevDir), nil
}

// server builds the HTTP handler. Outside production a missing cookie
// secret is replaced by a random one, so devices are forgotten on restart.
func (a *app) server() (*web.Server, error) {
	var ccfg cookie.Config
	if err := config.Load(&ccfg); err != nil {
		return nil, err
	}
	masters := ccfg.SecretList()
	if len(masters) == 0 {
		if a.env.IsProduction() {
			return nil, errNoSecret
		}
		key, err := secrets.GenerateKey()
		if err != nil {
			return nil, err
		}
		masters = []string{hex.EncodeToString(key)}
		a.log.Warn("COOKIE_SECRETS not set, using an ephemeral secret")
	}
	keys, err := secrets.DeriveAll(masters, cookiePurpose)
	if err != nil {
		return nil, fmt.Errorf("COOKIE_SECRETS: %w", err)
	}
	ccfg.Secrets = strings.Join(keys, ",")

	cookies, err := cookie.NewFromConfig(ccfg, cookie.WithSecure(a.env.IsProduction() || ccfg.Secure))
	if err != nil {
		return nil, err
	}

	var rcfg redis.Config
	if err := config.Load(&rcfg); err != nil {
		return nil, err
	}
	var devices web.Devices = web.NewMemoryDevices()
	if a.redis != nil {
		devices = web.NewRedisDevices(a.redis, clipboard.WithTTL(rcfg.ClipboardTTL))
	}

	limit, err := a.shareLimit()
	if err != nil {
		return nil, err
	}

	return web.New(a.engine, cookies,
		web.WithRegistry(a.registry),
		web.WithDevices(devices),
		web.WithShareLimit(limit),
		web.WithChecks(a.checks...),
		web.WithLogger(a.log),
	)
}

// shareLimit keeps buckets in Redis when it is configured so every
// instance sees the same counts.
func (a *app) shareLimit() (*ratelimiter.Bucket, error) {
	var lcfg ratelimiter.Config
	if err := config.Load(&lcfg); err != nil {
		return nil, err
	}
	if a.redis != nil {
		return ratelimiter.NewBucket(ratelimiter.NewRedisStore(a.redis, ""), lcfg)
	}
	store := ratelimiter.NewMemoryStore()
	a.closers = append(a.closers, func(context.Context) error { store.Close(); return nil })
	return ratelimiter.NewBucket(store, lcfg)
}

// close releases integrations in reverse order.
func (a *app) close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil && a.log != nil {
			a.log.ErrorContext(ctx, "closing", logger.Error(err))
		}
	}
}
