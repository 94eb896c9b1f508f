package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"movieweb/config"
	"movieweb/database"
	"movieweb/database/memory"
	"movieweb/models"
	"movieweb/services"
	sharedhttp "movieweb/shared/http"
	"movieweb/shared/logger"
)

// commandContext lazily builds the collaborators a command needs.
type commandContext struct {
	username string
	debug    bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	logger   *slog.Logger
	store    services.Store
	fetcher  services.Fetcher
	closeFns []func()
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			c.configErr = fmt.Errorf("invalid configuration: %w", err)
			return
		}
		c.config = cfg
		if c.logger == nil {
			c.logger = logger.Init(cfg.Environment, cfg.Debug || c.debug)
		}
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureStore(ctx context.Context) (services.Store, error) {
	if c.store != nil {
		return c.store, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	if cfg.UseMemoryStore() {
		c.logger.Warn("Using the in-memory store, nothing is persisted")
		c.store = memory.New()
		return c.store, nil
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL, c.logger)
	if err != nil {
		return nil, err
	}
	c.closeFns = append(c.closeFns, pool.Close)
	c.store = database.NewStore(pool)
	return c.store, nil
}

func (c *commandContext) ensureFetcher() (services.Fetcher, error) {
	if c.fetcher != nil {
		return c.fetcher, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireOMDb(); err != nil {
		return nil, err
	}

	httpClient := sharedhttp.NewClient(
		sharedhttp.WithTimeout(cfg.OMDbTimeout),
		sharedhttp.WithRetries(cfg.OMDbMaxRetries, 0),
		sharedhttp.WithRateLimit(cfg.OMDbRateLimit, 1),
		sharedhttp.WithLogger(c.logger),
	)
	client, err := services.NewOMDbClient(cfg.OMDbAPIKey, cfg.OMDbBaseURL, httpClient)
	if err != nil {
		return nil, err
	}
	c.fetcher = client
	return c.fetcher, nil
}

func (c *commandContext) reconciler(ctx context.Context, needFetcher bool) (*services.Reconciler, error) {
	store, err := c.ensureStore(ctx)
	if err != nil {
		return nil, err
	}
	var fetcher services.Fetcher
	if needFetcher {
		if fetcher, err = c.ensureFetcher(); err != nil {
			return nil, err
		}
	}
	return services.NewReconciler(store, fetcher, c.logger), nil
}

func (c *commandContext) userService(ctx context.Context) (*services.UserService, error) {
	store, err := c.ensureStore(ctx)
	if err != nil {
		return nil, err
	}
	return services.NewUserService(store, c.logger), nil
}

func (c *commandContext) reviewService(ctx context.Context) (*services.ReviewService, error) {
	store, err := c.ensureStore(ctx)
	if err != nil {
		return nil, err
	}
	return services.NewReviewService(store, c.logger), nil
}

// actingUser resolves --user, checking MOVIEWEB_PASSWORD against it when set.
// Commands acting on a library or a review need it.
func (c *commandContext) actingUser(ctx context.Context) (*models.User, error) {
	name := strings.TrimSpace(c.username)
	if name == "" {
		return nil, errors.New("this command needs --user")
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireUserPassword(); err != nil {
		return nil, err
	}
	users, err := c.userService(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.UserPassword != "" {
		return users.Authenticate(ctx, name, cfg.UserPassword)
	}
	return users.GetUserByName(ctx, name)
}

// optionalUser resolves --user when it is set.
func (c *commandContext) optionalUser(ctx context.Context) (*models.User, error) {
	if strings.TrimSpace(c.username) == "" {
		return nil, nil
	}
	return c.actingUser(ctx)
}

func (c *commandContext) close() {
	for _, fn := range c.closeFns {
		fn()
	}
	c.closeFns = nil
}
