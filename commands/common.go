package commands

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/kataras/golog"
	"gorm.io/gorm"

	"smartsquare-server/auth"
	"smartsquare-server/blobstore"
	"smartsquare-server/config"
	"smartsquare-server/notify"
	"smartsquare-server/services"
	"smartsquare-server/storage"
)

// app is everything a command needs once configuration is loaded.
type app struct {
	cfg     *config.Config
	db      *gorm.DB
	redis   *redis.Client
	svc     *services.Services
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.Debug {
		golog.SetLevel("debug")
	}
	return cfg, nil
}

// bootstrap connects to the database, migrates it and wires the services
// with the delivery channels the configuration enables.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	db, err := storage.InitializeDB(cfg)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, db: db}
	a.closers = append(a.closers, func() {
		if err := storage.Close(db); err != nil {
			golog.Warnf("failed to close database: %v", err)
		}
	})

	blobs, err := blobstore.New(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	dispatcher := notify.NewComposite(notify.Logger{})
	if cfg.RedisAddr != "" {
		a.redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			golog.Warnf("redis at %s is not reachable: %v", cfg.RedisAddr, err)
		}
		a.closers = append(a.closers, func() { _ = a.redis.Close() })
		dispatcher.Add(notify.NewRedisPublisher(a.redis))
	}
	if cfg.MailjetAPIKey != "" && cfg.MailjetAPISecret != "" {
		dispatcher.Add(notify.NewMailjetMailer(cfg.MailjetAPIKey, cfg.MailjetAPISecret, cfg.MailFromAddress, cfg.MailFromName))
	}
	if cfg.PushEnabled {
		dispatcher.Add(notify.NewExpoPusher())
	}
	golog.Infof("notification delivery through %d channels", dispatcher.Len())

	a.svc = services.New(db, services.Options{
		Blobs:                blobs,
		Dispatcher:           dispatcher,
		PasswordPolicy:       auth.PasswordPolicy{MinLength: cfg.PasswordMinLength},
		VerificationValidity: cfg.VerificationValidity,
	})
	return a, nil
}
