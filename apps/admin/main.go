package main

import (
	"context"
	"fmt"
	"net/mail"
	"os"

	"github.com/hatag-tech/elearning/core"
	"github.com/hatag-tech/elearning/core/learning"
	"github.com/hatag-tech/elearning/core/notification"
	"github.com/hatag-tech/elearning/core/user"
	emailsvc "github.com/hatag-tech/elearning/services/email"
	logsvc "github.com/hatag-tech/elearning/services/logger"
	inmemdb "github.com/hatag-tech/elearning/storage/database/inmem"
	"github.com/hatag-tech/elearning/storage/kv"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code, after pending mail and error reports are flushed.
func run() int {
	conf := core.NewConfig()

	zl, err := logsvc.NewZapLogger(conf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return 1
	}
	defer zl.Sync()

	var logger core.Logger = zl
	if conf.RollbarToken != "" {
		rl := logsvc.NewRollbarLogger(zl, conf)
		defer rl.Flush()
		logger = rl
	}

	ctx := context.Background()
	store := openStore(ctx, conf, logger)

	db, err := inmemdb.Open(ctx, store, logger, inmemdb.Options{
		WriteTimeout: conf.Storage.WriteTimeout,
		Admin:        conf.Admin,
	})
	errAndDie(logger, err)
	defer db.Close()

	// set up services
	validator := core.NewValidator()
	usrSvc := user.NewService(inmemdb.NewUserRepository(db), db.Session(), validator, conf, logger)

	var notifOpts []notification.Option
	if mailSvc := newMailService(conf, logger); mailSvc != nil {
		core.ParseEmailTemplates(logger)
		defer mailSvc.Wait()
		notifOpts = append(notifOpts, notification.WithMailer(conf, mailSvc, mailboxOf(usrSvc)))
	}
	notifSvc := notification.NewService(db.Notifications(), logger, notifOpts...)
	learnSvc := learning.NewService(db.LearningRepositories(), usrSvc, notifSvc, validator, conf, logger)

	// start CLI
	cli := commandLine{
		out:      os.Stdout,
		usrSvc:   usrSvc,
		learnSvc: learnSvc,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("admin: %v", err), err)
		}
		return 1
	}
	return 0
}

// openStore opens the configured backend. The state falls back to a volatile store when the backend
// cannot be reached.
func openStore(ctx context.Context, conf *core.Config, logger core.Logger) kv.Store {
	var (
		store kv.Store
		err   error
	)
	switch conf.Storage.Backend {
	case "redis":
		store, err = kv.OpenRedis(ctx, kv.RedisConfig{
			Addr:     conf.Storage.RedisAddr,
			Password: conf.Storage.RedisPassword,
			DB:       conf.Storage.RedisDB,
		})
	case "memory":
		store = kv.NewMemory()
	default:
		store, err = kv.OpenBolt(conf.Storage.Path)
	}
	if err != nil {
		logger.Warn(fmt.Sprintf("storage %q unavailable, state will not survive a restart: %v", conf.Storage.Backend, err), err)
		store = kv.NewMemory()
	}
	return kv.Namespaced(store, conf.Storage.Namespace)
}

func newMailService(conf *core.Config, logger core.Logger) core.EmailService {
	switch {
	case !conf.EmailNotification:
		return nil
	case conf.Debug || conf.SendgridApiKey == "":
		return emailsvc.NewConsoleService(conf, logger)
	default:
		return emailsvc.NewSendgridService(conf, logger)
	}
}

func mailboxOf(usrSvc *user.Service) notification.RecipientResolver {
	return func(userID string) (mail.Address, bool) {
		usr, err := usrSvc.GetByID(userID)
		if err != nil || usr.Email == "" {
			return mail.Address{}, false
		}
		return mail.Address{Name: usr.Username, Address: usr.Email}, true
	}
}

func errAndDie(logger core.Logger, err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
