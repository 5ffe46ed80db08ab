package testutil

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hatag-tech/elearning/core"
	"github.com/hatag-tech/elearning/core/learning"
	"github.com/hatag-tech/elearning/core/notification"
	"github.com/hatag-tech/elearning/core/user"
	logsvc "github.com/hatag-tech/elearning/services/logger"
	inmemdb "github.com/hatag-tech/elearning/storage/database/inmem"
	"github.com/hatag-tech/elearning/storage/kv"
)

func init() {
	user.PasswordHashCost = bcrypt.MinCost
}

// NewConfig returns the default configuration, without reading the environment.
func NewConfig() *core.Config {
	return &core.Config{
		Env:             "TEST",
		TestMode:        true,
		AppName:         "Lumina",
		Build:           "test",
		FrontendBaseURL: "http://localhost:5173",
		CatalogPageSize: 6,
		Admin: core.AdminCredential{
			ID:       "u-admin",
			Email:    "admin@gmail.com",
			Password: "123@#$80aA",
			Username: "Super Admin",
		},
		Storage: core.StorageConfig{Backend: "memory", WriteTimeout: time.Second},
		Certificate: core.CertificateRules{
			MinProgress:        100,
			MinQuizScore:       70,
			MinAssignmentScore: 70,
		},
	}
}

// Env wires the services on top of a store, the way the application does.
type Env struct {
	Conf     *core.Config
	Logger   core.Logger
	Store    kv.Store
	DB       *inmemdb.DB
	UserRepo user.Repository

	Users         *user.Service
	Notifications *notification.Service
	Learning      *learning.Service
}

// NewEnv opens a fresh in-memory state.
func NewEnv(t *testing.T) *Env {
	return NewEnvWithStore(t, kv.NewMemory())
}

// NewEnvWithStore opens the state persisted in store.
func NewEnvWithStore(t *testing.T, store kv.Store, opts ...notification.Option) *Env {
	conf := NewConfig()
	logger := logsvc.NewNopLogger()

	db, err := inmemdb.Open(context.Background(), store, logger, inmemdb.Options{
		WriteTimeout: conf.Storage.WriteTimeout,
		Admin:        conf.Admin,
	})
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}

	validator := core.NewValidator()
	repo := inmemdb.NewUserRepository(db)
	usrSvc := user.NewService(repo, db.Session(), validator, conf, logger)
	notifSvc := notification.NewService(db.Notifications(), logger, opts...)
	learnSvc := learning.NewService(db.LearningRepositories(), usrSvc, notifSvc, validator, conf, logger)

	return &Env{
		Conf:          conf,
		Logger:        logger,
		Store:         store,
		DB:            db,
		UserRepo:      repo,
		Users:         usrSvc,
		Notifications: notifSvc,
		Learning:      learnSvc,
	}
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	id, uname, email, pwd string,
	role user.Role,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		ID:        id,
		Username:  uname,
		Email:     email,
		Role:      role,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

// FreezeTime pins core.Now to tstamp for the duration of the test.
func FreezeTime(t *testing.T, tstamp time.Time) {
	orig := core.NowFunc
	core.NowFunc = func() time.Time { return tstamp }
	t.Cleanup(func() { core.NowFunc = orig })
}
