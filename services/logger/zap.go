package logsvc

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/hatag-tech/elearning/core"
	"github.com/hatag-tech/elearning/core/user"
)

type ZapLogger struct {
	sugar *zap.SugaredLogger
}

var _ core.Logger = (*ZapLogger)(nil)

// NewZapLogger builds a development (console) logger, or a JSON one in production.
func NewZapLogger(conf *core.Config) (*ZapLogger, error) {
	var cfg zap.Config
	if strings.EqualFold(conf.Env, "PROD") {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	if conf.Debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	zl, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &ZapLogger{sugar: zl.Sugar().With("app", conf.AppName, "env", conf.Env)}, nil
}

// NewZapLoggerFrom wraps an existing zap logger.
func NewZapLoggerFrom(zl *zap.Logger) *ZapLogger {
	return &ZapLogger{sugar: zl.Sugar()}
}

func (l *ZapLogger) Sync() {
	_ = l.sugar.Sync()
}

// expected fmt: error, map[string]interface{}, user.User or key/value pairs
func (l *ZapLogger) fields(args []interface{}) []interface{} {
	kvs := make([]interface{}, 0, len(args)*2)
	for i := 0; i < len(args); i++ {
		switch arg := args[i].(type) {
		case error:
			kvs = append(kvs, "error", arg)
		case user.User:
			kvs = append(kvs, "user_id", arg.ID, "user_role", string(arg.Role))
		case map[string]interface{}:
			keys := make([]string, 0, len(arg))
			for k := range arg {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				kvs = append(kvs, k, arg[k])
			}
		case string:
			if i+1 < len(args) {
				kvs = append(kvs, arg, args[i+1])
				i++
			} else {
				kvs = append(kvs, "detail", arg)
			}
		default:
			kvs = append(kvs, "detail", arg)
		}
	}
	return kvs
}

func (l *ZapLogger) Debug(msg string, args ...interface{}) { l.sugar.Debugw(msg, l.fields(args)...) }
func (l *ZapLogger) Info(msg string, args ...interface{})  { l.sugar.Infow(msg, l.fields(args)...) }
func (l *ZapLogger) Warn(msg string, args ...interface{})  { l.sugar.Warnw(msg, l.fields(args)...) }
func (l *ZapLogger) Error(msg string, args ...interface{}) { l.sugar.Errorw(msg, l.fields(args)...) }
func (l *ZapLogger) Fatal(msg string, args ...interface{}) { l.sugar.Fatalw(msg, l.fields(args)...) }
