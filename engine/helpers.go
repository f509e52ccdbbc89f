package engine

import (
	"fmt"

	"github.com/erigontech/erigon-lib/log/v3"
	"github.com/pkg/errors"

	"github.com/simbase-engine/simbase/errs"
	"github.com/simbase-engine/simbase/logging"
)

func logWithKey(scope, key string) log.Logger {
	return logging.WithKey(logging.Scoped(scope), key)
}

// ackOnlyTask wraps a fire-and-forget write (§7: "the client has
// already received ok, so the failure is only visible through logs and
// the next read"). Panics are trapped, converted to errs.KernelError
// (with a stack trace) and logged, never reraised.
func ackOnlyTask(l log.Logger, fn func() error) func() {
	return func() {
		defer func() {
			if r := recover(); r != nil {
				l.Error("writer task panicked", "err", panicErr(r))
			}
		}()
		if err := fn(); err != nil {
			l.Warn("writer task failed", "err", err)
		}
	}
}

// replyTask wraps a reply-bearing op: it recovers a kernel panic into
// errs.KernelError and always calls cb exactly once (§7: "For
// reply-bearing async ops, the error propagates to the callback").
func replyTask[T any](l log.Logger, zero T, cb Callback[T], fn func() (T, error)) func() {
	return func() {
		defer func() {
			if r := recover(); r != nil {
				err := panicErr(r)
				l.Error("task panicked", "err", err)
				cb(zero, err)
			}
		}()
		res, err := fn()
		if err != nil {
			l.Warn("task failed", "err", err)
		}
		cb(res, err)
	}
}

// panicErr converts a recovered panic value into errs.KernelError,
// capturing the stack with pkg/errors.WithStack.
func panicErr(r any) error {
	return errs.New(errs.KernelError, "", errors.WithStack(fmt.Errorf("panic: %v", r)))
}

func (e *Engine) writerLog(bkey string) log.Logger {
	return logWithKey("writer:"+bkey, bkey)
}

func (e *Engine) mgmtLog(key string) log.Logger {
	return logWithKey("mgmt", key)
}

func (e *Engine) readerLog(key string) log.Logger {
	return logWithKey("reader", key)
}
