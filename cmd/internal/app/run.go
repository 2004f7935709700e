package app

import (
	"context"
	"os/signal"
	"syscall"
)

// Run is the process entrypoint used by cmd/fooddecider.
// It returns an error instead of calling os.Exit to keep defers effective.
func Run() error {
	if err := LoadDotEnv(EnvString("FD_ENV_FILE", ".env")); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return NewRootCmd().ExecuteContext(ctx)
}
