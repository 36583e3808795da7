package middleware

import (
	"context"

	"gardiens/internal/app/commands"
	"gardiens/internal/app/uow"
)

type TxOptionsProvider func(cmd commands.Command) uow.TxOptions

// LockByKey serializes commands exposing a LockKey, e.g. all commands of one session.
func LockByKey(cmd commands.Command) uow.TxOptions {
	if keyed, ok := cmd.(interface{ LockKey() string }); ok {
		return uow.TxOptions{Lock: keyed.LockKey()}
	}
	return uow.TxOptions{}
}

// Transaction runs each command inside a unit of work committed on success.
func Transaction(factory uow.UoWFactory, optsProvider TxOptionsProvider) CommandMiddleware {
	if factory == nil {
		panic("middleware: uow factory required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			opts := uow.TxOptions{}
			if optsProvider != nil {
				opts = optsProvider(cmd)
			}
			var res any
			err := uow.Run(ctx, factory, opts, func(ctx context.Context, _ uow.UnitOfWork) error {
				var err error
				res, err = next.Dispatch(ctx, cmd)
				return err
			})
			if err != nil {
				return nil, err
			}
			return res, nil
		})
	}
}
