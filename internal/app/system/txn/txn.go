// Package txn runs multi-document writes inside a MongoDB transaction when
// the deployment supports one.
//
// Standalone servers (and some MongoDB-compatible services) reject
// transactions. Run detects that case and executes the callback once
// without a session so development setups keep working; the writes are
// then not atomic with each other.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
	"go.uber.org/zap"
)

// Run executes fn inside a transaction on client. If transactions are not
// supported, fn runs again with the plain ctx and the fallback is logged.
// fn must be safe to re-run from the start.
func Run(ctx context.Context, client *mongo.Client, log *zap.Logger, fn func(ctx context.Context) error) error {
	if client == nil {
		return fn(ctx)
	}

	err := runInSession(ctx, client, fn)
	if err == nil || !IsNotSupported(err) {
		return err
	}

	if log != nil {
		log.Warn("transactions unavailable; running writes without a transaction", zap.Error(err))
	}
	return fn(ctx)
}

func runInSession(ctx context.Context, client *mongo.Client, fn func(ctx context.Context) error) error {
	sess, err := client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())
	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	}, txnOpts)
	return err
}

// IsNotSupported reports whether err means the server cannot run
// transactions (standalone server, no sessions, or an illegal operation
// inside a transaction).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case 20, 51, 263:
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	has := func(s string) bool { return strings.Contains(msg, s) }
	switch {
	case has("transaction") && has("replica set"):
		return true
	case has("session") && has("not supported"):
		return true
	case has("transaction") && has("session"):
		return true
	case has("illegal operation"):
		return true
	}
	return false
}
