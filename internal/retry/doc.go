// Package retry retries connection attempts with exponential backoff.
//
// Only establishing the database connection is retried. Statements of an
// import run are never retried: a failed write aborts the run.
//
//	executor := retry.ForConnections(logger)
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return pool.Ping(ctx)
//	})
//
// The PostgreSQLErrorClassifier decides which errors are transient
// (connection exceptions, insufficient resources, operator intervention,
// network failures). Context cancellation and deadlines are always fatal so
// that --timeout and Ctrl+C stop retrying at once.
package retry
