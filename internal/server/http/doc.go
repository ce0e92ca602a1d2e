// Package httpserver provides the REST gateway for OneVault: JSON endpoints
// for entity writes, temporal reads, history, identity lookup, schema
// registration, tenant management, and audit tailing.
//
// Example:
//
//	rt, _ := runtime.Open(runtime.Options{DataDir: "./data", Fsync: pebblestore.FsyncModeAlways, Config: config.Default()})
//	svc, _ := vault.New(rt, logger)
//	s := httpserver.New(rt, svc, logger)
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, ":8080")
package httpserver
