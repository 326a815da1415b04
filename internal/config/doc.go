// Package config provides loading and environment overlay for spool
// configuration. It exposes a Default() baseline, Load() from a JSON
// file, and FromEnv() overlaying SPOOL_* variables.
//
// Example:
//
//	cfg := config.Default()
//	if fileCfg, err := config.Load("/etc/spool.json"); err == nil {
//	    cfg = fileCfg
//	}
//	config.FromEnv(&cfg)
//	rt, _ := runtime.Open(runtime.Options{DataDir: cfg.RootDir, Config: cfg})
package config
