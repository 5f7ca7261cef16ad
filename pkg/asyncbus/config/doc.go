// Package config loads bus configuration from YAML or JSON files into a
// map-backed Config with type-safe accessors.
//
// Accessors never fail: a missing key or a value of the wrong type yields
// the caller's default. This keeps configuration handling out of the hot
// path and makes partial config files safe.
//
//	cfg, err := config.FromFile("bus.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	capacity := cfg.Int("capacity", 10000)
//	interval := cfg.Duration("poll_interval", 10*time.Millisecond)
package config
