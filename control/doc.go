// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration, logging, metrics and debug introspection for hioload-ring.
//
// Provides:
//   - Config loading from defaults, YAML, environment and flags (viper)
//   - zap logger construction
//   - Prometheus-backed reservation metrics implementing api.RingObserver
//   - Probe registration and state export
package control
