// Package server implements the optional HTTP API of the voice gender
// classifier: a classification endpoint accepting local paths or uploads,
// plus health, configuration, statistics, and Prometheus metrics endpoints.
package server
