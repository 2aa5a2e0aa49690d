// Package containers provides testcontainers-based fixtures for the
// integration-tagged tests.
package containers
