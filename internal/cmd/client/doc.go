// Package client contains Cobra CLI commands for spool.
package client
