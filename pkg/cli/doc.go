// Package cli implements the hookcatch command line interface: the serve
// command running the capture server, and client commands for managing
// tokens and reading capture logs on a running instance.
package cli
