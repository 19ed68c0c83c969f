// Package api
// Author: momentics <momentics@gmail.com>
//
// Public contracts for hioload-sock: the completion-ring submission
// interface, socket connection abstraction, and structured error types
// shared by all layers.
package api
