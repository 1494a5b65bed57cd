// Package cli provides the interactive passvault command-line client.
//
// The App wires configuration, the HTTP store and a vault session into a
// read-eval-print loop. The master password is read from the terminal
// without echo and never leaves the process; only ciphertexts are sent to
// the server.
//
// The REPL is started with App.Run(ctx), which blocks until the user exits
// or stdin is closed. The session is locked on the way out.
package cli
