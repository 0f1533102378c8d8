// Package session runs the per-connection terminal state machine.
//
// A Session owns its State (interpreter and working directory) for the whole
// life of one connection. Commands are handled strictly one at a time: the
// output of a command is sent before the next message is read.
//
// Lifecycle:
//  1. AwaitingProfile: the requested interpreter is resolved; unknown names
//     use the registry default
//  2. AwaitingVersionAck: the version probe runs and its banner is sent; a
//     failed probe closes the connection
//  3. ReceivingCommand: wait for the next text message
//  4. Executing: "cd <path>" changes directory, anything else runs through
//     the interpreter, and exactly one reply is sent
//  5. Closed: "exit", the peer closing, or any transport error
//
// Binary messages are logged and skipped. Each command runs in a new process,
// so environment changes made by one command do not reach the next.
//
// The Manager only holds metadata and connections for listing and shutdown.
//
// Example Usage:
//
//	sess, err := session.New(session.Config{Shell: "bash", WorkDir: root}, registry, executor, logger)
//	err = manager.Serve(sess, conn) // blocks until the session ends
package session
