// Package interpreter holds the catalog of command interpreters a session
// can run commands through.
//
// A Profile describes how to invoke one interpreter: the executable, the
// flag that makes it run a single command string, and the argv that prints
// its version. The Registry maps canonical names to profiles. Resolving an
// unknown name silently yields the fallback profile; callers that care
// compare the returned Name.
//
// Builtin catalog:
//   - cmd: cmd /c <command>
//   - sh: sh -c <command>
//   - bash, zsh, nu: <program> -c <command>
//   - pwsh: pwsh -Command <command>
//
// Example Usage:
//
//	reg := interpreter.NewRegistry("bash").WithProber(executor, time.Minute)
//	profile := reg.Resolve("fish") // → bash, fish is not registered
//	installed := reg.Available()   // probes each interpreter once per minute
package interpreter
