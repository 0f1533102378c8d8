// Package terminal runs single commands through an interpreter and turns
// their output into plain text.
//
// Each command gets a fresh process; nothing is attached to a pseudo-terminal,
// so programs that expect a TTY see pipes instead. Output is captured in full,
// standard output first and standard error after it, then normalized:
//
//   - Decoding: BOM and UTF-8 checks first, then statistical charset
//     detection, then the interpreter's encoding hint. Decoding never fails;
//     bytes that cannot be mapped become U+FFFD.
//   - Stripping: CSI, OSC, DCS/SOS/PM/APC strings, short ESC sequences, C1
//     controls and C0 controls other than tab, line feed and carriage return
//     are removed.
//
// Example Usage:
//
//	exec := terminal.NewExecutor(logger, metrics)
//	banner, err := exec.Probe(profile)
//	// → "GNU bash, version 5.2.15(1)-release ..."
//
//	out := exec.Execute(profile, "/home/user", "ls --color=always")
//	// → "README.md\nsrc\n" (colors removed)
package terminal
