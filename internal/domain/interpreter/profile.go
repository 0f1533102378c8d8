package interpreter

import "runtime"

// Profile is the invocation shape of one command interpreter.
type Profile struct {
	// Name is the canonical identifier clients select the interpreter by.
	Name string `yaml:"name" json:"name"`
	// Program is the executable, resolved through PATH.
	Program string `yaml:"program" json:"program"`
	// Argument makes the interpreter run the next argument as one command.
	Argument string `yaml:"argument" json:"argument"`
	// Version is the argv that prints a version banner and exits zero.
	Version []string `yaml:"version" json:"version"`
	// Encoding is the charset label assumed when output encoding cannot be
	// detected.
	Encoding string `yaml:"encoding" json:"encoding,omitempty"`
}

// Command returns the argv that runs command through the interpreter.
func (p Profile) Command(command string) []string {
	if p.Argument == "" {
		return []string{command}
	}
	return []string{p.Argument, command}
}

func (p Profile) String() string {
	return p.Name + " (" + p.Program + " " + p.Argument + ")"
}

// Builtin profile names.
const (
	Cmd  = "cmd"
	Sh   = "sh"
	Bash = "bash"
	Zsh  = "zsh"
	Nu   = "nu"
	Pwsh = "pwsh"
)

// Builtins returns the default catalog.
func Builtins() []Profile {
	return []Profile{
		{Name: Cmd, Program: "cmd", Argument: "/c", Version: []string{"/c", "ver"}, Encoding: "gbk"},
		// dash rejects --version, so the banner is assembled by the shell itself.
		{Name: Sh, Program: "sh", Argument: "-c", Version: []string{"-c", "echo sh ${BASH_VERSION:-posix}"}, Encoding: "utf-8"},
		{Name: Bash, Program: "bash", Argument: "-c", Version: []string{"--version"}, Encoding: "utf-8"},
		{Name: Zsh, Program: "zsh", Argument: "-c", Version: []string{"--version"}, Encoding: "utf-8"},
		{Name: Nu, Program: "nu", Argument: "-c", Version: []string{"--version"}, Encoding: "utf-8"},
		{Name: Pwsh, Program: "pwsh", Argument: "-Command", Version: []string{"--version"}, Encoding: "utf-8"},
	}
}

// PlatformDefault returns the fallback interpreter name for the host OS.
func PlatformDefault() string {
	if runtime.GOOS == "windows" {
		return Cmd
	}
	return Sh
}
