// Package tools ships the builtin capabilities: file operations, system
// resource queries, an in-process clipboard, date/time, literal echo,
// application-control and system-command dispatch. OS-specific device
// handling and raw process execution stay outside this module; the
// app_control and system_command tools accept injected dispatchers so hosts
// wire in the real thing.
package tools

import "github.com/taskpilot/taskpilot/tool"

// Options configures the builtin tool set.
type Options struct {
	// BaseDir sandboxes file operations; defaults to the working directory.
	BaseDir string
	// AppDispatcher performs real application control when provided.
	AppDispatcher AppDispatcher
	// CommandRunner executes system commands when provided. Without one the
	// system_command tool reports NOT_CONFIGURED.
	CommandRunner CommandRunner
}

// RegisterBuiltins registers the builtin tool set on the given registry.
func RegisterBuiltins(reg *tool.Registry, optFns ...func(o *Options)) {
	opts := Options{BaseDir: "."}
	for _, fn := range optFns {
		fn(&opts)
	}
	reg.Register(NewFileOperations(opts.BaseDir))
	reg.Register(NewSystemInfo())
	reg.Register(NewClipboard())
	reg.Register(NewDateTime())
	reg.Register(NewEcho())
	reg.Register(NewAppControl(opts.AppDispatcher))
	reg.Register(NewSystemCommand(opts.CommandRunner))
}
