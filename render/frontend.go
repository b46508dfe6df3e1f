package render

// Frontend accumulates the commands for one frame. It does no validation;
// bad references are dealt with by the Backend.
type Frontend struct {
	commands []RenderCommand
}

// NewFrontend returns an empty Frontend.
func NewFrontend() *Frontend {
	return &Frontend{commands: make([]RenderCommand, 0, 64)}
}

// Submit queues cmd for this frame.
func (f *Frontend) Submit(cmd RenderCommand) {
	f.commands = append(f.commands, cmd)
}

// Commands returns the queued commands. The slice is only valid until Clear.
func (f *Frontend) Commands() []RenderCommand {
	return f.commands
}

// Len returns the number of queued commands.
func (f *Frontend) Len() int {
	return len(f.commands)
}

// Clear drops every queued command, keeping the allocation for the next frame.
func (f *Frontend) Clear() {
	clear(f.commands)
	f.commands = f.commands[:0]
}
