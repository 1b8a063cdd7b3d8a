package marionette

import (
	"fmt"
	"sync"
)

// PatchOp is the kind of a queued patch-bay command.
type PatchOp uint8

const (
	OpConnect PatchOp = iota
	OpDisconnect
	OpEnable
	OpDisable
	OpToggle
	OpSetWeight
)

var opNames = [...]string{
	OpConnect:    "connect",
	OpDisconnect: "disconnect",
	OpEnable:     "enable",
	OpDisable:    "disable",
	OpToggle:     "toggle",
	OpSetWeight:  "set_weight",
}

func (op PatchOp) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return "unknown"
}

// ParsePatchOp converts an op name such as "connect" to a PatchOp.
func ParsePatchOp(name string) (PatchOp, bool) {
	for i, n := range opNames {
		if n == name {
			return PatchOp(i), true
		}
	}
	return 0, false
}

// PatchCommand is one binding change submitted through a PatchQueue. The
// target binding is Binding when set, otherwise the binding found for the
// Signal/Effector pair.
type PatchCommand struct {
	Op       PatchOp
	Binding  BindingID
	Signal   string
	Effector string
	Weight   float64
}

func (c PatchCommand) String() string {
	if c.Binding != "" {
		return fmt.Sprintf("%s %s", c.Op, c.Binding)
	}
	return fmt.Sprintf("%s %s -> %s", c.Op, c.Signal, c.Effector)
}

// CommandResult is the outcome of one drained PatchCommand.
type CommandResult struct {
	Command PatchCommand
	Binding BindingID
	Err     error
}

// PatchQueue buffers binding changes from any goroutine until the owning
// Binder drains it at the start of its next frame. A frame therefore always
// sees either all or none of a command.
type PatchQueue struct {
	mu   sync.Mutex
	cmds []PatchCommand
}

// NewPatchQueue creates an empty queue.
func NewPatchQueue() *PatchQueue {
	return &PatchQueue{}
}

// Push appends a command.
func (q *PatchQueue) Push(cmd PatchCommand) {
	q.mu.Lock()
	q.cmds = append(q.cmds, cmd)
	q.mu.Unlock()
}

// Connect queues a new binding of signal to effector.
func (q *PatchQueue) Connect(signal, effector string, weight float64) {
	q.Push(PatchCommand{Op: OpConnect, Signal: signal, Effector: effector, Weight: weight})
}

// Disconnect queues removal of a binding.
func (q *PatchQueue) Disconnect(id BindingID) {
	q.Push(PatchCommand{Op: OpDisconnect, Binding: id})
}

// Enable queues enabling a binding.
func (q *PatchQueue) Enable(id BindingID) {
	q.Push(PatchCommand{Op: OpEnable, Binding: id})
}

// Disable queues disabling a binding.
func (q *PatchQueue) Disable(id BindingID) {
	q.Push(PatchCommand{Op: OpDisable, Binding: id})
}

// Toggle queues flipping the pair's binding on or off. A pair with no
// binding yet is connected with weight.
func (q *PatchQueue) Toggle(signal, effector string, weight float64) {
	q.Push(PatchCommand{Op: OpToggle, Signal: signal, Effector: effector, Weight: weight})
}

// SetWeight queues a weight change.
func (q *PatchQueue) SetWeight(id BindingID, weight float64) {
	q.Push(PatchCommand{Op: OpSetWeight, Binding: id, Weight: weight})
}

// Len returns the number of pending commands.
func (q *PatchQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.cmds)
}

// drain appends all pending commands to dst in submission order and empties
// the queue.
func (q *PatchQueue) drain(dst []PatchCommand) []PatchCommand {
	q.mu.Lock()
	dst = append(dst, q.cmds...)
	clear(q.cmds)
	q.cmds = q.cmds[:0]
	q.mu.Unlock()
	return dst
}

// apply runs one command against the binder.
func (b *Binder) apply(cmd PatchCommand) CommandResult {
	res := CommandResult{Command: cmd, Binding: cmd.Binding}

	if cmd.Op == OpConnect {
		res.Binding, res.Err = b.Connect(cmd.Signal, cmd.Effector, cmd.Weight)
		b.logCommand(res)
		return res
	}

	id := cmd.Binding
	if id == "" {
		found, ok := b.Find(cmd.Signal, cmd.Effector)
		switch {
		case ok:
			id = found
		case cmd.Op == OpToggle:
			res.Binding, res.Err = b.Connect(cmd.Signal, cmd.Effector, cmd.Weight)
			b.logCommand(res)
			return res
		default:
			res.Err = validationf("%s: no binding %s -> %s", cmd.Op, cmd.Signal, cmd.Effector)
			b.logCommand(res)
			return res
		}
	}
	res.Binding = id

	switch cmd.Op {
	case OpDisconnect:
		res.Err = b.Disconnect(id)
	case OpEnable:
		res.Err = b.Enable(id)
	case OpDisable:
		res.Err = b.Disable(id)
	case OpToggle:
		if info, ok := b.Binding(id); ok && info.Enabled {
			res.Err = b.Disable(id)
		} else {
			res.Err = b.Enable(id)
		}
	case OpSetWeight:
		res.Err = b.SetWeight(id, cmd.Weight)
	default:
		res.Err = validationf("unknown patch op %d", cmd.Op)
	}
	b.logCommand(res)
	return res
}

func (b *Binder) logCommand(res CommandResult) {
	if res.Err != nil {
		b.log.Warn("patch command failed", "command", res.Command.String(), "error", res.Err)
		return
	}
	b.log.Debug("patch command applied", "command", res.Command.String(), "binding", res.Binding)
}
