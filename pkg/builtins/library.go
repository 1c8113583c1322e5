// Package builtins provides the standard dialogue functions available to every
// chain: variable access, scope control, forced waits and small branching helpers.
package builtins

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/registry"
	"github.com/aretw0/parley/pkg/variables"
)

// Delayer queues a forced wait before the next node.
type Delayer interface {
	QueueDelay(d time.Duration)
}

// Library binds the builtins to one variable store and delay queue.
type Library struct {
	vars    *variables.Store
	delayer Delayer
	logger  *slog.Logger
}

// New creates a library. delayer may be nil, in which case wait is a no-op.
func New(vars *variables.Store, delayer Delayer, logger *slog.Logger) *Library {
	return &Library{vars: vars, delayer: delayer, logger: logging.OrNop(logger)}
}

// DialogueFunctions implements registry.Provider.
func (l *Library) DialogueFunctions() []registry.Entry {
	return []registry.Entry{
		registry.Static("set", registry.Action2(l.set)),
		registry.Static("get", registry.Func1(l.get)),
		registry.Static("unset", registry.Action1(l.unset)),
		registry.Static("add", registry.Action2(l.add)),
		registry.Static("push", registry.Action0(l.vars.Push)),
		registry.Static("pop", registry.Action0(l.pop)),
		registry.Static("clear_vars", registry.Action0(l.vars.Clear)),
		registry.Static("depth", registry.Func0(l.depth)),
		registry.Static("wait", registry.Action1(l.wait)),
		registry.Static("if_equals", registry.Func3(l.ifEquals)),
		registry.Static("pick", registry.RawFunc(pick)),
		registry.Static("log", registry.Raw(l.log)),
	}
}

func (l *Library) set(name, value string) {
	l.vars.SetValue(name, value)
}

func (l *Library) get(name string) string {
	return variables.Get(l.vars, name, "")
}

func (l *Library) unset(name string) {
	if !l.vars.Delete(name) {
		l.logger.Debug("unset of missing variable", "name", name)
	}
}

// add treats a missing or non-numeric variable as 0.
func (l *Library) add(name string, n int) {
	cur := 0
	if v, ok := l.vars.Lookup(name); ok {
		parsed, err := cast.ToIntE(v)
		if err != nil {
			l.logger.Warn("variable is not numeric, restarting at 0", "name", name, "value", v)
		}
		cur = parsed
	}
	l.vars.SetValue(name, cur+n)
}

func (l *Library) pop() {
	l.vars.Pop()
}

func (l *Library) depth() string {
	return strconv.Itoa(l.vars.Depth())
}

func (l *Library) wait(seconds float64) {
	if l.delayer == nil || seconds <= 0 {
		return
	}
	l.delayer.QueueDelay(time.Duration(seconds * float64(time.Second)))
}

func (l *Library) ifEquals(name, value, label string) string {
	if variables.Get(l.vars, name, "") == value {
		return label
	}
	return ""
}

func (l *Library) log(args []string) {
	l.logger.Info("dialogue", "msg", strings.Join(args, " "))
}

// pick returns the first non-empty argument.
func pick(args []string) string {
	for _, a := range args {
		if a != "" {
			return a
		}
	}
	return ""
}
