package sm

import (
	"go.uber.org/zap"

	"github.com/orbitalos/backend/internal/infrastructure/logging"
	"github.com/orbitalos/backend/internal/ipc"
)

// Dispatcher is anything that can serve wire commands on a session.
type Dispatcher interface {
	ServiceName() string
	HandleRequest(ctx *ipc.Context)
}

// HandlerFunc serves one wire command against a request context.
type HandlerFunc func(ctx *ipc.Context)

// FunctionInfo binds a command id to its handler. A nil Handler marks a
// command that is part of the protocol but not implemented; dispatch
// rejects it with ResultNotImplemented rather than ignoring it.
type FunctionInfo struct {
	ID      uint32
	Handler HandlerFunc
	Name    string
}

// Framework is the shared dispatch plumbing for wire-facing services:
// a name plus a command table. Services embed it and register their
// handlers at construction.
type Framework struct {
	name     string
	handlers map[uint32]FunctionInfo
	log      *logging.Logger
}

// NewFramework creates dispatch plumbing for a named service.
func NewFramework(name string, log *logging.Logger) *Framework {
	return &Framework{
		name:     name,
		handlers: make(map[uint32]FunctionInfo),
		log:      log.Named(name),
	}
}

// RegisterHandlers installs the service's command table.
func (f *Framework) RegisterHandlers(functions []FunctionInfo) {
	for _, fn := range functions {
		f.handlers[fn.ID] = fn
	}
}

// ServiceName returns the name the service dispatches under.
func (f *Framework) ServiceName() string { return f.name }

// HandleRequest routes one command to its handler. Unknown ids and
// reserved ids with no handler bound both produce a well-formed reply
// carrying ResultNotImplemented and no handles.
func (f *Framework) HandleRequest(ctx *ipc.Context) {
	fn, ok := f.handlers[ctx.Command()]
	if !ok {
		f.log.Warn("unknown command",
			zap.Uint32("command", ctx.Command()),
		)
		ctx.Builder().Push(ipc.ResultNotImplemented)
		return
	}
	if fn.Handler == nil {
		f.log.Warn("unimplemented command",
			zap.Uint32("command", fn.ID),
			zap.String("name", fn.Name),
		)
		ctx.Builder().Push(ipc.ResultNotImplemented)
		return
	}
	fn.Handler(ctx)
}
