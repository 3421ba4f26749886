package ws

import (
	"errors"

	"go.uber.org/zap"

	"github.com/orbitalos/backend/internal/infrastructure/logging"
	"github.com/orbitalos/backend/internal/infrastructure/monitoring"
	"github.com/orbitalos/backend/internal/ipc"
	"github.com/orbitalos/backend/internal/kernel"
	"github.com/orbitalos/backend/internal/shared/id"
	"github.com/orbitalos/backend/internal/sm"
)

// Frame operations.
const (
	OpRequest = "request"
	OpConnect = "connect"
	OpControl = "control"
)

// Frame is one inbound command from a process link: an operation, the
// handle it targets, and the raw command words.
type Frame struct {
	Op     string   `json:"op"`
	Target uint32   `json:"target"`
	Cmd    uint32   `json:"cmd"`
	Words  []uint32 `json:"words,omitempty"`
}

// ReplyFrame mirrors the wire reply shape: the result code word first,
// then zero or more handles.
type ReplyFrame struct {
	Result  uint32   `json:"result"`
	Handles []uint32 `json:"handles,omitempty"`
}

// binding is what a handle held by one link refers back to: a session
// (optionally served by an in-process dispatcher) or a bare port kept
// for retrying a connect.
type binding struct {
	session    *kernel.Session
	port       *kernel.ClientPort
	dispatcher sm.Dispatcher
	name       string
}

// link is the per-connection state of one emulated process: its handle
// table and the registry it resolves against. Frames on one link are
// handled sequentially; the table needs no lock.
type link struct {
	id       id.ConnID
	registry *sm.ServiceRegistry
	bindings map[uint32]*binding
	log      *logging.Logger
	metrics  *monitoring.Metrics
}

func newLink(registry *sm.ServiceRegistry, log *logging.Logger, metrics *monitoring.Metrics) *link {
	connID := id.NewConnID()
	return &link{
		id:       connID,
		registry: registry,
		bindings: make(map[uint32]*binding),
		log:      &logging.Logger{Logger: log.With(zap.String("conn", string(connID)))},
		metrics:  metrics,
	}
}

// open establishes the link's initial session to the well-known root
// dispatcher. Every process starts here before it can resolve anything.
func (l *link) open(wellKnownName string) (ReplyFrame, error) {
	session, err := l.registry.ConnectToService(wellKnownName)
	if err != nil {
		return ReplyFrame{Result: uint32(ipc.CodeOf(mapKernelErr(err)))}, err
	}
	l.track(session)
	if l.metrics != nil {
		l.metrics.SessionsActive.Inc()
	}
	return ReplyFrame{Result: uint32(ipc.ResultSuccess), Handles: []uint32{session.ObjectID()}}, nil
}

// handle routes one frame and produces its reply. Every path returns a
// well-formed reply frame with a result code.
func (l *link) handle(f Frame) ReplyFrame {
	switch f.Op {
	case OpControl:
		ctx := ipc.NewContext(ipc.Request{Command: f.Cmd, Words: f.Words})
		l.registry.InvokeControlRequest(ctx)
		return l.replyFrom(ctx)

	case OpConnect:
		return l.connect(f.Target)

	case OpRequest, "":
		b, ok := l.bindings[f.Target]
		if !ok || b.session == nil {
			l.log.Warn("frame targets unknown session handle", zap.Uint32("target", f.Target))
			return ReplyFrame{Result: uint32(ipc.ResultUnknownFailure)}
		}
		if b.dispatcher == nil {
			// Session to a seeded name with no in-process handler.
			return ReplyFrame{Result: uint32(ipc.ResultNotImplemented)}
		}
		ctx := ipc.NewContext(ipc.Request{Command: f.Cmd, Words: f.Words})
		b.dispatcher.HandleRequest(ctx)
		return l.replyFrom(ctx)

	default:
		l.log.Warn("unknown frame op", zap.String("op", f.Op))
		return ReplyFrame{Result: uint32(ipc.ResultUnknownFailure)}
	}
}

// connect retries a connection through a port handle previously handed
// back by the capacity-exceeded fallback.
func (l *link) connect(target uint32) ReplyFrame {
	b, ok := l.bindings[target]
	if !ok || b.port == nil {
		l.log.Warn("connect targets unknown port handle", zap.Uint32("target", target))
		return ReplyFrame{Result: uint32(ipc.ResultUnknownFailure)}
	}
	session, err := b.port.Connect()
	if err != nil {
		return ReplyFrame{Result: uint32(ipc.CodeOf(mapKernelErr(err)))}
	}
	l.track(session)
	if l.metrics != nil {
		l.metrics.SessionsActive.Inc()
	}
	return ReplyFrame{Result: uint32(ipc.ResultSuccess), Handles: []uint32{session.ObjectID()}}
}

// replyFrom converts a dispatch reply into a frame, adopting any granted
// objects into the link's handle table.
func (l *link) replyFrom(ctx *ipc.Context) ReplyFrame {
	reply := ctx.Reply()
	out := ReplyFrame{Result: uint32(reply.Result)}
	for _, obj := range reply.Objects {
		switch o := obj.(type) {
		case *kernel.Session:
			l.track(o)
		case *kernel.ClientPort:
			l.bindings[o.ObjectID()] = &binding{port: o, name: o.Name()}
		}
		out.Handles = append(out.Handles, obj.ObjectID())
	}
	return out
}

// track adopts a session into the handle table, wiring the in-process
// dispatcher for its service when one is bound.
func (l *link) track(session *kernel.Session) {
	d, _ := l.registry.Dispatcher(session.Name())
	l.bindings[session.ObjectID()] = &binding{
		session:    session,
		dispatcher: d,
		name:       session.Name(),
	}
}

// close releases every session this link still holds. The link is the
// sessions' owner; dropping the connection returns their capacity slots.
func (l *link) close() {
	for _, b := range l.bindings {
		if b.session != nil {
			b.session.Close()
			if l.metrics != nil {
				l.metrics.SessionsActive.Dec()
			}
		}
	}
	l.bindings = make(map[uint32]*binding)
}

// mapKernelErr lifts kernel sentinel errors into the coded taxonomy so
// they cross the wire with the right result code.
func mapKernelErr(err error) error {
	if errors.Is(err, kernel.ErrMaxConnectionsReached) {
		return sm.ErrMaxConnectionsReached
	}
	return err
}
