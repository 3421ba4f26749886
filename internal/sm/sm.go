package sm

import (
	"errors"

	"go.uber.org/zap"

	"github.com/orbitalos/backend/internal/infrastructure/logging"
	"github.com/orbitalos/backend/internal/infrastructure/monitoring"
	"github.com/orbitalos/backend/internal/ipc"
	"github.com/orbitalos/backend/internal/kernel"
)

// Root dispatcher command ids.
const (
	CmdInitialize        uint32 = 0x0
	CmdGetService        uint32 = 0x1
	CmdRegisterService   uint32 = 0x2
	CmdUnregisterService uint32 = 0x3
)

// PermissionFunc decides whether a caller may resolve a service. The
// two reserved words from the GetService request are passed through
// untouched; enforcement is deferred, so the default policy allows all.
type PermissionFunc func(reserved0, reserved1 uint32, name string) bool

// SM is the wire-facing root dispatcher: the one service every process
// reaches first. It holds a non-owning reference to the registry that
// installed it.
type SM struct {
	*Framework
	registry    *ServiceRegistry
	permissions PermissionFunc
	metrics     *monitoring.Metrics
	log         *logging.Logger
}

// NewSM creates the root dispatcher bound to a registry. Metrics may be
// nil.
func NewSM(registry *ServiceRegistry, log *logging.Logger, metrics *monitoring.Metrics) *SM {
	s := &SM{
		Framework:   NewFramework("sm", log),
		registry:    registry,
		permissions: func(uint32, uint32, string) bool { return true },
		metrics:     metrics,
		log:         log.Named("sm"),
	}
	s.RegisterHandlers([]FunctionInfo{
		{ID: CmdInitialize, Handler: s.Initialize, Name: "Initialize"},
		{ID: CmdGetService, Handler: s.GetService, Name: "GetService"},
		{ID: CmdRegisterService, Handler: nil, Name: "RegisterService"},
		{ID: CmdUnregisterService, Handler: nil, Name: "UnregisterService"},
	})
	return s
}

// SetPermissionPolicy replaces the resolve permission hook.
func (s *SM) SetPermissionPolicy(fn PermissionFunc) {
	if fn != nil {
		s.permissions = fn
	}
}

// Initialize acknowledges the channel. It takes no meaningful input and
// always succeeds with an empty handle table.
func (s *SM) Initialize(ctx *ipc.Context) {
	ctx.Builder().Push(ipc.ResultSuccess)
	s.log.Debug("called")
	s.countCommand("Initialize", "ok")
}

// GetService resolves a service name and connects to it. The reply
// carries one session handle on success, one port handle on the
// capacity-exceeded fallback, and no handles on every other failure.
func (s *SM) GetService(ctx *ipc.Context) {
	parser := ctx.Parser()
	reserved0 := parser.Pop()
	reserved1 := parser.Pop()
	name := DecodeName(parser.PopRaw(NameBufferSize))

	if !s.permissions(reserved0, reserved1, name) {
		ctx.Builder().Push(ResultNotRegistered)
		s.log.Error("permission denied",
			zap.String("service", name),
		)
		s.countCommand("GetService", "denied")
		return
	}

	port, err := s.registry.GetServicePort(name)
	if err != nil {
		code := ipc.CodeOf(err)
		ctx.Builder().Push(code)
		s.log.Error("service lookup failed",
			zap.String("service", name),
			zap.String("code", code.String()),
		)
		s.countCommand("GetService", "lookup_failed")
		return
	}

	session, err := port.Connect()
	switch {
	case err == nil:
		ctx.Builder().Push(ipc.ResultSuccess).PushObjects(session)
		s.log.Debug("session granted",
			zap.String("service", name),
			zap.Uint32("session", session.ObjectID()),
		)
		if s.metrics != nil {
			s.metrics.SessionsGranted.Inc()
			s.metrics.SessionsActive.Inc()
		}
		s.countCommand("GetService", "ok")

	case errors.Is(err, kernel.ErrMaxConnectionsReached):
		// Deliberate protocol quirk: the failure reply still carries the
		// port's connector so the caller can retry against it later.
		ctx.Builder().Push(ResultMaxConnectionsReached).PushObjects(port)
		s.log.Warn("max connections reached",
			zap.String("service", name),
			zap.Uint32("port", port.ObjectID()),
		)
		if s.metrics != nil {
			s.metrics.CapacityRejections.Inc()
		}
		s.countCommand("GetService", "capacity")

	default:
		code := ipc.CodeOf(err)
		ctx.Builder().Push(code)
		s.log.Error("connect failed",
			zap.String("service", name),
			zap.String("code", code.String()),
		)
		s.countCommand("GetService", "connect_failed")
	}
}

func (s *SM) countCommand(command, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordCommand("sm", command, outcome)
	}
}
