package sm

import (
	"github.com/orbitalos/backend/internal/infrastructure/logging"
	"github.com/orbitalos/backend/internal/ipc"
)

// Controller command ids live in a namespace disjoint from named-service
// commands; they arrive on the root dispatcher's administrative channel.
const (
	CtrlConvertToDomain   uint32 = 0x80000000
	CtrlDuplicateSession  uint32 = 0x80000001
	CtrlQueryBufferSize   uint32 = 0x80000002
	CtrlDuplicateSession2 uint32 = 0x80000003
)

// ControlCommandMask selects the administrative command namespace.
const ControlCommandMask uint32 = 0x80000000

// Controller serves the administrative channel of the root dispatcher.
// It is constructed once at bring-up and owned exclusively by the
// registry. Its commands acknowledge the dispatch convention; their
// full semantics live outside the broker core.
type Controller struct {
	*Framework
}

// NewController creates the administrative dispatcher.
func NewController(log *logging.Logger) *Controller {
	c := &Controller{Framework: NewFramework("sm.controller", log)}
	c.RegisterHandlers([]FunctionInfo{
		{ID: CtrlConvertToDomain, Handler: c.acknowledge, Name: "ConvertToDomain"},
		{ID: CtrlDuplicateSession, Handler: c.acknowledge, Name: "DuplicateSession"},
		{ID: CtrlQueryBufferSize, Handler: c.acknowledge, Name: "QueryBufferSize"},
		{ID: CtrlDuplicateSession2, Handler: nil, Name: "DuplicateSessionEx"},
	})
	return c
}

func (c *Controller) acknowledge(ctx *ipc.Context) {
	ctx.Builder().Push(ipc.ResultSuccess)
}
