package sm

import "github.com/orbitalos/backend/internal/ipc"

// Broker result codes. Every expected failure in this package is one of
// these, surfaced to callers as a coded error and to the wire as the
// reply's leading status word.
const (
	ResultInvalidNameSize       ipc.ResultCode = 0xF0020001
	ResultNameContainsNul       ipc.ResultCode = 0xF0020002
	ResultAlreadyRegistered     ipc.ResultCode = 0xF0020003
	ResultNotRegistered         ipc.ResultCode = 0xF0020004
	ResultMaxConnectionsReached ipc.ResultCode = 0xF0030001
)

var (
	// ErrInvalidNameSize rejects names of length 0 or longer than 8 bytes.
	ErrInvalidNameSize = ipc.NewError(ResultInvalidNameSize, "service name size is invalid")
	// ErrNameContainsNul rejects names with an embedded terminator.
	ErrNameContainsNul = ipc.NewError(ResultNameContainsNul, "service name contains a NUL byte")
	// ErrAlreadyRegistered rejects registration of a name already present.
	ErrAlreadyRegistered = ipc.NewError(ResultAlreadyRegistered, "service is already registered")
	// ErrNotRegistered rejects lookup of an absent name.
	ErrNotRegistered = ipc.NewError(ResultNotRegistered, "service is not registered")
	// ErrMaxConnectionsReached maps the kernel's capacity failure onto
	// the wire taxonomy.
	ErrMaxConnectionsReached = ipc.NewError(ResultMaxConnectionsReached, "max connections reached on service port")
)
