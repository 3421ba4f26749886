package sm

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitalos/backend/internal/ipc"
	"github.com/orbitalos/backend/internal/kernel"
)

// getServiceRequest builds a GetService command: two reserved words
// followed by the 8-byte NUL-padded name buffer.
func getServiceRequest(t *testing.T, name string) ipc.Request {
	t.Helper()
	buf, err := EncodeName(name)
	require.NoError(t, err)
	return ipc.Request{
		Command: CmdGetService,
		Words: []uint32{
			0, 0,
			binary.LittleEndian.Uint32(buf[0:4]),
			binary.LittleEndian.Uint32(buf[4:8]),
		},
	}
}

func dispatch(d Dispatcher, req ipc.Request) ipc.Reply {
	ctx := ipc.NewContext(req)
	d.HandleRequest(ctx)
	return ctx.Reply()
}

func TestInitializeAlwaysSucceeds(t *testing.T) {
	r := newTestRegistry()
	root := NewSM(r, testLogger(), nil)

	reply := dispatch(root, ipc.Request{Command: CmdInitialize})
	assert.Equal(t, ipc.ResultSuccess, reply.Result)
	assert.Empty(t, reply.Objects)

	// Prior registry state does not matter.
	_, err := r.Register("fs", 1)
	require.NoError(t, err)
	reply = dispatch(root, ipc.Request{Command: CmdInitialize})
	assert.Equal(t, ipc.ResultSuccess, reply.Result)
	assert.Empty(t, reply.Objects)
}

func TestGetServiceGrantsSession(t *testing.T) {
	r := newTestRegistry()
	root := NewSM(r, testLogger(), nil)
	_, err := r.Register("fs", 2)
	require.NoError(t, err)

	reply := dispatch(root, getServiceRequest(t, "fs"))
	assert.Equal(t, ipc.ResultSuccess, reply.Result)
	require.Len(t, reply.Objects, 1)

	session, ok := reply.Objects[0].(*kernel.Session)
	require.True(t, ok, "success reply must carry a session")
	session.Close()
}

func TestGetServiceUnknownName(t *testing.T) {
	r := newTestRegistry()
	root := NewSM(r, testLogger(), nil)

	reply := dispatch(root, getServiceRequest(t, "nope"))
	assert.Equal(t, ResultNotRegistered, reply.Result)
	assert.Empty(t, reply.Objects)
}

func TestGetServiceCapacityFallbackCarriesPort(t *testing.T) {
	r := newTestRegistry()
	root := NewSM(r, testLogger(), nil)
	_, err := r.Register("fs", 1)
	require.NoError(t, err)

	// First lookup takes the only session slot.
	first := dispatch(root, getServiceRequest(t, "fs"))
	require.Equal(t, ipc.ResultSuccess, first.Result)
	require.Len(t, first.Objects, 1)
	held := first.Objects[0].(*kernel.Session)

	// Second lookup fails with the capacity code but still carries one
	// handle: the port's connector, not a session.
	second := dispatch(root, getServiceRequest(t, "fs"))
	assert.Equal(t, ResultMaxConnectionsReached, second.Result)
	require.Len(t, second.Objects, 1)

	port, ok := second.Objects[0].(*kernel.ClientPort)
	require.True(t, ok, "capacity fallback must carry the client port")

	// The handed-back port is live: once the holder releases, a retry
	// against it succeeds.
	held.Close()
	session, err := port.Connect()
	require.NoError(t, err)
	session.Close()
}

func TestGetServiceOtherFailuresCarryNoHandle(t *testing.T) {
	r := newTestRegistry()
	root := NewSM(r, testLogger(), nil)

	// Name decodes empty: validation fails inside resolution.
	reply := dispatch(root, ipc.Request{
		Command: CmdGetService,
		Words:   []uint32{0, 0, 0, 0},
	})
	assert.Equal(t, ResultInvalidNameSize, reply.Result)
	assert.Empty(t, reply.Objects)
}

func TestReservedCommandsAreUnimplemented(t *testing.T) {
	r := newTestRegistry()
	root := NewSM(r, testLogger(), nil)

	for _, cmd := range []uint32{CmdRegisterService, CmdUnregisterService} {
		reply := dispatch(root, ipc.Request{Command: cmd})
		assert.Equal(t, ipc.ResultNotImplemented, reply.Result)
		assert.Empty(t, reply.Objects)
	}
}

func TestUnknownCommandIsRejected(t *testing.T) {
	r := newTestRegistry()
	root := NewSM(r, testLogger(), nil)

	reply := dispatch(root, ipc.Request{Command: 0x7F})
	assert.Equal(t, ipc.ResultNotImplemented, reply.Result)
	assert.Empty(t, reply.Objects)
}

func TestPermissionPolicyHook(t *testing.T) {
	r := newTestRegistry()
	root := NewSM(r, testLogger(), nil)
	_, err := r.Register("fs", 1)
	require.NoError(t, err)

	var sawReserved [2]uint32
	root.SetPermissionPolicy(func(r0, r1 uint32, name string) bool {
		sawReserved = [2]uint32{r0, r1}
		return name != "fs"
	})

	req := getServiceRequest(t, "fs")
	req.Words[0], req.Words[1] = 0xAA, 0xBB

	reply := dispatch(root, req)
	assert.Equal(t, ResultNotRegistered, reply.Result)
	assert.Empty(t, reply.Objects)
	assert.Equal(t, [2]uint32{0xAA, 0xBB}, sawReserved)
}

func TestControllerHonorsDispatchConvention(t *testing.T) {
	c := NewController(testLogger())

	reply := dispatch(c, ipc.Request{Command: CtrlDuplicateSession})
	assert.Equal(t, ipc.ResultSuccess, reply.Result)

	reply = dispatch(c, ipc.Request{Command: CtrlDuplicateSession2})
	assert.Equal(t, ipc.ResultNotImplemented, reply.Result)

	reply = dispatch(c, ipc.Request{Command: 0xDEAD})
	assert.Equal(t, ipc.ResultNotImplemented, reply.Result)
}
