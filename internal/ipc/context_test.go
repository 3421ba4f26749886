package ipc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObject struct{ id uint32 }

func (f fakeObject) ObjectID() uint32 { return f.id }

func TestParserPopOrder(t *testing.T) {
	ctx := NewContext(Request{Command: 0x1, Words: []uint32{7, 9}})
	p := ctx.Parser()

	assert.Equal(t, uint32(7), p.Pop())
	assert.Equal(t, uint32(9), p.Pop())
	require.NoError(t, p.Err())
}

func TestParserPopRawLittleEndian(t *testing.T) {
	// "fs" NUL-padded across two words.
	ctx := NewContext(Request{Words: []uint32{0x0000_7366, 0}})
	p := ctx.Parser()

	buf := p.PopRaw(8)
	require.NoError(t, p.Err())
	assert.Equal(t, []byte{'f', 's', 0, 0, 0, 0, 0, 0}, buf)
}

func TestParserOverrun(t *testing.T) {
	ctx := NewContext(Request{Words: []uint32{1}})
	p := ctx.Parser()

	p.Pop()
	assert.Equal(t, uint32(0), p.Pop())
	assert.ErrorIs(t, p.Err(), ErrBufferExhausted)
}

func TestBuilderReplyShape(t *testing.T) {
	ctx := NewContext(Request{Command: 0x1})
	ctx.Builder().Push(ResultSuccess).PushObjects(fakeObject{id: 42})

	reply := ctx.Reply()
	assert.Equal(t, ResultSuccess, reply.Result)
	require.Len(t, reply.Objects, 1)
	assert.Equal(t, uint32(42), reply.Objects[0].ObjectID())
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ResultSuccess, CodeOf(nil))
	assert.Equal(t, ResultNotImplemented, CodeOf(NewError(ResultNotImplemented, "nope")))
	assert.Equal(t, ResultUnknownFailure, CodeOf(assert.AnError))
}
