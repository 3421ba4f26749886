package ipc

import (
	"encoding/binary"
	"errors"
)

// Object is any kernel resource that can travel in a reply's handle
// table. Only the opaque identifier crosses the wire.
type Object interface {
	ObjectID() uint32
}

// Request is one decoded inbound command: the 32-bit command id followed
// by the fixed-width word buffer holding its inputs.
type Request struct {
	Command uint32
	Words   []uint32
}

// Reply is the outbound half of a command exchange. The result code is
// always present; the object table carries zero or more handles.
type Reply struct {
	Result  ResultCode
	Objects []Object
}

// Context carries one in-flight command through dispatch: the request
// in, the reply out. Handlers read via Parser and write via Builder.
type Context struct {
	req   Request
	reply Reply
}

// NewContext wraps a decoded request for dispatch.
func NewContext(req Request) *Context {
	return &Context{req: req}
}

// Command returns the request's command id.
func (c *Context) Command() uint32 { return c.req.Command }

// Parser returns a fresh reader over the request's word buffer.
func (c *Context) Parser() *Parser {
	return &Parser{words: c.req.Words}
}

// Builder returns the reply writer for this context.
func (c *Context) Builder() *Builder {
	return &Builder{reply: &c.reply}
}

// Reply returns the reply assembled so far.
func (c *Context) Reply() Reply { return c.reply }

// ErrBufferExhausted is recorded by a Parser that was asked for more
// input than the request carried.
var ErrBufferExhausted = errors.New("ipc: request buffer exhausted")

// Parser pops fixed-width values off a request's word buffer in order.
// Reads past the end yield zero values and set the parser's error.
type Parser struct {
	words []uint32
	off   int
	err   error
}

// Pop consumes one 32-bit word.
func (p *Parser) Pop() uint32 {
	if p.off >= len(p.words) {
		p.err = ErrBufferExhausted
		return 0
	}
	w := p.words[p.off]
	p.off++
	return w
}

// PopRaw consumes n bytes, little-endian, rounded up to whole words.
func (p *Parser) PopRaw(n int) []byte {
	nwords := (n + 3) / 4
	buf := make([]byte, nwords*4)
	for i := 0; i < nwords; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:], p.Pop())
	}
	return buf[:n]
}

// Err reports whether any read overran the request buffer.
func (p *Parser) Err() error { return p.err }

// Builder assembles a reply: result code first, then handles.
type Builder struct {
	reply *Reply
}

// Push sets the reply's result code.
func (b *Builder) Push(code ResultCode) *Builder {
	b.reply.Result = code
	return b
}

// PushObjects appends handles to the reply's object table.
func (b *Builder) PushObjects(objs ...Object) *Builder {
	b.reply.Objects = append(b.reply.Objects, objs...)
	return b
}
