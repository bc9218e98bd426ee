package transport

import (
	"bytes"
	"io"
	"sync"
)

// Pipe is an in-memory Transport implementation used by tests to drive a
// debugger session without opening a real socket. It exposes ClientWrite
// and ClientRead for the simulated debugger client to write requests into
// and read replies from.
type Pipe struct {
	mu     sync.Mutex
	toSrv  bytes.Buffer // client -> server
	toClnt bytes.Buffer // server -> client

	closed   bool
	accepted bool
}

// NewPipe returns a connected Pipe pair; Accept is a no-op that always
// succeeds, since the "connection" already exists.
func NewPipe() *Pipe {
	return &Pipe{}
}

func (p *Pipe) Accept(_ int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.accepted = true
	return nil
}

func (p *Pipe) Send(b []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return io.ErrClosedPipe
	}
	p.toClnt.Write(b)
	return nil
}

func (p *Pipe) Receive(buf []byte, max int) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if max > len(buf) {
		max = len(buf)
	}
	if p.toSrv.Len() == 0 {
		if p.closed {
			return 0, io.EOF
		}
		return 0, nil
	}
	return p.toSrv.Read(buf[:max])
}

func (p *Pipe) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// ClientWrite feeds bytes as if a debugger client had sent them.
func (p *Pipe) ClientWrite(b []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.toSrv.Write(b)
}

// ClientRead drains everything the server has sent so far.
func (p *Pipe) ClientRead() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	b := make([]byte, p.toClnt.Len())
	copy(b, p.toClnt.Bytes())
	p.toClnt.Reset()
	return b
}
