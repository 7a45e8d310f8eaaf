package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
)

// Handler processes one IPC command request.
type Handler interface {
	Handle(context.Context, Request) Response
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(context.Context, Request) Response

func (f HandlerFunc) Handle(ctx context.Context, req Request) Response {
	return f(ctx, req)
}

// Serve accepts clients on the runtime socket until the context is cancelled
// or the listener closes. In-flight requests finish before Serve returns.
func Serve(ctx context.Context, listener net.Listener, handler Handler) error {
	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	var inflight sync.WaitGroup
	defer inflight.Wait()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept IPC connection: %w", err)
		}

		inflight.Add(1)
		go func() {
			defer inflight.Done()
			serveConn(ctx, conn, handler)
		}()
	}
}

// serveConn handles exactly one newline-framed request on conn.
func serveConn(ctx context.Context, conn net.Conn, handler Handler) {
	defer conn.Close()

	writeResp := func(resp Response) {
		_ = json.NewEncoder(conn).Encode(resp)
	}

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		writeResp(Response{OK: false, Error: fmt.Sprintf("read request: %v", err)})
		return
	}

	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		writeResp(Response{OK: false, Error: fmt.Sprintf("decode request: %v", err)})
		return
	}

	writeResp(handler.Handle(ctx, req))
}
