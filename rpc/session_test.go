package rpc

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/whzard/punybuf/wire"
)

// testUser stands in for a generated extensible struct with a single
// String field, used here the way a real `User { name: String }` schema
// type would be.
type testUser struct {
	Name string
}

func encodeTestUser(w wire.Writer, u testUser) error {
	if err := wire.EncodeString(w, u.Name); err != nil {
		return err
	}
	return wire.WriteUint8(w, 0) // EL=0: no extensions set.
}

func decodeTestUser(r wire.Reader, lim wire.Limits) (testUser, error) {
	name, err := wire.DecodeString(r, lim)
	if err != nil {
		return testUser{}, err
	}
	el, err := wire.DecodeUInt(r)
	if err != nil {
		return testUser{}, err
	}
	if el > 0 {
		buf := make([]byte, el)
		if _, err := io.ReadFull(r, buf); err != nil {
			return testUser{}, err
		}
	}
	return testUser{Name: name}, nil
}

// testCustomError stands in for a generated error enum with one business
// variant beyond the reserved _UnknownError_ discriminant 0.
type testCustomError struct {
	Message string
}

func encodeTestError(w wire.Writer, errValue any) error {
	switch v := errValue.(type) {
	case *UnknownErrorVariant:
		if err := wire.EncodeUInt(w, 0); err != nil {
			return err
		}
		return wire.EncodeString(w, v.Message)
	case *testCustomError:
		if err := wire.EncodeUInt(w, 1); err != nil {
			return err
		}
		return wire.EncodeString(w, v.Message)
	default:
		return errors.New("rpc_test: unencodable error value")
	}
}

func decodeTestError(r wire.Reader, lim wire.Limits) (any, error) {
	disc, err := wire.DecodeUInt(r)
	if err != nil {
		return nil, err
	}
	msg, err := wire.DecodeString(r, lim)
	if err != nil {
		return nil, err
	}
	switch disc {
	case 0:
		return &UnknownErrorVariant{Message: msg}, nil
	case 1:
		return &testCustomError{Message: msg}, nil
	default:
		return &UnknownErrorVariant{Message: "unknown discriminant"}, nil
	}
}

func getMeDescriptor() Descriptor {
	d := NewDescriptor("getMe", 0)
	d.EncodeArg = func(wire.Writer, any) error { return nil }
	d.DecodeArg = func(wire.Reader, wire.Limits) (any, error) { return struct{}{}, nil }
	d.EncodeReturn = func(w wire.Writer, value any) error {
		u, ok := value.(testUser)
		if !ok {
			return errors.New("rpc_test: getMe return must be testUser")
		}
		return encodeTestUser(w, u)
	}
	d.DecodeReturn = func(r wire.Reader, lim wire.Limits) (any, error) {
		return decodeTestUser(r, lim)
	}
	d.Err = ErrorCodec{Encode: encodeTestError, Decode: decodeTestError}
	return d
}

func pipeSessions(t *testing.T) (client, server *Session, stop func()) {
	t.Helper()
	a, b := net.Pipe()
	client = NewSession(a, 1<<20, "client")
	server = NewSession(b, 1<<20, "server")
	stop = func() {
		a.Close()
		b.Close()
	}
	return client, server, stop
}

func TestSessionGetMeRoundTrip(t *testing.T) {
	client, server, stop := pipeSessions(t)
	defer stop()

	desc := getMeDescriptor()
	server.Register(desc)
	server.SetDispatcher(func(ctx context.Context, d Descriptor, arg any) (any, any, error) {
		return testUser{Name: "ada"}, nil, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go server.ReceiveLoop(ctx)
	go client.ReceiveLoop(ctx)

	value, err := client.Call(context.Background(), desc, nil)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	u, ok := value.(testUser)
	if !ok || u.Name != "ada" {
		t.Fatalf("value = %+v", value)
	}
}

func TestSessionCommandErrorDelivered(t *testing.T) {
	client, server, stop := pipeSessions(t)
	defer stop()

	desc := getMeDescriptor()
	server.Register(desc)
	server.SetDispatcher(func(ctx context.Context, d Descriptor, arg any) (any, any, error) {
		return nil, &testCustomError{Message: "not found"}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go server.ReceiveLoop(ctx)
	go client.ReceiveLoop(ctx)

	_, err := client.Call(context.Background(), desc, nil)
	var ce *CommandError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want *CommandError", err)
	}
	ce2, ok := ce.Value.(*testCustomError)
	if !ok || ce2.Message != "not found" {
		t.Fatalf("CommandError.Value = %+v", ce.Value)
	}
}

func TestSessionRejectsUnknownCommand(t *testing.T) {
	client, server, stop := pipeSessions(t)
	defer stop()

	desc := getMeDescriptor() // registered on client's waiter, not on server

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go server.ReceiveLoop(ctx)
	go client.ReceiveLoop(ctx)

	_, err := client.Call(context.Background(), desc, nil)
	var re *RejectedError
	if !errors.As(err, &re) {
		t.Fatalf("err = %v, want *RejectedError", err)
	}
}

// TestSessionRejectsTruncatedArgument covers a command argument that stops
// mid-value: the receiver has announced (via its own length-prefixed
// String) more bytes than the connection ever supplies. Without a frame
// length field to fall back on, the read position is unrecoverable past
// this frame, so the session rejects on a best-effort basis and
// ReceiveLoop returns a non-nil error instead of continuing to read
// frames that may no longer be aligned with the sender's intent.
func TestSessionRejectsTruncatedArgument(t *testing.T) {
	a, b := net.Pipe()
	server := NewSession(b, 1<<20, "server")

	desc := NewDescriptor("echoArg", 0)
	desc.DecodeArg = func(r wire.Reader, lim wire.Limits) (any, error) {
		return wire.DecodeString(r, lim)
	}
	server.Register(desc)
	server.SetDispatcher(func(ctx context.Context, d Descriptor, arg any) (any, any, error) {
		return nil, nil, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loopErr := make(chan error, 1)
	go func() { loopErr <- server.ReceiveLoop(ctx) }()

	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		var hdr bytes.Buffer
		if err := EncodeHeader(&hdr, Header{Class: ClassCommand, Seq: 1}); err != nil {
			return
		}
		if _, err := a.Write(hdr.Bytes()); err != nil {
			return
		}
		id := desc.ID
		if _, err := a.Write([]byte{byte(id >> 24), byte(id >> 16), byte(id >> 8), byte(id)}); err != nil {
			return
		}
		// Declare a 10-byte String, then close without ever supplying
		// those bytes.
		var lenPrefix bytes.Buffer
		if err := wire.EncodeUInt(&lenPrefix, 10); err != nil {
			return
		}
		_, _ = a.Write(lenPrefix.Bytes())
		_ = a.Close()
	}()

	select {
	case <-writeDone:
	case <-time.After(time.Second):
		t.Fatal("write goroutine did not finish")
	}

	select {
	case err := <-loopErr:
		if err == nil {
			t.Fatal("ReceiveLoop returned nil error for a truncated argument")
		}
	case <-time.After(time.Second):
		t.Fatal("ReceiveLoop did not return after a truncated argument")
	}
}

func TestSessionSeqMonotonicity(t *testing.T) {
	client, server, stop := pipeSessions(t)
	defer stop()

	desc := getMeDescriptor()
	server.Register(desc)
	server.SetDispatcher(func(ctx context.Context, d Descriptor, arg any) (any, any, error) {
		return testUser{Name: "x"}, nil, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go server.ReceiveLoop(ctx)
	go client.ReceiveLoop(ctx)

	for i := uint32(1); i <= 5; i++ {
		_, err := client.Call(context.Background(), desc, nil)
		if err != nil {
			t.Fatalf("Call %d: %v", i, err)
		}
		client.writeMu.Lock()
		got := client.outNextSeq
		client.writeMu.Unlock()
		if got != i+1 {
			t.Fatalf("after call %d, outNextSeq = %d, want %d", i, got, i+1)
		}
	}
}

func TestSessionCancellationDropsLateResponse(t *testing.T) {
	client, server, stop := pipeSessions(t)
	defer stop()

	desc := getMeDescriptor()
	server.Register(desc)
	release := make(chan struct{})
	server.SetDispatcher(func(ctx context.Context, d Descriptor, arg any) (any, any, error) {
		<-release
		return testUser{Name: "late"}, nil, nil
	})

	srvCtx, srvCancel := context.WithCancel(context.Background())
	defer srvCancel()
	go server.ReceiveLoop(srvCtx)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Call(ctx, desc, nil)
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("err = %v, want ErrCancelled", err)
	}

	client.pendingMu.Lock()
	_, stillPending := client.pending[1]
	client.pendingMu.Unlock()
	if stillPending {
		t.Fatal("pending entry should have been removed on cancellation")
	}

	close(release)
}

func TestSessionVoidCommandNoResponse(t *testing.T) {
	client, server, stop := pipeSessions(t)
	defer stop()

	desc := NewDescriptor("ping", 0)
	desc.IsVoid = true
	desc.EncodeArg = func(wire.Writer, any) error { return nil }
	desc.DecodeArg = func(wire.Reader, wire.Limits) (any, error) { return struct{}{}, nil }

	dispatched := make(chan struct{}, 1)
	server.Register(desc)
	server.SetDispatcher(func(ctx context.Context, d Descriptor, arg any) (any, any, error) {
		dispatched <- struct{}{}
		return nil, nil, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go server.ReceiveLoop(ctx)

	value, err := client.Call(context.Background(), desc, nil)
	if err != nil || value != nil {
		t.Fatalf("Call = (%v, %v), want (nil, nil)", value, err)
	}

	select {
	case <-dispatched:
	case <-time.After(time.Second):
		t.Fatal("dispatcher was never invoked for void command")
	}
}
