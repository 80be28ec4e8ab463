package rpc

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/whzard/punybuf/internal/bufpool"
	"github.com/whzard/punybuf/internal/logger"
	"github.com/whzard/punybuf/wire"
)

// Dispatcher handles an inbound COMMAND frame's already-decoded argument
// and produces a return value or a command-level error value. A non-nil
// err (as opposed to a non-nil errValue) indicates the dispatcher itself
// failed rather than the invoked operation, and is reported to the caller
// through the reserved `_UnknownError_` variant, or with FRAME_REJECTED
// when the command's descriptor has no error encoder.
type Dispatcher func(ctx context.Context, desc Descriptor, arg any) (value any, errValue any, err error)

// RejectionHandler receives FRAME_REJECTED frames whose seq matches no
// pending invocation on this session's outbound table (spec §4.7's
// "otherwise surface to a connection-level rejection handler").
type RejectionHandler func(seq uint32, reason string)

// CommandError wraps a command's declared error enum value, delivered to
// a Call caller when the peer answers with RESPONSE_ERROR.
type CommandError struct {
	Value any
}

func (e *CommandError) Error() string { return fmt.Sprintf("rpc: command error: %v", e.Value) }

type pendingInvocation struct {
	desc     *Descriptor
	resultCh chan invocationResult
}

type invocationResult struct {
	value any
	err   error
}

// Session implements the RPC session layer (C9): sequence allocation, the
// pending-invocation table, command dispatch, and the receive contract of
// spec §4.7 across all four frame classes.
//
// One Session owns one connection exclusively. Call is safe to invoke
// concurrently from multiple goroutines; ReceiveLoop must run on exactly
// one goroutine at a time.
type Session struct {
	conn       io.ReadWriter
	r          *bufio.Reader
	maxBodyLen uint32
	connID     string

	writeMu    sync.Mutex
	outNextSeq uint32

	pendingMu sync.Mutex
	pending   map[uint32]*pendingInvocation

	commandsMu sync.RWMutex
	commands   map[uint32]*Descriptor

	dispatcher Dispatcher
	onRejected RejectionHandler

	closed atomic.Bool
}

// NewSession creates a Session over conn. maxBodyLen bounds the number of
// bytes ReceiveLoop will read while decoding a single frame's body (there
// is no on-wire length to check against; this caps cumulative bytes
// consumed instead, via a wire.LimitedReader). connID identifies this
// connection in log lines.
func NewSession(conn io.ReadWriter, maxBodyLen uint32, connID string) *Session {
	return &Session{
		conn:       conn,
		r:          bufio.NewReader(conn),
		maxBodyLen: maxBodyLen,
		connID:     connID,
		outNextSeq: 1,
		pending:    make(map[uint32]*pendingInvocation),
		commands:   make(map[uint32]*Descriptor),
	}
}

// Register adds a command to the session's dispatch table, keyed by its
// wire identity (spec §4.5). Generated code calls this once per command
// at session setup.
func (s *Session) Register(desc Descriptor) {
	d := desc
	s.commandsMu.Lock()
	s.commands[d.ID] = &d
	s.commandsMu.Unlock()
}

// SetDispatcher installs the callback invoked for inbound COMMAND frames.
func (s *Session) SetDispatcher(d Dispatcher) { s.dispatcher = d }

// SetRejectionHandler installs the callback for FRAME_REJECTED frames that
// cannot be matched to a pending invocation.
func (s *Session) SetRejectionHandler(h RejectionHandler) { s.onRejected = h }

func (s *Session) lookup(id uint32) (*Descriptor, bool) {
	s.commandsMu.RLock()
	defer s.commandsMu.RUnlock()
	d, ok := s.commands[id]
	return d, ok
}

// Call sends a COMMAND frame for desc and waits for its response, per the
// send-command contract of spec §4.7. Void commands return as soon as the
// frame is written, with a nil value and nil error, and never register a
// pending invocation.
//
// Cancelling ctx removes the pending entry and returns ErrCancelled; any
// response that later arrives for that seq is silently dropped, since the
// seq was validly allocated (spec §5's Cancellation).
func (s *Session) Call(ctx context.Context, desc Descriptor, arg any) (any, error) {
	if s.closed.Load() {
		return nil, ErrConnectionClosed
	}

	// Build the body (command_id + argument) before taking writeMu: this
	// is the only part of the send path that runs arbitrary caller code
	// (desc.EncodeArg), so keeping it unlocked lets other Call goroutines
	// allocate and write their own frames concurrently (spec §5).
	staging := bufpool.Get(0)
	body := bytes.NewBuffer(staging)
	release := func() {
		if cap(body.Bytes()) <= cap(staging) {
			bufpool.Put(staging)
		}
	}
	if err := wire.WriteUint32(body, desc.ID); err != nil {
		release()
		return nil, err
	}
	if desc.EncodeArg != nil {
		if err := desc.EncodeArg(body, arg); err != nil {
			release()
			return nil, fmt.Errorf("rpc: encode argument for %s: %w", desc.Name, err)
		}
	}
	defer release()

	var resultCh chan invocationResult
	var pi *pendingInvocation
	if !desc.IsVoid {
		resultCh = make(chan invocationResult, 1)
		pi = &pendingInvocation{desc: &desc, resultCh: resultCh}
	}

	s.writeMu.Lock()
	seq, seqErr := s.nextSeqLocked()
	if seqErr != nil {
		s.writeMu.Unlock()
		return nil, seqErr
	}
	if pi != nil {
		s.pendingMu.Lock()
		s.pending[seq] = pi
		s.pendingMu.Unlock()
	}
	var hdr bytes.Buffer
	hdr.Grow(4)
	writeErr := EncodeHeader(&hdr, Header{Class: ClassCommand, Seq: seq})
	if writeErr == nil {
		writeErr = s.writeLocked(hdr.Bytes(), body.Bytes())
	}
	s.writeMu.Unlock()

	if writeErr != nil {
		if pi != nil {
			s.pendingMu.Lock()
			delete(s.pending, seq)
			s.pendingMu.Unlock()
		}
		return nil, writeErr
	}

	if desc.IsVoid {
		logger.DebugCtx(ctx, "sent void command", logger.Command(desc.Name), logger.Seq(seq), logger.ConnID(s.connID))
		return nil, nil
	}
	logger.DebugCtx(ctx, "sent command", logger.Command(desc.Name), logger.Seq(seq), logger.ConnID(s.connID))

	select {
	case <-ctx.Done():
		s.pendingMu.Lock()
		delete(s.pending, seq)
		s.pendingMu.Unlock()
		return nil, ErrCancelled
	case res := <-resultCh:
		return res.value, res.err
	}
}

// nextSeqLocked allocates the next outbound sequence number. The caller
// must hold writeMu; this keeps allocation order and write order
// identical, as spec §5 requires.
func (s *Session) nextSeqLocked() (uint32, error) {
	if s.outNextSeq > MaxSeq {
		return 0, ErrSeqOverflow
	}
	seq := s.outNextSeq
	s.outNextSeq++
	return seq, nil
}

// writeLocked writes parts as a single unit. Callers must hold writeMu;
// this is what spec §4.7's "frames are never interleaved on the wire"
// ordering requirement rests on, not any single-syscall guarantee.
func (s *Session) writeLocked(parts ...[]byte) error {
	bufs := net.Buffers(parts)
	_, err := bufs.WriteTo(s.conn)
	return err
}

// writeFrame encodes the body into a pooled buffer and the 4-byte header
// into a separate small buffer, then writes both under writeMu. Used for responses, rejections, and anything else that
// doesn't need Call's seq-allocation-order guarantee.
func (s *Session) writeFrame(h Header, encodeBody func(w wire.Writer) error) error {
	staging := bufpool.Get(0)
	buf := bytes.NewBuffer(staging)
	defer func() {
		if cap(buf.Bytes()) <= cap(staging) {
			bufpool.Put(staging)
		}
	}()
	if encodeBody != nil {
		if err := encodeBody(buf); err != nil {
			return err
		}
	}
	var hdr bytes.Buffer
	hdr.Grow(4)
	if err := EncodeHeader(&hdr, h); err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.writeLocked(hdr.Bytes(), buf.Bytes())
}

// ReceiveLoop reads frames from the connection until ctx is cancelled, the
// peer closes the connection, or an unrecoverable framing error occurs,
// dispatching each per the receive contract of spec §4.7. On return, every
// still-pending invocation transitions to ConnectionLost.
func (s *Session) ReceiveLoop(ctx context.Context) error {
	defer s.teardown()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		header, err := DecodeHeader(s.r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if err := s.handleFrame(ctx, header); err != nil {
			return err
		}
	}
}

// handleFrame decodes frame's body, bounded to maxBodyLen bytes, and
// dispatches it per its class. There is no length field on the wire ahead
// of the body (spec §6), so every class below reads exactly as many bytes
// as its own self-delimiting value needs and no more.
func (s *Session) handleFrame(ctx context.Context, header Header) error {
	lr := wire.NewLimitedReader(s.r, uint64(s.maxBodyLen))
	switch header.Class {
	case ClassCommand:
		return s.handleCommand(ctx, header.Seq, lr)
	case ClassResponseReturn, ClassResponseError:
		return s.handleResponse(header, lr)
	case ClassFrameRejected:
		return s.handleRejected(header.Seq, lr)
	default:
		return ErrHeaderReserved
	}
}

// wrapBodyErr names a decode failure as ErrFrameTooLarge when it consumed
// the frame's entire byte budget, rather than leaving it looking like any
// other truncation.
func wrapBodyErr(lr *wire.LimitedReader, err error) error {
	if err != nil && lr.Remaining() == 0 {
		return fmt.Errorf("%w: %v", ErrFrameTooLarge, err)
	}
	return err
}

// handleCommand reads a COMMAND frame's body: a U32 command_id (always
// exactly 4 octets, known regardless of whether the id is registered)
// followed by the command's argument value. An unknown id or an argument
// decode failure leaves the stream's read position unknowable past this
// frame — the argument's own length depended on a schema we either don't
// have or failed to apply — so both cases reject on a best-effort basis
// and then close the connection (spec §4.7/§7). A successful decode fully
// accounts for the frame's bytes, so dispatch failures afterward (no
// dispatcher installed, the dispatcher itself erroring) are answered
// without closing anything.
func (s *Session) handleCommand(ctx context.Context, seq uint32, lr *wire.LimitedReader) error {
	id, err := wire.ReadUint32(lr)
	if err != nil {
		return wrapBodyErr(lr, err)
	}

	desc, ok := s.lookup(id)
	if !ok {
		_ = s.reject(seq, fmt.Sprintf("unknown command id %d", id))
		return ErrUnknownCommand
	}

	var arg any
	if desc.DecodeArg != nil {
		arg, err = desc.DecodeArg(lr, wire.DefaultLimits())
		if err != nil {
			_ = s.reject(seq, fmt.Sprintf("decode argument for %s: %v", desc.Name, err))
			return wrapBodyErr(lr, fmt.Errorf("rpc: decode argument for %s: %w", desc.Name, err))
		}
	}

	if s.dispatcher == nil {
		return s.reject(seq, fmt.Sprintf("no dispatcher installed for %s", desc.Name))
	}

	logger.DebugCtx(ctx, "dispatching command", logger.Command(desc.Name), logger.Seq(seq), logger.ConnID(s.connID))

	// The frame's bytes are fully consumed; running the dispatcher and
	// writing its response can happen on a separate goroutine without the
	// read loop waiting on it, so one slow handler never stalls concurrent
	// invocations from other callers (spec §5).
	d := *desc
	go func() {
		if err := s.dispatchCommand(ctx, seq, d, arg); err != nil {
			logger.ErrorCtx(ctx, "command handling failed",
				logger.ConnID(s.connID), logger.Seq(seq), logger.Err(err))
		}
	}()
	return nil
}

func (s *Session) dispatchCommand(ctx context.Context, seq uint32, desc Descriptor, arg any) error {
	value, errValue, dispatchErr := s.invokeDispatcher(ctx, desc, arg)

	if desc.IsVoid {
		return nil
	}

	if dispatchErr != nil {
		return s.respondUnknownError(seq, &desc, dispatchErr)
	}
	if errValue != nil {
		if err := s.writeFrame(Header{Class: ClassResponseError, Seq: seq}, func(w wire.Writer) error {
			return desc.Err.Encode(w, errValue)
		}); err != nil {
			return s.reject(seq, fmt.Sprintf("encode error response for %s: %v", desc.Name, err))
		}
		return nil
	}

	if err := s.writeFrame(Header{Class: ClassResponseReturn, Seq: seq}, func(w wire.Writer) error {
		return desc.EncodeReturn(w, value)
	}); err != nil {
		return s.reject(seq, fmt.Sprintf("encode return value for %s: %v", desc.Name, err))
	}
	return nil
}

// invokeDispatcher runs the dispatcher, converting a panic into a
// dispatch error rather than tearing down the whole session over one bad
// command handler.
func (s *Session) invokeDispatcher(ctx context.Context, desc Descriptor, arg any) (value any, errValue any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("dispatcher panic: %v", r)
		}
	}()
	return s.dispatcher(ctx, desc, arg)
}

func (s *Session) respondUnknownError(seq uint32, desc *Descriptor, cause error) error {
	if desc.Err.Encode == nil {
		return s.reject(seq, cause.Error())
	}
	if err := s.writeFrame(Header{Class: ClassResponseError, Seq: seq}, func(w wire.Writer) error {
		return desc.Err.Encode(w, &UnknownErrorVariant{Message: "dispatcher failed", Cause: cause})
	}); err != nil {
		return s.reject(seq, cause.Error())
	}
	return nil
}

// handleResponse reads a RESPONSE_RETURN/RESPONSE_ERROR frame's body. A
// seq with no pending invocation means the descriptor needed to decode the
// value is unknown, so the stream position is unrecoverable past this
// point: reject on a best-effort basis and close. A decode failure against
// a known descriptor is the same situation — the value didn't finish
// decoding the way its own schema says it should have — so it closes too,
// even though the failing caller has already been unblocked with an error.
func (s *Session) handleResponse(header Header, lr *wire.LimitedReader) error {
	seq := header.Seq

	s.writeMu.Lock()
	allocated := seq < s.outNextSeq
	s.writeMu.Unlock()

	pi, ok := s.takePending(seq)
	if !ok || !allocated {
		_ = s.reject(seq, "response for unknown or unallocated sequence")
		return ErrUnexpectedResponse
	}

	if header.Class == ClassResponseReturn {
		value, err := pi.desc.DecodeReturn(lr, wire.DefaultLimits())
		if err != nil {
			pi.resultCh <- invocationResult{err: &UnknownErrorVariant{Message: "decode return value", Cause: err}}
			return wrapBodyErr(lr, fmt.Errorf("rpc: decode return value for %s: %w", pi.desc.Name, err))
		}
		pi.resultCh <- invocationResult{value: value}
		return nil
	}

	errValue, err := pi.desc.Err.Decode(lr, wire.DefaultLimits())
	if err != nil {
		pi.resultCh <- invocationResult{err: &UnknownErrorVariant{Message: "decode error value", Cause: err}}
		return wrapBodyErr(lr, fmt.Errorf("rpc: decode error value for %s: %w", pi.desc.Name, err))
	}
	pi.resultCh <- invocationResult{err: &CommandError{Value: errValue}}
	return nil
}

// handleRejected reads a FRAME_REJECTED frame's body: always a plain
// String, decodable regardless of whether seq matches anything this
// session knows about. Receipt never forces connection closure (spec
// §4.7's "does not by itself close the connection") precisely because
// this value's shape never depends on a schema lookup.
func (s *Session) handleRejected(seq uint32, lr *wire.LimitedReader) error {
	reason, err := wire.DecodeString(lr, wire.DefaultLimits())
	if err != nil {
		reason = "<unreadable rejection reason>"
	}

	if pi, ok := s.takePending(seq); ok {
		pi.resultCh <- invocationResult{err: &RejectedError{Reason: reason}}
		return nil
	}

	if s.onRejected != nil {
		s.onRejected(seq, reason)
	}
	return nil
}

func (s *Session) takePending(seq uint32) (*pendingInvocation, bool) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	pi, ok := s.pending[seq]
	if ok {
		delete(s.pending, seq)
	}
	return pi, ok
}

func (s *Session) reject(seq uint32, reason string) error {
	return s.writeFrame(Header{Class: ClassFrameRejected, Seq: seq}, func(w wire.Writer) error {
		return wire.EncodeString(w, reason)
	})
}

// teardown marks the session closed and transitions every still-pending
// invocation to ConnectionLost (spec §7's "Transport EOF with pending
// invocations").
func (s *Session) teardown() {
	s.closed.Store(true)

	s.pendingMu.Lock()
	pending := s.pending
	s.pending = make(map[uint32]*pendingInvocation)
	s.pendingMu.Unlock()

	for _, pi := range pending {
		select {
		case pi.resultCh <- invocationResult{err: ErrConnectionClosed}:
		default:
		}
	}
}
