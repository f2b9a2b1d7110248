package toolserver

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/hseto/minute/internal/domain"
)

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id,omitempty"`
	Result  any       `json:"result,omitempty"`
	Error   *RPCError `json:"error,omitempty"`
}

// RPCError is a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Standard JSON-RPC error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Transport reads newline-delimited JSON-RPC requests and writes one
// response line per request.
type Transport struct {
	server *Server
	reader *bufio.Scanner
	writer io.Writer
	logger domain.Logger
}

// NewTransport creates a transport over the given streams.
func NewTransport(server *Server, r io.Reader, w io.Writer, logger domain.Logger) *Transport {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &Transport{server: server, reader: scanner, writer: w, logger: logger}
}

// Serve processes requests until EOF or context cancellation. A malformed
// request gets an error response; it never kills the loop.
func (t *Transport) Serve(ctx context.Context) error {
	for t.reader.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := t.reader.Bytes()
		if len(line) == 0 {
			continue
		}
		resp := t.process(ctx, line)
		if resp == nil {
			continue
		}
		if err := t.send(resp); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
	return t.reader.Err()
}

func (t *Transport) process(ctx context.Context, line []byte) *Response {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return &Response{
			JSONRPC: "2.0",
			Error:   &RPCError{Code: CodeParseError, Message: "parse error", Data: err.Error()},
		}
	}
	if req.JSONRPC != "2.0" {
		return &Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &RPCError{Code: CodeInvalidRequest, Message: "jsonrpc 2.0 required"},
		}
	}

	result, err := t.server.HandleCommand(ctx, req.Method, req.Params)
	if err != nil {
		if t.logger != nil {
			t.logger.Warn("", "toolserver", fmt.Sprintf("%s: %v", req.Method, err))
		}
		return &Response{JSONRPC: "2.0", ID: req.ID, Error: toRPCError(err)}
	}
	return &Response{JSONRPC: "2.0", ID: req.ID, Result: result}
}

// toRPCError maps pipeline errors to JSON-RPC codes. Domain rejections are
// parameter problems from the caller's point of view.
func toRPCError(err error) *RPCError {
	switch {
	case errors.Is(err, errMethodNotFound):
		return &RPCError{Code: CodeMethodNotFound, Message: err.Error()}
	case errors.Is(err, domain.ErrTaskNotFound),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidPriority),
		errors.Is(err, domain.ErrInvalidArea),
		errors.Is(err, domain.ErrEmptyTitle),
		errors.Is(err, domain.ErrScoreReadOnly),
		errors.Is(err, domain.ErrBlockedByRequired),
		errors.Is(err, domain.ErrBlockedByStale),
		errors.Is(err, domain.ErrNoFieldsToUpdate),
		errors.Is(err, domain.ErrNotInHolding),
		errors.Is(err, domain.ErrSourceNotFound):
		return &RPCError{Code: CodeInvalidParams, Message: err.Error()}
	default:
		var cycle *domain.CycleError
		if errors.As(err, &cycle) {
			return &RPCError{Code: CodeInvalidParams, Message: cycle.Error(), Data: cycle.Path}
		}
		return &RPCError{Code: CodeInternalError, Message: err.Error()}
	}
}

func (t *Transport) send(resp *Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	_, err = t.writer.Write(append(data, '\n'))
	return err
}
