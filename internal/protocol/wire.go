package protocol

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"

	"cid/internal/cerrors"
)

// MaxMessageSize is the maximum size of a single wire message (1MB).
// Large extract payloads fit comfortably; anything bigger is a protocol
// violation, not a bigger buffer's problem.
const MaxMessageSize = 1024 * 1024

// NewQuery creates a query with a fresh request ID.
func NewQuery(cmd Command) Query {
	return Query{ID: uuid.New().String(), Command: cmd}
}

// Reader reads newline-delimited messages from a stream.
type Reader struct {
	scanner *bufio.Scanner
}

// NewReader wraps r for message reading.
func NewReader(r io.Reader) *Reader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), MaxMessageSize)
	return &Reader{scanner: s}
}

// ReadQuery reads and validates one query line. Returns io.EOF when the
// stream ends cleanly.
func (r *Reader) ReadQuery() (*Query, error) {
	line, err := r.readLine()
	if err != nil {
		return nil, err
	}
	var q Query
	if err := json.Unmarshal(line, &q); err != nil {
		return nil, fmt.Errorf("malformed query: %w", err)
	}
	if !q.Command.Known() {
		return nil, fmt.Errorf("unknown command %q", q.Command)
	}
	return &q, nil
}

// ReadResponse reads one response line. Arbitrary error payloads from the
// daemon decode into the generic Response shape; anything that isn't JSON
// is reported as an error.
func (r *Reader) ReadResponse() (*Response, error) {
	line, err := r.readLine()
	if err != nil {
		return nil, err
	}
	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("malformed response: %w", err)
	}
	return &resp, nil
}

func (r *Reader) readLine() ([]byte, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	return r.scanner.Bytes(), nil
}

// WriteMessage writes v as one JSON line.
func WriteMessage(w io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

// OK returns a successful response for the given request ID.
func OK(id string) *Response {
	return &Response{ID: id, Status: StatusOK}
}

// Unavailable returns the degraded "daemon absent" response.
func Unavailable(id string) *Response {
	return &Response{ID: id, Status: StatusUnavailable}
}

// IndexingResponse returns the "index rebuilding" response.
func IndexingResponse(id string) *Response {
	return &Response{ID: id, Status: StatusIndexing}
}

// ErrorResponse returns an error response with a stable code.
func ErrorResponse(id, code, message string) *Response {
	return &Response{
		ID:     id,
		Status: StatusError,
		Error:  &ResponseError{Code: code, Message: message},
	}
}

// TimeoutResponse returns the client-side timeout substitute.
func TimeoutResponse(id string) *Response {
	return ErrorResponse(id, string(cerrors.Timeout), "query timed out")
}
