package protocol

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestQueryRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	q := NewQuery(CmdContext)
	q.Path = "pipeline.py"
	q.Symbol = "process_data"
	q.Depth = 2

	if err := WriteMessage(&buf, q); err != nil {
		t.Fatalf("WriteMessage failed: %v", err)
	}
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Error("message must be newline-terminated")
	}

	got, err := NewReader(&buf).ReadQuery()
	if err != nil {
		t.Fatalf("ReadQuery failed: %v", err)
	}
	if got.Command != CmdContext || got.Symbol != "process_data" || got.Depth != 2 {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.ID != q.ID {
		t.Errorf("ID mismatch: %q vs %q", got.ID, q.ID)
	}
}

func TestReadQueryRejectsUnknownCommand(t *testing.T) {
	r := NewReader(strings.NewReader(`{"command":"frobnicate"}` + "\n"))
	if _, err := r.ReadQuery(); err == nil {
		t.Error("expected unknown command to be rejected")
	}
}

func TestReadQueryRejectsMalformedJSON(t *testing.T) {
	r := NewReader(strings.NewReader("{broken\n"))
	if _, err := r.ReadQuery(); err == nil {
		t.Error("expected malformed JSON to be rejected")
	}
}

func TestReadQueryEOF(t *testing.T) {
	r := NewReader(strings.NewReader(""))
	if _, err := r.ReadQuery(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestReadResponseArbitraryErrorPayload(t *testing.T) {
	// The daemon may ship error payloads with fields we don't model;
	// they must still decode into the generic shape.
	line := `{"status":"error","error":{"code":"BOOM","message":"bad"},"extra":{"nested":1}}` + "\n"
	resp, err := NewReader(strings.NewReader(line)).ReadResponse()
	if err != nil {
		t.Fatalf("ReadResponse failed: %v", err)
	}
	if resp.Status != StatusError || resp.Error == nil || resp.Error.Code != "BOOM" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestResponseConstructors(t *testing.T) {
	tests := []struct {
		name string
		resp *Response
		want ResponseStatus
	}{
		{"ok", OK("1"), StatusOK},
		{"unavailable", Unavailable("2"), StatusUnavailable},
		{"indexing", IndexingResponse("3"), StatusIndexing},
		{"timeout", TimeoutResponse("4"), StatusError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.resp.Status != tt.want {
				t.Errorf("status = %s, want %s", tt.resp.Status, tt.want)
			}
		})
	}
	if TimeoutResponse("4").Error.Code != "TIMEOUT" {
		t.Error("timeout response must carry the TIMEOUT code")
	}
}

func TestEveryCommandKnown(t *testing.T) {
	for _, c := range Commands() {
		if !c.Known() {
			t.Errorf("command %q in set but not Known", c)
		}
	}
	if Command("bogus").Known() {
		t.Error("bogus command must not be Known")
	}
}
