package report

import (
	"bytes"
	"path/filepath"
	"testing"

	"warebot/catalog"
	"warebot/request"
)

func sampleRequests(t *testing.T) []request.Request {
	t.Helper()
	parts := []catalog.Part{
		{ID: "P1001", Name: "Oil Filter"},
		{ID: "P1009", Name: "Battery"},
	}
	var out []request.Request
	for i, p := range parts {
		req, err := request.New(p, i+1)
		if err != nil {
			t.Fatalf("request.New: %v", err)
		}
		out = append(out, req)
	}
	out[0] = out[0].WithStatus(request.StatusCompleted)
	out[1] = out[1].WithStatus(request.StatusFailed)
	return out
}

func TestRoundTrip(t *testing.T) {
	reqs := sampleRequests(t)

	var buf bytes.Buffer
	if err := Write(&buf, reqs); err != nil {
		t.Fatalf("Write: %v", err)
	}
	records, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if len(records) != len(reqs) {
		t.Fatalf("records = %d, want %d", len(records), len(reqs))
	}
	for i, rec := range records {
		want := reqs[i]
		if rec.RequestID != want.ID {
			t.Errorf("record %d id = %q, want %q", i, rec.RequestID, want.ID)
		}
		if rec.PartID != want.Part.ID {
			t.Errorf("record %d part = %q, want %q", i, rec.PartID, want.Part.ID)
		}
		if rec.Qty != want.Qty {
			t.Errorf("record %d qty = %d, want %d", i, rec.Qty, want.Qty)
		}
		if rec.Status != string(want.Status) {
			t.Errorf("record %d status = %q, want %q", i, rec.Status, want.Status)
		}
	}
}

func TestWriteLayout(t *testing.T) {
	req, err := request.New(catalog.Part{ID: "AB", Name: "x"}, 7)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	req = req.WithStatus(request.StatusCompleted)

	var buf bytes.Buffer
	if err := Write(&buf, []request.Request{req}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data := buf.Bytes()

	// 4-byte big-endian count.
	if got := data[:4]; !bytes.Equal(got, []byte{0, 0, 0, 1}) {
		t.Errorf("count bytes = %v, want [0 0 0 1]", got)
	}

	// First string: 2-byte big-endian length, then the request id.
	idLen := int(data[4])<<8 | int(data[5])
	if idLen != len(req.ID) {
		t.Errorf("id length = %d, want %d", idLen, len(req.ID))
	}
	if got := string(data[6 : 6+idLen]); got != req.ID {
		t.Errorf("id bytes = %q, want %q", got, req.ID)
	}

	// Next: part id framing.
	off := 6 + idLen
	partLen := int(data[off])<<8 | int(data[off+1])
	if partLen != 2 {
		t.Errorf("part length = %d, want 2", partLen)
	}
	if got := string(data[off+2 : off+4]); got != "AB" {
		t.Errorf("part bytes = %q, want AB", got)
	}

	// Then the 4-byte big-endian quantity.
	off += 4
	if got := data[off : off+4]; !bytes.Equal(got, []byte{0, 0, 0, 7}) {
		t.Errorf("qty bytes = %v, want [0 0 0 7]", got)
	}

	// Then the status name, and nothing after it.
	off += 4
	statusLen := int(data[off])<<8 | int(data[off+1])
	if got := string(data[off+2 : off+2+statusLen]); got != "COMPLETED" {
		t.Errorf("status = %q, want COMPLETED", got)
	}
	if rest := data[off+2+statusLen:]; len(rest) != 0 {
		t.Errorf("trailing bytes = %v, want none", rest)
	}
}

func TestModifiedUTF8(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []byte
	}{
		{"ascii", "abc", []byte{'a', 'b', 'c'}},
		{"nul", "a\x00b", []byte{'a', 0xC0, 0x80, 'b'}},
		{"two-byte", "é", []byte{0xC3, 0xA9}},
		{"three-byte", "€", []byte{0xE2, 0x82, 0xAC}},
		{"supplementary", "\U0001F600", []byte{0xED, 0xA0, 0xBD, 0xED, 0xB8, 0x80}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := encodeModifiedUTF8(c.in)
			if !bytes.Equal(got, c.want) {
				t.Fatalf("encode(%q) = % X, want % X", c.in, got, c.want)
			}
			back, err := decodeModifiedUTF8(got)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if back != c.in {
				t.Errorf("round trip = %q, want %q", back, c.in)
			}
		})
	}
}

func TestWriteFileReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.dat")
	reqs := sampleRequests(t)

	if err := WriteFile(path, reqs); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	records, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(records) != len(reqs) {
		t.Errorf("records = %d, want %d", len(records), len(reqs))
	}
}

func TestEmptyReport(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := buf.Len(); got != 4 {
		t.Errorf("empty report = %d bytes, want 4", got)
	}
	records, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("records = %d, want 0", len(records))
	}
}
