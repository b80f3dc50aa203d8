// Package report serializes the terminal record set into the binary layout
// consumed by downstream JVM tooling: a 4-byte big-endian count, then per
// request the id, part id, a 4-byte big-endian quantity, and the status
// name, with every string framed as 2-byte big-endian length plus
// modified-UTF-8 bytes.
package report

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"warebot/request"
)

// Record is one decoded report tuple.
type Record struct {
	RequestID string
	PartID    string
	Qty       int
	Status    string
}

// Write serializes the requests to w.
func Write(w io.Writer, reqs []request.Request) error {
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.BigEndian, int32(len(reqs))); err != nil {
		return err
	}
	for _, r := range reqs {
		if err := writeUTF(bw, r.ID); err != nil {
			return err
		}
		if err := writeUTF(bw, r.Part.ID); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.BigEndian, int32(r.Qty)); err != nil {
			return err
		}
		if err := writeUTF(bw, string(r.Status)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile writes the report to path, replacing any previous report.
func WriteFile(path string, reqs []request.Request) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := Write(f, reqs); err != nil {
		f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	return f.Close()
}

// Read decodes a report stream back into records.
func Read(r io.Reader) ([]Record, error) {
	br := bufio.NewReader(r)
	var count int32
	if err := binary.Read(br, binary.BigEndian, &count); err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, fmt.Errorf("report: negative record count %d", count)
	}
	records := make([]Record, 0, count)
	for i := int32(0); i < count; i++ {
		id, err := readUTF(br)
		if err != nil {
			return nil, err
		}
		partID, err := readUTF(br)
		if err != nil {
			return nil, err
		}
		var qty int32
		if err := binary.Read(br, binary.BigEndian, &qty); err != nil {
			return nil, err
		}
		status, err := readUTF(br)
		if err != nil {
			return nil, err
		}
		records = append(records, Record{
			RequestID: id,
			PartID:    partID,
			Qty:       int(qty),
			Status:    status,
		})
	}
	return records, nil
}

// ReadFile decodes a report file.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}
