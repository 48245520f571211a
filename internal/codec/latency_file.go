package codec

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// LatencyRow is one row of the latency file format: an array of
// (req_ts, exch_ts, resp_ts, _pad) int64 quadruples, monotone in req_ts.
type LatencyRow struct {
	ReqTS  int64
	ExchTS int64
	RespTS int64
	Pad    int64
}

const latencyRecordSize = 8 * 4

// ReadLatencyFile decodes a latency table from path.
func ReadLatencyFile(path string) ([]LatencyRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return DecodeLatencyTable(bufio.NewReader(f))
}

// DecodeLatencyTable reads rows until EOF; the file carries no header, the
// whole stream is an array of quadruples.
func DecodeLatencyTable(r io.Reader) ([]LatencyRow, error) {
	var rows []LatencyRow
	buf := make([]byte, latencyRecordSize)
	for {
		_, err := io.ReadFull(r, buf)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read latency row: %w", err)
		}
		le := binary.LittleEndian
		rows = append(rows, LatencyRow{
			ReqTS:  int64(le.Uint64(buf[0:8])),
			ExchTS: int64(le.Uint64(buf[8:16])),
			RespTS: int64(le.Uint64(buf[16:24])),
			Pad:    int64(le.Uint64(buf[24:32])),
		})
	}
	return rows, nil
}

// WriteLatencyFile encodes rows to path.
func WriteLatencyFile(path string, rows []LatencyRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if err := EncodeLatencyTable(w, rows); err != nil {
		return err
	}
	return w.Flush()
}

// EncodeLatencyTable writes rows to w.
func EncodeLatencyTable(w io.Writer, rows []LatencyRow) error {
	buf := make([]byte, latencyRecordSize)
	le := binary.LittleEndian
	for _, row := range rows {
		le.PutUint64(buf[0:8], uint64(row.ReqTS))
		le.PutUint64(buf[8:16], uint64(row.ExchTS))
		le.PutUint64(buf[16:24], uint64(row.RespTS))
		le.PutUint64(buf[24:32], uint64(row.Pad))
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("write latency row: %w", err)
		}
	}
	return nil
}
