// Package codec implements the binary container formats used here: the
// "HFT0" event-tape file, its depth-snapshot sibling, and the order-latency
// interpolation table. Large tapes may be gzip-compressed on disk, using
// github.com/klauspost/compress for the only byte stream in this core
// worth compressing.
package codec

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/abdoElHodaky/hftbacktest/internal/types"
)

// Magic is the fixed 4-byte header identifying an event-tape file.
var Magic = [4]byte{'H', 'F', 'T', '0'}

// recordSize is the encoded byte width of one Event: flags(8) + exch_ts(8)
// + local_ts(8) + px(8) + qty(8) + order_id(8) + ival(8) + fval(8).
const recordSize = 8 * 8

// ReadEventFile decodes an "HFT0" container from path, transparently
// gzip-decompressing ".gz"-suffixed files.
func ReadEventFile(path string) ([]types.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}
	return DecodeEvents(r)
}

// DecodeEvents reads an "HFT0" container from r.
func DecodeEvents(r io.Reader) ([]types.Event, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	if header != Magic {
		return nil, fmt.Errorf("bad magic %q, want %q", header, Magic)
	}

	var count uint64
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("read count: %w", err)
	}

	events := make([]types.Event, 0, count)
	buf := make([]byte, recordSize)
	for i := uint64(0); i < count; i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("read record %d: %w", i, err)
		}
		events = append(events, decodeRecord(buf))
	}
	return events, nil
}

func decodeRecord(buf []byte) types.Event {
	le := binary.LittleEndian
	return types.Event{
		EvFlags: types.EventFlags(le.Uint64(buf[0:8])),
		ExchTS:  int64(le.Uint64(buf[8:16])),
		LocalTS: int64(le.Uint64(buf[16:24])),
		Px:      math64bits(le.Uint64(buf[24:32])),
		Qty:     math64bits(le.Uint64(buf[32:40])),
		OrderID: le.Uint64(buf[40:48]),
		Ival:    int64(le.Uint64(buf[48:56])),
		Fval:    math64bits(le.Uint64(buf[56:64])),
	}
}

func encodeRecord(e types.Event, buf []byte) {
	le := binary.LittleEndian
	le.PutUint64(buf[0:8], uint64(e.EvFlags))
	le.PutUint64(buf[8:16], uint64(e.ExchTS))
	le.PutUint64(buf[16:24], uint64(e.LocalTS))
	le.PutUint64(buf[24:32], bits64(e.Px))
	le.PutUint64(buf[32:40], bits64(e.Qty))
	le.PutUint64(buf[40:48], e.OrderID)
	le.PutUint64(buf[48:56], uint64(e.Ival))
	le.PutUint64(buf[56:64], bits64(e.Fval))
}

// WriteEventFile encodes events as an "HFT0" container to path.
func WriteEventFile(path string, events []types.Event) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := EncodeEvents(w, events); err != nil {
		return err
	}
	return w.Flush()
}

// EncodeEvents writes an "HFT0" container to w.
func EncodeEvents(w io.Writer, events []types.Event) error {
	if _, err := w.Write(Magic[:]); err != nil {
		return fmt.Errorf("write magic: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(len(events))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	buf := make([]byte, recordSize)
	for _, e := range events {
		encodeRecord(e, buf)
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	return nil
}

// EncodeEventsToBytes is a convenience wrapper used by round-trip tests.
func EncodeEventsToBytes(events []types.Event) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeEvents(&buf, events); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
