package tzif

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// File is a fully parsed TZif file: the V1 block (absent only when
// V1Missing is set) plus,
// for V2 and V3 files, the wider V2+ block and its POSIX footer.
type File struct {
	Version Version

	// V1Missing is set when the source had no V1 header at all. RFC
	// 8536 requires one, but DecodeFile tolerates its absence.
	V1Missing bool
	V1Header  Header
	V1Data    V1DataBlock

	V2Header Header
	V2Data   V2DataBlock
	V2Footer Footer
}

// Encode writes f in RFC 8536 order: V1 header/block (unless
// V1Missing), then, for V2 and V3 files, the V2+ header/block/footer.
func (f File) Encode(w io.Writer) error {
	if !f.V1Missing {
		if err := f.V1Header.Write(w); err != nil {
			return fmt.Errorf("write v1 header: %w", err)
		}
		if err := f.V1Data.Write(w); err != nil {
			return fmt.Errorf("write v1 data: %w", err)
		}
	}

	if f.V2Header.Version != f.Version {
		return fmt.Errorf("version mismatch: file is %v and v2+ header is %v", f.Version, f.V2Header.Version)
	}

	if f.Version == V2 || f.Version == V3 {
		if err := f.V2Header.Write(w); err != nil {
			return fmt.Errorf("write v2 header: %w", err)
		}
		if err := f.V2Data.Write(w); err != nil {
			return fmt.Errorf("write v2 data: %w", err)
		}
		if err := f.V2Footer.Write(w); err != nil {
			return fmt.Errorf("write v2 footer: %w", err)
		}
	}

	return nil
}

// DecodeFile reads a TZif file from r. A V1-only source yields a File
// with Version V1 and zero-valued V2 fields. A V2/V3 source yields both
// blocks when its first header is followed by a V1 block, recognised by
// a second "TZif" header right after that block; otherwise V1Missing is
// set and only the V2+ block is read.
func DecodeFile(r io.Reader) (File, error) {
	var f File
	h, err := ReadHeader(r)
	if err != nil {
		return f, fmt.Errorf("read header: %w", err)
	}

	// Strictly speaking, each TZif file needs a V1 header, but we are relaxed in what we accept.
	f.V1Missing = h.Version != V1
	if h.Version == V2 || h.Version == V3 {
		// RFC 8536 files repeat the V2/V3 version in the V1 header; peek
		// past the V1 block to see whether a V2+ header follows it.
		n := int(h.Timecnt)*5 + int(h.Typecnt)*6 + int(h.Charcnt) + int(h.Leapcnt)*8 + int(h.Isstdcnt) + int(h.Isutcnt)
		br := bufio.NewReaderSize(r, n+len(Magic))
		peek, _ := br.Peek(n + len(Magic))
		f.V1Missing = len(peek) < n+len(Magic) || !bytes.Equal(peek[n:], Magic[:])
		r = br
	}
	if !f.V1Missing {
		f.Version = V1
		f.V1Header = h
		f.V1Data, err = ReadV1DataBlock(r, h)
		if err != nil {
			return f, fmt.Errorf("read v1 data block: %w", err)
		}

		// Look for V2+ header.
		h, err = ReadHeader(r)
		if errors.Is(err, io.EOF) {
			// No V2+ data, we are done.
			return f, nil
		}
	}

	if h.Version != V2 && h.Version != V3 {
		return f, fmt.Errorf("unsupported version: %v", h.Version)
	}
	f.V2Header = h
	f.Version = h.Version // set max version

	f.V2Data, err = ReadV2DataBlock(r, h)
	if err != nil {
		return f, fmt.Errorf("read v2 data block: %w", err)
	}
	f.V2Footer, err = ReadFooter(r)
	if err != nil {
		return f, fmt.Errorf("read footer: %w", err)
	}

	return f, nil
}
