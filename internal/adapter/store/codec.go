package store

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Index blob layout: 4-byte magic, 1-byte version, uint32 dimension,
// uint32 row count, then count*dimension little-endian float32 values in
// row order. Opaque to everything outside this package.
var indexMagic = [4]byte{'D', 'Q', 'I', 'X'}

const indexVersion = 1

func writeVectors(w io.Writer, dim int, vectors [][]float32) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.Write(indexMagic[:]); err != nil {
		return err
	}
	if err := bw.WriteByte(indexVersion); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(dim)); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(vectors))); err != nil {
		return err
	}

	buf := make([]byte, 4)
	for _, row := range vectors {
		if len(row) != dim {
			return fmt.Errorf("row has %d values, want %d", len(row), dim)
		}
		for _, x := range row {
			binary.LittleEndian.PutUint32(buf, math.Float32bits(x))
			if _, err := bw.Write(buf); err != nil {
				return err
			}
		}
	}

	return bw.Flush()
}

func readVectors(r io.Reader) (int, [][]float32, error) {
	br := bufio.NewReader(r)

	var magic [4]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return 0, nil, fmt.Errorf("read magic: %w", err)
	}
	if magic != indexMagic {
		return 0, nil, fmt.Errorf("bad magic %q", magic[:])
	}
	version, err := br.ReadByte()
	if err != nil {
		return 0, nil, fmt.Errorf("read version: %w", err)
	}
	if version != indexVersion {
		return 0, nil, fmt.Errorf("unsupported index version %d", version)
	}

	var dim, count uint32
	if err := binary.Read(br, binary.LittleEndian, &dim); err != nil {
		return 0, nil, fmt.Errorf("read dimension: %w", err)
	}
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return 0, nil, fmt.Errorf("read row count: %w", err)
	}
	if dim == 0 {
		return 0, nil, fmt.Errorf("zero dimension")
	}

	vectors := make([][]float32, count)
	buf := make([]byte, 4)
	for i := range vectors {
		row := make([]float32, dim)
		for j := range row {
			if _, err := io.ReadFull(br, buf); err != nil {
				return 0, nil, fmt.Errorf("read row %d: %w", i, err)
			}
			row[j] = math.Float32frombits(binary.LittleEndian.Uint32(buf))
		}
		vectors[i] = row
	}

	// Trailing bytes mean the artifact does not match its header.
	if _, err := br.ReadByte(); err != io.EOF {
		return 0, nil, fmt.Errorf("trailing data after %d rows", count)
	}

	return int(dim), vectors, nil
}
