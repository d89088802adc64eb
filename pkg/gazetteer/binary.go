package gazetteer

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"unsafe"
)

const (
	magicBytes = "SRGAZETT"
	version    = uint32(1)
	maxPlaces  = 5_000_000
	maxNameLen = 256 << 20
)

// fileHeader is the binary header.
type fileHeader struct {
	Magic     [8]byte
	Version   uint32
	NumPlaces uint32
	NamesLen  uint32
}

// WriteBinary serializes a Gazetteer to a binary file.
// Uses unsafe.Slice for fast zero-copy I/O.
func WriteBinary(path string, g *Gazetteer) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath) // clean up on error
	}()

	crcWriter := crc32Writer{w: f, hash: crc32.NewIEEE()}
	w := &crcWriter

	hdr := fileHeader{
		Version:   version,
		NumPlaces: uint32(g.Len()),
		NamesLen:  uint32(len(g.Names)),
	}
	copy(hdr.Magic[:], magicBytes)
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	if err := writeFloat64Slice(w, g.Lat); err != nil {
		return fmt.Errorf("write Lat: %w", err)
	}
	if err := writeFloat64Slice(w, g.Lng); err != nil {
		return fmt.Errorf("write Lng: %w", err)
	}
	if _, err := w.Write(g.Kind); err != nil {
		return fmt.Errorf("write Kind: %w", err)
	}
	if err := writeUint32Slice(w, g.NameOff); err != nil {
		return fmt.Errorf("write NameOff: %w", err)
	}
	if _, err := w.Write(g.Names); err != nil {
		return fmt.Errorf("write Names: %w", err)
	}

	// Write CRC32 trailer.
	checksum := crcWriter.hash.Sum32()
	if err := binary.Write(f, binary.LittleEndian, checksum); err != nil {
		return fmt.Errorf("write CRC32: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	// Atomic rename.
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	return nil
}

// ReadBinary deserializes a Gazetteer from a binary file.
func ReadBinary(path string) (*Gazetteer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	crcReader := crc32Reader{r: f, hash: crc32.NewIEEE()}
	r := &crcReader

	var hdr fileHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	if string(hdr.Magic[:]) != magicBytes {
		return nil, fmt.Errorf("invalid magic bytes: %q", hdr.Magic)
	}
	if hdr.Version != version {
		return nil, fmt.Errorf("unsupported version: %d", hdr.Version)
	}
	if hdr.NumPlaces > maxPlaces {
		return nil, fmt.Errorf("NumPlaces %d exceeds limit %d", hdr.NumPlaces, maxPlaces)
	}
	if hdr.NamesLen > maxNameLen {
		return nil, fmt.Errorf("NamesLen %d exceeds limit %d", hdr.NamesLen, maxNameLen)
	}

	n := int(hdr.NumPlaces)
	g := &Gazetteer{}

	if g.Lat, err = readFloat64Slice(r, n); err != nil {
		return nil, fmt.Errorf("read Lat: %w", err)
	}
	if g.Lng, err = readFloat64Slice(r, n); err != nil {
		return nil, fmt.Errorf("read Lng: %w", err)
	}
	g.Kind = make([]uint8, n)
	if _, err := io.ReadFull(r, g.Kind); err != nil {
		return nil, fmt.Errorf("read Kind: %w", err)
	}
	if g.NameOff, err = readUint32Slice(r, n+1); err != nil {
		return nil, fmt.Errorf("read NameOff: %w", err)
	}
	g.Names = make([]byte, hdr.NamesLen)
	if _, err := io.ReadFull(r, g.Names); err != nil {
		return nil, fmt.Errorf("read Names: %w", err)
	}

	// Read and validate CRC32.
	expectedCRC := crcReader.hash.Sum32()
	var storedCRC uint32
	if err := binary.Read(f, binary.LittleEndian, &storedCRC); err != nil {
		return nil, fmt.Errorf("read CRC32: %w", err)
	}
	if storedCRC != expectedCRC {
		return nil, fmt.Errorf("CRC32 mismatch: stored=%08x computed=%08x", storedCRC, expectedCRC)
	}

	if err := validateOffsets(g.NameOff, hdr.NamesLen); err != nil {
		return nil, fmt.Errorf("name offsets invalid: %w", err)
	}

	return g, nil
}

// validateOffsets checks that name offsets start at zero, never decrease
// and end at the names length.
func validateOffsets(off []uint32, namesLen uint32) error {
	if len(off) == 0 || off[0] != 0 {
		return fmt.Errorf("NameOff must start at 0")
	}
	for i := 1; i < len(off); i++ {
		if off[i] < off[i-1] {
			return fmt.Errorf("NameOff not monotonic at %d: %d < %d", i, off[i], off[i-1])
		}
	}
	if last := off[len(off)-1]; last != namesLen {
		return fmt.Errorf("NameOff end %d != NamesLen %d", last, namesLen)
	}
	return nil
}

// Zero-copy I/O helpers using unsafe.Slice.

func writeUint32Slice(w io.Writer, s []uint32) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
	_, err := w.Write(b)
	return err
}

func writeFloat64Slice(w io.Writer, s []float64) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*8)
	_, err := w.Write(b)
	return err
}

func readUint32Slice(r io.Reader, n int) ([]uint32, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]uint32, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*4)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

func readFloat64Slice(r io.Reader, n int) ([]float64, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]float64, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*8)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

// CRC32 wrapping writers/readers.

type crc32Hash interface {
	Write([]byte) (int, error)
	Sum32() uint32
}

type crc32Writer struct {
	w    io.Writer
	hash crc32Hash
}

func (cw *crc32Writer) Write(p []byte) (int, error) {
	cw.hash.Write(p)
	return cw.w.Write(p)
}

type crc32Reader struct {
	r    io.Reader
	hash crc32Hash
}

func (cr *crc32Reader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.hash.Write(p[:n])
	}
	return n, err
}
