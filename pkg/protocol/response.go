package protocol

import (
	"encoding/binary"
	"fmt"
	"io"

	"kpaths/pkg/apperror"
	"kpaths/pkg/domain"
)

const (
	// LengthPrefixSize is the u32 byte-length in front of the vertices.
	LengthPrefixSize = 4

	// MaxResponseBytes bounds a well-formed payload: k loopless paths of at
	// most MaxVertices vertices each.
	MaxResponseBytes = domain.MaxK * domain.MaxVertices * 4
)

// EncodeResponse flattens paths in order and prefixes the byte length.
func EncodeResponse(paths []domain.Path) []byte {
	count := 0
	for _, p := range paths {
		count += len(p)
	}

	buf := make([]byte, LengthPrefixSize+count*4)
	binary.BigEndian.PutUint32(buf[0:4], uint32(count*4))

	off := LengthPrefixSize
	for _, p := range paths {
		for _, v := range p {
			binary.BigEndian.PutUint32(buf[off:], v)
			off += 4
		}
	}
	return buf
}

// WriteResponse encodes paths and writes prefix and payload in full.
func WriteResponse(w io.Writer, paths []domain.Path) error {
	return writeFull(w, EncodeResponse(paths), "response")
}

// ReadResponse decodes one response into its flat vertex sequence.
func ReadResponse(r io.Reader) ([]uint32, error) {
	var prefix [LengthPrefixSize]byte
	if err := readFull(r, prefix[:], "response length"); err != nil {
		return nil, err
	}

	length := binary.BigEndian.Uint32(prefix[:])
	if length%4 != 0 || length > MaxResponseBytes {
		return nil, apperror.New(apperror.CodeMalformedFrame,
			fmt.Sprintf("invalid response length %d", length))
	}
	if length == 0 {
		return []uint32{}, nil
	}

	payload := make([]byte, length)
	if err := readFull(r, payload, "response payload"); err != nil {
		return nil, err
	}

	vertices := make([]uint32, length/4)
	for i := range vertices {
		vertices[i] = binary.BigEndian.Uint32(payload[i*4:])
	}
	return vertices, nil
}

// SplitPaths cuts a flat response at every occurrence of target.
//
// A trailing run that never reaches target is malformed.
func SplitPaths(vertices []uint32, target uint32) ([]domain.Path, error) {
	paths := make([]domain.Path, 0)
	start := 0
	for i, v := range vertices {
		if v == target {
			paths = append(paths, domain.Path(vertices[start:i+1]).Clone())
			start = i + 1
		}
	}
	if start != len(vertices) {
		return nil, apperror.New(apperror.CodeMalformedFrame,
			fmt.Sprintf("response ends with %d vertices not terminated by target %d", len(vertices)-start, target))
	}
	return paths, nil
}
