package protocol

import (
	"encoding/binary"
	"fmt"
	"io"

	"kpaths/pkg/apperror"
	"kpaths/pkg/domain"
)

const (
	// HeaderSize is n, m, k, s, t as five u32.
	HeaderSize = 5 * 4

	// EdgeRecordSize is a, b, w as three u32.
	EdgeRecordSize = 3 * 4
)

// Header is the fixed-size prefix of a request.
type Header struct {
	N uint32
	M uint32
	K uint32
	S uint32
	T uint32
}

// Validate checks the header bounds in wire order.
func (h Header) Validate() error {
	if h.N < 1 || h.N > domain.MaxVertices {
		return headerError("n", fmt.Sprintf("vertex count %d not in [1, %d]", h.N, domain.MaxVertices))
	}
	if limit := domain.MaxEdgesFor(h.N); uint64(h.M) > limit {
		return headerError("m", fmt.Sprintf("edge count %d exceeds %d for n=%d", h.M, limit, h.N))
	}
	if h.K > domain.MaxK {
		return headerError("k", fmt.Sprintf("k %d exceeds %d", h.K, domain.MaxK))
	}
	if h.S >= h.N {
		return headerError("s", fmt.Sprintf("source %d not below n=%d", h.S, h.N))
	}
	if h.T >= h.N {
		return headerError("t", fmt.Sprintf("target %d not below n=%d", h.T, h.N))
	}
	return nil
}

func headerError(field, msg string) error {
	return apperror.NewWithField(apperror.CodeInvalidHeader, msg, field)
}

// Request is one decoded k-shortest-paths query.
type Request struct {
	N     uint32
	K     uint32
	S     uint32
	T     uint32
	Edges []domain.Edge
}

// Header returns the wire header describing r.
func (r *Request) Header() Header {
	return Header{N: r.N, M: uint32(len(r.Edges)), K: r.K, S: r.S, T: r.T}
}

// Validate checks the header and every edge record.
func (r *Request) Validate() error {
	if r == nil {
		return apperror.New(apperror.CodeNilInput, "request is nil")
	}
	if uint64(len(r.Edges)) > domain.MaxEdges {
		return headerError("m", fmt.Sprintf("edge count %d exceeds %d", len(r.Edges), domain.MaxEdges))
	}
	if err := r.Header().Validate(); err != nil {
		return err
	}
	for i, e := range r.Edges {
		if err := validateEdge(e, r.N, i); err != nil {
			return err
		}
	}
	return nil
}

func validateEdge(e domain.Edge, n uint32, index int) error {
	switch {
	case e.From >= n:
		return apperror.NewWithField(apperror.CodeInvalidEdge,
			fmt.Sprintf("edge tail %d not below n=%d", e.From, n), "a").WithDetails("index", index)
	case e.To >= n:
		return apperror.NewWithField(apperror.CodeInvalidEdge,
			fmt.Sprintf("edge head %d not below n=%d", e.To, n), "b").WithDetails("index", index)
	case e.From == e.To:
		return apperror.NewWithField(apperror.CodeSelfLoop,
			fmt.Sprintf("self-loop on vertex %d", e.From), "a").WithDetails("index", index)
	case e.Weight > domain.MaxEdgeWeight:
		return apperror.NewWithField(apperror.CodeInvalidEdge,
			fmt.Sprintf("edge weight %d exceeds %d", e.Weight, domain.MaxEdgeWeight), "w").WithDetails("index", index)
	}
	return nil
}

// Graph builds the adjacency matrix for r. Duplicate (a, b) records
// overwrite earlier ones.
func (r *Request) Graph() (*domain.Graph, error) {
	g, err := domain.NewGraph(int(r.N))
	if err != nil {
		return nil, err
	}
	for _, e := range r.Edges {
		if err := g.SetEdge(e.From, e.To, e.Weight); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// ReadRequest decodes exactly one request from rd.
//
// The header is validated before any edge bytes are read, so an
// out-of-range header never causes a large allocation. Edge records are
// validated in order and the first bad one aborts decoding.
func ReadRequest(rd io.Reader) (*Request, error) {
	var buf [HeaderSize]byte
	if err := readFull(rd, buf[:], "request header"); err != nil {
		return nil, err
	}

	h := Header{
		N: binary.BigEndian.Uint32(buf[0:4]),
		M: binary.BigEndian.Uint32(buf[4:8]),
		K: binary.BigEndian.Uint32(buf[8:12]),
		S: binary.BigEndian.Uint32(buf[12:16]),
		T: binary.BigEndian.Uint32(buf[16:20]),
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}

	req := &Request{N: h.N, K: h.K, S: h.S, T: h.T}
	if h.M == 0 {
		return req, nil
	}

	body := make([]byte, int(h.M)*EdgeRecordSize)
	if err := readFull(rd, body, "edge records"); err != nil {
		return nil, err
	}

	req.Edges = make([]domain.Edge, h.M)
	for i := range req.Edges {
		rec := body[i*EdgeRecordSize:]
		e := domain.Edge{
			From:   binary.BigEndian.Uint32(rec[0:4]),
			To:     binary.BigEndian.Uint32(rec[4:8]),
			Weight: binary.BigEndian.Uint32(rec[8:12]),
		}
		if err := validateEdge(e, h.N, i); err != nil {
			return nil, err
		}
		req.Edges[i] = e
	}

	return req, nil
}

// EncodeRequest serializes r without validating it.
func EncodeRequest(r *Request) []byte {
	h := r.Header()
	buf := make([]byte, HeaderSize+len(r.Edges)*EdgeRecordSize)

	binary.BigEndian.PutUint32(buf[0:4], h.N)
	binary.BigEndian.PutUint32(buf[4:8], h.M)
	binary.BigEndian.PutUint32(buf[8:12], h.K)
	binary.BigEndian.PutUint32(buf[12:16], h.S)
	binary.BigEndian.PutUint32(buf[16:20], h.T)

	off := HeaderSize
	for _, e := range r.Edges {
		binary.BigEndian.PutUint32(buf[off:], e.From)
		binary.BigEndian.PutUint32(buf[off+4:], e.To)
		binary.BigEndian.PutUint32(buf[off+8:], e.Weight)
		off += EdgeRecordSize
	}
	return buf
}

// WriteRequest validates r and writes it to w in full.
func WriteRequest(w io.Writer, r *Request) error {
	if err := r.Validate(); err != nil {
		return err
	}
	return writeFull(w, EncodeRequest(r), "request")
}
