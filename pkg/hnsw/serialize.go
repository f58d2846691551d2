package hnsw

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/golang/snappy"
	"github.com/google/uuid"
	"golang.org/x/exp/constraints"

	"github.com/arborist-labs/hnswgraph/pkg/pools"
)

const formatVersion = uint8(1)

// SerializeGraph writes the header, parameters, and a snappy+crc32-framed
// core block to w, per the serialization format. Items are not written;
// DeserializeGraph must be handed the same items in the same order.
func (ge *GraphEngine[T, D]) SerializeGraph(w io.Writer) error {
	if err := writeLengthPrefixed(w, []byte("HNSW")); err != nil {
		return opError("SerializeGraph", err)
	}
	if err := binary.Write(w, binary.BigEndian, formatVersion); err != nil {
		return opError("SerializeGraph", err)
	}
	streamID := uuid.New()
	if _, err := w.Write(streamID[:]); err != nil {
		return opError("SerializeGraph", err)
	}

	if err := writeParameters(w, ge.core.params); err != nil {
		return opError("SerializeGraph", err)
	}

	builder := pools.NewBufferBuilder(pools.HugeSize)
	writeCoreBlock(builder, ge.core)
	coreBytes := builder.Bytes()

	dst := pools.GetBytesSized(snappy.MaxEncodedLen(len(coreBytes)))
	compressed := snappy.Encode(dst, coreBytes)
	builder.Release()
	defer pools.PutBytes(compressed)

	if err := binary.Write(w, binary.BigEndian, uint32(len(coreBytes))); err != nil {
		return opError("SerializeGraph", err)
	}
	if err := binary.Write(w, binary.BigEndian, crc32.ChecksumIEEE(compressed)); err != nil {
		return opError("SerializeGraph", err)
	}
	if _, err := w.Write(compressed); err != nil {
		return opError("SerializeGraph", err)
	}
	return nil
}

// DeserializeGraph reconstructs a GraphEngine from a stream written by
// SerializeGraph, binding the serialized node ids to items by position.
// items must have exactly as many entries as the stream has node records.
func DeserializeGraph[T any, D constraints.Ordered](items []T, distance DistanceFunc[T, D], rng RNG, reporter EventReporter, r io.Reader) (*GraphEngine[T, D], error) {
	magic, err := readLengthPrefixed(r)
	if err != nil {
		return nil, opError("DeserializeGraph", err)
	}
	if string(magic) != "HNSW" {
		if sk, ok := r.(io.Seeker); ok {
			sk.Seek(0, io.SeekStart)
		}
		return nil, opError("DeserializeGraph", ErrInvalidData)
	}

	var version uint8
	if err := binary.Read(r, binary.BigEndian, &version); err != nil {
		return nil, opError("DeserializeGraph", err)
	}
	if version != formatVersion {
		return nil, opError("DeserializeGraph", fmt.Errorf("%w: unsupported format version %d", ErrInvalidData, version))
	}

	var streamID [16]byte
	if _, err := io.ReadFull(r, streamID[:]); err != nil {
		return nil, opError("DeserializeGraph", err)
	}

	params, err := readParameters(r)
	if err != nil {
		return nil, opError("DeserializeGraph", err)
	}

	var uncompressedLen uint32
	var checksum uint32
	if err := binary.Read(r, binary.BigEndian, &uncompressedLen); err != nil {
		return nil, opError("DeserializeGraph", err)
	}
	if err := binary.Read(r, binary.BigEndian, &checksum); err != nil {
		return nil, opError("DeserializeGraph", err)
	}
	compressed, err := io.ReadAll(r)
	if err != nil {
		return nil, opError("DeserializeGraph", err)
	}
	if crc32.ChecksumIEEE(compressed) != checksum {
		return nil, opError("DeserializeGraph", fmt.Errorf("%w: checksum mismatch", ErrInvalidData))
	}
	raw, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, opError("DeserializeGraph", fmt.Errorf("%w: %v", ErrInvalidData, err))
	}
	if uint32(len(raw)) != uncompressedLen {
		return nil, opError("DeserializeGraph", fmt.Errorf("%w: length mismatch", ErrInvalidData))
	}

	nodes, entryPoint, err := readCoreBlock(bytes.NewReader(raw))
	if err != nil {
		return nil, opError("DeserializeGraph", err)
	}
	if len(nodes) != len(items) {
		return nil, opError("DeserializeGraph", fmt.Errorf("%w: %d items for %d nodes", ErrInvalidData, len(items), len(nodes)))
	}

	if rng == nil {
		rng = NewSystemRNG()
	}
	if reporter == nil {
		reporter = NopReporter{}
	}

	c := newCore(params, distance)
	c.nodes = nodes
	c.items = items
	c.entryPoint = entryPoint
	for _, n := range nodes {
		if n.tombstoned {
			c.free = append(c.free, n.id)
		}
	}

	return &GraphEngine[T, D]{core: c, rng: rng, reporter: reporter}, nil
}

func writeLengthPrefixed(w io.Writer, data []byte) error {
	if err := binary.Write(w, binary.BigEndian, uint32(len(data))); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

func readLengthPrefixed(r io.Reader) ([]byte, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func writeParameters(w io.Writer, p Parameters) error {
	if err := binary.Write(w, binary.BigEndian, int64(p.M)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, p.LevelLambda); err != nil {
		return err
	}
	if err := writeLengthPrefixed(w, []byte(p.NeighborHeuristic)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, int64(p.ConstructionPruning)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, int64(p.MinNN)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, boolByte(p.ExpandBestSelection)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, boolByte(p.KeepPrunedConnections)); err != nil {
		return err
	}
	return binary.Write(w, binary.BigEndian, int64(p.InitialItemsSize))
}

func readParameters(r io.Reader) (Parameters, error) {
	var p Parameters
	var i64 int64

	if err := binary.Read(r, binary.BigEndian, &i64); err != nil {
		return p, err
	}
	p.M = int(i64)

	if err := binary.Read(r, binary.BigEndian, &p.LevelLambda); err != nil {
		return p, err
	}

	heuristic, err := readLengthPrefixed(r)
	if err != nil {
		return p, err
	}
	p.NeighborHeuristic = NeighborHeuristic(heuristic)

	if err := binary.Read(r, binary.BigEndian, &i64); err != nil {
		return p, err
	}
	p.ConstructionPruning = int(i64)

	if err := binary.Read(r, binary.BigEndian, &i64); err != nil {
		return p, err
	}
	p.MinNN = int(i64)

	var b byte
	if err := binary.Read(r, binary.BigEndian, &b); err != nil {
		return p, err
	}
	p.ExpandBestSelection = b != 0

	if err := binary.Read(r, binary.BigEndian, &b); err != nil {
		return p, err
	}
	p.KeepPrunedConnections = b != 0

	if err := binary.Read(r, binary.BigEndian, &i64); err != nil {
		return p, err
	}
	p.InitialItemsSize = int(i64)

	return p, nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// writeCoreBlock serializes every arena slot, tombstoned or not, so node
// ids stay aligned with the caller-supplied items list by position. It
// accumulates into a pooled BufferBuilder rather than issuing one
// binary.Write per field, so there's a single bulk copy out instead of many
// small, individually-unchecked writes.
func writeCoreBlock[T any, D constraints.Ordered](b *pools.BufferBuilder, c *core[T, D]) {
	b.WriteUint32BE(uint32(len(c.nodes)))
	for _, n := range c.nodes {
		b.WriteUint32BE(uint32(n.id))
		b.WriteByte(boolByte(n.tombstoned))
		b.WriteUint32BE(uint32(int32(n.maxLayer)))
		if !n.tombstoned {
			for l := 0; l <= n.maxLayer; l++ {
				writeIntSlice(b, n.connections[l])
				writeIntSlice(b, n.inConnections[l])
			}
		}
	}
	b.WriteUint64BE(uint64(int64(c.entryPoint)))
}

func writeIntSlice(b *pools.BufferBuilder, s []int) {
	b.WriteUint32BE(uint32(len(s)))
	for _, v := range s {
		b.WriteUint64BE(uint64(int64(v)))
	}
}

func readIntSlice(r io.Reader) ([]int, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	s := make([]int, n)
	var v int64
	for i := range s {
		if err := binary.Read(r, binary.BigEndian, &v); err != nil {
			return nil, err
		}
		s[i] = int(v)
	}
	return s, nil
}

func readCoreBlock(r io.Reader) ([]*node, int, error) {
	var count uint32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, 0, err
	}

	nodes := make([]*node, count)
	for i := uint32(0); i < count; i++ {
		var id uint32
		if err := binary.Read(r, binary.BigEndian, &id); err != nil {
			return nil, 0, err
		}
		var tombstoned byte
		if err := binary.Read(r, binary.BigEndian, &tombstoned); err != nil {
			return nil, 0, err
		}
		var maxLayer int32
		if err := binary.Read(r, binary.BigEndian, &maxLayer); err != nil {
			return nil, 0, err
		}

		n := newNode(int(id), int(maxLayer))
		n.tombstoned = tombstoned != 0

		if !n.tombstoned {
			for l := 0; l <= int(maxLayer); l++ {
				out, err := readIntSlice(r)
				if err != nil {
					return nil, 0, err
				}
				n.connections[l] = out

				in, err := readIntSlice(r)
				if err != nil {
					return nil, 0, err
				}
				n.inConnections[l] = in
			}
		}

		nodes[id] = n
	}

	var entryPoint int64
	if err := binary.Read(r, binary.BigEndian, &entryPoint); err != nil {
		return nil, 0, err
	}

	return nodes, int(entryPoint), nil
}
