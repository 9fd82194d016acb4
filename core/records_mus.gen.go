// Code generated by musgen-go. DO NOT EDIT.

package core

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

var (
	map0xH9f6YvHNRJ2raeEZdKwgΞΞ   = ord.NewMapSer[string, string](ord.String, ord.String)
	slicezzIA1LS560SCCjLSsJLuaAΞΞ = ord.NewSliceSer[float32](varint.Float32)
)

var IngestStateMUS = ingestStateMUS{}

type ingestStateMUS struct{}

func (s ingestStateMUS) Marshal(v IngestState, bs []byte) (n int) {
	return ord.String.Marshal(string(v), bs)
}

func (s ingestStateMUS) Unmarshal(bs []byte) (v IngestState, n int, err error) {
	tmp, n, err := ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v = IngestState(tmp)
	return
}

func (s ingestStateMUS) Size(v IngestState) (size int) {
	return ord.String.Size(string(v))
}

func (s ingestStateMUS) Skip(bs []byte) (n int, err error) {
	return ord.String.Skip(bs)
}

var ChunkRecordMUS = chunkRecordMUS{}

type chunkRecordMUS struct{}

func (s chunkRecordMUS) Marshal(v ChunkRecord, bs []byte) (n int) {
	n = ord.String.Marshal(v.ChunkID, bs)
	n += ord.String.Marshal(v.DocumentID, bs[n:])
	n += varint.Int.Marshal(v.Index, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	n += slicezzIA1LS560SCCjLSsJLuaAΞΞ.Marshal(v.Vector, bs[n:])
	n += map0xH9f6YvHNRJ2raeEZdKwgΞΞ.Marshal(v.Metadata, bs[n:])
	return n + raw.TimeUnixMicro.Marshal(v.IndexedAt, bs[n:])
}

func (s chunkRecordMUS) Unmarshal(bs []byte) (v ChunkRecord, n int, err error) {
	v.ChunkID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.DocumentID, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Index, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Vector, n1, err = slicezzIA1LS560SCCjLSsJLuaAΞΞ.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Metadata, n1, err = map0xH9f6YvHNRJ2raeEZdKwgΞΞ.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.IndexedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	return
}

func (s chunkRecordMUS) Size(v ChunkRecord) (size int) {
	size = ord.String.Size(v.ChunkID)
	size += ord.String.Size(v.DocumentID)
	size += varint.Int.Size(v.Index)
	size += ord.String.Size(v.Text)
	size += slicezzIA1LS560SCCjLSsJLuaAΞΞ.Size(v.Vector)
	size += map0xH9f6YvHNRJ2raeEZdKwgΞΞ.Size(v.Metadata)
	return size + raw.TimeUnixMicro.Size(v.IndexedAt)
}

func (s chunkRecordMUS) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = slicezzIA1LS560SCCjLSsJLuaAΞΞ.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = map0xH9f6YvHNRJ2raeEZdKwgΞΞ.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	return
}

var IngestStatusMUS = ingestStatusMUS{}

type ingestStatusMUS struct{}

func (s ingestStatusMUS) Marshal(v IngestStatus, bs []byte) (n int) {
	n = ord.String.Marshal(v.DocumentID, bs)
	n += IngestStateMUS.Marshal(v.State, bs[n:])
	n += varint.Int.Marshal(v.Chunks, bs[n:])
	n += varint.Int.Marshal(v.Indexed, bs[n:])
	n += varint.Int.Marshal(v.Skipped, bs[n:])
	return n + raw.TimeUnixMicro.Marshal(v.UpdatedAt, bs[n:])
}

func (s ingestStatusMUS) Unmarshal(bs []byte) (v IngestStatus, n int, err error) {
	v.DocumentID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.State, n1, err = IngestStateMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Chunks, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Indexed, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Skipped, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	return
}

func (s ingestStatusMUS) Size(v IngestStatus) (size int) {
	size = ord.String.Size(v.DocumentID)
	size += IngestStateMUS.Size(v.State)
	size += varint.Int.Size(v.Chunks)
	size += varint.Int.Size(v.Indexed)
	size += varint.Int.Size(v.Skipped)
	return size + raw.TimeUnixMicro.Size(v.UpdatedAt)
}

func (s ingestStatusMUS) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = IngestStateMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	return
}
