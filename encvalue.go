package tightdb

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

const (
	recordFormatVer1      = 1
	recordFormatVerLatest = recordFormatVer1
)

type recordFlags uint64

const (
	rfChecksum = recordFlags(1 << iota)

	rfSupportedMask = rfChecksum
	rfDefault       = rfChecksum

	checksumSize     = 8
	minRecordSize    = 3
	maxRecordHdrSize = binary.MaxVarintLen64 * 3
)

// Stored table format:
//
//  1. Flags (uvarint).
//  2. Format version (uvarint).
//  3. Data size (uvarint).
//  4. Data: msgpack-encoded tableRecord.
//  5. xxhash64 of the data, little-endian (when rfChecksum is set).
func encodeTableRecord(rec *tableRecord) []byte {
	data := encodeMsgPack(nil, rec)

	buf := make([]byte, 0, maxRecordHdrSize+len(data)+checksumSize)
	buf = binary.AppendUvarint(buf, uint64(rfDefault))
	buf = binary.AppendUvarint(buf, recordFormatVerLatest)
	buf = binary.AppendUvarint(buf, uint64(len(data)))
	buf = append(buf, data...)
	buf = binary.LittleEndian.AppendUint64(buf, xxhash.Sum64(data))
	return buf
}

func decodeTableRecord(raw []byte) (*tableRecord, error) {
	orig := raw
	if len(raw) < minRecordSize {
		return nil, dataErrf(orig, 0, nil, "invalid record: at least %d bytes required", minRecordSize)
	}

	v, n := binary.Uvarint(raw)
	if n <= 0 {
		return nil, dataErrf(orig, 0, nil, "invalid record: bad flags")
	}
	if (v &^ uint64(rfSupportedMask)) != 0 {
		return nil, dataErrf(orig, 0, nil, "invalid record: unsupported flags %x", v)
	}
	flags, raw := recordFlags(v), raw[n:]

	v, n = binary.Uvarint(raw)
	if n <= 0 || v != recordFormatVer1 {
		return nil, dataErrf(orig, len(orig)-len(raw), nil, "invalid record: unsupported format version")
	}
	raw = raw[n:]

	dataSize, n := binary.Uvarint(raw)
	if n <= 0 {
		return nil, dataErrf(orig, len(orig)-len(raw), nil, "invalid record: bad data size")
	}
	raw = raw[n:]

	expectedSize := dataSize
	if flags&rfChecksum != 0 {
		expectedSize += checksumSize
	}
	if uint64(len(raw)) != expectedSize {
		return nil, dataErrf(orig, len(orig)-len(raw), nil, "invalid record: got %d bytes for data, expected %d bytes", len(raw), expectedSize)
	}
	data := raw[:dataSize]
	if flags&rfChecksum != 0 {
		stored := binary.LittleEndian.Uint64(raw[dataSize:])
		if actual := xxhash.Sum64(data); actual != stored {
			return nil, dataErrf(orig, len(orig)-len(raw), nil, "invalid record: checksum %016x, expected %016x", actual, stored)
		}
	}

	rec := new(tableRecord)
	if err := decodeMsgPack(data, rec); err != nil {
		return nil, err
	}
	return rec, nil
}
