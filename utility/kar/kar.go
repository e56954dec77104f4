// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package kar is an api for an lz4 backed file format.
// It's purpose is to be well suited for streaming content pack resources
// from it. It's designed to be memory mapped, so (unlike tar) it knows
// where all the files are located before they're read. The archive itself
// is not compressed in any form, rather every file is individually compressed,
// so it can be read from it's place and decompressed on the fly. This
// trades some space for getting resources from disk to a usable state fast.
// It can be read from concurrently.
//
// Layout:
//
//	"KAR\x00" | header length (int64, little endian) | gob Header | data
//
// IndexEntry offsets are relative to the start of data.
package kar

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
)

// package errors
var (
	ErrFileFormat = errors.New("kar: corrupted or not a kar archive")
	ErrNotFound   = errors.New("kar: file not in archive")
	ErrTempFail   = errors.New("kar: temporary folder or file operation failed")
)

// Magic starts every archive.
const Magic = "KAR\x00"

// Sizes relevant to the header of file
const (
	MagicLength            = 4
	HeaderSizeNumberLength = 8

	// MaxHeaderSize guards against reading garbage lengths
	MaxHeaderSize = 64 << 20
)

// IndexEntry is info for one file in the file index.
type IndexEntry struct {
	Name           string
	Offset         int64
	Size           int64
	CompressedSize int64
}

// Header is the file header for kar files.
type Header struct {
	Author      string
	DateCreated int64
	Version     int64
	Index       []IndexEntry
}

// DataOffset returns where the data section starts for an encoded
// header of the given size.
func DataOffset(headerSize int64) int64 {
	return MagicLength + HeaderSizeNumberLength + headerSize
}

func int64ToBinary(num int64) []byte {
	bts := make([]byte, HeaderSizeNumberLength)
	binary.LittleEndian.PutUint64(bts, uint64(num))
	return bts
}

func binaryToint64(bts []byte) (int64, error) {
	if len(bts) < HeaderSizeNumberLength {
		return 0, ErrFileFormat
	}
	return int64(binary.LittleEndian.Uint64(bts)), nil
}

func gobEncode(data interface{}) ([]byte, error) {
	var encoded bytes.Buffer
	enc := gob.NewEncoder(&encoded)
	if err := enc.Encode(data); err != nil {
		return nil, err
	}
	return encoded.Bytes(), nil
}

func gobDecode(obj interface{}, bts []byte) error {
	dec := gob.NewDecoder(bytes.NewBuffer(bts))
	if err := dec.Decode(obj); err != nil {
		return err
	}
	return nil
}
