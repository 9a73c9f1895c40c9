package comicarchive

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"unicode/utf16"
)

// 7z property IDs used by the writer.
const (
	idEnd               = 0x00
	idHeader            = 0x01
	idMainStreamsInfo   = 0x04
	idFilesInfo         = 0x05
	idPackInfo          = 0x06
	idUnpackInfo        = 0x07
	idSubStreamsInfo    = 0x08
	idSize              = 0x09
	idCRC               = 0x0a
	idFolder            = 0x0b
	idCodersUnpackSize  = 0x0c
	idNumUnpackStream   = 0x0d
	idEmptyStream       = 0x0e
	idEmptyFile         = 0x0f
	idName              = 0x11
	copyCoderID         = 0x00
	coderSimpleFlagByte = 0x01 // coder id length 1, no attributes, single stream
)

// writeSevenZip emits a 7z container using the Copy codec: a single solid
// folder holding every non-empty entry back to back, with per-entry sizes
// and CRCs carried in a SubStreamsInfo block. This is the layout 7z itself
// produces for solid archives, so any compliant reader splits the folder
// correctly, including the one this package uses for CB7 input.
func writeSevenZip(entries []Entry) ([]byte, error) {
	var packed bytes.Buffer
	var streamSizes []uint64
	var streamCRCs []uint32
	emptyBits := make([]bool, len(entries))
	anyEmpty := false

	for i, entry := range entries {
		if len(entry.Data) == 0 {
			emptyBits[i] = true
			anyEmpty = true
			continue
		}
		if _, err := packed.Write(entry.Data); err != nil {
			return nil, fmt.Errorf("buffer 7z stream %s: %w", entry.Name, err)
		}
		streamSizes = append(streamSizes, uint64(len(entry.Data)))
		streamCRCs = append(streamCRCs, crc32.ChecksumIEEE(entry.Data))
	}

	header := encodeSevenZipHeader(entries, streamSizes, streamCRCs, emptyBits, anyEmpty)

	out := bytes.NewBuffer(make([]byte, 0, 32+packed.Len()+len(header)))
	out.Write(sevenZipMagic)
	out.Write([]byte{0x00, 0x04}) // format version 0.4

	startHeader := make([]byte, 20)
	binary.LittleEndian.PutUint64(startHeader[0:], uint64(packed.Len()))
	binary.LittleEndian.PutUint64(startHeader[8:], uint64(len(header)))
	binary.LittleEndian.PutUint32(startHeader[16:], crc32.ChecksumIEEE(header))

	var crcField [4]byte
	binary.LittleEndian.PutUint32(crcField[:], crc32.ChecksumIEEE(startHeader))
	out.Write(crcField[:])
	out.Write(startHeader)
	out.Write(packed.Bytes())
	out.Write(header)
	return out.Bytes(), nil
}

func encodeSevenZipHeader(entries []Entry, sizes []uint64, crcs []uint32, emptyBits []bool, anyEmpty bool) []byte {
	var buf bytes.Buffer
	buf.WriteByte(idHeader)

	if len(sizes) > 0 {
		var total uint64
		for _, size := range sizes {
			total += size
		}

		buf.WriteByte(idMainStreamsInfo)

		buf.WriteByte(idPackInfo)
		writeSevenZipNumber(&buf, 0) // pack position
		writeSevenZipNumber(&buf, 1) // one packed stream for the solid folder
		buf.WriteByte(idSize)
		writeSevenZipNumber(&buf, total)
		buf.WriteByte(idEnd)

		buf.WriteByte(idUnpackInfo)
		buf.WriteByte(idFolder)
		writeSevenZipNumber(&buf, 1) // one folder
		buf.WriteByte(0x00)          // folders stored inline
		writeSevenZipNumber(&buf, 1) // one coder
		buf.WriteByte(coderSimpleFlagByte)
		buf.WriteByte(copyCoderID)
		buf.WriteByte(idCodersUnpackSize)
		writeSevenZipNumber(&buf, total)
		buf.WriteByte(idEnd)

		// The folder carries no digest of its own; every substream CRC is
		// therefore listed below, so the count the reader expects matches
		// regardless of how many entries share the folder.
		buf.WriteByte(idSubStreamsInfo)
		buf.WriteByte(idNumUnpackStream)
		writeSevenZipNumber(&buf, uint64(len(sizes)))
		if len(sizes) > 1 {
			// Sizes of every substream except the last; the reader derives
			// the final one from the folder's unpack size.
			buf.WriteByte(idSize)
			for _, size := range sizes[:len(sizes)-1] {
				writeSevenZipNumber(&buf, size)
			}
		}
		buf.WriteByte(idCRC)
		buf.WriteByte(0x01) // all digests defined
		for _, crc := range crcs {
			var field [4]byte
			binary.LittleEndian.PutUint32(field[:], crc)
			buf.Write(field[:])
		}
		buf.WriteByte(idEnd)

		buf.WriteByte(idEnd) // close MainStreamsInfo
	}

	if len(entries) > 0 {
		buf.WriteByte(idFilesInfo)
		writeSevenZipNumber(&buf, uint64(len(entries)))

		if anyEmpty {
			emptyStream := packBits(emptyBits)
			buf.WriteByte(idEmptyStream)
			writeSevenZipNumber(&buf, uint64(len(emptyStream)))
			buf.Write(emptyStream)

			emptyCount := 0
			for _, empty := range emptyBits {
				if empty {
					emptyCount++
				}
			}
			// Every streamless item here is a file, never a directory.
			emptyFile := packBits(allTrue(emptyCount))
			buf.WriteByte(idEmptyFile)
			writeSevenZipNumber(&buf, uint64(len(emptyFile)))
			buf.Write(emptyFile)
		}

		var names bytes.Buffer
		names.WriteByte(0x00) // names stored inline
		for _, entry := range entries {
			for _, unit := range utf16.Encode([]rune(entry.Name)) {
				var field [2]byte
				binary.LittleEndian.PutUint16(field[:], unit)
				names.Write(field[:])
			}
			names.Write([]byte{0x00, 0x00})
		}
		buf.WriteByte(idName)
		writeSevenZipNumber(&buf, uint64(names.Len()))
		buf.Write(names.Bytes())

		buf.WriteByte(idEnd) // close FilesInfo
	}

	buf.WriteByte(idEnd) // close Header
	return buf.Bytes()
}

// writeSevenZipNumber emits the 7z variable-length integer encoding: the
// first byte's high bits select how many little-endian continuation bytes
// follow.
func writeSevenZipNumber(buf *bytes.Buffer, value uint64) {
	var firstByte byte
	mask := byte(0x80)
	var extra int
	for extra = 0; extra < 8; extra++ {
		if value < uint64(1)<<(7*(extra+1)) {
			firstByte |= byte(value >> (8 * extra))
			break
		}
		firstByte |= mask
		mask >>= 1
	}
	buf.WriteByte(firstByte)
	for i := 0; i < extra; i++ {
		buf.WriteByte(byte(value >> (8 * i)))
	}
}

// packBits packs booleans MSB-first, the bit order 7z uses for file masks.
func packBits(bits []bool) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, set := range bits {
		if set {
			out[i/8] |= 0x80 >> (i % 8)
		}
	}
	return out
}

func allTrue(n int) []bool {
	bits := make([]bool, n)
	for i := range bits {
		bits[i] = true
	}
	return bits
}
