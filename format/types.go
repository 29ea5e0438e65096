// Package format defines the on-disk encodings shared by tdb readers and writers.
package format

import "strings"

// CompressionType identifies the codec a sidecar file was written with.
type CompressionType uint8

const (
	CompressionNone   CompressionType = 0x1 // CompressionNone represents a plain, mmap-able file.
	CompressionZstd   CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2     CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4    CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
	CompressionSnappy CompressionType = 0x5 // CompressionSnappy represents Snappy compression.
)

// SidecarTypes lists the compressed encodings in the order a reader probes them.
var SidecarTypes = []CompressionType{
	CompressionZstd,
	CompressionS2,
	CompressionLZ4,
	CompressionSnappy,
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	case CompressionSnappy:
		return "Snappy"
	default:
		return "Unknown"
	}
}

// Extension returns the file suffix, including the dot, used for files
// compressed with c. CompressionNone has no suffix.
func (c CompressionType) Extension() string {
	switch c {
	case CompressionZstd:
		return ".zst"
	case CompressionS2:
		return ".s2"
	case CompressionLZ4:
		return ".lz4"
	case CompressionSnappy:
		return ".snappy"
	default:
		return ""
	}
}

// ParseCompression maps a codec name such as "zstd" or "none" to its type.
func ParseCompression(name string) (CompressionType, bool) {
	switch strings.ToLower(name) {
	case "", "none":
		return CompressionNone, true
	case "zstd", "zst":
		return CompressionZstd, true
	case "s2":
		return CompressionS2, true
	case "lz4":
		return CompressionLZ4, true
	case "snappy":
		return CompressionSnappy, true
	default:
		return 0, false
	}
}
