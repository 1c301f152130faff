package types

import "strings"

// PathSeparator joins blob path segments into a key prefix
const PathSeparator = "/"

// BlobPath is an immutable sequence of path segments forming a virtual directory
type BlobPath struct {
	segments []string
}

// NewBlobPath creates a blob path from the given segments
func NewBlobPath(segments ...string) BlobPath {
	return BlobPath{segments: append([]string(nil), segments...)}
}

// Add returns a new path with the segment appended
func (p BlobPath) Add(segment string) BlobPath {
	next := make([]string, len(p.segments), len(p.segments)+1)
	copy(next, p.segments)
	return BlobPath{segments: append(next, segment)}
}

// Segments returns a copy of the path segments
func (p BlobPath) Segments() []string {
	return append([]string(nil), p.segments...)
}

// BuildAsString returns the key prefix for this path.
// Segments are joined with PathSeparator and a trailing separator is appended;
// the root path yields an empty prefix.
func (p BlobPath) BuildAsString() string {
	if len(p.segments) == 0 {
		return ""
	}
	return strings.Join(p.segments, PathSeparator) + PathSeparator
}

func (p BlobPath) String() string {
	return "[" + p.BuildAsString() + "]"
}

// BlobMetadata describes a stored blob relative to its path
type BlobMetadata struct {
	Name   string `json:"name"`
	Length int64  `json:"length"`
}

// ParseBlobPath splits a slash-separated string into a BlobPath, ignoring empty segments
func ParseBlobPath(s string) BlobPath {
	var segments []string
	for _, segment := range strings.Split(s, PathSeparator) {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return BlobPath{segments: segments}
}
