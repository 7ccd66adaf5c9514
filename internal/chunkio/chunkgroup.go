package chunkio

import "github.com/tsfile-go/tsfile/internal/bytestream"

// WriteChunkGroupHeader emits the marker + device-id framing that opens
// each device's region within a chunk group (spec.md §4.7).
func WriteChunkGroupHeader(sink *bytestream.Stream, deviceID string) error {
	if err := sink.WriteU8(MarkerChunkGroup); err != nil {
		return err
	}
	return sink.WriteBytes([]byte(deviceID))
}

// ReadChunkGroupHeader reads the marker + device-id framing written by
// WriteChunkGroupHeader.
func ReadChunkGroupHeader(r *bytestream.Reader) (string, error) {
	marker, err := r.ReadU8()
	if err != nil {
		return "", err
	}
	if marker != MarkerChunkGroup {
		return "", errInvalidFraming
	}
	deviceID, err := r.ReadBytes()
	if err != nil {
		return "", err
	}
	return string(deviceID), nil
}
