package flac

import (
	"encoding/binary"
	"fmt"
	"os"
	"time"

	goflac "github.com/go-flac/go-flac"
)

const streamInfoLength = 34

// StreamInfo is the decoded STREAMINFO block of a FLAC file.
type StreamInfo struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
	TotalSamples  uint64
}

// Duration returns the playback length implied by the sample count.
func (s StreamInfo) Duration() time.Duration {
	if s.SampleRate <= 0 {
		return 0
	}
	return time.Duration(s.TotalSamples) * time.Second / time.Duration(s.SampleRate)
}

// ReadStreamInfo parses only the metadata blocks of path and decodes its
// STREAMINFO block.
func ReadStreamInfo(path string) (StreamInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return StreamInfo{}, err
	}
	defer f.Close()

	file, err := goflac.ParseMetadata(f)
	if err != nil {
		return StreamInfo{}, fmt.Errorf("parse flac metadata: %w", err)
	}
	for _, block := range file.Meta {
		if block.Type == goflac.StreamInfo {
			return decodeStreamInfo(block.Data)
		}
	}
	return StreamInfo{}, fmt.Errorf("%s: no STREAMINFO block", path)
}

func decodeStreamInfo(data []byte) (StreamInfo, error) {
	if len(data) < streamInfoLength {
		return StreamInfo{}, fmt.Errorf("STREAMINFO block too short: %d bytes", len(data))
	}
	// 20 bits sample rate, 3 bits channels-1, 5 bits bps-1, 36 bits samples.
	v := binary.BigEndian.Uint64(data[10:18])
	info := StreamInfo{
		SampleRate:    int(v >> 44),
		Channels:      int((v>>41)&0x7) + 1,
		BitsPerSample: int((v>>36)&0x1f) + 1,
		TotalSamples:  v & 0xFFFFFFFFF,
	}
	if info.SampleRate == 0 {
		return StreamInfo{}, fmt.Errorf("STREAMINFO reports zero sample rate")
	}
	return info, nil
}
