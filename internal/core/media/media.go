// Package media classifies input files and reads what it can about them
// before they are uploaded.
package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-audio/wav"
)

type Kind string

const (
	Audio Kind = "audio"
	Video Kind = "video"
)

var (
	AudioExtensions = []string{".mp3", ".wav", ".m4a", ".flac", ".ogg", ".opus", ".aac"}
	VideoExtensions = []string{".mp4", ".mov", ".avi", ".mkv", ".flv", ".webm", ".wmv"}
)

// KindOf classifies path by its extension, case-insensitively.
func KindOf(path string) (Kind, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range AudioExtensions {
		if ext == e {
			return Audio, true
		}
	}
	for _, e := range VideoExtensions {
		if ext == e {
			return Video, true
		}
	}
	return "", false
}

// Info describes a media file on disk. Duration, SampleRate and Channels
// are only known for WAV input.
type Info struct {
	Path       string
	Kind       Kind
	Size       int64
	Duration   time.Duration
	SampleRate int
	Channels   int
}

// Probe stats path and, for WAV files, decodes the header. A WAV header that
// cannot be read is not an error; the upload decides what is acceptable.
func Probe(path string) (*Info, error) {
	kind, ok := KindOf(path)
	if !ok {
		return nil, fmt.Errorf("not an audio or video file: %s", path)
	}

	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	info := &Info{
		Path: path,
		Kind: kind,
		Size: fi.Size(),
	}

	if strings.EqualFold(filepath.Ext(path), ".wav") {
		probeWAV(info)
	}

	return info, nil
}

func probeWAV(info *Info) {
	fh, err := os.Open(info.Path)
	if err != nil {
		return
	}
	defer fh.Close()

	dec := wav.NewDecoder(fh)
	if !dec.IsValidFile() {
		return
	}

	info.SampleRate = int(dec.SampleRate)
	info.Channels = int(dec.NumChans)
	if d, err := dec.Duration(); err == nil {
		info.Duration = d
	}
}
