package debug

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/corona10/goimagehash"
	"github.com/golang/snappy"

	"github.com/soocke/llama-bot-go/domain/vision"
)

// dumpMagic opens every frame dump file.
var dumpMagic = [4]byte{'L', 'B', 'F', '1'}

// ErrBadDump is returned by ReadDump for files that are not frame dumps.
var ErrBadDump = errors.New("debug: not a frame dump")

// duplicateDistance is the pHash distance at or below which a frame is
// considered the same screen as the last dump.
const duplicateDistance = 2

// FrameDumper writes snapshots as snappy-compressed BGR files so a failed
// run can be replayed against the matcher offline.
type FrameDumper struct {
	dir    string
	logger *slog.Logger
	now    func() time.Time

	mu   sync.Mutex
	last *goimagehash.ImageHash
}

// NewFrameDumper writes into dir, creating it on first use.
func NewFrameDumper(logger *slog.Logger, dir string) *FrameDumper {
	return &FrameDumper{dir: dir, logger: logger, now: time.Now}
}

// Dump writes snap unless it looks like the previous dump. It returns the
// file path, or "" when skipped.
func (d *FrameDumper) Dump(reason string, snap *vision.Snapshot) (string, error) {
	if snap == nil || !snap.Valid() || snap.Width == 0 {
		return "", nil
	}
	hash, err := goimagehash.PerceptionHash(snap.ToRGBA())
	if err != nil {
		return "", fmt.Errorf("hash frame: %w", err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.last != nil {
		if dist, err := d.last.Distance(hash); err == nil && dist <= duplicateDistance {
			if d.logger != nil {
				d.logger.Debug("frame dump skipped", "reason", reason, "distance", dist)
			}
			return "", nil
		}
	}

	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s-%s.lbf", d.now().Format("20060102-150405.000"), slug(reason))
	path := filepath.Join(d.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := WriteDump(f, snap); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	d.last = hash
	if d.logger != nil {
		d.logger.Info("frame dumped", "reason", reason, "path", path)
	}
	return path, nil
}

// Hook adapts Dump to the agent's abort hook signature.
func (d *FrameDumper) Hook(reason string, snap *vision.Snapshot) {
	if _, err := d.Dump(reason, snap); err != nil && d.logger != nil {
		d.logger.Warn("frame dump failed", "error", err)
	}
}

// WriteDump writes the header and the snappy-framed pixels.
func WriteDump(w io.Writer, snap *vision.Snapshot) error {
	var hdr [12]byte
	copy(hdr[:4], dumpMagic[:])
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(snap.Width))
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(snap.Height))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	sw := snappy.NewBufferedWriter(w)
	if _, err := sw.Write(snap.Pix); err != nil {
		return err
	}
	return sw.Close()
}

// ReadDump reads a file written by WriteDump.
func ReadDump(r io.Reader) (*vision.Snapshot, error) {
	var hdr [12]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDump, err)
	}
	if [4]byte(hdr[:4]) != dumpMagic {
		return nil, ErrBadDump
	}
	w := int(binary.LittleEndian.Uint32(hdr[4:8]))
	h := int(binary.LittleEndian.Uint32(hdr[8:12]))
	snap := &vision.Snapshot{Width: w, Height: h, Pix: make([]byte, w*h*vision.Channels)}
	if _, err := io.ReadFull(snappy.NewReader(r), snap.Pix); err != nil {
		return nil, fmt.Errorf("read pixels: %w", err)
	}
	return snap, nil
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case b.Len() > 0 && !strings.HasSuffix(b.String(), "-"):
			b.WriteByte('-')
		}
		if b.Len() >= 40 {
			break
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "frame"
	}
	return out
}
