package iconres

import (
	"os"
	"sync/atomic"

	"github.com/pkg/errors"
)

// maxIconFileSize bounds reads of files named like icons.
const maxIconFileSize = 4 << 20

// FileLoader validates .ico files by parsing their directory without any
// native icon subsystem. Handles are synthetic and unique per load.
type FileLoader struct {
	next atomic.Uintptr
}

// Load implements Loader.
func (l *FileLoader) Load(path string) (*Icon, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(err, "stat icon")
	}
	if info.Size() > maxIconFileSize {
		return nil, errors.Errorf("icon %s is too large (%d bytes)", path, info.Size())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read icon")
	}
	if _, err := ParseICO(data); err != nil {
		return nil, errors.Wrapf(err, "decode icon %s", path)
	}
	return NewIcon(l.next.Add(1), path, nil), nil
}

// Fallback implements Loader.
func (l *FileLoader) Fallback() *Icon {
	return NewBuiltinIcon(0)
}
