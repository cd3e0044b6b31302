package files

import (
	"context"
	"path/filepath"

	"github.com/spf13/afero"

	"filevault/internal/api"
	"filevault/internal/fsutil"
)

// Downloader writes fetched file bytes into a local directory, the
// terminal equivalent of the browser's save-as action.
type Downloader struct {
	Fs  afero.Fs
	Dir string
}

// Download fetches a file's bytes and saves them under the download
// directory, returning the path written. Existing files are never
// overwritten; a numbered variant is chosen instead. Callers reconcile
// afterwards since the server increments the file's download counter.
func (c *Collection) Download(ctx context.Context, f api.FileRecord, d Downloader) (string, error) {
	data, err := c.client.DownloadFile(ctx, f.ID)
	if err != nil {
		return "", err
	}
	return d.save(f.OriginalName, data)
}

func (d Downloader) save(name string, data []byte) (string, error) {
	if err := d.Fs.MkdirAll(d.Dir, 0o755); err != nil {
		return "", err
	}
	base := fsutil.SafeName(name)
	for n := 1; ; n++ {
		path := filepath.Join(d.Dir, fsutil.NumberedName(base, n))
		ok, err := afero.Exists(d.Fs, path)
		if err != nil {
			return "", err
		}
		if ok {
			continue
		}
		if err := afero.WriteFile(d.Fs, path, data, 0o644); err != nil {
			return "", err
		}
		return path, nil
	}
}
