package export

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/alexjbarnes/folio/internal/metrics"
	"github.com/alexjbarnes/folio/internal/state"
)

// diffCleanupThreshold is the diff length above which semantic cleanup
// runs before building a patch.
const diffCleanupThreshold = 2

// writeFile writes body to rel under the export dir unless the stored
// fingerprint and the file on disk already match. It reports whether
// the file changed.
func (e *Exporter) writeFile(rel string, body []byte) (bool, error) {
	abs, err := e.resolve(rel)
	if err != nil {
		return false, err
	}
	hash := Fingerprint(body)

	old, readErr := os.ReadFile(abs)
	exists := readErr == nil
	if readErr != nil && !errors.Is(readErr, fs.ErrNotExist) {
		return false, fmt.Errorf("reading %s: %w", rel, readErr)
	}

	if exists && Fingerprint(old) == hash {
		if err := e.remember(rel, hash, len(body)); err != nil {
			return false, err
		}
		e.Recorder.IncExportedPage(metrics.ResultUnchanged)
		return false, nil
	}

	if e.DiffOut != nil {
		e.writeDiff(rel, old, body)
	}

	if e.DryRun {
		return true, nil
	}

	if err := atomicWrite(abs, body); err != nil {
		e.Recorder.IncExportedPage(metrics.ResultFailed)
		return false, fmt.Errorf("writing %s: %w", rel, err)
	}

	if err := e.remember(rel, hash, len(body)); err != nil {
		return false, err
	}

	e.Recorder.IncExportedPage(metrics.ResultWritten)
	e.Logger.Debug("page written", slog.String("path", rel), slog.Int("bytes", len(body)))

	return true, nil
}

// resolve maps rel to an absolute path under the export dir and rejects
// paths that would land outside it.
func (e *Exporter) resolve(rel string) (string, error) {
	abs := filepath.Join(e.Dir, filepath.FromSlash(rel))
	r, err := filepath.Rel(e.Dir, abs)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s: path escapes export dir", rel)
	}
	return abs, nil
}

// remember records the fingerprint of rel unless it is already stored.
func (e *Exporter) remember(rel, hash string, size int) error {
	if e.State == nil || e.DryRun {
		return nil
	}

	rec, err := e.State.GetPage(e.Dir, rel)
	if err == nil && rec != nil && rec.Hash == hash {
		return nil
	}

	rec = &state.PageRecord{Path: rel, Hash: hash, Size: int64(size), ExportedAt: e.now().Unix()}
	if err := e.State.SetPage(e.Dir, *rec); err != nil {
		return fmt.Errorf("recording %s: %w", rel, err)
	}

	return nil
}

func (e *Exporter) writeDiff(rel string, old, body []byte) {
	dmp := diffmatchpatch.New()

	diffs := dmp.DiffMain(string(old), string(body), true)
	if len(diffs) > diffCleanupThreshold {
		diffs = dmp.DiffCleanupSemantic(diffs)
		diffs = dmp.DiffCleanupEfficiency(diffs)
	}

	patches := dmp.PatchMake(string(old), diffs)

	e.diffMu.Lock()
	defer e.diffMu.Unlock()
	fmt.Fprintf(e.DiffOut, "--- %s\n+++ %s\n%s", rel, rel, dmp.PatchToText(patches))
}

// prune removes pages exported by an earlier run that this run did not
// produce, such as posts dropped from the index. It needs State.
func (e *Exporter) prune(res *Result, jobs []job) error {
	if e.State == nil {
		return nil
	}

	keep := make(map[string]bool, len(jobs))
	for _, j := range jobs {
		keep[j.out] = true
	}
	for _, p := range res.Unchanged {
		keep[p] = true
	}
	for _, p := range res.Written {
		keep[p] = true
	}

	all, err := e.State.AllPages(e.Dir)
	if err != nil {
		return fmt.Errorf("listing exported pages: %w", err)
	}

	for rel := range all {
		if keep[rel] {
			continue
		}
		res.Removed = append(res.Removed, rel)
		if e.DryRun {
			continue
		}
		abs, err := e.resolve(rel)
		if err != nil {
			return err
		}
		if err := os.Remove(abs); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", rel, err)
		}
		if err := e.State.DeletePage(e.Dir, rel); err != nil {
			return fmt.Errorf("forgetting %s: %w", rel, err)
		}
		e.Logger.Info("stale page removed", slog.String("path", rel))
	}

	return nil
}

// atomicWrite writes to a temp file in the target directory and renames
// it into place.
func atomicWrite(abs string, body []byte) error {
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("creating directories: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".folio-write-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Chmod(tmpName, filePerm); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting file permissions: %w", err)
	}

	if err := os.Rename(tmpName, abs); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}
