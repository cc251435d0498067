package pipeline

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/nguyentantai21042004/itemflow/internal/processor"
)

const (
	errorsSuffix  = ".errors"
	maxLineLength = 1024 * 1024
)

// HandleFile reads items from path, processes them and writes the results
func (r *implRunner) HandleFile(ctx context.Context, path string) error {
	startTime := time.Now()
	filename := filepath.Base(path)

	items, err := readLines(path)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	r.logger.Info(ctx, "Processing %s (%d items)", path, len(items))

	result := r.proc.ProcessItems(ctx, items)

	errorsPath := filepath.Join(r.paths.Output, filename+errorsSuffix)
	if len(result.Errors) > 0 {
		if err := writeLines(errorsPath, errorReport(result.Errors)); err != nil {
			return fmt.Errorf("write error report: %w", err)
		}
		r.logger.Warn(ctx, "%d items failed, see %s", len(result.Errors), errorsPath)
	} else if err := os.Remove(errorsPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		// a report left from an earlier run of the same file is stale
		return fmt.Errorf("remove stale error report: %w", err)
	}

	if result.Status == processor.StatusFailure {
		return fmt.Errorf("process %s: %w", filename, result.Err())
	}

	outputPath := filepath.Join(r.paths.Output, filename)
	if err := writeLines(outputPath, result.Items); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	if err := r.moveToArchived(ctx, path); err != nil {
		r.logger.Warn(ctx, "Failed to move %s to archived folder: %v", path, err)
	}

	r.logger.Info(ctx, "Finished %s: status=%s processed=%d failed=%d time=%s",
		filename, result.Status, len(result.Items), len(result.Errors), time.Since(startTime))
	return nil
}

// ProcessExisting handles every matching file in the input directory,
// continuing past failures
func (r *implRunner) ProcessExisting(ctx context.Context) error {
	entries, err := os.ReadDir(r.paths.Input)
	if err != nil {
		return fmt.Errorf("read input dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || !r.isInputFile(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(r.paths.Input, e.Name()))
	}
	sort.Strings(files)

	r.logger.Info(ctx, "Found %d input files in %s", len(files), r.paths.Input)

	var errs []error
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}
		r.logger.Info(ctx, "[%d/%d] %s", i+1, len(files), filepath.Base(path))
		if err := r.HandleFile(ctx, path); err != nil {
			r.logger.Error(ctx, "Failed to process %s: %v", path, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// moveToArchived moves the processed input file to the archived folder
func (r *implRunner) moveToArchived(ctx context.Context, path string) error {
	if err := os.MkdirAll(r.paths.Archived, 0755); err != nil {
		return fmt.Errorf("create archived dir: %w", err)
	}
	destPath := filepath.Join(r.paths.Archived, filepath.Base(path))

	r.logger.Debug(ctx, "Archiving: %s -> %s", path, destPath)

	if err := os.Rename(path, destPath); err != nil {
		// If rename fails (e.g. across devices), copy instead
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read source: %w", err)
		}
		if err := os.WriteFile(destPath, data, 0644); err != nil {
			return fmt.Errorf("write destination: %w", err)
		}
		return os.Remove(path)
	}
	return nil
}

func (r *implRunner) isInputFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range r.extensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// errorReport renders one "line N: error" entry per failure, in input order
func errorReport(errs []error) []string {
	type entry struct {
		index int
		text  string
	}

	entries := make([]entry, 0, len(errs))
	for _, err := range errs {
		var itemErr *processor.ItemError
		if errors.As(err, &itemErr) {
			entries = append(entries, entry{itemErr.Index, fmt.Sprintf("line %d: %v", itemErr.Index+1, itemErr.Err)})
			continue
		}
		entries = append(entries, entry{-1, err.Error()})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].index < entries[j].index })

	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.text
	}
	return lines
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func writeLines(path string, lines []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(b.String()), 0644)
}
