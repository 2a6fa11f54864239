package augment

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Angabebr/shop-tools/logger"
)

// Result summarises a completed Run.
type Result struct {
	Rows   int
	Images int
	Output string
}

// Run reads the CSV at inputPath, augments it and writes the result to
// outputPath. The output file is only touched once every row has been
// transformed.
func Run(inputPath, outputPath string, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	f, err := os.Open(inputPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, &Error{Kind: KindInputNotFound, Path: inputPath, Err: err}
		}
		return nil, processing(inputPath, err)
	}
	defer f.Close()

	table, err := ReadTable(f)
	if err != nil {
		return nil, processing(inputPath, err)
	}

	out, reports, err := augment(table, opts)
	if err != nil {
		return nil, err
	}

	res := &Result{Rows: len(reports), Output: outputPath}
	for _, r := range reports {
		res.Images += r.Images
		logger.InfoWithFields("row augmented", logger.Fields{
			"row":       r.Line,
			"images":    r.Images,
			"placement": string(opts.Placement),
		})
	}

	if err := writeFile(outputPath, out); err != nil {
		return nil, processing(outputPath, err)
	}

	logger.InfoWithFields("augmented CSV saved", logger.Fields{
		"rows":   res.Rows,
		"images": res.Images,
		"output": outputPath,
	})
	return res, nil
}

// writeFile writes t to a temp file next to path and renames it into place.
// An existing output keeps its permission bits.
func writeFile(path string, t *Table) error {
	mode := fs.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := WriteTable(tmp, t); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
