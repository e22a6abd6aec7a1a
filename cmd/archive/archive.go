package archive

import (
	"compress/flate"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/eolymp/autosubmit/cmd/informatics"
	"github.com/mholt/archiver"
	"go.uber.org/zap"
)

const (
	// ReceiptName is the name of receipt file inside the archive
	ReceiptName = "receipt.json"
	// SourceDir is the folder holding submitted source inside the archive
	SourceDir = "source"
)

// Archive keeps a zip with submitted source and its receipt for every confirmed submission
type Archive struct {
	informatics.NopObserver

	dir string
	log *zap.Logger
}

func New(dir string, log *zap.Logger) *Archive {
	if log == nil {
		log = zap.NewNop()
	}

	return &Archive{dir: dir, log: log}
}

// Path of the archive for the receipt
func (a *Archive) Path(receipt *informatics.Receipt) string {
	name := fmt.Sprintf("%s-%s-%s.zip", receipt.ProblemID, receipt.Submission.ContestID, receipt.Submission.RunID)
	return filepath.Join(a.dir, name)
}

func (a *Archive) Submitted(ctx context.Context, receipt *informatics.Receipt) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return fmt.Errorf("unable to create archive dir: %w", err)
	}

	tmp, err := os.MkdirTemp("", "autosubmit-receipt-")
	if err != nil {
		return err
	}

	defer func() {
		_ = os.RemoveAll(tmp)
	}()

	data, err := json.MarshalIndent(receipt, "", "  ")
	if err != nil {
		return err
	}

	manifest := filepath.Join(tmp, ReceiptName)
	if err := os.WriteFile(manifest, data, 0o644); err != nil {
		return err
	}

	source, err := os.ReadFile(receipt.Source)
	if err != nil {
		return fmt.Errorf("unable to read submitted source: %w", err)
	}

	dir := filepath.Join(tmp, SourceDir)
	if err := os.Mkdir(dir, 0o755); err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(dir, filepath.Base(receipt.Source)), source, 0o644); err != nil {
		return err
	}

	z := archiver.Zip{
		CompressionLevel:       flate.DefaultCompression,
		MkdirAll:               true,
		SelectiveCompression:   true,
		OverwriteExisting:      true,
		ImplicitTopLevelFolder: false,
	}

	path := a.Path(receipt)
	if err := z.Archive([]string{dir, manifest}, path); err != nil {
		return fmt.Errorf("unable to archive submission %s: %w", receipt.Submission, err)
	}

	a.log.Info("Submission archived", zap.String("path", path))

	return nil
}
