package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/b2breeze/constants"
	"github.com/joseph-ayodele/b2breeze/internal/common"
	"github.com/joseph-ayodele/b2breeze/internal/entity"
	"github.com/joseph-ayodele/b2breeze/internal/repository"
	"github.com/joseph-ayodele/b2breeze/internal/telemetry"
)

// FSIngestor reads card files from the local filesystem.
type FSIngestor struct {
	FilesRepo repository.CardFileRepository
	// ArtifactDir receives uploaded cards, named by content hash.
	ArtifactDir string
	Telemetry   *telemetry.Provider
	Logger      *slog.Logger
}

var _ Ingestor = (*FSIngestor)(nil)

func NewFSIngestor(files repository.CardFileRepository, artifactDir string, tel *telemetry.Provider, logger *slog.Logger) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSIngestor{FilesRepo: files, ArtifactDir: artifactDir, Telemetry: tel, Logger: logger}
}

func (i *FSIngestor) IngestPath(ctx context.Context, path string) (IngestionResult, error) {
	var out IngestionResult
	start := time.Now()

	abs, err := filepath.Abs(path)
	if err != nil {
		i.Telemetry.RecordIngest(ResultFailed)
		return out, fmt.Errorf("abs path: %w", err)
	}

	ext := constants.NormalizeExt(filepath.Ext(abs))
	if ext == "" || !AllowedExt(ext) {
		i.Logger.Warn("ingest.rejected", "path", abs, "ext", ext)
		i.Telemetry.RecordIngest(ResultRejected)
		return out, fmt.Errorf("unsupported or missing extension %q: %w", ext, common.ErrInvalidInput)
	}

	f, err := os.Open(abs)
	if err != nil {
		i.Telemetry.RecordIngest(ResultFailed)
		return out, fmt.Errorf("open: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			i.Logger.Warn("ingest.close_failed", "path", abs, "error", err)
		}
	}()

	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		i.Telemetry.RecordIngest(ResultFailed)
		return out, fmt.Errorf("hash: %w", err)
	}
	sum := h.Sum(nil)

	row, dedup, err := i.FilesRepo.UpsertByHash(ctx, &entity.CardFile{
		SourcePath:  abs,
		ContentHash: sum,
		Filename:    filepath.Base(abs),
		FileExt:     ext,
		FileSize:    int(size),
		UploadedAt:  time.Now().UTC(),
	})
	if err != nil {
		i.Telemetry.RecordIngest(ResultFailed)
		return out, err
	}

	result := ResultNew
	if dedup {
		result = ResultDeduplicated
	}
	i.Telemetry.RecordIngest(result)
	i.Logger.Info("ingest.ok",
		"file_id", row.ID,
		"path", row.SourcePath,
		"result", result,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	return IngestionResult{
		SourcePath:   row.SourcePath,
		FileID:       row.ID,
		Deduplicated: dedup,
		HashHex:      hex.EncodeToString(sum),
		FileExt:      row.FileExt,
		UploadedAt:   row.UploadedAt,
	}, nil
}

// IngestBytes writes an uploaded card to ArtifactDir as <sha256>.<ext> and
// ingests the stored copy. Re-uploading the same bytes reuses the file.
func (i *FSIngestor) IngestBytes(ctx context.Context, filename string, data []byte) (IngestionResult, error) {
	ext := constants.NormalizeExt(filepath.Ext(filename))
	if ext == "" || !AllowedExt(ext) {
		i.Telemetry.RecordIngest(ResultRejected)
		return IngestionResult{}, fmt.Errorf("unsupported or missing extension %q: %w", ext, common.ErrInvalidInput)
	}
	if len(data) == 0 {
		i.Telemetry.RecordIngest(ResultRejected)
		return IngestionResult{}, fmt.Errorf("empty upload: %w", common.ErrInvalidInput)
	}
	if strings.TrimSpace(i.ArtifactDir) == "" {
		return IngestionResult{}, common.NewAppError("CONFIG_ERROR", "artifact directory not configured", common.ErrInvalidInput)
	}

	sum := sha256.Sum256(data)
	dst := filepath.Join(i.ArtifactDir, hex.EncodeToString(sum[:])+"."+ext)

	if _, err := os.Stat(dst); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(i.ArtifactDir, 0o755); err != nil {
			return IngestionResult{}, fmt.Errorf("mkdir artifact dir: %w", err)
		}
		tmp := dst + ".tmp"
		if err := os.WriteFile(tmp, data, 0o644); err != nil {
			return IngestionResult{}, fmt.Errorf("write upload: %w", err)
		}
		if err := os.Rename(tmp, dst); err != nil {
			_ = os.Remove(tmp)
			return IngestionResult{}, fmt.Errorf("store upload: %w", err)
		}
		i.Logger.Debug("ingest.upload.stored", "path", dst, "bytes", len(data), "filename", filename)
	} else if err != nil {
		return IngestionResult{}, fmt.Errorf("stat upload: %w", err)
	}

	return i.IngestPath(ctx, dst)
}

// IngestDirectory walks root, skips hidden entries if requested,
// and calls IngestPath for each allowed file.
func (i *FSIngestor) IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]IngestionResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, fmt.Errorf("root_path is required: %w", common.ErrInvalidInput)
	}

	var results []IngestionResult
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, IngestionResult{SourcePath: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++

		r, err := i.IngestPath(ctx, path)
		if err != nil {
			results = append(results, IngestionResult{SourcePath: path, Err: err.Error()})
			stats.Failed++
			return nil
		}
		results = append(results, r)
		stats.Succeeded++
		if r.Deduplicated {
			stats.Deduplicated++
		}
		return nil
	})
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}

	i.Logger.Info("ingest.directory.ok",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"deduplicated", stats.Deduplicated,
		"failed", stats.Failed,
	)
	return results, stats, nil
}
