package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go-stock-opname/internal/model"
	"go-stock-opname/pkg/apperror"
	"go-stock-opname/pkg/logger"
	"go-stock-opname/pkg/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

const (
	ExportFilePrefix = "stock_opname_"
	ExportFileSuffix = ".csv"
	CSVMimeType      = "text/csv"

	exportTimeLayout = "2006-01-02_15-04-05"
	shareTitle       = "Export Data Stok Opname"
)

// ItemSource is the read path the export pipeline needs from the store.
type ItemSource interface {
	FindAll(ctx context.Context) ([]model.StockItem, error)
}

type ExportResult struct {
	FilePath    string `json:"file_path"`
	FileName    string `json:"file_name"`
	RecordCount int    `json:"record_count"`
}

type ExportShareResult struct {
	ExportResult
	Share   ShareResult `json:"share"`
	Message string      `json:"message"`
}

type ExportedFile struct {
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	ModifiedTime time.Time `json:"modified_time"`
}

type ExportService interface {
	ExportToCSV(ctx context.Context) (*ExportResult, error)
	ShareFile(ctx context.Context, filePath, fileName string) (ShareResult, error)
	ExportAndShare(ctx context.Context) (*ExportShareResult, error)
	ListExportedFiles(ctx context.Context) ([]ExportedFile, error)
	DeleteExportedFile(ctx context.Context, filePath string) error
	ReadExportedFile(ctx context.Context, fileName string) ([]byte, error)
	PathFor(fileName string) string
}

type exportService struct {
	items   ItemSource
	fs      afero.Fs
	dir     string
	sharer  Sharer
	metrics *metrics.StockMetrics
	log     zerolog.Logger
	now     func() time.Time
	loc     *time.Location
}

type ExportOption func(*exportService)

func WithClock(now func() time.Time) ExportOption {
	return func(s *exportService) { s.now = now }
}

func WithLocation(loc *time.Location) ExportOption {
	return func(s *exportService) { s.loc = loc }
}

func WithExportMetrics(m *metrics.StockMetrics) ExportOption {
	return func(s *exportService) { s.metrics = m }
}

func NewExportService(items ItemSource, fs afero.Fs, dir string, sharer Sharer, log zerolog.Logger, opts ...ExportOption) ExportService {
	s := &exportService{
		items:  items,
		fs:     fs,
		dir:    filepath.Clean(dir),
		sharer: sharer,
		log:    log.With().Str("component", "export").Logger(),
		now:    time.Now,
		loc:    time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExportFileName returns the artifact name for an export started at t.
func ExportFileName(t time.Time) string {
	return ExportFilePrefix + t.Format(exportTimeLayout) + ExportFileSuffix
}

// IsExportFileName reports whether name follows the export naming pattern.
func IsExportFileName(name string) bool {
	return strings.HasPrefix(name, ExportFilePrefix) && strings.HasSuffix(name, ExportFileSuffix)
}

func (s *exportService) PathFor(fileName string) string {
	return filepath.Join(s.dir, filepath.Base(fileName))
}

// ExportToCSV writes every stock item to a new artifact. The file is written
// under a temporary name and renamed into place, so a failed export leaves
// nothing behind.
func (s *exportService) ExportToCSV(ctx context.Context) (result *ExportResult, err error) {
	started := s.now()
	log := logger.FromContext(ctx, s.log)
	defer func() {
		rows := 0
		if result != nil {
			rows = result.RecordCount
		}
		s.metrics.ObserveExport(time.Since(started), rows, err)
	}()

	items, err := s.items.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperror.ErrNoData
	}

	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return nil, apperror.Wrap(apperror.KindIO, err, "create export directory")
	}

	fileName := ExportFileName(started.In(s.loc))
	filePath := s.PathFor(fileName)

	rows, err := s.writeAtomically(filePath, items)
	if err != nil {
		log.Error().Err(err).Str("file", fileName).Msg("export csv failed")
		return nil, err
	}
	if rows != len(items) {
		_ = s.fs.Remove(filePath)
		return nil, apperror.Newf(apperror.KindIO, "wrote %d of %d rows", rows, len(items))
	}

	log.Info().Str("file", fileName).Int("records", rows).Msg("csv file created")
	return &ExportResult{
		FilePath:    filePath,
		FileName:    fileName,
		RecordCount: rows,
	}, nil
}

func (s *exportService) writeAtomically(filePath string, items []model.StockItem) (int, error) {
	tmpPath := filepath.Join(s.dir, "."+uuid.NewString()+".tmp")
	f, err := s.fs.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, apperror.Wrap(apperror.KindIO, err, "create temp export file")
	}

	rows, writeErr := WriteCSV(f, items, s.loc)
	if writeErr == nil {
		writeErr = f.Sync()
	}
	closeErr := f.Close()
	if writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		_ = s.fs.Remove(tmpPath)
		return 0, apperror.Wrap(apperror.KindIO, writeErr, "write export file")
	}

	if err := s.fs.Rename(tmpPath, filePath); err != nil {
		_ = s.fs.Remove(tmpPath)
		return 0, apperror.Wrap(apperror.KindIO, err, "move export file into place")
	}
	return rows, nil
}

// ShareFile hands an artifact to the sharer. A dismissed share is not an error.
func (s *exportService) ShareFile(ctx context.Context, filePath, fileName string) (ShareResult, error) {
	if _, err := s.fs.Stat(filePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ShareResult{}, apperror.Newf(apperror.KindNotFound, "export file %s not found", fileName)
		}
		return ShareResult{}, apperror.Wrap(apperror.KindIO, err, "stat export file")
	}

	res, err := s.sharer.Share(ctx, ShareRequest{
		FilePath: filePath,
		FileName: fileName,
		MimeType: CSVMimeType,
		Title:    shareTitle,
		Message:  "File CSV berisi " + fileName,
	})
	if err != nil {
		logger.FromContext(ctx, s.log).Error().Err(err).Str("file", fileName).Msg("share export failed")
		if _, ok := apperror.As(err); ok {
			return ShareResult{}, err
		}
		return ShareResult{}, apperror.Wrap(apperror.KindIO, err, "share export file")
	}

	logger.FromContext(ctx, s.log).Info().Str("file", fileName).Str("status", string(res.Status)).Msg("export shared")
	return res, nil
}

// ExportAndShare exports then shares. An export failure skips sharing; a
// share failure returns the export descriptor alongside the error.
func (s *exportService) ExportAndShare(ctx context.Context) (*ExportShareResult, error) {
	exported, err := s.ExportToCSV(ctx)
	if err != nil {
		return nil, err
	}

	out := &ExportShareResult{ExportResult: *exported}
	share, err := s.ShareFile(ctx, exported.FilePath, exported.FileName)
	if err != nil {
		return out, err
	}

	out.Share = share
	out.Message = fmt.Sprintf("Berhasil mengekspor %d data ke CSV", exported.RecordCount)
	return out, nil
}

func (s *exportService) ListExportedFiles(ctx context.Context) ([]ExportedFile, error) {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []ExportedFile{}, nil
		}
		return nil, apperror.Wrap(apperror.KindIO, err, "read export directory")
	}

	files := make([]ExportedFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !IsExportFileName(entry.Name()) {
			continue
		}
		files = append(files, ExportedFile{
			Name:         entry.Name(),
			Path:         s.PathFor(entry.Name()),
			Size:         entry.Size(),
			ModifiedTime: entry.ModTime(),
		})
	}
	return files, nil
}

func (s *exportService) DeleteExportedFile(ctx context.Context, filePath string) error {
	clean, err := s.checkExportPath(filePath)
	if err != nil {
		return err
	}

	if _, err := s.fs.Stat(clean); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperror.Newf(apperror.KindNotFound, "export file %s not found", filepath.Base(clean))
		}
		return apperror.Wrap(apperror.KindIO, err, "stat export file")
	}
	if err := s.fs.Remove(clean); err != nil {
		return apperror.Wrap(apperror.KindIO, err, "delete export file")
	}

	logger.FromContext(ctx, s.log).Info().Str("file", filepath.Base(clean)).Msg("export file deleted")
	return nil
}

func (s *exportService) ReadExportedFile(ctx context.Context, fileName string) ([]byte, error) {
	clean, err := s.checkExportPath(s.PathFor(fileName))
	if err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(s.fs, clean)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperror.Newf(apperror.KindNotFound, "export file %s not found", fileName)
		}
		return nil, apperror.Wrap(apperror.KindIO, err, "read export file")
	}
	return data, nil
}

// checkExportPath accepts only artifact names directly inside the export directory.
func (s *exportService) checkExportPath(filePath string) (string, error) {
	clean := filepath.Clean(filePath)
	if filepath.Dir(clean) != s.dir || !IsExportFileName(filepath.Base(clean)) {
		return "", apperror.Newf(apperror.KindValidation, "%s is not an export file", filePath)
	}
	return clean, nil
}
