// Package app wires configuration into the storage, OCR and pipeline
// components shared by the daemon and the CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/b2breeze/internal/common"
	"github.com/joseph-ayodele/b2breeze/internal/export"
	"github.com/joseph-ayodele/b2breeze/internal/extract"
	"github.com/joseph-ayodele/b2breeze/internal/ingest"
	"github.com/joseph-ayodele/b2breeze/internal/llm"
	"github.com/joseph-ayodele/b2breeze/internal/llm/gemini"
	"github.com/joseph-ayodele/b2breeze/internal/ocr"
	"github.com/joseph-ayodele/b2breeze/internal/pipeline"
	"github.com/joseph-ayodele/b2breeze/internal/repository"
	"github.com/joseph-ayodele/b2breeze/internal/server"
	"github.com/joseph-ayodele/b2breeze/internal/telemetry"
)

type App struct {
	Config    *common.Config
	Logger    *slog.Logger
	DB        *repository.DB
	Files     repository.CardFileRepository
	Jobs      repository.ScanJobRepository
	Contacts  repository.ContactRepository
	Telemetry *telemetry.Provider
	Analyzer  *pipeline.Analyzer
	Processor *pipeline.Processor
	Ingestor  *ingest.FSIngestor
	Export    *export.Service
}

// New connects to the database and builds the scan pipeline from cfg.
func New(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := server.ConnectDB(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	a := &App{
		Config:    cfg,
		Logger:    logger,
		DB:        db,
		Files:     repository.NewCardFileRepository(db, logger),
		Jobs:      repository.NewScanJobRepository(db, logger),
		Contacts:  repository.NewContactRepository(db, logger),
		Telemetry: telemetry.NewProvider(),
	}

	opts := ExtractOptions(cfg)
	refiner, err := NewRefiner(ctx, cfg.LLM, opts, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	a.Analyzer = pipeline.NewAnalyzer(opts, refiner, a.Telemetry, logger)
	a.Analyzer.MinConfidence = cfg.Extract.MinConfidence

	extractor := ocr.NewExtractor(OCRConfig(cfg.OCR), logger)
	if !extractor.Available() {
		logger.Warn("ocr.engine.missing", "tesseract", cfg.OCR.Tesseract)
	}
	a.Processor = pipeline.NewProcessor(logger,
		pipeline.NewOCRStage(a.Files, a.Jobs, extract.NewOCRAdapter(extractor, logger), a.Telemetry, logger),
		pipeline.NewParseStage(a.Jobs, a.Contacts, a.Analyzer, a.Telemetry, logger),
	)
	a.Ingestor = ingest.NewFSIngestor(a.Files, cfg.Ingest.ArtifactDir, a.Telemetry, logger)
	a.Export = export.NewService(a.Contacts, logger)
	return a, nil
}

func (a *App) Close() {
	server.CloseDB(a.DB, a.Logger)
}

func ExtractOptions(cfg *common.Config) extract.Options {
	return extract.Options{DefaultCallingCode: cfg.Extract.DefaultCallingCode}
}

func OCRConfig(c common.OCRConfig) ocr.Config {
	return ocr.Config{
		Tesseract:           c.Tesseract,
		TesseractLang:       c.Lang,
		PSM:                 c.PSM,
		EnableTSVConfidence: c.EnableTSVConfidence,
		HeicConverter:       c.HeicConverter,
		TessdataDir:         c.TessdataDir,
		ArtifactCacheDir:    c.ArtifactCacheDir,
	}
}

// NewRefiner returns a Gemini-backed refiner, or nil when no API key is set.
func NewRefiner(ctx context.Context, c common.LLMConfig, opts extract.Options, logger *slog.Logger) (extract.FieldRefiner, error) {
	if !c.Enabled() {
		logger.Info("llm.refine.disabled")
		return nil, nil
	}
	client, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:            c.APIKey,
		Model:             c.Model,
		Temperature:       c.Temperature,
		Timeout:           c.Timeout,
		RequestsPerMinute: c.RequestsPerMinute,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	r, err := llm.NewRefiner(client, opts, logger)
	if err != nil {
		return nil, fmt.Errorf("refiner: %w", err)
	}
	logger.Info("llm.refine.enabled", "model", client.Model())
	return r, nil
}
