package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"docfill/internal/access"
	"docfill/internal/converter"
	"docfill/internal/docx"
	"docfill/internal/filler"
	"docfill/internal/resolver"
	"docfill/internal/scanner"
	"docfill/internal/scorer"
	"docfill/internal/storage"
	"docfill/internal/vessel"
)

// Engine runs the document fill pipeline: scan, resolve, substitute,
// score and render.
type Engine struct {
	store    storage.Store
	access   access.Controller
	resolver *resolver.Resolver
	chain    *converter.Chain
	vessels  *vessel.Registry
	logger   *zap.Logger
	now      func() time.Time
}

// NewEngine wires the pipeline stages together. The vessel registry may
// be nil when no registry data is configured.
func NewEngine(store storage.Store, ctrl access.Controller, res *resolver.Resolver, chain *converter.Chain, vessels *vessel.Registry, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:    store,
		access:   ctrl,
		resolver: res,
		chain:    chain,
		vessels:  vessels,
		logger:   logger,
		now:      time.Now,
	}
}

// TemplateKey returns the blob key holding a stored template.
func TemplateKey(templateID string) string {
	return "templates/" + templateID
}

// DocumentKey returns the metadata key describing a filled document.
func DocumentKey(documentID string) string {
	return "documents/" + documentID
}

func outputKey(documentID string, outcome *converter.Outcome) string {
	if outcome.Degraded {
		return "outputs/" + documentID + "_fallback.txt"
	}
	return "outputs/" + documentID + "_filled." + outcome.Format.Extension()
}

// FillRequest describes one fill-and-render operation.
type FillRequest struct {
	UserID     string
	TemplateID string
	Formats    []converter.Format

	// VesselIMO pins vessel fields to a registered profile instead of
	// generated values.
	VesselIMO string
}

// FillResponse bundles everything one fill produced.
type FillResponse struct {
	DocumentID string
	Fill       *filler.Result
	Quality    scorer.Report
	Outcomes   []*converter.Outcome
	OutputKeys map[converter.Format]string
}

// FillAndRender loads a stored template, fills every placeholder, scores
// the result and renders it into the requested formats. Permission and
// quota are checked before any work starts.
func (e *Engine) FillAndRender(ctx context.Context, req FillRequest) (*FillResponse, error) {
	if err := e.authorizeStage(ctx, req.UserID); err != nil {
		return nil, err
	}

	template, err := e.store.GetBlob(ctx, TemplateKey(req.TemplateID))
	if err != nil {
		return nil, fmt.Errorf("failed to load template %s: %w", req.TemplateID, err)
	}

	documentID := uuid.NewString()
	fillRes, quality, err := e.FillDocument(ctx, documentID, template, e.knownValues(req.VesselIMO))
	if err != nil {
		return nil, err
	}

	outcomes, keys, err := e.renderStage(ctx, documentID, fillRes.DocumentBytes, req.Formats)
	if err != nil {
		return nil, err
	}

	if err := e.recordStage(ctx, documentID, req, quality, keys); err != nil {
		return nil, err
	}

	e.logger.Info("document filled",
		zap.String("document_id", documentID),
		zap.String("template_id", req.TemplateID),
		zap.Int("score", quality.Score),
		zap.Int("resolved", len(fillRes.ResolvedValues)),
		zap.Int("issues", len(fillRes.Issues)))

	return &FillResponse{
		DocumentID: documentID,
		Fill:       fillRes,
		Quality:    quality,
		Outcomes:   outcomes,
		OutputKeys: keys,
	}, nil
}

func (e *Engine) authorizeStage(ctx context.Context, userID string) error {
	if err := e.access.CheckPermission(ctx, userID, access.ActionProcessDocument); err != nil {
		return err
	}
	if _, err := e.access.CheckQuota(ctx, userID, access.ResourceDocuments); err != nil {
		return err
	}
	return nil
}

func (e *Engine) knownValues(imo string) map[string]string {
	if imo == "" || e.vessels == nil {
		return nil
	}
	profile, ok := e.vessels.Lookup(imo)
	if !ok {
		e.logger.Warn("vessel not registered, using generated values", zap.String("imo", imo))
		return nil
	}
	return profile.Values()
}

// FillDocument runs the scan, resolve, substitute and score stages on raw
// template bytes. Known values pre-seed the resolution session so matching
// placeholders resolve to registered data.
func (e *Engine) FillDocument(ctx context.Context, documentID string, template []byte, known map[string]string) (*filler.Result, scorer.Report, error) {
	doc, err := docx.Open(template)
	if err != nil {
		return nil, scorer.Report{}, fmt.Errorf("failed to open document: %w", err)
	}

	named, cleanup, issues := scanner.Normalize(scanner.Scan(doc.Text()))
	e.logger.Debug("scanned template",
		zap.String("document_id", documentID),
		zap.Int("tokens", len(named)),
		zap.Int("cleanup", len(cleanup)))

	session := e.resolver.NewSession(documentID)
	if len(known) > 0 {
		session.Seed(known)
	}
	resolved, err := session.ResolveAll(ctx, named)
	if err != nil {
		return nil, scorer.Report{}, err
	}

	res, err := filler.Fill(doc, resolved, cleanup, issues)
	if err != nil {
		return nil, scorer.Report{}, err
	}

	report, err := scorer.ScoreDocument(res.DocumentBytes)
	if err != nil {
		return nil, scorer.Report{}, err
	}
	return res, report, nil
}

func (e *Engine) renderStage(ctx context.Context, documentID string, document []byte, formats []converter.Format) ([]*converter.Outcome, map[converter.Format]string, error) {
	if len(formats) == 0 {
		formats = []converter.Format{converter.FormatDocx}
	}

	outcomes := make([]*converter.Outcome, len(formats))
	g, gctx := errgroup.WithContext(ctx)
	for i, format := range formats {
		g.Go(func() error {
			outcome, err := e.chain.Convert(gctx, document, format)
			if err != nil {
				return fmt.Errorf("failed to render %s: %w", format, err)
			}
			outcomes[i] = outcome
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	keys := make(map[converter.Format]string, len(outcomes))
	for _, outcome := range outcomes {
		key := outputKey(documentID, outcome)
		if _, err := e.store.PutBlob(ctx, key, outcome.Bytes); err != nil {
			return nil, nil, err
		}
		keys[outcome.Format] = key
	}
	return outcomes, keys, nil
}

func (e *Engine) recordStage(ctx context.Context, documentID string, req FillRequest, quality scorer.Report, keys map[converter.Format]string) error {
	outputs := make(map[string]any, len(keys))
	for format, key := range keys {
		outputs[string(format)] = key
	}

	record := storage.Record{
		"template_id": req.TemplateID,
		"user_id":     req.UserID,
		"score":       quality.Score,
		"tier":        string(quality.Tier),
		"unresolved":  quality.UnresolvedCount,
		"malformed":   quality.MalformedCount,
		"outputs":     outputs,
		"created_at":  e.now().UTC().Format(time.RFC3339),
	}
	if req.VesselIMO != "" {
		record["vessel_imo"] = req.VesselIMO
	}
	if err := e.store.PutMetadata(ctx, DocumentKey(documentID), record); err != nil {
		return err
	}

	return e.store.IncrementUsage(ctx, req.UserID, string(access.ResourceDocuments), e.now())
}
