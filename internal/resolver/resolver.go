package resolver

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"docfill/internal/scanner"
	"docfill/internal/values"
)

type Source string

const (
	SourceAI         Source = "ai"
	SourceFallback   Source = "fallback"
	SourceUnresolved Source = "unresolved"
)

// ResolvedValue binds one token occurrence to the value that will replace
// it. Source records which path produced the value; SourceUnresolved means
// the token is intentionally left in the document.
type ResolvedValue struct {
	Token    scanner.Token   `json:"token"`
	Category values.Category `json:"category"`
	Value    string          `json:"value,omitempty"`
	Source   Source          `json:"source"`
}

// Resolver decides how each placeholder receives its value: the AI
// generator first when one is configured, the synthetic generator on any AI
// failure. Designed-unresolved categories skip generation entirely.
type Resolver struct {
	primary   values.Generator // nil when no AI backend is configured
	fallback  values.Generator
	aiTimeout time.Duration
	logger    *zap.Logger
}

func New(primary, fallback values.Generator, aiTimeout time.Duration, logger *zap.Logger) *Resolver {
	if aiTimeout <= 0 {
		aiTimeout = 20 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		primary:   primary,
		fallback:  fallback,
		aiTimeout: aiTimeout,
		logger:    logger,
	}
}

// Session carries the per-document resolution state: the name cache that
// keeps repeated placeholders identical and the known-value context handed
// to the AI prompt. A session belongs to one fill request and is not safe
// for concurrent use.
type Session struct {
	r     *Resolver
	docID string
	cache map[string]cached
	known map[string]string
}

type cached struct {
	category values.Category
	value    string
	source   Source
}

func (r *Resolver) NewSession(documentID string) *Session {
	return &Session{
		r:     r,
		docID: documentID,
		cache: make(map[string]cached),
		known: make(map[string]string),
	}
}

// Seed preloads resolved values, e.g. from a vessel registry profile, so
// matching tokens carry real data instead of generated data.
func (s *Session) Seed(vals map[string]string) {
	for name, v := range vals {
		if v == "" {
			continue
		}
		s.cache[name] = cached{category: values.Categorize(name), value: v, source: SourceFallback}
		s.known[name] = v
	}
}

// Resolve maps one token to its value. The only error it returns is a
// defect in the fallback generator; AI failures degrade silently to the
// fallback path.
func (s *Session) Resolve(ctx context.Context, tok scanner.Token) (ResolvedValue, error) {
	name := tok.Name
	if c, ok := s.cache[name]; ok {
		return ResolvedValue{Token: tok, Category: c.category, Value: c.value, Source: c.source}, nil
	}

	category := values.Categorize(name)
	if category.DesignedUnresolved() {
		s.cache[name] = cached{category: category, source: SourceUnresolved}
		return ResolvedValue{Token: tok, Category: category, Source: SourceUnresolved}, nil
	}

	req := values.Request{
		DocumentID: s.docID,
		Name:       name,
		Category:   category,
		Known:      s.known,
	}

	if s.r.primary != nil {
		aiCtx, cancel := context.WithTimeout(ctx, s.r.aiTimeout)
		v, err := s.r.primary.GenerateValue(aiCtx, req)
		cancel()
		if err == nil && v != "" {
			s.remember(name, category, v, SourceAI)
			return ResolvedValue{Token: tok, Category: category, Value: v, Source: SourceAI}, nil
		}
		s.r.logger.Debug("ai generation failed, using fallback",
			zap.String("document_id", s.docID),
			zap.String("name", name),
			zap.Error(err))
	}

	v, err := s.r.fallback.GenerateValue(ctx, req)
	if err != nil {
		return ResolvedValue{}, fmt.Errorf("fallback generator failed for %q: %w", name, err)
	}
	if v == "" {
		return ResolvedValue{}, fmt.Errorf("fallback generator returned an empty value for %q", name)
	}
	s.remember(name, category, v, SourceFallback)
	return ResolvedValue{Token: tok, Category: category, Value: v, Source: SourceFallback}, nil
}

// ResolveAll resolves tokens in scan order, checking for cancellation
// between tokens. Scan order makes resolution deterministic for a given
// document.
func (s *Session) ResolveAll(ctx context.Context, tokens []scanner.Token) ([]ResolvedValue, error) {
	resolved := make([]ResolvedValue, 0, len(tokens))
	for _, tok := range tokens {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rv, err := s.Resolve(ctx, tok)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, rv)
	}
	return resolved, nil
}

func (s *Session) remember(name string, category values.Category, v string, src Source) {
	s.cache[name] = cached{category: category, value: v, source: src}
	s.known[name] = v
}
