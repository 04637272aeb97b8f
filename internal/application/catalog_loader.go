package application

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-paddock/internal/domain"
	"github.com/ahrav/go-paddock/internal/observability"
)

// LoadOptions are the inputs a catalog is compiled against besides the
// catalog document itself.
type LoadOptions struct {
	// Roster supplies options for questions with an options_source.
	Roster domain.Roster
	// Races supplies options for questions sourced from the calendar.
	Races []string
	// Overrides adjust or exclude questions by id.
	Overrides map[string]Override
}

// CatalogLoader parses, validates and compiles question catalogs. Compiled
// catalogs are cached by a SHA-256 hash of their normalized inputs.
type CatalogLoader struct {
	// validator performs struct tag validation with the catalog tags registered.
	validator *validator.Validate
	// registry builds question variants from their entries.
	registry *QuestionRegistry
	logger   *observability.Logger
	// cache stores compiled catalogs by input hash. Cached catalogs are
	// shared and MUST NOT be mutated.
	cache   map[string]*Catalog
	cacheMu sync.RWMutex
	// sf prevents duplicate compilation when several goroutines load the
	// same inputs at once.
	sf singleflight.Group
}

// NewCatalogLoader creates a loader. A nil registry uses the built-in
// question types; a nil logger discards output.
func NewCatalogLoader(registry *QuestionRegistry, logger *observability.Logger) (*CatalogLoader, error) {
	v, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}
	if registry == nil {
		registry = NewQuestionRegistry()
	}
	if logger == nil {
		logger = observability.Nop()
	}
	return &CatalogLoader{
		validator: v,
		registry:  registry,
		logger:    logger,
		cache:     make(map[string]*Catalog),
	}, nil
}

// Load compiles a catalog document (YAML or JSON).
// WARNING: The returned catalog is shared with the cache and must not be
// mutated.
func (l *CatalogLoader) Load(ctx context.Context, data []byte, opts LoadOptions) (*Catalog, error) {
	ctx, span := otel.Tracer("catalog-loader").Start(ctx, "CatalogLoader.Load")
	defer span.End()

	config, err := parseCatalog(data)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	hash, err := catalogHash(config, opts)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to calculate hash: %w", err)
	}
	span.SetAttributes(attribute.String("catalog.hash", hash))

	v, err, shared := l.sf.Do(hash, func() (any, error) {
		// Check the cache inside singleflight to close the race between
		// the lookup and group execution.
		if catalog, ok := l.getCached(hash); ok {
			span.SetAttributes(attribute.Bool("catalog.cache_hit", true))
			return catalog, nil
		}

		catalog, err := l.compile(ctx, config, opts)
		if err != nil {
			return nil, err
		}
		catalog.Hash = hash
		l.store(hash, catalog)
		return catalog, nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	catalog := v.(*Catalog)
	span.SetAttributes(
		attribute.Int("catalog.questions", len(catalog.Questions)),
		attribute.Bool("catalog.shared", shared),
	)
	span.SetStatus(codes.Ok, "catalog loaded")
	return catalog, nil
}

// LoadFromFile compiles the catalog at path.
func (l *CatalogLoader) LoadFromFile(ctx context.Context, path string, opts LoadOptions) (*Catalog, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return l.Load(ctx, data, opts)
}

// LoadFromReader compiles the catalog read from r.
func (l *CatalogLoader) LoadFromReader(ctx context.Context, r io.Reader, opts LoadOptions) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}
	return l.Load(ctx, data, opts)
}

// ClearCache drops every compiled catalog.
func (l *CatalogLoader) ClearCache() {
	l.cacheMu.Lock()
	defer l.cacheMu.Unlock()
	l.cache = make(map[string]*Catalog)
}

// parseCatalog accepts either a document with a questions key or a bare
// list of questions. Decoding is strict so misspelled fields fail instead
// of being ignored.
func parseCatalog(data []byte) (*CatalogConfig, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("YAML decode failed: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, fmt.Errorf("%w: empty catalog", domain.ErrNoQuestions)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var config CatalogConfig
	if root.Content[0].Kind == yaml.SequenceNode {
		if err := decoder.Decode(&config.Questions); err != nil {
			return nil, fmt.Errorf("YAML decode failed: %w", err)
		}
		return &config, nil
	}
	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("YAML decode failed: %w", err)
	}
	return &config, nil
}

// catalogHash hashes the normalized inputs so that formatting differences
// in the source do not defeat the cache.
func catalogHash(config *CatalogConfig, opts LoadOptions) (string, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	input := struct {
		Catalog   *CatalogConfig      `yaml:"catalog"`
		Roster    domain.Roster       `yaml:"roster"`
		Races     []string            `yaml:"races"`
		Overrides map[string]Override `yaml:"overrides"`
	}{config, opts.Roster, opts.Races, opts.Overrides}

	if err := encoder.Encode(input); err != nil {
		return "", fmt.Errorf("failed to encode catalog for hashing: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("failed to encode catalog for hashing: %w", err)
	}
	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:]), nil
}

// compile validates config and builds the question variants. Every problem
// found is collected into a single ValidationError.
func (l *CatalogLoader) compile(ctx context.Context, config *CatalogConfig, opts LoadOptions) (*Catalog, error) {
	verr := domain.NewValidationError("catalog")

	if err := l.validator.Struct(config); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return nil, fmt.Errorf("struct validation failed: %w", err)
		}
		for _, fe := range fieldErrs {
			verr.Add(fmt.Errorf("%w: %s", domain.ErrInvalidConfiguration, fe.Error()))
		}
		return nil, verr
	}

	ids := make([]string, 0, len(config.Questions))
	seen := make(map[string]bool, len(config.Questions))
	for _, qc := range config.Questions {
		if seen[qc.ID] {
			verr.Add(domain.NewQuestionError(qc.ID, domain.ErrDuplicateQuestion))
			continue
		}
		seen[qc.ID] = true
		ids = append(ids, qc.ID)
	}

	overrideIDs := make([]string, 0, len(opts.Overrides))
	for id := range opts.Overrides {
		overrideIDs = append(overrideIDs, id)
	}
	sort.Strings(overrideIDs)
	for _, id := range overrideIDs {
		if seen[id] {
			continue
		}
		err := fmt.Errorf("%w: override for %q", domain.ErrUnknownQuestion, id)
		if s := suggest(id, ids); s != "" {
			err = fmt.Errorf("%w (did you mean %q?)", err, s)
		}
		verr.Add(err)
	}

	catalog := &Catalog{
		Roster:    opts.Roster,
		Races:     opts.Races,
		Questions: make([]domain.Question, 0, len(config.Questions)),
		byID:      make(map[string]domain.Question, len(config.Questions)),
	}
	built := make(map[string]bool, len(config.Questions))
	log := l.logger.WithContext(ctx)

	for _, qc := range config.Questions {
		if built[qc.ID] {
			continue
		}
		built[qc.ID] = true

		override := opts.Overrides[qc.ID]
		if override.Excluded() {
			log.Debug("question excluded by override", "question", qc.ID)
			continue
		}

		q, err := l.buildQuestion(qc, override, opts)
		if err != nil {
			verr.Add(domain.NewQuestionError(qc.ID, err))
			continue
		}
		if _, unknown := q.(*domain.UnknownQuestion); unknown {
			args := []any{"question", qc.ID, "type", qc.Type}
			if s := l.registry.SuggestType(qc.Type); s != "" {
				args = append(args, "suggestion", s)
			}
			log.Warn("unknown question type, question will score zero", args...)
		}
		catalog.Questions = append(catalog.Questions, q)
		catalog.byID[qc.ID] = q
	}

	if verr.HasErrors() {
		return nil, verr
	}
	log.Info("catalog compiled", "questions", len(catalog.Questions), "entries", len(config.Questions))
	return catalog, nil
}

func (l *CatalogLoader) buildQuestion(qc QuestionConfig, override Override, opts LoadOptions) (domain.Question, error) {
	if dup := firstDuplicate(qc.Options); dup != "" {
		return nil, fmt.Errorf("%w: %q", domain.ErrDuplicateOption, dup)
	}

	qt := domain.QuestionType(qc.Type)
	points, err := pointsFromNode(qc.Points)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfiguration, err)
	}
	if err := checkShape(qt, points); err != nil {
		return nil, err
	}

	if override.Points != "" {
		replacement, err := pointsFromOverride(override.Points)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfiguration, err)
		}
		// The override must keep the shape the catalog declares, or the
		// type's shape when the catalog omits points.
		if points.Set && replacement.IsTable != points.IsTable {
			return nil, fmt.Errorf("%w: override does not match the catalog's points shape", domain.ErrPointsShape)
		}
		if err := checkShape(qt, replacement); err != nil {
			return nil, err
		}
		points = replacement
	}

	source := domain.OptionsSource(qc.OptionsSource)
	base := domain.Base{
		QID:     qc.ID,
		Prompt:  qc.Prompt,
		Choices: domain.DedupeOptions(qc.Options, opts.Roster.Values(source, opts.Races)),
		Source:  source,
	}

	q, _, err := l.registry.Build(qc, base, points)
	return q, err
}

func firstDuplicate(values []string) string {
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if seen[v] {
			return v
		}
		seen[v] = true
	}
	return ""
}

func (l *CatalogLoader) getCached(hash string) (*Catalog, bool) {
	l.cacheMu.RLock()
	defer l.cacheMu.RUnlock()
	c, ok := l.cache[hash]
	return c, ok
}

func (l *CatalogLoader) store(hash string, c *Catalog) {
	l.cacheMu.Lock()
	defer l.cacheMu.Unlock()
	l.cache[hash] = c
}
