package service

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/albumatlas/albumatlas-server/internal/analysis"
	"github.com/albumatlas/albumatlas-server/internal/bitindex"
	"github.com/albumatlas/albumatlas-server/internal/domain"
	"github.com/albumatlas/albumatlas-server/internal/errors"
	"github.com/albumatlas/albumatlas-server/internal/ingest"
	"github.com/albumatlas/albumatlas-server/internal/search"
	"github.com/albumatlas/albumatlas-server/internal/store"
	"github.com/albumatlas/albumatlas-server/internal/store/sqlite"
	"github.com/albumatlas/albumatlas-server/internal/taxonomy"
	"github.com/albumatlas/albumatlas-server/internal/validation"
	"github.com/albumatlas/albumatlas-server/internal/vocab"
)

// corpusView bundles the analysis artifacts built from one corpus pass.
// Both members are immutable after construction; a rebuild swaps the
// whole view so readers never see a half-built graph.
type corpusView struct {
	analyzer   *analysis.Analyzer
	similarity *analysis.Similarity
}

// VocabularyService orchestrates tag ingestion and vocabulary state: it
// normalizes raw tags into the catalog, tracks unmapped values, rebuilds
// the co-occurrence graph and relation edges after imports, and keeps
// the search index in sync.
type VocabularyService struct {
	vocab     *store.Store
	catalog   *sqlite.Store
	index     *search.VocabIndex
	groups    *taxonomy.Groups
	hierarchy *taxonomy.Relationships
	simCfg    analysis.SimilarityConfig
	logger    *slog.Logger
	validator *validation.Validator

	mu         sync.RWMutex
	normalizer *vocab.Normalizer
	decomposer *vocab.Decomposer
	view       corpusView
}

// titleCaser renders canonical lowercase tag names as display names.
var titleCaser = cases.Title(language.Und)

// NewVocabularyService creates a vocabulary service over the given
// stores and rule set. The analysis view starts empty; call Rebuild
// after opening stores that already hold albums.
func NewVocabularyService(
	vocabStore *store.Store,
	catalog *sqlite.Store,
	index *search.VocabIndex,
	rules *vocab.Rules,
	simCfg analysis.SimilarityConfig,
	logger *slog.Logger,
) (*VocabularyService, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	normalizer, err := vocab.NewNormalizer(rules)
	if err != nil {
		return nil, err
	}
	decomposer, err := vocab.NewDecomposer(rules)
	if err != nil {
		return nil, err
	}

	analyzer := analysis.NewAnalyzer(nil)
	return &VocabularyService{
		vocab:      vocabStore,
		catalog:    catalog,
		index:      index,
		groups:     taxonomy.NewGroups(),
		hierarchy:  taxonomy.NewRelationships(),
		simCfg:     simCfg,
		logger:     logger,
		validator:  validation.New(),
		normalizer: normalizer,
		decomposer: decomposer,
		view: corpusView{
			analyzer:   analyzer,
			similarity: analysis.NewSimilarity(analyzer, simCfg),
		},
	}, nil
}

// ReloadRules swaps in a new rule set. The normalizer keeps serving the
// old rules if the new set fails to compile. Analysis is not rebuilt
// here; callers decide when a recompute is worth the cost.
func (s *VocabularyService) ReloadRules(rules *vocab.Rules) error {
	decomposer, err := vocab.NewDecomposer(rules)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.normalizer.Reload(rules); err != nil {
		return err
	}
	s.decomposer = decomposer

	s.logger.Info("vocabulary rules reloaded",
		"aliases", len(rules.Aliases),
		"decompositions", len(rules.Decompositions))
	return nil
}

// NormalizeTag canonicalizes a single raw tag string. Returns "" when
// normalization consumes the whole input (stopwords, noise).
func (s *VocabularyService) NormalizeTag(raw string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.normalizer.Normalize(raw)
}

// ExpandTag returns the atomic vocabulary components of a tag after
// normalization: compounds decompose, everything else passes through.
func (s *VocabularyService) ExpandTag(raw string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	normalized := s.normalizer.Normalize(raw)
	if normalized == "" {
		return nil
	}
	return s.decomposer.Expand(normalized)
}

// CategorizeTag classifies a normalized tag into its taxonomy group.
func (s *VocabularyService) CategorizeTag(tag string) taxonomy.Group {
	return s.groups.CategorizeTag(tag)
}

// ImportStats summarizes one ingestion pass.
type ImportStats struct {
	Albums         int `json:"albums"`
	TagOccurrences int `json:"tag_occurrences"`
	NewTags        int `json:"new_tags"`
	Unmapped       int `json:"unmapped"`
}

// ImportFileRequest contains fields for a CSV import.
type ImportFileRequest struct {
	Path string `json:"path" validate:"required"`
}

// ImportFile reads an album CSV export and ingests it.
func (s *VocabularyService) ImportFile(ctx context.Context, req ImportFileRequest) (*ImportStats, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	albums, err := ingest.ReadAlbumsFile(req.Path, s.logger)
	if err != nil {
		return nil, err
	}
	return s.ImportAlbums(ctx, albums)
}

// ImportAlbums ingests a batch of albums: each album is upserted into
// the catalog, its raw tags are normalized and decomposed into
// vocabulary entries, and tags no rule covers are recorded as unmapped.
// Analysis, relations, and the search index are rebuilt once at the end.
func (s *VocabularyService) ImportAlbums(ctx context.Context, albums []*domain.AlbumTags) (*ImportStats, error) {
	if len(albums) == 0 {
		return nil, errors.Validation("no albums to import")
	}

	stats := &ImportStats{}
	for _, album := range albums {
		if err := s.catalog.UpsertAlbum(ctx, album); err != nil {
			return nil, err
		}
		stats.Albums++

		for _, raw := range album.RawTags {
			stats.TagOccurrences++
			created, unmapped, err := s.ingestTag(ctx, raw)
			if err != nil {
				return nil, err
			}
			stats.NewTags += created
			if unmapped {
				stats.Unmapped++
			}
		}
	}

	if err := s.Rebuild(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("albums imported",
		"albums", stats.Albums,
		"tag_occurrences", stats.TagOccurrences,
		"new_tags", stats.NewTags,
		"unmapped", stats.Unmapped)
	return stats, nil
}

// ingestTag normalizes one raw tag sighting into vocabulary entries.
// Returns the number of newly created tags and whether the sighting was
// recorded as unmapped.
func (s *VocabularyService) ingestTag(ctx context.Context, raw string) (int, bool, error) {
	s.mu.RLock()
	normalized := s.normalizer.Normalize(raw)
	var components []string
	if normalized != "" {
		components = s.decomposer.Expand(normalized)
	}
	s.mu.RUnlock()

	if len(components) == 0 {
		if err := s.vocab.RecordUnmappedTag(ctx, raw); err != nil {
			return 0, false, err
		}
		return 0, true, nil
	}

	created := 0
	for _, component := range components {
		tag, isNew, err := s.vocab.FindOrCreateTag(ctx, component, titleCaser.String(component))
		if err != nil {
			return created, false, err
		}
		if isNew {
			created++
			tag.Category = s.normalizer.Category(component)
		}
		tag.Frequency++
		tag.AddAlias(raw)
		if err := s.vocab.UpdateTag(ctx, tag); err != nil {
			return created, false, err
		}
	}
	return created, false, nil
}

// Rebuild recomputes the analysis view from the full catalog, replaces
// the stored relation graph wholesale, and refreshes the search index.
func (s *VocabularyService) Rebuild(ctx context.Context) error {
	lists, err := s.catalog.TagLists(ctx)
	if err != nil {
		return err
	}

	s.mu.RLock()
	canonical := make([][]string, 0, len(lists))
	for _, list := range lists {
		canonical = append(canonical, s.canonicalList(list))
	}
	s.mu.RUnlock()

	analyzer := analysis.NewAnalyzer(canonical)
	similarity := analysis.NewSimilarity(analyzer, s.simCfg)

	relations := make([]domain.TagRelation, 0, len(analyzer.Relationships()))
	for pair := range analyzer.Relationships() {
		relations = append(relations, domain.TagRelation{
			Tag1ID:   pair.A,
			Tag2ID:   pair.B,
			Type:     s.classifyRelation(pair.A, pair.B),
			Strength: similarity.Between(pair.A, pair.B),
		})
	}
	if err := s.vocab.ReplaceRelations(ctx, relations); err != nil {
		return err
	}

	if err := s.syncFrequencies(ctx, analyzer); err != nil {
		return err
	}

	if err := s.reindex(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	s.view = corpusView{analyzer: analyzer, similarity: similarity}
	s.mu.Unlock()

	stats := analyzer.Stats()
	s.logger.Info("analysis rebuilt",
		"albums", stats.AlbumCount,
		"unique_tags", stats.UniqueTags,
		"relations", len(relations))
	return nil
}

// syncFrequencies realigns stored tag frequencies with the analyzer's
// album counts. Album upserts are idempotent but per-sighting increments
// are not, so the catalog-derived count is authoritative for every tag
// the corpus still contains. Excluded tags and tags absent from the
// corpus keep their stored counts.
func (s *VocabularyService) syncFrequencies(ctx context.Context, analyzer *analysis.Analyzer) error {
	tags, err := s.vocab.ListTags(ctx)
	if err != nil {
		return err
	}
	for _, tag := range tags {
		freq := analyzer.Frequency(tag.NormalizedName)
		if tag.Excluded || freq == 0 || tag.Frequency == freq {
			continue
		}
		tag.Frequency = freq
		if err := s.vocab.UpdateTag(ctx, tag); err != nil {
			return err
		}
	}
	return nil
}

// canonicalList maps one album's raw tags to deduplicated atomic
// vocabulary components, preserving first-occurrence order. Caller holds
// at least a read lock.
func (s *VocabularyService) canonicalList(raw []string) []string {
	var out []string
	seen := make(map[string]bool, len(raw))
	for _, r := range raw {
		normalized := s.normalizer.Normalize(r)
		if normalized == "" {
			continue
		}
		for _, component := range s.decomposer.Expand(normalized) {
			if component == "" || seen[component] {
				continue
			}
			seen[component] = true
			out = append(out, component)
		}
	}
	return out
}

// classifyRelation types a co-occurrence edge from the taxonomy: a
// hierarchy edge wins, then either endpoint's group colors the pair.
func (s *VocabularyService) classifyRelation(tag1, tag2 string) domain.RelationType {
	if contains(s.hierarchy.ParentTags(tag2), tag1) || contains(s.hierarchy.ParentTags(tag1), tag2) {
		return domain.RelationParent
	}

	g1, g2 := s.groups.CategorizeTag(tag1), s.groups.CategorizeTag(tag2)
	switch {
	case g1 == taxonomy.GroupRegional || g2 == taxonomy.GroupRegional:
		return domain.RelationRegional
	case g1 == taxonomy.GroupFusion || g2 == taxonomy.GroupFusion:
		return domain.RelationFusion
	case g1 == taxonomy.GroupModifiers || g2 == taxonomy.GroupModifiers:
		return domain.RelationModifier
	default:
		return domain.RelationRelated
	}
}

// reindex pushes the current vocabulary into the search index.
func (s *VocabularyService) reindex(ctx context.Context) error {
	tags, err := s.vocab.ListTags(ctx)
	if err != nil {
		return err
	}

	docs := make([]*search.TagDocument, 0, len(tags))
	for _, tag := range tags {
		if tag.Excluded {
			continue
		}
		docs = append(docs, search.FromTag(tag))
	}
	return s.index.IndexTags(docs)
}

// Analyzer returns the current co-occurrence view.
func (s *VocabularyService) Analyzer() *analysis.Analyzer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view.analyzer
}

// Similarity returns the current pairwise similarity view.
func (s *VocabularyService) Similarity() *analysis.Similarity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view.similarity
}

// components snapshots everything the review workflow needs in one
// consistent read.
func (s *VocabularyService) components() (*vocab.Normalizer, *analysis.Analyzer, *analysis.Similarity) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.normalizer, s.view.analyzer, s.view.similarity
}

// Stats reports corpus-level numbers for the current view.
func (s *VocabularyService) Stats() analysis.Stats {
	return s.Analyzer().Stats()
}

// Tags lists the vocabulary ordered by frequency.
func (s *VocabularyService) Tags(ctx context.Context) ([]*domain.Tag, error) {
	return s.vocab.ListTags(ctx)
}

// Relations lists the current relation graph edges.
func (s *VocabularyService) Relations(ctx context.Context) ([]domain.TagRelation, error) {
	return s.vocab.ListRelations(ctx)
}

// UnmappedTags lists raw tag values no rule covered, most-seen first.
func (s *VocabularyService) UnmappedTags(ctx context.Context) ([]domain.UnmappedTag, error) {
	return s.vocab.ListUnmappedTags(ctx)
}

// ExcludeTagRequest contains fields for excluding a tag.
type ExcludeTagRequest struct {
	TagID string `json:"tag_id" validate:"required"`
}

// ExcludeTag soft-deletes a vocabulary tag and drops it from search.
func (s *VocabularyService) ExcludeTag(ctx context.Context, req ExcludeTagRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	if err := s.vocab.ExcludeTag(ctx, req.TagID); err != nil {
		return err
	}
	if err := s.index.DeleteTag(req.TagID); err != nil {
		return err
	}

	s.logger.Info("tag excluded", "id", req.TagID)
	return nil
}

// SearchTags queries the vocabulary index.
func (s *VocabularyService) SearchTags(ctx context.Context, query, category string, limit int) ([]search.Hit, error) {
	if query == "" && category == "" {
		return nil, errors.Validation("query or category required")
	}
	return s.index.Search(ctx, search.Params{Query: query, Category: category, Limit: limit})
}

// SimilarTags returns tags similar to the given tag at or above the
// threshold, using the blended string, co-occurrence, and network score.
func (s *VocabularyService) SimilarTags(tag string, threshold float64) []analysis.TagScore {
	return s.Similarity().FindSimilarTags(tag, threshold)
}

// FilterAlbums evaluates a boolean tag expression against the catalog
// and returns the matching album ids. The expression matches on
// canonical tags, so "blackmetal" and "Black Metal" address the same
// albums. A nil expression matches every tagged album.
func (s *VocabularyService) FilterAlbums(ctx context.Context, expr bitindex.Expr) ([]int, error) {
	evaluator, err := s.filterEvaluator(ctx)
	if err != nil {
		return nil, err
	}
	return evaluator.Evaluate(expr).ToList(), nil
}

// FilterCounts evaluates a boolean tag expression and reports, per
// visible tag, how many matching albums carry it. Used to drive
// faceted narrowing in review tooling.
func (s *VocabularyService) FilterCounts(ctx context.Context, expr bitindex.Expr, visibleTags []string) ([]bitindex.TagCount, error) {
	evaluator, err := s.filterEvaluator(ctx)
	if err != nil {
		return nil, err
	}
	return evaluator.MatchingCounts(expr, visibleTags), nil
}

// filterEvaluator builds a canonical tag -> album bitset index from the
// catalog.
func (s *VocabularyService) filterEvaluator(ctx context.Context) (*bitindex.Evaluator, error) {
	albums, err := s.catalog.ListAlbums(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	index := make(map[string]*bitindex.BitSet)
	for _, album := range albums {
		for _, tag := range s.canonicalList(album.RawTags) {
			set, ok := index[tag]
			if !ok {
				set = bitindex.New()
				index[tag] = set
			}
			set.Add(album.AlbumID)
		}
	}
	return bitindex.NewEvaluator(index), nil
}

// GroupedTags buckets the current vocabulary by taxonomy group.
func (s *VocabularyService) GroupedTags(ctx context.Context) (map[taxonomy.Group][]string, error) {
	tags, err := s.vocab.ListTags(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.NormalizedName)
	}
	return s.groups.GroupTags(names), nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
