package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for tag documents.
//
// Genre vocabulary is short, already-normalized text, so the simple
// analyzer (lowercase, no stemming) fits better than a language
// analyzer: stemming would collapse "progressive" and "progression".
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = simple.Name

	docMapping := bleve.NewDocumentMapping()

	// Name - primary search target.
	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = simple.Name
	nameFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	// Aliases - raw spellings, searchable so "blackmetal" finds the tag.
	aliasFieldMapping := bleve.NewTextFieldMapping()
	aliasFieldMapping.Analyzer = simple.Name
	aliasFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("aliases", aliasFieldMapping)

	// ID - stored but not analyzed.
	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	// Category - exact match filter.
	categoryFieldMapping := bleve.NewTextFieldMapping()
	categoryFieldMapping.Analyzer = keyword.Name
	categoryFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("category", categoryFieldMapping)

	// Frequency - for sorting candidates by corpus weight.
	frequencyFieldMapping := bleve.NewNumericFieldMapping()
	frequencyFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("frequency", frequencyFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
