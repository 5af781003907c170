package models

// CorpusKind enumerates the three corpus flavors the platform aggregates.
type CorpusKind string

const (
	CorpusKindLexicon    CorpusKind = "lexicon"
	CorpusKindLanguage   CorpusKind = "language"
	CorpusKindLiterature CorpusKind = "literature"
)

// CorpusFields are the typed fields persisted at the top level of a
// Corpus metadata document, matching spec.md §3.1's Corpus row.
type CorpusFields struct {
	CorpusName      string     `json:"corpus_name" badgerhold:"index"`
	CorpusType      CorpusKind `json:"corpus_type"`
	Language        string     `json:"language"`
	VocabularyHash  string     `json:"vocabulary_hash"`
	VocabularySize  int        `json:"vocabulary_size"`
	IsMaster        bool       `json:"is_master"`
	ParentCorpusID  string     `json:"parent_corpus_id,omitempty" badgerhold:"index"`
	ChildCorpusIDs  []string   `json:"child_corpus_ids,omitempty"`
}

// CorpusDocument is the full persisted document for a Corpus resource:
// the shared envelope plus the corpus-specific typed fields.
type CorpusDocument struct {
	Envelope
	CorpusFields
}

// SearchIndexFields are the typed fields for a SearchIndex resource.
type SearchIndexFields struct {
	CorpusID         string `json:"corpus_id" badgerhold:"index"`
	CorpusName       string `json:"corpus_name"`
	VocabularyHash   string `json:"vocabulary_hash"`
	SemanticEnabled  bool   `json:"semantic_enabled"`
	SemanticModel    string `json:"semantic_model,omitempty"`
	TrieIndexID      string `json:"trie_index_id,omitempty"`
	SemanticIndexID  string `json:"semantic_index_id,omitempty"`
}

// SearchIndexDocument is the full persisted document for a SearchIndex.
type SearchIndexDocument struct {
	Envelope
	SearchIndexFields
}

// TrieIndexFields are the typed fields for a TrieIndex resource.
type TrieIndexFields struct {
	CorpusID       string `json:"corpus_id" badgerhold:"index"`
	VocabularyHash string `json:"vocabulary_hash"`
	NumEntries     int    `json:"num_entries"`
}

// TrieIndexDocument is the full persisted document for a TrieIndex.
type TrieIndexDocument struct {
	Envelope
	TrieIndexFields
}

// SemanticIndexFields are the typed fields for a SemanticIndex resource.
type SemanticIndexFields struct {
	CorpusID           string `json:"corpus_id" badgerhold:"index"`
	ModelName          string `json:"model_name"`
	VocabularyHash     string `json:"vocabulary_hash"`
	EmbeddingDimension int    `json:"embedding_dimension"`
	IndexType          string `json:"index_type"`
	NumEmbeddings      int    `json:"num_embeddings"`
}

// SemanticIndexDocument is the full persisted document for a SemanticIndex.
// Per spec.md §4.6.5, only documents with NumEmbeddings > 0 are valid
// cached builds; a zero value indicates a failed or never-completed build.
type SemanticIndexDocument struct {
	Envelope
	SemanticIndexFields
}

// DictionaryEntryFields are the typed fields for a DictionaryEntry.
type DictionaryEntryFields struct {
	Provider string `json:"provider" badgerhold:"index"`
	Word     string `json:"word" badgerhold:"index"`
	Language string `json:"language"`
}

// DictionaryEntryDocument is the full persisted document for a
// DictionaryEntry (a dictionary-provider response).
type DictionaryEntryDocument struct {
	Envelope
	DictionaryEntryFields
}

// LiteratureEntryFields are the typed fields for a LiteratureEntry.
type LiteratureEntryFields struct {
	Provider string `json:"provider" badgerhold:"index"`
	WorkID   string `json:"work_id" badgerhold:"index"`
}

// LiteratureEntryDocument is the full persisted document for a
// LiteratureEntry (a literature-provider response).
type LiteratureEntryDocument struct {
	Envelope
	LiteratureEntryFields
}

// LanguageEntryFields are the typed fields for a LanguageEntry.
type LanguageEntryFields struct {
	Provider   string `json:"provider" badgerhold:"index"`
	SourceName string `json:"source_name"`
	Language   string `json:"language" badgerhold:"index"`
}

// LanguageEntryDocument is the full persisted document for a
// LanguageEntry (a language-source provider response).
type LanguageEntryDocument struct {
	Envelope
	LanguageEntryFields
}
