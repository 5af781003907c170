package models

// Document is implemented by every resource type's persisted document. It
// lets the version manager operate generically over the shared envelope
// while storage stays strongly typed per resource type (see
// internal/store.Of and internal/versionmanager).
type Document interface {
	EnvelopeRef() *Envelope
}

func (d *CorpusDocument) EnvelopeRef() *Envelope          { return &d.Envelope }
func (d *SearchIndexDocument) EnvelopeRef() *Envelope     { return &d.Envelope }
func (d *TrieIndexDocument) EnvelopeRef() *Envelope       { return &d.Envelope }
func (d *SemanticIndexDocument) EnvelopeRef() *Envelope   { return &d.Envelope }
func (d *DictionaryEntryDocument) EnvelopeRef() *Envelope { return &d.Envelope }
func (d *LiteratureEntryDocument) EnvelopeRef() *Envelope { return &d.Envelope }
func (d *LanguageEntryDocument) EnvelopeRef() *Envelope   { return &d.Envelope }
