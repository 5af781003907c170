package semanticindex

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/mkbabb/words-sub000/internal/embeddings"
	"github.com/mkbabb/words-sub000/internal/models"
	"github.com/mkbabb/words-sub000/internal/versionmanager"
)

// batchSize bounds how many words are embedded per provider call, giving
// cooperative cancellation a checkpoint between batches.
const batchSize = 64

type indexMgr = versionmanager.Manager[models.SemanticIndexDocument, *models.SemanticIndexDocument]

// Manager builds and caches the semantic index for a corpus vocabulary.
type Manager struct {
	indexes  *indexMgr
	provider embeddings.Provider
	logger   arbor.ILogger
}

// NewManager constructs a semantic index manager backed by provider for
// embedding generation and indexes for persistence/versioning.
func NewManager(indexes *indexMgr, provider embeddings.Provider, logger arbor.ILogger) *Manager {
	return &Manager{indexes: indexes, provider: provider, logger: logger}
}

// cachedMatrix bundles the embedding matrix with the serialized ANN index,
// the unit persisted inline/in-cache for a SemanticIndexDocument.
type cachedMatrix struct {
	Matrix     []byte `json:"matrix"`
	ANN        []byte `json:"ann"`
	Dimension  int    `json:"dimension"`
	VocabSize  int    `json:"vocabulary_size"`
}

// Build embeds vocabulary (skipping this step is not possible: it is
// always freshly embedded, since a cache hit is handled by the caller
// before Build is ever invoked) and persists the resulting matrix plus ANN
// index as the corpus's SemanticIndex resource. ctx cancellation is
// checked at each batch boundary; a canceled build's partial matrix is
// discarded rather than persisted as a valid (but incomplete) cache entry,
// per spec.md §4.6.5 and §9's num_embeddings>0 validity rule.
func (m *Manager) Build(ctx context.Context, resourceID, corpusID, modelName, vocabularyHash string, vocabulary []string) (*versionmanager.Snapshot[models.SemanticIndexDocument], error) {
	if len(vocabulary) == 0 {
		return nil, fmt.Errorf("semanticindex: cannot build an index over an empty vocabulary")
	}

	vectors := make([][]float32, 0, len(vocabulary))
	for start := 0; start < len(vocabulary); start += batchSize {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("semanticindex: build canceled after %d/%d words: %w", len(vectors), len(vocabulary), ctx.Err())
		default:
		}

		end := start + batchSize
		if end > len(vocabulary) {
			end = len(vocabulary)
		}
		batch, err := m.provider.Embed(ctx, modelName, vocabulary[start:end])
		if err != nil {
			return nil, fmt.Errorf("semanticindex: embed batch [%d:%d]: %w", start, end, err)
		}
		vectors = append(vectors, batch...)
	}

	dim := m.provider.Dimension(modelName)
	ann, err := NewANN(dim)
	if err != nil {
		return nil, err
	}
	defer ann.Close()
	if err := ann.Insert(ctx, vectors); err != nil {
		return nil, err
	}
	annBytes, err := ann.Serialize()
	if err != nil {
		return nil, fmt.Errorf("semanticindex: serialize ann: %w", err)
	}
	matrixBytes, err := EncodeMatrix(vectors)
	if err != nil {
		return nil, err
	}

	payload := cachedMatrix{Matrix: matrixBytes, ANN: annBytes, Dimension: dim, VocabSize: len(vocabulary)}
	fields := models.SemanticIndexFields{
		CorpusID:           corpusID,
		ModelName:          modelName,
		VocabularyHash:     vocabularyHash,
		EmbeddingDimension: dim,
		IndexType:          "sqlite-vec",
		NumEmbeddings:      len(vectors),
	}
	if fields.NumEmbeddings == 0 {
		return nil, fmt.Errorf("semanticindex: refusing to persist a zero-embedding build as valid")
	}

	return m.indexes.Save(ctx, resourceID, "default", payload, versionmanager.DefaultSaveConfig(), nil, nil, fields)
}

// Load fetches the latest SemanticIndex for resourceID, rejecting any
// cached document with NumEmbeddings == 0 as a failed/incomplete build
// rather than a valid cache hit.
func (m *Manager) Load(ctx context.Context, resourceID string) (*versionmanager.Snapshot[models.SemanticIndexDocument], error) {
	snap, err := m.indexes.GetLatest(ctx, resourceID, true)
	if err != nil {
		return nil, err
	}
	if snap.Document.NumEmbeddings <= 0 {
		return nil, fmt.Errorf("semanticindex: cached index %s has num_embeddings=0, treating as invalid", resourceID)
	}
	return snap, nil
}

// LoadANN loads the cached semantic index for resourceID and rehydrates its
// sqlite-vec ANN structure via the native deserialize entrypoint. The
// caller owns the returned ANN and must Close it.
func (m *Manager) LoadANN(ctx context.Context, resourceID string) (*ANN, error) {
	snap, err := m.Load(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	var payload cachedMatrix
	if err := unmarshalJSON(snap.Content, &payload); err != nil {
		return nil, fmt.Errorf("semanticindex: decode cached matrix: %w", err)
	}
	return DeserializeANN(payload.ANN, snap.Document.EmbeddingDimension)
}
