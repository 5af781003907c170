// Package versionmanager implements the versioned data manager of
// spec.md §4.5: the orchestrator that saves and loads immutable versions
// of typed metadata documents, choosing inline-vs-cache content
// placement, maintaining the version chain, and deduplicating by content
// hash.
package versionmanager

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/mkbabb/words-sub000/internal/cache"
	"github.com/mkbabb/words-sub000/internal/coreerrors"
	"github.com/mkbabb/words-sub000/internal/keys"
	"github.com/mkbabb/words-sub000/internal/models"
	"github.com/mkbabb/words-sub000/internal/serialize"
	"github.com/mkbabb/words-sub000/internal/store"
	"github.com/mkbabb/words-sub000/internal/versionmanager/keylock"
	"github.com/timshannon/badgerhold/v4"
)

// SaveConfig carries the recognized save-time options of spec.md §4.5.
type SaveConfig struct {
	UseCache         bool
	ForceNewVersion  bool
	ForceNewMajor    bool
	ExplicitVersion  string
	TTL              time.Duration
	Compression      serialize.Compression
}

// DefaultSaveConfig returns the recognized option defaults of spec.md
// §4.5: use_cache=true, every other option left at its zero value.
// Callers should start from this rather than a bare SaveConfig{}, since
// Go's zero value for UseCache is false.
func DefaultSaveConfig() SaveConfig {
	return SaveConfig{UseCache: true}
}

// Snapshot is a materialized version of a resource: its metadata document
// plus (for full reads) its decoded content bytes.
type Snapshot[T any] struct {
	Document *T
	Content  []byte
}

// Manager is the generic versioned-data orchestrator for one resource
// type T, where *T implements models.Document (PT is the usual
// pointer-method-set generic idiom: T is the stored struct, PT=*T carries
// EnvelopeRef()).
type Manager[T any, PT interface {
	*T
	models.Document
}] struct {
	typed           store.Of[T]
	cacheMgr        *cache.Manager
	locks           *keylock.Striped
	resourceType    models.ResourceType
	cacheNamespace  string
	inlineThreshold int
	logger          arbor.ILogger
}

// New constructs a Manager for resource type T.
func New[T any, PT interface {
	*T
	models.Document
}](db *store.DB, cacheMgr *cache.Manager, resourceType models.ResourceType, cacheNamespace string, inlineThreshold int, logger arbor.ILogger) *Manager[T, PT] {
	if inlineThreshold <= 0 {
		inlineThreshold = InlineThresholdBytes
	}
	return &Manager[T, PT]{
		typed:           store.Typed[T](db),
		cacheMgr:        cacheMgr,
		locks:           keylock.New(),
		resourceType:    resourceType,
		cacheNamespace:  cacheNamespace,
		inlineThreshold: inlineThreshold,
		logger:          logger,
	}
}

func (m *Manager[T, PT]) ptrCacheNamespace() string { return m.cacheNamespace + "_latest_ptr" }

// Save implements the algorithm of spec.md §4.5.1: serialize once,
// partition metadata, lock per-resource, dedup on identical hash, choose
// storage strategy, compute the next version, write the new latest and
// flip the prior one.
func (m *Manager[T, PT]) Save(ctx context.Context, resourceID, namespace string, content any, cfg SaveConfig, metadataBag map[string]any, tags []string, typedFields any) (*Snapshot[T], error) {
	if resourceID == "" {
		return nil, fmt.Errorf("%w: resource_id is required", coreerrors.ErrInvalidArgument)
	}

	result, err := serialize.Canonicalize(content)
	if err != nil {
		return nil, fmt.Errorf("versionmanager: serialize content: %w", err)
	}

	typedSubset, overflow := serialize.PartitionMetadata(typedFields, metadataBag)
	if len(typedSubset) > 0 && typedFields != nil {
		merged := reflect.New(reflect.TypeOf(typedFields))
		merged.Elem().Set(reflect.ValueOf(typedFields))
		raw, err := json.Marshal(typedSubset)
		if err == nil {
			err = json.Unmarshal(raw, merged.Interface())
		}
		if err != nil {
			return nil, fmt.Errorf("%w: typed metadata: %v", coreerrors.ErrInvalidArgument, err)
		}
		typedFields = merged.Elem().Interface()
	}

	unlock := m.locks.Lock(string(m.resourceType) + ":" + resourceID)
	defer unlock()

	latest, latestErr := m.findLatestLocked(resourceID)
	if latestErr != nil && latestErr != coreerrors.ErrNotFound {
		return nil, latestErr
	}

	if latest != nil && !cfg.ForceNewVersion {
		latestEnv := PT(latest).EnvelopeRef()
		if latestEnv.VersionInfo.DataHash == result.DataHash {
			content, err := m.materialize(ctx, latestEnv)
			if err != nil {
				return nil, err
			}
			return &Snapshot[T]{Document: latest, Content: content}, nil
		}
	}

	var currentVersion string
	var supersedesKey string
	if latest != nil {
		latestEnv := PT(latest).EnvelopeRef()
		currentVersion = latestEnv.VersionInfo.Version
		supersedesKey = latestEnv.Key()
	}

	nextVer, err := nextVersion(currentVersion, cfg.ForceNewMajor, cfg.ExplicitVersion)
	if err != nil {
		return nil, err
	}

	decision := decideStorage(result.SizeBytes, m.inlineThreshold)
	// UseCache=false disables the cache tier for this save; content that
	// would otherwise be offloaded is inlined instead.
	useCacheTier := decision.Inline == false && result.SizeBytes > 0 && cfg.UseCache

	loc := models.ContentLocation{StorageType: models.StorageTypeNone}
	inlineContent := ""

	if useCacheTier {
		cacheKey := keys.ResourceKey(string(m.resourceType), resourceID, "content", shortHash(result.DataHash))
		algo := cfg.Compression
		payload, err := serialize.Compress([]byte(result.JSON), algo)
		if err != nil {
			return nil, fmt.Errorf("versionmanager: compress content: %w", err)
		}
		if err := m.cacheMgr.Set(ctx, m.cacheNamespace, cacheKey, payload); err != nil {
			return nil, fmt.Errorf("versionmanager: write content to cache: %w", err)
		}
		loc = models.ContentLocation{
			StorageType:    models.StorageTypeCache,
			CacheNamespace: m.cacheNamespace,
			CacheKey:       cacheKey,
			SizeBytes:      result.SizeBytes,
			Checksum:       result.DataHash,
			Compression:    algo.String(),
		}
	} else if result.SizeBytes > 0 {
		inlineContent = result.JSON
		loc = models.ContentLocation{
			StorageType: models.StorageTypeInline,
			SizeBytes:   result.SizeBytes,
			Checksum:    result.DataHash,
		}
	}

	var newDoc T
	env := PT(&newDoc).EnvelopeRef()
	*env = models.Envelope{
		ResourceID:   resourceID,
		ResourceType: m.resourceType,
		Namespace:    namespace,
		VersionInfo: models.VersionInfo{
			Version:    nextVer,
			DataHash:   result.DataHash,
			CreatedAt:  time.Now().UTC(),
			IsLatest:   true,
			Supersedes: supersedesKey,
		},
		ContentInline:   inlineContent,
		ContentLocation: loc,
		TTL:             cfg.TTL,
		Metadata:        overflow,
		Tags:            tags,
	}
	setTypedFields(&newDoc, typedFields)

	if err := m.typed.Upsert(env.Key(), &newDoc); err != nil {
		return nil, err
	}

	if latest != nil {
		latestEnv := PT(latest).EnvelopeRef()
		latestEnv.VersionInfo.IsLatest = false
		latestEnv.VersionInfo.SupersededBy = env.Key()
		if err := m.typed.Upsert(latestEnv.Key(), latest); err != nil {
			return nil, err
		}
	}

	if err := m.cacheMgr.Set(ctx, m.ptrCacheNamespace(), resourceID, []byte(env.Key())); err != nil {
		m.logWarn("failed to update latest-version pointer cache", err)
	}

	contentBytes, err := m.materialize(ctx, env)
	if err != nil {
		return nil, err
	}
	return &Snapshot[T]{Document: &newDoc, Content: contentBytes}, nil
}

// GetLatest returns the current latest version of resourceID.
func (m *Manager[T, PT]) GetLatest(ctx context.Context, resourceID string, useCache bool) (*Snapshot[T], error) {
	if useCache {
		if ptr, err := m.cacheMgr.Get(ctx, m.ptrCacheNamespace(), resourceID); err == nil {
			doc, err := m.typed.Get(string(ptr))
			if err == nil {
				env := PT(doc).EnvelopeRef()
				content, err := m.materialize(ctx, env)
				if err != nil {
					return nil, err
				}
				return &Snapshot[T]{Document: doc, Content: content}, nil
			}
		}
	}

	doc, err := m.findLatestLocked(resourceID)
	if err != nil {
		return nil, err
	}
	env := PT(doc).EnvelopeRef()
	if err := m.cacheMgr.Set(ctx, m.ptrCacheNamespace(), resourceID, []byte(env.Key())); err != nil {
		m.logWarn("failed to populate latest-version pointer cache", err)
	}
	content, err := m.materialize(ctx, env)
	if err != nil {
		return nil, err
	}
	return &Snapshot[T]{Document: doc, Content: content}, nil
}

// GetByVersion returns a specific version of resourceID.
func (m *Manager[T, PT]) GetByVersion(ctx context.Context, resourceID, version string) (*Snapshot[T], error) {
	docs, err := m.findAllLocked(resourceID)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		if PT(d).EnvelopeRef().VersionInfo.Version == version {
			content, err := m.materialize(ctx, PT(d).EnvelopeRef())
			if err != nil {
				return nil, err
			}
			return &Snapshot[T]{Document: d, Content: content}, nil
		}
	}
	return nil, coreerrors.ErrNotFound
}

// GetByHash returns the version of resourceID whose content hash matches dataHash.
func (m *Manager[T, PT]) GetByHash(ctx context.Context, resourceID, dataHash string) (*Snapshot[T], error) {
	docs, err := m.findAllLocked(resourceID)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		if PT(d).EnvelopeRef().VersionInfo.DataHash == dataHash {
			content, err := m.materialize(ctx, PT(d).EnvelopeRef())
			if err != nil {
				return nil, err
			}
			return &Snapshot[T]{Document: d, Content: content}, nil
		}
	}
	return nil, coreerrors.ErrNotFound
}

// Query runs an arbitrary badgerhold query against this resource type's
// bucket and returns the matching latest-only documents, for
// collaborators (the corpus subsystem's cascade delete)
// that need to find resources by a typed field rather than by
// resource_id.
func (m *Manager[T, PT]) Query(query *badgerhold.Query) ([]*T, error) {
	docs, err := m.typed.Find(query)
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(docs))
	for i := range docs {
		if PT(&docs[i]).EnvelopeRef().VersionInfo.IsLatest {
			out = append(out, &docs[i])
		}
	}
	return out, nil
}

// ListVersions returns every version's document in chain order (oldest
// first), without materializing content (callers fetch content for a
// specific version via GetByVersion/GetByHash to avoid an N-blob cache
// sweep on a call whose purpose is usually just inspecting the chain).
func (m *Manager[T, PT]) ListVersions(ctx context.Context, resourceID string) ([]*T, error) {
	docs, err := m.findAllLocked(resourceID)
	if err != nil {
		return nil, err
	}
	sort.Slice(docs, func(i, j int) bool {
		return PT(docs[i]).EnvelopeRef().VersionInfo.CreatedAt.Before(PT(docs[j]).EnvelopeRef().VersionInfo.CreatedAt)
	})
	return docs, nil
}

// DeleteResource removes every version in resourceID's chain and its
// associated cache blobs (best-effort), returning the count removed.
func (m *Manager[T, PT]) DeleteResource(ctx context.Context, resourceID string) (int, error) {
	if resourceID == "" {
		return 0, fmt.Errorf("%w: resource_id is required", coreerrors.ErrInvalidArgument)
	}

	unlock := m.locks.Lock(string(m.resourceType) + ":" + resourceID)
	defer unlock()

	docs, err := m.findAllLocked(resourceID)
	if err != nil {
		if err == coreerrors.ErrNotFound {
			return 0, nil
		}
		return 0, err
	}

	count := 0
	for _, d := range docs {
		env := PT(d).EnvelopeRef()
		if env.ContentLocation.StorageType == models.StorageTypeCache {
			if err := m.cacheMgr.Invalidate(ctx, env.ContentLocation.CacheNamespace, env.ContentLocation.CacheKey); err != nil {
				m.logWarn("failed to invalidate content blob during delete", err)
			}
		}
		if err := m.typed.Delete(env.Key()); err != nil {
			m.logWarn("failed to delete document version", err)
			continue
		}
		count++
	}

	if err := m.cacheMgr.Invalidate(ctx, m.ptrCacheNamespace(), resourceID); err != nil {
		m.logWarn("failed to invalidate latest-version pointer cache", err)
	}

	return count, nil
}

func (m *Manager[T, PT]) findAllLocked(resourceID string) ([]*T, error) {
	docs, err := m.typed.Find(badgerhold.Where("ResourceID").Eq(resourceID))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, coreerrors.ErrNotFound
	}
	out := make([]*T, len(docs))
	for i := range docs {
		out[i] = &docs[i]
	}
	return out, nil
}

func (m *Manager[T, PT]) findLatestLocked(resourceID string) (*T, error) {
	docs, err := m.findAllLocked(resourceID)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		if PT(d).EnvelopeRef().VersionInfo.IsLatest {
			return d, nil
		}
	}
	return nil, coreerrors.ErrNotFound
}

// materialize implements the content-read half of spec.md §4.5.4: return
// inline content directly, or fetch+verify a cache-offloaded blob.
func (m *Manager[T, PT]) materialize(ctx context.Context, env *models.Envelope) ([]byte, error) {
	switch env.ContentLocation.StorageType {
	case models.StorageTypeInline:
		return []byte(env.ContentInline), nil
	case models.StorageTypeNone:
		return nil, nil
	case models.StorageTypeCache:
		blob, err := m.cacheMgr.Get(ctx, env.ContentLocation.CacheNamespace, env.ContentLocation.CacheKey)
		if err != nil {
			if err == coreerrors.ErrNotFound {
				return nil, fmt.Errorf("versionmanager: content blob missing for %s: %w", env.Key(), coreerrors.ErrCorruptedCache)
			}
			return nil, fmt.Errorf("versionmanager: fetch content blob: %w", err)
		}
		raw, err := serialize.Decompress(blob)
		if err != nil {
			return nil, fmt.Errorf("versionmanager: decompress content blob: %w", err)
		}
		canon, err := serialize.CanonicalizeBytes(raw)
		if err != nil {
			return nil, fmt.Errorf("versionmanager: recanonicalize content blob: %w", err)
		}
		if canon.DataHash != env.ContentLocation.Checksum {
			return nil, fmt.Errorf("versionmanager: checksum mismatch for %s: %w", env.Key(), coreerrors.ErrCorruptedCache)
		}
		return raw, nil
	default:
		return nil, nil
	}
}

func (m *Manager[T, PT]) logWarn(msg string, err error) {
	if m.logger != nil {
		m.logger.Warn().Err(err).Msg(msg)
	}
}

func shortHash(h string) string {
	if len(h) > 8 {
		return h[:8]
	}
	return h
}

// setTypedFields copies the value held in typedFields into the anonymous
// field of doc whose type matches, without any per-resource-type switch:
// the reflection-based partitioning approach keeps schema evolution out
// of the orchestrator, per spec.md §4.2.
func setTypedFields[T any](doc *T, typedFields any) {
	if typedFields == nil {
		return
	}
	rv := reflect.ValueOf(doc).Elem()
	tfVal := reflect.ValueOf(typedFields)
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if f.Type() == tfVal.Type() {
			f.Set(tfVal)
			return
		}
	}
}
