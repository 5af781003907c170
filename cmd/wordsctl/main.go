package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ternarybob/arbor"

	"github.com/mkbabb/words-sub000/internal/cache"
	"github.com/mkbabb/words-sub000/internal/cache/diskcache"
	"github.com/mkbabb/words-sub000/internal/common"
	"github.com/mkbabb/words-sub000/internal/corpus"
	"github.com/mkbabb/words-sub000/internal/embeddings"
	"github.com/mkbabb/words-sub000/internal/janitor"
	"github.com/mkbabb/words-sub000/internal/lemmatize"
	"github.com/mkbabb/words-sub000/internal/models"
	"github.com/mkbabb/words-sub000/internal/search"
	"github.com/mkbabb/words-sub000/internal/semanticindex"
	"github.com/mkbabb/words-sub000/internal/store"
	"github.com/mkbabb/words-sub000/internal/trie"
	"github.com/mkbabb/words-sub000/internal/versionmanager"
	"github.com/mkbabb/words-sub000/internal/workers"
)

type corpusMgr = versionmanager.Manager[models.CorpusDocument, *models.CorpusDocument]
type trieIndexMgr = versionmanager.Manager[models.TrieIndexDocument, *models.TrieIndexDocument]
type semanticIndexMgr = versionmanager.Manager[models.SemanticIndexDocument, *models.SemanticIndexDocument]

type configPaths []string

func (c *configPaths) String() string { return fmt.Sprintf("%v", *c) }
func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles configPaths
	showVersion = flag.Bool("version", false, "Print version information")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

// app bundles every collaborator wordsctl wires together, mirroring the
// teacher's own internal/app.Application aggregate.
type app struct {
	config   *common.Config
	logger   arbor.ILogger
	db       *store.DB
	disk     *diskcache.Backend
	cacheM   *cache.Manager
	pool     *workers.Pool
	corpora  *corpus.Manager
	corpusVM *corpusMgr
	trieVM   *trieIndexMgr
	indexes  *semanticindex.Manager
	janitor  *janitor.Janitor
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("wordsctl version %s\n", common.GetVersion())
		os.Exit(0)
	}

	if len(configFiles) == 0 {
		if _, err := os.Stat("wordsctl.toml"); err == nil {
			configFiles = append(configFiles, "wordsctl.toml")
		}
	}

	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Err(err).Msg("failed to load configuration")
		os.Exit(1)
	}

	logger := common.SetupLogger(config)
	common.InitLogger(logger)
	common.PrintBanner(config, logger)

	common.InstallCrashHandler("")
	defer common.RecoverWithCrashFile()

	a, err := newApp(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize application")
	}
	defer a.Close()

	args := flag.Args()
	if len(args) > 0 {
		if err := a.runCommand(context.Background(), args[0], args[1:]); err != nil {
			logger.Fatal().Err(err).Str("command", args[0]).Msg("command failed")
		}
		return
	}

	a.runDaemon()
}

// newApp opens the metadata store and disk cache, wires the two-tier
// cache manager, the four versioned-resource managers, the embedding
// provider, and the corpus/semantic-index orchestration layers, in the
// dependency order each collaborator requires.
func newApp(config *common.Config, logger arbor.ILogger) (*app, error) {
	db, err := store.Open(logger, store.Config{
		Path:           config.Storage.Path,
		ResetOnStartup: config.Storage.ResetOnStartup,
	})
	if err != nil {
		return nil, fmt.Errorf("open metadata store: %w", err)
	}

	disk, err := diskcache.Open(logger, diskcache.Config{
		Path:           config.Cache.DiskPath,
		MaxBytes:       config.Cache.DiskMaxBytes,
		ResetOnStartup: config.Cache.DiskResetOnStartup,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open disk cache: %w", err)
	}

	pool := workers.NewPool(4, logger)
	pool.Start()

	cacheM := cache.NewManager(disk, pool, logger, cache.DefaultPolicies())
	inlineThreshold := config.InlineThreshold()

	corpora := versionmanager.New[models.CorpusDocument, *models.CorpusDocument](db, cacheM, models.ResourceTypeCorpus, "corpus_content", inlineThreshold, logger)
	searchIndexes := versionmanager.New[models.SearchIndexDocument, *models.SearchIndexDocument](db, cacheM, models.ResourceTypeSearchIndex, "search_index_content", inlineThreshold, logger)
	trieIndexes := versionmanager.New[models.TrieIndexDocument, *models.TrieIndexDocument](db, cacheM, models.ResourceTypeTrieIndex, "trie_index_content", inlineThreshold, logger)
	semanticIndexes := versionmanager.New[models.SemanticIndexDocument, *models.SemanticIndexDocument](db, cacheM, models.ResourceTypeSemanticIndex, "semantic_index_content", inlineThreshold, logger)

	corpusManager := corpus.NewManager(corpora, searchIndexes, trieIndexes, semanticIndexes, logger)

	provider, err := embeddings.NewProvider(context.Background(), embeddings.Config{
		Provider:      config.Semantic.Provider,
		APIKey:        config.Semantic.APIKey,
		StubDimension: 32,
	}, logger)
	if err != nil {
		disk.Close()
		db.Close()
		return nil, fmt.Errorf("initialize embedding provider: %w", err)
	}

	semanticMgr := semanticindex.NewManager(semanticIndexes, provider, logger)

	j := janitor.New(disk, pool, logger)
	if config.Janitor.Enabled {
		if err := j.Start(config.Janitor.Schedule); err != nil {
			logger.Warn().Err(err).Msg("janitor: failed to start sweep scheduler")
		}
	}

	return &app{
		config:   config,
		logger:   logger,
		db:       db,
		disk:     disk,
		cacheM:   cacheM,
		pool:     pool,
		corpora:  corpusManager,
		corpusVM: corpora,
		trieVM:   trieIndexes,
		indexes:  semanticMgr,
		janitor:  j,
	}, nil
}

func (a *app) Close() {
	a.janitor.Stop()
	a.pool.Shutdown()
	a.disk.Close()
	a.db.Close()
	common.PrintShutdownBanner(a.logger)
}

// runDaemon keeps the process alive so the janitor's cron scheduler and
// any in-flight background semantic-index builds can run, returning as
// soon as SIGINT/SIGTERM arrives (there is no grace period).
func (a *app) runDaemon() {
	a.logger.Info().Msg("wordsctl ready - press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	a.logger.Info().Msg("shutting down")
}

// runCommand dispatches the handful of one-shot subcommands used to
// exercise the storage and versioning core from the shell: build-corpus,
// aggregate, build-search-index, search, delete-corpus, cache-stats.
func (a *app) runCommand(ctx context.Context, name string, args []string) error {
	switch name {
	case "build-corpus":
		return a.cmdBuildCorpus(ctx, args)
	case "aggregate":
		return a.cmdAggregate(ctx, args)
	case "build-search-index":
		return a.cmdBuildSearchIndex(ctx, args)
	case "search":
		return a.cmdSearch(ctx, args)
	case "delete-corpus":
		return a.cmdDeleteCorpus(ctx, args)
	case "cache-stats":
		return a.cmdCacheStats(args)
	default:
		return fmt.Errorf("unknown command %q (want one of: build-corpus, aggregate, build-search-index, search, delete-corpus, cache-stats)", name)
	}
}

func (a *app) cmdBuildCorpus(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("build-corpus", flag.ExitOnError)
	resourceID := fs.String("id", "", "resource ID to save the corpus under")
	language := fs.String("lang", "en", "language tag applied to every word")
	lemmatizeFlag := fs.Bool("lemmatize", false, "run the default English lemmatizer")
	fs.Parse(args)

	if *resourceID == "" {
		return fmt.Errorf("build-corpus: -id is required")
	}
	words := fs.Args()
	if len(words) == 0 {
		return fmt.Errorf("build-corpus: at least one word is required")
	}

	var lem lemmatize.Lemmatizer
	if *lemmatizeFlag {
		lem = lemmatize.Default()
	}

	wordVals := make([]corpus.Word, len(words))
	for i, w := range words {
		wordVals[i] = corpus.Word{Original: w, Language: *language}
	}

	c, err := corpus.Build(ctx, wordVals, lem)
	if err != nil {
		return fmt.Errorf("build corpus: %w", err)
	}

	fields := models.CorpusFields{
		CorpusType:     models.CorpusKindLexicon,
		Language:       *language,
		VocabularyHash: c.VocabularyHash,
		VocabularySize: len(c.Vocabulary),
	}
	snap, err := a.corpusVM.Save(ctx, *resourceID, "default", c, versionmanager.DefaultSaveConfig(), nil, nil, fields)
	if err != nil {
		return fmt.Errorf("save corpus: %w", err)
	}

	a.logger.Info().
		Str("resource_id", *resourceID).
		Int("vocabulary_size", snap.Document.VocabularySize).
		Str("vocabulary_hash", snap.Document.VocabularyHash).
		Msg("corpus saved")
	return nil
}

func (a *app) cmdAggregate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("aggregate", flag.ExitOnError)
	masterID := fs.String("id", "", "resource ID for the aggregated master corpus")
	lemmatizeFlag := fs.Bool("lemmatize", false, "lemmatize the aggregated vocabulary")
	fs.Parse(args)

	if *masterID == "" {
		return fmt.Errorf("aggregate: -id is required")
	}
	children := fs.Args()
	if len(children) == 0 {
		return fmt.Errorf("aggregate: at least one child resource ID is required")
	}

	var lem lemmatize.Lemmatizer
	if *lemmatizeFlag {
		lem = lemmatize.Default()
	}

	snap, err := a.corpora.AggregateVocabularies(ctx, *masterID, children, lem)
	if err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}

	a.logger.Info().
		Str("resource_id", *masterID).
		Int("vocabulary_size", snap.Document.VocabularySize).
		Int("children", len(children)).
		Msg("aggregated corpus saved")
	return nil
}

func (a *app) cmdBuildSearchIndex(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("build-search-index", flag.ExitOnError)
	corpusID := fs.String("corpus", "", "resource ID of the corpus to index")
	modelName := fs.String("model", a.config.Semantic.ModelName, "embedding model name")
	fs.Parse(args)

	if *corpusID == "" {
		return fmt.Errorf("build-search-index: -corpus is required")
	}

	vocabulary, vocabularyHash, err := a.loadVocabulary(ctx, *corpusID)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}

	var trieBuf bytes.Buffer
	if err := trie.Encode(&trieBuf, trie.Build(vocabulary)); err != nil {
		return fmt.Errorf("encode trie index: %w", err)
	}
	trieFields := models.TrieIndexFields{CorpusID: *corpusID, VocabularyHash: vocabularyHash, NumEntries: len(vocabulary)}
	trieSnap, err := a.trieVM.Save(ctx, *corpusID+":trie", "default", trieBuf.Bytes(), versionmanager.DefaultSaveConfig(), nil, nil, trieFields)
	if err != nil {
		return fmt.Errorf("save trie index: %w", err)
	}
	a.logger.Info().Int("num_entries", trieSnap.Document.NumEntries).Msg("trie index saved")

	if !a.config.Semantic.Enabled {
		a.logger.Info().Msg("semantic indexing disabled, skipping embedding build")
		return nil
	}

	indexResourceID := *corpusID + ":semantic"
	semSnap, err := a.indexes.Build(ctx, indexResourceID, *corpusID, *modelName, vocabularyHash, vocabulary)
	if err != nil {
		return fmt.Errorf("build semantic index: %w", err)
	}
	a.logger.Info().
		Int("num_embeddings", semSnap.Document.NumEmbeddings).
		Int("dimension", semSnap.Document.EmbeddingDimension).
		Msg("semantic index saved")
	return nil
}

func (a *app) cmdSearch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	corpusID := fs.String("corpus", "", "resource ID of the corpus to search")
	mode := fs.String("mode", "exact", "exact, fuzzy, or semantic")
	maxResults := fs.Int("max", 10, "maximum number of results")
	fs.Parse(args)

	if *corpusID == "" {
		return fmt.Errorf("search: -corpus is required")
	}
	queryWords := fs.Args()
	if len(queryWords) == 0 {
		return fmt.Errorf("search: a query word is required")
	}
	query := strings.Join(queryWords, " ")

	vocabulary, _, err := a.loadVocabulary(ctx, *corpusID)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}

	buildSemantic := func(ctx context.Context) (*semanticindex.ANN, error) {
		return a.indexes.LoadANN(ctx, *corpusID+":semantic")
	}
	provider, err := embeddings.NewProvider(ctx, embeddings.Config{Provider: a.config.Semantic.Provider, APIKey: a.config.Semantic.APIKey, StubDimension: 32}, a.logger)
	if err != nil {
		return fmt.Errorf("initialize embedding provider: %w", err)
	}
	s := search.FromCorpus(vocabulary, a.config.Semantic.Enabled, a.config.Semantic.ModelName, provider, buildSemantic, a.logger)
	defer s.Close()

	var results []search.Result
	switch *mode {
	case "exact":
		results = s.SearchExact(query)
	case "fuzzy":
		results = s.SearchFuzzy(query, *maxResults, 0.0)
	case "semantic":
		if err := s.AwaitSemanticReady(ctx); err != nil {
			return fmt.Errorf("await semantic index: %w", err)
		}
		results, err = s.SearchSemantic(ctx, query, *maxResults, 0.0)
		if err != nil {
			return fmt.Errorf("semantic search: %w", err)
		}
	default:
		return fmt.Errorf("search: unknown mode %q", *mode)
	}

	out, _ := json.MarshalIndent(results, "", "  ")
	fmt.Println(string(out))
	return nil
}

func (a *app) cmdDeleteCorpus(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete-corpus", flag.ExitOnError)
	resourceID := fs.String("id", "", "resource ID to delete, cascading to its search indexes")
	fs.Parse(args)

	if *resourceID == "" {
		return fmt.Errorf("delete-corpus: -id is required")
	}

	deleted, err := a.corpora.DeleteCorpus(ctx, *resourceID)
	if err != nil {
		return fmt.Errorf("delete corpus: %w", err)
	}
	a.logger.Info().Int("versions_deleted", deleted).Str("resource_id", *resourceID).Msg("corpus deleted")
	return nil
}

func (a *app) cmdCacheStats(args []string) error {
	fs := flag.NewFlagSet("cache-stats", flag.ExitOnError)
	namespace := fs.String("namespace", "", "namespace to report on; all namespaces if unset")
	fs.Parse(args)

	for _, stats := range a.cacheM.Health() {
		if *namespace != "" && stats.Namespace != *namespace {
			continue
		}
		out, _ := json.Marshal(stats)
		fmt.Println(string(out))
	}
	return nil
}

// loadVocabulary fetches a corpus's latest version and decodes its
// normalized vocabulary out of the canonical JSON content, since
// models.CorpusFields carries only the corpus's metadata (hash, size),
// not the vocabulary slice itself.
func (a *app) loadVocabulary(ctx context.Context, corpusResourceID string) ([]string, string, error) {
	snap, err := a.corpusVM.GetLatest(ctx, corpusResourceID, true)
	if err != nil {
		return nil, "", err
	}
	var c corpus.Corpus
	if err := json.Unmarshal(snap.Content, &c); err != nil {
		return nil, "", fmt.Errorf("decode corpus content: %w", err)
	}
	return c.Vocabulary, snap.Document.VocabularyHash, nil
}
