package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/orneryd/nornicvec/pkg/arena"
	"github.com/orneryd/nornicvec/pkg/config"
	"github.com/orneryd/nornicvec/pkg/embed"
	"github.com/orneryd/nornicvec/pkg/gpu"
	"github.com/orneryd/nornicvec/pkg/llm"
	"github.com/orneryd/nornicvec/pkg/metadata"
	"github.com/orneryd/nornicvec/pkg/notesanitize"
	"github.com/orneryd/nornicvec/pkg/nvecerr"
	"github.com/orneryd/nornicvec/pkg/textstore"
	"github.com/orneryd/nornicvec/pkg/tokenizer"
	"github.com/orneryd/nornicvec/pkg/vectorindex"
)

// RecallResult is one scored hit with its note text attached, ready for the
// CLI to print.
type RecallResult struct {
	ID    uint64
	Score float32
	Text  string
}

// Store is the engine backing the save/recall/clear surface: one shared
// llm.Engine for embedding, and the three parallel sidecar stores the
// engine's vectors, notes, and metadata live in.
type Store struct {
	mu sync.Mutex

	cfg   *config.Config
	arena *arena.Arena
	mgr   *gpu.Manager

	engine    *llm.Engine
	tokenizer *tokenizer.Tokenizer
	embedder  *embed.Embedder

	index *vectorindex.Index
	text  *textstore.Store
	meta  *metadata.Store
	wal   *wal

	idxPath, txtPath, metaPath string
}

// Open loads (or creates) the sidecar stores for base under cfg.DBDir,
// loads the checkpoint and tokenizer cfg points at, and replays any WAL
// entries left behind by a crash between a save's memory mutation and its
// sidecar flushes.
func Open(cfg *config.Config, base string) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nvecerr.User("store.Open", err)
	}

	gpuCfg, err := cfg.GPUManagerConfig()
	if err != nil {
		return nil, nvecerr.Fatal("store.Open: gpu config", err)
	}
	mgr, err := gpu.NewManager(gpuCfg)
	if err != nil {
		return nil, nvecerr.Fatal("store.Open: gpu init", err)
	}
	device := mgr.Device()

	modelConfig, weights, err := loadCheckpoint(cfg.CheckpointPath)
	if err != nil {
		mgr.Release()
		return nil, nvecerr.Fatal("store.Open: checkpoint", err)
	}

	tok, err := loadTokenizer(cfg.TokenizerPath, int(modelConfig.VocabSize))
	if err != nil {
		mgr.Release()
		return nil, nvecerr.Fatal("store.Open: tokenizer", err)
	}

	engine, err := llm.NewEngine(modelConfig, weights, device)
	if err != nil {
		mgr.Release()
		return nil, nvecerr.Fatal("store.Open: engine", err)
	}

	idxPath, txtPath, metaPath := paths(cfg.DBDir, base)

	if err := os.MkdirAll(filepath.Dir(idxPath), 0755); err != nil {
		mgr.Release()
		return nil, nvecerr.IO("store.Open: creating db dir", err)
	}

	index, err := loadOrCreateIndex(idxPath, int(modelConfig.Dim), cfg.Capacity, device)
	if err != nil {
		mgr.Release()
		return nil, nvecerr.IO("store.Open: index", err)
	}
	text, err := loadOrCreateText(txtPath, cfg.Capacity)
	if err != nil {
		mgr.Release()
		return nil, nvecerr.IO("store.Open: text", err)
	}
	meta, err := loadOrCreateMeta(metaPath, cfg.Capacity)
	if err != nil {
		mgr.Release()
		return nil, nvecerr.IO("store.Open: metadata", err)
	}

	w, err := openWAL(idxPath + ".wal")
	if err != nil {
		mgr.Release()
		return nil, nvecerr.Fatal("store.Open: wal", err)
	}

	s := &Store{
		cfg:       cfg,
		arena:     arena.New(cfg.ArenaBytes),
		mgr:       mgr,
		engine:    engine,
		tokenizer: tok,
		embedder:  embed.New(engine, tok, int(modelConfig.Dim)),
		index:     index,
		text:      text,
		meta:      meta,
		wal:       w,
		idxPath:   idxPath,
		txtPath:   txtPath,
		metaPath:  metaPath,
	}

	if err := s.recover(); err != nil {
		w.close()
		mgr.Release()
		return nil, err
	}
	return s, nil
}

func loadCheckpoint(path string) (*llm.Config, *llm.Weights, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return llm.LoadCheckpoint(f)
}

func loadTokenizer(path string, vocabSize int) (*tokenizer.Tokenizer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return tokenizer.Load(f, vocabSize)
}

func loadOrCreateIndex(path string, dim, capacity int, device gpu.Device) (*vectorindex.Index, error) {
	if _, err := os.Stat(path); err == nil {
		return vectorindex.Load(path, device)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("checking %s: %w", path, err)
	}
	return vectorindex.Create(dim, vectorindex.MetricCosine, capacity, device)
}

func loadOrCreateText(path string, capacity int) (*textstore.Store, error) {
	if _, err := os.Stat(path); err == nil {
		return textstore.Load(path)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("checking %s: %w", path, err)
	}
	return textstore.Create(capacity), nil
}

func loadOrCreateMeta(path string, capacity int) (*metadata.Store, error) {
	if _, err := os.Stat(path); err == nil {
		return metadata.Load(path)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("checking %s: %w", path, err)
	}
	return metadata.Create(capacity), nil
}

// paths implements the §6 persisted-state layout: a base containing a path
// separator is used verbatim, otherwise it is joined under dbDir.
func paths(dbDir, base string) (idx, txt, meta string) {
	full := base
	if !strings.ContainsRune(base, '/') && !strings.ContainsRune(base, filepath.Separator) {
		full = filepath.Join(dbDir, base)
	}
	return full + ".memo", full + ".txt", full + ".meta"
}

// recover replays any WAL entries left pending by a crash between a save's
// memory mutation and the point its three sidecar files were all flushed
// and the entry committed.
func (s *Store) recover() error {
	pending, err := s.wal.pending()
	if err != nil {
		return nvecerr.Fatal("store.Open: wal scan", err)
	}
	if len(pending) == 0 {
		return nil
	}

	for _, p := range pending {
		if err := s.applyEntry(p.Entry); err != nil {
			return nvecerr.Fatal("store.Open: wal replay", err)
		}
	}
	if err := s.flush(); err != nil {
		return nvecerr.Fatal("store.Open: wal replay flush", err)
	}
	for _, p := range pending {
		if err := s.wal.commit(p.Seq); err != nil {
			return nvecerr.Fatal("store.Open: wal replay commit", err)
		}
	}
	return nil
}

// applyEntry mutates the three in-memory stores for one WAL entry. It is
// idempotent: a store already at or past e.Row is left untouched, so
// replaying an entry that partially flushed before a crash only brings the
// lagging stores up to date.
func (s *Store) applyEntry(e walEntry) error {
	if e.Override {
		if s.index.Count() > e.Row {
			if err := s.index.Set(e.Row, e.Vec); err != nil {
				return err
			}
		}
		if s.text.Count() > e.Row {
			if err := s.text.Set(e.Row, e.Note); err != nil {
				return err
			}
		}
		if s.meta.Count() > e.Row {
			if err := s.meta.Set(e.Row, e.MetaFlow); err != nil {
				return err
			}
		}
		return nil
	}

	if s.index.Count() == e.Row {
		if err := s.index.Add(uint64(e.Row), e.Vec); err != nil {
			return err
		}
	}
	if s.text.Count() == e.Row {
		if _, err := s.text.Add(e.Note); err != nil {
			return err
		}
	}
	if s.meta.Count() == e.Row {
		if _, err := s.meta.Add(e.MetaFlow); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) flush() error {
	if err := s.index.Save(s.idxPath); err != nil {
		return fmt.Errorf("index: %w", err)
	}
	if err := s.text.Save(s.txtPath); err != nil {
		return fmt.Errorf("text: %w", err)
	}
	if err := s.meta.Save(s.metaPath); err != nil {
		return fmt.Errorf("metadata: %w", err)
	}
	return nil
}

// Save embeds note (after sanitizing it) and appends it as a new row, or,
// when id is non-nil, overwrites the existing row id names. It returns the
// row id the note now lives at. A failure before the WAL append leaves
// every store and file untouched. After it, the WAL entry is durable
// before any in-memory store is mutated, and each sidecar file is replaced
// through a temp file and rename. If a later flush fails, the files already
// replaced hold the new row while the rest do not, and the in-memory stores
// keep the change; the entry stays pending in the WAL, and the next Open
// replays it so all three files agree again.
func (s *Store) Save(id *uint64, note, metaFlow string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	note = notesanitize.Clean(note)
	if note == "" {
		return 0, nvecerr.User("store.Save", nvecerr.ErrEmptyNote)
	}

	override := id != nil
	var row int
	if override {
		row = int(*id)
		if row < 0 || row >= s.index.Count() {
			return 0, nvecerr.User("store.Save", nvecerr.ErrUnknownOverrideID)
		}
	} else {
		row = s.index.Count()
		if row >= s.cfg.Capacity {
			return 0, nvecerr.User("store.Save", nvecerr.ErrIndexFull)
		}
	}

	vec, err := s.embedder.Embed(note)
	if err != nil {
		return 0, nvecerr.User("store.Save: embed", err)
	}

	entry := walEntry{Row: row, Override: override, Note: note, MetaFlow: metaFlow, Vec: vec}
	seq, err := s.wal.append(entry)
	if err != nil {
		return 0, nvecerr.IO("store.Save: wal append", err)
	}

	if err := s.applyEntry(entry); err != nil {
		return 0, nvecerr.Fatal("store.Save: apply", err)
	}
	if err := s.flush(); err != nil {
		return 0, nvecerr.IO("store.Save: flush", err)
	}
	if err := s.wal.commit(seq); err != nil {
		return 0, nvecerr.IO("store.Save: wal commit", err)
	}

	return uint64(row), nil
}

// Recall embeds query, optionally narrows the search set with filterExpr,
// and returns up to k results (k is clamped to [1, 100]) in descending
// score order with each hit's note text attached.
func (s *Store) Recall(query string, k int, filterExpr string) ([]RecallResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case k < 1:
		k = 1
	case k > 100:
		k = 100
	}

	vec, err := s.embedder.Embed(notesanitize.Clean(query))
	if err != nil {
		return nil, nvecerr.User("store.Recall: embed", err)
	}

	var mask []bool
	n := s.index.Count()
	if filterExpr != "" {
		mark := s.arena.Mark()
		defer s.arena.ResetTo(mark)

		mask, err = s.meta.Filter(filterExpr)
		if err != nil {
			return nil, nvecerr.User("store.Recall: filter", err)
		}
		n = 0
		for _, ok := range mask {
			if ok {
				n++
			}
		}
	}

	results, err := s.index.Search(vec, k, mask)
	if err != nil {
		return nil, nvecerr.Fatal("store.Recall: search", err)
	}

	top := k
	if top > n {
		top = n
	}

	out := make([]RecallResult, 0, top)
	for _, r := range results[:top] {
		text, err := s.text.Get(r.ID)
		if err != nil {
			return nil, nvecerr.Fatal("store.Recall: text lookup", err)
		}
		out = append(out, RecallResult{ID: r.ID, Score: r.Score, Text: text})
	}
	return out, nil
}

// Clear deletes the three sidecar files and resets the in-memory stores to
// empty, matching the CLI's `clear` command.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range []string{s.idxPath, s.txtPath, s.metaPath} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return nvecerr.IO("store.Clear", err)
		}
	}

	idx, err := vectorindex.Create(s.index.Dim(), s.index.Metric(), s.cfg.Capacity, s.mgr.Device())
	if err != nil {
		return nvecerr.Fatal("store.Clear", err)
	}
	s.index = idx
	s.text = textstore.Create(s.cfg.Capacity)
	s.meta = metadata.Create(s.cfg.Capacity)
	return nil
}

// Close releases the GPU device and WAL handle. The Store must not be used
// afterward.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.wal.close()
	s.mgr.Release()
	s.arena.Free()
	return err
}
