package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kbreuer/artikelstamm/internal/core/domain"
	"github.com/kbreuer/artikelstamm/internal/port"
	"github.com/kbreuer/artikelstamm/internal/retry"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrBatchInProgress   = errors.New("batch import already running")
)

const (
	batchLockKey = "artikel:batch:lock"
	batchLockTTL = 5 * time.Minute
)

type Config struct {
	CacheTTL  time.Duration
	BatchSize int
	Retry     retry.Config
}

func DefaultConfig() Config {
	return Config{
		CacheTTL:  time.Hour,
		BatchSize: 1000,
		Retry:     retry.DefaultConfig(),
	}
}

// ArtikelService owns the full read/write path for article master data:
// cache lookups, database reads and writes, chunked batch imports and
// row-locked stock adjustments. Nothing else writes to storage or cache.
type ArtikelService struct {
	db     port.DatabaseRepository
	cache  port.CacheRepository
	locker *redislock.Client
	log    *logrus.Logger
	cfg    Config
}

// NewArtikelService wires the service. locker may be nil; batch imports then
// run without the cross-process exclusivity lock.
func NewArtikelService(db port.DatabaseRepository, cache port.CacheRepository, locker *redislock.Client, log *logrus.Logger, cfg Config) *ArtikelService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1000
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry.MaxAttempts = 1
	}
	return &ArtikelService{
		db:     db,
		cache:  cache,
		locker: locker,
		log:    log,
		cfg:    cfg,
	}
}

// GetByID returns the article or (nil, nil) if it does not exist. A cache
// hit never touches storage; a miss populates the cache.
func (s *ArtikelService) GetByID(ctx context.Context, id int64) (*domain.Artikel, error) {
	if a, ok := s.cacheLookup(ctx, keyID(id)); ok {
		return a, nil
	}

	a, err := s.db.FindByID(ctx, id)
	if err != nil {
		s.logError("GetByID", id, err)
		return nil, err
	}
	if a == nil {
		return nil, nil
	}

	s.cacheStore(ctx, a)
	return a, nil
}

// GetByNummer is the business-key lookup path, cached under its own key.
func (s *ArtikelService) GetByNummer(ctx context.Context, nummer string) (*domain.Artikel, error) {
	if a, ok := s.cacheLookup(ctx, keyNummer(nummer)); ok {
		return a, nil
	}

	a, err := s.db.FindByNummer(ctx, nummer)
	if err != nil {
		s.log.WithFields(logrus.Fields{"op": "GetByNummer", "artikelnummer": nummer}).Error(err.Error())
		return nil, err
	}
	if a == nil {
		return nil, nil
	}

	s.cacheStore(ctx, a)
	return a, nil
}

// Save validates the article, then inserts (ID == 0) or fully overwrites the
// row, and invalidates both cache keys so the next read hits storage.
func (s *ArtikelService) Save(ctx context.Context, a *domain.Artikel) (*domain.Artikel, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		s.logError("Save", a.ID, err)
		return nil, err
	}

	if err := s.saveInTx(ctx, tx, a); err != nil {
		tx.Rollback()
		s.logError("Save", a.ID, err)
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		s.logError("Save", a.ID, err)
		return nil, err
	}

	s.invalidate(ctx, a)
	return a, nil
}

// saveInTx stamps the timestamps and writes the already-validated entity.
func (s *ArtikelService) saveInTx(ctx context.Context, tx port.ArtikelTx, a *domain.Artikel) error {
	now := time.Now()
	a.GeaendertAm = now

	if a.ID == 0 {
		a.ErstelltAm = now
		id, err := tx.Insert(ctx, a)
		if err != nil {
			return err
		}
		a.ID = id
		return nil
	}

	return tx.Update(ctx, a)
}

// Search bypasses the cache entirely; results are ordered by bezeichnung.
func (s *ArtikelService) Search(ctx context.Context, filter domain.SuchFilter) ([]*domain.Artikel, error) {
	result, err := s.db.Search(ctx, filter)
	if err != nil {
		s.log.WithField("op", "Search").Error(err.Error())
		return nil, err
	}
	return result, nil
}

// ProcessBatch imports articles in fixed-size chunks, each inside its own
// transaction. Invalid articles are reported individually before the chunk
// transaction opens; a storage failure that survives the retry policy rolls
// back the whole chunk and fails every article in it. Chunks are independent,
// so the result always accounts for every input article exactly once.
func (s *ArtikelService) ProcessBatch(ctx context.Context, artikel []*domain.Artikel) (*domain.BatchErgebnis, error) {
	if s.locker != nil {
		lock, err := s.locker.Obtain(ctx, batchLockKey, batchLockTTL, nil)
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, ErrBatchInProgress
		}
		if err != nil {
			return nil, fmt.Errorf("obtain batch lock: %w", err)
		}
		defer lock.Release(ctx)
	}

	result := &domain.BatchErgebnis{BatchID: uuid.NewString()}

	for start := 0; start < len(artikel); start += s.cfg.BatchSize {
		end := min(start+s.cfg.BatchSize, len(artikel))
		s.processChunk(ctx, result, artikel[start:end])
	}

	s.log.WithFields(logrus.Fields{
		"batch_id": result.BatchID,
		"ok":       len(result.Erfolgreich),
		"failed":   len(result.Fehlgeschlagen),
	}).Info("batch import finished")

	return result, nil
}

func (s *ArtikelService) processChunk(ctx context.Context, result *domain.BatchErgebnis, chunk []*domain.Artikel) {
	valid := make([]*domain.Artikel, 0, len(chunk))
	for _, a := range chunk {
		if err := a.Validate(); err != nil {
			result.Fehlgeschlagen = append(result.Fehlgeschlagen, domain.BatchFehler{Artikel: a, Fehler: err.Error()})
			continue
		}
		valid = append(valid, a)
	}
	if len(valid) == 0 {
		return
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		s.failChunk(result, valid, err)
		return
	}

	priorIDs := make([]int64, len(valid))
	for i, a := range valid {
		priorIDs[i] = a.ID

		err := retry.Do(ctx, s.cfg.Retry, func(ctx context.Context) error {
			return s.saveInTx(ctx, tx, a)
		})
		if err != nil {
			tx.Rollback()
			s.log.WithFields(logrus.Fields{
				"batch_id":      result.BatchID,
				"artikelnummer": a.Artikelnummer,
			}).Error("chunk rolled back: " + err.Error())

			// ids assigned by rolled-back inserts are not valid
			for j := 0; j <= i; j++ {
				valid[j].ID = priorIDs[j]
			}
			for j, other := range valid {
				msg := fmt.Sprintf("chunk rolled back: %v", err)
				if j == i {
					msg = err.Error()
				}
				result.Fehlgeschlagen = append(result.Fehlgeschlagen, domain.BatchFehler{Artikel: other, Fehler: msg})
			}
			return
		}
	}

	if err := tx.Commit(); err != nil {
		s.failChunk(result, valid, err)
		return
	}

	result.Erfolgreich = append(result.Erfolgreich, valid...)
	for _, a := range valid {
		s.invalidate(ctx, a)
	}
}

func (s *ArtikelService) failChunk(result *domain.BatchErgebnis, chunk []*domain.Artikel, err error) {
	s.log.WithField("batch_id", result.BatchID).Error("chunk failed: " + err.Error())
	for _, a := range chunk {
		result.Fehlgeschlagen = append(result.Fehlgeschlagen, domain.BatchFehler{Artikel: a, Fehler: err.Error()})
	}
}

// UpdateLagerbestand applies a signed stock delta under a storage row lock,
// so concurrent adjustments to the same article serialize. A delta that
// would drive the stock negative aborts with ErrInsufficientStock.
func (s *ArtikelService) UpdateLagerbestand(ctx context.Context, id int64, delta int) (*domain.Artikel, error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		s.logError("UpdateLagerbestand", id, err)
		return nil, err
	}

	a, err := tx.LockArtikel(ctx, id)
	if err != nil {
		tx.Rollback()
		if !errors.Is(err, domain.ErrArtikelNotFound) {
			s.logError("UpdateLagerbestand", id, err)
		}
		return nil, err
	}

	neuerBestand := a.Lagerbestand + delta
	if neuerBestand < 0 {
		tx.Rollback()
		return nil, fmt.Errorf("%w: artikel %d has %d, delta %d", ErrInsufficientStock, id, a.Lagerbestand, delta)
	}

	if err := tx.UpdateLagerbestand(ctx, id, neuerBestand); err != nil {
		tx.Rollback()
		s.logError("UpdateLagerbestand", id, err)
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		s.logError("UpdateLagerbestand", id, err)
		return nil, err
	}

	// the locked row carries the artikelnummer, so both keys can go
	s.invalidate(ctx, a)

	return s.GetByID(ctx, id)
}

// Deactivate is the soft delete: articles are never removed physically.
func (s *ArtikelService) Deactivate(ctx context.Context, id int64) (*domain.Artikel, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.ErrArtikelNotFound
	}
	if !a.Aktiv {
		return a, nil
	}

	a.Aktiv = false
	return s.Save(ctx, a)
}

func (s *ArtikelService) cacheLookup(ctx context.Context, key string) (*domain.Artikel, bool) {
	val, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		// cache is best-effort; a cache outage must not take down reads
		s.log.WithField("key", key).Warn("cache get failed: " + err.Error())
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var a domain.Artikel
	if err := json.Unmarshal([]byte(val), &a); err != nil {
		s.log.WithField("key", key).Warn("corrupt cache entry: " + err.Error())
		return nil, false
	}

	return &a, true
}

func (s *ArtikelService) cacheStore(ctx context.Context, a *domain.Artikel) {
	data, err := json.Marshal(a)
	if err != nil {
		s.log.WithField("artikel_id", a.ID).Warn("cache encode failed: " + err.Error())
		return
	}
	for _, key := range cacheKeys(a) {
		if err := s.cache.Set(ctx, key, string(data), s.cfg.CacheTTL); err != nil {
			s.log.WithField("key", key).Warn("cache set failed: " + err.Error())
		}
	}
}

func (s *ArtikelService) invalidate(ctx context.Context, a *domain.Artikel) {
	if err := s.cache.Delete(ctx, cacheKeys(a)...); err != nil {
		s.log.WithField("artikel_id", a.ID).Warn("cache invalidation failed: " + err.Error())
	}
}

func (s *ArtikelService) logError(op string, id int64, err error) {
	s.log.WithFields(logrus.Fields{"op": op, "artikel_id": id}).Error(err.Error())
}
