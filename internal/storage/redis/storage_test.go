package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wordcascade/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.HistoryTTL = time.Hour
	cfg.HistoryLimit = 3

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

// Dictionary tests

func (s *StorageSuite) TestSaveAndGetDictionaryWords() {
	words := []string{"apple", "banana", "cherry"}

	err := s.storage.SaveDictionaryWords(s.ctx, words)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetDictionaryWords(s.ctx)
	s.Require().NoError(err)
	s.ElementsMatch(words, retrieved) // Order may differ (SET)
}

func (s *StorageSuite) TestGetDictionaryWordsNotLoaded() {
	_, err := s.storage.GetDictionaryWords(s.ctx)
	s.ErrorIs(err, model.ErrDictionaryNotLoaded)
}

func (s *StorageSuite) TestSaveDictionaryWordsReplacesExisting() {
	_ = s.storage.SaveDictionaryWords(s.ctx, []string{"apple", "banana"})
	_ = s.storage.SaveDictionaryWords(s.ctx, []string{"cherry", "date"})

	retrieved, err := s.storage.GetDictionaryWords(s.ctx)
	s.Require().NoError(err)
	s.ElementsMatch([]string{"cherry", "date"}, retrieved)
}

func (s *StorageSuite) TestDictionaryNoTTL() {
	_ = s.storage.SaveDictionaryWords(s.ctx, []string{"apple"})

	ttl := s.mini.TTL(dictionaryKey())
	s.Equal(time.Duration(0), ttl, "Dictionary should not have TTL")
}

// Rate limit tests

func (s *StorageSuite) TestRecordHitCountsWithinWindow() {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	for i := 1; i <= 3; i++ {
		count, err := s.storage.RecordHit(s.ctx, "conn-1", now.Add(time.Duration(i)*time.Second), time.Minute)
		s.Require().NoError(err)
		s.Equal(i, count)
	}
}

func (s *StorageSuite) TestRecordHitDropsExpiredEvents() {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	_, _ = s.storage.RecordHit(s.ctx, "conn-1", now, time.Minute)
	_, _ = s.storage.RecordHit(s.ctx, "conn-1", now.Add(30*time.Second), time.Minute)

	count, err := s.storage.RecordHit(s.ctx, "conn-1", now.Add(61*time.Second), time.Minute)
	s.Require().NoError(err)
	s.Equal(2, count)
}

func (s *StorageSuite) TestRecordHitSetsExpiry() {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	_, _ = s.storage.RecordHit(s.ctx, "conn-1", now, time.Minute)

	ttl := s.mini.TTL(hitsKey("conn-1"))
	s.Equal(time.Minute, ttl)
}

func (s *StorageSuite) TestResetHits() {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	_, _ = s.storage.RecordHit(s.ctx, "conn-1", now, time.Minute)

	s.Require().NoError(s.storage.ResetHits(s.ctx, "conn-1"))
	s.False(s.mini.Exists(hitsKey("conn-1")))
}

// Match history tests

func (s *StorageSuite) TestMatchResultsNewestFirst() {
	for _, winner := range []model.PlayerID{"p1", "p2"} {
		err := s.storage.AppendMatchResult(s.ctx, "ABCD", &model.MatchResult{
			WinnerID:    winner,
			FinalScores: []model.PlayerResult{{PlayerID: winner, TotalScore: 10}},
		})
		s.Require().NoError(err)
	}

	results, err := s.storage.GetMatchResults(s.ctx, "ABCD", 0)
	s.Require().NoError(err)
	s.Require().Len(results, 2)
	s.Equal(model.PlayerID("p2"), results[0].WinnerID)
	s.Equal(10, results[0].FinalScores[0].TotalScore)
}

func (s *StorageSuite) TestMatchResultsTrimmedToLimit() {
	for _, winner := range []model.PlayerID{"p1", "p2", "p3", "p4"} {
		_ = s.storage.AppendMatchResult(s.ctx, "ABCD", &model.MatchResult{WinnerID: winner})
	}

	results, err := s.storage.GetMatchResults(s.ctx, "ABCD", 0)
	s.Require().NoError(err)
	s.Len(results, 3)
	s.Equal(model.PlayerID("p4"), results[0].WinnerID)
}

func (s *StorageSuite) TestMatchResultsHaveTTL() {
	_ = s.storage.AppendMatchResult(s.ctx, "ABCD", &model.MatchResult{WinnerID: "p1"})

	ttl := s.mini.TTL(historyKey("ABCD"))
	s.Equal(time.Hour, ttl)
}

func (s *StorageSuite) TestDeleteMatchResults() {
	_ = s.storage.AppendMatchResult(s.ctx, "ABCD", &model.MatchResult{WinnerID: "p1"})
	s.Require().NoError(s.storage.DeleteMatchResults(s.ctx, "ABCD"))

	results, err := s.storage.GetMatchResults(s.ctx, "ABCD", 0)
	s.Require().NoError(err)
	s.Empty(results)
}
