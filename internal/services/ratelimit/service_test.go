package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wordcascade/internal/dependencies/mocks"
	"github.com/mcoot/wordcascade/internal/storage"
	"github.com/mcoot/wordcascade/internal/storage/memory"
	"github.com/mcoot/wordcascade/internal/testutil"
)

// failingStorage errors on every rate limit call
type failingStorage struct {
	storage.Storage
}

func (f *failingStorage) RecordHit(ctx context.Context, key string, now time.Time, window time.Duration) (int, error) {
	return 0, errors.New("backend down")
}

type ServiceSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(memory.New(), s.clock, Config{Events: 3, Window: time.Minute}, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestAllowsUpToLimit() {
	for i := 1; i <= 3; i++ {
		d := s.service.Allow(s.ctx, "conn-1")
		s.True(d.Allowed)
		s.Equal(i, d.Count)
	}

	d := s.service.Allow(s.ctx, "conn-1")
	s.False(d.Allowed)
	s.Equal(time.Minute, d.RetryAfter)
}

func (s *ServiceSuite) TestWindowSlides() {
	for i := 0; i < 3; i++ {
		s.True(s.service.Allow(s.ctx, "conn-1").Allowed)
		s.clock.Advance(10 * time.Second)
	}

	// At t=61s the event from t=0 has left the window
	s.clock.Advance(31 * time.Second)
	s.True(s.service.Allow(s.ctx, "conn-1").Allowed)
	s.False(s.service.Allow(s.ctx, "conn-1").Allowed)
}

func (s *ServiceSuite) TestRejectedEventsCount() {
	for i := 0; i < 5; i++ {
		s.service.Allow(s.ctx, "conn-1")
	}
	d := s.service.Allow(s.ctx, "conn-1")
	s.False(d.Allowed)
	s.Equal(6, d.Count)
}

func (s *ServiceSuite) TestKeysAreIndependent() {
	for i := 0; i < 4; i++ {
		s.service.Allow(s.ctx, "conn-1")
	}
	s.True(s.service.Allow(s.ctx, "conn-2").Allowed)
}

func (s *ServiceSuite) TestReset() {
	for i := 0; i < 4; i++ {
		s.service.Allow(s.ctx, "conn-1")
	}
	s.service.Reset(s.ctx, "conn-1")
	s.True(s.service.Allow(s.ctx, "conn-1").Allowed)
}

func (s *ServiceSuite) TestFailsOpen() {
	service := New(&failingStorage{Storage: memory.New()}, s.clock, DefaultConfig(), testutil.NopLogger())
	s.True(service.Allow(s.ctx, "conn-1").Allowed)
}

func (s *ServiceSuite) TestDefaultsApplied() {
	service := New(memory.New(), s.clock, Config{}, testutil.NopLogger())
	s.Equal(DefaultConfig(), service.cfg)
}
