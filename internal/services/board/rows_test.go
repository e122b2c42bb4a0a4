package board

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wordcascade/internal/model"
)

type RowsSuite struct {
	suite.Suite
}

func TestRowsSuite(t *testing.T) {
	suite.Run(t, new(RowsSuite))
}

func (s *RowsSuite) TestBuildsScoredBoard() {
	b, err := FromRows([]string{"qa.", "zeb"})
	s.Require().NoError(err)

	s.Equal(3, b.Width)
	s.Equal(2, b.Height)
	s.Equal([]string{"QA.", "ZEB"}, b.Rows())
	s.Nil(b.Get(model.Position{X: 2, Y: 0}))

	q := b.Get(model.Position{X: 0, Y: 0})
	s.Require().NotNil(q)
	s.Equal(10, q.Points)
	s.Equal("0-0", q.ID[:3])
	s.Equal(1, b.Get(model.Position{X: 1, Y: 1}).Y)
}

func (s *RowsSuite) TestRejectsBadInput() {
	_, err := FromRows(nil)
	s.ErrorIs(err, model.ErrInvalidRequest)

	_, err = FromRows([]string{"ABC", "AB"})
	s.ErrorIs(err, model.ErrInvalidRequest)

	_, err = FromRows([]string{"A1C"})
	s.ErrorIs(err, model.ErrInvalidRequest)
}
