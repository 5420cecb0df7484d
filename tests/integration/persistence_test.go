package integration

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/udisondev/mmogate/internal/db"
	"github.com/udisondev/mmogate/internal/model"
)

// PersistenceSuite covers the character write-back path: load on join,
// periodic batch flush, final flush on disconnect.
type PersistenceSuite struct {
	IntegrationSuite
	chars *db.CharacterRepository
	users *db.UserRepository
}

func (s *PersistenceSuite) SetupSuite() {
	s.IntegrationSuite.SetupSuite()
	s.chars = db.NewCharacterRepository(s.db.Pool())
	s.users = db.NewUserRepository(s.db.Pool())
}

func (s *PersistenceSuite) TestLoadMissingCharacter() {
	c, err := s.chars.Load(s.ctx, 999_999)
	s.Require().NoError(err)
	s.Nil(c, "missing character should load as nil without error")
}

func (s *PersistenceSuite) TestLoadSeededCharacter() {
	// Character 7 ships in the development seed with a position row.
	c, err := s.chars.Load(s.ctx, 7)
	s.Require().NoError(err)
	s.Require().NotNil(c)
	s.Equal("Alasse", c.Name)
	s.Equal(int64(42), c.OwnerID)
	s.Equal(int32(12), c.Level)
	s.Equal(float32(150), c.Position.X)
	s.Equal(float32(200), c.Position.Z)
}

func (s *PersistenceSuite) TestSaveLoadRoundTrip() {
	owner := s.createUser("roundtrip", "key-rt")
	id := s.createCharacter(owner, "Roundtrip")

	c, err := s.chars.Load(s.ctx, id)
	s.Require().NoError(err)
	s.Require().NotNil(c)

	c.Level = 7
	c.Exp = 14_500
	c.HP = 88
	c.Position = model.Position{X: 1200, Y: -340, Z: 200, RotZ: 90}

	s.Require().NoError(s.chars.Save(s.ctx, *c))

	got, err := s.chars.Load(s.ctx, id)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(int32(7), got.Level)
	s.Equal(int64(14_500), got.Exp)
	s.Equal(int32(88), got.HP)
	s.Equal(c.Position, got.Position)
}

func (s *PersistenceSuite) TestSaveAllBatch() {
	owner := s.createUser("batchowner", "key-batch")

	var chars []model.Character
	for i := range 5 {
		id := s.createCharacter(owner, fmt.Sprintf("Batch%d", i))
		c, err := s.chars.Load(s.ctx, id)
		s.Require().NoError(err)
		c.Level = int32(10 + i)
		c.Position = model.Position{X: float32(i * 100), Y: float32(i * -50), Z: 200}
		chars = append(chars, *c)
	}

	s.Require().NoError(s.chars.SaveAll(s.ctx, chars))

	for i, want := range chars {
		got, err := s.chars.Load(s.ctx, want.ID)
		s.Require().NoError(err)
		s.Equal(int32(10+i), got.Level)
		s.Equal(want.Position, got.Position)
	}
}

func (s *PersistenceSuite) TestSaveAllEmptyIsNoop() {
	s.NoError(s.chars.SaveAll(s.ctx, nil))
}

func (s *PersistenceSuite) TestSaveAttribute() {
	owner := s.createUser("attrowner", "key-attr")
	id := s.createCharacter(owner, "AttrChar")

	s.Require().NoError(s.chars.SaveAttribute(s.ctx, id, "str", 40))
	s.Require().NoError(s.chars.SaveAttribute(s.ctx, id, "str", 42))
	s.Require().NoError(s.chars.SaveAttribute(s.ctx, id, "dex", 30))

	c, err := s.chars.Load(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(int32(42), c.Attributes["str"], "second upsert should win")
	s.Equal(int32(30), c.Attributes["dex"])
}

// TestConcurrentFlushes drives SaveAll from several goroutines against the
// same row, the way overlapping flush ticks could. All must succeed and the
// row must end in one of the written states.
func (s *PersistenceSuite) TestConcurrentFlushes() {
	owner := s.createUser("concowner", "key-conc")
	id := s.createCharacter(owner, "ConcChar")

	base, err := s.chars.Load(s.ctx, id)
	s.Require().NoError(err)

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)

	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := base.Clone()
			c.Level = int32(20 + i)
			errs <- s.chars.SaveAll(context.Background(), []model.Character{c})
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		s.NoError(err)
	}

	got, err := s.chars.Load(s.ctx, id)
	s.Require().NoError(err)
	s.GreaterOrEqual(got.Level, int32(20))
	s.Less(got.Level, int32(20+writers))
}

func (s *PersistenceSuite) TestSessionKeyLookup() {
	id := s.createUser("sessionuser", "secret-key")

	key, err := s.users.SessionKey(s.ctx, id)
	s.Require().NoError(err)
	s.Equal("secret-key", key)
}

func (s *PersistenceSuite) TestSessionKeyMissingUser() {
	key, err := s.users.SessionKey(s.ctx, 999_999)
	s.Require().NoError(err)
	s.Empty(key, "missing user should yield an empty key, not an error")
}

func TestPersistenceSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	t.Parallel()

	suite.Run(t, new(PersistenceSuite))
}
