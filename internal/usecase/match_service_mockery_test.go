package usecase

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/fotisolgr/my-bet-app/internal/domain/match"
	"github.com/fotisolgr/my-bet-app/internal/domain/user"
	matchmock "github.com/fotisolgr/my-bet-app/internal/mocks/domain/match"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

func storedMatch(id int64, owner string) match.Match {
	date, _ := match.ParseDate("2025-08-22")
	clock, _ := match.ParseTime("13:52")
	return match.Match{
		ID:          id,
		Owner:       owner,
		Description: "DERBY",
		MatchDate:   date,
		MatchTime:   clock,
		TeamA:       "AEK",
		TeamB:       "PAO",
		Sport:       match.SportBasketball,
		Odds: []match.Odds{
			{Specifier: match.SpecifierWin, Odd: decimal.RequireFromString("1.5")},
			{Specifier: match.SpecifierDraw, Odd: decimal.RequireFromString("3.2")},
			{Specifier: match.SpecifierLose, Odd: decimal.RequireFromString("4.0")},
		},
	}
}

func sameCtx(ctx context.Context) any {
	return mock.MatchedBy(func(v context.Context) bool { return v == ctx })
}

func TestMatchService_Create_SuccessUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := matchmock.NewRepository(t)
	service := NewMatchService(repo, nil)

	input := validMatchInput()
	input.TeamA = "  aek "
	input.Description = " derby "

	repo.
		On("ExistsByFixture", sameCtx(ctx), mock.MatchedBy(func(f match.Fixture) bool {
			return f.TeamA == "AEK" && f.TeamB == "PAO" && f.Sport == match.SportBasketball
		})).
		Return(false, nil).
		Once()
	repo.
		On("Create", sameCtx(ctx), mock.MatchedBy(func(m match.Match) bool {
			return m.Owner == "alice" && m.Description == "DERBY" && len(m.Odds) == 3 && m.ID == 0
		})).
		Return(func(_ context.Context, m match.Match) (match.Match, error) {
			m.ID = 42
			return m, nil
		}).
		Once()

	got, err := service.Create(ctx, user.Known("alice"), input)
	if err != nil {
		t.Fatalf("create match: %v", err)
	}
	if got.MatchID != 42 || got.MatchOwner != "alice" {
		t.Fatalf("unexpected record: %+v", got)
	}
	if got.TeamA != "AEK" || got.MatchDate != "2025-08-22" || got.MatchTime != "13:52" {
		t.Fatalf("unexpected normalized fields: %+v", got)
	}
}

func TestMatchService_Create_ValidationRunsBeforeStoreUsingMockery(t *testing.T) {
	t.Parallel()

	repo := matchmock.NewRepository(t)
	service := NewMatchService(repo, nil)

	input := validMatchInput()
	input.TeamB = input.TeamA

	_, err := service.Create(context.Background(), user.Anonymous(), input)
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}
}

func TestMatchService_Create_WithoutIdentityUsingMockery(t *testing.T) {
	t.Parallel()

	repo := matchmock.NewRepository(t)
	service := NewMatchService(repo, nil)

	_, err := service.Create(context.Background(), user.Anonymous(), validMatchInput())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestMatchService_Create_BadDateUsingMockery(t *testing.T) {
	t.Parallel()

	repo := matchmock.NewRepository(t)
	service := NewMatchService(repo, nil)

	input := validMatchInput()
	input.MatchDate = "22/08/2025"

	_, err := service.Create(context.Background(), user.Known("alice"), input)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestMatchService_Create_DuplicateFixtureUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := matchmock.NewRepository(t)
	service := NewMatchService(repo, nil)

	repo.
		On("ExistsByFixture", sameCtx(ctx), mock.Anything).
		Return(true, nil).
		Once()

	_, err := service.Create(ctx, user.Known("alice"), validMatchInput())
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	want := "resource already exists: BASKETBALL match between AEK and PAO at 2025-08-22 13:52 already exists"
	if err.Error() != want {
		t.Fatalf("unexpected message:\nwant: %s\ngot:  %s", want, err.Error())
	}
}

func TestMatchService_Create_ConstraintViolationUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := matchmock.NewRepository(t)
	service := NewMatchService(repo, nil)

	repo.On("ExistsByFixture", sameCtx(ctx), mock.Anything).Return(false, nil).Once()
	repo.On("Create", sameCtx(ctx), mock.Anything).Return(match.Match{}, match.ErrDuplicateFixture).Once()

	_, err := service.Create(ctx, user.Known("alice"), validMatchInput())
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestMatchService_Update_OrderingUsingMockery(t *testing.T) {
	t.Parallel()

	t.Run("missing match", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		repo := matchmock.NewRepository(t)
		service := NewMatchService(repo, nil)

		repo.On("GetByID", sameCtx(ctx), int64(7)).Return(match.Match{}, false, nil).Once()

		_, err := service.Update(ctx, user.Anonymous(), 7, validMatchInput())
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("absent identity", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		repo := matchmock.NewRepository(t)
		service := NewMatchService(repo, nil)

		repo.On("GetByID", sameCtx(ctx), int64(7)).Return(storedMatch(7, "alice"), true, nil).Once()

		_, err := service.Update(ctx, user.Anonymous(), 7, validMatchInput())
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("other owner", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		repo := matchmock.NewRepository(t)
		service := NewMatchService(repo, nil)

		repo.On("GetByID", sameCtx(ctx), int64(7)).Return(storedMatch(7, "alice"), true, nil).Once()

		_, err := service.Update(ctx, user.Known("bob"), 7, validMatchInput())
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})
}

func TestMatchService_Update_ReplacesOddsKeepsOwnerUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := matchmock.NewRepository(t)
	service := NewMatchService(repo, nil)

	input := validMatchInput()
	input.Sport = match.SportFootball
	input.Odds[0].Odd = oddPtr("1.1")

	repo.On("GetByID", sameCtx(ctx), int64(7)).Return(storedMatch(7, "alice"), true, nil).Once()
	repo.
		On("Update", sameCtx(ctx), mock.MatchedBy(func(m match.Match) bool {
			return m.ID == 7 && m.Owner == "alice" && m.Sport == match.SportFootball &&
				m.Odds[0].Odd.Equal(decimal.RequireFromString("1.1"))
		})).
		Return(func(_ context.Context, m match.Match) (match.Match, error) { return m, nil }).
		Once()

	got, err := service.Update(ctx, user.Known("alice"), 7, input)
	if err != nil {
		t.Fatalf("update match: %v", err)
	}
	if got.MatchID != 7 || got.MatchOwner != "alice" || got.Sport != match.SportFootball {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestMatchService_Update_FixtureCollisionUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := matchmock.NewRepository(t)
	service := NewMatchService(repo, nil)

	repo.On("GetByID", sameCtx(ctx), int64(7)).Return(storedMatch(7, "alice"), true, nil).Once()
	repo.On("Update", sameCtx(ctx), mock.Anything).Return(match.Match{}, match.ErrDuplicateFixture).Once()

	_, err := service.Update(ctx, user.Known("alice"), 7, validMatchInput())
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestMatchService_Delete_UsingMockery(t *testing.T) {
	t.Parallel()

	t.Run("missing match never deletes", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		repo := matchmock.NewRepository(t)
		service := NewMatchService(repo, nil)

		repo.On("GetByID", sameCtx(ctx), int64(9)).Return(match.Match{}, false, nil).Once()

		err := service.Delete(ctx, user.Known("alice"), 9)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("other owner", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		repo := matchmock.NewRepository(t)
		service := NewMatchService(repo, nil)

		repo.On("GetByID", sameCtx(ctx), int64(9)).Return(storedMatch(9, "alice"), true, nil).Once()

		err := service.Delete(ctx, user.Known("bob"), 9)
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
		if err.Error() != "forbidden: you do not have permission to delete this match" {
			t.Fatalf("unexpected message: %s", err.Error())
		}
	})

	t.Run("owner deletes", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		repo := matchmock.NewRepository(t)
		service := NewMatchService(repo, nil)

		repo.On("GetByID", sameCtx(ctx), int64(9)).Return(storedMatch(9, "alice"), true, nil).Once()
		repo.On("Delete", sameCtx(ctx), int64(9)).Return(true, nil).Once()

		if err := service.Delete(ctx, user.Known("alice"), 9); err != nil {
			t.Fatalf("delete match: %v", err)
		}
	})

	t.Run("store fault", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		repo := matchmock.NewRepository(t)
		service := NewMatchService(repo, nil)
		storeErr := errors.New("connection reset")

		repo.On("GetByID", sameCtx(ctx), int64(9)).Return(storedMatch(9, "alice"), true, nil).Once()
		repo.On("Delete", sameCtx(ctx), int64(9)).Return(false, storeErr).Once()

		err := service.Delete(ctx, user.Known("alice"), 9)
		if !errors.Is(err, storeErr) {
			t.Fatalf("expected store error to be wrapped, got %v", err)
		}
	})
}

func TestMatchService_List_UsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := matchmock.NewRepository(t)
	service := NewMatchService(repo, nil)

	day := time.Date(2025, 8, 22, 0, 0, 0, 0, time.UTC)
	input := DefaultListMatchesInput()
	input.Page = 1
	input.Size = 2
	input.SortBy = "bogus"
	input.Owner = " Alice "
	input.MatchDate = &day

	repo.
		On("List", sameCtx(ctx),
			match.Filter{Constraints: []match.Constraint{
				{Field: match.FieldOwner, Value: "alice"},
				{Field: match.FieldMatchDate, Value: day},
			}},
			match.Ordering{Terms: []match.OrderTerm{{Field: match.FieldMatchDate, Desc: true}}},
			match.PageRequest{Page: 1, Size: 2},
		).
		Return(match.Page{Items: []match.Match{storedMatch(3, "alice")}, Total: 3}, nil).
		Once()

	got, err := service.List(ctx, input)
	if err != nil {
		t.Fatalf("list matches: %v", err)
	}
	if got.TotalElements != 3 || got.TotalPages != 2 || got.Number != 1 || got.Size != 2 {
		t.Fatalf("unexpected paging: %+v", got)
	}
	if got.First || !got.Last || got.Empty || got.NumberOfElements != 1 {
		t.Fatalf("unexpected page flags: %+v", got)
	}
}

func TestMatchService_List_RejectsBadPaging(t *testing.T) {
	t.Parallel()

	service := NewMatchService(matchmock.NewRepository(t), nil)

	input := DefaultListMatchesInput()
	input.Size = 0
	if _, err := service.List(context.Background(), input); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for size, got %v", err)
	}

	input = DefaultListMatchesInput()
	input.Page = -1
	if _, err := service.List(context.Background(), input); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for page, got %v", err)
	}

	input = DefaultListMatchesInput()
	input.Size = MaxPageSize + 1
	if _, err := service.List(context.Background(), input); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for oversized page, got %v", err)
	}

	input = DefaultListMatchesInput()
	input.Page = math.MaxInt/4 + 1
	input.Size = 4
	if _, err := service.List(context.Background(), input); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for overflowing page, got %v", err)
	}
}

func TestMatchService_List_StoreFaultUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := matchmock.NewRepository(t)
	service := NewMatchService(repo, nil)

	repo.On("List", sameCtx(ctx), mock.Anything, mock.Anything, mock.Anything).
		Return(match.Page{}, errors.New("relation \"matches\" does not exist")).
		Once()

	got, err := service.List(ctx, DefaultListMatchesInput())
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(got.Content) != 0 {
		t.Fatalf("expected no partial results, got %+v", got)
	}
}
