package library

import (
	"context"
	"testing"

	"github.com/project/librarydesk/internal/entity"
	"github.com/project/librarydesk/internal/usecase/library/mocks"
	"github.com/project/librarydesk/internal/usecase/query"
	"github.com/project/librarydesk/internal/usecase/repository"
	"github.com/project/librarydesk/pkg/credential"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func userInput(name, email, password string) entity.UserInput {
	return entity.UserInput{Name: ptr(name), Email: ptr(email), Password: ptr(password)}
}

func TestCreateUser(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    entity.UserInput
		wantRole entity.Role
		errIs    error
	}{
		{
			name:     "client by default",
			input:    userInput("Ada", "  Ada@Example.com ", "secret1"),
			wantRole: entity.RoleClient,
		},
		{
			name: "admin",
			input: func() entity.UserInput {
				in := userInput("Grace", "grace@example.com", "hopper!")
				in.Role = ptr(entity.RoleAdmin)
				return in
			}(),
			wantRole: entity.RoleAdmin,
		},
		{
			name:  "duplicate email in other case",
			input: userInput("Ada again", "ADA@example.com", "secret1"),
			errIs: entity.ErrConflict,
		},
		{
			name:  "bad email",
			input: userInput("Bob", "bob-at-example", "secret1"),
			errIs: entity.ErrValidation,
		},
		{
			name:  "short password",
			input: userInput("Bob", "bob@example.com", "12345"),
			errIs: entity.ErrValidation,
		},
		{
			name:  "missing password",
			input: entity.UserInput{Name: ptr("Bob"), Email: ptr("bob@example.com")},
			errIs: entity.ErrValidation,
		},
		{
			name: "unknown role",
			input: func() entity.UserInput {
				in := userInput("Bob", "bob@example.com", "secret1")
				in.Role = ptr(entity.Role("LIBRARIAN"))
				return in
			}(),
			errIs: entity.ErrValidation,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			ctx, lib := initLibraryTest(t)
			if test.errIs == entity.ErrConflict {
				_, err := lib.CreateUser(ctx, userInput("Ada", "ada@example.com", "secret1"))
				require.NoError(t, err)
			}

			user, err := lib.CreateUser(ctx, test.input)
			if test.errIs != nil {
				require.ErrorIs(t, err, test.errIs)
				require.Empty(t, user)
				return
			}

			require.NoError(t, err)
			require.Equal(t, test.wantRole, user.Role)
			require.True(t, user.Active)
			require.Equal(t, normalizeEmail(*test.input.Email), user.Email)
			require.NotEqual(t, *test.input.Password, user.PasswordHash)
			require.NoError(t, credential.NewBcrypt(bcrypt.MinCost).Compare(user.PasswordHash, *test.input.Password))
		})
	}
}

func TestCreateUser_hasherError(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	hasher := mocks.NewMockHasher(ctrl)
	stores := newStores()
	lib := New(zap.NewNop(), stores, repository.NopOutbox{}, repository.NopTransactor{}, hasher, query.NewPager(0, 0))

	hasher.EXPECT().Hash("secret1").Return("", errInternal)

	_, err := lib.CreateUser(context.Background(), userInput("Ada", "ada@example.com", "secret1"))
	require.ErrorIs(t, err, errInternal)

	total, err := stores.Users.Count(context.Background(), nil)
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestUpdateUser(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input entity.UserInput
		check func(t *testing.T, before, after entity.User)
		errIs error
	}{
		{
			name:  "rename",
			input: entity.UserInput{Name: ptr("Augusta Ada King")},
			check: func(t *testing.T, before, after entity.User) {
				require.Equal(t, "Augusta Ada King", after.Name)
				require.Equal(t, before.Email, after.Email)
				require.Equal(t, before.PasswordHash, after.PasswordHash)
			},
		},
		{
			name:  "same email in other case",
			input: entity.UserInput{Email: ptr("ADA@EXAMPLE.COM")},
			check: func(t *testing.T, before, after entity.User) {
				require.Equal(t, before.Email, after.Email)
			},
		},
		{
			name:  "email taken",
			input: entity.UserInput{Email: ptr("grace@example.com")},
			errIs: entity.ErrConflict,
		},
		{
			name:  "new password",
			input: entity.UserInput{Password: ptr("another-secret")},
			check: func(t *testing.T, before, after entity.User) {
				require.NotEqual(t, before.PasswordHash, after.PasswordHash)
				require.NoError(t, credential.NewBcrypt(bcrypt.MinCost).Compare(after.PasswordHash, "another-secret"))
			},
		},
		{
			name:  "short password",
			input: entity.UserInput{Password: ptr("abc")},
			errIs: entity.ErrValidation,
		},
		{
			name:  "promote and deactivate",
			input: entity.UserInput{Role: ptr(entity.RoleAdmin), Active: ptr(false)},
			check: func(t *testing.T, _, after entity.User) {
				require.Equal(t, entity.RoleAdmin, after.Role)
				require.False(t, after.Active)
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			ctx, lib := initLibraryTest(t)
			before, err := lib.CreateUser(ctx, userInput("Ada", "ada@example.com", "secret1"))
			require.NoError(t, err)
			_, err = lib.CreateUser(ctx, userInput("Grace", "grace@example.com", "secret2"))
			require.NoError(t, err)

			after, err := lib.UpdateUser(ctx, before.ID, test.input)
			if test.errIs != nil {
				require.ErrorIs(t, err, test.errIs)
				stored, getErr := lib.GetUser(ctx, before.ID)
				require.NoError(t, getErr)
				require.Equal(t, before, stored)
				return
			}

			require.NoError(t, err)
			test.check(t, before, after)
		})
	}
}

func TestDeactivateUser_keepsLoans(t *testing.T) {
	t.Parallel()
	ctx, lib := initLibraryTest(t)

	user, err := lib.CreateUser(ctx, userInput("Ada", "ada@example.com", "secret1"))
	require.NoError(t, err)

	refs := seedRefs(t, ctx, lib)
	book, err := lib.CreateBook(ctx, bookInput("9780441478125", refs))
	require.NoError(t, err)

	loan, err := lib.stores.Loans.Create(ctx, entity.Loan{
		UserID:    user.ID,
		BookID:    book.ID,
		LoanDate:  user.CreatedAt,
		ReturnDue: user.CreatedAt.AddDate(0, 0, 14),
	})
	require.NoError(t, err)

	deactivated, err := lib.DeactivateUser(ctx, user.ID)
	require.NoError(t, err)
	require.False(t, deactivated.Active)

	stored, err := lib.stores.Loans.Get(ctx, loan.ID)
	require.NoError(t, err)
	require.Equal(t, loan, stored)

	restored, err := lib.RestoreUser(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, restored.Active)
}

func TestListUsers(t *testing.T) {
	t.Parallel()
	ctx, lib := initLibraryTest(t)

	_, err := lib.CreateUser(ctx, userInput("Ada", "ada@example.com", "secret1"))
	require.NoError(t, err)
	admin := userInput("Grace", "grace@example.com", "secret2")
	admin.Role = ptr(entity.RoleAdmin)
	_, err = lib.CreateUser(ctx, admin)
	require.NoError(t, err)
	_, err = lib.CreateUser(ctx, userInput("Alan", "alan@example.org", "secret3"))
	require.NoError(t, err)

	page, err := lib.ListUsers(ctx, query.Params{Filters: map[string]any{"role": "CLIENT"}})
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)

	page, err = lib.ListUsers(ctx, query.Params{Search: "example.org"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, "Alan", page.Items[0].Name)

	page, err = lib.ListUsers(ctx, query.Params{Sort: "email", Limit: ptr(1), Page: ptr(2)})
	require.NoError(t, err)
	require.Equal(t, 3, page.Total)
	require.Equal(t, 3, page.TotalPages)
	require.Equal(t, "alan@example.org", page.Items[0].Email)
}
