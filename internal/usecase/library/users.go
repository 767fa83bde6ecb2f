package library

import (
	"context"
	"fmt"
	"strings"

	"github.com/project/librarydesk/internal/entity"
	"github.com/project/librarydesk/internal/log"
	"github.com/project/librarydesk/internal/usecase/outbox"
	"github.com/project/librarydesk/internal/usecase/query"
	"github.com/project/librarydesk/internal/usecase/repository"
	"go.opentelemetry.io/otel/attribute"
)

const userKind = "user"

func (l *libraryImpl) CreateUser(ctx context.Context, in entity.UserInput) (entity.User, error) {
	span, traceID := spanFrom(ctx)

	user := entity.User{Role: entity.RoleClient}
	if in.Password == nil {
		err := entity.Invalidf("password is required")
		log.ErrorRecord(l.logger, err, "Got invalid user", traceID, log.CreateUser, userKind)
		return entity.User{}, err
	}
	if err := l.applyUserInput(&user, in); log.ErrorRecord(l.logger, err, "Got invalid user", traceID, log.CreateUser, userKind) {
		span.RecordError(err)
		return entity.User{}, err
	}
	if err := user.Validate(); log.ErrorRecord(l.logger, err, "Got invalid user", traceID, log.CreateUser, userKind) {
		span.RecordError(err)
		return entity.User{}, err
	}

	var created entity.User
	err := l.transactor.WithTx(ctx, func(ctx context.Context) error {
		if err := l.checkEmail(ctx, user.Email); err != nil {
			return err
		}

		var txErr error
		created, txErr = l.stores.Users.Create(ctx, user)
		if txErr != nil {
			return txErr
		}
		return outbox.Publish(ctx, l.outboxRepository, repository.OutboxKindUser, outbox.Created, &created)
	})

	if log.ErrorRecord(l.logger, err, "Failed to create user", traceID, log.CreateUser, userKind) {
		span.RecordError(err)
		return entity.User{}, err
	}

	log.InfoRecord(l.logger, "User created", traceID, log.CreateUser, userKind, created.ID)
	span.SetAttributes(attribute.Int64("user_id", created.ID))
	return created, nil
}

func (l *libraryImpl) GetUser(ctx context.Context, id int64) (entity.User, error) {
	_, traceID := spanFrom(ctx)

	user, err := l.stores.Users.Get(ctx, id)
	if log.ErrorRecord(l.logger, err, "Failed to get user", traceID, log.GetUser, userKind, id) {
		return entity.User{}, err
	}
	return user, nil
}

func (l *libraryImpl) UpdateUser(ctx context.Context, id int64, in entity.UserInput) (entity.User, error) {
	span, traceID := spanFrom(ctx)

	var updated entity.User
	err := l.transactor.WithTx(ctx, func(ctx context.Context) error {
		current, err := l.stores.Users.Get(ctx, id)
		if err != nil {
			return err
		}
		updated = current

		if in.Email != nil && normalizeEmail(*in.Email) != current.Email {
			if err = l.checkEmail(ctx, normalizeEmail(*in.Email)); err != nil {
				return err
			}
		}

		if in.Name != nil || in.Email != nil || in.Password != nil || in.Role != nil {
			updated, err = l.stores.Users.Update(ctx, id, func(user *entity.User) error {
				return l.applyUserInput(user, in)
			})
			if err != nil {
				return err
			}
			if err = outbox.Publish(ctx, l.outboxRepository, repository.OutboxKindUser, outbox.Updated, &updated); err != nil {
				return err
			}
		}

		if in.Active != nil {
			updated, err = setActive(ctx, l, l.stores.Users, repository.OutboxKindUser, id, *in.Active)
		}
		return err
	})

	if log.ErrorRecord(l.logger, err, "Failed to update user", traceID, log.UpdateUser, userKind, id) {
		span.RecordError(err)
		return entity.User{}, err
	}

	log.InfoRecord(l.logger, "User updated", traceID, log.UpdateUser, userKind, id)
	return updated, nil
}

// DeactivateUser leaves the user's loans untouched.
func (l *libraryImpl) DeactivateUser(ctx context.Context, id int64) (entity.User, error) {
	return l.switchUser(ctx, id, false, log.DeactivateUser)
}

func (l *libraryImpl) RestoreUser(ctx context.Context, id int64) (entity.User, error) {
	return l.switchUser(ctx, id, true, log.RestoreUser)
}

func (l *libraryImpl) switchUser(ctx context.Context, id int64, active bool, action log.Action) (entity.User, error) {
	span, traceID := spanFrom(ctx)

	user, err := setActive(ctx, l, l.stores.Users, repository.OutboxKindUser, id, active)
	if log.ErrorRecord(l.logger, err, "Failed to switch user state", traceID, action, userKind, id) {
		span.RecordError(err)
		return entity.User{}, err
	}

	log.InfoRecord(l.logger, "User state switched", traceID, action, userKind, id)
	return user, nil
}

func (l *libraryImpl) ListUsers(ctx context.Context, params query.Params) (query.Page[entity.User], error) {
	_, traceID := spanFrom(ctx)

	page, err := list(ctx, l, l.stores.Users, query.UserSpec, params)
	if log.ErrorRecord(l.logger, err, "Failed to list users", traceID, log.ListUsers, userKind) {
		return query.Page[entity.User]{}, err
	}

	log.InfoList(l.logger, "Users listed", traceID, log.ListUsers, userKind, page.Page, page.Limit, page.Total)
	return page, nil
}

func (l *libraryImpl) checkEmail(ctx context.Context, email string) error {
	n, err := l.stores.Users.Count(ctx, query.Eq("email", email))
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("email %q is already registered: %w", email, entity.ErrConflict)
	}
	return nil
}

func (l *libraryImpl) applyUserInput(user *entity.User, in entity.UserInput) error {
	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		user.Email = normalizeEmail(*in.Email)
	}
	if in.Role != nil {
		user.Role = *in.Role
	}
	if in.Password != nil {
		if len(*in.Password) < entity.MinPasswordLength {
			return entity.Invalidf("password must be at least %d characters", entity.MinPasswordLength)
		}
		hash, err := l.hasher.Hash(*in.Password)
		if err != nil {
			return fmt.Errorf("can not hash password: %w", err)
		}
		user.PasswordHash = hash
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
