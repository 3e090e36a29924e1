package learner

import (
	"context"
	"fmt"
	"strings"

	"github.com/mrlokans/mazo/internal/entities"
	"github.com/mrlokans/mazo/internal/ids"
	"github.com/mrlokans/mazo/internal/tables"
	"github.com/mrlokans/mazo/internal/validation"
)

// RegisterUser appends a Users row unless one with the same id exists. An
// empty id is allocated. It returns the stored user and whether it was created.
// Two concurrent registrations of the same id may both append.
func (s *Service) RegisterUser(ctx context.Context, id, email, name string) (entities.User, bool, error) {
	email = strings.TrimSpace(email)
	if err := validation.Email("email", email); err != nil {
		return entities.User{}, false, err
	}

	users, err := tables.Load(ctx, s.store, tables.Users)
	if err != nil {
		return entities.User{}, false, err
	}
	if id != "" {
		if i := users.Find(func(r tables.Record) bool { return r["id"] == id }); i >= 0 {
			return tables.UserFromRecord(users.Record(i)), false, nil
		}
	} else {
		id = ids.NewContentID()
	}

	user := entities.User{ID: id, Email: email, Name: strings.TrimSpace(name), CreatedAt: s.now().UTC()}
	if err := tables.AppendWith(ctx, s.store, tables.Users, users.Header, tables.UserToRecord(user)); err != nil {
		return entities.User{}, false, fmt.Errorf("register user %s: %w", id, err)
	}
	return user, true, nil
}
