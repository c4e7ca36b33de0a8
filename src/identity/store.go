// Package identity manages the singleton-per-(user,guild) roleplay identity
// records: creation with derived age and a generated national ID, field-wise
// modification, and deletion.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/civitasrp/civitas/src/store"
	"github.com/civitasrp/civitas/src/types"
)

// MinAge is the minimum derived age accepted at creation.
const MinAge = 13

var (
	// ErrUnderage rejects identities younger than MinAge.
	ErrUnderage = errors.New("identity: below minimum age")
	// ErrInvalidGender rejects gender values outside the accepted set.
	ErrInvalidGender = errors.New("identity: invalid gender")
)

// Genders are the accepted literal values, matched verbatim.
var Genders = []string{"Masculino", "Femenino", "Otro"}

// ValidGender reports whether v is one of the accepted literals.
func ValidGender(v string) bool {
	for _, g := range Genders {
		if v == g {
			return true
		}
	}
	return false
}

// CreateParams carries the caller-supplied fields for a new identity.
type CreateParams struct {
	UserID          string
	GuildID         string
	FirstName       string
	SecondName      string
	FirstLastName   string
	SecondLastName  string
	BirthDate       string
	Gender          string
	Nationality     string
	RobloxName      string
	RobloxAvatarURL string
	CountryCode     string
}

type Store struct {
	repo  store.IdentityRepo
	idgen *IDGenerator
	now   func() time.Time
}

func NewStore(repo store.IdentityRepo, idgen *IDGenerator) *Store {
	return &Store{repo: repo, idgen: idgen, now: time.Now}
}

// WithClock fixes "now" for deterministic age computation in tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Create validates the input, derives age and ID number, and inserts the
// record. It fails with store.ErrAlreadyExists when the user already has an
// identity in the guild; nothing is written in that case.
func (s *Store) Create(ctx context.Context, p CreateParams) (*types.Identity, error) {
	age, err := AgeFrom(p.BirthDate, s.now())
	if err != nil {
		return nil, err
	}
	if age < MinAge {
		return nil, fmt.Errorf("%w: %d", ErrUnderage, age)
	}
	if !ValidGender(p.Gender) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidGender, p.Gender)
	}

	rec := &types.Identity{
		UserID:          p.UserID,
		GuildID:         p.GuildID,
		FirstName:       p.FirstName,
		SecondName:      p.SecondName,
		FirstLastName:   p.FirstLastName,
		SecondLastName:  p.SecondLastName,
		BirthDate:       p.BirthDate,
		Age:             age,
		Gender:          p.Gender,
		Nationality:     p.Nationality,
		RobloxName:      p.RobloxName,
		RobloxAvatarURL: p.RobloxAvatarURL,
		IDNumber:        s.idgen.Generate(p.CountryCode),
		CountryCode:     p.CountryCode,
		CreatedAt:       s.now(),
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Find returns the record or store.ErrNotFound.
func (s *Store) Find(ctx context.Context, guildID, userID string) (*types.Identity, error) {
	return s.repo.Get(ctx, guildID, userID)
}

// Update applies a partial merge. A birth-date change recomputes the age
// inside the same write; invalid dates and genders reject the whole update.
func (s *Store) Update(ctx context.Context, guildID, userID string, patch store.IdentityPatch) error {
	if patch.BirthDate != nil {
		age, err := AgeFrom(*patch.BirthDate, s.now())
		if err != nil {
			return err
		}
		patch.Age = &age
	}
	if patch.Gender != nil && !ValidGender(*patch.Gender) {
		return fmt.Errorf("%w: %q", ErrInvalidGender, *patch.Gender)
	}
	return s.repo.Update(ctx, guildID, userID, patch)
}

// Delete removes the record or fails with store.ErrNotFound; a second delete
// of the same target is therefore a harmless no-op failure.
func (s *Store) Delete(ctx context.Context, guildID, userID string) error {
	return s.repo.Delete(ctx, guildID, userID)
}
