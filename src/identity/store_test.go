package identity

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civitasrp/civitas/src/store"
)

var testNow = time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)

func newTestStore() (*Store, *store.Memory) {
	mem := store.NewMemory()
	s := NewStore(mem.Identities(), NewSeededIDGenerator(1)).WithClock(func() time.Time { return testNow })
	return s, mem
}

func validParams() CreateParams {
	return CreateParams{
		UserID:        "u1",
		GuildID:       "g1",
		FirstName:     "Ana",
		FirstLastName: "Rojas",
		BirthDate:     "15/06/1990",
		Gender:        "Femenino",
		Nationality:   "Chile",
		CountryCode:   "CL",
	}
}

func TestCreateDerivesAgeAndID(t *testing.T) {
	s, _ := newTestStore()

	rec, err := s.Create(context.Background(), validParams())
	require.NoError(t, err)
	assert.Equal(t, 36, rec.Age)
	assert.Regexp(t, regexp.MustCompile(`^\d{1,2}\.\d{3}\.\d{3}-[\dK]$`), rec.IDNumber)
	assert.Equal(t, testNow, rec.CreatedAt)
}

func TestCreateRejectsDuplicates(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	_, err := s.Create(ctx, validParams())
	require.NoError(t, err)

	_, err = s.Create(ctx, validParams())
	assert.ErrorIs(t, err, store.ErrAlreadyExists)

	// Same user in another guild is a separate singleton.
	other := validParams()
	other.GuildID = "g2"
	_, err = s.Create(ctx, other)
	assert.NoError(t, err)
}

func TestCreateValidation(t *testing.T) {
	s, mem := newTestStore()
	ctx := context.Background()

	p := validParams()
	p.BirthDate = "31/04/2000"
	_, err := s.Create(ctx, p)
	assert.ErrorIs(t, err, ErrInvalidDate)

	p = validParams()
	p.BirthDate = "01/01/2020" // age 6
	_, err = s.Create(ctx, p)
	assert.ErrorIs(t, err, ErrUnderage)

	p = validParams()
	p.Gender = "masculino" // case-sensitive literals
	_, err = s.Create(ctx, p)
	assert.ErrorIs(t, err, ErrInvalidGender)

	// Nothing was written along the way.
	_, err = mem.GetIdentity(ctx, "g1", "u1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateBirthDateRecomputesAge(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	_, err := s.Create(ctx, validParams())
	require.NoError(t, err)

	dob := "15/09/1990" // birthday not yet passed at testNow
	require.NoError(t, s.Update(ctx, "g1", "u1", store.IdentityPatch{BirthDate: &dob}))

	rec, err := s.Find(ctx, "g1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "15/09/1990", rec.BirthDate)
	assert.Equal(t, 35, rec.Age)
}

func TestUpdateRejectsInvalidInput(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	_, err := s.Create(ctx, validParams())
	require.NoError(t, err)

	bad := "29/02/2001"
	assert.ErrorIs(t, s.Update(ctx, "g1", "u1", store.IdentityPatch{BirthDate: &bad}), ErrInvalidDate)

	gender := "Mujer"
	assert.ErrorIs(t, s.Update(ctx, "g1", "u1", store.IdentityPatch{Gender: &gender}), ErrInvalidGender)

	// The record is untouched after rejected updates.
	rec, err := s.Find(ctx, "g1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "15/06/1990", rec.BirthDate)
	assert.Equal(t, "Femenino", rec.Gender)
}

func TestUpdateMissingRecord(t *testing.T) {
	s, _ := newTestStore()
	name := "Luisa"
	err := s.Update(context.Background(), "g1", "ghost", store.IdentityPatch{FirstName: &name})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteTwice(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	_, err := s.Create(ctx, validParams())
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "g1", "u1"))
	assert.ErrorIs(t, s.Delete(ctx, "g1", "u1"), store.ErrNotFound)
}
