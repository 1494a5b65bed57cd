package vault

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/cryptox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const masterPassword = "CorrectHorse1!"

func setUpVault(t *testing.T) (*Vault, *memStore) {
	t.Helper()
	store := &memStore{}
	v := New(store, nil)
	require.NoError(t, v.Setup(context.Background(), masterPassword))
	return v, store
}

func strPtr(s string) *string { return &s }

func TestVault_StatusLifecycle(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	v := New(store, nil)

	st, err := v.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusNotSetUp, st)

	require.NoError(t, v.Setup(ctx, masterPassword))
	st, _ = v.Status(ctx)
	assert.Equal(t, StatusUnlocked, st)

	v.Lock()
	st, _ = v.Status(ctx)
	assert.Equal(t, StatusLocked, st)
	assert.Equal(t, "locked", st.String())

	require.NoError(t, v.Unlock(ctx, masterPassword))
	st, _ = v.Status(ctx)
	assert.Equal(t, StatusUnlocked, st)
}

func TestVault_SetupStoresSaltAndCheck(t *testing.T) {
	_, store := setUpVault(t)

	salt, err := cryptox.TextToBytes(store.salt)
	require.NoError(t, err)
	assert.Len(t, salt, cryptox.SaltSize)

	require.NotNil(t, store.key)
	assert.NotEmpty(t, store.key.Ciphertext)
	assert.NotContains(t, store.key.Ciphertext, keyCheckPlaintext)
}

func TestVault_SetupTwice(t *testing.T) {
	v, _ := setUpVault(t)
	assert.ErrorIs(t, v.Setup(context.Background(), masterPassword), ErrAlreadySetUp)
}

func TestVault_SetupUsesStoredSalt(t *testing.T) {
	ctx := context.Background()
	existing := cryptox.BytesToText(testSalt)
	store := &memStore{salt: existing}

	v := New(store, nil)
	require.NoError(t, v.Setup(ctx, masterPassword))
	assert.Equal(t, existing, store.salt)

	// a key derived from the stored salt opens the check
	s := NewSession()
	require.NoError(t, s.Unlock(masterPassword, testSalt))
	got, err := s.Decrypt(store.key.Ciphertext, store.key.IV)
	require.NoError(t, err)
	assert.Equal(t, keyCheckPlaintext, got)
}

func TestVault_SetupLosesRace(t *testing.T) {
	store := &memStore{keyTaken: true}
	v := New(store, nil)

	err := v.Setup(context.Background(), masterPassword)
	assert.ErrorIs(t, err, ErrAlreadySetUp)
	assert.False(t, v.Session().IsUnlocked())
}

func TestVault_SetupEmptyPassword(t *testing.T) {
	v := New(&memStore{}, nil)
	err := v.Setup(context.Background(), "")
	assert.ErrorIs(t, err, cryptox.ErrInvalidInput)
	assert.False(t, v.Session().IsUnlocked())
}

func TestVault_Unlock(t *testing.T) {
	ctx := context.Background()

	t.Run("not set up", func(t *testing.T) {
		v := New(&memStore{}, nil)
		assert.ErrorIs(t, v.Unlock(ctx, masterPassword), ErrNotSetUp)
	})

	t.Run("salt without key check", func(t *testing.T) {
		v := New(&memStore{salt: cryptox.BytesToText(testSalt)}, nil)
		assert.ErrorIs(t, v.Unlock(ctx, masterPassword), ErrNotSetUp)
	})

	t.Run("wrong password", func(t *testing.T) {
		v, _ := setUpVault(t)
		v.Lock()
		assert.ErrorIs(t, v.Unlock(ctx, "WrongHorse2@"), ErrWrongPassword)
		assert.False(t, v.Session().IsUnlocked())
	})

	t.Run("wrong password relocks an open session", func(t *testing.T) {
		v, _ := setUpVault(t)
		assert.ErrorIs(t, v.Unlock(ctx, "WrongHorse2@"), ErrWrongPassword)
		assert.False(t, v.Session().IsUnlocked())
	})

	t.Run("corrupt stored salt", func(t *testing.T) {
		v := New(&memStore{salt: "%%%"}, nil)
		assert.ErrorIs(t, v.Unlock(ctx, masterPassword), cryptox.ErrInvalidInput)
	})

	t.Run("fresh session", func(t *testing.T) {
		_, store := setUpVault(t)
		other := New(store, NewSession())
		require.NoError(t, other.Unlock(ctx, masterPassword))
	})
}

func TestVault_AddListReveal(t *testing.T) {
	ctx := context.Background()
	v, store := setUpVault(t)

	id1, err := v.Add(ctx, CredentialInput{Website: " example.com ", Username: "alice", Password: "Sup3rSecret!"})
	require.NoError(t, err)
	id2, err := v.Add(ctx, CredentialInput{Website: "bank.example", Username: "alice", Password: "n0tes", Category: "Finance", Notes: strPtr("pin 1234")})
	require.NoError(t, err)

	rec := store.record(id1)
	assert.Equal(t, "example.com", rec.Website)
	assert.Equal(t, DefaultCategory, rec.Category)
	assert.Nil(t, rec.Notes)
	assert.NotContains(t, rec.Ciphertext, "Sup3rSecret!")
	iv, err := cryptox.TextToBytes(rec.IV)
	require.NoError(t, err)
	assert.Len(t, iv, cryptox.NonceSize)

	entries, err := v.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, id1, entries[0].ID)
	assert.Equal(t, "Sup3rSecret!", entries[0].Password)
	assert.NoError(t, entries[0].Err)
	assert.Equal(t, "finance", entries[1].Category)
	require.NotNil(t, entries[1].Notes)
	assert.Equal(t, "pin 1234", *entries[1].Notes)

	e, err := v.Reveal(ctx, id2)
	require.NoError(t, err)
	assert.Equal(t, "n0tes", e.Password)

	_, err = v.Reveal(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestVault_AddValidation(t *testing.T) {
	v, _ := setUpVault(t)
	ctx := context.Background()

	_, err := v.Add(ctx, CredentialInput{Website: "  ", Password: "x"})
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = v.Add(ctx, CredentialInput{Website: "example.com"})
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestVault_EditUsesFreshIV(t *testing.T) {
	ctx := context.Background()
	v, store := setUpVault(t)

	id, err := v.Add(ctx, CredentialInput{Website: "example.com", Password: "old"})
	require.NoError(t, err)
	before := store.record(id)

	require.NoError(t, v.Edit(ctx, id, CredentialInput{Website: "example.com", Password: "new", Category: "work"}))
	after := store.record(id)

	assert.NotEqual(t, before.IV, after.IV)
	assert.NotEqual(t, before.Ciphertext, after.Ciphertext)
	assert.Equal(t, "work", after.Category)

	e, err := v.Reveal(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "new", e.Password)
}

func TestVault_EditAndDeleteForeign(t *testing.T) {
	ctx := context.Background()
	v, _ := setUpVault(t)

	err := v.Edit(ctx, "someone-else", CredentialInput{Website: "x", Password: "y"})
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
	assert.ErrorIs(t, v.Delete(ctx, "someone-else"), common.ErrorUnauthorized)
}

func TestVault_Delete(t *testing.T) {
	ctx := context.Background()
	v, _ := setUpVault(t)

	id, err := v.Add(ctx, CredentialInput{Website: "example.com", Password: "pw"})
	require.NoError(t, err)
	require.NoError(t, v.Delete(ctx, id))

	entries, err := v.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestVault_LockedOperations(t *testing.T) {
	ctx := context.Background()
	v, _ := setUpVault(t)
	id, err := v.Add(ctx, CredentialInput{Website: "example.com", Password: "pw"})
	require.NoError(t, err)
	v.Lock()

	_, err = v.Add(ctx, CredentialInput{Website: "example.com", Password: "pw"})
	assert.ErrorIs(t, err, ErrLocked)
	assert.ErrorIs(t, v.Edit(ctx, id, CredentialInput{Website: "example.com", Password: "pw"}), ErrLocked)
	assert.ErrorIs(t, v.Delete(ctx, id), ErrLocked)
	_, err = v.List(ctx)
	assert.ErrorIs(t, err, ErrLocked)
	_, err = v.Reveal(ctx, id)
	assert.ErrorIs(t, err, ErrLocked)
}

func TestVault_ListReportsBrokenRecords(t *testing.T) {
	ctx := context.Background()
	v, store := setUpVault(t)

	good, err := v.Add(ctx, CredentialInput{Website: "good.example", Password: "ok"})
	require.NoError(t, err)
	noIV, err := v.Add(ctx, CredentialInput{Website: "legacy.example", Password: "x"})
	require.NoError(t, err)
	tampered, err := v.Add(ctx, CredentialInput{Website: "tampered.example", Password: "y"})
	require.NoError(t, err)

	store.mutate(noIV, func(r *Record) { r.IV = "" })
	store.mutate(tampered, func(r *Record) {
		ct, _ := cryptox.TextToBytes(r.Ciphertext)
		ct[0] ^= 0xff
		r.Ciphertext = cryptox.BytesToText(ct)
	})

	entries, err := v.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	byID := map[string]Entry{}
	for _, e := range entries {
		byID[e.ID] = e
	}
	assert.NoError(t, byID[good].Err)
	assert.Equal(t, "ok", byID[good].Password)
	assert.ErrorIs(t, byID[noIV].Err, cryptox.ErrMissingMaterial)
	assert.Equal(t, "legacy.example", byID[noIV].Website)
	assert.ErrorIs(t, byID[tampered].Err, cryptox.ErrAuthenticationFailure)
	assert.Empty(t, byID[tampered].Password)

	_, err = v.Reveal(ctx, noIV)
	assert.ErrorIs(t, err, cryptox.ErrMissingMaterial)

	// Find keeps the listed fields of a record it cannot decrypt
	found, err := v.Find(ctx, noIV)
	require.NoError(t, err)
	assert.Equal(t, "legacy.example", found.Website)
	assert.ErrorIs(t, found.Err, cryptox.ErrMissingMaterial)

	require.NoError(t, v.Edit(ctx, noIV, CredentialInput{Website: found.Website, Password: "fresh"}))
	e, err := v.Reveal(ctx, noIV)
	require.NoError(t, err)
	assert.Equal(t, "fresh", e.Password)

	_, err = v.Find(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestVault_ListStoreError(t *testing.T) {
	v, store := setUpVault(t)
	store.listErr = errors.New("connection reset")

	_, err := v.List(context.Background())
	assert.ErrorContains(t, err, "connection reset")
}

func TestVault_SamePasswordDifferentUsers(t *testing.T) {
	ctx := context.Background()
	alice, aliceStore := setUpVault(t)
	bob, bobStore := setUpVault(t)

	assert.NotEqual(t, aliceStore.salt, bobStore.salt)

	id, err := alice.Add(ctx, CredentialInput{Website: "example.com", Password: "shared"})
	require.NoError(t, err)
	rec := aliceStore.record(id)

	_, err = bob.Session().Decrypt(rec.Ciphertext, rec.IV)
	assert.ErrorIs(t, err, cryptox.ErrAuthenticationFailure)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "not set up", StatusNotSetUp.String())
	assert.Equal(t, "unlocked", StatusUnlocked.String())
	assert.True(t, strings.HasPrefix(Status(9).String(), "Status("))
}
