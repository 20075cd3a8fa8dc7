package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/paddock/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		sess := domain.NewSession(sessionID)
		sess.Form.Step = 2
		sess.Form.UserDetails.Name = "Ada"
		sess.Form.UserDetails.SelectedDriver = &domain.Driver{DriverID: "leclerc", GivenName: "Charles"}
		sess.Form.ValidationError["email"] = "Email is required"
		sess.Pending = &domain.NavState{UserDetails: sess.Form.UserDetails}

		err := store.Save(ctx, sessionID, sess)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, 2, loaded.Form.Step)
		assert.Equal(t, "Ada", loaded.Form.UserDetails.Name)
		require.NotNil(t, loaded.Form.UserDetails.SelectedDriver)
		assert.Equal(t, "leclerc", loaded.Form.UserDetails.SelectedDriver.DriverID)
		assert.Equal(t, "Email is required", loaded.Form.ValidationError["email"])
		require.NotNil(t, loaded.Pending)
		assert.Equal(t, "Ada", loaded.Pending.UserDetails.Name)
	})

	t.Run("Load Returns Isolated Copy", func(t *testing.T) {
		sess := domain.NewSession(sessionID)
		require.NoError(t, store.Save(ctx, sessionID, sess))

		// Mutating the saved value after Save must not leak into the store.
		sess.Form.UserDetails.Name = "mutated"

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "", loaded.Form.UserDetails.Name)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewSession(sessionID))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewSession(id1))
		_ = store.Save(ctx, id2, domain.NewSession(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
