package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignUpDraft_Stages(t *testing.T) {
	t.Run("walks every stage in order", func(t *testing.T) {
		d := NewSignUpDraft("d-1", time.Now())
		assert.Equal(t, SignUpStageNames, d.Stage)

		require.NoError(t, d.SetNames(" Jane ", "Doe"))
		assert.Equal(t, "Jane", d.FirstName)
		assert.Equal(t, SignUpStageTelephone, d.Stage)

		require.NoError(t, d.SetTelephone("+254700000000"))
		assert.Equal(t, SignUpStagePIN, d.Stage)

		require.NoError(t, d.ConfirmPIN("1234", "1234"))
		d.MarkComplete()
		assert.Equal(t, SignUpStageComplete, d.Stage)
	})

	t.Run("rejects empty names", func(t *testing.T) {
		d := NewSignUpDraft("d-2", time.Now())
		assert.ErrorIs(t, d.SetNames("Jane", "  "), ErrNamesRequired)
		assert.Equal(t, SignUpStageNames, d.Stage)
	})

	t.Run("rejects out of order steps", func(t *testing.T) {
		d := NewSignUpDraft("d-3", time.Now())
		assert.ErrorIs(t, d.SetTelephone("+254700000000"), ErrDraftStage)
		assert.ErrorIs(t, d.ConfirmPIN("1", "1"), ErrDraftStage)
	})

	t.Run("rejects mismatched PIN confirmation", func(t *testing.T) {
		d := NewSignUpDraft("d-4", time.Now())
		require.NoError(t, d.SetNames("Jane", "Doe"))
		require.NoError(t, d.SetTelephone("+254700000000"))
		assert.ErrorIs(t, d.ConfirmPIN("1234", "4321"), ErrPINMismatch)
		assert.Equal(t, SignUpStagePIN, d.Stage)
	})
}

func TestRequestStatus_Valid(t *testing.T) {
	for _, s := range RequestStatuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, RequestStatus("Done").Valid())
	assert.False(t, RequestStatus("pending").Valid())
}

func TestUserAccount_Identity(t *testing.T) {
	u := &UserAccount{FirstName: "Jane", Surname: "Doe", Telephone: "+254700000000"}
	id := u.Identity()
	assert.Equal(t, "Jane Doe", id.Name)
	assert.Equal(t, "+254700000000", id.Telephone)
	assert.False(t, id.IsAdmin)
	assert.True(t, IsCatalogService("Construction"))
	assert.False(t, IsCatalogService("Plumbing"))
}
