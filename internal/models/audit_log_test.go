package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditMetadata_Value(t *testing.T) {
	v, err := AuditMetadata(nil).Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = AuditMetadata{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v, "empty metadata is stored as NULL")

	v, err = AuditMetadata{"name": "Groceries"}.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Groceries"}`, v.(string))
}

func TestAuditMetadata_Scan(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		want    AuditMetadata
		wantErr bool
	}{
		{name: "postgres bytes", input: []byte(`{"amount":"12.50"}`), want: AuditMetadata{"amount": "12.50"}},
		{name: "sqlite text", input: `{"type":"deposit"}`, want: AuditMetadata{"type": "deposit"}},
		{name: "null", input: nil, want: nil},
		{name: "empty", input: "", want: nil},
		{name: "unsupported", input: 42, wantErr: true},
		{name: "broken json", input: `{"type":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m AuditMetadata
			err := m.Scan(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, m)
		})
	}
}

func TestAuditLog_BeforeCreate(t *testing.T) {
	log := &AuditLog{Action: AuditActionCreate, Resource: AuditResourceCategory}
	require.NoError(t, log.BeforeCreate(nil))

	assert.NotEqual(t, uuid.Nil, log.ID)
	assert.False(t, log.CreatedAt.IsZero())

	id := log.ID
	require.NoError(t, log.BeforeCreate(nil))
	assert.Equal(t, id, log.ID, "an assigned id is kept")
}

func TestAuditLog_TableName(t *testing.T) {
	assert.Equal(t, "audit_logs", (&AuditLog{}).TableName())
}
