package models

import (
	"testing"

	"github.com/dmitrijs2005/seedclassifier/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, s := range []string{"admin", "shiftLead", "dataScientist"} {
		r, err := ParseRole(s)
		require.NoError(t, err)
		assert.Equal(t, Role(s), r)
	}

	_, err := ParseRole("operator")
	assert.ErrorIs(t, err, common.ErrorUnknownRole)
}

func TestRole_Can(t *testing.T) {
	tests := []struct {
		role Role
		perm Permission
		want bool
	}{
		{RoleAdmin, PermCreateUsers, true},
		{RoleAdmin, PermUploadImages, true},
		{RoleAdmin, PermReadReports, true},
		{RoleShiftLead, PermUploadImages, true},
		{RoleShiftLead, PermReadReports, false},
		{RoleShiftLead, PermCreateUsers, false},
		{RoleDataScientist, PermReadReports, true},
		{RoleDataScientist, PermUploadImages, false},
		{Role("ghost"), PermUploadImages, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.perm), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.Can(tt.perm))
		})
	}
}
