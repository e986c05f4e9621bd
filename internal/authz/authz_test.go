package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/safehaven/peer-support-core/internal/model"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name     string
		actor    Actor
		schoolID uint64
		wantErr  error
	}{
		{
			name:     "counselor in own school",
			actor:    Actor{ID: 7, Role: model.RoleCounselor, SchoolID: 1},
			schoolID: 1,
		},
		{
			name:     "counselor in another school",
			actor:    Actor{ID: 7, Role: model.RoleCounselor, SchoolID: 1},
			schoolID: 2,
			wantErr:  ErrCrossSchool,
		},
		{
			name:     "admin crosses schools",
			actor:    Actor{ID: 9, Role: model.RoleAdmin, SchoolID: 1},
			schoolID: 2,
		},
		{
			name:     "student rejected even in own school",
			actor:    Actor{ID: 3, Role: model.RoleStudent, SchoolID: 1},
			schoolID: 1,
			wantErr:  ErrInsufficientRole,
		},
		{
			name:     "unknown role rejected",
			actor:    Actor{ID: 3, Role: "JANITOR", SchoolID: 1},
			schoolID: 1,
			wantErr:  ErrInsufficientRole,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.actor, tt.schoolID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
