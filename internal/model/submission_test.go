package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestJudgeStatusFromCode(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		want    JudgeStatus
		wantErr bool
	}{
		{name: "正常系: 1 は in_queue", code: 1, want: StatusInQueue},
		{name: "正常系: 2 は processing", code: 2, want: StatusProcessing},
		{name: "正常系: 3 は accepted", code: 3, want: StatusAccepted},
		{name: "正常系: 4 は wrong_answer", code: 4, want: StatusWrongAnswer},
		{name: "正常系: 5 は time_limit_exceeded", code: 5, want: StatusTimeLimitExceeded},
		{name: "正常系: 6 は compilation_error", code: 6, want: StatusCompilationError},
		{name: "正常系: 7 は runtime_error", code: 7, want: StatusRuntimeError},
		{name: "正常系: 9 は runtime_error に集約される", code: 9, want: StatusRuntimeError},
		{name: "正常系: 12 は runtime_error に集約される", code: 12, want: StatusRuntimeError},
		{name: "正常系: 13 は internal_error", code: 13, want: StatusInternalError},
		{name: "正常系: 14 は exec_format_error", code: 14, want: StatusExecFormatError},
		{name: "異常系: 0 は未知のコード", code: 0, wantErr: true},
		{name: "異常系: 15 は未知のコード", code: 15, wantErr: true},
		{name: "異常系: 負数は未知のコード", code: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := JudgeStatusFromCode(tt.code)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPermissionGrant_Allows(t *testing.T) {
	grant := &PermissionGrant{
		Permissions: datatypes.NewJSONType(GrantedPermissions{
			ResourceLesson: {ActionCreate, ActionUpdate},
		}),
	}

	assert.True(t, grant.Allows(ResourceLesson, ActionCreate))
	assert.True(t, grant.Allows(ResourceLesson, ActionUpdate))
	assert.False(t, grant.Allows(ResourceLesson, ActionDelete))
	assert.False(t, grant.Allows(ResourceCourse, ActionCreate))

	var nilGrant *PermissionGrant
	assert.False(t, nilGrant.Allows(ResourceLesson, ActionCreate))
}
