package usecase_test

import (
	"context"
	"strings"
	"testing"

	"app/internal/domain/model"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestAdminUserUsecase_List_InvalidPage(t *testing.T) {
	uc := usecase.NewAdminUserUsecase(new(AuthUserRepoMock), new(AdminAuditRepoMock))

	_, err := uc.List(context.Background(), 0, 20)
	assertErrContains(t, err, "invalid page")
}

func TestAdminUserUsecase_UpdateRole_InvalidRole(t *testing.T) {
	uc := usecase.NewAdminUserUsecase(new(AuthUserRepoMock), new(AdminAuditRepoMock))

	err := uc.UpdateRole(context.Background(), 1, 2, usecase.UpdateUserRoleInput{Role: "ADMIN"})
	assertErrContains(t, err, "invalid role")
}

func TestAdminUserUsecase_UpdateRole_OwnRole_Forbidden(t *testing.T) {
	users := new(AuthUserRepoMock)
	uc := usecase.NewAdminUserUsecase(users, new(AdminAuditRepoMock))

	//自分自身の降格・昇格は拒否
	err := uc.UpdateRole(context.Background(), 5, 5, usecase.UpdateUserRoleInput{Role: "user"})
	assertHTTPStatus(t, err, 403)

	users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAdminUserUsecase_UpdateRole_SameRole_NoOp(t *testing.T) {
	users := new(AuthUserRepoMock)
	audit := new(AdminAuditRepoMock)
	uc := usecase.NewAdminUserUsecase(users, audit)

	users.On("FindByID", mock.Anything, int64(2)).Return(&model.User{ID: 2, Role: model.RoleAdmin}, nil)

	err := uc.UpdateRole(context.Background(), 1, 2, usecase.UpdateUserRoleInput{Role: "admin"})
	assert.NoError(t, err)

	users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAdminUserUsecase_UpdateRole_Success_WritesAudit(t *testing.T) {
	ctx := context.Background()

	users := new(AuthUserRepoMock)
	audit := new(AdminAuditRepoMock)
	uc := usecase.NewAdminUserUsecase(users, audit)

	users.On("FindByID", mock.Anything, int64(2)).Return(&model.User{ID: 2, Role: model.RoleUser}, nil)
	users.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.ID == 2 && u.Role == model.RoleAdmin
	})).Return(nil)
	audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.ActorUserID == 1 &&
			l.ResourceID == 2 &&
			strings.Contains(l.BeforeJSON, "user") &&
			strings.Contains(l.AfterJSON, "admin")
	})).Return(nil)

	err := uc.UpdateRole(ctx, 1, 2, usecase.UpdateUserRoleInput{Role: "admin"})
	assert.NoError(t, err)

	users.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestAdminUserUsecase_SetActive_OwnAccount_Forbidden(t *testing.T) {
	users := new(AuthUserRepoMock)
	uc := usecase.NewAdminUserUsecase(users, new(AdminAuditRepoMock))

	err := uc.SetActive(context.Background(), 5, 5, false)
	assertHTTPStatus(t, err, 403)
}

func TestAdminUserUsecase_SetActive_Deactivates(t *testing.T) {
	users := new(AuthUserRepoMock)
	uc := usecase.NewAdminUserUsecase(users, new(AdminAuditRepoMock))

	users.On("FindByID", mock.Anything, int64(2)).Return(&model.User{ID: 2, IsActive: true}, nil)
	users.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.ID == 2 && !u.IsActive
	})).Return(nil)

	err := uc.SetActive(context.Background(), 1, 2, false)
	assert.NoError(t, err)

	users.AssertExpectations(t)
}
