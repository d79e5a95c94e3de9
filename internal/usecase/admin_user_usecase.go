package usecase

import (
	"context"
	"net/http"
	"time"

	"app/internal/domain/model"
	"app/internal/repository"
)

// AdminUserUsecase は管理画面のユーザー管理です。
// ロール変更はsuperadminだけが呼べる（ルーティング側で絞る）。
type AdminUserUsecase struct {
	users     repository.UserRepository
	auditRepo repository.AuditLogRepository
}

func NewAdminUserUsecase(users repository.UserRepository, auditRepo repository.AuditLogRepository) *AdminUserUsecase {
	return &AdminUserUsecase{users: users, auditRepo: auditRepo}
}

type AdminUserListOutput struct {
	Items []UserDTO `json:"items"`
	Total int64     `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}

func (u *AdminUserUsecase) List(ctx context.Context, page int, limit int) (AdminUserListOutput, error) {
	if page < 1 {
		return AdminUserListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return AdminUserListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	users, total, err := u.users.List(ctx, page, limit)
	if err != nil {
		return AdminUserListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	items := make([]UserDTO, 0, len(users))
	for i := range users {
		items = append(items, toUserDTO(&users[i]))
	}

	return AdminUserListOutput{
		Items: items,
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}

type UpdateUserRoleInput struct {
	Role string
}

// UpdateRole はロール変更。自分自身のロールは変更できない。
func (u *AdminUserUsecase) UpdateRole(ctx context.Context, actorUserID int64, targetUserID int64, in UpdateUserRoleInput) error {
	if actorUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if targetUserID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	newRole, ok := model.ParseRole(in.Role)
	if !ok {
		return NewHTTPError(http.StatusBadRequest, "invalid role")
	}

	//自分のロールは触れない（降格で管理者が消える事故を防ぐ）
	if actorUserID == targetUserID {
		return NewHTTPError(http.StatusForbidden, "may not change own role")
	}

	target, err := u.users.FindByID(ctx, targetUserID)
	if err != nil || target == nil {
		return NewHTTPError(http.StatusNotFound, "not found")
	}

	if target.Role == newRole {
		return nil
	}

	beforeJSON := `{"role":"` + string(target.Role) + `"}`
	afterJSON := `{"role":"` + string(newRole) + `"}`

	target.Role = newRole
	target.UpdatedAt = time.Now()
	if err := u.users.Update(ctx, target); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//監査ログ（UPDATE_USER_ROLE）
	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorUserID,
		Action:       model.AuditActionUpdateUserRole,
		ResourceType: model.AuditResourceUser,
		ResourceID:   targetUserID,
		BeforeJSON:   beforeJSON,
		AfterJSON:    afterJSON,
		CreatedAt:    time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return nil
}

// SetActive はアカウントの停止・再開。自分自身は止められない。
func (u *AdminUserUsecase) SetActive(ctx context.Context, actorUserID int64, targetUserID int64, active bool) error {
	if actorUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if targetUserID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if actorUserID == targetUserID {
		return NewHTTPError(http.StatusForbidden, "may not change own account")
	}

	target, err := u.users.FindByID(ctx, targetUserID)
	if err != nil || target == nil {
		return NewHTTPError(http.StatusNotFound, "not found")
	}

	if target.IsActive == active {
		return nil
	}

	target.IsActive = active
	target.UpdatedAt = time.Now()
	if err := u.users.Update(ctx, target); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
