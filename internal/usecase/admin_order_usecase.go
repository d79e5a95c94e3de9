package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type AdminOrderUsecase struct {
	tx        repo.TransactionManager
	auditRepo repo.AuditLogRepository
}

func NewAdminOrderUsecase(tx repo.TransactionManager, auditRepo repo.AuditLogRepository) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, auditRepo: auditRepo}
}

type AdminUpdateOrderStatusInput struct {
	Status string
}

// 注文一覧（管理者）
func (u *AdminOrderUsecase) List(ctx context.Context, f repo.AdminOrderListFilter) ([]OrderOutput, error) {
	// page/limitの最低限チェック
	if f.Page < 1 {
		return []OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return []OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if f.Status != "" {
		if _, ok := model.ParseOrderStatus(f.Status); !ok {
			return []OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
		}
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListAdmin(ctx, f)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

// ステータス更新。遷移表に無い変更は409で拒否し、
// cancelled / returned への遷移では在庫を戻す。
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorAdminUserID int64, orderID int64, in AdminUpdateOrderStatusInput) error {
	if actorAdminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	newStatus, ok := model.ParseOrderStatus(strings.TrimSpace(in.Status))
	if !ok {
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 注文取得
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// すでに同じなら何もしない（200）
		if o.OrderStatus == newStatus {
			return nil
		}

		// 遷移表チェック（終端からの変更もここで弾かれる）
		if !o.OrderStatus.CanTransitionTo(newStatus) {
			return NewHTTPError(http.StatusConflict, "invalid status transition")
		}

		// cancelled / returned になるときだけ在庫戻し
		if newStatus == model.OrderStatusCancelled || newStatus == model.OrderStatusReturned {
			items, err := r.OrderItems().ListByOrderID(ctx, orderID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			for _, it := range items {
				//商品が消えている明細は戻し先が無い
				if it.ProductID == nil {
					continue
				}
				if err := r.Inventory().IncreaseStock(ctx, *it.ProductID, it.Quantity); err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
			}
		}

		// ステータス更新
		beforeStatus := string(o.OrderStatus)
		if err := r.Orders().UpdateStatus(ctx, orderID, newStatus); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// 監査ログ（UPDATE_ORDER_STATUS）
		beforeJSON := `{"order_status":"` + beforeStatus + `"}`
		afterJSON := `{"order_status":"` + string(newStatus) + `"}`
		if err := u.auditRepo.Create(ctx, model.AuditLog{
			ActorUserID:  actorAdminUserID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   beforeJSON,
			AfterJSON:    afterJSON,
			CreatedAt:    time.Now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		return nil
	})
}
