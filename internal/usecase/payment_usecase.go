package usecase

import (
	"context"
	"net/http"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// PaymentUsecase は決済プロバイダからのコールバックを処理します。
type PaymentUsecase struct {
	orderRepo repo.OrderRepository
}

func NewPaymentUsecase(orderRepo repo.OrderRepository) *PaymentUsecase {
	return &PaymentUsecase{orderRepo: orderRepo}
}

type PaymentCallbackInput struct {
	OrderNumber string `json:"order_number"`
	Status      string `json:"status"`
}

type PaymentCallbackOutput struct {
	OrderNumber   string `json:"order_number"`
	PaymentStatus string `json:"payment_status"`
}

// Callback は注文番号で注文を引いて支払いステータスを更新する。
// プロバイダはリトライしてくるので、同じステータスの再送は成功扱い。
func (u *PaymentUsecase) Callback(ctx context.Context, in PaymentCallbackInput) (PaymentCallbackOutput, error) {
	orderNumber := strings.TrimSpace(in.OrderNumber)
	if orderNumber == "" {
		return PaymentCallbackOutput{}, NewHTTPError(http.StatusBadRequest, "invalid order_number")
	}

	//コールバックが伝えられるのは結果だけ。pendingへの巻き戻しは受けない
	status, ok := model.ParsePaymentStatus(strings.TrimSpace(in.Status))
	if !ok || status == model.PaymentStatusPending {
		return PaymentCallbackOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	o, err := u.orderRepo.FindByOrderNumber(ctx, orderNumber)
	if err == repo.ErrNotFound {
		return PaymentCallbackOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return PaymentCallbackOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//再送は冪等に成功させる
	if o.PaymentStatus == status {
		return PaymentCallbackOutput{OrderNumber: orderNumber, PaymentStatus: string(status)}, nil
	}

	//completedで確定した支払いは覆さない
	if o.PaymentStatus == model.PaymentStatusCompleted {
		return PaymentCallbackOutput{}, NewHTTPError(http.StatusConflict, "payment already completed")
	}

	if err := u.orderRepo.UpdatePaymentStatus(ctx, o.ID, status); err != nil {
		if err == repo.ErrNotFound {
			return PaymentCallbackOutput{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return PaymentCallbackOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return PaymentCallbackOutput{OrderNumber: orderNumber, PaymentStatus: string(status)}, nil
}
