package usecase

import (
	"context"
	"net/http"
	"strings"

	"app/internal/infra/session"
	repo "app/internal/repository"
)

// CartUsecase は /cart と /guest/cart の業務ロジックです。
// カート明細の変更と合計(Total)の保存は必ず同じトランザクションで行い、
// 「保存された合計 = 明細から再計算した合計」を常に保ちます。
type CartUsecase struct {
	tx     repo.TransactionManager
	guests session.GuestCartStore
}

func NewCartUsecase(tx repo.TransactionManager, guests session.GuestCartStore) *CartUsecase {
	return &CartUsecase{tx: tx, guests: guests}
}

// price は unit_price_snapshot（追加時点の価格）を返します。
type CartItemResponse struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
}

type CartResponse struct {
	Items []CartItemResponse `json:"items"`
	Total int64              `json:"total"`
}

type AddCartInput struct {
	ProductID int64
	Quantity  int64
}

type UpdateCartItemInput struct {
	Quantity int64
}

// GetCart はカート取得（無ければACTIVEを作って空を返す）。
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var out CartResponse
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().GetOrCreateActiveByUserID(ctx, userID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out, err = u.refreshCart(ctx, r, cart.ID)
		return err
	})
	if err != nil {
		return CartResponse{}, err
	}
	return out, nil
}

// AddToCart はカートに追加（同一商品は数量加算）。
func (u *CartUsecase) AddToCart(ctx context.Context, userID int64, in AddCartInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	var out CartResponse
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// ACTIVEカート取得（無ければ作成）
		cart, err := r.Carts().GetOrCreateActiveByUserID(ctx, userID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// 商品チェック（公開のみ）
		p, err := r.Products().FindByID(ctx, in.ProductID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusBadRequest, "invalid")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !p.IsActive {
			return NewHTTPError(http.StatusBadRequest, "invalid")
		}

		// 既存数量を調べて加算後の在庫チェック
		items, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		var existingQty int64 = 0
		for _, it := range items {
			if it.ProductID == in.ProductID {
				existingQty = it.Quantity
				break
			}
		}

		newQty := existingQty + in.Quantity
		if newQty > p.Stock {
			return NewHTTPError(http.StatusBadRequest, "stock exceeded")
		}

		// Upsert（同一商品は加算）
		// unit_price_snapshot は「追加時点の価格」を渡す
		if err := r.CartItems().UpsertByCartAndProduct(ctx, cart.ID, in.ProductID, in.Quantity, p.Price); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out, err = u.refreshCart(ctx, r, cart.ID)
		return err
	})
	if err != nil {
		return CartResponse{}, err
	}
	return out, nil
}

// 数量変更（所有チェック＋在庫チェック）。
func (u *CartUsecase) UpdateCartItem(ctx context.Context, userID int64, cartItemID int64, in UpdateCartItemInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if cartItemID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	var out CartResponse
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		owned, err := r.CartItems().IsOwnedByUser(ctx, cartItemID, userID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !owned {
			//他人の明細は「存在しない扱い」
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		item, err := r.CartItems().FindByID(ctx, cartItemID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//商品の在庫チェック
		p, err := r.Products().FindByID(ctx, item.ProductID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusBadRequest, "invalid")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !p.IsActive {
			return NewHTTPError(http.StatusBadRequest, "invalid")
		}
		if in.Quantity > p.Stock {
			return NewHTTPError(http.StatusBadRequest, "stock exceeded")
		}

		if err := r.CartItems().UpdateQuantity(ctx, cartItemID, in.Quantity); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out, err = u.refreshCart(ctx, r, item.CartID)
		return err
	})
	if err != nil {
		return CartResponse{}, err
	}
	return out, nil
}

// 明細削除
func (u *CartUsecase) DeleteCartItem(ctx context.Context, userID int64, cartItemID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if cartItemID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out CartResponse
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		owned, err := r.CartItems().IsOwnedByUser(ctx, cartItemID, userID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !owned {
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		item, err := r.CartItems().FindByID(ctx, cartItemID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.CartItems().DeleteByID(ctx, cartItemID); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out, err = u.refreshCart(ctx, r, item.CartID)
		return err
	})
	if err != nil {
		return CartResponse{}, err
	}
	return out, nil
}

// ClearCart は明細を全削除して合計を0に戻す。
func (u *CartUsecase) ClearCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().GetOrCreateActiveByUserID(ctx, userID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.Carts().Clear(ctx, cart.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
	if err != nil {
		return CartResponse{}, err
	}
	return CartResponse{Items: []CartItemResponse{}, Total: 0}, nil
}

// MergeGuestCart はゲストカートの行を本人のACTIVEカートへ加算して取り込む。
// 取り込み後、ゲストカートは消す。
func (u *CartUsecase) MergeGuestCart(ctx context.Context, userID int64, guestID string) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	guestID = strings.TrimSpace(guestID)
	if guestID == "" {
		return nil
	}
	if u.guests == nil {
		return nil
	}

	lines, err := u.guests.Get(ctx, guestID)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "guest cart error")
	}
	if len(lines) == 0 {
		return nil
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().GetOrCreateActiveByUserID(ctx, userID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		items, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		existing := make(map[int64]int64, len(items))
		for _, it := range items {
			existing[it.ProductID] = it.Quantity
		}

		for _, line := range lines {
			if line.ProductID <= 0 || line.Quantity < 1 {
				continue
			}

			p, err := r.Products().FindByID(ctx, line.ProductID)
			if err == repo.ErrNotFound {
				//消えた商品は黙って捨てる
				continue
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !p.IsActive {
				continue
			}

			//在庫を超える分は在庫上限まで取り込む
			addQty := line.Quantity
			if existing[line.ProductID]+addQty > p.Stock {
				addQty = p.Stock - existing[line.ProductID]
			}
			if addQty < 1 {
				continue
			}

			if err := r.CartItems().UpsertByCartAndProduct(ctx, cart.ID, line.ProductID, addQty, p.Price); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			existing[line.ProductID] += addQty
		}

		_, err = u.refreshCart(ctx, r, cart.ID)
		return err
	})
	if err != nil {
		return err
	}

	return u.guests.Delete(ctx, guestID)
}

// GetGuestCart はRedis上のゲストカートを表示用に組み立てる。
func (u *CartUsecase) GetGuestCart(ctx context.Context, guestID string) (CartResponse, error) {
	guestID = strings.TrimSpace(guestID)
	if guestID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid guest_id")
	}
	if u.guests == nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "guest cart not configured")
	}

	lines, err := u.guests.Get(ctx, guestID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "guest cart error")
	}

	var out CartResponse
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		out = u.buildGuestResponse(ctx, r, lines)
		return nil
	})
	if err != nil {
		return CartResponse{}, err
	}
	return out, nil
}

// AddToGuestCart はゲストカートへ追加（同一商品は数量加算）。
func (u *CartUsecase) AddToGuestCart(ctx context.Context, guestID string, in AddCartInput) (CartResponse, error) {
	guestID = strings.TrimSpace(guestID)
	if guestID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid guest_id")
	}
	if in.ProductID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}
	if u.guests == nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "guest cart not configured")
	}

	lines, err := u.guests.Get(ctx, guestID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "guest cart error")
	}

	var out CartResponse
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByID(ctx, in.ProductID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusBadRequest, "invalid")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !p.IsActive {
			return NewHTTPError(http.StatusBadRequest, "invalid")
		}

		var existingQty int64 = 0
		for _, line := range lines {
			if line.ProductID == in.ProductID {
				existingQty = line.Quantity
				break
			}
		}
		if existingQty+in.Quantity > p.Stock {
			return NewHTTPError(http.StatusBadRequest, "stock exceeded")
		}

		lines = upsertGuestLine(lines, in.ProductID, in.Quantity)
		out = u.buildGuestResponse(ctx, r, lines)
		return nil
	})
	if err != nil {
		return CartResponse{}, err
	}

	if err := u.guests.Save(ctx, guestID, lines); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "guest cart error")
	}
	return out, nil
}

// RemoveFromGuestCart は商品単位で行を消す。
func (u *CartUsecase) RemoveFromGuestCart(ctx context.Context, guestID string, productID int64) (CartResponse, error) {
	guestID = strings.TrimSpace(guestID)
	if guestID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid guest_id")
	}
	if productID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if u.guests == nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "guest cart not configured")
	}

	lines, err := u.guests.Get(ctx, guestID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "guest cart error")
	}

	kept := make([]session.GuestCartLine, 0, len(lines))
	found := false
	for _, line := range lines {
		if line.ProductID == productID {
			found = true
			continue
		}
		kept = append(kept, line)
	}
	if !found {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	if err := u.guests.Save(ctx, guestID, kept); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "guest cart error")
	}

	var out CartResponse
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		out = u.buildGuestResponse(ctx, r, kept)
		return nil
	})
	if err != nil {
		return CartResponse{}, err
	}
	return out, nil
}

// refreshCart は明細からレスポンスを組み立て、再計算した合計を
// 同じトランザクション内で保存する。
func (u *CartUsecase) refreshCart(ctx context.Context, r repo.TxRepos, cartID int64) (CartResponse, error) {
	items, err := r.CartItems().ListByCartID(ctx, cartID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	respItems := make([]CartItemResponse, 0, len(items))
	var total int64 = 0

	for _, it := range items {
		p, err := r.Products().FindByID(ctx, it.ProductID)
		if err == repo.ErrNotFound {
			//商品が消えた行は同じトランザクション内で片付ける
			if err := r.CartItems().DeleteByID(ctx, it.ID); err != nil {
				return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
			}
			continue
		}
		if err != nil {
			return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !p.IsActive {
			//非公開になった商品の行も残さない（復活時の古いスナップショット防止）
			if err := r.CartItems().DeleteByID(ctx, it.ID); err != nil {
				return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
			}
			continue
		}

		respItems = append(respItems, CartItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Name:      p.Name,
			Price:     it.UnitPriceSnapshot,
			Quantity:  it.Quantity,
		})

		total += it.UnitPriceSnapshot * it.Quantity
	}

	if err := r.Carts().UpdateTotal(ctx, cartID, total); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return CartResponse{Items: respItems, Total: total}, nil
}

// ゲストカートは現在価格で表示する（スナップショットは持たない）。
func (u *CartUsecase) buildGuestResponse(ctx context.Context, r repo.TxRepos, lines []session.GuestCartLine) CartResponse {
	respItems := make([]CartItemResponse, 0, len(lines))
	var total int64 = 0

	for _, line := range lines {
		p, err := r.Products().FindByID(ctx, line.ProductID)
		if err != nil {
			continue
		}
		if !p.IsActive {
			continue
		}

		respItems = append(respItems, CartItemResponse{
			ProductID: line.ProductID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  line.Quantity,
		})
		total += p.Price * line.Quantity
	}

	return CartResponse{Items: respItems, Total: total}
}

func upsertGuestLine(lines []session.GuestCartLine, productID int64, addQty int64) []session.GuestCartLine {
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity += addQty
			return lines
		}
	}
	return append(lines, session.GuestCartLine{ProductID: productID, Quantity: addQty})
}
