package dto

type PurchaseRequest struct {
	ProductID int64 `json:"product_id"`
}

type SellRequest struct {
	HoldingID string `json:"holding_id"`
}

type WithdrawRequest struct {
	Amount             float64 `json:"amount"`
	WithdrawalPassword string  `json:"withdrawal_password"`
}

type RechargeRequest struct {
	Amount    float64 `json:"amount"`
	PromoCode string  `json:"promo_code"`
}

type LinkWalletRequest struct {
	WalletType   string `json:"wallet_type"`
	OwnerName    string `json:"owner_name"`
	WalletNumber string `json:"wallet_number"`
}

type WithdrawalPasswordRequest struct {
	Password string `json:"password"`
}

type ResetWithdrawalPasswordRequest struct {
	LoginPassword string `json:"login_password"`
	NewPassword   string `json:"new_password"`
}

type CheckInResponse struct {
	Reward  float64 `json:"reward"`
	Message string  `json:"message"`
}

type CheckInStatusResponse struct {
	CheckedInToday bool `json:"checked_in_today"`
}

type TeamLevel struct {
	Members []string `json:"members"`
	Bonus   float64  `json:"bonus"`
}

type TeamResponse struct {
	Lv1 TeamLevel `json:"lv1"`
	Lv2 TeamLevel `json:"lv2"`
	Lv3 TeamLevel `json:"lv3"`
}

type ReviewRequest struct {
	Reason string `json:"reason"`
}

type SiteConfigUpsertRequest struct {
	Value string `json:"value"`
	Type  string `json:"type"`
}

type ProductUpsertRequest struct {
	CategoryID    int64   `json:"category_id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	DailyIncome   float64 `json:"daily_income"`
	Validity      int     `json:"validity"`
	TotalQuantity int     `json:"total_quantity"`
	PurchaseLimit int     `json:"purchase_limit"`
	IconURL       string  `json:"icon_url"`
}

type PromoCodeUpsertRequest struct {
	BonusPercent  float64 `json:"bonus_percent"`
	RemainingUses int     `json:"remaining_uses"`
}
