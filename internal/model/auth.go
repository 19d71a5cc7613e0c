package model

// LoginRequest はログインAPIのリクエストボディ
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse はログイン成功時のレスポンス
type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

// JWTクレーム名。slug クレームはテナントの現在の slug と照合され、
// slug 変更後の旧トークンを失効させる。
const (
	ClaimRole       = "role"
	ClaimTenantID   = "tenant_id"
	ClaimTenantSlug = "slug"
)
