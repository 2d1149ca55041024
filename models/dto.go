package models

type RegisterRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required,min=6"`
	FullName string `json:"full_name" form:"full_name" binding:"required,min=3"`
	Phone    string `json:"phone" form:"phone" binding:"omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" form:"quantity"`
}

type CheckoutRequest struct {
	ShippingAddress string `json:"shipping_address" form:"shipping_address"`
	PaymentMethod   string `json:"payment_method" form:"payment_method"`
}

// UpdateProfileRequest changes only the fields that are sent.
type UpdateProfileRequest struct {
	FullName *string `json:"full_name" form:"full_name" binding:"omitempty,min=3,max=100"`
	Phone    *string `json:"phone" form:"phone" binding:"omitempty,max=20"`
	Address  *string `json:"address" form:"address" binding:"omitempty,max=500"`
}
