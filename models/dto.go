package models

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// CreateArticleRequest binds from JSON or from multipart form fields.
type CreateArticleRequest struct {
	Name    string `json:"name" form:"name" validate:"required,max=255"`
	Content string `json:"content" form:"content" validate:"required"`
	Image   string `json:"-" form:"-"`
}

type UpdateArticleRequest struct {
	Name    *string `json:"name" form:"name" validate:"omitempty,min=1,max=255"`
	Content *string `json:"content" form:"content" validate:"omitempty,min=1"`
}

type ArticleListParams struct {
	Name   string `form:"name"`
	SortBy string `form:"sortBy"`
	Page   string `form:"page"`
	Limit  string `form:"limit"`
}
