// Package canva реализует клиент внешнего API Canva: обмен кода авторизации
// на токены (OAuth2 + PKCE), обновление токенов, профиль пользователя,
// список шаблонов и провижининг командного доступа.
package canva

import "time"

// Tokens пара токенов, полученная от провайдера.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	Scopes       []string
}

// Profile профиль пользователя во внешней системе.
type Profile struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// DesignSummary краткое описание дизайна или шаблона из листинга.
type DesignSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	EditURL      string `json:"edit_url,omitempty"`
	ViewURL      string `json:"view_url,omitempty"`
}

// Listing страница результатов листинга шаблонов или дизайнов.
type Listing struct {
	Items        []DesignSummary `json:"items"`
	Continuation string          `json:"continuation,omitempty"`
}

// Provisioned результат провижининга командного доступа.
type Provisioned struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	Status     string    `json:"status"`
	ApprovedAt time.Time `json:"approved_at"`
	AdminID    string    `json:"admin_id"`
}

type listingResponse struct {
	Items        []designItem `json:"items"`
	Continuation string       `json:"continuation"`
}

type designItem struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Thumbnail struct {
		URL string `json:"url"`
	} `json:"thumbnail"`
	URLs struct {
		EditURL string `json:"edit_url"`
		ViewURL string `json:"view_url"`
	} `json:"urls"`
}
