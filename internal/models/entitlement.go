package models

// FreeTemplateLimit месячный лимит просмотров шаблонов для пользователей
// без активной платной подписки.
const FreeTemplateLimit = 10

// UnlimitedTemplates значение лимита для безлимитного доступа.
const UnlimitedTemplates = -1

// Entitlement результат вычисления прав доступа пользователя к каталогу
// шаблонов. Вычисляется на каждый запрос чтения, без кэширования:
// смена подписки должна действовать немедленно.
type Entitlement struct {
	IsUnlimited           bool   `json:"is_unlimited"`
	TemplateLimit         int    `json:"template_limit"`
	PlanName              string `json:"plan_name"`
	HasActiveSubscription bool   `json:"has_active_subscription"`
}
