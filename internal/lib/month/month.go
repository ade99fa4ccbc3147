// Package month содержит вспомогательные функции для работы с месячным
// окном квоты просмотров.
package month

import (
	"time"
)

// StartOfCurrent возвращает момент 00:00 первого числа месяца, в который
// попадает now, в локации now. Просмотры с этого момента учитываются
// при проверке месячного лимита.
func StartOfCurrent(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

// AgeInDays возвращает возраст записи в сутках (дробный) на момент now.
// Отрицательный возраст из-за рассинхронизации часов не обрезается здесь:
// это ответственность потребителя.
func AgeInDays(createdAt, now time.Time) float64 {
	return now.Sub(createdAt).Hours() / 24
}
