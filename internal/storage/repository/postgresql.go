// Package repository реализует хранилище данных на основе PostgreSQL
// для маркетплейса шаблонов. Предоставляет методы работы с пользователями,
// шаблонами, контентом, заявками на командный доступ, зеркалом подписок
// и историей действий.
//
// Все изменения состояний заявок выполняются условными UPDATE с проверкой
// текущего статуса, а инкременты счётчиков — выражениями count = count + 1,
// чтобы исключить потерянные обновления при конкурентном доступе.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет готовность базы данных.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'templates'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table templates missing or query error: %w", err)
	}
	return nil
}

// marshalStrings сериализует срез строк в JSONB-колонку.
// Пустой срез хранится как пустой массив, а не NULL.
func marshalStrings(values []string) ([]byte, error) {
	if values == nil {
		values = []string{}
	}
	return json.Marshal(values)
}

// unmarshalStrings разбирает JSONB-колонку в срез строк.
func unmarshalStrings(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, err
	}
	return values, nil
}
