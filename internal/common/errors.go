// Package common — errors.go определяет ошибки,
// которые используются во всех модулях сервиса.
// Эти ошибки позволяют обработчикам различать типы проблем
// и отвечать клиенту правильным HTTP-статусом.
package common

import "errors"

// Ошибки «не найдено» — состояние не меняется.
var (
	// ErrUserNotFound — пользователь не найден в базе
	ErrUserNotFound = errors.New("пользователь не найден")
	// ErrPostNotFound — пост сообщества не найден
	ErrPostNotFound = errors.New("пост не найден")
	// ErrMockTestNotFound — пробный тест не найден
	ErrMockTestNotFound = errors.New("пробный тест не найден")
	// ErrAttemptNotFound — у пользователя нет попыток по тесту
	ErrAttemptNotFound = errors.New("попытки не найдены")
	// ErrStreakNotFound — у пользователя ещё не было активности
	ErrStreakNotFound = errors.New("стрик не найден")
)

// Ошибки входных данных
var (
	// ErrInvalidAmount — нулевая сумма начисления
	ErrInvalidAmount = errors.New("сумма начисления не может быть нулевой")
	// ErrInvalidReason — пустая причина начисления
	ErrInvalidReason = errors.New("причина начисления обязательна")
	// ErrInvalidScore — процент вне диапазона [0, 100] или отрицательный балл
	ErrInvalidScore = errors.New("некорректный результат теста")
	// ErrInvalidID — идентификатор не положительное число
	ErrInvalidID = errors.New("некорректный идентификатор")
	// ErrInvalidLimit — некорректный размер страницы
	ErrInvalidLimit = errors.New("некорректный limit")
)

// Ошибки хранилища
var (
	// ErrStorageFailure — атомарная операция не зафиксирована.
	// Повторять можно только после проверки своего guard-а идемпотентности.
	ErrStorageFailure = errors.New("ошибка хранилища, повторите позже")
)

// Ошибки доступа
var (
	// ErrUnauthorized — не передан идентификатор пользователя или токен
	ErrUnauthorized = errors.New("требуется авторизация")
	// ErrForbidden — неверный токен
	ErrForbidden = errors.New("доступ запрещён")
	// ErrRateLimited — слишком много запросов
	ErrRateLimited = errors.New("слишком много запросов, подождите")
)
