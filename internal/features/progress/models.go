// Package progress — реакции на учебные события: завершение урока
// и успешное зачисление на курс. Каждое событие защищено своей
// guard-строкой, поэтому награда выдаётся не больше одного раза.
package progress

import "serotonyl.ru/edu-engagement/internal/features/streak"

// CompletionOutcome — результат завершения урока.
type CompletionOutcome struct {
	UserID           int64          `json:"user_id"`
	LessonID         int64          `json:"lesson_id"`
	Completed        bool           `json:"completed"`         // урок засчитан сейчас
	AlreadyCompleted bool           `json:"already_completed"` // урок был засчитан раньше
	KarmaAwarded     int64          `json:"karma_awarded"`
	Balance          int64          `json:"balance,omitempty"`
	Streak           *streak.Streak `json:"streak,omitempty"`
	Message          string         `json:"message"`
}

// EnrollmentOutcome — результат бонуса за зачисление.
type EnrollmentOutcome struct {
	UserID         int64  `json:"user_id"`
	CourseID       int64  `json:"course_id"`
	Awarded        bool   `json:"awarded"`
	AlreadyAwarded bool   `json:"already_awarded"`
	KarmaAwarded   int64  `json:"karma_awarded"`
	Balance        int64  `json:"balance,omitempty"`
	Message        string `json:"message"`
}

// Сообщения для пользователя
const (
	MsgLessonCompleted        = "Урок завершён"
	MsgLessonAlreadyCompleted = "Урок уже завершён"
	MsgEnrollmentAwarded      = "Бонус за зачисление начислен"
	MsgEnrollmentAlready      = "Бонус за зачисление уже начислен"
)
