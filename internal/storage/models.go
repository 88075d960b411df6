// Package storage implements Postgres persistence for users, olympiads and results.
package storage

// User is a Telegram account known to the bot.
type User struct {
	TelegramID int64   `db:"telegram_id"`
	SNILS      *string `db:"snils"`
	IsAdmin    bool    `db:"is_admin"`
}

// Olympiad describes a single competition.
type Olympiad struct {
	ID          int64   `db:"id"`
	Name        string  `db:"name"`
	Date        string  `db:"date"`
	Subject     *string `db:"subject"`
	Description *string `db:"description"`
}

// Result is one participant entry for an olympiad.
type Result struct {
	ID          int64   `db:"id"`
	OlympiadID  int64   `db:"olympiad_id"`
	UserSNILS   string  `db:"user_snils"`
	FullName    string  `db:"full_name"`
	Score       *int    `db:"score"`
	Place       *int    `db:"place"`
	DiplomaLink *string `db:"diploma_link"`
}

// ResultView is a result joined with its olympiad for user-facing output.
type ResultView struct {
	OlympiadName string  `db:"olympiad_name"`
	OlympiadDate string  `db:"olympiad_date"`
	Subject      *string `db:"subject"`
	FullName     string  `db:"full_name"`
	Score        *int    `db:"score"`
	Place        *int    `db:"place"`
	DiplomaLink  *string `db:"diploma_link"`
}
