package app

import "serotonyl.ru/edu-engagement/internal/db/postgres"

// Migrations — встроенные SQL-миграции, применяются по порядку при старте.
var Migrations = []postgres.Migration{
	{Version: 1, Name: "users", SQL: migration001Users},
	{Version: 2, Name: "karma_ledger", SQL: migration002Ledger},
	{Version: 3, Name: "streaks", SQL: migration003Streaks},
	{Version: 4, Name: "progress", SQL: migration004Progress},
	{Version: 5, Name: "community_votes", SQL: migration005Votes},
	{Version: 6, Name: "mock_tests", SQL: migration006MockTests},
}

// karma_balance — кеш суммы karma_ledger, меняется только вместе с журналом.
var migration001Users = `
CREATE TABLE IF NOT EXISTS users (
    id BIGINT PRIMARY KEY,
    display_name VARCHAR(255) NOT NULL DEFAULT '',
    karma_balance BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_users_karma_balance ON users(karma_balance DESC);
`

var migration002Ledger = `
CREATE TABLE IF NOT EXISTS karma_ledger (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id),
    amount BIGINT NOT NULL CHECK (amount <> 0),
    reason TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_karma_ledger_user_created ON karma_ledger(user_id, created_at DESC);
`

var migration003Streaks = `
CREATE TABLE IF NOT EXISTS streaks (
    user_id BIGINT PRIMARY KEY REFERENCES users(id),
    current_streak INTEGER NOT NULL DEFAULT 0,
    longest_streak INTEGER NOT NULL DEFAULT 0,
    last_activity_date DATE NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CHECK (longest_streak >= current_streak)
);
`

var migration004Progress = `
CREATE TABLE IF NOT EXISTS lesson_completions (
    user_id BIGINT NOT NULL REFERENCES users(id),
    lesson_id BIGINT NOT NULL,
    completed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (user_id, lesson_id)
);
CREATE TABLE IF NOT EXISTS enrollment_rewards (
    user_id BIGINT NOT NULL REFERENCES users(id),
    course_id BIGINT NOT NULL,
    awarded_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (user_id, course_id)
);
`

var migration005Votes = `
CREATE TABLE IF NOT EXISTS community_posts (
    id BIGSERIAL PRIMARY KEY,
    author_id BIGINT NOT NULL REFERENCES users(id),
    title TEXT NOT NULL DEFAULT '',
    upvotes BIGINT NOT NULL DEFAULT 0,
    downvotes BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS post_votes (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id),
    post_id BIGINT NOT NULL REFERENCES community_posts(id),
    value SMALLINT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (user_id, post_id)
);
CREATE INDEX IF NOT EXISTS idx_post_votes_post_id ON post_votes(post_id);
`

var migration006MockTests = `
CREATE TABLE IF NOT EXISTS mock_tests (
    id BIGSERIAL PRIMARY KEY,
    title TEXT NOT NULL DEFAULT '',
    max_score DOUBLE PRECISION NOT NULL DEFAULT 0,
    passing_threshold DOUBLE PRECISION NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS mock_test_attempts (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id),
    mock_test_id BIGINT NOT NULL REFERENCES mock_tests(id),
    score DOUBLE PRECISION NOT NULL,
    percentage DOUBLE PRECISION NOT NULL,
    status VARCHAR(16) NOT NULL,
    karma_delta BIGINT NOT NULL,
    reason TEXT NOT NULL,
    completed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_mock_test_attempts_user_test
    ON mock_test_attempts(user_id, mock_test_id, completed_at DESC);
`
