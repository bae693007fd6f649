package database

import (
	"context"
	"database/sql"
)

// Schema statements executed in order at startup.  All DDL is
// idempotent (CREATE TABLE IF NOT EXISTS) so restarts are safe.
//
// tickets carries a generated `active` column that is 1 while the
// ticket occupies its seat (BOOKED or SOLD) and NULL otherwise.  The
// unique key over (session_id, seat_id, active) is what closes the
// check-then-insert race between concurrent bookings: MySQL ignores
// NULLs in unique keys, so any number of CANCELLED tickets may exist
// for a seat, but at most one occupying ticket.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		first_name    VARCHAR(100)  NOT NULL DEFAULT '',
		last_name     VARCHAR(100)  NOT NULL DEFAULT '',
		email         VARCHAR(255)  NOT NULL,
		password_hash VARCHAR(255)  NOT NULL,
		phone         VARCHAR(32)   NOT NULL DEFAULT '',
		role          ENUM('ROLE_USER','ROLE_ADMIN') NOT NULL DEFAULT 'ROLE_USER',
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id    BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64)  NOT NULL,
		expires_at DATETIME  NOT NULL,
		revoked_at DATETIME  NULL,
		created_at DATETIME  NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_refresh_hash (token_hash),
		CONSTRAINT fk_refresh_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS movies (
		id              BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		title           VARCHAR(255) NOT NULL,
		description     TEXT         NOT NULL,
		duration_min    INT UNSIGNED NOT NULL,
		genre           VARCHAR(100) NOT NULL DEFAULT '',
		age_restriction TINYINT UNSIGNED NOT NULL DEFAULT 0,
		poster_url      VARCHAR(512) NOT NULL DEFAULT '',
		director        VARCHAR(255) NOT NULL DEFAULT '',
		created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS halls (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		hall_number   INT UNSIGNED NOT NULL,
		name          VARCHAR(255) NOT NULL,
		total_rows    INT UNSIGNED NOT NULL,
		seats_per_row INT UNSIGNED NOT NULL,
		description   TEXT NOT NULL,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_halls_number (hall_number)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS seats (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		hall_id     BIGINT UNSIGNED NOT NULL,
		row_num     INT UNSIGNED NOT NULL,
		seat_number INT UNSIGNED NOT NULL,
		seat_code   VARCHAR(64) NOT NULL,
		created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_seats_code (seat_code),
		KEY idx_seats_hall (hall_id),
		CONSTRAINT fk_seats_hall FOREIGN KEY (hall_id) REFERENCES halls(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS sessions (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		movie_id    BIGINT UNSIGNED NOT NULL,
		hall_id     BIGINT UNSIGNED NOT NULL,
		start_time  DATETIME NOT NULL,
		end_time    DATETIME NOT NULL,
		price_cents INT UNSIGNED NOT NULL,
		created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_sessions_movie (movie_id),
		KEY idx_sessions_hall_time (hall_id, start_time, end_time),
		CONSTRAINT fk_sessions_movie FOREIGN KEY (movie_id) REFERENCES movies(id) ON DELETE CASCADE,
		CONSTRAINT fk_sessions_hall  FOREIGN KEY (hall_id)  REFERENCES halls(id)  ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS tickets (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		ticket_number VARCHAR(64) NOT NULL,
		session_id    BIGINT UNSIGNED NOT NULL,
		seat_id       BIGINT UNSIGNED NOT NULL,
		user_id       BIGINT UNSIGNED NULL,
		status        ENUM('AVAILABLE','BOOKED','SOLD','CANCELLED') NOT NULL DEFAULT 'AVAILABLE',
		purchase_time DATETIME NULL,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		active        TINYINT AS (IF(status IN ('BOOKED','SOLD'), 1, NULL)) STORED,
		PRIMARY KEY (id),
		UNIQUE KEY uq_tickets_number (ticket_number),
		UNIQUE KEY uq_active_seat (session_id, seat_id, active),
		KEY idx_tickets_user (user_id),
		KEY idx_tickets_status_created (status, created_at),
		CONSTRAINT fk_tickets_session FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE,
		CONSTRAINT fk_tickets_seat    FOREIGN KEY (seat_id)    REFERENCES seats(id)    ON DELETE CASCADE,
		CONSTRAINT fk_tickets_user    FOREIGN KEY (user_id)    REFERENCES users(id)    ON DELETE SET NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates all tables that do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
