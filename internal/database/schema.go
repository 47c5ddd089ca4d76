package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS members (
	id         TEXT PRIMARY KEY,
	phone      TEXT UNIQUE NOT NULL,
	name       TEXT,
	email      TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS classes (
	id       TEXT PRIMARY KEY,
	title    TEXT NOT NULL,
	coach    TEXT,
	capacity INT NOT NULL DEFAULT 12 CHECK (capacity > 0)
);

CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	class_id   TEXT NOT NULL REFERENCES classes(id) ON DELETE CASCADE,
	date       DATE NOT NULL,
	start_time TIME NOT NULL,
	end_time   TIME NOT NULL,
	UNIQUE (class_id, date, start_time)
);

CREATE TABLE IF NOT EXISTS bookings (
	id         TEXT PRIMARY KEY,
	session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	member_id  TEXT NOT NULL REFERENCES members(id) ON DELETE CASCADE,
	status     TEXT NOT NULL DEFAULT 'confirmed'
	           CHECK (status IN ('confirmed', 'waitlist', 'canceled')),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (session_id, member_id)
);

CREATE INDEX IF NOT EXISTS idx_sessions_date ON sessions(date);
CREATE INDEX IF NOT EXISTS idx_bookings_session ON bookings(session_id);
`

// Migrate applies the schema. Statements are idempotent so this is safe
// to run at every startup.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

type seedClass struct {
	title    string
	coach    string
	capacity int
}

type seedSlot struct {
	start string
	end   string
}

var demoClasses = []seedClass{
	{"BodyPump", "Alex", 16},
	{"Yoga", "Mara", 12},
	{"Hyrox", "Ken", 10},
}

var demoSlots = []seedSlot{
	{"17:30", "18:20"},
	{"18:30", "19:20"},
	{"19:30", "20:20"},
}

// SeedDemoData inserts demo classes and today's sessions when the
// respective tables are empty. Used for local development only.
func (db *DB) SeedDemoData(ctx context.Context) error {
	var classCount int
	if err := db.GetContext(ctx, &classCount, `SELECT COUNT(*) FROM classes`); err != nil {
		return fmt.Errorf("count classes: %w", err)
	}

	if classCount == 0 {
		for _, c := range demoClasses {
			_, err := db.ExecContext(ctx, `
				INSERT INTO classes (id, title, coach, capacity) VALUES ($1, $2, $3, $4)
			`, uuid.NewString(), c.title, c.coach, c.capacity)
			if err != nil {
				return fmt.Errorf("seed class %s: %w", c.title, err)
			}
		}
		log.Info().Int("classes", len(demoClasses)).Msg("seeded demo classes")
	}

	var todayCount int
	err := db.GetContext(ctx, &todayCount, `SELECT COUNT(*) FROM sessions WHERE date = CURRENT_DATE`)
	if err != nil {
		return fmt.Errorf("count sessions: %w", err)
	}
	if todayCount > 0 {
		return nil
	}

	var classIDs []string
	if err := db.SelectContext(ctx, &classIDs, `SELECT id FROM classes`); err != nil {
		return fmt.Errorf("list classes: %w", err)
	}

	seeded := 0
	for _, classID := range classIDs {
		for _, slot := range demoSlots {
			_, err := db.ExecContext(ctx, `
				INSERT INTO sessions (id, class_id, date, start_time, end_time)
				VALUES ($1, $2, CURRENT_DATE, $3, $4)
				ON CONFLICT (class_id, date, start_time) DO NOTHING
			`, uuid.NewString(), classID, slot.start, slot.end)
			if err != nil {
				return fmt.Errorf("seed session: %w", err)
			}
			seeded++
		}
	}
	log.Info().Int("sessions", seeded).Msg("seeded demo sessions for today")

	return nil
}
