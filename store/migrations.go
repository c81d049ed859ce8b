package store

const schema = `
CREATE TABLE IF NOT EXISTS rooms (
    id TEXT PRIMARY KEY,
    code TEXT UNIQUE NOT NULL,
    host_player_id TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'lobby',
    player_score INTEGER NOT NULL DEFAULT 0,
    game_score INTEGER NOT NULL DEFAULT 0,
    current_round INTEGER NOT NULL DEFAULT 0,
    winner TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    last_activity_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS players (
    id TEXT PRIMARY KEY,
    room_id TEXT NOT NULL,
    display_name TEXT NOT NULL,
    is_host INTEGER NOT NULL DEFAULT 0,
    is_connected INTEGER NOT NULL DEFAULT 1,
    joined_at TEXT NOT NULL,
    last_seen_at TEXT NOT NULL,
    FOREIGN KEY (room_id) REFERENCES rooms(id)
);

CREATE TABLE IF NOT EXISTS rounds (
    id TEXT PRIMARY KEY,
    room_id TEXT NOT NULL,
    round_number INTEGER NOT NULL,
    picker_id TEXT NOT NULL DEFAULT '',
    guesser_id TEXT NOT NULL DEFAULT '',
    phase TEXT NOT NULL DEFAULT 'picking',
    card_ids TEXT,
    actual_ranking TEXT,
    current_guess TEXT,
    final_guess TEXT,
    results TEXT,
    player_round_score INTEGER NOT NULL DEFAULT 0,
    game_round_score INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    submitted_at TEXT NOT NULL DEFAULT '',
    UNIQUE (room_id, round_number),
    FOREIGN KEY (room_id) REFERENCES rooms(id)
);

CREATE INDEX IF NOT EXISTS idx_players_room_id ON players(room_id);
CREATE INDEX IF NOT EXISTS idx_rounds_room_id ON rounds(room_id);
`
