package postgres

// schema is applied on startup; statements are idempotent
const schema = `
CREATE TABLE IF NOT EXISTS players (
    id         TEXT PRIMARY KEY,
    nickname   TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS matches (
    id          TEXT PRIMARY KEY,
    player_a    TEXT NOT NULL,
    player_b    TEXT NOT NULL,
    winner_id   TEXT,
    started_at  TIMESTAMPTZ NOT NULL,
    finished_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_matches_player_a ON matches (player_a, started_at DESC);
CREATE INDEX IF NOT EXISTS idx_matches_player_b ON matches (player_b, started_at DESC);

CREATE TABLE IF NOT EXISTS moves (
    match_id   TEXT NOT NULL REFERENCES matches (id) ON DELETE CASCADE,
    move_index INT NOT NULL,
    from_row   INT NOT NULL,
    from_col   INT NOT NULL,
    to_row     INT NOT NULL,
    to_col     INT NOT NULL,
    played_at  TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (match_id, move_index)
);
`
