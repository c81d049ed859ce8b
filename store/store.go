package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// MaxConnectedPlayers is the hard ceiling on connected players per room,
// enforced inside CreatePlayer so that racing joins cannot overfill a room.
const MaxConnectedPlayers = 10

var (
	ErrCodeTaken   = errors.New("room code already taken")
	ErrRoomFull    = errors.New("room is full")
	ErrRoundExists = errors.New("round already exists")
)

type Store interface {
	CreateRoom(r *Room) error
	GetRoom(roomID string) (*Room, error)
	GetRoomByCode(code string) (*Room, error)
	SetRoomHost(roomID, playerID string) error
	TouchRoom(roomID string) error
	StartRoomRound(roomID string, roundNumber int) error
	ApplyRoomScores(roomID string, playerScore, gameScore int, winner, status string) error
	DeleteRoom(roomID string) error

	CreatePlayer(p *Player) error
	GetPlayer(playerID string) (*Player, error)
	GetRoomPlayers(roomID string) ([]*Player, error)
	ReconnectPlayer(playerID, displayName string) (*Player, error)
	DisconnectPlayer(playerID string) error
	SetPlayerHost(playerID string, isHost bool) error
	TouchPlayer(playerID string) error

	CreateRound(rd *Round) error
	GetRound(roundID string) (*Round, error)
	GetRoundByNumber(roomID string, roundNumber int) (*Round, error)
	SetRoundRanking(roundID string, ranking []byte) error
	SetRoundGuess(roundID string, guess []byte) error
	FinishRound(roundID string, finalGuess, results []byte, playerScore, gameScore int) error

	Subscribe(roomID string) *Subscription
	Close() error
}

type Room struct {
	ID             string
	Code           string
	HostPlayerID   string
	Status         string
	PlayerScore    int
	GameScore      int
	CurrentRound   int
	Winner         string
	CreatedAt      string
	LastActivityAt string
}

type Player struct {
	ID          string
	RoomID      string
	DisplayName string
	IsHost      bool
	IsConnected bool
	JoinedAt    string
	LastSeenAt  string
}

// Round ranking columns hold JSON arrays of {id, position} entries; Results
// holds JSON {card_id, actual_position, guessed_position, is_correct}
// objects. The game layer owns the encoding.
type Round struct {
	ID               string
	RoomID           string
	RoundNumber      int
	PickerID         string
	GuesserID        string
	Phase            string
	CardIDs          []byte
	ActualRanking    []byte
	CurrentGuess     []byte
	FinalGuess       []byte
	Results          []byte
	PlayerRoundScore int
	GameRoundScore   int
	CreatedAt        string
	SubmittedAt      string
}

type SQLiteStore struct {
	db       *sql.DB
	notifier *Notifier
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db, notifier: NewNotifier()}, nil
}

// now returns a fixed-width UTC timestamp so lexicographic ordering of
// joined_at matches chronological ordering.
func now() string {
	return time.Now().UTC().Format("2006-01-02 15:04:05.000000000")
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Rooms

func (s *SQLiteStore) CreateRoom(r *Room) error {
	ts := now()
	r.CreatedAt = ts
	r.LastActivityAt = ts

	_, err := s.db.Exec(`
		INSERT INTO rooms (id, code, host_player_id, status, player_score, game_score, current_round, winner, created_at, last_activity_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Code, r.HostPlayerID, r.Status, r.PlayerScore, r.GameScore, r.CurrentRound, r.Winner, r.CreatedAt, r.LastActivityAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrCodeTaken
		}
		return fmt.Errorf("failed to create room: %w", err)
	}

	s.notifier.publishRoom(ChangeInsert, r)
	return nil
}

const roomColumns = "id, code, host_player_id, status, player_score, game_score, current_round, winner, created_at, last_activity_at"

func scanRoom(row *sql.Row) (*Room, error) {
	r := &Room{}
	err := row.Scan(&r.ID, &r.Code, &r.HostPlayerID, &r.Status, &r.PlayerScore, &r.GameScore, &r.CurrentRound, &r.Winner, &r.CreatedAt, &r.LastActivityAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan room: %w", err)
	}
	return r, nil
}

func (s *SQLiteStore) GetRoom(roomID string) (*Room, error) {
	return scanRoom(s.db.QueryRow("SELECT "+roomColumns+" FROM rooms WHERE id = ?", roomID))
}

func (s *SQLiteStore) GetRoomByCode(code string) (*Room, error) {
	return scanRoom(s.db.QueryRow("SELECT "+roomColumns+" FROM rooms WHERE code = ?", code))
}

func (s *SQLiteStore) updateRoom(roomID, query string, args ...interface{}) error {
	if _, err := s.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to update room: %w", err)
	}

	room, err := s.GetRoom(roomID)
	if err != nil {
		return err
	}
	if room != nil {
		s.notifier.publishRoom(ChangeUpdate, room)
	}
	return nil
}

func (s *SQLiteStore) SetRoomHost(roomID, playerID string) error {
	return s.updateRoom(roomID,
		"UPDATE rooms SET host_player_id = ? WHERE id = ?", playerID, roomID)
}

func (s *SQLiteStore) TouchRoom(roomID string) error {
	return s.updateRoom(roomID,
		"UPDATE rooms SET last_activity_at = ? WHERE id = ?", now(), roomID)
}

func (s *SQLiteStore) StartRoomRound(roomID string, roundNumber int) error {
	return s.updateRoom(roomID,
		"UPDATE rooms SET status = 'playing', current_round = ?, last_activity_at = ? WHERE id = ?",
		roundNumber, now(), roomID)
}

func (s *SQLiteStore) ApplyRoomScores(roomID string, playerScore, gameScore int, winner, status string) error {
	return s.updateRoom(roomID,
		"UPDATE rooms SET player_score = ?, game_score = ?, winner = ?, status = ?, last_activity_at = ? WHERE id = ?",
		playerScore, gameScore, winner, status, now(), roomID)
}

func (s *SQLiteStore) DeleteRoom(roomID string) error {
	// Row-wise best-effort deletes; the room row goes last so a partial
	// failure leaves the room resolvable rather than orphaning children.
	if _, err := s.db.Exec("DELETE FROM rounds WHERE room_id = ?", roomID); err != nil {
		return fmt.Errorf("failed to delete rounds: %w", err)
	}
	if _, err := s.db.Exec("DELETE FROM players WHERE room_id = ?", roomID); err != nil {
		return fmt.Errorf("failed to delete players: %w", err)
	}
	if _, err := s.db.Exec("DELETE FROM rooms WHERE id = ?", roomID); err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}

	s.notifier.publishRoom(ChangeDelete, &Room{ID: roomID})
	return nil
}

// Players

// CreatePlayer inserts a new connected player. The connected-player count is
// re-checked inside a transaction so this is the authoritative capacity
// guard; callers may pre-check but must handle ErrRoomFull here regardless.
func (s *SQLiteStore) CreatePlayer(p *Player) error {
	ts := now()
	p.JoinedAt = ts
	p.LastSeenAt = ts

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var connected int
	if err := tx.QueryRow(
		"SELECT COUNT(*) FROM players WHERE room_id = ? AND is_connected = 1", p.RoomID,
	).Scan(&connected); err != nil {
		return fmt.Errorf("failed to count players: %w", err)
	}
	if connected >= MaxConnectedPlayers {
		return ErrRoomFull
	}

	isHost := 0
	if p.IsHost {
		isHost = 1
	}
	isConnected := 0
	if p.IsConnected {
		isConnected = 1
	}
	if _, err := tx.Exec(`
		INSERT INTO players (id, room_id, display_name, is_host, is_connected, joined_at, last_seen_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.RoomID, p.DisplayName, isHost, isConnected, p.JoinedAt, p.LastSeenAt,
	); err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.notifier.publishPlayer(ChangeInsert, p)
	return nil
}

const playerColumns = "id, room_id, display_name, is_host, is_connected, joined_at, last_seen_at"

func scanPlayerRow(scan func(dest ...interface{}) error) (*Player, error) {
	p := &Player{}
	var isHost, isConnected int
	err := scan(&p.ID, &p.RoomID, &p.DisplayName, &isHost, &isConnected, &p.JoinedAt, &p.LastSeenAt)
	if err != nil {
		return nil, err
	}
	p.IsHost = isHost == 1
	p.IsConnected = isConnected == 1
	return p, nil
}

func (s *SQLiteStore) GetPlayer(playerID string) (*Player, error) {
	row := s.db.QueryRow("SELECT "+playerColumns+" FROM players WHERE id = ?", playerID)
	p, err := scanPlayerRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) GetRoomPlayers(roomID string) ([]*Player, error) {
	rows, err := s.db.Query(
		"SELECT "+playerColumns+" FROM players WHERE room_id = ? ORDER BY joined_at, id", roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room players: %w", err)
	}
	defer rows.Close()

	var players []*Player
	for rows.Next() {
		p, err := scanPlayerRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *SQLiteStore) updatePlayer(playerID, query string, args ...interface{}) (*Player, error) {
	if _, err := s.db.Exec(query, args...); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	p, err := s.GetPlayer(playerID)
	if err != nil {
		return nil, err
	}
	if p != nil {
		s.notifier.publishPlayer(ChangeUpdate, p)
	}
	return p, nil
}

func (s *SQLiteStore) ReconnectPlayer(playerID, displayName string) (*Player, error) {
	return s.updatePlayer(playerID,
		"UPDATE players SET is_connected = 1, last_seen_at = ?, display_name = ? WHERE id = ?",
		now(), displayName, playerID)
}

func (s *SQLiteStore) DisconnectPlayer(playerID string) error {
	_, err := s.updatePlayer(playerID,
		"UPDATE players SET is_connected = 0, last_seen_at = ? WHERE id = ?", now(), playerID)
	return err
}

func (s *SQLiteStore) SetPlayerHost(playerID string, isHost bool) error {
	hostVal := 0
	if isHost {
		hostVal = 1
	}
	_, err := s.updatePlayer(playerID,
		"UPDATE players SET is_host = ? WHERE id = ?", hostVal, playerID)
	return err
}

func (s *SQLiteStore) TouchPlayer(playerID string) error {
	_, err := s.updatePlayer(playerID,
		"UPDATE players SET last_seen_at = ? WHERE id = ?", now(), playerID)
	return err
}

// Rounds

func (s *SQLiteStore) CreateRound(rd *Round) error {
	rd.CreatedAt = now()

	_, err := s.db.Exec(`
		INSERT INTO rounds (id, room_id, round_number, picker_id, guesser_id, phase, card_ids, actual_ranking, current_guess, final_guess, results, player_round_score, game_round_score, created_at, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, '')`,
		rd.ID, rd.RoomID, rd.RoundNumber, rd.PickerID, rd.GuesserID, rd.Phase,
		rd.CardIDs, rd.ActualRanking, rd.CurrentGuess, rd.FinalGuess, rd.Results,
		rd.PlayerRoundScore, rd.GameRoundScore, rd.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			// Lost the startRound race; the existing row is authoritative.
			return ErrRoundExists
		}
		return fmt.Errorf("failed to create round: %w", err)
	}

	s.notifier.publishRound(ChangeInsert, rd)
	return nil
}

const roundColumns = "id, room_id, round_number, picker_id, guesser_id, phase, card_ids, actual_ranking, current_guess, final_guess, results, player_round_score, game_round_score, created_at, submitted_at"

func scanRound(row *sql.Row) (*Round, error) {
	rd := &Round{}
	err := row.Scan(&rd.ID, &rd.RoomID, &rd.RoundNumber, &rd.PickerID, &rd.GuesserID, &rd.Phase,
		&rd.CardIDs, &rd.ActualRanking, &rd.CurrentGuess, &rd.FinalGuess, &rd.Results,
		&rd.PlayerRoundScore, &rd.GameRoundScore, &rd.CreatedAt, &rd.SubmittedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan round: %w", err)
	}
	return rd, nil
}

func (s *SQLiteStore) GetRound(roundID string) (*Round, error) {
	return scanRound(s.db.QueryRow("SELECT "+roundColumns+" FROM rounds WHERE id = ?", roundID))
}

func (s *SQLiteStore) GetRoundByNumber(roomID string, roundNumber int) (*Round, error) {
	return scanRound(s.db.QueryRow(
		"SELECT "+roundColumns+" FROM rounds WHERE room_id = ? AND round_number = ?", roomID, roundNumber))
}

func (s *SQLiteStore) updateRound(roundID, query string, args ...interface{}) error {
	if _, err := s.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to update round: %w", err)
	}

	rd, err := s.GetRound(roundID)
	if err != nil {
		return err
	}
	if rd != nil {
		s.notifier.publishRound(ChangeUpdate, rd)
	}
	return nil
}

func (s *SQLiteStore) SetRoundRanking(roundID string, ranking []byte) error {
	return s.updateRound(roundID,
		"UPDATE rounds SET actual_ranking = ?, phase = 'guessing' WHERE id = ?", ranking, roundID)
}

func (s *SQLiteStore) SetRoundGuess(roundID string, guess []byte) error {
	return s.updateRound(roundID,
		"UPDATE rounds SET current_guess = ? WHERE id = ?", guess, roundID)
}

func (s *SQLiteStore) FinishRound(roundID string, finalGuess, results []byte, playerScore, gameScore int) error {
	return s.updateRound(roundID,
		"UPDATE rounds SET final_guess = ?, results = ?, player_round_score = ?, game_round_score = ?, phase = 'results', submitted_at = ? WHERE id = ?",
		finalGuess, results, playerScore, gameScore, now(), roundID)
}

func (s *SQLiteStore) Subscribe(roomID string) *Subscription {
	return s.notifier.Subscribe(roomID)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
