package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"git.sr.ht/~jakintosh/shopfront/internal/domain"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the session and cart in a local database file so they
// survive between CLI invocations.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS session (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			token TEXT NOT NULL,
			user_name TEXT DEFAULT '',
			full_name TEXT DEFAULT '',
			roles TEXT DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS cart_items (
			id TEXT PRIMARY KEY,
			product_id INTEGER NOT NULL,
			title TEXT NOT NULL,
			price REAL DEFAULT 0,
			sort_order INTEGER DEFAULT 0
		);
	`)
	return err
}

func (s *SQLiteStore) LoadSession() (*domain.Session, error) {
	var (
		sess  domain.Session
		roles string
	)
	err := s.db.QueryRow(`
		SELECT
			token,
			user_name,
			full_name,
			roles
		FROM session
		WHERE id = 1`,
	).Scan(
		&sess.Token,
		&sess.UserName,
		&sess.FullName,
		&roles,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNoSession
		}
		return nil, err
	}
	sess.Roles = splitRoles(roles)
	return &sess, nil
}

func (s *SQLiteStore) SaveSession(sess *domain.Session) error {
	_, err := s.db.Exec(`
		INSERT INTO session (id, token, user_name, full_name, roles)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			token = excluded.token,
			user_name = excluded.user_name,
			full_name = excluded.full_name,
			roles = excluded.roles`,
		sess.Token,
		sess.UserName,
		sess.FullName,
		strings.Join(sess.Roles, ","),
	)
	return err
}

func (s *SQLiteStore) ClearSession() error {
	_, err := s.db.Exec(`DELETE FROM session`)
	return err
}

func (s *SQLiteStore) GetCart() ([]*domain.CartItem, error) {
	rows, err := s.db.Query(`
		SELECT
			id,
			product_id,
			title,
			price,
			sort_order
		FROM cart_items
		ORDER BY sort_order ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*domain.CartItem{}
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(
			&item.ID,
			&item.ProductID,
			&item.Title,
			&item.Price,
			&item.Position,
		); err != nil {
			return nil, err
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

func (s *SQLiteStore) AddCartItem(p *domain.Product) (*domain.CartItem, error) {
	id := uuid.NewString()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var maxOrder sql.NullInt64
	if err := tx.QueryRow(`
		SELECT MAX(sort_order)
		FROM cart_items`,
	).Scan(&maxOrder); err != nil {
		return nil, err
	}
	order := 0
	if maxOrder.Valid {
		order = int(maxOrder.Int64) + 1
	}

	var item domain.CartItem
	if err := tx.QueryRow(`
		INSERT INTO cart_items (id, product_id, title, price, sort_order)
		VALUES (?, ?, ?, ?, ?)
		RETURNING
			id,
			product_id,
			title,
			price,
			sort_order`,
		id,
		p.ID,
		p.Title,
		p.Price,
		order,
	).Scan(
		&item.ID,
		&item.ProductID,
		&item.Title,
		&item.Price,
		&item.Position,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *SQLiteStore) RemoveCartItem(id string) (*domain.CartItem, error) {
	var removed domain.CartItem
	if err := s.db.QueryRow(`
		DELETE FROM cart_items
		WHERE id = ?
		RETURNING
			id,
			product_id,
			title,
			price,
			sort_order`,
		id,
	).Scan(
		&removed.ID,
		&removed.ProductID,
		&removed.Title,
		&removed.Price,
		&removed.Position,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &removed, nil
}

func (s *SQLiteStore) ClearCart() error {
	_, err := s.db.Exec(`DELETE FROM cart_items`)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func splitRoles(joined string) []string {
	if joined == "" {
		return []string{}
	}
	return strings.Split(joined, ",")
}
