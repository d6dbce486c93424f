package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/quickweb-io/quickweb/internal/core/domain"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// =============================================================================
// Executor Interface - Shared by DB and Transaction
// =============================================================================

// executor abstracts database operations that can be performed on both
// a database connection and a transaction.
type executor interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// =============================================================================
// SQLiteStore
// =============================================================================

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore creates a new SQLite store and runs migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite3", dsn+"?_foreign_keys=on")
	if err != nil {
		return nil, NewStoreError("NewSQLiteStore", "", "", "failed to open database", ErrConnectionFailed)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "", "failed to ping database", ErrConnectionFailed)
	}

	if err := runMigrations(db.DB); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "", err.Error(), ErrMigrationFailed)
	}

	return &SQLiteStore{db: db}, nil
}

// runMigrations runs database migrations using embedded SQL files.
func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// =============================================================================
// Row Types
// =============================================================================

// userRow represents a user row in the database.
type userRow struct {
	ID           string `db:"id"`
	Username     string `db:"username"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
	Subdomain    string `db:"subdomain"`
	CreatedAt    string `db:"created_at"`
	UpdatedAt    string `db:"updated_at"`
}

// siteRow represents a site row in the database.
type siteRow struct {
	ID            string `db:"id"`
	UserID        string `db:"user_id"`
	Name          string `db:"name"`
	Slug          string `db:"slug"`
	HostLabel     string `db:"host_label"`
	PrimaryDomain string `db:"primary_domain"`
	URLs          string `db:"urls"`
	Published     bool   `db:"published"`
	Visits        int64  `db:"visits"`
	CreatedAt     string `db:"created_at"`
	UpdatedAt     string `db:"updated_at"`
}

// siteOwnerRow joins a site with its owner's subdomain.
type siteOwnerRow struct {
	siteRow
	OwnerSubdomain string `db:"owner_subdomain"`
}

// =============================================================================
// Store Methods
// =============================================================================

func (s *SQLiteStore) CreateUser(ctx context.Context, user *domain.User) error {
	return createUser(ctx, s.db, user)
}

func (s *SQLiteStore) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return getUser(ctx, s.db, "id", id.String())
}

func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return getUser(ctx, s.db, "username", username)
}

func (s *SQLiteStore) SubdomainTaken(ctx context.Context, subdomain string) (bool, error) {
	return subdomainTaken(ctx, s.db, subdomain)
}

func (s *SQLiteStore) CreateSite(ctx context.Context, site *domain.Site, hostLabel string) error {
	return createSite(ctx, s.db, site, hostLabel)
}

func (s *SQLiteStore) GetSite(ctx context.Context, id uuid.UUID) (*domain.Site, error) {
	return getSite(ctx, s.db, id)
}

func (s *SQLiteStore) ListSitesByUser(ctx context.Context, userID uuid.UUID, opts ListOptions) ([]domain.Site, error) {
	return listSitesByUser(ctx, s.db, userID, opts)
}

func (s *SQLiteStore) GetSiteByHostLabel(ctx context.Context, label string) (*SiteWithOwner, error) {
	return getSiteByHostLabel(ctx, s.db, label)
}

func (s *SQLiteStore) IncrementSiteVisits(ctx context.Context, id uuid.UUID) error {
	return incrementSiteVisits(ctx, s.db, id)
}

// =============================================================================
// Transaction Support
// =============================================================================

func (s *SQLiteStore) WithTx(ctx context.Context, fn func(Store) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return NewStoreError("WithTx", "", "", "failed to begin transaction", ErrTxFailed)
	}

	txS := &txSQLiteStore{tx: tx}

	if err := fn(txS); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return NewStoreError("WithTx", "", "", fmt.Sprintf("rollback failed after error: %v", err), ErrTxFailed)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return NewStoreError("WithTx", "", "", "failed to commit transaction", ErrTxFailed)
	}

	return nil
}

// txSQLiteStore implements Store within a transaction.
type txSQLiteStore struct {
	tx *sqlx.Tx
}

func (s *txSQLiteStore) CreateUser(ctx context.Context, user *domain.User) error {
	return createUser(ctx, s.tx, user)
}

func (s *txSQLiteStore) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return getUser(ctx, s.tx, "id", id.String())
}

func (s *txSQLiteStore) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return getUser(ctx, s.tx, "username", username)
}

func (s *txSQLiteStore) SubdomainTaken(ctx context.Context, subdomain string) (bool, error) {
	return subdomainTaken(ctx, s.tx, subdomain)
}

func (s *txSQLiteStore) CreateSite(ctx context.Context, site *domain.Site, hostLabel string) error {
	return createSite(ctx, s.tx, site, hostLabel)
}

func (s *txSQLiteStore) GetSite(ctx context.Context, id uuid.UUID) (*domain.Site, error) {
	return getSite(ctx, s.tx, id)
}

func (s *txSQLiteStore) ListSitesByUser(ctx context.Context, userID uuid.UUID, opts ListOptions) ([]domain.Site, error) {
	return listSitesByUser(ctx, s.tx, userID, opts)
}

func (s *txSQLiteStore) GetSiteByHostLabel(ctx context.Context, label string) (*SiteWithOwner, error) {
	return getSiteByHostLabel(ctx, s.tx, label)
}

func (s *txSQLiteStore) IncrementSiteVisits(ctx context.Context, id uuid.UUID) error {
	return incrementSiteVisits(ctx, s.tx, id)
}

func (s *txSQLiteStore) WithTx(ctx context.Context, fn func(Store) error) error {
	// Already in a transaction, just run the function
	return fn(s)
}

func (s *txSQLiteStore) Close() error {
	// No-op for tx store
	return nil
}

// =============================================================================
// Shared Implementation Functions
// =============================================================================

func createUser(ctx context.Context, exec executor, user *domain.User) error {
	query := `
		INSERT INTO users (
			id, username, email, password_hash, subdomain, created_at, updated_at
		) VALUES (
			:id, :username, :email, :password_hash, :subdomain, :created_at, :updated_at
		)`

	row := map[string]any{
		"id":            user.ID.String(),
		"username":      user.Username,
		"email":         user.Email,
		"password_hash": user.PasswordHash,
		"subdomain":     user.Subdomain,
		"created_at":    user.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":    user.UpdatedAt.Format(time.RFC3339Nano),
	}

	_, err := exec.NamedExecContext(ctx, query, row)
	if err != nil {
		switch {
		case strings.Contains(err.Error(), "UNIQUE constraint failed: users.id"):
			return NewStoreError("CreateUser", "user", user.ID.String(), "user with this ID already exists", ErrDuplicateID)
		case strings.Contains(err.Error(), "UNIQUE constraint failed: users.username"):
			return NewStoreError("CreateUser", "user", user.Username, "username already taken", ErrDuplicateUsername)
		case strings.Contains(err.Error(), "UNIQUE constraint failed: users.email"):
			return NewStoreError("CreateUser", "user", user.Email, "email already registered", ErrDuplicateEmail)
		case strings.Contains(err.Error(), "UNIQUE constraint failed: users.subdomain"):
			return NewStoreError("CreateUser", "user", user.Subdomain, "subdomain already assigned", ErrDuplicateSubdomain)
		}
		return NewStoreError("CreateUser", "user", user.ID.String(), err.Error(), err)
	}

	return nil
}

// getUser loads a user aggregate (user row plus sites in creation order) by a
// unique column.
func getUser(ctx context.Context, exec executor, column, value string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT * FROM users WHERE %s = ?`, column)

	var row userRow
	err := exec.GetContext(ctx, &row, query, value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetUser", "user", value, "user not found", ErrNotFound)
		}
		return nil, NewStoreError("GetUser", "user", value, err.Error(), err)
	}

	user, err := rowToUser(&row)
	if err != nil {
		return nil, err
	}

	// The full collection: slug-uniqueness resolution needs every site the
	// user has, not a page of them.
	sites, err := listAllSitesByUser(ctx, exec, user.ID)
	if err != nil {
		return nil, err
	}
	user.Sites = sites

	return user, nil
}

func subdomainTaken(ctx context.Context, exec executor, subdomain string) (bool, error) {
	query := `SELECT COUNT(*) FROM users WHERE subdomain = ?`

	var count int
	if err := exec.GetContext(ctx, &count, query, subdomain); err != nil {
		return false, NewStoreError("SubdomainTaken", "user", subdomain, err.Error(), err)
	}
	return count > 0, nil
}

func createSite(ctx context.Context, exec executor, site *domain.Site, hostLabel string) error {
	urlsJSON, err := json.Marshal(site.URLs)
	if err != nil {
		return NewStoreError("CreateSite", "site", site.ID.String(), "failed to serialize urls", ErrInvalidData)
	}

	query := `
		INSERT INTO sites (
			id, user_id, name, slug, host_label, primary_domain, urls,
			published, visits, created_at, updated_at
		) VALUES (
			:id, :user_id, :name, :slug, :host_label, :primary_domain, :urls,
			:published, :visits, :created_at, :updated_at
		)`

	row := map[string]any{
		"id":             site.ID.String(),
		"user_id":        site.UserID.String(),
		"name":           site.Name,
		"slug":           site.Slug,
		"host_label":     hostLabel,
		"primary_domain": site.PrimaryDomain,
		"urls":           string(urlsJSON),
		"published":      site.Published,
		"visits":         site.Visits,
		"created_at":     site.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":     site.UpdatedAt.Format(time.RFC3339Nano),
	}

	_, err = exec.NamedExecContext(ctx, query, row)
	if err != nil {
		switch {
		case strings.Contains(err.Error(), "UNIQUE constraint failed: sites.id"):
			return NewStoreError("CreateSite", "site", site.ID.String(), "site with this ID already exists", ErrDuplicateID)
		case strings.Contains(err.Error(), "UNIQUE constraint failed: sites.user_id, sites.slug"),
			strings.Contains(err.Error(), "UNIQUE constraint failed: sites.host_label"):
			return NewStoreError("CreateSite", "site", site.Slug, "site with this slug already exists for this user", ErrDuplicateSlug)
		case strings.Contains(err.Error(), "FOREIGN KEY constraint failed"):
			return NewStoreError("CreateSite", "site", site.ID.String(), "owning user not found", ErrForeignKey)
		}
		return NewStoreError("CreateSite", "site", site.ID.String(), err.Error(), err)
	}

	return nil
}

func getSite(ctx context.Context, exec executor, id uuid.UUID) (*domain.Site, error) {
	query := `SELECT * FROM sites WHERE id = ?`

	var row siteRow
	err := exec.GetContext(ctx, &row, query, id.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetSite", "site", id.String(), "site not found", ErrNotFound)
		}
		return nil, NewStoreError("GetSite", "site", id.String(), err.Error(), err)
	}

	return rowToSite(&row)
}

func listSitesByUser(ctx context.Context, exec executor, userID uuid.UUID, opts ListOptions) ([]domain.Site, error) {
	opts = opts.Normalize()
	// Insertion order via rowid: the collection is append-only, and the text
	// timestamps are variable width so they do not sort reliably on ties.
	query := `SELECT * FROM sites WHERE user_id = ? ORDER BY rowid ASC LIMIT ? OFFSET ?`

	var rows []siteRow
	err := exec.SelectContext(ctx, &rows, query, userID.String(), opts.Limit, opts.Offset)
	if err != nil {
		return nil, NewStoreError("ListSitesByUser", "site", "", err.Error(), err)
	}
	return rowsToSites(rows)
}

// listAllSitesByUser loads every site the user owns, without pagination.
func listAllSitesByUser(ctx context.Context, exec executor, userID uuid.UUID) ([]domain.Site, error) {
	query := `SELECT * FROM sites WHERE user_id = ? ORDER BY rowid ASC`

	var rows []siteRow
	err := exec.SelectContext(ctx, &rows, query, userID.String())
	if err != nil {
		return nil, NewStoreError("ListSitesByUser", "site", "", err.Error(), err)
	}
	return rowsToSites(rows)
}

func rowsToSites(rows []siteRow) ([]domain.Site, error) {
	sites := make([]domain.Site, 0, len(rows))
	for _, row := range rows {
		site, err := rowToSite(&row)
		if err != nil {
			return nil, err
		}
		sites = append(sites, *site)
	}
	return sites, nil
}

func getSiteByHostLabel(ctx context.Context, exec executor, label string) (*SiteWithOwner, error) {
	query := `
		SELECT s.*, u.subdomain AS owner_subdomain
		FROM sites s
		JOIN users u ON u.id = s.user_id
		WHERE s.host_label = ?`

	var row siteOwnerRow
	err := exec.GetContext(ctx, &row, query, label)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetSiteByHostLabel", "site", label, "site not found", ErrNotFound)
		}
		return nil, NewStoreError("GetSiteByHostLabel", "site", label, err.Error(), err)
	}

	site, err := rowToSite(&row.siteRow)
	if err != nil {
		return nil, err
	}

	return &SiteWithOwner{Site: *site, OwnerSubdomain: row.OwnerSubdomain}, nil
}

func incrementSiteVisits(ctx context.Context, exec executor, id uuid.UUID) error {
	query := `UPDATE sites SET visits = visits + 1, updated_at = ? WHERE id = ?`

	result, err := exec.ExecContext(ctx, query, time.Now().UTC().Format(time.RFC3339Nano), id.String())
	if err != nil {
		return NewStoreError("IncrementSiteVisits", "site", id.String(), err.Error(), err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return NewStoreError("IncrementSiteVisits", "site", id.String(), "site not found", ErrNotFound)
	}

	return nil
}

// =============================================================================
// Row Conversion Functions
// =============================================================================

// rowToUser converts a database row to a domain.User (without sites).
func rowToUser(row *userRow) (*domain.User, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, NewStoreError("rowToUser", "user", row.ID, "invalid user id", ErrInvalidData)
	}

	createdAt, _ := time.Parse(time.RFC3339Nano, row.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, row.UpdatedAt)

	return &domain.User{
		ID:           id,
		Username:     row.Username,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		Subdomain:    row.Subdomain,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}

// rowToSite converts a database row to a domain.Site.
func rowToSite(row *siteRow) (*domain.Site, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, NewStoreError("rowToSite", "site", row.ID, "invalid site id", ErrInvalidData)
	}
	userID, err := uuid.Parse(row.UserID)
	if err != nil {
		return nil, NewStoreError("rowToSite", "site", row.ID, "invalid user id", ErrInvalidData)
	}

	var urls map[string]string
	if row.URLs != "" && row.URLs != "null" {
		if err := json.Unmarshal([]byte(row.URLs), &urls); err != nil {
			return nil, NewStoreError("rowToSite", "site", row.ID, "failed to parse urls", ErrInvalidData)
		}
	}

	createdAt, _ := time.Parse(time.RFC3339Nano, row.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, row.UpdatedAt)

	return &domain.Site{
		ID:            id,
		UserID:        userID,
		Name:          row.Name,
		Slug:          row.Slug,
		PrimaryDomain: row.PrimaryDomain,
		URLs:          urls,
		Published:     row.Published,
		Visits:        row.Visits,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}, nil
}
