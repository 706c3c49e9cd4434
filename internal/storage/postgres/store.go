// Package postgres implements the domain store interfaces on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"venuehub/internal/application"
	"venuehub/internal/calendar"
	"venuehub/internal/identity"
	"venuehub/internal/inventory"
)

// Store implements every domain store interface over *sql.DB.
type Store struct {
	db *sql.DB
}

// NewStore creates a store over an open database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// --- inventory.MaterialStore ---

func (s *Store) GetMaterial(ctx context.Context, id uuid.UUID) (*inventory.Material, error) {
	query := `
		SELECT id, name, category, unit, description, total_quantity, committed_quantity, status, created_at, updated_at
		FROM materials
		WHERE id = $1
	`
	m := &inventory.Material{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&m.ID, &m.Name, &m.Category, &m.Unit, &m.Description,
		&m.TotalQuantity, &m.CommittedQuantity, &m.Status, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, inventory.ErrMaterialNotFound
		}
		return nil, fmt.Errorf("get material: %w", err)
	}
	return m, nil
}

func (s *Store) SaveMaterial(ctx context.Context, m *inventory.Material) error {
	query := `
		INSERT INTO materials (id, name, category, unit, description, total_quantity, committed_quantity, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    category = EXCLUDED.category,
		    unit = EXCLUDED.unit,
		    description = EXCLUDED.description,
		    total_quantity = EXCLUDED.total_quantity,
		    committed_quantity = EXCLUDED.committed_quantity,
		    status = EXCLUDED.status,
		    updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		m.ID, m.Name, m.Category, m.Unit, m.Description,
		m.TotalQuantity, m.CommittedQuantity, m.Status, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save material: %w", err)
	}
	return nil
}

func (s *Store) ListMaterials(ctx context.Context) ([]*inventory.Material, error) {
	query := `
		SELECT id, name, category, unit, description, total_quantity, committed_quantity, status, created_at, updated_at
		FROM materials
		ORDER BY name
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()

	var out []*inventory.Material
	for rows.Next() {
		m := &inventory.Material{}
		if err := rows.Scan(
			&m.ID, &m.Name, &m.Category, &m.Unit, &m.Description,
			&m.TotalQuantity, &m.CommittedQuantity, &m.Status, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) GetCommitment(ctx context.Context, applicationID, materialID uuid.UUID) (*inventory.Commitment, error) {
	query := `
		SELECT application_id, material_id, quantity
		FROM commitments
		WHERE application_id = $1 AND material_id = $2
	`
	c := &inventory.Commitment{}
	err := s.db.QueryRowContext(ctx, query, applicationID, materialID).Scan(
		&c.ApplicationID, &c.MaterialID, &c.Quantity,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get commitment: %w", err)
	}
	return c, nil
}

func (s *Store) CommitmentsByApplication(ctx context.Context, applicationID uuid.UUID) ([]inventory.Commitment, error) {
	query := `
		SELECT application_id, material_id, quantity
		FROM commitments
		WHERE application_id = $1
	`
	rows, err := s.db.QueryContext(ctx, query, applicationID)
	if err != nil {
		return nil, fmt.Errorf("list commitments: %w", err)
	}
	defer rows.Close()

	var out []inventory.Commitment
	for rows.Next() {
		var c inventory.Commitment
		if err := rows.Scan(&c.ApplicationID, &c.MaterialID, &c.Quantity); err != nil {
			return nil, fmt.Errorf("scan commitment: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) SaveCommitment(ctx context.Context, c inventory.Commitment) error {
	query := `
		INSERT INTO commitments (application_id, material_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (application_id, material_id) DO UPDATE
		SET quantity = EXCLUDED.quantity
	`
	_, err := s.db.ExecContext(ctx, query, c.ApplicationID, c.MaterialID, c.Quantity)
	if err != nil {
		return fmt.Errorf("save commitment: %w", err)
	}
	return nil
}

func (s *Store) DeleteCommitment(ctx context.Context, applicationID, materialID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM commitments WHERE application_id = $1 AND material_id = $2`,
		applicationID, materialID,
	)
	if err != nil {
		return fmt.Errorf("delete commitment: %w", err)
	}
	return nil
}

// --- calendar.VenueStore ---

func (s *Store) GetVenue(ctx context.Context, id uuid.UUID) (*calendar.Venue, error) {
	query := `
		SELECT id, name, location, capacity, description, equipment, status, created_at, updated_at
		FROM venues
		WHERE id = $1
	`
	v := &calendar.Venue{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&v.ID, &v.Name, &v.Location, &v.Capacity, &v.Description,
		pq.Array(&v.Equipment), &v.Status, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, calendar.ErrVenueNotFound
		}
		return nil, fmt.Errorf("get venue: %w", err)
	}
	return v, nil
}

func (s *Store) SaveVenue(ctx context.Context, v *calendar.Venue) error {
	query := `
		INSERT INTO venues (id, name, location, capacity, description, equipment, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    location = EXCLUDED.location,
		    capacity = EXCLUDED.capacity,
		    description = EXCLUDED.description,
		    equipment = EXCLUDED.equipment,
		    status = EXCLUDED.status,
		    updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		v.ID, v.Name, v.Location, v.Capacity, v.Description,
		pq.Array(v.Equipment), v.Status, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save venue: %w", err)
	}
	return nil
}

func (s *Store) ListVenues(ctx context.Context) ([]*calendar.Venue, error) {
	query := `
		SELECT id, name, location, capacity, description, equipment, status, created_at, updated_at
		FROM venues
		ORDER BY name
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	defer rows.Close()

	var out []*calendar.Venue
	for rows.Next() {
		v := &calendar.Venue{}
		if err := rows.Scan(
			&v.ID, &v.Name, &v.Location, &v.Capacity, &v.Description,
			pq.Array(&v.Equipment), &v.Status, &v.CreatedAt, &v.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan venue: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// --- calendar.IntervalStore ---

func (s *Store) IntervalsByVenue(ctx context.Context, venueID uuid.UUID) ([]calendar.Interval, error) {
	query := `
		SELECT venue_id, application_id, start_time, end_time
		FROM intervals
		WHERE venue_id = $1
	`
	rows, err := s.db.QueryContext(ctx, query, venueID)
	if err != nil {
		return nil, fmt.Errorf("list intervals: %w", err)
	}
	defer rows.Close()

	var out []calendar.Interval
	for rows.Next() {
		var iv calendar.Interval
		if err := rows.Scan(&iv.VenueID, &iv.ApplicationID, &iv.Start, &iv.End); err != nil {
			return nil, fmt.Errorf("scan interval: %w", err)
		}
		out = append(out, iv)
	}
	return out, rows.Err()
}

func (s *Store) IntervalByApplication(ctx context.Context, applicationID uuid.UUID) (*calendar.Interval, error) {
	query := `
		SELECT venue_id, application_id, start_time, end_time
		FROM intervals
		WHERE application_id = $1
	`
	iv := &calendar.Interval{}
	err := s.db.QueryRowContext(ctx, query, applicationID).Scan(
		&iv.VenueID, &iv.ApplicationID, &iv.Start, &iv.End,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get interval: %w", err)
	}
	return iv, nil
}

func (s *Store) SaveInterval(ctx context.Context, iv calendar.Interval) error {
	query := `
		INSERT INTO intervals (venue_id, application_id, start_time, end_time)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (venue_id, application_id) DO UPDATE
		SET start_time = EXCLUDED.start_time,
		    end_time = EXCLUDED.end_time
	`
	_, err := s.db.ExecContext(ctx, query, iv.VenueID, iv.ApplicationID, iv.Start, iv.End)
	if err != nil {
		return fmt.Errorf("save interval: %w", err)
	}
	return nil
}

func (s *Store) DeleteInterval(ctx context.Context, venueID, applicationID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM intervals WHERE venue_id = $1 AND application_id = $2`,
		venueID, applicationID,
	)
	if err != nil {
		return fmt.Errorf("delete interval: %w", err)
	}
	return nil
}

// --- application.Store ---

func (s *Store) GetApplication(ctx context.Context, id uuid.UUID) (*application.Application, error) {
	query := `
		SELECT id, requester_id, activity_name, activity_description, venue_id,
		       start_time, end_time, materials, status, rejection_reason,
		       reviewer_id, created_at, reviewed_at, updated_at
		FROM applications
		WHERE id = $1
	`
	return scanApplication(s.db.QueryRowContext(ctx, query, id))
}

func (s *Store) SaveApplication(ctx context.Context, a *application.Application) error {
	materials, err := json.Marshal(a.Materials)
	if err != nil {
		return fmt.Errorf("marshal line items: %w", err)
	}
	query := `
		INSERT INTO applications (id, requester_id, activity_name, activity_description, venue_id,
		                          start_time, end_time, materials, status, rejection_reason,
		                          reviewer_id, created_at, reviewed_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status,
		    rejection_reason = EXCLUDED.rejection_reason,
		    reviewer_id = EXCLUDED.reviewer_id,
		    reviewed_at = EXCLUDED.reviewed_at,
		    updated_at = EXCLUDED.updated_at
	`
	var reviewerID interface{}
	if a.ReviewerID != uuid.Nil {
		reviewerID = a.ReviewerID
	}
	_, err = s.db.ExecContext(ctx, query,
		a.ID, a.RequesterID, a.ActivityName, a.ActivityDescription, a.VenueID,
		a.StartTime, a.EndTime, materials, a.Status, a.RejectionReason,
		reviewerID, a.CreatedAt, a.ReviewedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save application: %w", err)
	}
	return nil
}

func (s *Store) ListApplications(ctx context.Context) ([]*application.Application, error) {
	return s.listApplications(ctx, `SELECT id, requester_id, activity_name, activity_description, venue_id,
		start_time, end_time, materials, status, rejection_reason,
		reviewer_id, created_at, reviewed_at, updated_at
		FROM applications ORDER BY created_at DESC`)
}

func (s *Store) ListApplicationsByRequester(ctx context.Context, requesterID uuid.UUID) ([]*application.Application, error) {
	return s.listApplications(ctx, `SELECT id, requester_id, activity_name, activity_description, venue_id,
		start_time, end_time, materials, status, rejection_reason,
		reviewer_id, created_at, reviewed_at, updated_at
		FROM applications WHERE requester_id = $1 ORDER BY created_at DESC`, requesterID)
}

func (s *Store) ListApplicationsByStatus(ctx context.Context, status application.Status) ([]*application.Application, error) {
	return s.listApplications(ctx, `SELECT id, requester_id, activity_name, activity_description, venue_id,
		start_time, end_time, materials, status, rejection_reason,
		reviewer_id, created_at, reviewed_at, updated_at
		FROM applications WHERE status = $1 ORDER BY created_at DESC`, string(status))
}

func (s *Store) listApplications(ctx context.Context, query string, args ...interface{}) ([]*application.Application, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var out []*application.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApplication(row rowScanner) (*application.Application, error) {
	a := &application.Application{}
	var materials []byte
	var rejectionReason sql.NullString
	var reviewerID uuid.NullUUID
	err := row.Scan(
		&a.ID, &a.RequesterID, &a.ActivityName, &a.ActivityDescription, &a.VenueID,
		&a.StartTime, &a.EndTime, &materials, &a.Status, &rejectionReason,
		&reviewerID, &a.CreatedAt, &a.ReviewedAt, &a.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, application.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("scan application: %w", err)
	}
	if err := json.Unmarshal(materials, &a.Materials); err != nil {
		return nil, fmt.Errorf("unmarshal line items: %w", err)
	}
	a.RejectionReason = rejectionReason.String
	if reviewerID.Valid {
		a.ReviewerID = reviewerID.UUID
	}
	return a, nil
}

// --- identity.UserStore ---

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	query := `
		SELECT id, username, real_name, role, password_hash, salt, created_at
		FROM users
		WHERE id = $1
	`
	return scanUser(s.db.QueryRowContext(ctx, query, id))
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*identity.User, error) {
	query := `
		SELECT id, username, real_name, role, password_hash, salt, created_at
		FROM users
		WHERE username = $1
	`
	return scanUser(s.db.QueryRowContext(ctx, query, username))
}

func (s *Store) SaveUser(ctx context.Context, u *identity.User) error {
	query := `
		INSERT INTO users (id, username, real_name, role, password_hash, salt, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET real_name = EXCLUDED.real_name,
		    role = EXCLUDED.role,
		    password_hash = EXCLUDED.password_hash,
		    salt = EXCLUDED.salt
	`
	_, err := s.db.ExecContext(ctx, query,
		u.ID, u.Username, u.RealName, u.Role, u.PasswordHash, u.Salt, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func scanUser(row rowScanner) (*identity.User, error) {
	u := &identity.User{}
	err := row.Scan(&u.ID, &u.Username, &u.RealName, &u.Role, &u.PasswordHash, &u.Salt, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, identity.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}
