package repository

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/vfg2006/sales-manager-api/infrastructure/database/postgres"
	"github.com/vfg2006/sales-manager-api/internal/domain"
)

const profilesTable = "profiles"

type ProfileRepository interface {
	// GetProfileByID retorna (nil, nil) quando o perfil não existe
	GetProfileByID(ctx context.Context, profileID string) (*domain.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (*domain.Profile, error)
	ListProfiles(ctx context.Context) ([]*domain.Profile, error)
	CreateProfile(ctx context.Context, profile *domain.Profile) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, profile *domain.Profile) error
}

type profileRepository struct {
	conn *postgres.Connection
}

func NewProfileRepository(conn *postgres.Connection) ProfileRepository {
	return &profileRepository{
		conn: conn,
	}
}

var profileColumns = []string{
	"id",
	"name",
	"email",
	"password_hash",
	"role",
	"active",
	"created_at",
	"updated_at",
}

func (r *profileRepository) scanProfile(row squirrel.RowScanner) (*domain.Profile, error) {
	var profile domain.Profile
	err := row.Scan(
		&profile.ID,
		&profile.Name,
		&profile.Email,
		&profile.PasswordHash,
		&profile.Role,
		&profile.Active,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) GetProfileByID(ctx context.Context, profileID string) (*domain.Profile, error) {
	sqlQuery, args, err := squirrel.
		Select(profileColumns...).
		From(profilesTable).
		Where(squirrel.Eq{"deleted": false, "id": profileID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "erro ao construir consulta de perfil")
	}

	profile, err := r.scanProfile(r.conn.QueryRow(ctx, sqlQuery, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "erro ao consultar perfil")
	}

	return profile, nil
}

func (r *profileRepository) GetProfileByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	sqlQuery, args, err := squirrel.
		Select(profileColumns...).
		From(profilesTable).
		Where(squirrel.Eq{"deleted": false, "email": email}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "erro ao construir consulta de perfil")
	}

	profile, err := r.scanProfile(r.conn.QueryRow(ctx, sqlQuery, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "erro ao consultar perfil por email")
	}

	return profile, nil
}

func (r *profileRepository) ListProfiles(ctx context.Context) ([]*domain.Profile, error) {
	sqlQuery, args, err := squirrel.
		Select(profileColumns...).
		From(profilesTable).
		Where(squirrel.Eq{"deleted": false}).
		OrderBy("name ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "erro ao construir listagem de perfis")
	}

	rows, err := r.conn.Query(ctx, sqlQuery, args...)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao consultar perfis")
	}
	defer rows.Close()

	var profiles []*domain.Profile
	for rows.Next() {
		profile, err := r.scanProfile(rows)
		if err != nil {
			return nil, errors.Wrap(err, "erro ao escanear perfil")
		}
		profiles = append(profiles, profile)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "erro durante iteração de perfis")
	}

	return profiles, nil
}

func (r *profileRepository) CreateProfile(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	sqlQuery, args, err := squirrel.
		Insert(profilesTable).
		Columns("name", "email", "password_hash", "role", "active").
		Values(profile.Name, profile.Email, profile.PasswordHash, profile.Role, profile.Active).
		Suffix("RETURNING id, created_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "erro ao construir inserção de perfil")
	}

	if err := r.conn.QueryRow(ctx, sqlQuery, args...).Scan(&profile.ID, &profile.CreatedAt); err != nil {
		return nil, errors.Wrap(err, "erro ao inserir perfil")
	}

	return profile, nil
}

func (r *profileRepository) UpdateProfile(ctx context.Context, profile *domain.Profile) error {
	queryBuilder := squirrel.
		Update(profilesTable).
		Set("active", profile.Active).
		Where(squirrel.Eq{"id": profile.ID})

	if profile.Name != "" {
		queryBuilder = queryBuilder.Set("name", profile.Name)
	}

	if profile.Email != "" {
		queryBuilder = queryBuilder.Set("email", profile.Email)
	}

	if profile.PasswordHash != "" {
		queryBuilder = queryBuilder.Set("password_hash", profile.PasswordHash)
	}

	if profile.Role != "" {
		queryBuilder = queryBuilder.Set("role", profile.Role)
	}

	if profile.Deleted {
		queryBuilder = queryBuilder.Set("deleted", true)
		queryBuilder = queryBuilder.Set("deleted_at", profile.DeletedAt)
	}

	sqlQuery, args, err := queryBuilder.
		Set("updated_at", squirrel.Expr("CURRENT_TIMESTAMP")).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "erro ao construir atualização de perfil")
	}

	if _, err := r.conn.Exec(ctx, sqlQuery, args...); err != nil {
		return errors.Wrap(err, "erro ao atualizar perfil")
	}

	return nil
}
