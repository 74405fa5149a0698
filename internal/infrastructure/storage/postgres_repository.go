package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"GrantReport/internal/domain"
	"GrantReport/internal/ports"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresRepository keeps the latest application snapshot in Postgres.
type PostgresRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ ports.ApplicationRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{db: db, logger: logger}
}

// EnsureSchema creates the applications table and its indexes when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Replace clears the table and bulk-loads apps in one transaction,
// so a failure keeps the previous snapshot.
func (r *PostgresRepository) Replace(ctx context.Context, apps []domain.Application) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query, args, err := psql.Delete(applicationsTable).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear applications: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(applicationsTable, applicationColumns...))
	if err != nil {
		return fmt.Errorf("prepare copy: %w", err)
	}

	for _, app := range apps {
		if _, err = stmt.ExecContext(ctx,
			app.ApplicationID,
			nullable(app.LeadApplicantName),
			nullable(app.LeadApplicantEmail),
			nullable(app.LeadApplicantAddress),
			nullable(app.OrganisationName),
			nullable(app.Summary),
			app.AmountAwarded,
			app.ResearchArea,
			string(app.Status),
			app.SubmittedDate,
			nullable(app.ActionedDate),
		); err != nil {
			_ = stmt.Close()
			return fmt.Errorf("copy application %s: %w", app.ApplicationID, err)
		}
	}

	if _, err = stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		return fmt.Errorf("flush copy: %w", err)
	}
	if err = stmt.Close(); err != nil {
		return fmt.Errorf("close copy: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}

	r.debug("applications replaced", "count", len(apps))
	return nil
}

// Count returns the number of stored applications.
func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	query, args, err := psql.Select("COUNT(*)").From(applicationsTable).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count applications: %w", err)
	}
	return count, nil
}

// Generation returns the highest surrogate id in the table, or zero when empty.
// Replace always draws fresh ids from the sequence, so each load gets a new generation.
func (r *PostgresRepository) Generation(ctx context.Context) (int64, error) {
	return generation(ctx, r.db)
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func generation(ctx context.Context, q rowQuerier) (int64, error) {
	query, args, err := psql.Select("COALESCE(MAX(id), 0)").From(applicationsTable).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build generation: %w", err)
	}

	var gen int64
	if err := q.QueryRowContext(ctx, query, args...).Scan(&gen); err != nil {
		return 0, fmt.Errorf("read generation: %w", err)
	}
	return gen, nil
}

// Snapshot reads every application in upstream load order together with the
// generation they belong to, inside one repeatable-read transaction.
func (r *PostgresRepository) Snapshot(ctx context.Context) ([]domain.Application, int64, error) {
	query, args, err := psql.
		Select(
			"application_id",
			"COALESCE(lead_applicant_name, '')",
			"COALESCE(lead_applicant_email, '')",
			"COALESCE(lead_applicant_address, '')",
			"COALESCE(organisation_name, '')",
			"COALESCE(summary, '')",
			"amount_awarded",
			"research_area",
			"status",
			"to_char(submitted_date, 'YYYY-MM-DD')",
			"COALESCE(to_char(actioned_date, 'YYYY-MM-DD'), '')",
		).
		From(applicationsTable).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build snapshot: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, 0, fmt.Errorf("begin snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	gen, err := generation(ctx, tx)
	if err != nil {
		return nil, 0, err
	}

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query applications: %w", err)
	}

	result := make([]domain.Application, 0)
	for rows.Next() {
		var (
			app    domain.Application
			status string
		)
		if err := rows.Scan(
			&app.ApplicationID,
			&app.LeadApplicantName,
			&app.LeadApplicantEmail,
			&app.LeadApplicantAddress,
			&app.OrganisationName,
			&app.Summary,
			&app.AmountAwarded,
			&app.ResearchArea,
			&status,
			&app.SubmittedDate,
			&app.ActionedDate,
		); err != nil {
			_ = rows.Close()
			return nil, 0, fmt.Errorf("scan application: %w", err)
		}
		app.Status = domain.Status(status)
		result = append(result, app)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, 0, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, 0, fmt.Errorf("close rows: %w", closeErr)
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("commit snapshot: %w", err)
	}

	return result, gen, nil
}

func (r *PostgresRepository) debug(msg string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
