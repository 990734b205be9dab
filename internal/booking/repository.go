package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	// CreateGuarded re-checks the per-user limits and inserts b in one
	// transaction holding a lock on the user, so concurrent requests by the
	// same user cannot both pass the checks.
	CreateGuarded(ctx context.Context, b *Booking, rules Rules) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	// Update persists provider, dates and price.
	Update(ctx context.Context, b *Booking) error
	UpdateStatus(ctx context.Context, id string, status Status) (time.Time, error)
	// UpdateStatusGuarded sets the status after re-checking the per-user limits
	// the target status is subject to, under the same lock as CreateGuarded.
	// b itself is left out of the checks.
	UpdateStatusGuarded(ctx context.Context, b *Booking, status Status, rules Rules) (time.Time, error)
	Delete(ctx context.Context, id string) error
	ExistsForUserAndCar(ctx context.Context, userID, carID string, statuses []Status) (bool, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var bookingColumns = []string{
	"b.id", "b.user_id", "b.car_id", "b.provider_id", "p.name",
	"b.start_date", "b.end_date", "b.total_price", "b.status",
	"c.name", "c.brand", "c.model", "c.price_per_day",
	"u.name", "u.tel", "u.email",
	"b.created_at", "b.updated_at",
}

func selectBookings() squirrel.SelectBuilder {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	return psql.Select(bookingColumns...).
		From("public.bookings b").
		Join("public.cars c ON c.id = b.car_id").
		Join("public.users u ON u.id = b.user_id").
		LeftJoin("public.providers p ON p.id = b.provider_id")
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	err := row.Scan(
		&b.ID, &b.UserID, &b.CarID, &b.ProviderID, &b.ProviderName,
		&b.StartDate, &b.EndDate, &b.TotalPrice, &b.Status,
		&b.Car.Name, &b.Car.Brand, &b.Car.Model, &b.Car.PricePerDay,
		&b.User.Name, &b.User.Tel, &b.User.Email,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func statusArgs(statuses []Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// Foreign key constraints on public.bookings.
const (
	userForeignKey     = "bookings_user_id_fkey"
	carForeignKey      = "bookings_car_id_fkey"
	providerForeignKey = "bookings_provider_id_fkey"
)

// referenceError maps a foreign key violation to the missing reference.
// It returns nil for any other error.
func referenceError(err error) error {
	var e *pgconn.PgError
	if !errors.As(err, &e) || e.Code != pgerrcode.ForeignKeyViolation {
		return nil
	}
	switch e.ConstraintName {
	case userForeignKey:
		return ErrUserNotFound
	case carForeignKey:
		return ErrCarNotFound
	case providerForeignKey:
		return ErrProviderNotFound
	}
	return nil
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// lockUser serializes limit checks per user until tx ends.
func lockUser(ctx context.Context, tx pgx.Tx, userID string) error {
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", userID); err != nil {
		return fmt.Errorf("lock user bookings failed: %w", err)
	}
	return nil
}

// checkLimits applies the rules a booking of userID on carID entering status
// is subject to. excludeID, when set, is the booking being changed.
func checkLimits(ctx context.Context, q queryRower, userID, carID, excludeID string, status Status, rules Rules) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	others := squirrel.And{squirrel.Eq{"user_id": userID}}
	if excludeID != "" {
		others = append(others, squirrel.NotEq{"id": excludeID})
	}

	if rules.MaxActive > 0 && status.Active() {
		query, args, err := psql.Select("count(*)").
			From("public.bookings").
			Where(others).
			Where(squirrel.Eq{"status": statusArgs(ActiveStatuses)}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build count active bookings query failed: %w", err)
		}
		var active int
		if err := q.QueryRow(ctx, query, args...).Scan(&active); err != nil {
			return fmt.Errorf("count active bookings failed: %w", err)
		}
		if active >= rules.MaxActive {
			return QuotaExceededError(rules.MaxActive)
		}
	}

	if rules.PreventDuplicatePending && status == StatusPending {
		sub, args, err := psql.Select("1").
			From("public.bookings").
			Where(others).
			Where(squirrel.Eq{"car_id": carID, "status": string(StatusPending)}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build duplicate pending query failed: %w", err)
		}
		var exists bool
		if err := q.QueryRow(ctx, "SELECT EXISTS ("+sub+")", args...).Scan(&exists); err != nil {
			return fmt.Errorf("check duplicate pending failed: %w", err)
		}
		if exists {
			return ErrDuplicatePending
		}
	}
	return nil
}

func (r *pgxRepository) CreateGuarded(ctx context.Context, b *Booking, rules Rules) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create booking failed: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockUser(ctx, tx, b.UserID); err != nil {
		return err
	}
	if err := checkLimits(ctx, tx, b.UserID, b.CarID, "", b.Status, rules); err != nil {
		return err
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.bookings").
		Columns("user_id", "car_id", "provider_id", "start_date", "end_date", "total_price", "status").
		Values(b.UserID, b.CarID, b.ProviderID, b.StartDate, b.EndDate, b.TotalPrice, b.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := tx.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if refErr := referenceError(err); refErr != nil {
			return refErr
		}
		return fmt.Errorf("create booking failed: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	query, args, err := selectBookings().Where(squirrel.Eq{"b.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	where := squirrel.And{}
	if filter.UserID != "" {
		where = append(where, squirrel.Eq{"b.user_id": filter.UserID})
	}
	if filter.CarID != "" {
		where = append(where, squirrel.Eq{"b.car_id": filter.CarID})
	}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"b.status": filter.Status})
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	countSQL, countArgs, err := psql.Select("count(*)").From("public.bookings b").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count bookings query failed: %w", err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count bookings failed: %w", err)
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 10
	}
	offset := (filter.Page - 1) * filter.PageSize

	query, args, err := selectBookings().
		Where(where).
		OrderBy("b.created_at DESC", "b.id").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate bookings failed: %w", err)
	}

	return bookings, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, b *Booking) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.bookings").
		Set("provider_id", b.ProviderID).
		Set("start_date", b.StartDate).
		Set("end_date", b.EndDate).
		Set("total_price", b.TotalPrice).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": b.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update booking query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if refErr := referenceError(err); refErr != nil {
			return refErr
		}
		return fmt.Errorf("update booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) UpdateStatus(ctx context.Context, id string, status Status) (time.Time, error) {
	return updateStatus(ctx, r.pool, id, status)
}

func (r *pgxRepository) UpdateStatusGuarded(ctx context.Context, b *Booking, status Status, rules Rules) (time.Time, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return time.Time{}, fmt.Errorf("begin update booking status failed: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockUser(ctx, tx, b.UserID); err != nil {
		return time.Time{}, err
	}
	if err := checkLimits(ctx, tx, b.UserID, b.CarID, b.ID, status, rules); err != nil {
		return time.Time{}, err
	}

	updatedAt, err := updateStatus(ctx, tx, b.ID, status)
	if err != nil {
		return time.Time{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return time.Time{}, fmt.Errorf("commit booking status failed: %w", err)
	}
	return updatedAt, nil
}

func updateStatus(ctx context.Context, q queryRower, id string, status Status) (time.Time, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.bookings").
		Set("status", string(status)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return time.Time{}, fmt.Errorf("build update booking status query failed: %w", err)
	}

	var updatedAt time.Time
	if err := q.QueryRow(ctx, query, args...).Scan(&updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, ErrNotFound
		}
		return time.Time{}, fmt.Errorf("update booking status failed: %w", err)
	}
	return updatedAt, nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete booking query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete booking failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) ExistsForUserAndCar(ctx context.Context, userID, carID string, statuses []Status) (bool, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sub, args, err := psql.Select("1").
		From("public.bookings").
		Where(squirrel.Eq{"user_id": userID, "car_id": carID, "status": statusArgs(statuses)}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build booking exists query failed: %w", err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, "SELECT EXISTS ("+sub+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check booking exists failed: %w", err)
	}
	return exists, nil
}
