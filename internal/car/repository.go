package car

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines methods for accessing car data.
type Repository interface {
	Create(ctx context.Context, c *Car) error
	GetByID(ctx context.Context, id string) (*Car, error)
	List(ctx context.Context, filter Filter) ([]*Car, int, error)
	Update(ctx context.Context, c *Car, replaceProviders bool) error
	Delete(ctx context.Context, id string) error
	// SetImage points the car at a new image and returns the previous one.
	SetImage(ctx context.Context, id string, fileID *string) (*string, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRepository creates a new car repository.
func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

// Providers are aggregated per car in a correlated subquery.
var carColumns = []string{
	"c.id", "c.name", "c.brand", "c.model", "c.type", "c.seats", "c.fuel", "c.transmission",
	"c.price_per_day", "c.image_file_id", "c.created_at", "c.updated_at",
	`COALESCE(
		(
			SELECT json_agg(json_build_object('id', p.id, 'name', p.name, 'address', p.address, 'tel', p.tel) ORDER BY p.name)
			FROM public.car_providers cp
			JOIN public.providers p ON p.id = cp.provider_id
			WHERE cp.car_id = c.id
		),
		'[]'::json
	) AS providers`,
}

func scanCar(row pgx.Row) (*Car, error) {
	var c Car
	var providersJSON []byte
	if err := row.Scan(
		&c.ID, &c.Name, &c.Brand, &c.Model, &c.Type, &c.Seats, &c.Fuel, &c.Transmission,
		&c.PricePerDay, &c.ImageFileID, &c.CreatedAt, &c.UpdatedAt,
		&providersJSON,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(providersJSON, &c.Providers); err != nil {
		return nil, fmt.Errorf("decode providers for car %s: %w", c.ID, err)
	}
	c.ProviderIDs = make([]string, len(c.Providers))
	for i, p := range c.Providers {
		c.ProviderIDs[i] = p.ID
	}
	return &c, nil
}

func (r *pgxRepository) Create(ctx context.Context, c *Car) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create car failed: %w", err)
	}
	defer tx.Rollback(ctx)

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.cars").
		Columns("name", "brand", "model", "type", "seats", "fuel", "transmission", "price_per_day").
		Values(c.Name, c.Brand, c.Model, c.Type, c.Seats, c.Fuel, c.Transmission, c.PricePerDay).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create car query failed: %w", err)
	}

	if err := tx.QueryRow(ctx, query, args...).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return fmt.Errorf("Create failed: %w", err)
	}

	if err := insertProviders(ctx, tx, c.ID, c.ProviderIDs); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func insertProviders(ctx context.Context, tx pgx.Tx, carID string, providerIDs []string) error {
	if len(providerIDs) == 0 {
		return nil
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	insert := psql.Insert("public.car_providers").Columns("car_id", "provider_id")
	for _, pid := range providerIDs {
		insert = insert.Values(carID, pid)
	}
	query, args, err := insert.Suffix("ON CONFLICT DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("build car providers query failed: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		var e *pgconn.PgError
		if errors.As(err, &e) && e.Code == pgerrcode.ForeignKeyViolation {
			return ErrUnknownProvider
		}
		return fmt.Errorf("insert car providers failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Car, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(carColumns...).
		From("public.cars c").
		Where(squirrel.Eq{"c.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get car query failed: %w", err)
	}

	c, err := scanCar(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("GetByID failed: %w", err)
	}
	return c, nil
}

// escapeLike makes a user keyword match literally inside ILIKE.
var escapeLike = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func buildFilter(filter Filter) squirrel.And {
	where := squirrel.And{}

	for _, kw := range strings.Fields(filter.Search) {
		pattern := "%" + escapeLike.Replace(kw) + "%"
		match := squirrel.Or{
			squirrel.ILike{"c.name": pattern},
			squirrel.ILike{"c.brand": pattern},
			squirrel.ILike{"c.model": pattern},
			squirrel.ILike{"c.type": pattern},
			squirrel.ILike{"c.fuel": pattern},
			squirrel.ILike{"c.transmission": pattern},
		}
		if seats, err := strconv.Atoi(kw); err == nil {
			match = append(match, squirrel.Eq{"c.seats": seats})
		}
		where = append(where, match)
	}

	if filter.Type != "" {
		where = append(where, squirrel.Eq{"c.type": filter.Type})
	}
	if filter.Brand != "" {
		where = append(where, squirrel.Eq{"c.brand": filter.Brand})
	}
	if filter.Fuel != "" {
		where = append(where, squirrel.Eq{"c.fuel": filter.Fuel})
	}
	if filter.Transmission != "" {
		where = append(where, squirrel.Eq{"c.transmission": filter.Transmission})
	}
	if filter.Seats > 0 {
		where = append(where, squirrel.Eq{"c.seats": filter.Seats})
	}

	return where
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Car, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	where := buildFilter(filter)

	countSQL, countArgs, err := psql.Select("count(*)").From("public.cars c").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count cars query failed: %w", err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count cars failed: %w", err)
	}

	offset := (filter.Page - 1) * filter.PageSize
	query, args, err := psql.Select(carColumns...).
		From("public.cars c").
		Where(where).
		OrderBy("c.created_at DESC", "c.id").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list cars query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("List failed: %w", err)
	}
	defer rows.Close()

	var cars []*Car
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan failed: %w", err)
		}
		cars = append(cars, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate cars failed: %w", err)
	}

	return cars, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, c *Car, replaceProviders bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin update car failed: %w", err)
	}
	defer tx.Rollback(ctx)

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.cars").
		Set("name", c.Name).
		Set("brand", c.Brand).
		Set("model", c.Model).
		Set("type", c.Type).
		Set("seats", c.Seats).
		Set("fuel", c.Fuel).
		Set("transmission", c.Transmission).
		Set("price_per_day", c.PricePerDay).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": c.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update car query failed: %w", err)
	}

	if err := tx.QueryRow(ctx, query, args...).Scan(&c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("Update failed: %w", err)
	}

	if replaceProviders {
		if _, err := tx.Exec(ctx, `DELETE FROM public.car_providers WHERE car_id = $1`, c.ID); err != nil {
			return fmt.Errorf("clear car providers failed: %w", err)
		}
		if err := insertProviders(ctx, tx, c.ID, c.ProviderIDs); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM public.cars WHERE id = $1`, id)
	if err != nil {
		var e *pgconn.PgError
		if errors.As(err, &e) && e.Code == pgerrcode.ForeignKeyViolation {
			return ErrInUse
		}
		return fmt.Errorf("Delete failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) SetImage(ctx context.Context, id string, fileID *string) (*string, error) {
	// Joining the row to itself exposes the value from before the update.
	const query = `
		UPDATE public.cars c
		SET image_file_id = $1, updated_at = now()
		FROM public.cars old
		WHERE c.id = old.id AND c.id = $2
		RETURNING old.image_file_id
	`

	var previous *string
	if err := r.pool.QueryRow(ctx, query, fileID, id).Scan(&previous); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("SetImage failed: %w", err)
	}
	return previous, nil
}
