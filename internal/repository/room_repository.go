package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/room-reservation/internal/booking"
	"github.com/iliyamo/room-reservation/internal/model"
)

// RoomRepo provides CRUD operations for rooms.  Rooms are the bookable
// resource of the system; bookings reference them by id.
type RoomRepo struct{ DB *sql.DB }

// NewRoomRepo returns a new RoomRepo bound to the given database.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{DB: db} }

const roomColumns = "id, name, type, price_per_night, featured, description, image_url, available, city, address, created_at, updated_at"

func scanRoom(row interface{ Scan(...any) error }) (model.Room, error) {
	var (
		rm       model.Room
		imageURL sql.NullString
	)
	err := row.Scan(&rm.ID, &rm.Name, &rm.Type, &rm.PricePerNight, &rm.Featured,
		&rm.Description, &imageURL, &rm.Available, &rm.City, &rm.Address,
		&rm.CreatedAt, &rm.UpdatedAt)
	if err != nil {
		return model.Room{}, err
	}
	if imageURL.Valid {
		u := imageURL.String
		rm.ImageURL = &u
	}
	return rm, nil
}

// Create inserts a room and populates its generated ID and timestamps.
func (r *RoomRepo) Create(ctx context.Context, rm *model.Room) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO rooms (name, type, price_per_night, featured, description, image_url, available, city, address)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		rm.Name, rm.Type, rm.PricePerNight, rm.Featured, rm.Description, rm.ImageURL, rm.Available, rm.City, rm.Address)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rm.ID = uint64(id)
	got, err := r.GetByID(ctx, rm.ID)
	if err != nil {
		return err
	}
	*rm = got
	return nil
}

// GetByID fetches a room by id, returning booking.ErrRoomNotFound when the
// room does not exist.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (model.Room, error) {
	row := r.DB.QueryRowContext(ctx, "SELECT "+roomColumns+" FROM rooms WHERE id=? LIMIT 1", id)
	rm, err := scanRoom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Room{}, booking.ErrRoomNotFound
	}
	return rm, err
}

// ListAll returns every room ordered by creation time descending.
func (r *RoomRepo) ListAll(ctx context.Context) ([]model.Room, error) {
	return r.list(ctx, "SELECT "+roomColumns+" FROM rooms ORDER BY created_at DESC")
}

// ListFeatured returns rooms flagged for the featured listing.
func (r *RoomRepo) ListFeatured(ctx context.Context) ([]model.Room, error) {
	return r.list(ctx, "SELECT "+roomColumns+" FROM rooms WHERE featured = TRUE ORDER BY created_at DESC")
}

func (r *RoomRepo) list(ctx context.Context, query string, args ...any) ([]model.Room, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Room, 0)
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

// Delete removes a room.  Rooms with booking history cannot be deleted
// because bookings carry a foreign key to them; the FK violation surfaces
// as a generic error the handler maps to 409.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM rooms WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return booking.ErrRoomNotFound
	}
	return nil
}
