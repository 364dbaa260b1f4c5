package handler

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/booking"
	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/repository"
)

// RoomHandler exposes room catalog endpoints.  Listing is public; create and
// delete require the OWNER role (enforced by route middleware).
type RoomHandler struct {
	Rooms     *repository.RoomRepo
	UploadDir string
}

func NewRoomHandler(rooms *repository.RoomRepo, uploadDir string) *RoomHandler {
	return &RoomHandler{Rooms: rooms, UploadDir: uploadDir}
}

// ListRooms returns all rooms, newest first.
func (h *RoomHandler) ListRooms(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rooms, err := h.Rooms.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list rooms failed"})
	}
	return c.JSON(http.StatusOK, rooms)
}

// ListFeatured returns the rooms flagged for the landing page.
func (h *RoomHandler) ListFeatured(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rooms, err := h.Rooms.ListFeatured(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list rooms failed"})
	}
	return c.JSON(http.StatusOK, rooms)
}

// GetRoom returns one room by id.
func (h *RoomHandler) GetRoom(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rm, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		if err == booking.ErrRoomNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load room failed"})
	}
	return c.JSON(http.StatusOK, rm)
}

// CreateRoom creates a room from a multipart form.  Field names mirror the
// Room JSON fields; an optional "image" file part is stored under UploadDir
// and served back as /images/<name>.
func (h *RoomHandler) CreateRoom(c echo.Context) error {
	name := strings.TrimSpace(c.FormValue("name"))
	roomType := strings.TrimSpace(c.FormValue("type"))
	if name == "" || roomType == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and type are required"})
	}
	price, err := strconv.ParseFloat(c.FormValue("price_per_night"), 64)
	if err != nil || price < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid price_per_night"})
	}

	rm := model.Room{
		Name:          name,
		Type:          roomType,
		PricePerNight: price,
		Featured:      c.FormValue("featured") == "true",
		Description:   strings.TrimSpace(c.FormValue("description")),
		Available:     c.FormValue("available") != "false",
		City:          strings.TrimSpace(c.FormValue("city")),
		Address:       strings.TrimSpace(c.FormValue("address")),
	}

	if fh, err := c.FormFile("image"); err == nil && fh != nil {
		url, err := h.saveImage(fh)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store image failed"})
		}
		rm.ImageURL = &url
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Rooms.Create(ctx, &rm); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create room failed"})
	}
	return c.JSON(http.StatusCreated, rm)
}

// DeleteRoom removes a room.  Rooms referenced by bookings cannot be removed
// and yield 409.
func (h *RoomHandler) DeleteRoom(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Rooms.Delete(ctx, id); err != nil {
		if err == booking.ErrRoomNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusConflict, echo.Map{"error": "room has booking history"})
	}
	return c.NoContent(http.StatusNoContent)
}

// saveImage writes an uploaded file under UploadDir with a uuid name that
// keeps the original extension, and returns the public URL path.
func (h *RoomHandler) saveImage(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		return "", err
	}
	fname := uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))
	dst, err := os.Create(filepath.Join(h.UploadDir, fname))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return "/images/" + fname, nil
}
