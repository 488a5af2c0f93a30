package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hostel-reservation/internal/model"
	"github.com/iliyamo/hostel-reservation/internal/store"
	"github.com/iliyamo/hostel-reservation/internal/utils"
)

// RoomCatalog is the read side of the room repository.
type RoomCatalog interface {
	List(ctx context.Context) ([]model.Room, error)
	GetByID(ctx context.Context, id uint64) (*model.Room, error)
}

// CatalogHandler serves the public room browsing and availability routes.
// Catalog responses may be cached; availability responses never are.
type CatalogHandler struct {
	Rooms RoomCatalog
	Svc   ReservationService
}

func NewCatalogHandler(rooms RoomCatalog, svc ReservationService) *CatalogHandler {
	return &CatalogHandler{Rooms: rooms, Svc: svc}
}

// PublicBed is a bed as shown in the catalog.
type PublicBed struct {
	ID    uint64 `json:"id"`
	Label string `json:"label"`
}

// PublicRoom is a room as shown in the catalog.
type PublicRoom struct {
	ID          uint64           `json:"id"`
	Type        string           `json:"type"`
	PriceCents  uint32           `json:"price"`
	Description *string          `json:"description,omitempty"`
	BedCount    int              `json:"bedCount"`
	Beds        []PublicBed      `json:"beds"`
	Photos      []model.Photo    `json:"photos"`
	Facilities  []model.Facility `json:"facilities"`
}

func toPublicRoom(r model.Room) PublicRoom {
	out := PublicRoom{
		ID:          r.ID,
		Type:        r.Type,
		PriceCents:  r.PriceCents,
		Description: r.Description,
		BedCount:    len(r.Beds),
		Beds:        make([]PublicBed, 0, len(r.Beds)),
		Photos:      r.Photos,
		Facilities:  r.Facilities,
	}
	for _, b := range r.Beds {
		out.Beds = append(out.Beds, PublicBed{ID: b.ID, Label: b.Label})
	}
	if out.Photos == nil {
		out.Photos = []model.Photo{}
	}
	if out.Facilities == nil {
		out.Facilities = []model.Facility{}
	}
	return out
}

// ListRooms handles GET /v1/rooms.
func (h *CatalogHandler) ListRooms(c echo.Context) error {
	rooms, err := h.Rooms.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]PublicRoom, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, toPublicRoom(r))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetRoom handles GET /v1/rooms/:id.
func (h *CatalogHandler) GetRoom(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	room, err := h.Rooms.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toPublicRoom(*room))
}

type stayQuery struct {
	CheckIn  string `query:"check_in" validate:"required,stay_date"`
	CheckOut string `query:"check_out" validate:"required,stay_date,after_date=CheckIn"`
}

// SearchAvailability handles GET /v1/rooms/availability.  guests defaults
// to 1.
func (h *CatalogHandler) SearchAvailability(c echo.Context) error {
	var q stayQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid query"})
	}
	if err := c.Validate(&q); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": validationMessage(err)})
	}
	guests := 1
	if s := c.QueryParam("guests"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "guests must be a number"})
		}
		guests = n
	}
	checkIn, _ := utils.ParseDate(q.CheckIn)
	checkOut, _ := utils.ParseDate(q.CheckOut)

	res, err := h.Svc.FindAvailableRooms(c.Request().Context(), checkIn, checkOut, guests)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// RoomAvailability handles GET /v1/rooms/:id/availability.  Only the
// number of free beds is disclosed.
func (h *CatalogHandler) RoomAvailability(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var q stayQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid query"})
	}
	if err := c.Validate(&q); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": validationMessage(err)})
	}
	checkIn, _ := utils.ParseDate(q.CheckIn)
	checkOut, _ := utils.ParseDate(q.CheckOut)

	room, err := h.Svc.FindAvailableBeds(c.Request().Context(), checkIn, checkOut, id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":        room.ID,
		"type":      room.Type,
		"price":     room.PriceCents,
		"checkIn":   q.CheckIn,
		"checkOut":  q.CheckOut,
		"available": len(room.Beds),
	})
}
