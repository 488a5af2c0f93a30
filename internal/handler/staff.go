package handler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hostel-reservation/internal/model"
	"github.com/iliyamo/hostel-reservation/internal/repository"
	"github.com/iliyamo/hostel-reservation/internal/service"
	"github.com/iliyamo/hostel-reservation/internal/utils"
)

// RoomCreator is the write side of the room repository.
type RoomCreator interface {
	Create(ctx context.Context, in repository.NewRoom) (*model.Room, error)
}

// StaffHandler serves the front desk routes.  Every route runs behind
// JWTAuth and RequireRole(STAFF).
type StaffHandler struct {
	Svc   ReservationService
	Rooms RoomCreator
	// OnCatalogChange runs after the catalog changed, e.g. to drop cached
	// room listings.  Optional.
	OnCatalogChange func(ctx context.Context) error
	// Now defaults to time.Now; check-in and check-out use it when the
	// request carries no date.
	Now func() time.Time
}

func NewStaffHandler(svc ReservationService, rooms RoomCreator, onCatalogChange func(ctx context.Context) error) *StaffHandler {
	return &StaffHandler{Svc: svc, Rooms: rooms, OnCatalogChange: onCatalogChange, Now: time.Now}
}

type lifecycleReq struct {
	Date string `json:"date" validate:"omitempty,stay_date"`
}

// StaffReservation is the front desk view of a reservation.  Unlike the
// guest view it includes the owner and the assigned bed ids.
type StaffReservation struct {
	service.ReservationDetail
	GuestID uint64   `json:"guestId"`
	BedIDs  []uint64 `json:"bedIds"`
}

func toStaffReservation(r *model.Reservation) StaffReservation {
	ids := r.BedIDs()
	if ids == nil {
		ids = []uint64{}
	}
	return StaffReservation{ReservationDetail: service.NewReservationDetail(r), GuestID: r.GuestID, BedIDs: ids}
}

// lifecycleDay resolves the day a check-in or check-out is performed: the
// request's date when given, otherwise the current time.
func (h *StaffHandler) lifecycleDay(c echo.Context) (time.Time, error) {
	var req lifecycleReq
	if err := c.Bind(&req); err != nil {
		return time.Time{}, errors.New("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return time.Time{}, errors.New(validationMessage(err))
	}
	if req.Date != "" {
		return utils.ParseDate(req.Date)
	}
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	return now().UTC(), nil
}

// CheckIn handles POST /v1/staff/reservations/:id/check-in.
func (h *StaffHandler) CheckIn(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	at, err := h.lifecycleDay(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	res, err := h.Svc.CheckIn(c.Request().Context(), id, at)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, toStaffReservation(res))
}

// CheckOut handles POST /v1/staff/reservations/:id/check-out.
func (h *StaffHandler) CheckOut(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	at, err := h.lifecycleDay(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	res, err := h.Svc.CheckOut(c.Request().Context(), id, at)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, toStaffReservation(res))
}

// GetReservation handles GET /v1/staff/reservations/:id.
func (h *StaffHandler) GetReservation(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	res, err := h.Svc.GetReservation(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, toStaffReservation(res))
}

type createRoomReq struct {
	Type        string        `json:"type" validate:"required,max=100"`
	PriceCents  uint32        `json:"price" validate:"required"`
	Description *string       `json:"description"`
	Beds        int           `json:"beds" validate:"min=0,max=64"`
	BedLabels   []string      `json:"bedLabels" validate:"max=64,dive,required,max=50"`
	Photos      []model.Photo `json:"photos" validate:"dive"`
	FacilityIDs []uint64      `json:"facilityIds"`
}

// bedLabels returns explicit labels when given, otherwise "1".."n".
func (r createRoomReq) bedLabels() []string {
	if len(r.BedLabels) > 0 {
		out := make([]string, 0, len(r.BedLabels))
		for _, l := range r.BedLabels {
			out = append(out, strings.TrimSpace(l))
		}
		return out
	}
	out := make([]string, 0, r.Beds)
	for i := 1; i <= r.Beds; i++ {
		out = append(out, fmt.Sprintf("%d", i))
	}
	return out
}

// CreateRoom handles POST /v1/staff/rooms.  Beds are created together with
// the room, either numbered 1..beds or from bedLabels.
func (h *StaffHandler) CreateRoom(c echo.Context) error {
	var req createRoomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Type = strings.TrimSpace(req.Type)
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": validationMessage(err)})
	}
	if req.Beds == 0 && len(req.BedLabels) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "beds or bedLabels is required"})
	}
	ctx := c.Request().Context()
	room, err := h.Rooms.Create(ctx, repository.NewRoom{
		Type:        req.Type,
		PriceCents:  req.PriceCents,
		Description: req.Description,
		BedLabels:   req.bedLabels(),
		Photos:      req.Photos,
		FacilityIDs: req.FacilityIDs,
	})
	if err != nil {
		log.Printf("handler: create room: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create room failed"})
	}
	if h.OnCatalogChange != nil {
		if err := h.OnCatalogChange(ctx); err != nil {
			log.Printf("handler: catalog change hook: %v", err)
		}
	}
	return c.JSON(http.StatusCreated, toPublicRoom(*room))
}
