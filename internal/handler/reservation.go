package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hostel-reservation/internal/middleware"
	"github.com/iliyamo/hostel-reservation/internal/service"
	"github.com/iliyamo/hostel-reservation/internal/utils"
)

// ReservationHandler serves the guest reservation endpoints.  Every route
// runs behind JWTAuth and RequireRole(GUEST).
type ReservationHandler struct {
	Svc ReservationService
}

func NewReservationHandler(svc ReservationService) *ReservationHandler {
	if svc == nil {
		panic("nil service passed to NewReservationHandler")
	}
	return &ReservationHandler{Svc: svc}
}

type makeReservationReq struct {
	CheckIn         string              `json:"checkIn" validate:"required,stay_date"`
	CheckOut        string              `json:"checkOut" validate:"required,stay_date,after_date=CheckIn"`
	Rooms           []service.Selection `json:"rooms" validate:"required,min=1,dive"`
	SpecialRequests string              `json:"specialRequests" validate:"max=2000"`
}

// Create handles POST /v1/reservations.  The body lists the chosen rooms
// with the number of guests for each; beds are assigned by the server.
func (h *ReservationHandler) Create(c echo.Context) error {
	guestID, ok := middleware.GuestID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req makeReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": validationMessage(err)})
	}
	// Both dates passed stay_date, so parsing can not fail here.
	checkIn, _ := utils.ParseDate(req.CheckIn)
	checkOut, _ := utils.ParseDate(req.CheckOut)

	detail, err := h.Svc.MakeReservation(c.Request().Context(), service.MakeReservationInput{
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		GuestID:         guestID,
		Rooms:           req.Rooms,
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, detail)
}

// Get handles GET /v1/reservations/:id.
func (h *ReservationHandler) Get(c echo.Context) error {
	guestID, ok := middleware.GuestID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	detail, err := h.Svc.GetReservationDetails(c.Request().Context(), id, guestID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// PaymentStatus handles GET /v1/reservations/:id/payment.
func (h *ReservationHandler) PaymentStatus(c echo.Context) error {
	guestID, ok := middleware.GuestID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	paid, err := h.Svc.GetReservationPaymentStatus(c.Request().Context(), id, guestID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "isPaid": paid})
}

// ListMine handles GET /v1/my-reservations.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	guestID, ok := middleware.GuestID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	list, err := h.Svc.ListGuestReservations(c.Request().Context(), guestID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": list})
}
