package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockdesk/console-service/internal/app/console/entity"
	"stockdesk/console-service/internal/app/console/service"
	"stockdesk/console-service/internal/app/console/views"
)

// MovementHandler - формы продажи и закупки. Запись движения и остаток товара
// меняются раздельно, ответ сообщает, удалось ли второе.
type MovementHandler struct {
	inventory service.InventoryServiceInterface
}

func NewMovementHandler(inventory service.InventoryServiceInterface) *MovementHandler {
	return &MovementHandler{inventory: inventory}
}

func (h *MovementHandler) RecordSale(c *gin.Context) {
	var req entity.RecordSaleRequest
	if !bindMovement(c, &req) {
		return
	}

	resp, err := h.inventory.RecordSale(c.Request.Context(), &req)
	if err != nil {
		respondMovementError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RecordPurchase - закупка компании записывается на её id.
func (h *MovementHandler) RecordPurchase(c *gin.Context) {
	var req entity.RecordPurchaseRequest
	if !bindMovement(c, &req) {
		return
	}

	var owner *int64
	if c.GetString(ctxRole) == entity.RoleCompany {
		id := c.GetInt64(ctxUserID)
		owner = &id
	}

	resp, err := h.inventory.RecordPurchase(c.Request.Context(), &req, owner)
	if err != nil {
		respondMovementError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func bindMovement(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondWithError(c, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := views.Validate(req); err != nil {
		respondWithError(c, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func respondMovementError(c *gin.Context, err error) {
	if status, message, ok := serviceErrorStatus(err); ok {
		respondWithError(c, status, message)
		return
	}
	respondStoreError(c, err)
}
