package web

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"aqua/apperror"
	"aqua/auth"
	"aqua/water"
)

// 8 MB is plenty for a photographed transfer receipt.
const maxReceiptSize = 8 << 20

type Handler struct {
	service  *water.Service
	sessions *auth.Service
}

func NewHandler(service *water.Service, sessions *auth.Service) *Handler {
	return &Handler{service: service, sessions: sessions}
}

func writeError(c *gin.Context, err error) {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		c.JSON(appErr.StatusCode(), gin.H{"error": appErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func memberIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "member id must be a UUID"})
		return uuid.Nil, false
	}
	return id, true
}

func readReceiptFile(file *multipart.FileHeader) ([]byte, error) {
	if file.Size > maxReceiptSize {
		return nil, apperror.Invalid("receipt file exceeds %d bytes", maxReceiptSize)
	}
	opened, err := file.Open()
	if err != nil {
		return nil, apperror.Invalid("cannot open uploaded file")
	}
	defer opened.Close()
	data, err := io.ReadAll(opened)
	if err != nil {
		return nil, apperror.Invalid("cannot read uploaded file")
	}
	return data, nil
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}
	token, sess, err := h.sessions.SignIn(auth.Credentials{Username: req.Username, Password: req.Password})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"username":  sess.Subject,
		"admin":     sess.Admin,
		"expiresAt": sess.ExpiresAt,
	})
}

func (h *Handler) Logout(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" || token == header {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a bearer token is required"})
		return
	}
	if err := h.sessions.SignOut(token); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "signed out"})
}

func (h *Handler) GetConfig(c *gin.Context) {
	config, err := h.service.GetConfig()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, config)
}

type configRequest struct {
	BottlePrice     *float64 `json:"bottlePrice"`
	BottleCount     *int     `json:"bottleCount"`
	CurrentMonth    *string  `json:"currentMonth"`
	IsMonthActive   *bool    `json:"isMonthActive"`
	IsAmountUpdated *bool    `json:"isAmountUpdated"`
}

func (h *Handler) UpdateConfig(c *gin.Context) {
	var req configRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed config body"})
		return
	}
	config, err := h.service.UpdateConfig(sessionFromContext(c), water.ConfigUpdate{
		BottlePrice:     req.BottlePrice,
		BottleCount:     req.BottleCount,
		CurrentMonth:    req.CurrentMonth,
		IsMonthActive:   req.IsMonthActive,
		IsAmountUpdated: req.IsAmountUpdated,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, config)
}

func (h *Handler) ToggleAmountUpdated(c *gin.Context) {
	config, err := h.service.ToggleAmountUpdated(sessionFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, config)
}

func (h *Handler) ListMembers(c *gin.Context) {
	members, err := h.service.ListMembers()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

func (h *Handler) GetMember(c *gin.Context) {
	id, ok := memberIDParam(c)
	if !ok {
		return
	}
	member, err := h.service.GetMember(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

type memberRequest struct {
	Name   string `json:"name" binding:"required"`
	Avatar string `json:"avatar"`
	Phone  string `json:"phone"`
}

func (h *Handler) AddMember(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a member name is required"})
		return
	}
	member, err := h.service.AddMember(sessionFromContext(c), water.MemberParams{
		Name:   req.Name,
		Avatar: req.Avatar,
		Phone:  req.Phone,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

func (h *Handler) UpdateMember(c *gin.Context) {
	id, ok := memberIDParam(c)
	if !ok {
		return
	}
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a member name is required"})
		return
	}
	member, err := h.service.UpdateMember(sessionFromContext(c), id, water.MemberParams{
		Name:   req.Name,
		Avatar: req.Avatar,
		Phone:  req.Phone,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *Handler) RemoveMember(c *gin.Context) {
	id, ok := memberIDParam(c)
	if !ok {
		return
	}
	if err := h.service.RemoveMember(sessionFromContext(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type receiptPaymentForm struct {
	Amount *int64 `form:"amount"`
}

// RecordReceiptPayment accepts a multipart form with a "receipt" file
// and an optional "amount" override field.
func (h *Handler) RecordReceiptPayment(c *gin.Context) {
	id, ok := memberIDParam(c)
	if !ok {
		return
	}
	var form receiptPaymentForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be an integer"})
		return
	}
	file, err := c.FormFile("receipt")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a receipt file is required"})
		return
	}
	data, err := readReceiptFile(file)
	if err != nil {
		writeError(c, err)
		return
	}
	payment, err := h.service.RecordReceiptPayment(
		c.Request.Context(), sessionFromContext(c), id, file.Filename, data, form.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

type cashPaymentRequest struct {
	Amount int64  `json:"amount" binding:"required"`
	Month  string `json:"month"`
}

func (h *Handler) RecordCashPayment(c *gin.Context) {
	id, ok := memberIDParam(c)
	if !ok {
		return
	}
	var req cashPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a positive amount is required"})
		return
	}
	payment, err := h.service.RecordCashPayment(sessionFromContext(c), id, req.Amount, req.Month)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

func (h *Handler) UpdateReceipt(c *gin.Context) {
	id, ok := memberIDParam(c)
	if !ok {
		return
	}
	file, err := c.FormFile("receipt")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a receipt file is required"})
		return
	}
	data, err := readReceiptFile(file)
	if err != nil {
		writeError(c, err)
		return
	}
	receiptURL, err := h.service.UpdateReceipt(
		c.Request.Context(), sessionFromContext(c), id, c.Param("month"), file.Filename, data)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"receipt": receiptURL})
}

func (h *Handler) DeletePayment(c *gin.Context) {
	id, ok := memberIDParam(c)
	if !ok {
		return
	}
	if err := h.service.DeletePayment(sessionFromContext(c), id, c.Param("month")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) StartNewMonth(c *gin.Context) {
	report, err := h.service.StartNewMonth(sessionFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) SendReminders(c *gin.Context) {
	statuses, err := h.service.SendReminders(c.Request.Context(), sessionFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": statuses})
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.service.GetStats()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
