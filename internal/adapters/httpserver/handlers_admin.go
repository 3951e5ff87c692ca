package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/ppetrovv/bisera/internal/domain"
	"github.com/ppetrovv/bisera/internal/usecase"
)

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var in usecase.ProductInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "невалидна заявка")
		return
	}
	p, err := s.catalog.CreateProduct(r.Context(), in)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var in usecase.ProductInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "невалидна заявка")
		return
	}
	p, err := s.catalog.UpdateProduct(r.Context(), r.PathValue("code"), in)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.DeleteProduct(r.Context(), r.PathValue("code")); err != nil {
		respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDescribeProduct(w http.ResponseWriter, r *http.Request) {
	if s.describer == nil {
		writeError(w, http.StatusNotImplemented, "Генерирането на описания не е конфигурирано")
		return
	}
	var in struct {
		Name  string `json:"name"`
		Hints string `json:"hints"`
	}
	if err := decodeJSON(r, &in); err != nil || strings.TrimSpace(in.Name) == "" {
		writeError(w, http.StatusBadRequest, "липсва име на продукта")
		return
	}
	text, err := s.describer.Describe(r.Context(), in.Name, in.Hints)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"description": text})
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "невалидна заявка")
		return
	}
	c, err := s.catalog.CreateCategory(r.Context(), in.Name)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "невалиден идентификатор")
		return
	}
	if err := s.catalog.DeleteCategory(r.Context(), id); err != nil {
		respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateSubcategory(w http.ResponseWriter, r *http.Request) {
	var in struct {
		CategoryID uuid.UUID `json:"categoryId"`
		Name       string    `json:"name"`
	}
	if err := decodeJSON(r, &in); err != nil || in.CategoryID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "невалидна заявка")
		return
	}
	sub, err := s.catalog.CreateSubcategory(r.Context(), in.CategoryID, in.Name)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (s *Server) handleDeleteSubcategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "невалиден идентификатор")
		return
	}
	if err := s.catalog.DeleteSubcategory(r.Context(), id); err != nil {
		respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.orders.List(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOrders(orders))
}

func (s *Server) handleConfirmOrder(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, s.orders.Confirm)
}

func (s *Server) handleAdminCancelOrder(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, s.orders.Cancel)
}

// handleTransition applies a status transition and answers with the status the
// order actually holds afterwards, which may differ from the requested one.
func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request, op func(context.Context, uuid.UUID) (domain.OrderStatus, error)) {
	var in transitionRequest
	if err := decodeJSON(r, &in); err != nil || in.OrderID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "невалидна заявка")
		return
	}
	status, err := op(r.Context(), in.OrderID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": status})
}

func (s *Server) handleSetOrderCompleted(w http.ResponseWriter, r *http.Request) {
	var in struct {
		OrderID   uuid.UUID `json:"orderId"`
		Completed bool      `json:"completed"`
	}
	if err := decodeJSON(r, &in); err != nil || in.OrderID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "невалидна заявка")
		return
	}
	if err := s.orders.SetCompleted(r.Context(), in.OrderID, in.Completed); err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"isCompleted": in.Completed})
}

// handleExportOrders streams the full order list as an .xlsx workbook.
func (s *Server) handleExportOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.orders.List(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Orders"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Дата", "Име", "Имейл", "Телефон", "Град", "Адрес", "Доставка", "Статус", "Изпълнена", "Артикули", "Сума"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	for row, o := range orders {
		itemCount := 0
		for _, it := range o.Items {
			itemCount += it.Quantity
		}
		completed := "не"
		if o.IsCompleted {
			completed = "да"
		}
		values := []any{
			o.ID.String(),
			o.CreatedAt.Format("02.01.2006 15:04"),
			o.Name,
			o.Email,
			o.Phone,
			o.City,
			o.Address,
			string(o.DeliveryMethod()),
			string(o.Status),
			completed,
			itemCount,
			o.Total(),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=orders-%s.xlsx", time.Now().Format("2006-01-02")))
	if err := f.Write(w); err != nil {
		log.Error().Err(err).Msg("admin: xlsx export failed")
	}
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.messages.List(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (s *Server) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "невалиден идентификатор")
		return
	}
	if err := s.messages.Delete(r.Context(), id); err != nil {
		respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
