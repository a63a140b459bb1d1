package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/klewi95/FiFi-Dienstplan/internal/repository"
	"github.com/klewi95/FiFi-Dienstplan/pkg/errors"
	"github.com/klewi95/FiFi-Dienstplan/pkg/model"
)

// EmployeeHandler 员工处理器
type EmployeeHandler struct {
	employees *repository.EmployeeRepository
}

// NewEmployeeHandler 创建员工处理器
func NewEmployeeHandler(employees *repository.EmployeeRepository) *EmployeeHandler {
	return &EmployeeHandler{employees: employees}
}

// Collection 处理 /api/v1/employees 集合路由
func (h *EmployeeHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "不支持的方法"))
	}
}

// Item 处理 /api/v1/employees/{name} 单项路由
func (h *EmployeeHandler) Item(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/api/v1/employees/")
	if name == "" {
		respondError(w, errors.InvalidInput("name", "员工名不能为空"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, name)
	case http.MethodPut:
		h.update(w, r, name)
	case http.MethodDelete:
		h.delete(w, r, name)
	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "不支持的方法"))
	}
}

func (h *EmployeeHandler) list(w http.ResponseWriter, r *http.Request) {
	filter := repository.DefaultListFilter()
	q := r.URL.Query()
	if search := q.Get("search"); search != "" {
		filter = filter.WithSearch(search)
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter = filter.WithLimit(limit)
	}
	if offset, err := strconv.Atoi(q.Get("offset")); err == nil {
		filter = filter.WithOffset(offset)
	}

	employees, err := h.employees.List(r.Context(), filter)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询员工失败"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"employees": employees,
		"count":     len(employees),
	})
}

func (h *EmployeeHandler) create(w http.ResponseWriter, r *http.Request) {
	var emp model.Employee
	if err := json.NewDecoder(r.Body).Decode(&emp); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	if err := emp.Validate(); err != nil {
		respondError(w, toAppError(err))
		return
	}

	if err := h.employees.Create(r.Context(), &emp); err != nil {
		respondError(w, toAppError(err))
		return
	}

	respondJSON(w, http.StatusCreated, &emp)
}

func (h *EmployeeHandler) get(w http.ResponseWriter, r *http.Request, name string) {
	emp, err := h.employees.GetByName(r.Context(), name)
	if err != nil {
		respondError(w, toAppError(err))
		return
	}
	respondJSON(w, http.StatusOK, emp)
}

func (h *EmployeeHandler) update(w http.ResponseWriter, r *http.Request, name string) {
	var emp model.Employee
	if err := json.NewDecoder(r.Body).Decode(&emp); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	// 路径里的名字优先，请求体不能改名
	emp.Name = name

	if err := emp.Validate(); err != nil {
		respondError(w, toAppError(err))
		return
	}

	if err := h.employees.Update(r.Context(), &emp); err != nil {
		respondError(w, toAppError(err))
		return
	}

	respondJSON(w, http.StatusOK, &emp)
}

func (h *EmployeeHandler) delete(w http.ResponseWriter, r *http.Request, name string) {
	if err := h.employees.Delete(r.Context(), name); err != nil {
		respondError(w, toAppError(err))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"deleted": name})
}
