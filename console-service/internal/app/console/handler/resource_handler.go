package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"stockdesk/console-service/internal/app/console/entity"
	"stockdesk/console-service/internal/app/console/store"
	"stockdesk/console-service/internal/app/console/views"
)

// ResourceHandler - страницы одной коллекции: список, состояние, мутации, выгрузка.
type ResourceHandler[T any] struct {
	store  *store.Store[T]
	schema views.Schema[T]
	table  func([]T) views.Table
	clock  func() time.Time

	create       func(ctx context.Context, draft T) (T, error)
	preparePatch func(patch store.Patch) error
	present      func(T) T
}

type ResourceOption[T any] func(*ResourceHandler[T])

// WithCreate заменяет store.Add (например, регистрация компании с хэшированием пароля).
func WithCreate[T any](create func(ctx context.Context, draft T) (T, error)) ResourceOption[T] {
	return func(h *ResourceHandler[T]) { h.create = create }
}

// WithPatchHook вызывается после проверки патча и до отправки в хранилище.
func WithPatchHook[T any](hook func(patch store.Patch) error) ResourceOption[T] {
	return func(h *ResourceHandler[T]) { h.preparePatch = hook }
}

// WithPresenter преобразует записи перед ответом.
func WithPresenter[T any](present func(T) T) ResourceOption[T] {
	return func(h *ResourceHandler[T]) { h.present = present }
}

func WithExportClock[T any](clock func() time.Time) ResourceOption[T] {
	return func(h *ResourceHandler[T]) { h.clock = clock }
}

func NewResourceHandler[T any](s *store.Store[T], schema views.Schema[T], table func([]T) views.Table, opts ...ResourceOption[T]) *ResourceHandler[T] {
	h := &ResourceHandler[T]{
		store:  s,
		schema: schema,
		table:  table,
		clock:  time.Now,
		create: s.Add,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register вешает маршруты коллекции на группу. POST можно переопределить.
func (h *ResourceHandler[T]) Register(group *gin.RouterGroup, create gin.HandlerFunc) {
	if create == nil {
		create = h.Create
	}
	group.GET("", h.List)
	group.GET("/state", h.State)
	group.GET("/export", h.Export)
	group.POST("", create)
	group.PUT("/:id", h.Update)
	group.DELETE("/:id", h.Delete)
}

// List: ?q=&sort=&dir=asc|desc&page=&perPage=&refresh=true
func (h *ResourceHandler[T]) List(c *gin.Context) {
	if err := h.ensureLoaded(c.Request.Context(), c.Query("refresh") == "true"); err != nil {
		respondStoreError(c, err)
		return
	}

	page := views.Apply(h.store.Items(), parseQuery(c), h.schema)
	c.JSON(http.StatusOK, entity.PageResponse{
		Items:   h.presentAll(page.Items),
		Total:   page.Total,
		Page:    page.Page,
		PerPage: page.PerPage,
		Pages:   page.Pages,
	})
}

// State отдаёт снимок хранилища как есть: статус, lastError, pendingDeleteId.
func (h *ResourceHandler[T]) State(c *gin.Context) {
	snapshot := h.store.Snapshot()
	snapshot.Items = h.presentAll(snapshot.Items)
	c.JSON(http.StatusOK, snapshot)
}

func (h *ResourceHandler[T]) Create(c *gin.Context) {
	var draft T
	if err := c.ShouldBindJSON(&draft); err != nil {
		respondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := views.Validate(draft); err != nil {
		respondStoreError(c, err)
		return
	}

	created, err := h.create(c.Request.Context(), draft)
	if err != nil {
		h.respondMutationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entity.SuccessResponse{
		Message: title(h.store.Singular()) + " added",
		Data:    h.presentOne(created),
	})
}

func (h *ResourceHandler[T]) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var patch store.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := views.ValidatePatch[T](patch); err != nil {
		respondStoreError(c, err)
		return
	}
	if h.preparePatch != nil {
		if err := h.preparePatch(patch); err != nil {
			respondWithError(c, http.StatusInternalServerError, err.Error())
			return
		}
	}

	updated, err := h.store.Update(c.Request.Context(), id, patch)
	if err != nil {
		h.respondMutationError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: title(h.store.Singular()) + " updated",
		Data:    h.presentOne(updated),
	})
}

// Delete идемпотентен: удаление отсутствующей записи - успех.
func (h *ResourceHandler[T]) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if _, err := h.store.Remove(c.Request.Context(), id); err != nil {
		h.respondMutationError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: title(h.store.Singular()) + " deleted",
		Data:    gin.H{"id": id},
	})
}

// Export: ?format=csv (по умолчанию) или xlsx; выгружается вся коллекция.
func (h *ResourceHandler[T]) Export(c *gin.Context) {
	if err := h.ensureLoaded(c.Request.Context(), false); err != nil {
		respondStoreError(c, err)
		return
	}

	table := h.table(h.store.Items())
	resource := h.store.Resource()
	now := h.clock()

	switch format := c.DefaultQuery("format", "csv"); format {
	case "csv":
		c.Header("Content-Disposition", `attachment; filename="`+views.ExportFileName(resource, "csv", now)+`"`)
		c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(views.ExportCSV(table)))
	case "xlsx":
		data, err := views.ExportXLSX(table, resource)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, "Failed to build workbook")
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+views.ExportFileName(resource, "xlsx", now)+`"`)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
	default:
		respondWithError(c, http.StatusBadRequest, "Unsupported export format: "+format)
	}
}

// ensureLoaded загружает коллекцию при первом обращении или по явному запросу.
func (h *ResourceHandler[T]) ensureLoaded(ctx context.Context, force bool) error {
	if !force && h.store.Status() != store.StatusIdle {
		return nil
	}
	return h.store.Refresh(ctx)
}

func (h *ResourceHandler[T]) respondMutationError(c *gin.Context, err error) {
	if status, message, ok := serviceErrorStatus(err); ok {
		respondWithError(c, status, message)
		return
	}
	respondStoreError(c, err)
}

func (h *ResourceHandler[T]) presentOne(item T) T {
	if h.present == nil {
		return item
	}
	return h.present(item)
}

func (h *ResourceHandler[T]) presentAll(items []T) []T {
	if h.present == nil {
		return items
	}
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = h.present(item)
	}
	return out
}

func parseQuery(c *gin.Context) views.Query {
	page, _ := strconv.Atoi(c.Query("page"))
	perPage, _ := strconv.Atoi(c.Query("perPage"))
	return views.Query{
		Search:  c.Query("q"),
		Sort:    c.Query("sort"),
		Desc:    strings.EqualFold(c.Query("dir"), "desc"),
		Page:    page,
		PerPage: perPage,
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondWithError(c, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
