package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"taskdeck/internal/service"
)

const (
	defaultPageLimit = 6
	maxPageLimit     = 100
)

// Server bundles the HTTP handlers with their dependencies.
type Server struct {
	store    *Store
	secret   []byte
	log      *logrus.Logger
	cache    *listCache
	validate *validator.Validate
}

// Options configures a Server.
type Options struct {
	Store  *Store
	Secret []byte
	Log    *logrus.Logger
	// Rate bounds the request rate across all clients. Zero means a
	// permissive default.
	Rate rate.Limit
	// Burst is the rate limiter's bucket size. Zero means a permissive
	// default.
	Burst int
}

// New builds the gin engine with all routes and middleware attached.
func New(opts Options) *gin.Engine {
	log := opts.Log
	if log == nil {
		log = logrus.New()
	}
	limit := opts.Rate
	if limit == 0 {
		limit = 50
	}
	burst := opts.Burst
	if burst == 0 {
		burst = 100
	}

	s := &Server{
		store:    opts.Store,
		secret:   opts.Secret,
		log:      log,
		cache:    newListCache(),
		validate: validator.New(),
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))
	r.Use(rateLimit(rate.NewLimiter(limit, burst)))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := r.Group("/auth")
	{
		auth.POST("/register", s.handleRegister)
		auth.POST("/login", s.handleLogin)
	}

	tasks := r.Group("/tasks", s.requireAuth())
	{
		tasks.GET("", s.handleListTasks)
		tasks.POST("", s.handleCreateTask)
		tasks.PUT("/:id", s.handleUpdateTask)
		tasks.DELETE("/:id", s.handleDeleteTask)
	}

	admin := r.Group("/admin", s.requireAuth())
	{
		admin.GET("/stats", s.handleStats)
	}

	return r
}

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=4"`
}

type listResponse struct {
	Tasks []service.Task `json:"tasks"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		badRequest(c, "Invalid email or password")
		return
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		s.internalError(c, err)
		return
	}
	id, err := s.store.CreateUser(c.Request.Context(), req.Email, hash)
	if errors.Is(err, ErrEmailTaken) {
		badRequest(c, "Email already registered")
		return
	}
	if err != nil {
		s.internalError(c, err)
		return
	}

	s.log.WithFields(logrus.Fields{"event": "user_registered", "user": id}).Info("audit")
	// No mail transport is wired up; the queued welcome mail is recorded so
	// an operator can see the send was owed.
	s.log.WithFields(logrus.Fields{"event": "welcome_email_queued", "user": id, "email": req.Email}).Info("audit")
	c.JSON(http.StatusCreated, gin.H{"id": id, "email": req.Email})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	u, err := s.store.UserByEmail(c.Request.Context(), req.Email)
	if errors.Is(err, ErrNotFound) || (err == nil && !checkPassword(u.PasswordHash, req.Password)) {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Incorrect email or password"})
		return
	}
	if err != nil {
		s.internalError(c, err)
		return
	}

	token, err := issueToken(s.secret, u.ID, timeNow())
	if err != nil {
		s.internalError(c, err)
		return
	}

	s.log.WithFields(logrus.Fields{"event": "user_login", "user": u.ID}).Info("audit")
	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

func (s *Server) handleListTasks(c *gin.Context) {
	userID := c.GetString(userIDKey)

	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	limit := queryInt(c, "limit", defaultPageLimit)
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	var filter service.Filter
	if raw := c.Query("status"); raw != "" {
		status, err := service.ParseStatus(raw)
		if err != nil {
			badRequest(c, "Invalid status filter")
			return
		}
		filter.Status = status
	}
	if raw := c.Query("priority"); raw != "" {
		priority, err := service.ParsePriority(raw)
		if err != nil {
			badRequest(c, "Invalid priority filter")
			return
		}
		filter.Priority = priority
	}

	key := listCacheKey(userID, page, limit, filter)
	if payload, ok := s.cache.get(key); ok {
		c.JSON(http.StatusOK, payload)
		return
	}

	tasks, total, err := s.store.ListTasks(c.Request.Context(), userID, page, limit, filter)
	if err != nil {
		s.internalError(c, err)
		return
	}
	payload := listResponse{Tasks: tasks, Total: total, Page: page, Limit: limit}
	s.cache.put(key, payload)
	c.JSON(http.StatusOK, payload)
}

func (s *Server) handleCreateTask(c *gin.Context) {
	userID := c.GetString(userIDKey)

	d, ok := s.bindDraft(c)
	if !ok {
		return
	}
	t, err := s.store.CreateTask(c.Request.Context(), userID, d)
	if err != nil {
		s.internalError(c, err)
		return
	}
	s.cache.invalidate(userID)
	s.log.WithFields(logrus.Fields{"event": "task_created", "user": userID, "task": t.ID}).Info("audit")
	c.JSON(http.StatusCreated, t)
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	userID := c.GetString(userIDKey)

	d, ok := s.bindDraft(c)
	if !ok {
		return
	}
	t, err := s.store.UpdateTask(c.Request.Context(), userID, c.Param("id"), d)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Task not found"})
		return
	}
	if err != nil {
		s.internalError(c, err)
		return
	}
	s.cache.invalidate(userID)
	s.log.WithFields(logrus.Fields{"event": "task_updated", "user": userID, "task": t.ID}).Info("audit")
	c.JSON(http.StatusOK, t)
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	userID := c.GetString(userIDKey)

	id := c.Param("id")
	err := s.store.DeleteTask(c.Request.Context(), userID, id)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Task not found"})
		return
	}
	if err != nil {
		s.internalError(c, err)
		return
	}
	s.cache.invalidate(userID)
	s.log.WithFields(logrus.Fields{"event": "task_deleted", "user": userID, "task": id}).Info("audit")
	c.JSON(http.StatusOK, gin.H{"detail": "Task deleted"})
}

func (s *Server) handleStats(c *gin.Context) {
	userID := c.GetString(userIDKey)

	st, err := s.store.Stats(c.Request.Context(), userID)
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// bindDraft decodes and validates a task payload, applying the same defaults
// the client does so bare {"title": ...} bodies work.
func (s *Server) bindDraft(c *gin.Context) (service.Draft, bool) {
	var d service.Draft
	if err := c.ShouldBindJSON(&d); err != nil {
		badRequest(c, "Invalid request body")
		return d, false
	}
	if d.Status == "" {
		d.Status = service.StatusPending
	}
	if d.Priority == "" {
		d.Priority = service.PriorityMedium
	}
	if err := s.validate.Struct(d); err != nil {
		badRequest(c, "Invalid task fields")
		return d, false
	}
	return d, true
}

func badRequest(c *gin.Context, detail string) {
	c.JSON(http.StatusBadRequest, gin.H{"detail": detail})
}

func (s *Server) internalError(c *gin.Context, err error) {
	s.log.WithError(err).Error("internal error")
	c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
