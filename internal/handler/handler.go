package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sertifikasi-nasional/lsp-backend/internal/config"
	"github.com/sertifikasi-nasional/lsp-backend/internal/domain"
	"github.com/sertifikasi-nasional/lsp-backend/internal/repository"
)

// RoleRegistry resolves role ids to role records. Satisfied by
// *repository.Repository; narrowed to an interface so the authorization gate
// can be exercised without a database.
type RoleRegistry interface {
	GetRoleByID(id int64) (*domain.Role, error)
}

// AsesiImporter is the slice of the store the bulk import path needs.
// Satisfied by *repository.Repository; narrowed so the import loop can be
// exercised without a database.
type AsesiImporter interface {
	GetRoleByName(name string) (*domain.Role, error)
	GetSchemeByCode(code string) (*domain.CertificationScheme, error)
	ImportAsesiRow(user *domain.User, profile *domain.AsesiProfile) (string, error)
}

type Handler struct {
	validate      *validator.Validate
	config        *config.Config
	repository    *repository.Repository
	roles         RoleRegistry
	importer      AsesiImporter
	translator    ut.Translator
	notifyChannel *amqp.Channel
	redisClient   *redis.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, notifyCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:      validate,
		config:        cfg,
		repository:    repo,
		roles:         repo,
		importer:      repo,
		translator:    trans,
		notifyChannel: notifyCh,
		redisClient:   rdb,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)
	h.Mux.Use(h.metrics)

	h.Mux.Handle("/metrics", promhttp.Handler())

	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/register/privileged", h.RegisterPrivileged)
		r.Post("/login", h.Login)
		r.Post("/forgot-password", h.ForgotPassword)
	})

	// everything below requires a valid bearer token
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/users", func(r chi.Router) {
			r.Get("/profile", h.GetMyProfile)
			r.Post("/change-password", h.ChangePassword)
		})

		r.Route("/schemes", func(r chi.Router) {
			r.Get("/", h.GetAllSchemes)
			r.Get("/{id}", h.GetSchemeByID)
		})

		r.Route("/asesi", func(r chi.Router) {
			r.Use(h.requiredRole([]string{domain.RoleAdmin}))
			r.Get("/", h.GetAllAsesi)
			r.Post("/", h.CreateAsesi)
			r.Post("/import", h.ImportAsesi)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.asesiProfile)
				r.Get("/", h.GetAsesiByID)
				r.Put("/", h.UpdateAsesi)
				r.Delete("/", h.DeleteAsesi)
				r.Patch("/verify", h.VerifyAsesi)
				r.Patch("/block", h.BlockAsesi)
				r.Patch("/unblock", h.UnblockAsesi)
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Use(h.requiredRole([]string{domain.RoleAdmin}))
			r.Get("/", h.GetAllNotifications)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetNotificationByID)
				r.Patch("/read", h.MarkNotificationRead)
			})
		})
	})
}
