package router

import (
	"database/sql"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "farm-livestock-registry/docs" // spec swagger generada
	mem "farm-livestock-registry/internal/adapters/storage/memory"
	pg "farm-livestock-registry/internal/adapters/storage/postgres"
	"farm-livestock-registry/internal/domain/animals"
	"farm-livestock-registry/internal/domain/assignments"
	"farm-livestock-registry/internal/domain/authz"
	"farm-livestock-registry/internal/domain/pens"
	"farm-livestock-registry/internal/middleware"
	"farm-livestock-registry/internal/platform/logger"
	"farm-livestock-registry/internal/ports/auth"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	Logger logger.Logger // opcional
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	log := opts.Logger
	if log == nil {
		log = logger.NewFromEnv()
	}

	var (
		animalsRepo     animals.Repository
		pensRepo        pens.Repository
		assignmentsRepo assignments.Repository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			} else {
				log.Warn("postgres open failed, falling back to memory", map[string]any{"err": err.Error()})
			}
		}
	}

	if db != nil {
		pensRepo = pg.NewPensRepo(db)
		animalsRepo = pg.NewAnimalsRepo(db)
		assignmentsRepo = pg.NewAssignmentsRepo(db)
		log.Info("storage: postgres", nil)
	} else {
		pensRepo = mem.NewPensRepo()
		animalsRepo = mem.NewAnimalsRepo(pensRepo)
		assignmentsRepo = mem.NewAssignmentsRepo()
		log.Info("storage: in-memory", nil)
	}

	// Services por módulo
	animalsSvc := animals.NewService(animalsRepo)
	pensSvc := pens.NewService(pensRepo)
	assignmentsSvc := assignments.NewService(assignmentsRepo)

	// El scoping consulta asignaciones frescas en cada request
	authority := authz.NewAuthority(assignmentsRepo)

	// Rutas por módulo
	animals.RegisterRoutes(r, animalsSvc, authority)
	pens.RegisterRoutes(r, pensSvc, animalsSvc, authority)
	assignments.RegisterRoutes(r, assignmentsSvc, authority)

	return r
}
