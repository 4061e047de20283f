package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/practice-payroll/internal/handler/http/middleware"
	"github.com/cmlabs-hris/practice-payroll/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	AllowedOrigins []string
	AppName        string
	Version        string
	Env            string
}

func NewRouter(
	cfg RouterConfig,
	JWTService jwt.Service,
	payrollHandler PayrollHandler,
	employeeHandler EmployeeHandler,
	exportHandler ExportHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", cfg.AppName),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.PracticeRequired)

		r.Route("/payroll", func(r chi.Router) {
			r.Route("/runs", func(r chi.Router) {
				r.Get("/", payrollHandler.ListRuns)
				r.Post("/recalculate", payrollHandler.RecalculateRun)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", payrollHandler.GetRun)
					r.Post("/transition", payrollHandler.TransitionRun)
					r.Get("/audit", payrollHandler.GetRunAudit)
					r.Post("/entries/{entryId}/additions", payrollHandler.AddAddition)
					r.Delete("/additions/{additionId}", payrollHandler.DeleteAddition)

					r.Get("/exports/bank.csv", exportHandler.BankPayments)
					r.Get("/exports/accountant.csv", exportHandler.Accountant)
				})
			})

			r.Get("/declarations/{year}/{month}.csv", exportHandler.MonthlyDeclaration)
			r.Get("/reconciliations/{taxYear}.csv", exportHandler.AnnualReconciliation)
		})

		r.Route("/employees/{id}", func(r chi.Router) {
			r.Route("/fringe-benefits", func(r chi.Router) {
				r.Get("/", employeeHandler.ListFringeBenefits)
				r.Post("/", employeeHandler.CreateFringeBenefit)
				r.Delete("/{benefitId}", employeeHandler.RetireFringeBenefit)
			})

			r.Route("/garnishees", func(r chi.Router) {
				r.Get("/", employeeHandler.ListGarnishees)
				r.Post("/", employeeHandler.CreateGarnishee)
				r.Delete("/{garnisheeId}", employeeHandler.DeactivateGarnishee)
			})

			r.Get("/ytd/{taxYear}", payrollHandler.GetEmployeeYTD)
			r.Get("/audit/{taxYear}", payrollHandler.GetEmployeeAudit)
			r.Get("/certificates/{taxYear}.{format}", exportHandler.Certificate)
		})
	})
	return r
}
