package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/practice-payroll/internal/config"
	appHTTP "github.com/cmlabs-hris/practice-payroll/internal/handler/http"
	"github.com/cmlabs-hris/practice-payroll/internal/pkg/cron"
	"github.com/cmlabs-hris/practice-payroll/internal/pkg/database"
	"github.com/cmlabs-hris/practice-payroll/internal/pkg/jwt"
	"github.com/cmlabs-hris/practice-payroll/internal/pkg/taxtable"
	"github.com/cmlabs-hris/practice-payroll/internal/repository/postgresql"
	employeeService "github.com/cmlabs-hris/practice-payroll/internal/service/employee"
	exportService "github.com/cmlabs-hris/practice-payroll/internal/service/export"
	payrollService "github.com/cmlabs-hris/practice-payroll/internal/service/payroll"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		os.Exit(1)
	}
	defer db.Close()

	tables, err := taxtable.LoadRegistry(cfg.TaxTables.Path)
	if err != nil {
		fmt.Println("Error loading tax tables:", err)
		os.Exit(1)
	}
	slog.Info("Tax tables loaded", "path", cfg.TaxTables.Path, "tax_years", tables.IDs())

	deductionOrder, err := payrollService.ParseDeductionOrder(cfg.Payroll.DeductionOrder)
	if err != nil {
		fmt.Println("Error parsing PAYROLL_DEDUCTION_ORDER:", err)
		os.Exit(1)
	}

	transactor := postgresql.NewTransactor(db)
	payrollRepo := postgresql.NewPayrollRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	ledgerRepo := postgresql.NewLedgerRepository(db)
	auditRepo := postgresql.NewAuditRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret)
	calculator := payrollService.NewCalculator(deductionOrder)

	payrollSvc := payrollService.NewPayrollService(
		transactor,
		payrollRepo,
		employeeRepo,
		ledgerRepo,
		auditRepo,
		tables,
		calculator,
	)
	employeeSvc := employeeService.NewEmployeeService(employeeRepo)
	exportSvc := exportService.NewExportService(payrollRepo, employeeRepo, ledgerRepo)

	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)
	employeeHandler := appHTTP.NewEmployeeHandler(employeeSvc)
	exportHandler := appHTTP.NewExportHandler(exportSvc)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			AllowedOrigins: cfg.App.AllowedOrigins,
			AppName:        cfg.App.Name,
			Version:        cfg.App.Version,
			Env:            cfg.App.Env,
		},
		JWTService,
		payrollHandler,
		employeeHandler,
		exportHandler,
	)

	scheduler := cron.NewScheduler()
	cron.NewTaxTableJobs(tables, cfg.TaxTables.Path, cfg.TaxTables.ReloadInterval).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		fmt.Printf("Server running at http://localhost%s\n", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
}
