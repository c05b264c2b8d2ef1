// @title           Play Hardscapes API
// @version         1.0
// @description     Back office API for a sport court construction company:
// @description     clients, projects, estimating, proposals, contracts,
// @description     vendor invoices and inventory.

// @contact.name   API Support
// @contact.url    https://app.playhardscapes.com

// @host      https://app.playhardscapes.com

// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @schemes http https
package main

import (
	_ "backend/docs"
	"backend/handlers"
	"backend/services"
	"backend/storage"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var cronRunning int32

func CORSConfig() cors.Config {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{
		"https://app.playhardscapes.com",
		"http://localhost:3000",
		"http://localhost:5173",
	}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Content-Type", "Content-Length", "Accept-Encoding",
		"Accept", "Origin", "X-Requested-With", "Authorization", "User-Agent",
		"Cache-Control", "Referer",
	}
	corsConfig.AllowMethods = []string{
		"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD", "PATCH",
	}
	corsConfig.ExposeHeaders = []string{
		"Content-Length", "Authorization", "Content-Type", "Content-Disposition",
	}
	corsConfig.MaxAge = 12 * time.Hour
	return corsConfig
}

func main() {
	db := storage.InitDB()
	gormDB := storage.InitGormDB()

	emailService := services.NewEmailService(db)

	var geocoder services.Geocoder = services.NewNominatimGeocoder()

	var drafter services.ProposalDrafter
	if httpDrafter, err := services.NewHTTPProposalDrafter(); err != nil {
		log.Printf("Proposal drafting service not configured, using built-in template: %v", err)
		drafter = services.TemplateProposalDrafter{}
	} else {
		drafter = httpDrafter
	}

	var ocr services.OCRClient
	if ocrService, err := services.NewHTTPOCRService(); err != nil {
		log.Printf("Invoice OCR not configured, uploads will skip extraction: %v", err)
	} else {
		ocr = ocrService
	}

	var sms services.SMSSender
	if smsService, err := services.NewTwilioSMSService(); err != nil {
		log.Printf("SMS not configured, text messaging disabled: %v", err)
	} else {
		sms = smsService
	}

	jobManager := handlers.NewDraftJobManager(gormDB, db, drafter)

	// Nightly maintenance at 02:30.
	c := cron.New(
		cron.WithLogger(cron.VerbosePrintfLogger(log.New(os.Stdout, "cron: ", log.LstdFlags))),
	)

	cronLogFile, err := os.OpenFile("cron_errors.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Printf("Failed to open cron error log file: %v", err)
	}
	cronLogger := log.New(cronLogFile, "CRON_ERROR: ", log.LstdFlags)

	_, err = c.AddFunc("30 2 * * *", func() {
		if !atomic.CompareAndSwapInt32(&cronRunning, 0, 1) {
			log.Println("Previous cron still running. Skipping this run.")
			return
		}
		defer atomic.StoreInt32(&cronRunning, 0)

		log.Println("Starting nightly maintenance")

		if err := storage.CleanupExpiredSessions(db); err != nil {
			cronLogger.Printf("session cleanup: %v", err)
		}

		result, err := db.Exec(`
			UPDATE proposals SET status = 'expired', updated_at = NOW()
			WHERE status IN ('sent', 'viewed') AND valid_until + INTERVAL '1 day' < NOW()`)
		if err != nil {
			cronLogger.Printf("proposal expiry sweep: %v", err)
		} else if n, _ := result.RowsAffected(); n > 0 {
			log.Printf("Expired %d stale proposals", n)
		}

		sent, err := handlers.SendInvoiceReminders(db, emailService, 3)
		if err != nil {
			cronLogger.Printf("invoice reminders: %v", err)
		} else if sent > 0 {
			log.Printf("Sent %d invoice due reminders", sent)
		}

		log.Println("Nightly maintenance completed")
	})
	if err != nil {
		log.Fatalf("Failed to schedule nightly maintenance: %v", err)
	}
	c.Start()

	r := gin.Default()
	r.MaxMultipartMemory = 8 << 20

	r.Use(cors.New(CORSConfig()))

	// ==================== 1. AUTH & SESSIONS ====================
	r.POST("/api/login", handlers.LoginHandler(db))
	r.POST("/api/logout", handlers.LogoutHandler(db))
	r.POST("/api/refresh-token", handlers.RefreshTokenHandler(db))
	r.POST("/api/validate-session", handlers.ValidateSession(db))
	r.GET("/api/sessions", handlers.GetActiveSessionsHandler(db))
	r.POST("/api/auth/forgot-password", handlers.ForgetPasswordHandler(db, emailService))
	r.POST("/api/auth/reset-password/:token", handlers.ResetPasswordHandler(db))

	// ==================== 2. USERS & SETTINGS ====================
	r.POST("/api/users", handlers.CreateUserHandler(db))
	r.GET("/api/users", handlers.GetUsersHandler(db))
	r.PUT("/api/users/:id", handlers.UpdateUserHandler(db))
	r.POST("/api/users/change-password", handlers.ChangePasswordHandler(db))
	r.PATCH("/api/users/:id/suspend", handlers.SuspendUserHandler(db))
	r.GET("/api/settings", handlers.GetSettingsHandler(db))
	r.PUT("/api/settings", handlers.UpdateSettingsHandler(db))

	// ==================== 3. CLIENTS ====================
	r.POST("/api/clients", handlers.CreateClientHandler(db))
	r.GET("/api/clients", handlers.GetClientsHandler(db))
	r.GET("/api/clients/:id", handlers.GetClientHandler(db))
	r.PUT("/api/clients/:id", handlers.UpdateClientHandler(db))
	r.PATCH("/api/clients/:id/archive", handlers.ArchiveClientHandler(db))

	// ==================== 4. PROJECTS ====================
	r.POST("/api/projects", handlers.CreateProjectHandler(db))
	r.GET("/api/projects", handlers.GetProjectsHandler(db))
	r.GET("/api/projects/:id", handlers.GetProjectHandler(db))
	r.PUT("/api/projects/:id", handlers.UpdateProjectHandler(db))
	r.PATCH("/api/projects/:id/status", handlers.ChangeProjectStatusHandler(db))
	r.PUT("/api/projects/:id/specification", handlers.UpdateProjectSpecificationHandler(db))
	r.POST("/api/projects/:id/geocode", handlers.GeocodeProjectHandler(db, geocoder))
	r.PATCH("/api/projects/:id/archive", handlers.ArchiveProjectHandler(db))
	r.POST("/api/projects/:id/documents", handlers.UploadProjectDocumentHandler(db))
	r.GET("/api/projects/:id/documents", handlers.GetProjectDocumentsHandler(db))
	r.DELETE("/api/projects/:id/documents/:docId", handlers.DeleteProjectDocumentHandler(db))

	// ==================== 5. PRICING CATALOG ====================
	r.GET("/api/pricing", handlers.GetPricingItemsHandler(db))
	r.GET("/api/pricing/configuration", handlers.GetPricingConfigurationHandler(db))
	r.PUT("/api/pricing", handlers.UpsertPricingItemHandler(db))
	r.GET("/api/pricing/export", handlers.ExportPricingHandler(db))
	r.POST("/api/pricing/import", handlers.ImportPricingHandler(db))

	// ==================== 6. ESTIMATES ====================
	r.GET("/api/projects/:id/estimate-preview", handlers.PreviewEstimateHandler(db))
	r.POST("/api/estimate-preview", handlers.PreviewAdhocEstimateHandler(db))
	r.POST("/api/projects/:id/estimates", handlers.SaveEstimateHandler(db))
	r.GET("/api/projects/:id/estimates", handlers.GetEstimatesHandler(db))
	r.GET("/api/estimates/:id", handlers.GetEstimateHandler(db))
	r.PATCH("/api/estimates/:id/finalize", handlers.FinalizeEstimateHandler(db))
	r.GET("/api/estimates/:id/pdf", handlers.GenerateEstimatePdfHandler(db))

	// ==================== 7. PROPOSALS & DRAFT JOBS ====================
	r.POST("/api/proposals", handlers.CreateProposalHandler(db, jobManager))
	r.GET("/api/proposals", handlers.GetProposalsHandler(db))
	r.GET("/api/proposals/:id", handlers.GetProposalHandler(db))
	r.PUT("/api/proposals/:id", handlers.UpdateProposalHandler(db))
	r.POST("/api/proposals/:id/send", handlers.SendProposalHandler(db, emailService))
	r.GET("/api/proposals/:id/pdf", handlers.GenerateProposalPdfHandler(db))
	r.GET("/api/draft-jobs/:id", handlers.GetDraftJobHandler(db, jobManager))
	r.POST("/api/draft-jobs/:id/cancel", handlers.CancelDraftJobHandler(db, jobManager))

	// Public, token-addressed pages; no session required.
	r.GET("/proposals/view/:token", handlers.PublicProposalViewHandler(db))
	r.POST("/proposals/view/:token/respond", handlers.PublicProposalRespondHandler(db))

	// ==================== 8. CONTRACTS ====================
	r.POST("/api/contracts", handlers.CreateContractHandler(db))
	r.GET("/api/contracts", handlers.GetContractsHandler(db))
	r.GET("/api/contracts/:id", handlers.GetContractHandler(db))
	r.POST("/api/contracts/:id/send", handlers.SendContractHandler(db, emailService))
	r.PATCH("/api/contracts/:id/cancel", handlers.CancelContractHandler(db))
	r.GET("/api/contracts/:id/pdf", handlers.GenerateContractPdfHandler(db))

	r.GET("/contracts/view/:token", handlers.PublicContractViewHandler(db))
	r.POST("/contracts/view/:token/sign", handlers.PublicContractSignHandler(db))

	// ==================== 9. VENDORS & INVOICES ====================
	r.POST("/api/vendors", handlers.CreateVendorHandler(db))
	r.GET("/api/vendors", handlers.GetVendorsHandler(db))
	r.GET("/api/vendors/:id", handlers.GetVendorHandler(db))
	r.PUT("/api/vendors/:id", handlers.UpdateVendorHandler(db))
	r.PATCH("/api/vendors/:id/archive", handlers.ArchiveVendorHandler(db))
	r.POST("/api/invoices", handlers.CreateInvoiceHandler(db))
	r.GET("/api/invoices", handlers.GetInvoicesHandler(db))
	r.GET("/api/invoices/:id", handlers.GetInvoiceHandler(db))
	r.POST("/api/invoices/upload", handlers.UploadInvoiceHandler(db, ocr))
	r.PATCH("/api/invoices/:id/pay", handlers.MarkInvoicePaidHandler(db))
	r.PATCH("/api/invoices/:id/status", handlers.UpdateInvoiceStatusHandler(db))

	// ==================== 10. INVENTORY ====================
	r.POST("/api/inventory", handlers.CreateInventoryItemHandler(db))
	r.GET("/api/inventory", handlers.GetInventoryHandler(db))
	r.GET("/api/inventory/:id", handlers.GetInventoryItemHandler(db))
	r.PUT("/api/inventory/:id", handlers.UpdateInventoryItemHandler(db))
	r.POST("/api/inventory/:id/adjust", handlers.AdjustInventoryHandler(db))
	r.GET("/api/inventory/:id/adjustments", handlers.GetInventoryAdjustmentsHandler(db))
	r.GET("/api/inventory/:id/label", handlers.GenerateInventoryLabelHandler(db))

	// ==================== 11. COMMUNICATIONS & TEMPLATES ====================
	r.POST("/api/communications/send", handlers.SendCommunicationHandler(db, emailService, sms))
	r.POST("/api/communications", handlers.LogCommunicationHandler(db))
	r.GET("/api/communications", handlers.GetCommunicationsHandler(db))
	r.POST("/api/email-templates", handlers.CreateEmailTemplateHandler(db, emailService))
	r.GET("/api/email-templates", handlers.GetEmailTemplatesHandler(db))
	r.GET("/api/email-templates/variables", handlers.GetTemplateVariablesHandler(db, emailService))
	r.GET("/api/email-templates/:id", handlers.GetEmailTemplateHandler(db))
	r.PUT("/api/email-templates/:id", handlers.UpdateEmailTemplateHandler(db, emailService))
	r.DELETE("/api/email-templates/:id", handlers.DeleteEmailTemplateHandler(db))
	r.POST("/api/email-templates/preview", handlers.PreviewEmailTemplateHandler(db, emailService))

	// ==================== 12. DASHBOARD, LOGS & FILES ====================
	r.GET("/api/dashboard", handlers.GetDashboardSummaryHandler(db))
	r.GET("/api/logs", handlers.GetActivityLogsHandler(db))
	r.GET("/api/files", handlers.ServeUploadedFileHandler(db))

	// ==================== 13. SWAGGER ====================
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	port := os.Getenv("PORT")
	if port == "" {
		port = "9000"
	}
	if portInt, err := strconv.Atoi(port); err != nil || portInt < 0 || portInt > 65535 {
		log.Fatalf("Invalid PORT environment variable: %s", port)
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Let in-flight draft jobs finish before the process goes away.
	jobManager.Shutdown(20 * time.Second)
	c.Stop()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exiting")
}
