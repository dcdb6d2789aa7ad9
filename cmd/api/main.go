package main

import (
    "context"
    "fmt"
    "log"
    "net/http"
    "os"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"
    "github.com/labstack/echo/v4/middleware"

    "github.com/sudo-init-do/consulthub/internal/alerts"
    "github.com/sudo-init-do/consulthub/internal/analytics"
    "github.com/sudo-init-do/consulthub/internal/assignment"
    appmw "github.com/sudo-init-do/consulthub/internal/middleware"
    "github.com/sudo-init-do/consulthub/internal/payments"
    "github.com/sudo-init-do/consulthub/internal/project"
    "github.com/sudo-init-do/consulthub/internal/review"
    "github.com/sudo-init-do/consulthub/internal/store"
)

func newStore(ctx context.Context) store.Store {
    if os.Getenv("DB_HOST") == "" {
        log.Println("DB_HOST not set, using in-memory store")
        return store.NewMemory()
    }
    dsn := fmt.Sprintf(
        "postgres://%s:%s@%s:%s/%s",
        os.Getenv("DB_USER"),
        os.Getenv("DB_PASSWORD"),
        os.Getenv("DB_HOST"),
        os.Getenv("DB_PORT"),
        os.Getenv("DB_NAME"),
    )
    st, err := store.NewPostgres(ctx, dsn)
    if err != nil {
        log.Fatalf("Unable to connect to database: %v", err)
    }
    return st
}

func main() {
    _ = godotenv.Load()

    ctx := context.Background()
    st := newStore(ctx)
    gateway := payments.NewMockGateway()

    // Init subsystems
    alerts.Init()
    defer alerts.Close()

    assignmentSvc := assignment.NewService(st)
    projectSvc := project.NewService(st, assignmentSvc)
    reviewSvc := review.NewService(st)
    analyticsSvc := analytics.NewService(st)

    projects := project.NewHandler(projectSvc, gateway)
    assignments := assignment.NewHandler(assignmentSvc, gateway, projectSvc)
    reviews := review.NewHandler(reviewSvc)
    reports := analytics.NewHandler(analyticsSvc)

    e := echo.New()
    e.HideBanner = true
    e.Use(middleware.Logger())
    e.Use(middleware.Recover())

    // Health
    e.GET("/health", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
    e.GET("/ready", func(c echo.Context) error {
        if err := st.Ping(c.Request().Context()); err != nil {
            return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "not_ready"})
        }
        return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
    })

    // Public discovery
    e.GET("/consultants/:id/reviews", reviews.GetConsultantReviews)

    // Authenticated group
    g := e.Group("")
    g.Use(appmw.JWTMiddleware)

    // Projects and matching
    g.POST("/projects", projects.CreateProject, appmw.RequireRoles("client", "admin"))
    g.GET("/projects/me", projects.ListMyProjects)
    g.GET("/projects/:id", projects.GetProject)
    g.POST("/projects/:id/status", projects.UpdateStatus)
    g.POST("/projects/:id/milestones", projects.AddMilestone, appmw.RequireRoles("client", "admin"))
    g.POST("/projects/:id/escrow/fund", projects.FundEscrow, appmw.RequireRoles("client"))
    g.POST("/projects/:id/proposals", projects.SubmitProposal, appmw.RequireRoles("consultant"))
    g.POST("/projects/:id/proposals/:pid/review", projects.ReviewProposal, appmw.RequireRoles("client", "admin"))
    g.POST("/projects/:id/assign", projects.AssignConsultant, appmw.RequireRoles("client", "admin"))

    // Assignments
    g.GET("/assignments/me", assignments.ListMyAssignments)
    g.GET("/assignments/:id", assignments.GetAssignment)
    g.POST("/assignments/:id/status", assignments.Transition)
    g.POST("/assignments/:id/milestones", assignments.AddMilestone, appmw.RequireRoles("client", "admin"))
    g.POST("/assignments/:id/milestones/:mid/start", assignments.StartMilestone, appmw.RequireRoles("consultant"))
    g.POST("/assignments/:id/milestones/:mid/complete", assignments.CompleteMilestone, appmw.RequireRoles("consultant"))
    g.POST("/assignments/:id/milestones/:mid/approve", assignments.ApproveMilestone, appmw.RequireRoles("client", "admin"))

    // Time tracking
    g.POST("/assignments/:id/time", assignments.LogTime, appmw.RequireRoles("consultant"))
    g.POST("/assignments/:id/time/submit", assignments.SubmitTimeEntries, appmw.RequireRoles("consultant"))
    g.POST("/assignments/:id/time/approve", assignments.ApproveTimeEntries, appmw.RequireRoles("client", "admin"))
    g.POST("/assignments/:id/time/dispute", assignments.DisputeTimeEntries, appmw.RequireRoles("client"))

    // Issues
    g.POST("/assignments/:id/issues", assignments.CreateIssue)
    g.POST("/assignments/:id/issues/:iid/escalate", assignments.EscalateIssue)

    // Reviews
    g.POST("/reviews", reviews.CreateReview, appmw.RequireRoles("client"))
    g.GET("/reviews/:id", reviews.GetReview)
    g.POST("/reviews/:id/submit", reviews.SubmitReview, appmw.RequireRoles("client"))
    g.POST("/reviews/:id/dispute", reviews.DisputeReview)

    // Admin routes
    adminGroup := e.Group("/admin")
    adminGroup.Use(appmw.JWTMiddleware)
    adminGroup.Use(appmw.AdminGuard)
    adminGroup.GET("/stats", reports.Stats)
    adminGroup.GET("/issues", reports.OpenIssues)
    adminGroup.GET("/reviews/disputed", reports.DisputedReviews)
    adminGroup.GET("/consultants/:id/report", reports.ConsultantReport)
    adminGroup.POST("/assignments/:id/milestones/:mid/release", assignments.ReleaseMilestonePayment)
    adminGroup.POST("/assignments/:id/escrow/refund", assignments.RefundEscrow)
    adminGroup.POST("/assignments/:id/issues/:iid/start", assignments.StartIssue)
    adminGroup.POST("/assignments/:id/issues/:iid/resolve", assignments.ResolveIssue)
    adminGroup.POST("/assignments/:id/issues/:iid/notes", assignments.AddIssueNote)
    adminGroup.POST("/reviews/:id/verify", reviews.VerifyReview)
    adminGroup.POST("/reviews/:id/publish", reviews.PublishReview)
    adminGroup.POST("/reviews/:id/resolve_dispute", reviews.ResolveDispute)

    port := os.Getenv("PORT")
    if port == "" { port = "8080" }
    log.Printf("API server listening on :%s", port)
    if err := e.Start(":" + port); err != nil {
        log.Fatalf("server error: %v", err)
    }
}
