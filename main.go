package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	openai "github.com/sashabaranov/go-openai"

	"cavemindAPI/handlers"
	"cavemindAPI/internal/analytics"
	"cavemindAPI/internal/database"
	"cavemindAPI/internal/messaging"
	"cavemindAPI/internal/notification"
	"cavemindAPI/internal/push"
	"cavemindAPI/middleware"
	"cavemindAPI/scheduler"
	"cavemindAPI/services"
)

var (
	dbPool              *pgxpool.Pool
	tracker             *analytics.Tracker
	userService         *services.UserService
	challengeService    *services.ChallengeService
	spotService         *services.SpotService
	articleService      *services.ArticleService
	notificationService *services.NotificationService
	nudgeService        *services.NudgeService
	reminderService     *services.ReminderService
	worksheetService    *services.WorksheetService
	reflectionService   *services.ReflectionService
	newsletterService   *services.NewsletterService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
	if clerkSecretKey == "" {
		log.Fatal("CLERK_SECRET_KEY environment variable is not set")
	}
	clerk.SetKey(clerkSecretKey)
	log.Println("Clerk initialized successfully")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	dbPool, err = database.Connect(ctx, dbURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := database.Migrate(ctx, dbPool); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	log.Println("Successfully connected to database")

	tracker = analytics.New(os.Getenv("POSTHOG_API_KEY"), os.Getenv("POSTHOG_HOST"))

	userService = services.NewUserService(dbPool)
	challengeService = services.NewChallengeService(dbPool, tracker)
	spotService = services.NewSpotService(dbPool)
	articleService = services.NewArticleService(dbPool, tracker)
	notificationService = services.NewNotificationService(dbPool)
	nudgeService = services.NewNudgeService(dbPool, notificationService)
	reminderService = services.NewReminderService(dbPool, notificationService)
	worksheetService = services.NewWorksheetService(dbPool, tracker)
	newsletterService = services.NewNewsletterService(dbPool)

	// Optional providers degrade to no-ops when their credentials are
	// missing, so a bare deploy still serves the API.
	vapidPublic := os.Getenv("VAPID_PUBLIC_KEY")
	vapidPrivate := os.Getenv("VAPID_PRIVATE_KEY")
	if vapidPublic != "" && vapidPrivate != "" {
		notificationService.SetPushSender(push.NewWebPushSender(vapidPublic, vapidPrivate, os.Getenv("VAPID_SUBSCRIBER_EMAIL")))
		log.Println("Web push sender initialized successfully")
	} else {
		log.Println("Warning: VAPID keys not set, web push disabled")
	}

	fcmService, err := notification.NewFCMService("./serviceAccountKey.json")
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
		notificationService.SetDeviceSender(notification.NoopDeviceSender{})
	} else {
		notificationService.SetDeviceSender(fcmService)
		log.Println("FCM device sender initialized successfully")
	}

	twilioSID := os.Getenv("TWILIO_ACCOUNT_SID")
	twilioToken := os.Getenv("TWILIO_AUTH_TOKEN")
	twilioFrom := os.Getenv("TWILIO_WHATSAPP_FROM")
	if twilioSID != "" && twilioToken != "" && twilioFrom != "" {
		nudgeService.SetMessageSender(messaging.NewWhatsAppSender(twilioSID, twilioToken, twilioFrom))
		log.Println("WhatsApp sender initialized successfully")
	} else {
		log.Println("Warning: Twilio credentials not set, WhatsApp disabled")
	}

	var aiClient *openai.Client
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		aiClient = openai.NewClient(key)
		log.Println("OpenAI client initialized successfully")
	} else {
		log.Println("Warning: OPENAI_API_KEY not set, weekly reflections disabled")
	}
	reflectionService = services.NewReflectionService(dbPool, worksheetService, aiClient)

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
		tracker.Close()
	}()

	userHandler := handlers.NewUserHandler(userService)
	challengeHandler := handlers.NewChallengeHandler(challengeService, userService)
	spotHandler := handlers.NewSpotHandler(spotService, userService)
	articleHandler := handlers.NewArticleHandler(articleService, userService)
	nudgeHandler := handlers.NewNudgeHandler(nudgeService, reminderService)
	notificationHandler := handlers.NewNotificationHandler(notificationService, userService)
	worksheetHandler := handlers.NewWorksheetHandler(worksheetService, reflectionService, userService)
	webhookHandler := handlers.NewWebhookHandler(userService, tracker)
	whatsappHandler := handlers.NewWhatsAppHandler(userService, spotService)
	newsletterHandler := handlers.NewNewsletterHandler(newsletterService)

	r := mux.NewRouter()

	limiter := middleware.NewRateLimiter(5, 30)
	go limiter.CleanupVisitors()

	r.Use(limiter.Middleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "cavemind-api"}`))
	}).Methods("GET")

	r.HandleFunc("/webhooks/clerk", webhookHandler.HandleClerkWebhook).Methods("POST")
	r.HandleFunc("/wa/webhook/whatsapp", whatsappHandler.HandleInbound).Methods("POST")

	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/newsletter/subscribe", newsletterHandler.Subscribe).Methods("POST")
	api.Handle("/nudges/random", middleware.OptionalAuthMiddleware(http.HandlerFunc(nudgeHandler.Random))).Methods("GET")
	api.HandleFunc("/jobs/send-daily-nudge", nudgeHandler.SendDaily).Methods("POST")
	api.HandleFunc("/jobs/push-challenge", nudgeHandler.SendChallengeReminders).Methods("POST")
	api.HandleFunc("/jobs/push-spot", nudgeHandler.SendSpotReminders).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/user", userHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/user", userHandler.UpdateProfile).Methods("PATCH")
	protected.HandleFunc("/user/preferences", userHandler.GetPreferences).Methods("GET")
	protected.HandleFunc("/user/preferences", userHandler.UpdatePreferences).Methods("PATCH")

	protected.HandleFunc("/challenges", challengeHandler.ListAll).Methods("GET")
	protected.HandleFunc("/challenges/my", challengeHandler.ListMine).Methods("GET")
	protected.HandleFunc("/challenges/active", challengeHandler.GetActive).Methods("GET")
	protected.HandleFunc("/challenges/{challengeID}", challengeHandler.GetChallenge).Methods("GET")
	protected.HandleFunc("/challenges/{challengeID}/assign", challengeHandler.Assign).Methods("POST")
	protected.HandleFunc("/challenges/assignments/{assignmentID}", challengeHandler.Remove).Methods("DELETE")
	protected.HandleFunc("/challenges/assignments/{assignmentID}/progress", challengeHandler.GetProgress).Methods("GET")
	protected.HandleFunc("/challenges/log", challengeHandler.LogToday).Methods("POST")

	protected.HandleFunc("/spots", spotHandler.Create).Methods("POST")
	protected.HandleFunc("/spots", spotHandler.List).Methods("GET")

	protected.HandleFunc("/articles/saved", articleHandler.ListSaved).Methods("GET")
	protected.HandleFunc("/articles/{slug}/save", articleHandler.Save).Methods("POST")
	protected.HandleFunc("/articles/{slug}/save", articleHandler.Unsave).Methods("DELETE")

	protected.HandleFunc("/notifications/register-webpush", notificationHandler.RegisterWebPush).Methods("POST")
	protected.HandleFunc("/notifications/register-device", notificationHandler.RegisterDevice).Methods("POST")
	protected.HandleFunc("/notifications/test", notificationHandler.TestPush).Methods("POST")

	protected.HandleFunc("/worksheets", worksheetHandler.Create).Methods("POST")
	protected.HandleFunc("/worksheets/active", worksheetHandler.GetActive).Methods("GET")
	protected.HandleFunc("/worksheets/track", worksheetHandler.TrackEntry).Methods("POST")
	protected.HandleFunc("/worksheets/entries/{entryID}/note", worksheetHandler.EditNote).Methods("PATCH")
	protected.HandleFunc("/worksheets/reflection", worksheetHandler.GenerateReflection).Methods("POST")
	protected.HandleFunc("/worksheets/reflection", worksheetHandler.LatestReflection).Methods("GET")

	// Scheduler
	loc := time.UTC
	if tz := os.Getenv("TZ"); tz != "" {
		if parsed, err := time.LoadLocation(tz); err == nil {
			loc = parsed
		} else {
			log.Printf("Warning: invalid TZ %q, using UTC", tz)
		}
	}
	sched := scheduler.New(loc)
	if err := sched.RegisterAll(scheduler.Jobs{
		Nudges:     nudgeService,
		Reminders:  reminderService,
		Challenges: challengeService,
	}); err != nil {
		log.Fatal("Failed to register scheduled jobs:", err)
	}
	sched.Start()

	corsHandler := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins([]string{"*"}),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		gorillaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorillaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	<-sched.Stop().Done()
	log.Println("Server shutdown complete")
}
