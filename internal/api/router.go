/**
 * @description
 * This file sets up the HTTP router for the wallet-service. It defines the API
 * endpoints, associates them with their corresponding handlers, and applies any
 * necessary middleware, such as for authentication.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 * - github.com/go-chi/cors: CORS middleware for the browser extension.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// WalletRoutes creates and returns a new router for the wallet service.
func WalletRoutes(h *WalletHandlers, jwtSecret string) http.Handler {
	r := chi.NewRouter()

	// Add standard middleware for logging, panic recovery, and timeouts.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// The capture endpoint is called from a browser extension, so CORS must
	// allow extension origins.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*", "chrome-extension://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	// Group routes that require authentication.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(jwtSecret))

		// Wallet endpoints
		r.Get("/wallets", h.ListWalletsHandler)
		r.Post("/wallets", h.CreateWalletHandler)
		r.Get("/wallets/{walletID}", h.GetWalletHandler)
		r.Put("/wallets/{walletID}", h.UpdateWalletHandler)
		r.Delete("/wallets/{walletID}", h.DeleteWalletHandler)
		r.Get("/wallets/{walletID}/summary", h.WalletSummaryHandler)

		// Ledger entry endpoints
		r.Get("/wallets/{walletID}/transactions", h.ListTransactionsHandler)
		r.Post("/wallets/{walletID}/transactions", h.CreateTransactionHandler)
		r.Put("/transactions/{transactionID}", h.UpdateTransactionHandler)
		r.Delete("/transactions/{transactionID}", h.DeleteTransactionHandler)

		r.Get("/wallets/{walletID}/subscriptions", h.ListSubscriptionsHandler)
		r.Post("/wallets/{walletID}/subscriptions", h.CreateSubscriptionHandler)
		r.Put("/subscriptions/{subscriptionID}", h.UpdateSubscriptionHandler)
		r.Delete("/subscriptions/{subscriptionID}", h.DeleteSubscriptionHandler)

		r.Get("/wallets/{walletID}/free-trials", h.ListFreeTrialsHandler)
		r.Post("/wallets/{walletID}/free-trials", h.CreateFreeTrialHandler)
		r.Put("/free-trials/{trialID}", h.UpdateFreeTrialHandler)
		r.Delete("/free-trials/{trialID}", h.DeleteFreeTrialHandler)

		// Sharing endpoints
		r.Post("/wallets/{walletID}/shares", h.ShareWalletHandler)
		r.Get("/shares/pending", h.ListPendingInvitationsHandler)
		r.Post("/shares/{shareID}/respond", h.RespondToInvitationHandler)
		r.Put("/shares/{shareID}", h.UpdateShareLevelHandler)
		r.Delete("/shares/{shareID}", h.RevokeShareHandler)

		// Extraction endpoints
		r.Post("/extractions", h.CaptureExtractionHandler)
		r.Get("/extractions/{extractionID}", h.ExtractionStatusHandler)
		r.Post("/extractions/{extractionID}/confirm", h.ConfirmExtractionHandler)
	})

	return r
}
